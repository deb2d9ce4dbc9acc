package playback

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"algoprep/internal/domain/model"
	"algoprep/internal/steps"

	"github.com/cockroachdb/datadriven"
	"github.com/stretchr/testify/require"
)

func makeSteps(n int) steps.Sequence {
	out := make([]model.Step, n)
	for i := range out {
		out[i] = model.Step{Message: fmt.Sprintf("step %d", i)}
	}
	return steps.New(out)
}

func describe(e *Engine, s *ManualScheduler) string {
	snap := e.Snapshot()
	return fmt.Sprintf("pos=%d/%d state=%s running=%t speed=%g interval=%s pending=%v",
		snap.Position, snap.Length, snap.State, snap.Running, snap.Speed, e.Interval(), s.Pending())
}

func argOr(td *datadriven.TestData, key, def string) string {
	for _, arg := range td.CmdArgs {
		if arg.Key == key && len(arg.Vals) > 0 {
			return arg.Vals[0]
		}
	}
	return def
}

func TestEngineDataDriven(t *testing.T) {
	datadriven.Walk(t, "testdata", func(t *testing.T, path string) {
		var e *Engine
		var sched *ManualScheduler
		datadriven.RunTest(t, path, func(t *testing.T, td *datadriven.TestData) string {
			if td.Cmd != "new" && e == nil {
				td.Fatalf(t, "%s before new", td.Cmd)
			}
			repeat, err := strconv.Atoi(argOr(td, "n", "1"))
			require.NoError(t, err)

			switch td.Cmd {
			case "new":
				n, err := strconv.Atoi(argOr(td, "steps", "0"))
				require.NoError(t, err)
				interval, err := time.ParseDuration(argOr(td, "interval", "1s"))
				require.NoError(t, err)
				minInterval, err := time.ParseDuration(argOr(td, "min", "100ms"))
				require.NoError(t, err)
				sched = NewManualScheduler()
				e = New(makeSteps(n), interval, WithScheduler(sched), WithMinInterval(minInterval))
			case "play":
				e.Play()
			case "pause":
				e.Pause()
			case "next":
				for i := 0; i < repeat; i++ {
					e.Next()
				}
			case "prev":
				for i := 0; i < repeat; i++ {
					e.Prev()
				}
			case "restart":
				e.Restart()
			case "reset":
				e.Reset()
			case "dispose":
				e.Dispose()
			case "speed":
				x, err := strconv.ParseFloat(argOr(td, "x", "1"), 64)
				require.NoError(t, err)
				e.SetSpeed(x)
			case "advance":
				d, err := time.ParseDuration(argOr(td, "d", "0s"))
				require.NoError(t, err)
				fired := sched.Advance(d)
				return fmt.Sprintf("fired=%d\n%s", fired, describe(e, sched))
			case "state":
			default:
				td.Fatalf(t, "unknown command %q", td.Cmd)
			}
			return describe(e, sched)
		})
	})
}

func TestEngineObserver(t *testing.T) {
	sched := NewManualScheduler()
	var seen []string
	e := New(makeSteps(3), time.Second, WithScheduler(sched), WithObserver(func(s Snapshot) {
		seen = append(seen, fmt.Sprintf("%d:%s:%s", s.Position, s.State, s.Step.Message))
	}))

	e.Play()
	sched.Advance(2 * time.Second)
	// Already at the end; nothing observable changes.
	e.Next()
	e.Play()

	require.Equal(t, []string{
		"0:playing:step 0",
		"1:playing:step 1",
		"2:finished:step 2",
	}, seen)
}

func TestEngineEmptySequence(t *testing.T) {
	e := New(steps.Sequence{}, time.Second, WithScheduler(NewManualScheduler()))
	for _, op := range []func(){e.Play, e.Next, e.Prev, e.Restart, e.Reset, e.Pause, func() { e.SetSpeed(3) }} {
		require.NotPanics(t, op)
		require.Equal(t, 0, e.Position())
		require.False(t, e.Running())
		require.True(t, e.CurrentStep().IsZero())
	}
	require.Equal(t, Idle, e.State())
}

func TestEngineIntervalFloor(t *testing.T) {
	e := New(makeSteps(4), time.Second, WithScheduler(NewManualScheduler()))
	e.SetSpeed(1)
	normal := e.Interval()
	e.SetSpeed(2)
	require.Less(t, e.Interval(), normal)
	for _, x := range []float64{1000, 1e9, 1e300} {
		e.SetSpeed(x)
		require.Equal(t, DefaultMinInterval, e.Interval())
	}
	e.SetSpeed(0.5)
	require.Equal(t, 2*time.Second, e.Interval())
	e.SetSpeed(-4)
	require.Equal(t, MinSpeed, e.Speed())
}

// TestEnginePositionInvariant drives random transport calls and ticks and checks
// the position and run-state invariants after every call.
func TestEnginePositionInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	for n := 1; n <= 6; n++ {
		sched := NewManualScheduler()
		e := New(makeSteps(n), 300*time.Millisecond, WithScheduler(sched))
		ops := []func(){
			e.Play, e.Pause, e.Next, e.Prev, e.Restart, e.Reset,
			func() { e.SetSpeed(rng.Float64() * 8) },
			func() { sched.Advance(time.Duration(rng.Intn(2000)) * time.Millisecond) },
		}
		for i := 0; i < 500; i++ {
			ops[rng.Intn(len(ops))]()
			snap := e.Snapshot()
			require.GreaterOrEqual(t, snap.Position, 0)
			require.Less(t, snap.Position, n)
			if snap.Running {
				require.Less(t, snap.Position, n-1)
				require.Len(t, sched.Pending(), 1)
			} else {
				require.Empty(t, sched.Pending())
			}
		}
	}
}

func TestEngineResetMatchesFresh(t *testing.T) {
	sched := NewManualScheduler()
	e := New(makeSteps(5), time.Second, WithScheduler(sched))
	e.Play()
	sched.Advance(2500 * time.Millisecond)
	e.Next()
	e.Reset()

	fresh := New(makeSteps(5), time.Second, WithScheduler(NewManualScheduler()))
	require.Equal(t, fresh.Snapshot(), e.Snapshot())
	require.Empty(t, sched.Pending())
}

// TestEnginePauseBeatsLateTick uses the wall clock: a tick that fires while Pause
// holds the lock must not move the position afterwards.
func TestEnginePauseBeatsLateTick(t *testing.T) {
	e := New(makeSteps(1000), time.Millisecond, WithMinInterval(time.Millisecond))
	defer e.Dispose()
	e.Play()
	time.Sleep(20 * time.Millisecond)
	e.Pause()
	pos := e.Position()
	time.Sleep(20 * time.Millisecond)
	require.Equal(t, pos, e.Position())
	require.False(t, e.Running())
}

func TestEngineConcurrentTransport(t *testing.T) {
	e := New(makeSteps(50), time.Millisecond, WithMinInterval(time.Millisecond))
	defer e.Dispose()
	var wg sync.WaitGroup
	for g := 0; g < 4; g++ {
		wg.Add(1)
		go func(g int) {
			defer wg.Done()
			for i := 0; i < 200; i++ {
				switch (g + i) % 5 {
				case 0:
					e.Play()
				case 1:
					e.Next()
				case 2:
					e.Prev()
				case 3:
					e.SetSpeed(float64(i%4) + 0.5)
				case 4:
					e.Restart()
				}
			}
		}(g)
	}
	wg.Wait()
	e.Dispose()
	pos := e.Position()
	time.Sleep(10 * time.Millisecond)
	require.Equal(t, pos, e.Position())
	require.False(t, e.Running())
}

func TestStateString(t *testing.T) {
	var names []string
	for _, s := range []State{Idle, Playing, Finished, State(9)} {
		names = append(names, s.String())
	}
	require.Equal(t, "idle playing finished unknown", strings.Join(names, " "))
}
