package tui

import (
	"strings"
	"testing"
	"time"

	"algoprep/internal/domain/model"
	"algoprep/internal/playback"
	"algoprep/internal/steps"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/require"
)

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func newTestPlayer(t *testing.T) (*Player, *playback.ManualScheduler) {
	t.Helper()
	seq := steps.New([]model.Step{
		{Message: "start", Array: &model.ArraySnapshot{Values: []model.Scalar{model.NumberScalar(3), model.NumberScalar(1), model.NumberScalar(2)}, Highlight: []int{0}}},
		{Message: "swap"},
		{Message: "done"},
	})
	sched := playback.NewManualScheduler()
	p := NewPlayer("Bubble Sort", seq, time.Second, playback.WithScheduler(sched))
	t.Cleanup(p.Close)
	return p, sched
}

func TestPlayerKeys(t *testing.T) {
	p, sched := newTestPlayer(t)

	p.Update(tea.KeyMsg{Type: tea.KeySpace})
	require.True(t, p.Engine().Running())
	p.Update(tea.KeyMsg{Type: tea.KeySpace})
	require.False(t, p.Engine().Running())

	p.Update(runes("n"))
	require.Equal(t, 1, p.snap.Position)
	p.Update(runes("p"))
	require.Equal(t, 0, p.snap.Position)

	p.Update(runes("+"))
	require.Equal(t, 1.5, p.Engine().Speed())
	for i := 0; i < 20; i++ {
		p.Update(runes("+"))
	}
	require.Equal(t, maxSpeed, p.Engine().Speed())
	for i := 0; i < 20; i++ {
		p.Update(runes("-"))
	}
	require.Equal(t, playback.MinSpeed, p.Engine().Speed())

	p.Update(runes("r"))
	require.True(t, p.snap.Running)
	sched.Advance(time.Minute)
	require.Equal(t, playback.Finished, p.Engine().State())

	p.Update(runes("0"))
	require.Equal(t, 0, p.snap.Position)
	require.Equal(t, playback.Idle, p.snap.State)
}

func TestPlayerReceivesTicks(t *testing.T) {
	p, sched := newTestPlayer(t)
	wait := p.Init()

	p.Update(tea.KeyMsg{Type: tea.KeySpace})
	sched.Advance(time.Second)

	// Only the newest snapshot is kept for the view.
	msg := wait()
	frame, ok := msg.(frameMsg)
	require.True(t, ok)
	require.Equal(t, 1, frame.Position)

	_, cmd := p.Update(msg)
	require.NotNil(t, cmd)
	require.Equal(t, 1, p.snap.Position)
	require.Contains(t, p.View(), "Step 2 / 3")
}

func TestPlayerView(t *testing.T) {
	p, _ := newTestPlayer(t)
	view := p.View()
	require.Contains(t, view, "Bubble Sort")
	require.Contains(t, view, "Step 1 / 3")
	require.Contains(t, view, "$ start")
	require.Contains(t, view, "[ [3] 1 2 ]")

	p.Update(runes("g"))
	require.True(t, p.showPlot)
	require.Greater(t, strings.Count(p.View(), "\n"), strings.Count(view, "\n"))
}

func TestPlayerQuitDisposesEngine(t *testing.T) {
	p, sched := newTestPlayer(t)
	wait := p.Init()
	p.Update(tea.KeyMsg{Type: tea.KeySpace})

	_, cmd := p.Update(runes("q"))
	require.NotNil(t, cmd)
	require.IsType(t, tea.QuitMsg{}, cmd())
	require.False(t, p.Engine().Running())
	require.Empty(t, sched.Pending())
	require.Empty(t, p.View())

	// Drain whatever was published before disposal; the channel is then closed.
	for msg := wait(); msg != nil; msg = wait() {
	}
	p.Update(runes("n"))
	require.Equal(t, 0, p.Engine().Position())
}

func TestEmptySequencePlayer(t *testing.T) {
	p := NewPlayer("Empty", steps.Sequence{}, time.Second, playback.WithScheduler(playback.NewManualScheduler()))
	defer p.Close()
	p.Update(tea.KeyMsg{Type: tea.KeySpace})
	require.False(t, p.Engine().Running())
	require.Contains(t, p.View(), "Step 0 / 0")
}
