// Package tui is a terminal player for visualization step sequences.
package tui

import (
	"fmt"
	"strings"
	"time"

	"algoprep/internal/playback"
	"algoprep/internal/render"
	"algoprep/internal/steps"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

var (
	cyan   = lipgloss.NewStyle().Foreground(lipgloss.Color("86"))
	white  = lipgloss.NewStyle().Foreground(lipgloss.Color("255"))
	dim    = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
	dimmer = lipgloss.NewStyle().Foreground(lipgloss.Color("238"))
	green  = lipgloss.NewStyle().Foreground(lipgloss.Color("82"))
	yellow = lipgloss.NewStyle().Foreground(lipgloss.Color("220"))
	blue   = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
)

var terminal = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	BorderForeground(lipgloss.Color("238")).
	Padding(0, 1)

const (
	speedStep = 0.5
	maxSpeed  = 5.0
	plotRows  = 6
)

type frameMsg playback.Snapshot

// Player hosts one playback engine and renders its current step.
type Player struct {
	title   string
	engine  *playback.Engine
	updates chan playback.Snapshot

	snap     playback.Snapshot
	showPlot bool
	quitting bool
	width    int
}

// NewPlayer builds a player over seq. Extra options are passed to the engine.
func NewPlayer(title string, seq steps.Sequence, baseInterval time.Duration, opts ...playback.Option) *Player {
	p := &Player{
		title:   title,
		updates: make(chan playback.Snapshot, 1),
		width:   80,
	}
	opts = append(opts, playback.WithObserver(p.publish))
	p.engine = playback.New(seq, baseInterval, opts...)
	p.snap = p.engine.Snapshot()
	return p
}

// publish runs under the engine lock, so it only ever replaces the pending snapshot.
func (p *Player) publish(s playback.Snapshot) {
	for {
		select {
		case p.updates <- s:
			return
		default:
		}
		select {
		case <-p.updates:
		default:
		}
	}
}

func (p *Player) waitForFrame() tea.Cmd {
	return func() tea.Msg {
		s, ok := <-p.updates
		if !ok {
			return nil
		}
		return frameMsg(s)
	}
}

func (p *Player) Engine() *playback.Engine { return p.engine }

func (p *Player) Init() tea.Cmd { return p.waitForFrame() }

func (p *Player) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case frameMsg:
		if p.quitting {
			return p, nil
		}
		p.snap = playback.Snapshot(msg)
		return p, p.waitForFrame()
	case tea.WindowSizeMsg:
		p.width = msg.Width
		return p, nil
	case tea.KeyMsg:
		return p.handleKey(msg)
	}
	return p, nil
}

func (p *Player) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	e := p.engine
	switch msg.String() {
	case "q", "ctrl+c", "esc":
		p.Close()
		return p, tea.Quit
	case " ", "enter":
		if e.Running() {
			e.Pause()
		} else {
			e.Play()
		}
	case "n", "right", "l":
		e.Next()
	case "p", "left", "h":
		e.Prev()
	case "r":
		e.Restart()
	case "0", "home":
		e.Reset()
	case "+", "=":
		e.SetSpeed(clampSpeed(e.Speed() + speedStep))
	case "-", "_":
		e.SetSpeed(clampSpeed(e.Speed() - speedStep))
	case "g":
		p.showPlot = !p.showPlot
	}
	p.snap = e.Snapshot()
	return p, nil
}

// Close disposes the engine. The player shows its last frame afterwards.
func (p *Player) Close() {
	if p.quitting {
		return
	}
	p.quitting = true
	p.engine.Dispose()
	// Dispose has returned, so the observer cannot send any more.
	close(p.updates)
}

func clampSpeed(s float64) float64 {
	if s < playback.MinSpeed {
		return playback.MinSpeed
	}
	if s > maxSpeed {
		return maxSpeed
	}
	return s
}

func (p *Player) View() string {
	if p.quitting {
		return ""
	}
	s := p.snap
	var b strings.Builder

	b.WriteString("\n  " + cyan.Render(p.title) + "\n")
	b.WriteString(dimmer.Render("  "+strings.Repeat("─", 40)) + "\n")

	status := dim.Render("○ paused")
	switch s.State {
	case playback.Playing:
		status = green.Render("● playing")
	case playback.Finished:
		status = yellow.Render("■ finished")
	}
	current := 0
	if s.Length > 0 {
		current = s.Position + 1
	}
	b.WriteString(fmt.Sprintf("  %s  %s  %s\n", status,
		white.Render(fmt.Sprintf("Step %d / %d", current, s.Length)),
		dim.Render(fmt.Sprintf("%.1fx", s.Speed))))
	b.WriteString("  " + progressBar(current, s.Length, 40) + "\n\n")

	frame := render.Render(s.Step)
	lines := frame.Lines()
	body := blue.Render(lines[0])
	if len(lines) > 1 {
		body += "\n" + strings.Join(lines[1:], "\n")
	}
	if p.showPlot {
		if chart := render.Plot(s.Step, plotRows); chart != "" {
			body += "\n\n" + chart
		}
	}
	b.WriteString(terminal.Render(body) + "\n\n")

	b.WriteString(dim.Render("  space play/pause  n/p step  r restart  0 reset  +/- speed  g plot  q quit") + "\n")
	return b.String()
}

func progressBar(current, total, width int) string {
	filled := 0
	if total > 0 {
		filled = current * width / total
	}
	return cyan.Render(strings.Repeat("━", filled)) + dimmer.Render(strings.Repeat("─", width-filled))
}
