package capture

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

type lineMsg string
type doneMsg struct{}

var (
	labelStyle = lipgloss.NewStyle().Bold(true)
	lastStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("242"))
)

// progressModel shows a spinner, the command, elapsed time and the most
// recent line of output.
type progressModel struct {
	spinner spinner.Model
	label   string
	last    string
	started time.Time
	width   int
	done    bool
}

func newProgressModel(label string, now time.Time) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	return progressModel{spinner: s, label: label, started: now, width: 80}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case lineMsg:
		if s := strings.TrimSpace(string(msg)); s != "" {
			m.last = s
		}
	case doneMsg:
		m.done = true
		return m, tea.Quit
	case tea.WindowSizeMsg:
		if msg.Width > 0 {
			m.width = msg.Width
		}
	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	if m.done {
		return ""
	}
	elapsed := time.Since(m.started).Truncate(time.Second)
	head := m.spinner.View() + " " + labelStyle.Render(m.label) + " " + elapsed.String()
	room := m.width - runewidth.StringWidth(m.label) - 12
	if m.last == "" || room < 10 {
		return head
	}
	return head + "  " + lastStyle.Render(runewidth.Truncate(m.last, room, "…"))
}

// progress drives a bubbletea program on a terminal. A nil *progress is a
// no-op so callers need not check.
type progress struct {
	program *tea.Program
	done    chan struct{}
}

func startProgress(ctx context.Context, w io.Writer, argv []string) *progress {
	model := newProgressModel(strings.Join(argv, " "), time.Now())
	p := &progress{
		program: tea.NewProgram(model,
			tea.WithContext(ctx),
			tea.WithOutput(w),
			tea.WithInput(nil),
			tea.WithoutSignalHandler(),
		),
		done: make(chan struct{}),
	}
	go func() {
		defer close(p.done)
		_, _ = p.program.Run()
	}()
	return p
}

func (p *progress) line(s string) {
	if p != nil {
		p.program.Send(lineMsg(s))
	}
}

func (p *progress) stop() {
	if p == nil {
		return
	}
	p.program.Send(doneMsg{})
	<-p.done
}
