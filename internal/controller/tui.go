package controller

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"sync"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	m "deobf.dev/pkg/deobf/internal/model"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("69"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errorStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	helpStyle    = lipgloss.NewStyle().Faint(true)
)

const (
	headerHeight = 3
	footerHeight = 2
)

// TUI implements UI using Bubble Tea for interactive display.
type TUI struct {
	output io.Writer

	mu      sync.Mutex
	program *tea.Program
	done    chan struct{}
}

// NewTUI creates a new TUI.
func NewTUI(output io.Writer) *TUI {
	return &TUI{output: output}
}

// Start launches the Bubble Tea program in the background.
func (t *TUI) Start(ctx context.Context, options ...StartOption) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if t.program != nil {
		return nil
	}

	cfg := newStartConfig(options...)
	t.program = tea.NewProgram(newProgressModel(cfg.mode), tea.WithOutput(t.output), tea.WithAltScreen())
	t.done = make(chan struct{})

	program, done := t.program, t.done

	go func() {
		defer close(done)

		if _, err := program.Run(); err != nil {
			slog.Error("TUI stopped with error", "error", err)
		}
	}()

	return nil
}

// Close stops the program if the user has not already quit it.
func (t *TUI) Close(_ context.Context) {
	program, done := t.handles()
	if program == nil {
		return
	}

	program.Quit()
	<-done
}

// Wait marks the work as finished and blocks until the user quits.
func (t *TUI) Wait(ctx context.Context) {
	program, done := t.handles()
	if program == nil {
		return
	}

	program.Send(finishedMsg{})

	select {
	case <-done:
	case <-ctx.Done():
	}
}

// DisplayRunInfo updates the status line.
func (t *TUI) DisplayRunInfo(_ context.Context, roots []m.Path, threads int, dryRun bool) {
	t.send(runInfoMsg{roots: len(roots), threads: threads, dryRun: dryRun})
}

// DisplayPlan appends the rename tables of root.
func (t *TUI) DisplayPlan(ctx context.Context, root m.Path, tables *m.Tables) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	body := "no obfuscated names detected\n"
	if !tables.Empty() {
		body = renderMappingTable(tables)
	}

	t.send(sectionMsg{title: string(root), body: body})

	return nil
}

// DisplayResult appends the summary of one run.
func (t *TUI) DisplayResult(ctx context.Context, result m.Result, changes ChangeSource) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	listing, err := renderChanges(changes)
	if err != nil {
		return err
	}

	var b strings.Builder
	b.WriteString(renderResultTable(result))

	if listing != "" {
		b.WriteString("\n")
		b.WriteString(listing)
	}

	b.WriteString(successStyle.Render(result.String()))
	b.WriteString("\n")

	t.send(sectionMsg{title: string(result.Root), body: b.String()})

	return nil
}

// DisplayError shows a failure.
func (t *TUI) DisplayError(_ context.Context, err error) {
	if err == nil {
		return
	}

	t.send(errorMsg{err: err})
}

func (t *TUI) handles() (*tea.Program, chan struct{}) {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.program, t.done
}

func (t *TUI) send(msg tea.Msg) {
	if program, _ := t.handles(); program != nil {
		program.Send(msg)
	}
}

type runInfoMsg struct {
	roots   int
	threads int
	dryRun  bool
}

type sectionMsg struct {
	title string
	body  string
}

type errorMsg struct {
	err error
}

type finishedMsg struct{}

// progressModel shows a spinner while trees are processed and a scrollable
// report of every finished tree.
type progressModel struct {
	mode     StartMode
	spinner  spinner.Model
	viewport viewport.Model
	ready    bool
	finished bool
	failed   bool
	status   string
	sections []string
}

func newProgressModel(mode StartMode) progressModel {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = statusStyle

	status := "Deobfuscating"
	if mode == ModeList {
		status = "Scanning"
	}

	return progressModel{mode: mode, spinner: s, status: status}
}

func (pm progressModel) Init() tea.Cmd {
	return pm.spinner.Tick
}

func (pm progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		height := max(msg.Height-headerHeight-footerHeight, 1)
		if !pm.ready {
			pm.viewport = viewport.New(msg.Width, height)
			pm.ready = true
		} else {
			pm.viewport.Width = msg.Width
			pm.viewport.Height = height
		}

		pm.viewport.SetContent(pm.content())

		return pm, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "esc", "ctrl+c":
			return pm, tea.Quit
		}

		var cmd tea.Cmd
		pm.viewport, cmd = pm.viewport.Update(msg)

		return pm, cmd

	case spinner.TickMsg:
		if pm.finished {
			return pm, nil
		}

		var cmd tea.Cmd
		pm.spinner, cmd = pm.spinner.Update(msg)

		return pm, cmd

	case runInfoMsg:
		pm.status = pm.runStatus(msg)
		return pm, nil

	case sectionMsg:
		pm.sections = append(pm.sections, titleStyle.Render(msg.title)+"\n"+msg.body)
		return pm.refresh(), nil

	case errorMsg:
		pm.failed = true
		pm.sections = append(pm.sections, errorStyle.Render("error: "+msg.err.Error()))

		return pm.refresh(), nil

	case finishedMsg:
		pm.finished = true
		return pm, nil
	}

	return pm, nil
}

func (pm progressModel) runStatus(msg runInfoMsg) string {
	verb := "Deobfuscating"

	switch {
	case pm.mode == ModeList:
		verb = "Scanning"
	case msg.dryRun:
		verb = "Dry run over"
	}

	return fmt.Sprintf("%s %d tree(s) with %d worker(s)", verb, msg.roots, msg.threads)
}

func (pm progressModel) refresh() progressModel {
	if pm.ready {
		pm.viewport.SetContent(pm.content())
		pm.viewport.GotoBottom()
	}

	return pm
}

func (pm progressModel) content() string {
	return strings.Join(pm.sections, "\n")
}

func (pm progressModel) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("deobf"))
	b.WriteString("\n")

	switch {
	case pm.failed && pm.finished:
		b.WriteString(errorStyle.Render("Failed"))
	case pm.finished:
		b.WriteString(successStyle.Render("Done"))
	default:
		b.WriteString(pm.spinner.View() + " " + statusStyle.Render(pm.status))
	}

	b.WriteString("\n\n")

	if pm.ready {
		b.WriteString(pm.viewport.View())
	} else {
		b.WriteString(pm.content())
	}

	b.WriteString("\n")
	b.WriteString(helpStyle.Render("↑/↓ scroll • q quit"))

	return b.String()
}
