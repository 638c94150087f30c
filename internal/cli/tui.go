package cli

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"gaplace/internal/evo"
	"gaplace/internal/model"
	"gaplace/internal/placement"
	"gaplace/internal/render"
	"gaplace/pkg/gaplace"
)

// visibleCheckpoints caps the fitness rows shown in the live view.
const visibleCheckpoints = 8

var (
	styleBar      = lipgloss.NewStyle().Foreground(colorCyan)
	styleBarEmpty = lipgloss.NewStyle().Foreground(colorDim)
)

type checkpointMsg evo.Checkpoint

type runFinishedMsg struct {
	summary gaplace.RunSummary
	err     error
}

// runModel is the bubbletea model of a live run. It reads checkpoints from
// the channel the engine writes to and the final result from done.
type runModel struct {
	cfg         *placement.Config
	checkpoints <-chan evo.Checkpoint
	done        <-chan runFinishedMsg
	cancel      context.CancelFunc

	history  []evo.Checkpoint
	board    string
	finished *runFinishedMsg
}

func newRunModel(cfg *placement.Config, checkpoints <-chan evo.Checkpoint, done <-chan runFinishedMsg, cancel context.CancelFunc) runModel {
	return runModel{cfg: cfg, checkpoints: checkpoints, done: done, cancel: cancel}
}

// waitForEvent delivers the next checkpoint or the final result. The engine
// blocks on each checkpoint until it is received, so done never overtakes a
// pending checkpoint.
func waitForEvent(checkpoints <-chan evo.Checkpoint, done <-chan runFinishedMsg) tea.Cmd {
	return func() tea.Msg {
		select {
		case cp := <-checkpoints:
			return checkpointMsg(cp)
		case res := <-done:
			return res
		}
	}
}

func (m runModel) Init() tea.Cmd {
	return waitForEvent(m.checkpoints, m.done)
}

func (m runModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c", "esc":
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}
	case checkpointMsg:
		cp := evo.Checkpoint(msg)
		m.history = append(m.history, cp)
		if board, err := render.Text(m.cfg, cp.Genome); err == nil {
			m.board = board.Styled()
		}
		return m, waitForEvent(m.checkpoints, m.done)
	case runFinishedMsg:
		m.finished = &msg
		return m, tea.Quit
	}
	return m, nil
}

func (m runModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("gaplace run"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render(fmt.Sprintf("%d components · %d connections · population %d · q quit",
		len(m.cfg.Catalog), m.cfg.Graph.Len(), m.cfg.PopulationSize)))
	b.WriteString("\n\n")

	gen := 0
	if n := len(m.history); n > 0 {
		gen = m.history[n-1].Generation
	}
	b.WriteString(progressBar(gen, m.cfg.Generations, 30))
	b.WriteString(fmt.Sprintf(" generation %d/%d\n\n", gen, m.cfg.Generations))

	if len(m.history) > 0 {
		start := 0
		if len(m.history) > visibleCheckpoints {
			start = len(m.history) - visibleCheckpoints
		}
		rows := make([]model.CheckpointRecord, 0, visibleCheckpoints)
		for _, cp := range m.history[start:] {
			rows = append(rows, model.CheckpointRecord{Generation: cp.Generation, Fitness: cp.Fitness})
		}
		b.WriteString(checkpointTable(rows))
		b.WriteString("\n")
	}
	if m.board != "" {
		b.WriteString(m.board)
	}
	if m.finished != nil && m.finished.err != nil {
		b.WriteString(styleInfeasible.Render("run failed: " + m.finished.err.Error()))
		b.WriteString("\n")
	}
	return b.String()
}

func progressBar(value, total, width int) string {
	filled := width
	if total > 0 {
		filled = value * width / total
	}
	if filled > width {
		filled = width
	}
	return styleBar.Render(strings.Repeat("█", filled)) + styleBarEmpty.Render(strings.Repeat("░", width-filled))
}

// runWithTUI runs the search in the background while the live view shows
// its checkpoints. Quitting the view cancels the run.
func (c *CLI) runWithTUI(ctx context.Context, client *gaplace.Client, req gaplace.RunRequest) (gaplace.RunSummary, error) {
	cfg, err := c.previewConfig(ctx, client, req)
	if err != nil {
		return gaplace.RunSummary{}, err
	}

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	checkpoints := make(chan evo.Checkpoint)
	done := make(chan runFinishedMsg, 1)
	req.Sink = evo.ChannelSink(checkpoints)
	go func() {
		summary, err := client.Run(runCtx, req)
		done <- runFinishedMsg{summary: summary, err: err}
	}()

	final, err := tea.NewProgram(newRunModel(cfg, checkpoints, done, cancel), tea.WithContext(ctx)).Run()
	if err != nil {
		cancel()
		<-done
		return gaplace.RunSummary{}, err
	}
	m := final.(runModel)
	if m.finished == nil {
		cancel()
		res := <-done
		m.finished = &res
	}
	return m.finished.summary, m.finished.err
}

// previewConfig validates the config a run request will use so the view
// can be laid out before the first checkpoint arrives.
func (c *CLI) previewConfig(ctx context.Context, client *gaplace.Client, req gaplace.RunRequest) (*placement.Config, error) {
	var spec model.RunSpec
	switch {
	case req.Spec != nil:
		spec = req.Spec.Clone()
	case req.ConfigName != "":
		record, err := client.GetConfig(ctx, req.ConfigName)
		if err != nil {
			return nil, err
		}
		spec = record.Spec
	default:
		spec = model.DefaultRunSpec()
	}
	return placement.NewConfig(spec)
}
