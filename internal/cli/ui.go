package cli

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"gaplace/internal/model"
)

// =============================================================================
// Color Palette
// =============================================================================

var (
	colorCyan   = lipgloss.Color("36")  // Teal - primary actions
	colorGreen  = lipgloss.Color("35")  // Green - success
	colorYellow = lipgloss.Color("220") // Amber - warnings
	colorRed    = lipgloss.Color("167") // Soft red - errors
	colorWhite  = lipgloss.Color("255") // Bright white - values
	colorGray   = lipgloss.Color("245") // Gray - secondary text
	colorDim    = lipgloss.Color("240") // Dim gray - muted text
)

// =============================================================================
// Styles
// =============================================================================

var (
	StyleTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	StyleDim     = lipgloss.NewStyle().Foreground(colorDim)
	StyleValue   = lipgloss.NewStyle().Foreground(colorWhite)
	StyleNumber  = lipgloss.NewStyle().Foreground(colorCyan)
	StyleWarning = lipgloss.NewStyle().Foreground(colorYellow)

	styleIconSuccess = lipgloss.NewStyle().Foreground(colorGreen)
	styleIconWarning = lipgloss.NewStyle().Foreground(colorYellow)
	styleIconInfo    = lipgloss.NewStyle().Foreground(colorGray)
	styleInfeasible  = lipgloss.NewStyle().Foreground(colorRed)
	styleHeader      = lipgloss.NewStyle().Foreground(colorGray).Bold(true)
	styleCell        = lipgloss.NewStyle().Padding(0, 1)
)

const (
	iconSuccess = "✓"
	iconWarning = "!"
	iconInfo    = "›"
	iconArrow   = "→"
)

// =============================================================================
// Status Output
// =============================================================================

func (c *CLI) printSuccess(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(c.out, styleIconSuccess.Render(iconSuccess)+" "+msg)
}

func (c *CLI) printWarning(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(c.out, styleIconWarning.Render(iconWarning)+" "+StyleWarning.Render(msg))
}

func (c *CLI) printInfo(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(c.out, styleIconInfo.Render(iconInfo)+" "+msg)
}

func (c *CLI) printDetail(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	fmt.Fprintln(c.out, "  "+StyleDim.Render(msg))
}

func (c *CLI) printFile(path string) {
	fmt.Fprintln(c.out, "  "+StyleDim.Render(iconArrow)+" "+StyleValue.Render(path))
}

func (c *CLI) printKeyValue(key, value string) {
	keyStyle := lipgloss.NewStyle().Foreground(colorGray).Width(14)
	fmt.Fprintln(c.out, keyStyle.Render(key)+" "+StyleValue.Render(value))
}

// =============================================================================
// Tables
// =============================================================================

func newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(colorDim)).
		Headers(headers...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return styleHeader.Padding(0, 1)
			}
			return styleCell
		})
}

// runsTable lists runs one per row, newest first.
func runsTable(runs []model.RunRecord) string {
	t := newTable("Run", "Config", "Created", "Board", "Pop", "Gens", "Seed", "Best")
	for _, r := range runs {
		config := r.ConfigName
		if config == "" {
			config = "—"
		}
		t.Row(
			shortID(r.ID),
			config,
			r.CreatedAt.Local().Format("2006-01-02 15:04"),
			fmt.Sprintf("%dx%d", r.Spec.BoardWidth, r.Spec.BoardHeight),
			strconv.Itoa(r.Spec.PopulationSize),
			strconv.Itoa(r.Spec.Generations),
			strconv.FormatInt(r.Spec.Seed, 10),
			formatFitness(r.BestFitness),
		)
	}
	return t.Render()
}

// checkpointTable lists the fitness curve of a run.
func checkpointTable(checkpoints []model.CheckpointRecord) string {
	t := newTable("Generation", "Best fitness")
	for _, cp := range checkpoints {
		t.Row(strconv.Itoa(cp.Generation), formatFitness(cp.Fitness))
	}
	return t.Render()
}

// shortID keeps run ids readable in tables; any unique prefix is accepted
// back on the command line.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func formatFitness(f float64) string {
	return strconv.FormatFloat(f, 'f', 3, 64)
}
