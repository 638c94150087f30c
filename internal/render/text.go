// Package render draws placements as a character grid or as a Graphviz
// diagram.
package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"gaplace/internal/placement"
)

const (
	cellWidth   = 3
	overlapMark = "XX"
)

var (
	styleEmpty   = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	styleCell    = lipgloss.NewStyle().Foreground(lipgloss.Color("36"))
	styleRotated = lipgloss.NewStyle().Foreground(lipgloss.Color("75"))
	styleOverlap = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("167"))
	styleBorder  = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
)

type cellKind int

const (
	cellEmpty cellKind = iota
	cellPlain
	cellRotated
	cellOverlap
)

// TextBoard is a board drawn one cell per grid unit. Components that leave
// the board are not drawn and produce a warning instead.
type TextBoard struct {
	cells    [][]string
	kinds    [][]cellKind
	Warnings []string
}

// Text draws the layout encoded by g. Each cell holds the component label,
// followed by ' when rotated; cells claimed twice show XX.
func Text(cfg *placement.Config, g placement.Genome) (TextBoard, error) {
	placements, err := placement.Decode(cfg, g)
	if err != nil {
		return TextBoard{}, err
	}
	return TextFromPlacements(cfg, placements), nil
}

func TextFromPlacements(cfg *placement.Config, placements []placement.Placement) TextBoard {
	w, h := cfg.Board.Width, cfg.Board.Height
	b := TextBoard{
		cells: make([][]string, h),
		kinds: make([][]cellKind, h),
	}
	for y := 0; y < h; y++ {
		b.cells[y] = make([]string, w)
		b.kinds[y] = make([]cellKind, w)
	}

	for _, p := range placements {
		comp := cfg.Catalog[p.ComponentID]
		if p.Right() > w || p.Bottom() > h {
			b.Warnings = append(b.Warnings, fmt.Sprintf(
				"component %s is off the board: x=%d-%d y=%d-%d",
				comp.Label(), p.X, p.Right(), p.Y, p.Bottom()))
			continue
		}
		symbol, kind := comp.Label(), cellPlain
		if p.Rotated {
			symbol, kind = symbol+"'", cellRotated
		}
		for y := p.Y; y < p.Bottom(); y++ {
			for x := p.X; x < p.Right(); x++ {
				if b.kinds[y][x] == cellEmpty {
					b.cells[y][x] = symbol
					b.kinds[y][x] = kind
					continue
				}
				b.cells[y][x] = overlapMark
				b.kinds[y][x] = cellOverlap
			}
		}
	}
	return b
}

// Cell returns the text at column x, row y, or "" for an empty cell.
func (b TextBoard) Cell(x, y int) string {
	return b.cells[y][x]
}

// String renders the board without colour.
func (b TextBoard) String() string {
	return b.render(func(_ cellKind, s string) string { return s }, func(s string) string { return s })
}

// Styled renders the board with lipgloss colours for terminals.
func (b TextBoard) Styled() string {
	return b.render(func(kind cellKind, s string) string {
		switch kind {
		case cellPlain:
			return styleCell.Render(s)
		case cellRotated:
			return styleRotated.Render(s)
		case cellOverlap:
			return styleOverlap.Render(s)
		default:
			return styleEmpty.Render(s)
		}
	}, func(s string) string { return styleBorder.Render(s) })
}

func (b TextBoard) render(cell func(cellKind, string) string, border func(string) string) string {
	var sb strings.Builder
	sep := border("|")
	for y, row := range b.cells {
		sb.WriteString(sep)
		for x, s := range row {
			if x > 0 {
				sb.WriteString(sep)
			}
			sb.WriteString(cell(b.kinds[y][x], pad(s)))
		}
		sb.WriteString(sep)
		sb.WriteByte('\n')
	}
	return sb.String()
}

// pad left-aligns s in a cell, widening the cell for long labels.
func pad(s string) string {
	if len(s) >= cellWidth {
		return s
	}
	return s + strings.Repeat(" ", cellWidth-len(s))
}
