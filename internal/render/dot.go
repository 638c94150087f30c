package render

import (
	"bytes"
	"context"
	"fmt"

	"github.com/goccy/go-graphviz"

	"gaplace/internal/placement"
)

// inchesPerUnit scales one grid unit in the DOT output.
const inchesPerUnit = 0.5

// netColors colours the wires of each connected net.
var netColors = []string{"#4a90d9", "#2e8b57", "#8a2be2", "#d2691e", "#c71585", "#008b8b"}

// DOT describes the layout encoded by g as a neato graph with every
// component pinned at its board position. Wires share a colour per net.
func DOT(cfg *placement.Config, g placement.Genome) (string, error) {
	placements, err := placement.Decode(cfg, g)
	if err != nil {
		return "", err
	}
	return DOTFromPlacements(cfg, placements), nil
}

func DOTFromPlacements(cfg *placement.Config, placements []placement.Placement) string {
	overlapping := make(map[int]bool)
	for i := range placements {
		for j := i + 1; j < len(placements); j++ {
			if placement.Overlap(placements[i], placements[j]) {
				overlapping[i] = true
				overlapping[j] = true
			}
		}
	}

	var buf bytes.Buffer
	buf.WriteString("graph G {\n")
	buf.WriteString("  bgcolor=\"transparent\";\n")
	buf.WriteString("  splines=line;\n")
	buf.WriteString("  node [shape=box, style=filled, fillcolor=white, fixedsize=true, fontsize=10];\n")

	// Board outline, pinned at the board center.
	bw, bh := float64(cfg.Board.Width), float64(cfg.Board.Height)
	fmt.Fprintf(&buf, "  board [label=\"\", pos=\"%.3f,%.3f!\", width=%.3f, height=%.3f, fillcolor=\"#f4f4f4\", color=\"#999999\"];\n",
		bw/2*inchesPerUnit, bh/2*inchesPerUnit, bw*inchesPerUnit, bh*inchesPerUnit)
	buf.WriteString("\n")

	for i, p := range placements {
		comp := cfg.Catalog[p.ComponentID]
		label := comp.Label()
		if p.Rotated {
			label += "'"
		}
		cx, cy := p.Center()
		// Graphviz y grows upwards; board rows grow downwards.
		attrs := fmt.Sprintf("label=%q, pos=\"%.3f,%.3f!\", width=%.3f, height=%.3f",
			label, cx*inchesPerUnit, (bh-cy)*inchesPerUnit,
			float64(p.Width)*inchesPerUnit, float64(p.Height)*inchesPerUnit)
		switch {
		case p.Right() > cfg.Board.Width || p.Bottom() > cfg.Board.Height:
			attrs += ", fillcolor=\"#f5c26b\", color=\"#d48a00\""
		case overlapping[i]:
			attrs += ", fillcolor=\"#f08080\", color=\"#b22222\""
		}
		fmt.Fprintf(&buf, "  c%d [%s];\n", p.ComponentID, attrs)
	}

	netOf := make(map[int]int)
	for i, net := range cfg.Graph.Nets() {
		for _, id := range net {
			netOf[id] = i
		}
	}
	buf.WriteString("\n")
	for _, c := range cfg.Connections() {
		net := netOf[c.A]
		fmt.Fprintf(&buf, "  c%d -- c%d [color=%q, tooltip=\"net %d\"];\n", c.A, c.B, netColors[net%len(netColors)], net+1)
	}
	buf.WriteString("}\n")
	return buf.String()
}

// RenderSVG lays out a DOT graph with neato, honouring pinned positions, and
// returns SVG bytes.
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()
	gv.SetLayout(graphviz.NEATO)

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return buf.Bytes(), nil
}
