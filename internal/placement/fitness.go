package placement

import "math"

// Breakdown is the itemised cost of one layout.
type Breakdown struct {
	Wirelength float64
	Overlaps   int
	OutOfBoard int
	Cost       float64
}

// Feasible reports whether the layout has no overlaps and stays on the board.
func (b Breakdown) Feasible() bool {
	return b.Overlaps == 0 && b.OutOfBoard == 0
}

// Evaluate returns the cost of a genome. Lower is better.
func Evaluate(cfg *Config, g Genome) (float64, error) {
	b, err := Score(cfg, g)
	if err != nil {
		return 0, err
	}
	return b.Cost, nil
}

// Score decodes g and itemises its cost.
func Score(cfg *Config, g Genome) (Breakdown, error) {
	placements, err := Decode(cfg, g)
	if err != nil {
		return Breakdown{}, err
	}
	return ScorePlacements(cfg, placements), nil
}

// ScorePlacements scores already decoded placements in catalog order.
func ScorePlacements(cfg *Config, placements []Placement) Breakdown {
	var b Breakdown
	b.OutOfBoard = CountOutOfBoard(cfg.Board, placements)
	b.Overlaps = CountOverlaps(placements)
	b.Wirelength = Wirelength(cfg.Graph, placements)
	b.Cost = b.Wirelength +
		float64(b.Overlaps)*cfg.Penalties.Overlap +
		float64(b.OutOfBoard)*cfg.Penalties.Bounds
	return b
}

// CountOutOfBoard counts placements that extend past the right or bottom edge.
func CountOutOfBoard(board Board, placements []Placement) int {
	n := 0
	for _, p := range placements {
		if p.Right() > board.Width || p.Bottom() > board.Height {
			n++
		}
	}
	return n
}

// CountOverlaps counts unordered pairs whose intersection has positive area.
func CountOverlaps(placements []Placement) int {
	n := 0
	for i := 0; i < len(placements); i++ {
		for j := i + 1; j < len(placements); j++ {
			if Overlap(placements[i], placements[j]) {
				n++
			}
		}
	}
	return n
}

// Overlap reports whether a and b share area. Shared edges do not count.
func Overlap(a, b Placement) bool {
	return a.X < b.Right() && b.X < a.Right() && a.Y < b.Bottom() && b.Y < a.Bottom()
}

// Wirelength sums center-to-center distances in connection order.
func Wirelength(graph *ConnectivityGraph, placements []Placement) float64 {
	if graph == nil {
		return 0
	}
	total := 0.0
	for _, c := range graph.edges {
		ax, ay := placements[c.A].Center()
		bx, by := placements[c.B].Center()
		total += math.Hypot(bx-ax, by-ay)
	}
	return total
}
