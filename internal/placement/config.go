package placement

import (
	"fmt"
	"math"

	perrors "gaplace/internal/errors"
	"gaplace/internal/model"
)

const (
	DefaultOverlapPenalty = 1000.0
	DefaultBoundsPenalty  = 5000.0
	DefaultTournamentSize = 3
)

// Selection schemes.
const (
	SelectionTournament = "tournament"
	SelectionElite      = "elite"
)

// Selection configures how parents are drawn. A zero TournamentSize means
// DefaultTournamentSize; EliteCount is used by the elite scheme only.
type Selection struct {
	Kind           string
	TournamentSize int
	EliteCount     int
}

// Penalties are the per-violation costs added to wirelength.
type Penalties struct {
	Overlap float64
	Bounds  float64
}

// Config is a validated, immutable run configuration.
type Config struct {
	Board                 Board
	Catalog               Catalog
	Graph                 *ConnectivityGraph
	PopulationSize        int
	Generations           int
	CXPB                  float64
	MUTPB                 float64
	INDPB                 float64
	PositionINDPB         float64
	Seed                  int64
	CheckpointGenerations []int
	Workers               int
	Penalties             Penalties
	Selection             Selection
}

// NewConfig converts and validates a RunSpec. Every rejection is a
// CodeInvalidConfig error naming the offending field.
func NewConfig(spec model.RunSpec) (*Config, error) {
	if spec.BoardWidth <= 0 {
		return nil, perrors.InvalidConfig("board_width", "must be > 0, got %d", spec.BoardWidth)
	}
	if spec.BoardHeight <= 0 {
		return nil, perrors.InvalidConfig("board_height", "must be > 0, got %d", spec.BoardHeight)
	}
	if len(spec.Components) == 0 {
		return nil, perrors.InvalidConfig("components", "at least one component is required")
	}

	catalog := make(Catalog, len(spec.Components))
	for i, c := range spec.Components {
		catalog[i] = Component{ID: i, Name: c.Name, Width: c.Width, Height: c.Height}
	}

	graph, err := NewConnectivityGraph(len(catalog), spec.Connections)
	if err != nil {
		return nil, err
	}

	positionINDPB := spec.INDPB
	if spec.PositionINDPB != nil {
		positionINDPB = *spec.PositionINDPB
	}
	workers := spec.Workers
	if workers == 0 {
		workers = 1
	}

	cfg := &Config{
		Board:                 Board{Width: spec.BoardWidth, Height: spec.BoardHeight},
		Catalog:               catalog,
		Graph:                 graph,
		PopulationSize:        spec.PopulationSize,
		Generations:           spec.Generations,
		CXPB:                  spec.CXPB,
		MUTPB:                 spec.MUTPB,
		INDPB:                 spec.INDPB,
		PositionINDPB:         positionINDPB,
		Seed:                  spec.Seed,
		CheckpointGenerations: append([]int(nil), spec.CheckpointGenerations...),
		Workers:               workers,
		Selection:             resolveSelection(spec),
	}

	penalties, err := ResolvePenalties(cfg.Board, graph.Len(), spec.OverlapPenalty, spec.BoundsPenalty)
	if err != nil {
		return nil, err
	}
	cfg.Penalties = penalties

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// resolveSelection fills the selection defaults. Elite selection keeps the
// best fifth of the population unless told otherwise.
func resolveSelection(spec model.RunSpec) Selection {
	sel := Selection{Kind: spec.Selection}
	if sel.Kind == "" {
		sel.Kind = SelectionTournament
	}
	switch sel.Kind {
	case SelectionTournament:
		sel.TournamentSize = spec.TournamentSize
		if sel.TournamentSize == 0 {
			sel.TournamentSize = DefaultTournamentSize
		}
	case SelectionElite:
		sel.EliteCount = spec.EliteCount
		if sel.EliteCount == 0 {
			sel.EliteCount = max(1, spec.PopulationSize/5)
		}
	}
	return sel
}

// Validate re-checks the invariants NewConfig enforces. It lets hand-built
// configs fail fast in the same way.
func (c *Config) Validate() error {
	if c == nil {
		return perrors.InvalidConfig("config", "config is required")
	}
	if c.Board.Width <= 0 {
		return perrors.InvalidConfig("board_width", "must be > 0, got %d", c.Board.Width)
	}
	if c.Board.Height <= 0 {
		return perrors.InvalidConfig("board_height", "must be > 0, got %d", c.Board.Height)
	}
	if len(c.Catalog) == 0 {
		return perrors.InvalidConfig("components", "at least one component is required")
	}
	for i, comp := range c.Catalog {
		if comp.ID != i {
			return perrors.InvalidConfig(fmt.Sprintf("components[%d].id", i), "ids must be dense and ordered, got %d", comp.ID)
		}
		if comp.Width <= 0 {
			return perrors.InvalidConfig(fmt.Sprintf("components[%d].width", i), "must be > 0, got %d", comp.Width)
		}
		if comp.Height <= 0 {
			return perrors.InvalidConfig(fmt.Sprintf("components[%d].height", i), "must be > 0, got %d", comp.Height)
		}
	}
	if c.Graph != nil && c.Graph.n != len(c.Catalog) {
		return perrors.InvalidConfig("connections", "graph built for %d components, catalog has %d", c.Graph.n, len(c.Catalog))
	}
	if c.PopulationSize <= 0 {
		return perrors.InvalidConfig("population_size", "must be > 0, got %d", c.PopulationSize)
	}
	switch c.Selection.Kind {
	case "", SelectionTournament:
		if c.Selection.TournamentSize < 0 {
			return perrors.InvalidConfig("tournament_size", "must be >= 1, got %d", c.Selection.TournamentSize)
		}
	case SelectionElite:
		if c.Selection.EliteCount < 1 || c.Selection.EliteCount > c.PopulationSize {
			return perrors.InvalidConfig("elite_count", "must be in [1,%d], got %d", c.PopulationSize, c.Selection.EliteCount)
		}
	default:
		return perrors.InvalidConfig("selection", "unknown scheme %q (want %s or %s)", c.Selection.Kind, SelectionTournament, SelectionElite)
	}
	if c.Generations < 0 {
		return perrors.InvalidConfig("generations", "must be >= 0, got %d", c.Generations)
	}
	for _, p := range []struct {
		field string
		value float64
	}{
		{"cxpb", c.CXPB},
		{"mutpb", c.MUTPB},
		{"indpb", c.INDPB},
		{"position_indpb", c.PositionINDPB},
	} {
		if math.IsNaN(p.value) || p.value < 0 || p.value > 1 {
			return perrors.InvalidConfig(p.field, "must be in [0,1], got %g", p.value)
		}
	}
	if c.Workers < 0 {
		return perrors.InvalidConfig("workers", "must be >= 0, got %d", c.Workers)
	}
	prev := -1
	for i, g := range c.CheckpointGenerations {
		field := fmt.Sprintf("checkpoint_generations[%d]", i)
		if g < 0 || g > c.Generations {
			return perrors.InvalidConfig(field, "generation %d outside [0,%d]", g, c.Generations)
		}
		if g <= prev {
			return perrors.InvalidConfig(field, "generations must be strictly increasing, got %d after %d", g, prev)
		}
		prev = g
	}
	bound := WirelengthBound(c.Board, c.Graph.Len())
	if c.Penalties.Overlap <= bound {
		return perrors.InvalidConfig("overlap_penalty", "must exceed the feasible wirelength bound %.2f, got %g", bound, c.Penalties.Overlap)
	}
	if c.Penalties.Bounds <= bound {
		return perrors.InvalidConfig("bounds_penalty", "must exceed the feasible wirelength bound %.2f, got %g", bound, c.Penalties.Bounds)
	}
	return nil
}

// GenomeLen is the exact genome length for this catalog.
func (c *Config) GenomeLen() int {
	return len(c.Catalog) * GenesPerComponent
}

// Connections returns the wired pairs, empty when no graph is set.
func (c *Config) Connections() []Connection {
	return c.Graph.Connections()
}

// IsCheckpoint reports whether generation gen is a checkpoint generation.
func (c *Config) IsCheckpoint(gen int) bool {
	for _, g := range c.CheckpointGenerations {
		if g == gen {
			return true
		}
		if g > gen {
			return false
		}
	}
	return false
}

// Spec converts the config back into its serialised form.
func (c *Config) Spec() model.RunSpec {
	components := make([]model.ComponentSpec, len(c.Catalog))
	for i, comp := range c.Catalog {
		components[i] = model.ComponentSpec{Name: comp.Name, Width: comp.Width, Height: comp.Height}
	}
	positionINDPB := c.PositionINDPB
	return model.RunSpec{
		BoardWidth:            c.Board.Width,
		BoardHeight:           c.Board.Height,
		PopulationSize:        c.PopulationSize,
		Generations:           c.Generations,
		CXPB:                  c.CXPB,
		MUTPB:                 c.MUTPB,
		INDPB:                 c.INDPB,
		PositionINDPB:         &positionINDPB,
		Seed:                  c.Seed,
		Selection:             c.Selection.Kind,
		TournamentSize:        c.Selection.TournamentSize,
		EliteCount:            c.Selection.EliteCount,
		Workers:               c.Workers,
		OverlapPenalty:        c.Penalties.Overlap,
		BoundsPenalty:         c.Penalties.Bounds,
		CheckpointGenerations: append([]int(nil), c.CheckpointGenerations...),
		Components:            components,
		Connections:           c.Graph.Pairs(),
	}
}

// WirelengthBound is an upper bound on the wirelength of any feasible layout:
// every component center of an in-bounds layout lies inside the board, so no
// connection is longer than the board diagonal.
func WirelengthBound(board Board, connections int) float64 {
	return float64(connections) * math.Hypot(float64(board.Width), float64(board.Height))
}

// ResolvePenalties returns the penalties for a board with the given number of
// connections. Zero values take the defaults, scaled by the smallest integer
// factor k with 1000k above the wirelength bound so that any overlapping or
// out-of-board layout scores worse than every feasible one. Explicit values are
// kept as given and checked by Validate.
func ResolvePenalties(board Board, connections int, overlap, bounds float64) (Penalties, error) {
	if overlap < 0 || math.IsNaN(overlap) {
		return Penalties{}, perrors.InvalidConfig("overlap_penalty", "must be >= 0, got %g", overlap)
	}
	if bounds < 0 || math.IsNaN(bounds) {
		return Penalties{}, perrors.InvalidConfig("bounds_penalty", "must be >= 0, got %g", bounds)
	}
	scale := math.Floor(WirelengthBound(board, connections)/DefaultOverlapPenalty) + 1
	out := Penalties{Overlap: overlap, Bounds: bounds}
	if out.Overlap == 0 {
		out.Overlap = DefaultOverlapPenalty * scale
	}
	if out.Bounds == 0 {
		out.Bounds = DefaultBoundsPenalty * scale
	}
	return out, nil
}

// PenaltyBound returns the wirelength bound the config's penalties must exceed.
func PenaltyBound(cfg *Config) float64 {
	return WirelengthBound(cfg.Board, cfg.Graph.Len())
}
