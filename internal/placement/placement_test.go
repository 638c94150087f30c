package placement

import (
	"math"
	"math/rand"
	"testing"

	perrors "gaplace/internal/errors"
	"gaplace/internal/model"
)

func testSpec(w, h int, comps [][2]int, conns [][]int) model.RunSpec {
	spec := model.RunSpec{
		BoardWidth:     w,
		BoardHeight:    h,
		PopulationSize: 4,
		Generations:    2,
		CXPB:           0.5,
		MUTPB:          0.5,
		INDPB:          0.5,
		Seed:           1,
		Connections:    conns,
	}
	for _, c := range comps {
		spec.Components = append(spec.Components, model.ComponentSpec{Width: c[0], Height: c[1]})
	}
	return spec
}

func mustConfig(t *testing.T, spec model.RunSpec) *Config {
	t.Helper()
	cfg, err := NewConfig(spec)
	if err != nil {
		t.Fatalf("new config: %v", err)
	}
	return cfg
}

func TestGenerateDecodeShape(t *testing.T) {
	cfg := mustConfig(t, model.DefaultRunSpec())
	rng := rand.New(rand.NewSource(7))
	for i := 0; i < 200; i++ {
		g := GenerateIndividual(cfg, rng)
		if len(g) != 3*len(cfg.Catalog) {
			t.Fatalf("genome length %d", len(g))
		}
		placements, err := Decode(cfg, g)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		if len(placements) != len(cfg.Catalog) {
			t.Fatalf("decoded %d placements", len(placements))
		}
		for j, p := range placements {
			if g[j*3+GeneRotation] != 0 && g[j*3+GeneRotation] != 1 {
				t.Fatalf("rotation gene %d", g[j*3+GeneRotation])
			}
			if p.X < 0 || p.Y < 0 {
				t.Fatalf("negative coordinate %+v", p)
			}
			if p.Right() > cfg.Board.Width || p.Bottom() > cfg.Board.Height {
				t.Fatalf("generated component %d leaves the board: %+v", j, p)
			}
		}
	}
}

func TestGenerateClampsOversizedAxis(t *testing.T) {
	cfg := mustConfig(t, testSpec(5, 5, [][2]int{{12, 12}}, nil))
	rng := rand.New(rand.NewSource(3))
	for i := 0; i < 20; i++ {
		g := GenerateIndividual(cfg, rng)
		if g[GeneX] != 0 || g[GeneY] != 0 {
			t.Fatalf("expected clamped coordinates, got %v", g)
		}
	}
}

func TestDecodeRejectsBrokenGenomes(t *testing.T) {
	cfg := mustConfig(t, testSpec(10, 10, [][2]int{{2, 3}, {1, 1}}, [][]int{{0, 1}}))
	tests := []struct {
		name string
		g    Genome
	}{
		{"short", Genome{0, 0, 0, 1, 1}},
		{"long", Genome{0, 0, 0, 1, 1, 0, 0}},
		{"rotation", Genome{0, 0, 2, 1, 1, 0}},
		{"negative", Genome{0, -1, 0, 1, 1, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode(cfg, tt.g)
			if !perrors.Is(err, perrors.CodeGeometryInvariant) {
				t.Fatalf("expected geometry invariant error, got %v", err)
			}
			if _, err := Evaluate(cfg, tt.g); !perrors.Is(err, perrors.CodeGeometryInvariant) {
				t.Fatalf("evaluate: expected geometry invariant error, got %v", err)
			}
		})
	}
}

func TestDecodeAppliesRotation(t *testing.T) {
	cfg := mustConfig(t, testSpec(10, 10, [][2]int{{2, 3}}, nil))
	placements, err := Decode(cfg, Genome{1, 2, 1})
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if w, h := placements[0].Size(); w != 3 || h != 2 {
		t.Fatalf("rotated footprint = %dx%d, want 3x2", w, h)
	}
	if got := Encode(placements); !equalGenome(got, Genome{1, 2, 1}) {
		t.Fatalf("encode = %v", got)
	}
}

func TestEvaluateScenarios(t *testing.T) {
	tests := []struct {
		name  string
		spec  model.RunSpec
		g     Genome
		check func(t *testing.T, cfg *Config, b Breakdown)
	}{
		{
			name: "single component",
			spec: testSpec(20, 20, [][2]int{{5, 5}}, nil),
			g:    Genome{0, 0, 0},
			check: func(t *testing.T, cfg *Config, b Breakdown) {
				if b.Cost != 0 {
					t.Fatalf("cost = %v, want 0", b.Cost)
				}
			},
		},
		{
			name: "stacked squares",
			spec: testSpec(10, 10, [][2]int{{6, 6}, {6, 6}}, nil),
			g:    Genome{0, 0, 0, 0, 0, 0},
			check: func(t *testing.T, cfg *Config, b Breakdown) {
				if b.Overlaps != 1 || b.OutOfBoard != 0 {
					t.Fatalf("unexpected breakdown %+v", b)
				}
				if b.Cost != cfg.Penalties.Overlap {
					t.Fatalf("cost = %v, want %v", b.Cost, cfg.Penalties.Overlap)
				}
			},
		},
		{
			name: "stacked connected squares",
			spec: testSpec(10, 10, [][2]int{{6, 6}, {6, 6}}, [][]int{{0, 1}}),
			g:    Genome{0, 0, 0, 0, 0, 0},
			check: func(t *testing.T, cfg *Config, b Breakdown) {
				if b.Overlaps != 1 || b.OutOfBoard != 0 {
					t.Fatalf("unexpected breakdown %+v", b)
				}
				if b.Cost != cfg.Penalties.Overlap {
					t.Fatalf("cost = %v, want %v", b.Cost, cfg.Penalties.Overlap)
				}
			},
		},
		{
			name: "past the right edge",
			spec: testSpec(10, 10, [][2]int{{8, 8}}, nil),
			g:    Genome{5, 0, 0},
			check: func(t *testing.T, cfg *Config, b Breakdown) {
				if b.OutOfBoard != 1 {
					t.Fatalf("out of board = %d", b.OutOfBoard)
				}
				if b.Cost < cfg.Penalties.Bounds {
					t.Fatalf("cost %v below bounds penalty %v", b.Cost, cfg.Penalties.Bounds)
				}
			},
		},
		{
			name: "touching edges",
			spec: testSpec(20, 20, [][2]int{{4, 4}, {4, 4}}, [][]int{{0, 1}}),
			g:    Genome{0, 0, 0, 4, 0, 0},
			check: func(t *testing.T, cfg *Config, b Breakdown) {
				if b.Overlaps != 0 {
					t.Fatalf("touching boxes counted as overlap")
				}
				if b.Wirelength != 4 {
					t.Fatalf("wirelength = %v, want 4", b.Wirelength)
				}
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := mustConfig(t, tt.spec)
			b, err := Score(cfg, tt.g)
			if err != nil {
				t.Fatalf("score: %v", err)
			}
			tt.check(t, cfg, b)
		})
	}
}

func TestEvaluateIsPure(t *testing.T) {
	cfg := mustConfig(t, model.DefaultRunSpec())
	g := GenerateIndividual(cfg, rand.New(rand.NewSource(11)))
	before := g.Clone()
	first, err := Evaluate(cfg, g)
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	second, _ := Evaluate(cfg, g)
	if first != second {
		t.Fatalf("evaluate not repeatable: %v vs %v", first, second)
	}
	if !equalGenome(g, before) {
		t.Fatal("evaluate mutated its genome")
	}
}

func TestOverlapCountIndependentOfOrder(t *testing.T) {
	base := []Placement{
		{ComponentID: 0, X: 0, Y: 0, Width: 5, Height: 5},
		{ComponentID: 1, X: 3, Y: 3, Width: 5, Height: 5},
		{ComponentID: 2, X: 4, Y: 0, Width: 2, Height: 2},
		{ComponentID: 3, X: 10, Y: 10, Width: 1, Height: 1},
	}
	want := CountOverlaps(base)
	if want != 2 {
		t.Fatalf("overlaps = %d, want 2", want)
	}
	rng := rand.New(rand.NewSource(5))
	for i := 0; i < 20; i++ {
		shuffled := append([]Placement(nil), base...)
		rng.Shuffle(len(shuffled), func(a, b int) { shuffled[a], shuffled[b] = shuffled[b], shuffled[a] })
		if got := CountOverlaps(shuffled); got != want {
			t.Fatalf("overlaps after shuffle = %d, want %d", got, want)
		}
	}
}

func TestPenaltyDominatesFeasibleCost(t *testing.T) {
	// Two connected components on a large board push the bound past the
	// default overlap penalty.
	spec := testSpec(800, 800, [][2]int{{1, 1}, {1, 1}, {1, 1}}, [][]int{{0, 1}, {1, 2}})
	cfg := mustConfig(t, spec)
	bound := PenaltyBound(cfg)
	if bound <= DefaultOverlapPenalty {
		t.Fatalf("test board too small: bound %v", bound)
	}
	if cfg.Penalties.Overlap <= bound || cfg.Penalties.Bounds <= bound {
		t.Fatalf("penalties %+v do not exceed bound %v", cfg.Penalties, bound)
	}
	if cfg.Penalties.Bounds != 5*cfg.Penalties.Overlap {
		t.Fatalf("penalty ratio changed: %+v", cfg.Penalties)
	}

	// Worst feasible layout: opposite corners.
	far, err := Evaluate(cfg, Genome{0, 0, 0, 799, 799, 0, 0, 799, 0})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if far >= cfg.Penalties.Overlap {
		t.Fatalf("feasible cost %v reaches overlap penalty %v", far, cfg.Penalties.Overlap)
	}
	overlapping, _ := Evaluate(cfg, Genome{0, 0, 0, 0, 0, 0, 1, 1, 0})
	if overlapping <= far {
		t.Fatalf("overlapping cost %v not above feasible %v", overlapping, far)
	}
}

func TestDefaultPenaltiesOnSmallBoard(t *testing.T) {
	cfg := mustConfig(t, model.DefaultRunSpec())
	if cfg.Penalties != (Penalties{Overlap: 1000, Bounds: 5000}) {
		t.Fatalf("unexpected penalties %+v", cfg.Penalties)
	}
}

func TestNewConfigRejections(t *testing.T) {
	ok := func() model.RunSpec { return model.DefaultRunSpec() }
	nan := math.NaN()
	tests := []struct {
		name  string
		edit  func(*model.RunSpec)
		field string
	}{
		{"board width", func(s *model.RunSpec) { s.BoardWidth = 0 }, "board_width"},
		{"board height", func(s *model.RunSpec) { s.BoardHeight = -2 }, "board_height"},
		{"empty catalog", func(s *model.RunSpec) { s.Components = nil; s.Connections = nil }, "components"},
		{"component width", func(s *model.RunSpec) { s.Components[1].Width = 0 }, "components[1].width"},
		{"component height", func(s *model.RunSpec) { s.Components[2].Height = -1 }, "components[2].height"},
		{"self loop", func(s *model.RunSpec) { s.Connections = [][]int{{1, 1}} }, "connections[0]"},
		{"out of range", func(s *model.RunSpec) { s.Connections = [][]int{{0, 1}, {0, 9}} }, "connections[1]"},
		{"not a pair", func(s *model.RunSpec) { s.Connections = [][]int{{0}} }, "connections[0]"},
		{"population", func(s *model.RunSpec) { s.PopulationSize = 0 }, "population_size"},
		{"generations", func(s *model.RunSpec) { s.Generations = -1 }, "generations"},
		{"cxpb", func(s *model.RunSpec) { s.CXPB = 1.2 }, "cxpb"},
		{"mutpb", func(s *model.RunSpec) { s.MUTPB = -0.1 }, "mutpb"},
		{"indpb", func(s *model.RunSpec) { s.INDPB = 2 }, "indpb"},
		{"position indpb", func(s *model.RunSpec) { s.PositionINDPB = &nan }, "position_indpb"},
		{"workers", func(s *model.RunSpec) { s.Workers = -3 }, "workers"},
		{"checkpoint order", func(s *model.RunSpec) { s.CheckpointGenerations = []int{0, 10, 10} }, "checkpoint_generations[2]"},
		{"checkpoint range", func(s *model.RunSpec) { s.CheckpointGenerations = []int{0, 1001} }, "checkpoint_generations[1]"},
		{"overlap penalty", func(s *model.RunSpec) { s.OverlapPenalty = 10 }, "overlap_penalty"},
		{"bounds penalty", func(s *model.RunSpec) { s.BoundsPenalty = -1 }, "bounds_penalty"},
		{"selection", func(s *model.RunSpec) { s.Selection = "roulette" }, "selection"},
		{"tournament size", func(s *model.RunSpec) { s.TournamentSize = -1 }, "tournament_size"},
		{"elite count", func(s *model.RunSpec) { s.Selection = "elite"; s.EliteCount = 51 }, "elite_count"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			spec := ok()
			tt.edit(&spec)
			_, err := NewConfig(spec)
			if !perrors.Is(err, perrors.CodeInvalidConfig) {
				t.Fatalf("expected config error, got %v", err)
			}
			if got := perrors.FieldOf(err); got != tt.field {
				t.Fatalf("field = %q, want %q", got, tt.field)
			}
		})
	}
}

func TestNewConfigDefaults(t *testing.T) {
	spec := model.DefaultRunSpec()
	spec.Connections = append(spec.Connections, []int{1, 0}, []int{3, 1})
	cfg := mustConfig(t, spec)
	if cfg.Workers != 1 {
		t.Fatalf("workers = %d, want 1", cfg.Workers)
	}
	if cfg.PositionINDPB != cfg.INDPB {
		t.Fatalf("position indpb = %v, want %v", cfg.PositionINDPB, cfg.INDPB)
	}
	if cfg.Graph.Len() != 4 {
		t.Fatalf("duplicate connections kept: %v", cfg.Connections())
	}
	if !cfg.IsCheckpoint(0) || !cfg.IsCheckpoint(100) || cfg.IsCheckpoint(5) {
		t.Fatal("unexpected checkpoint membership")
	}
	if cfg.Selection != (Selection{Kind: SelectionTournament, TournamentSize: 3}) {
		t.Fatalf("selection = %+v", cfg.Selection)
	}

	elite := model.DefaultRunSpec()
	elite.Selection = SelectionElite
	if got := mustConfig(t, elite).Selection; got != (Selection{Kind: SelectionElite, EliteCount: 10}) {
		t.Fatalf("elite selection = %+v", got)
	}

	round := cfg.Spec()
	again := mustConfig(t, round)
	if again.Penalties != cfg.Penalties || again.Graph.Len() != cfg.Graph.Len() {
		t.Fatal("spec round trip changed the config")
	}
}

func TestConnectivityGraphNets(t *testing.T) {
	g, err := NewConnectivityGraph(6, [][]int{{0, 1}, {2, 1}, {4, 5}, {1, 0}})
	if err != nil {
		t.Fatalf("graph: %v", err)
	}
	if g.Len() != 3 {
		t.Fatalf("len = %d", g.Len())
	}
	nets := g.Nets()
	if len(nets) != 2 || len(nets[0]) != 3 || nets[0][0] != 0 || nets[1][0] != 4 {
		t.Fatalf("nets = %v", nets)
	}
	if c := g.Connections()[1]; c != (Connection{A: 1, B: 2}) {
		t.Fatalf("connection not normalised: %+v", c)
	}
}

func TestLabel(t *testing.T) {
	if got := (Component{ID: 0}).Label(); got != "C1" {
		t.Fatalf("label = %q", got)
	}
	if got := (Component{ID: 3, Name: "U4"}).Label(); got != "U4" {
		t.Fatalf("label = %q", got)
	}
}

func equalGenome(a, b Genome) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
