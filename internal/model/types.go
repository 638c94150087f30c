package model

import "time"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// ComponentSpec is the serialised form of one catalog entry.
type ComponentSpec struct {
	Name   string `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	Width  int    `json:"width" yaml:"width" toml:"width"`
	Height int    `json:"height" yaml:"height" toml:"height"`
}

// RunSpec is the loosely typed configuration record exchanged with files and
// stores. It becomes a validated placement.Config through placement.NewConfig.
type RunSpec struct {
	Name                  string          `json:"name,omitempty" yaml:"name,omitempty" toml:"name,omitempty"`
	BoardWidth            int             `json:"board_width" yaml:"board_width" toml:"board_width"`
	BoardHeight           int             `json:"board_height" yaml:"board_height" toml:"board_height"`
	PopulationSize        int             `json:"population_size" yaml:"population_size" toml:"population_size"`
	Generations           int             `json:"generations" yaml:"generations" toml:"generations"`
	CXPB                  float64         `json:"cxpb" yaml:"cxpb" toml:"cxpb"`
	MUTPB                 float64         `json:"mutpb" yaml:"mutpb" toml:"mutpb"`
	INDPB                 float64         `json:"indpb" yaml:"indpb" toml:"indpb"`
	PositionINDPB         *float64        `json:"position_indpb,omitempty" yaml:"position_indpb,omitempty" toml:"position_indpb,omitempty"`
	Seed                  int64           `json:"seed" yaml:"seed" toml:"seed"`
	Selection             string          `json:"selection,omitempty" yaml:"selection,omitempty" toml:"selection,omitempty"`
	TournamentSize        int             `json:"tournament_size,omitempty" yaml:"tournament_size,omitempty" toml:"tournament_size,omitempty"`
	EliteCount            int             `json:"elite_count,omitempty" yaml:"elite_count,omitempty" toml:"elite_count,omitempty"`
	Workers               int             `json:"workers,omitempty" yaml:"workers,omitempty" toml:"workers,omitempty"`
	OverlapPenalty        float64         `json:"overlap_penalty,omitempty" yaml:"overlap_penalty,omitempty" toml:"overlap_penalty,omitempty"`
	BoundsPenalty         float64         `json:"bounds_penalty,omitempty" yaml:"bounds_penalty,omitempty" toml:"bounds_penalty,omitempty"`
	CheckpointGenerations []int           `json:"checkpoint_generations" yaml:"checkpoint_generations" toml:"checkpoint_generations"`
	Components            []ComponentSpec `json:"components" yaml:"components" toml:"components"`
	Connections           [][]int         `json:"connections" yaml:"connections" toml:"connections"`
}

// Clone returns a deep copy so stored specs never alias caller slices.
func (s RunSpec) Clone() RunSpec {
	out := s
	if s.PositionINDPB != nil {
		v := *s.PositionINDPB
		out.PositionINDPB = &v
	}
	out.CheckpointGenerations = append([]int(nil), s.CheckpointGenerations...)
	out.Components = append([]ComponentSpec(nil), s.Components...)
	if s.Connections != nil {
		out.Connections = make([][]int, len(s.Connections))
		for i, pair := range s.Connections {
			out.Connections[i] = append([]int(nil), pair...)
		}
	}
	return out
}

// DefaultRunSpec returns the stock configuration used when a new record is
// created without explicit content.
func DefaultRunSpec() RunSpec {
	steps := make([]int, 0, 11)
	for g := 0; g <= 100; g += 10 {
		steps = append(steps, g)
	}
	return RunSpec{
		BoardWidth:            20,
		BoardHeight:           20,
		PopulationSize:        50,
		Generations:           1000,
		CXPB:                  0.7,
		MUTPB:                 0.2,
		INDPB:                 0.2,
		Seed:                  42,
		CheckpointGenerations: steps,
		Components: []ComponentSpec{
			{Width: 1, Height: 1},
			{Width: 7, Height: 2},
			{Width: 8, Height: 9},
			{Width: 2, Height: 3},
		},
		Connections: [][]int{{0, 1}, {0, 3}, {1, 3}, {1, 2}},
	}
}

// ConfigRecord is a named, persisted RunSpec.
type ConfigRecord struct {
	VersionedRecord
	Name      string    `json:"name"`
	Spec      RunSpec   `json:"spec"`
	UpdatedAt time.Time `json:"updated_at"`
}

// CheckpointRecord is a persisted checkpoint snapshot.
type CheckpointRecord struct {
	Generation int     `json:"generation" csv:"generation"`
	Fitness    float64 `json:"fitness" csv:"fitness"`
	Genome     []int   `json:"genome" csv:"-"`
}

// GenerationDiagnostics summarises one evaluated population.
type GenerationDiagnostics struct {
	Generation    int     `json:"generation" csv:"generation"`
	BestFitness   float64 `json:"best_fitness" csv:"best_fitness"`
	MeanFitness   float64 `json:"mean_fitness" csv:"mean_fitness"`
	StdDevFitness float64 `json:"stddev_fitness" csv:"stddev_fitness"`
	WorstFitness  float64 `json:"worst_fitness" csv:"worst_fitness"`
	FeasibleCount int     `json:"feasible_count" csv:"feasible_count"`
	Evaluations   int     `json:"evaluations" csv:"evaluations"`
}

// RunRecord is the persisted outcome of one evolutionary run.
type RunRecord struct {
	VersionedRecord
	ID             string                  `json:"id"`
	ConfigName     string                  `json:"config_name,omitempty"`
	Spec           RunSpec                 `json:"spec"`
	CreatedAt      time.Time               `json:"created_at"`
	FitnessHistory []float64               `json:"fitness_history"`
	Checkpoints    []CheckpointRecord      `json:"checkpoints"`
	BestGenome     []int                   `json:"best_genome"`
	BestFitness    float64                 `json:"best_fitness"`
	Diagnostics    []GenerationDiagnostics `json:"diagnostics,omitempty"`
	Evaluations    int                     `json:"evaluations"`
}
