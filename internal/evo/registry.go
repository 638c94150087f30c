package evo

import (
	"errors"
	"fmt"
	"math/rand"

	"gaplace/internal/placement"
)

var (
	ErrOperatorExists   = errors.New("operator already registered")
	ErrOperatorNotFound = errors.New("operator not found")
)

// CrossoverFunc recombines two parents into two children without touching them.
type CrossoverFunc func(a, b placement.Genome, rng *rand.Rand) (placement.Genome, placement.Genome)

// Toolbox is the operator set of one Engine. Mutators run in registration
// order. Each Engine owns its own Toolbox; nothing is shared between runs.
type Toolbox struct {
	Selector  Selector
	Crossover CrossoverFunc
	mutators  []Mutator
	byName    map[string]Mutator
}

// NewToolbox returns the standard operators for cfg: the configured selector,
// two-point crossover, then rotation flip before position resampling.
func NewToolbox(cfg *placement.Config) *Toolbox {
	t := &Toolbox{
		Selector:  SelectorFor(cfg.Selection),
		Crossover: Crossover,
		byName:    make(map[string]Mutator),
	}
	_ = t.Register(RotationFlip{P: cfg.INDPB})
	_ = t.Register(PositionResample{Board: cfg.Board, P: cfg.PositionINDPB})
	return t
}

// Register appends a mutator to the chain.
func (t *Toolbox) Register(m Mutator) error {
	if m == nil {
		return errors.New("mutator is required")
	}
	if t.byName == nil {
		t.byName = make(map[string]Mutator)
	}
	if _, exists := t.byName[m.Name()]; exists {
		return fmt.Errorf("%w: %s", ErrOperatorExists, m.Name())
	}
	t.byName[m.Name()] = m
	t.mutators = append(t.mutators, m)
	return nil
}

// Replace drops the current mutator chain and registers ms in order.
func (t *Toolbox) Replace(ms ...Mutator) error {
	t.mutators = nil
	t.byName = make(map[string]Mutator, len(ms))
	for _, m := range ms {
		if err := t.Register(m); err != nil {
			return err
		}
	}
	return nil
}

func (t *Toolbox) Get(name string) (Mutator, error) {
	m, ok := t.byName[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrOperatorNotFound, name)
	}
	return m, nil
}

// Names lists the mutator chain in execution order.
func (t *Toolbox) Names() []string {
	names := make([]string, 0, len(t.mutators))
	for _, m := range t.mutators {
		names = append(names, m.Name())
	}
	return names
}

// mutate applies the chain to g and reports whether anything changed.
func (t *Toolbox) mutate(g placement.Genome, rng *rand.Rand) bool {
	changed := false
	for _, m := range t.mutators {
		if m.Mutate(g, rng) {
			changed = true
		}
	}
	return changed
}
