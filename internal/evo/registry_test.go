package evo

import (
	"errors"
	"math/rand"
	"testing"

	"gaplace/internal/placement"
)

// zeroX pins every x gene to zero.
type zeroX struct{}

func (zeroX) Name() string { return "zero_x" }

func (zeroX) Mutate(g placement.Genome, _ *rand.Rand) bool {
	changed := false
	for i := placement.GeneX; i < len(g); i += placement.GenesPerComponent {
		if g[i] != 0 {
			g[i] = 0
			changed = true
		}
	}
	return changed
}

func TestRegisterOperatorDuplicate(t *testing.T) {
	tb := &Toolbox{}
	if err := tb.Register(zeroX{}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := tb.Register(zeroX{}); !errors.Is(err, ErrOperatorExists) {
		t.Fatalf("expected ErrOperatorExists, got %v", err)
	}
	if err := tb.Register(nil); err == nil {
		t.Fatal("expected error for nil mutator")
	}
}

func TestResolveOperatorNotFound(t *testing.T) {
	tb := NewToolbox(testConfig(t, 4, 2))
	if _, err := tb.Get("zero_x"); !errors.Is(err, ErrOperatorNotFound) {
		t.Fatalf("expected ErrOperatorNotFound, got %v", err)
	}
}

func TestReplaceMutatorChain(t *testing.T) {
	tb := NewToolbox(testConfig(t, 4, 2))
	if err := tb.Replace(zeroX{}, RotationFlip{P: 0}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	names := tb.Names()
	if len(names) != 2 || names[0] != "zero_x" || names[1] != "rotation_flip" {
		t.Fatalf("chain = %v", names)
	}
	if _, err := tb.Get("position_resample"); err == nil {
		t.Fatal("replaced mutator still resolvable")
	}
	if err := tb.Replace(zeroX{}, zeroX{}); !errors.Is(err, ErrOperatorExists) {
		t.Fatalf("expected duplicate error, got %v", err)
	}

	g := placement.Genome{3, 4, 1, 5, 6, 0}
	if !tb.mutate(g, rand.New(rand.NewSource(1))) {
		t.Fatal("expected a change")
	}
	if g[0] != 0 || g[3] != 0 || g[1] != 4 || g[2] != 1 {
		t.Fatalf("unexpected genome %v", g)
	}
	if tb.mutate(g, rand.New(rand.NewSource(1))) {
		t.Fatal("second pass should change nothing")
	}
}

func TestWithMutatorsRejectsDuplicates(t *testing.T) {
	if _, err := NewEngine(testConfig(t, 4, 2), WithMutators(zeroX{}, zeroX{})); !errors.Is(err, ErrOperatorExists) {
		t.Fatalf("expected duplicate error, got %v", err)
	}
}
