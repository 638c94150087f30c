package placement

import (
	"math/rand"

	perrors "gaplace/internal/errors"
)

// GenerateIndividual draws a random genome that places every component inside
// the board when its footprint fits. An axis whose footprint is larger than the
// board collapses to coordinate 0.
func GenerateIndividual(cfg *Config, rng *rand.Rand) Genome {
	g := make(Genome, cfg.GenomeLen())
	for i, comp := range cfg.Catalog {
		rotated := rng.Intn(2)
		w, h := comp.Footprint(rotated == 1)
		base := i * GenesPerComponent
		g[base+GeneRotation] = rotated
		g[base+GeneX] = drawCoordinate(rng, cfg.Board.Width-w)
		g[base+GeneY] = drawCoordinate(rng, cfg.Board.Height-h)
	}
	return g
}

// drawCoordinate returns a uniform value on [0, max], or 0 when max < 0.
func drawCoordinate(rng *rand.Rand, max int) int {
	if max <= 0 {
		return 0
	}
	return rng.Intn(max + 1)
}

// Decode turns a genome into placements in catalog order.
func Decode(cfg *Config, g Genome) ([]Placement, error) {
	if want := cfg.GenomeLen(); len(g) != want {
		return nil, perrors.GeometryInvariant("genome length %d, want %d", len(g), want)
	}
	out := make([]Placement, len(cfg.Catalog))
	for i, comp := range cfg.Catalog {
		base := i * GenesPerComponent
		x, y, rot := g[base+GeneX], g[base+GeneY], g[base+GeneRotation]
		if rot != 0 && rot != 1 {
			return nil, perrors.GeometryInvariant("component %d: rotation gene %d is not 0 or 1", i, rot)
		}
		if x < 0 || y < 0 {
			return nil, perrors.GeometryInvariant("component %d: negative position (%d,%d)", i, x, y)
		}
		w, h := comp.Footprint(rot == 1)
		out[i] = Placement{ComponentID: comp.ID, X: x, Y: y, Rotated: rot == 1, Width: w, Height: h}
	}
	return out, nil
}

// Encode is the inverse of Decode. Placements are written in the order given,
// which must be catalog order.
func Encode(placements []Placement) Genome {
	g := make(Genome, len(placements)*GenesPerComponent)
	for i, p := range placements {
		base := i * GenesPerComponent
		g[base+GeneX] = p.X
		g[base+GeneY] = p.Y
		if p.Rotated {
			g[base+GeneRotation] = 1
		}
	}
	return g
}
