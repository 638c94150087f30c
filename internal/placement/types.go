// Package placement holds the board geometry core: the component catalog,
// the connectivity graph, validated run configuration, genome encoding and the
// fitness function.
package placement

import "strconv"

// GenesPerComponent is the number of genome entries per component: x, y, rotated.
const GenesPerComponent = 3

// Gene offsets inside one component triple.
const (
	GeneX = iota
	GeneY
	GeneRotation
)

type Board struct {
	Width  int
	Height int
}

// Component is immutable catalog data. Rotation never lives here.
type Component struct {
	ID     int
	Name   string
	Width  int
	Height int
}

// Footprint returns the effective size for the given rotation.
func (c Component) Footprint(rotated bool) (w, h int) {
	if rotated {
		return c.Height, c.Width
	}
	return c.Width, c.Height
}

// Label is the display label used by renderers: the name when set, otherwise
// a 1-based "C<n>".
func (c Component) Label() string {
	if c.Name != "" {
		return c.Name
	}
	return "C" + strconv.Itoa(c.ID+1)
}

type Catalog []Component

// Placement is one decoded component position. Width and Height are the
// effective footprint derived from the rotation bit.
type Placement struct {
	ComponentID int
	X           int
	Y           int
	Rotated     bool
	Width       int
	Height      int
}

// Size returns the effective footprint.
func (p Placement) Size() (int, int) { return p.Width, p.Height }

func (p Placement) Right() int  { return p.X + p.Width }
func (p Placement) Bottom() int { return p.Y + p.Height }

func (p Placement) Center() (float64, float64) {
	return float64(p.X) + float64(p.Width)/2, float64(p.Y) + float64(p.Height)/2
}

// Connection is an unordered component pair stored with A < B.
type Connection struct {
	A int
	B int
}

// Genome is the flat (x, y, rotated) encoding of a layout in catalog order.
type Genome []int

func (g Genome) Clone() Genome {
	return append(Genome(nil), g...)
}

// IsPositionGene reports whether index i holds an x or y coordinate.
func IsPositionGene(i int) bool {
	return i%GenesPerComponent != GeneRotation
}
