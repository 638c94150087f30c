package placement

import (
	"fmt"
	"sort"

	"gonum.org/v1/gonum/graph/simple"
	"gonum.org/v1/gonum/graph/topo"

	perrors "gaplace/internal/errors"
)

// ConnectivityGraph is the set of component pairs that must be wired. The
// ordered edge list fixes the wirelength summation order so evaluation stays
// bit-for-bit reproducible; the gonum graph backs set semantics and net queries.
type ConnectivityGraph struct {
	n     int
	edges []Connection
	g     *simple.UndirectedGraph
}

// NewConnectivityGraph builds the graph for n components from raw index pairs.
// Pairs repeated in either direction collapse to their first occurrence.
func NewConnectivityGraph(n int, pairs [][]int) (*ConnectivityGraph, error) {
	g := simple.NewUndirectedGraph()
	for i := 0; i < n; i++ {
		g.AddNode(simple.Node(int64(i)))
	}

	cg := &ConnectivityGraph{n: n, g: g, edges: make([]Connection, 0, len(pairs))}
	for i, pair := range pairs {
		field := fmt.Sprintf("connections[%d]", i)
		if len(pair) != 2 {
			return nil, perrors.InvalidConfig(field, "expected a pair of component ids, got %d values", len(pair))
		}
		a, b := pair[0], pair[1]
		if a < 0 || a >= n || b < 0 || b >= n {
			return nil, perrors.InvalidConfig(field, "component id out of range [0,%d): (%d,%d)", n, a, b)
		}
		if a == b {
			return nil, perrors.InvalidConfig(field, "component %d cannot connect to itself", a)
		}
		if a > b {
			a, b = b, a
		}
		if g.HasEdgeBetween(int64(a), int64(b)) {
			continue
		}
		g.SetEdge(g.NewEdge(simple.Node(int64(a)), simple.Node(int64(b))))
		cg.edges = append(cg.edges, Connection{A: a, B: b})
	}
	return cg, nil
}

// Len returns the number of distinct connections.
func (c *ConnectivityGraph) Len() int {
	if c == nil {
		return 0
	}
	return len(c.edges)
}

// Connections returns the connections in first-seen order.
func (c *ConnectivityGraph) Connections() []Connection {
	if c == nil {
		return nil
	}
	return append([]Connection(nil), c.edges...)
}

// Nets returns the groups of mutually reachable components that have at least
// one connection, each sorted, ordered by their smallest member.
func (c *ConnectivityGraph) Nets() [][]int {
	if c == nil || len(c.edges) == 0 {
		return nil
	}
	var nets [][]int
	for _, comp := range topo.ConnectedComponents(c.g) {
		if len(comp) < 2 {
			continue
		}
		ids := make([]int, 0, len(comp))
		for _, node := range comp {
			ids = append(ids, int(node.ID()))
		}
		sort.Ints(ids)
		nets = append(nets, ids)
	}
	sort.Slice(nets, func(i, j int) bool { return nets[i][0] < nets[j][0] })
	return nets
}

// Pairs returns the connections in the raw [][]int form used by RunSpec.
func (c *ConnectivityGraph) Pairs() [][]int {
	if c == nil {
		return nil
	}
	out := make([][]int, 0, len(c.edges))
	for _, e := range c.edges {
		out = append(out, []int{e.A, e.B})
	}
	return out
}
