package nexusflow

import (
	"fmt"
	"strings"
)

// Node is the build-time description of one pipeline module. Exactly
// one of Module (programmatic construction) or ClassName (declarative
// construction, resolved through the factory) must be set before the
// pipeline initializes.
type Node struct {
	Name      string
	Module    Module
	ClassName string
	Config    Config
}

// Edge is a directed connection between two nodes. Each unique
// (src,dst) pair materializes as exactly one channel.
type Edge struct {
	Src *Node
	Dst *Node
}

// Name returns the canonical channel name for this edge.
func (e Edge) Name() string {
	return e.Src.Name + " -> " + e.Dst.Name
}

// Graph holds the named topology: nodes plus directed edges. Duplicate
// (src,dst) pairs are kept in the adjacency (they count for in-degree)
// but collapse to one edge during enumeration. Iteration order is the
// insertion order of first appearance, which makes BFS deterministic.
type Graph struct {
	name  string
	nodes map[string]*Node
	order []string
	adj   map[string][]string
}

// NewGraph creates an empty graph with the given name.
func NewGraph(name string) *Graph {
	return &Graph{
		name:  name,
		nodes: map[string]*Node{},
		adj:   map[string][]string{},
	}
}

// Name returns the graph name.
func (g *Graph) Name() string { return g.name }

// SetName renames the graph.
func (g *Graph) SetName(name string) { g.name = name }

// IsEmpty reports whether the graph has no nodes.
func (g *Graph) IsEmpty() bool { return len(g.nodes) == 0 }

// Node returns the node registered under name, or nil.
func (g *Graph) Node(name string) *Node { return g.nodes[name] }

// AddNode registers a node that may not appear on any edge. Needed only
// for single-node graphs; AddEdge registers its endpoints itself.
func (g *Graph) AddNode(n *Node) {
	if n == nil {
		return
	}
	g.register(n)
}

// AddEdge adds a directed edge. A nil endpoint makes the call a no-op.
func (g *Graph) AddEdge(src, dst *Node) {
	if src == nil || dst == nil {
		return
	}
	g.register(src)
	g.register(dst)
	g.adj[src.Name] = append(g.adj[src.Name], dst.Name)
}

func (g *Graph) register(n *Node) {
	if _, ok := g.nodes[n.Name]; !ok {
		g.order = append(g.order, n.Name)
	}
	g.nodes[n.Name] = n
}

// HasCycle reports whether the graph contains a cycle. A self-loop is a
// cycle. The check is side-effect-free and deterministic.
func (g *Graph) HasCycle() bool {
	cyclic, _ := g.kahn("", false)
	return cyclic
}

// EdgeListBFS enumerates the unique edges in Kahn/BFS discovery order.
// Each distinct (src,dst) pair appears exactly once.
func (g *Graph) EdgeListBFS() []Edge {
	_, edges := g.kahn("", false)
	return edges
}

// EdgeListBFSFrom enumerates edges reachable from the given root. An
// unknown root yields an empty list.
func (g *Graph) EdgeListBFSFrom(root string) []Edge {
	if _, ok := g.nodes[root]; !ok {
		return nil
	}
	_, edges := g.kahn(root, true)
	return edges
}

// Validate checks the invariants required before a pipeline may start:
// a non-empty name, at least one node, and no cycle.
func (g *Graph) Validate() error {
	if g.name == "" {
		return fmt.Errorf("%w: graph name is empty", ErrInvalidConfig)
	}
	if g.IsEmpty() {
		return ErrEmptyGraph
	}
	if g.HasCycle() {
		return ErrCycle
	}
	return nil
}

// kahn runs Kahn's algorithm once, yielding cycle presence and the BFS
// edge list in the same pass. Multi-edges each decrement the
// destination's in-degree, but only the first occurrence per source is
// emitted.
func (g *Graph) kahn(root string, rooted bool) (bool, []Edge) {
	inDegree := make(map[string]int, len(g.nodes))
	for _, name := range g.order {
		inDegree[name] = 0
	}
	for _, name := range g.order {
		for _, dst := range g.adj[name] {
			inDegree[dst]++
		}
	}

	var queue []string
	if rooted {
		queue = append(queue, root)
		inDegree[root] = 0
	} else {
		for _, name := range g.order {
			if inDegree[name] == 0 {
				queue = append(queue, name)
			}
		}
	}

	var edges []Edge
	visited := 0
	for len(queue) > 0 {
		name := queue[0]
		queue = queue[1:]
		visited++

		seen := map[string]bool{}
		for _, dst := range g.adj[name] {
			inDegree[dst]--
			if inDegree[dst] == 0 {
				queue = append(queue, dst)
			}
			if !seen[dst] {
				seen[dst] = true
				edges = append(edges, Edge{Src: g.nodes[name], Dst: g.nodes[dst]})
			}
		}
	}

	return visited != len(g.nodes), edges
}

// String renders the graph as its BFS edge list, one edge per line.
func (g *Graph) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "[%s]: graph:\n", g.name)
	for _, edge := range g.EdgeListBFS() {
		fmt.Fprintf(&sb, "  %s\n", edge.Name())
	}
	return sb.String()
}
