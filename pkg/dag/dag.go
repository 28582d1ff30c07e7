package dag

import (
	"errors"
	"fmt"
	"maps"
	"slices"
)

var (
	// ErrInvalidNodeID is returned by [DAG.AddNode] when the node ID is empty.
	// All nodes must have non-empty identifiers.
	ErrInvalidNodeID = errors.New("node ID must not be empty")

	// ErrDuplicateNodeID is returned by [DAG.AddNode] when a node with the
	// same ID already exists in the graph. Node IDs must be unique.
	ErrDuplicateNodeID = errors.New("duplicate node ID")

	// ErrDuplicateEdgeID is returned by [DAG.AddEdge] when an edge with the
	// same ID already exists.
	ErrDuplicateEdgeID = errors.New("duplicate edge ID")

	// ErrUnknownSourceNode is returned by [DAG.AddEdge] when the Source node
	// does not exist in the graph.
	ErrUnknownSourceNode = errors.New("unknown source node")

	// ErrUnknownTargetNode is returned by [DAG.AddEdge] when the Target node
	// does not exist in the graph.
	ErrUnknownTargetNode = errors.New("unknown target node")

	// ErrUnknownNode is returned by node lookups and mutations for a missing ID.
	ErrUnknownNode = errors.New("unknown node")

	// ErrUnknownEdge is returned by edge lookups and mutations for a missing ID.
	ErrUnknownEdge = errors.New("unknown edge")

	// ErrInvalidStatus, ErrInvalidType, ErrInvalidDependency, ErrInvalidStrength
	// and ErrInvalidProgress report enum or range violations in node and edge data.
	ErrInvalidStatus     = errors.New("invalid status")
	ErrInvalidType       = errors.New("invalid node type")
	ErrInvalidDependency = errors.New("invalid dependency type")
	ErrInvalidStrength   = errors.New("invalid strength")
	ErrInvalidProgress   = errors.New("progress must be between 0 and 100")

	// ErrGraphHasCycle is returned by [DAG.Validate] when a cycle is detected.
	// Cycles are detected using depth-first search with white/gray/black coloring.
	ErrGraphHasCycle = errors.New("graph contains a cycle")
)

// DAG is the roadmap dependency graph. Despite the name it may contain
// cycles, self-loops and parallel edges; the analyzers report cycles rather
// than assume them away.
//
// Nodes are kept in insertion order and edges in insertion order. Both orders
// are observable: they decide root order and child order during traversal.
//
// The zero value is not usable - use New to create a valid DAG instance.
// DAG is not safe for concurrent use without external synchronization.
type DAG struct {
	nodes    map[string]*Node
	order    []string
	edges    []Edge
	edgeIdx  map[string]int
	outgoing map[string][]string // nodeID -> target IDs, one entry per edge
	incoming map[string][]string // nodeID -> source IDs, one entry per edge
	rows     map[int][]*Node     // row -> nodes in that row
}

// New creates an empty graph.
func New() *DAG {
	return &DAG{
		nodes:    make(map[string]*Node),
		edgeIdx:  make(map[string]int),
		outgoing: make(map[string][]string),
		incoming: make(map[string][]string),
		rows:     make(map[int][]*Node),
	}
}

// normalizeNode applies defaults and validates enum fields.
func normalizeNode(n *Node) error {
	if n.Data.Status == "" {
		n.Data.Status = StatusPlanning
	}
	if n.Data.Type == "" {
		n.Data.Type = TypeTask
	}
	if !n.Data.Status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, n.Data.Status)
	}
	if !n.Data.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidType, n.Data.Type)
	}
	if p := n.Data.Progress; p != nil && (*p < 0 || *p > 100) {
		return fmt.Errorf("%w: got %d", ErrInvalidProgress, *p)
	}
	return nil
}

func normalizeEdge(e *Edge) error {
	if e.Data.DependencyType == "" {
		e.Data.DependencyType = DependencyBlocks
	}
	if !e.Data.DependencyType.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidDependency, e.Data.DependencyType)
	}
	if !e.Data.Strength.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStrength, e.Data.Strength)
	}
	return nil
}

// AddNode adds a node to the graph.
// Returns ErrInvalidNodeID if the node ID is empty, ErrDuplicateNodeID
// if a node with the same ID already exists, or one of the ErrInvalid*
// errors if the node data is out of range. An empty status defaults to
// planning and an empty type to task.
func (d *DAG) AddNode(n Node) error {
	if n.ID == "" {
		return ErrInvalidNodeID
	}
	if _, exists := d.nodes[n.ID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateNodeID, n.ID)
	}
	if err := normalizeNode(&n); err != nil {
		return err
	}
	n = n.Clone()
	node := &n
	d.nodes[node.ID] = node
	d.order = append(d.order, node.ID)
	d.rows[node.Row] = append(d.rows[node.Row], node)
	return nil
}

// UpdateNode replaces the data and position of an existing node.
// The node keeps its place in insertion order and its edges.
func (d *DAG) UpdateNode(n Node) error {
	cur, ok := d.nodes[n.ID]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, n.ID)
	}
	if err := normalizeNode(&n); err != nil {
		return err
	}
	n = n.Clone()
	cur.Data = n.Data
	cur.Position = n.Position
	return nil
}

// SetPosition moves a node. Returns ErrUnknownNode if it does not exist.
func (d *DAG) SetPosition(id string, p Position) error {
	n, ok := d.nodes[id]
	if !ok {
		return fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	n.Position = &p
	return nil
}

// RemoveNode deletes a node together with every edge incident to it and
// returns the removed edges in insertion order.
func (d *DAG) RemoveNode(id string) ([]Edge, error) {
	if _, ok := d.nodes[id]; !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownNode, id)
	}
	var removed []Edge
	d.edges = slices.DeleteFunc(d.edges, func(e Edge) bool {
		if e.Source == id || e.Target == id {
			removed = append(removed, e)
			return true
		}
		return false
	})
	delete(d.nodes, id)
	d.order = slices.DeleteFunc(d.order, func(s string) bool { return s == id })
	d.reindex()
	d.rebuildRows()
	return removed, nil
}

// AddEdge adds a directed edge between two existing nodes.
// Returns ErrUnknownSourceNode if the Source node doesn't exist,
// ErrUnknownTargetNode if the Target node doesn't exist, or
// ErrDuplicateEdgeID if the ID is taken. An empty ID is replaced with
// one derived from the endpoints, and an empty dependency type defaults
// to blocks.
//
// Multiple edges between the same nodes and self-loops are allowed.
func (d *DAG) AddEdge(e Edge) error {
	if _, ok := d.nodes[e.Source]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownSourceNode, e.Source)
	}
	if _, ok := d.nodes[e.Target]; !ok {
		return fmt.Errorf("%w: %q", ErrUnknownTargetNode, e.Target)
	}
	if e.ID == "" {
		e.ID = d.derivedEdgeID(e)
	} else if _, exists := d.edgeIdx[e.ID]; exists {
		return fmt.Errorf("%w: %q", ErrDuplicateEdgeID, e.ID)
	}
	if err := normalizeEdge(&e); err != nil {
		return err
	}
	d.edgeIdx[e.ID] = len(d.edges)
	d.edges = append(d.edges, e)
	d.outgoing[e.Source] = append(d.outgoing[e.Source], e.Target)
	d.incoming[e.Target] = append(d.incoming[e.Target], e.Source)
	return nil
}

func (d *DAG) derivedEdgeID(e Edge) string {
	base := e.Source + "->" + e.Target
	id := base
	for i := 2; ; i++ {
		if _, taken := d.edgeIdx[id]; !taken {
			return id
		}
		id = fmt.Sprintf("%s#%d", base, i)
	}
}

// RemoveEdge deletes the edge with the given ID and returns it.
func (d *DAG) RemoveEdge(id string) (Edge, error) {
	i, ok := d.edgeIdx[id]
	if !ok {
		return Edge{}, fmt.Errorf("%w: %q", ErrUnknownEdge, id)
	}
	e := d.edges[i]
	d.edges = slices.Delete(d.edges, i, i+1)
	d.reindex()
	return e, nil
}

// reindex rebuilds the edge index and adjacency lists from the edge slice.
func (d *DAG) reindex() {
	d.edgeIdx = make(map[string]int, len(d.edges))
	d.outgoing = make(map[string][]string)
	d.incoming = make(map[string][]string)
	for i, e := range d.edges {
		d.edgeIdx[e.ID] = i
		d.outgoing[e.Source] = append(d.outgoing[e.Source], e.Target)
		d.incoming[e.Target] = append(d.incoming[e.Target], e.Source)
	}
}

// Nodes returns all nodes in insertion order. The returned slice contains
// pointers to the actual node structs, so modifications affect the graph
// (except for ID changes).
func (d *DAG) Nodes() []*Node {
	nodes := make([]*Node, len(d.order))
	for i, id := range d.order {
		nodes[i] = d.nodes[id]
	}
	return nodes
}

// NodeIDList returns all node IDs in insertion order.
func (d *DAG) NodeIDList() []string { return slices.Clone(d.order) }

// Edges returns a copy of all edges in the graph.
// The order matches insertion order. Modifications to the returned
// slice or its edge structs do not affect the graph.
func (d *DAG) Edges() []Edge { return slices.Clone(d.edges) }

// NodeCount returns the number of nodes in the graph.
func (d *DAG) NodeCount() int { return len(d.nodes) }

// EdgeCount returns the number of edges in the graph.
func (d *DAG) EdgeCount() int { return len(d.edges) }

// Children returns the target IDs of the node's outgoing edges in edge
// insertion order. Parallel edges produce repeated entries. The returned
// slice should not be modified.
func (d *DAG) Children(id string) []string { return d.outgoing[id] }

// Parents returns the source IDs of the node's incoming edges in edge
// insertion order. The returned slice should not be modified.
func (d *DAG) Parents(id string) []string { return d.incoming[id] }

// OutDegree returns the number of outgoing edges from the node.
// Returns 0 if the node doesn't exist.
func (d *DAG) OutDegree(id string) int { return len(d.outgoing[id]) }

// InDegree returns the number of incoming edges to the node.
// Returns 0 if the node doesn't exist.
func (d *DAG) InDegree(id string) int { return len(d.incoming[id]) }

// Node returns the node with the given ID and true, or nil and false if not found.
func (d *DAG) Node(id string) (*Node, bool) {
	n, ok := d.nodes[id]
	return n, ok
}

// Edge returns the edge with the given ID and true, or a zero edge and false.
func (d *DAG) Edge(id string) (Edge, bool) {
	i, ok := d.edgeIdx[id]
	if !ok {
		return Edge{}, false
	}
	return d.edges[i], true
}

// Sources returns nodes with no incoming edges (roots) in insertion order.
// A node with a self-loop is not a source. Returns nil for an empty graph.
func (d *DAG) Sources() []*Node {
	var sources []*Node
	for _, id := range d.order {
		if len(d.incoming[id]) == 0 {
			sources = append(sources, d.nodes[id])
		}
	}
	return sources
}

// Sinks returns nodes with no outgoing edges in insertion order.
func (d *DAG) Sinks() []*Node {
	var sinks []*Node
	for _, id := range d.order {
		if len(d.outgoing[id]) == 0 {
			sinks = append(sinks, d.nodes[id])
		}
	}
	return sinks
}

// SetRows updates the row assignments for nodes and rebuilds the row index.
// Nodes not present in the rows map retain their current row assignment.
// This is used by layer assignment on a layout working copy.
func (d *DAG) SetRows(rows map[string]int) {
	for _, n := range d.nodes {
		if newRow, ok := rows[n.ID]; ok {
			n.Row = newRow
		}
	}
	d.rebuildRows()
}

func (d *DAG) rebuildRows() {
	d.rows = make(map[int][]*Node)
	for _, id := range d.order {
		n := d.nodes[id]
		d.rows[n.Row] = append(d.rows[n.Row], n)
	}
}

// NodesInRow returns all nodes assigned to the given row in insertion order.
// Returns nil if the row is empty.
func (d *DAG) NodesInRow(row int) []*Node { return d.rows[row] }

// RowCount returns the number of distinct rows in the graph.
func (d *DAG) RowCount() int { return len(d.rows) }

// RowIDs returns all row indices in sorted ascending order.
func (d *DAG) RowIDs() []int {
	return slices.Sorted(maps.Keys(d.rows))
}

// MaxRow returns the highest row index, or 0 if the graph is empty.
func (d *DAG) MaxRow() int {
	if len(d.rows) == 0 {
		return 0
	}
	rowIDs := d.RowIDs()
	return rowIDs[len(rowIDs)-1]
}

// Clone returns a deep copy of the graph. Mutating the clone never affects
// the original.
func (d *DAG) Clone() *DAG {
	c := New()
	c.order = slices.Clone(d.order)
	for id, n := range d.nodes {
		cp := n.Clone()
		c.nodes[id] = &cp
	}
	c.edges = slices.Clone(d.edges)
	c.reindex()
	c.rebuildRows()
	return c
}

// Validate returns ErrGraphHasCycle if the graph contains a directed cycle,
// nil otherwise. Self-loops count as cycles.
//
// Cycle detection runs in O(N+E) time using depth-first search.
func (d *DAG) Validate() error {
	if !d.IsAcyclic() {
		return ErrGraphHasCycle
	}
	return nil
}

// IsAcyclic reports whether the graph has no directed cycle.
func (d *DAG) IsAcyclic() bool {
	const (
		white = iota
		gray
		black
	)

	color := make(map[string]int, len(d.nodes))
	var hasCycle bool

	var dfs func(id string)
	dfs = func(id string) {
		color[id] = gray
		for _, child := range d.outgoing[id] {
			switch color[child] {
			case white:
				dfs(child)
			case gray:
				hasCycle = true
			}
			if hasCycle {
				return
			}
		}
		color[id] = black
	}

	for _, id := range d.order {
		if color[id] == white {
			dfs(id)
			if hasCycle {
				return false
			}
		}
	}
	return true
}

// PosMap creates a position lookup map from a slice of node IDs.
// The returned map maps each ID to its index in the slice.
func PosMap(ids []string) map[string]int {
	m := make(map[string]int, len(ids))
	for i, id := range ids {
		m[id] = i
	}
	return m
}

// NodeIDs extracts the ID from each node in a slice.
// Returns a new slice containing the IDs in the same order as the input.
func NodeIDs(nodes []*Node) []string {
	ids := make([]string, len(nodes))
	for i, n := range nodes {
		ids[i] = n.ID
	}
	return ids
}
