package dag

import "slices"

// Status is the lifecycle state of a roadmap item.
type Status string

const (
	StatusPlanning   Status = "planning"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
	StatusBlocked    Status = "blocked"
	StatusOnHold     Status = "on-hold"
)

// Statuses lists every valid status in display order.
var Statuses = []Status{StatusPlanning, StatusInProgress, StatusCompleted, StatusBlocked, StatusOnHold}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool { return slices.Contains(Statuses, s) }

// NodeType classifies a roadmap item by granularity.
type NodeType string

const (
	TypeProject   NodeType = "project"
	TypeEpic      NodeType = "epic"
	TypeFeature   NodeType = "feature"
	TypeTask      NodeType = "task"
	TypeMilestone NodeType = "milestone"
)

// NodeTypes lists every valid node type in display order.
var NodeTypes = []NodeType{TypeProject, TypeEpic, TypeFeature, TypeTask, TypeMilestone}

// Valid reports whether t is one of the known node types.
func (t NodeType) Valid() bool { return slices.Contains(NodeTypes, t) }

// DependencyType describes how the source of an edge relates to its target.
type DependencyType string

const (
	DependencyBlocks    DependencyType = "blocks"
	DependencyRequires  DependencyType = "requires"
	DependencyRelatesTo DependencyType = "relates-to"
)

// DependencyTypes lists every valid dependency type.
var DependencyTypes = []DependencyType{DependencyBlocks, DependencyRequires, DependencyRelatesTo}

// Valid reports whether t is one of the known dependency types.
func (t DependencyType) Valid() bool { return slices.Contains(DependencyTypes, t) }

// Strength is the optional weight of a dependency. The empty value means unset.
type Strength string

const (
	StrengthNone   Strength = ""
	StrengthWeak   Strength = "weak"
	StrengthMedium Strength = "medium"
	StrengthStrong Strength = "strong"
)

// Valid reports whether s is unset or one of the known strengths.
func (s Strength) Valid() bool {
	switch s {
	case StrengthNone, StrengthWeak, StrengthMedium, StrengthStrong:
		return true
	}
	return false
}

// Position is the top-left corner of a node's box in layout coordinates.
type Position struct {
	X float64
	Y float64
}

// NodeData carries the user-facing attributes of a roadmap item.
// Dates are kept as the ISO-8601 strings supplied by the caller.
type NodeData struct {
	Label       string
	Status      Status
	Owner       string
	Type        NodeType
	Progress    *int // 0-100, nil when not tracked
	StartDate   string
	EndDate     string
	Description string
}

// Node is a vertex of the roadmap graph.
//
// Position is nil until a layout has been applied or the caller placed the
// node. Row is the rank assigned by layering on a working copy and carries
// no meaning outside the layout engine.
type Node struct {
	ID       string
	Position *Position
	Data     NodeData
	Row      int
}

// EdgeData carries the metadata of a dependency edge.
type EdgeData struct {
	DependencyType DependencyType
	Strength       Strength
}

// Edge is a directed dependency: Source depends on or points to Target.
type Edge struct {
	ID     string
	Source string
	Target string
	Data   EdgeData
}

// IsSelfLoop reports whether the edge starts and ends at the same node.
func (e Edge) IsSelfLoop() bool { return e.Source == e.Target }

// Clone returns a deep copy of the node.
func (n Node) Clone() Node {
	if n.Position != nil {
		p := *n.Position
		n.Position = &p
	}
	if n.Data.Progress != nil {
		v := *n.Data.Progress
		n.Data.Progress = &v
	}
	return n
}

// IntPtr returns a pointer to v. It is handy for populating NodeData.Progress.
func IntPtr(v int) *int { return &v }
