// Package events publishes roadmap editing events.
//
// The editor emits one event per successful mutation. A [Publisher] decides
// where they go: NATS subjects for other services ([NATSPublisher]), the
// in-process [Broker] that feeds the HTTP server's SSE stream, both at once
// ([Multi]), or nowhere ([NoopPublisher]).
package events

import (
	"context"

	"github.com/matzehuels/roadmap/pkg/graph"
)

// Event topic constants
const (
	TopicNodeAdded      = "roadmap.node.added"
	TopicNodeUpdated    = "roadmap.node.updated"
	TopicNodeDeleted    = "roadmap.node.deleted"
	TopicEdgeAdded      = "roadmap.edge.added"
	TopicEdgeDeleted    = "roadmap.edge.deleted"
	TopicLayoutApplied  = "roadmap.layout.applied"
	TopicHistoryUndo    = "roadmap.history.undo"
	TopicHistoryRedo    = "roadmap.history.redo"
	TopicGraphReloaded  = "roadmap.graph.reloaded"
	TopicMetricsUpdated = "roadmap.metrics.updated"
)

// TopicAll matches every roadmap topic in NATS wildcard syntax.
const TopicAll = "roadmap.>"

// Event types

type NodeAdded struct {
	Node graph.Node `json:"node"`
}

type NodeUpdated struct {
	Node graph.Node `json:"node"`
}

type NodeDeleted struct {
	NodeID       string   `json:"nodeId"`
	RemovedEdges []string `json:"removedEdges,omitempty"` // incident edges deleted with the node
}

type EdgeAdded struct {
	Edge graph.Edge `json:"edge"`
}

type EdgeDeleted struct {
	EdgeID string `json:"edgeId"`
}

type LayoutApplied struct {
	Algorithm string `json:"algorithm"`
	Nodes     int    `json:"nodes"`
}

// HistoryMoved is sent for both undo and redo; the topic tells them apart.
type HistoryMoved struct {
	Label   string `json:"label"`
	CanUndo bool   `json:"canUndo"`
	CanRedo bool   `json:"canRedo"`
}

type GraphReloaded struct {
	Source string `json:"source,omitempty"`
	Nodes  int    `json:"nodes"`
	Edges  int    `json:"edges"`
}

type MetricsUpdated struct {
	Metrics graph.Metrics `json:"metrics"`
}

// Publisher is the interface for emitting events.
type Publisher interface {
	Publish(ctx context.Context, topic string, event any) error
	Close() error
}
