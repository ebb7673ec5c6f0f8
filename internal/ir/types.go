package ir

import (
	"fmt"
	"strconv"
	"strings"
)

// Reserved boundary node types. They form the puzzle's external interface.
const (
	TypeConnectionInput  = "connection-input"
	TypeConnectionOutput = "connection-output"
)

// NodeID identifies a node instance within a board.
type NodeID string

// Side selects the input or output half of a node's ports.
type Side int

const (
	SideInput Side = iota
	SideOutput
)

func (s Side) String() string {
	switch s {
	case SideInput:
		return "input"
	case SideOutput:
		return "output"
	default:
		return fmt.Sprintf("Side(%d)", int(s))
	}
}

// PortRef addresses one port of one node.
type PortRef struct {
	NodeID NodeID `json:"node_id"`
	Port   int    `json:"port"`
	Side   Side   `json:"side"`
}

// In returns a reference to an input port.
func In(id NodeID, port int) PortRef {
	return PortRef{NodeID: id, Port: port, Side: SideInput}
}

// Out returns a reference to an output port.
func Out(id NodeID, port int) PortRef {
	return PortRef{NodeID: id, Port: port, Side: SideOutput}
}

func (p PortRef) String() string {
	return fmt.Sprintf("%s:%d(%s)", p.NodeID, p.Port, p.Side)
}

// Wire is a directed edge from an output port to an input port.
type Wire struct {
	ID     string  `json:"id"`
	Source PortRef `json:"source"`
	Target PortRef `json:"target"`
}

// NodeInstance is one placed node on a board.
//
// InputCount and OutputCount may exceed the definition's declared ports for
// variadic types (mix, split). Zero means "use the definition's count".
// BoundaryIndex is only meaningful for connection-input/connection-output;
// nil means not assigned yet.
type NodeInstance struct {
	ID            NodeID             `json:"id"`
	Type          string             `json:"type"`
	Params        map[string]float64 `json:"params,omitempty"`
	InputCount    int                `json:"input_count,omitempty"`
	OutputCount   int                `json:"output_count,omitempty"`
	BoundaryIndex *int               `json:"boundary_index,omitempty"`
}

// At returns a BoundaryIndex holding i.
func At(i int) *int {
	return &i
}

// Boundary returns the node's boundary index and whether one is assigned.
func (n *NodeInstance) Boundary() (int, bool) {
	if n.BoundaryIndex == nil {
		return 0, false
	}
	return *n.BoundaryIndex, true
}

// IsBoundaryInput reports whether the node is a connection-input.
func (n *NodeInstance) IsBoundaryInput() bool {
	return n.Type == TypeConnectionInput
}

// IsBoundaryOutput reports whether the node is a connection-output.
func (n *NodeInstance) IsBoundaryOutput() bool {
	return n.Type == TypeConnectionOutput
}

// PortConstants maps "nodeId:portIndex" to a literal input value.
type PortConstants map[string]float64

// ConstantKey builds the PortConstants key for an input port.
func ConstantKey(id NodeID, port int) string {
	return string(id) + ":" + strconv.Itoa(port)
}

// ParseConstantKey splits a "nodeId:portIndex" key.
// The node id may itself contain colons; the port is after the last one.
func ParseConstantKey(key string) (NodeID, int, error) {
	i := strings.LastIndexByte(key, ':')
	if i <= 0 || i == len(key)-1 {
		return "", 0, fmt.Errorf("malformed port key %q: expected \"nodeId:portIndex\"", key)
	}
	port, err := strconv.Atoi(key[i+1:])
	if err != nil || port < 0 {
		return "", 0, fmt.Errorf("malformed port key %q: port must be a non-negative integer", key)
	}
	return NodeID(key[:i]), port, nil
}

// Board is a complete graph snapshot handed to the engine.
type Board struct {
	Name      string          `json:"name,omitempty"`
	Nodes     []*NodeInstance `json:"nodes"`
	Wires     []Wire          `json:"wires"`
	Constants PortConstants   `json:"constants,omitempty"`
}

// Node returns the node with the given id.
func (b *Board) Node(id NodeID) (*NodeInstance, bool) {
	i := b.Index(id)
	if i < 0 {
		return nil, false
	}
	return b.Nodes[i], true
}

// Index returns the insertion position of a node, or -1.
func (b *Board) Index(id NodeID) int {
	for i, n := range b.Nodes {
		if n.ID == id {
			return i
		}
	}
	return -1
}

// InputNodes returns connection-input nodes in insertion order.
func (b *Board) InputNodes() []*NodeInstance {
	var out []*NodeInstance
	for _, n := range b.Nodes {
		if n.IsBoundaryInput() {
			out = append(out, n)
		}
	}
	return out
}

// OutputNodes returns connection-output nodes in insertion order.
func (b *Board) OutputNodes() []*NodeInstance {
	var out []*NodeInstance
	for _, n := range b.Nodes {
		if n.IsBoundaryOutput() {
			out = append(out, n)
		}
	}
	return out
}

// AssignBoundaryIndices gives every boundary node without an index the
// next free dense index for its direction, in insertion order. Explicit
// indices are left alone.
func AssignBoundaryIndices(b *Board) {
	assign(b.InputNodes())
	assign(b.OutputNodes())
}

func assign(nodes []*NodeInstance) {
	used := make(map[int]bool, len(nodes))
	for _, n := range nodes {
		if i, ok := n.Boundary(); ok {
			used[i] = true
		}
	}
	next := 0
	for _, n := range nodes {
		if n.BoundaryIndex != nil {
			continue
		}
		for used[next] {
			next++
		}
		n.BoundaryIndex = At(next)
		used[next] = true
	}
}
