package engine

import (
	"errors"
	"fmt"
	"strings"

	"github.com/roach88/chipwire/internal/ir"
)

// ErrorCode categorizes evaluation errors.
type ErrorCode string

const (
	// ErrCodeUnknownNodeType indicates a node's type is not registered.
	ErrCodeUnknownNodeType ErrorCode = "UNKNOWN_NODE_TYPE"

	// ErrCodeDuplicateNodeID indicates two nodes share an id.
	ErrCodeDuplicateNodeID ErrorCode = "DUPLICATE_NODE_ID"

	// ErrCodeInvalidArity indicates a node declares fewer ports than its
	// type needs, or more than a fixed-arity type allows.
	ErrCodeInvalidArity ErrorCode = "INVALID_ARITY"

	// ErrCodeInvalidPortReference indicates a wire or constant addresses a
	// missing node or a port index outside the node's declared count.
	ErrCodeInvalidPortReference ErrorCode = "INVALID_PORT_REFERENCE"

	// ErrCodeCombinationalCycle indicates a loop with no sequential node in it.
	ErrCodeCombinationalCycle ErrorCode = "COMBINATIONAL_CYCLE"

	// ErrCodeInvalidBoundary indicates boundary indices are missing,
	// duplicated or not dense.
	ErrCodeInvalidBoundary ErrorCode = "INVALID_BOUNDARY"
)

// EvalError is a terminal failure detected before any tick runs.
//
// Only the fields relevant to Code are set:
//   - UNKNOWN_NODE_TYPE: NodeID, Type
//   - DUPLICATE_NODE_ID: NodeID
//   - INVALID_ARITY: NodeID, Type
//   - INVALID_PORT_REFERENCE: WireID or ConstantKey, NodeID, PortIndex
//   - COMBINATIONAL_CYCLE: NodeIDs (all unresolved), Loops (each actual loop)
//   - INVALID_BOUNDARY: NodeID
type EvalError struct {
	Code    ErrorCode
	Message string

	NodeID      ir.NodeID
	Type        string
	WireID      string
	ConstantKey string
	PortIndex   int

	NodeIDs []ir.NodeID
	Loops   [][]ir.NodeID
}

// Error implements the error interface.
func (e *EvalError) Error() string {
	switch {
	case e.Code == ErrCodeCombinationalCycle:
		return fmt.Sprintf("%s: %s (nodes=%s)", e.Code, e.Message, joinIDs(e.NodeIDs))
	case e.WireID != "":
		return fmt.Sprintf("%s: %s (wire=%s, node=%s)", e.Code, e.Message, e.WireID, e.NodeID)
	case e.ConstantKey != "":
		return fmt.Sprintf("%s: %s (constant=%s)", e.Code, e.Message, e.ConstantKey)
	case e.NodeID != "":
		return fmt.Sprintf("%s: %s (node=%s)", e.Code, e.Message, e.NodeID)
	default:
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
}

func joinIDs(ids []ir.NodeID) string {
	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = string(id)
	}
	return strings.Join(parts, ",")
}

// CodeOf returns the error code of an *EvalError anywhere in err's chain,
// or "" when err is not an evaluation error.
func CodeOf(err error) ErrorCode {
	var ee *EvalError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return ""
}

// IsCycleError reports whether err is a combinational cycle error.
func IsCycleError(err error) bool {
	return CodeOf(err) == ErrCodeCombinationalCycle
}

// IsUnknownTypeError reports whether err is an unknown node type error.
func IsUnknownTypeError(err error) bool {
	return CodeOf(err) == ErrCodeUnknownNodeType
}

// IsPortReferenceError reports whether err is an invalid port reference error.
func IsPortReferenceError(err error) bool {
	return CodeOf(err) == ErrCodeInvalidPortReference
}

// NewUnknownTypeError creates an EvalError for a registry miss.
func NewUnknownTypeError(nodeID ir.NodeID, typ string) *EvalError {
	return &EvalError{
		Code:    ErrCodeUnknownNodeType,
		Message: fmt.Sprintf("node type %q is not registered", typ),
		NodeID:  nodeID,
		Type:    typ,
	}
}

// NewDuplicateNodeError creates an EvalError for a reused node id.
func NewDuplicateNodeError(nodeID ir.NodeID) *EvalError {
	return &EvalError{
		Code:    ErrCodeDuplicateNodeID,
		Message: fmt.Sprintf("node id %q is used more than once", nodeID),
		NodeID:  nodeID,
	}
}

// NewArityError creates an EvalError for a port count the type cannot take.
func NewArityError(nodeID ir.NodeID, typ, reason string) *EvalError {
	return &EvalError{
		Code:    ErrCodeInvalidArity,
		Message: reason,
		NodeID:  nodeID,
		Type:    typ,
	}
}

// NewWirePortError creates an EvalError for a wire endpoint that does not exist.
func NewWirePortError(wireID string, ref ir.PortRef, reason string) *EvalError {
	return &EvalError{
		Code:      ErrCodeInvalidPortReference,
		Message:   reason,
		WireID:    wireID,
		NodeID:    ref.NodeID,
		PortIndex: ref.Port,
	}
}

// NewConstantPortError creates an EvalError for a constant that addresses
// no input port.
func NewConstantPortError(key string, nodeID ir.NodeID, port int, reason string) *EvalError {
	return &EvalError{
		Code:        ErrCodeInvalidPortReference,
		Message:     reason,
		ConstantKey: key,
		NodeID:      nodeID,
		PortIndex:   port,
	}
}

// NewCycleError creates an EvalError for a combinational loop.
func NewCycleError(unresolved []ir.NodeID, loops [][]ir.NodeID) *EvalError {
	return &EvalError{
		Code:    ErrCodeCombinationalCycle,
		Message: "combinational loop: every feedback path needs a sequential node",
		NodeIDs: unresolved,
		Loops:   loops,
	}
}

// NewBoundaryError creates an EvalError for a bad boundary index.
func NewBoundaryError(nodeID ir.NodeID, reason string) *EvalError {
	return &EvalError{
		Code:    ErrCodeInvalidBoundary,
		Message: reason,
		NodeID:  nodeID,
	}
}
