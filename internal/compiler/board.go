package compiler

import (
	_ "embed"
	"fmt"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/errors"
	"cuelang.org/go/cue/token"

	"github.com/roach88/chipwire/internal/ir"
)

//go:embed schema.cue
var boardSchema string

// CompileBoard parses a CUE value into an ir.Board.
// Uses CUE SDK's Go API directly (not CLI subprocess).
//
// The CUE value should be the board struct itself, e.g.:
//
//	ctx := cuecontext.New()
//	v := ctx.CompileString(`board: offset: { nodes: [...] }`)
//	b, err := CompileBoard(v.LookupPath(cue.ParsePath("board.offset")))
//
// The value is first unified with the #Board schema, so unknown fields and
// wrongly typed values fail here with a source position. Boundary nodes
// without an explicit index get the next free one. Graph-level checks
// (types, ports, arity) are left to Validate.
func CompileBoard(v cue.Value) (*ir.Board, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	schema := v.Context().CompileString(boardSchema).LookupPath(cue.ParsePath("#Board"))
	if err := schema.Err(); err != nil {
		return nil, fmt.Errorf("board schema: %w", err)
	}
	checked := schema.Unify(v)
	if err := checked.Validate(cue.Concrete(true)); err != nil {
		return nil, formatCUEError(err)
	}

	b := &ir.Board{Constants: ir.PortConstants{}}

	// Board name comes from the struct label (the path selector) unless the
	// document names itself, as stored documents do.
	if sels := v.Path().Selectors(); len(sels) > 0 {
		b.Name = selectorName(sels[len(sels)-1])
	}
	if name := checked.LookupPath(cue.ParsePath("name")); name.Exists() {
		s, err := name.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		b.Name = s
	}

	var err error
	if b.Nodes, err = parseNodes(checked); err != nil {
		return nil, err
	}
	if b.Wires, err = parseWires(checked); err != nil {
		return nil, err
	}
	if err := parseConstants(checked, b.Constants); err != nil {
		return nil, err
	}
	ir.AssignBoundaryIndices(b)

	return b, nil
}

func parseNodes(v cue.Value) ([]*ir.NodeInstance, error) {
	iter, err := v.LookupPath(cue.ParsePath("nodes")).List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var nodes []*ir.NodeInstance
	for iter.Next() {
		nv := iter.Value()
		n := &ir.NodeInstance{}

		id, err := nv.LookupPath(cue.ParsePath("id")).String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		n.ID = ir.NodeID(id)

		if n.Type, err = nv.LookupPath(cue.ParsePath("type")).String(); err != nil {
			return nil, formatCUEError(err)
		}

		if pv := nv.LookupPath(cue.ParsePath("params")); pv.Exists() {
			n.Params = map[string]float64{}
			fields, err := pv.Fields()
			if err != nil {
				return nil, formatCUEError(err)
			}
			for fields.Next() {
				f, err := fields.Value().Float64()
				if err != nil {
					return nil, formatCUEError(err)
				}
				n.Params[selectorName(fields.Selector())] = f
			}
		}

		if n.InputCount, err = optionalInt(nv, "inputs", 0); err != nil {
			return nil, err
		}
		if n.OutputCount, err = optionalInt(nv, "outputs", 0); err != nil {
			return nil, err
		}
		if iv := nv.LookupPath(cue.ParsePath("index")); iv.Exists() {
			i, err := iv.Int64()
			if err != nil {
				return nil, formatCUEError(err)
			}
			n.BoundaryIndex = ir.At(int(i))
		}

		nodes = append(nodes, n)
	}
	return nodes, nil
}

func parseWires(v cue.Value) ([]ir.Wire, error) {
	wv := v.LookupPath(cue.ParsePath("wires"))
	if !wv.Exists() {
		return nil, nil
	}
	iter, err := wv.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var wires []ir.Wire
	for i := 1; iter.Next(); i++ {
		ev := iter.Value()
		w := ir.Wire{ID: fmt.Sprintf("w%d", i)}
		if idv := ev.LookupPath(cue.ParsePath("id")); idv.Exists() {
			if w.ID, err = idv.String(); err != nil {
				return nil, formatCUEError(err)
			}
		}

		from, err := portRef(ev, "from")
		if err != nil {
			return nil, err
		}
		to, err := portRef(ev, "to")
		if err != nil {
			return nil, err
		}
		w.Source = ir.Out(from.NodeID, from.Port)
		w.Target = ir.In(to.NodeID, to.Port)
		wires = append(wires, w)
	}
	return wires, nil
}

func parseConstants(v cue.Value, into ir.PortConstants) error {
	cv := v.LookupPath(cue.ParsePath("constants"))
	if !cv.Exists() {
		return nil
	}
	fields, err := cv.Fields()
	if err != nil {
		return formatCUEError(err)
	}
	for fields.Next() {
		f, err := fields.Value().Float64()
		if err != nil {
			return formatCUEError(err)
		}
		into[selectorName(fields.Selector())] = f
	}
	return nil
}

// portRef reads a "node:port" string field.
func portRef(v cue.Value, field string) (ir.PortRef, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	s, err := fv.String()
	if err != nil {
		return ir.PortRef{}, formatCUEError(err)
	}
	id, port, err := ir.ParseConstantKey(s)
	if err != nil {
		return ir.PortRef{}, &CompileError{
			Field:   "wires." + field,
			Message: err.Error(),
			Pos:     fv.Pos(),
		}
	}
	return ir.PortRef{NodeID: id, Port: port}, nil
}

func optionalInt(v cue.Value, field string, def int) (int, error) {
	fv := v.LookupPath(cue.ParsePath(field))
	if !fv.Exists() {
		return def, nil
	}
	n, err := fv.Int64()
	if err != nil {
		return 0, formatCUEError(err)
	}
	return int(n), nil
}

// selectorName returns a label without CUE quoting, so "off:1" stays off:1.
func selectorName(sel cue.Selector) string {
	if sel.LabelType() == cue.StringLabel {
		return sel.Unquoted()
	}
	return sel.String()
}

// CompileError represents a compilation error with source position.
type CompileError struct {
	Field   string
	Message string
	Pos     token.Pos
}

func (e *CompileError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s",
			e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(),
			e.Field, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// formatCUEError extracts position info from CUE errors.
func formatCUEError(err error) error {
	if err == nil {
		return nil
	}

	// CUE errors may contain multiple errors
	errs := errors.Errors(err)
	if len(errs) == 0 {
		return err
	}

	// Return first error with position info
	first := errs[0]
	if positions := errors.Positions(first); len(positions) > 0 {
		return &CompileError{
			Field:   "cue",
			Message: first.Error(),
			Pos:     positions[0],
		}
	}

	return err
}
