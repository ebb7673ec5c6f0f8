// Package engine evaluates a board for a fixed number of ticks.
//
// ARCHITECTURE:
//
// Compile once, run many:
// Compile resolves every node's definition, checks port references and
// boundary indices, and computes a single evaluation order. Run walks that
// order once per tick and returns the boundary output samples.
//
// Scheduling:
//  1. Each wire whose source is combinational adds "target after source"
//  2. Wires out of sequential nodes add nothing; their outputs depend only
//     on state carried from earlier ticks
//  3. Kahn's algorithm orders the remaining graph; ties go to the node
//     inserted first
//  4. Nodes left with in-degree > 0 form a combinational loop and fail
//     compilation with COMBINATIONAL_CYCLE
//
// Tick Flow:
//  1. Boundary inputs take the generator's values for this tick
//  2. Every sequential node's outputs are latched from state (Peek)
//  3. Nodes run in schedule order; inputs come from wires, then port
//     constants, then 0
//  4. Boundary outputs copy their input into OutputValues[tick]
//
// CRITICAL PATTERNS:
//
// Determinism:
// No wall clock, randomness or map iteration affects results. Every Run
// starts each node from empty state, so two runs over the same inputs are
// bit-identical.
//
// Errors as values:
// Expected failures are *EvalError with a Code. Nothing is returned until
// the whole board is known to be runnable; there are no partial results.
//
// Single writer:
// A Program may be run from several goroutines because each Run owns its
// values and node state. The engine does no locking of its own.
package engine
