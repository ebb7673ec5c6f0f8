// Package node defines the chip types a board can contain.
//
// A Definition is registered once per type and never mutated. It declares
// ports, parameters and a per-tick Evaluate function. Combinational chips
// are pure functions of their current inputs and params. Sequential chips
// own a state slot and must produce tick t's outputs from state alone; they
// expose that read through Peek so the engine can latch the value before
// any consumer runs.
//
// Every chip clamps its own outputs to [SignalMin, SignalMax]. The engine
// routes values and never re-clamps.
package node
