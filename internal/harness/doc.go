// Package harness runs puzzle scenarios against the engine.
//
// A scenario names a board, the waveforms driving its inputs, and what the
// run must produce: either target output waveforms or an engine error code.
//
// # Scenario Format
//
// Scenarios are defined in YAML files with the following structure:
//
//	name: echo
//	description: "Delayed, inverted copy of the input"
//	board: ../boards/echo.cue      # relative to the scenario file
//	board_name: echo               # optional when the file holds one board
//	cycles: 32                     # optional, default 256
//	inputs:
//	  - square:50:16
//	expect:
//	  outputs:
//	    - square:50:16             # column 0; later columns unchecked
//	  tolerance: 0
//	assertions:
//	  - type: sample
//	    output: 1
//	    tick: 20
//	    value: -50
//	  - type: order
//	    nodes: [in, d, x]
//
// Or, for a board that must be rejected:
//
//	expect:
//	  error: COMBINATIONAL_CYCLE
//	assertions:
//	  - type: loop
//	    nodes: [a, b]
//
// # Assertion Types
//
//   - sample: output column at one tick equals value (within tolerance)
//   - range: every sample of an output column lies in [min, max]
//   - order: nodes appear in the evaluation order in the given order
//   - loop: the rejected board has a loop made of exactly these nodes
//
// # Deterministic Testing
//
// Every run is recorded in a fresh in-memory store with fixed run ids, so
// results and golden snapshots are identical across runs.
package harness
