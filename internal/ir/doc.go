// Package ir provides the board model shared by every chipwire package.
//
// A board is the in-memory form of one puzzle instance: node instances in
// insertion order, wires between specific ports, and literal constants for
// unwired inputs. ir imports nothing internal, so the registry, compiler,
// engine and store can all depend on it without cycles.
//
// Key design constraints:
//   - Node order is insertion order and is significant (it breaks scheduling ties)
//   - Every input port carries at most one wire; output ports may fan out
//   - Signal values are float64 in [-100, 100], clamped by node implementations
//   - Canonical JSON is the only encoding used for content hashes
package ir
