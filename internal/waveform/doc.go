// Package waveform generates puzzle input signals and compares engine output
// against target signals.
//
// A Spec describes one periodic signal. Sample(t) is
//
//	clamp(Offset + Amplitude * shape((t + Phase) / Period))
//
// where shape maps one period onto [-1, 1]. Specs are written on the command
// line and in scenario files as "shape:amplitude:period[:phase[:offset]]".
package waveform
