package waveform

import (
	"fmt"
	"strconv"
	"strings"
)

// Parse reads "shape:amplitude:period[:phase[:offset]]".
//
// A bare number is shorthand for a constant, and "constant:v" needs no period.
func Parse(text string) (Spec, error) {
	text = strings.TrimSpace(text)
	if v, err := strconv.ParseFloat(text, 64); err == nil {
		return Spec{Shape: Constant, Amplitude: v}, nil
	}

	parts := strings.Split(text, ":")
	spec := Spec{Shape: Shape(strings.ToLower(parts[0]))}

	minParts := 3
	if spec.Shape == Constant {
		minParts = 2
	}
	if len(parts) < minParts || len(parts) > 5 {
		return Spec{}, fmt.Errorf("waveform %q: want shape:amplitude:period[:phase[:offset]]", text)
	}

	fields := []*float64{&spec.Amplitude, &spec.Period, &spec.Phase, &spec.Offset}
	for i, p := range parts[1:] {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return Spec{}, fmt.Errorf("waveform %q: field %d: %w", text, i+1, err)
		}
		*fields[i] = v
	}

	if err := spec.Validate(); err != nil {
		return Spec{}, err
	}
	return spec, nil
}

// ParseAll parses each text in order.
func ParseAll(texts []string) ([]Spec, error) {
	specs := make([]Spec, 0, len(texts))
	for _, t := range texts {
		s, err := Parse(t)
		if err != nil {
			return nil, err
		}
		specs = append(specs, s)
	}
	return specs, nil
}
