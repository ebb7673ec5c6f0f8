package testutil

// Zero feeds 0 to every input.
func Zero(int) []float64 { return nil }

// Const returns a generator that feeds the same values every tick.
func Const(values ...float64) func(int) []float64 {
	return func(int) []float64 { return values }
}

// Ramp returns a generator whose single input equals the tick index.
func Ramp(tick int) []float64 { return []float64{float64(tick)} }

// Steps returns a generator that feeds values[tick] to input 0 and 0 after
// the slice runs out.
func Steps(values ...float64) func(int) []float64 {
	return func(tick int) []float64 {
		if tick < len(values) {
			return []float64{values[tick]}
		}
		return nil
	}
}
