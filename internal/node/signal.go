package node

// Signal domain shared by every chip.
const (
	SignalMin = -100.0
	SignalMax = 100.0
)

// TicksPerStep is the number of ticks in one world step (one delay unit).
const TicksPerStep = 16

// Clamp restricts v to [SignalMin, SignalMax].
func Clamp(v float64) float64 {
	if v < SignalMin {
		return SignalMin
	}
	if v > SignalMax {
		return SignalMax
	}
	return v
}
