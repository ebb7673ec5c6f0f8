package ir

// Version constants for the board format and engine.
const (
	// IRVersion is the board document schema version.
	IRVersion = "1"

	// EngineVersion is the chipwire engine version.
	EngineVersion = "0.1.0"
)
