package model

// CommandTarget identifies the device or server feature a control command addresses.
type CommandTarget string

const (
	TargetPump       CommandTarget = "pump"
	TargetLight      CommandTarget = "light"
	TargetFailureSim CommandTarget = "simulate-failure"
)

// CommandState is the desired state for pump and light commands.
type CommandState string

const (
	StateToggle CommandState = "toggle"
	StateOn     CommandState = "on"
	StateOff    CommandState = "off"
)

// CommandRequest is an outbound control intent. Pump and light commands carry a
// State; the failure simulation carries Enable instead. Fire-and-forget: success
// is defined purely by the HTTP status of the POST.
type CommandRequest struct {
	Target CommandTarget
	State  CommandState
	Enable bool
}

// Reading is one snapshot of all sensor channels plus the server's derived
// status and diagnosis fields. Readings are immutable once parsed and are never
// retained beyond the currently displayed one.
type Reading struct {
	WaterTempC         float64
	AirTempC           float64
	PH                 float64
	DissolvedOxygenMgL float64
	AmmoniaMgL         float64
	WaterLevelPercent  float64
	ECuScm             float64
	HumidityPercent    float64
	LightLux           float64

	Diagnosis   string
	PumpStatus  string
	LightStatus string
	Timestamp   string

	// Message is set only on placeholder readings ("no data yet" responses).
	Message string

	placeholder bool
}

// PlaceholderReading builds the degenerate message-only reading the server
// returns before any data has arrived. Placeholder-ness is keyed on the message
// field being present, not on its text: an empty message is still a placeholder.
func PlaceholderReading(message string) *Reading {
	return &Reading{Message: message, placeholder: true}
}

// Placeholder reports whether the reading is a degenerate message-only response
// rather than a full sensor snapshot.
func (r *Reading) Placeholder() bool {
	return r.placeholder
}

// Settings are the operator toggles persisted across restarts.
type Settings struct {
	AutoRefresh      bool
	FailureSimulated bool
}
