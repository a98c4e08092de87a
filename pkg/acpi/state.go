package acpi

// ChargingState is the discrete battery state derived from one sample.
// A fresh value is produced every poll cycle and never persisted.
type ChargingState int

const (
	// StateInvalid means the charging state could not be read.
	StateInvalid ChargingState = iota
	StateCharging
	StateCharged
	StateDischarging
	// StateNoBattery means no battery is installed.
	StateNoBattery
	// StateOther means the state token was readable but not recognized.
	StateOther
)

func (s ChargingState) String() string {
	switch s {
	case StateInvalid:
		return "invalid"
	case StateCharging:
		return "charging"
	case StateCharged:
		return "charged"
	case StateDischarging:
		return "discharging"
	case StateNoBattery:
		return "no-battery"
	case StateOther:
		return "other"
	}
	return "unknown"
}

// TokenSource is the part of Reader that Resolve needs.
type TokenSource interface {
	Present() bool
	StateToken() (string, error)
}

// Resolve derives the charging state from one snapshot. A missing battery
// wins over everything else; an unreadable state token maps to
// StateInvalid; an unrecognized token maps to StateOther.
func Resolve(src TokenSource) ChargingState {
	if !src.Present() {
		return StateNoBattery
	}

	token, err := src.StateToken()
	if err != nil {
		return StateInvalid
	}

	switch token {
	case "charging":
		return StateCharging
	case "charged":
		return StateCharged
	case "discharging":
		return StateDischarging
	}
	return StateOther
}
