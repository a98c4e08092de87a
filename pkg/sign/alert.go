// Package sign owns the single on-screen battery sign. All visibility
// changes go through one worker goroutine, so no matter how many goroutines
// ask for signs, at most one is ever visible.
package sign

// Alert is one of the notifiable battery conditions. Each maps to a fixed
// message; the mapping is static data, not runtime state.
type Alert int

const (
	AlertBatteryCharged Alert = iota
	AlertLowBattery
	AlertLowLimitUnreadable
	AlertRemainingUnreadable
	AlertBatteryNotPresent
	AlertStateUnreadable
	AlertStateUnknown
)

var alertMessages = map[Alert]string{
	AlertBatteryCharged:      "Battery charged",
	AlertLowBattery:          "LOW BATTERY!",
	AlertLowLimitUnreadable:  "Cannot read low capacity limit",
	AlertRemainingUnreadable: "Cannot read remaining capacity",
	AlertBatteryNotPresent:   "Battery not present",
	AlertStateUnreadable:     "Cannot read charging state",
	AlertStateUnknown:        "Unknown charging state",
}

// Message returns the human-readable text shown for the alert.
func (a Alert) Message() string {
	if m, ok := alertMessages[a]; ok {
		return m
	}
	return "Battery alert"
}
