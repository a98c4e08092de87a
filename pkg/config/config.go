package config

import (
	"time"

	"github.com/sirupsen/logrus"
)

// Poll interval bounds, in seconds.
const (
	MinPollIntervalSeconds = 1
	MaxPollIntervalSeconds = 86400
)

type Config interface {
	// PollInterval is how long the monitor sleeps between battery samples.
	PollInterval() time.Duration
	// SafetyWindow is how long the battery must stay low, over consecutive
	// samples, before a shutdown is launched.
	SafetyWindow() time.Duration
	// SignDwell is how long a temporary on-screen sign stays visible.
	SignDwell() time.Duration
	// ShutdownDelayMinutes is the delay argument passed to the shutdown
	// command.
	ShutdownDelayMinutes() int
	AllowNonRootAccess() bool

	SetPollIntervalSeconds(int)
	SetAllowNonRootAccess(bool)

	// Load reads the configuration from the source.
	Load() error
	// Save saves the configuration to the source.
	Save() error

	LogrusFields() logrus.Fields
}
