package daemon

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/rg3/battery-monitor/pkg/acpi"
	"github.com/rg3/battery-monitor/pkg/audio"
	"github.com/rg3/battery-monitor/pkg/config"
	"github.com/rg3/battery-monitor/pkg/sign"
)

// batterySource is the battery snapshot the loop samples every cycle.
type batterySource interface {
	State() acpi.ChargingState
	DesignCapacityLow() (int, error)
	RemainingCapacity() (int, error)
	PresentRate() (int, error)
}

// signRequester requests sign transitions; it never learns whether they
// succeeded.
type signRequester interface {
	Show(alert sign.Alert) sign.Handle
	ShowTemporary(alert sign.Alert)
	Clear()
}

type cuePlayer interface {
	Play(cue audio.Cue)
}

type shutdownControl interface {
	Start()
	Stop()
	Active() bool
}

// acpiSource adapts an acpi.Reader to the loop's batterySource.
type acpiSource struct {
	reader *acpi.Reader
}

func (s *acpiSource) State() acpi.ChargingState { return acpi.Resolve(s.reader) }

func (s *acpiSource) DesignCapacityLow() (int, error) { return s.reader.DesignCapacityLow() }

func (s *acpiSource) RemainingCapacity() (int, error) { return s.reader.RemainingCapacity() }

func (s *acpiSource) PresentRate() (int, error) { return s.reader.PresentRate() }

// Status is the last sampled state, exposed over the control socket.
type Status struct {
	ChargingState     string    `json:"chargingState"`
	RemainingCapacity *int      `json:"remainingCapacity,omitempty"`
	DesignCapacityLow *int      `json:"designCapacityLow,omitempty"`
	PresentRate       *int      `json:"presentRate,omitempty"`
	WarnCycles        int       `json:"warnCycles"`
	ShutdownActive    bool      `json:"shutdownActive"`
	SampledAt         time.Time `json:"sampledAt"`
}

// statusStore is written by the loop and read by HTTP handlers.
type statusStore struct {
	mu sync.RWMutex
	s  Status
}

func (r *statusStore) update(s Status) {
	r.mu.Lock()
	r.s = s
	r.mu.Unlock()
}

func (r *statusStore) get() Status {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.s
}

// Loop samples the battery on a fixed cadence and drives the signs,
// sounds, and shutdown controller. Warn counting and the previous-state
// memory are owned by the loop goroutine alone; everything it tells the
// other components goes through their own serialization, so the loop
// never blocks on slow I/O.
type Loop struct {
	conf     config.Config
	source   batterySource
	signs    signRequester
	sounds   cuePlayer
	shutdown shutdownControl
	status   *statusStore

	wake chan struct{}

	// Owned by the Run goroutine.
	prev  acpi.ChargingState
	warns int
}

func NewLoop(conf config.Config, source batterySource, signs signRequester, sounds cuePlayer, sd shutdownControl) *Loop {
	return &Loop{
		conf:     conf,
		source:   source,
		signs:    signs,
		sounds:   sounds,
		shutdown: sd,
		status:   &statusStore{},
		wake:     make(chan struct{}, 1),
		prev:     acpi.StateInvalid,
	}
}

// Run samples forever. It never returns.
func (l *Loop) Run() {
	for {
		l.cycle()
		l.rest()
	}
}

// Wake cuts the current sleep short so the next sample happens now.
// Sampling early is always safe; the escalation timer counts cycles, not
// wall-clock sleeps, so an early wake only refreshes the status sooner.
func (l *Loop) Wake() {
	select {
	case l.wake <- struct{}{}:
	default:
	}
}

func (l *Loop) rest() {
	t := time.NewTimer(l.conf.PollInterval())
	defer t.Stop()
	select {
	case <-t.C:
	case <-l.wake:
		logrus.Debug("poll sleep interrupted, sampling early")
	}
}

func (l *Loop) cycle() {
	state := l.source.State()
	logrus.Debugf("charging state: %s", state)

	switch state {
	case acpi.StateDischarging:
		l.handleDischarging()

	case acpi.StateCharged:
		l.signs.Show(sign.AlertBatteryCharged)
		l.warns = 0
		l.shutdown.Stop()

	case acpi.StateCharging:
		l.signs.Clear()
		l.warns = 0
		l.shutdown.Stop()

	case acpi.StateNoBattery:
		l.signs.Clear()
		l.warns = 0
		l.shutdown.Stop()
		logrus.Warn("battery not present")
		l.signs.ShowTemporary(sign.AlertBatteryNotPresent)

	case acpi.StateInvalid:
		l.signs.Clear()
		l.warns = 0
		l.shutdown.Stop()
		logrus.Warn("unable to read charging state")
		l.signs.ShowTemporary(sign.AlertStateUnreadable)

	case acpi.StateOther:
		logrus.Warn("unknown charging state")
		l.signs.ShowTemporary(sign.AlertStateUnknown)
	}

	l.prev = state
	l.recordStatus(state)
}

// handleDischarging checks capacity against the design-low threshold and
// escalates. Field read failures abort the rest of the cycle but never the
// loop; they surface as a warning plus a temporary sign.
func (l *Loop) handleDischarging() {
	// The persistent sign from another state is only torn down on entry,
	// so a long discharge does not hammer the display with clears.
	if l.prev != acpi.StateDischarging {
		l.signs.Clear()
	}

	lowLimit, err := l.source.DesignCapacityLow()
	if err != nil {
		logrus.Warnf("unable to read low capacity limit: %v", err)
		l.signs.ShowTemporary(sign.AlertLowLimitUnreadable)
		return
	}

	remaining, err := l.source.RemainingCapacity()
	if err != nil {
		logrus.Warnf("unable to read remaining capacity: %v", err)
		l.signs.ShowTemporary(sign.AlertRemainingUnreadable)
		return
	}

	if remaining >= lowLimit {
		return
	}

	l.signs.Show(sign.AlertLowBattery)
	l.warns++

	// Elapsed low time, not a fixed warning count, so the behavior stays
	// the same across poll intervals.
	lowFor := time.Duration(l.warns) * l.conf.PollInterval()
	if lowFor >= l.conf.SafetyWindow() && !l.shutdown.Active() {
		logrus.WithFields(logrus.Fields{
			"remaining": remaining,
			"lowLimit":  lowLimit,
			"lowFor":    lowFor.String(),
		}).Warn("battery critically low, starting shutdown")
		l.shutdown.Start()
	} else {
		logrus.WithFields(logrus.Fields{
			"remaining":  remaining,
			"lowLimit":   lowLimit,
			"warnCycles": l.warns,
		}).Info("battery low")
		l.sounds.Play(audio.CueLowBattery)
	}
}

func (l *Loop) recordStatus(state acpi.ChargingState) {
	s := Status{
		ChargingState:  state.String(),
		WarnCycles:     l.warns,
		ShutdownActive: l.shutdown.Active(),
		SampledAt:      time.Now(),
	}
	// Extra readings are informational only; failures just leave the
	// fields out.
	if v, err := l.source.RemainingCapacity(); err == nil {
		s.RemainingCapacity = &v
	}
	if v, err := l.source.DesignCapacityLow(); err == nil {
		s.DesignCapacityLow = &v
	}
	if v, err := l.source.PresentRate(); err == nil {
		s.PresentRate = &v
	}
	l.status.update(s)
}

// Status returns the last sampled status.
func (l *Loop) Status() Status {
	return l.status.get()
}
