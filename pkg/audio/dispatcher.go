// Package audio plays the alert sound cues. Every play request runs as its
// own goroutine with its own player process, so playback can never stall
// the poll loop. Overlapping requests simply overlap; the cues are short.
package audio

import (
	"os/exec"

	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

// Cue names one of the alert sounds.
type Cue int

const (
	CueLowBattery Cue = iota
	CueShutdownStart
	CueShutdownStop
)

func (c Cue) String() string {
	switch c {
	case CueLowBattery:
		return "low-battery"
	case CueShutdownStart:
		return "shutdown-start"
	case CueShutdownStop:
		return "shutdown-stop"
	}
	return "unknown"
}

// playerCandidates are tried in order when locating the player binary.
var playerCandidates = []string{"paplay", "aplay", "play", "afplay", "mpv"}

// Dispatcher resolves cues to sound files and plays them through an
// external player process.
type Dispatcher struct {
	player string
	paths  map[Cue]string
}

// NewDispatcher locates a player binary and maps the three cues to their
// files. No player on PATH is a startup failure; the monitor is useless
// without audible alerts, so the caller is expected to treat it as fatal.
func NewDispatcher(lowBattery, shutdownStart, shutdownStop string) (*Dispatcher, error) {
	player, err := findPlayer()
	if err != nil {
		return nil, err
	}
	logrus.Debugf("using sound player %s", player)

	return &Dispatcher{
		player: player,
		paths: map[Cue]string{
			CueLowBattery:    lowBattery,
			CueShutdownStart: shutdownStart,
			CueShutdownStop:  shutdownStop,
		},
	}, nil
}

func findPlayer() (string, error) {
	for _, candidate := range playerCandidates {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", pkgerrors.Errorf("no sound player found, tried %v", playerCandidates)
}

// Path returns the sound file mapped to the cue.
func (d *Dispatcher) Path(cue Cue) (string, bool) {
	p, ok := d.paths[cue]
	return p, ok
}

// Play plays the cue in the background. The caller never blocks and never
// hears about failures; a playback problem is a log line, not an error.
func (d *Dispatcher) Play(cue Cue) {
	path, ok := d.paths[cue]
	if !ok {
		logrus.Errorf("no sound file for cue %s", cue)
		return
	}

	go func() {
		cmd := exec.Command(d.player, path)
		if err := cmd.Run(); err != nil {
			logrus.Warnf("failed to play %s cue (%s): %v", cue, path, err)
		}
	}()
}
