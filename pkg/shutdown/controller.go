// Package shutdown launches and cancels the external shutdown command.
package shutdown

import (
	"fmt"
	"os/exec"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/rg3/battery-monitor/pkg/audio"
)

// CuePlayer plays an alert cue without blocking.
type CuePlayer interface {
	Play(cue audio.Cue)
}

// Controller tracks whether a shutdown has been launched. The flag records
// intent, not confirmed external state: the flag flips before the command
// runs, and a failed invocation is logged without rolling the flag back,
// so a flaky command cannot cause retry oscillation.
type Controller struct {
	command      string
	delayMinutes int
	sounds       CuePlayer

	// run executes a shell command line. Swapped out in tests.
	run func(cmdline string) error

	mu     sync.Mutex
	active bool
}

// New returns a controller around the given shutdown command. The command
// is run through the shell, so wrappers like "sudo /sbin/shutdown" work.
func New(command string, delayMinutes int, sounds CuePlayer) *Controller {
	return &Controller{
		command:      command,
		delayMinutes: delayMinutes,
		sounds:       sounds,
		run:          runShell,
	}
}

func runShell(cmdline string) error {
	return exec.Command("sh", "-c", cmdline).Run()
}

// Active reports whether a shutdown has been launched and not cancelled.
func (c *Controller) Active() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.active
}

// Start launches the shutdown with the configured delay. A no-op if a
// shutdown is already active. The command runs in its own goroutine; Start
// never blocks on it.
func (c *Controller) Start() {
	c.mu.Lock()
	if c.active {
		c.mu.Unlock()
		return
	}
	c.active = true
	c.mu.Unlock()

	cmdline := fmt.Sprintf("%s -h +%d", c.command, c.delayMinutes)
	logrus.Warnf("launching shutdown: %s", cmdline)
	go func() {
		if err := c.run(cmdline); err != nil {
			logrus.Errorf("failed to launch shutdown: %v", err)
		}
	}()

	c.sounds.Play(audio.CueShutdownStart)
}

// Stop cancels a previously launched shutdown. A no-op if none is active,
// so callers can stop unconditionally whenever the low condition clears.
func (c *Controller) Stop() {
	c.mu.Lock()
	if !c.active {
		c.mu.Unlock()
		return
	}
	c.active = false
	c.mu.Unlock()

	cmdline := fmt.Sprintf("%s -c", c.command)
	logrus.Infof("cancelling shutdown: %s", cmdline)
	go func() {
		if err := c.run(cmdline); err != nil {
			logrus.Errorf("failed to cancel shutdown: %v", err)
		}
	}()

	c.sounds.Play(audio.CueShutdownStop)
}
