package shutdown

import (
	"sync"
	"testing"
	"time"

	"github.com/rg3/battery-monitor/pkg/audio"
)

type fakePlayer struct {
	mu   sync.Mutex
	cues []audio.Cue
}

func (f *fakePlayer) Play(cue audio.Cue) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cues = append(f.cues, cue)
}

func (f *fakePlayer) played() []audio.Cue {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]audio.Cue, len(f.cues))
	copy(out, f.cues)
	return out
}

type runRecorder struct {
	mu       sync.Mutex
	cmdlines []string
	ran      chan string
}

func newRunRecorder() *runRecorder {
	return &runRecorder{ran: make(chan string, 16)}
}

func (r *runRecorder) run(cmdline string) error {
	r.mu.Lock()
	r.cmdlines = append(r.cmdlines, cmdline)
	r.mu.Unlock()
	r.ran <- cmdline
	return nil
}

func (r *runRecorder) wait(t *testing.T) string {
	t.Helper()
	select {
	case cmdline := <-r.ran:
		return cmdline
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for command invocation")
		return ""
	}
}

func (r *runRecorder) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cmdlines)
}

func newTestController() (*Controller, *runRecorder, *fakePlayer) {
	rec := newRunRecorder()
	player := &fakePlayer{}
	c := New("/sbin/shutdown", 2, player)
	c.run = rec.run
	return c, rec, player
}

func TestController_StartInvokesOnce(t *testing.T) {
	c, rec, player := newTestController()

	c.Start()
	c.Start()
	c.Start()

	if got := rec.wait(t); got != "/sbin/shutdown -h +2" {
		t.Errorf("cmdline = %q, want %q", got, "/sbin/shutdown -h +2")
	}

	// Give any extra (buggy) goroutine time to fire.
	time.Sleep(50 * time.Millisecond)
	if n := rec.count(); n != 1 {
		t.Errorf("start command ran %d times, want 1", n)
	}
	if cues := player.played(); len(cues) != 1 || cues[0] != audio.CueShutdownStart {
		t.Errorf("cues = %v, want [shutdown-start]", cues)
	}
	if !c.Active() {
		t.Error("Active() = false after Start()")
	}
}

func TestController_StopWithoutStartIsNoop(t *testing.T) {
	c, rec, player := newTestController()

	c.Stop()

	time.Sleep(50 * time.Millisecond)
	if n := rec.count(); n != 0 {
		t.Errorf("cancel command ran %d times, want 0", n)
	}
	if cues := player.played(); len(cues) != 0 {
		t.Errorf("cues = %v, want none", cues)
	}
	if c.Active() {
		t.Error("Active() = true after lone Stop()")
	}
}

func TestController_StartStopCycle(t *testing.T) {
	c, rec, player := newTestController()

	c.Start()
	if got := rec.wait(t); got != "/sbin/shutdown -h +2" {
		t.Errorf("start cmdline = %q", got)
	}

	c.Stop()
	if got := rec.wait(t); got != "/sbin/shutdown -c" {
		t.Errorf("cancel cmdline = %q", got)
	}
	if c.Active() {
		t.Error("Active() = true after Stop()")
	}

	// A second cycle must invoke again.
	c.Start()
	if got := rec.wait(t); got != "/sbin/shutdown -h +2" {
		t.Errorf("restart cmdline = %q", got)
	}

	want := []audio.Cue{audio.CueShutdownStart, audio.CueShutdownStop, audio.CueShutdownStart}
	cues := player.played()
	if len(cues) != len(want) {
		t.Fatalf("cues = %v, want %v", cues, want)
	}
	for i := range want {
		if cues[i] != want[i] {
			t.Errorf("cue[%d] = %v, want %v", i, cues[i], want[i])
		}
	}
}

func TestController_FailedInvocationKeepsFlag(t *testing.T) {
	player := &fakePlayer{}
	c := New("/sbin/shutdown", 2, player)
	ran := make(chan struct{}, 1)
	c.run = func(string) error {
		ran <- struct{}{}
		return &exitError{}
	}

	c.Start()
	<-ran

	// The flag tracks intent; a failed launch must not re-arm Start.
	if !c.Active() {
		t.Error("Active() = false after failed Start()")
	}
	c.Start()
	time.Sleep(50 * time.Millisecond)
	select {
	case <-ran:
		t.Error("second Start() invoked the command again")
	default:
	}
}

type exitError struct{}

func (*exitError) Error() string { return "exit status 1" }
