package sign

import (
	"sync/atomic"
	"time"

	"github.com/sirupsen/logrus"
)

// Handle identifies one Show request. The trailing clear of a temporary
// sign compares handles, not alert values, so it never removes a sign that
// a later caller put up in the meantime.
type Handle uint64

type cmdKind int

const (
	cmdShow cmdKind = iota
	cmdClear
	cmdClearIf
	cmdSync
)

type command struct {
	kind   cmdKind
	alert  Alert
	handle Handle
	done   chan struct{}
}

// Worker serializes every visibility change over a single buffered channel.
// It alone touches the surface and the visible/current state, which makes
// the at-most-one-sign invariant hold without locks.
type Worker struct {
	surface Surface
	dwell   time.Duration

	cmds chan command
	seq  atomic.Uint64

	// Owned by the run goroutine.
	visible   bool
	current   Alert
	curHandle Handle
}

// NewWorker returns a stopped worker. A nil surface puts the worker in
// log-only mode: all signs degrade to log lines, which is how display
// startup failures are survived.
func NewWorker(surface Surface, dwell time.Duration) *Worker {
	if surface == nil {
		logrus.Warn("no display surface, signs will only be logged")
	}
	return &Worker{
		surface: surface,
		dwell:   dwell,
		cmds:    make(chan command, 64),
	}
}

// Start launches the worker goroutine. It runs for the process lifetime.
func (w *Worker) Start() {
	go w.run()
}

// Show makes alert the persistent sign. It returns the handle identifying
// this request. Showing the alert that is already visible changes nothing
// on screen but still takes over the current handle.
func (w *Worker) Show(alert Alert) Handle {
	h := Handle(w.seq.Add(1))
	w.cmds <- command{kind: cmdShow, alert: alert, handle: h}
	return h
}

// ShowTemporary shows alert and clears it again after the dwell time. The
// dwell runs as its own goroutine; its trailing clear goes through the same
// channel as every other command and is a no-op if the display has moved on
// to a different handle by then.
func (w *Worker) ShowTemporary(alert Alert) {
	h := w.Show(alert)
	go func() {
		time.Sleep(w.dwell)
		w.cmds <- command{kind: cmdClearIf, handle: h}
	}()
}

// Clear removes the visible sign, if any.
func (w *Worker) Clear() {
	w.cmds <- command{kind: cmdClear}
}

// flush waits until every previously sent command has been processed.
func (w *Worker) flush() {
	done := make(chan struct{})
	w.cmds <- command{kind: cmdSync, done: done}
	<-done
}

func (w *Worker) run() {
	for cmd := range w.cmds {
		switch cmd.kind {
		case cmdShow:
			w.show(cmd.alert, cmd.handle)
		case cmdClear:
			w.hide()
		case cmdClearIf:
			if w.visible && w.curHandle == cmd.handle {
				w.hide()
			}
		case cmdSync:
			close(cmd.done)
		}
	}
}

func (w *Worker) show(alert Alert, h Handle) {
	if w.visible && w.current == alert {
		w.curHandle = h
		return
	}

	if w.visible {
		w.hide()
	}

	if w.surface != nil {
		if err := w.surface.Show(alert.Message()); err != nil {
			logrus.Errorf("failed to show sign %q: %v", alert.Message(), err)
		}
	} else {
		logrus.Infof("sign: %s", alert.Message())
	}

	w.visible = true
	w.current = alert
	w.curHandle = h
}

func (w *Worker) hide() {
	if !w.visible {
		return
	}

	if w.surface != nil {
		if err := w.surface.Clear(); err != nil {
			logrus.Errorf("failed to clear sign: %v", err)
		}
	}

	w.visible = false
	w.curHandle = 0
}
