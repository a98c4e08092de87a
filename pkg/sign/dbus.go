package sign

import (
	"sync"

	"github.com/godbus/dbus/v5"
	pkgerrors "github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

const (
	notifyDest   = "org.freedesktop.Notifications"
	notifyPath   = dbus.ObjectPath("/org/freedesktop/Notifications")
	notifyIface  = "org.freedesktop.Notifications"
	notifyMember = "Notify"
	closedMember = "NotificationClosed"

	appName = "battery-monitor"

	urgencyCritical = byte(2)
)

// DBusSurface displays the sign as a freedesktop desktop notification.
// ReplacesID keeps at most one notification alive, and a listener
// goroutine re-posts the current message if the notification server drops
// it while it is still wanted (the redraw-on-expose of a plain window).
type DBusSurface struct {
	conn *dbus.Conn
	obj  dbus.BusObject
	font string

	mu   sync.Mutex
	id   uint32 // current notification, 0 = none
	text string // current message, "" = none

	signals chan *dbus.Signal
}

var _ Surface = &DBusSurface{}

// NewDBusSurface connects to the session bus and verifies a notification
// server is reachable. The font spec is forwarded as a rendering hint;
// servers that do not understand it ignore it.
func NewDBusSurface(font string) (*DBusSurface, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to connect to session bus")
	}

	obj := conn.Object(notifyDest, notifyPath)

	// Probe the server now so a missing notification daemon is caught at
	// startup instead of on the first alert.
	var name, vendor, version, specVersion string
	err = obj.Call(notifyIface+".GetServerInformation", 0).
		Store(&name, &vendor, &version, &specVersion)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "no notification server on session bus")
	}
	logrus.WithFields(logrus.Fields{
		"server":      name,
		"vendor":      vendor,
		"version":     version,
		"specVersion": specVersion,
	}).Debug("notification server found")

	err = conn.AddMatchSignal(
		dbus.WithMatchObjectPath(notifyPath),
		dbus.WithMatchInterface(notifyIface),
		dbus.WithMatchMember(closedMember),
	)
	if err != nil {
		return nil, pkgerrors.Wrap(err, "failed to subscribe to notification signals")
	}

	s := &DBusSurface{
		conn:    conn,
		obj:     obj,
		font:    font,
		signals: make(chan *dbus.Signal, 16),
	}
	conn.Signal(s.signals)

	go s.redrawLoop()

	return s, nil
}

func (s *DBusSurface) Show(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.post(text)
}

// post sends the notification. Caller holds s.mu.
func (s *DBusSurface) post(text string) error {
	hints := map[string]dbus.Variant{
		"urgency": dbus.MakeVariant(urgencyCritical),
	}
	if s.font != "" {
		hints["x-font"] = dbus.MakeVariant(s.font)
	}

	var id uint32
	err := s.obj.Call(notifyIface+"."+notifyMember, 0,
		appName,
		s.id,       // replaces the previous notification, if any
		"",         // icon
		text,       // summary
		"",         // body
		[]string{}, // actions
		hints,
		int32(0), // never expire
	).Store(&id)
	if err != nil {
		return pkgerrors.Wrapf(err, "failed to notify %q", text)
	}

	s.id = id
	s.text = text
	return nil
}

func (s *DBusSurface) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.id == 0 {
		return nil
	}

	id := s.id
	// Forget the notification before the CloseNotification round trip, so
	// the resulting NotificationClosed signal is not mistaken for a drop
	// that needs re-posting.
	s.id = 0
	s.text = ""

	call := s.obj.Call(notifyIface+".CloseNotification", 0, id)
	if call.Err != nil {
		return pkgerrors.Wrap(call.Err, "failed to close notification")
	}
	return nil
}

func (s *DBusSurface) Close() error {
	s.conn.RemoveSignal(s.signals)
	return s.conn.Close()
}

// redrawLoop watches for NotificationClosed and re-posts the current
// message when the server closed it while it is still wanted (user
// dismissal, server restart, forced expiry). It only reads the current
// message; deciding what is visible stays with the worker.
func (s *DBusSurface) redrawLoop() {
	for sig := range s.signals {
		if sig.Name != notifyIface+"."+closedMember || len(sig.Body) < 1 {
			continue
		}
		closedID, ok := sig.Body[0].(uint32)
		if !ok {
			continue
		}

		s.mu.Lock()
		if closedID == s.id && s.text != "" {
			logrus.Debugf("notification %d closed externally, re-posting", closedID)
			s.id = 0
			if err := s.post(s.text); err != nil {
				logrus.Errorf("failed to re-post sign: %v", err)
			}
		}
		s.mu.Unlock()
	}
}
