package sign

// Surface is the boundary into display-server mechanics. Implementations
// own window/notification plumbing, including redrawing the current message
// when the display asks for it. A Surface shows at most one message; Show
// replaces whatever was visible before.
//
// Surface methods are only ever called from the worker goroutine, so
// implementations do not need to serialize Show/Clear against each other
// (only against their own redraw listener).
type Surface interface {
	Show(text string) error
	Clear() error
	Close() error
}
