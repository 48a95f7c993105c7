package services

// Notifier fans out "session updated" events to subscribed clients after a
// successful mutation. Delivery is at-least-once and may be stale by the
// time a client reacts; clients refetch the document rather than trust the
// event payload.
type Notifier interface {
	NotifySessionUpdated(sessionID string)
}

// NoopNotifier is used when no realtime server is wired, e.g. in tests.
type NoopNotifier struct{}

func (NoopNotifier) NotifySessionUpdated(string) {}

func notify(n Notifier, sessionID string) {
	if n != nil {
		n.NotifySessionUpdated(sessionID)
	}
}
