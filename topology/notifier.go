package topology

// EventType classifies device lifecycle notifications.
type EventType uint8

const (
	// EventUnregister fires when a device leaves its current
	// registration context. This covers genuine removal and also a
	// namespace move; only in the former is the device in the
	// unregistering state when the event is delivered.
	EventUnregister EventType = iota + 1
)

// Event is one device lifecycle notification.
type Event struct {
	Type   EventType
	Device *Device
}

// NotifyFunc receives device lifecycle events. It runs synchronously
// with the topology lock held; the Scope passes that proof along. It
// must not call Topology methods that acquire the lock.
type NotifyFunc func(Scope, Event)

// Subscription is a handle to a registered NotifyFunc. The offload
// subsystem registers one at startup and holds it for the process
// lifetime; Cancel exists only for clean shutdown.
type Subscription struct {
	t  *Topology
	fn NotifyFunc
}

// Subscribe registers fn for device lifecycle events.
func (t *Topology) Subscribe(fn NotifyFunc) *Subscription {
	sub := &Subscription{t: t, fn: fn}
	t.mu.Lock()
	t.subs[sub] = struct{}{}
	t.mu.Unlock()
	return sub
}

// Cancel removes the subscription. No events are delivered after
// Cancel returns.
func (sub *Subscription) Cancel() {
	sub.t.mu.Lock()
	delete(sub.t.subs, sub)
	sub.t.mu.Unlock()
}

func (t *Topology) notify(s Scope, ev Event) {
	for sub := range t.subs {
		sub.fn(s, ev)
	}
}
