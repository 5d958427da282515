// Package sensor defines the observable-sensor capability shared by all
// concrete sensor drivers: a synchronous read plus a bounded set of
// observers notified on debounced value changes.
package sensor

import (
	"errors"
	"sync"
	"time"
)

// MaxObservers is the fixed capacity of a sensor's observer set.
const MaxObservers = 4

// ErrObserverLimit is returned by Attach when the observer set is full.
var ErrObserverLimit = errors.New("sensor: observer limit reached")

// Event is the value delivered to observers on a stable transition.
type Event struct {
	Sensor  string
	Present bool
	Time    time.Time
}

// State returns the event's presence state as a string.
func (e Event) State() string {
	return StateString(e.Present)
}

// StateString renders a presence level for logs, payloads and status pages.
func StateString(present bool) string {
	if present {
		return "PRESENT"
	}
	return "CLEAR"
}

// Observer receives debounced transition events. Notify is invoked from the
// sensor's background task and should return promptly; a slow observer
// delays every observer attached after it.
type Observer interface {
	Notify(Event)
}

// Sensor is something that can be read synchronously and observed for
// changes. Read returns the instantaneous raw level, unaffected by any
// debounce in progress.
type Sensor interface {
	Read() (bool, error)
	Attach(Observer) error
	Detach(Observer)
}

// Observable implements the observer-set half of Sensor. Concrete sensors
// embed it. Observers are compared by interface identity on Detach, so they
// should be pointer types.
//
// Attach and Detach may be called from any goroutine; the set is also read
// during notification from the sensor's background task, so all access is
// serialized here.
type Observable struct {
	mu        sync.Mutex
	observers []Observer
}

// Attach adds an observer. Observers are notified in attachment order.
func (o *Observable) Attach(obs Observer) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.observers) >= MaxObservers {
		return ErrObserverLimit
	}
	o.observers = append(o.observers, obs)
	return nil
}

// Detach removes an observer. Detaching an observer that is not attached is
// a no-op.
func (o *Observable) Detach(obs Observer) {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, existing := range o.observers {
		if existing == obs {
			o.observers = append(o.observers[:i], o.observers[i+1:]...)
			return
		}
	}
}

// NotifyAll delivers the event to every attached observer, synchronously and
// in attachment order.
func (o *Observable) NotifyAll(e Event) {
	o.mu.Lock()
	observers := make([]Observer, len(o.observers))
	copy(observers, o.observers)
	o.mu.Unlock()

	for _, obs := range observers {
		obs.Notify(e)
	}
}

// ObserverCount returns the number of attached observers.
func (o *Observable) ObserverCount() int {
	o.mu.Lock()
	defer o.mu.Unlock()
	return len(o.observers)
}
