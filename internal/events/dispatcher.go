package events

import (
	"sync"

	"github.com/Domenick1991/travelbook/internal/domain"
)

// Handler receives booking events. Handlers must not assume delivery order
// across bookings and must tolerate being called concurrently.
type Handler func(event domain.BookingEvent)

// Dispatcher fans booking events out to in-process subscribers. Dispatch is
// non-blocking: each handler runs on its own goroutine so a slow subscriber
// never delays the state transition that produced the event.
type Dispatcher struct {
	mu       sync.RWMutex
	handlers []Handler
}

func NewDispatcher() *Dispatcher {
	return &Dispatcher{}
}

// Subscribe registers a handler for all subsequent events.
func (d *Dispatcher) Subscribe(handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers = append(d.handlers, handler)
}

func (d *Dispatcher) Dispatch(event domain.BookingEvent) {
	d.mu.RLock()
	handlers := make([]Handler, len(d.handlers))
	copy(handlers, d.handlers)
	d.mu.RUnlock()

	for _, h := range handlers {
		go h(event)
	}
}
