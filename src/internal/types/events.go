package types

import (
	"sync"
)

// Disposable releases a resource, subscription, or registration.
type Disposable interface {
	Dispose()
}

// DisposeFunc adapts a plain function to the Disposable interface
type DisposeFunc func()

// Dispose invokes the wrapped function
func (f DisposeFunc) Dispose() {
	f()
}

// DisposableStore collects disposables so they can be released as one unit.
// Disposal is idempotent; adding to a disposed store disposes immediately.
type DisposableStore struct {
	mu       sync.Mutex
	disposed bool
	items    []Disposable
}

// Add registers a disposable with the store
func (s *DisposableStore) Add(d Disposable) {
	if d == nil {
		return
	}
	s.mu.Lock()
	if s.disposed {
		s.mu.Unlock()
		d.Dispose()
		return
	}
	s.items = append(s.items, d)
	s.mu.Unlock()
}

// Dispose releases every registered disposable in registration order
func (s *DisposableStore) Dispose() {
	s.mu.Lock()
	items := s.items
	s.items = nil
	s.disposed = true
	s.mu.Unlock()

	for _, d := range items {
		d.Dispose()
	}
}

// Emitter broadcasts tree change notifications to registered listeners.
// A nil node means the whole tree changed. Listeners are invoked
// synchronously on the firing goroutine.
type Emitter struct {
	mu        sync.Mutex
	nextID    int
	listeners map[int]func(node interface{})
}

// Subscribe registers a listener and returns its unsubscribe token
func (e *Emitter) Subscribe(listener func(node interface{})) Disposable {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.listeners == nil {
		e.listeners = make(map[int]func(node interface{}))
	}
	id := e.nextID
	e.nextID++
	e.listeners[id] = listener

	return DisposeFunc(func() {
		e.mu.Lock()
		delete(e.listeners, id)
		e.mu.Unlock()
	})
}

// Fire notifies all current listeners that node changed
func (e *Emitter) Fire(node interface{}) {
	e.mu.Lock()
	listeners := make([]func(node interface{}), 0, len(e.listeners))
	for _, l := range e.listeners {
		listeners = append(listeners, l)
	}
	e.mu.Unlock()

	for _, l := range listeners {
		l(node)
	}
}
