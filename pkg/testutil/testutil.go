// Package testutil contains common test utilities.
package testutil

import (
	"sync"

	"src.circular.dev/pkg/events"
)

// Cleanuper wraps the Cleanup method. It is a subset of [testing.TB], thus
// satisfied by [*testing.T] and [*testing.B].
type Cleanuper interface {
	Cleanup(func())
}

// Set sets *p to v, and restores the original value in a cleanup function.
func Set[T any](c Cleanuper, p *T, v T) {
	old := *p
	*p = v
	c.Cleanup(func() { *p = old })
}

// Recorder records the payloads of events it receives.
type Recorder struct {
	mu   sync.Mutex
	data []any
}

// Record binds a Recorder to the named event of an emitter. The binding is
// removed in a cleanup function.
func Record(c Cleanuper, em *events.Emitter, name string) *Recorder {
	r := &Recorder{}
	b := em.Bind(name, r.Handle)
	c.Cleanup(b.Unbind)
	return r
}

// Handle is an events.Handler that records the event's payload.
func (r *Recorder) Handle(ev *events.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = append(r.data, ev.Data)
}

// Data returns the recorded payloads.
func (r *Recorder) Data() []any {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]any(nil), r.data...)
}

// Count returns the number of recorded events.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.data)
}

// Last returns the payload of the last recorded event, or nil.
func (r *Recorder) Last() any {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.data) == 0 {
		return nil
	}
	return r.data[len(r.data)-1]
}

// Reset forgets all recorded events.
func (r *Recorder) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.data = nil
}
