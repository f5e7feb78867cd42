// Package events provides a small publish/subscribe mechanism used for change
// propagation throughout the data-binding machinery.
//
// An Emitter keeps a list of handlers per event name. Handlers are registered
// with Bind, which returns a *Binding that can later be used to unregister the
// handler; Go funcs are not comparable, so the binding takes the role of the
// handler identity.
package events

import (
	"fmt"
	"sync/atomic"
)

// Handler is a function that handles an event.
type Handler func(ev *Event)

// Event is passed to event handlers. When an event is forwarded from one
// emitter to another (see Emitter.Forward), the same *Event is retargeted and
// renamed, so handlers further down the forwarding chain can inspect where
// the event originated.
type Event struct {
	// ID is a process-unique (modulo wraparound) identifier of the event.
	ID uint32
	// Data is the payload given to Emit.
	Data any

	names   []string
	targets []any
}

var lastID atomic.Uint32

const maxID = 1 << 31

func nextID() uint32 {
	for {
		id := lastID.Load()
		next := id + 1
		if next > maxID {
			next = 0
		}
		if lastID.CompareAndSwap(id, next) {
			return id
		}
	}
}

func newEvent(name string, target any, data any) *Event {
	return &Event{ID: nextID(), Data: data, names: []string{name}, targets: []any{target}}
}

// Name returns the name the event was last emitted under.
func (ev *Event) Name() string { return ev.names[len(ev.names)-1] }

// Target returns the emitter the event was last emitted on.
func (ev *Event) Target() any { return ev.targets[len(ev.targets)-1] }

// Names returns all the names the event was emitted under, starting from the
// original one.
func (ev *Event) Names() []string { return append([]string(nil), ev.names...) }

// Targets returns all the emitters the event passed through, starting from the
// original one.
func (ev *Event) Targets() []any { return append([]any(nil), ev.targets...) }

func (ev *Event) String() string {
	return fmt.Sprintf("<Event %v data:%v>", ev.names, ev.Data)
}

// Binding represents a registered handler.
type Binding struct {
	em      *Emitter
	name    string
	handler Handler
	dead    bool
	// For bindings created by Forward, the emitter receiving the forwarded
	// events.
	forwardTo *Emitter
}

// Unbind unregisters the handler. It is safe to call Unbind more than once
// and on a nil *Binding.
func (b *Binding) Unbind() {
	if b == nil || b.dead {
		return
	}
	b.dead = true
	b.em.remove(b)
	if b.forwardTo != nil {
		b.forwardTo.dropForwarding(b)
	}
}

// Emitter emits named events. The zero value is ready to use.
type Emitter struct {
	handlers map[string][]*Binding
	// Bindings on other emitters that forward to this one.
	forwardings []*Binding
}

// Bind registers a handler for the named event.
func (em *Emitter) Bind(name string, h Handler) *Binding {
	b := &Binding{em: em, name: name, handler: h}
	if em.handlers == nil {
		em.handlers = make(map[string][]*Binding)
	}
	em.handlers[name] = append(em.handlers[name], b)
	return b
}

// Forward arranges for events named name on em to be re-emitted on to under
// the name as. The forwarded event is the same *Event, retargeted to to and
// renamed to as.
func (em *Emitter) Forward(name string, to *Emitter, as string) *Binding {
	b := em.Bind(name, func(ev *Event) { to.emitForwarded(as, ev) })
	b.forwardTo = to
	to.forwardings = append(to.forwardings, b)
	return b
}

// StopForwarding unregisters forwardings into em. If name is non-empty, only
// forwardings of events with that name (on the source emitter) are affected.
func (em *Emitter) StopForwarding(name string) {
	var retain []*Binding
	for _, b := range em.forwardings {
		if name == "" || b.name == name {
			b.dead = true
			b.em.remove(b)
		} else {
			retain = append(retain, b)
		}
	}
	em.forwardings = retain
}

// Unbind unregisters all handlers of the named event. If name is empty, it
// unregisters all handlers of all events, as well as all forwardings into em.
func (em *Emitter) Unbind(name string) {
	if name == "" {
		for _, bs := range em.handlers {
			for _, b := range bs {
				b.dead = true
			}
		}
		em.handlers = nil
		em.StopForwarding("")
		return
	}
	for _, b := range em.handlers[name] {
		b.dead = true
	}
	delete(em.handlers, name)
}

// HasHandlers reports whether any handler is registered for the named event.
func (em *Emitter) HasHandlers(name string) bool {
	return len(em.handlers[name]) > 0
}

// Emit calls all handlers registered for the named event with a new Event
// carrying data.
func (em *Emitter) Emit(name string, data any) {
	em.dispatch(name, newEvent(name, em, data))
}

func (em *Emitter) emitForwarded(name string, ev *Event) {
	ev.names = append(ev.names, name)
	ev.targets = append(ev.targets, em)
	em.dispatch(name, ev)
}

func (em *Emitter) dispatch(name string, ev *Event) {
	bs := em.handlers[name]
	if len(bs) == 0 {
		return
	}
	// Handlers may bind or unbind while we are iterating.
	bs = append([]*Binding(nil), bs...)
	for _, b := range bs {
		if !b.dead {
			b.handler(ev)
		}
	}
}

func (em *Emitter) remove(b *Binding) {
	bs := em.handlers[b.name]
	for i, x := range bs {
		if x == b {
			em.handlers[b.name] = append(bs[:i:i], bs[i+1:]...)
			break
		}
	}
	if len(em.handlers[b.name]) == 0 {
		delete(em.handlers, b.name)
	}
}

func (em *Emitter) dropForwarding(b *Binding) {
	for i, x := range em.forwardings {
		if x == b {
			em.forwardings = append(em.forwardings[:i:i], em.forwardings[i+1:]...)
			return
		}
	}
}
