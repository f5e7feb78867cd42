package events

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

type recorder struct{ events []*Event }

func (r *recorder) handler(ev *Event) { r.events = append(r.events, ev) }

func TestEmitter_BindEmitUnbind(t *testing.T) {
	var em Emitter
	var r1, r2 recorder
	b1 := em.Bind("change", r1.handler)
	em.Bind("change", r2.handler)
	em.Bind("other", r2.handler)

	em.Emit("change", 10)
	if len(r1.events) != 1 || len(r2.events) != 1 {
		t.Fatalf("got %d, %d events, want 1, 1", len(r1.events), len(r2.events))
	}
	if ev := r1.events[0]; ev.Data != 10 || ev.Name() != "change" || ev.Target() != &em {
		t.Errorf("got event %v, want data 10 named change targeting the emitter", ev)
	}
	if r1.events[0] != r2.events[0] {
		t.Errorf("handlers of one emission got different events")
	}

	b1.Unbind()
	b1.Unbind()
	em.Emit("change", 20)
	if len(r1.events) != 1 {
		t.Errorf("unbound handler was called")
	}
	if len(r2.events) != 2 {
		t.Errorf("remaining handler was not called")
	}

	em.Unbind("")
	em.Emit("change", 30)
	em.Emit("other", 30)
	if len(r2.events) != 2 {
		t.Errorf("handler called after Unbind(\"\")")
	}
}

func TestEmitter_UnbindDuringEmit(t *testing.T) {
	var em Emitter
	var called []string
	var b2 *Binding
	em.Bind("x", func(*Event) {
		called = append(called, "first")
		b2.Unbind()
	})
	b2 = em.Bind("x", func(*Event) { called = append(called, "second") })
	em.Emit("x", nil)
	if diff := cmp.Diff([]string{"first"}, called); diff != "" {
		t.Errorf("handlers called (-want +got):\n%s", diff)
	}
}

func TestEmitter_Forward(t *testing.T) {
	var src, dst Emitter
	var r recorder
	dst.Bind("exp_change", r.handler)
	src.Forward("change", &dst, "exp_change")

	src.Emit("change", "data")
	if len(r.events) != 1 {
		t.Fatalf("got %d forwarded events, want 1", len(r.events))
	}
	ev := r.events[0]
	if diff := cmp.Diff([]string{"change", "exp_change"}, ev.Names()); diff != "" {
		t.Errorf("Names() (-want +got):\n%s", diff)
	}
	if targets := ev.Targets(); len(targets) != 2 || targets[0] != &src || targets[1] != &dst {
		t.Errorf("Targets() -> %v, want [src dst]", targets)
	}

	dst.StopForwarding("change")
	src.Emit("change", "data")
	if len(r.events) != 1 {
		t.Errorf("event forwarded after StopForwarding")
	}
	if src.HasHandlers("change") {
		t.Errorf("forwarding handler still registered on source")
	}
}

func TestEventIDsIncrease(t *testing.T) {
	var em Emitter
	var r recorder
	em.Bind("e", r.handler)
	em.Emit("e", nil)
	em.Emit("e", nil)
	if r.events[0].ID == r.events[1].ID {
		t.Errorf("two emissions got the same ID %d", r.events[0].ID)
	}
}
