package testutil

import (
	"testing"

	"src.circular.dev/pkg/events"
)

type cleanuper struct{ fns []func() }

func (c *cleanuper) Cleanup(fn func()) { c.fns = append(c.fns, fn) }

func (c *cleanuper) runCleanups() {
	for i := len(c.fns) - 1; i >= 0; i-- {
		c.fns[i]()
	}
}

func TestSet(t *testing.T) {
	c := &cleanuper{}
	s := "old"
	Set(c, &s, "new")
	if s != "new" {
		t.Errorf("after Set, s = %q, want %q", s, "new")
	}
	c.runCleanups()
	if s != "old" {
		t.Errorf("after cleanup, s = %q, want %q", s, "old")
	}
}

func TestRecorder(t *testing.T) {
	c := &cleanuper{}
	var em events.Emitter
	r := Record(c, &em, "change")
	em.Emit("change", 1)
	em.Emit("other", 2)
	em.Emit("change", 3)
	if r.Count() != 2 || r.Last() != 3 {
		t.Errorf("recorded %v, want [1 3]", r.Data())
	}
	c.runCleanups()
	em.Emit("change", 4)
	if r.Count() != 2 {
		t.Errorf("recorder still bound after cleanup")
	}
	r.Reset()
	if r.Count() != 0 || r.Last() != nil {
		t.Errorf("Reset did not clear recorder")
	}
}
