package effectlog

import "testing"

func TestAppendAndEmpty(t *testing.T) {
	l := New()
	if !l.Empty() {
		t.Fatal("new log should be empty")
	}
	l.Append("emit", "hi")
	if l.Empty() {
		t.Fatal("log should not be empty after Append")
	}
	if len(l.Events) != 1 || l.Events[0].Kind != "emit" || l.Events[0].Payload != "hi" {
		t.Fatalf("unexpected events: %+v", l.Events)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	l := New()
	l.Append("a", "1")
	c := l.Clone()
	l.Append("b", "2")
	if len(c.Events) != 1 {
		t.Fatalf("clone should not see later appends, got %+v", c.Events)
	}
}

func TestStateStep(t *testing.T) {
	s := NewState()
	if s.Tick != 0 {
		t.Fatalf("new state tick = %d, want 0", s.Tick)
	}
	s.Step()
	s.Step()
	if s.Tick != 2 {
		t.Fatalf("tick = %d, want 2", s.Tick)
	}
}

func TestStateStepSaturates(t *testing.T) {
	s := &State{Tick: maxTick}
	s.Step()
	if s.Tick != maxTick {
		t.Fatalf("tick = %d, want saturated at %d", s.Tick, maxTick)
	}
}

func TestStateCloneIsIndependent(t *testing.T) {
	s := NewState()
	s.Step()
	c := s.Clone()
	s.Step()
	if c.Tick != 1 {
		t.Fatalf("clone tick = %d, want 1", c.Tick)
	}
}
