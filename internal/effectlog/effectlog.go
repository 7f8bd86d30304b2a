// Package effectlog implements the DVM's append-only effect log and its
// monotonic logical-tick clock.
package effectlog

// Event is a single appended effect: a kind tag and its rendered payload
// string.
type Event struct {
	Kind    string `json:"kind"`
	Payload string `json:"payload"`
}

// Log is an ordered, append-only sequence of effect events.
type Log struct {
	Events []Event `json:"events"`
}

// New returns an empty Log.
func New() *Log {
	return &Log{Events: []Event{}}
}

// Append records an effect event in emission order.
func (l *Log) Append(kind, payload string) {
	l.Events = append(l.Events, Event{Kind: kind, Payload: payload})
}

// Empty reports whether no events have been appended.
func (l *Log) Empty() bool {
	return l == nil || len(l.Events) == 0
}

// Clone returns a deep copy; later appends to l do not show up in the
// copy.
func (l *Log) Clone() *Log {
	out := New()
	if l == nil {
		return out
	}
	out.Events = append(out.Events, l.Events...)
	return out
}

// Tick is a saturating unsigned 64-bit logical clock.
type Tick uint64

const maxTick Tick = ^Tick(0)

// State wraps a single tick counter, advanced once per executed
// statement. A K- or Q-regime Return does not advance it; the Φ-regime
// interpreter advances it for Return like any other statement.
type State struct {
	Tick Tick `json:"tick"`
}

// NewState returns a State at tick 0.
func NewState() *State {
	return &State{}
}

// Step advances the tick by one, saturating at the maximum uint64 value
// instead of wrapping.
func (s *State) Step() {
	if s.Tick == maxTick {
		return
	}
	s.Tick++
}

// Clone returns a copy of s.
func (s *State) Clone() *State {
	if s == nil {
		return NewState()
	}
	return &State{Tick: s.Tick}
}
