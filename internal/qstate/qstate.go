// Package qstate implements the Q-regime's linear resource state
// machine: a resource table plus a binding environment, with alloc,
// move, consume, and use-check operations enforcing single-ownership.
package qstate

import (
	"fmt"

	"github.com/dustlang/dustrun/internal/faults"
	"github.com/dustlang/dustrun/internal/ordered"
)

// ResState is the lifecycle state of a resource.
type ResState int

const (
	Live ResState = iota
	Consumed
	Invalid
)

func (s ResState) String() string {
	switch s {
	case Live:
		return "Live"
	case Consumed:
		return "Consumed"
	case Invalid:
		return "Invalid"
	default:
		return "Unknown"
	}
}

// ResID is an opaque resource identifier of the form "qres:<hint>:<n>".
type ResID string

// ResMeta is a resource's declared type and current lifecycle state.
type ResMeta struct {
	DeclaredType string
	State        ResState
}

// Binding ties a name to a resource id. Moved is set once the binding
// has been superseded by a move, at which point the name is no longer
// usable even though the resource itself may still be Live under its new
// name.
type Binding struct {
	Resource ResID
	Moved    bool
}

// State is one Q-regime invocation's resource table and binding
// environment. A State is created fresh per entrypoint call and owned
// exclusively by that call; it is never shared across invocations.
type State struct {
	resources    *ordered.Map[ResMeta]
	env          *ordered.Map[Binding]
	allocCounter uint64
}

// New returns an empty State.
func New() *State {
	return &State{
		resources: ordered.New[ResMeta](),
		env:       ordered.New[Binding](),
	}
}

// Alloc binds name to a freshly minted Live resource of the given
// declared type. name must not already be bound.
func (s *State) Alloc(name, declaredType string) (ResID, error) {
	if s.env.Has(name) {
		return "", faults.NewInadmissible("Q alloc failed: name already bound: %s", name)
	}
	s.allocCounter++
	id := ResID(fmt.Sprintf("qres:%s:%d", name, s.allocCounter))
	s.resources.Set(string(id), ResMeta{DeclaredType: declaredType, State: Live})
	s.env.Set(name, Binding{Resource: id})
	return id, nil
}

// Move rebinds src's resource to dst, marking src moved. dst must not
// already be bound; src must be bound, not moved, and its resource must
// be Live.
func (s *State) Move(src, dst string) error {
	if s.env.Has(dst) {
		return faults.NewInadmissible("Q move failed: destination already bound: %s", dst)
	}
	srcBinding, ok := s.env.Get(src)
	if !ok {
		return faults.NewInadmissible("Q move failed: unknown binding: %s", src)
	}
	if srcBinding.Moved {
		return faults.NewInadmissible("Q move failed: binding already moved: %s", src)
	}
	if err := s.ensureLive(srcBinding.Resource, src, "mov"); err != nil {
		return err
	}
	srcBinding.Moved = true
	s.env.Set(src, srcBinding)
	s.env.Set(dst, Binding{Resource: srcBinding.Resource})
	return nil
}

// Consume marks name's resource Consumed and its binding moved, making
// every alias of the resource unusable from this point on.
func (s *State) Consume(name, reason string) error {
	binding, ok := s.env.Get(name)
	if !ok {
		return faults.NewInadmissible("Q consume failed: unknown binding: %s", name)
	}
	if binding.Moved {
		return faults.NewInadmissible("Q consume failed: binding already moved: %s", name)
	}
	if err := s.ensureLive(binding.Resource, name, reason); err != nil {
		return err
	}
	meta, _ := s.resources.Get(string(binding.Resource))
	meta.State = Consumed
	s.resources.Set(string(binding.Resource), meta)
	binding.Moved = true
	s.env.Set(name, binding)
	return nil
}

// RequireUsable checks that name is bound, not moved, and its resource
// is Live, returning the resource id without changing any state.
func (s *State) RequireUsable(name, op string) (ResID, error) {
	binding, ok := s.env.Get(name)
	if !ok {
		return "", faults.NewInadmissible("Q use failed: unknown binding: %s (op=%s)", name, op)
	}
	if binding.Moved {
		return "", faults.NewInadmissible("Q use failed: binding already moved: %s (op=%s)", name, op)
	}
	if err := s.ensureLive(binding.Resource, name, op); err != nil {
		return "", err
	}
	return binding.Resource, nil
}

func (s *State) ensureLive(id ResID, name, op string) error {
	meta, ok := s.resources.Get(string(id))
	if !ok {
		return faults.NewInadmissible("Q use failed: unknown binding: %s (op=%s)", name, op)
	}
	switch meta.State {
	case Live:
		return nil
	case Consumed:
		return faults.NewInadmissible("Q use failed: resource already consumed: %s (binding=%s op=%s)", id, name, op)
	default:
		return faults.NewInadmissible("Q use failed: resource invalid: %s (binding=%s op=%s)", id, name, op)
	}
}

// ResourceType returns the declared type of name's current resource.
func (s *State) ResourceType(name string) (string, bool) {
	binding, ok := s.env.Get(name)
	if !ok {
		return "", false
	}
	meta, ok := s.resources.Get(string(binding.Resource))
	if !ok {
		return "", false
	}
	return meta.DeclaredType, true
}

// Snapshot is a deterministic, order-preserving view of a State's
// resource table and binding environment, useful for tests and tracing.
type Snapshot struct {
	Resources []ResourceSnapshot
	Bindings  []BindingSnapshot
}

// ResourceSnapshot is one resource table entry in table order.
type ResourceSnapshot struct {
	ID   ResID
	Meta ResMeta
}

// BindingSnapshot is one environment entry in binding order.
type BindingSnapshot struct {
	Name    string
	Binding Binding
}

// Snapshot captures the current resource table and bindings in
// insertion order.
func (s *State) Snapshot() Snapshot {
	snap := Snapshot{}
	for _, id := range s.resources.Keys() {
		meta, _ := s.resources.Get(id)
		snap.Resources = append(snap.Resources, ResourceSnapshot{ID: ResID(id), Meta: meta})
	}
	for _, name := range s.env.Keys() {
		binding, _ := s.env.Get(name)
		snap.Bindings = append(snap.Bindings, BindingSnapshot{Name: name, Binding: binding})
	}
	return snap
}
