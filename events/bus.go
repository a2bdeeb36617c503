// Package events broadcasts lifecycle notifications of a run to registered
// observers.
//
// An observer is any comparable value (normally a pointer) implementing one or
// more of the per-kind interfaces below. Notifications are delivered only to
// observers implementing the matching interface; the others are skipped.
package events

import (
	"errors"
	"fmt"
	"reflect"
	"sync"

	"github.com/ethereum-optimism/infra/peck/types"
)

// Kind names a notification.
type Kind string

const (
	Started               Kind = "started"
	Finished              Kind = "finished"
	StartedSpecification  Kind = "started_specification"
	FinishedSpecification Kind = "finished_specification"
	ReceivedMissing       Kind = "received_missing"
	ReceivedException     Kind = "received_exception"
	AtExit                Kind = "at_exit"
)

// Kinds lists every recognized notification kind.
var Kinds = []Kind{
	Started,
	Finished,
	StartedSpecification,
	FinishedSpecification,
	ReceivedMissing,
	ReceivedException,
	AtExit,
}

var (
	ErrUnknownKind   = errors.New("unknown notification kind")
	ErrNotComparable = errors.New("observer has no identity")
)

// Valid reports whether k is one of Kinds.
func (k Kind) Valid() bool {
	switch k {
	case Started, Finished, StartedSpecification, FinishedSpecification, ReceivedMissing, ReceivedException, AtExit:
		return true
	}
	return false
}

// ParseKind converts a string to a Kind, rejecting unknown names.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

type StartedObserver interface {
	Started()
}

type FinishedObserver interface {
	Finished()
}

type StartedSpecificationObserver interface {
	StartedSpecification(spec *types.Specification)
}

type FinishedSpecificationObserver interface {
	FinishedSpecification(spec *types.Specification)
}

type ReceivedMissingObserver interface {
	ReceivedMissing(spec *types.Specification)
}

type ReceivedExceptionObserver interface {
	ReceivedException(spec *types.Specification, err error)
}

type AtExitObserver interface {
	AtExit()
}

// Event is one notification. Specification is set for the per-specification
// kinds and Err for ReceivedException.
type Event struct {
	Kind          Kind
	Specification *types.Specification
	Err           error
}

// Bus is the set of registered observers. Deliveries are serialized: at most
// one notification is being delivered at any time, whichever worker raised it.
// Observers must not notify the bus they are registered on.
type Bus struct {
	mu        sync.RWMutex
	observers []any

	deliver sync.Mutex
}

// NewBus creates an empty bus.
func NewBus(observers ...any) *Bus {
	b := &Bus{}
	for _, o := range observers {
		if _, err := b.Add(o); err != nil {
			panic(err)
		}
	}
	return b
}

// Add registers an observer. It returns false if the observer is already registered.
func (b *Bus) Add(observer any) (bool, error) {
	if observer == nil || !reflect.TypeOf(observer).Comparable() {
		return false, fmt.Errorf("%w: %T", ErrNotComparable, observer)
	}
	if o, ok := observer.(*Bus); ok && o == b {
		return false, errors.New("bus cannot observe itself")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.indexOf(observer) >= 0 {
		return false, nil
	}
	b.observers = append(b.observers, observer)
	return true, nil
}

// Remove deregisters an observer. It returns false if it was not registered.
func (b *Bus) Remove(observer any) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	i := b.indexOf(observer)
	if i < 0 {
		return false
	}
	b.observers = append(b.observers[:i], b.observers[i+1:]...)
	return true
}

// Contains reports whether the observer is registered.
func (b *Bus) Contains(observer any) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.indexOf(observer) >= 0
}

// Len returns the number of registered observers.
func (b *Bus) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.observers)
}

func (b *Bus) indexOf(observer any) int {
	if observer == nil || !reflect.TypeOf(observer).Comparable() {
		return -1
	}
	for i, o := range b.observers {
		if o == observer {
			return i
		}
	}
	return -1
}

func (b *Bus) snapshot() []any {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return append([]any(nil), b.observers...)
}

// Notify delivers ev to every observer implementing its kind.
func (b *Bus) Notify(ev Event) error {
	if !ev.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, ev.Kind)
	}

	observers := b.snapshot()

	b.deliver.Lock()
	defer b.deliver.Unlock()
	for _, o := range observers {
		deliver(o, ev)
	}
	return nil
}

func deliver(o any, ev Event) {
	switch ev.Kind {
	case Started:
		if h, ok := o.(StartedObserver); ok {
			h.Started()
		}
	case Finished:
		if h, ok := o.(FinishedObserver); ok {
			h.Finished()
		}
	case StartedSpecification:
		if h, ok := o.(StartedSpecificationObserver); ok {
			h.StartedSpecification(ev.Specification)
		}
	case FinishedSpecification:
		if h, ok := o.(FinishedSpecificationObserver); ok {
			h.FinishedSpecification(ev.Specification)
		}
	case ReceivedMissing:
		if h, ok := o.(ReceivedMissingObserver); ok {
			h.ReceivedMissing(ev.Specification)
		}
	case ReceivedException:
		if h, ok := o.(ReceivedExceptionObserver); ok {
			h.ReceivedException(ev.Specification, ev.Err)
		}
	case AtExit:
		if h, ok := o.(AtExitObserver); ok {
			h.AtExit()
		}
	}
}

func (b *Bus) mustNotify(ev Event) {
	if err := b.Notify(ev); err != nil {
		panic(err)
	}
}

// The typed helpers below implement every observer interface, so a Bus can be
// passed wherever a single observer or a types.Delegate is expected.

func (b *Bus) Started()  { b.mustNotify(Event{Kind: Started}) }
func (b *Bus) Finished() { b.mustNotify(Event{Kind: Finished}) }
func (b *Bus) AtExit()   { b.mustNotify(Event{Kind: AtExit}) }

func (b *Bus) StartedSpecification(spec *types.Specification) {
	b.mustNotify(Event{Kind: StartedSpecification, Specification: spec})
}

func (b *Bus) FinishedSpecification(spec *types.Specification) {
	b.mustNotify(Event{Kind: FinishedSpecification, Specification: spec})
}

func (b *Bus) ReceivedMissing(spec *types.Specification) {
	b.mustNotify(Event{Kind: ReceivedMissing, Specification: spec})
}

func (b *Bus) ReceivedException(spec *types.Specification, err error) {
	b.mustNotify(Event{Kind: ReceivedException, Specification: spec, Err: err})
}

var _ types.Delegate = (*Bus)(nil)
