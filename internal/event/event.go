// Package event provides the cooperative event queue the client runs on.
// All state transitions, timer fires and stream reads are dispatched serially
// from one goroutine; handlers never run concurrently with each other.
package event

import "sync"

// Type identifies a kind of event. Types are allocated process-wide on first
// use via RegisterTypeOnce and never reused.
type Type uint32

const (
	// TypeUnknown is the zero Type; no event carries it.
	TypeUnknown Type = iota
	// TypeTimer is posted when a one-shot timer fires. The event target is
	// the *Timer handle unless a target was supplied at creation.
	TypeTimer

	typeReserved
)

var (
	typeMu   sync.Mutex
	nextType = typeReserved
	names    = map[Type]string{TypeTimer: "timer"}
)

// RegisterTypeOnce allocates a new event type and stores it in *storage the
// first time it is called for that storage; later calls return the cached
// value. Callers keep the storage in a package-level var next to the getter.
func RegisterTypeOnce(storage *Type, name string) Type {
	typeMu.Lock()
	defer typeMu.Unlock()
	if *storage == TypeUnknown {
		nextType++
		*storage = nextType
		names[nextType] = name
	}
	return *storage
}

// TypeName returns the registration name of t, or "" for unknown types.
func TypeName(t Type) string {
	typeMu.Lock()
	defer typeMu.Unlock()
	return names[t]
}

// Event is a typed message addressed to a target. Target is an opaque
// comparable identity; handlers are looked up by (Type, Target).
type Event struct {
	Type   Type
	Target any
	Data   any

	// CallerOwned marks Data as owned by whichever handler receives the
	// event; the queue will not touch it after dispatch.
	CallerOwned bool
}

// Handler is invoked for each dispatched event it was adopted for.
type Handler func(Event)
