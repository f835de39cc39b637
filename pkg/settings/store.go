package settings

import (
	"fmt"

	"github.com/tidwall/gjson"
)

// Change is delivered to listeners after a commit.
type Change struct {
	Before Snapshot
	After  Snapshot
	Keys   Keys
}

// Listener receives committed changes.
type Listener func(Change)

// Validator checks a proposed value before it is committed. Returning an
// error rejects the whole mutation.
type Validator func(key string, value gjson.Result) error

// ValidationError reports a value rejected by a validator.
type ValidationError struct {
	Key string
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("settings: invalid value for %q: %v", e.Key, e.Err)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

type listenerEntry struct {
	fn      Listener
	removed bool
}

// Store owns the current and previous snapshot of one element instance and
// notifies listeners when a mutation changes at least one value.
//
// Store is NOT thread-safe. Mutations must be delivered from the editor's
// UI thread, which serializes them.
type Store struct {
	current    Snapshot
	previous   Snapshot
	listeners  []*listenerEntry
	validators map[string][]Validator
	closed     bool
}

// NewStore creates a store whose current and previous snapshots are initial.
func NewStore(initial Snapshot) *Store {
	return &Store{current: initial, previous: initial}
}

// Current returns the committed snapshot.
func (s *Store) Current() Snapshot { return s.current }

// Previous returns the snapshot that was current before the last commit.
func (s *Store) Previous() Snapshot { return s.previous }

// Listen registers fn for committed changes and returns a function that
// detaches it.
func (s *Store) Listen(fn Listener) func() {
	if fn == nil || s.closed {
		return func() {}
	}
	entry := &listenerEntry{fn: fn}
	s.listeners = append(s.listeners, entry)
	return func() {
		entry.removed = true
		for i, l := range s.listeners {
			if l == entry {
				s.listeners = append(s.listeners[:i], s.listeners[i+1:]...)
				break
			}
		}
	}
}

// Listeners returns the number of attached listeners.
func (s *Store) Listeners() int { return len(s.listeners) }

// AddValidator registers a validator for key.
func (s *Store) AddValidator(key string, v Validator) {
	if v == nil {
		return
	}
	if s.validators == nil {
		s.validators = make(map[string][]Validator)
	}
	s.validators[key] = append(s.validators[key], v)
}

// Set commits a single value.
func (s *Store) Set(key string, value any) error {
	next, err := s.current.With(key, value)
	if err != nil {
		return err
	}
	return s.Commit(next)
}

// SetField commits one field of an object-valued setting.
func (s *Store) SetField(key, field string, value any) error {
	next, err := s.current.WithField(key, field, value)
	if err != nil {
		return err
	}
	return s.Commit(next)
}

// SetMany commits several values as one change.
func (s *Store) SetMany(values map[string]any) error {
	over, err := FromMap(values)
	if err != nil {
		return err
	}
	next, err := Merge(s.current, over)
	if err != nil {
		return err
	}
	return s.Commit(next)
}

// Commit replaces the current snapshot with next. Listeners are notified
// only when at least one key changed; the previous snapshot advances in the
// same step as the current one.
func (s *Store) Commit(next Snapshot) error {
	if s.closed {
		return fmt.Errorf("settings: store closed")
	}
	keys := Diff(s.current, next)
	if len(keys) == 0 {
		return nil
	}
	for _, key := range keys {
		for _, validate := range s.validators[key] {
			if err := validate(key, next.Get(key)); err != nil {
				return &ValidationError{Key: key, Err: err}
			}
		}
	}

	change := Change{Before: s.current, After: next, Keys: keys}
	s.previous, s.current = s.current, next

	listeners := append([]*listenerEntry(nil), s.listeners...)
	for _, l := range listeners {
		if !l.removed {
			l.fn(change)
		}
	}
	return nil
}

// Close detaches all listeners. Further commits fail.
func (s *Store) Close() {
	for _, l := range s.listeners {
		l.removed = true
	}
	s.listeners = nil
	s.closed = true
}
