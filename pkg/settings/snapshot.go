// Package settings holds element configuration snapshots and the store that
// commits changes to them.
//
// A Snapshot is an immutable JSON object. Every mutation produces a new
// snapshot, and the Store commits the previous and current snapshot in one
// step so that change detection always sees a consistent pair.
package settings

import (
	"fmt"
	"reflect"
	"slices"
	"sort"

	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

const emptyObject = "{}"

// Snapshot is an immutable set of setting values for one element instance.
// The zero value is an empty snapshot.
type Snapshot struct {
	raw string
}

// Empty returns a snapshot without settings.
func Empty() Snapshot {
	return Snapshot{raw: emptyObject}
}

// Parse builds a snapshot from a JSON object.
func Parse(data []byte) (Snapshot, error) {
	if !gjson.ValidBytes(data) {
		return Snapshot{}, fmt.Errorf("settings: invalid JSON")
	}
	res := gjson.ParseBytes(data)
	if !res.IsObject() {
		return Snapshot{}, fmt.Errorf("settings: expected a JSON object, got %s", res.Type)
	}
	return Snapshot{raw: res.Get("@ugly").Raw}, nil
}

// FromMap builds a snapshot from Go values. Keys are written in sorted
// order so equal maps produce byte-identical snapshots.
func FromMap(values map[string]any) (Snapshot, error) {
	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	s := Empty()
	for _, k := range keys {
		next, err := s.With(k, values[k])
		if err != nil {
			return Snapshot{}, err
		}
		s = next
	}
	return s, nil
}

// Raw returns the snapshot as compact JSON.
func (s Snapshot) Raw() string {
	if s.raw == "" {
		return emptyObject
	}
	return s.raw
}

// Get returns the raw JSON result for key.
func (s Snapshot) Get(key string) gjson.Result {
	return gjson.Get(s.Raw(), gjson.Escape(key))
}

// Has reports whether key is set.
func (s Snapshot) Has(key string) bool {
	return s.Get(key).Exists()
}

// Value returns the string form of the value for key, or "" when unset.
func (s Snapshot) Value(key string) string {
	return s.Get(key).String()
}

// Field returns the string form of a field of an object-valued setting.
func (s Snapshot) Field(key, field string) string {
	return gjson.Get(s.Raw(), gjson.Escape(key)+"."+gjson.Escape(field)).String()
}

// Keys returns the setting keys in sorted order.
func (s Snapshot) Keys() []string {
	var keys []string
	gjson.Parse(s.Raw()).ForEach(func(k, _ gjson.Result) bool {
		keys = append(keys, k.String())
		return true
	})
	sort.Strings(keys)
	return keys
}

// Map decodes the snapshot into Go values.
func (s Snapshot) Map() map[string]any {
	m, ok := gjson.Parse(s.Raw()).Value().(map[string]any)
	if !ok {
		return map[string]any{}
	}
	return m
}

// With returns a copy of s with key set to v.
func (s Snapshot) With(key string, v any) (Snapshot, error) {
	raw, err := sjson.Set(s.Raw(), gjson.Escape(key), v)
	if err != nil {
		return s, fmt.Errorf("settings: set %q: %w", key, err)
	}
	return Snapshot{raw: raw}, nil
}

// WithField returns a copy of s with one field of an object-valued setting set to v.
func (s Snapshot) WithField(key, field string, v any) (Snapshot, error) {
	raw, err := sjson.Set(s.Raw(), gjson.Escape(key)+"."+gjson.Escape(field), v)
	if err != nil {
		return s, fmt.Errorf("settings: set %q[%s]: %w", key, field, err)
	}
	return Snapshot{raw: raw}, nil
}

// Without returns a copy of s with key removed.
func (s Snapshot) Without(key string) (Snapshot, error) {
	raw, err := sjson.Delete(s.Raw(), gjson.Escape(key))
	if err != nil {
		return s, fmt.Errorf("settings: delete %q: %w", key, err)
	}
	return Snapshot{raw: raw}, nil
}

// Merge returns a copy of base overlaid with every key of over.
func Merge(base, over Snapshot) (Snapshot, error) {
	out := base
	var err error
	gjson.Parse(over.Raw()).ForEach(func(k, v gjson.Result) bool {
		var raw string
		raw, err = sjson.SetRaw(out.Raw(), gjson.Escape(k.String()), v.Raw)
		if err != nil {
			return false
		}
		out = Snapshot{raw: raw}
		return true
	})
	return out, err
}

// Equal reports whether both snapshots hold the same values.
func (s Snapshot) Equal(other Snapshot) bool {
	return len(Diff(s, other)) == 0
}

// Keys is a sorted set of setting keys.
type Keys []string

// NewKeys returns the sorted, de-duplicated set of keys.
func NewKeys(keys ...string) Keys {
	out := slices.Clone(keys)
	slices.Sort(out)
	return Keys(slices.Compact(out))
}

// Contains reports whether key is in the set.
func (k Keys) Contains(key string) bool {
	_, found := slices.BinarySearch(k, key)
	return found
}

// Diff returns the keys whose value differs between before and after,
// including keys present on only one side.
func Diff(before, after Snapshot) Keys {
	b := gjson.Parse(before.Raw())
	a := gjson.Parse(after.Raw())

	var changed []string
	b.ForEach(func(k, v gjson.Result) bool {
		if !sameValue(v, a.Get(gjson.Escape(k.String()))) {
			changed = append(changed, k.String())
		}
		return true
	})
	a.ForEach(func(k, _ gjson.Result) bool {
		if !b.Get(gjson.Escape(k.String())).Exists() {
			changed = append(changed, k.String())
		}
		return true
	})
	return NewKeys(changed...)
}

func sameValue(a, b gjson.Result) bool {
	if a.Exists() != b.Exists() {
		return false
	}
	if a.Raw == b.Raw {
		return true
	}
	return reflect.DeepEqual(a.Value(), b.Value())
}
