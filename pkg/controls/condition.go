package controls

import (
	"fmt"
	"regexp"
	"slices"
	"sort"
)

// ValueSource exposes setting values as strings for condition evaluation.
type ValueSource interface {
	// Value returns the setting value, or "" when the key is unset.
	Value(key string) string
	// Field returns a field of an object-valued setting, or "".
	Field(key, field string) string
}

type condition struct {
	key    string
	field  string
	negate bool
	values []string
}

var conditionKeyPattern = regexp.MustCompile(`^([A-Za-z0-9_-]+)(?:\[([A-Za-z0-9_]+)\])?(!?)$`)

// parseConditions normalizes a condition map. Keys may carry a field
// selector ("size[unit]") and a trailing "!" for negation; list values
// match any of their entries.
func parseConditions(raw map[string]any) ([]condition, error) {
	if len(raw) == 0 {
		return nil, nil
	}
	keys := make([]string, 0, len(raw))
	for k := range raw {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]condition, 0, len(keys))
	for _, k := range keys {
		m := conditionKeyPattern.FindStringSubmatch(k)
		if m == nil {
			return nil, fmt.Errorf("invalid condition key %q", k)
		}
		c := condition{key: m[1], field: m[2], negate: m[3] == "!"}
		switch v := raw[k].(type) {
		case []any:
			for _, item := range v {
				c.values = append(c.values, conditionString(item))
			}
		case []string:
			c.values = append(c.values, v...)
		default:
			c.values = []string{conditionString(v)}
		}
		out = append(out, c)
	}
	return out, nil
}

func conditionString(v any) string {
	if v == nil {
		return ""
	}
	return fmt.Sprint(v)
}

// Active reports whether every condition of c holds for the given values.
// Controls without conditions are always active.
func Active(c Control, values ValueSource) bool {
	conds := c.conditions
	if conds == nil && len(c.Condition) > 0 {
		var err error
		if conds, err = parseConditions(c.Condition); err != nil {
			return false
		}
	}
	for _, cond := range conds {
		var got string
		if cond.field != "" {
			got = values.Field(cond.key, cond.field)
		} else {
			got = values.Value(cond.key)
		}
		if slices.Contains(cond.values, got) == cond.negate {
			return false
		}
	}
	return true
}
