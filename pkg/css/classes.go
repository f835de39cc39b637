package css

import (
	"slices"
	"strings"

	"github.com/go-drift/pagebuilder/pkg/controls"
	"github.com/go-drift/pagebuilder/pkg/settings"
)

// ClassList is an ordered set of class names.
type ClassList struct {
	names []string
}

// ParseClassList splits a class attribute value.
func ParseClassList(attr string) *ClassList {
	cl := &ClassList{}
	for _, name := range strings.Fields(attr) {
		cl.Add(name)
	}
	return cl
}

// Add appends name if it is not present.
func (c *ClassList) Add(name string) {
	if name == "" || slices.Contains(c.names, name) {
		return
	}
	c.names = append(c.names, name)
}

// Remove deletes name if present.
func (c *ClassList) Remove(name string) {
	if i := slices.Index(c.names, name); i >= 0 {
		c.names = slices.Delete(c.names, i, i+1)
	}
}

// Has reports whether name is present.
func (c *ClassList) Has(name string) bool {
	return slices.Contains(c.names, name)
}

// Names returns a copy of the class names in order.
func (c *ClassList) Names() []string {
	return slices.Clone(c.names)
}

// String returns the class attribute value.
func (c *ClassList) String() string {
	return strings.Join(c.names, " ")
}

// DerivedClass returns the prefixed class a class control contributes for
// value, or "" when the control is inactive or the derived name is empty.
func DerivedClass(control controls.Control, value string, values controls.ValueSource) string {
	name := control.ClassFor(value)
	if name == "" || !controls.Active(control, values) {
		return ""
	}
	return control.Prefix() + name
}

// ApplyClasses removes the classes derived from the previous values, then
// adds the classes derived from the current values. Removal runs for every
// control before any addition so that controls sharing a prefix do not
// undo each other.
func ApplyClasses(list *ClassList, classControls []controls.Control, previous, current settings.Snapshot) {
	for _, control := range classControls {
		name := control.ClassFor(previous.Value(control.Name))
		if name == "" {
			continue
		}
		list.Remove(control.Prefix() + name)
	}
	for _, control := range classControls {
		if cls := DerivedClass(control, current.Value(control.Name), current); cls != "" {
			list.Add(cls)
		}
	}
}
