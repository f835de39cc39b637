package controls

import (
	"fmt"
	"maps"
	"slices"
)

// Registry maps setting keys to control definitions for one element type.
// It is immutable once built.
type Registry struct {
	elementType  string
	templateType TemplateType
	version      string
	template     string

	controls []Control
	byName   map[string]int
}

// NewRegistry builds a registry from ordered control definitions.
// Responsive controls are expanded into device variants directly after
// their base control.
func NewRegistry(elementType string, templateType TemplateType, defs []Control) (*Registry, error) {
	r := &Registry{
		elementType:  elementType,
		templateType: templateType,
		byName:       make(map[string]int, len(defs)),
	}
	for _, def := range defs {
		if err := r.add(def); err != nil {
			return nil, err
		}
		if !def.Responsive {
			continue
		}
		for _, device := range ResponsiveDevices {
			variant := def
			variant.Name = def.Name + "_" + string(device)
			variant.Responsive = false
			variant.Device = device
			variant.Default = nil
			if err := r.add(variant); err != nil {
				return nil, err
			}
		}
	}
	return r, nil
}

func (r *Registry) add(def Control) error {
	if def.Name == "" {
		return fmt.Errorf("control without name in %q", r.elementType)
	}
	if _, dup := r.byName[def.Name]; dup {
		return fmt.Errorf("duplicate control %q in %q", def.Name, r.elementType)
	}
	if _, err := ParseRenderType(string(def.RenderType)); err != nil {
		return fmt.Errorf("control %q: %w", def.Name, err)
	}
	conds, err := parseConditions(def.Condition)
	if err != nil {
		return fmt.Errorf("control %q: %w", def.Name, err)
	}
	def.conditions = conds
	def.Selectors = slices.Clone(def.Selectors)
	def.ClassesDictionary = maps.Clone(def.ClassesDictionary)
	r.byName[def.Name] = len(r.controls)
	r.controls = append(r.controls, def)
	return nil
}

// ElementType returns the element type the registry describes.
func (r *Registry) ElementType() string { return r.elementType }

// TemplateType returns where the element type renders its markup.
func (r *Registry) TemplateType() TemplateType { return r.templateType }

// Version returns the schema version, if loaded from a schema file.
func (r *Registry) Version() string { return r.version }

// Template returns the local template source, if the schema declared one.
func (r *Registry) Template() string { return r.template }

// Lookup returns the control declared for key. The boolean is false when
// the key has no declared control.
func (r *Registry) Lookup(key string) (Control, bool) {
	i, ok := r.byName[key]
	if !ok {
		return Control{}, false
	}
	return r.controls[i].clone(), true
}

// Len returns the number of controls, including responsive variants.
func (r *Registry) Len() int { return len(r.controls) }

// Controls returns all controls in declaration order.
func (r *Registry) Controls() []Control {
	return r.filter(func(Control) bool { return true })
}

// StyleControls returns the style controls in declaration order.
func (r *Registry) StyleControls() []Control {
	return r.filter(Control.IsStyleControl)
}

// ClassControls returns the class controls in declaration order.
func (r *Registry) ClassControls() []Control {
	return r.filter(Control.IsClassControl)
}

// FontControls returns the font controls in declaration order.
func (r *Registry) FontControls() []Control {
	return r.filter(Control.IsFontControl)
}

// IsStyleControl reports whether key is declared as a style control.
func (r *Registry) IsStyleControl(key string) bool {
	c, ok := r.Lookup(key)
	return ok && c.IsStyleControl()
}

// IsClassControl reports whether key is declared as a class control.
func (r *Registry) IsClassControl(key string) bool {
	c, ok := r.Lookup(key)
	return ok && c.IsClassControl()
}

// Defaults returns the declared default of every control that has one.
func (r *Registry) Defaults() map[string]any {
	out := make(map[string]any)
	for _, c := range r.controls {
		if c.Default != nil {
			out[c.Name] = c.Default
		}
	}
	return out
}

func (c Control) clone() Control {
	c.Selectors = slices.Clone(c.Selectors)
	c.ClassesDictionary = maps.Clone(c.ClassesDictionary)
	return c
}

func (r *Registry) filter(keep func(Control) bool) []Control {
	var out []Control
	for _, c := range r.controls {
		if keep(c) {
			out = append(out, c.clone())
		}
	}
	return out
}
