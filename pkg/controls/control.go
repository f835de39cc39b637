package controls

import "fmt"

// RenderType declares how sensitive the rendered element is to a control's value.
type RenderType string

const (
	// RenderFull is the unspecified render type. The markup depends on the
	// value and the element must be fully re-rendered.
	RenderFull RenderType = ""
	// RenderNone means the value has no visual effect.
	RenderNone RenderType = "none"
	// RenderUI means only styles, classes or the element id depend on the value.
	RenderUI RenderType = "ui"
	// RenderTemplate means the markup depends on the value.
	RenderTemplate RenderType = "template"
)

// ParseRenderType normalizes a declared render type. "full" is accepted as
// an explicit spelling of the unspecified render type.
func ParseRenderType(s string) (RenderType, error) {
	switch s {
	case "", "full":
		return RenderFull, nil
	case "none":
		return RenderNone, nil
	case "ui":
		return RenderUI, nil
	case "template":
		return RenderTemplate, nil
	default:
		return RenderFull, fmt.Errorf("unknown render type %q", s)
	}
}

func (r RenderType) String() string {
	if r == RenderFull {
		return "full"
	}
	return string(r)
}

// TemplateType says where an element type's markup is produced.
type TemplateType string

const (
	// TemplateLocal elements re-render their template in process.
	TemplateLocal TemplateType = "local"
	// TemplateRemote elements request markup from the remote render back end.
	TemplateRemote TemplateType = "remote"
)

// ParseTemplateType normalizes a declared template type. An empty value
// defaults to TemplateLocal.
func ParseTemplateType(s string) (TemplateType, error) {
	switch s {
	case "", "local", "js":
		return TemplateLocal, nil
	case "remote":
		return TemplateRemote, nil
	default:
		return TemplateLocal, fmt.Errorf("unknown template type %q", s)
	}
}

// Type is the editing widget kind of a control.
type Type string

// Common control types.
const (
	TypeText       Type = "text"
	TypeTextarea   Type = "textarea"
	TypeColor      Type = "color"
	TypeSlider     Type = "slider"
	TypeDimensions Type = "dimensions"
	TypeSelect     Type = "select"
	TypeChoose     Type = "choose"
	TypeSwitcher   Type = "switcher"
	TypeNumber     Type = "number"
	TypeFont       Type = "font"
	TypeHidden     Type = "hidden"
)

// Device identifies a responsive breakpoint.
type Device string

const (
	DeviceDesktop Device = ""
	DeviceTablet  Device = "tablet"
	DeviceMobile  Device = "mobile"
)

// MaxWidth returns the breakpoint width in pixels, or 0 for desktop.
func (d Device) MaxWidth() int {
	switch d {
	case DeviceTablet:
		return 1024
	case DeviceMobile:
		return 767
	default:
		return 0
	}
}

// ResponsiveDevices lists the devices a responsive control expands to,
// narrowest last so that mobile rules follow tablet rules.
var ResponsiveDevices = []Device{DeviceTablet, DeviceMobile}

// Selector is one CSS rule template of a style control.
type Selector struct {
	// Selector may contain the {{WRAPPER}} and {{ID}} placeholders.
	Selector string
	// Declaration may contain value tokens such as {{VALUE}} or {{SIZE}}{{UNIT}}.
	Declaration string
}

// Control is the definition of a single setting key. Controls are values;
// a registry hands out copies and never exposes its own storage.
type Control struct {
	Name       string
	Type       Type
	RenderType RenderType

	// Selectors are the ordered CSS rule templates. A control with at
	// least one selector is a style control.
	Selectors []Selector

	// PrefixClass is prepended to the derived class name. A non-nil
	// prefix makes the control a class control, even when empty.
	PrefixClass *string
	// ClassesDictionary maps values to class names. Values missing from
	// the dictionary are used literally.
	ClassesDictionary map[string]string

	// Condition gates the control on other settings. See Active.
	Condition map[string]any

	// Default is the value a new element instance starts with.
	Default any

	// Responsive controls expand into one variant per ResponsiveDevices entry.
	Responsive bool
	// Device is set on expanded responsive variants.
	Device Device

	conditions []condition
}

// IsStyleControl reports whether the value is substituted into CSS rules.
func (c Control) IsStyleControl() bool {
	return len(c.Selectors) > 0
}

// IsClassControl reports whether the value toggles a CSS class.
func (c Control) IsClassControl() bool {
	return c.PrefixClass != nil
}

// IsFontControl reports whether the value names a font family to load.
func (c Control) IsFontControl() bool {
	return c.Type == TypeFont
}

// Prefix returns the class prefix, or "" for non-class controls.
func (c Control) Prefix() string {
	if c.PrefixClass == nil {
		return ""
	}
	return *c.PrefixClass
}

// ClassFor derives the class name for a value: the dictionary entry when
// present, the literal value otherwise, without prefix.
func (c Control) ClassFor(value string) string {
	if c.ClassesDictionary != nil {
		if mapped, ok := c.ClassesDictionary[value]; ok {
			return mapped
		}
	}
	return value
}

// Prefix is a helper for building class controls in code.
func Prefix(p string) *string {
	return &p
}
