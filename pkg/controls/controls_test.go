package controls

import (
	stderrors "errors"
	"strings"
	"testing"

	"github.com/go-drift/pagebuilder/pkg/errors"
)

type mapValues map[string]any

func (m mapValues) Value(key string) string {
	v, ok := m[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return conditionString(v)
}

func (m mapValues) Field(key, field string) string {
	obj, ok := m[key].(map[string]any)
	if !ok {
		return ""
	}
	return conditionString(obj[field])
}

func loadHeading(t *testing.T) *Registry {
	t.Helper()
	reg, err := LoadFile("testdata/heading.yaml")
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	return reg
}

func TestLoadFile(t *testing.T) {
	reg := loadHeading(t)

	if reg.ElementType() != "heading" {
		t.Errorf("ElementType = %q, want heading", reg.ElementType())
	}
	if reg.TemplateType() != TemplateLocal {
		t.Errorf("TemplateType = %q, want local", reg.TemplateType())
	}
	if reg.Version() != "v1.2.0" {
		t.Errorf("Version = %q, want v1.2.0", reg.Version())
	}
	if !strings.Contains(reg.Template(), "pb-heading-title") {
		t.Errorf("Template not loaded: %q", reg.Template())
	}
	// 8 declared controls plus two responsive variants of align.
	if reg.Len() != 10 {
		t.Errorf("Len = %d, want 10", reg.Len())
	}
}

func TestLookup(t *testing.T) {
	reg := loadHeading(t)

	title, ok := reg.Lookup("title")
	if !ok {
		t.Fatal("expected title control")
	}
	if title.RenderType != RenderTemplate {
		t.Errorf("title RenderType = %q, want template", title.RenderType)
	}
	link, _ := reg.Lookup("link_label")
	if link.RenderType != RenderFull {
		t.Errorf("unspecified render type should be full, got %q", link.RenderType)
	}
	if _, ok := reg.Lookup("advanced_query"); ok {
		t.Error("undeclared key should not be found")
	}
}

func TestSelectorOrderPreserved(t *testing.T) {
	reg := loadHeading(t)
	c, _ := reg.Lookup("title_color")
	if len(c.Selectors) != 2 {
		t.Fatalf("expected 2 selectors, got %d", len(c.Selectors))
	}
	if c.Selectors[0].Selector != "{{WRAPPER}} .pb-heading-title" {
		t.Errorf("first selector = %q", c.Selectors[0].Selector)
	}
	if c.Selectors[1].Selector != "{{WRAPPER}} .pb-heading-title a" {
		t.Errorf("second selector = %q", c.Selectors[1].Selector)
	}
}

func TestCategoryFilters(t *testing.T) {
	reg := loadHeading(t)

	names := func(cs []Control) []string {
		var out []string
		for _, c := range cs {
			out = append(out, c.Name)
		}
		return out
	}

	if got := strings.Join(names(reg.StyleControls()), ","); got != "title_color,typography_font_family" {
		t.Errorf("StyleControls = %s", got)
	}
	if got := strings.Join(names(reg.ClassControls()), ","); got != "size,align,align_tablet,align_mobile" {
		t.Errorf("ClassControls = %s", got)
	}
	if got := strings.Join(names(reg.FontControls()), ","); got != "typography_font_family" {
		t.Errorf("FontControls = %s", got)
	}
	if !reg.IsStyleControl("title_color") || reg.IsStyleControl("title") {
		t.Error("IsStyleControl mismatch")
	}
	if !reg.IsClassControl("size") || reg.IsClassControl("title_color") {
		t.Error("IsClassControl mismatch")
	}
}

func TestResponsiveVariants(t *testing.T) {
	reg := loadHeading(t)
	mobile, ok := reg.Lookup("align_mobile")
	if !ok {
		t.Fatal("expected align_mobile variant")
	}
	if mobile.Device != DeviceMobile {
		t.Errorf("Device = %q, want mobile", mobile.Device)
	}
	if mobile.Prefix() != "pb-align-" {
		t.Errorf("variant should inherit prefix, got %q", mobile.Prefix())
	}
	if mobile.ClassFor("left") != "start" {
		t.Errorf("variant should inherit dictionary, got %q", mobile.ClassFor("left"))
	}
}

func TestControlsAreCopies(t *testing.T) {
	reg := loadHeading(t)
	c, _ := reg.Lookup("title_color")
	c.Selectors[0].Declaration = "mutated"
	again, _ := reg.Lookup("title_color")
	if again.Selectors[0].Declaration == "mutated" {
		t.Error("mutating a looked-up control must not change the registry")
	}
}

func TestClassFor(t *testing.T) {
	c := Control{PrefixClass: Prefix("pb-align-"), ClassesDictionary: map[string]string{"left": "start"}}
	if got := c.ClassFor("left"); got != "start" {
		t.Errorf("ClassFor(left) = %q, want start", got)
	}
	if got := c.ClassFor("center"); got != "center" {
		t.Errorf("ClassFor(center) = %q, want literal fallback", got)
	}
	empty := Control{PrefixClass: Prefix("")}
	if !empty.IsClassControl() {
		t.Error("empty prefix still makes a class control")
	}
}

func TestActive(t *testing.T) {
	reg := loadHeading(t)
	tag, _ := reg.Lookup("header_size_tag")

	if !Active(tag, mapValues{"size": "small"}) {
		t.Error("expected active for size=small")
	}
	if Active(tag, mapValues{"size": "xl"}) {
		t.Error("expected inactive for size=xl")
	}
	if !Active(tag, mapValues{}) {
		t.Error("missing value compares as empty and should be active")
	}

	field := Control{Name: "gap", Condition: map[string]any{"width[unit]": "px", "layout": []any{"boxed", "full"}}}
	if !Active(field, mapValues{"width": map[string]any{"unit": "px"}, "layout": "full"}) {
		t.Error("expected active for matching field and list")
	}
	if Active(field, mapValues{"width": map[string]any{"unit": "%"}, "layout": "full"}) {
		t.Error("expected inactive for mismatched field")
	}
}

func TestNewRegistryRejectsDuplicates(t *testing.T) {
	_, err := NewRegistry("x", TemplateLocal, []Control{{Name: "a"}, {Name: "a"}})
	if err == nil {
		t.Fatal("expected duplicate error")
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"missing version", "element_type: x\n"},
		{"major version", "version: 2.0.0\nelement_type: x\n"},
		{"bad version", "version: banana\nelement_type: x\n"},
		{"missing type", "version: 1.0.0\n"},
		{"render type", "version: 1.0.0\nelement_type: x\ncontrols:\n  - name: a\n    render_type: sometimes\n"},
		{"template type", "version: 1.0.0\nelement_type: x\ntemplate_type: php\n"},
		{"selectors list", "version: 1.0.0\nelement_type: x\ncontrols:\n  - name: a\n    selectors: [a]\n"},
		{"unknown field", "version: 1.0.0\nelement_type: x\ncolour: red\n"},
		{"bad condition", "version: 1.0.0\nelement_type: x\ncontrols:\n  - name: a\n    condition:\n      \"a b\": c\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Load(strings.NewReader(tt.doc))
			if err == nil {
				t.Fatal("expected error")
			}
			var ve *errors.ViewError
			if !stderrors.As(err, &ve) || ve.Kind != errors.KindSchema {
				t.Errorf("expected schema ViewError, got %v", err)
			}
		})
	}
}

func TestParseRenderType(t *testing.T) {
	tests := []struct {
		in   string
		want RenderType
	}{
		{"", RenderFull},
		{"full", RenderFull},
		{"none", RenderNone},
		{"ui", RenderUI},
		{"template", RenderTemplate},
	}
	for _, tt := range tests {
		got, err := ParseRenderType(tt.in)
		if err != nil || got != tt.want {
			t.Errorf("ParseRenderType(%q) = %q, %v; want %q", tt.in, got, err, tt.want)
		}
	}
	if RenderFull.String() != "full" {
		t.Errorf("RenderFull.String() = %q", RenderFull.String())
	}
}
