package classify

import (
	"math/rand/v2"
	"testing"

	"github.com/go-drift/pagebuilder/pkg/controls"
)

func testRegistry(t *testing.T) *controls.Registry {
	t.Helper()
	reg, err := controls.NewRegistry("heading", controls.TemplateLocal, []controls.Control{
		{Name: "title", Type: controls.TypeText, RenderType: controls.RenderTemplate},
		{Name: "link", Type: controls.TypeText},
		{Name: "color", Type: controls.TypeColor, RenderType: controls.RenderUI,
			Selectors: []controls.Selector{{Selector: "{{WRAPPER}} h2", Declaration: "color: {{VALUE}};"}}},
		{Name: "width", Type: controls.TypeSlider,
			Selectors: []controls.Selector{{Selector: "{{WRAPPER}}", Declaration: "width: {{SIZE}}{{UNIT}};"}}},
		{Name: "align", Type: controls.TypeChoose, PrefixClass: controls.Prefix("pb-align-")},
		{Name: "size", Type: controls.TypeSelect, RenderType: controls.RenderUI, PrefixClass: controls.Prefix("pb-size-")},
		{Name: ElementIDKey, Type: controls.TypeText},
		{Name: "blend", Type: controls.TypeSelect, RenderType: controls.RenderNone},
		{Name: "note", Type: controls.TypeText, RenderType: controls.RenderNone},
		{Name: "styled_template", Type: controls.TypeColor, RenderType: controls.RenderTemplate,
			Selectors: []controls.Selector{{Selector: "{{WRAPPER}}", Declaration: "color: {{VALUE}};"}}},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	return reg
}

func TestClassify(t *testing.T) {
	reg := testRegistry(t)

	tests := []struct {
		name     string
		keys     []string
		template controls.TemplateType
		want     Action
	}{
		{"empty", nil, controls.TemplateLocal, None},
		{"empty remote", []string{}, controls.TemplateRemote, None},
		{"style ui", []string{"color"}, controls.TemplateLocal, UIOnly},
		{"content template local", []string{"title"}, controls.TemplateLocal, LocalTemplate},
		{"content template remote", []string{"title"}, controls.TemplateRemote, Remote},
		{"unknown key", []string{"advanced_query"}, controls.TemplateLocal, UIOnly},
		{"unknown plus none", []string{"advanced_query", "blend"}, controls.TemplateLocal, UIOnly},
		{"unknown plus content", []string{"advanced_query", "title"}, controls.TemplateLocal, LocalTemplate},
		{"render none", []string{"blend", "note"}, controls.TemplateLocal, None},
		{"full render style", []string{"width"}, controls.TemplateLocal, UIOnly},
		{"full render class", []string{"align"}, controls.TemplateLocal, UIOnly},
		{"element id", []string{ElementIDKey}, controls.TemplateLocal, UIOnly},
		{"full render content", []string{"link"}, controls.TemplateLocal, LocalTemplate},
		{"template on style control", []string{"styled_template"}, controls.TemplateRemote, Remote},
		{"mixed ui and content", []string{"color", "size", "title"}, controls.TemplateLocal, LocalTemplate},
		{"mixed ui only", []string{"color", "size", ElementIDKey, "blend"}, controls.TemplateLocal, UIOnly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Classify(tt.keys, reg, tt.template); got != tt.want {
				t.Errorf("Classify(%v) = %s, want %s", tt.keys, got, tt.want)
			}
		})
	}
}

func TestExplain(t *testing.T) {
	reg := testRegistry(t)
	res := Explain([]string{"advanced_query", "title", "color"}, reg, controls.TemplateLocal)
	if res.Action != LocalTemplate {
		t.Errorf("Action = %s", res.Action)
	}
	if len(res.Unknown) != 1 || res.Unknown[0] != "advanced_query" {
		t.Errorf("Unknown = %v", res.Unknown)
	}
	if len(res.Content) != 1 || res.Content[0] != "title" {
		t.Errorf("Content = %v", res.Content)
	}
}

func TestClassifyOrderIndependent(t *testing.T) {
	reg := testRegistry(t)
	a := Classify([]string{"title", "color", "advanced_query"}, reg, controls.TemplateLocal)
	b := Classify([]string{"advanced_query", "color", "title"}, reg, controls.TemplateLocal)
	if a != b {
		t.Errorf("order changed the result: %s vs %s", a, b)
	}
}

// TestClassifyProperties checks the classification invariants over random
// key sets drawn from the test registry plus unknown keys.
func TestClassifyProperties(t *testing.T) {
	reg := testRegistry(t)
	pool := []string{"title", "link", "color", "width", "align", "size", ElementIDKey,
		"blend", "note", "styled_template", "advanced_query", "internal_flag"}
	rng := rand.New(rand.NewPCG(1, 2))

	for i := 0; i < 2000; i++ {
		var keys []string
		for _, k := range pool {
			if rng.IntN(4) == 0 {
				keys = append(keys, k)
			}
		}
		tmpl := controls.TemplateLocal
		if rng.IntN(2) == 0 {
			tmpl = controls.TemplateRemote
		}
		got := Classify(keys, reg, tmpl)

		allNone, anyUnknown, anyContent := len(keys) > 0, false, false
		uiCandidates := len(keys) > 0
		for _, k := range keys {
			c, ok := reg.Lookup(k)
			if !ok {
				anyUnknown = true
				allNone = false
				uiCandidates = false
				continue
			}
			if c.RenderType != controls.RenderNone {
				allNone = false
			}
			isUIKey := c.IsStyleControl() || c.IsClassControl() || k == ElementIDKey
			if !isUIKey || c.RenderType == controls.RenderNone || c.RenderType == controls.RenderTemplate {
				uiCandidates = false
			}
			if c.RenderType == controls.RenderTemplate ||
				(c.RenderType != controls.RenderNone && c.RenderType != controls.RenderUI && !isUIKey) {
				anyContent = true
			}
		}

		if allNone && got != None {
			t.Fatalf("%v: all render none, got %s", keys, got)
		}
		if anyUnknown && got == None {
			t.Fatalf("%v: unknown key must force a render", keys)
		}
		if anyContent {
			want := LocalTemplate
			if tmpl == controls.TemplateRemote {
				want = Remote
			}
			if got != want {
				t.Fatalf("%v: content change, got %s want %s", keys, got, want)
			}
		}
		if uiCandidates && got != UIOnly {
			t.Fatalf("%v: style/class/id changes should be UIOnly, got %s", keys, got)
		}
	}
}

func TestActionString(t *testing.T) {
	tests := []struct {
		a    Action
		want string
	}{
		{None, "none"},
		{UIOnly, "ui_only"},
		{LocalTemplate, "local_template"},
		{Remote, "remote"},
		{Action(42), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.a.String(); got != tt.want {
			t.Errorf("Action(%d).String() = %q, want %q", tt.a, got, tt.want)
		}
	}
}
