package viewtest

import (
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/go-drift/pagebuilder/pkg/controls"
)

func boxSchema(t *testing.T) *controls.Registry {
	t.Helper()
	schema, err := controls.NewRegistry("box", controls.TemplateLocal, []controls.Control{
		{Name: "label", Type: controls.TypeText, Default: "box"},
		{
			Name:       "bg",
			Type:       controls.TypeColor,
			RenderType: controls.RenderUI,
			Selectors:  []controls.Selector{{Selector: "{{WRAPPER}}", Declaration: "background: {{VALUE}};"}},
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	return schema
}

func boxTemplates() *Templates {
	return &Templates{Markup: "<span>box</span>"}
}

func TestScheduler_RunsInOrder(t *testing.T) {
	s := NewScheduler()
	var got []string
	s.Dispatch(func() { got = append(got, "a") })
	s.Defer(func() { got = append(got, "deferred") })
	s.Dispatch(func() { got = append(got, "b") })

	if n := s.RunPosted(); n != 2 {
		t.Errorf("RunPosted = %d, want 2", n)
	}
	if n := s.EndFrame(); n != 1 {
		t.Errorf("EndFrame = %d, want 1", n)
	}
	if strings.Join(got, ",") != "a,b,deferred" {
		t.Errorf("order = %v", got)
	}
}

func TestScheduler_WaitPosted(t *testing.T) {
	s := NewScheduler()
	if s.WaitPosted(10 * time.Millisecond) {
		t.Error("WaitPosted = true with nothing posted")
	}
	go s.Dispatch(func() {})
	if !s.WaitPosted(time.Second) {
		t.Error("WaitPosted = false after Dispatch")
	}
}

func TestSnapshot_Diff(t *testing.T) {
	tester := NewTesterWithT(t, WithTemplates(boxTemplates()))
	schema := boxSchema(t)
	a := tester.Mount("a1", schema, nil)

	s1 := tester.Capture(a)
	s2 := tester.Capture(a)
	if diff := s1.Diff(s2); diff != "" {
		t.Errorf("expected no diff, got:\n%s", diff)
	}

	if err := a.Settings().Set("bg", "#000"); err != nil {
		t.Fatal(err)
	}
	s3 := tester.Capture(a)
	if diff := s1.Diff(s3); diff == "" {
		t.Error("expected diff after style change")
	}
}

func TestSnapshot_StableAcrossInstances(t *testing.T) {
	tester := NewTesterWithT(t, WithTemplates(boxTemplates()))
	schema := boxSchema(t)
	a := tester.Capture(tester.Mount("same", schema, nil))
	b := tester.Capture(tester.Mount("same", schema, nil))
	if diff := a.Diff(b); diff != "" {
		t.Errorf("snapshots of equal elements differ:\n%s", diff)
	}
}

func TestSnapshot_UpdateAndMatch(t *testing.T) {
	tester := NewTesterWithT(t, WithTemplates(boxTemplates()))
	el := tester.Mount("a1", boxSchema(t), map[string]any{"bg": "#fff"})
	snap := tester.Capture(el)

	path := filepath.Join(t.TempDir(), "nested", "box.snapshot.json")
	if err := snap.UpdateFile(path); err != nil {
		t.Fatalf("UpdateFile: %v", err)
	}
	snap.MatchesFile(t, path)
}

type captureT struct {
	fatals []string
	errs   []string
}

func (c *captureT) Helper()                           {}
func (c *captureT) Name() string                      { return "TestCapture" }
func (c *captureT) Fatalf(format string, args ...any) { c.fatals = append(c.fatals, format) }
func (c *captureT) Errorf(format string, args ...any) { c.errs = append(c.errs, format) }

func TestSnapshot_MissingFile(t *testing.T) {
	tester := NewTesterWithT(t, WithTemplates(boxTemplates()))
	snap := tester.Capture(tester.Mount("a1", boxSchema(t), nil))

	ct := &captureT{}
	snap.MatchesFile(ct, filepath.Join(t.TempDir(), "missing.json"))
	if len(ct.fatals) != 1 {
		t.Errorf("expected one fatal for a missing file, got %d", len(ct.fatals))
	}
}

func TestRemote_AnswerUnknownRequestPanics(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic")
		}
	}()
	(&Remote{}).Respond(0, "")
}
