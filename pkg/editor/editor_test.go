package editor

import (
	"context"
	"slices"
	"strings"
	"testing"
	"time"

	"github.com/go-drift/pagebuilder/pkg/css"
	"github.com/go-drift/pagebuilder/pkg/errors"
	"github.com/go-drift/pagebuilder/pkg/settings"
	"github.com/go-drift/pagebuilder/pkg/view"
	"github.com/go-drift/pagebuilder/pkg/viewtest"
)

func newTestEditor(t *testing.T, opts Options) *Editor {
	t.Helper()
	ed, err := New(opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := ed.LoadTypes("testdata"); err != nil {
		t.Fatalf("LoadTypes: %v", err)
	}
	recorder := &viewtest.ErrorRecorder{}
	errors.SetHandler(recorder)
	t.Cleanup(func() {
		ed.Close()
		errors.SetHandler(nil)
	})
	return ed
}

func TestLoadTypes(t *testing.T) {
	ed := newTestEditor(t, Options{})
	if got := ed.Types(); !slices.Equal(got, []string{"card", "heading"}) {
		t.Errorf("Types = %v", got)
	}
	if _, err := ed.LoadTypes("testdata"); err == nil {
		t.Error("expected duplicate registration error")
	}
}

func TestCreateUpdateDestroy(t *testing.T) {
	sink := css.NewMemorySink()
	ed := newTestEditor(t, Options{Sink: sink})
	ctx := context.Background()

	el, err := ed.Create(ctx, "h1", "heading", settings.Empty())
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !ed.Dirty() {
		t.Error("expected dirty page after create")
	}
	ed.MarkSaved()

	if err := ed.Update("h1", map[string]any{"title_color": "#abcdef"}); err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !ed.Dirty() {
		t.Error("expected dirty page after update")
	}
	text, _ := sink.Content(el.StylesheetKey())
	if !strings.Contains(text, "color: #abcdef;") {
		t.Errorf("stylesheet = %s", text)
	}

	if err := ed.Destroy("h1"); err != nil {
		t.Fatalf("Destroy: %v", err)
	}
	if sink.Has(el.StylesheetKey()) {
		t.Error("stylesheet kept after destroy")
	}
	if _, ok := ed.Element("h1"); ok {
		t.Error("element still registered")
	}
	if err := ed.Destroy("h1"); err == nil {
		t.Error("expected error destroying twice")
	}
}

func TestCreate_Errors(t *testing.T) {
	ed := newTestEditor(t, Options{})
	ctx := context.Background()

	if _, err := ed.Create(ctx, "x", "missing", settings.Empty()); err == nil {
		t.Error("expected unknown type error")
	}
	if _, err := ed.Create(ctx, "x", "heading", settings.Empty()); err != nil {
		t.Fatal(err)
	}
	if _, err := ed.Create(ctx, "x", "heading", settings.Empty()); err == nil {
		t.Error("expected duplicate id error")
	}
}

func TestCreate_GeneratesID(t *testing.T) {
	ed := newTestEditor(t, Options{})
	el, err := ed.Create(context.Background(), "", "heading", settings.Empty())
	if err != nil {
		t.Fatal(err)
	}
	if len(el.ID()) != 8 {
		t.Errorf("ID = %q, want 8 characters", el.ID())
	}
}

func TestFlush_ReadyAndFresh(t *testing.T) {
	var ready []string
	ed := newTestEditor(t, Options{OnReady: func(e *view.Element) { ready = append(ready, e.ID()) }})
	ctx := context.Background()

	if _, err := ed.Create(ctx, "a", "heading", settings.Empty()); err != nil {
		t.Fatal(err)
	}
	if _, err := ed.Create(ctx, "b", "heading", settings.Empty()); err != nil {
		t.Fatal(err)
	}
	if len(ready) != 0 {
		t.Fatal("ready trigger ran before the frame ended")
	}

	f := ed.Flush()
	if f.Deferred != 2 {
		t.Errorf("Deferred = %d, want 2", f.Deferred)
	}
	if !slices.Equal(f.Fresh, []string{"a", "b"}) {
		t.Errorf("Fresh = %v", f.Fresh)
	}
	if !slices.Equal(ready, []string{"a", "b"}) {
		t.Errorf("ready = %v", ready)
	}

	if err := ed.Update("a", map[string]any{"title_color": "#000"}); err != nil {
		t.Fatal(err)
	}
	f = ed.Flush()
	if len(f.Fresh) != 0 || f.Deferred != 0 {
		t.Errorf("UI-only update produced frame %+v", f)
	}
}

func TestFlush_RecoversPanics(t *testing.T) {
	ed := newTestEditor(t, Options{})
	recorder := &viewtest.ErrorRecorder{}
	errors.SetHandler(recorder)

	ran := false
	ed.Dispatch(func() { panic("boom") })
	ed.Dispatch(func() { ran = true })
	f := ed.Flush()

	if f.Callbacks != 2 {
		t.Errorf("Callbacks = %d, want 2", f.Callbacks)
	}
	if !ran {
		t.Error("callback after panic did not run")
	}
	if len(recorder.Panics()) != 1 {
		t.Errorf("panics reported = %d, want 1", len(recorder.Panics()))
	}
}

func TestRemoteResultAppliedOnFlush(t *testing.T) {
	remote := &viewtest.Remote{}
	frames := make(chan struct{}, 8)
	ed := newTestEditor(t, Options{Remote: remote, OnNeedsFrame: func() {
		select {
		case frames <- struct{}{}:
		default:
		}
	}})

	el, err := ed.Create(context.Background(), "c", "card", settings.Empty())
	if err != nil {
		t.Fatal(err)
	}
	remote.Respond(0, "<p>remote</p>")

	deadline := time.After(time.Second)
	for !ed.NeedsFlush() {
		select {
		case <-frames:
		case <-deadline:
			t.Fatal("remote result never queued")
		}
	}
	ed.Flush()

	if el.Markup() != "<p>remote</p>" {
		t.Errorf("Markup = %q", el.Markup())
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	ed := newTestEditor(t, Options{})
	ctx, cancel := context.WithCancel(context.Background())

	ran := make(chan struct{})
	done := make(chan error, 1)
	go func() { done <- ed.Run(ctx) }()
	ed.Dispatch(func() { close(ran) })

	select {
	case <-ran:
	case <-time.After(time.Second):
		t.Fatal("Run did not flush the dispatched callback")
	}
	cancel()
	if err := <-done; err != context.Canceled {
		t.Errorf("Run = %v, want context.Canceled", err)
	}
}

func TestClose_RejectsCreate(t *testing.T) {
	ed := newTestEditor(t, Options{})
	if _, err := ed.Create(context.Background(), "a", "heading", settings.Empty()); err != nil {
		t.Fatal(err)
	}
	ed.Close()
	if len(ed.Elements()) != 0 {
		t.Error("elements survived Close")
	}
	if _, err := ed.Create(context.Background(), "b", "heading", settings.Empty()); err == nil {
		t.Error("expected error after Close")
	}
}
