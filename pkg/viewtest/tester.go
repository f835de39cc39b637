package viewtest

import (
	"context"
	"testing"
	"time"

	"github.com/go-drift/pagebuilder/pkg/controls"
	"github.com/go-drift/pagebuilder/pkg/css"
	"github.com/go-drift/pagebuilder/pkg/errors"
	"github.com/go-drift/pagebuilder/pkg/settings"
	"github.com/go-drift/pagebuilder/pkg/view"
)

// TestingT is the subset of *testing.T used by the tester, allowing test
// doubles to intercept failures.
type TestingT interface {
	Helper()
	Fatalf(format string, args ...any)
	Errorf(format string, args ...any)
	Name() string
}

// Option adjusts the dispatcher configuration before the tester builds it.
type Option func(*view.Config)

// WithTemplates replaces the html/template renderer.
func WithTemplates(r view.TemplateRenderer) Option {
	return func(c *view.Config) { c.Templates = r }
}

// WithFilters installs extra CSS filters.
func WithFilters(f *css.Filters) Option {
	return func(c *view.Config) { c.Filters = f }
}

// Tester drives elements against an in-memory stylesheet sink, a manual
// scheduler and recording fakes.
type Tester struct {
	t          TestingT
	Sink       *css.MemorySink
	Scheduler  *Scheduler
	Remote     *Remote
	Fonts      *Fonts
	Errors     *ErrorRecorder
	dispatcher *view.Dispatcher
	elements   []*view.Element

	// Ready lists element ids in the order their ready trigger fired.
	Ready []string
	// Changes counts committed settings changes across all elements.
	Changes int
}

// NewTester creates a tester. Call Cleanup when done, or use
// NewTesterWithT instead.
func NewTester(t TestingT, opts ...Option) *Tester {
	tester := &Tester{
		t:         t,
		Sink:      css.NewMemorySink(),
		Scheduler: NewScheduler(),
		Remote:    &Remote{},
		Fonts:     &Fonts{},
		Errors:    &ErrorRecorder{},
	}
	cfg := view.Config{
		Sink:      tester.Sink,
		Scheduler: tester.Scheduler,
		Remote:    tester.Remote,
		Fonts:     tester.Fonts,
		OnReady:   func(e *view.Element) { tester.Ready = append(tester.Ready, e.ID()) },
		OnChange:  func(*view.Element, settings.Change) { tester.Changes++ },
	}
	for _, opt := range opts {
		opt(&cfg)
	}
	d, err := view.NewDispatcher(cfg)
	if err != nil {
		t.Fatalf("viewtest: %v", err)
		return nil
	}
	tester.dispatcher = d
	errors.SetHandler(tester.Errors)
	return tester
}

// NewTesterWithT creates a tester that cleans up via t.Cleanup().
func NewTesterWithT(t *testing.T, opts ...Option) *Tester {
	tester := NewTester(t, opts...)
	t.Cleanup(tester.Cleanup)
	return tester
}

// Cleanup destroys the mounted elements and restores the global error
// handler.
func (t *Tester) Cleanup() {
	for _, e := range t.elements {
		e.Destroy()
	}
	t.elements = nil
	errors.SetHandler(nil)
}

// Dispatcher returns the dispatcher under test.
func (t *Tester) Dispatcher() *view.Dispatcher { return t.dispatcher }

// Mount creates and mounts an element, failing the test on error.
func (t *Tester) Mount(id string, schema *controls.Registry, initial map[string]any) *view.Element {
	t.t.Helper()
	values, err := settings.FromMap(initial)
	if err != nil {
		t.t.Fatalf("settings for %s: %v", id, err)
		return nil
	}
	e, err := t.dispatcher.NewElement(id, schema, values)
	if err != nil {
		t.t.Fatalf("new element %s: %v", id, err)
		return nil
	}
	if err := e.Mount(context.Background()); err != nil {
		t.t.Fatalf("mount %s: %v", id, err)
		return nil
	}
	t.elements = append(t.elements, e)
	return e
}

// Pump runs posted callbacks, then ends the frame.
func (t *Tester) Pump() {
	t.Scheduler.RunPosted()
	t.Scheduler.EndFrame()
}

// WaitPosted waits for an asynchronous result to be posted, failing the
// test on timeout.
func (t *Tester) WaitPosted(timeout time.Duration) {
	t.t.Helper()
	if !t.Scheduler.WaitPosted(timeout) {
		t.t.Fatalf("no callback posted within %v", timeout)
	}
}

// Stylesheet returns the content of e's stylesheet container.
func (t *Tester) Stylesheet(e *view.Element) string {
	text, _ := t.Sink.Content(e.StylesheetKey())
	return text
}
