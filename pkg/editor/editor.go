// Package editor hosts the element instances of one page and runs their
// view updates on a single UI thread.
//
// Mutations (Create, Update, Destroy) and Flush must be called from the
// same goroutine, or posted with Dispatch. Remote render results arrive on
// other goroutines and are queued until the next Flush.
package editor

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/google/uuid"
	"pkt.systems/pslog"

	"github.com/go-drift/pagebuilder/pkg/controls"
	"github.com/go-drift/pagebuilder/pkg/css"
	"github.com/go-drift/pagebuilder/pkg/fonts"
	"github.com/go-drift/pagebuilder/pkg/settings"
	"github.com/go-drift/pagebuilder/pkg/view"
)

// Options configures an Editor.
type Options struct {
	// Sink receives element stylesheets. Defaults to an in-memory sink.
	Sink      css.Sink
	Templates view.TemplateRenderer
	Remote    view.RemoteBackend
	Fonts     fonts.Loader
	Filters   *css.Filters

	Wrapper     string
	ClassPrefix string

	// OnReady runs once per content render, after the frame's callbacks.
	OnReady func(*view.Element)
	// OnNeedsFrame is called from any goroutine when Flush has work.
	OnNeedsFrame func()

	Logger pslog.Logger
}

// Frame summarizes one Flush.
type Frame struct {
	Number    uint64
	Callbacks int
	Deferred  int
	// Fresh lists elements rendered since the previous frame.
	Fresh []string
}

// Editor owns the element types and instances of a page.
type Editor struct {
	frames     *frameOwner
	dispatcher *view.Dispatcher
	sink       css.Sink
	log        pslog.Logger
	wake       chan struct{}

	types    map[string]*controls.Registry
	elements map[string]*view.Element
	order    []string
	dirty    bool
	frame    uint64
	closed   bool
}

// New creates an editor.
func New(opts Options) (*Editor, error) {
	if opts.Sink == nil {
		opts.Sink = css.NewMemorySink()
	}
	log := opts.Logger
	if log == nil {
		log = pslog.Ctx(context.Background())
	}

	e := &Editor{
		sink:     opts.Sink,
		log:      log.With("component", "editor"),
		wake:     make(chan struct{}, 1),
		types:    make(map[string]*controls.Registry),
		elements: make(map[string]*view.Element),
	}
	e.frames = &frameOwner{onNeedsFrame: func() {
		select {
		case e.wake <- struct{}{}:
		default:
		}
		if opts.OnNeedsFrame != nil {
			opts.OnNeedsFrame()
		}
	}}

	d, err := view.NewDispatcher(view.Config{
		Sink:        opts.Sink,
		Scheduler:   scheduler{e.frames},
		Templates:   opts.Templates,
		Remote:      opts.Remote,
		Fonts:       opts.Fonts,
		Filters:     opts.Filters,
		Wrapper:     opts.Wrapper,
		ClassPrefix: opts.ClassPrefix,
		OnReady:     opts.OnReady,
		OnChange:    func(*view.Element, settings.Change) { e.dirty = true },
		Logger:      log,
	})
	if err != nil {
		return nil, err
	}
	e.dispatcher = d
	return e, nil
}

// scheduler adapts frameOwner to view.Scheduler.
type scheduler struct{ f *frameOwner }

func (s scheduler) Dispatch(fn func()) { s.f.dispatch(fn) }
func (s scheduler) Defer(fn func())    { s.f.schedule(fn) }

// Dispatch queues fn to run on the UI thread during the next Flush. It is
// safe to call from any goroutine.
func (e *Editor) Dispatch(fn func()) { e.frames.dispatch(fn) }

// Sink returns the stylesheet sink.
func (e *Editor) Sink() css.Sink { return e.sink }

// RegisterType adds an element type.
func (e *Editor) RegisterType(schema *controls.Registry) error {
	if schema == nil {
		return fmt.Errorf("editor: nil schema")
	}
	name := schema.ElementType()
	if _, ok := e.types[name]; ok {
		return fmt.Errorf("editor: element type %q already registered", name)
	}
	e.types[name] = schema
	e.log.Debug("element type registered", "type", name, "controls", schema.Len(), "version", schema.Version())
	return nil
}

// LoadTypes registers every *.yaml and *.yml schema in dir.
func (e *Editor) LoadTypes(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, entry := range entries {
		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if entry.IsDir() || (ext != ".yaml" && ext != ".yml") {
			continue
		}
		schema, err := controls.LoadFile(filepath.Join(dir, entry.Name()))
		if err != nil {
			return names, err
		}
		if err := e.RegisterType(schema); err != nil {
			return names, err
		}
		names = append(names, schema.ElementType())
	}
	return names, nil
}

// Type returns the schema of a registered element type.
func (e *Editor) Type(name string) (*controls.Registry, bool) {
	schema, ok := e.types[name]
	return schema, ok
}

// Types returns the registered element type names, sorted.
func (e *Editor) Types() []string {
	names := make([]string, 0, len(e.types))
	for name := range e.types {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// NewID returns a fresh element id.
func NewID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}

// Create instantiates and mounts an element. An empty id is replaced with
// NewID. The element stays registered when its initial render fails.
func (e *Editor) Create(ctx context.Context, id, elementType string, initial settings.Snapshot) (*view.Element, error) {
	if e.closed {
		return nil, fmt.Errorf("editor: closed")
	}
	schema, ok := e.types[elementType]
	if !ok {
		return nil, fmt.Errorf("editor: unknown element type %q", elementType)
	}
	if id == "" {
		id = NewID()
	}
	if _, exists := e.elements[id]; exists {
		return nil, fmt.Errorf("editor: element %s already exists", id)
	}

	el, err := e.dispatcher.NewElement(id, schema, initial)
	if err != nil {
		return nil, err
	}
	e.elements[id] = el
	e.order = append(e.order, id)
	e.dirty = true
	if err := el.Mount(ctx); err != nil {
		return el, err
	}
	e.log.Debug("element created", "element", id, "type", elementType)
	return el, nil
}

// Element returns a live element.
func (e *Editor) Element(id string) (*view.Element, bool) {
	el, ok := e.elements[id]
	return el, ok
}

// Elements returns the live elements in creation order.
func (e *Editor) Elements() []*view.Element {
	out := make([]*view.Element, 0, len(e.order))
	for _, id := range e.order {
		out = append(out, e.elements[id])
	}
	return out
}

// Update commits values to an element's settings as one change.
func (e *Editor) Update(id string, values map[string]any) error {
	el, ok := e.elements[id]
	if !ok {
		return fmt.Errorf("editor: no element %s", id)
	}
	return el.Settings().SetMany(values)
}

// Destroy removes an element and its stylesheet.
func (e *Editor) Destroy(id string) error {
	el, ok := e.elements[id]
	if !ok {
		return fmt.Errorf("editor: no element %s", id)
	}
	el.Destroy()
	delete(e.elements, id)
	if i := slices.Index(e.order, id); i >= 0 {
		e.order = slices.Delete(e.order, i, i+1)
	}
	e.dirty = true
	return nil
}

// Dirty reports whether the page changed since the last MarkSaved.
func (e *Editor) Dirty() bool { return e.dirty }

// MarkSaved clears the dirty flag.
func (e *Editor) MarkSaved() { e.dirty = false }

// NeedsFlush reports whether callbacks are pending.
func (e *Editor) NeedsFlush() bool { return e.frames.needsWork() }

// Flush runs one frame: queued callbacks, then deferred callbacks, then
// collects the elements rendered since the last frame.
func (e *Editor) Flush() Frame {
	e.frame++
	f := Frame{Number: e.frame}

	callbacks := e.frames.drainQueue()
	runAll("editor.Flush", callbacks)
	f.Callbacks = len(callbacks)

	deferred := e.frames.drainDeferred()
	runAll("editor.Flush", deferred)
	f.Deferred = len(deferred)

	for _, id := range e.order {
		if e.elements[id].ConsumeRenderOnLeave() {
			f.Fresh = append(f.Fresh, id)
		}
	}
	if f.Callbacks > 0 || f.Deferred > 0 || len(f.Fresh) > 0 {
		e.log.Debug("frame", "frame", f.Number, "callbacks", f.Callbacks, "deferred", f.Deferred, "fresh", len(f.Fresh))
	}
	return f
}

// Run flushes whenever work is queued until ctx is done.
func (e *Editor) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.wake:
			for e.frames.needsWork() {
				e.Flush()
			}
		}
	}
}

// Close destroys every element. The editor rejects new elements afterwards.
func (e *Editor) Close() {
	for _, id := range slices.Clone(e.order) {
		_ = e.Destroy(id)
	}
	e.closed = true
}
