package view

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"pkt.systems/pslog"

	"github.com/go-drift/pagebuilder/pkg/classify"
	"github.com/go-drift/pagebuilder/pkg/controls"
	"github.com/go-drift/pagebuilder/pkg/css"
	"github.com/go-drift/pagebuilder/pkg/errors"
	"github.com/go-drift/pagebuilder/pkg/fonts"
	"github.com/go-drift/pagebuilder/pkg/settings"
)

// Defaults used when Config leaves a field empty.
const (
	DefaultWrapper     = "#pagebuilder"
	DefaultClassPrefix = "pb-element-"
)

// Config wires a Dispatcher to its collaborators.
type Config struct {
	// Sink holds the per-element stylesheets. Required.
	Sink css.Sink
	// Scheduler runs remote results and ready triggers on the UI thread.
	// Required.
	Scheduler Scheduler

	Templates TemplateRenderer
	Remote    RemoteBackend
	Fonts     fonts.Loader
	Filters   *css.Filters

	// Wrapper is the canvas root selector used by {{WRAPPER}}.
	Wrapper     string
	ClassPrefix string

	// Sanitizer cleans remote markup. Defaults to a UGC policy that keeps
	// class, id and data attributes.
	Sanitizer *bluemonday.Policy

	// OnReady runs after a content render once the frame completes.
	OnReady func(*Element)
	// OnChange observes every committed settings change.
	OnChange func(*Element, settings.Change)

	Logger pslog.Logger
}

// Dispatcher executes classified render actions against elements.
type Dispatcher struct {
	cfg Config
	log pslog.Logger
}

// NewDispatcher validates cfg and fills in defaults.
func NewDispatcher(cfg Config) (*Dispatcher, error) {
	if cfg.Sink == nil {
		return nil, fmt.Errorf("view: dispatcher requires a stylesheet sink")
	}
	if cfg.Scheduler == nil {
		return nil, fmt.Errorf("view: dispatcher requires a scheduler")
	}
	if cfg.Templates == nil {
		cfg.Templates = NewHTMLTemplates(nil)
	}
	if cfg.Fonts == nil {
		cfg.Fonts = noFonts{}
	}
	if cfg.Wrapper == "" {
		cfg.Wrapper = DefaultWrapper
	}
	if cfg.ClassPrefix == "" {
		cfg.ClassPrefix = DefaultClassPrefix
	}
	if cfg.Sanitizer == nil {
		cfg.Sanitizer = RemoteMarkupPolicy()
	}
	log := cfg.Logger
	if log == nil {
		log = pslog.Ctx(context.Background())
	}
	return &Dispatcher{cfg: cfg, log: log.With("component", "view")}, nil
}

// RemoteMarkupPolicy returns the default sanitizer for remote markup.
func RemoteMarkupPolicy() *bluemonday.Policy {
	p := bluemonday.UGCPolicy()
	p.AllowAttrs("class", "id").Globally()
	p.AllowDataAttributes()
	return p
}

// NewElement creates an unmounted element. The initial settings are
// merged over the schema defaults.
func (d *Dispatcher) NewElement(id string, schema *controls.Registry, initial settings.Snapshot) (*Element, error) {
	if id == "" {
		return nil, fmt.Errorf("view: element id is empty")
	}
	if schema == nil {
		return nil, fmt.Errorf("view: element %s has no schema", id)
	}
	defaults, err := settings.FromMap(schema.Defaults())
	if err != nil {
		return nil, fmt.Errorf("view: defaults of %s: %w", schema.ElementType(), err)
	}
	values, err := settings.Merge(defaults, initial)
	if err != nil {
		return nil, fmt.Errorf("view: settings of %s: %w", id, err)
	}

	unique := d.cfg.ClassPrefix + id
	return &Element{
		id:          id,
		uniqueClass: unique,
		schema:      schema,
		store:       settings.NewStore(values),
		edit:        settings.NewStore(settings.Empty()),
		host:        newHost(id, schema.ElementType(), unique),
		parser:      css.NewParser(d.cfg.Sink, uuid.NewString(), d.cfg.Filters),
		dispatcher:  d,
	}, nil
}

// Apply performs action on e.
//
//   - None does nothing.
//   - UIOnly regenerates styles, patches classes and the id attribute and
//     enqueues fonts. Markup is left untouched.
//   - LocalTemplate caches the current markup, renders the template, runs
//     the UI-only steps and marks the element freshly rendered.
//   - Remote requests markup from the back end and returns immediately.
func (d *Dispatcher) Apply(ctx context.Context, action classify.Action, e *Element) error {
	if e.destroyed {
		return errors.ErrElementDestroyed
	}
	d.log.Debug("dispatch", "element", e.id, "action", action.String())

	switch action {
	case classify.None:
		return nil
	case classify.UIOnly:
		return d.renderUI(e)
	case classify.LocalTemplate:
		return d.renderLocal(ctx, e)
	case classify.Remote:
		return d.requestRemote(ctx, e)
	default:
		return fmt.Errorf("view: unknown action %d", action)
	}
}

func (d *Dispatcher) renderUI(e *Element) error {
	current := e.store.Current()

	_, err := e.parser.Render(e.id, e.schema.StyleControls(), current, e.schema,
		[]string{css.PlaceholderID, css.PlaceholderWrapper},
		[]string{e.id, e.UniqueSelector()})
	if err != nil {
		return err
	}

	classes := css.ParseClassList(attr(e.host, "class"))
	css.ApplyClasses(classes, e.schema.ClassControls(), e.store.Previous(), current)
	classes.Add(BaseClass)
	classes.Add(e.uniqueClass)
	setAttr(e.host, "class", classes.String())

	if id := current.Value(classify.ElementIDKey); id != "" {
		setAttr(e.host, "id", id)
	} else {
		removeAttr(e.host, "id")
	}

	for _, control := range e.schema.FontControls() {
		family := current.Value(control.Name)
		if family == "" || !controls.Active(control, current) {
			continue
		}
		d.cfg.Fonts.Enqueue(family)
	}
	return nil
}

func (d *Dispatcher) renderLocal(ctx context.Context, e *Element) error {
	markup, err := d.cfg.Templates.Render(ctx, e)
	if err != nil {
		verr := &errors.ViewError{
			Op:        "view.Dispatcher.LocalTemplate",
			Kind:      errors.KindTemplate,
			ElementID: e.id,
			Err:       err,
		}
		errors.Report(verr)
		return verr
	}

	e.htmlCache = e.Markup()
	if err := replaceChildren(e.host, markup); err != nil {
		return fmt.Errorf("view: parse markup of %s: %w", e.id, err)
	}
	if err := d.renderUI(e); err != nil {
		return err
	}
	e.renderOnLeave = true
	d.scheduleReady(e)
	return nil
}

func (d *Dispatcher) requestRemote(ctx context.Context, e *Element) error {
	if d.cfg.Remote == nil {
		d.failRemote(e, e.remoteSeq, fmt.Errorf("no remote back end configured"))
		return e.failure
	}
	if e.remoteCancel != nil {
		e.remoteCancel()
	}
	e.remoteSeq++
	seq := e.remoteSeq
	rctx, cancel := context.WithCancel(ctx)
	e.remoteCancel = cancel

	req := RemoteRequest{
		ElementID:   e.id,
		ElementType: e.Type(),
		Settings:    e.store.Current(),
		Seq:         seq,
	}
	results := d.cfg.Remote.Render(rctx, req)
	d.log.Debug("remote render requested", "element", e.id, "seq", seq)

	go func() {
		select {
		case res, ok := <-results:
			if !ok {
				res = RemoteResult{Err: fmt.Errorf("result channel closed")}
			}
			d.cfg.Scheduler.Dispatch(func() { d.receiveRemote(e, seq, res) })
		case <-rctx.Done():
		}
	}()
	return nil
}

func (d *Dispatcher) receiveRemote(e *Element, seq uint64, res RemoteResult) {
	if e.destroyed || seq != e.remoteSeq {
		d.log.Debug("remote result discarded", "element", e.id, "seq", seq, "destroyed", e.destroyed)
		return
	}
	if e.remoteCancel != nil {
		e.remoteCancel()
		e.remoteCancel = nil
	}
	if res.Err != nil {
		d.failRemote(e, seq, res.Err)
		return
	}

	e.failure = nil
	if err := replaceChildren(e.host, d.cfg.Sanitizer.Sanitize(res.Markup)); err != nil {
		d.failRemote(e, seq, err)
		return
	}
	if err := d.renderUI(e); err != nil {
		return
	}
	e.renderOnLeave = true
	d.scheduleReady(e)
}

// failRemote puts e in the failure state. Remote renders are not retried.
func (d *Dispatcher) failRemote(e *Element, seq uint64, err error) {
	e.failure = &errors.RemoteRenderError{ElementID: e.id, Request: seq, Err: err}
	errors.Report(&errors.ViewError{
		Op:        "view.Dispatcher.Remote",
		Kind:      errors.KindRemoteRender,
		ElementID: e.id,
		Err:       e.failure,
	})
}

func (d *Dispatcher) scheduleReady(e *Element) {
	if d.cfg.OnReady == nil {
		return
	}
	d.cfg.Scheduler.Defer(func() {
		if !e.destroyed {
			d.cfg.OnReady(e)
		}
	})
}

type noFonts struct{}

func (noFonts) Enqueue(string) {}
