package view

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"sync"

	"github.com/go-drift/pagebuilder/pkg/controls"
	"github.com/go-drift/pagebuilder/pkg/settings"
)

// TemplateRenderer renders an element's markup in process. It returns once
// the markup is complete.
type TemplateRenderer interface {
	Render(ctx context.Context, e *Element) (string, error)
}

// RemoteRequest asks the remote back end for an element's markup.
type RemoteRequest struct {
	ElementID   string
	ElementType string
	Settings    settings.Snapshot
	// Seq increases with every request of the same element.
	Seq uint64
}

// RemoteResult is the back end's answer to a RemoteRequest.
type RemoteResult struct {
	Markup string
	Err    error
}

// RemoteBackend regenerates markup out of process. Render must not block;
// the result is delivered on the returned channel, at most once.
type RemoteBackend interface {
	Render(ctx context.Context, req RemoteRequest) <-chan RemoteResult
}

// Scheduler runs callbacks on the UI thread.
type Scheduler interface {
	// Dispatch queues fn from any goroutine.
	Dispatch(fn func())
	// Defer runs fn after the current frame completes.
	Defer(fn func())
}

// HTMLTemplates renders elements with html/template sources taken from
// their control schema. Templates are parsed once per element type.
type HTMLTemplates struct {
	mu     sync.Mutex
	parsed map[*controls.Registry]*template.Template
	funcs  template.FuncMap
}

// NewHTMLTemplates creates a renderer. funcs are made available to every
// template.
func NewHTMLTemplates(funcs template.FuncMap) *HTMLTemplates {
	return &HTMLTemplates{parsed: make(map[*controls.Registry]*template.Template), funcs: funcs}
}

// Render executes the element type's template with the element settings.
// The settings map additionally carries "_id" with the element id.
func (h *HTMLTemplates) Render(ctx context.Context, e *Element) (string, error) {
	tmpl, err := h.template(e.Schema())
	if err != nil {
		return "", err
	}
	data := e.Settings().Current().Map()
	data["_id"] = e.ID()

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("execute %s template: %w", e.Type(), err)
	}
	return buf.String(), nil
}

func (h *HTMLTemplates) template(schema *controls.Registry) (*template.Template, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if t, ok := h.parsed[schema]; ok {
		return t, nil
	}
	if schema.Template() == "" {
		return nil, fmt.Errorf("element type %q has no template", schema.ElementType())
	}
	t, err := template.New(schema.ElementType()).Funcs(h.funcs).Parse(schema.Template())
	if err != nil {
		return nil, fmt.Errorf("parse %s template: %w", schema.ElementType(), err)
	}
	h.parsed[schema] = t
	return t, nil
}
