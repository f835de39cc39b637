package view

import (
	"bytes"
	"context"
	"strings"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/go-drift/pagebuilder/pkg/classify"
	"github.com/go-drift/pagebuilder/pkg/controls"
	"github.com/go-drift/pagebuilder/pkg/css"
	"github.com/go-drift/pagebuilder/pkg/settings"
)

// BaseClass is carried by every element host node.
const BaseClass = "pb-element"

// Element is one element instance in the editor canvas.
type Element struct {
	id          string
	uniqueClass string
	schema      *controls.Registry
	store       *settings.Store
	edit        *settings.Store
	host        *html.Node
	parser      *css.Parser
	dispatcher  *Dispatcher

	ctx      context.Context
	cancel   context.CancelFunc
	unlisten []func()

	htmlCache     string
	renderOnLeave bool
	failure       error
	mounted       bool
	destroyed     bool

	remoteSeq    uint64
	remoteCancel context.CancelFunc
}

// ID returns the element id.
func (e *Element) ID() string { return e.id }

// Type returns the element type name.
func (e *Element) Type() string { return e.schema.ElementType() }

// Schema returns the control schema of the element type.
func (e *Element) Schema() *controls.Registry { return e.schema }

// Settings returns the element's settings store.
func (e *Element) Settings() *settings.Store { return e.store }

// EditSettings returns the store of editor-only state such as inline
// editing flags. Any change to it re-renders the element content.
func (e *Element) EditSettings() *settings.Store { return e.edit }

// UniqueClass returns the class that identifies this instance.
func (e *Element) UniqueClass() string { return e.uniqueClass }

// UniqueSelector returns the selector matching this instance in the canvas.
func (e *Element) UniqueSelector() string {
	return e.dispatcher.cfg.Wrapper + " ." + e.uniqueClass
}

// StylesheetKey returns the key of the element's stylesheet container.
func (e *Element) StylesheetKey() string { return e.parser.Key() }

// Host returns the element's host node. Callers must not retain children
// across renders.
func (e *Element) Host() *html.Node { return e.host }

// Markup renders the host node's children.
func (e *Element) Markup() string {
	var buf bytes.Buffer
	for c := e.host.FirstChild; c != nil; c = c.NextSibling {
		_ = html.Render(&buf, c)
	}
	return buf.String()
}

// OuterHTML renders the host node itself.
func (e *Element) OuterHTML() string {
	var buf bytes.Buffer
	_ = html.Render(&buf, e.host)
	return buf.String()
}

// Classes returns the host node's classes in order.
func (e *Element) Classes() []string {
	return strings.Fields(attr(e.host, "class"))
}

// DOMID returns the host node's id attribute.
func (e *Element) DOMID() string { return attr(e.host, "id") }

// HTMLCache returns the markup saved before the last local template render.
func (e *Element) HTMLCache() string { return e.htmlCache }

// RenderOnLeave reports whether the element was freshly rendered and not
// yet seen by a paint cycle.
func (e *Element) RenderOnLeave() bool { return e.renderOnLeave }

// ConsumeRenderOnLeave clears and returns the render-on-leave flag.
func (e *Element) ConsumeRenderOnLeave() bool {
	v := e.renderOnLeave
	e.renderOnLeave = false
	return v
}

// Failure returns the error of the last remote render, or nil.
func (e *Element) Failure() error { return e.failure }

// Mounted reports whether Mount has run.
func (e *Element) Mounted() bool { return e.mounted }

// Destroyed reports whether Destroy has run.
func (e *Element) Destroyed() bool { return e.destroyed }

// Mount attaches the stylesheet container, subscribes to settings changes
// and performs the initial content render.
func (e *Element) Mount(ctx context.Context) error {
	if e.mounted || e.destroyed {
		return nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	e.ctx, e.cancel = context.WithCancel(ctx)
	e.mounted = true
	e.parser.Attach()
	e.unlisten = append(e.unlisten,
		e.store.Listen(e.onSettingsChange),
		e.edit.Listen(e.onEditSettingsChange),
	)
	return e.dispatcher.Apply(e.ctx, classify.ContentAction(e.schema.TemplateType()), e)
}

// Destroy removes the element's stylesheet and detaches it from its stores.
// Pending remote results are discarded when they arrive.
func (e *Element) Destroy() {
	if e.destroyed {
		return
	}
	e.destroyed = true
	for _, fn := range e.unlisten {
		fn()
	}
	e.unlisten = nil
	if e.cancel != nil {
		e.cancel()
	}
	e.parser.Detach()
	e.dispatcher.log.Debug("element destroyed", "element", e.id, "type", e.Type())
}

// Refresh re-runs the UI-only steps without touching markup.
func (e *Element) Refresh() error {
	return e.dispatcher.Apply(e.context(), classify.UIOnly, e)
}

// Rerender forces a full content render.
func (e *Element) Rerender() error {
	return e.dispatcher.Apply(e.context(), classify.ContentAction(e.schema.TemplateType()), e)
}

func (e *Element) context() context.Context {
	if e.ctx != nil {
		return e.ctx
	}
	return context.Background()
}

func (e *Element) onSettingsChange(change settings.Change) {
	d := e.dispatcher
	result := classify.Explain(change.Keys, e.schema, e.schema.TemplateType())
	if len(result.Unknown) > 0 {
		d.log.Debug("unknown controls changed", "element", e.id, "keys", result.Unknown)
	}
	if d.cfg.OnChange != nil {
		d.cfg.OnChange(e, change)
	}
	_ = d.Apply(e.context(), result.Action, e)
}

func (e *Element) onEditSettingsChange(change settings.Change) {
	_ = e.dispatcher.Apply(e.context(), classify.ContentAction(e.schema.TemplateType()), e)
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return a.Val
		}
	}
	return ""
}

func setAttr(n *html.Node, key, val string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr[i].Val = val
			return
		}
	}
	n.Attr = append(n.Attr, html.Attribute{Key: key, Val: val})
}

func removeAttr(n *html.Node, key string) {
	for i, a := range n.Attr {
		if a.Key == key {
			n.Attr = append(n.Attr[:i], n.Attr[i+1:]...)
			return
		}
	}
}

func newHost(id, elementType, uniqueClass string) *html.Node {
	return &html.Node{
		Type:     html.ElementNode,
		Data:     "div",
		DataAtom: atom.Div,
		Attr: []html.Attribute{
			{Key: "class", Val: BaseClass + " " + uniqueClass},
			{Key: "data-id", Val: id},
			{Key: "data-element_type", Val: elementType},
		},
	}
}

// replaceChildren parses markup in the context of host and swaps it in.
func replaceChildren(host *html.Node, markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), host)
	if err != nil {
		return err
	}
	for c := host.FirstChild; c != nil; {
		next := c.NextSibling
		host.RemoveChild(c)
		c = next
	}
	for _, n := range nodes {
		host.AppendChild(n)
	}
	return nil
}
