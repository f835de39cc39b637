package css

import (
	"fmt"

	"github.com/go-drift/pagebuilder/pkg/controls"
	"github.com/go-drift/pagebuilder/pkg/errors"
	"github.com/go-drift/pagebuilder/pkg/settings"
)

// StyleTextFilter contributes raw CSS appended after the generated rules.
// Filters see the text produced by the filters before them.
type StyleTextFilter func(text string, elementID string, values settings.Snapshot) string

// Filters is an ordered chain of StyleTextFilter.
type Filters struct {
	chain []StyleTextFilter
}

// Add appends f to the chain.
func (f *Filters) Add(fn StyleTextFilter) {
	if fn != nil {
		f.chain = append(f.chain, fn)
	}
}

// Apply runs the chain starting from empty text.
func (f *Filters) Apply(elementID string, values settings.Snapshot) string {
	if f == nil {
		return ""
	}
	text := ""
	for _, fn := range f.chain {
		text = fn(text, elementID, values)
	}
	return text
}

// Parser owns the stylesheet container of one element instance.
type Parser struct {
	sink    Sink
	key     string
	filters *Filters
}

// NewParser creates a parser writing to the container key of sink. The
// container is not created until Attach is called.
func NewParser(sink Sink, key string, filters *Filters) *Parser {
	return &Parser{sink: sink, key: key, filters: filters}
}

// Key returns the container key.
func (p *Parser) Key() string { return p.key }

// Attach creates the element's stylesheet container.
func (p *Parser) Attach() {
	p.sink.Create(p.key)
}

// Detach removes the container and all rules in it.
func (p *Parser) Detach() {
	p.sink.Remove(p.key)
}

// Render regenerates the element's stylesheet, replacing any previous
// content, then appends the extra CSS contributed by filters once.
//
// Rendering before Attach is a lifecycle bug and fails with a
// KindMissingStylesheetTarget error; it is reported, not swallowed.
func (p *Parser) Render(elementID string, styleControls []controls.Control, values settings.Snapshot, all Lookup, placeholders, replacements []string) (RuleSet, error) {
	if !p.sink.Has(p.key) {
		err := &errors.ViewError{
			Op:         "css.Parser.Render",
			Kind:       errors.KindMissingStylesheetTarget,
			ElementID:  elementID,
			Err:        fmt.Errorf("%w: %s", errors.ErrMissingStylesheetTarget, p.key),
			StackTrace: errors.CaptureStack(),
		}
		errors.Report(err)
		return nil, err
	}

	rules := Generate(styleControls, values, all, placeholders, replacements)
	if err := p.sink.Replace(p.key, rules.String()); err != nil {
		return nil, err
	}

	extra := p.filters.Apply(elementID, values)
	if extra == "" {
		return rules, nil
	}
	if err := ValidateStylesheet(extra); err != nil {
		errors.Report(&errors.ViewError{
			Op:        "css.Parser.Render",
			Kind:      errors.KindUnknown,
			ElementID: elementID,
			Err:       fmt.Errorf("extra css rejected: %w", err),
		})
		return rules, nil
	}
	if err := p.sink.Append(p.key, extra); err != nil {
		return nil, err
	}
	return rules, nil
}
