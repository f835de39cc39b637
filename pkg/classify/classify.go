// Package classify decides how an element must be refreshed after a set of
// its settings changed.
package classify

import (
	"github.com/go-drift/pagebuilder/pkg/controls"
)

// ElementIDKey is the reserved setting holding the element's custom DOM id.
// It is refreshed by the UI-only path and never counts as a content change.
const ElementIDKey = "_element_id"

// Action is the refresh an element needs.
type Action uint8

const (
	// None means nothing needs refreshing.
	None Action = iota
	// UIOnly re-applies styles, classes, the element id and fonts without
	// regenerating markup.
	UIOnly
	// LocalTemplate re-renders the element's template in process.
	LocalTemplate
	// Remote requests fresh markup from the remote render back end.
	Remote
)

func (a Action) String() string {
	switch a {
	case None:
		return "none"
	case UIOnly:
		return "ui_only"
	case LocalTemplate:
		return "local_template"
	case Remote:
		return "remote"
	default:
		return "unknown"
	}
}

// Schema is the part of a control registry the classifier reads.
// *controls.Registry satisfies it.
type Schema interface {
	Lookup(key string) (controls.Control, bool)
}

// Result carries the decision together with what drove it.
type Result struct {
	Action Action
	// Unknown lists changed keys without a control definition.
	Unknown []string
	// Content lists keys that forced markup regeneration.
	Content []string
}

// Classify returns the action required after keys changed. It is a total
// function: every input produces an action and no errors.
func Classify(keys []string, schema Schema, templateType controls.TemplateType) Action {
	return Explain(keys, schema, templateType).Action
}

// Explain is Classify with the per-key reasoning attached.
func Explain(keys []string, schema Schema, templateType controls.TemplateType) Result {
	var res Result
	if len(keys) == 0 {
		return res
	}

	contentChanged := false
	renderRequired := false

	for _, key := range keys {
		control, ok := schema.Lookup(key)
		if !ok {
			// Unknown semantics: force a render but leave the content
			// classification to the declared keys.
			renderRequired = true
			res.Unknown = append(res.Unknown, key)
			continue
		}

		if control.RenderType != controls.RenderNone {
			renderRequired = true
		}

		if control.RenderType == controls.RenderNone || control.RenderType == controls.RenderUI {
			continue
		}

		if control.RenderType == controls.RenderTemplate ||
			!control.IsStyleControl() && !control.IsClassControl() && key != ElementIDKey {
			contentChanged = true
			res.Content = append(res.Content, key)
		}
	}

	switch {
	case !renderRequired:
		res.Action = None
	case !contentChanged:
		res.Action = UIOnly
	default:
		res.Action = ContentAction(templateType)
	}
	return res
}

// ContentAction returns the action that regenerates markup for an element
// of the given template type.
func ContentAction(templateType controls.TemplateType) Action {
	if templateType == controls.TemplateLocal || templateType == "" {
		return LocalTemplate
	}
	return Remote
}
