package css

import (
	"fmt"
	"regexp"
	"slices"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/go-drift/pagebuilder/pkg/controls"
	"github.com/go-drift/pagebuilder/pkg/settings"
)

// Element placeholders substituted into selectors and declarations.
const (
	PlaceholderID      = "{{ID}}"
	PlaceholderWrapper = "{{WRAPPER}}"
)

// Rule is a single generated CSS rule.
type Rule struct {
	// Media is the media query prelude, or "" for unconditional rules.
	Media       string
	Selector    string
	Declaration string
}

func (r Rule) String() string {
	if r.Media == "" {
		return r.Selector + "{" + r.Declaration + "}"
	}
	return "@media" + r.Media + "{" + r.Selector + "{" + r.Declaration + "}}"
}

// RuleSet is the ordered list of rules generated for one element.
type RuleSet []Rule

// String joins the rules into stylesheet text.
func (rs RuleSet) String() string {
	var sb strings.Builder
	for _, r := range rs {
		sb.WriteString(r.String())
	}
	return sb.String()
}

// Lookup resolves control names referenced from other controls' templates.
// *controls.Registry satisfies it.
type Lookup interface {
	Lookup(key string) (controls.Control, bool)
}

// valueToken matches {{VALUE}}, {{SIZE}}, ... and {{control.TOKEN}} references.
var valueToken = regexp.MustCompile(`\{\{(?:([A-Za-z0-9_-]+)\.)?([A-Z_]+)\}\}`)

// Generate builds the rule set for the given style controls in their
// declared order. Placeholders and replacements are paired by index; extra
// entries on either side are ignored. Rules whose tokens resolve to empty
// or unsafe values are skipped. Responsive variants are emitted after all
// unconditional rules, tablet before mobile, so narrower breakpoints win.
func Generate(styleControls []controls.Control, values settings.Snapshot, all Lookup, placeholders, replacements []string) RuleSet {
	n := min(len(placeholders), len(replacements))
	pairs := make([]string, 0, 2*n)
	for i := 0; i < n; i++ {
		pairs = append(pairs, placeholders[i], replacements[i])
	}
	replacer := strings.NewReplacer(pairs...)

	var rules RuleSet
	for _, control := range styleControls {
		value := values.Get(control.Name)
		if isEmpty(value) {
			continue
		}
		for _, sel := range control.Selectors {
			decl, ok := resolveDeclaration(replacer.Replace(sel.Declaration), control, value, values, all)
			if !ok {
				continue
			}
			rules = append(rules, Rule{
				Media:       mediaQuery(control.Device),
				Selector:    strings.TrimSpace(replacer.Replace(sel.Selector)),
				Declaration: decl,
			})
		}
	}

	slices.SortStableFunc(rules, func(a, b Rule) int {
		return deviceRank(a.Media) - deviceRank(b.Media)
	})
	return rules
}

func resolveDeclaration(tmpl string, control controls.Control, value gjson.Result, values settings.Snapshot, all Lookup) (string, bool) {
	ok := true
	out := valueToken.ReplaceAllStringFunc(tmpl, func(tok string) string {
		if !ok {
			return ""
		}
		m := valueToken.FindStringSubmatch(tok)
		ref, name := m[1], m[2]

		v := value
		if ref != "" {
			if _, declared := all.Lookup(ref); !declared {
				ok = false
				return ""
			}
			v = values.Get(ref)
		}
		s := tokenValue(v, name)
		if s == "" || !SafeValue(s) {
			ok = false
			return ""
		}
		return s
	})
	if !ok {
		return "", false
	}
	return strings.TrimSpace(out), true
}

// tokenValue resolves {{VALUE}} to a scalar value, and any other token to
// the lower-cased field of an object value ({{SIZE}} -> size).
func tokenValue(v gjson.Result, token string) string {
	if v.IsObject() {
		field := strings.ToLower(token)
		return v.Get(gjson.Escape(field)).String()
	}
	if token != "VALUE" || v.IsArray() {
		return ""
	}
	return v.String()
}

func isEmpty(v gjson.Result) bool {
	switch {
	case !v.Exists(), v.Type == gjson.Null:
		return true
	case v.Type == gjson.String:
		return v.Str == ""
	case v.IsObject():
		empty := true
		v.ForEach(func(_, f gjson.Result) bool {
			if f.String() != "" {
				empty = false
				return false
			}
			return true
		})
		return empty
	}
	return false
}

func mediaQuery(d controls.Device) string {
	if w := d.MaxWidth(); w > 0 {
		return fmt.Sprintf("(max-width:%dpx)", w)
	}
	return ""
}

func deviceRank(media string) int {
	switch media {
	case "":
		return 0
	case mediaQuery(controls.DeviceTablet):
		return 1
	default:
		return 2
	}
}
