// Package css generates element-scoped style rules from control definitions
// and manages the per-element stylesheet containers they are written to.
//
// Style controls declare selector templates such as
//
//	"{{WRAPPER}} .title": "color: {{VALUE}};"
//
// Generation substitutes value tokens from the element's settings, then the
// element placeholders ({{ID}}, {{WRAPPER}}), and emits one rule per
// selector. Output depends only on the inputs, so regenerating with
// unchanged settings yields byte-identical CSS.
package css
