// Package controls defines control definitions and the per-element-type
// control schema registry.
//
// A control describes how one setting key is edited and how its value
// affects the rendered element. The registry answers the questions the
// change classifier and the style generator ask about a key: its render
// type, and whether it feeds CSS rules, CSS classes, or font loading.
//
// Registries are built once per element type, either programmatically with
// NewRegistry or from a YAML schema with Load, and are immutable afterwards.
//
//	reg, err := controls.LoadFile("schemas/heading.yaml")
//	if err != nil {
//	    return err
//	}
//	if c, ok := reg.Lookup("title"); ok {
//	    fmt.Println(c.RenderType)
//	}
package controls
