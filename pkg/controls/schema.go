package controls

import (
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/mod/semver"
	"gopkg.in/yaml.v3"

	"github.com/go-drift/pagebuilder/pkg/errors"
)

// SchemaMajor is the schema major version this package understands.
const SchemaMajor = "v1"

type schemaFile struct {
	Version      string        `yaml:"version"`
	ElementType  string        `yaml:"element_type"`
	TemplateType string        `yaml:"template_type"`
	Template     string        `yaml:"template"`
	Controls     []controlSpec `yaml:"controls"`
}

type controlSpec struct {
	Name              string            `yaml:"name"`
	Type              string            `yaml:"type"`
	RenderType        string            `yaml:"render_type"`
	Selectors         yaml.Node         `yaml:"selectors"`
	PrefixClass       *string           `yaml:"prefix_class"`
	ClassesDictionary map[string]string `yaml:"classes_dictionary"`
	Condition         map[string]any    `yaml:"condition"`
	Default           any               `yaml:"default"`
	Responsive        bool              `yaml:"responsive"`
}

// LoadFile reads a YAML control schema from path.
func LoadFile(path string) (*Registry, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, schemaError(fmt.Errorf("failed to open schema: %w", err))
	}
	defer f.Close()
	return Load(f)
}

// Load parses a YAML control schema. Control order in the document is the
// registry order, and selector order within a control is preserved.
func Load(r io.Reader) (*Registry, error) {
	var doc schemaFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil {
		return nil, schemaError(fmt.Errorf("failed to parse schema: %w", err))
	}

	version, err := normalizeVersion(doc.Version)
	if err != nil {
		return nil, schemaError(err)
	}
	if strings.TrimSpace(doc.ElementType) == "" {
		return nil, schemaError(fmt.Errorf("element_type is required"))
	}
	templateType, err := ParseTemplateType(doc.TemplateType)
	if err != nil {
		return nil, schemaError(err)
	}

	defs := make([]Control, 0, len(doc.Controls))
	for _, spec := range doc.Controls {
		def, err := spec.control()
		if err != nil {
			return nil, schemaError(err)
		}
		defs = append(defs, def)
	}

	reg, err := NewRegistry(doc.ElementType, templateType, defs)
	if err != nil {
		return nil, schemaError(err)
	}
	reg.version = version
	reg.template = doc.Template
	return reg, nil
}

func (s controlSpec) control() (Control, error) {
	renderType, err := ParseRenderType(s.RenderType)
	if err != nil {
		return Control{}, fmt.Errorf("control %q: %w", s.Name, err)
	}
	selectors, err := decodeSelectors(&s.Selectors)
	if err != nil {
		return Control{}, fmt.Errorf("control %q: %w", s.Name, err)
	}
	return Control{
		Name:              s.Name,
		Type:              Type(s.Type),
		RenderType:        renderType,
		Selectors:         selectors,
		PrefixClass:       s.PrefixClass,
		ClassesDictionary: s.ClassesDictionary,
		Condition:         s.Condition,
		Default:           s.Default,
		Responsive:        s.Responsive,
	}, nil
}

// decodeSelectors walks the mapping node directly so that the document
// order of selectors survives decoding.
func decodeSelectors(node *yaml.Node) ([]Selector, error) {
	if node.Kind == 0 {
		return nil, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, fmt.Errorf("selectors must be a mapping (line %d)", node.Line)
	}
	out := make([]Selector, 0, len(node.Content)/2)
	for i := 0; i+1 < len(node.Content); i += 2 {
		k, v := node.Content[i], node.Content[i+1]
		if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
			return nil, fmt.Errorf("selector entries must be strings (line %d)", k.Line)
		}
		out = append(out, Selector{Selector: k.Value, Declaration: v.Value})
	}
	return out, nil
}

func normalizeVersion(v string) (string, error) {
	v = strings.TrimSpace(v)
	if v == "" {
		return "", fmt.Errorf("version is required")
	}
	if !strings.HasPrefix(v, "v") {
		v = "v" + v
	}
	if !semver.IsValid(v) {
		return "", fmt.Errorf("invalid schema version %q", v)
	}
	if semver.Major(v) != SchemaMajor {
		return "", fmt.Errorf("unsupported schema version %s; expected %s.x", v, SchemaMajor)
	}
	return semver.Canonical(v), nil
}

func schemaError(err error) error {
	return &errors.ViewError{Op: "controls.Load", Kind: errors.KindSchema, Err: err}
}
