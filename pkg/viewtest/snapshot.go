package viewtest

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-drift/pagebuilder/pkg/view"
)

// Snapshot captures the observable state of one element.
type Snapshot struct {
	Element    string   `json:"element"`
	Type       string   `json:"type"`
	DOMID      string   `json:"domId,omitempty"`
	Classes    []string `json:"classes"`
	Markup     string   `json:"markup"`
	Stylesheet string   `json:"stylesheet"`
}

// Capture snapshots e. Instance-specific values such as the unique class
// are replaced with stable placeholders.
func (t *Tester) Capture(e *view.Element) *Snapshot {
	classes := e.Classes()
	for i, c := range classes {
		if c == e.UniqueClass() {
			classes[i] = "{{UNIQUE}}"
		}
	}
	return &Snapshot{
		Element:    e.ID(),
		Type:       e.Type(),
		DOMID:      e.DOMID(),
		Classes:    classes,
		Markup:     e.Markup(),
		Stylesheet: t.Stylesheet(e),
	}
}

// MatchesFile compares this snapshot against a golden file. When
// PAGEBUILDER_UPDATE_SNAPSHOTS=1 is set, the file is rewritten instead.
func (s *Snapshot) MatchesFile(t TestingT, path string) {
	t.Helper()

	if os.Getenv("PAGEBUILDER_UPDATE_SNAPSHOTS") == "1" {
		if err := s.UpdateFile(path); err != nil {
			t.Fatalf("failed to update snapshot: %v", err)
		}
		return
	}

	expected, err := loadSnapshot(path)
	if err != nil {
		if os.IsNotExist(err) {
			t.Fatalf("snapshot file missing: %s\n\nTo create: PAGEBUILDER_UPDATE_SNAPSHOTS=1 go test -run %s", path, t.Name())
			return
		}
		t.Fatalf("failed to load snapshot: %v", err)
		return
	}

	if diff := s.Diff(expected); diff != "" {
		t.Errorf("snapshot mismatch: %s\n%s\n\nTo update: PAGEBUILDER_UPDATE_SNAPSHOTS=1 go test -run %s", path, diff, t.Name())
	}
}

// UpdateFile writes this snapshot to path, creating directories as needed.
func (s *Snapshot) UpdateFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := marshalSnapshot(s)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Diff returns a line diff between this snapshot and other, or "" when
// they are equal.
func (s *Snapshot) Diff(other *Snapshot) string {
	a, _ := marshalSnapshot(s)
	b, _ := marshalSnapshot(other)
	if bytes.Equal(a, b) {
		return ""
	}
	return lineDiff(string(b), string(a))
}

func loadSnapshot(path string) (*Snapshot, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var snap Snapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, fmt.Errorf("invalid snapshot JSON: %w", err)
	}
	return &snap, nil
}

func marshalSnapshot(s *Snapshot) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	if err := enc.Encode(s); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func lineDiff(expected, actual string) string {
	exp := strings.Split(expected, "\n")
	act := strings.Split(actual, "\n")

	var buf strings.Builder
	buf.WriteString("--- expected\n+++ actual\n")
	for i := 0; i < max(len(exp), len(act)); i++ {
		var e, a string
		if i < len(exp) {
			e = exp[i]
		}
		if i < len(act) {
			a = act[i]
		}
		if e == a {
			continue
		}
		if i < len(exp) {
			fmt.Fprintf(&buf, "-%s\n", e)
		}
		if i < len(act) {
			fmt.Fprintf(&buf, "+%s\n", a)
		}
	}
	return buf.String()
}
