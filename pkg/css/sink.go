package css

import (
	"fmt"
	"io"
	"slices"
	"sync"

	"github.com/go-drift/pagebuilder/pkg/errors"
)

// Sink stores one stylesheet container per element instance. Containers
// are replaced wholesale; there is no rule-level patching.
type Sink interface {
	// Create adds an empty container for key. Creating an existing
	// container is a no-op.
	Create(key string)
	// Has reports whether a container exists for key.
	Has(key string) bool
	// Replace sets the container content. It fails with
	// errors.ErrMissingStylesheetTarget when the container does not exist.
	Replace(key, text string) error
	// Append adds text after the current content.
	Append(key, text string) error
	// Content returns the container content.
	Content(key string) (string, bool)
	// Remove deletes the container and its content.
	Remove(key string)
}

// MemorySink is an in-memory Sink that keeps containers in creation order.
// It is safe for concurrent use.
type MemorySink struct {
	mu     sync.RWMutex
	order  []string
	sheets map[string]string
}

// NewMemorySink creates an empty sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{sheets: make(map[string]string)}
}

func (s *MemorySink) Create(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sheets[key]; ok {
		return
	}
	s.sheets[key] = ""
	s.order = append(s.order, key)
}

func (s *MemorySink) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.sheets[key]
	return ok
}

func (s *MemorySink) Replace(key, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sheets[key]; !ok {
		return fmt.Errorf("%w: %s", errors.ErrMissingStylesheetTarget, key)
	}
	s.sheets[key] = text
	return nil
}

func (s *MemorySink) Append(key, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.sheets[key]
	if !ok {
		return fmt.Errorf("%w: %s", errors.ErrMissingStylesheetTarget, key)
	}
	s.sheets[key] = cur + text
	return nil
}

func (s *MemorySink) Content(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	text, ok := s.sheets[key]
	return text, ok
}

func (s *MemorySink) Remove(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sheets[key]; !ok {
		return
	}
	delete(s.sheets, key)
	if i := slices.Index(s.order, key); i >= 0 {
		s.order = slices.Delete(s.order, i, i+1)
	}
}

// Len returns the number of containers.
func (s *MemorySink) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sheets)
}

// WriteTo writes every non-empty container as a <style> element, in
// creation order.
func (s *MemorySink) WriteTo(w io.Writer) (int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var total int64
	for _, key := range s.order {
		text := s.sheets[key]
		if text == "" {
			continue
		}
		n, err := fmt.Fprintf(w, "<style id=\"pb-style-%s\">%s</style>\n", key, text)
		total += int64(n)
		if err != nil {
			return total, err
		}
	}
	return total, nil
}
