package templates

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"
)

// Memory is a Source backed by a map. It is safe for concurrent use.
type Memory struct {
	mu        sync.RWMutex
	templates map[string]string
}

// NewMemory creates a source holding the given title to wikitext pairs.
func NewMemory(templates map[string]string) *Memory {
	m := &Memory{templates: make(map[string]string, len(templates))}
	for title, text := range templates {
		m.Put(title, text)
	}
	return m
}

// LoadDir reads every *.wiki file in dir; the file name without the
// extension is the template title.
func LoadDir(dir string) (*Memory, error) {
	paths, err := filepath.Glob(filepath.Join(dir, "*.wiki"))
	if err != nil {
		return nil, err
	}
	m := NewMemory(nil)
	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			return nil, fmt.Errorf("reading template %s: %w", p, err)
		}
		m.Put(strings.TrimSuffix(filepath.Base(p), ".wiki"), string(data))
	}
	return m, nil
}

// Put adds or replaces a template.
func (m *Memory) Put(title, text string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.templates[NormalizeTitle(title)] = text
}

// Fetch implements Source.
func (m *Memory) Fetch(_ context.Context, title string) (string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	text, ok := m.templates[NormalizeTitle(title)]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrNotFound, title)
	}
	return text, nil
}

// Titles returns the normalized titles in sorted order.
func (m *Memory) Titles() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	titles := make([]string, 0, len(m.templates))
	for t := range m.templates {
		titles = append(titles, t)
	}
	slices.Sort(titles)
	return titles
}
