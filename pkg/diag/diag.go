// Package diag records recoverable, content-level problems found while
// converting a document. Diagnostics never abort a parse; they travel out
// of band next to the degraded output.
package diag

import (
	"crypto/rand"
	"fmt"
	"log/slog"
	"sync"

	"github.com/oklog/ulid/v2"
)

// Kind classifies a diagnostic.
type Kind string

const (
	KindRecursiveExpansion Kind = "recursive-expansion"
	KindDepthExceeded      Kind = "depth-exceeded"
	KindHandlerContent     Kind = "handler-content"
	KindMissingTemplate    Kind = "missing-template"
	KindFetchFailed        Kind = "fetch-failed"
	KindEOFDropped         Kind = "eof-dropped"
	KindSanitized          Kind = "sanitized"
)

// Diagnostic is one recorded problem.
type Diagnostic struct {
	ID      string `json:"id"`
	Kind    Kind   `json:"kind"`
	Message string `json:"message"`
	Title   string `json:"title,omitempty"` // expansion the problem occurred in
	Start   int    `json:"start,omitempty"`
	End     int    `json:"end,omitempty"`
}

func (d Diagnostic) String() string {
	if d.Title != "" {
		return fmt.Sprintf("%s: %s (in %s)", d.Kind, d.Message, d.Title)
	}
	return fmt.Sprintf("%s: %s", d.Kind, d.Message)
}

// Log collects diagnostics for one parse and mirrors them to a logger.
// Template fetches complete on other goroutines, so Log is safe for
// concurrent use.
type Log struct {
	mu      sync.Mutex
	items   []Diagnostic
	entropy *ulid.MonotonicEntropy
	logger  *slog.Logger
}

// NewLog creates an empty log. A nil logger discards the mirror output.
func NewLog(logger *slog.Logger) *Log {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Log{
		entropy: ulid.Monotonic(rand.Reader, 0),
		logger:  logger,
	}
}

// Add records a diagnostic, assigning it an ID, and returns the stored copy.
func (l *Log) Add(d Diagnostic) Diagnostic {
	l.mu.Lock()
	d.ID = ulid.MustNew(ulid.Now(), l.entropy).String()
	l.items = append(l.items, d)
	l.mu.Unlock()

	l.logger.Debug(d.Message, "kind", string(d.Kind), "title", d.Title, "id", d.ID)
	return d
}

// Addf records a diagnostic built from a format string.
func (l *Log) Addf(kind Kind, title, format string, args ...any) Diagnostic {
	return l.Add(Diagnostic{Kind: kind, Title: title, Message: fmt.Sprintf(format, args...)})
}

// All returns a copy of the recorded diagnostics in order.
func (l *Log) All() []Diagnostic {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]Diagnostic, len(l.items))
	copy(out, l.items)
	return out
}

// Len returns the number of recorded diagnostics.
func (l *Log) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.items)
}

// Has reports whether a diagnostic of the given kind was recorded.
func (l *Log) Has(kind Kind) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, d := range l.items {
		if d.Kind == kind {
			return true
		}
	}
	return false
}

// Reset drops all recorded diagnostics.
func (l *Log) Reset() {
	l.mu.Lock()
	l.items = nil
	l.mu.Unlock()
}
