// Package templates provides the sources template expansions are fetched
// from: an in-memory map, a local SQLite database and a remote MediaWiki
// API, plus a cache and a chain to combine them.
package templates

import (
	"context"
	"errors"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ErrNotFound is returned when a source has no template with the title.
var ErrNotFound = errors.New("template not found")

// Namespace is the prefix template titles are normalized to.
const Namespace = "Template:"

// Source fetches the wikitext of a template.
type Source interface {
	Fetch(ctx context.Context, title string) (string, error)
}

// SourceFunc adapts a function to Source.
type SourceFunc func(ctx context.Context, title string) (string, error)

// Fetch calls f.
func (f SourceFunc) Fetch(ctx context.Context, title string) (string, error) {
	return f(ctx, title)
}

// NormalizeTitle canonicalizes a template title: whitespace trimmed,
// underscores turned into spaces, first letter upper-cased and the
// Template: namespace added. A leading colon names a page outside the
// template namespace; it is kept so normalizing again is a no-op.
func NormalizeTitle(title string) string {
	title = strings.TrimSpace(strings.ReplaceAll(title, "_", " "))
	if rest, ok := strings.CutPrefix(title, ":"); ok {
		rest = strings.TrimSpace(rest)
		if rest == "" {
			return ""
		}
		return ":" + upperFirst(rest)
	}
	if len(title) >= len(Namespace) && strings.EqualFold(title[:len(Namespace)], Namespace) {
		title = title[len(Namespace):]
	}
	title = strings.TrimSpace(title)
	if title == "" {
		return ""
	}
	return Namespace + upperFirst(title)
}

// PageName returns the wiki page a title refers to: the normalized title
// without the leading colon of a page outside the template namespace.
func PageName(title string) string {
	return strings.TrimPrefix(NormalizeTitle(title), ":")
}

// ShortTitle returns a normalized title without the template namespace.
func ShortTitle(title string) string {
	return strings.TrimPrefix(NormalizeTitle(title), Namespace)
}

func upperFirst(s string) string {
	r, n := utf8.DecodeRuneInString(s)
	if r == utf8.RuneError {
		return s
	}
	return string(unicode.ToUpper(r)) + s[n:]
}

// Chain tries sources in order and returns the first template found.
type Chain []Source

// Fetch returns the first result that is not ErrNotFound.
func (c Chain) Fetch(ctx context.Context, title string) (string, error) {
	for _, src := range c {
		text, err := src.Fetch(ctx, title)
		if errors.Is(err, ErrNotFound) {
			continue
		}
		return text, err
	}
	return "", ErrNotFound
}
