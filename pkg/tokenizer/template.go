package tokenizer

import (
	"strconv"
	"strings"

	"github.com/open-cli-collective/parsoid-go/pkg/token"
)

// span is a [start, end) range of scanner source.
type span struct {
	start, end int
}

func (sp span) trim(src string) span {
	for sp.start < sp.end && isSpace(src[sp.start]) {
		sp.start++
	}
	for sp.end > sp.start && isSpace(src[sp.end-1]) {
		sp.end--
	}
	return sp
}

// matchBraces returns the position after the brace that balances the
// open braces at start, or -1 if the input ends first.
func matchBraces(src string, start, open int) int {
	depth := open
	for i := start + open; i < len(src); i++ {
		switch src[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i + 1
			}
		}
	}
	return -1
}

// splitTop splits src[start:end] at '|' characters outside nested braces.
func splitTop(src string, start, end int) []span {
	var parts []span
	depth := 0
	from := start
	for i := start; i < end; i++ {
		switch src[i] {
		case '{':
			depth++
		case '}':
			depth--
		case '|':
			if depth == 0 {
				parts = append(parts, span{from, i})
				from = i + 1
			}
		}
	}
	return append(parts, span{from, end})
}

// equalsTop returns the position of the first '=' outside nested braces.
func equalsTop(src string, sp span) int {
	depth := 0
	for i := sp.start; i < sp.end; i++ {
		switch src[i] {
		case '{':
			depth++
		case '}':
			depth--
		case '=':
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// template recognizes {{title|positional|name=value}}. Positional
// parameters are keyed 1, 2, ... and keep their whitespace; named values
// are trimmed.
func (s *scanner) template() bool {
	start := s.pos
	end := matchBraces(s.src, start, 2)
	if end < 0 || !strings.HasSuffix(s.src[:end], "}}") {
		return false
	}
	parts := splitTop(s.src, start+2, end-2)
	title := parts[0].trim(s.src)
	if title.start == title.end {
		return false
	}

	attrs := []token.Attribute{token.Attr("title", s.nested(title.start, title.end)...)}
	positional := 0
	for _, p := range parts[1:] {
		if eq := equalsTop(s.src, p); eq >= 0 {
			key := span{p.start, eq}.trim(s.src)
			value := span{eq + 1, p.end}.trim(s.src)
			attrs = append(attrs, token.Attr(s.src[key.start:key.end], s.nested(value.start, value.end)...))
			continue
		}
		positional++
		attrs = append(attrs, token.Attr(strconv.Itoa(positional), s.nested(p.start, p.end)...))
	}
	s.emit(token.NewStartTag(TagTemplate, attrs...), start, end)
	return true
}

// templateArg recognizes {{{name|default}}}. The source text is kept so an
// unbound argument can be rendered literally.
func (s *scanner) templateArg() bool {
	start := s.pos
	end := matchBraces(s.src, start, 3)
	if end < 0 || !strings.HasSuffix(s.src[:end], "}}}") {
		return false
	}
	parts := splitTop(s.src, start+3, end-3)
	name := parts[0].trim(s.src)
	if name.start == name.end {
		return false
	}

	attrs := []token.Attribute{token.Attr("name", s.nested(name.start, name.end)...)}
	if len(parts) > 1 {
		attrs = append(attrs, token.Attr("default", s.nested(parts[1].start, parts[1].end)...))
	}
	attrs = append(attrs, token.StringAttr("source", s.src[start:end]))
	s.emit(token.NewStartTag(TagTemplateArg, attrs...), start, end)
	return true
}

func isSpace(c byte) bool {
	return c == ' ' || c == '\t' || c == '\n' || c == '\r'
}
