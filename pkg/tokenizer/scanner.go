package tokenizer

import (
	"slices"
	"strings"

	"github.com/open-cli-collective/parsoid-go/pkg/token"
)

// scanner tokenizes one source string. Nested scanners handle attribute
// values, template parameters and heading content.
type scanner struct {
	src    string
	base   int  // offset of src within the whole input
	inline bool // nested content: no headings, chunk breaks or EndOfInput
	pos    int
	text   int // start of pending text
	toks   []*token.Token
	breaks []int    // token counts at which a chunk ends
	quotes []string // open i/b toggles, innermost last
}

func newScanner(src string, base int, inline bool) *scanner {
	return &scanner{src: src, base: base, inline: inline}
}

func (s *scanner) run() {
	for s.pos < len(s.src) {
		rest := s.src[s.pos:]
		switch {
		case !s.inline && s.atLineStart() && s.heading():
		case rest[0] == '\n':
			s.newline()
		case strings.HasPrefix(rest, "<!--"):
			s.comment()
		case strings.HasPrefix(rest, "{{{") && s.templateArg():
		case strings.HasPrefix(rest, "{{") && s.template():
		case rest[0] == '<' && s.tag():
		case strings.HasPrefix(rest, "''"):
			s.apostrophes()
		default:
			s.pos++
		}
	}
	s.closeQuotes(len(s.src))
	s.flushText(len(s.src))
	if !s.inline {
		s.emit(token.NewEOF(), len(s.src), len(s.src))
	}
}

func (s *scanner) atLineStart() bool {
	return s.pos == 0 || s.src[s.pos-1] == '\n'
}

// emit appends tok covering src[start:end], flushing pending text first.
func (s *scanner) emit(tok *token.Token, start, end int) {
	s.flushText(start)
	s.toks = append(s.toks, tok.WithRange(s.base+start, s.base+end))
	s.text = end
	s.pos = end
}

func (s *scanner) flushText(end int) {
	if end > s.text {
		s.toks = append(s.toks, token.NewText(s.src[s.text:end]).WithRange(s.base+s.text, s.base+end))
	}
	s.text = end
}

// nested tokenizes src[start:end] as inline content.
func (s *scanner) nested(start, end int) []*token.Token {
	sub := newScanner(s.src[start:end], s.base+start, true)
	sub.run()
	return sub.toks
}

func (s *scanner) newline() {
	s.closeQuotes(s.pos)
	blank := s.pos > 0 && s.src[s.pos-1] == '\n'
	s.emit(token.NewNewline(), s.pos, s.pos+1)
	if blank && !s.inline {
		s.breaks = append(s.breaks, len(s.toks))
	}
}

func (s *scanner) comment() {
	start := s.pos
	body := start + len("<!--")
	end := len(s.src)
	text := s.src[body:]
	if i := strings.Index(text, "-->"); i >= 0 {
		text = text[:i]
		end = body + i + len("-->")
	}
	s.emit(token.NewComment(text), start, end)
}

// apostrophes handles a run of two or more apostrophes: '' toggles italic,
// ''' bold, ''''' both. Apostrophes beyond that are literal text.
func (s *scanner) apostrophes() {
	start := s.pos
	n := 0
	for start+n < len(s.src) && s.src[start+n] == '\'' {
		n++
	}
	switch {
	case n == 2:
		s.toggle("i", start, start+2)
	case n == 3:
		s.toggle("b", start, start+3)
	case n == 4:
		s.toggle("b", start+1, start+4)
	default:
		p := start + n - 5
		if len(s.quotes) > 0 && s.quotes[len(s.quotes)-1] == "b" {
			s.toggle("b", p, p+3)
			s.toggle("i", p+3, p+5)
		} else {
			s.toggle("i", p, p+2)
			s.toggle("b", p+2, p+5)
		}
	}
}

// toggle opens name, or closes it together with every toggle opened inside
// it; those are reopened afterwards so the output stays well nested.
func (s *scanner) toggle(name string, start, end int) {
	i := slices.Index(s.quotes, name)
	if i < 0 {
		s.emit(token.NewStartTag(name), start, end)
		s.quotes = append(s.quotes, name)
		return
	}
	inner := slices.Clone(s.quotes[i+1:])
	for j := len(s.quotes) - 1; j > i; j-- {
		s.emit(token.NewEndTag(s.quotes[j]), start, start)
	}
	s.emit(token.NewEndTag(name), start, end)
	s.quotes = s.quotes[:i]
	for _, q := range inner {
		s.emit(token.NewStartTag(q), end, end)
		s.quotes = append(s.quotes, q)
	}
}

// closeQuotes ends every open toggle; they never span lines.
func (s *scanner) closeQuotes(at int) {
	for j := len(s.quotes) - 1; j >= 0; j-- {
		s.emit(token.NewEndTag(s.quotes[j]), at, at)
	}
	s.quotes = s.quotes[:0]
}

// heading recognizes a line of the form "== content ==" at the scanner
// position. The level is the shorter of the two '=' runs, at most six.
func (s *scanner) heading() bool {
	start := s.pos
	eol := strings.IndexByte(s.src[start:], '\n')
	if eol < 0 {
		eol = len(s.src)
	} else {
		eol += start
	}
	line := strings.TrimRight(s.src[start:eol], " \t")
	open := len(line) - len(strings.TrimLeft(line, "="))
	shut := len(line) - len(strings.TrimRight(line, "="))
	level := min(open, shut, 6)
	if level == 0 || len(line) <= 2*level {
		return false
	}
	innerStart, innerEnd := start+level, start+len(line)-level
	for innerStart < innerEnd && (s.src[innerStart] == ' ' || s.src[innerStart] == '\t') {
		innerStart++
	}
	for innerEnd > innerStart && (s.src[innerEnd-1] == ' ' || s.src[innerEnd-1] == '\t') {
		innerEnd--
	}
	if innerStart == innerEnd {
		return false
	}
	name := "h" + string(rune('0'+level))
	s.emit(token.NewStartTag(name), start, innerStart)
	s.toks = append(s.toks, s.nested(innerStart, innerEnd)...)
	s.text = innerEnd
	s.emit(token.NewEndTag(name), innerEnd, eol)
	return true
}

func (s *scanner) chunks() []*token.Chunk {
	var out []*token.Chunk
	prev := 0
	for _, b := range s.breaks {
		if b > prev {
			out = append(out, token.NewChunk(s.toks[prev:b]...))
			prev = b
		}
	}
	return append(out, token.NewChunk(s.toks[prev:]...))
}
