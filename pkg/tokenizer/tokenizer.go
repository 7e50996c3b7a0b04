// Package tokenizer turns wikitext into pipeline tokens.
//
// Recognized syntax: template calls {{title|a|k=v}}, template arguments
// {{{name|default}}}, HTML-like tags, comments, '' and ''' toggles,
// == heading == lines and the extension tags nowiki, pre and markdown.
// Everything else is text. Every token carries its source range.
package tokenizer

import (
	"github.com/open-cli-collective/parsoid-go/pkg/pipeline"
	"github.com/open-cli-collective/parsoid-go/pkg/token"
)

// Tag names emitted for wikitext constructs that are not HTML elements.
const (
	TagTemplate    = "template"
	TagTemplateArg = "templatearg"
	TagExtension   = "extension"
)

// extensionTags have raw bodies that are not tokenized.
var extensionTags = map[string]bool{
	"nowiki":   true,
	"pre":      true,
	"markdown": true,
}

// IsExtensionTag reports whether name is tokenized as an extension.
func IsExtensionTag(name string) bool {
	return extensionTags[name]
}

// Tokenize scans input and splits the tokens into chunks at blank lines.
// The last chunk ends with EndOfInput. input is not modified.
func Tokenize(input string) []*token.Chunk {
	s := newScanner(input, 0, false)
	s.run()
	return s.chunks()
}

// Tokens scans input and returns all tokens, EndOfInput included.
func Tokens(input string) []*token.Token {
	s := newScanner(input, 0, false)
	s.run()
	return s.toks
}

// Stage is the tokenizer as the first pipeline stage. It emits one message
// per chunk; all but the last are pending.
type Stage struct {
	pipeline.Emitter[token.Message]
}

// NewStage creates an unwired tokenizer stage.
func NewStage() *Stage {
	return &Stage{}
}

// Receive tokenizes one complete input.
func (st *Stage) Receive(input string) error {
	chunks := Tokenize(input)
	for i, c := range chunks {
		msg := token.NewPending(c)
		if i == len(chunks)-1 {
			msg = token.NewSync(c)
		}
		if err := st.Emit(msg); err != nil {
			return err
		}
	}
	return nil
}
