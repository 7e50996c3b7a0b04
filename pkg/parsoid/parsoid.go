// Package parsoid assembles the tokenizer, the transform managers and the
// tree builder into a converter from wikitext to HTML documents.
//
// A parse runs on a scheduler loop owned by the calling goroutine. Template
// sources are fetched on their own goroutines; everything else, including
// every nested expansion, runs on the loop.
package parsoid

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/oklog/ulid/v2"
	"github.com/yuin/goldmark"

	"github.com/open-cli-collective/parsoid-go/pkg/diag"
	"github.com/open-cli-collective/parsoid-go/pkg/handlers"
	"github.com/open-cli-collective/parsoid-go/pkg/pipeline"
	"github.com/open-cli-collective/parsoid-go/pkg/scheduler"
	"github.com/open-cli-collective/parsoid-go/pkg/scope"
	"github.com/open-cli-collective/parsoid-go/pkg/templates"
	"github.com/open-cli-collective/parsoid-go/pkg/token"
	"github.com/open-cli-collective/parsoid-go/pkg/tokenizer"
	"github.com/open-cli-collective/parsoid-go/pkg/transform"
	"github.com/open-cli-collective/parsoid-go/pkg/treebuilder"
)

// ErrIncompleteParse is returned when the pipeline went idle without
// producing a document, typically because a stage swallowed the
// end-of-input token.
var ErrIncompleteParse = errors.New("incomplete parse: no document produced")

// Document is a converted page.
type Document = treebuilder.Document

// RegisterFunc installs extra handlers on the managers of a pipeline. It
// is called for the top-level pipeline and for every nested expansion.
type RegisterFunc func(sm *transform.SyncManager, am *transform.AsyncManager) error

// Options configure a Parsoid.
type Options struct {
	Source          templates.Source
	MaxDepth        int
	Logger          *slog.Logger
	Title           string
	Markdown        goldmark.Markdown
	DefaultHandlers bool
	Handlers        []RegisterFunc
}

// Option modifies Options.
type Option func(*Options)

// WithSource sets where templates are fetched from.
func WithSource(src templates.Source) Option {
	return func(o *Options) { o.Source = src }
}

// WithMaxDepth limits how deeply templates may nest.
func WithMaxDepth(n int) Option {
	return func(o *Options) { o.MaxDepth = n }
}

// WithLogger sets the logger for pipeline events and diagnostics.
func WithLogger(l *slog.Logger) Option {
	return func(o *Options) { o.Logger = l }
}

// WithTitle names the page being parsed. A page that transcludes itself is
// then reported as a loop.
func WithTitle(title string) Option {
	return func(o *Options) { o.Title = title }
}

// WithMarkdown sets the renderer for <markdown> extension tags.
func WithMarkdown(md goldmark.Markdown) Option {
	return func(o *Options) { o.Markdown = md }
}

// WithoutDefaultHandlers leaves the managers empty except for handlers
// added with WithHandlers.
func WithoutDefaultHandlers() Option {
	return func(o *Options) { o.DefaultHandlers = false }
}

// WithHandlers adds handler registrations run after the defaults.
func WithHandlers(fns ...RegisterFunc) Option {
	return func(o *Options) { o.Handlers = append(o.Handlers, fns...) }
}

// Parsoid converts wikitext into documents. A value can be reused for
// sequential parses but must not run two parses at once.
type Parsoid struct {
	opts Options
}

// New creates a converter.
func New(opts ...Option) *Parsoid {
	o := Options{DefaultHandlers: true}
	for _, opt := range opts {
		opt(&o)
	}
	if o.Source == nil {
		o.Source = templates.NewMemory(nil)
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.DiscardHandler)
	}
	return &Parsoid{opts: o}
}

// Tokens returns the tokenizer output for text, before any handler ran.
func (p *Parsoid) Tokens(text string) []*token.Token {
	return tokenizer.Tokens(text)
}

// Parse converts text and returns the finished document.
func (p *Parsoid) Parse(ctx context.Context, text string) (*Document, error) {
	var got pipeline.Capture[*Document]
	if err := p.ParseWith(ctx, text, got.Receive); err != nil {
		return nil, err
	}
	doc, _ := got.Value()
	return doc, nil
}

// ParseWith converts text and calls onDocument once with the result. It
// returns when the document was delivered, or with ErrIncompleteParse if
// the pipeline went idle without one.
func (p *Parsoid) ParseWith(ctx context.Context, text string, onDocument func(*Document) error) error {
	r := &run{
		ctx:    ctx,
		opts:   &p.opts,
		loop:   scheduler.New(),
		table:  scope.NewTable(),
		id:     ulid.Make().String(),
		logger: p.opts.Logger,
	}
	env := scope.NewEnv(p.opts.MaxDepth, p.opts.Logger.With("parse", r.id))
	root := r.table.NewRoot(env, p.opts.Title, token.NewAttributes())

	tz, am, err := r.assemble(root)
	if err != nil {
		return err
	}
	om := transform.NewOutputManager(root)
	if p.opts.DefaultHandlers {
		if err := handlers.RegisterOutput(om, handlers.Deps{Markdown: p.opts.Markdown}); err != nil {
			return err
		}
	}
	builder := treebuilder.New()
	pipeline.Connect[token.Message, token.Message, token.Message](am, om)
	om.SetReceiver(builder.Receive)
	delivered := 0
	builder.SetReceiver(func(doc *Document) error {
		delivered++
		doc.Diagnostics = env.Diags.All()
		return onDocument(doc)
	})

	r.logger.Debug("parse started", "parse", r.id, "title", p.opts.Title, "bytes", len(text))
	r.loop.Post(func() error { return tz.Receive(text) })
	if err := r.loop.Run(ctx); err != nil {
		return fmt.Errorf("parsing: %w", err)
	}
	if delivered == 0 {
		return ErrIncompleteParse
	}
	r.logger.Debug("parse finished", "parse", r.id, "diagnostics", env.Diags.Len())
	return nil
}

// run is the state of one parse. It expands templates for the handlers of
// every pipeline the parse assembles.
type run struct {
	ctx    context.Context
	opts   *Options
	loop   *scheduler.Loop
	table  *scope.Table
	id     string
	logger *slog.Logger
}

// assemble builds tokenizer, sync manager and async manager for s and
// connects them. The async manager's receiver is left to the caller.
func (r *run) assemble(s *scope.Scope) (*tokenizer.Stage, *transform.AsyncManager, error) {
	tz := tokenizer.NewStage()
	sm := transform.NewSyncManager(s)
	am := transform.NewAsyncManager(s)
	if r.opts.DefaultHandlers {
		if err := handlers.Register(sm, am, handlers.Deps{Expander: r, Markdown: r.opts.Markdown}); err != nil {
			return nil, nil, err
		}
	}
	for _, fn := range r.opts.Handlers {
		if err := fn(sm, am); err != nil {
			return nil, nil, err
		}
	}
	pipeline.Connect[string, token.Message, token.Message](tz, sm)
	pipeline.Connect[token.Message, token.Message, token.Message](sm, am)
	return tz, am, nil
}

// Expand fetches child's template and runs it through a nested pipeline
// in child. Its output, without the end-of-input token, goes to ret; the
// last message to ret is final. The fetch runs off the loop.
func (r *run) Expand(child *scope.Scope, ret pipeline.Receiver[token.Message]) error {
	title := child.Title()
	r.logger.Debug("expanding template", "parse", r.id, "title", title, "depth", child.Depth())
	scheduler.Defer(r.loop, func() (string, error) {
		return r.opts.Source.Fetch(r.ctx, title)
	}, func(src string, err error) error {
		if err != nil {
			return r.fetchFailed(child, err, ret)
		}
		return r.expand(child, src, ret)
	})
	return nil
}

func (r *run) expand(child *scope.Scope, src string, ret pipeline.Receiver[token.Message]) error {
	tz, am, err := r.assemble(child)
	if err != nil {
		return err
	}
	am.SetReceiver(func(msg token.Message) error {
		out := make(token.ChunkChunk, 0, len(msg.Chunks()))
		for _, c := range msg.Chunks() {
			stripped := token.NewChunk(token.StripEOF(c.Tokens())...)
			stripped.SetRank(c.Rank())
			out = append(out, stripped)
		}
		if msg.IsFinal() {
			child.Release()
		}
		return ret(token.NewMessage(out, msg.IsFinal()))
	})
	return tz.Receive(src)
}

// fetchFailed completes an expansion whose source could not be loaded with
// a marker naming the template.
func (r *run) fetchFailed(child *scope.Scope, err error, ret pipeline.Receiver[token.Message]) error {
	title := child.Title()
	if errors.Is(err, templates.ErrNotFound) {
		child.Env().Diags.Addf(diag.KindMissingTemplate, title, "template %s not found", title)
	} else {
		child.Env().Diags.Addf(diag.KindFetchFailed, title, "fetching %s: %v", title, err)
	}
	child.Release()
	return ret(token.NewSync(token.NewChunk(handlers.MissingTemplate(title)...)))
}
