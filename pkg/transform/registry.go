package transform

import (
	"fmt"
	"log/slog"
	"slices"

	"github.com/open-cli-collective/parsoid-go/pkg/rank"
	"github.com/open-cli-collective/parsoid-go/pkg/token"
)

// Any registers a handler for every token regardless of kind.
const Any token.Kind = -1

// Registration is one handler entry in a registry.
type Registration struct {
	Name    string
	Rank    rank.Rank
	Kind    token.Kind
	Tag     string // tag name for StartTag/EndTag, empty matches every tag
	handler Handler
}

func (r *Registration) String() string {
	switch {
	case r.Kind == Any:
		return fmt.Sprintf("%s@%s[*]", r.Name, r.Rank)
	case r.Tag != "":
		return fmt.Sprintf("%s@%s[%s %s]", r.Name, r.Rank, r.Kind, r.Tag)
	default:
		return fmt.Sprintf("%s@%s[%s]", r.Name, r.Rank, r.Kind)
	}
}

type key struct {
	kind token.Kind
	tag  string
}

func keyFor(kind token.Kind, tag string) key {
	if kind != token.KindStartTag && kind != token.KindEndTag {
		tag = ""
	}
	return key{kind: kind, tag: tag}
}

// Registry holds the handlers of one manager ordered by rank.
type Registry struct {
	all    []*Registration // every registration, sorted by rank
	byKey  map[key][]*Registration
	merged map[key][]*Registration
	alloc  rank.Allocator
	logger *slog.Logger
}

func newRegistry(phase rank.Phase, logger *slog.Logger) Registry {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return Registry{
		byKey:  make(map[key][]*Registration),
		merged: make(map[key][]*Registration),
		alloc:  rank.Allocator{Phase: phase},
		logger: logger,
	}
}

// Register adds h at rank r for tokens of the given kind (and tag name,
// for tags). Pass Any as kind to see every token.
func (g *Registry) Register(h Handler, r rank.Rank, kind token.Kind, tag, name string) (*Registration, error) {
	if err := rank.Validate(r); err != nil {
		return nil, err
	}
	for _, existing := range g.all {
		if rank.Equal(existing.Rank, r) {
			return nil, fmt.Errorf("%w: %s wants %s held by %s", ErrRankCollision, name, r, existing.Name)
		}
	}
	k := keyFor(kind, tag)
	reg := &Registration{Name: name, Rank: r, Kind: kind, Tag: k.tag, handler: h}
	g.all = insertSorted(g.all, reg)
	g.byKey[k] = insertSorted(g.byKey[k], reg)
	clear(g.merged)
	g.logger.Debug("registered handler", "handler", name, "rank", r.String(), "kind", kind.String(), "tag", k.tag)
	return reg, nil
}

// RegisterAfter adds h directly after an existing registration, for the
// same token kind and tag.
func (g *Registry) RegisterAfter(h Handler, after *Registration, name string) (*Registration, error) {
	return g.Register(h, rank.After(after.Rank), after.Kind, after.Tag, name)
}

// Unregister removes the handler registered at r for kind and tag. It
// reports whether anything was removed.
func (g *Registry) Unregister(r rank.Rank, kind token.Kind, tag string) bool {
	k := keyFor(kind, tag)
	list := g.byKey[k]
	i := slices.IndexFunc(list, func(reg *Registration) bool { return rank.Equal(reg.Rank, r) })
	if i < 0 {
		g.logger.Debug("unregister of unknown handler", "rank", r.String(), "kind", kind.String(), "tag", k.tag)
		return false
	}
	reg := list[i]
	g.byKey[k] = slices.Delete(list, i, i+1)
	g.all = slices.DeleteFunc(g.all, func(x *Registration) bool { return x == reg })
	clear(g.merged)
	return true
}

// Registrations returns every registration in rank order.
func (g *Registry) Registrations() []*Registration {
	return slices.Clone(g.all)
}

// Phase returns the part of rank space AddTransformer allocates from.
func (g *Registry) Phase() rank.Phase {
	return g.alloc.Phase
}

// AddTransformer reserves the next transformer slice of the registry's
// phase.
func (g *Registry) AddTransformer(name string) (*Transformer, error) {
	slot, err := g.alloc.Next()
	if err != nil {
		return nil, fmt.Errorf("adding transformer %s: %w", name, err)
	}
	return &Transformer{reg: g, name: name, slot: slot}, nil
}

// handlersFor returns the handlers that apply to tok in rank order,
// restricted to ranks strictly above min.
func (g *Registry) handlersFor(tok *token.Token, min rank.Rank) []*Registration {
	name, _ := tok.Name()
	k := keyFor(tok.Kind(), name)
	list, ok := g.merged[k]
	if !ok {
		list = mergeSorted(g.byKey[k], g.byKey[key{kind: Any}])
		if k.tag != "" {
			list = mergeSorted(list, g.byKey[key{kind: k.kind}])
		}
		g.merged[k] = list
	}
	i, _ := slices.BinarySearchFunc(list, min, func(reg *Registration, r rank.Rank) int {
		if rank.Less(r, reg.Rank) {
			return 1
		}
		return -1
	})
	return list[i:]
}

func cmpRank(a, b *Registration) int {
	switch {
	case rank.Less(a.Rank, b.Rank):
		return -1
	case rank.Less(b.Rank, a.Rank):
		return 1
	}
	return 0
}

func insertSorted(list []*Registration, reg *Registration) []*Registration {
	i, _ := slices.BinarySearchFunc(list, reg, cmpRank)
	return slices.Insert(list, i, reg)
}

func mergeSorted(a, b []*Registration) []*Registration {
	out := make([]*Registration, 0, len(a)+len(b))
	out = append(out, a...)
	out = append(out, b...)
	slices.SortStableFunc(out, cmpRank)
	return out
}

// Transformer is a named group of handlers sharing one slice of rank
// space. Handlers added later run after handlers added earlier.
type Transformer struct {
	reg  *Registry
	name string
	slot rank.Slot
	next int
}

// Name returns the transformer name.
func (t *Transformer) Name() string {
	return t.name
}

// Slot returns the rank slice owned by the transformer.
func (t *Transformer) Slot() rank.Slot {
	return t.slot
}

// On registers h for tokens of kind (and tag name, for tags) at the next
// free rank of the transformer.
func (t *Transformer) On(kind token.Kind, tag string, h Handler) (*Registration, error) {
	r, err := t.slot.Handler(t.next)
	if err != nil {
		return nil, fmt.Errorf("transformer %s: %w", t.name, err)
	}
	name := t.name
	if tag != "" {
		name += ":" + tag
	}
	reg, err := t.reg.Register(h, r, kind, tag, name)
	if err != nil {
		return nil, err
	}
	t.next++
	return reg, nil
}

// OnAny registers h for every token at the next free rank of the
// transformer.
func (t *Transformer) OnAny(h Handler) (*Registration, error) {
	return t.On(Any, "", h)
}
