package transform

import (
	"errors"
	"fmt"

	"github.com/open-cli-collective/parsoid-go/pkg/rank"
	"github.com/open-cli-collective/parsoid-go/pkg/token"
)

var (
	// ErrRankCollision is returned when a registration reuses a taken rank.
	ErrRankCollision = errors.New("rank collision")
	// ErrHandlerContent marks a handler that failed on a token.
	ErrHandlerContent = errors.New("handler content error")
	// ErrAsyncUnsupported is returned when a handler defers output in a
	// manager that only runs synchronous handlers.
	ErrAsyncUnsupported = errors.New("async result in synchronous manager")
)

// HandlerError wraps the failure of one handler on one token. It matches
// both ErrHandlerContent and the underlying error.
type HandlerError struct {
	Handler string
	Rank    rank.Rank
	Token   *token.Token
	Err     error
}

func (e *HandlerError) Error() string {
	return fmt.Sprintf("handler %s (rank %s) failed on %s: %v", e.Handler, e.Rank, e.Token, e.Err)
}

func (e *HandlerError) Unwrap() []error {
	return []error{ErrHandlerContent, e.Err}
}
