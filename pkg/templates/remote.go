package templates

import (
	"context"
	"errors"
	"fmt"

	"github.com/open-cli-collective/parsoid-go/api"
)

// Remote fetches templates from a live wiki.
type Remote struct {
	client *api.Client
}

// NewRemote creates a source backed by client.
func NewRemote(client *api.Client) *Remote {
	return &Remote{client: client}
}

// Fetch implements Source.
func (r *Remote) Fetch(ctx context.Context, title string) (string, error) {
	title = PageName(title)
	src, err := r.client.GetPageSource(ctx, title)
	if errors.Is(err, api.ErrPageNotFound) {
		return "", fmt.Errorf("%w: %s", ErrNotFound, title)
	}
	if err != nil {
		return "", fmt.Errorf("fetching %s: %w", title, err)
	}
	return src.Content, nil
}
