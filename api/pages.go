package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
)

// PageSource is the current wikitext of a page.
type PageSource struct {
	Title      string
	RevisionID int
	Timestamp  string
	Content    string
}

// GetPageSource returns the latest revision of the page with the given
// title. It returns ErrPageNotFound for missing or invalid titles.
func (c *Client) GetPageSource(ctx context.Context, title string) (*PageSource, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("prop", "revisions")
	params.Set("rvprop", "content|ids|timestamp")
	params.Set("rvslots", "main")
	params.Set("titles", title)

	body, err := c.Get(ctx, params)
	if err != nil {
		return nil, err
	}

	var result QueryResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse revisions response: %w", err)
	}

	if len(result.Query.Pages) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, title)
	}
	page := result.Query.Pages[0]
	if page.Missing || page.Invalid || len(page.Revisions) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrPageNotFound, title)
	}

	rev := page.Revisions[0]
	main, ok := rev.Slots["main"]
	if !ok {
		return nil, fmt.Errorf("page %s has no main slot", page.Title)
	}

	return &PageSource{
		Title:      page.Title,
		RevisionID: rev.RevID,
		Timestamp:  rev.Timestamp,
		Content:    main.Content,
	}, nil
}
