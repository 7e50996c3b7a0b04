package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
)

// ListTemplatesOptions contains options for listing templates.
type ListTemplatesOptions struct {
	Prefix   string // title prefix without the namespace
	Limit    int    // max results per request (default 50, max 500)
	Continue string // continuation token from a previous call
}

// TemplateList is one page of template titles.
type TemplateList struct {
	Titles   []string
	Continue string // empty when there are no more results
}

// HasMore returns true if there are more results available.
func (l *TemplateList) HasMore() bool {
	return l.Continue != ""
}

// ListTemplates returns titles of pages in the Template namespace.
func (c *Client) ListTemplates(ctx context.Context, opts *ListTemplatesOptions) (*TemplateList, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("list", "allpages")
	params.Set("apnamespace", strconv.Itoa(TemplateNamespace))
	params.Set("aplimit", "50") // Default limit

	if opts != nil {
		if opts.Limit > 0 {
			limit := opts.Limit
			if limit > 500 {
				limit = 500
			}
			params.Set("aplimit", strconv.Itoa(limit))
		}
		if opts.Prefix != "" {
			params.Set("apprefix", opts.Prefix)
		}
		if opts.Continue != "" {
			params.Set("apcontinue", opts.Continue)
		}
	}

	body, err := c.Get(ctx, params)
	if err != nil {
		return nil, err
	}

	var result QueryResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse allpages response: %w", err)
	}

	list := &TemplateList{Titles: make([]string, 0, len(result.Query.AllPages))}
	for _, p := range result.Query.AllPages {
		list.Titles = append(list.Titles, p.Title)
	}
	list.Continue = result.Continue["apcontinue"]
	return list, nil
}
