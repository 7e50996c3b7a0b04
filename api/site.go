package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
)

// GetSiteInfo returns general information about the wiki. It is the
// cheapest request that proves the endpoint is a working action API.
func (c *Client) GetSiteInfo(ctx context.Context) (*SiteInfo, error) {
	params := url.Values{}
	params.Set("action", "query")
	params.Set("meta", "siteinfo")
	params.Set("siprop", "general")

	body, err := c.Get(ctx, params)
	if err != nil {
		return nil, err
	}

	var result QueryResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse siteinfo response: %w", err)
	}
	if result.Query.General == nil {
		return nil, errors.New("siteinfo response has no general section")
	}
	return result.Query.General, nil
}
