package templates

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/parsoid-go/api"
)

func TestRemote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("titles") {
		case "Template:Hello":
			w.Write([]byte(`{"query": {"pages": [{"ns": 10, "title": "Template:Hello",
				"revisions": [{"revid": 1, "slots": {"main": {"contentmodel": "wikitext", "content": "hi"}}}]}]}}`))
		case "Main page":
			w.Write([]byte(`{"query": {"pages": [{"ns": 0, "title": "Main page",
				"revisions": [{"revid": 2, "slots": {"main": {"contentmodel": "wikitext", "content": "welcome"}}}]}]}}`))
		case "Template:Broken":
			w.WriteHeader(http.StatusInternalServerError)
		default:
			w.Write([]byte(`{"query": {"pages": [{"ns": 10, "title": "x", "missing": true}]}}`))
		}
	}))
	defer server.Close()

	r := NewRemote(api.NewClient(server.URL, "", 0))
	ctx := context.Background()

	text, err := r.Fetch(ctx, "hello")
	require.NoError(t, err)
	assert.Equal(t, "hi", text)

	text, err = r.Fetch(ctx, ":Main page")
	require.NoError(t, err)
	assert.Equal(t, "welcome", text)

	_, err = r.Fetch(ctx, "nope")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = r.Fetch(ctx, "broken")
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
