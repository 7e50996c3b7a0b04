package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetPageSource(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "query", q.Get("action"))
		assert.Equal(t, "revisions", q.Get("prop"))
		assert.Equal(t, "main", q.Get("rvslots"))
		assert.Equal(t, "Template:Hello", q.Get("titles"))
		assert.Contains(t, q.Get("rvprop"), "content")

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"batchcomplete": true,
			"query": {
				"pages": [{
					"pageid": 42,
					"ns": 10,
					"title": "Template:Hello",
					"revisions": [{
						"revid": 1001,
						"timestamp": "2024-01-01T00:00:00Z",
						"slots": {"main": {"contentmodel": "wikitext", "content": "Hello {{{1}}}"}}
					}]
				}]
			}
		}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 0)
	src, err := client.GetPageSource(context.Background(), "Template:Hello")
	require.NoError(t, err)

	assert.Equal(t, "Template:Hello", src.Title)
	assert.Equal(t, 1001, src.RevisionID)
	assert.Equal(t, "2024-01-01T00:00:00Z", src.Timestamp)
	assert.Equal(t, "Hello {{{1}}}", src.Content)
}

func TestGetPageSource_NotFound(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"missing", `{"query": {"pages": [{"ns": 10, "title": "Template:Nope", "missing": true}]}}`},
		{"invalid", `{"query": {"pages": [{"title": "Template:<>", "invalid": true}]}}`},
		{"no pages", `{"query": {}}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Write([]byte(tt.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, "", 0)
			_, err := client.GetPageSource(context.Background(), "Template:Nope")
			assert.ErrorIs(t, err, ErrPageNotFound)
		})
	}
}

func TestGetPageSource_InvalidJSON(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 0)
	_, err := client.GetPageSource(context.Background(), "Template:X")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse revisions response")
}
