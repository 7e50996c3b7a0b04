package api

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewClient(t *testing.T) {
	client := NewClient("https://wiki.example.org/w/api.php/", "", 0)

	assert.NotNil(t, client)
	assert.Equal(t, "https://wiki.example.org/w/api.php", client.baseURL)
	assert.Equal(t, defaultUserAgent, client.userAgent)
	assert.Equal(t, defaultTimeout, client.httpClient.Timeout)

	client = NewClient("https://wiki.example.org/w/api.php", "bot/1.0", 5*time.Second)
	assert.Equal(t, "bot/1.0", client.userAgent)
	assert.Equal(t, 5*time.Second, client.httpClient.Timeout)
}

func TestClient_Headers(t *testing.T) {
	var capturedHeaders http.Header

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedHeaders = r.Header.Clone()
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "tester/0.1", 0)
	_, err := client.do(context.Background(), url.Values{})
	require.NoError(t, err)

	assert.Equal(t, "application/json", capturedHeaders.Get("Accept"))
	assert.Equal(t, "tester/0.1", capturedHeaders.Get("User-Agent"))
}

func TestClient_FormatParameters(t *testing.T) {
	var capturedQuery url.Values

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		capturedQuery = r.URL.Query()
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, "", 0)
	params := url.Values{}
	params.Set("action", "query")
	_, err := client.Get(context.Background(), params)
	require.NoError(t, err)

	assert.Equal(t, "query", capturedQuery.Get("action"))
	assert.Equal(t, "json", capturedQuery.Get("format"))
	assert.Equal(t, "2", capturedQuery.Get("formatversion"))
}

func TestClient_ErrorResponse(t *testing.T) {
	tests := []struct {
		name           string
		statusCode     int
		responseBody   string
		expectedErrMsg string
	}{
		{
			name:           "api error with status 200",
			statusCode:     200,
			responseBody:   `{"error": {"code": "badvalue", "info": "Unrecognized value"}}`,
			expectedErrMsg: "badvalue: Unrecognized value",
		},
		{
			name:           "api error with http status",
			statusCode:     429,
			responseBody:   `{"error": {"code": "ratelimited", "info": "Slow down"}}`,
			expectedErrMsg: "ratelimited: Slow down",
		},
		{
			name:           "non-json error body",
			statusCode:     503,
			responseBody:   "Service Unavailable\n",
			expectedErrMsg: "Service Unavailable",
		},
		{
			name:           "empty error body",
			statusCode:     500,
			responseBody:   "",
			expectedErrMsg: "API error (status 500)",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.statusCode)
				w.Write([]byte(tt.responseBody))
			}))
			defer server.Close()

			client := NewClient(server.URL, "", 0)
			_, err := client.Get(context.Background(), url.Values{})
			require.Error(t, err)
			assert.Equal(t, tt.expectedErrMsg, err.Error())

			var apiErr *ErrorResponse
			require.True(t, errors.As(err, &apiErr))
			assert.Equal(t, tt.statusCode, apiErr.StatusCode)
		})
	}
}

func TestClient_ContextCanceled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	}))
	defer server.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := NewClient(server.URL, "", 0)
	_, err := client.Get(ctx, url.Values{})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}
