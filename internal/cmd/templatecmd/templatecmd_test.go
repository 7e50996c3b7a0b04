package templatecmd

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/parsoid-go/internal/config"
	"github.com/open-cli-collective/parsoid-go/internal/view"
)

func testEnv(t *testing.T, out *bytes.Buffer, apiURL string, format view.Format) *env {
	t.Helper()
	cfg := &config.Config{
		APIURL:     apiURL,
		TemplateDB: filepath.Join(t.TempDir(), "data", "templates.db"),
	}
	cfg.ApplyDefaults()
	r := view.NewRenderer(format, true)
	r.SetWriter(out)
	return &env{ctx: context.Background(), cfg: cfg, renderer: r}
}

func TestPutGetDelete(t *testing.T) {
	var out bytes.Buffer
	e := testEnv(t, &out, "", view.FormatTable)

	require.NoError(t, runPut(e, "hello", "Hello {{{1}}}"))
	assert.Equal(t, "✓ Stored Template:Hello\n", out.String())

	out.Reset()
	require.NoError(t, runPut(e, "Template:Hello", "Hello {{{1}}}"))
	assert.Equal(t, "✓ Template:Hello is unchanged\n", out.String())

	out.Reset()
	require.NoError(t, runGet(e, &getOptions{}, "Hello", &out))
	assert.Equal(t, "Hello {{{1}}}", out.String())

	out.Reset()
	require.NoError(t, runGet(e, &getOptions{info: true}, "Hello", &out))
	assert.Contains(t, out.String(), "Template:Hello")
	assert.Contains(t, out.String(), "blake2b:")
	assert.Contains(t, out.String(), "13 bytes")

	out.Reset()
	require.NoError(t, runDelete(e, "Hello"))
	assert.Equal(t, "✓ Deleted Template:Hello\n", out.String())

	err := runGet(e, &getOptions{}, "Hello", &out)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not stored")

	err = runDelete(e, "Hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not stored")
}

func TestList_Local(t *testing.T) {
	var out bytes.Buffer
	e := testEnv(t, &out, "", view.FormatPlain)

	require.NoError(t, runList(e, &listOptions{limit: 50}))
	assert.Equal(t, "No templates found.\n", out.String())

	for _, title := range []string{"Infobox", "Info", "Navbox"} {
		require.NoError(t, runPut(e, title, title))
	}
	out.Reset()
	require.NoError(t, runList(e, &listOptions{limit: 50}))
	assert.Equal(t, "Template:Info\nTemplate:Infobox\nTemplate:Navbox\n", out.String())

	out.Reset()
	require.NoError(t, runList(e, &listOptions{prefix: "info", limit: 50}))
	assert.Equal(t, "Template:Info\nTemplate:Infobox\n", out.String())
}

func TestList_InvalidLimit(t *testing.T) {
	var out bytes.Buffer
	err := runList(testEnv(t, &out, "", view.FormatTable), &listOptions{limit: -1})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid limit")
}

func TestList_Remote(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "allpages", q.Get("list"))
		assert.Equal(t, "Info", q.Get("apprefix"))
		assert.Equal(t, "2", q.Get("aplimit"))
		w.Write([]byte(`{
			"continue": {"apcontinue": "Infobox_person", "continue": "-||"},
			"query": {"allpages": [
				{"pageid": 1, "ns": 10, "title": "Template:Info"},
				{"pageid": 2, "ns": 10, "title": "Template:Infobox"}
			]}
		}`))
	}))
	defer server.Close()

	var out bytes.Buffer
	e := testEnv(t, &out, server.URL, view.FormatJSON)
	require.NoError(t, runList(e, &listOptions{prefix: "Template:info", remote: true, limit: 2}))

	body, note, _ := strings.Cut(out.String(), "\n\n")
	var rows []map[string]string
	require.NoError(t, json.Unmarshal([]byte(body), &rows))
	assert.Equal(t, []map[string]string{{"title": "Template:Info"}, {"title": "Template:Infobox"}}, rows)
	assert.Contains(t, note, "showing first 2 results")
}

func TestList_RemoteWithoutURL(t *testing.T) {
	var out bytes.Buffer
	err := runList(testEnv(t, &out, "", view.FormatTable), &listOptions{remote: true, limit: 5})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no api_url configured")
}

func TestPull(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Template:Navbox", r.URL.Query().Get("titles"))
		w.Write([]byte(`{"query": {"pages": [{"ns": 10, "title": "Template:Navbox",
			"revisions": [{"revid": 7, "slots": {"main": {"content": "nav"}}}]}]}}`))
	}))
	defer server.Close()

	var out bytes.Buffer
	e := testEnv(t, &out, server.URL, view.FormatTable)
	require.NoError(t, runPull(e, []string{"navbox"}))
	require.NoError(t, runPull(e, []string{"Navbox"}))
	assert.Equal(t, "✓ Pulled Template:Navbox\n✓ Template:Navbox is up to date\n", out.String())

	out.Reset()
	require.NoError(t, runGet(e, &getOptions{}, "Navbox", &out))
	assert.Equal(t, "nav", out.String())
}

func TestPull_Missing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"query": {"pages": [{"ns": 10, "title": "Template:Nope", "missing": true}]}}`))
	}))
	defer server.Close()

	var out bytes.Buffer
	e := testEnv(t, &out, server.URL, view.FormatTable)
	err := runPull(e, []string{"Nope", "Other"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to pull 2 of 2 templates")
	assert.Contains(t, out.String(), "✗ failed to pull Template:Nope: template not found")
	assert.Contains(t, out.String(), "✗ failed to pull Template:Other")
}

func TestNewCmdTemplate(t *testing.T) {
	cmd := NewCmdTemplate()
	var names []string
	for _, c := range cmd.Commands() {
		names = append(names, c.Name())
	}
	assert.ElementsMatch(t, []string{"put", "get", "list", "delete", "pull"}, names)
}
