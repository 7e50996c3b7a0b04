package view

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/open-cli-collective/parsoid-go/pkg/diag"
)

var (
	templateHeaders = []string{"TITLE", "SIZE", "HASH"}
	templateRows    = [][]string{
		{"Template:Infobox", "1204", "blake2b:aa"},
		{"Template:Nav", "87", "blake2b:bb"},
	}
)

func newTestRenderer(format Format) (*Renderer, *bytes.Buffer) {
	var buf bytes.Buffer
	r := NewRenderer(format, true)
	r.SetWriter(&buf)
	return r, &buf
}

func TestValidateFormat(t *testing.T) {
	tests := []struct {
		format  string
		wantErr bool
	}{
		{"", false},
		{"table", false},
		{"json", false},
		{"plain", false},
		{"html", true},
		{"yaml", true},
		{"JSON", true},
	}

	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			err := ValidateFormat(tt.format)
			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), "invalid output format")
				assert.Contains(t, err.Error(), "table, json, plain")
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestRenderTable(t *testing.T) {
	tests := []struct {
		format Format
		want   string
	}{
		{
			FormatTable,
			"TITLE             SIZE  HASH\n" +
				"Template:Infobox  1204  blake2b:aa\n" +
				"Template:Nav      87    blake2b:bb\n",
		},
		{
			FormatPlain,
			"Template:Infobox\t1204\tblake2b:aa\n" +
				"Template:Nav\t87\tblake2b:bb\n",
		},
	}

	for _, tt := range tests {
		t.Run(string(tt.format), func(t *testing.T) {
			r, buf := newTestRenderer(tt.format)
			r.RenderTable(templateHeaders, templateRows)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestRenderTable_JSON(t *testing.T) {
	r, buf := newTestRenderer(FormatJSON)
	r.RenderTable(templateHeaders, templateRows)

	var result []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, []map[string]string{
		{"title": "Template:Infobox", "size": "1204", "hash": "blake2b:aa"},
		{"title": "Template:Nav", "size": "87", "hash": "blake2b:bb"},
	}, result)
}

func TestRenderTable_ShortRowLeavesColumnsOut(t *testing.T) {
	r, buf := newTestRenderer(FormatJSON)
	r.RenderTable(templateHeaders, [][]string{{"Template:Stub"}})

	var result []map[string]string
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, []map[string]string{{"title": "Template:Stub"}}, result)
}

func TestRenderTable_Empty(t *testing.T) {
	r, buf := newTestRenderer(FormatTable)
	r.RenderTable([]string{"TITLE"}, nil)
	assert.Equal(t, "TITLE\n", buf.String())

	r, buf = newTestRenderer(FormatJSON)
	r.RenderTable([]string{"TITLE"}, nil)
	assert.Equal(t, "null\n", buf.String())
}

func TestRenderJSON(t *testing.T) {
	r, buf := newTestRenderer(FormatJSON)
	require.NoError(t, r.RenderJSON(map[string]any{"html": "<b>hi</b>", "diagnostics": []string{}}))

	var result map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &result))
	assert.Equal(t, "<b>hi</b>", result["html"])
	assert.Equal(t, []any{}, result["diagnostics"])

	assert.Error(t, r.RenderJSON(func() {}))
}

func TestRenderKeyValue(t *testing.T) {
	r, buf := newTestRenderer(FormatTable)
	r.RenderKeyValue("Title", "Template:Nav")
	r.RenderKeyValue("Size", "87 bytes")
	assert.Equal(t, "Title:    Template:Nav\nSize:     87 bytes\n", buf.String())

	r, buf = newTestRenderer(FormatJSON)
	r.RenderKeyValue("hash", "blake2b:bb")
	assert.Equal(t, "{\"hash\":\"blake2b:bb\"}\n", buf.String())
}

func TestStatusLines(t *testing.T) {
	r, buf := newTestRenderer(FormatTable)
	r.Success("Stored Template:Nav")
	r.Error("failed to pull Template:Nope")
	assert.Equal(t, "✓ Stored Template:Nav\n✗ failed to pull Template:Nope\n", buf.String())
}

func TestDiagnostics(t *testing.T) {
	var out, msg bytes.Buffer
	r := NewRenderer(FormatTable, true)
	r.SetWriter(&out)
	r.SetMessageWriter(&msg)

	r.Diagnostics([]diag.Diagnostic{
		{Kind: diag.KindMissingTemplate, Message: "template Template:X not found", Title: "Template:X"},
		{Kind: diag.KindSanitized, Message: "tag <script> is not allowed"},
	})

	assert.Empty(t, out.String())
	assert.Equal(t,
		"! missing-template: template Template:X not found (in Template:X)\n"+
			"! sanitized: tag <script> is not allowed\n",
		msg.String())
}

func TestStatusGoesToMessageWriter(t *testing.T) {
	var out, msg bytes.Buffer
	r := NewRenderer(FormatTable, true)
	r.SetWriter(&out)
	r.SetMessageWriter(&msg)

	r.Success("stored")
	r.RenderText("result")

	assert.Equal(t, "result\n", out.String())
	assert.Equal(t, "✓ stored\n", msg.String())
}
