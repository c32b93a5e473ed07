package output

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
	}{
		{"json", FormatJSON},
		{"JSON", FormatJSON},
		{"markdown", FormatMarkdown},
		{"md", FormatMarkdown},
		{"toon", FormatTOON},
		{"text", FormatText},
		{"anything-else", FormatText},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseFormat(tt.in), tt.in)
	}
}

func TestTable_RenderMarkdown(t *testing.T) {
	table := NewTable("Findings",
		[]string{"File", "Issue"},
		[][]string{
			{"a.ts", "dead-export"},
			{"b.ts", "complexity"},
		}, nil, nil)

	var buf bytes.Buffer
	require.NoError(t, table.RenderMarkdown(&buf))

	out := buf.String()
	assert.Contains(t, out, "## Findings")
	assert.Contains(t, out, "| File | Issue |")
	assert.Contains(t, out, "| --- | --- |")
	assert.Contains(t, out, "| a.ts | dead-export |")
}

func TestTable_RenderText(t *testing.T) {
	table := NewTable("", []string{"Key", "Value"}, [][]string{{"hits", "3"}}, nil, nil)

	var buf bytes.Buffer
	require.NoError(t, table.RenderText(&buf, false))

	assert.Contains(t, buf.String(), "hits")
	assert.Contains(t, buf.String(), "3")
}

func TestTable_RenderData(t *testing.T) {
	table := NewTable("", []string{"File"}, [][]string{{"a.ts"}}, nil, nil)

	data, ok := table.RenderData().([]map[string]string)
	require.True(t, ok)
	require.Len(t, data, 1)
	assert.Equal(t, "a.ts", data[0]["File"])

	wrapped := NewTable("", nil, nil, nil, map[string]int{"n": 1})
	assert.Equal(t, map[string]int{"n": 1}, wrapped.RenderData())
}

func TestSection_RenderText(t *testing.T) {
	section := &Section{
		Title:   "Summary",
		Content: "2 issues in 3 files",
		Sections: []Section{
			{Title: "Detail", Content: "dead-export: 2"},
		},
	}

	var buf bytes.Buffer
	require.NoError(t, section.RenderText(&buf, false))

	out := buf.String()
	assert.Contains(t, out, "Summary\n=======")
	assert.Contains(t, out, "Detail\n------")
	assert.Contains(t, out, "dead-export: 2")
}

func TestFormatter_JSONOutput(t *testing.T) {
	tmp := t.TempDir() + "/out.json"
	formatter, err := NewFormatter(FormatJSON, tmp, true)
	require.NoError(t, err)

	require.NoError(t, formatter.Output(map[string]int{"total": 2}))
	require.NoError(t, formatter.Close())

	// Color is dropped for file output.
	assert.False(t, formatter.Colored())

	raw, err := os.ReadFile(tmp)
	require.NoError(t, err)

	var decoded map[string]int
	require.NoError(t, json.Unmarshal(raw, &decoded))
	assert.Equal(t, 2, decoded["total"])
}

func TestDocument_RenderMarkdown(t *testing.T) {
	doc := &Document{
		Title: "Workspace Analysis",
		Sections: []Renderable{
			&Section{Title: "Summary", Content: "1 issue"},
			NewTable("Issues", []string{"File"}, [][]string{{"a.ts"}}, nil, nil),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, doc.RenderMarkdown(&buf))

	out := buf.String()
	assert.True(t, strings.HasPrefix(out, "# Workspace Analysis"))
	assert.Contains(t, out, "## Summary")
	assert.Contains(t, out, "## Issues")
}
