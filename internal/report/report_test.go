package report

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/github-leak-audit/internal/domain"
)

func sampleReport() *domain.Report {
	return Compile(Input{
		Org:     "acme-corp",
		Keyword: "Acme",
		Result: &domain.SearchResult{
			Hits:      []string{"alice/acme-scripts", "bob/notes"},
			Abandoned: []string{"acme user:carol"},
		},
		MemberCount: 3,
		QueryCount:  2,
	})
}

func TestCompile(t *testing.T) {
	rep := sampleReport()

	assert.NotEmpty(t, rep.ID)
	assert.Equal(t, "acme-corp", rep.Org)
	assert.Equal(t, 2, rep.Count)
	assert.Equal(t, 3, rep.MemberCount)
	assert.Equal(t, 2, rep.QueryCount)
	assert.Equal(t, []string{"acme user:carol"}, rep.AbandonedQueries)

	require.Len(t, rep.Leaks, 2)
	assert.Equal(t, domain.LeakEntry{
		Repo:        "alice/acme-scripts",
		URL:         "https://github.com/alice/acme-scripts",
		Remediation: "Investigate alice/acme-scripts and take it down if it contains Acme information.",
	}, rep.Leaks[0])
	assert.Equal(t, "bob/notes", rep.Leaks[1].Repo)
}

func TestCompile_NoHits(t *testing.T) {
	rep := Compile(Input{Org: "acme-corp", Keyword: "acme", Result: &domain.SearchResult{}})
	assert.Zero(t, rep.Count)
	assert.NotNil(t, rep.Leaks)
	assert.Empty(t, rep.AbandonedQueries)
}

func TestRenderHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReport(), FormatHTML))

	out := buf.String()
	assert.Contains(t, out, "<title>Leak Report: acme-corp</title>")
	assert.Contains(t, out, `<a href="https://github.com/alice/acme-scripts">alice/acme-scripts</a>`)
	assert.Contains(t, out, "<table>")
	assert.Contains(t, out, "Abandoned queries")
	assert.Contains(t, out, "<code>acme user:carol</code>")
}

func TestRenderJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReport(), FormatJSON))

	var decoded domain.Report
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, 2, decoded.Count)
	assert.Equal(t, "bob/notes", decoded.Leaks[1].Repo)
}

func TestRenderTable(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Render(&buf, sampleReport(), FormatTable))

	out := buf.String()
	assert.Contains(t, out, "alice/acme-scripts")
	assert.Contains(t, out, "https://github.com/bob/notes")
	assert.Contains(t, out, "Abandoned query: acme user:carol")
}

func TestRender_UnknownFormat(t *testing.T) {
	assert.Error(t, Render(&bytes.Buffer{}, sampleReport(), Format("pdf")))
}

func TestMarkdown_EscapesTableCells(t *testing.T) {
	rep := Compile(Input{Org: "acme", Keyword: "a|b", Result: &domain.SearchResult{Hits: []string{"x/y"}}})
	md := Markdown(rep)
	assert.Contains(t, md, `a\|b`)
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		ext  string
	}{
		{"html", FormatHTML, ".html"},
		{"JSON", FormatJSON, ".json"},
		{" table ", FormatTable, ".txt"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			f, err := ParseFormat(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, f)
			assert.Equal(t, tt.ext, f.Extension())
		})
	}

	_, err := ParseFormat("pdf")
	assert.Error(t, err)
}
