package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kurihiro0119/github-leak-audit/internal/domain"
	"github.com/kurihiro0119/github-leak-audit/internal/report"
)

// fakeGitHub serves one member and one code search hit, counting every request
func fakeGitHub(t *testing.T) (*httptest.Server, *int32) {
	t.Helper()
	var requests int32
	mux := http.NewServeMux()
	mux.HandleFunc("/graphql", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"data":{"organization":{"login":"acme-corp","membersWithRole":{
			"nodes":[{"login":"alice"}],
			"pageInfo":{"hasNextPage":false,"endCursor":"Y3Vyc29yOjE="}}}}}`)
	})
	mux.HandleFunc("/search/code", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total_count":1,"items":[{"repository":{"full_name":"alice/acme-notes"}}]}`)
	})
	mux.HandleFunc("/search/repositories", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"total_count":0,"items":[]}`)
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&requests, 1)
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func setupRun(t *testing.T, apiURL string) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("PAT", "ghp_test")
	t.Setenv("ORG_NAME", "acme-corp")
	t.Setenv("ORG_NICKNAME", "acme")
	t.Setenv("GITHUB_API_URL", apiURL)
	t.Setenv("REPORT_PATH", filepath.Join(dir, "LeakReport.html"))

	// flag values outlive a single Execute
	cfgFile, format, output, workers = "", string(report.FormatHTML), "", 0
	return dir
}

func TestRun_UnknownFormatFailsBeforeAudit(t *testing.T) {
	srv, requests := fakeGitHub(t)
	dir := setupRun(t, srv.URL)

	previous := filepath.Join(dir, "LeakReport.html")
	require.NoError(t, os.WriteFile(previous, []byte("previous report"), 0o644))

	rootCmd.SetArgs([]string{"run", "--format", "pdf", "--output", previous})
	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, err.Error(), `unknown report format "pdf"`)

	assert.Zero(t, atomic.LoadInt32(requests))
	data, err := os.ReadFile(previous)
	require.NoError(t, err)
	assert.Equal(t, "previous report", string(data))
}

func TestRun_DefaultPathFollowsFormat(t *testing.T) {
	srv, requests := fakeGitHub(t)
	dir := setupRun(t, srv.URL)

	rootCmd.SetArgs([]string{"run", "--format", "json"})
	require.NoError(t, rootCmd.Execute())
	assert.Equal(t, int32(3), atomic.LoadInt32(requests))

	assert.NoFileExists(t, filepath.Join(dir, "LeakReport.html"))
	data, err := os.ReadFile(filepath.Join(dir, "LeakReport.json"))
	require.NoError(t, err)

	var rep domain.Report
	require.NoError(t, json.Unmarshal(data, &rep))
	assert.Equal(t, "acme-corp", rep.Org)
	require.Len(t, rep.Leaks, 1)
	assert.Equal(t, "alice/acme-notes", rep.Leaks[0].Repo)
}

func TestReportPath(t *testing.T) {
	tests := []struct {
		name       string
		flag       string
		configured string
		format     report.Format
		want       string
	}{
		{"flag wins", "out.txt", "LeakReport.html", report.FormatJSON, "out.txt"},
		{"stdout", "-", "LeakReport.html", report.FormatHTML, "-"},
		{"html default", "", "LeakReport.html", report.FormatHTML, "LeakReport.html"},
		{"json default", "", "LeakReport.html", report.FormatJSON, "LeakReport.json"},
		{"table default", "", "reports/acme.html", report.FormatTable, "reports/acme.txt"},
		{"no extension", "", "report", report.FormatJSON, "report.json"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, reportPath(tt.flag, tt.configured, tt.format))
		})
	}
}
