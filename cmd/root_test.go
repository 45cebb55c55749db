package cmd

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// newSite serves a two-page site. When broken is set, the home page also
// links to a missing page.
func newSite(t *testing.T, broken bool) *httptest.Server {
	t.Helper()
	home := `<html><body><a href="/about">About</a></body></html>`
	if broken {
		home = `<html><body><a href="/about">About</a><a href="/missing">Gone</a></body></html>`
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/":
			w.Header().Set("Content-Type", "text/html")
			_, _ = fmt.Fprint(w, home)
		case "/about":
			w.Header().Set("Content-Type", "text/html")
			_, _ = fmt.Fprint(w, `<html><body><a href="/">Home</a></body></html>`)
		default:
			http.NotFound(w, r)
		}
	})
	ts := httptest.NewServer(mux)
	t.Cleanup(ts.Close)
	return ts
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := NewRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--no-tui"}, args...))
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func TestRootCmd_CleanSite(t *testing.T) {
	ts := newSite(t, false)

	out, err := execute(t, ts.URL)
	require.NoError(t, err)
	assert.Contains(t, out, "No broken resources found.")
	assert.Contains(t, out, "Total URLs crawled: 2")
	assert.Equal(t, ExitOK, exitCode(err, &bytes.Buffer{}))
}

func TestRootCmd_BrokenSiteJSON(t *testing.T) {
	ts := newSite(t, true)

	out, err := execute(t, ts.URL, "--format", "json")
	require.ErrorIs(t, err, ErrBrokenFound)
	assert.Equal(t, ExitBroken, exitCode(err, &bytes.Buffer{}))

	var report struct {
		SeedURL         string `json:"seed_url"`
		BrokenResources []struct {
			URL        string `json:"url"`
			StatusCode int    `json:"status_code"`
			SourcePage string `json:"source_page"`
		} `json:"broken_resources"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, ts.URL+"/", report.SeedURL)
	require.Len(t, report.BrokenResources, 1)
	assert.Equal(t, ts.URL+"/missing", report.BrokenResources[0].URL)
	assert.Equal(t, http.StatusNotFound, report.BrokenResources[0].StatusCode)
	assert.Equal(t, ts.URL+"/", report.BrokenResources[0].SourcePage)
}

func TestRootCmd_MarkdownToFile(t *testing.T) {
	ts := newSite(t, true)
	path := filepath.Join(t.TempDir(), "report.md")

	out, err := execute(t, ts.URL, "--format", "markdown", "--output", path)
	require.ErrorIs(t, err, ErrBrokenFound)
	assert.Empty(t, out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "# Broken Resources Report"))
	assert.Contains(t, string(data), "- "+ts.URL+"/missing\n  Status: 404\n")
}

func TestRootCmd_FormatFromEnvironment(t *testing.T) {
	ts := newSite(t, true)
	t.Setenv("LINKROT_FORMAT", "csv")

	out, err := execute(t, ts.URL)
	require.ErrorIs(t, err, ErrBrokenFound)

	records, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, "url", records[0][0])
	assert.Equal(t, ts.URL+"/missing", records[1][0])
}

func TestRootCmd_FlagOverridesEnvironment(t *testing.T) {
	ts := newSite(t, true)
	t.Setenv("LINKROT_MAX_DEPTH", "5")

	// Depth 0 checks the seed's references without following them.
	out, err := execute(t, ts.URL, "--depth", "0")
	require.ErrorIs(t, err, ErrBrokenFound)
	assert.Contains(t, out, "Total URLs crawled: 1")
}

func TestRootCmd_ConfigFile(t *testing.T) {
	ts := newSite(t, false)
	path := filepath.Join(t.TempDir(), "linkrot.yaml")
	require.NoError(t, os.WriteFile(path, []byte("format: markdown\nconcurrency: 2\n"), 0o600))

	out, err := execute(t, "--config", path, ts.URL)
	require.NoError(t, err)
	assert.Equal(t, "No broken resources found.\n", out)
}

func TestRootCmd_MetricsServer(t *testing.T) {
	ts := newSite(t, false)

	_, err := execute(t, ts.URL, "--metrics-addr", "127.0.0.1:0")
	require.NoError(t, err)
}

func TestRootCmd_SetupErrors(t *testing.T) {
	tests := []struct {
		name string
		args []string
	}{
		{name: "missing url", args: nil},
		{name: "non-http url", args: []string{"ftp://example.com"}},
		{name: "unknown format", args: []string{"http://example.com", "--format", "xml"}},
		{name: "unknown parser", args: []string{"http://example.com", "--parser", "regex"}},
		{name: "bad log level", args: []string{"http://example.com", "--log-level", "loud"}},
		{name: "missing config file", args: []string{"http://example.com", "--config", "/nonexistent/linkrot.yaml"}},
		{name: "too many args", args: []string{"http://a.example", "http://b.example"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := execute(t, tt.args...)
			require.Error(t, err)
			assert.False(t, errors.Is(err, ErrBrokenFound))

			var stderr bytes.Buffer
			assert.Equal(t, ExitFatal, exitCode(err, &stderr))
			assert.Contains(t, stderr.String(), "Error: ")
		})
	}
}

func TestExitCode(t *testing.T) {
	var stderr bytes.Buffer
	assert.Equal(t, ExitOK, exitCode(nil, &stderr))
	assert.Equal(t, ExitBroken, exitCode(fmt.Errorf("wrapped: %w", ErrBrokenFound), &stderr))
	assert.Empty(t, stderr.String())
	assert.Equal(t, ExitFatal, exitCode(errors.New("boom"), &stderr))
	assert.Equal(t, "Error: boom\n", stderr.String())
}

func TestStopMetricsLogsShutdownFailure(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)

	stopMetrics(zap.New(core), func() error { return errors.New("listener stuck") })

	entries := logs.FilterMessage("metrics server shutdown failed").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "listener stuck", entries[0].ContextMap()["error"])

	stopMetrics(zap.New(core), func() error { return nil })
	assert.Equal(t, 1, logs.Len())
}
