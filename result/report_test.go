package result

import (
	"bytes"
	"strings"
	"testing"
)

func TestWriteReport_NoBroken(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteReport(&buf, nil); err != nil {
		t.Fatalf("WriteReport returned error: %v", err)
	}
	if got := buf.String(); got != NoBrokenMessage+"\n" {
		t.Errorf("got %q, want %q", got, NoBrokenMessage+"\n")
	}
}

func TestWriteReport(t *testing.T) {
	broken := []Resource{
		{URL: "http://example.com/app.js", Kind: KindScript, StatusCode: 500, Error: "HTTP Error: 500", SourcePage: "http://example.com/"},
		{URL: "http://example.com/dead", Kind: KindLink, StatusCode: 404, Error: "HTTP Error: 404", SourcePage: "http://example.com/"},
		{URL: "http://down.example/", Kind: KindLink, Error: "connection refused", SourcePage: "http://example.com/about"},
	}

	var buf bytes.Buffer
	if err := WriteReport(&buf, broken); err != nil {
		t.Fatalf("WriteReport returned error: %v", err)
	}

	want := `# Broken Resources Report

## Link (2)
- http://example.com/dead
  Status: 404
  Error: HTTP Error: 404
  Found on: http://example.com/

- http://down.example/
  Connection Error
  Error: connection refused
  Found on: http://example.com/about

## Script (1)
- http://example.com/app.js
  Status: 500
  Error: HTTP Error: 500
  Found on: http://example.com/

`
	if got := buf.String(); got != want {
		t.Errorf("report mismatch\ngot:\n%s\nwant:\n%s", got, want)
	}
}

func TestWriteReport_OmitsEmptySource(t *testing.T) {
	var buf bytes.Buffer
	broken := []Resource{{URL: "http://example.com/x", Kind: KindImage, StatusCode: 410}}
	if err := WriteReport(&buf, broken); err != nil {
		t.Fatalf("WriteReport returned error: %v", err)
	}
	got := buf.String()
	if strings.Contains(got, "Found on:") || strings.Contains(got, "Error:") {
		t.Errorf("empty fields should be omitted, got %q", got)
	}
	if !strings.Contains(got, "## Image (1)") {
		t.Errorf("missing image heading in %q", got)
	}
}
