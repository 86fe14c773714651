package markdown_test

import (
	"os"
	"path/filepath"
	"testing"

	"usagetrail/internal/platform/markdown"
)

type header struct {
	Date  string `yaml:"date"`
	Count int    `yaml:"count"`
}

func TestWriteFileAndParse(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "2026", "03", "10.md")
	if err := markdown.WriteFile(path, header{Date: "2026-03-10", Count: 4}, "# Body\n"); err != nil {
		t.Fatalf("write: %v", err)
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	got := header{}
	body, err := markdown.Parse(raw, &got)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got.Date != "2026-03-10" || got.Count != 4 || body != "# Body\n" {
		t.Fatalf("unexpected note: %+v %q", got, body)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
}

func TestParseWithoutHeader(t *testing.T) {
	t.Parallel()
	got := header{}
	body, err := markdown.Parse([]byte("plain text\n"), &got)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if body != "plain text\n" || got != (header{}) {
		t.Fatalf("unexpected result: %+v %q", got, body)
	}
	if _, err := markdown.Parse([]byte("---\ndate: x\n"), &got); err == nil {
		t.Fatalf("expected error for unclosed header")
	}
}
