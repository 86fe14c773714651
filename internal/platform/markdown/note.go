// Package markdown reads and writes notes that carry a YAML header block.
package markdown

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

var fence = []byte("---\n")

// Render encodes meta as the header block followed by body.
func Render(meta any, body string) ([]byte, error) {
	raw, err := yaml.Marshal(meta)
	if err != nil {
		return nil, fmt.Errorf("marshal note header: %w", err)
	}
	buf := bytes.Buffer{}
	buf.Write(fence)
	buf.Write(raw)
	buf.Write(fence)
	buf.WriteByte('\n')
	buf.WriteString(body)
	return buf.Bytes(), nil
}

// Parse decodes the header block into meta and returns the body. Content
// without a header is returned unchanged.
func Parse(content []byte, meta any) (string, error) {
	if !bytes.HasPrefix(content, fence) {
		return string(content), nil
	}
	rest := content[len(fence):]
	idx := bytes.Index(rest, []byte("\n---\n"))
	if idx < 0 {
		return "", fmt.Errorf("note header is not closed")
	}
	if err := yaml.Unmarshal(rest[:idx+1], meta); err != nil {
		return "", fmt.Errorf("unmarshal note header: %w", err)
	}
	return string(bytes.TrimPrefix(rest[idx+len("\n---\n"):], []byte("\n"))), nil
}

// WriteFile renders the note and replaces path through a temp file in the
// same directory, so readers never see a partial note.
func WriteFile(path string, meta any, body string) error {
	rendered, err := Render(meta, body)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create note dir: %w", err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, rendered, 0o644); err != nil {
		return fmt.Errorf("write note: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace note: %w", err)
	}
	return nil
}
