package fetcher

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// snapshot is the on-disk shape of the tweets file.
type snapshot struct {
	Results []json.RawMessage `json:"results"`
	Next    string            `json:"next,omitempty"`
}

// WriteSnapshot writes the result as pretty-printed JSON to path, replacing
// any existing file. The data goes to a temporary file in the same directory
// first and is renamed into place, so readers never see a partial file.
func WriteSnapshot(path string, result SearchResult) error {
	results := result.Raw
	if results == nil {
		results = []json.RawMessage{}
	}
	// Tweet text is kept as written: "&", "<" and ">" are not escaped.
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(snapshot{Results: results, Next: result.Next}); err != nil {
		return &IOError{Path: path, Err: fmt.Errorf("encode: %w", err)}
	}
	data := buf.Bytes()

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return &IOError{Path: path, Err: err}
	}

	tmp, err := os.CreateTemp(dir, ".tweets-*.json")
	if err != nil {
		return &IOError{Path: path, Err: err}
	}
	tmpName := tmp.Name()
	cleanup := func() { _ = os.Remove(tmpName) }

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		cleanup()
		return &IOError{Path: path, Err: err}
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return &IOError{Path: path, Err: err}
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		cleanup()
		return &IOError{Path: path, Err: err}
	}
	if err := os.Rename(tmpName, path); err != nil {
		cleanup()
		return &IOError{Path: path, Err: err}
	}
	return nil
}
