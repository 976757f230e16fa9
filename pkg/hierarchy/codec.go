package hierarchy

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Supported snapshot encodings.
const (
	FormatJSON = "json"
	FormatTOML = "toml"
)

// FormatFromPath infers the snapshot encoding from a file extension.
// Unknown extensions default to JSON.
func FormatFromPath(path string) string {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".toml":
		return FormatTOML
	default:
		return FormatJSON
	}
}

// ReadTreeFile reads a snapshot from a JSON or TOML file.
// The tree is decoded but not validated; pass it to [Build] or [Apply].
func ReadTreeFile(path string) (Tree, error) {
	f, err := os.Open(path)
	if err != nil {
		return Tree{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTree(f, FormatFromPath(path))
}

// ReadTree decodes a snapshot in the given format from r.
func ReadTree(r io.Reader, format string) (Tree, error) {
	var t Tree
	switch format {
	case FormatTOML:
		if _, err := toml.NewDecoder(r).Decode(&t); err != nil {
			return Tree{}, fmt.Errorf("decode toml: %w", err)
		}
	case FormatJSON, "":
		if err := json.NewDecoder(r).Decode(&t); err != nil {
			return Tree{}, fmt.Errorf("decode json: %w", err)
		}
	default:
		return Tree{}, fmt.Errorf("unsupported format %q", format)
	}
	return t, nil
}

// MarshalTree encodes t as indented JSON.
func MarshalTree(t Tree) ([]byte, error) {
	var buf bytes.Buffer
	if err := WriteTree(t, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// UnmarshalTree decodes JSON bytes into a Tree.
func UnmarshalTree(data []byte) (Tree, error) {
	return ReadTree(bytes.NewReader(data), FormatJSON)
}

// WriteTree writes t as indented JSON to w.
func WriteTree(t Tree, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}
