// Package recordio reads and writes batches of procurement records.
//
// Supported encodings are a JSON array, JSON Lines (one object per line),
// and CSV with a header row. The deduplication engine never does I/O; this
// package is the adapter the command-line tools use around it.
package recordio

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

// Format names an on-disk encoding of a record batch.
type Format string

const (
	FormatJSON  Format = "json"
	FormatJSONL Format = "jsonl"
	FormatCSV   Format = "csv"
)

// ErrUnknownFormat is returned for format names and extensions that are
// not supported.
var ErrUnknownFormat = errors.New("unknown record format")

// ParseFormat maps a user supplied name to a Format. "ndjson" is accepted
// as an alias for JSON Lines.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "json":
		return FormatJSON, nil
	case "jsonl", "ndjson":
		return FormatJSONL, nil
	case "csv":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownFormat, name)
	}
}

// DetectFormat picks a Format from the file extension of path.
func DetectFormat(path string) (Format, error) {
	ext := strings.TrimPrefix(filepath.Ext(path), ".")
	if ext == "" {
		return "", fmt.Errorf("%w: %s has no extension", ErrUnknownFormat, path)
	}
	return ParseFormat(ext)
}

// resolve returns the explicit format if set, otherwise the one implied by
// path.
func resolve(path string, format Format) (Format, error) {
	if format != "" {
		return ParseFormat(string(format))
	}
	return DetectFormat(path)
}
