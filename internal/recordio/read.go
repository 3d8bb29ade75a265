package recordio

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/tenderlink/tenderlink/internal/types"
)

// maxLineSize bounds a single JSONL record.
const maxLineSize = 4 * 1024 * 1024

// CSVHeader is the column order written by WriteCSV. ReadCSV matches
// columns by name, so input files may order them freely and omit any
// except title.
var CSVHeader = []string{
	"id", "source", "title", "summary", "buyer_name", "buyer_country",
	"cpv_codes", "value_amount", "currency", "url",
}

// ReadFile reads a batch from path. An empty format is detected from the
// file extension.
func ReadFile(path string, format Format) ([]types.Record, error) {
	format, err := resolve(path, format)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", path, err)
	}
	defer f.Close()

	records, err := Read(f, format)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return records, nil
}

// Read decodes a batch in the given format.
func Read(r io.Reader, format Format) ([]types.Record, error) {
	switch format {
	case FormatJSON:
		return ReadJSON(r)
	case FormatJSONL:
		return ReadJSONL(r)
	case FormatCSV:
		return ReadCSV(r)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// ReadJSON decodes a JSON array of records. Empty input is an empty batch.
func ReadJSON(r io.Reader) ([]types.Record, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return []types.Record{}, nil
	}
	var records []types.Record
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode JSON array: %w", err)
	}
	if records == nil {
		records = []types.Record{}
	}
	return records, nil
}

// ReadJSONL decodes one record per line. Blank lines are skipped.
func ReadJSONL(r io.Reader) ([]types.Record, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineSize)

	records := []types.Record{}
	line := 0
	for scanner.Scan() {
		line++
		text := bytes.TrimSpace(scanner.Bytes())
		if len(text) == 0 {
			continue
		}
		var rec types.Record
		if err := json.Unmarshal(text, &rec); err != nil {
			return nil, fmt.Errorf("line %d: failed to decode record: %w", line, err)
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to scan input: %w", err)
	}
	return records, nil
}

// ReadCSV decodes a CSV batch with a header row. CPV codes are separated
// by ';' or '|'; an empty value_amount means no value.
func ReadCSV(r io.Reader) ([]types.Record, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return []types.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	columns := make(map[string]int, len(header))
	for i, name := range header {
		name = strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\ufeff")))
		columns[name] = i
	}
	if _, ok := columns["title"]; !ok {
		return nil, fmt.Errorf("CSV header has no title column")
	}

	records := []types.Record{}
	for {
		row, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV row: %w", err)
		}
		line, _ := cr.FieldPos(0)

		get := func(name string) string {
			i, ok := columns[name]
			if !ok || i >= len(row) {
				return ""
			}
			return strings.TrimSpace(row[i])
		}

		rec := types.Record{
			ID:           get("id"),
			Source:       get("source"),
			Title:        get("title"),
			Summary:      get("summary"),
			BuyerName:    get("buyer_name"),
			BuyerCountry: get("buyer_country"),
			CPVCodes:     splitCodes(get("cpv_codes")),
			Currency:     get("currency"),
			URL:          get("url"),
		}
		if raw := get("value_amount"); raw != "" {
			v, err := strconv.ParseFloat(raw, 64)
			if err != nil {
				return nil, fmt.Errorf("line %d: invalid value_amount %q: %w", line, raw, err)
			}
			rec.ValueAmount = &v
		}
		records = append(records, rec)
	}
	return records, nil
}

func splitCodes(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == '|' })
	codes := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			codes = append(codes, p)
		}
	}
	if len(codes) == 0 {
		return nil
	}
	return codes
}
