package recordio

import (
	"bufio"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/tenderlink/tenderlink/internal/types"
)

// WriteFile writes records to path, replacing it. An empty format is
// detected from the file extension.
func WriteFile(path string, records []types.Record, format Format) error {
	format, err := resolve(path, format)
	if err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	if err := Write(f, records, format); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

// Write encodes records in the given format.
func Write(w io.Writer, records []types.Record, format Format) error {
	switch format {
	case FormatJSON:
		return WriteJSON(w, records)
	case FormatJSONL:
		return WriteJSONL(w, records)
	case FormatCSV:
		return WriteCSV(w, records)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, format)
	}
}

// WriteJSON writes an indented JSON array. A nil batch is written as [].
func WriteJSON(w io.Writer, records []types.Record) error {
	if records == nil {
		records = []types.Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return fmt.Errorf("failed to encode records: %w", err)
	}
	return nil
}

// WriteJSONL writes one compact JSON object per line.
func WriteJSONL(w io.Writer, records []types.Record) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	for i := range records {
		if err := enc.Encode(&records[i]); err != nil {
			return fmt.Errorf("failed to encode record %d: %w", i, err)
		}
	}
	return bw.Flush()
}

// WriteCSV writes records under CSVHeader. CPV codes are joined with ';'.
func WriteCSV(w io.Writer, records []types.Record) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(CSVHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for i, r := range records {
		value := ""
		if r.ValueAmount != nil {
			value = strconv.FormatFloat(*r.ValueAmount, 'f', -1, 64)
		}
		row := []string{
			r.ID, r.Source, r.Title, r.Summary, r.BuyerName, r.BuyerCountry,
			strings.Join(r.CPVCodes, ";"), value, r.Currency, r.URL,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}
