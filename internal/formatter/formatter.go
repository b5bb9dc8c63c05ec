// package formatter reads and writes the persisted track formats: the CSV record set, its JSON backup, and unmatched reports
package formatter

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/desertthunder/tracklift/internal/models"
	"github.com/desertthunder/tracklift/internal/shared"
)

const (
	titleColumn  = "Title"
	artistColumn = "Artist(s)"
	urlColumn    = "URL"
)

var (
	trackHeaders     = []string{titleColumn, artistColumn, urlColumn}
	unmatchedHeaders = []string{titleColumn, artistColumn}
)

// ExportToCSV converts records to CSV with columns Title, Artist(s), URL in record order.
func ExportToCSV(records []models.TrackRecord) ([]byte, error) {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Title, r.Artists, r.SourceURL})
	}
	return encodeCSV(trackHeaders, rows)
}

// ExportUnmatchedToCSV converts records to CSV with columns Title, Artist(s).
func ExportUnmatchedToCSV(records []models.TrackRecord) ([]byte, error) {
	rows := make([][]string, 0, len(records))
	for _, r := range records {
		rows = append(rows, []string{r.Title, r.Artists})
	}
	return encodeCSV(unmatchedHeaders, rows)
}

func encodeCSV(headers []string, rows [][]string) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(headers); err != nil {
		return nil, fmt.Errorf("failed to write CSV headers: %w", err)
	}
	for _, row := range rows {
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV record: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToJSON converts records to an indented JSON array of {"Title","Artist(s)","URL"} objects.
func ExportToJSON(records []models.TrackRecord) ([]byte, error) {
	if records == nil {
		records = []models.TrackRecord{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(records); err != nil {
		return nil, fmt.Errorf("failed to encode JSON: %w", err)
	}
	return buf.Bytes(), nil
}

// ExportToText renders records as a numbered "Artist - Title" list.
func ExportToText(records []models.TrackRecord) []byte {
	var buf bytes.Buffer
	for i, r := range records {
		fmt.Fprintf(&buf, "%d. %s - %s\n", i+1, r.Artists, r.Title)
	}
	return buf.Bytes()
}

// ParseCSV reads a record set written by [ExportToCSV].
//
// Columns are located by header name, so extra or reordered columns are
// tolerated; the URL column is optional. Ordinals follow row order.
func ParseCSV(r io.Reader) ([]models.TrackRecord, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	headers, err := reader.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: CSV is empty", shared.ErrInvalidInput)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV headers: %w", err)
	}

	index := make(map[string]int, len(headers))
	for i, h := range headers {
		index[strings.TrimSpace(strings.TrimPrefix(h, "\uFEFF"))] = i
	}
	for _, required := range []string{titleColumn, artistColumn} {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf("%w: CSV is missing the %q column", shared.ErrInvalidInput, required)
		}
	}

	field := func(row []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	var records []models.TrackRecord
	for {
		row, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}
		records = append(records, models.TrackRecord{
			Title:     field(row, titleColumn),
			Artists:   field(row, artistColumn),
			SourceURL: field(row, urlColumn),
			Ordinal:   len(records) + 1,
		})
	}
	return records, nil
}

// WriteTracksCSV writes records to path, creating parent directories.
func WriteTracksCSV(path string, records []models.TrackRecord) error {
	data, err := ExportToCSV(records)
	if err != nil {
		return fmt.Errorf("failed to generate CSV: %w", err)
	}
	return writeFile(path, data)
}

// ReadTracksCSV reads the record set at path.
func ReadTracksCSV(path string) ([]models.TrackRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open CSV file: %w", err)
	}
	defer f.Close()
	return ParseCSV(f)
}

// WriteTracksJSON writes the JSON backup of records to path.
func WriteTracksJSON(path string, records []models.TrackRecord) error {
	data, err := ExportToJSON(records)
	if err != nil {
		return err
	}
	return writeFile(path, data)
}

// filenameReplacer turns spaces and path separators into underscores.
var filenameReplacer = strings.NewReplacer(" ", "_", "/", "_", `\`, "_")

// UnmatchedFilename derives the unmatched report name from a destination playlist name.
//
// The result is always a single path element.
func UnmatchedFilename(destination string) string {
	return filenameReplacer.Replace(destination) + "_unmatched.csv"
}

// WriteUnmatchedCSV writes records into dir under [UnmatchedFilename] and returns the path.
//
// An existing report for the same destination is overwritten.
func WriteUnmatchedCSV(dir, destination string, records []models.TrackRecord) (string, error) {
	if dir == "" {
		dir = "."
	}
	path := filepath.Join(dir, UnmatchedFilename(destination))

	data, err := ExportUnmatchedToCSV(records)
	if err != nil {
		return "", fmt.Errorf("failed to generate unmatched CSV: %w", err)
	}
	if err := writeFile(path, data); err != nil {
		return "", err
	}
	return path, nil
}

func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return nil
}
