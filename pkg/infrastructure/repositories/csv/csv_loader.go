package csv

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// ErrNoHeader is returned for input without a header row
var ErrNoHeader = errors.New("CSV file appears to be empty or has no header row")

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Record is one data row keyed by its header cell
type Record map[string]any

// Loader handles loading project rows from CSV files
type Loader struct{}

// NewLoader creates a new CSV loader
func NewLoader() *Loader {
	return &Loader{}
}

// LoadProjects reads project rows from a CSV file on disk
func (l *Loader) LoadProjects(filename string) ([]Record, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open projects file %s: %w", filename, err)
	}
	defer file.Close()

	text, err := DecodeUpload(file)
	if err != nil {
		return nil, fmt.Errorf("failed to decode projects file %s: %w", filename, err)
	}
	return ReadRecords(strings.NewReader(text))
}

// DecodeUpload reads an uploaded file as text. A UTF-8 byte order mark is
// dropped; content that is not valid UTF-8 is decoded as Latin-1.
func DecodeUpload(r io.Reader) (string, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("failed to read upload: %w", err)
	}
	raw = bytes.TrimPrefix(raw, utf8BOM)
	if utf8.Valid(raw) {
		return string(raw), nil
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(raw)
	if err != nil {
		return "", fmt.Errorf("could not decode CSV file: %w", err)
	}
	return string(decoded), nil
}

// ReadRecords parses CSV text into header-keyed records. Short rows leave
// the missing columns out; extra cells are dropped.
func ReadRecords(r io.Reader) ([]Record, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrNoHeader
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}
	if !validateHeader(header) {
		return nil, ErrNoHeader
	}

	records := make([]Record, 0)
	for line := 2; ; line++ {
		fields, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("CSV row %d: %w", line, err)
		}
		rec := make(Record, len(header))
		for i, col := range header {
			if i < len(fields) {
				rec[col] = fields[i]
			}
		}
		records = append(records, rec)
	}
	return records, nil
}

// validateHeader requires at least one non-empty column name
func validateHeader(header []string) bool {
	for _, col := range header {
		if strings.TrimSpace(col) != "" {
			return true
		}
	}
	return false
}
