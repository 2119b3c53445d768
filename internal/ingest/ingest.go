package ingest

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spacesedan/reviewlens/internal/models"
	"github.com/spacesedan/reviewlens/internal/preprocessing"
)

const DEFAULT_REVIEW_COLUMN = "review_text"

var (
	ErrMissingColumn = errors.New("required column missing")
	ErrEmptyFile     = errors.New("file has no header row")
)

// ReadCSV returns the values of column from a CSV document with a header row,
// in file order. Rows shorter than the header yield an empty review.
func ReadCSV(r io.Reader, column string) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, ErrEmptyFile
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read csv header: %w", err)
	}

	idx := -1
	for i, name := range header {
		name = strings.TrimPrefix(name, "\uFEFF")
		if strings.TrimSpace(name) == column {
			idx = i
			break
		}
	}
	if idx < 0 {
		return nil, fmt.Errorf("%w: csv must contain %q", ErrMissingColumn, column)
	}

	var values []string
	for {
		row, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read csv row: %w", err)
		}
		if idx < len(row) {
			values = append(values, row[idx])
		} else {
			values = append(values, "")
		}
	}

	return values, nil
}

// SplitManual splits free text into one review per line, trimming each line
// and skipping blank ones.
func SplitManual(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// BuildRecords cleans and language-tags raw reviews, preserving order.
// Language is detected on the raw text.
func BuildRecords(raw []string) []models.ReviewRecord {
	records := make([]models.ReviewRecord, 0, len(raw))
	for _, text := range raw {
		records = append(records, models.ReviewRecord{
			RawText:     text,
			CleanedText: preprocessing.CleanText(text),
			Language:    preprocessing.DetectLanguage(text),
		})
	}
	return records
}
