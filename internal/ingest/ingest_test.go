package ingest

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/reviewlens/internal/models"
)

func TestReadCSV(t *testing.T) {
	data := "id,review_text,rating\n1,Great <b>taste</b>!,5\n2,\"Slow, but friendly\",3\n3\n"

	got, err := ReadCSV(strings.NewReader(data), DEFAULT_REVIEW_COLUMN)
	require.NoError(t, err)
	assert.Equal(t, []string{"Great <b>taste</b>!", "Slow, but friendly", ""}, got)
}

func TestReadCSVHeaderWithBOM(t *testing.T) {
	got, err := ReadCSV(strings.NewReader("\uFEFFreview_text\nnice\n"), DEFAULT_REVIEW_COLUMN)
	require.NoError(t, err)
	assert.Equal(t, []string{"nice"}, got)
}

func TestReadCSVMissingColumn(t *testing.T) {
	_, err := ReadCSV(strings.NewReader("text,rating\nnice,5\n"), DEFAULT_REVIEW_COLUMN)
	require.ErrorIs(t, err, ErrMissingColumn)
	assert.Contains(t, err.Error(), "review_text")
}

func TestReadCSVEmpty(t *testing.T) {
	_, err := ReadCSV(strings.NewReader(""), DEFAULT_REVIEW_COLUMN)
	assert.ErrorIs(t, err, ErrEmptyFile)
}

func TestReadCSVHeaderOnly(t *testing.T) {
	got, err := ReadCSV(strings.NewReader("review_text\n"), DEFAULT_REVIEW_COLUMN)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSplitManual(t *testing.T) {
	got := SplitManual("  first review \n\n   \nsecond\r\nthird")
	assert.Equal(t, []string{"first review", "second", "third"}, got)
	assert.Empty(t, SplitManual(" \n \n"))
}

func TestBuildRecords(t *testing.T) {
	got := BuildRecords([]string{"Great <b>taste</b>!", "Hola, cómo estás?"})
	require.Len(t, got, 2)

	assert.Equal(t, models.ReviewRecord{
		RawText:     "Great <b>taste</b>!",
		CleanedText: "Great taste!",
		Language:    models.LanguageEN,
	}, got[0])
	assert.Equal(t, models.LanguageNonEN, got[1].Language)
	assert.False(t, got[1].Scored())
}
