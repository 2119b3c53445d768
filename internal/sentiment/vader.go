package sentiment

import (
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strings"

	"github.com/jonreiter/govader"

	"github.com/spacesedan/reviewlens/internal/models"
)

const (
	POSITIVE_THRESHOLD = 0.2
	NEGATIVE_THRESHOLD = -0.2
)

var ErrPolarityOutOfRange = errors.New("polarity outside [-1, 1]")

// Polarizer is the lexicon service a Scorer delegates to.
type Polarizer interface {
	Polarity(text string) (float64, error)
}

// ScoringError reports a failed polarity computation for a single text.
type ScoringError struct {
	Text string
	Err  error
}

func (e *ScoringError) Error() string {
	return fmt.Sprintf("scoring %q: %v", preview(e.Text), e.Err)
}

func (e *ScoringError) Unwrap() error {
	return e.Err
}

// LUKEWARM_WORDS carry no polarity in review text: "the food was okay" is a
// neutral verdict, not faint praise.
var LUKEWARM_WORDS = []string{"okay", "ok", "fine", "alright"}

// VaderPolarizer scores text with the VADER lexicon.
type VaderPolarizer struct {
	analyzer *govader.SentimentIntensityAnalyzer
}

func NewVaderPolarizer() *VaderPolarizer {
	analyzer := govader.NewSentimentIntensityAnalyzer()
	for _, word := range LUKEWARM_WORDS {
		delete(analyzer.Lexicon, word)
	}
	return &VaderPolarizer{analyzer: analyzer}
}

// Polarity returns the VADER compound score.
func (v *VaderPolarizer) Polarity(text string) (polarity float64, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("vader analyzer panic: %v", r)
		}
	}()

	return v.analyzer.PolarityScores(text).Compound, nil
}

type Scorer struct {
	polarizer Polarizer
}

func NewScorer(p Polarizer) *Scorer {
	return &Scorer{polarizer: p}
}

func NewVaderScorer() *Scorer {
	return NewScorer(NewVaderPolarizer())
}

// Score computes the rounded polarity of text and its label. Blank text is
// neutral without consulting the lexicon.
func (s *Scorer) Score(text string) (models.Sentiment, error) {
	if strings.TrimSpace(text) == "" {
		return models.Sentiment{Score: 0, Label: models.LabelNeutral}, nil
	}

	raw, err := s.polarizer.Polarity(text)
	if err != nil {
		return models.Sentiment{}, &ScoringError{Text: text, Err: err}
	}
	if math.IsNaN(raw) || raw < -1 || raw > 1 {
		return models.Sentiment{}, &ScoringError{
			Text: text,
			Err:  fmt.Errorf("%w: %v", ErrPolarityOutOfRange, raw),
		}
	}

	polarity := Round(raw)
	label := Label(polarity)

	slog.Debug("[Sentiment] Scored text",
		slog.String("text", preview(text)),
		slog.Float64("polarity", polarity),
		slog.String("label", string(label)))

	return models.Sentiment{Score: polarity, Label: label}, nil
}

// Label maps a polarity onto a label. Both thresholds are exclusive: ±0.2 is neutral.
func Label(polarity float64) models.SentimentLabel {
	switch {
	case polarity > POSITIVE_THRESHOLD:
		return models.LabelPositive
	case polarity < NEGATIVE_THRESHOLD:
		return models.LabelNegative
	default:
		return models.LabelNeutral
	}
}

// Round rounds to two decimal places and folds negative zero into zero.
func Round(polarity float64) float64 {
	r := math.Round(polarity*100) / 100
	if r == 0 {
		return 0
	}
	return r
}

func preview(text string) string {
	const previewRunes = 40
	r := []rune(text)
	if len(r) > previewRunes {
		return string(r[:previewRunes]) + "..."
	}
	return text
}
