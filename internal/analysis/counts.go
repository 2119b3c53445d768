package analysis

import (
	"iter"
	"slices"

	"github.com/spacesedan/reviewlens/internal/models"
)

var labelColors = map[models.SentimentLabel]string{
	models.LabelPositive: "#4CAF50",
	models.LabelNeutral:  "#FFC107",
	models.LabelNegative: "#F44336",
}

type LabelCount struct {
	Label models.SentimentLabel `json:"sentiment"`
	Count int                   `json:"count"`
}

func LabelColor(label models.SentimentLabel) string {
	if c, ok := labelColors[label]; ok {
		return c
	}
	return "#9E9E9E"
}

// CountLabels counts scored records per label, most frequent first. Ties keep
// the Positive, Neutral, Negative order. Labels with no records are omitted.
func CountLabels(records iter.Seq2[int, models.ReviewRecord]) []LabelCount {
	totals := make(map[models.SentimentLabel]int)
	for _, r := range records {
		if r.Sentiment == nil {
			continue
		}
		totals[r.Sentiment.Label]++
	}

	counts := make([]LabelCount, 0, len(totals))
	for label, n := range totals {
		counts = append(counts, LabelCount{Label: label, Count: n})
	}

	slices.SortFunc(counts, func(a, b LabelCount) int {
		if a.Count != b.Count {
			return b.Count - a.Count
		}
		return labelRank(a.Label) - labelRank(b.Label)
	})
	return counts
}

func Total(counts []LabelCount) int {
	total := 0
	for _, c := range counts {
		total += c.Count
	}
	return total
}

func labelRank(label models.SentimentLabel) int {
	if i := slices.Index(models.SentimentLabels, label); i >= 0 {
		return i
	}
	return len(models.SentimentLabels)
}
