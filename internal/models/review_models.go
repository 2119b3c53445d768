package models

type LanguageTag string

const (
	LanguageEN    LanguageTag = "en"
	LanguageNonEN LanguageTag = "non-en"
)

func ParseLanguageTag(s string) (LanguageTag, bool) {
	switch LanguageTag(s) {
	case LanguageEN:
		return LanguageEN, true
	case LanguageNonEN:
		return LanguageNonEN, true
	default:
		return "", false
	}
}

type SentimentLabel string

const (
	LabelPositive SentimentLabel = "Positive"
	LabelNeutral  SentimentLabel = "Neutral"
	LabelNegative SentimentLabel = "Negative"
)

// SentimentLabels is the canonical display order of labels.
var SentimentLabels = []SentimentLabel{LabelPositive, LabelNeutral, LabelNegative}

// Sentiment keeps score and label together so a record can never carry one without the other.
type Sentiment struct {
	Score float64        `json:"sentiment_score"`
	Label SentimentLabel `json:"sentiment_label"`
}

type ReviewRecord struct {
	RawText     string      `json:"review_text"`
	CleanedText string      `json:"cleaned_text"`
	Language    LanguageTag `json:"language"`
	Sentiment   *Sentiment  `json:"sentiment,omitempty"`
}

func (r ReviewRecord) Scored() bool {
	return r.Sentiment != nil
}

// WithSentiment returns a copy of r annotated with s.
func (r ReviewRecord) WithSentiment(s Sentiment) ReviewRecord {
	r.Sentiment = &s
	return r
}
