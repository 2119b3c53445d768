// Package store holds the ordered review collection a session works on.
//
// A Collection is immutable: every operation returns a new Collection and
// leaves the receiver untouched, so a failed or repeated stage never exposes
// half-updated records to an earlier stage.
package store

import (
	"encoding/json"
	"fmt"
	"iter"
	"slices"

	"github.com/spacesedan/reviewlens/internal/models"
)

type Collection struct {
	records []models.ReviewRecord
}

func New(records ...models.ReviewRecord) Collection {
	return Collection{records: slices.Clone(records)}
}

func (c Collection) Len() int {
	return len(c.records)
}

func (c Collection) IsEmpty() bool {
	return len(c.records) == 0
}

// Append returns a collection with records added after the existing ones.
func (c Collection) Append(records ...models.ReviewRecord) Collection {
	out := make([]models.ReviewRecord, 0, len(c.records)+len(records))
	out = append(out, c.records...)
	out = append(out, records...)
	return Collection{records: out}
}

// FilterByLanguage keeps the records tagged tag, in their original order.
func (c Collection) FilterByLanguage(tag models.LanguageTag) Collection {
	var out []models.ReviewRecord
	for _, r := range c.records {
		if r.Language == tag {
			out = append(out, r)
		}
	}
	return Collection{records: out}
}

// AnnotateSentiment scores the cleaned text of every record. It is all or
// nothing: the first failure is returned and no partial collection escapes.
func (c Collection) AnnotateSentiment(score func(text string) (models.Sentiment, error)) (Collection, error) {
	out := make([]models.ReviewRecord, len(c.records))
	for i, r := range c.records {
		s, err := score(r.CleanedText)
		if err != nil {
			return Collection{}, fmt.Errorf("record %d: %w", i, err)
		}
		out[i] = r.WithSentiment(s)
	}
	return Collection{records: out}, nil
}

// Languages returns the distinct language tags in first-seen order.
func (c Collection) Languages() []models.LanguageTag {
	var tags []models.LanguageTag
	for _, r := range c.records {
		if !slices.Contains(tags, r.Language) {
			tags = append(tags, r.Language)
		}
	}
	return tags
}

// Scored reports whether the collection is non-empty and every record has a sentiment.
func (c Collection) Scored() bool {
	if len(c.records) == 0 {
		return false
	}
	for _, r := range c.records {
		if !r.Scored() {
			return false
		}
	}
	return true
}

func (c Collection) All() iter.Seq2[int, models.ReviewRecord] {
	return func(yield func(int, models.ReviewRecord) bool) {
		for i, r := range c.records {
			if !yield(i, r) {
				return
			}
		}
	}
}

// Records returns a copy of the records.
func (c Collection) Records() []models.ReviewRecord {
	return slices.Clone(c.records)
}

func (c Collection) MarshalJSON() ([]byte, error) {
	if c.records == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(c.records)
}

func (c *Collection) UnmarshalJSON(data []byte) error {
	var records []models.ReviewRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return err
	}
	c.records = records
	return nil
}
