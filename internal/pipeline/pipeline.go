package pipeline

import (
	"crypto/subtle"
	"fmt"
	"io"
	"log/slog"
	"slices"

	"github.com/spacesedan/reviewlens/internal/analysis"
	"github.com/spacesedan/reviewlens/internal/ingest"
	"github.com/spacesedan/reviewlens/internal/models"
	"github.com/spacesedan/reviewlens/internal/report"
	"github.com/spacesedan/reviewlens/internal/store"
)

type Scorer interface {
	Score(text string) (models.Sentiment, error)
}

type Options struct {
	Username     string
	Password     string
	ReviewColumn string
	ReportTitle  string
	MaxWords     int
	Scorer       Scorer
}

// Pipeline holds the collaborators of the stage actions. Every action takes
// the current Session by value and returns the next one; on error the caller
// keeps its Session, which is therefore never partially updated.
type Pipeline struct {
	username     string
	password     string
	reviewColumn string
	reportTitle  string
	maxWords     int
	scorer       Scorer
}

func New(opts Options) *Pipeline {
	if opts.ReviewColumn == "" {
		opts.ReviewColumn = ingest.DEFAULT_REVIEW_COLUMN
	}
	return &Pipeline{
		username:     opts.Username,
		password:     opts.Password,
		reviewColumn: opts.ReviewColumn,
		reportTitle:  opts.ReportTitle,
		maxWords:     opts.MaxWords,
		scorer:       opts.Scorer,
	}
}

type UploadInput struct {
	// CSV is the uploaded file, nil when none was provided.
	CSV io.Reader
	// Manual holds reviews typed by hand, one per line.
	Manual string
}

type Visualization struct {
	Counts []analysis.LabelCount
	Words  []analysis.WordFrequency
	Total  int
}

type SampleRow struct {
	ReviewText     string
	SentimentScore float64
	SentimentLabel models.SentimentLabel
}

func (p *Pipeline) ReviewColumn() string {
	return p.reviewColumn
}

func (p *Pipeline) Login(s Session, username, password string) (Session, error) {
	if s.Authenticated {
		return s, wrongStage("login", s.Stage)
	}

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(p.username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(password), []byte(p.password)) == 1
	if !userOK || !passOK {
		slog.Warn("[Pipeline] Login rejected", slog.String("username", username))
		return s, &AuthError{Username: username, Err: ErrInvalidCredentials}
	}

	slog.Info("[Pipeline] Login successful", slog.String("username", username))
	return Session{Authenticated: true, Stage: StageUpload}, nil
}

// Upload ingests the file rows then the manual lines, cleans and language-tags
// them, and makes the result the current collection. A file without the review
// column rejects the whole upload.
func (p *Pipeline) Upload(s Session, in UploadInput) (Session, error) {
	if err := p.require(s, "upload", StageUpload); err != nil {
		return s, err
	}

	var raw []string
	if in.CSV != nil {
		rows, err := ingest.ReadCSV(in.CSV, p.reviewColumn)
		if err != nil {
			slog.Warn("[Pipeline] Upload rejected", slog.String("error", err.Error()))
			return s, validation(StageUpload, err)
		}
		raw = append(raw, rows...)
	}
	raw = append(raw, ingest.SplitManual(in.Manual)...)

	if len(raw) == 0 {
		return s, validation(StageUpload, ErrEmptyCollection)
	}

	reviews := store.New(ingest.BuildRecords(raw)...)
	s.Uploaded = reviews
	s.Reviews = reviews
	s.Language = ""

	slog.Info("[Pipeline] Reviews processed", slog.Int("count", reviews.Len()))
	return s, nil
}

// Languages returns the language options for ANALYZE.
func (p *Pipeline) Languages(s Session) ([]models.LanguageTag, error) {
	if err := p.require(s, "languages", StageAnalyze); err != nil {
		return nil, err
	}
	if s.Uploaded.IsEmpty() {
		return nil, validation(StageAnalyze, ErrEmptyCollection)
	}
	return s.Uploaded.Languages(), nil
}

// Analyze filters the uploaded reviews to tag and scores each of them. Any
// scoring failure fails the whole stage.
func (p *Pipeline) Analyze(s Session, tag models.LanguageTag) (Session, error) {
	languages, err := p.Languages(s)
	if err != nil {
		return s, err
	}
	if !slices.Contains(languages, tag) {
		return s, validation(StageAnalyze, fmt.Errorf("%w: %q", ErrUnknownLanguage, tag))
	}

	scored, err := s.Uploaded.FilterByLanguage(tag).AnnotateSentiment(p.scorer.Score)
	if err != nil {
		slog.Error("[Pipeline] Sentiment analysis failed",
			slog.String("language", string(tag)),
			slog.String("error", err.Error()))
		return s, fmt.Errorf("sentiment analysis failed: %w", err)
	}

	s.Reviews = scored
	s.Language = tag

	slog.Info("[Pipeline] Sentiment analysis complete",
		slog.String("language", string(tag)),
		slog.Int("count", scored.Len()))
	return s, nil
}

// Advance moves to the next stage once the current stage's output is in place.
func (p *Pipeline) Advance(s Session) (Session, error) {
	if !s.Authenticated {
		return s, ErrNotAuthenticated
	}

	switch s.Stage {
	case StageUpload:
		if s.Reviews.IsEmpty() {
			return s, validation(s.Stage, ErrEmptyCollection)
		}
	case StageAnalyze, StageVisualize, StageSample:
		if !s.Reviews.Scored() {
			return s, validation(s.Stage, ErrNotScored)
		}
	default:
		return s, wrongStage("advance", s.Stage)
	}

	next, _ := s.Stage.next()
	slog.Info("[Pipeline] Advancing",
		slog.String("from", string(s.Stage)),
		slog.String("to", string(next)))
	s.Stage = next
	return s, nil
}

func (p *Pipeline) Visualize(s Session) (Visualization, error) {
	if err := p.requireScored(s, "visualize", StageVisualize); err != nil {
		return Visualization{}, err
	}

	counts := analysis.CountLabels(s.Reviews.All())
	return Visualization{
		Counts: counts,
		Words:  analysis.WordFrequencies(s.Reviews.All(), p.maxWords),
		Total:  analysis.Total(counts),
	}, nil
}

func (p *Pipeline) Sample(s Session) ([]SampleRow, error) {
	if err := p.requireScored(s, "sample", StageSample); err != nil {
		return nil, err
	}

	rows := make([]SampleRow, 0, s.Reviews.Len())
	for _, r := range s.Reviews.All() {
		rows = append(rows, SampleRow{
			ReviewText:     r.RawText,
			SentimentScore: r.Sentiment.Score,
			SentimentLabel: r.Sentiment.Label,
		})
	}
	return rows, nil
}

// Export builds the report summary. It may be called any number of times.
func (p *Pipeline) Export(s Session) (report.Summary, error) {
	if err := p.requireScored(s, "export", StageExport); err != nil {
		return report.Summary{}, err
	}

	return report.Summary{
		Title:  p.reportTitle,
		Counts: analysis.CountLabels(s.Reviews.All()),
	}, nil
}

// Logout discards everything the session holds.
func (p *Pipeline) Logout(s Session) Session {
	if s.Authenticated {
		slog.Info("[Pipeline] Logged out", slog.String("stage", string(s.Stage)))
	}
	return NewSession()
}

func (p *Pipeline) require(s Session, action string, stage Stage) error {
	if !s.Authenticated {
		return ErrNotAuthenticated
	}
	if s.Stage != stage {
		return wrongStage(action, s.Stage)
	}
	return nil
}

func (p *Pipeline) requireScored(s Session, action string, stage Stage) error {
	if err := p.require(s, action, stage); err != nil {
		return err
	}
	if !s.Reviews.Scored() {
		return validation(stage, ErrNotScored)
	}
	return nil
}
