package pipeline

import (
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spacesedan/reviewlens/internal/analysis"
	"github.com/spacesedan/reviewlens/internal/ingest"
	"github.com/spacesedan/reviewlens/internal/models"
	"github.com/spacesedan/reviewlens/internal/sentiment"
)

type brokenPolarizer struct{}

func (brokenPolarizer) Polarity(string) (float64, error) {
	return 0, errors.New("lexicon offline")
}

func newTestPipeline(scorer Scorer) *Pipeline {
	if scorer == nil {
		scorer = sentiment.NewVaderScorer()
	}
	return New(Options{
		Username:    "admin",
		Password:    "1234",
		ReportTitle: "Zomato Sentiment Analysis Report",
		MaxWords:    50,
		Scorer:      scorer,
	})
}

func loggedIn(t *testing.T, p *Pipeline) Session {
	t.Helper()
	s, err := p.Login(NewSession(), "admin", "1234")
	require.NoError(t, err)
	return s
}

func uploaded(t *testing.T, p *Pipeline, in UploadInput) Session {
	t.Helper()
	s, err := p.Upload(loggedIn(t, p), in)
	require.NoError(t, err)
	return s
}

func TestNewSession(t *testing.T) {
	s := NewSession()
	assert.False(t, s.Authenticated)
	assert.Equal(t, StageLogin, s.Stage)
	assert.True(t, s.Reviews.IsEmpty())
}

func TestLogin(t *testing.T) {
	p := newTestPipeline(nil)

	t.Run("bad credentials stay at login", func(t *testing.T) {
		start := NewSession()
		s, err := p.Login(start, "admin", "wrong")

		var authErr *AuthError
		require.ErrorAs(t, err, &authErr)
		assert.ErrorIs(t, err, ErrInvalidCredentials)
		assert.Equal(t, start, s)
	})

	t.Run("success moves to upload", func(t *testing.T) {
		s, err := p.Login(NewSession(), "admin", "1234")
		require.NoError(t, err)
		assert.True(t, s.Authenticated)
		assert.Equal(t, StageUpload, s.Stage)
	})

	t.Run("already logged in", func(t *testing.T) {
		s := loggedIn(t, p)
		_, err := p.Login(s, "admin", "1234")
		assert.ErrorIs(t, err, ErrWrongStage)
	})
}

func TestActionsRequireAuthentication(t *testing.T) {
	p := newTestPipeline(nil)
	s := NewSession()

	_, err := p.Upload(s, UploadInput{Manual: "great"})
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = p.Advance(s)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
	_, err = p.Export(s)
	assert.ErrorIs(t, err, ErrNotAuthenticated)
}

func TestUploadCombinesFileThenManual(t *testing.T) {
	p := newTestPipeline(nil)
	s := uploaded(t, p, UploadInput{
		CSV:    strings.NewReader("review_text\nGreat <b>taste</b>!\n\"Hola, cómo estás?\"\n"),
		Manual: "\n  Too salty  \n\n",
	})

	assert.Equal(t, StageUpload, s.Stage)
	want := []models.ReviewRecord{
		{RawText: "Great <b>taste</b>!", CleanedText: "Great taste!", Language: models.LanguageEN},
		{RawText: "Hola, cómo estás?", CleanedText: "Hola, cómo estás?", Language: models.LanguageNonEN},
		{RawText: "Too salty", CleanedText: "Too salty", Language: models.LanguageEN},
	}
	if diff := cmp.Diff(want, s.Reviews.Records()); diff != "" {
		t.Errorf("uploaded reviews mismatch (-want +got):\n%s", diff)
	}
	assert.Equal(t, s.Uploaded.Records(), s.Reviews.Records())
}

func TestUploadMissingColumnLeavesStoreUnchanged(t *testing.T) {
	p := newTestPipeline(nil)
	before := uploaded(t, p, UploadInput{Manual: "first batch"})

	after, err := p.Upload(before, UploadInput{
		CSV:    strings.NewReader("text\nnope\n"),
		Manual: "would be dropped",
	})

	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, StageUpload, verr.Stage)
	assert.ErrorIs(t, err, ingest.ErrMissingColumn)
	assert.Equal(t, StageUpload, after.Stage)
	assert.Equal(t, before.Reviews.Records(), after.Reviews.Records())
}

func TestUploadNothingIsRejected(t *testing.T) {
	p := newTestPipeline(nil)
	s := loggedIn(t, p)

	_, err := p.Upload(s, UploadInput{Manual: "  \n "})
	assert.ErrorIs(t, err, ErrEmptyCollection)

	_, err = p.Advance(s)
	assert.ErrorIs(t, err, ErrEmptyCollection)
}

func TestUploadOverwritesPreviousIngestion(t *testing.T) {
	p := newTestPipeline(nil)
	s := uploaded(t, p, UploadInput{Manual: "one\ntwo"})

	s, err := p.Upload(s, UploadInput{Manual: "three"})
	require.NoError(t, err)
	require.Equal(t, 1, s.Reviews.Len())
	assert.Equal(t, "three", s.Reviews.Records()[0].RawText)
}

func TestAnalyzeEmptyCollectionFailsGracefully(t *testing.T) {
	p := newTestPipeline(nil)
	s := Session{Authenticated: true, Stage: StageAnalyze}

	_, err := p.Languages(s)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.ErrorIs(t, err, ErrEmptyCollection)

	next, err := p.Analyze(s, models.LanguageEN)
	assert.ErrorIs(t, err, ErrEmptyCollection)
	assert.Equal(t, StageAnalyze, next.Stage)

	_, err = p.Advance(s)
	assert.ErrorIs(t, err, ErrNotScored)
}

func TestAnalyzeUnknownLanguage(t *testing.T) {
	p := newTestPipeline(nil)
	s, err := p.Advance(uploaded(t, p, UploadInput{Manual: "nice place"}))
	require.NoError(t, err)

	langs, err := p.Languages(s)
	require.NoError(t, err)
	assert.Equal(t, []models.LanguageTag{models.LanguageEN}, langs)

	_, err = p.Analyze(s, models.LanguageNonEN)
	assert.ErrorIs(t, err, ErrUnknownLanguage)
}

func TestAnalyzeScoringFailureFailsStage(t *testing.T) {
	p := newTestPipeline(sentiment.NewScorer(brokenPolarizer{}))
	s, err := p.Advance(uploaded(t, p, UploadInput{Manual: "nice place\nawful place"}))
	require.NoError(t, err)

	after, err := p.Analyze(s, models.LanguageEN)
	var scoringErr *sentiment.ScoringError
	require.ErrorAs(t, err, &scoringErr)
	assert.Equal(t, "nice place", scoringErr.Text)

	assert.Equal(t, s.Reviews.Records(), after.Reviews.Records())
	assert.False(t, after.Reviews.Scored())
	_, err = p.Advance(after)
	assert.ErrorIs(t, err, ErrNotScored)
}

func TestAnalyzeCanBeRerunWithAnotherLanguage(t *testing.T) {
	p := newTestPipeline(nil)
	s, err := p.Advance(uploaded(t, p, UploadInput{Manual: "I love the food!\nHola, cómo estás?"}))
	require.NoError(t, err)

	s, err = p.Analyze(s, models.LanguageEN)
	require.NoError(t, err)
	assert.Equal(t, 1, s.Reviews.Len())

	s, err = p.Analyze(s, models.LanguageNonEN)
	require.NoError(t, err)
	require.Equal(t, 1, s.Reviews.Len())
	assert.Equal(t, "Hola, cómo estás?", s.Reviews.Records()[0].RawText)
	assert.Equal(t, models.LanguageNonEN, s.Language)
}

func TestStageActionsRejectOtherStages(t *testing.T) {
	p := newTestPipeline(nil)
	s := uploaded(t, p, UploadInput{Manual: "fine"})

	_, err := p.Visualize(s)
	assert.ErrorIs(t, err, ErrWrongStage)
	_, err = p.Sample(s)
	assert.ErrorIs(t, err, ErrWrongStage)
	_, err = p.Export(s)
	assert.ErrorIs(t, err, ErrWrongStage)
	_, err = p.Analyze(s, models.LanguageEN)
	assert.ErrorIs(t, err, ErrWrongStage)
}

func TestFullRun(t *testing.T) {
	p := newTestPipeline(nil)

	s := NewSession()
	s, err := p.Login(s, "admin", "1234")
	require.NoError(t, err)

	s, err = p.Upload(s, UploadInput{
		CSV:    strings.NewReader("review_text\nI love the food!\nThe food was terrible.\n"),
		Manual: "The food was okay.\nLa comida estaba riquísima",
	})
	require.NoError(t, err)
	require.Equal(t, 4, s.Reviews.Len())

	s, err = p.Advance(s)
	require.NoError(t, err)
	require.Equal(t, StageAnalyze, s.Stage)

	langs, err := p.Languages(s)
	require.NoError(t, err)
	assert.Equal(t, []models.LanguageTag{models.LanguageEN, models.LanguageNonEN}, langs)

	s, err = p.Analyze(s, models.LanguageEN)
	require.NoError(t, err)
	require.Equal(t, 3, s.Reviews.Len())

	s, err = p.Advance(s)
	require.NoError(t, err)
	require.Equal(t, StageVisualize, s.Stage)

	viz, err := p.Visualize(s)
	require.NoError(t, err)
	assert.Equal(t, 3, viz.Total)
	assert.Equal(t, 3, analysis.Total(viz.Counts))
	assert.NotEmpty(t, viz.Words)
	assert.Equal(t, "food", viz.Words[0].Word)

	s, err = p.Advance(s)
	require.NoError(t, err)
	require.Equal(t, StageSample, s.Stage)

	rows, err := p.Sample(s)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, "I love the food!", rows[0].ReviewText)
	assert.Equal(t, models.LabelPositive, rows[0].SentimentLabel)
	assert.Equal(t, models.LabelNegative, rows[1].SentimentLabel)
	assert.Equal(t, models.LabelNeutral, rows[2].SentimentLabel)

	s, err = p.Advance(s)
	require.NoError(t, err)
	require.Equal(t, StageExport, s.Stage)

	summary, err := p.Export(s)
	require.NoError(t, err)
	assert.Equal(t, 3, analysis.Total(summary.Counts))

	lines := summary.Lines()
	assert.Equal(t, "Zomato Sentiment Analysis Report", lines[0])
	assert.Len(t, lines, 1+len(summary.Counts))
	assert.ElementsMatch(t, []string{"Positive: 1", "Negative: 1", "Neutral: 1"}, lines[1:])

	pdf, err := summary.PDF()
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(pdf), "%PDF-"))

	// Export is on demand and repeatable.
	again, err := p.Export(s)
	require.NoError(t, err)
	assert.Equal(t, summary, again)

	_, err = p.Advance(s)
	assert.ErrorIs(t, err, ErrWrongStage)

	s = p.Logout(s)
	assert.Equal(t, NewSession(), s)
}

func TestLogoutFromAnyStage(t *testing.T) {
	p := newTestPipeline(nil)
	s := uploaded(t, p, UploadInput{Manual: "great"})

	out := p.Logout(s)
	assert.False(t, out.Authenticated)
	assert.Equal(t, StageLogin, out.Stage)
	assert.True(t, out.Uploaded.IsEmpty())
	assert.True(t, out.Reviews.IsEmpty())
}
