package web

import (
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/spacesedan/reviewlens/internal/models"
	"github.com/spacesedan/reviewlens/internal/pipeline"
	"github.com/spacesedan/reviewlens/internal/report"
	"github.com/spacesedan/reviewlens/internal/sentiment"
	"github.com/spacesedan/reviewlens/internal/session"
)

const (
	SESSION_COOKIE  = "reviewlens_session"
	MAX_UPLOAD_SIZE = 10 << 20
)

//go:embed templates/*.html
var templateFS embed.FS

// ServerOptions tunes the HTTP surface. SecureCookie marks the session cookie
// Secure and should be set when served over TLS.
type ServerOptions struct {
	SecureCookie bool
}

type Server struct {
	pipeline *pipeline.Pipeline
	sessions session.Store[pipeline.Session]
	pages    map[pipeline.Stage]*template.Template
	opts     ServerOptions
}

func NewServer(p *pipeline.Pipeline, sessions session.Store[pipeline.Session], opts ServerOptions) (*Server, error) {
	pages := make(map[pipeline.Stage]*template.Template, len(pipeline.Stages))
	for _, stage := range pipeline.Stages {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+string(stage)+".html")
		if err != nil {
			return nil, fmt.Errorf("[HTTP] failed to parse %s template: %w", stage, err)
		}
		pages[stage] = tmpl
	}

	return &Server{pipeline: p, sessions: sessions, pages: pages, opts: opts}, nil
}

func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		io.WriteString(w, "ok")
	})
	mux.HandleFunc("GET /{$}", s.handleRoot)
	mux.HandleFunc("GET /login", s.page(pipeline.StageLogin, s.loginView))
	mux.HandleFunc("POST /login", s.handleLogin)
	mux.HandleFunc("GET /upload", s.page(pipeline.StageUpload, s.uploadView))
	mux.HandleFunc("POST /upload", s.handleUpload)
	mux.HandleFunc("GET /analyze", s.page(pipeline.StageAnalyze, s.analyzeView))
	mux.HandleFunc("POST /analyze", s.handleAnalyze)
	mux.HandleFunc("GET /visualize", s.page(pipeline.StageVisualize, s.visualizeView))
	mux.HandleFunc("GET /sample", s.page(pipeline.StageSample, s.sampleView))
	mux.HandleFunc("GET /export", s.page(pipeline.StageExport, s.exportView))
	mux.HandleFunc("GET /export/report.pdf", s.handleReport(report.PDF_FILE_NAME))
	mux.HandleFunc("GET /export/report.html", s.handleReport(report.HTML_FILE_NAME))
	mux.HandleFunc("POST /next", s.handleNext)
	mux.HandleFunc("POST /logout", s.handleLogout)

	return logRequests(mux)
}

// viewFunc fills stage specific page data. A returned error is shown in place.
type viewFunc func(sess pipeline.Session, data *pageData) error

func stagePath(stage pipeline.Stage) string {
	return "/" + string(stage)
}

// load returns the caller's session, starting a new one when the cookie is
// missing or the session expired.
func (s *Server) load(w http.ResponseWriter, r *http.Request) (string, pipeline.Session, error) {
	if c, err := r.Cookie(SESSION_COOKIE); err == nil {
		sess, err := s.sessions.Get(r.Context(), c.Value)
		if err == nil {
			return c.Value, sess, nil
		}
		if !errors.Is(err, session.ErrSessionNotFound) {
			return "", pipeline.Session{}, err
		}
	}

	sess := pipeline.NewSession()
	id, err := s.sessions.Create(r.Context(), sess)
	if err != nil {
		return "", pipeline.Session{}, err
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SESSION_COOKIE,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   s.opts.SecureCookie,
		SameSite: http.SameSiteLaxMode,
	})
	return id, sess, nil
}

func (s *Server) save(w http.ResponseWriter, r *http.Request, id string, sess pipeline.Session) bool {
	if err := s.sessions.Save(r.Context(), id, sess); err != nil {
		slog.Error("[HTTP] Failed to save session", slog.String("error", err.Error()))
		http.Error(w, "session unavailable", http.StatusInternalServerError)
		return false
	}
	return true
}

func (s *Server) handleRoot(w http.ResponseWriter, r *http.Request) {
	_, sess, err := s.load(w, r)
	if err != nil {
		sessionError(w, err)
		return
	}
	http.Redirect(w, r, stagePath(sess.Stage), http.StatusSeeOther)
}

// page serves the GET view of a stage. Sessions in another stage are sent to
// their own stage's page.
func (s *Server) page(stage pipeline.Stage, view viewFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, sess, err := s.load(w, r)
		if err != nil {
			sessionError(w, err)
			return
		}
		if sess.Stage != stage {
			http.Redirect(w, r, stagePath(sess.Stage), http.StatusSeeOther)
			return
		}
		s.render(w, sess, http.StatusOK, nil, view)
	}
}

func (s *Server) render(w http.ResponseWriter, sess pipeline.Session, status int, actionErr error, view viewFunc) {
	data := pageData{
		Title:         pageTitles[sess.Stage],
		Authenticated: sess.Authenticated,
		Progress:      progress(sess.Stage),
	}
	if err := view(sess, &data); err != nil && actionErr == nil {
		actionErr = err
		status = statusFor(err)
	}
	if actionErr != nil {
		data.Error = actionErr.Error()
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := s.pages[sess.Stage].ExecuteTemplate(w, "layout", data); err != nil {
		slog.Error("[HTTP] Failed to render page",
			slog.String("stage", string(sess.Stage)),
			slog.String("error", err.Error()))
	}
}

func (s *Server) loginView(pipeline.Session, *pageData) error {
	return nil
}

func (s *Server) uploadView(sess pipeline.Session, data *pageData) error {
	data.ReviewColumn = s.pipeline.ReviewColumn()
	data.ReviewCount = sess.Reviews.Len()
	if data.ReviewCount > 0 {
		data.Notice = "Reviews processed successfully!"
	}
	return nil
}

func (s *Server) analyzeView(sess pipeline.Session, data *pageData) error {
	data.Language = sess.Language
	data.Analyzed = sess.Language != "" && sess.Reviews.Scored()
	data.ReviewCount = sess.Reviews.Len()
	if data.Analyzed {
		data.Notice = "Sentiment analysis complete!"
	}

	languages, err := s.pipeline.Languages(sess)
	if err != nil {
		return err
	}
	data.Languages = languages
	return nil
}

func (s *Server) visualizeView(sess pipeline.Session, data *pageData) error {
	viz, err := s.pipeline.Visualize(sess)
	if err != nil {
		return err
	}
	data.Chart = barChart(viz.Counts)
	data.Cloud = wordCloud(viz.Words)
	data.Total = viz.Total
	return nil
}

func (s *Server) sampleView(sess pipeline.Session, data *pageData) error {
	rows, err := s.pipeline.Sample(sess)
	if err != nil {
		return err
	}
	data.Rows = rows
	return nil
}

func (s *Server) exportView(sess pipeline.Session, data *pageData) error {
	summary, err := s.pipeline.Export(sess)
	if err != nil {
		return err
	}
	data.Counts = summary.Counts
	return nil
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	id, sess, err := s.load(w, r)
	if err != nil {
		sessionError(w, err)
		return
	}

	next, err := s.pipeline.Login(sess, r.PostFormValue("username"), r.PostFormValue("password"))
	s.finish(w, r, id, sess, next, err)
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	id, sess, err := s.load(w, r)
	if err != nil {
		sessionError(w, err)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, MAX_UPLOAD_SIZE)
	if err := r.ParseMultipartForm(MAX_UPLOAD_SIZE); err != nil && !errors.Is(err, http.ErrNotMultipart) {
		s.render(w, sess, http.StatusBadRequest, fmt.Errorf("could not read upload: %w", err), s.viewFor(sess.Stage))
		return
	}

	in := pipeline.UploadInput{Manual: r.FormValue("reviews")}
	file, _, err := r.FormFile("file")
	switch {
	case err == nil:
		defer file.Close()
		in.CSV = file
	case !errors.Is(err, http.ErrMissingFile) && !errors.Is(err, http.ErrNotMultipart):
		s.render(w, sess, http.StatusBadRequest, fmt.Errorf("could not read upload: %w", err), s.viewFor(sess.Stage))
		return
	}

	next, err := s.pipeline.Upload(sess, in)
	s.finish(w, r, id, sess, next, err)
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	id, sess, err := s.load(w, r)
	if err != nil {
		sessionError(w, err)
		return
	}

	tag, ok := models.ParseLanguageTag(r.PostFormValue("language"))
	if !ok {
		err := &pipeline.ValidationError{Stage: pipeline.StageAnalyze, Err: pipeline.ErrUnknownLanguage}
		s.render(w, sess, statusFor(err), err, s.viewFor(sess.Stage))
		return
	}

	next, err := s.pipeline.Analyze(sess, tag)
	s.finish(w, r, id, sess, next, err)
}

// handleNext advances the session. The posted stage must match the session's
// stage so a repeated submit cannot skip a page.
func (s *Server) handleNext(w http.ResponseWriter, r *http.Request) {
	id, sess, err := s.load(w, r)
	if err != nil {
		sessionError(w, err)
		return
	}
	if pipeline.Stage(r.PostFormValue("stage")) != sess.Stage {
		http.Redirect(w, r, stagePath(sess.Stage), http.StatusSeeOther)
		return
	}

	next, err := s.pipeline.Advance(sess)
	s.finish(w, r, id, sess, next, err)
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	id, sess, err := s.load(w, r)
	if err != nil {
		sessionError(w, err)
		return
	}
	if !s.save(w, r, id, s.pipeline.Logout(sess)) {
		return
	}
	http.Redirect(w, r, stagePath(pipeline.StageLogin), http.StatusSeeOther)
}

func (s *Server) handleReport(fileName string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_, sess, err := s.load(w, r)
		if err != nil {
			sessionError(w, err)
			return
		}

		summary, err := s.pipeline.Export(sess)
		if err != nil {
			http.Error(w, err.Error(), statusFor(err))
			return
		}

		var body []byte
		contentType := "text/html; charset=utf-8"
		if fileName == report.PDF_FILE_NAME {
			contentType = "application/pdf"
			body, err = summary.PDF()
			if err != nil {
				slog.Error("[HTTP] Failed to render report", slog.String("error", err.Error()))
				http.Error(w, "failed to render report", http.StatusInternalServerError)
				return
			}
		} else {
			body = summary.HTML()
		}

		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
		w.Write(body)
	}
}

// finish persists next and redirects to its stage page, or re-renders the
// unchanged session with the error in place.
func (s *Server) finish(w http.ResponseWriter, r *http.Request, id string, prev, next pipeline.Session, err error) {
	if err != nil {
		s.render(w, prev, statusFor(err), err, s.viewFor(prev.Stage))
		return
	}
	if !s.save(w, r, id, next) {
		return
	}
	http.Redirect(w, r, stagePath(next.Stage), http.StatusSeeOther)
}

func (s *Server) viewFor(stage pipeline.Stage) viewFunc {
	switch stage {
	case pipeline.StageUpload:
		return s.uploadView
	case pipeline.StageAnalyze:
		return s.analyzeView
	case pipeline.StageVisualize:
		return s.visualizeView
	case pipeline.StageSample:
		return s.sampleView
	case pipeline.StageExport:
		return s.exportView
	default:
		return s.loginView
	}
}

func statusFor(err error) int {
	var (
		validationErr *pipeline.ValidationError
		authErr       *pipeline.AuthError
		scoringErr    *sentiment.ScoringError
	)
	switch {
	case errors.As(err, &authErr):
		return http.StatusUnauthorized
	case errors.As(err, &validationErr):
		return http.StatusUnprocessableEntity
	case errors.As(err, &scoringErr):
		return http.StatusInternalServerError
	case errors.Is(err, pipeline.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, pipeline.ErrWrongStage):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func sessionError(w http.ResponseWriter, err error) {
	slog.Error("[HTTP] Session store failure", slog.String("error", err.Error()))
	http.Error(w, "session unavailable", http.StatusServiceUnavailable)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

func logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)

		slog.Info("[HTTP] Request",
			slog.String("method", r.Method),
			slog.String("path", r.URL.Path),
			slog.Int("status", rec.status),
			slog.Duration("elapsed", time.Since(start)))
	})
}
