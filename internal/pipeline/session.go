package pipeline

import (
	"github.com/spacesedan/reviewlens/internal/models"
	"github.com/spacesedan/reviewlens/internal/store"
)

type Stage string

const (
	StageLogin     Stage = "login"
	StageUpload    Stage = "upload"
	StageAnalyze   Stage = "analyze"
	StageVisualize Stage = "visualize"
	StageSample    Stage = "sample"
	StageExport    Stage = "export"
)

// Stages lists the stages in the order a session moves through them.
var Stages = []Stage{StageLogin, StageUpload, StageAnalyze, StageVisualize, StageSample, StageExport}

func (s Stage) next() (Stage, bool) {
	for i, stage := range Stages {
		if stage == s && i+1 < len(Stages) {
			return Stages[i+1], true
		}
	}
	return "", false
}

// Session is the whole state of one user's pass through the pipeline.
//
// Uploaded is the collection produced by UPLOAD. Reviews is the current
// collection: equal to Uploaded until ANALYZE replaces it with the scored
// subset for Language. Keeping Uploaded lets ANALYZE be re-run with another
// language without re-ingesting.
type Session struct {
	Authenticated bool               `json:"authenticated"`
	Stage         Stage              `json:"stage"`
	Uploaded      store.Collection   `json:"uploaded"`
	Reviews       store.Collection   `json:"reviews"`
	Language      models.LanguageTag `json:"language,omitempty"`
}

func NewSession() Session {
	return Session{Stage: StageLogin}
}
