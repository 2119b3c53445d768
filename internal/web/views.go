package web

import (
	"html/template"

	"github.com/spacesedan/reviewlens/internal/analysis"
	"github.com/spacesedan/reviewlens/internal/models"
	"github.com/spacesedan/reviewlens/internal/pipeline"
)

const (
	CHART_WIDTH   = 600
	CHART_HEIGHT  = 320
	CHART_TOP     = 24
	CHART_BOTTOM  = 40
	BAR_GAP       = 40
	MIN_FONT_SIZE = 12
	MAX_FONT_SIZE = 48
)

type progressItem struct {
	Name  string
	Class string
}

type pageData struct {
	Title         string
	Authenticated bool
	Progress      []progressItem
	Error         string
	Notice        string

	ReviewColumn string
	ReviewCount  int

	Languages []models.LanguageTag
	Language  models.LanguageTag
	Analyzed  bool

	Chart chart
	Cloud []cloudWord
	Total int

	Rows   []pipeline.SampleRow
	Counts []analysis.LabelCount
}

type bar struct {
	Label   models.SentimentLabel
	Count   int
	Color   string
	X       int
	Y       int
	Width   int
	Height  int
	CenterX int
	ValueY  int
}

type chart struct {
	Width  int
	Height int
	LabelY int
	Bars   []bar
}

type cloudWord struct {
	Word     string
	Count    int
	FontSize int
	Color    template.CSS
}

var pageTitles = map[pipeline.Stage]string{
	pipeline.StageLogin:     "Login",
	pipeline.StageUpload:    "Upload or Enter Reviews",
	pipeline.StageAnalyze:   "Sentiment Analysis",
	pipeline.StageVisualize: "Visualizations",
	pipeline.StageSample:    "Sample Reviews",
	pipeline.StageExport:    "Export Report & Logout",
}

func progress(current pipeline.Stage) []progressItem {
	items := make([]progressItem, 0, len(pipeline.Stages)-1)
	done := true
	for _, stage := range pipeline.Stages[1:] {
		class := ""
		switch {
		case stage == current:
			class = "current"
			done = false
		case done:
			class = "done"
		}
		items = append(items, progressItem{Name: string(stage), Class: class})
	}
	return items
}

// barChart lays out one bar per count, scaled to the largest count.
func barChart(counts []analysis.LabelCount) chart {
	c := chart{
		Width:  CHART_WIDTH,
		Height: CHART_HEIGHT,
		LabelY: CHART_HEIGHT - CHART_BOTTOM/2,
	}
	if len(counts) == 0 {
		return c
	}

	maxCount := 0
	for _, lc := range counts {
		maxCount = max(maxCount, lc.Count)
	}

	plotHeight := CHART_HEIGHT - CHART_TOP - CHART_BOTTOM
	barWidth := (CHART_WIDTH - BAR_GAP*(len(counts)+1)) / len(counts)
	baseline := CHART_TOP + plotHeight

	for i, lc := range counts {
		h := 0
		if maxCount > 0 {
			h = lc.Count * plotHeight / maxCount
		}
		x := BAR_GAP + i*(barWidth+BAR_GAP)
		c.Bars = append(c.Bars, bar{
			Label:   lc.Label,
			Count:   lc.Count,
			Color:   analysis.LabelColor(lc.Label),
			X:       x,
			Y:       baseline - h,
			Width:   barWidth,
			Height:  h,
			CenterX: x + barWidth/2,
			ValueY:  baseline - h - 6,
		})
	}
	return c
}

var cloudPalette = []string{"#1f77b4", "#ff7f0e", "#2ca02c", "#d62728", "#9467bd", "#8c564b", "#e377c2", "#17becf"}

func wordCloud(words []analysis.WordFrequency) []cloudWord {
	out := make([]cloudWord, 0, len(words))
	for i, w := range words {
		size := MIN_FONT_SIZE + int(w.Weight*float64(MAX_FONT_SIZE-MIN_FONT_SIZE))
		out = append(out, cloudWord{
			Word:     w.Word,
			Count:    w.Count,
			FontSize: size,
			Color:    template.CSS(cloudPalette[i%len(cloudPalette)]),
		})
	}
	return out
}
