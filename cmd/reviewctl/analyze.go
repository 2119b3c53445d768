package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/spacesedan/reviewlens/config"
	"github.com/spacesedan/reviewlens/internal/models"
	"github.com/spacesedan/reviewlens/internal/pipeline"
	"github.com/spacesedan/reviewlens/internal/sentiment"
)

type analyzeOptions struct {
	file     string
	text     string
	language string
	pdfPath  string
	htmlPath string
	top      int
}

func newAnalyzeCmd() *cobra.Command {
	opts := analyzeOptions{}

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run ingest, analysis, visualization summary and export in one go",
		Example: `  reviewctl analyze --file reviews.csv --lang en --pdf sentiment_report.pdf
  reviewctl analyze --text "Great food
Terrible service"`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if opts.file == "" && opts.text == "" {
				return errors.New("one of --file or --text is required")
			}
			return runAnalyze(cmd.OutOrStdout(), config.Load(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.file, "file", "f", "", "CSV file with a review column")
	cmd.Flags().StringVarP(&opts.text, "text", "t", "", "reviews, one per line")
	cmd.Flags().StringVarP(&opts.language, "lang", "l", "", "language to analyze (en or non-en); defaults to the first one found")
	cmd.Flags().StringVar(&opts.pdfPath, "pdf", "", "write the PDF report to this path")
	cmd.Flags().StringVar(&opts.htmlPath, "html", "", "write the HTML report to this path")
	cmd.Flags().IntVar(&opts.top, "top", 20, "number of frequent words to print")

	return cmd
}

func runAnalyze(out io.Writer, cfg config.Config, opts analyzeOptions) error {
	p := pipeline.New(pipeline.Options{
		Username:     cfg.Username,
		Password:     cfg.Password,
		ReviewColumn: cfg.ReviewField,
		ReportTitle:  cfg.ReportTitle,
		MaxWords:     opts.top,
		Scorer:       sentiment.NewVaderScorer(),
	})

	s, err := p.Login(pipeline.NewSession(), cfg.Username, cfg.Password)
	if err != nil {
		return err
	}

	in := pipeline.UploadInput{Manual: opts.text}
	if opts.file != "" {
		f, err := os.Open(opts.file)
		if err != nil {
			return fmt.Errorf("failed to open %s: %w", opts.file, err)
		}
		defer f.Close()
		in.CSV = f
	}

	if s, err = p.Upload(s, in); err != nil {
		return err
	}
	if s, err = p.Advance(s); err != nil {
		return err
	}

	languages, err := p.Languages(s)
	if err != nil {
		return err
	}
	tag := languages[0]
	if opts.language != "" {
		var ok bool
		if tag, ok = models.ParseLanguageTag(opts.language); !ok {
			return fmt.Errorf("%w: %q", pipeline.ErrUnknownLanguage, opts.language)
		}
	}

	if s, err = p.Analyze(s, tag); err != nil {
		return err
	}
	if s, err = p.Advance(s); err != nil {
		return err
	}

	viz, err := p.Visualize(s)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Language: %s (%d reviews)\n\n", tag, viz.Total)
	fmt.Fprintln(out, "Sentiment distribution:")
	for _, c := range viz.Counts {
		fmt.Fprintf(out, "  %-8s %d\n", c.Label, c.Count)
	}
	fmt.Fprintln(out, "\nTop words:")
	for _, w := range viz.Words {
		fmt.Fprintf(out, "  %-16s %d\n", w.Word, w.Count)
	}

	if s, err = p.Advance(s); err != nil {
		return err
	}
	rows, err := p.Sample(s)
	if err != nil {
		return err
	}
	fmt.Fprintln(out)
	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "REVIEW\tSCORE\tLABEL")
	for _, r := range rows {
		fmt.Fprintf(tw, "%s\t%.2f\t%s\n", r.ReviewText, r.SentimentScore, r.SentimentLabel)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if s, err = p.Advance(s); err != nil {
		return err
	}
	summary, err := p.Export(s)
	if err != nil {
		return err
	}

	if opts.pdfPath != "" {
		data, err := summary.PDF()
		if err != nil {
			return err
		}
		if err := os.WriteFile(opts.pdfPath, data, 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.pdfPath, err)
		}
		fmt.Fprintf(out, "\nWrote %s\n", opts.pdfPath)
	}
	if opts.htmlPath != "" {
		if err := os.WriteFile(opts.htmlPath, summary.HTML(), 0o644); err != nil {
			return fmt.Errorf("failed to write %s: %w", opts.htmlPath, err)
		}
		fmt.Fprintf(out, "\nWrote %s\n", opts.htmlPath)
	}

	p.Logout(s)
	return nil
}
