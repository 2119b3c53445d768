package report

import (
	"bytes"
	"fmt"
	"html"
	"log/slog"
	"strings"

	"github.com/go-pdf/fpdf"
	"github.com/russross/blackfriday/v2"

	"github.com/spacesedan/reviewlens/internal/analysis"
)

const (
	PDF_FILE_NAME  = "sentiment_report.pdf"
	HTML_FILE_NAME = "sentiment_report.html"
)

// Summary is the content of an exported report: a title and the label counts
// in the order they were aggregated.
type Summary struct {
	Title  string
	Counts []analysis.LabelCount
}

// Lines returns the title followed by one "<Label>: <count>" line per count.
func (s Summary) Lines() []string {
	lines := make([]string, 0, len(s.Counts)+1)
	lines = append(lines, s.Title)
	for _, c := range s.Counts {
		lines = append(lines, fmt.Sprintf("%s: %d", c.Label, c.Count))
	}
	return lines
}

// PDF renders the summary as a single A4 page.
func (s Summary) PDF() ([]byte, error) {
	pdf := fpdf.New("P", "mm", "A4", "")
	pdf.SetTitle(s.Title, true)
	pdf.AddPage()
	pdf.SetFont("Arial", "", 12)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	for i, line := range s.Lines() {
		align := ""
		if i == 0 {
			align = "C"
		}
		pdf.CellFormat(190, 10, tr(line), "", 1, align, false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("[Report] failed to encode pdf: %w", err)
	}

	slog.Info("[Report] Rendered PDF report",
		slog.Int("lines", len(s.Counts)+1),
		slog.Int("bytes", buf.Len()))
	return buf.Bytes(), nil
}

// Markdown renders the summary as a heading and a bullet list.
func (s Summary) Markdown() string {
	var b strings.Builder
	lines := s.Lines()
	fmt.Fprintf(&b, "# %s\n\n", escapeMarkdown(lines[0]))
	for _, line := range lines[1:] {
		fmt.Fprintf(&b, "- %s\n", escapeMarkdown(line))
	}
	return b.String()
}

// HTML renders the Markdown summary into a standalone HTML document.
func (s Summary) HTML() []byte {
	body := blackfriday.Run([]byte(s.Markdown()), blackfriday.WithNoExtensions())

	var buf bytes.Buffer
	buf.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>")
	buf.WriteString(html.EscapeString(s.Title))
	buf.WriteString("</title>\n</head>\n<body>\n")
	buf.Write(body)
	buf.WriteString("</body>\n</html>\n")
	return buf.Bytes()
}

var markdownEscaper = strings.NewReplacer(
	`\`, `\\`, `*`, `\*`, `_`, `\_`, "`", "\\`", `[`, `\[`, `]`, `\]`, `#`, `\#`, `<`, `&lt;`, `>`, `&gt;`,
)

func escapeMarkdown(s string) string {
	return markdownEscaper.Replace(s)
}
