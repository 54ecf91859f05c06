package extraction

import (
	"bytes"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/ledongthuc/pdf"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/formforge/internal/interfaces"
)

// pdfTextExtractor reads the native text layer of a PDF with ledongthuc/pdf.
// Pages are processed strictly in order; the positional runs of each page are
// grouped into lines by baseline and prefixed with a page-boundary marker.
type pdfTextExtractor struct {
	logger arbor.ILogger
}

func newPDFTextExtractor(logger arbor.ILogger) *pdfTextExtractor {
	return &pdfTextExtractor{logger: logger}
}

// extract returns the concatenated text of every page. Progress is reported
// monotonically from 0 to 99 proportional to pages completed; 100 is the
// caller's completion signal, never emitted here.
func (e *pdfTextExtractor) extract(document []byte, onProgress interfaces.ProgressFunc) (string, error) {
	reader, err := pdf.NewReader(bytes.NewReader(document), int64(len(document)))
	if err != nil {
		return "", fmt.Errorf("failed to open PDF: %w", err)
	}

	total := reader.NumPage()
	if total == 0 {
		return "", fmt.Errorf("PDF has no pages")
	}

	var fullText strings.Builder
	for pageNum := 1; pageNum <= total; pageNum++ {
		page := reader.Page(pageNum)
		if page.V.IsNull() {
			continue
		}

		pageText, err := pageRuns(page)
		if err != nil {
			return "", fmt.Errorf("failed to read page %d: %w", pageNum, err)
		}

		fullText.WriteString(fmt.Sprintf("\n\n--- Page %d ---\n", pageNum))
		fullText.WriteString(pageText)

		if onProgress != nil {
			percent := pageNum * 100 / total
			if percent > 99 {
				percent = 99
			}
			onProgress(percent, fmt.Sprintf("Processing page %d of %d", pageNum, total))
		}
	}

	return strings.TrimSpace(fullText.String()), nil
}

const (
	// Runs whose baselines differ by no more than this belong to one line.
	lineTolerance = 3.0
	// A horizontal offset beyond this fraction of the font size separates
	// words; smaller offsets are kerning inside a word.
	wordGapFraction = 0.12
)

// pageRuns reassembles the positional text runs of one page into lines.
// Many PDFs emit one run per glyph, so runs are grouped by baseline and
// joined with spaces only at word-sized horizontal gaps. ledongthuc/pdf
// panics on some malformed content streams, so the read is fenced with a
// recover.
func pageRuns(page pdf.Page) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("malformed page content: %v", r)
		}
	}()

	lines := groupRunsIntoLines(page.Content().Text)

	var sb strings.Builder
	for _, line := range lines {
		if sb.Len() > 0 {
			sb.WriteString("\n")
		}
		sb.WriteString(joinLineRuns(line))
	}
	return strings.TrimSpace(sb.String()), nil
}

// groupRunsIntoLines buckets runs by baseline, top of page first, then orders
// each line left to right.
func groupRunsIntoLines(runs []pdf.Text) [][]pdf.Text {
	var filtered []pdf.Text
	for _, run := range runs {
		if run.S != "" {
			filtered = append(filtered, run)
		}
	}
	if len(filtered) == 0 {
		return nil
	}

	// PDF user space has Y growing upward.
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].Y > filtered[j].Y
	})

	var lines [][]pdf.Text
	current := []pdf.Text{filtered[0]}
	currentY := filtered[0].Y
	for _, run := range filtered[1:] {
		if math.Abs(run.Y-currentY) <= lineTolerance {
			current = append(current, run)
			continue
		}
		lines = append(lines, current)
		current = []pdf.Text{run}
		currentY = run.Y
	}
	lines = append(lines, current)

	for _, line := range lines {
		sort.SliceStable(line, func(i, j int) bool {
			return line[i].X < line[j].X
		})
	}
	return lines
}

// joinLineRuns concatenates one line's runs, inserting a space only where the
// gap between a run and its predecessor is word-sized.
func joinLineRuns(line []pdf.Text) string {
	var sb strings.Builder
	lastWasSpace := true
	for i, run := range line {
		if i > 0 {
			prev := line[i-1]
			gap := run.X - (prev.X + prev.W)
			threshold := prev.FontSize * wordGapFraction
			if threshold <= 0 {
				threshold = 1.0
			}
			if gap > threshold && !lastWasSpace && !strings.HasPrefix(run.S, " ") {
				sb.WriteString(" ")
			}
		}
		sb.WriteString(run.S)
		lastWasSpace = strings.HasSuffix(run.S, " ")
	}
	return strings.TrimSpace(sb.String())
}
