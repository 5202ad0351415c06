// Package render formats classification results for terminals and JSON
// consumers.
package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	fakenews "github.com/baditaflorin/go_fakenews"
	"github.com/baditaflorin/go_fakenews/internal/batch"
	"github.com/baditaflorin/go_fakenews/internal/core/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/fatih/color"
	"github.com/mattn/go-runewidth"
)

// DefaultPreviewWidth is the display width of the article preview.
const DefaultPreviewWidth = 60

// Options controls text rendering.
type Options struct {
	Color        bool
	PreviewWidth int
}

// Headline returns the prediction line for a label.
func Headline(label domain.Label) string {
	return "Prediction: " + label.String() + " NEWS"
}

// Preview collapses whitespace and truncates text to width display cells.
func Preview(text string, width int) string {
	value := strings.Join(strings.Fields(text), " ")
	if width <= 0 {
		return value
	}
	if runewidth.StringWidth(value) <= width {
		return value
	}
	if width <= 3 {
		return runewidth.Truncate(value, width, "")
	}
	return runewidth.Truncate(value, width, "...")
}

// paint forces c on or off regardless of the global color.NoColor.
func paint(c *color.Color, enabled bool) *color.Color {
	if enabled {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

func labelColor(label domain.Label, enabled bool) *color.Color {
	if label == domain.Real {
		return paint(color.New(color.FgGreen, color.Bold), enabled)
	}
	return paint(color.New(color.FgRed, color.Bold), enabled)
}

func tierStyle(tier domain.Tier) lipgloss.Style {
	switch tier {
	case domain.TierHigh:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	case domain.TierMedium:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	default:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	}
}

// Lines returns the plain result lines: prediction, confidence and both
// class percentages, each percentage with one decimal.
func Lines(result domain.Result) []string {
	return []string{
		Headline(result.Label),
		fmt.Sprintf("Confidence: %.1f%% (%s)", result.DisplayConfidence(), result.Tier),
		fmt.Sprintf("Fake News: %.1f%%", result.FakePercent()),
		fmt.Sprintf("Real News: %.1f%%", result.RealPercent()),
	}
}

// Text writes a bordered result card. The article preview is omitted when
// text is empty.
func Text(w io.Writer, text string, result domain.Result, opts Options) error {
	width := opts.PreviewWidth
	if width == 0 {
		width = DefaultPreviewWidth
	}

	lines := Lines(result)
	lines[0] = labelColor(result.Label, opts.Color).Sprint(lines[0])
	if opts.Color {
		lines[1] = tierStyle(result.Tier).Render(lines[1])
	}
	if text != "" {
		lines = append([]string{"Article: " + Preview(text, width), ""}, lines...)
	}

	card := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(0, 1)
	if opts.Color {
		card = card.BorderForeground(lipgloss.Color("6"))
	}

	_, err := fmt.Fprintln(w, card.Render(strings.Join(lines, "\n")))
	return err
}

// Failure writes a one-line failure message, in red when colour is on.
func Failure(w io.Writer, message string, opts Options) error {
	_, err := paint(color.New(color.FgRed), opts.Color).Fprintln(w, message)
	return err
}

// ResultDTO is the stable JSON form of a result.
type ResultDTO struct {
	ID            string           `json:"id,omitempty"`
	Label         string           `json:"label"`
	Confidence    float64          `json:"confidence"`
	Tier          string           `json:"tier"`
	Probabilities ProbabilitiesDTO `json:"probabilities"`
}

// ProbabilitiesDTO holds the per-class percentages rounded to one decimal.
type ProbabilitiesDTO struct {
	Fake float64 `json:"fake"`
	Real float64 `json:"real"`
}

// NewResultDTO converts a result for JSON output.
func NewResultDTO(id string, result domain.Result) ResultDTO {
	return ResultDTO{
		ID:         id,
		Label:      result.Label.String(),
		Confidence: result.DisplayConfidence(),
		Tier:       result.Tier.String(),
		Probabilities: ProbabilitiesDTO{
			Fake: result.FakePercent(),
			Real: result.RealPercent(),
		},
	}
}

// ErrorDTO describes a failed item.
type ErrorDTO struct {
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// ItemDTO is one entry of a batch response: a result or an error.
type ItemDTO struct {
	ID     string     `json:"id"`
	Result *ResultDTO `json:"result,omitempty"`
	Error  *ErrorDTO  `json:"error,omitempty"`
}

// NewItemDTO converts one batch item for JSON output.
func NewItemDTO(item batch.Item) ItemDTO {
	dto := ItemDTO{ID: item.ID}
	if item.Err != nil {
		outcome := fakenews.OutcomeOf(item.Result, item.Err)
		dto.Error = &ErrorDTO{Kind: outcome.Kind.String(), Message: outcome.Message()}
		return dto
	}
	result := NewResultDTO("", item.Result)
	dto.Result = &result
	return dto
}

// JSON writes v as indented JSON followed by a newline.
func JSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// BatchTable writes one line per batch item followed by a summary line.
func BatchTable(w io.Writer, items []batch.Item, opts Options) error {
	idWidth := 4
	for _, item := range items {
		idWidth = max(idWidth, min(runewidth.StringWidth(item.ID), 24))
	}

	for _, item := range items {
		if err := BatchRow(w, item, idWidth, opts); err != nil {
			return err
		}
	}
	return BatchSummary(w, batch.Summarize(items))
}

// BatchRow writes one batch item with its id padded to idWidth cells.
func BatchRow(w io.Writer, item batch.Item, idWidth int, opts Options) error {
	id := runewidth.FillRight(Preview(item.ID, idWidth), idWidth)
	var line string
	if item.Err != nil {
		line = id + "  " + paint(color.New(color.FgYellow), opts.Color).Sprint("ERROR") + "  " + item.Err.Error()
	} else {
		label := runewidth.FillRight(item.Result.Label.String(), 4)
		line = fmt.Sprintf("%s  %s  %5.1f%%  %s",
			id,
			labelColor(item.Result.Label, opts.Color).Sprint(label),
			item.Result.DisplayConfidence(),
			item.Result.Tier,
		)
	}
	_, err := fmt.Fprintln(w, line)
	return err
}

// BatchSummary writes the closing counts of a batch.
func BatchSummary(w io.Writer, s batch.Summary) error {
	_, err := fmt.Fprintf(w, "\n%d articles: %d real, %d fake, %d failed\n", s.Total, s.Real, s.Fake, s.Failed)
	return err
}

// JSONLine writes v as compact JSON on a single line.
func JSONLine(w io.Writer, v interface{}) error {
	return json.NewEncoder(w).Encode(v)
}
