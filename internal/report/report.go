// Package report renders ExplanationResults as Markdown, JSON, TOON or
// colored terminal text.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/fatih/color"

	"github.com/phobologic/codeexplain/internal/lang"
	"github.com/phobologic/codeexplain/internal/model"
)

// Format names accepted by Render.
const (
	FormatText     = "text"
	FormatMarkdown = "markdown"
	FormatJSON     = "json"
	FormatTOON     = "toon"
)

// DateLayout is the timestamp format of Markdown reports.
const DateLayout = "2006-01-02 15:04:05"

// Formats lists every supported format.
var Formats = []string{FormatText, FormatMarkdown, FormatJSON, FormatTOON}

// Renderer writes reports. The zero value is not usable; call New.
type Renderer struct {
	catalog *lang.Catalog
	now     func() time.Time
	color   bool
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithClock sets the time source used for report dates.
func WithClock(now func() time.Time) Option {
	return func(r *Renderer) { r.now = now }
}

// WithColor enables ANSI colors in text output.
func WithColor(on bool) Option {
	return func(r *Renderer) { r.color = on }
}

// New returns a Renderer that names languages using c.
func New(c *lang.Catalog, opts ...Option) *Renderer {
	r := &Renderer{catalog: c, now: time.Now}
	for _, o := range opts {
		o(r)
	}
	return r
}

// Render writes res to w in the named format.
func (r *Renderer) Render(w io.Writer, format string, res model.ExplanationResult) error {
	switch format {
	case "", FormatText:
		return r.Text(w, res)
	case FormatMarkdown:
		_, err := io.WriteString(w, r.Markdown(res))
		return err
	case FormatJSON:
		return JSON(w, res)
	case FormatTOON:
		_, err := io.WriteString(w, r.TOON(res)+"\n")
		return err
	default:
		return fmt.Errorf("unknown format %q (want one of %s)", format, strings.Join(Formats, ", "))
	}
}

// Markdown builds the downloadable analysis report.
func (r *Renderer) Markdown(res model.ExplanationResult) string {
	var b strings.Builder
	fence := string(res.Language)

	b.WriteString("# Code Analysis Report\n\n")
	fmt.Fprintf(&b, "Generated by: %s\n", res.Model)
	fmt.Fprintf(&b, "Language: %s\n", r.catalog.DisplayName(res.Language))
	fmt.Fprintf(&b, "Date: %s\n\n", r.now().Format(DateLayout))

	b.WriteString("## Detailed Explanation\n")
	b.WriteString(res.OverallExplanation)
	b.WriteString("\n")

	if len(res.BlockExplanations) > 0 {
		b.WriteString("\n## Block-by-Block Analysis\n")
		for _, be := range res.BlockExplanations {
			fmt.Fprintf(&b, "\n### %s\n%s\n", be.Name, be.Explanation)
		}
	}

	if res.CommentedCode != "" {
		fmt.Fprintf(&b, "\n## Code with Comments\n```%s\n%s\n```\n", fence, res.CommentedCode)
	}

	fmt.Fprintf(&b, "\n## Original Code\n```%s\n%s\n```\n", fence, res.OriginalCode)
	return b.String()
}

// JSON writes res as indented JSON.
func JSON(w io.Writer, res model.ExplanationResult) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// Text writes a terminal view of res.
func (r *Renderer) Text(w io.Writer, res model.ExplanationResult) error {
	heading := color.New(color.FgCyan, color.Bold)
	label := color.New(color.Bold)
	dim := color.New(color.Faint)
	for _, c := range []*color.Color{heading, label, dim} {
		if r.color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n", label.Sprint("Language:"), r.catalog.DisplayName(res.Language))
	fmt.Fprintf(&b, "%s %s (%s)\n\n", label.Sprint("Model:"), res.Model, res.Backend)

	b.WriteString(heading.Sprint("Explanation") + "\n")
	b.WriteString(res.OverallExplanation + "\n")

	for _, be := range res.BlockExplanations {
		fmt.Fprintf(&b, "\n%s\n%s\n", heading.Sprint(be.Name), be.Explanation)
	}

	if res.CommentedCode != "" {
		fmt.Fprintf(&b, "\n%s\n", heading.Sprint("Code with comments"))
		for _, line := range strings.Split(res.CommentedCode, "\n") {
			fmt.Fprintf(&b, "%s %s\n", dim.Sprint("│"), line)
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

var extensions = map[string]string{
	FormatText:     ".txt",
	FormatMarkdown: ".md",
	FormatJSON:     ".json",
	FormatTOON:     ".toon",
}

// FileName returns the default report name for a run at t, with the
// extension of format. An empty format means text.
func FileName(t time.Time, format string) string {
	ext, ok := extensions[format]
	if !ok {
		ext = extensions[FormatText]
	}
	return "code_analysis_" + t.Format("20060102_150405") + ext
}
