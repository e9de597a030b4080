package report

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/phobologic/codeexplain/internal/model"
)

// TOON (Token-Oriented Object Notation) keeps reports compact when they are
// fed back into another model.

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// TOON encodes a single result.
func (r *Renderer) TOON(res model.ExplanationResult) string {
	parts := []string{
		field("language", string(res.Language)),
		field("backend", string(res.Backend)),
		field("model", res.Model),
		field("overall", res.OverallExplanation),
	}

	rows := make([][]string, 0, len(res.BlockExplanations))
	for _, be := range res.BlockExplanations {
		rows = append(rows, []string{be.Name, be.Explanation})
	}
	parts = append(parts, formatTabular("blocks", []string{"name", "explanation"}, rows))

	if res.CommentedCode != "" {
		parts = append(parts, field("commented_code", res.CommentedCode))
	}
	return strings.Join(parts, "\n")
}

// FileSummary is one row of a directory run.
type FileSummary struct {
	Path     string
	Language model.LanguageTag
	Backend  model.Backend
	Blocks   int
	Err      error
}

// Summary encodes a directory run as a TOON table.
func Summary(root string, files []FileSummary) string {
	rows := make([][]string, 0, len(files))
	failed := 0
	for _, f := range files {
		errText := ""
		if f.Err != nil {
			errText = f.Err.Error()
			failed++
		}
		rows = append(rows, []string{
			f.Path,
			string(f.Language),
			string(f.Backend),
			strconv.Itoa(f.Blocks),
			errText,
		})
	}
	return strings.Join([]string{
		field("root", root),
		field("failed", strconv.Itoa(failed)),
		formatTabular("files", []string{"path", "language", "backend", "blocks", "error"}, rows),
	}, "\n")
}

func field(name, value string) string {
	return fmt.Sprintf("%s: %s", name, encodeValue(value))
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	switch {
	case value == "":
		return `""`
	case value != strings.TrimSpace(value), strings.ContainsAny(value, "\n\r\t"):
		return quote(value)
	}
	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}
	if looksNumeric.MatchString(value) {
		return value
	}
	if needsQuoting.MatchString(value) || strings.HasPrefix(value, "-") {
		return quote(value)
	}
	return value
}

var quoter = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`, "\r", `\r`, "\t", `\t`)

func quote(value string) string {
	return `"` + quoter.Replace(value) + `"`
}
