// Package annotate produces network-free explanations: a bullet summary of
// a snippet's structure and a line-commented copy of it.
package annotate

import (
	"fmt"
	"strings"

	"github.com/phobologic/codeexplain/internal/lang"
	"github.com/phobologic/codeexplain/internal/model"
)

// GenericBullet is emitted when no line is classified.
const GenericBullet = "Contains basic programming logic and statements"

var descriptions = map[lang.Feature]string{
	lang.FeatureFunction:      "**Function Definition**: Defines `%s()` function",
	lang.FeatureClass:         "**Class Definition**: Defines `%s` class",
	lang.FeatureVariable:      "**Variable Assignment**: Creates/assigns variable `%s`",
	lang.FeatureConditional:   "**Conditional Logic**: Contains conditional statement for decision making",
	lang.FeatureLoop:          "**Loop Structure**: Uses loop for iteration",
	lang.FeatureErrorHandling: "**Error Handling**: Implements error handling mechanism",
	lang.FeatureReturn:        "**Return Statement**: Returns value from function",
	lang.FeatureImport:        "**Module Import**: Imports external libraries/modules",
	lang.FeatureOutput:        "**Output**: Displays information to console",
}

// Annotator is a deterministic explainer built on a pattern catalog.
type Annotator struct {
	catalog *lang.Catalog
}

// New returns an Annotator backed by c.
func New(c *lang.Catalog) *Annotator {
	return &Annotator{catalog: c}
}

// Summarize describes the structure of code as markdown bullets, one per
// distinct feature in order of first appearance.
func (a *Annotator) Summarize(code string, tag model.LanguageTag) string {
	var (
		bullets []string
		seen    = make(map[string]struct{})
	)
	for _, line := range strings.Split(code, "\n") {
		stripped := strings.TrimSpace(line)
		if stripped == "" || a.catalog.IsComment(stripped, tag) {
			continue
		}
		for _, rule := range a.catalog.Features() {
			desc, ok := describe(rule, line)
			if !ok {
				continue
			}
			if _, dup := seen[desc]; !dup {
				seen[desc] = struct{}{}
				bullets = append(bullets, desc)
			}
		}
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "**%s Code Analysis:**\n\n", a.catalog.DisplayName(tag))
	if len(bullets) == 0 {
		sb.WriteString("• " + GenericBullet)
		return sb.String()
	}
	for i, b := range bullets {
		if i > 0 {
			sb.WriteByte('\n')
		}
		sb.WriteString("• " + b)
	}
	return sb.String()
}

// describe returns the bullet text for the first pattern of rule that
// matches line.
func describe(rule lang.FeatureRule, line string) (string, bool) {
	format, ok := descriptions[rule.Feature]
	if !ok {
		return "", false
	}
	for _, re := range rule.Patterns {
		m := re.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		if !strings.Contains(format, "%s") {
			return format, true
		}
		if len(m) < 2 {
			return "", false
		}
		return fmt.Sprintf(format, m[1]), true
	}
	return "", false
}

// Annotate appends a short comment to every line it can classify. Blank
// lines, existing comments and unclassified lines pass through unchanged, so
// the output has exactly as many lines as the input.
func (a *Annotator) Annotate(code string, tag model.LanguageTag) string {
	style := a.catalog.CommentStyle(tag)
	lines := strings.Split(code, "\n")
	for i, line := range lines {
		body, cr := strings.CutSuffix(line, "\r")
		stripped := strings.TrimSpace(body)
		if stripped == "" || a.catalog.IsComment(stripped, tag) {
			continue
		}
		comment := a.comment(stripped)
		if comment == "" {
			continue
		}
		out := body + "  " + style.Prefix + " " + comment
		if style.Suffix != "" {
			out += " " + style.Suffix
		}
		if cr {
			out += "\r"
		}
		lines[i] = out
	}
	return strings.Join(lines, "\n")
}

func (a *Annotator) comment(stripped string) string {
	for _, r := range a.catalog.LineRules() {
		if c := r.Render(stripped); c != "" {
			return c
		}
	}
	return ""
}
