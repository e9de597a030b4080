// Package prompt renders the instructions sent to the remote model.
package prompt

import (
	"fmt"
	"strings"

	"github.com/tmc/langchaingo/prompts"

	"github.com/phobologic/codeexplain/internal/model"
)

// Templates holds the Go-template sources for every remote request. Each
// template sees the variables "code", "language" and "vocabulary".
type Templates struct {
	Detect   string `yaml:"detect"`
	Overall  string `yaml:"overall"`
	Block    string `yaml:"block"`
	Comments string `yaml:"comments"`
}

// DefaultTemplates returns the built-in prompt wording.
func DefaultTemplates() Templates {
	return Templates{
		Detect: `Identify the programming language of this code. Respond with ONLY the language name, exactly one of: {{.vocabulary}}.

Code:
{{.code}}

Language:`,
		Overall: `Explain this {{.language}} code concisely:

{{.code}}

Provide: 1) What it does, 2) Key components, 3) How it works. Keep it under 200 words.`,
		Block: `Briefly explain this {{.language}} code section:

{{.code}}

What does this part do? Keep it short and clear.`,
		Comments: `Add brief comments to this {{.language}} code:

{{.code}}

Add appropriate comments for important lines only. Keep comments short and use the correct comment syntax for {{.language}}.`,
	}
}

// Merge returns t with empty fields filled from d.
func (t Templates) Merge(d Templates) Templates {
	if strings.TrimSpace(t.Detect) == "" {
		t.Detect = d.Detect
	}
	if strings.TrimSpace(t.Overall) == "" {
		t.Overall = d.Overall
	}
	if strings.TrimSpace(t.Block) == "" {
		t.Block = d.Block
	}
	if strings.TrimSpace(t.Comments) == "" {
		t.Comments = d.Comments
	}
	return t
}

var inputVars = []string{"code", "language", "vocabulary"}

// Builder renders prompts from a fixed set of templates.
type Builder struct {
	detect     prompts.PromptTemplate
	overall    prompts.PromptTemplate
	block      prompts.PromptTemplate
	comments   prompts.PromptTemplate
	vocabulary string
}

// New compiles t. Empty templates fall back to the defaults. The vocabulary
// is listed in the detection prompt.
func New(t Templates, vocabulary []model.LanguageTag) (*Builder, error) {
	t = t.Merge(DefaultTemplates())

	names := make([]string, len(vocabulary))
	for i, v := range vocabulary {
		names[i] = fmt.Sprintf("%q", string(v))
	}

	b := &Builder{
		detect:     prompts.NewPromptTemplate(t.Detect, inputVars),
		overall:    prompts.NewPromptTemplate(t.Overall, inputVars),
		block:      prompts.NewPromptTemplate(t.Block, inputVars),
		comments:   prompts.NewPromptTemplate(t.Comments, inputVars),
		vocabulary: strings.Join(names, ", "),
	}

	// Render once so template errors surface at construction.
	for name, pt := range map[string]prompts.PromptTemplate{
		"detect": b.detect, "overall": b.overall, "block": b.block, "comments": b.comments,
	} {
		if _, err := b.render(pt, "x", "python"); err != nil {
			return nil, fmt.Errorf("%s template: %w", name, err)
		}
	}
	return b, nil
}

// Detect renders the language-identification prompt for code, which the
// caller is expected to have truncated already.
func (b *Builder) Detect(code string) (string, error) {
	return b.render(b.detect, code, "")
}

// Overall renders the whole-snippet explanation prompt.
func (b *Builder) Overall(code string, language string) (string, error) {
	return b.render(b.overall, code, language)
}

// Block renders the per-block explanation prompt.
func (b *Builder) Block(code string, language string) (string, error) {
	return b.render(b.block, code, language)
}

// Comments renders the inline-comment prompt.
func (b *Builder) Comments(code string, language string) (string, error) {
	return b.render(b.comments, code, language)
}

func (b *Builder) render(pt prompts.PromptTemplate, code, language string) (string, error) {
	return pt.Format(map[string]any{
		"code":       code,
		"language":   language,
		"vocabulary": b.vocabulary,
	})
}
