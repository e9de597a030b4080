// Package lang provides the pattern catalog shared by language detection,
// block segmentation and the rule-based annotator.
//
// A Catalog is immutable once compiled and safe for concurrent use. Callers
// construct one explicitly (usually with Default) and pass it to the
// components that need it; there is no package-level catalog.
package lang

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/phobologic/codeexplain/internal/model"
)

// Feature is a structural category recognized by the rule-based annotator.
type Feature string

const (
	FeatureFunction      Feature = "function"
	FeatureClass         Feature = "class"
	FeatureVariable      Feature = "variable"
	FeatureConditional   Feature = "conditional"
	FeatureLoop          Feature = "loop"
	FeatureErrorHandling Feature = "error_handling"
	FeatureReturn        Feature = "return"
	FeatureImport        Feature = "import"
	FeatureOutput        Feature = "output"
)

// Signature lists the detection patterns of one language, uncompiled.
type Signature struct {
	Tag      model.LanguageTag
	Patterns []string
}

// FeatureSpec lists the patterns that classify a line as Feature.
type FeatureSpec struct {
	Feature  Feature
	Patterns []string
}

// LineRuleSpec maps a pattern to an inline comment. Comment may contain a
// single %s, which receives the pattern's first capture group.
type LineRuleSpec struct {
	Pattern string
	Comment string
}

// CommentStyle is the syntax used to attach a trailing comment to a line.
type CommentStyle struct {
	Prefix string
	Suffix string
}

// Config is the uncompiled form of a Catalog.
type Config struct {
	// Signatures are scored in slice order; ties go to the earliest entry.
	Signatures []Signature
	// Boundaries mark the first line of a new top-level block.
	Boundaries []string
	Features   []FeatureSpec
	LineRules  []LineRuleSpec
	// Vocabulary is the closed set of answers accepted from remote
	// detection, in substring-scan order.
	Vocabulary   []model.LanguageTag
	Aliases      map[string]model.LanguageTag
	DisplayNames map[model.LanguageTag]string
	Styles       map[model.LanguageTag]CommentStyle
	DefaultStyle CommentStyle
	// Fallback is returned by heuristic detection when nothing scores.
	Fallback model.LanguageTag
}

// FeatureRule is a compiled FeatureSpec.
type FeatureRule struct {
	Feature  Feature
	Patterns []*regexp.Regexp
}

// LineRule is a compiled LineRuleSpec.
type LineRule struct {
	Pattern *regexp.Regexp
	Comment string
}

// Render returns the comment for line, or "" if the rule does not match.
func (r LineRule) Render(line string) string {
	m := r.Pattern.FindStringSubmatch(line)
	if m == nil {
		return ""
	}
	if strings.Contains(r.Comment, "%s") {
		name := ""
		if len(m) > 1 {
			name = m[1]
		}
		return fmt.Sprintf(r.Comment, name)
	}
	return r.Comment
}

// Catalog is a compiled, read-only set of language patterns.
type Catalog struct {
	entries      []model.PatternEntry
	boundaries   []*regexp.Regexp
	features     []FeatureRule
	lineRules    []LineRule
	vocabulary   []model.LanguageTag
	aliases      map[string]model.LanguageTag
	displayNames map[model.LanguageTag]string
	styles       map[model.LanguageTag]CommentStyle
	defaultStyle CommentStyle
	fallback     model.LanguageTag
}

// Compile validates cfg and compiles every pattern in it. Detection
// signatures are compiled case-insensitive and multiline; all other patterns
// are compiled as written.
func Compile(cfg Config) (*Catalog, error) {
	if cfg.Fallback == "" {
		return nil, fmt.Errorf("catalog: fallback language is required")
	}
	if cfg.DefaultStyle.Prefix == "" {
		return nil, fmt.Errorf("catalog: default comment style is required")
	}

	c := &Catalog{
		vocabulary:   append([]model.LanguageTag(nil), cfg.Vocabulary...),
		aliases:      make(map[string]model.LanguageTag, len(cfg.Aliases)),
		displayNames: make(map[model.LanguageTag]string, len(cfg.DisplayNames)),
		styles:       make(map[model.LanguageTag]CommentStyle, len(cfg.Styles)),
		defaultStyle: cfg.DefaultStyle,
		fallback:     cfg.Fallback,
	}

	seen := make(map[model.LanguageTag]struct{}, len(cfg.Signatures))
	for _, sig := range cfg.Signatures {
		if _, dup := seen[sig.Tag]; dup {
			return nil, fmt.Errorf("catalog: duplicate signature for %s", sig.Tag)
		}
		seen[sig.Tag] = struct{}{}
		entry := model.PatternEntry{Tag: sig.Tag}
		for _, p := range sig.Patterns {
			re, err := regexp.Compile("(?im)" + p)
			if err != nil {
				return nil, fmt.Errorf("catalog: %s pattern %q: %w", sig.Tag, p, err)
			}
			entry.Patterns = append(entry.Patterns, re)
		}
		c.entries = append(c.entries, entry)
	}

	for _, p := range cfg.Boundaries {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("catalog: boundary %q: %w", p, err)
		}
		c.boundaries = append(c.boundaries, re)
	}

	for _, f := range cfg.Features {
		rule := FeatureRule{Feature: f.Feature}
		for _, p := range f.Patterns {
			re, err := regexp.Compile(p)
			if err != nil {
				return nil, fmt.Errorf("catalog: %s feature %q: %w", f.Feature, p, err)
			}
			rule.Patterns = append(rule.Patterns, re)
		}
		c.features = append(c.features, rule)
	}

	for _, lr := range cfg.LineRules {
		re, err := regexp.Compile(lr.Pattern)
		if err != nil {
			return nil, fmt.Errorf("catalog: line rule %q: %w", lr.Pattern, err)
		}
		c.lineRules = append(c.lineRules, LineRule{Pattern: re, Comment: lr.Comment})
	}

	for k, v := range cfg.Aliases {
		c.aliases[strings.ToLower(k)] = v
	}
	for k, v := range cfg.DisplayNames {
		c.displayNames[k] = v
	}
	for k, v := range cfg.Styles {
		c.styles[k] = v
	}
	return c, nil
}

// Default returns a freshly compiled catalog built from DefaultConfig.
func Default() *Catalog {
	c, err := Compile(DefaultConfig())
	if err != nil {
		panic(err)
	}
	return c
}

// DefaultConfig returns the built-in catalog configuration.
func DefaultConfig() Config {
	return Config{
		Signatures:   defaultSignatures(),
		Boundaries:   defaultBoundaries(),
		Features:     defaultFeatures(),
		LineRules:    defaultLineRules(),
		Vocabulary:   defaultVocabulary(),
		Aliases:      defaultAliases(),
		DisplayNames: defaultDisplayNames(),
		Styles:       defaultStyles(),
		DefaultStyle: CommentStyle{Prefix: "//"},
		Fallback:     model.Python,
	}
}

// Entries returns the detection signatures in scoring order.
func (c *Catalog) Entries() []model.PatternEntry { return c.entries }

// Features returns the feature rules in classification order.
func (c *Catalog) Features() []FeatureRule { return c.features }

// LineRules returns the inline-comment rules; the first match wins.
func (c *Catalog) LineRules() []LineRule { return c.lineRules }

// Vocabulary returns the remote-detection vocabulary in scan order.
func (c *Catalog) Vocabulary() []model.LanguageTag { return c.vocabulary }

// Fallback returns the language chosen when no signature scores.
func (c *Catalog) Fallback() model.LanguageTag { return c.fallback }

// IsBoundary reports whether line opens a new top-level block.
func (c *Catalog) IsBoundary(line string) bool {
	for _, re := range c.boundaries {
		if re.MatchString(line) {
			return true
		}
	}
	return false
}

// Alias resolves an alternate spelling such as "c#" or "js".
func (c *Catalog) Alias(name string) (model.LanguageTag, bool) {
	t, ok := c.aliases[strings.ToLower(name)]
	return t, ok
}

// InVocabulary reports whether name is exactly a vocabulary entry.
func (c *Catalog) InVocabulary(name string) (model.LanguageTag, bool) {
	for _, t := range c.vocabulary {
		if string(t) == name {
			return t, true
		}
	}
	return model.Unknown, false
}

// DisplayName returns a human-readable language name.
func (c *Catalog) DisplayName(tag model.LanguageTag) string {
	if n, ok := c.displayNames[tag]; ok {
		return n
	}
	s := string(tag)
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// CommentStyle returns the trailing-comment syntax for tag. The mapping is
// total: unmapped tags get the catalog's default style.
func (c *Catalog) CommentStyle(tag model.LanguageTag) CommentStyle {
	if s, ok := c.styles[tag]; ok {
		return s
	}
	return c.defaultStyle
}

// IsComment reports whether the stripped line is already a comment in tag's
// syntax.
func (c *Catalog) IsComment(stripped string, tag model.LanguageTag) bool {
	style := c.CommentStyle(tag)
	if strings.HasPrefix(stripped, style.Prefix) {
		return true
	}
	return style.Prefix == "//" && strings.HasPrefix(stripped, "/*")
}
