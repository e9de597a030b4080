// Package model defines core data structures for codeexplain.
package model

import (
	"regexp"
	"strings"
)

// LanguageTag identifies a programming or markup language from a closed set.
type LanguageTag string

const (
	Python     LanguageTag = "python"
	JavaScript LanguageTag = "javascript"
	TypeScript LanguageTag = "typescript"
	Java       LanguageTag = "java"
	CSharp     LanguageTag = "csharp"
	Cpp        LanguageTag = "cpp"
	Go         LanguageTag = "go"
	Rust       LanguageTag = "rust"
	PHP        LanguageTag = "php"
	Ruby       LanguageTag = "ruby"
	Kotlin     LanguageTag = "kotlin"
	Swift      LanguageTag = "swift"
	Scala      LanguageTag = "scala"
	Dart       LanguageTag = "dart"
	R          LanguageTag = "r"
	Matlab     LanguageTag = "matlab"
	SQL        LanguageTag = "sql"
	HTML       LanguageTag = "html"
	CSS        LanguageTag = "css"
	Bash       LanguageTag = "bash"
	PowerShell LanguageTag = "powershell"
	YAML       LanguageTag = "yaml"
	JSON       LanguageTag = "json"
	XML        LanguageTag = "xml"
	ObjectiveC LanguageTag = "objectivec"

	// Unknown is never produced by detection; it marks an unset tag.
	Unknown LanguageTag = "unknown"
)

// AllLanguages lists every known tag except Unknown.
var AllLanguages = []LanguageTag{
	Python, JavaScript, TypeScript, Java, CSharp, Cpp, Go, Rust, PHP, Ruby,
	Kotlin, Swift, Scala, Dart, R, Matlab, SQL, HTML, CSS, Bash, PowerShell,
	YAML, JSON, XML, ObjectiveC,
}

// ParseLanguageTag returns the tag named by s, or false if s is not a member
// of the closed set.
func ParseLanguageTag(s string) (LanguageTag, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, t := range AllLanguages {
		if string(t) == s {
			return t, true
		}
	}
	return Unknown, false
}

// Backend labels which explanation path produced the dominant content.
type Backend string

const (
	BackendRemote Backend = "remote"
	BackendLocal  Backend = "local"
)

// CodeBlock is a contiguous, named slice of source lines.
type CodeBlock struct {
	Name  string
	Lines []string
}

// Text returns the block body joined with newlines.
func (b CodeBlock) Text() string {
	return strings.Join(b.Lines, "\n")
}

// BlockExplanation pairs a block name with its explanation.
type BlockExplanation struct {
	Name        string `json:"name"`
	Explanation string `json:"explanation"`
}

// ExplanationResult is the outcome of one analysis request.
type ExplanationResult struct {
	Language           LanguageTag        `json:"language"`
	OverallExplanation string             `json:"overall_explanation"`
	BlockExplanations  []BlockExplanation `json:"block_explanations"`
	CommentedCode      string             `json:"commented_code,omitempty"`
	OriginalCode       string             `json:"original_code"`
	Backend            Backend            `json:"backend"`
	Model              string             `json:"model_used"`
}

// Block returns the explanation recorded for the named block.
func (r *ExplanationResult) Block(name string) (string, bool) {
	for _, b := range r.BlockExplanations {
		if b.Name == name {
			return b.Explanation, true
		}
	}
	return "", false
}

// PatternEntry holds the detection signatures of one language.
type PatternEntry struct {
	Tag      LanguageTag
	Patterns []*regexp.Regexp
}
