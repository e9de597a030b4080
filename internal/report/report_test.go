package report

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phobologic/codeexplain/internal/lang"
	"github.com/phobologic/codeexplain/internal/model"
)

var fixedClock = func() time.Time { return time.Date(2024, 3, 9, 14, 5, 7, 0, time.UTC) }

func sampleResult() model.ExplanationResult {
	return model.ExplanationResult{
		Language:           model.Python,
		OverallExplanation: "Computes circle geometry.",
		BlockExplanations: []model.BlockExplanation{
			{Name: "section_1", Explanation: "Computes the area."},
			{Name: "section_2", Explanation: "Computes the circumference."},
		},
		CommentedCode: "def area(r):  # Define function area\n    return r",
		OriginalCode:  "def area(r):\n    return r",
		Backend:       model.BackendRemote,
		Model:         "gemini-1.5-flash-latest",
	}
}

func TestMarkdown(t *testing.T) {
	t.Parallel()

	r := New(lang.Default(), WithClock(fixedClock))
	got := r.Markdown(sampleResult())

	want := "# Code Analysis Report\n\n" +
		"Generated by: gemini-1.5-flash-latest\n" +
		"Language: Python\n" +
		"Date: 2024-03-09 14:05:07\n\n" +
		"## Detailed Explanation\n" +
		"Computes circle geometry.\n" +
		"\n## Block-by-Block Analysis\n" +
		"\n### section_1\nComputes the area.\n" +
		"\n### section_2\nComputes the circumference.\n" +
		"\n## Code with Comments\n```python\ndef area(r):  # Define function area\n    return r\n```\n" +
		"\n## Original Code\n```python\ndef area(r):\n    return r\n```\n"
	assert.Equal(t, want, got)
}

func TestMarkdownOmitsEmptySections(t *testing.T) {
	t.Parallel()

	res := sampleResult()
	res.BlockExplanations = nil
	res.CommentedCode = ""

	got := New(lang.Default(), WithClock(fixedClock)).Markdown(res)
	assert.NotContains(t, got, "Block-by-Block")
	assert.NotContains(t, got, "Code with Comments")
	assert.True(t, strings.HasSuffix(got, "## Original Code\n```python\ndef area(r):\n    return r\n```\n"))
}

func TestJSON(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, JSON(&buf, sampleResult()))

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "python", decoded["language"])
	assert.Equal(t, "gemini-1.5-flash-latest", decoded["model_used"])
	assert.Equal(t, "remote", decoded["backend"])
	blocks, ok := decoded["block_explanations"].([]any)
	require.True(t, ok)
	assert.Len(t, blocks, 2)
}

func TestTextWithoutColor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := New(lang.Default(), WithColor(false))
	require.NoError(t, r.Text(&buf, sampleResult()))

	out := buf.String()
	assert.NotContains(t, out, "\x1b[")
	assert.Contains(t, out, "Language: Python")
	assert.Contains(t, out, "Model: gemini-1.5-flash-latest (remote)")
	assert.Contains(t, out, "section_2\nComputes the circumference.")
	assert.Contains(t, out, "│ def area(r):  # Define function area")
}

func TestTextWithColor(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	r := New(lang.Default(), WithColor(true))
	require.NoError(t, r.Text(&buf, sampleResult()))
	assert.Contains(t, buf.String(), "\x1b[")
}

func TestRender(t *testing.T) {
	t.Parallel()

	r := New(lang.Default(), WithClock(fixedClock))
	for _, f := range Formats {
		var buf bytes.Buffer
		require.NoError(t, r.Render(&buf, f, sampleResult()), f)
		assert.NotEmpty(t, buf.String(), f)
	}

	err := r.Render(&bytes.Buffer{}, "pdf", sampleResult())
	assert.ErrorContains(t, err, "unknown format")
}

func TestFileName(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "code_analysis_20240309_140507.md", FileName(fixedClock(), FormatMarkdown))
	assert.Equal(t, "code_analysis_20240309_140507.json", FileName(fixedClock(), FormatJSON))
	assert.Equal(t, "code_analysis_20240309_140507.txt", FileName(fixedClock(), ""))
}
