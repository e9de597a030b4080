package annotate

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/phobologic/codeexplain/internal/lang"
	"github.com/phobologic/codeexplain/internal/model"
)

func TestSummarizeAdd(t *testing.T) {
	t.Parallel()

	a := New(lang.Default())
	got := a.Summarize("def add(a, b):\n    return a + b", model.Python)
	want := "**Python Code Analysis:**\n\n" +
		"• **Function Definition**: Defines `add()` function\n" +
		"• **Return Statement**: Returns value from function"
	assert.Equal(t, want, got)
}

func TestSummarizeDeduplicates(t *testing.T) {
	t.Parallel()

	a := New(lang.Default())
	code := strings.Join([]string{
		"import os",
		"import sys",
		"# a comment with def fake(): inside",
		"",
		"for x in items:",
		"    if x:",
		"        print(x)",
		"    if not x:",
		"        print('none')",
		"try:",
		"    total = compute()",
		"except ValueError:",
		"    pass",
	}, "\n")

	got := a.Summarize(code, model.Python)
	lines := strings.Split(got, "\n")
	assert.Equal(t, "**Python Code Analysis:**", lines[0])
	assert.Equal(t, []string{
		"• **Module Import**: Imports external libraries/modules",
		"• **Loop Structure**: Uses loop for iteration",
		"• **Conditional Logic**: Contains conditional statement for decision making",
		"• **Output**: Displays information to console",
		"• **Error Handling**: Implements error handling mechanism",
		"• **Variable Assignment**: Creates/assigns variable `total`",
	}, lines[2:])
	assert.NotContains(t, got, "fake")
}

func TestSummarizeGeneric(t *testing.T) {
	t.Parallel()

	a := New(lang.Default())
	got := a.Summarize("pass\n\n# only a comment", model.Python)
	assert.Equal(t, "**Python Code Analysis:**\n\n• "+GenericBullet, got)
}

func TestSummarizeUsesDisplayName(t *testing.T) {
	t.Parallel()

	a := New(lang.Default())
	got := a.Summarize("Console.WriteLine(\"hi\");", model.CSharp)
	assert.True(t, strings.HasPrefix(got, "**C# Code Analysis:**"))
	assert.Contains(t, got, "**Output**")
}

func TestAnnotateAdd(t *testing.T) {
	t.Parallel()

	a := New(lang.Default())
	got := a.Annotate("def add(a, b):\n    return a + b", model.Python)
	assert.Equal(t, "def add(a, b):  # Define function add\n    return a + b  # Return result", got)
}

func TestAnnotateCommentStyles(t *testing.T) {
	t.Parallel()

	a := New(lang.Default())
	tests := []struct {
		tag  model.LanguageTag
		line string
		want string
	}{
		{model.JavaScript, "return x;", "return x;  // Return result"},
		{model.Ruby, "return x", "return x  # Return result"},
		{model.SQL, "x = 1", "x = 1  -- Set x variable"},
		{model.HTML, "x = 1", "x = 1  <!-- Set x variable -->"},
		{model.Unknown, "x = 1", "x = 1  // Set x variable"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, a.Annotate(tt.line, tt.tag), "tag %s", tt.tag)
	}
}

func TestAnnotatePreservesLines(t *testing.T) {
	t.Parallel()

	a := New(lang.Default())
	inputs := map[model.LanguageTag]string{
		model.Python: "import os\n\n# existing comment\ndef main():\n    x = 1\n    if x:\n        print(x)\n\n",
		model.Go:     "package main\n\n// Doc comment.\nfunc main() {\n\tfor i := 0; i < 3; i++ {\n\t}\n}",
		model.Cpp:    "#include <iostream>\n/* block */\nint main() {\r\n  return 0;\r\n}",
		model.YAML:   "",
	}
	for tag, src := range inputs {
		got := a.Annotate(src, tag)
		in := strings.Split(src, "\n")
		out := strings.Split(got, "\n")
		if !assert.Len(t, out, len(in), "tag %s", tag) {
			continue
		}
		for i, line := range in {
			stripped := strings.TrimSpace(line)
			if stripped == "" || a.catalog.IsComment(stripped, tag) {
				assert.Equal(t, line, out[i], "tag %s line %d", tag, i)
				continue
			}
			assert.True(t, strings.HasPrefix(out[i], strings.TrimSuffix(line, "\r")), "tag %s line %d", tag, i)
		}
	}
}

func TestAnnotateCarriageReturn(t *testing.T) {
	t.Parallel()

	a := New(lang.Default())
	got := a.Annotate("return 1\r\nfoo()", model.Go)
	assert.Equal(t, "return 1  // Return result\r\nfoo()", got)
}

func TestAnnotateIsDeterministic(t *testing.T) {
	t.Parallel()

	a := New(lang.Default())
	src := "class Foo:\n    def bar(self):\n        return 1"
	first := a.Annotate(src, model.Python)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, a.Annotate(src, model.Python))
	}
	assert.Equal(t, "class Foo:  # Define class Foo\n    def bar(self):  # Define function bar\n        return 1  # Return result", first)
}
