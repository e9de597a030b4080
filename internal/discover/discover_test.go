package discover

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/phobologic/codeexplain/internal/model"
)

func paths(entries []FileEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Path
	}
	return out
}

func TestDiscoverSourceFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "main.py", "print('hello')")
	writeFile(t, dir, "src/server.go", "package main")
	writeFile(t, dir, "src/app.js", "console.log(1)")
	writeFile(t, dir, "readme.txt", "hello")
	writeFile(t, dir, ".hidden.py", "secret")

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}

	want := []struct {
		path string
		lang model.LanguageTag
	}{
		{"main.py", model.Python},
		{"src/app.js", model.JavaScript},
		{"src/server.go", model.Go},
	}
	if len(entries) != len(want) {
		t.Fatalf("expected %d entries, got %v", len(want), paths(entries))
	}
	for i, w := range want {
		if entries[i].Path != w.path || entries[i].Language != w.lang {
			t.Errorf("entry %d = %+v, want %s (%s)", i, entries[i], w.path, w.lang)
		}
	}
	if entries[0].Size != int64(len("print('hello')")) {
		t.Errorf("size = %d", entries[0].Size)
	}
}

func TestDiscoverSkipDirs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "main.py", "pass")
	writeFile(t, dir, "node_modules/pkg.js", "x")
	writeFile(t, dir, "__pycache__/cached.py", "pass")
	writeFile(t, dir, ".hidden/secret.py", "pass")
	writeFile(t, dir, "vendor/github.com/x/y.go", "package y")

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "main.py" {
		t.Fatalf("expected only main.py, got %v", paths(entries))
	}
}

func TestDiscoverGitignore(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, ".gitignore", "generated/\n*.min.js\n")
	writeFile(t, dir, "app.js", "x")
	writeFile(t, dir, "app.min.js", "x")
	writeFile(t, dir, "generated/out.py", "pass")

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "app.js" {
		t.Fatalf("expected only app.js, got %v", paths(entries))
	}
}

func TestDiscoverLanguageFilter(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	writeFile(t, dir, "main.py", "pass")
	writeFile(t, dir, "lib.py", "pass")
	writeFile(t, dir, "query.rb", "puts 1")

	entries, err := Files(dir, Options{Languages: []model.LanguageTag{model.Python}})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries for python filter, got %v", paths(entries))
	}

	entries, err = Files(dir, Options{Languages: []model.LanguageTag{model.JavaScript}})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected 0 entries for javascript filter, got %v", paths(entries))
	}
}

func TestDiscoverGlobs(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "cmd/tool/main.go", "package main")
	writeFile(t, dir, "internal/a/a.go", "package a")
	writeFile(t, dir, "internal/a/a_test.go", "package a")
	writeFile(t, dir, "scripts/run.py", "pass")

	entries, err := Files(dir, Options{Include: []string{"internal/**/*.go", "cmd/**"}, Exclude: []string{"**/*_test.go"}})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	got := paths(entries)
	if len(got) != 2 || got[0] != "cmd/tool/main.go" || got[1] != "internal/a/a.go" {
		t.Fatalf("unexpected entries %v", got)
	}

	if _, err := Files(dir, Options{Include: []string{"[unclosed"}}); err == nil {
		t.Fatal("expected invalid pattern error")
	}
}

func TestDiscoverLimits(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "a.py", "pass")
	writeFile(t, dir, "b.py", "x = '"+string(make([]byte, 64))+"'")
	writeFile(t, dir, "c.py", "pass")
	writeFile(t, dir, "tests/test_a.py", "pass")

	entries, err := Files(dir, Options{MaxBytes: 32, SkipTests: true})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	got := paths(entries)
	if len(got) != 2 || got[0] != "a.py" || got[1] != "c.py" {
		t.Fatalf("unexpected entries %v", got)
	}

	entries, err = Files(dir, Options{MaxFiles: 1})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "a.py" {
		t.Fatalf("expected only a.py, got %v", paths(entries))
	}
}

func TestDiscoverSymlinksSkipped(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	writeFile(t, dir, "real.py", "pass")

	err := os.Symlink(filepath.Join(dir, "real.py"), filepath.Join(dir, "link.py"))
	if err != nil {
		t.Skip("symlinks not supported")
	}

	entries, err := Files(dir, Options{})
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(entries) != 1 || entries[0].Path != "real.py" {
		t.Fatalf("expected only real.py, got %v", paths(entries))
	}
}

func TestLanguageFor(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		want model.LanguageTag
		ok   bool
	}{
		{"main.py", model.Python, true},
		{"index.ts", model.TypeScript, true},
		{"Main.java", model.Java, true},
		{"Program.cs", model.CSharp, true},
		{"lib.rs", model.Rust, true},
		{"deploy.sh", model.Bash, true},
		{"style.css", model.CSS, true},
		{"notes.txt", model.Unknown, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			got, ok := LanguageFor(tc.name)
			if got != tc.want || ok != tc.ok {
				t.Errorf("LanguageFor(%q) = %s, %v; want %s, %v", tc.name, got, ok, tc.want, tc.ok)
			}
		})
	}
}

func TestIsTestFile(t *testing.T) {
	t.Parallel()
	cases := []struct {
		path string
		want bool
	}{
		{"tests/test_geometry.py", true},
		{"tests/conftest.py", true},
		{"spec/models/user_spec.rb", true},
		{"src/__tests__/foo.js", true},
		{"src/test/java/FooTest.java", true},
		{"internal/explain/explain_test.go", true},
		{"test_helpers.py", true},
		{"user_spec.rb", true},
		{"foo.test.js", true},
		{"foo.spec.ts", true},
		{"internal/explain/explain.go", false},
		{"conftest.py", false},
		{"testing_utils.go", false},
		{"geometry/area.py", false},
	}
	for _, tc := range cases {
		t.Run(tc.path, func(t *testing.T) {
			t.Parallel()
			if got := IsTestFile(tc.path); got != tc.want {
				t.Errorf("IsTestFile(%q) = %v, want %v", tc.path, got, tc.want)
			}
		})
	}
}

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	path := filepath.Join(root, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}
