// Package discover finds explainable source files under a directory.
package discover

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/go-enry/go-enry/v2"
	ignore "github.com/sabhiram/go-gitignore"

	"github.com/phobologic/codeexplain/internal/model"
)

// FileEntry represents a discovered source file.
type FileEntry struct {
	Path     string // Relative to root, slash separated
	Language model.LanguageTag
	Size     int64
}

// Options narrows a walk. The zero value returns every recognized file.
type Options struct {
	Languages []model.LanguageTag
	Include   []string // doublestar patterns; empty matches everything
	Exclude   []string
	SkipTests bool
	MaxBytes  int64 // 0 means unlimited
	MaxFiles  int   // 0 means unlimited
}

// enryNames maps linguist language names to tags.
var enryNames = map[string]model.LanguageTag{
	"Python":      model.Python,
	"JavaScript":  model.JavaScript,
	"TypeScript":  model.TypeScript,
	"TSX":         model.TypeScript,
	"Java":        model.Java,
	"C#":          model.CSharp,
	"C++":         model.Cpp,
	"C":           model.Cpp,
	"Go":          model.Go,
	"Rust":        model.Rust,
	"PHP":         model.PHP,
	"Ruby":        model.Ruby,
	"Kotlin":      model.Kotlin,
	"Swift":       model.Swift,
	"Scala":       model.Scala,
	"Dart":        model.Dart,
	"R":           model.R,
	"MATLAB":      model.Matlab,
	"SQL":         model.SQL,
	"PLSQL":       model.SQL,
	"PLpgSQL":     model.SQL,
	"SQLPL":       model.SQL,
	"TSQL":        model.SQL,
	"HTML":        model.HTML,
	"CSS":         model.CSS,
	"Shell":       model.Bash,
	"PowerShell":  model.PowerShell,
	"YAML":        model.YAML,
	"JSON":        model.JSON,
	"XML":         model.XML,
	"Objective-C": model.ObjectiveC,
}

var skipDirs = map[string]struct{}{
	"__pycache__":   {},
	"node_modules":  {},
	".git":          {},
	".hg":           {},
	".svn":          {},
	"venv":          {},
	".venv":         {},
	"env":           {},
	"build":         {},
	"dist":          {},
	"target":        {},
	"vendor":        {},
	".tox":          {},
	".mypy_cache":   {},
	".pytest_cache": {},
}

// LanguageFor returns the tag for a file name, guessed from its extension or
// well-known file name. Ambiguous extensions resolve to the first candidate
// that has a tag.
func LanguageFor(name string) (model.LanguageTag, bool) {
	candidates := enry.GetLanguagesByExtension(name, nil, nil)
	if len(candidates) == 0 {
		candidates = enry.GetLanguagesByFilename(name, nil, nil)
	}
	for _, l := range candidates {
		if tag, ok := enryNames[l]; ok {
			return tag, true
		}
	}
	return model.Unknown, false
}

// Files discovers explainable source files under root, sorted by path.
func Files(root string, opts Options) ([]FileEntry, error) {
	for _, p := range append(append([]string{}, opts.Include...), opts.Exclude...) {
		if !doublestar.ValidatePattern(p) {
			return nil, fmt.Errorf("invalid pattern %q", p)
		}
	}

	langSet := make(map[model.LanguageTag]struct{}, len(opts.Languages))
	for _, l := range opts.Languages {
		langSet[l] = struct{}{}
	}
	gitFiles := gitLsFiles(root)
	var gi *ignore.GitIgnore
	if gitFiles == nil {
		gi = loadGitignore(root)
	}

	var results []FileEntry

	err := filepath.WalkDir(root, func(p string, d os.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}

		name := d.Name()

		if d.IsDir() {
			if p == root {
				return nil
			}
			if _, skip := skipDirs[name]; skip || strings.HasPrefix(name, ".") {
				return filepath.SkipDir
			}
			return nil
		}

		if strings.HasPrefix(name, ".") || d.Type()&os.ModeSymlink != 0 {
			return nil
		}

		rel, err := filepath.Rel(root, p)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)

		if gitFiles != nil {
			if _, ok := gitFiles[rel]; !ok {
				return nil
			}
		} else if gi != nil && gi.MatchesPath(rel) {
			return nil
		}

		if enry.IsVendor(rel) || !selected(rel, opts.Include, opts.Exclude) {
			return nil
		}
		if opts.SkipTests && IsTestFile(rel) {
			return nil
		}

		tag, ok := LanguageFor(name)
		if !ok {
			return nil
		}
		if len(langSet) > 0 {
			if _, ok := langSet[tag]; !ok {
				return nil
			}
		}

		info, err := d.Info()
		if err != nil {
			return nil
		}
		if opts.MaxBytes > 0 && info.Size() > opts.MaxBytes {
			return nil
		}

		results = append(results, FileEntry{Path: rel, Language: tag, Size: info.Size()})
		return nil
	})
	if err != nil {
		return nil, err
	}

	sort.Slice(results, func(i, j int) bool {
		return results[i].Path < results[j].Path
	})
	if opts.MaxFiles > 0 && len(results) > opts.MaxFiles {
		results = results[:opts.MaxFiles]
	}

	return results, nil
}

func selected(rel string, include, exclude []string) bool {
	for _, p := range exclude {
		if ok, _ := doublestar.Match(p, rel); ok {
			return false
		}
	}
	if len(include) == 0 {
		return true
	}
	for _, p := range include {
		if ok, _ := doublestar.Match(p, rel); ok {
			return true
		}
	}
	return false
}

var (
	testDirs     = map[string]struct{}{"test": {}, "tests": {}, "spec": {}, "__tests__": {}}
	testSuffixes = []string{"_test.go", "_test.py", "_spec.rb", "Test.java", "Tests.cs"}
	testInfixes  = []string{".test.", ".spec."}
)

// IsTestFile reports whether rel looks like test code.
func IsTestFile(rel string) bool {
	rel = filepath.ToSlash(rel)
	dir, base := path.Split(rel)
	for _, part := range strings.Split(strings.Trim(dir, "/"), "/") {
		if _, ok := testDirs[part]; ok {
			return true
		}
	}
	if strings.HasPrefix(base, "test_") {
		return true
	}
	for _, s := range testSuffixes {
		if strings.HasSuffix(base, s) {
			return true
		}
	}
	for _, s := range testInfixes {
		if strings.Contains(base, s) {
			return true
		}
	}
	return false
}

func gitLsFiles(root string) map[string]struct{} {
	gitDir := filepath.Join(root, ".git")
	info, err := os.Stat(gitDir)
	if err != nil || !info.IsDir() {
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cmd := exec.CommandContext(ctx, "git", "ls-files", "--cached", "--others", "--exclude-standard")
	cmd.Dir = root
	out, err := cmd.Output()
	if err != nil {
		return nil
	}

	files := make(map[string]struct{})
	for _, line := range strings.Split(strings.TrimRight(string(out), "\n"), "\n") {
		if line != "" {
			files[line] = struct{}{}
		}
	}
	return files
}

func loadGitignore(root string) *ignore.GitIgnore {
	gi, err := ignore.CompileIgnoreFile(filepath.Join(root, ".gitignore"))
	if err != nil {
		return nil
	}
	return gi
}
