package lang

import "github.com/phobologic/codeexplain/internal/model"

// defaultFeatures returns the structural classification table. Patterns run
// against the raw line; a line may contribute to several features.
func defaultFeatures() []FeatureSpec {
	return []FeatureSpec{
		{FeatureFunction, []string{`^\s*def\s+(\w+)`, `^\s*function\s+(\w+)`, `^\s*func\s+(\w+)`, `^\s*fn\s+(\w+)`}},
		{FeatureClass, []string{`^\s*class\s+(\w+)`, `^\s*public\s+class\s+(\w+)`}},
		{FeatureVariable, []string{`^\s*(\w+)\s*=`, `^\s*let\s+(\w+)`, `^\s*var\s+(\w+)`, `^\s*const\s+(\w+)`}},
		{FeatureConditional, []string{`^\s*if\s+`, `^\s*elif\s+`, `^\s*else\s*:`, `^\s*switch\s+`}},
		{FeatureLoop, []string{`^\s*for\s+`, `^\s*while\s+`, `^\s*foreach\s+`}},
		{FeatureErrorHandling, []string{`^\s*try\s*:`, `^\s*catch\s*`, `^\s*except\s*`, `^\s*finally\s*`}},
		{FeatureReturn, []string{`^\s*return\s+`}},
		{FeatureImport, []string{`^\s*import\s+`, `^\s*from\s+.*import`, `^\s*using\s+`, `^\s*#include`}},
		{FeatureOutput, []string{`^\s*print\s*\(`, `^\s*console\.log`, `^\s*Console\.WriteLine`, `^\s*println!`}},
	}
}

// defaultLineRules returns the inline-comment table. Patterns run against the
// stripped line and the first match wins.
func defaultLineRules() []LineRuleSpec {
	return []LineRuleSpec{
		{`^def\s+(\w+)`, "Define function %s"},
		{`^(?:func|fn|function)\s+(\w+)`, "Define function %s"},
		{`^(?:public\s+)?class\s+(\w+)`, "Define class %s"},
		{`^(\w+)\s*=`, "Set %s variable"},
		{`^(?:let|var|const)\s+(?:mut\s+)?(\w+)`, "Set %s variable"},
		{`^if\s+`, "Check condition"},
		{`^elif\s+`, "Check alternative condition"},
		{`^else\s*:`, "Handle remaining cases"},
		{`^for\s+`, "Start loop iteration"},
		{`^while\s+`, "Start conditional loop"},
		{`^try\s*:`, "Begin error handling"},
		{`^except\b.*:`, "Handle errors"},
		{`^finally\s*:`, "Cleanup operations"},
		{`^return\s+`, "Return result"},
		{`^(?:print\s*\(|console\.log|Console\.WriteLine|println!)`, "Display output"},
		{`^import\s+`, "Import module"},
		{`^from\s+.*import`, "Import specific items"},
		{`^#include\b`, "Include header"},
	}
}

func defaultDisplayNames() map[model.LanguageTag]string {
	return map[model.LanguageTag]string{
		model.Python:     "Python",
		model.JavaScript: "JavaScript",
		model.TypeScript: "TypeScript",
		model.Java:       "Java",
		model.CSharp:     "C#",
		model.Cpp:        "C++",
		model.Go:         "Go",
		model.Rust:       "Rust",
		model.PHP:        "PHP",
		model.Ruby:       "Ruby",
		model.Kotlin:     "Kotlin",
		model.Swift:      "Swift",
		model.Scala:      "Scala",
		model.Dart:       "Dart",
		model.R:          "R",
		model.Matlab:     "MATLAB",
		model.SQL:        "SQL",
		model.HTML:       "HTML",
		model.CSS:        "CSS",
		model.Bash:       "Bash",
		model.PowerShell: "PowerShell",
		model.YAML:       "YAML",
		model.JSON:       "JSON",
		model.XML:        "XML",
		model.ObjectiveC: "Objective-C",
	}
}

func defaultStyles() map[model.LanguageTag]CommentStyle {
	hash := CommentStyle{Prefix: "#"}
	markup := CommentStyle{Prefix: "<!--", Suffix: "-->"}
	return map[model.LanguageTag]CommentStyle{
		model.Python:     hash,
		model.Ruby:       hash,
		model.R:          hash,
		model.Bash:       hash,
		model.PowerShell: hash,
		model.YAML:       hash,
		model.SQL:        {Prefix: "--"},
		model.Matlab:     {Prefix: "%"},
		model.HTML:       markup,
		model.XML:        markup,
		model.CSS:        {Prefix: "/*", Suffix: "*/"},
	}
}
