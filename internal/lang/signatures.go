package lang

import "github.com/phobologic/codeexplain/internal/model"

// defaultSignatures returns the heuristic detection table. The order is part
// of the contract: scoring ties resolve to the language listed first.
func defaultSignatures() []Signature {
	return []Signature{
		{model.Python, []string{
			`\bdef\s+\w+\s*\(`, `\bimport\s+\w+`, `\bfrom\s+\w+\s+import\b`,
			`\bprint\s*\(`, `\bif\s+.*:`, `\bfor\s+.*:`, `\bwhile\s+.*:`,
			`\btry\s*:`, `\bclass\s+\w+.*:`, `\bwith\s+.*:`, `\bexcept\s*.*:`,
			`\belif\s+.*:`, `\bpass\b`, `\bNone\b`, `\bTrue\b`, `\bFalse\b`,
		}},
		{model.JavaScript, []string{
			`\bfunction\s+\w+\s*\(`, `\bconst\s+\w+`, `\blet\s+\w+`, `\bvar\s+\w+`,
			`=>`, `\bconsole\.log\b`, `\bdocument\b`, `\bwindow\b`,
			`\breturn\b`, `\{\s*$`, `\}\s*$`, `\bnew\s+\w+`, `\bthis\.`,
			`\bfunction\s*\(`, `\b(null|undefined)\b`,
		}},
		{model.TypeScript, []string{
			`\binterface\s+\w+`, `\btype\s+\w+\s*=`, `:\s*(string|number|boolean)`,
			`\bexport\s+interface`, `\bimport\s+.*\bfrom\b`, `<.*>`,
			`\bgeneric\b`, `\bnamespace\s+\w+`,
		}},
		{model.Java, []string{
			`\bpublic\s+class\s+\w+`, `\bpublic\s+static\s+void\s+main`,
			`\bprivate\s+\w+`, `\bprotected\s+\w+`, `\bSystem\.out\.println`,
			`\bvoid\s+\w+\s*\(`, `\bString\s+\w+`, `\bint\s+\w+`, `\bboolean\s+\w+`,
			`\bpublic\s+\w+\s+\w+\s*\(`, `\bthrows\s+\w+`, `\bextends\s+\w+`,
			`\bimplements\s+\w+`, `\bpackage\s+[\w.]+;`,
		}},
		{model.CSharp, []string{
			`\busing\s+System`, `\bnamespace\s+\w+`, `\bpublic\s+class\s+\w+`,
			`\bpublic\s+static\s+void\s+Main`, `\bConsole\.WriteLine`,
			`\bprivate\s+\w+`, `\bpublic\s+\w+`, `\bprotected\s+\w+`,
			`\bstring\s+\w+`, `\bint\s+\w+`, `\bbool\s+\w+`, `\bvar\s+\w+\s*=`,
			`\bnew\s+\w+\s*\(`, `\bget\s*;`, `\bset\s*;`, `\bthis\.`,
			`\boverride\s+\w+`, `\bvirtual\s+\w+`, `\babstract\s+\w+`,
		}},
		{model.Cpp, []string{
			`\b#include\s*<.*>`, `\bstd::`, `\bint\s+main\s*\(`,
			`\bcout\s*<<`, `\bcin\s*>>`, `\bnamespace\s+\w+`,
			`\busing\s+namespace\s+std`, `\bclass\s+\w+`, `\bpublic\s*:`,
			`\bprivate\s*:`, `\bprotected\s*:`, `\bvirtual\s+\w+`,
			`\btemplate\s*<.*>`, `\btypedef\s+\w+`,
		}},
		{model.Go, []string{
			`\bpackage\s+main`, `\bfunc\s+main\s*\(\)`, `\bfunc\s+\w+\s*\(`,
			`\bimport\s+\(`, `\bfmt\.Print`, `\bvar\s+\w+\s+\w+`,
			`\btype\s+\w+\s+struct`, `\bgo\s+\w+\s*\(`, `\bchan\s+\w+`,
			`\brange\s+\w+`, `\bdefer\s+\w+`, `\binterface\s*\{`,
		}},
		{model.Rust, []string{
			`\bfn\s+main\s*\(\)`, `\bfn\s+\w+\s*\(`, `\blet\s+\w+`,
			`\blet\s+mut\s+\w+`, `\bprintln!\s*\(`, `\buse\s+\w+`,
			`\bstruct\s+\w+`, `\bimpl\s+\w+`, `\btrait\s+\w+`,
			`\bmatch\s+\w+`, `\bSome\s*\(`, `\bNone\b`, `\bResult\s*<`,
		}},
		{model.PHP, []string{
			`<\?php`, `\$\w+`, `\becho\s+`, `\bprint\s+`,
			`\bfunction\s+\w+\s*\(`, `\bclass\s+\w+`, `\bpublic\s+function`,
			`\bprivate\s+function`, `\bprotected\s+function`, `\bextends\s+\w+`,
			`\bimplements\s+\w+`, `\bnew\s+\w+\s*\(`,
		}},
		{model.Ruby, []string{
			`\bdef\s+\w+`, `\bclass\s+\w+`, `\bmodule\s+\w+`,
			`\bputs\s+`, `\bprint\s+`, `\bbegin\b`, `\brescue\b`,
			`\bensure\b`, `\bend\b`, `\bif\s+.*\bthen\b`, `\bunless\s+`,
			`\bcase\s+`, `\bwhen\s+`, `@\w+`, `@@\w+`,
		}},
		{model.Kotlin, []string{
			`\bfun\s+main\s*\(`, `\bfun\s+\w+\s*\(`, `\bval\s+\w+`,
			`\bvar\s+\w+`, `\bclass\s+\w+`, `\bobject\s+\w+`,
			`\bdata\s+class`, `\bsealed\s+class`, `\bwhen\s*\(`,
			`\bprintln\s*\(`, `\bcompanion\s+object`,
		}},
		{model.Swift, []string{
			`\bfunc\s+\w+\s*\(`, `\bvar\s+\w+\s*:`, `\blet\s+\w+\s*:`,
			`\bclass\s+\w+`, `\bstruct\s+\w+`, `\benum\s+\w+`,
			`\bprotocol\s+\w+`, `\bextension\s+\w+`, `\bprint\s*\(`,
			`\bif\s+let\s+`, `\bguard\s+let`, `\bswitch\s+\w+`,
		}},
		{model.Scala, []string{
			`\bobject\s+\w+`, `\bdef\s+main\s*\(`, `\bdef\s+\w+\s*\(`,
			`\bval\s+\w+`, `\bvar\s+\w+`, `\bclass\s+\w+`, `\btrait\s+\w+`,
			`\bcase\s+class`, `\bcase\s+object`, `\bmatch\s*\{`,
			`\bprintln\s*\(`, `\bimport\s+scala`,
		}},
		{model.Dart, []string{
			`\bvoid\s+main\s*\(`, `\bclass\s+\w+`, `\bString\s+\w+`,
			`\bint\s+\w+`, `\bdouble\s+\w+`, `\bbool\s+\w+`,
			`\bprint\s*\(`, `\bfinal\s+\w+`, `\bconst\s+\w+`,
			`\bextends\s+\w+`, `\bimplements\s+\w+`, `\basync\s+\w+`,
		}},
		{model.R, []string{
			`\blibrary\s*\(`, `\brequire\s*\(`, `\bfunction\s*\(`,
			`\bdata\.frame\s*\(`, `\bc\s*\(`, `\blist\s*\(`,
			`\bggplot\s*\(`, `\baes\s*\(`, `\bsummary\s*\(`,
			`<-`, `\bprint\s*\(`, `\bcat\s*\(`,
		}},
		{model.Matlab, []string{
			`\bfunction\s+.*=\s*\w+\s*\(`, `\bend\s*$`, `\bdisp\s*\(`,
			`\bfprintf\s*\(`, `\bplot\s*\(`, `\bfigure\s*\(`,
			`\bhold\s+on`, `\bhold\s+off`, `%.*$`, `\bclc\b`, `\bclear\b`,
		}},
		{model.SQL, []string{
			`\bSELECT\s+.*\bFROM\b`, `\bINSERT\s+INTO\b`, `\bUPDATE\s+.*\bSET\b`,
			`\bDELETE\s+FROM\b`, `\bCREATE\s+TABLE\b`, `\bDROP\s+TABLE\b`,
			`\bALTER\s+TABLE\b`, `\bWHERE\s+`, `\bORDER\s+BY\b`,
			`\bGROUP\s+BY\b`, `\bHAVING\s+`, `\bJOIN\s+.*\bON\b`,
		}},
		{model.HTML, []string{
			`<!DOCTYPE\s+html>`, `<html.*>`, `<head.*>`, `<body.*>`,
			`<div.*>`, `<span.*>`, `<p.*>`, `<a\s+href=`,
			`<img\s+src=`, `<script.*>`, `<style.*>`, `<link.*>`,
		}},
		{model.CSS, []string{
			`[\w-]+\s*\{`, `[\w-]+\s*:\s*[^;]+;`, `@import\s+`,
			`@media\s+`, `@keyframes\s+`, `#[\w-]+\s*\{`,
			`\.[\w-]+\s*\{`, `color\s*:`, `background\s*:`,
			`margin\s*:`, `padding\s*:`, `font-size\s*:`,
		}},
		{model.Bash, []string{
			`#!/bin/bash`, `#!/bin/sh`, `\becho\s+`, `\bif\s+\[`,
			`\bfi\b`, `\bfor\s+\w+\s+in\b`, `\bdone\b`, `\bwhile\s+\[`,
			`\bfunction\s+\w+\s*\(`, `\$\w+`, `\$\{.*\}`, `\bexport\s+`,
		}},
		{model.PowerShell, []string{
			`\$\w+`, `\bWrite-Host\b`, `\bGet-\w+`, `\bSet-\w+`,
			`\bNew-\w+`, `\bRemove-\w+`, `\bInvoke-\w+`, `\bTest-\w+`,
			`\bif\s*\(.*\)\s*\{`, `\bforeach\s*\(`, `\bparam\s*\(`,
			`\bfunction\s+\w+\s*\{`, `\[string\]`, `\[int\]`,
		}},
		{model.YAML, []string{
			`^\s*\w+\s*:`, `^\s*-\s+\w+`, `---\s*$`, `^\s*#.*`,
			`^\s*\w+\s*:\s*\|`, `^\s*\w+\s*:\s*>`, `^\s*\w+\s*:\s*\[`,
			`version\s*:`, `apiVersion\s*:`, `kind\s*:`,
		}},
		{model.JSON, []string{
			`^\s*\{`, `^\s*\[`, `"\w+"\s*:\s*`, `"\w+"\s*:\s*"`,
			`"\w+"\s*:\s*\d+`, `"\w+"\s*:\s*true`, `"\w+"\s*:\s*false`,
			`"\w+"\s*:\s*null`, `^\s*\}`, `^\s*\]`,
		}},
		{model.XML, []string{
			`<\?xml\s+version=`, `<\w+.*?>`, `</\w+>`, `<\w+\s+.*?/>`,
			`<!\[CDATA\[`, `<!--.*?-->`, `<!\s*DOCTYPE\s+`,
			`xmlns\s*=`, `<\w+:\w+.*?>`,
		}},
		{model.ObjectiveC, []string{
			`#import\s+[<"]`, `@interface\s+\w+`, `@implementation\s+\w+`,
			`@property\s*\(`, `\bNSLog\s*\(`, `\bNS\w+\s*\*`,
		}},
	}
}

// defaultBoundaries returns the top-level declaration patterns that start a
// new block. They are language-agnostic on purpose: detection may be wrong
// or the snippet may mix languages.
func defaultBoundaries() []string {
	return []string{
		`^\s*def\s+(\w+)`,
		`^\s*class\s+(\w+)`,
		`^\s*function\s+(\w+)`,
		`^\s*public\s+class\s+(\w+)`,
		`^\s*public\s+static\s+\w+\s+(\w+)`,
		`^\s*namespace\s+(\w+)`,
		`^\s*using\s+System`,
		`^\s*package\s+[\w.]+`,
		`^\s*func\s+(\w+)`,
		`^\s*fn\s+(\w+)`,
	}
}

// defaultVocabulary is the closed answer set for remote detection, in the
// order used when scanning a free-form answer for a known name.
func defaultVocabulary() []model.LanguageTag {
	return []model.LanguageTag{
		model.Python, model.JavaScript, model.Java, model.CSharp, model.Cpp,
		model.TypeScript, model.Go, model.Rust, model.Kotlin, model.Swift,
		model.PHP, model.Ruby, model.Scala, model.Dart, model.R, model.Matlab,
		model.SQL, model.HTML, model.CSS, model.Bash, model.PowerShell,
		model.YAML, model.JSON, model.XML, model.ObjectiveC,
	}
}

func defaultAliases() map[string]model.LanguageTag {
	return map[string]model.LanguageTag{
		"c#":           model.CSharp,
		"c sharp":      model.CSharp,
		"c++":          model.Cpp,
		"c plus plus":  model.Cpp,
		"js":           model.JavaScript,
		"ts":           model.TypeScript,
		"py":           model.Python,
		"rb":           model.Ruby,
		"sh":           model.Bash,
		"shell":        model.Bash,
		"ps1":          model.PowerShell,
		"yml":          model.YAML,
		"objective-c":  model.ObjectiveC,
		"objc":         model.ObjectiveC,
		"golang":       model.Go,
		"node":         model.JavaScript,
		"node.js":      model.JavaScript,
		"postgres":     model.SQL,
		"postgresql":   model.SQL,
		"shell script": model.Bash,
	}
}
