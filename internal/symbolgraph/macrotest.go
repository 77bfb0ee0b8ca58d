package symbolgraph

import (
	"os"
	"strings"

	"github.com/arlojordan/selectest/internal/fqs"
	"github.com/arlojordan/selectest/internal/hash"
)

// macroTestCall is one synthesized test-macro call found while scanning a
// file.
type macroTestCall struct {
	Name      fqs.FQS // synthesized (mangled) FQS
	Namespace string
	TestName  string
	MacroFQS  fqs.FQS
	StartLine int
	EndLine   int
}

// scanMacroTestCalls finds every top-level form in path whose head token
// resolves (via usages) to one of the configured test-declaring macros,
// and extracts the string-literal test name that is its first argument.
//
// If path can't be read, this returns (nil, false) and the caller omits
// that file's macro tests without affecting any other file.
func scanMacroTestCalls(path string, candidates []Usage) ([]macroTestCall, bool) {
	if len(candidates) == 0 {
		return nil, true
	}
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, false
	}
	lines := hash.SplitLines(content)
	forms := topLevelForms(lines)

	var out []macroTestCall
	for _, c := range candidates {
		form, ok := formContainingLine(forms, c.Line)
		if !ok {
			continue
		}
		testName, ok := firstStringLiteralAfterHead(lines, form)
		if !ok {
			continue
		}
		out = append(out, macroTestCall{
			Name:      MangleTestName(c.Namespace, testName),
			Namespace: c.Namespace,
			TestName:  testName,
			MacroFQS:  c.MacroFQS,
			StartLine: form.startLine,
			EndLine:   form.endLine,
		})
	}
	return out, true
}

// Usage is the minimal shape scanMacroTestCalls needs from a fact.Usage
// that has already been identified as a call to a test-declaring macro.
type Usage struct {
	Namespace string
	Line      int
	MacroFQS  fqs.FQS
}

// formSpan is a top-level form's line range, 1-indexed inclusive.
type formSpan struct {
	startLine int
	endLine   int
}

// topLevelForms scans lines as a flat character stream (joined with "\n")
// and records the line range of every form at paren-depth 0->1, honoring
// string literals so parens inside strings don't perturb depth tracking.
func topLevelForms(lines []string) []formSpan {
	var spans []formSpan
	depth := 0
	line := 1
	startLine := 0
	inString := false

	for _, l := range lines {
		i := 0
		for i < len(l) {
			c := l[i]
			if inString {
				if c == '\\' && i+1 < len(l) {
					i += 2
					continue
				}
				if c == '"' {
					inString = false
				}
				i++
				continue
			}
			switch c {
			case '"':
				inString = true
			case '(':
				if depth == 0 {
					startLine = line
				}
				depth++
			case ')':
				if depth > 0 {
					depth--
					if depth == 0 {
						spans = append(spans, formSpan{startLine: startLine, endLine: line})
					}
				}
			}
			i++
		}
		line++
	}
	return spans
}

// formContainingLine returns the first recorded top-level form whose
// range covers targetLine.
func formContainingLine(forms []formSpan, targetLine int) (formSpan, bool) {
	for _, f := range forms {
		if targetLine >= f.startLine && targetLine <= f.endLine {
			return f, true
		}
	}
	return formSpan{}, false
}

// firstStringLiteralAfterHead scans a form's text (skipping the opening
// paren and macro-name token) for the first string literal — the macro
// call's test name.
func firstStringLiteralAfterHead(lines []string, form formSpan) (string, bool) {
	text := strings.Join(lines[form.startLine-1:form.endLine], "\n")
	runes := []rune(text)

	i := 0
	// Skip the opening '('.
	for i < len(runes) && runes[i] != '(' {
		i++
	}
	if i >= len(runes) {
		return "", false
	}
	i++
	// Skip whitespace, then the macro-name token.
	for i < len(runes) && isWS(runes[i]) {
		i++
	}
	for i < len(runes) && !isWS(runes[i]) && runes[i] != '"' && runes[i] != '(' && runes[i] != ')' {
		i++
	}
	// Scan forward for the first string literal.
	for i < len(runes) {
		if runes[i] == '"' {
			start := i + 1
			j := start
			for j < len(runes) {
				if runes[j] == '\\' && j+1 < len(runes) {
					j += 2
					continue
				}
				if runes[j] == '"' {
					return string(runes[start:j]), true
				}
				j++
			}
			return "", false
		}
		i++
	}
	return "", false
}

func isWS(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}
