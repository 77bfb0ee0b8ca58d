// Package hash implements the content hasher: it extracts a symbol's
// source fragment, strips docstrings with a hand-written character-stream
// scanner, collapses whitespace, and SHA-256s the result.
//
// The scanner is deliberately not a full parser: preserving the exact
// source tokens downstream of the head keeps quoting variants from
// affecting hashes.
package hash

import "strings"

// normalize strips docstrings from src and collapses whitespace.
func normalize(src string) string {
	stripped := stripDocstrings(src)
	return collapseWhitespace(stripped)
}

// stripDocstrings scans src as a character stream with string-literal and
// escape awareness. Whenever it finds "(defXxx name [docstring-or-params]"
// it elides the docstring, if present, from the output.
func stripDocstrings(src string) string {
	var out strings.Builder
	out.Grow(len(src))

	runes := []rune(src)
	i := 0
	n := len(runes)

	for i < n {
		c := runes[i]

		if c == '"' {
			start := i
			i = skipStringLiteral(runes, i)
			out.WriteString(string(runes[start:i]))
			continue
		}

		if c == '(' && i+1 < n {
			headStart := i + 1
			if isDefHead(runes, headStart) {
				// Emit "(" and the def-head token itself, then try to
				// locate and elide a docstring past the name (and
				// optional parameter vector).
				headEnd := scanToken(runes, headStart)
				out.WriteRune('(')
				out.WriteString(string(runes[headStart:headEnd]))

				i = skipNameAndElideDocstring(runes, headEnd, &out)
				continue
			}
		}

		out.WriteRune(c)
		i++
	}

	return out.String()
}

// isDefHead reports whether runes[pos:] begins with an identifier whose
// name starts with "def" (e.g. defn, deftest, defrecord).
func isDefHead(runes []rune, pos int) bool {
	end := scanToken(runes, pos)
	tok := string(runes[pos:end])
	return strings.HasPrefix(tok, "def")
}

// scanToken returns the index just past the identifier token starting at
// pos (stops at whitespace or a delimiter).
func scanToken(runes []rune, pos int) int {
	i := pos
	for i < len(runes) && !isDelim(runes[i]) {
		i++
	}
	return i
}

func isDelim(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r', '(', ')', '[', ']', '{', '}', '"':
		return true
	}
	return false
}

// skipNameAndElideDocstring consumes whitespace, the name token, more
// whitespace, and then either a docstring (elided) in the
// "(def name \"doc\" ...)" position, or a parameter vector followed by an
// optional docstring in the "(defn name [params] \"doc\" ...)" position.
// Everything consumed is written to out verbatim except any elided
// docstring. Returns the new scan position.
func skipNameAndElideDocstring(runes []rune, pos int, out *strings.Builder) int {
	n := len(runes)

	// Whitespace before the name.
	pos = copyWhitespace(runes, pos, out)
	if pos >= n {
		return pos
	}

	// The name token itself (may be absent, e.g. anonymous forms).
	nameEnd := scanToken(runes, pos)
	out.WriteString(string(runes[pos:nameEnd]))
	pos = nameEnd

	// Whitespace after the name.
	pos = copyWhitespace(runes, pos, out)
	if pos >= n {
		return pos
	}

	switch runes[pos] {
	case '"':
		// Docstring directly after the name: elide it.
		return skipStringLiteral(runes, pos)
	case '[':
		// Parameter vector: copy it verbatim, then look past it for a
		// trailing docstring.
		end := matchBracket(runes, pos, '[', ']')
		out.WriteString(string(runes[pos:end]))
		pos = end

		after := copyWhitespace(runes, pos, out)
		if after < n && runes[after] == '"' {
			return skipStringLiteral(runes, after)
		}
		return after
	default:
		return pos
	}
}

// copyWhitespace copies a maximal run of whitespace from runes[pos:] into
// out and returns the position just past it.
func copyWhitespace(runes []rune, pos int, out *strings.Builder) int {
	start := pos
	for pos < len(runes) && isWhitespace(runes[pos]) {
		pos++
	}
	out.WriteString(string(runes[start:pos]))
	return pos
}

func isWhitespace(r rune) bool {
	switch r {
	case ' ', '\t', '\n', '\r':
		return true
	}
	return false
}

// skipStringLiteral returns the index just past the string literal
// starting at pos (which must point at the opening '"'), honoring
// backslash escapes.
func skipStringLiteral(runes []rune, pos int) int {
	n := len(runes)
	i := pos + 1
	for i < n {
		if runes[i] == '\\' && i+1 < n {
			i += 2
			continue
		}
		if runes[i] == '"' {
			return i + 1
		}
		i++
	}
	return n
}

// matchBracket returns the index just past the closing bracket matching
// the opening bracket at pos, honoring nested brackets and string
// literals within.
func matchBracket(runes []rune, pos int, open, close rune) int {
	n := len(runes)
	if pos >= n || runes[pos] != open {
		return pos
	}
	depth := 0
	i := pos
	for i < n {
		switch runes[i] {
		case '"':
			i = skipStringLiteral(runes, i)
			continue
		case open:
			depth++
		case close:
			depth--
			if depth == 0 {
				return i + 1
			}
		}
		i++
	}
	return n
}

// collapseWhitespace replaces maximal runs of whitespace with a single
// space and trims the result.
func collapseWhitespace(s string) string {
	var out strings.Builder
	out.Grow(len(s))
	inRun := false
	for _, r := range s {
		if isWhitespace(r) {
			if !inRun {
				out.WriteByte(' ')
				inRun = true
			}
			continue
		}
		inRun = false
		out.WriteRune(r)
	}
	return strings.TrimSpace(out.String())
}
