package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"strings"

	"github.com/arlojordan/selectest/internal/fqs"
)

// Fragment identifies a (start,end) line range (1-indexed, inclusive) to
// hash within a file. end is exclusive-of-absence: 0 means "not present".
type Fragment struct {
	Symbol    fqs.FQS
	StartLine int
	EndLine   int
}

// Hash extracts lines[startLine-1:endLine] (1-indexed, inclusive),
// normalizes, and SHA-256/hex-encodes the fragment. Returns ("", false)
// when the range is out of bounds for lines — the caller treats that as
// "absent", never as an error.
func Hash(lines []string, startLine, endLine int) (string, bool) {
	if startLine < 1 || endLine < startLine || endLine > len(lines) {
		return "", false
	}
	fragment := strings.Join(lines[startLine-1:endLine], "\n")
	normalized := normalize(fragment)
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:]), true
}

// SplitLines turns raw file content into a 1-indexed-friendly slice of
// lines (index 0 of the returned slice is line 1).
func SplitLines(content []byte) []string {
	text := string(content)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.Split(text, "\n")
}

// BulkHashFile hashes every fragment in fragments against a single read of
// path: the file is read once and the lines vector is reused across every
// symbol defined in it. An unreadable file yields an empty contribution,
// never an error.
func BulkHashFile(path string, fragments []Fragment) map[fqs.FQS]string {
	out := make(map[fqs.FQS]string, len(fragments))
	content, err := os.ReadFile(path)
	if err != nil {
		return out
	}
	lines := SplitLines(content)
	for _, f := range fragments {
		if h, ok := Hash(lines, f.StartLine, f.EndLine); ok {
			out[f.Symbol] = h
		}
	}
	return out
}

// BulkHashByFile groups fragments by file and hashes each file's fragments
// with a single read, merging the results. This is the shape used to hash
// every symbol in a graph at once, grouped by file to minimize I/O.
func BulkHashByFile(byFile map[string][]Fragment) map[fqs.FQS]string {
	out := make(map[fqs.FQS]string)
	for path, fragments := range byFile {
		for sym, h := range BulkHashFile(path, fragments) {
			out[sym] = h
		}
	}
	return out
}
