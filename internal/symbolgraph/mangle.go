package symbolgraph

import (
	"regexp"

	"github.com/arlojordan/selectest/internal/fqs"
)

// unsafeMangleChar matches anything NOT in the allowed symbol-syntax set.
var unsafeMangleChar = regexp.MustCompile(`[^A-Za-z0-9_\-!#$%&*<>:?|]`)

// MangleTestName synthesizes a stable FQS name for a macro-declared test:
//
//	N / "__" + replace(S, /[^A-Za-z0-9_\-!#$%&*<>:?|]/, "-") + "__"
//
// This rule is pinned to keep baselines portable across versions.
func MangleTestName(namespace, testName string) fqs.FQS {
	sanitized := unsafeMangleChar.ReplaceAllString(testName, "-")
	return fqs.FQS{Namespace: namespace, Name: "__" + sanitized + "__"}
}
