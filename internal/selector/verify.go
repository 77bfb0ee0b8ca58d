package selector

import (
	"errors"
	"fmt"

	"github.com/arlojordan/selectest/internal/fqs"
)

// ErrInvalidTestsRun is returned when MarkVerified is given the zero
// TestsRun, i.e. one built by neither AllTestsRun nor RanTests.
var ErrInvalidTestsRun = errors.New("selector: tests_run must be AllTestsRun or built with RanTests")

// TestsRun selects which tests MarkVerified should treat as having run
// successfully. valid distinguishes a properly constructed TestsRun (via
// RanTests or AllTestsRun, including RanTests() with zero tests) from the
// unexported zero value — both "all=false, tests=nil" otherwise, which
// would make a legitimate "zero tests ran" call indistinguishable from an
// invalid, unconstructed TestsRun.
type TestsRun struct {
	valid bool
	all   bool
	tests []fqs.FQS
}

// AllTestsRun is the sentinel meaning "every selected test ran and
// passed" — merges all of the selection's changed hashes into the
// baseline.
var AllTestsRun = TestsRun{valid: true, all: true}

// RanTests builds a TestsRun from an explicit list of tests that ran
// successfully. Valid even when called with zero tests — that means "no
// tests ran," not "unconstructed."
func RanTests(tests ...fqs.FQS) TestsRun {
	return TestsRun{valid: true, tests: tests}
}

// MarkVerified merges s's changed hashes into baseline according to
// which tests actually ran and passed, returning which changed symbols
// were verified versus skipped. baseline is mutated in place and also
// returned for convenience.
//
// The zero TestsRun (never produced by RanTests or AllTestsRun) is
// rejected as a caller error — mirroring the contract that an invalid
// tests_run value must be surfaced, not silently treated as "nothing
// ran".
func MarkVerified(s *Selection, baseline map[fqs.FQS]string, run TestsRun) (map[fqs.FQS]string, VerifyResult, error) {
	if !run.valid {
		return nil, VerifyResult{}, fmt.Errorf("%w: got zero value", ErrInvalidTestsRun)
	}

	if run.all {
		for sym, h := range s.ChangedHashes {
			baseline[sym] = h
		}
		return baseline, VerifyResult{Verified: s.ChangedSymbols, Skipped: fqs.NewSet()}, nil
	}

	covered := fqs.NewSet()
	for _, t := range run.tests {
		for v := range s.dep.Reachable(t) {
			covered.Add(v)
		}
	}

	verified := fqs.NewSet()
	skipped := fqs.NewSet()
	for sym := range s.ChangedSymbols {
		if covered.Has(sym) {
			verified.Add(sym)
			baseline[sym] = s.ChangedHashes[sym]
		} else {
			skipped.Add(sym)
		}
	}

	return baseline, VerifyResult{Verified: verified, Skipped: skipped}, nil
}

// MarkAllVerified overwrites baseline wholesale with currentHashes,
// adopting the tool on a codebase without a prior verified baseline.
func MarkAllVerified(currentHashes map[fqs.FQS]string) map[fqs.FQS]string {
	out := make(map[fqs.FQS]string, len(currentHashes))
	for sym, h := range currentHashes {
		out[sym] = h
	}
	return out
}
