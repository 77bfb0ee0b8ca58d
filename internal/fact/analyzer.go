package fact

import "context"

// Analyzer is the external static-analyzer contract consumed by the symbol
// graph builder. The core never implements one of these itself — analysis
// is an out-of-scope collaborator. internal/analyzer/goref ships a
// reference implementation so the pipeline is runnable end to end.
type Analyzer interface {
	// Analyze produces facts for the given source paths. Config is
	// analyzer-specific (opaque to the core).
	Analyze(ctx context.Context, paths []string, config map[string]any) (Facts, error)
}

// AnalyzeError wraps a failure from an external Analyzer. It is propagated
// to the caller, never recovered locally, and carries whatever value the
// analyzer itself returned so the caller can inspect analyzer-specific
// diagnostics.
type AnalyzeError struct {
	Detail any
	Err    error
}

func (e *AnalyzeError) Error() string {
	if e.Err != nil {
		return "analyzer failed: " + e.Err.Error()
	}
	return "analyzer failed"
}

func (e *AnalyzeError) Unwrap() error { return e.Err }
