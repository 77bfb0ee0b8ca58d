// Package fact holds the typed representation of analyzer output: variable
// definitions, usages, and namespace definitions, plus the single-dialect
// filter rule applied uniformly to all three streams.
package fact

// Meta is an open metadata map. Reserved keys used elsewhere in the
// pipeline: is_test, is_integration, test_targets, test_target, test_name,
// private, macro, deprecated, integration.
type Meta map[string]any

// Bool reads a boolean-valued key, defaulting to false when absent or of
// the wrong type.
func (m Meta) Bool(key string) bool {
	if m == nil {
		return false
	}
	v, ok := m[key].(bool)
	return ok && v
}

// String reads a string-valued key, returning ("", false) when absent.
func (m Meta) String(key string) (string, bool) {
	if m == nil {
		return "", false
	}
	v, ok := m[key].(string)
	return v, ok
}

// Definition is a single top-level (or method-position) definition emitted
// by the external analyzer.
type Definition struct {
	Namespace  string
	Name       string
	File       string
	StartLine  int
	EndLine    int
	Dialect    string // e.g. "clj", "cljs"; "" means unspecified
	Enclosing  string // enclosing function name, if this def is nested
	DefinedBy  string // FQS string of the defining macro, e.g. "clojure.core/deftest"
	Metadata   Meta
}

// Usage is a single reference from one definition (or a namespace, when
// top-level) to another symbol.
type Usage struct {
	Namespace string // declaring namespace of the usage site
	Enclosing string // enclosing function name, "" if top-level
	Target    string // "ns/name" of the used symbol; may be unqualified
	TargetNS  string // resolved namespace of the target, if known
	File      string
	Line      int
	Dialect   string
}

// Namespace is a namespace-definition fact (an `ns` form or equivalent).
type Namespace struct {
	Name      string
	File      string
	StartLine int
	EndLine   int
	Dialect   string
	Metadata  Meta
}

// Facts is the three-stream analyzer output consumed by the symbol graph
// builder. The external analyzer (out of core scope) is expected to
// produce one of these per Analyze call.
type Facts struct {
	Definitions []Definition
	Usages      []Usage
	Namespaces  []Namespace
}

// FilterConfig configures the single-dialect filter rule.
type FilterConfig struct {
	// PrimaryDialect is the dialect tag that is always retained. A fact
	// with an empty/absent dialect tag is also retained.
	PrimaryDialect string
	// ExcludedExtension is a file extension (including the leading dot,
	// e.g. ".cljs") whose facts are dropped even if the dialect tag
	// itself would otherwise pass.
	ExcludedExtension string
}

func (c FilterConfig) keep(dialect, file string) bool {
	if dialect != "" && dialect != c.PrimaryDialect {
		return false
	}
	if c.ExcludedExtension != "" && hasExt(file, c.ExcludedExtension) {
		return false
	}
	return true
}

func hasExt(file, ext string) bool {
	if len(file) < len(ext) {
		return false
	}
	return file[len(file)-len(ext):] == ext
}

// Filter applies the single-dialect rule to every fact in f, returning a
// new Facts value containing only the retained facts. Dropped facts are
// simply omitted — filtering never errors.
func Filter(f Facts, cfg FilterConfig) Facts {
	out := Facts{
		Definitions: make([]Definition, 0, len(f.Definitions)),
		Usages:      make([]Usage, 0, len(f.Usages)),
		Namespaces:  make([]Namespace, 0, len(f.Namespaces)),
	}
	for _, d := range f.Definitions {
		if cfg.keep(d.Dialect, d.File) {
			out.Definitions = append(out.Definitions, d)
		}
	}
	for _, u := range f.Usages {
		if cfg.keep(u.Dialect, u.File) {
			out.Usages = append(out.Usages, u)
		}
	}
	for _, n := range f.Namespaces {
		if cfg.keep(n.Dialect, n.File) {
			out.Namespaces = append(out.Namespaces, n)
		}
	}
	return out
}
