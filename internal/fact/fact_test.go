package fact

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMeta_BoolAndString(t *testing.T) {
	m := Meta{"is_test": true, "test_name": "handles-empty-input"}
	assert.True(t, m.Bool("is_test"))
	assert.False(t, m.Bool("is_integration"))
	assert.False(t, Meta(nil).Bool("is_test"))

	name, ok := m.String("test_name")
	assert.True(t, ok)
	assert.Equal(t, "handles-empty-input", name)

	_, ok = m.String("missing")
	assert.False(t, ok)
}

func TestFilter_RetainsPrimaryDialectAndAbsent(t *testing.T) {
	cfg := FilterConfig{PrimaryDialect: "clj", ExcludedExtension: ".cljs"}
	facts := Facts{
		Definitions: []Definition{
			{Namespace: "ns", Name: "a", File: "ns/a.clj", Dialect: "clj"},
			{Namespace: "ns", Name: "b", File: "ns/b.cljs", Dialect: "cljs"},
			{Namespace: "ns", Name: "c", File: "ns/c.edn", Dialect: ""},
		},
	}

	out := Filter(facts, cfg)
	assert.Len(t, out.Definitions, 2)
	names := []string{out.Definitions[0].Name, out.Definitions[1].Name}
	assert.Contains(t, names, "a")
	assert.Contains(t, names, "c")
}

func TestFilter_DropsExcludedExtensionEvenWithMatchingDialect(t *testing.T) {
	cfg := FilterConfig{PrimaryDialect: "clj", ExcludedExtension: ".cljs"}
	facts := Facts{
		Definitions: []Definition{
			{Namespace: "ns", Name: "a", File: "ns/a.cljs", Dialect: "clj"},
		},
	}
	out := Filter(facts, cfg)
	assert.Empty(t, out.Definitions)
}

func TestFilter_AppliesUniformlyToUsagesAndNamespaces(t *testing.T) {
	cfg := FilterConfig{PrimaryDialect: "clj"}
	facts := Facts{
		Usages:     []Usage{{Namespace: "ns", Target: "a", Dialect: "cljs"}},
		Namespaces: []Namespace{{Name: "ns", Dialect: "cljs"}},
	}
	out := Filter(facts, cfg)
	assert.Empty(t, out.Usages)
	assert.Empty(t, out.Namespaces)
}

func TestAnalyzeError_UnwrapsAndFormats(t *testing.T) {
	inner := assert.AnError
	err := &AnalyzeError{Err: inner}
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "analyzer failed")
}
