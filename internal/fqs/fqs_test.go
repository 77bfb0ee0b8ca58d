package fqs

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStringAndParseRoundTrip(t *testing.T) {
	sym := New("myapp.core", "handler")
	s := sym.String()
	assert.Equal(t, "myapp.core/handler", s)

	back, ok := Parse(s)
	require.True(t, ok)
	assert.Equal(t, sym, back)
}

func TestParse_NoSlash(t *testing.T) {
	_, ok := Parse("no-slash-here")
	assert.False(t, ok)
}

func TestParse_NamespaceContainsDots(t *testing.T) {
	sym, ok := Parse("myapp.core.util/helper")
	require.True(t, ok)
	assert.Equal(t, "myapp.core.util", sym.Namespace)
	assert.Equal(t, "helper", sym.Name)
}

func TestIsZero(t *testing.T) {
	assert.True(t, FQS{}.IsZero())
	assert.False(t, New("ns", "name").IsZero())
}

func TestLess_OrdersByNamespaceThenName(t *testing.T) {
	a := New("a", "z")
	b := New("b", "a")
	assert.True(t, Less(a, b))
	assert.False(t, Less(b, a))

	c := New("a", "a")
	assert.True(t, Less(c, a))
}

func TestSet_AddHasSlice(t *testing.T) {
	s := NewSet(New("ns", "a"), New("ns", "b"), New("ns", "a"))
	assert.Len(t, s, 2)
	assert.True(t, s.Has(New("ns", "a")))
	assert.False(t, s.Has(New("ns", "z")))

	s.Add(New("ns", "z"))
	assert.True(t, s.Has(New("ns", "z")))

	slice := s.Slice()
	require.Len(t, slice, 3)
	assert.True(t, SortedFQSSlice(slice))
}

func TestSet_Intersects(t *testing.T) {
	a := NewSet(New("ns", "a"), New("ns", "b"))
	b := NewSet(New("ns", "b"), New("ns", "c"))
	c := NewSet(New("ns", "x"))

	assert.True(t, a.Intersects(b))
	assert.False(t, a.Intersects(c))
}

func TestSortFQS(t *testing.T) {
	items := []FQS{New("z", "a"), New("a", "z"), New("a", "a")}
	SortFQS(items)
	assert.Equal(t, []FQS{New("a", "a"), New("a", "z"), New("z", "a")}, items)
}

// SortedFQSSlice reports whether items is sorted per Less, a small local
// helper kept in the test file since it's only needed for assertions here.
func SortedFQSSlice(items []FQS) bool {
	for i := 1; i < len(items); i++ {
		if Less(items[i], items[i-1]) {
			return false
		}
	}
	return true
}
