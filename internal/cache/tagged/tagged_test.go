package tagged

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_ScalarsRoundTrip(t *testing.T) {
	cases := []any{nil, true, false, 42, "hello \"quoted\"\nworld"}
	for _, v := range cases {
		encoded := Encode(v)
		decoded, err := Decode(encoded)
		require.NoError(t, err)
		assert.Equal(t, v, decoded)
	}
}

func TestEncodeDecode_Symbol(t *testing.T) {
	encoded := Encode(Symbol("myapp.core/f"))
	assert.Equal(t, `#sym "myapp.core/f"`, encoded)

	decoded, err := Decode(encoded)
	require.NoError(t, err)
	assert.Equal(t, Symbol("myapp.core/f"), decoded)
}

func TestEncodeDecode_List(t *testing.T) {
	l := List{"a", 1, true}
	decoded, err := Decode(Encode(l))
	require.NoError(t, err)
	assert.Equal(t, List(l), decoded)
}

func TestEncodeDecode_Set(t *testing.T) {
	s := Set{"b", "a", "c"}
	decoded, err := Decode(Encode(s))
	require.NoError(t, err)
	set, ok := decoded.(Set)
	require.True(t, ok)
	assert.ElementsMatch(t, []any{"a", "b", "c"}, []any(set))
}

func TestSet_EncodesInSortedOrder(t *testing.T) {
	s := Set{"z", "a", "m"}
	encoded := Encode(s)
	assert.Equal(t, `#{"a" "m" "z"}`, encoded)
}

func TestEncodeDecode_Map(t *testing.T) {
	m := Map{
		{Key: "a", Value: 1},
		{Key: "b", Value: "two"},
	}
	decoded, err := Decode(Encode(m))
	require.NoError(t, err)
	out, ok := decoded.(Map)
	require.True(t, ok)

	v, ok := out.Get("a")
	require.True(t, ok)
	assert.Equal(t, 1, v)

	v, ok = out.Get("b")
	require.True(t, ok)
	assert.Equal(t, "two", v)
}

func TestMap_SymbolKeyDecodesToPlainString(t *testing.T) {
	m := Map{{Key: Symbol("ns/sym"), Value: true}}
	decoded, err := Decode(Encode(m))
	require.NoError(t, err)
	out, ok := decoded.(Map)
	require.True(t, ok)

	v, ok := out.Get("ns/sym")
	require.True(t, ok)
	assert.Equal(t, true, v)
}

func TestDecode_NestedStructure(t *testing.T) {
	m := Map{
		{Key: "nodes", Value: List{
			Map{{Key: "kind", Value: "var"}, {Key: "tags", Value: Set{"x", "y"}}},
		}},
	}
	decoded, err := Decode(Encode(m))
	require.NoError(t, err)
	out := decoded.(Map)
	nodes, ok := out.Get("nodes")
	require.True(t, ok)
	list, ok := nodes.(List)
	require.True(t, ok)
	require.Len(t, list, 1)
}

func TestDecode_UnterminatedListIsError(t *testing.T) {
	_, err := Decode("(1 2 3")
	assert.Error(t, err)
}

func TestDecode_UnknownTagIsError(t *testing.T) {
	_, err := Decode(`#bogus "x"`)
	assert.Error(t, err)
}

func TestDecode_TrailingInputIsError(t *testing.T) {
	_, err := Decode(`1 2`)
	assert.Error(t, err)
}

func TestDecode_EmptyMapAndList(t *testing.T) {
	decoded, err := Decode("{}")
	require.NoError(t, err)
	assert.Empty(t, decoded.(Map))

	decoded, err = Decode("()")
	require.NoError(t, err)
	assert.Empty(t, decoded.(List))
}
