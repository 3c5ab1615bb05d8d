package jsondoc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_PreservesKeyOrder(t *testing.T) {
	obj, err := Parse([]byte(`{"zebra":1,"apple":2,"mango":{"x":true}}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"zebra", "apple", "mango"}, obj.Keys())
}

func TestParse_RejectsNonObject(t *testing.T) {
	_, err := Parse([]byte(`[1,2,3]`))
	assert.Error(t, err)

	_, err = Parse([]byte(`"str"`))
	assert.Error(t, err)
}

func TestObject_SetAndDelete(t *testing.T) {
	obj, err := Parse([]byte(`{"a":1,"b":2,"c":3}`))
	require.NoError(t, err)

	require.NoError(t, obj.Set("b", 20))
	require.NoError(t, obj.Set("d", "new"))
	assert.Equal(t, []string{"a", "b", "c", "d"}, obj.Keys(), "set keeps position, new key appends")

	assert.True(t, obj.Delete("a"))
	assert.False(t, obj.Delete("a"), "second delete reports absence")
	assert.Equal(t, []string{"b", "c", "d"}, obj.Keys())

	var b int
	require.NoError(t, obj.Get("b", &b))
	assert.Equal(t, 20, b)
}

func TestObject_String(t *testing.T) {
	obj, err := Parse([]byte(`{"s":"hello","n":42}`))
	require.NoError(t, err)

	s, ok := obj.String("s")
	assert.True(t, ok)
	assert.Equal(t, "hello", s)

	_, ok = obj.String("n")
	assert.False(t, ok, "non-string value")

	_, ok = obj.String("missing")
	assert.False(t, ok)
}

func TestObject_MarshalIndent(t *testing.T) {
	obj, err := Parse([]byte(`{"name":"pkg","nested":{"a":[1,2]},"version":"1.0.0"}`))
	require.NoError(t, err)

	out, err := obj.MarshalIndent()
	require.NoError(t, err)

	want := `{
  "name": "pkg",
  "nested": {
    "a": [
      1,
      2
    ]
  },
  "version": "1.0.0"
}
`
	assert.Equal(t, want, string(out))
}

func TestObject_MarshalIndent_Empty(t *testing.T) {
	obj, err := Parse([]byte(`{}`))
	require.NoError(t, err)

	out, err := obj.MarshalIndent()
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(out))
}

func TestObject_UnknownFieldsRoundTrip(t *testing.T) {
	in := `{"version":3,"x_custom":{"deep":[null,false]},"mappings":"AAAA"}`
	obj, err := Parse([]byte(in))
	require.NoError(t, err)

	out, err := obj.MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, in, string(out))
	assert.Equal(t, []string{"version", "x_custom", "mappings"}, obj.Keys())
}

func TestObject_NumbersSurviveUntouched(t *testing.T) {
	// UseNumber keeps large ints and decimals as written.
	obj, err := Parse([]byte(`{"big":9007199254740993,"dec":0.1}`))
	require.NoError(t, err)

	out, err := obj.MarshalJSON()
	require.NoError(t, err)
	assert.Contains(t, string(out), "9007199254740993")
	assert.Contains(t, string(out), "0.1")
}
