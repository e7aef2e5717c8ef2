package object

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTypeName(t *testing.T) {
	t.Parallel()
	parent := &Class{Name: "Parent"}
	cases := []struct {
		val      any
		expected string
	}{
		{nil, "None"},
		{true, "bool"},
		{int64(42), "int"},
		{3.14, "float"},
		{"hi", "str"},
		{NewList(int64(1)), "list"},
		{NewTuple(int64(1)), "tuple"},
		{NewSet(int64(1)), "set"},
		{NewDict("a", int64(1)), "dict"},
		{&Fn{Name: "f"}, "function"},
		{parent, "class"},
		{parent.New(nil), "Parent"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, TypeName(tc.val))
	}
}

func TestRepr(t *testing.T) {
	t.Parallel()
	cases := []struct {
		val      any
		expected string
	}{
		{nil, "None"},
		{true, "true"},
		{int64(42), "42"},
		{0.5, "0.5"},
		{42.0, "42.0"},
		{"hi", "'hi'"},
		{NewList(int64(1), "a"), "[1, 'a']"},
		{NewTuple(int64(1), 2.0), "(1, 2.0)"},
		{NewSet("x"), "{'x'}"},
		{NewDict("a", int64(1)), "{'a': 1}"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, Repr(tc.val))
	}
}

func TestSubclassing(t *testing.T) {
	t.Parallel()
	parent := &Class{Name: "Parent"}
	child := &Class{Name: "Child", Parent: parent}
	other := &Class{Name: "Other"}

	assert.True(t, parent.IsSubclassOf(parent))
	assert.True(t, child.IsSubclassOf(parent))
	assert.False(t, parent.IsSubclassOf(child))
	assert.False(t, other.IsSubclassOf(parent))

	cls, ok := ClassOf(child.New(nil))
	require.True(t, ok)
	assert.Equal(t, child, cls)
	_, ok = ClassOf(int64(5))
	assert.False(t, ok)
}

func TestEqual(t *testing.T) {
	t.Parallel()
	parent := &Class{Name: "Parent"}
	cases := []struct {
		a, b  any
		equal bool
	}{
		{int64(1), int64(1), true},
		{int64(1), 1.0, false},
		{"a", "a", true},
		{nil, nil, true},
		{NewList(int64(1), int64(2)), NewList(int64(1), int64(2)), true},
		{NewList(int64(1)), NewList(int64(2)), false},
		{NewList(int64(1)), NewTuple(int64(1)), false},
		{NewSet(int64(1), int64(2)), NewSet(int64(2), int64(1)), true},
		{NewSet(int64(1)), NewSet(int64(1), int64(2)), false},
		{NewDict("a", int64(1)), NewDict("a", int64(1)), true},
		{NewDict("a", int64(1)), NewDict("a", int64(2)), false},
		{parent.New(map[string]any{"x": int64(1)}), parent.New(map[string]any{"x": int64(1)}), true},
		{parent.New(map[string]any{"x": int64(1)}), parent.New(map[string]any{"x": int64(2)}), false},
	}
	for i, tc := range cases {
		assert.Equal(t, tc.equal, Equal(tc.a, tc.b), "[%v] %v == %v", i, Repr(tc.a), Repr(tc.b))
	}
}

func TestDeepCopy(t *testing.T) {
	t.Parallel()
	inner := NewList(int64(1))
	outer := NewList(inner, "keep")
	dup, ok := DeepCopy(outer).(*List)
	require.True(t, ok)
	require.True(t, Equal(outer, dup))

	inner.Items[0] = int64(99)
	dupInner, ok := dup.Items[0].(*List)
	require.True(t, ok)
	assert.Equal(t, int64(1), dupInner.Items[0])
}

func TestDictSetGet(t *testing.T) {
	t.Parallel()
	dict := NewDict()
	dict.Set("a", int64(1))
	dict.Set("b", int64(2))
	dict.Set("a", int64(3))
	require.Len(t, dict.Entries, 2)
	val, ok := dict.Get("a")
	require.True(t, ok)
	assert.Equal(t, int64(3), val)
	_, ok = dict.Get("missing")
	assert.False(t, ok)
}
