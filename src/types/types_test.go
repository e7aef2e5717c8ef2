package types

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tanema/pedant/src/object"
)

func TestTypeString(t *testing.T) {
	t.Parallel()
	parent := &object.Class{Name: "Parent"}
	cases := []struct {
		defn     Definition
		expected string
	}{
		{Any, "Any"},
		{None, "None"},
		{Int, "int"},
		{Float, "float"},
		{Str, "str"},
		{Bool, "bool"},
		{ClassOf(parent), "Parent"},
		{Sloppy(KindList), "List"},
		{ListOf(Int), "List[int]"},
		{SetOf(Str), "Set[str]"},
		{DictOf(Str, Int), "Dict[str, int]"},
		{TupleOf(Int, Str), "Tuple[int, str]"},
		{VariadicTupleOf(Int), "Tuple[int, ...]"},
		{NewUnion(Int, Float), "Union[float, int]"},
		{NewUnion(Str, Float, Int), "Union[float, int, str]"},
		{Optional(Int), "Optional[int]"},
		{Optional(ListOf(Float)), "Optional[List[float]]"},
		{&Callable{Params: []Definition{Int, Str}, Ret: Bool}, "Callable[[int, str], bool]"},
		{&Callable{AnyParams: true, Ret: Any}, "Callable[..., Any]"},
		{&Ref{Name: "Node"}, `"Node"`},
		{&Var{Name: "T"}, "T"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, tc.defn.String())
	}
}

func TestNewUnion(t *testing.T) {
	t.Parallel()
	// membership is order-insensitive: same alternatives in any order
	// normalize to the same descriptor
	assert.True(t, Equal(NewUnion(Int, Float), NewUnion(Float, Int)))
	// nested unions flatten and duplicates collapse
	assert.True(t, Equal(NewUnion(Int, NewUnion(Float, Int)), NewUnion(Float, Int)))
	// a single surviving alternative is returned directly
	assert.True(t, Equal(NewUnion(Int, Int), Int))
}

func TestHasNone(t *testing.T) {
	t.Parallel()
	assert.True(t, HasNone(None))
	assert.True(t, HasNone(Any))
	assert.True(t, HasNone(Optional(Int)))
	assert.True(t, HasNone(NewUnion(Int, NewUnion(Str, None))))
	assert.False(t, HasNone(Int))
	assert.False(t, HasNone(NewUnion(Int, Str)))
	assert.False(t, HasNone(ListOf(None)))
}

func TestSubtype(t *testing.T) {
	t.Parallel()
	parent := &object.Class{Name: "Parent"}
	child := &object.Class{Name: "Child", Parent: parent}
	cases := []struct {
		sub, super Definition
		ok         bool
	}{
		{Float, Float, true},
		{Int, Float, false},
		{Float, Int, false},
		{Int, Any, true},
		{Any, Int, false},
		{Any, Any, true},
		{ClassOf(child), ClassOf(parent), true},
		{ClassOf(parent), ClassOf(child), false},
		{Int, NewUnion(Int, Float), true},
		{Int, NewUnion(Str, Float), false},
		{NewUnion(Int, Float), NewUnion(Int, Float, Str), true},
		{NewUnion(Int, Str), NewUnion(Int, Float), false},
		{ListOf(Int), ListOf(NewUnion(Int, Float)), true},
		{ListOf(ClassOf(child)), ListOf(ClassOf(parent)), true},
		{ListOf(ClassOf(parent)), ListOf(ClassOf(child)), false},
		{ListOf(Int), Sloppy(KindList), true},
		{Sloppy(KindList), ListOf(Int), false},
		{ListOf(Int), SetOf(Int), false},
		{TupleOf(Float, Str), TupleOf(Float, Str), true},
		{TupleOf(Float), TupleOf(Float, Str), false},
		{TupleOf(Int, Str), VariadicTupleOf(Any), true},
		{VariadicTupleOf(Any), TupleOf(Float, Str), false},
		{TupleOf(Float, Str), VariadicTupleOf(Int), false},
		{TupleOf(Int, Int), VariadicTupleOf(Int), true},
		{&Callable{Params: []Definition{Int}, Ret: Str}, &Callable{Params: []Definition{Int}, Ret: Str}, true},
		{&Callable{Params: []Definition{Int}, Ret: Str}, &Callable{AnyParams: true, Ret: Str}, true},
		{&Callable{Params: []Definition{Int}, Ret: Str}, &Callable{Params: []Definition{Int}, Ret: Int}, false},
		{&Callable{Params: []Definition{Int, Int}, Ret: Str}, &Callable{Params: []Definition{Int}, Ret: Str}, false},
		{Int, &Var{Name: "T"}, true},
		{None, Optional(Int), true},
		{None, Int, false},
	}
	for i, tc := range cases {
		assert.Equal(t, tc.ok, Subtype(tc.sub, tc.super), "[%v] %v <: %v", i, tc.sub, tc.super)
	}
}

func TestIsAnyIsNone(t *testing.T) {
	t.Parallel()
	assert.True(t, IsAny(Any))
	assert.False(t, IsAny(None))
	assert.True(t, IsNone(None))
	assert.False(t, IsNone(Any))
	assert.False(t, IsNone(Int))
}
