package resolve

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tanema/pedant/src/object"
	"github.com/tanema/pedant/src/perrors"
	"github.com/tanema/pedant/src/scope"
	"github.com/tanema/pedant/src/types"
)

func TestResolve(t *testing.T) {
	t.Parallel()
	comment := &object.Class{Name: "Comment"}
	snap := scope.New(map[string]any{
		"Comment": comment,
		"T":       &types.Var{Name: "T"},
	})

	cases := []struct {
		text     string
		expected string
	}{
		{"int", "int"},
		{"float", "float"},
		{"str", "str"},
		{"bool", "bool"},
		{"Any", "Any"},
		{"None", "None"},
		{"List", "List"},
		{"list", "List"},
		{"List[int]", "List[int]"},
		{"List[List[float]]", "List[List[float]]"},
		{"Set[str]", "Set[str]"},
		{"FrozenSet[int]", "Set[int]"},
		{"Dict[str, int]", "Dict[str, int]"},
		{"Tuple", "Tuple"},
		{"Tuple[int, str]", "Tuple[int, str]"},
		{"Tuple[int, ...]", "Tuple[int, ...]"},
		{"Union[int, float]", "Union[float, int]"},
		{"Union[float, int]", "Union[float, int]"},
		{"Optional[int]", "Optional[int]"},
		{"Optional[List[Union[str, float]]]", "Optional[List[Union[float, str]]]"},
		{"int | None", "Optional[int]"},
		{"int | float | str", "Union[float, int, str]"},
		{"Callable[[int, str], bool]", "Callable[[int, str], bool]"},
		{"Callable[[], None]", "Callable[[], None]"},
		{"Callable[..., Any]", "Callable[..., Any]"},
		{"Callable[[Callable[[int], int]], int]", "Callable[[Callable[[int], int]], int]"},
		{"Comment", "Comment"},
		{"List[Comment]", "List[Comment]"},
		{"List['Comment']", "List[Comment]"},
		// quoted forward-reference text may be any expression
		{"'Optional[int]'", "Optional[int]"},
		{"List['Dict[str, int]']", "List[Dict[str, int]]"},
		{"'List[Comment]'", "List[Comment]"},
		{"Dict[str, List[Optional[Comment]]]", "Dict[str, List[Optional[Comment]]]"},
		{"T", "T"},
		{"List[T]", "List[T]"},
		{"  List[ int ]  ", "List[int]"},
	}
	for _, tc := range cases {
		defn, err := Resolve(tc.text, snap)
		require.NoError(t, err, "resolve %q", tc.text)
		assert.Equal(t, tc.expected, defn.String(), "resolve %q", tc.text)
	}
}

func TestResolveSelfReference(t *testing.T) {
	t.Parallel()
	node := &object.Class{Name: "Node"}
	snap := scope.New(nil).With("Node", node)

	defn, err := Resolve("List['Node']", snap)
	require.NoError(t, err)
	assert.Equal(t, "List[Node]", defn.String())
}

func TestResolveUndefined(t *testing.T) {
	t.Parallel()
	snap := scope.New(nil)

	// unknown names are marked so callers can defer them
	_, err := Resolve("Invalid", snap)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUndefined))
	_, err = Resolve("List[Invalid]", snap)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrUndefined))

	// malformed text is not deferrable
	_, err = Resolve("List[int", snap)
	require.Error(t, err)
	assert.False(t, errors.Is(err, ErrUndefined))
}

func TestResolveErrors(t *testing.T) {
	t.Parallel()
	snap := scope.New(map[string]any{"notatype": int64(42)})
	cases := []string{
		"",
		"Invalid",
		"List[Invalid]",
		"notatype",
		"List[int",
		"List[int]]",
		"Dict[str]",
		"Dict[str, int, bool]",
		"Union[int]",
		"Optional",
		"Callable",
		"Callable[int]",
		"Tuple[...]",
		"Tuple[int, ..., str]",
		"int |",
		"[int]",
		"List[int] str",
		"List['Node]",
		"'List[int'",
		"???",
	}
	for _, text := range cases {
		_, err := Resolve(text, snap)
		require.Error(t, err, "resolve %q", text)
		assert.True(t, perrors.IsForwardRef(err), "resolve %q should be a forward-ref error, got %v", text, err)
	}
}
