package perrors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorFormatting(t *testing.T) {
	t.Parallel()
	cases := []struct {
		err      *Error
		expected string
	}{
		{
			New(DeclarationErr, "parameter %q has no type annotation", "n"),
			`declaration error: parameter "n" has no type annotation`,
		},
		{
			&Error{
				Kind:     TypeCheckErr,
				Path:     []string{"in argument 'n':"},
				Value:    "'hi'",
				Actual:   "str",
				Expected: "int",
			},
			"type error: in argument 'n': value 'hi' of type str does not match expected type int",
		},
		{
			&Error{Kind: CallConventionErr, Err: fmt.Errorf("use keyword arguments when you call function f")},
			"call error: use keyword arguments when you call function f",
		},
		{
			New(ForwardRefErr, "name %q is not defined in the validation context", "Invalid"),
			`unresolved reference: name "Invalid" is not defined in the validation context`,
		},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.expected, tc.err.Error())
	}
}

func TestErrorKinds(t *testing.T) {
	t.Parallel()
	assert.True(t, IsDeclaration(New(DeclarationErr, "oops")))
	assert.True(t, IsTypeCheck(New(TypeCheckErr, "oops")))
	assert.True(t, IsCallConvention(New(CallConventionErr, "oops")))
	assert.True(t, IsForwardRef(New(ForwardRefErr, "oops")))
	assert.False(t, IsTypeCheck(New(ForwardRefErr, "oops")))
	assert.False(t, IsTypeCheck(fmt.Errorf("plain")))
}

func TestWithPath(t *testing.T) {
	t.Parallel()
	err := &Error{
		Kind:     TypeCheckErr,
		Path:     []string{"in field 'children[0]':"},
		Value:    "1",
		Actual:   "int",
		Expected: "Node",
	}
	wrapped := err.WithPath(`in record "Node"`)
	assert.Equal(t,
		`type error: in record "Node" in field 'children[0]': value 1 of type int does not match expected type Node`,
		wrapped.Error())
	// the original error keeps its shorter path
	assert.Equal(t, []string{"in field 'children[0]':"}, err.Path)
}
