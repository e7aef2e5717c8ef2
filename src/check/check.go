// Package check is the matching engine and call-signature validator. Given
// a runtime value and a declared descriptor it decides match or mismatch,
// recursing into generic parameters and producing a diagnostic that
// pinpoints the violation.
package check

import (
	"errors"
	"fmt"

	"github.com/tanema/pedant/src/conf"
	"github.com/tanema/pedant/src/object"
	"github.com/tanema/pedant/src/perrors"
	"github.com/tanema/pedant/src/resolve"
	"github.com/tanema/pedant/src/scope"
	"github.com/tanema/pedant/src/types"
)

// Bindings is the per-call map of type-variable names to the descriptor
// they were bound to. It is created for one validation call and discarded
// afterwards, never shared between calls.
type Bindings map[string]types.Definition

// Assert validates a value against a descriptor and returns nil on match.
// The where label names the value in diagnostics, e.g. "argument 'n'" or
// "return value". A nil binds map makes the call self-contained.
func Assert(val any, want types.Definition, snap *scope.Snapshot, binds Bindings, where string) error {
	if !conf.Enabled() {
		return nil
	}
	if binds == nil {
		binds = Bindings{}
	}
	if err := assert(val, want, snap, binds, where, 0); err != nil {
		return err
	}
	return nil
}

func assert(val any, want types.Definition, snap *scope.Snapshot, binds Bindings, where string, depth int) *perrors.Error {
	if depth > conf.MAXNESTING {
		return perrors.New(perrors.TypeCheckErr, "value nesting exceeds %v levels in %v", conf.MAXNESTING, where)
	}
	if want == nil {
		return perrors.New(perrors.DeclarationErr, "missing type descriptor for %v", where)
	}
	if types.IsAny(want) {
		return nil
	}
	if types.IsNone(want) {
		if val == nil {
			return nil
		}
		return mismatch(val, want, where)
	}
	switch twant := want.(type) {
	case *types.Prim:
		return assertPrim(val, twant, where)
	case *types.Generic:
		return assertGeneric(val, twant, snap, binds, where, depth)
	case *types.Union:
		return assertUnion(val, twant, snap, binds, where, depth)
	case *types.Callable:
		return assertCallable(val, twant, snap, where)
	case *types.Var:
		return assertVar(val, twant, snap, binds, where, depth)
	case *types.Ref:
		resolved, err := resolve.Resolve(twant.Name, snap)
		if err != nil {
			return asPedantErr(err)
		}
		return assert(val, resolved, snap, binds, where, depth)
	default:
		return perrors.New(perrors.DeclarationErr, "unknown type descriptor %v for %v", want, where)
	}
}

// assertPrim checks primitives by runtime kind and classes nominally:
// subclass instances satisfy a superclass descriptor, never the reverse.
func assertPrim(val any, want *types.Prim, where string) *perrors.Error {
	if want.Class != nil {
		cls, ok := object.ClassOf(val)
		if ok && cls.IsSubclassOf(want.Class) {
			return nil
		}
		return mismatch(val, want, where)
	}
	ok := false
	switch want.Name {
	case types.NameInt:
		_, ok = val.(int64)
	case types.NameFloat:
		_, ok = val.(float64)
	case types.NameStr:
		_, ok = val.(string)
	case types.NameBool:
		_, ok = val.(bool)
	}
	if !ok {
		return mismatch(val, want, where)
	}
	return nil
}

// assertGeneric checks the outer container kind first; container kinds are
// never interchangeable. Unparameterized descriptors skip element checks.
func assertGeneric(val any, want *types.Generic, snap *scope.Snapshot, binds Bindings, where string, depth int) *perrors.Error {
	switch want.Container {
	case types.KindList:
		list, ok := val.(*object.List)
		if !ok {
			return mismatch(val, want, where)
		}
		if want.Args == nil {
			return nil
		}
		return assertItems(list.Items, want.Args[0], snap, binds, where, depth)
	case types.KindSet:
		set, ok := val.(*object.Set)
		if !ok {
			return mismatch(val, want, where)
		}
		if want.Args == nil {
			return nil
		}
		return assertItems(set.Items, want.Args[0], snap, binds, where, depth)
	case types.KindDict:
		dict, ok := val.(*object.Dict)
		if !ok {
			return mismatch(val, want, where)
		}
		if want.Args == nil {
			return nil
		}
		for _, entry := range dict.Entries {
			keyWhere := fmt.Sprintf("%v key %v", where, object.Repr(entry.Key))
			if err := assert(entry.Key, want.Args[0], snap, binds, keyWhere, depth+1); err != nil {
				return err
			}
			valWhere := childWhere(where, fmt.Sprintf("[%v]", object.Repr(entry.Key)))
			if err := assert(entry.Val, want.Args[1], snap, binds, valWhere, depth+1); err != nil {
				return err
			}
		}
		return nil
	case types.KindTuple:
		tuple, ok := val.(*object.Tuple)
		if !ok {
			return mismatch(val, want, where)
		}
		if want.Args == nil {
			return nil
		}
		if want.Variadic {
			return assertItems(tuple.Items, want.Args[0], snap, binds, where, depth)
		}
		if len(tuple.Items) != len(want.Args) {
			return mismatch(val, want, where)
		}
		for i, item := range tuple.Items {
			if err := assert(item, want.Args[i], snap, binds, childWhere(where, fmt.Sprintf("[%d]", i)), depth+1); err != nil {
				return err
			}
		}
		return nil
	default:
		return perrors.New(perrors.DeclarationErr, "unknown container kind in %v", want)
	}
}

func assertItems(items []any, want types.Definition, snap *scope.Snapshot, binds Bindings, where string, depth int) *perrors.Error {
	for i, item := range items {
		if err := assert(item, want, snap, binds, childWhere(where, fmt.Sprintf("[%d]", i)), depth+1); err != nil {
			return err
		}
	}
	return nil
}

// assertUnion succeeds when any alternative matches. Unbound type-variable
// alternatives are tried last: a single unbound variable binds to the
// value, several leave the binding open and accept.
func assertUnion(val any, want *types.Union, snap *scope.Snapshot, binds Bindings, where string, depth int) *perrors.Error {
	unbound := []*types.Var{}
	for _, alt := range want.Alts {
		if tvar, ok := alt.(*types.Var); ok {
			if _, bound := binds[tvar.Name]; !bound {
				unbound = append(unbound, tvar)
				continue
			}
		}
		if assert(val, alt, snap, binds, where, depth+1) == nil {
			return nil
		}
	}
	switch len(unbound) {
	case 0:
		return mismatch(val, want, where)
	case 1:
		return assert(val, unbound[0], snap, binds, where, depth+1)
	default:
		// several open variables make the intended binding ambiguous, so
		// the value is accepted without committing any of them
		return nil
	}
}

// assertCallable accepts only a fully annotated function whose declared
// parameter and return types are pairwise compatible with the descriptor.
// An unannotated closure never satisfies a typed-callable parameter.
func assertCallable(val any, want *types.Callable, snap *scope.Snapshot, where string) *perrors.Error {
	fn, ok := val.(*object.Fn)
	if !ok {
		return mismatch(val, want, where)
	}
	actual, err := callableShape(fn, snap)
	if err != nil {
		return perrors.New(
			perrors.TypeCheckErr,
			"%v %v cannot satisfy %v because it is not fully annotated: %v",
			where, fn, want, err.Err,
		)
	}
	if !types.Subtype(actual, want) {
		return &perrors.Error{
			Kind:     perrors.TypeCheckErr,
			Path:     []string{"in " + where + ":"},
			Value:    fn.String(),
			Actual:   actual.String(),
			Expected: want.String(),
		}
	}
	return nil
}

// callableShape compiles a function's own annotations into a Callable
// descriptor. Defaulted parameters are dropped, matching how a caller of
// the declared callable type would invoke it.
func callableShape(fn *object.Fn, snap *scope.Snapshot) (*types.Callable, *perrors.Error) {
	shape := &types.Callable{}
	for _, param := range fn.Params {
		if param.HasDefault {
			continue
		}
		if param.Type == "" {
			return nil, perrors.New(perrors.DeclarationErr, "parameter %q has no type annotation", param.Name)
		}
		defn, err := resolve.Resolve(param.Type, snap)
		if err != nil {
			return nil, asPedantErr(err)
		}
		shape.Params = append(shape.Params, defn)
	}
	if !fn.HasReturn {
		return nil, perrors.New(perrors.DeclarationErr, "missing return type annotation")
	}
	ret, err := resolve.Resolve(fn.Return, snap)
	if err != nil {
		return nil, asPedantErr(err)
	}
	shape.Ret = ret
	return shape, nil
}

// assertVar binds an unbound variable to the value's runtime type for the
// remainder of the validation call; a bound variable requires the value to
// match the previous binding.
func assertVar(val any, want *types.Var, snap *scope.Snapshot, binds Bindings, where string, depth int) *perrors.Error {
	if bound, ok := binds[want.Name]; ok {
		if err := assert(val, bound, snap, binds, where, depth+1); err != nil {
			return perrors.New(
				perrors.TypeCheckErr,
				"type conflict for type variable %v: %v has value %v of type %v but %v was previously matched to type %v",
				want.Name, where, object.Repr(val), object.TypeName(val), want.Name, bound,
			)
		}
		return nil
	}
	binds[want.Name] = Infer(val)
	return nil
}

// Infer derives the descriptor a value would bind a type variable to:
// its runtime class for instances, the bare container kind for containers.
func Infer(val any) types.Definition {
	switch tval := val.(type) {
	case nil:
		return types.None
	case bool:
		return types.Bool
	case int64:
		return types.Int
	case float64:
		return types.Float
	case string:
		return types.Str
	case *object.List:
		return types.Sloppy(types.KindList)
	case *object.Set:
		return types.Sloppy(types.KindSet)
	case *object.Dict:
		return types.Sloppy(types.KindDict)
	case *object.Tuple:
		return types.Sloppy(types.KindTuple)
	case *object.Fn:
		return &types.Callable{AnyParams: true, Ret: types.Any}
	default:
		if cls, ok := object.ClassOf(tval); ok {
			return types.ClassOf(cls)
		}
		return types.Any
	}
}

func childWhere(where, segment string) string {
	if n := len(where); n > 0 && where[n-1] == '\'' {
		return where[:n-1] + segment + "'"
	}
	return where + segment
}

func mismatch(val any, want types.Definition, where string) *perrors.Error {
	return &perrors.Error{
		Kind:     perrors.TypeCheckErr,
		Path:     []string{"in " + where + ":"},
		Value:    object.Repr(val),
		Actual:   object.TypeName(val),
		Expected: want.String(),
	}
}

func asPedantErr(err error) *perrors.Error {
	var perr *perrors.Error
	if errors.As(err, &perr) {
		return perr
	}
	return perrors.New(perrors.TypeCheckErr, "%v", err)
}
