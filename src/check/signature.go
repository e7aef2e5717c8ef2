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

type (
	// Param is one declared parameter with its compiled descriptor.
	Param struct {
		Name       string
		Defn       types.Definition
		HasDefault bool
		Default    any
	}
	// Signature is the checkable form of a function declaration, derived
	// once at declaration time and immutable afterwards.
	Signature struct {
		Name     string
		Receiver string
		Params   []Param
		Ret      types.Definition
	}
	// Call is one actual invocation: an optional bound receiver, the
	// positional arguments and the keyword arguments.
	Call struct {
		Receiver any
		Args     []any
		Kwargs   map[string]any
	}
)

// NewSignature compiles a function declaration into a Signature. A missing
// parameter or return annotation fails here, at declaration time, not at
// call time. Annotations that name types not yet visible in the snapshot
// are kept as forward references and resolved lazily per call.
func NewSignature(fn *object.Fn, snap *scope.Snapshot) (*Signature, error) {
	sig := &Signature{Name: fn.Name, Receiver: fn.Receiver}
	for _, param := range fn.Params {
		if param.Name == "self" || param.Name == "cls" {
			return nil, perrors.New(
				perrors.DeclarationErr,
				"function %v declares %q as a regular parameter; receivers are implicit",
				fn.Name, param.Name,
			)
		}
		if param.Type == "" {
			return nil, perrors.New(
				perrors.DeclarationErr,
				"parameter %q of function %v has no type annotation",
				param.Name, fn.Name,
			)
		}
		defn, err := compile(param.Type, snap)
		if err != nil {
			return nil, perrors.New(
				perrors.DeclarationErr,
				"parameter %q of function %v has an invalid type annotation: %v",
				param.Name, fn.Name, err,
			)
		}
		sig.Params = append(sig.Params, Param{
			Name:       param.Name,
			Defn:       defn,
			HasDefault: param.HasDefault,
			Default:    param.Default,
		})
	}
	if !fn.HasReturn {
		return nil, perrors.New(
			perrors.DeclarationErr,
			"function %v has no return type annotation; annotate with None if it returns nothing",
			fn.Name,
		)
	}
	ret, err := compile(fn.Return, snap)
	if err != nil {
		return nil, perrors.New(
			perrors.DeclarationErr,
			"function %v has an invalid return type annotation: %v",
			fn.Name, err,
		)
	}
	sig.Ret = ret
	return sig, nil
}

// compile resolves annotation text now when every name is already visible
// and leaves it as a forward reference for lazy resolution when a name is
// not defined yet, which keeps self-referential and mutually-referential
// declarations legal. Malformed text fails here, at declaration time.
func compile(text string, snap *scope.Snapshot) (types.Definition, error) {
	defn, err := resolve.Resolve(text, snap)
	if err == nil {
		return defn, nil
	}
	if errors.Is(err, resolve.ErrUndefined) {
		return &types.Ref{Name: text}, nil
	}
	return nil, err
}

// Validate checks one complete call: the argument passing convention, each
// argument's type and the produced return value. When checking is globally
// disabled it succeeds without inspecting anything.
func (sig *Signature) Validate(call Call, ret any, snap *scope.Snapshot) error {
	if !conf.Enabled() {
		return nil
	}
	binds := Bindings{}
	if err := sig.ValidateArgs(call, snap, binds); err != nil {
		return err
	}
	return sig.ValidateReturn(ret, snap, binds)
}

// ValidateArgs enforces keyword-only argument passing and each parameter's
// declared type. Binds is shared with ValidateReturn so that a type
// variable bound by an argument constrains the return value too.
func (sig *Signature) ValidateArgs(call Call, snap *scope.Snapshot, binds Bindings) error {
	if !conf.Enabled() {
		return nil
	}
	if binds == nil {
		binds = Bindings{}
	}
	if len(call.Args) > 0 {
		return &perrors.Error{
			Kind: perrors.CallConventionErr,
			Fn:   sig.Name,
			Err:  fmt.Errorf("use keyword arguments when you call function %v", sig.Name),
		}
	}
	for name := range call.Kwargs {
		if !sig.hasParam(name) {
			return perrors.New(
				perrors.TypeCheckErr,
				"function %v got an unexpected keyword argument %q",
				sig.Name, name,
			)
		}
	}
	for _, param := range sig.Params {
		val, given := call.Kwargs[param.Name]
		if !given {
			if param.HasDefault {
				continue
			}
			return perrors.New(
				perrors.TypeCheckErr,
				"function %v misses the required argument %q",
				sig.Name, param.Name,
			)
		}
		where := fmt.Sprintf("argument '%v'", param.Name)
		if err := Assert(val, param.Defn, snap, binds, where); err != nil {
			return withFn(err, sig.Name)
		}
	}
	return nil
}

// ValidateReturn checks the produced value against the declared return
// type. A None return type requires that no value was produced.
func (sig *Signature) ValidateReturn(ret any, snap *scope.Snapshot, binds Bindings) error {
	if !conf.Enabled() {
		return nil
	}
	if err := Assert(ret, sig.Ret, snap, binds, "return value"); err != nil {
		return withFn(err, sig.Name)
	}
	return nil
}

func (sig *Signature) hasParam(name string) bool {
	for _, param := range sig.Params {
		if param.Name == name {
			return true
		}
	}
	return false
}

// Class compiles every member of a class in one registration pass:
// methods, property getters and setters, static methods and the
// constructor all get a signature, and the constructor must declare that
// it returns nothing. The resulting map is keyed by method name.
func Class(cls *object.Class, snap *scope.Snapshot) (map[string]*Signature, error) {
	sigs := make(map[string]*Signature, len(cls.Methods))
	selfSnap := snap.With(cls.Name, cls)
	for _, method := range cls.Methods {
		name := method.Fn.Name
		if _, dup := sigs[name]; dup {
			return nil, perrors.New(
				perrors.DeclarationErr,
				"class %v declares method %q twice", cls.Name, name,
			)
		}
		sig, err := NewSignature(method.Fn, selfSnap)
		if err != nil {
			return nil, err
		}
		if method.Kind == object.MethodConstructor && !types.IsNone(sig.Ret) {
			return nil, perrors.New(
				perrors.DeclarationErr,
				"constructor of class %v must be annotated to return None, not %v",
				cls.Name, sig.Ret,
			)
		}
		sigs[name] = sig
	}
	return sigs, nil
}

func withFn(err error, name string) error {
	if perr, ok := err.(*perrors.Error); ok && perr.Fn == "" {
		dup := *perr
		dup.Fn = name
		return &dup
	}
	return err
}
