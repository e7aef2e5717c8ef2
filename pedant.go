package pedant

import (
	"github.com/tanema/pedant/src/check"
	"github.com/tanema/pedant/src/conf"
	"github.com/tanema/pedant/src/object"
	"github.com/tanema/pedant/src/perrors"
	"github.com/tanema/pedant/src/record"
	"github.com/tanema/pedant/src/resolve"
	"github.com/tanema/pedant/src/scope"
	"github.com/tanema/pedant/src/types"
)

type (
	// Checker holds the names visible to a group of declarations and the
	// signatures compiled from them. It is the registration point that
	// replaces ad hoc call-site interception: declare everything up front,
	// then call through the returned wrappers.
	Checker struct {
		snap    *scope.Snapshot
		records map[string]*record.Type
	}
	// Func wraps an annotated function so that every invocation is
	// validated before and after the underlying implementation runs.
	Func struct {
		sig     *check.Signature
		fn      *object.Fn
		checker *Checker
	}
	// Class wraps a checked class: every member was compiled at
	// registration time and methods are invoked through checked wrappers.
	Class struct {
		cls     *object.Class
		sigs    map[string]*check.Signature
		checker *Checker
	}
)

// New creates a Checker, optionally seeded with name bindings that
// annotations may refer to.
func New(bindings map[string]any) *Checker {
	return &Checker{snap: scope.New(bindings), records: map[string]*record.Type{}}
}

// Bind makes one more name visible to subsequently compiled annotations.
func (c *Checker) Bind(name string, binding any) {
	c.snap = c.snap.With(name, binding)
}

// Scope exposes the current snapshot of visible names.
func (c *Checker) Scope() *scope.Snapshot { return c.snap }

// Func compiles a function declaration. Missing annotations fail here,
// before the function can ever be called.
func (c *Checker) Func(fn *object.Fn) (*Func, error) {
	sig, err := check.NewSignature(fn, c.snap)
	if err != nil {
		return nil, err
	}
	return &Func{sig: sig, fn: fn, checker: c}, nil
}

// Class compiles every member of a class and registers the class name.
func (c *Checker) Class(cls *object.Class) (*Class, error) {
	sigs, err := check.Class(cls, c.snap)
	if err != nil {
		return nil, err
	}
	c.Bind(cls.Name, cls)
	return &Class{cls: cls, sigs: sigs, checker: c}, nil
}

// Record declares a frozen record type and registers its name. Declaring
// the same record name twice on one checker is a declaration error.
func (c *Checker) Record(name string, fields []record.Field, opts ...record.Option) (*record.Type, error) {
	if _, dup := c.records[name]; dup {
		return nil, perrors.New(perrors.DeclarationErr, "record %v is already declared", name)
	}
	opts = append([]record.Option{record.WithScopeFunc(func() *scope.Snapshot { return c.snap })}, opts...)
	rt, err := record.New(name, fields, opts...)
	if err != nil {
		return nil, err
	}
	c.records[name] = rt
	c.Bind(name, rt.Class())
	return rt, nil
}

// Signature exposes the compiled signature of the function.
func (f *Func) Signature() *check.Signature { return f.sig }

// Call validates the call convention and argument types, runs the
// implementation, then validates the produced return value. Type variables
// bound by the arguments constrain the return value within this one call.
// When checking is disabled the implementation runs unchecked.
func (f *Func) Call(call check.Call) (any, error) {
	if !conf.Enabled() {
		return f.invoke(call)
	}
	binds := check.Bindings{}
	if err := f.sig.ValidateArgs(call, f.checker.snap, binds); err != nil {
		return nil, err
	}
	ret, err := f.invoke(call)
	if err != nil {
		return nil, err
	}
	if err := f.sig.ValidateReturn(ret, f.checker.snap, binds); err != nil {
		return nil, err
	}
	return ret, nil
}

func (f *Func) invoke(call check.Call) (any, error) {
	kwargs := make(map[string]any, len(f.fn.Params))
	for _, param := range f.fn.Params {
		if param.HasDefault {
			kwargs[param.Name] = param.Default
		}
	}
	for name, val := range call.Kwargs {
		kwargs[name] = val
	}
	return f.fn.Impl(call.Receiver, kwargs)
}

// Method returns a checked wrapper for one member of the class, bound to
// the class's own scope so that self-referential annotations resolve.
func (cc *Class) Method(name string) (*Func, bool) {
	sig, ok := cc.sigs[name]
	if !ok {
		return nil, false
	}
	for _, method := range cc.cls.Methods {
		if method.Fn.Name == name {
			return &Func{sig: sig, fn: method.Fn, checker: cc.checker}, true
		}
	}
	return nil, false
}

// Resolve interprets annotation text against a snapshot of visible names.
func Resolve(text string, snap *scope.Snapshot) (types.Definition, error) {
	return resolve.Resolve(text, snap)
}

// Check validates a single value against annotation text in one shot.
func Check(val any, annotation string, snap *scope.Snapshot) error {
	if !conf.Enabled() {
		return nil
	}
	defn, err := resolve.Resolve(annotation, snap)
	if err != nil {
		return err
	}
	return check.Assert(val, defn, snap, nil, "value")
}

// Enable turns checking on process-wide.
func Enable() { conf.Enable() }

// Disable turns checking off process-wide; all validations succeed.
func Disable() { conf.Disable() }

// Enabled reports the current state of the checking switch.
func Enabled() bool { return conf.Enabled() }
