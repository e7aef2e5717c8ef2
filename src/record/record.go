// Package record provides an immutable record construct with optional
// runtime type validation, copy helpers and comparison, built atop the
// matching engine. A record's field types are annotation text and may
// forward-reference the record's own name.
package record

import (
	"fmt"
	"strings"

	"github.com/tanema/pedant/src/check"
	"github.com/tanema/pedant/src/conf"
	"github.com/tanema/pedant/src/object"
	"github.com/tanema/pedant/src/perrors"
	"github.com/tanema/pedant/src/resolve"
	"github.com/tanema/pedant/src/scope"
)

type (
	// Field declares one record field: a name, the annotation text of its
	// type and an optional default value.
	Field struct {
		Name       string
		Type       string
		Default    any
		HasDefault bool
	}
	// Option configures a record type at declaration time.
	Option func(*Type)
	// Type is a declared record type. It is immutable after New.
	Type struct {
		class    *object.Class
		fields   []Field
		typeSafe bool
		ordered  bool
		snap     *scope.Snapshot
		scopeFn  func() *scope.Snapshot
	}
	// Instance is one immutable record value.
	Instance struct {
		rec    *Type
		fields map[string]any
	}
)

// TypeSafe validates every field after construction and after each copy.
func TypeSafe() Option { return func(rt *Type) { rt.typeSafe = true } }

// Ordered enables Less so instances compare as the tuple of their fields.
func Ordered() Option { return func(rt *Type) { rt.ordered = true } }

// WithScope supplies the names visible at the declaration site, used to
// resolve the field annotations.
func WithScope(snap *scope.Snapshot) Option { return func(rt *Type) { rt.snap = snap } }

// WithScopeFunc supplies a provider consulted at each validation instead
// of a fixed snapshot, so field annotations may name types that are only
// declared after this record.
func WithScopeFunc(fn func() *scope.Snapshot) Option {
	return func(rt *Type) { rt.scopeFn = fn }
}

// New declares a record type. Field annotations are mandatory; resolution
// is deferred to validation time so a field may name the record itself.
func New(name string, fields []Field, opts ...Option) (*Type, error) {
	if name == "" {
		return nil, perrors.New(perrors.DeclarationErr, "record types require a name")
	}
	seen := map[string]bool{}
	for _, field := range fields {
		if field.Name == "" {
			return nil, perrors.New(perrors.DeclarationErr, "record %v declares a field without a name", name)
		}
		if seen[field.Name] {
			return nil, perrors.New(perrors.DeclarationErr, "record %v declares field %q twice", name, field.Name)
		}
		seen[field.Name] = true
		if field.Type == "" {
			return nil, perrors.New(
				perrors.DeclarationErr,
				"field %q of record %v has no type annotation", field.Name, name,
			)
		}
	}
	rt := &Type{class: &object.Class{Name: name}, fields: fields}
	for _, opt := range opts {
		opt(rt)
	}
	// the record's own name resolves to its class, so self-referential
	// field types like List['Node'] work at validation time
	rt.snap = rt.snap.With(name, rt.class)
	return rt, nil
}

// Name returns the declared record name.
func (rt *Type) Name() string { return rt.class.Name }

// Class returns the class backing this record type, usable as an
// annotation target for functions that accept record instances.
func (rt *Type) Class() *object.Class { return rt.class }

// Fields returns a copy of the field declarations.
func (rt *Type) Fields() []Field { return append([]Field{}, rt.fields...) }

// scope returns the names currently visible to this record's field
// annotations, always including the record's own name.
func (rt *Type) scope() *scope.Snapshot {
	if rt.scopeFn != nil {
		return rt.scopeFn().With(rt.class.Name, rt.class)
	}
	return rt.snap
}

// New constructs an instance. All fields are passed by keyword; missing
// fields fall back to their default and error without one. When the type
// was declared TypeSafe the new instance is validated before it escapes.
func (rt *Type) New(kwargs map[string]any) (*Instance, error) {
	for name := range kwargs {
		if !rt.hasField(name) {
			return nil, perrors.New(
				perrors.TypeCheckErr,
				"record %v has no field %q", rt.Name(), name,
			)
		}
	}
	fields := make(map[string]any, len(rt.fields))
	for _, field := range rt.fields {
		val, given := kwargs[field.Name]
		if !given {
			if !field.HasDefault {
				return nil, perrors.New(
					perrors.TypeCheckErr,
					"record %v misses a value for field %q", rt.Name(), field.Name,
				)
			}
			val = field.Default
		}
		fields[field.Name] = val
	}
	inst := &Instance{rec: rt, fields: fields}
	if rt.typeSafe && conf.Enabled() {
		if err := inst.ValidateTypes(); err != nil {
			return nil, err
		}
	}
	return inst, nil
}

func (rt *Type) hasField(name string) bool {
	for _, field := range rt.fields {
		if field.Name == name {
			return true
		}
	}
	return false
}

// ObjectClass makes instances class-bearing values, so a record instance
// satisfies an annotation naming the record type.
func (inst *Instance) ObjectClass() *object.Class { return inst.rec.class }

// Record returns the record type of the instance.
func (inst *Instance) Record() *Type { return inst.rec }

// Get reads a field value.
func (inst *Instance) Get(name string) (any, bool) {
	val, ok := inst.fields[name]
	return val, ok
}

// ValidateTypes checks that every field holds a value of its declared
// type. Field annotations resolve lazily here, against a snapshot that
// already contains the record's own name.
func (inst *Instance) ValidateTypes() error {
	if !conf.Enabled() {
		return nil
	}
	snap := inst.rec.scope()
	for _, field := range inst.rec.fields {
		defn, err := resolve.Resolve(field.Type, snap)
		if err != nil {
			return err
		}
		where := fmt.Sprintf("field '%v'", field.Name)
		if err := check.Assert(inst.fields[field.Name], defn, snap, nil, where); err != nil {
			if perr, ok := err.(*perrors.Error); ok {
				return perr.WithPath(fmt.Sprintf("in record %q", inst.rec.Name()))
			}
			return err
		}
	}
	return nil
}

// CopyWith creates a new instance copying all fields shallowly and
// replacing the given ones.
func (inst *Instance) CopyWith(kwargs map[string]any) (*Instance, error) {
	merged := make(map[string]any, len(inst.fields)+len(kwargs))
	for name, val := range inst.fields {
		merged[name] = val
	}
	for name, val := range kwargs {
		merged[name] = val
	}
	return inst.rec.New(merged)
}

// DeepCopyWith creates a new instance deep copying all fields and
// replacing the given ones.
func (inst *Instance) DeepCopyWith(kwargs map[string]any) (*Instance, error) {
	merged := make(map[string]any, len(inst.fields)+len(kwargs))
	for name, val := range inst.fields {
		merged[name] = object.DeepCopy(val)
	}
	for name, val := range kwargs {
		merged[name] = val
	}
	return inst.rec.New(merged)
}

// Equal compares two instances by type and field values.
func (inst *Instance) Equal(other *Instance) bool {
	if other == nil || inst.rec != other.rec {
		return false
	}
	for name, val := range inst.fields {
		if !object.Equal(val, other.fields[name]) {
			return false
		}
	}
	return true
}

// Less compares two instances as if they were tuples of their fields in
// declaration order. It requires the Ordered option and identical types.
func (inst *Instance) Less(other *Instance) (bool, error) {
	if !inst.rec.ordered {
		return false, perrors.New(
			perrors.DeclarationErr,
			"record %v was not declared with ordering", inst.rec.Name(),
		)
	}
	if other == nil || inst.rec != other.rec {
		return false, perrors.New(
			perrors.TypeCheckErr,
			"cannot order record %v against a different type", inst.rec.Name(),
		)
	}
	for _, field := range inst.rec.fields {
		a, b := inst.fields[field.Name], other.fields[field.Name]
		if object.Equal(a, b) {
			continue
		}
		less, err := lessValue(a, b)
		if err != nil {
			return false, perrors.New(
				perrors.TypeCheckErr,
				"field %q of record %v is not orderable: %v", field.Name, inst.rec.Name(), err,
			)
		}
		return less, nil
	}
	return false, nil
}

func lessValue(a, b any) (bool, error) {
	switch ta := a.(type) {
	case int64:
		if tb, ok := b.(int64); ok {
			return ta < tb, nil
		}
	case float64:
		if tb, ok := b.(float64); ok {
			return ta < tb, nil
		}
	case string:
		if tb, ok := b.(string); ok {
			return ta < tb, nil
		}
	case bool:
		if tb, ok := b.(bool); ok {
			return !ta && tb, nil
		}
	}
	return false, fmt.Errorf("values %v and %v cannot be ordered", object.Repr(a), object.Repr(b))
}

// Repr formats the instance like a constructor call, in field order.
func (inst *Instance) Repr() string {
	parts := make([]string, len(inst.rec.fields))
	for i, field := range inst.rec.fields {
		parts[i] = fmt.Sprintf("%v=%v", field.Name, object.Repr(inst.fields[field.Name]))
	}
	return fmt.Sprintf("%s(%s)", inst.rec.Name(), strings.Join(parts, ", "))
}

func (inst *Instance) String() string { return inst.Repr() }
