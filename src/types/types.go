// Package types defines the descriptor tree that declared annotations are
// compiled into. Descriptors are built once at declaration time and are
// immutable afterwards; the matching engine dispatches on their kind.
package types

import (
	"fmt"
	"sort"
	"strings"

	"github.com/tanema/pedant/src/object"
)

type (
	// Definition is a general interface for all type descriptors.
	Definition interface {
		fmt.Stringer
		defn()
	}
	anyType  struct{}
	noneType struct{}
	// Prim describes a primitive or a class reference. Builtin primitives
	// carry only a name; user classes carry the class itself.
	Prim struct {
		Name  string
		Class *object.Class
	}
	// Container is the outer kind of a parameterized generic.
	Container int
	// Generic describes a parameterized container. Args nil means the
	// container was declared without type arguments and element checking
	// is skipped entirely. For tuples, Variadic marks Tuple[T, ...].
	Generic struct {
		Container Container
		Args      []Definition
		Variadic  bool
	}
	// Union describes a set of alternative descriptors. Membership is
	// order-insensitive; nullability is expressed as a None alternative.
	Union struct{ Alts []Definition }
	// Callable describes a function signature type. AnyParams marks
	// Callable[..., T] which accepts any parameter list.
	Callable struct {
		Params    []Definition
		Ret       Definition
		AnyParams bool
	}
	// Ref is a forward reference kept as its literal annotation text,
	// resolved lazily at validation time.
	Ref struct{ Name string }
	// Var is a named type variable, bound to a concrete descriptor the
	// first time it is matched within one validation call.
	Var struct{ Name string }
)

const (
	// KindList is the list container kind.
	KindList Container = iota
	// KindSet is the set container kind.
	KindSet
	// KindDict is the dict container kind.
	KindDict
	// KindTuple is the fixed-arity tuple container kind.
	KindTuple
)

const (
	// NameAny is the label of the any type.
	NameAny = "Any"
	// NameNone is the label of the null type.
	NameNone = "None"
	// NameInt is the label of the int type.
	NameInt = "int"
	// NameFloat is the label of the float type.
	NameFloat = "float"
	// NameStr is the label of the str type.
	NameStr = "str"
	// NameBool is the label of the bool type.
	NameBool = "bool"
)

var (
	// Any is the explicit escape hatch that every value matches.
	Any = &anyType{}
	// None matches only the null value.
	None = &noneType{}
	// Int matches int values.
	Int = &Prim{Name: NameInt}
	// Float matches float values.
	Float = &Prim{Name: NameFloat}
	// Str matches string values.
	Str = &Prim{Name: NameStr}
	// Bool matches boolean values.
	Bool = &Prim{Name: NameBool}

	// Builtins is the set of descriptors that resolve by name without any
	// context, merged under every validation context.
	Builtins = map[string]Definition{
		NameAny:   Any,
		NameNone:  None,
		NameInt:   Int,
		NameFloat: Float,
		NameStr:   Str,
		NameBool:  Bool,
	}

	containerNames = map[Container]string{
		KindList:  "List",
		KindSet:   "Set",
		KindDict:  "Dict",
		KindTuple: "Tuple",
	}
)

func (t *anyType) defn()  {}
func (t *noneType) defn() {}
func (t *Prim) defn()     {}
func (t *Generic) defn()  {}
func (t *Union) defn()    {}
func (t *Callable) defn() {}
func (t *Ref) defn()      {}
func (t *Var) defn()      {}

func (t *anyType) String() string  { return NameAny }
func (t *noneType) String() string { return NameNone }

func (t *Prim) String() string {
	if t.Class != nil {
		return t.Class.Name
	}
	return t.Name
}

func (t *Generic) String() string {
	name := containerNames[t.Container]
	if t.Args == nil {
		return name
	}
	parts := make([]string, len(t.Args))
	for i, arg := range t.Args {
		parts[i] = arg.String()
	}
	if t.Variadic {
		parts = append(parts, "...")
	}
	return fmt.Sprintf("%s[%s]", name, strings.Join(parts, ", "))
}

func (t *Union) String() string {
	if len(t.Alts) == 2 {
		if _, ok := t.Alts[0].(*noneType); ok {
			return fmt.Sprintf("Optional[%s]", t.Alts[1])
		}
		if _, ok := t.Alts[1].(*noneType); ok {
			return fmt.Sprintf("Optional[%s]", t.Alts[0])
		}
	}
	parts := make([]string, len(t.Alts))
	for i, alt := range t.Alts {
		parts[i] = alt.String()
	}
	return fmt.Sprintf("Union[%s]", strings.Join(parts, ", "))
}

func (t *Callable) String() string {
	if t.AnyParams {
		return fmt.Sprintf("Callable[..., %s]", t.Ret)
	}
	parts := make([]string, len(t.Params))
	for i, param := range t.Params {
		parts[i] = param.String()
	}
	return fmt.Sprintf("Callable[[%s], %s]", strings.Join(parts, ", "), t.Ret)
}

func (t *Ref) String() string { return fmt.Sprintf("%q", t.Name) }
func (t *Var) String() string { return t.Name }

// IsAny reports whether the descriptor is the Any escape hatch.
func IsAny(defn Definition) bool {
	_, ok := defn.(*anyType)
	return ok
}

// IsNone reports whether the descriptor is the null type.
func IsNone(defn Definition) bool {
	_, ok := defn.(*noneType)
	return ok
}

// ClassOf builds a descriptor for a user class.
func ClassOf(cls *object.Class) *Prim { return &Prim{Name: cls.Name, Class: cls} }

// ListOf builds List[elem].
func ListOf(elem Definition) *Generic {
	return &Generic{Container: KindList, Args: []Definition{elem}}
}

// SetOf builds Set[elem].
func SetOf(elem Definition) *Generic {
	return &Generic{Container: KindSet, Args: []Definition{elem}}
}

// DictOf builds Dict[key, val].
func DictOf(key, val Definition) *Generic {
	return &Generic{Container: KindDict, Args: []Definition{key, val}}
}

// TupleOf builds a fixed-arity Tuple[args...].
func TupleOf(args ...Definition) *Generic {
	return &Generic{Container: KindTuple, Args: args}
}

// VariadicTupleOf builds Tuple[elem, ...].
func VariadicTupleOf(elem Definition) *Generic {
	return &Generic{Container: KindTuple, Args: []Definition{elem}, Variadic: true}
}

// Sloppy builds an unparameterized container descriptor that accepts any
// element types.
func Sloppy(container Container) *Generic { return &Generic{Container: container} }

// Optional builds Union[defn, None].
func Optional(defn Definition) Definition { return NewUnion(defn, None) }

// NewUnion creates a normalized union. Nested unions are flattened,
// duplicates removed and alternatives sorted so that membership is
// order-insensitive. A single surviving alternative is returned directly.
func NewUnion(alts ...Definition) Definition {
	flat := []Definition{}
	for _, alt := range alts {
		if union, ok := alt.(*Union); ok {
			flat = append(flat, union.Alts...)
		} else {
			flat = append(flat, alt)
		}
	}
	seen := map[string]bool{}
	unique := []Definition{}
	for _, alt := range flat {
		key := alt.String()
		if !seen[key] {
			seen[key] = true
			unique = append(unique, alt)
		}
	}
	if len(unique) == 1 {
		return unique[0]
	}
	sort.Slice(unique, func(i, j int) bool {
		return unique[i].String() < unique[j].String()
	})
	return &Union{Alts: unique}
}

// Equal reports whether two descriptors describe the same type.
func Equal(a, b Definition) bool {
	if a == b {
		return true
	}
	return a != nil && b != nil && a.String() == b.String()
}

// HasNone reports whether the descriptor accepts the null value, either
// directly or through a union alternative.
func HasNone(defn Definition) bool {
	switch t := defn.(type) {
	case *anyType, *noneType:
		return true
	case *Union:
		for _, alt := range t.Alts {
			if HasNone(alt) {
				return true
			}
		}
	}
	return false
}

// Subtype reports whether sub is acceptable where super is declared. It is
// a purely structural comparison used for callable-signature compatibility;
// forward references compare by text and type variables accept anything.
func Subtype(sub, super Definition) bool {
	if Equal(sub, super) {
		return true
	}
	switch tsuper := super.(type) {
	case *anyType:
		return true
	case *Var:
		return true
	case *Union:
		if tsub, ok := sub.(*Union); ok {
			for _, alt := range tsub.Alts {
				if !Subtype(alt, super) {
					return false
				}
			}
			return true
		}
		for _, alt := range tsuper.Alts {
			if Subtype(sub, alt) {
				return true
			}
		}
		return false
	case *Prim:
		tsub, ok := sub.(*Prim)
		if !ok {
			return false
		}
		if tsub.Class != nil && tsuper.Class != nil {
			return tsub.Class.IsSubclassOf(tsuper.Class)
		}
		return tsub.Class == nil && tsuper.Class == nil && tsub.Name == tsuper.Name
	case *Generic:
		tsub, ok := sub.(*Generic)
		if !ok || tsub.Container != tsuper.Container {
			return false
		}
		if tsuper.Args == nil {
			return true
		}
		if tsub.Args == nil {
			return false
		}
		if tsuper.Container == KindTuple && tsuper.Variadic {
			for _, arg := range tsub.Args {
				if !Subtype(arg, tsuper.Args[0]) {
					return false
				}
			}
			return true
		}
		if len(tsub.Args) != len(tsuper.Args) || tsub.Variadic != tsuper.Variadic {
			return false
		}
		for i, arg := range tsub.Args {
			if !Subtype(arg, tsuper.Args[i]) {
				return false
			}
		}
		return true
	case *Callable:
		tsub, ok := sub.(*Callable)
		if !ok {
			return false
		}
		if !tsuper.AnyParams {
			if tsub.AnyParams || len(tsub.Params) != len(tsuper.Params) {
				return false
			}
			for i, param := range tsub.Params {
				if !Subtype(param, tsuper.Params[i]) {
					return false
				}
			}
		}
		return Subtype(tsub.Ret, tsuper.Ret)
	case *Ref:
		tsub, ok := sub.(*Ref)
		return ok && tsub.Name == tsuper.Name
	default:
		return false
	}
}
