// Package object is the dynamic value model that checking operates on.
// Values are plain `any` over a small closed set of Go types plus the
// class/instance/function kinds defined here.
package object

import (
	"fmt"
	"sort"
	"strings"
)

type (
	// List is a mutable variable-length sequence.
	List struct{ Items []any }
	// Tuple is an immutable fixed-arity sequence.
	Tuple struct{ Items []any }
	// Set is an unordered collection of unique values.
	Set struct{ Items []any }
	// Entry is a single key value pair in a Dict.
	Entry struct{ Key, Val any }
	// Dict is a mapping that remembers insertion order.
	Dict struct{ Entries []Entry }

	// Param describes a single declared parameter of a Fn. Type holds the
	// literal annotation text and is empty when the parameter was left
	// unannotated.
	Param struct {
		Name       string
		Type       string
		HasDefault bool
		Default    any
	}
	// Fn is an annotated callable. Impl receives the bound receiver (nil
	// for plain functions) and the keyword arguments.
	Fn struct {
		Name      string
		Receiver  string // "", "self" or "cls"
		Params    []Param
		Return    string // annotation text, "None" declares no produced value
		HasReturn bool
		Impl      func(self any, kwargs map[string]any) (any, error)
	}

	// MethodKind discriminates the member kinds a class can carry.
	MethodKind int
	// Method is a single member of a class.
	Method struct {
		Kind MethodKind
		Fn   *Fn
	}
	// Class is a named type with single inheritance.
	Class struct {
		Name    string
		Parent  *Class
		Methods []Method
	}
	// Instance is a value of a user defined class.
	Instance struct {
		Class  *Class
		Fields map[string]any
	}

	// Classed is implemented by values outside this package that belong to
	// a class, such as record instances.
	Classed interface{ ObjectClass() *Class }
	// Reprer lets foreign values control their own repr output.
	Reprer interface{ Repr() string }
)

const (
	// MethodNormal is a plain instance method.
	MethodNormal MethodKind = iota
	// MethodConstructor is the class constructor.
	MethodConstructor
	// MethodStatic is a method without a receiver.
	MethodStatic
	// MethodGetter is a property getter.
	MethodGetter
	// MethodSetter is a property setter.
	MethodSetter
)

// IsSubclassOf reports whether c is other or derives from other.
func (c *Class) IsSubclassOf(other *Class) bool {
	for cur := c; cur != nil; cur = cur.Parent {
		if cur == other {
			return true
		}
	}
	return false
}

// New creates an instance of the class with the given field values.
func (c *Class) New(fields map[string]any) *Instance {
	if fields == nil {
		fields = map[string]any{}
	}
	return &Instance{Class: c, Fields: fields}
}

// ObjectClass returns the class of the instance.
func (i *Instance) ObjectClass() *Class { return i.Class }

func (fn *Fn) String() string {
	if fn.Name != "" {
		return fmt.Sprintf("function:[%s()]", fn.Name)
	}
	return fmt.Sprintf("function:[%p]", fn)
}

func (c *Class) String() string { return fmt.Sprintf("class:[%s]", c.Name) }

func (i *Instance) String() string { return Repr(i) }

// ClassOf extracts the class a value belongs to, if it has one.
func ClassOf(in any) (*Class, bool) {
	switch tin := in.(type) {
	case *Instance:
		return tin.Class, true
	case Classed:
		return tin.ObjectClass(), true
	default:
		return nil, false
	}
}

// TypeName returns the runtime type name of a value for diagnostics.
func TypeName(in any) string {
	switch tin := in.(type) {
	case nil:
		return "None"
	case bool:
		return "bool"
	case int64:
		return "int"
	case float64:
		return "float"
	case string:
		return "str"
	case *List:
		return "list"
	case *Tuple:
		return "tuple"
	case *Set:
		return "set"
	case *Dict:
		return "dict"
	case *Fn:
		return "function"
	case *Class:
		return "class"
	case *Instance:
		return tin.Class.Name
	case Classed:
		return tin.ObjectClass().Name
	default:
		return fmt.Sprintf("%T", in)
	}
}

// Repr formats a value the way it would be written in source, with strings
// quoted, for use in error messages.
func Repr(in any) string {
	switch tin := in.(type) {
	case nil:
		return "None"
	case bool:
		if tin {
			return "true"
		}
		return "false"
	case int64:
		return fmt.Sprintf("%d", tin)
	case float64:
		out := fmt.Sprintf("%v", tin)
		if !strings.ContainsAny(out, ".eE") {
			out += ".0"
		}
		return out
	case string:
		return "'" + tin + "'"
	case *List:
		return "[" + reprItems(tin.Items) + "]"
	case *Tuple:
		return "(" + reprItems(tin.Items) + ")"
	case *Set:
		return "{" + reprItems(tin.Items) + "}"
	case *Dict:
		parts := make([]string, len(tin.Entries))
		for i, entry := range tin.Entries {
			parts[i] = fmt.Sprintf("%v: %v", Repr(entry.Key), Repr(entry.Val))
		}
		return "{" + strings.Join(parts, ", ") + "}"
	case *Instance:
		keys := make([]string, 0, len(tin.Fields))
		for key := range tin.Fields {
			keys = append(keys, key)
		}
		sort.Strings(keys)
		parts := make([]string, len(keys))
		for i, key := range keys {
			parts[i] = fmt.Sprintf("%v=%v", key, Repr(tin.Fields[key]))
		}
		return fmt.Sprintf("%s(%s)", tin.Class.Name, strings.Join(parts, ", "))
	case Reprer:
		return tin.Repr()
	case fmt.Stringer:
		return tin.String()
	default:
		return fmt.Sprintf("%v", in)
	}
}

func reprItems(items []any) string {
	parts := make([]string, len(items))
	for i, item := range items {
		parts[i] = Repr(item)
	}
	return strings.Join(parts, ", ")
}

// Equal compares two values structurally. Containers compare element-wise,
// instances compare class and fields, everything else compares directly.
func Equal(a, b any) bool {
	switch ta := a.(type) {
	case *List:
		tb, ok := b.(*List)
		return ok && equalItems(ta.Items, tb.Items)
	case *Tuple:
		tb, ok := b.(*Tuple)
		return ok && equalItems(ta.Items, tb.Items)
	case *Set:
		tb, ok := b.(*Set)
		if !ok || len(ta.Items) != len(tb.Items) {
			return false
		}
		for _, item := range ta.Items {
			if !setContains(tb, item) {
				return false
			}
		}
		return true
	case *Dict:
		tb, ok := b.(*Dict)
		if !ok || len(ta.Entries) != len(tb.Entries) {
			return false
		}
		for _, entry := range ta.Entries {
			val, found := tb.Get(entry.Key)
			if !found || !Equal(entry.Val, val) {
				return false
			}
		}
		return true
	case *Instance:
		tb, ok := b.(*Instance)
		if !ok || ta.Class != tb.Class || len(ta.Fields) != len(tb.Fields) {
			return false
		}
		for key, val := range ta.Fields {
			other, found := tb.Fields[key]
			if !found || !Equal(val, other) {
				return false
			}
		}
		return true
	default:
		return a == b
	}
}

func equalItems(a, b []any) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

func setContains(set *Set, val any) bool {
	for _, item := range set.Items {
		if Equal(item, val) {
			return true
		}
	}
	return false
}

// Get looks a key up in the dict by structural equality.
func (d *Dict) Get(key any) (any, bool) {
	for _, entry := range d.Entries {
		if Equal(entry.Key, key) {
			return entry.Val, true
		}
	}
	return nil, false
}

// Set stores a key value pair, replacing an existing entry for the key.
func (d *Dict) Set(key, val any) {
	for i, entry := range d.Entries {
		if Equal(entry.Key, key) {
			d.Entries[i].Val = val
			return
		}
	}
	d.Entries = append(d.Entries, Entry{Key: key, Val: val})
}

// DeepCopy copies a value recursively. Scalars are returned as is,
// containers are rebuilt, instances are copied field by field. Functions
// and classes are shared, not copied.
func DeepCopy(in any) any {
	switch tin := in.(type) {
	case *List:
		return &List{Items: deepCopyItems(tin.Items)}
	case *Tuple:
		return &Tuple{Items: deepCopyItems(tin.Items)}
	case *Set:
		return &Set{Items: deepCopyItems(tin.Items)}
	case *Dict:
		entries := make([]Entry, len(tin.Entries))
		for i, entry := range tin.Entries {
			entries[i] = Entry{Key: DeepCopy(entry.Key), Val: DeepCopy(entry.Val)}
		}
		return &Dict{Entries: entries}
	case *Instance:
		fields := make(map[string]any, len(tin.Fields))
		for key, val := range tin.Fields {
			fields[key] = DeepCopy(val)
		}
		return &Instance{Class: tin.Class, Fields: fields}
	default:
		return in
	}
}

func deepCopyItems(items []any) []any {
	out := make([]any, len(items))
	for i, item := range items {
		out[i] = DeepCopy(item)
	}
	return out
}

// NewList is a convenience constructor for tests and embedding code.
func NewList(items ...any) *List { return &List{Items: items} }

// NewTuple is a convenience constructor for tests and embedding code.
func NewTuple(items ...any) *Tuple { return &Tuple{Items: items} }

// NewSet is a convenience constructor for tests and embedding code.
func NewSet(items ...any) *Set { return &Set{Items: items} }

// NewDict builds a dict from alternating key value arguments.
func NewDict(pairs ...any) *Dict {
	dict := &Dict{}
	for i := 0; i+1 < len(pairs); i += 2 {
		dict.Set(pairs[i], pairs[i+1])
	}
	return dict
}
