// Package resolve turns literal annotation text into a type descriptor.
// Resolution happens lazily at validation time, never at declaration time,
// which is what allows self-referential and mutually-referential
// declarations to work: by the time a value is checked, the snapshot
// contains the finished class.
package resolve

import (
	"errors"
	"fmt"

	"github.com/tanema/pedant/src/perrors"
	"github.com/tanema/pedant/src/scope"
	"github.com/tanema/pedant/src/types"
)

// ErrUndefined marks annotation text that parsed cleanly but names
// something not visible in the snapshot yet, as opposed to text that is
// malformed. Declaration-time compilation defers the former and rejects
// the latter.
var ErrUndefined = errors.New("is not defined in the validation context")

type parser struct {
	lex  *lexer
	snap *scope.Snapshot
}

// Resolve interprets annotation text as a composite expression over the
// builtin primitive names, the generic constructors and the names bound in
// the snapshot. Arbitrarily nested composites resolve in one call.
func Resolve(text string, snap *scope.Snapshot) (types.Definition, error) {
	if text == "" {
		return nil, perrors.New(perrors.ForwardRefErr, "empty type annotation")
	}
	p := &parser{lex: newLexer(text), snap: snap}
	defn, err := p.expr()
	if err != nil {
		return nil, err
	}
	tk, err := p.lex.next()
	if err != nil {
		return nil, err
	}
	if tk.kind != tokenEOF {
		return nil, p.lex.errf("unexpected trailing %v in annotation %q", tk, text)
	}
	return defn, nil
}

// expr parses `atom ('|' atom)*`, folding pipe alternatives into a union.
func (p *parser) expr() (types.Definition, error) {
	first, err := p.atom()
	if err != nil {
		return nil, err
	}
	alts := []types.Definition{first}
	for {
		tk, err := p.lex.peek()
		if err != nil {
			return nil, err
		}
		if tk.kind != tokenPipe {
			break
		}
		if _, err := p.lex.next(); err != nil {
			return nil, err
		}
		alt, err := p.atom()
		if err != nil {
			return nil, err
		}
		alts = append(alts, alt)
	}
	if len(alts) == 1 {
		return first, nil
	}
	return types.NewUnion(alts...), nil
}

func (p *parser) atom() (types.Definition, error) {
	tk, err := p.lex.mustNext(tokenName, "a type name")
	if err != nil {
		return nil, err
	}
	// a quoted token may carry any expression, not just a bare name,
	// e.g. List['Dict[str, int]']
	if tk.quoted {
		return Resolve(tk.text, p.snap)
	}
	switch tk.text {
	case "List", "list":
		return p.container(types.KindList, 1)
	case "Set", "set", "FrozenSet", "frozenset":
		return p.container(types.KindSet, 1)
	case "Dict", "dict", "Mapping":
		return p.container(types.KindDict, 2)
	case "Tuple", "tuple":
		return p.tuple()
	case "Union":
		return p.union()
	case "Optional":
		args, err := p.subscript(1)
		if err != nil {
			return nil, err
		}
		if args == nil {
			return nil, p.lex.errf("Optional requires a type argument")
		}
		return types.Optional(args[0]), nil
	case "Callable":
		return p.callable()
	default:
		return p.lookup(tk.text)
	}
}

func (p *parser) lookup(name string) (types.Definition, error) {
	binding, ok := p.snap.Lookup(name)
	if !ok {
		return nil, &perrors.Error{
			Kind: perrors.ForwardRefErr,
			Err:  fmt.Errorf("name %q %w", name, ErrUndefined),
		}
	}
	defn, ok := scope.Definition(binding)
	if !ok {
		return nil, perrors.New(perrors.ForwardRefErr, "name %q is bound to %T which is not usable as a type", name, binding)
	}
	return defn, nil
}

// subscript parses an optional `[expr, ...]` group. It returns nil args
// when no subscript follows, which callers treat as the sloppy,
// unparameterized form.
func (p *parser) subscript(want int) ([]types.Definition, error) {
	tk, err := p.lex.peek()
	if err != nil {
		return nil, err
	}
	if tk.kind != tokenOpenBracket {
		return nil, nil
	}
	if _, err := p.lex.next(); err != nil {
		return nil, err
	}
	args := []types.Definition{}
	for {
		arg, err := p.expr()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		tk, err := p.lex.next()
		if err != nil {
			return nil, err
		}
		if tk.kind == tokenCloseBracket {
			break
		}
		if tk.kind != tokenComma {
			return nil, p.lex.errf("expected ',' or ']' but found %v", tk)
		}
	}
	if want > 0 && len(args) != want {
		return nil, p.lex.errf("expected %v type arguments but found %v", want, len(args))
	}
	return args, nil
}

func (p *parser) container(kind types.Container, arity int) (types.Definition, error) {
	args, err := p.subscript(arity)
	if err != nil {
		return nil, err
	}
	if args == nil {
		return types.Sloppy(kind), nil
	}
	return &types.Generic{Container: kind, Args: args}, nil
}

func (p *parser) tuple() (types.Definition, error) {
	tk, err := p.lex.peek()
	if err != nil {
		return nil, err
	}
	if tk.kind != tokenOpenBracket {
		return types.Sloppy(types.KindTuple), nil
	}
	if _, err := p.lex.next(); err != nil {
		return nil, err
	}
	args := []types.Definition{}
	variadic := false
	for {
		tk, err := p.lex.peek()
		if err != nil {
			return nil, err
		}
		if tk.kind == tokenEllipsis {
			if len(args) != 1 {
				return nil, p.lex.errf("'...' in a Tuple requires exactly one preceding type")
			}
			if _, err := p.lex.next(); err != nil {
				return nil, err
			}
			variadic = true
		} else {
			arg, err := p.expr()
			if err != nil {
				return nil, err
			}
			args = append(args, arg)
		}
		tk, err = p.lex.next()
		if err != nil {
			return nil, err
		}
		if tk.kind == tokenCloseBracket {
			break
		}
		if tk.kind != tokenComma || variadic {
			return nil, p.lex.errf("expected ']' but found %v", tk)
		}
	}
	if len(args) == 0 {
		return nil, p.lex.errf("Tuple requires at least one type argument")
	}
	return &types.Generic{Container: types.KindTuple, Args: args, Variadic: variadic}, nil
}

func (p *parser) union() (types.Definition, error) {
	args, err := p.subscript(0)
	if err != nil {
		return nil, err
	}
	if len(args) < 2 {
		return nil, p.lex.errf("Union requires at least two type arguments")
	}
	return types.NewUnion(args...), nil
}

// callable parses Callable[[params...], ret] and Callable[..., ret].
func (p *parser) callable() (types.Definition, error) {
	tk, err := p.lex.peek()
	if err != nil {
		return nil, err
	}
	if tk.kind != tokenOpenBracket {
		return nil, p.lex.errf("Callable requires parameter and return type arguments")
	}
	if _, err := p.lex.next(); err != nil {
		return nil, err
	}

	defn := &types.Callable{}
	tk, err = p.lex.peek()
	if err != nil {
		return nil, err
	}
	switch tk.kind {
	case tokenEllipsis:
		if _, err := p.lex.next(); err != nil {
			return nil, err
		}
		defn.AnyParams = true
	case tokenOpenBracket:
		if _, err := p.lex.next(); err != nil {
			return nil, err
		}
		for {
			tk, err := p.lex.peek()
			if err != nil {
				return nil, err
			}
			if tk.kind == tokenCloseBracket && len(defn.Params) == 0 {
				break
			}
			param, err := p.expr()
			if err != nil {
				return nil, err
			}
			defn.Params = append(defn.Params, param)
			tk, err = p.lex.peek()
			if err != nil {
				return nil, err
			}
			if tk.kind != tokenComma {
				break
			}
			if _, err := p.lex.next(); err != nil {
				return nil, err
			}
		}
		if _, err := p.lex.mustNext(tokenCloseBracket, "']'"); err != nil {
			return nil, err
		}
	default:
		return nil, p.lex.errf("Callable parameters must be '[...]' or '...' but found %v", tk)
	}

	if _, err := p.lex.mustNext(tokenComma, "','"); err != nil {
		return nil, err
	}
	ret, err := p.expr()
	if err != nil {
		return nil, err
	}
	defn.Ret = ret
	if _, err := p.lex.mustNext(tokenCloseBracket, "']'"); err != nil {
		return nil, err
	}
	return defn, nil
}
