package resolve

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/tanema/pedant/src/perrors"
)

type (
	tokenKind int
	token     struct {
		kind   tokenKind
		text   string
		col    int
		quoted bool
	}
	lexer struct {
		src    []rune
		pos    int
		peeked *token
	}
)

const (
	tokenEOF tokenKind = iota
	tokenName
	tokenOpenBracket
	tokenCloseBracket
	tokenComma
	tokenPipe
	tokenEllipsis
)

func newLexer(src string) *lexer {
	return &lexer{src: []rune(strings.TrimSpace(src))}
}

func (lex *lexer) errf(msg string, data ...any) error {
	return perrors.New(perrors.ForwardRefErr, msg, data...)
}

func (lex *lexer) peek() (*token, error) {
	if lex.peeked == nil {
		tk, err := lex.scan()
		if err != nil {
			return nil, err
		}
		lex.peeked = tk
	}
	return lex.peeked, nil
}

func (lex *lexer) next() (*token, error) {
	if lex.peeked != nil {
		tk := lex.peeked
		lex.peeked = nil
		return tk, nil
	}
	return lex.scan()
}

func (lex *lexer) mustNext(kind tokenKind, what string) (*token, error) {
	tk, err := lex.next()
	if err != nil {
		return nil, err
	}
	if tk.kind != kind {
		return nil, lex.errf("expected %v at column %v but found %q", what, tk.col, tk.text)
	}
	return tk, nil
}

func (lex *lexer) scan() (*token, error) {
	for lex.pos < len(lex.src) && unicode.IsSpace(lex.src[lex.pos]) {
		lex.pos++
	}
	if lex.pos >= len(lex.src) {
		return &token{kind: tokenEOF, col: lex.pos}, nil
	}
	start := lex.pos
	ch := lex.src[lex.pos]
	switch {
	case ch == '[':
		lex.pos++
		return &token{kind: tokenOpenBracket, text: "[", col: start}, nil
	case ch == ']':
		lex.pos++
		return &token{kind: tokenCloseBracket, text: "]", col: start}, nil
	case ch == ',':
		lex.pos++
		return &token{kind: tokenComma, text: ",", col: start}, nil
	case ch == '|':
		lex.pos++
		return &token{kind: tokenPipe, text: "|", col: start}, nil
	case ch == '.':
		if strings.HasPrefix(string(lex.src[lex.pos:]), "...") {
			lex.pos += 3
			return &token{kind: tokenEllipsis, text: "...", col: start}, nil
		}
		return nil, lex.errf("unexpected character %q at column %v", string(ch), start)
	case unicode.IsLetter(ch) || ch == '_':
		for lex.pos < len(lex.src) && isNameRune(lex.src[lex.pos]) {
			lex.pos++
		}
		return &token{kind: tokenName, text: string(lex.src[start:lex.pos]), col: start}, nil
	// quoted names appear when an annotation nests a string forward
	// reference, e.g. List['Node']
	case ch == '\'' || ch == '"':
		lex.pos++
		for lex.pos < len(lex.src) && lex.src[lex.pos] != ch {
			lex.pos++
		}
		if lex.pos >= len(lex.src) {
			return nil, lex.errf("unterminated quoted name at column %v", start)
		}
		text := string(lex.src[start+1 : lex.pos])
		lex.pos++
		return &token{kind: tokenName, text: text, col: start, quoted: true}, nil
	default:
		return nil, lex.errf("unexpected character %q at column %v", string(ch), start)
	}
}

func isNameRune(ch rune) bool {
	return unicode.IsLetter(ch) || unicode.IsDigit(ch) || ch == '_' || ch == '.'
}

func (tk *token) String() string {
	if tk.kind == tokenEOF {
		return "<eof>"
	}
	return fmt.Sprintf("%q", tk.text)
}
