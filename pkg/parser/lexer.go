package parser

import (
	"errors"
	"fmt"
	"strconv"

	"cilisp/interpreter-go/pkg/ast"
	"cilisp/interpreter-go/pkg/diagnostics"
)

// TokenType represents the kind of token.
type TokenType int

const (
	EOF TokenType = iota
	ILLEGAL

	LPAREN
	RPAREN

	INT
	DOUBLE
	SYMBOL

	// Keywords
	LET
	TYPE
	QUIT
)

var tokenNames = map[TokenType]string{
	EOF:     "end of input",
	ILLEGAL: "illegal",
	LPAREN:  "'('",
	RPAREN:  "')'",
	INT:     "integer",
	DOUBLE:  "double",
	SYMBOL:  "symbol",
	LET:     "'let'",
	TYPE:    "type",
	QUIT:    "'quit'",
}

func (t TokenType) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("token(%d)", int(t))
}

var keywords = map[string]TokenType{
	"let":    LET,
	"int":    TYPE,
	"double": TYPE,
	"quit":   QUIT,
}

// Token is a lexeme with its start position. Number tokens carry the parsed
// value in Value.
type Token struct {
	Type   TokenType
	Lexeme string
	Value  float64
	Line   int
	Col    int
}

func (t Token) position() ast.Position {
	return ast.Position{Line: t.Line, Column: t.Col}
}

// Lexer splits source text into tokens.
type Lexer struct {
	src  string
	cur  int
	line int
	col  int
}

func NewLexer(src string) *Lexer {
	return &Lexer{src: src, line: 1, col: 1}
}

func (l *Lexer) isAtEnd() bool { return l.cur >= len(l.src) }

func (l *Lexer) peek() byte {
	if l.isAtEnd() {
		return 0
	}
	return l.src[l.cur]
}

func (l *Lexer) peekN(n int) byte {
	if l.cur+n >= len(l.src) {
		return 0
	}
	return l.src[l.cur+n]
}

func (l *Lexer) advance() byte {
	ch := l.src[l.cur]
	l.cur++
	if ch == '\n' {
		l.line++
		l.col = 1
	} else {
		l.col++
	}
	return ch
}

func isDigit(b byte) bool    { return b >= '0' && b <= '9' }
func isAlpha(b byte) bool    { return (b >= 'a' && b <= 'z') || (b >= 'A' && b <= 'Z') || b == '_' }
func isAlphaNum(b byte) bool { return isAlpha(b) || isDigit(b) }

// LexError reports an unrecognised character.
type LexError struct {
	Location diagnostics.Location
	Msg      string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("%s: %s", diagnostics.FormatLocation(e.Location), e.Msg)
}

func (l *Lexer) skipWhitespaceAndComments() {
	for !l.isAtEnd() {
		switch ch := l.peek(); {
		case ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n':
			l.advance()
		case ch == ';':
			for !l.isAtEnd() && l.peek() != '\n' {
				l.advance()
			}
		default:
			return
		}
	}
}

func (l *Lexer) scanToken() (Token, error) {
	l.skipWhitespaceAndComments()
	tok := Token{Line: l.line, Col: l.col}
	if l.isAtEnd() {
		tok.Type = EOF
		return tok, nil
	}
	start := l.cur
	ch := l.peek()
	switch {
	case ch == '(':
		l.advance()
		tok.Type = LPAREN
	case ch == ')':
		l.advance()
		tok.Type = RPAREN
	case isDigit(ch) || ((ch == '+' || ch == '-') && isDigit(l.peekN(1))):
		return l.scanNumber(tok)
	case isAlpha(ch):
		for !l.isAtEnd() && isAlphaNum(l.peek()) {
			l.advance()
		}
		tok.Type = SYMBOL
		if kw, ok := keywords[l.src[start:l.cur]]; ok {
			tok.Type = kw
		}
	default:
		l.advance()
		tok.Type = ILLEGAL
		tok.Lexeme = l.src[start:l.cur]
		return tok, &LexError{
			Location: diagnostics.Location{Line: tok.Line, Column: tok.Col},
			Msg:      fmt.Sprintf("unexpected character %q", ch),
		}
	}
	tok.Lexeme = l.src[start:l.cur]
	return tok, nil
}

// scanNumber reads [+-]?digit+ as INT and [+-]?digit+.digit* as DOUBLE.
// Literals beyond the float64 range become +Inf or -Inf.
func (l *Lexer) scanNumber(tok Token) (Token, error) {
	start := l.cur
	if ch := l.peek(); ch == '+' || ch == '-' {
		l.advance()
	}
	for isDigit(l.peek()) {
		l.advance()
	}
	tok.Type = INT
	if l.peek() == '.' {
		tok.Type = DOUBLE
		l.advance()
		for isDigit(l.peek()) {
			l.advance()
		}
	}
	tok.Lexeme = l.src[start:l.cur]
	value, err := strconv.ParseFloat(tok.Lexeme, 64)
	if err != nil && !errors.Is(err, strconv.ErrRange) {
		return tok, &LexError{
			Location: diagnostics.Location{Line: tok.Line, Column: tok.Col},
			Msg:      fmt.Sprintf("invalid number %q", tok.Lexeme),
		}
	}
	tok.Value = value
	return tok, nil
}

// Scan tokenises the whole input. The last token is always EOF.
func (l *Lexer) Scan() ([]Token, error) {
	var out []Token
	for {
		tok, err := l.scanToken()
		if err != nil {
			return nil, err
		}
		out = append(out, tok)
		if tok.Type == EOF {
			return out, nil
		}
	}
}
