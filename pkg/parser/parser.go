package parser

import (
	"errors"
	"fmt"

	"cilisp/interpreter-go/pkg/ast"
	"cilisp/interpreter-go/pkg/diagnostics"
)

// DefaultMaxNesting bounds how deeply parenthesised forms may nest.
const DefaultMaxNesting = 10000

// Program is the result of parsing one chunk of input: the top-level
// expressions in source order, and whether a quit keyword was reached.
// Anything after quit is ignored.
type Program struct {
	Expressions []ast.Node
	Quit        bool
}

// Release tears down every expression of the program.
func (p *Program) Release() int {
	if p == nil {
		return 0
	}
	count := 0
	for _, expr := range p.Expressions {
		count += ast.Release(expr)
	}
	p.Expressions = nil
	return count
}

// SyntaxError reports malformed input. Incomplete is set when the input ended
// before every form was closed, so more input could still make it valid.
type SyntaxError struct {
	Location   diagnostics.Location
	Msg        string
	Incomplete bool
}

func (e *SyntaxError) Error() string {
	if location := diagnostics.FormatLocation(e.Location); location != "" {
		return fmt.Sprintf("syntax error at %s: %s", location, e.Msg)
	}
	return "syntax error: " + e.Msg
}

// IsIncomplete reports whether err means the input stopped mid-form.
func IsIncomplete(err error) bool {
	var syntaxErr *SyntaxError
	return errors.As(err, &syntaxErr) && syntaxErr.Incomplete
}

type Option func(*parser)

// WithMaxNesting overrides DefaultMaxNesting.
func WithMaxNesting(depth int) Option {
	return func(p *parser) {
		if depth > 0 {
			p.maxNesting = depth
		}
	}
}

type parser struct {
	toks       []Token
	i          int
	sink       diagnostics.Sink
	nesting    int
	maxNesting int
}

// Stream hands out top-level expressions one at a time, so a caller can
// evaluate and release each tree before the next one is built.
type Stream struct {
	p    *parser
	quit bool
	err  error
}

// NewStream tokenises src up front; lexical errors are returned here. Syntax
// errors surface from Next as each expression is reached.
func NewStream(src string, sink diagnostics.Sink, opts ...Option) (*Stream, error) {
	toks, err := NewLexer(src).Scan()
	if err != nil {
		var lexErr *LexError
		if errors.As(err, &lexErr) {
			return nil, &SyntaxError{Location: lexErr.Location, Msg: lexErr.Msg}
		}
		return nil, err
	}
	p := &parser{toks: toks, sink: sink, maxNesting: DefaultMaxNesting}
	for _, opt := range opts {
		opt(p)
	}
	return &Stream{p: p}, nil
}

// Next returns the next expression, or nil at end of input or once quit has
// been reached. After an error every later call returns the same error.
func (s *Stream) Next() (ast.Node, error) {
	if s.err != nil {
		return nil, s.err
	}
	if s.quit || s.p.atEnd() {
		return nil, nil
	}
	if s.p.peek().Type == QUIT {
		s.quit = true
		return nil, nil
	}
	expr, err := s.p.parseExpression()
	if err != nil {
		s.err = err
		return nil, err
	}
	return expr, nil
}

// Quit reports whether the quit keyword has been reached.
func (s *Stream) Quit() bool {
	return s.quit
}

// Parse turns src into top-level expressions. Duplicate-binding warnings found
// while building let forms are reported to sink. On error every expression
// built so far is released and nil is returned.
func Parse(src string, sink diagnostics.Sink, opts ...Option) (*Program, error) {
	stream, err := NewStream(src, sink, opts...)
	if err != nil {
		return nil, err
	}
	program := &Program{}
	for {
		expr, err := stream.Next()
		if err != nil {
			program.Release()
			return nil, err
		}
		if expr == nil {
			break
		}
		program.Expressions = append(program.Expressions, expr)
	}
	program.Quit = stream.Quit()
	return program, nil
}

// ParseExpression parses exactly one expression, discarding warnings.
func ParseExpression(src string) (ast.Node, error) {
	program, err := Parse(src, diagnostics.Discard)
	if err != nil {
		return nil, err
	}
	if len(program.Expressions) != 1 || program.Quit {
		program.Release()
		return nil, &SyntaxError{Msg: fmt.Sprintf("expected one expression, found %d", len(program.Expressions))}
	}
	return program.Expressions[0], nil
}

func (p *parser) atEnd() bool { return p.peek().Type == EOF }

func (p *parser) peek() Token { return p.toks[p.i] }

func (p *parser) peekAt(offset int) Token {
	if p.i+offset >= len(p.toks) {
		return p.toks[len(p.toks)-1]
	}
	return p.toks[p.i+offset]
}

func (p *parser) next() Token {
	tok := p.toks[p.i]
	if tok.Type != EOF {
		p.i++
	}
	return tok
}

func (p *parser) errorAt(tok Token, format string, args ...any) error {
	return &SyntaxError{
		Location:   diagnostics.Location{Line: tok.Line, Column: tok.Col},
		Msg:        fmt.Sprintf(format, args...),
		Incomplete: tok.Type == EOF,
	}
}

func (p *parser) need(tt TokenType, context string) (Token, error) {
	tok := p.peek()
	if tok.Type != tt {
		return tok, p.errorAt(tok, "expected %s %s, found %s", tt, context, describe(tok))
	}
	return p.next(), nil
}

func describe(tok Token) string {
	if tok.Type == EOF || tok.Lexeme == "" {
		return tok.Type.String()
	}
	return fmt.Sprintf("%q", tok.Lexeme)
}

func (p *parser) enter(tok Token) error {
	p.nesting++
	if p.nesting > p.maxNesting {
		return p.errorAt(tok, "expression nested deeper than %d levels", p.maxNesting)
	}
	return nil
}

func (p *parser) leave() { p.nesting-- }

func spanFrom(start Token, end Token) ast.Span {
	return ast.Span{
		Start: start.position(),
		End:   ast.Position{Line: end.Line, Column: end.Col + len(end.Lexeme)},
	}
}

// s_expr := number | symbol | f_expr | "(" let_section s_expr ")"
func (p *parser) parseExpression() (ast.Node, error) {
	tok := p.peek()
	switch tok.Type {
	case INT, DOUBLE:
		p.next()
		typ := ast.IntType
		if tok.Type == DOUBLE {
			typ = ast.DoubleType
		}
		number := ast.NewNumber(tok.Value, typ)
		ast.SetSpan(number, spanFrom(tok, tok))
		return number, nil
	case SYMBOL:
		p.next()
		ref := ast.NewSymbolReference(tok.Lexeme)
		ast.SetSpan(ref, spanFrom(tok, tok))
		return ref, nil
	case LPAREN:
		if err := p.enter(tok); err != nil {
			return nil, err
		}
		defer p.leave()
		switch p.peekAt(1).Type {
		case LPAREN:
			return p.parseScope()
		case SYMBOL:
			return p.parseCall()
		default:
			return nil, p.errorAt(p.peekAt(1), "expected function name or let section, found %s", describe(p.peekAt(1)))
		}
	default:
		return nil, p.errorAt(tok, "unexpected %s", describe(tok))
	}
}

// f_expr := "(" FUNC s_expr_list ")"
func (p *parser) parseCall() (ast.Node, error) {
	open := p.next()
	name := p.next()
	operands, err := p.parseExpressionList()
	if err != nil {
		return nil, err
	}
	closing, err := p.need(RPAREN, "to close "+name.Lexeme)
	if err != nil {
		releaseList(operands)
		return nil, err
	}
	call := ast.NewFunctionCall(ast.ResolveOperator(name.Lexeme), name.Lexeme, operands)
	ast.SetSpan(call, spanFrom(open, closing))
	return call, nil
}

// s_expr_list := s_expr s_expr_list | <empty>
//
// Operands are collected in source order; on error the ones already built
// are released.
func (p *parser) parseExpressionList() (ast.ExpressionList, error) {
	var operands ast.ExpressionList
	for {
		if tt := p.peek().Type; tt == RPAREN || tt == EOF {
			return operands, nil
		}
		expr, err := p.parseExpression()
		if err != nil {
			releaseList(operands)
			return nil, err
		}
		operands = append(operands, expr)
	}
}

// "(" let_section s_expr ")"
func (p *parser) parseScope() (ast.Node, error) {
	open := p.next()
	table, err := p.parseLetSection()
	if err != nil {
		return nil, err
	}
	body, err := p.parseExpression()
	if err != nil {
		releaseTable(table)
		return nil, err
	}
	closing, err := p.need(RPAREN, "to close let expression")
	if err != nil {
		releaseTable(table)
		ast.Release(body)
		return nil, err
	}
	scope := ast.NewScope(table, body)
	ast.SetSpan(scope, spanFrom(open, closing))
	return scope, nil
}

// let_section := "(" "let" let_elem+ ")"
func (p *parser) parseLetSection() (*ast.SymbolTable, error) {
	open := p.next()
	if err := p.enter(open); err != nil {
		return nil, err
	}
	defer p.leave()
	if _, err := p.need(LET, "to open let section"); err != nil {
		return nil, err
	}
	table := ast.NewSymbolTable()
	for {
		tok := p.peek()
		if tok.Type == RPAREN {
			break
		}
		if tok.Type != LPAREN {
			releaseTable(table)
			return nil, p.errorAt(tok, "expected binding, found %s", describe(tok))
		}
		binding, err := p.parseBinding()
		if err != nil {
			releaseTable(table)
			return nil, err
		}
		table = ast.MergeBinding(binding, table, p.sink)
	}
	closing := p.next()
	if table.Len() == 0 {
		return nil, p.errorAt(closing, "let section needs at least one binding")
	}
	return table, nil
}

// let_elem := "(" [TYPE] SYMBOL s_expr ")"
func (p *parser) parseBinding() (*ast.Binding, error) {
	open := p.next()
	if err := p.enter(open); err != nil {
		return nil, err
	}
	defer p.leave()
	cast := ast.NoType
	if tok := p.peek(); tok.Type == TYPE {
		p.next()
		cast = ast.IntType
		if tok.Lexeme == "double" {
			cast = ast.DoubleType
		}
	}
	id, err := p.need(SYMBOL, "as binding name")
	if err != nil {
		return nil, err
	}
	value, err := p.parseExpression()
	if err != nil {
		return nil, err
	}
	closing, err := p.need(RPAREN, "to close binding "+id.Lexeme)
	if err != nil {
		ast.Release(value)
		return nil, err
	}
	binding := ast.NewBinding(id.Lexeme, value, cast)
	binding.SetSpan(spanFrom(open, closing))
	return binding, nil
}

func releaseList(list ast.ExpressionList) {
	for _, expr := range list {
		ast.Release(expr)
	}
}

func releaseTable(table *ast.SymbolTable) {
	for _, binding := range table.Bindings() {
		ast.Release(binding.Value)
	}
}
