package filter

import (
	"errors"
	"fmt"
)

// ErrSyntax is wrapped by every parse error.
var ErrSyntax = errors.New("filter syntax error")

// Parser parses filter tokens into an AST.
type Parser struct {
	lexer   *Lexer
	current Token
	peek    Token
}

// NewParser creates a parser for the input.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	p.nextToken()
	p.nextToken()
	return p
}

// Parse parses the whole input. An empty input yields a nil Expr.
func (p *Parser) Parse() (Expr, error) {
	if p.current.Type == TokenEOF {
		return nil, nil
	}

	expr, err := p.parseExpression()
	if err != nil {
		return nil, err
	}

	if p.current.Type != TokenEOF {
		return nil, p.errorf("unexpected token %q", p.current.Literal)
	}

	return expr, nil
}

// Parse is a shorthand for NewParser(input).Parse().
func Parse(input string) (Expr, error) {
	return NewParser(input).Parse()
}

func (p *Parser) nextToken() {
	p.current = p.peek
	p.peek = p.lexer.NextToken()
}

func (p *Parser) errorf(format string, args ...any) error {
	return fmt.Errorf("%w at position %d: %s", ErrSyntax, p.current.Pos, fmt.Sprintf(format, args...))
}

// expression = term { "or" term }
func (p *Parser) parseExpression() (Expr, error) {
	left, err := p.parseTerm()
	if err != nil {
		return nil, err
	}

	for p.current.Type == TokenOr {
		p.nextToken()
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: TokenOr, Right: right}
	}

	return left, nil
}

// term = factor { "and" factor }
func (p *Parser) parseTerm() (Expr, error) {
	left, err := p.parseFactor()
	if err != nil {
		return nil, err
	}

	for p.current.Type == TokenAnd {
		p.nextToken()
		right, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		left = &BinaryExpr{Left: left, Op: TokenAnd, Right: right}
	}

	return left, nil
}

// factor = "not" factor | "(" expression ")" | comparison
func (p *Parser) parseFactor() (Expr, error) {
	switch p.current.Type {
	case TokenNot:
		p.nextToken()
		expr, err := p.parseFactor()
		if err != nil {
			return nil, err
		}
		return &NotExpr{Expr: expr}, nil

	case TokenLParen:
		p.nextToken()
		expr, err := p.parseExpression()
		if err != nil {
			return nil, err
		}
		if p.current.Type != TokenRParen {
			return nil, p.errorf("expected ')', got %q", p.current.Literal)
		}
		p.nextToken()
		return expr, nil

	default:
		return p.parseComparison()
	}
}

// comparison = field op value | field ["not"] "in" "(" values ")"
func (p *Parser) parseComparison() (Expr, error) {
	var field Field
	switch p.current.Type {
	case TokenAttr:
		field = Field{Kind: FieldAttribute, Name: p.current.Literal}
	case TokenIdent:
		if p.current.Literal == "domain" {
			field = Field{Kind: FieldDomain}
		} else {
			field = Field{Kind: FieldProperty, Name: p.current.Literal}
		}
	default:
		return nil, p.errorf("expected field name, got %q", p.current.Literal)
	}
	p.nextToken()

	if p.current.Type == TokenNot && p.peek.Type == TokenIn {
		p.nextToken()
		p.nextToken()
		return p.parseInExpr(field, true)
	}

	if p.current.Type == TokenIn {
		p.nextToken()
		return p.parseInExpr(field, false)
	}

	if !p.current.Type.IsComparisonOp() {
		return nil, p.errorf("expected operator, got %q", p.current.Literal)
	}
	op := p.current.Type
	p.nextToken()

	value, err := p.parseValue()
	if err != nil {
		return nil, err
	}

	return &CompareExpr{Field: field, Op: op, Value: value}, nil
}

func (p *Parser) parseInExpr(field Field, not bool) (Expr, error) {
	if p.current.Type != TokenLParen {
		return nil, p.errorf("expected '(', got %q", p.current.Literal)
	}
	p.nextToken()

	var values []Value
	for {
		value, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		values = append(values, value)

		if p.current.Type == TokenComma {
			p.nextToken()
			continue
		}
		break
	}

	if p.current.Type != TokenRParen {
		return nil, p.errorf("expected ')', got %q", p.current.Literal)
	}
	p.nextToken()

	return &InExpr{Field: field, Values: values, Not: not}, nil
}

func (p *Parser) parseValue() (Value, error) {
	var v Value

	switch p.current.Type {
	case TokenString, TokenIdent:
		v = Value{Type: ValueString, Raw: p.current.Literal, String: p.current.Literal}
	case TokenNumber:
		v = numberValue(p.current.Literal)
	case TokenTrue:
		v = Value{Type: ValueBool, Raw: p.current.Literal, String: "true", Bool: true}
	case TokenFalse:
		v = Value{Type: ValueBool, Raw: p.current.Literal, String: "false"}
	default:
		return v, p.errorf("expected value, got %q", p.current.Literal)
	}

	p.nextToken()
	return v, nil
}
