// Package filter implements the name filter language used by queries:
//
//	domain = alphabet and letter in (A, E) or not @Vowel = true
//
// Fields are "domain", any property key, or "@Attr" for an attribute read.
package filter

import "strings"

// TokenType represents the type of lexical token.
type TokenType int

const (
	TokenEOF TokenType = iota
	TokenIllegal

	// Literals
	TokenIdent  // fields, unquoted values
	TokenAttr   // @Attr
	TokenString // "quoted" or 'quoted'
	TokenNumber

	// Delimiters
	TokenLParen // (
	TokenRParen // )
	TokenComma  // ,

	// Comparison operators
	TokenEq       // =
	TokenNeq      // !=
	TokenLt       // <
	TokenGt       // >
	TokenLte      // <=
	TokenGte      // >=
	TokenMatch    // ~
	TokenNotMatch // !~

	// Keywords
	TokenAnd
	TokenOr
	TokenNot
	TokenIn
	TokenTrue
	TokenFalse
)

var tokenNames = map[TokenType]string{
	TokenEOF:      "EOF",
	TokenIllegal:  "ILLEGAL",
	TokenIdent:    "IDENT",
	TokenAttr:     "ATTR",
	TokenString:   "STRING",
	TokenNumber:   "NUMBER",
	TokenLParen:   "(",
	TokenRParen:   ")",
	TokenComma:    ",",
	TokenEq:       "=",
	TokenNeq:      "!=",
	TokenLt:       "<",
	TokenGt:       ">",
	TokenLte:      "<=",
	TokenGte:      ">=",
	TokenMatch:    "~",
	TokenNotMatch: "!~",
	TokenAnd:      "AND",
	TokenOr:       "OR",
	TokenNot:      "NOT",
	TokenIn:       "IN",
	TokenTrue:     "TRUE",
	TokenFalse:    "FALSE",
}

// String returns the string representation of the token type.
func (t TokenType) String() string {
	if s, ok := tokenNames[t]; ok {
		return s
	}
	return "UNKNOWN"
}

// Token represents a lexical token.
type Token struct {
	Type    TokenType
	Literal string
	Pos     int
}

var keywords = map[string]TokenType{
	"and":   TokenAnd,
	"or":    TokenOr,
	"not":   TokenNot,
	"in":    TokenIn,
	"true":  TokenTrue,
	"false": TokenFalse,
}

// LookupKeyword returns the keyword token type for ident, or TokenIdent.
func LookupKeyword(ident string) TokenType {
	if tok, ok := keywords[strings.ToLower(ident)]; ok {
		return tok
	}
	return TokenIdent
}

// IsComparisonOp returns true if the token type is a comparison operator.
func (t TokenType) IsComparisonOp() bool {
	switch t {
	case TokenEq, TokenNeq, TokenLt, TokenGt, TokenLte, TokenGte, TokenMatch, TokenNotMatch:
		return true
	}
	return false
}
