package filter

// Lexer tokenizes filter expressions.
type Lexer struct {
	input string
	pos   int  // position after ch
	ch    byte // current character
}

// NewLexer creates a new lexer for the input string.
func NewLexer(input string) *Lexer {
	l := &Lexer{input: input}
	l.readChar()
	return l
}

// NextToken returns the next token from the input.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	tok := Token{Pos: l.pos - 1}

	switch l.ch {
	case '(':
		tok.Type, tok.Literal = TokenLParen, "("
	case ')':
		tok.Type, tok.Literal = TokenRParen, ")"
	case ',':
		tok.Type, tok.Literal = TokenComma, ","
	case '=':
		tok.Type, tok.Literal = TokenEq, "="
	case '!':
		switch l.peekChar() {
		case '=':
			l.readChar()
			tok.Type, tok.Literal = TokenNeq, "!="
		case '~':
			l.readChar()
			tok.Type, tok.Literal = TokenNotMatch, "!~"
		default:
			tok.Type, tok.Literal = TokenIllegal, "!"
		}
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Literal = TokenLte, "<="
		} else {
			tok.Type, tok.Literal = TokenLt, "<"
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Literal = TokenGte, ">="
		} else {
			tok.Type, tok.Literal = TokenGt, ">"
		}
	case '~':
		tok.Type, tok.Literal = TokenMatch, "~"
	case '"', '\'':
		lit, ok := l.readString(l.ch)
		if !ok {
			tok.Type, tok.Literal = TokenIllegal, lit
			return tok
		}
		tok.Type, tok.Literal = TokenString, lit
		return tok
	case '@':
		l.readChar()
		tok.Literal = l.readWord()
		if tok.Literal == "" {
			tok.Type, tok.Literal = TokenIllegal, "@"
			return tok
		}
		tok.Type = TokenAttr
		return tok
	case 0:
		tok.Type = TokenEOF
		return tok
	default:
		if isDigit(l.ch) || (l.ch == '-' && isDigit(l.peekChar())) {
			tok.Literal = l.readWord()
			tok.Type = TokenNumber
			if !isNumber(tok.Literal) {
				tok.Type = TokenIdent
			}
			return tok
		}
		if isWordChar(l.ch) {
			tok.Literal = l.readWord()
			tok.Type = LookupKeyword(tok.Literal)
			return tok
		}
		tok.Type, tok.Literal = TokenIllegal, string(l.ch)
	}

	l.readChar()
	return tok
}

func (l *Lexer) readChar() {
	if l.pos >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.pos]
	}
	l.pos++
}

func (l *Lexer) peekChar() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		l.readChar()
	}
}

// readWord reads an unquoted word. Besides letters and digits it accepts the
// characters that appear in domains, paths and glob patterns.
func (l *Lexer) readWord() string {
	start := l.pos - 1
	for isWordChar(l.ch) || isDigit(l.ch) {
		l.readChar()
	}
	return l.input[start : l.pos-1]
}

// readString reads a quoted string. ok is false when the closing quote is missing.
func (l *Lexer) readString(quote byte) (string, bool) {
	l.readChar()
	start := l.pos - 1
	for l.ch != quote && l.ch != 0 {
		l.readChar()
	}
	str := l.input[start : l.pos-1]
	if l.ch != quote {
		return str, false
	}
	l.readChar()
	return str, true
}

func isWordChar(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= 0x80:
		return true
	}
	switch c {
	case '_', '-', '.', '/', '*', '?':
		return true
	}
	return false
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}

// isNumber reports whether s is an optionally negative decimal.
func isNumber(s string) bool {
	if s != "" && s[0] == '-' {
		s = s[1:]
	}
	if s == "" {
		return false
	}
	dot := false
	for i := 0; i < len(s); i++ {
		switch {
		case isDigit(s[i]):
		case s[i] == '.' && !dot && i > 0 && i < len(s)-1:
			dot = true
		default:
			return false
		}
	}
	return true
}
