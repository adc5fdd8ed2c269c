package parser

import (
	"unicode"
	"unicode/utf8"

	"github.com/dhamidi/ibpc/diag"
)

type Lexer struct {
	input  []byte
	pos    int
	line   int
	column int
	diags  []diag.Diagnostic
}

func NewLexer(input []byte) *Lexer {
	return &Lexer{
		input:  input,
		pos:    0,
		line:   1,
		column: 1,
	}
}

// Tokenize scans the whole input. Whitespace is dropped; comments are kept
// so the parser can decide whether to preserve them. The result always ends
// with exactly one TokenEOF.
func Tokenize(input []byte) ([]Token, []diag.Diagnostic) {
	l := NewLexer(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Kind == TokenWhitespace {
			continue
		}
		tokens = append(tokens, tok)
		if tok.Kind == TokenEOF {
			break
		}
	}
	return tokens, l.Diagnostics()
}

func (l *Lexer) Position() Position {
	return Position{
		Offset: l.pos,
		Line:   l.line,
		Column: l.column,
	}
}

func (l *Lexer) Diagnostics() []diag.Diagnostic {
	return l.diags
}

func (l *Lexer) report(severity diag.Severity, at Position, format string, args ...any) {
	l.diags = append(l.diags, diag.New(diag.Lexical, severity, at.Line, at.Column, format, args...))
}

func (l *Lexer) peek() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	return l.input[l.pos]
}

func (l *Lexer) peekN(n int) byte {
	if l.pos+n >= len(l.input) {
		return 0
	}
	return l.input[l.pos+n]
}

func (l *Lexer) atEnd() bool {
	return l.pos >= len(l.input)
}

func (l *Lexer) advance() byte {
	if l.pos >= len(l.input) {
		return 0
	}
	ch := l.input[l.pos]
	l.pos++
	if ch == '\n' {
		l.line++
		l.column = 1
	} else {
		l.column++
	}
	return ch
}

func (l *Lexer) advanceN(n int) {
	for i := 0; i < n; i++ {
		l.advance()
	}
}

// advanceRune consumes one UTF-8 encoded rune, counting columns in bytes.
func (l *Lexer) advanceRune() {
	_, size := utf8.DecodeRune(l.input[l.pos:])
	l.advanceN(size)
}

func (l *Lexer) NextToken() Token {
	for {
		startPos := l.Position()

		if l.atEnd() {
			return Token{Kind: TokenEOF, Span: Span{Start: startPos, End: startPos}}
		}

		ch := l.peek()

		if ch == '/' && l.peekN(1) == '/' {
			return l.scanLineComment(startPos)
		}
		if ch == '/' && l.peekN(1) == '*' {
			return l.scanBlockComment(startPos)
		}

		if isWhitespace(ch) {
			return l.scanWhitespace(startPos)
		}

		if l.isIdentStart() {
			return l.scanIdentOrKeyword(startPos)
		}

		if isDigit(ch) || (ch == '.' && isDigit(l.peekN(1))) {
			return l.scanNumber(startPos)
		}

		if ch == '\'' {
			return l.scanCharLiteral(startPos)
		}

		if ch == '"' {
			return l.scanStringLiteral(startPos)
		}

		if tok, ok := l.scanOperator(startPos); ok {
			return tok
		}

		r, _ := utf8.DecodeRune(l.input[l.pos:])
		l.report(diag.Error, startPos, "unexpected character %q", r)
		l.advanceRune()
	}
}

func (l *Lexer) scanWhitespace(start Position) Token {
	for isWhitespace(l.peek()) && !l.atEnd() {
		l.advance()
	}
	return l.token(TokenWhitespace, start)
}

func (l *Lexer) scanLineComment(start Position) Token {
	l.advanceN(2)
	for !l.atEnd() && l.peek() != '\n' {
		l.advance()
	}
	return l.token(TokenLineComment, start)
}

func (l *Lexer) scanBlockComment(start Position) Token {
	l.advanceN(2)
	for {
		if l.atEnd() {
			l.report(diag.Warning, start, "unterminated block comment")
			break
		}
		if l.peek() == '*' && l.peekN(1) == '/' {
			l.advanceN(2)
			break
		}
		l.advance()
	}
	return l.token(TokenComment, start)
}

func (l *Lexer) isIdentStart() bool {
	ch := l.peek()
	if ch >= utf8.RuneSelf {
		r, _ := utf8.DecodeRune(l.input[l.pos:])
		return unicode.IsLetter(r)
	}
	return isJavaLetter(ch)
}

func (l *Lexer) isIdentPart() bool {
	ch := l.peek()
	if ch >= utf8.RuneSelf {
		r, _ := utf8.DecodeRune(l.input[l.pos:])
		return unicode.IsLetter(r) || unicode.IsDigit(r)
	}
	return isJavaLetter(ch) || isDigit(ch)
}

func (l *Lexer) scanIdentOrKeyword(start Position) Token {
	for !l.atEnd() && l.isIdentPart() {
		l.advanceRune()
	}
	tok := l.token(TokenIdent, start)
	tok.Kind = LookupKeyword(tok.Literal)
	return tok
}

func (l *Lexer) scanNumber(start Position) Token {
	if l.peek() == '0' && (l.peekN(1) == 'x' || l.peekN(1) == 'X') {
		l.advanceN(2)
		for isHexDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
		if l.peek() == 'l' || l.peek() == 'L' {
			l.advance()
		}
		return l.token(TokenIntLiteral, start)
	}
	if l.peek() == '0' && (l.peekN(1) == 'b' || l.peekN(1) == 'B') {
		l.advanceN(2)
		for l.peek() == '0' || l.peek() == '1' || l.peek() == '_' {
			l.advance()
		}
		if l.peek() == 'l' || l.peek() == 'L' {
			l.advance()
		}
		return l.token(TokenIntLiteral, start)
	}

	isFloat := false
	for isDigit(l.peek()) || l.peek() == '_' {
		l.advance()
	}

	if l.peek() == '.' && isDigit(l.peekN(1)) {
		isFloat = true
		l.advance()
		for isDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
	}

	if l.peek() == 'e' || l.peek() == 'E' {
		isFloat = true
		l.advance()
		if l.peek() == '+' || l.peek() == '-' {
			l.advance()
		}
		for isDigit(l.peek()) || l.peek() == '_' {
			l.advance()
		}
	}

	ch := l.peek()
	if ch == 'f' || ch == 'F' || ch == 'd' || ch == 'D' {
		isFloat = true
		l.advance()
	} else if ch == 'l' || ch == 'L' {
		l.advance()
	}

	if isFloat {
		return l.token(TokenFloatLiteral, start)
	}
	return l.token(TokenIntLiteral, start)
}

func (l *Lexer) scanCharLiteral(start Position) Token {
	l.advance()
	for !l.atEnd() && l.peek() != '\'' && l.peek() != '\n' {
		if l.peek() == '\\' {
			l.scanEscape()
			continue
		}
		l.advanceRune()
	}
	if l.peek() == '\'' {
		l.advance()
	} else {
		l.report(diag.Error, start, "unterminated character literal")
	}
	return l.token(TokenCharLiteral, start)
}

func (l *Lexer) scanStringLiteral(start Position) Token {
	l.advance()
	for !l.atEnd() && l.peek() != '"' && l.peek() != '\n' {
		if l.peek() == '\\' {
			l.scanEscape()
			continue
		}
		l.advanceRune()
	}
	if l.peek() == '"' {
		l.advance()
	} else {
		l.report(diag.Error, start, "unterminated string literal")
	}
	return l.token(TokenStringLiteral, start)
}

// scanEscape consumes a backslash escape sequence inside a string or
// character literal. The raw text is kept in the token literal.
func (l *Lexer) scanEscape() {
	at := l.Position()
	l.advance()
	switch ch := l.peek(); ch {
	case 'n', 't', 'r', 'b', 'f', 's', '\\', '"', '\'':
		l.advance()
	case 'u':
		for l.peek() == 'u' {
			l.advance()
		}
		for i := 0; i < 4; i++ {
			if !isHexDigit(l.peek()) {
				l.report(diag.Warning, at, "invalid unicode escape")
				return
			}
			l.advance()
		}
	case '\n', 0:
		// the enclosing literal reports the missing terminator
	default:
		if ch >= '0' && ch <= '7' {
			for i := 0; i < 3 && l.peek() >= '0' && l.peek() <= '7'; i++ {
				l.advance()
			}
			return
		}
		l.report(diag.Warning, at, "unknown escape sequence \\%c", ch)
		l.advanceRune()
	}
}

func (l *Lexer) scanOperator(start Position) (Token, bool) {
	ch := l.peek()

	switch ch {
	case '(':
		l.advance()
		return l.token(TokenLParen, start), true
	case ')':
		l.advance()
		return l.token(TokenRParen, start), true
	case '{':
		l.advance()
		return l.token(TokenLBrace, start), true
	case '}':
		l.advance()
		return l.token(TokenRBrace, start), true
	case '[':
		l.advance()
		return l.token(TokenLBracket, start), true
	case ']':
		l.advance()
		return l.token(TokenRBracket, start), true
	case ';':
		l.advance()
		return l.token(TokenSemicolon, start), true
	case ',':
		l.advance()
		return l.token(TokenComma, start), true
	case '.':
		l.advance()
		return l.token(TokenDot, start), true
	case '@':
		l.advance()
		return l.token(TokenAt, start), true
	case '~':
		l.advance()
		return l.token(TokenBitNot, start), true
	case '?':
		l.advance()
		return l.token(TokenQuestion, start), true
	case ':':
		l.advance()
		return l.token(TokenColon, start), true

	case '=':
		return l.choose(start, TokenAssign, '=', TokenEQ), true
	case '!':
		return l.choose(start, TokenNot, '=', TokenNE), true
	case '*':
		return l.choose(start, TokenStar, '=', TokenStarAssign), true
	case '/':
		return l.choose(start, TokenSlash, '=', TokenSlashAssign), true
	case '%':
		return l.choose(start, TokenPercent, '=', TokenPercentAssign), true
	case '^':
		return l.choose(start, TokenBitXor, '=', TokenXorAssign), true

	case '<':
		if l.peekN(1) == '<' {
			if l.peekN(2) == '=' {
				l.advanceN(3)
				return l.token(TokenShlAssign, start), true
			}
			l.advanceN(2)
			return l.token(TokenShl, start), true
		}
		return l.choose(start, TokenLT, '=', TokenLE), true

	case '>':
		if l.peekN(1) == '>' {
			if l.peekN(2) == '>' {
				if l.peekN(3) == '=' {
					l.advanceN(4)
					return l.token(TokenUShrAssign, start), true
				}
				l.advanceN(3)
				return l.token(TokenUShr, start), true
			}
			if l.peekN(2) == '=' {
				l.advanceN(3)
				return l.token(TokenShrAssign, start), true
			}
			l.advanceN(2)
			return l.token(TokenShr, start), true
		}
		return l.choose(start, TokenGT, '=', TokenGE), true

	case '&':
		if l.peekN(1) == '&' {
			l.advanceN(2)
			return l.token(TokenAnd, start), true
		}
		return l.choose(start, TokenBitAnd, '=', TokenAndAssign), true

	case '|':
		if l.peekN(1) == '|' {
			l.advanceN(2)
			return l.token(TokenOr, start), true
		}
		return l.choose(start, TokenBitOr, '=', TokenOrAssign), true

	case '+':
		if l.peekN(1) == '+' {
			l.advanceN(2)
			return l.token(TokenIncrement, start), true
		}
		return l.choose(start, TokenPlus, '=', TokenPlusAssign), true

	case '-':
		if l.peekN(1) == '-' {
			l.advanceN(2)
			return l.token(TokenDecrement, start), true
		}
		if l.peekN(1) == '>' {
			l.advanceN(2)
			return l.token(TokenArrow, start), true
		}
		return l.choose(start, TokenMinus, '=', TokenMinusAssign), true
	}

	return Token{}, false
}

// choose emits long when the byte after the current one is next, and short
// otherwise.
func (l *Lexer) choose(start Position, short TokenKind, next byte, long TokenKind) Token {
	if l.peekN(1) == next {
		l.advanceN(2)
		return l.token(long, start)
	}
	l.advance()
	return l.token(short, start)
}

func (l *Lexer) token(kind TokenKind, start Position) Token {
	end := l.Position()
	return Token{
		Kind:    kind,
		Span:    Span{Start: start, End: end},
		Literal: string(l.input[start.Offset:end.Offset]),
	}
}

func isWhitespace(ch byte) bool {
	return ch == ' ' || ch == '\t' || ch == '\r' || ch == '\n' || ch == '\f'
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func isHexDigit(ch byte) bool {
	return (ch >= '0' && ch <= '9') || (ch >= 'a' && ch <= 'f') || (ch >= 'A' && ch <= 'F')
}

func isJavaLetter(ch byte) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z') || ch == '_' || ch == '$'
}
