package parser

import "testing"

func TestTokenKindString(t *testing.T) {
	tests := []struct {
		kind TokenKind
		want string
	}{
		{TokenEOF, "EOF"},
		{TokenIdent, "Identifier"},
		{TokenIntLiteral, "IntLiteral"},
		{TokenStringLiteral, "StringLiteral"},
		{TokenTrue, "true"},
		{TokenNull, "null"},
		{TokenClass, "class"},
		{TokenVoid, "void"},
		{TokenLParen, "("},
		{TokenSemicolon, ";"},
		{TokenAssign, "="},
		{TokenEQ, "=="},
		{TokenIncrement, "++"},
		{TokenArrow, "->"},
		{TokenUShrAssign, ">>>="},
		{TokenKind(9999), "Unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := tt.kind.String(); got != tt.want {
				t.Errorf("TokenKind(%d).String() = %q, want %q", tt.kind, got, tt.want)
			}
		})
	}
}

func TestTokenKindClasses(t *testing.T) {
	if !TokenWhile.IsKeyword() || !TokenTrue.IsKeyword() || TokenIdent.IsKeyword() {
		t.Error("IsKeyword misclassifies")
	}
	if !TokenCharLiteral.IsLiteral() || TokenIdent.IsLiteral() {
		t.Error("IsLiteral misclassifies")
	}
	if !TokenComment.IsComment() || !TokenLineComment.IsComment() || TokenWhitespace.IsComment() {
		t.Error("IsComment misclassifies")
	}
	if !TokenDouble.IsPrimitiveType() || TokenVoid.IsPrimitiveType() {
		t.Error("IsPrimitiveType misclassifies")
	}
}

func TestLookupKeyword(t *testing.T) {
	if LookupKeyword("while") != TokenWhile {
		t.Error("while is a keyword")
	}
	if LookupKeyword("While") != TokenIdent {
		t.Error("keywords are case sensitive")
	}
}

func TestTokenString(t *testing.T) {
	tok := Token{
		Kind:    TokenIdent,
		Literal: "count",
		Span:    Span{Start: Position{Line: 3, Column: 7}},
	}
	if got := tok.String(); got != `3:7 Identifier "count"` {
		t.Errorf("String() = %q", got)
	}
}
