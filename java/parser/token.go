package parser

import "fmt"

type Position struct {
	Offset int
	Line   int
	Column int
}

func (p Position) String() string {
	return fmt.Sprintf("%d:%d", p.Line, p.Column)
}

type Span struct {
	Start Position
	End   Position
}

type TokenKind int

const (
	TokenEOF TokenKind = iota
	TokenWhitespace
	TokenComment
	TokenLineComment

	// Literals
	TokenIdent
	TokenIntLiteral
	TokenFloatLiteral
	TokenCharLiteral
	TokenStringLiteral
	TokenTrue
	TokenFalse
	TokenNull

	// Keywords
	TokenAbstract
	TokenBoolean
	TokenBreak
	TokenByte
	TokenCase
	TokenCatch
	TokenChar
	TokenClass
	TokenContinue
	TokenDefault
	TokenDo
	TokenDouble
	TokenElse
	TokenExtends
	TokenFinal
	TokenFinally
	TokenFloat
	TokenFor
	TokenIf
	TokenImplements
	TokenImport
	TokenInstanceof
	TokenInt
	TokenInterface
	TokenLong
	TokenNew
	TokenPackage
	TokenPrivate
	TokenProtected
	TokenPublic
	TokenReturn
	TokenShort
	TokenStatic
	TokenSuper
	TokenSwitch
	TokenThis
	TokenThrow
	TokenThrows
	TokenTry
	TokenVoid
	TokenWhile

	// Operators and punctuation
	TokenLParen
	TokenRParen
	TokenLBrace
	TokenRBrace
	TokenLBracket
	TokenRBracket
	TokenSemicolon
	TokenComma
	TokenDot
	TokenAt

	TokenAssign
	TokenEQ
	TokenNE
	TokenLT
	TokenLE
	TokenGT
	TokenGE
	TokenAnd
	TokenOr
	TokenNot
	TokenBitAnd
	TokenBitOr
	TokenBitXor
	TokenBitNot
	TokenShl
	TokenShr
	TokenUShr
	TokenPlus
	TokenMinus
	TokenStar
	TokenSlash
	TokenPercent
	TokenIncrement
	TokenDecrement
	TokenQuestion
	TokenColon
	TokenArrow
	TokenPlusAssign
	TokenMinusAssign
	TokenStarAssign
	TokenSlashAssign
	TokenPercentAssign
	TokenAndAssign
	TokenOrAssign
	TokenXorAssign
	TokenShlAssign
	TokenShrAssign
	TokenUShrAssign
)

var tokenKindNames = map[TokenKind]string{
	TokenEOF:           "EOF",
	TokenWhitespace:    "Whitespace",
	TokenComment:       "Comment",
	TokenLineComment:   "LineComment",
	TokenIdent:         "Identifier",
	TokenIntLiteral:    "IntLiteral",
	TokenFloatLiteral:  "FloatLiteral",
	TokenCharLiteral:   "CharLiteral",
	TokenStringLiteral: "StringLiteral",
	TokenTrue:          "true",
	TokenFalse:         "false",
	TokenNull:          "null",
	TokenAbstract:      "abstract",
	TokenBoolean:       "boolean",
	TokenBreak:         "break",
	TokenByte:          "byte",
	TokenCase:          "case",
	TokenCatch:         "catch",
	TokenChar:          "char",
	TokenClass:         "class",
	TokenContinue:      "continue",
	TokenDefault:       "default",
	TokenDo:            "do",
	TokenDouble:        "double",
	TokenElse:          "else",
	TokenExtends:       "extends",
	TokenFinal:         "final",
	TokenFinally:       "finally",
	TokenFloat:         "float",
	TokenFor:           "for",
	TokenIf:            "if",
	TokenImplements:    "implements",
	TokenImport:        "import",
	TokenInstanceof:    "instanceof",
	TokenInt:           "int",
	TokenInterface:     "interface",
	TokenLong:          "long",
	TokenNew:           "new",
	TokenPackage:       "package",
	TokenPrivate:       "private",
	TokenProtected:     "protected",
	TokenPublic:        "public",
	TokenReturn:        "return",
	TokenShort:         "short",
	TokenStatic:        "static",
	TokenSuper:         "super",
	TokenSwitch:        "switch",
	TokenThis:          "this",
	TokenThrow:         "throw",
	TokenThrows:        "throws",
	TokenTry:           "try",
	TokenVoid:          "void",
	TokenWhile:         "while",
	TokenLParen:        "(",
	TokenRParen:        ")",
	TokenLBrace:        "{",
	TokenRBrace:        "}",
	TokenLBracket:      "[",
	TokenRBracket:      "]",
	TokenSemicolon:     ";",
	TokenComma:         ",",
	TokenDot:           ".",
	TokenAt:            "@",
	TokenAssign:        "=",
	TokenEQ:            "==",
	TokenNE:            "!=",
	TokenLT:            "<",
	TokenLE:            "<=",
	TokenGT:            ">",
	TokenGE:            ">=",
	TokenAnd:           "&&",
	TokenOr:            "||",
	TokenNot:           "!",
	TokenBitAnd:        "&",
	TokenBitOr:         "|",
	TokenBitXor:        "^",
	TokenBitNot:        "~",
	TokenShl:           "<<",
	TokenShr:           ">>",
	TokenUShr:          ">>>",
	TokenPlus:          "+",
	TokenMinus:         "-",
	TokenStar:          "*",
	TokenSlash:         "/",
	TokenPercent:       "%",
	TokenIncrement:     "++",
	TokenDecrement:     "--",
	TokenQuestion:      "?",
	TokenColon:         ":",
	TokenArrow:         "->",
	TokenPlusAssign:    "+=",
	TokenMinusAssign:   "-=",
	TokenStarAssign:    "*=",
	TokenSlashAssign:   "/=",
	TokenPercentAssign: "%=",
	TokenAndAssign:     "&=",
	TokenOrAssign:      "|=",
	TokenXorAssign:     "^=",
	TokenShlAssign:     "<<=",
	TokenShrAssign:     ">>=",
	TokenUShrAssign:    ">>>=",
}

func (k TokenKind) String() string {
	if name, ok := tokenKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// IsKeyword reports whether k is a reserved word, including the boolean
// and null literals.
func (k TokenKind) IsKeyword() bool {
	return (k >= TokenAbstract && k <= TokenWhile) || k == TokenTrue || k == TokenFalse || k == TokenNull
}

func (k TokenKind) IsLiteral() bool {
	return k >= TokenIntLiteral && k <= TokenNull
}

func (k TokenKind) IsComment() bool {
	return k == TokenComment || k == TokenLineComment
}

func (k TokenKind) IsPrimitiveType() bool {
	switch k {
	case TokenBoolean, TokenByte, TokenChar, TokenShort,
		TokenInt, TokenLong, TokenFloat, TokenDouble:
		return true
	}
	return false
}

type Token struct {
	Kind    TokenKind
	Span    Span
	Literal string
}

func (t Token) String() string {
	return fmt.Sprintf("%s %s %q", t.Span.Start, t.Kind, t.Literal)
}

var keywords = map[string]TokenKind{
	"abstract":   TokenAbstract,
	"boolean":    TokenBoolean,
	"break":      TokenBreak,
	"byte":       TokenByte,
	"case":       TokenCase,
	"catch":      TokenCatch,
	"char":       TokenChar,
	"class":      TokenClass,
	"continue":   TokenContinue,
	"default":    TokenDefault,
	"do":         TokenDo,
	"double":     TokenDouble,
	"else":       TokenElse,
	"extends":    TokenExtends,
	"final":      TokenFinal,
	"finally":    TokenFinally,
	"float":      TokenFloat,
	"for":        TokenFor,
	"if":         TokenIf,
	"implements": TokenImplements,
	"import":     TokenImport,
	"instanceof": TokenInstanceof,
	"int":        TokenInt,
	"interface":  TokenInterface,
	"long":       TokenLong,
	"new":        TokenNew,
	"package":    TokenPackage,
	"private":    TokenPrivate,
	"protected":  TokenProtected,
	"public":     TokenPublic,
	"return":     TokenReturn,
	"short":      TokenShort,
	"static":     TokenStatic,
	"super":      TokenSuper,
	"switch":     TokenSwitch,
	"this":       TokenThis,
	"throw":      TokenThrow,
	"throws":     TokenThrows,
	"try":        TokenTry,
	"void":       TokenVoid,
	"while":      TokenWhile,
	"true":       TokenTrue,
	"false":      TokenFalse,
	"null":       TokenNull,
}

func LookupKeyword(ident string) TokenKind {
	if kind, ok := keywords[ident]; ok {
		return kind
	}
	return TokenIdent
}
