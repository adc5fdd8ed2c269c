// Package parser turns the Java subset taught in introductory courses into
// a syntax tree.
//
// # Lexing
//
// Tokenize scans the whole input and always ends with a single TokenEOF.
// Each token records its Span and the exact source text it covers, so
// concatenating the literals produced by NextToken (whitespace included)
// reproduces the input byte for byte. Lexical problems are reported as
// diag.Lexical diagnostics; the lexer never stops early:
//
//	unexpected character     error, the character is skipped
//	unterminated string      error, the token ends at the line break
//	unterminated comment     warning, the comment runs to end of input
//	unknown escape           warning
//
// # Parsing
//
// Parse builds a Program node. A file may be a full class, bare methods,
// or a plain sequence of statements; the parser accepts all three at the
// top level.
//
//	tokens, lexDiags := parser.Tokenize(src)
//	program, parseDiags := parser.Parse(tokens, parser.WithComments())
//
// Each node kind has a fixed child layout:
//
//	ClassDecl     Modifiers, Identifier, members...
//	MethodDecl    Modifiers, Type, Identifier, Parameters, Block
//	VarDecl       Modifiers, Type, Declarator...
//	Declarator    Identifier [initializer]
//	IfStmt        cond, then [else]
//	ForStmt       ForInit, ForCond, ForUpdate, body
//	SwitchCase    SwitchLabel..., statements...
//	BinaryExpr    left, Operator, right
//	AssignExpr    target, Operator, value
//
// # Error recovery
//
// A syntax error inside a declaration or statement records one diag.Syntax
// error and discards tokens up to the next ';' or the start of the next
// declaration. Statements before and after the error are kept, so one
// mistake produces one diagnostic.
//
// A Parser can be reused for another input with Reset.
package parser
