package parser

import (
	"fmt"

	"github.com/dhamidi/ibpc/diag"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("ibpc.parser")

type Option func(*Parser)

// WithComments turns comment tokens into Comment nodes at the member or
// statement position where they appear.
func WithComments() Option {
	return func(p *Parser) {
		p.includeComments = true
	}
}

type Parser struct {
	includeComments bool
	tokens          []Token
	comments        []Token
	commentIndex    int
	pos             int
	diags           []diag.Diagnostic
}

// bailout is the panic value used to unwind out of a statement or
// declaration after a syntax error has been recorded.
type bailout struct{}

func New(tokens []Token, opts ...Option) *Parser {
	p := &Parser{}
	for _, opt := range opts {
		opt(p)
	}
	p.Reset(tokens)
	return p
}

// Parse builds the Program for tokens. It returns nil only when there is
// nothing to parse at all.
func Parse(tokens []Token, opts ...Option) (*Node, []diag.Diagnostic) {
	p := New(tokens, opts...)
	node := p.Parse()
	return node, p.Diagnostics()
}

// Reset clears all parser state for reuse with new tokens.
func (p *Parser) Reset(tokens []Token) {
	p.tokens = nil
	p.comments = nil
	p.commentIndex = 0
	p.pos = 0
	p.diags = nil

	for _, tok := range tokens {
		switch {
		case tok.Kind == TokenWhitespace:
			continue
		case tok.Kind.IsComment():
			if p.includeComments {
				p.comments = append(p.comments, tok)
			}
			continue
		}
		p.tokens = append(p.tokens, tok)
		if tok.Kind == TokenEOF {
			break
		}
	}

	if len(tokens) > 0 && (len(p.tokens) == 0 || p.tokens[len(p.tokens)-1].Kind != TokenEOF) {
		end := tokens[len(tokens)-1].Span.End
		p.tokens = append(p.tokens, Token{Kind: TokenEOF, Span: Span{Start: end, End: end}})
	}
}

func (p *Parser) Diagnostics() []diag.Diagnostic {
	return p.diags
}

func (p *Parser) Parse() *Node {
	if len(p.tokens) == 0 {
		return nil
	}
	return p.parseProgram()
}

func (p *Parser) peek() Token {
	if p.pos >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekN(n int) Token {
	if p.pos+n >= len(p.tokens) {
		return p.tokens[len(p.tokens)-1]
	}
	return p.tokens[p.pos+n]
}

func (p *Parser) advance() Token {
	tok := p.peek()
	if p.pos < len(p.tokens)-1 {
		p.pos++
	}
	return tok
}

func (p *Parser) check(kind TokenKind) bool {
	return p.peek().Kind == kind
}

func (p *Parser) match(kinds ...TokenKind) bool {
	for _, kind := range kinds {
		if p.check(kind) {
			return true
		}
	}
	return false
}

func (p *Parser) expect(kind TokenKind) Token {
	if p.check(kind) {
		return p.advance()
	}
	p.fail("expected %s, found %s", quoteKind(kind), describe(p.peek()))
	return Token{}
}

// expectClosing is like expect but only reports a missing closing token at
// end of input, keeping what was parsed so far.
func (p *Parser) expectClosing(kind TokenKind) {
	if p.check(kind) {
		p.advance()
		return
	}
	if p.check(TokenEOF) {
		p.errorAt(p.peek(), "expected %s, found end of input", quoteKind(kind))
		return
	}
	p.expect(kind)
}

func (p *Parser) errorAt(tok Token, format string, args ...any) {
	p.diags = append(p.diags, diag.New(diag.Syntax, diag.Error, tok.Span.Start.Line, tok.Span.Start.Column, format, args...))
}

// fail records a syntax error at the current token and unwinds to the
// nearest recovery point.
func (p *Parser) fail(format string, args ...any) {
	p.errorAt(p.peek(), format, args...)
	panic(bailout{})
}

func describe(tok Token) string {
	if tok.Kind == TokenEOF {
		return "end of input"
	}
	return fmt.Sprintf("%q", tok.Literal)
}

func quoteKind(kind TokenKind) string {
	if kind == TokenIdent {
		return "identifier"
	}
	return fmt.Sprintf("'%s'", kind)
}

func (p *Parser) startNode(kind NodeKind) *Node {
	return &Node{
		Kind: kind,
		Span: Span{Start: p.peek().Span.Start},
	}
}

func (p *Parser) finishNode(n *Node) *Node {
	if p.pos > 0 && p.pos <= len(p.tokens) {
		n.Span.End = p.tokens[p.pos-1].Span.End
	} else if len(p.tokens) > 0 {
		n.Span.End = p.tokens[len(p.tokens)-1].Span.End
	}
	if n.Span.End.Offset < n.Span.Start.Offset {
		n.Span.End = n.Span.Start
	}
	return n
}

func (p *Parser) leaf(kind NodeKind) *Node {
	tok := p.advance()
	return &Node{Kind: kind, Token: &tok, Span: tok.Span}
}

func (p *Parser) identifier() *Node {
	if !p.check(TokenIdent) {
		p.fail("expected identifier, found %s", describe(p.peek()))
	}
	return p.leaf(KindIdentifier)
}

// guarded runs parse and recovers from a syntax error by discarding tokens
// up to and including the next ';', or up to a token that starts a new
// declaration. Inside a block a closing brace also stops the discard.
func (p *Parser) guarded(parse func() *Node, inBlock bool) (node *Node) {
	start := p.pos
	defer func() {
		if r := recover(); r != nil {
			if _, ok := r.(bailout); !ok {
				panic(r)
			}
			p.synchronize(start, inBlock)
			node = nil
		}
	}()
	return parse()
}

func (p *Parser) synchronize(start int, inBlock bool) {
	if p.pos == start && !p.check(TokenEOF) {
		p.advance()
	}
	for !p.check(TokenEOF) {
		switch p.peek().Kind {
		case TokenSemicolon:
			p.advance()
			log.Debugf("resynchronized after ';' at %s", p.peek().Span.Start)
			return
		case TokenRBrace:
			if inBlock {
				return
			}
		case TokenClass, TokenPublic, TokenPrivate, TokenProtected, TokenStatic,
			TokenIf, TokenWhile, TokenFor, TokenReturn:
			log.Debugf("resynchronized before %s at %s", p.peek().Kind, p.peek().Span.Start)
			return
		}
		p.advance()
	}
}

// addComments appends Comment nodes for every pending comment that starts
// before the current token.
func (p *Parser) addComments(parent *Node) {
	next := p.peek().Span.Start.Offset
	for p.commentIndex < len(p.comments) {
		tok := p.comments[p.commentIndex]
		if tok.Span.Start.Offset >= next && !p.check(TokenEOF) {
			return
		}
		p.commentIndex++
		parent.AddChild(&Node{Kind: KindComment, Token: &tok, Span: tok.Span})
	}
}

func (p *Parser) parseProgram() *Node {
	node := p.startNode(KindProgram)

	for {
		p.addComments(node)
		if p.check(TokenEOF) {
			break
		}
		if p.check(TokenSemicolon) {
			p.advance()
			continue
		}
		node.AddChild(p.guarded(p.parseDeclaration, false))
	}

	return p.finishNode(node)
}

func (p *Parser) parseDeclaration() *Node {
	switch p.peek().Kind {
	case TokenImport, TokenPackage:
		p.skipImport()
		return nil
	}
	switch {
	case p.isClassDecl():
		return p.parseClassDecl()
	case p.isMethodDecl():
		return p.parseMethod()
	case p.isVarDecl():
		return p.parseVarDecl(true)
	}
	return p.parseStatement()
}

func (p *Parser) skipImport() {
	p.advance()
	for !p.check(TokenSemicolon) {
		if !p.match(TokenIdent, TokenDot, TokenStar, TokenStatic) {
			p.fail("expected ';', found %s", describe(p.peek()))
		}
		p.advance()
	}
	p.advance()
}

func isModifier(kind TokenKind) bool {
	switch kind {
	case TokenPublic, TokenPrivate, TokenProtected, TokenStatic, TokenFinal, TokenAbstract:
		return true
	}
	return false
}

// skipModifiers advances over modifiers and annotations without building
// nodes. Used by lookahead.
func (p *Parser) skipModifiers() {
	for {
		switch {
		case isModifier(p.peek().Kind):
			p.advance()
		case p.check(TokenAt) && p.peekN(1).Kind == TokenIdent:
			p.advanceN(2)
			if p.check(TokenLParen) {
				p.skipBalanced(TokenLParen, TokenRParen)
			}
		default:
			return
		}
	}
}

func (p *Parser) advanceN(n int) {
	for i := 0; i < n; i++ {
		p.advance()
	}
}

func (p *Parser) skipBalanced(open, close TokenKind) {
	depth := 0
	for !p.check(TokenEOF) {
		switch p.peek().Kind {
		case open:
			depth++
		case close:
			depth--
		}
		p.advance()
		if depth == 0 {
			return
		}
	}
}

func (p *Parser) parseModifiers() *Node {
	node := p.startNode(KindModifiers)
	for {
		switch {
		case isModifier(p.peek().Kind):
			node.AddChild(p.leaf(KindIdentifier))
		case p.check(TokenAt):
			p.advance()
			p.identifier()
			if p.check(TokenLParen) {
				p.skipBalanced(TokenLParen, TokenRParen)
			}
		default:
			return p.finishNode(node)
		}
	}
}

func (p *Parser) isClassDecl() bool {
	save := p.pos
	defer func() { p.pos = save }()
	p.skipModifiers()
	return p.check(TokenClass)
}

func (p *Parser) isMethodDecl() bool {
	save := p.pos
	defer func() { p.pos = save }()
	p.skipModifiers()
	if p.check(TokenVoid) {
		p.advance()
	} else if !p.skipType() {
		return false
	}
	return p.check(TokenIdent) && p.peekN(1).Kind == TokenLParen
}

func (p *Parser) isConstructor(className string) bool {
	save := p.pos
	defer func() { p.pos = save }()
	p.skipModifiers()
	return p.check(TokenIdent) && p.peek().Literal == className && p.peekN(1).Kind == TokenLParen
}

// isVarDecl reports whether a variable declaration starts at the current
// token: optional modifiers, a type, then a name followed by '=', ';', ','
// ':' or '['.
func (p *Parser) isVarDecl() bool {
	save := p.pos
	defer func() { p.pos = save }()
	p.skipModifiers()
	if !p.skipType() || !p.check(TokenIdent) {
		return false
	}
	p.advance()
	return p.match(TokenAssign, TokenSemicolon, TokenComma, TokenColon, TokenLBracket)
}

// skipType advances over a type if one starts at the current token.
func (p *Parser) skipType() bool {
	switch {
	case p.peek().Kind.IsPrimitiveType():
		p.advance()
	case p.check(TokenIdent):
		p.advance()
		for p.check(TokenDot) && p.peekN(1).Kind == TokenIdent {
			p.advanceN(2)
		}
		if p.check(TokenLT) && !p.skipTypeArguments() {
			return false
		}
	default:
		return false
	}
	for p.check(TokenLBracket) {
		if p.peekN(1).Kind != TokenRBracket {
			return false
		}
		p.advanceN(2)
	}
	return true
}

// skipTypeArguments advances over a generic argument list such as
// <String, List<Integer>>. Generic types are otherwise ignored.
func (p *Parser) skipTypeArguments() bool {
	p.advance()
	depth := 1
	for depth > 0 {
		switch p.peek().Kind {
		case TokenLT:
			depth++
		case TokenGT:
			depth--
		case TokenShr:
			depth -= 2
		case TokenUShr:
			depth -= 3
		case TokenIdent, TokenComma, TokenDot, TokenQuestion, TokenExtends, TokenSuper,
			TokenLBracket, TokenRBracket:
		default:
			return false
		}
		p.advance()
	}
	return depth == 0
}

func (p *Parser) parseType() *Node {
	var tok Token
	switch {
	case p.peek().Kind.IsPrimitiveType(), p.check(TokenVoid):
		tok = p.advance()
	case p.check(TokenIdent):
		tok = p.advance()
		for p.check(TokenDot) && p.peekN(1).Kind == TokenIdent {
			p.advance()
			part := p.advance()
			tok.Literal += "." + part.Literal
			tok.Span.End = part.Span.End
		}
		if p.check(TokenLT) && !p.skipTypeArguments() {
			p.fail("malformed type arguments")
		}
	default:
		p.fail("expected type, found %s", describe(p.peek()))
	}

	node := &Node{Kind: KindType, Token: &tok, Span: tok.Span}
	for p.check(TokenLBracket) && p.peekN(1).Kind == TokenRBracket {
		dim := p.startNode(KindArrayDim)
		p.advanceN(2)
		node.AddChild(p.finishNode(dim))
	}
	return p.finishNode(node)
}

func (p *Parser) parseClassDecl() *Node {
	node := p.startNode(KindClassDecl)
	node.AddChild(p.parseModifiers())
	p.expect(TokenClass)
	name := p.identifier()
	node.AddChild(name)

	if p.check(TokenExtends) {
		p.advance()
		p.parseType()
	}
	if p.check(TokenImplements) {
		p.advance()
		for {
			p.parseType()
			if !p.check(TokenComma) {
				break
			}
			p.advance()
		}
	}

	p.expect(TokenLBrace)
	for {
		p.addComments(node)
		if p.check(TokenRBrace) || p.check(TokenEOF) {
			break
		}
		if p.check(TokenSemicolon) {
			p.advance()
			continue
		}
		node.AddChild(p.guarded(func() *Node {
			return p.parseClassMember(name.TokenLiteral())
		}, true))
	}
	p.expectClosing(TokenRBrace)
	return p.finishNode(node)
}

func (p *Parser) parseClassMember(className string) *Node {
	switch {
	case p.isClassDecl():
		return p.parseClassDecl()
	case p.isConstructor(className):
		return p.parseConstructor()
	case p.isMethodDecl():
		return p.parseMethod()
	case p.isVarDecl():
		return p.parseVarDecl(true)
	case p.check(TokenStatic) && p.peekN(1).Kind == TokenLBrace:
		p.advance()
		return p.parseBlock()
	}
	p.fail("expected field, method or class declaration, found %s", describe(p.peek()))
	return nil
}

func (p *Parser) parseMethod() *Node {
	node := p.startNode(KindMethodDecl)
	node.AddChild(p.parseModifiers())
	node.AddChild(p.parseType())
	node.AddChild(p.identifier())
	p.parseMethodRest(node)
	return p.finishNode(node)
}

// parseConstructor produces a MethodDecl with a void return type.
func (p *Parser) parseConstructor() *Node {
	node := p.startNode(KindMethodDecl)
	node.AddChild(p.parseModifiers())
	name := p.identifier()
	voidTok := Token{Kind: TokenVoid, Literal: "void", Span: name.Span}
	node.AddChild(&Node{Kind: KindType, Token: &voidTok, Span: name.Span})
	node.AddChild(name)
	p.parseMethodRest(node)
	return p.finishNode(node)
}

func (p *Parser) parseMethodRest(node *Node) {
	node.AddChild(p.parseParameters())
	if p.check(TokenThrows) {
		p.advance()
		for {
			p.parseType()
			if !p.check(TokenComma) {
				break
			}
			p.advance()
		}
	}
	if p.check(TokenSemicolon) {
		block := p.startNode(KindBlock)
		p.advance()
		node.AddChild(p.finishNode(block))
		return
	}
	node.AddChild(p.parseBlock())
}

func (p *Parser) parseParameters() *Node {
	node := p.startNode(KindParameters)
	p.expect(TokenLParen)
	if !p.check(TokenRParen) {
		for {
			param := p.startNode(KindParameter)
			p.skipModifiers()
			typ := p.parseType()
			if p.check(TokenDot) {
				// varargs: T... name
				p.advanceN(3)
				typ.AddChild(&Node{Kind: KindArrayDim, Span: typ.Span})
			}
			param.AddChild(typ)
			param.AddChild(p.identifier())
			for p.check(TokenLBracket) && p.peekN(1).Kind == TokenRBracket {
				dim := p.startNode(KindArrayDim)
				p.advanceN(2)
				typ.AddChild(p.finishNode(dim))
			}
			node.AddChild(p.finishNode(param))
			if !p.check(TokenComma) {
				break
			}
			p.advance()
		}
	}
	p.expect(TokenRParen)
	return p.finishNode(node)
}

// parseVarDecl parses a field or local variable declaration:
// VarDecl(Modifiers, Type, Declarator...).
func (p *Parser) parseVarDecl(withSemicolon bool) *Node {
	node := p.startNode(KindVarDecl)
	node.AddChild(p.parseModifiers())
	typ := p.parseType()
	node.AddChild(typ)

	for {
		decl := p.startNode(KindDeclarator)
		decl.AddChild(p.identifier())
		for p.check(TokenLBracket) && p.peekN(1).Kind == TokenRBracket {
			dim := p.startNode(KindArrayDim)
			p.advanceN(2)
			typ.AddChild(p.finishNode(dim))
		}
		if p.check(TokenAssign) {
			p.advance()
			decl.AddChild(p.parseVarInitializer())
		}
		node.AddChild(p.finishNode(decl))

		if !p.check(TokenComma) {
			break
		}
		p.advance()
	}

	if withSemicolon {
		p.expect(TokenSemicolon)
	}
	return p.finishNode(node)
}

func (p *Parser) parseVarInitializer() *Node {
	if p.check(TokenLBrace) {
		return p.parseArrayInit()
	}
	return p.parseExpression()
}

func (p *Parser) parseArrayInit() *Node {
	node := p.startNode(KindArrayInit)
	p.expect(TokenLBrace)
	for !p.check(TokenRBrace) {
		node.AddChild(p.parseVarInitializer())
		if !p.check(TokenComma) {
			break
		}
		p.advance()
	}
	p.expect(TokenRBrace)
	return p.finishNode(node)
}

func (p *Parser) parseBlock() *Node {
	node := p.startNode(KindBlock)
	p.expect(TokenLBrace)

	for {
		p.addComments(node)
		if p.check(TokenRBrace) || p.check(TokenEOF) {
			break
		}
		node.AddChild(p.guarded(p.parseStatement, true))
	}

	p.expectClosing(TokenRBrace)
	return p.finishNode(node)
}

func (p *Parser) parseStatement() *Node {
	switch p.peek().Kind {
	case TokenLBrace:
		return p.parseBlock()
	case TokenSemicolon:
		node := p.startNode(KindEmptyStmt)
		p.advance()
		return p.finishNode(node)
	case TokenIf:
		return p.parseIfStmt()
	case TokenWhile:
		return p.parseWhileStmt()
	case TokenDo:
		return p.parseDoStmt()
	case TokenFor:
		return p.parseForStmt()
	case TokenSwitch:
		return p.parseSwitchStmt()
	case TokenReturn:
		return p.parseReturnStmt()
	case TokenBreak:
		return p.parseJumpStmt(KindBreakStmt)
	case TokenContinue:
		return p.parseJumpStmt(KindContinueStmt)
	case TokenTry, TokenThrow, TokenClass, TokenInterface:
		p.fail("unsupported statement %s", describe(p.peek()))
	}
	if p.isVarDecl() {
		return p.parseVarDecl(true)
	}
	return p.parseExprStmt()
}

func (p *Parser) parseExprStmt() *Node {
	node := p.startNode(KindExprStmt)
	node.AddChild(p.parseExpression())
	p.expect(TokenSemicolon)
	return p.finishNode(node)
}

func (p *Parser) parseCondition() *Node {
	p.expect(TokenLParen)
	cond := p.parseExpression()
	p.expect(TokenRParen)
	return cond
}

func (p *Parser) parseIfStmt() *Node {
	node := p.startNode(KindIfStmt)
	p.expect(TokenIf)
	node.AddChild(p.parseCondition())
	node.AddChild(p.parseStatement())

	if p.check(TokenElse) {
		p.advance()
		node.AddChild(p.parseStatement())
	}

	return p.finishNode(node)
}

func (p *Parser) parseWhileStmt() *Node {
	node := p.startNode(KindWhileStmt)
	p.expect(TokenWhile)
	node.AddChild(p.parseCondition())
	node.AddChild(p.parseStatement())
	return p.finishNode(node)
}

func (p *Parser) parseDoStmt() *Node {
	node := p.startNode(KindDoStmt)
	p.expect(TokenDo)
	node.AddChild(p.parseStatement())
	p.expect(TokenWhile)
	node.AddChild(p.parseCondition())
	p.expect(TokenSemicolon)
	return p.finishNode(node)
}

func (p *Parser) parseForStmt() *Node {
	node := p.startNode(KindForStmt)
	p.expect(TokenFor)
	p.expect(TokenLParen)

	if p.isEnhancedFor() {
		node.Kind = KindEnhancedForStmt
		p.skipModifiers()
		node.AddChild(p.parseType())
		node.AddChild(p.identifier())
		p.expect(TokenColon)
		node.AddChild(p.parseExpression())
		p.expect(TokenRParen)
		node.AddChild(p.parseStatement())
		return p.finishNode(node)
	}

	init := p.startNode(KindForInit)
	if !p.check(TokenSemicolon) {
		if p.isVarDecl() {
			init.AddChild(p.parseVarDecl(false))
		} else {
			p.parseExpressionList(init)
		}
	}
	node.AddChild(p.finishNode(init))
	p.expect(TokenSemicolon)

	cond := p.startNode(KindForCond)
	if !p.check(TokenSemicolon) {
		cond.AddChild(p.parseExpression())
	}
	node.AddChild(p.finishNode(cond))
	p.expect(TokenSemicolon)

	update := p.startNode(KindForUpdate)
	if !p.check(TokenRParen) {
		p.parseExpressionList(update)
	}
	node.AddChild(p.finishNode(update))
	p.expect(TokenRParen)

	node.AddChild(p.parseStatement())
	return p.finishNode(node)
}

func (p *Parser) parseExpressionList(parent *Node) {
	for {
		parent.AddChild(p.parseExpression())
		if !p.check(TokenComma) {
			return
		}
		p.advance()
	}
}

// isEnhancedFor speculatively matches "Type name :" after the opening
// parenthesis and rewinds.
func (p *Parser) isEnhancedFor() bool {
	save := p.pos
	defer func() { p.pos = save }()
	p.skipModifiers()
	if !p.skipType() || !p.check(TokenIdent) {
		return false
	}
	p.advance()
	return p.check(TokenColon)
}

func (p *Parser) parseSwitchStmt() *Node {
	node := p.startNode(KindSwitchStmt)
	p.expect(TokenSwitch)
	node.AddChild(p.parseCondition())
	p.expect(TokenLBrace)

	for !p.check(TokenRBrace) && !p.check(TokenEOF) {
		node.AddChild(p.parseSwitchCase())
	}

	p.expectClosing(TokenRBrace)
	return p.finishNode(node)
}

// parseSwitchCase parses one or more labels followed by the statements up
// to the next label. An arrow label takes exactly one statement. Each
// SwitchLabel keeps its ':' or '->' as its token.
func (p *Parser) parseSwitchCase() *Node {
	node := p.startNode(KindSwitchCase)

	arrow := false
	for p.match(TokenCase, TokenDefault) && !arrow {
		label := p.startNode(KindSwitchLabel)
		if p.advance().Kind == TokenCase {
			for {
				label.AddChild(p.parseTernaryExpr())
				if !p.check(TokenComma) {
					break
				}
				p.advance()
			}
		}
		var sep Token
		if p.check(TokenArrow) {
			arrow = true
			sep = p.advance()
		} else {
			sep = p.expect(TokenColon)
		}
		label.Token = &sep
		node.AddChild(p.finishNode(label))
	}
	if len(node.Children) == 0 {
		p.fail("expected 'case' or 'default', found %s", describe(p.peek()))
	}

	if arrow {
		node.AddChild(p.guarded(p.parseStatement, true))
		return p.finishNode(node)
	}

	for {
		p.addComments(node)
		if p.match(TokenCase, TokenDefault, TokenRBrace, TokenEOF) {
			break
		}
		node.AddChild(p.guarded(p.parseStatement, true))
	}
	return p.finishNode(node)
}

func (p *Parser) parseReturnStmt() *Node {
	node := p.startNode(KindReturnStmt)
	p.expect(TokenReturn)
	if !p.check(TokenSemicolon) {
		node.AddChild(p.parseExpression())
	}
	p.expect(TokenSemicolon)
	return p.finishNode(node)
}

func (p *Parser) parseJumpStmt(kind NodeKind) *Node {
	node := p.startNode(kind)
	tok := p.advance()
	node.Token = &tok
	if p.check(TokenIdent) {
		p.fail("labeled %s is not supported", node.Token.Literal)
	}
	p.expect(TokenSemicolon)
	return p.finishNode(node)
}
