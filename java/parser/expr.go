package parser

func (p *Parser) parseExpression() *Node {
	return p.parseAssignmentExpr()
}

func (p *Parser) parseAssignmentExpr() *Node {
	left := p.parseTernaryExpr()

	if p.isAssignOp() {
		switch left.Kind {
		case KindIdentifier, KindFieldAccess, KindArrayAccess:
		default:
			p.fail("invalid assignment target")
		}
		node := &Node{Kind: KindAssignExpr, Span: Span{Start: left.Span.Start}}
		node.AddChild(left)
		node.AddChild(p.leaf(KindOperator))
		node.AddChild(p.parseAssignmentExpr())
		return p.finishNode(node)
	}

	return left
}

func (p *Parser) isAssignOp() bool {
	switch p.peek().Kind {
	case TokenAssign, TokenPlusAssign, TokenMinusAssign,
		TokenStarAssign, TokenSlashAssign, TokenPercentAssign,
		TokenAndAssign, TokenOrAssign, TokenXorAssign,
		TokenShlAssign, TokenShrAssign, TokenUShrAssign:
		return true
	}
	return false
}

func (p *Parser) parseTernaryExpr() *Node {
	cond := p.parseOrExpr()

	if p.check(TokenQuestion) {
		node := &Node{Kind: KindTernaryExpr, Span: Span{Start: cond.Span.Start}}
		node.AddChild(cond)
		p.advance()
		node.AddChild(p.parseExpression())
		p.expect(TokenColon)
		node.AddChild(p.parseTernaryExpr())
		return p.finishNode(node)
	}

	return cond
}

// binary parses one left-associative precedence level: next (op next)*.
func (p *Parser) binary(next func() *Node, ops ...TokenKind) *Node {
	left := next()

	for p.match(ops...) {
		node := &Node{Kind: KindBinaryExpr, Span: Span{Start: left.Span.Start}}
		node.AddChild(left)
		node.AddChild(p.leaf(KindOperator))
		node.AddChild(next())
		left = p.finishNode(node)
	}

	return left
}

func (p *Parser) parseOrExpr() *Node {
	return p.binary(p.parseAndExpr, TokenOr)
}

func (p *Parser) parseAndExpr() *Node {
	return p.binary(p.parseBitOrExpr, TokenAnd)
}

func (p *Parser) parseBitOrExpr() *Node {
	return p.binary(p.parseBitXorExpr, TokenBitOr)
}

func (p *Parser) parseBitXorExpr() *Node {
	return p.binary(p.parseBitAndExpr, TokenBitXor)
}

func (p *Parser) parseBitAndExpr() *Node {
	return p.binary(p.parseEqualityExpr, TokenBitAnd)
}

func (p *Parser) parseEqualityExpr() *Node {
	return p.binary(p.parseRelationalExpr, TokenEQ, TokenNE)
}

func (p *Parser) parseRelationalExpr() *Node {
	return p.binary(p.parseShiftExpr, TokenLT, TokenLE, TokenGT, TokenGE)
}

func (p *Parser) parseShiftExpr() *Node {
	return p.binary(p.parseAdditiveExpr, TokenShl, TokenShr, TokenUShr)
}

func (p *Parser) parseAdditiveExpr() *Node {
	return p.binary(p.parseMultiplicativeExpr, TokenPlus, TokenMinus)
}

func (p *Parser) parseMultiplicativeExpr() *Node {
	return p.binary(p.parseUnaryExpr, TokenStar, TokenSlash, TokenPercent)
}

func (p *Parser) parseUnaryExpr() *Node {
	switch p.peek().Kind {
	case TokenIncrement, TokenDecrement, TokenPlus, TokenMinus, TokenNot, TokenBitNot:
		node := p.startNode(KindUnaryExpr)
		node.AddChild(p.leaf(KindOperator))
		node.AddChild(p.parseUnaryExpr())
		return p.finishNode(node)
	case TokenLParen:
		if p.isCast() {
			return p.parseCastExpr()
		}
	}
	return p.parsePostfixExpr()
}

// isCast reports whether a parenthesized primitive type such as "(int)" or
// "(double[])" starts at the current token.
func (p *Parser) isCast() bool {
	if !p.peekN(1).Kind.IsPrimitiveType() {
		return false
	}
	n := 2
	for p.peekN(n).Kind == TokenLBracket && p.peekN(n+1).Kind == TokenRBracket {
		n += 2
	}
	return p.peekN(n).Kind == TokenRParen
}

func (p *Parser) parseCastExpr() *Node {
	node := p.startNode(KindCastExpr)
	p.expect(TokenLParen)
	node.AddChild(p.parseType())
	p.expect(TokenRParen)
	node.AddChild(p.parseUnaryExpr())
	return p.finishNode(node)
}

func (p *Parser) parsePostfixExpr() *Node {
	expr := p.parsePrimaryExpr()

	for {
		switch p.peek().Kind {
		case TokenIncrement, TokenDecrement:
			node := &Node{Kind: KindPostfixExpr, Span: Span{Start: expr.Span.Start}}
			node.AddChild(expr)
			node.AddChild(p.leaf(KindOperator))
			expr = p.finishNode(node)
		case TokenDot:
			p.advance()
			node := &Node{Kind: KindFieldAccess, Span: Span{Start: expr.Span.Start}}
			node.AddChild(expr)
			node.AddChild(p.identifier())
			expr = p.finishNode(node)
			if p.check(TokenLParen) {
				expr = p.parseMethodCall(expr)
			}
		case TokenLBracket:
			p.advance()
			node := &Node{Kind: KindArrayAccess, Span: Span{Start: expr.Span.Start}}
			node.AddChild(expr)
			node.AddChild(p.parseExpression())
			p.expect(TokenRBracket)
			expr = p.finishNode(node)
		case TokenLParen:
			if expr.Kind != KindIdentifier {
				return expr
			}
			expr = p.parseMethodCall(expr)
		default:
			return expr
		}
	}
}

func (p *Parser) parseMethodCall(target *Node) *Node {
	node := &Node{Kind: KindCallExpr, Span: Span{Start: target.Span.Start}}
	node.AddChild(target)
	node.AddChild(p.parseArguments())
	return p.finishNode(node)
}

func (p *Parser) parseArguments() *Node {
	node := p.startNode(KindArguments)
	p.expect(TokenLParen)
	if !p.check(TokenRParen) {
		p.parseExpressionList(node)
	}
	p.expect(TokenRParen)
	return p.finishNode(node)
}

func (p *Parser) parsePrimaryExpr() *Node {
	switch p.peek().Kind {
	case TokenIntLiteral, TokenFloatLiteral, TokenCharLiteral,
		TokenStringLiteral, TokenTrue, TokenFalse, TokenNull:
		return p.leaf(KindLiteral)
	case TokenIdent:
		return p.leaf(KindIdentifier)
	case TokenThis:
		return p.leaf(KindThis)
	case TokenNew:
		return p.parseNewExpr()
	case TokenLParen:
		node := p.startNode(KindParenExpr)
		p.advance()
		node.AddChild(p.parseExpression())
		p.expect(TokenRParen)
		return p.finishNode(node)
	}
	p.fail("expected expression, found %s", describe(p.peek()))
	return nil
}

// parseNewExpr parses object creation, NewExpr(Type, Arguments), and array
// creation, NewArrayExpr(Type, dimension..., [ArrayInit]). The Type of an
// array creation carries one ArrayDim per bracket pair.
func (p *Parser) parseNewExpr() *Node {
	node := p.startNode(KindNewExpr)
	p.expect(TokenNew)
	typ := p.parseType()
	node.AddChild(typ)

	if p.check(TokenLBracket) || len(typ.Children) > 0 {
		node.Kind = KindNewArrayExpr
		for p.check(TokenLBracket) {
			dim := p.startNode(KindArrayDim)
			p.advance()
			if !p.check(TokenRBracket) {
				node.AddChild(p.parseExpression())
			}
			p.expect(TokenRBracket)
			typ.AddChild(p.finishNode(dim))
		}
		if p.check(TokenLBrace) {
			node.AddChild(p.parseArrayInit())
		}
		return p.finishNode(node)
	}

	node.AddChild(p.parseArguments())
	if p.check(TokenLBrace) {
		p.fail("anonymous classes are not supported")
	}
	return p.finishNode(node)
}
