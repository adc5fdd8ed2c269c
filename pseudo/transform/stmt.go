package transform

import (
	"strings"

	"github.com/dhamidi/ibpc/java/parser"
	"github.com/dhamidi/ibpc/pseudo"
)

func (t *Transformer) statement(n *parser.Node) ([]pseudo.Node, error) {
	level := t.ctx.indent

	switch n.Kind {
	case parser.KindComment:
		return t.comment(n), nil
	case parser.KindClassDecl:
		return t.classDecl(n), nil
	case parser.KindMethodDecl:
		return t.methodDecl(n)
	case parser.KindVarDecl:
		return t.varDecl(n)
	case parser.KindBlock:
		t.ctx.Push(BlockScope)
		defer t.ctx.Pop()
		return t.statements(n.Children), nil
	case parser.KindEmptyStmt:
		return nil, nil
	case parser.KindExprStmt:
		return t.exprStmt(n.Child(0))
	case parser.KindIfStmt:
		return t.ifStmt(n)
	case parser.KindWhileStmt:
		return t.whileStmt(n)
	case parser.KindDoStmt:
		return t.doStmt(n)
	case parser.KindForStmt:
		return t.forStmt(n)
	case parser.KindEnhancedForStmt:
		return t.forEachStmt(n)
	case parser.KindSwitchStmt:
		return t.switchStmt(n)
	case parser.KindBreakStmt:
		return []pseudo.Node{pseudo.Statement(level, "break")}, nil
	case parser.KindContinueStmt:
		return []pseudo.Node{pseudo.Statement(level, "continue")}, nil
	case parser.KindReturnStmt:
		return t.returnStmt(n)
	}
	return nil, errorf(n, "unsupported construct %s", n.Kind)
}

// comment splits block comments into one node per line.
func (t *Transformer) comment(n *parser.Node) []pseudo.Node {
	level := t.ctx.indent
	text := n.TokenLiteral()
	if n.Token == nil || n.Token.Kind == parser.TokenLineComment {
		return []pseudo.Node{pseudo.Comment(level, strings.TrimRight(text, " \t\r"))}
	}
	var out []pseudo.Node
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		out = append(out, pseudo.Comment(level, line))
	}
	return out
}

// classDecl is transparent: members are emitted at the current level.
func (t *Transformer) classDecl(n *parser.Node) []pseudo.Node {
	t.ctx.Push(ClassScope)
	defer t.ctx.Pop()

	members := n.Children[min(2, len(n.Children)):]
	t.declareMembers(members)
	log.Debugf("class %s: %d members", n.Child(1).TokenLiteral(), len(members))
	return t.statements(members)
}

func isMain(n *parser.Node) bool {
	return n.Child(2).TokenLiteral() == "main" &&
		n.Child(1).TypeName() == "void" &&
		n.HasModifier(parser.TokenStatic)
}

func (t *Transformer) methodDecl(n *parser.Node) ([]pseudo.Node, error) {
	level := t.ctx.indent
	name := n.Child(2).TokenLiteral()
	returnType := n.Child(1).TypeName()
	info := t.ctx.LookupMethod(name)

	t.ctx.Push(MethodScope)
	defer t.ctx.Pop()

	var params []string
	for _, p := range n.Child(3).ChildrenOfKind(parser.KindParameter) {
		v := t.ctx.Declare(p.Child(1).TokenLiteral(), p.Child(0).TypeName())
		params = append(params, v.Name)
	}

	block := n.Child(4)
	if block == nil {
		return nil, errorf(n, "method %s has no body", name)
	}

	if isMain(n) {
		return t.statements(block.Children), nil
	}

	keyword := "FUNCTION"
	if returnType == "void" {
		keyword = "PROCEDURE"
	}
	header := keyword + " " + info.Name + "(" + strings.Join(params, ", ") + ")"

	t.ctx.indent++
	children := t.statements(block.Children)
	t.ctx.indent--

	return []pseudo.Node{
		pseudo.Block(level, header, children...),
		pseudo.Statement(level, "end "+keyword),
	}, nil
}

func (t *Transformer) varDecl(n *parser.Node) ([]pseudo.Node, error) {
	typ := n.Child(1).TypeName()

	var out []pseudo.Node
	for _, d := range n.ChildrenOfKind(parser.KindDeclarator) {
		name := d.Child(0).TokenLiteral()
		info := t.ctx.Declare(name, typ)
		init := d.Child(1)
		if init == nil || typ == "Scanner" {
			continue
		}
		nodes, err := t.assignValue(d, info.Name, init)
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)
	}
	if typ == "Scanner" {
		log.Debugf("dropped Scanner declaration at %s", n.Span.Start)
	}
	return out, nil
}

// assignValue renders "TARGET = value", turning Scanner reads into input
// statements and conditional values into if blocks.
func (t *Transformer) assignValue(n *parser.Node, target string, value *parser.Node) ([]pseudo.Node, error) {
	level := t.ctx.indent

	if t.isInputCall(value) {
		return []pseudo.Node{pseudo.Statement(level, "input "+target)}, nil
	}
	if value.Kind == parser.KindTernaryExpr {
		return t.conditionalValue(value, func(v *parser.Node) ([]pseudo.Node, error) {
			return t.assignValue(n, target, v)
		})
	}
	if value.Kind == parser.KindAssignExpr {
		inner, err := t.assignment(value)
		if err != nil {
			return nil, err
		}
		rhs, err := t.expr(value.Child(0))
		if err != nil {
			return nil, err
		}
		return append(inner, pseudo.Statement(level, target+" = "+rhs)), nil
	}

	text, err := t.initializer(value)
	if err != nil {
		return nil, err
	}
	return []pseudo.Node{pseudo.Statement(level, target+" = "+text)}, nil
}

// conditionalValue expands "c ? a : b" in value position into an if/else
// around the statement produced by emit.
func (t *Transformer) conditionalValue(n *parser.Node, emit func(*parser.Node) ([]pseudo.Node, error)) ([]pseudo.Node, error) {
	cond, err := t.expr(n.Child(0))
	if err != nil {
		return nil, err
	}
	level := t.ctx.indent

	t.ctx.indent++
	defer func() { t.ctx.indent-- }()
	thenNodes, err := emit(n.Child(1))
	if err != nil {
		return nil, err
	}
	elseNodes, err := emit(n.Child(2))
	if err != nil {
		return nil, err
	}
	return []pseudo.Node{
		pseudo.Block(level, "if "+cond+" then", thenNodes...),
		pseudo.Block(level, "else", elseNodes...),
		pseudo.Statement(level, "end if"),
	}, nil
}

func (t *Transformer) exprStmt(e *parser.Node) ([]pseudo.Node, error) {
	level := t.ctx.indent

	switch e.Kind {
	case parser.KindAssignExpr:
		return t.assignment(e)
	case parser.KindPostfixExpr, parser.KindUnaryExpr:
		if nodes, ok, err := t.increment(e); ok {
			return nodes, err
		}
	case parser.KindCallExpr:
		if t.isOutputCall(e) {
			text, err := t.output(e)
			if err != nil {
				return nil, err
			}
			return []pseudo.Node{pseudo.Statement(level, text)}, nil
		}
		if t.isInputCall(e) || t.isScannerClose(e) {
			return nil, nil
		}
	}

	// Evaluated for its effect only, such as a procedure call.
	text, err := t.expr(e)
	if err != nil {
		return nil, err
	}
	return []pseudo.Node{pseudo.Expression(level, text)}, nil
}

// increment expands x++, ++x, x-- and --x into an assignment.
func (t *Transformer) increment(e *parser.Node) ([]pseudo.Node, bool, error) {
	operand, op := e.Child(0), e.Child(1)
	if e.Kind == parser.KindUnaryExpr {
		operand, op = e.Child(1), e.Child(0)
	}
	var sign string
	switch op.TokenLiteral() {
	case "++":
		sign = "+"
	case "--":
		sign = "-"
	default:
		return nil, false, nil
	}
	target, err := t.expr(operand)
	if err != nil {
		return nil, true, err
	}
	return []pseudo.Node{pseudo.Statement(t.ctx.indent, target+" = "+target+" "+sign+" 1")}, true, nil
}

func (t *Transformer) assignment(e *parser.Node) ([]pseudo.Node, error) {
	level := t.ctx.indent
	target, err := t.expr(e.Child(0))
	if err != nil {
		return nil, err
	}
	op := e.Child(1).TokenLiteral()
	value := e.Child(2)

	if op == "=" {
		return t.assignValue(e, target, value)
	}

	base, ok := t.rules.CompoundOperator(op)
	if !ok {
		return nil, errorf(e.Child(1), "operator %s has no pseudocode equivalent", op)
	}
	integer := t.isIntegerDivision(e.Child(0), value)
	mapped, ok := t.rules.BinaryOperator(base, integer)
	if !ok {
		return nil, errorf(e.Child(1), "operator %s has no pseudocode equivalent", op)
	}
	text, err := t.operand(value)
	if err != nil {
		return nil, err
	}
	if value.Kind == parser.KindBinaryExpr || value.Kind == parser.KindTernaryExpr {
		text = "(" + text + ")"
	}
	return []pseudo.Node{pseudo.Statement(level, target+" = "+target+" "+mapped+" "+text)}, nil
}

func (t *Transformer) returnStmt(n *parser.Node) ([]pseudo.Node, error) {
	level := t.ctx.indent
	value := n.Child(0)
	if value == nil {
		return []pseudo.Node{pseudo.Statement(level, "return")}, nil
	}
	if value.Kind == parser.KindTernaryExpr {
		return t.conditionalValue(value, func(v *parser.Node) ([]pseudo.Node, error) {
			text, err := t.expr(v)
			if err != nil {
				return nil, err
			}
			return []pseudo.Node{pseudo.Statement(t.ctx.indent, "return "+text)}, nil
		})
	}
	text, err := t.expr(value)
	if err != nil {
		return nil, err
	}
	return []pseudo.Node{pseudo.Statement(level, "return "+text)}, nil
}

// branch is one arm of an if chain. An empty cond marks the final else.
type branch struct {
	cond string
	body func() []pseudo.Node
}

func (t *Transformer) ifStmt(n *parser.Node) ([]pseudo.Node, error) {
	var branches []branch
	for cur := n; ; {
		cond, err := t.expr(cur.Child(0))
		if err != nil {
			return nil, err
		}
		then := cur.Child(1)
		branches = append(branches, branch{cond: cond, body: func() []pseudo.Node { return t.body(then) }})

		alt := cur.Child(2)
		if alt == nil {
			break
		}
		if alt.Kind == parser.KindIfStmt {
			cur = alt
			continue
		}
		branches = append(branches, branch{body: func() []pseudo.Node { return t.body(alt) }})
		break
	}
	return t.chain(branches), nil
}

// chain renders an if/else-if/else sequence. By default each else-if is a
// nested if inside the else branch; FlatElseIf keeps them at one level
// under a single end if.
func (t *Transformer) chain(branches []branch) []pseudo.Node {
	level := t.ctx.indent
	if len(branches) == 0 {
		return nil
	}

	if t.rules.Config().FlatElseIf {
		var out []pseudo.Node
		for i, b := range branches {
			header := "else if " + b.cond + " then"
			switch {
			case i == 0:
				header = "if " + b.cond + " then"
			case b.cond == "":
				header = "else"
			}
			out = append(out, pseudo.Block(level, header, b.body()...))
		}
		return append(out, pseudo.Statement(level, "end if"))
	}

	first := branches[0]
	out := []pseudo.Node{pseudo.Block(level, "if "+first.cond+" then", first.body()...)}
	rest := branches[1:]
	switch {
	case len(rest) == 1 && rest[0].cond == "":
		out = append(out, pseudo.Block(level, "else", rest[0].body()...))
	case len(rest) > 0:
		t.ctx.indent++
		nested := t.chain(rest)
		t.ctx.indent--
		out = append(out, pseudo.Block(level, "else", nested...))
	}
	return append(out, pseudo.Statement(level, "end if"))
}

// switchStmt rewrites a switch into an if chain comparing the selector
// with each case label. A trailing break in a case is dropped and default
// becomes the final else.
func (t *Transformer) switchStmt(n *parser.Node) ([]pseudo.Node, error) {
	selector, err := t.operand(n.Child(0))
	if err != nil {
		return nil, err
	}
	if n.Child(0).Kind == parser.KindBinaryExpr {
		selector = "(" + selector + ")"
	}
	eq, _ := t.rules.BinaryOperator("==", false)

	var branches []branch
	var fallback *branch
	cases := n.ChildrenOfKind(parser.KindSwitchCase)
	for i, c := range cases {
		var conds []string
		isDefault := false
		var stmts []*parser.Node
		for _, child := range c.Children {
			if child.Kind != parser.KindSwitchLabel {
				stmts = append(stmts, child)
				continue
			}
			if len(child.Children) == 0 {
				isDefault = true
			}
			for _, v := range child.Children {
				text, err := t.operand(v)
				if err != nil {
					return nil, err
				}
				conds = append(conds, selector+" "+eq+" "+text)
			}
		}

		stmts = trimBreak(stmts)
		if i < len(cases)-1 && len(stmts) > 0 && !isArrowCase(c) && !endsFlow(c) {
			t.warn(c, "case falls through to the next case; the fallthrough is not converted")
		}
		body := func() []pseudo.Node { return t.nested(stmts) }
		if isDefault {
			fallback = &branch{body: body}
			continue
		}
		branches = append(branches, branch{cond: strings.Join(conds, " OR "), body: body})
	}

	if len(branches) == 0 {
		if fallback == nil {
			return nil, nil
		}
		t.ctx.Push(BlockScope)
		defer t.ctx.Pop()
		return t.statements(stmtsOf(cases)), nil
	}
	if fallback != nil {
		branches = append(branches, *fallback)
	}
	return t.chain(branches), nil
}

func trimBreak(stmts []*parser.Node) []*parser.Node {
	if n := len(stmts); n > 0 && stmts[n-1].Kind == parser.KindBreakStmt {
		return stmts[:n-1]
	}
	return stmts
}

func isArrowCase(c *parser.Node) bool {
	label := c.FirstChildOfKind(parser.KindSwitchLabel)
	return label != nil && label.Token != nil && label.Token.Kind == parser.TokenArrow
}

// endsFlow reports whether a case ends in a statement that leaves it.
func endsFlow(c *parser.Node) bool {
	last := c.Child(len(c.Children) - 1)
	if last == nil {
		return false
	}
	switch last.Kind {
	case parser.KindBreakStmt, parser.KindReturnStmt, parser.KindContinueStmt:
		return true
	case parser.KindBlock:
		return endsFlow(last)
	}
	return false
}

// stmtsOf collects the statements of a switch that only has a default.
func stmtsOf(cases []*parser.Node) []*parser.Node {
	var out []*parser.Node
	for _, c := range cases {
		for _, child := range c.Children {
			if child.Kind != parser.KindSwitchLabel {
				out = append(out, child)
			}
		}
	}
	return trimBreak(out)
}
