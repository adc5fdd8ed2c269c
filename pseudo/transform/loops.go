package transform

import (
	"strconv"

	"github.com/dhamidi/ibpc/java/parser"
	"github.com/dhamidi/ibpc/pseudo"
)

func (t *Transformer) whileStmt(n *parser.Node) ([]pseudo.Node, error) {
	level := t.ctx.indent
	cond, err := t.expr(n.Child(0))
	if err != nil {
		return nil, err
	}
	return []pseudo.Node{
		pseudo.Block(level, "loop while "+cond, t.body(n.Child(1))...),
		pseudo.Statement(level, "end loop"),
	}, nil
}

// doStmt renders a do-while loop as a loop block whose closing line
// carries the condition.
func (t *Transformer) doStmt(n *parser.Node) ([]pseudo.Node, error) {
	level := t.ctx.indent
	cond, err := t.expr(n.Child(1))
	if err != nil {
		return nil, err
	}
	return []pseudo.Node{
		pseudo.Block(level, "loop", t.body(n.Child(0))...),
		pseudo.Statement(level, "end loop while "+cond),
	}, nil
}

func (t *Transformer) forEachStmt(n *parser.Node) ([]pseudo.Node, error) {
	level := t.ctx.indent
	iterable, err := t.expr(n.Child(2))
	if err != nil {
		return nil, err
	}

	t.ctx.Push(BlockScope)
	defer t.ctx.Pop()
	v := t.ctx.Declare(n.Child(1).TokenLiteral(), n.Child(0).TypeName())

	return []pseudo.Node{
		pseudo.Block(level, "loop for each "+v.Name+" in "+iterable, t.body(n.Child(3))...),
		pseudo.Statement(level, "end loop"),
	}, nil
}

// countingLoop is the shape of a for loop that steps one variable by one
// towards a bound.
type countingLoop struct {
	name  string
	typ   string
	start *parser.Node
	op    string
	end   *parser.Node
	up    bool
}

func (t *Transformer) forStmt(n *parser.Node) ([]pseudo.Node, error) {
	init, cond, update, body := n.Child(0), n.Child(1), n.Child(2), n.Child(3)

	t.ctx.Push(BlockScope)
	defer t.ctx.Pop()

	if loop, ok := matchCountingLoop(init, cond, update); ok {
		return t.rangeLoop(loop, body)
	}
	return t.whileLoop(init, cond, update, body)
}

func (t *Transformer) rangeLoop(loop countingLoop, body *parser.Node) ([]pseudo.Node, error) {
	level := t.ctx.indent
	start, err := t.expr(loop.start)
	if err != nil {
		return nil, err
	}
	end, err := t.bound(loop)
	if err != nil {
		return nil, err
	}

	var v *VariableInfo
	if loop.typ != "" {
		v = t.ctx.Declare(loop.name, loop.typ)
	} else {
		v = t.ctx.Lookup(loop.name)
	}

	to := " to "
	if !loop.up {
		to = " down to "
	}
	return []pseudo.Node{
		pseudo.Block(level, "loop "+v.Name+" from "+start+to+end, t.body(body)...),
		pseudo.Statement(level, "end loop"),
	}, nil
}

// bound computes the inclusive end of a range loop: one less than the
// bound for "<", one more for ">", folded when the bound is an integer
// literal.
func (t *Transformer) bound(loop countingLoop) (string, error) {
	delta := 0
	switch loop.op {
	case "<":
		delta = -1
	case ">":
		delta = 1
	}

	if delta != 0 && loop.end.Kind == parser.KindLiteral && loop.end.Token.Kind == parser.TokenIntLiteral {
		if v, err := strconv.Atoi(t.rules.Number(loop.end.TokenLiteral())); err == nil {
			return strconv.Itoa(v + delta), nil
		}
	}

	end, err := t.expr(loop.end)
	if err != nil {
		return "", err
	}
	switch delta {
	case -1:
		return end + " - 1", nil
	case 1:
		return end + " + 1", nil
	}
	return end, nil
}

// whileLoop expands any other for loop into its initializer followed by a
// condition loop with the update as the last body statements.
func (t *Transformer) whileLoop(init, cond, update, body *parser.Node) ([]pseudo.Node, error) {
	level := t.ctx.indent

	var out []pseudo.Node
	for _, c := range init.Children {
		var nodes []pseudo.Node
		var err error
		if c.Kind == parser.KindVarDecl {
			nodes, err = t.varDecl(c)
		} else {
			nodes, err = t.exprStmt(c)
		}
		if err != nil {
			return nil, err
		}
		out = append(out, nodes...)
	}

	condText := t.rules.Boolean(true)
	if c := cond.Child(0); c != nil {
		var err error
		if condText, err = t.expr(c); err != nil {
			return nil, err
		}
	}

	if len(update.Children) > 0 {
		if c := findContinue(body); c != nil {
			t.warn(c, "continue skips the loop update, which is emitted at the end of the loop body")
		}
	}

	children := t.body(body)
	t.ctx.indent++
	for _, u := range update.Children {
		nodes, err := t.exprStmt(u)
		if err != nil {
			t.ctx.indent--
			return nil, err
		}
		children = append(children, nodes...)
	}
	t.ctx.indent--

	return append(out,
		pseudo.Block(level, "loop while "+condText, children...),
		pseudo.Statement(level, "end loop"),
	), nil
}

// findContinue returns the first continue statement that targets the loop
// owning body. Nested loops are not searched.
func findContinue(n *parser.Node) *parser.Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case parser.KindContinueStmt:
		return n
	case parser.KindWhileStmt, parser.KindDoStmt, parser.KindForStmt, parser.KindEnhancedForStmt:
		return nil
	}
	for _, c := range n.Children {
		if found := findContinue(c); found != nil {
			return found
		}
	}
	return nil
}

func matchCountingLoop(init, cond, update *parser.Node) (countingLoop, bool) {
	var loop countingLoop
	if init == nil || cond == nil || update == nil ||
		len(init.Children) != 1 || len(cond.Children) != 1 || len(update.Children) != 1 {
		return loop, false
	}

	switch decl := init.Child(0); decl.Kind {
	case parser.KindVarDecl:
		declarators := decl.ChildrenOfKind(parser.KindDeclarator)
		if len(declarators) != 1 || declarators[0].Child(1) == nil {
			return loop, false
		}
		loop.typ = decl.Child(1).TypeName()
		loop.name = declarators[0].Child(0).TokenLiteral()
		loop.start = declarators[0].Child(1)
	case parser.KindAssignExpr:
		if decl.Child(0).Kind != parser.KindIdentifier || decl.Child(1).TokenLiteral() != "=" {
			return loop, false
		}
		loop.name = decl.Child(0).TokenLiteral()
		loop.start = decl.Child(2)
	default:
		return loop, false
	}
	if loop.start.Kind == parser.KindArrayInit {
		return loop, false
	}

	c := cond.Child(0)
	if c.Kind != parser.KindBinaryExpr || c.Child(0).Kind != parser.KindIdentifier ||
		c.Child(0).TokenLiteral() != loop.name {
		return loop, false
	}
	loop.op = c.Child(1).TokenLiteral()
	loop.end = c.Child(2)

	step, ok := stepOf(update.Child(0), loop.name)
	if !ok {
		return loop, false
	}
	switch {
	case step > 0 && (loop.op == "<" || loop.op == "<="):
		loop.up = true
	case step < 0 && (loop.op == ">" || loop.op == ">="):
		loop.up = false
	default:
		return loop, false
	}
	return loop, true
}

// stepOf recognizes i++, ++i, i--, --i, i += 1 and i -= 1 on name.
func stepOf(u *parser.Node, name string) (int, bool) {
	var target *parser.Node
	var op string
	switch u.Kind {
	case parser.KindPostfixExpr:
		target, op = u.Child(0), u.Child(1).TokenLiteral()
	case parser.KindUnaryExpr:
		target, op = u.Child(1), u.Child(0).TokenLiteral()
	case parser.KindAssignExpr:
		one := u.Child(2)
		if one.Kind != parser.KindLiteral || one.TokenLiteral() != "1" {
			return 0, false
		}
		target = u.Child(0)
		switch u.Child(1).TokenLiteral() {
		case "+=":
			op = "++"
		case "-=":
			op = "--"
		}
	default:
		return 0, false
	}
	if target.Kind != parser.KindIdentifier || target.TokenLiteral() != name {
		return 0, false
	}
	switch op {
	case "++":
		return 1, true
	case "--":
		return -1, true
	}
	return 0, false
}
