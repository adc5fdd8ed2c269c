package transform

import (
	"strings"

	"github.com/dhamidi/ibpc/java/parser"
)

func (t *Transformer) expr(n *parser.Node) (string, error) {
	if n == nil {
		return "", errorf(nil, "missing expression")
	}

	switch n.Kind {
	case parser.KindLiteral:
		return t.literal(n), nil
	case parser.KindIdentifier:
		return t.ctx.Lookup(n.TokenLiteral()).Name, nil
	case parser.KindThis:
		return "this", nil
	case parser.KindParenExpr:
		inner, err := t.expr(n.Child(0))
		if err != nil {
			return "", err
		}
		return "(" + inner + ")", nil
	case parser.KindBinaryExpr:
		return t.binary(n)
	case parser.KindUnaryExpr:
		return t.unary(n)
	case parser.KindPostfixExpr:
		t.warn(n, "%s inside an expression is not converted; the variable is used unchanged", n.Child(1).TokenLiteral())
		return t.expr(n.Child(0))
	case parser.KindCastExpr:
		return t.expr(n.Child(1))
	case parser.KindTernaryExpr:
		return t.ternary(n)
	case parser.KindArrayAccess:
		array, err := t.expr(n.Child(0))
		if err != nil {
			return "", err
		}
		index, err := t.expr(n.Child(1))
		if err != nil {
			return "", err
		}
		return array + "[" + index + "]", nil
	case parser.KindFieldAccess:
		return t.fieldAccess(n)
	case parser.KindCallExpr:
		return t.call(n)
	case parser.KindNewExpr:
		args, err := t.arguments(n.Child(1))
		if err != nil {
			return "", err
		}
		return "new " + n.Child(0).TokenLiteral() + "(" + strings.Join(args, ", ") + ")", nil
	case parser.KindNewArrayExpr, parser.KindArrayInit:
		return t.initializer(n)
	case parser.KindAssignExpr:
		return "", errorf(n, "assignment inside an expression is not supported")
	}
	return "", errorf(n, "unsupported expression %s", n.Kind)
}

func (t *Transformer) literal(n *parser.Node) string {
	text := n.TokenLiteral()
	switch n.Token.Kind {
	case parser.TokenTrue:
		return t.rules.Boolean(true)
	case parser.TokenFalse:
		return t.rules.Boolean(false)
	case parser.TokenNull:
		return t.rules.Null()
	case parser.TokenIntLiteral, parser.TokenFloatLiteral:
		return t.rules.Number(text)
	}
	return text
}

// operand renders n for use inside a larger operator expression. Built-ins
// that render as operators, such as equals, are parenthesized.
func (t *Transformer) operand(n *parser.Node) (string, error) {
	text, err := t.expr(n)
	if err != nil {
		return "", err
	}
	if t.isOperatorCall(n) {
		return "(" + text + ")", nil
	}
	return text, nil
}

func (t *Transformer) binary(n *parser.Node) (string, error) {
	left, right := n.Child(0), n.Child(2)
	op := n.Child(1).TokenLiteral()
	mapped, ok := t.rules.BinaryOperator(op, op == "/" && t.isIntegerDivision(left, right))
	if !ok {
		return "", errorf(n.Child(1), "operator %s has no pseudocode equivalent", op)
	}

	l, err := t.operand(left)
	if err != nil {
		return "", err
	}
	r, err := t.operand(right)
	if err != nil {
		return "", err
	}
	return l + " " + mapped + " " + r, nil
}

func (t *Transformer) unary(n *parser.Node) (string, error) {
	op := n.Child(0).TokenLiteral()
	operand := n.Child(1)

	switch op {
	case "++", "--":
		t.warn(n, "%s inside an expression is not converted; the updated value is used", op)
		text, err := t.operand(operand)
		if err != nil {
			return "", err
		}
		return text + " " + op[:1] + " 1", nil
	}

	mapped, ok := t.rules.UnaryOperator(op)
	if !ok {
		return "", errorf(n.Child(0), "operator %s has no pseudocode equivalent", op)
	}
	text, err := t.operand(operand)
	if err != nil {
		return "", err
	}
	if operand.Kind == parser.KindBinaryExpr {
		text = "(" + text + ")"
	}
	return mapped + text, nil
}

// ternary has no pseudocode form inside an expression; it is written in
// Java notation with a warning.
func (t *Transformer) ternary(n *parser.Node) (string, error) {
	t.warn(n, "conditional expression has no pseudocode form")
	parts := make([]string, 3)
	for i := range parts {
		text, err := t.operand(n.Child(i))
		if err != nil {
			return "", err
		}
		parts[i] = text
	}
	return parts[0] + " ? " + parts[1] + " : " + parts[2], nil
}

// initializer renders array creation as "new Array(N)" and array literals
// as "[A, B]"; anything else is an ordinary expression.
func (t *Transformer) initializer(n *parser.Node) (string, error) {
	switch n.Kind {
	case parser.KindArrayInit:
		var items []string
		for _, c := range n.Children {
			text, err := t.initializer(c)
			if err != nil {
				return "", err
			}
			items = append(items, text)
		}
		return "[" + strings.Join(items, ", ") + "]", nil
	case parser.KindNewArrayExpr:
		if init := n.FirstChildOfKind(parser.KindArrayInit); init != nil {
			return t.initializer(init)
		}
		var dims []string
		for _, c := range n.Children[1:] {
			text, err := t.expr(c)
			if err != nil {
				return "", err
			}
			dims = append(dims, text)
		}
		return "new Array(" + strings.Join(dims, ", ") + ")", nil
	}
	return t.expr(n)
}

func (t *Transformer) arguments(n *parser.Node) ([]string, error) {
	if n == nil {
		return nil, nil
	}
	args := make([]string, 0, len(n.Children))
	for _, c := range n.Children {
		text, err := t.expr(c)
		if err != nil {
			return nil, err
		}
		args = append(args, text)
	}
	return args, nil
}

// qualifiedName returns the dotted source text of an identifier chain such
// as System.out, or "" for any other expression.
func qualifiedName(n *parser.Node) string {
	switch n.Kind {
	case parser.KindIdentifier:
		return n.TokenLiteral()
	case parser.KindFieldAccess:
		if prefix := qualifiedName(n.Child(0)); prefix != "" {
			return prefix + "." + n.Child(1).TokenLiteral()
		}
	}
	return ""
}

func (t *Transformer) fieldAccess(n *parser.Node) (string, error) {
	target, field := n.Child(0), n.Child(1).TokenLiteral()

	if target.Kind == parser.KindThis {
		info, shadowed := t.ctx.Field(field)
		if shadowed {
			t.warn(n, "this.%s and the local %s both convert to %s", field, field, info.Name)
		}
		return info.Name, nil
	}
	if target.Kind == parser.KindIdentifier && !t.ctx.IsDeclared(target.TokenLiteral()) {
		if name, ok := t.rules.StaticConstant(target.TokenLiteral(), field); ok {
			return name, nil
		}
	}

	recv, err := t.expr(target)
	if err != nil {
		return "", err
	}
	if field == "length" {
		return "SIZE(" + recv + ")", nil
	}
	return recv + "." + t.rules.Name(field), nil
}

// callee splits a call into its receiver (nil for a bare call) and method
// name.
func callee(n *parser.Node) (*parser.Node, string) {
	c := n.Child(0)
	if c.Kind == parser.KindFieldAccess {
		return c.Child(0), c.Child(1).TokenLiteral()
	}
	return nil, c.TokenLiteral()
}

func (t *Transformer) call(n *parser.Node) (string, error) {
	recv, method := callee(n)

	if t.isOutputCall(n) {
		return "", errorf(n, "output call used as a value")
	}
	if t.isInputCall(n) {
		t.warn(n, "input read inside an expression; assign it to a variable to get an input statement")
		return "input()", nil
	}

	args, err := t.arguments(n.Child(1))
	if err != nil {
		return "", err
	}

	if recv == nil {
		return t.ctx.LookupMethod(method).Name + "(" + strings.Join(args, ", ") + ")", nil
	}
	if recv.Kind == parser.KindThis {
		return t.ctx.LookupMethod(method).Name + "(" + strings.Join(args, ", ") + ")", nil
	}

	if recv.Kind == parser.KindIdentifier && !t.ctx.IsDeclared(recv.TokenLiteral()) {
		if fn, ok := t.rules.StaticFunction(recv.TokenLiteral(), method); ok {
			return fn + "(" + strings.Join(args, ", ") + ")", nil
		}
	}

	receiver, err := t.operand(recv)
	if err != nil {
		return "", err
	}
	if recv.Kind == parser.KindBinaryExpr {
		receiver = "(" + receiver + ")"
	}

	if typ := t.typeOf(recv); typ == "String" || typ == "" {
		if b, ok := t.rules.StringMethod(method); ok {
			if text, ok := b.Render(receiver, args); ok {
				return text, nil
			}
		}
	}

	// Methods of library objects keep their Java spelling, matching the
	// camelCase collection methods of the pseudocode guide.
	return receiver + "." + method + "(" + strings.Join(args, ", ") + ")", nil
}

func (t *Transformer) isOperatorCall(n *parser.Node) bool {
	if n.Kind != parser.KindCallExpr {
		return false
	}
	recv, method := callee(n)
	if recv == nil {
		return false
	}
	if typ := t.typeOf(recv); typ != "String" && typ != "" {
		return false
	}
	b, ok := t.rules.StringMethod(method)
	return ok && b.Operator
}

func (t *Transformer) isOutputCall(n *parser.Node) bool {
	if n.Kind != parser.KindCallExpr {
		return false
	}
	recv, method := callee(n)
	return recv != nil && t.rules.IsOutputCall(qualifiedName(recv), method)
}

// isInputCall reports whether n reads from a Scanner, either directly as
// sc.nextInt() or wrapped in a parse function such as
// Integer.parseInt(sc.nextLine()).
func (t *Transformer) isInputCall(n *parser.Node) bool {
	if n == nil || n.Kind != parser.KindCallExpr {
		return false
	}
	recv, method := callee(n)
	if recv == nil {
		return false
	}
	if t.rules.IsInputMethod(method) && len(n.Child(1).Children) == 0 {
		return recv.Kind != parser.KindIdentifier || t.isScanner(recv.TokenLiteral())
	}
	if recv.Kind == parser.KindIdentifier {
		switch recv.TokenLiteral() + "." + method {
		case "Integer.parseInt", "Double.parseDouble", "Long.parseLong":
			return len(n.Child(1).Children) == 1 && t.isInputCall(n.Child(1).Child(0))
		}
	}
	return false
}

// isScanner accepts any receiver whose type is unknown, so code using an
// undeclared reader still converts.
func (t *Transformer) isScanner(name string) bool {
	typ := t.ctx.Lookup(name).Type
	return typ == "" || typ == "Scanner"
}

func (t *Transformer) isScannerClose(n *parser.Node) bool {
	recv, method := callee(n)
	return method == "close" && recv != nil && recv.Kind == parser.KindIdentifier &&
		t.ctx.Lookup(recv.TokenLiteral()).Type == "Scanner"
}

// output renders System.out.print/println/printf. A string concatenation
// whose leftmost operand is a string is split into separate items.
func (t *Transformer) output(n *parser.Node) (string, error) {
	args := n.Child(1).Children
	if len(args) == 0 {
		return `output ""`, nil
	}

	var items []string
	for _, arg := range args {
		parts := []*parser.Node{arg}
		if t.isConcatenation(arg) {
			parts = flattenConcat(arg)
		}
		for _, p := range parts {
			text, err := t.expr(p)
			if err != nil {
				return "", err
			}
			items = append(items, text)
		}
	}
	return "output " + strings.Join(items, ", "), nil
}

func (t *Transformer) isConcatenation(n *parser.Node) bool {
	if n.Kind != parser.KindBinaryExpr || n.Child(1).TokenLiteral() != "+" {
		return false
	}
	leftmost := n
	for leftmost.Kind == parser.KindBinaryExpr && leftmost.Child(1).TokenLiteral() == "+" {
		leftmost = leftmost.Child(0)
	}
	return t.typeOf(leftmost) == "String"
}

// flattenConcat lists the operands of a left-associative "+" chain.
func flattenConcat(n *parser.Node) []*parser.Node {
	if n.Kind != parser.KindBinaryExpr || n.Child(1).TokenLiteral() != "+" {
		return []*parser.Node{n}
	}
	return append(flattenConcat(n.Child(0)), n.Child(2))
}
