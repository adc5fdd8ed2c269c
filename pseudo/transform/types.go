package transform

import (
	"strings"

	"github.com/dhamidi/ibpc/java/parser"
)

// typeOf infers the Java type of an expression from literals, declarations,
// casts and known library calls. It returns "" when the type is unknown.
func (t *Transformer) typeOf(n *parser.Node) string {
	if n == nil {
		return ""
	}

	switch n.Kind {
	case parser.KindLiteral:
		return literalType(n.Token)
	case parser.KindIdentifier:
		return t.ctx.Lookup(n.TokenLiteral()).Type
	case parser.KindParenExpr:
		return t.typeOf(n.Child(0))
	case parser.KindCastExpr:
		return n.Child(0).TypeName()
	case parser.KindAssignExpr:
		return t.typeOf(n.Child(0))
	case parser.KindPostfixExpr:
		return t.typeOf(n.Child(0))
	case parser.KindUnaryExpr:
		if n.Child(0).TokenLiteral() == "!" {
			return "boolean"
		}
		return t.typeOf(n.Child(1))
	case parser.KindBinaryExpr:
		switch n.Child(1).TokenLiteral() {
		case "==", "!=", "<", "<=", ">", ">=", "&&", "||":
			return "boolean"
		}
		return t.rules.NumericResult(t.typeOf(n.Child(0)), t.typeOf(n.Child(2)))
	case parser.KindTernaryExpr:
		return t.typeOf(n.Child(1))
	case parser.KindArrayAccess:
		return strings.TrimSuffix(t.typeOf(n.Child(0)), "[]")
	case parser.KindFieldAccess:
		if n.Child(0).Kind == parser.KindThis {
			return t.ctx.Lookup(n.Child(1).TokenLiteral()).Type
		}
		if n.Child(1).TokenLiteral() == "length" {
			return "int"
		}
	case parser.KindNewExpr:
		return n.Child(0).TypeName()
	case parser.KindNewArrayExpr:
		return n.Child(0).TypeName()
	case parser.KindCallExpr:
		return t.callType(n)
	}
	return ""
}

func literalType(tok *parser.Token) string {
	if tok == nil {
		return ""
	}
	switch tok.Kind {
	case parser.TokenIntLiteral:
		if strings.HasSuffix(tok.Literal, "L") || strings.HasSuffix(tok.Literal, "l") {
			return "long"
		}
		return "int"
	case parser.TokenFloatLiteral:
		if strings.HasSuffix(tok.Literal, "f") || strings.HasSuffix(tok.Literal, "F") {
			return "float"
		}
		return "double"
	case parser.TokenCharLiteral:
		return "char"
	case parser.TokenStringLiteral:
		return "String"
	case parser.TokenTrue, parser.TokenFalse:
		return "boolean"
	}
	return ""
}

var callTypes = map[string]string{
	"Math.sqrt":          "double",
	"Math.pow":           "double",
	"Math.floor":         "double",
	"Math.ceil":          "double",
	"Math.random":        "double",
	"Math.round":         "long",
	"Integer.parseInt":   "int",
	"Long.parseLong":     "long",
	"Double.parseDouble": "double",
	"String.valueOf":     "String",
}

var methodTypes = map[string]string{
	"length":           "int",
	"indexOf":          "int",
	"compareTo":        "int",
	"charAt":           "char",
	"substring":        "String",
	"toUpperCase":      "String",
	"toLowerCase":      "String",
	"trim":             "String",
	"equals":           "boolean",
	"equalsIgnoreCase": "boolean",
	"contains":         "boolean",
	"nextInt":          "int",
	"nextLong":         "long",
	"nextDouble":       "double",
	"nextFloat":        "float",
	"nextBoolean":      "boolean",
	"nextLine":         "String",
	"next":             "String",
}

func (t *Transformer) callType(n *parser.Node) string {
	recv, method := callee(n)
	if recv == nil || recv.Kind == parser.KindThis {
		return t.ctx.LookupMethod(method).ReturnType
	}
	if recv.Kind == parser.KindIdentifier && !t.ctx.IsDeclared(recv.TokenLiteral()) {
		class := recv.TokenLiteral()
		if typ, ok := callTypes[class+"."+method]; ok {
			return typ
		}
		if class == "Math" {
			switch method {
			case "abs", "max", "min":
				var typ string
				for i, arg := range n.Child(1).Children {
					if i == 0 {
						typ = t.typeOf(arg)
						continue
					}
					typ = t.rules.NumericResult(typ, t.typeOf(arg))
				}
				return typ
			}
		}
	}
	return methodTypes[method]
}

// isIntegerDivision reports whether both operands of a division are known
// to be integers.
func (t *Transformer) isIntegerDivision(left, right *parser.Node) bool {
	return t.rules.IsIntegerType(t.typeOf(left)) && t.rules.IsIntegerType(t.typeOf(right))
}
