package parser

import "strings"

type NodeKind int

const (
	KindProgram NodeKind = iota
	KindComment

	// Declarations
	KindClassDecl
	KindMethodDecl
	KindVarDecl
	KindDeclarator
	KindModifiers
	KindType
	KindArrayDim
	KindParameters
	KindParameter

	// Statements
	KindBlock
	KindEmptyStmt
	KindExprStmt
	KindIfStmt
	KindWhileStmt
	KindDoStmt
	KindForStmt
	KindForInit
	KindForCond
	KindForUpdate
	KindEnhancedForStmt
	KindSwitchStmt
	KindSwitchCase
	KindSwitchLabel
	KindBreakStmt
	KindContinueStmt
	KindReturnStmt

	// Expressions
	KindAssignExpr
	KindTernaryExpr
	KindBinaryExpr
	KindUnaryExpr
	KindPostfixExpr
	KindCastExpr
	KindCallExpr
	KindArguments
	KindFieldAccess
	KindArrayAccess
	KindNewExpr
	KindNewArrayExpr
	KindArrayInit
	KindParenExpr
	KindLiteral
	KindIdentifier
	KindOperator
	KindThis
)

var nodeKindNames = map[NodeKind]string{
	KindProgram:         "Program",
	KindComment:         "Comment",
	KindClassDecl:       "ClassDecl",
	KindMethodDecl:      "MethodDecl",
	KindVarDecl:         "VarDecl",
	KindDeclarator:      "Declarator",
	KindModifiers:       "Modifiers",
	KindType:            "Type",
	KindArrayDim:        "ArrayDim",
	KindParameters:      "Parameters",
	KindParameter:       "Parameter",
	KindBlock:           "Block",
	KindEmptyStmt:       "EmptyStmt",
	KindExprStmt:        "ExprStmt",
	KindIfStmt:          "IfStmt",
	KindWhileStmt:       "WhileStmt",
	KindDoStmt:          "DoStmt",
	KindForStmt:         "ForStmt",
	KindForInit:         "ForInit",
	KindForCond:         "ForCond",
	KindForUpdate:       "ForUpdate",
	KindEnhancedForStmt: "EnhancedForStmt",
	KindSwitchStmt:      "SwitchStmt",
	KindSwitchCase:      "SwitchCase",
	KindSwitchLabel:     "SwitchLabel",
	KindBreakStmt:       "BreakStmt",
	KindContinueStmt:    "ContinueStmt",
	KindReturnStmt:      "ReturnStmt",
	KindAssignExpr:      "AssignExpr",
	KindTernaryExpr:     "TernaryExpr",
	KindBinaryExpr:      "BinaryExpr",
	KindUnaryExpr:       "UnaryExpr",
	KindPostfixExpr:     "PostfixExpr",
	KindCastExpr:        "CastExpr",
	KindCallExpr:        "CallExpr",
	KindArguments:       "Arguments",
	KindFieldAccess:     "FieldAccess",
	KindArrayAccess:     "ArrayAccess",
	KindNewExpr:         "NewExpr",
	KindNewArrayExpr:    "NewArrayExpr",
	KindArrayInit:       "ArrayInit",
	KindParenExpr:       "ParenExpr",
	KindLiteral:         "Literal",
	KindIdentifier:      "Identifier",
	KindOperator:        "Operator",
	KindThis:            "This",
}

func (k NodeKind) String() string {
	if name, ok := nodeKindNames[k]; ok {
		return name
	}
	return "Unknown"
}

// Node is one element of the syntax tree. Every kind has a fixed child
// layout; see the parse functions for the order.
type Node struct {
	Kind     NodeKind
	Span     Span
	Children []*Node
	Token    *Token
}

func (n *Node) AddChild(child *Node) {
	if child != nil {
		n.Children = append(n.Children, child)
	}
}

// Child returns the i-th child or nil when the node has fewer children.
func (n *Node) Child(i int) *Node {
	if n == nil || i < 0 || i >= len(n.Children) {
		return nil
	}
	return n.Children[i]
}

func (n *Node) FirstChildOfKind(kind NodeKind) *Node {
	for _, child := range n.Children {
		if child.Kind == kind {
			return child
		}
	}
	return nil
}

func (n *Node) ChildrenOfKind(kind NodeKind) []*Node {
	var result []*Node
	for _, child := range n.Children {
		if child.Kind == kind {
			result = append(result, child)
		}
	}
	return result
}

func (n *Node) TokenLiteral() string {
	if n != nil && n.Token != nil {
		return n.Token.Literal
	}
	return ""
}

// HasModifier reports whether a declaration's Modifiers child contains the
// given keyword.
func (n *Node) HasModifier(kind TokenKind) bool {
	mods := n.FirstChildOfKind(KindModifiers)
	if mods == nil {
		return false
	}
	for _, m := range mods.Children {
		if m.Token != nil && m.Token.Kind == kind {
			return true
		}
	}
	return false
}

// TypeName renders a Type node back to Java notation, e.g. "int[]".
func (n *Node) TypeName() string {
	if n == nil || n.Kind != KindType {
		return ""
	}
	return n.TokenLiteral() + strings.Repeat("[]", len(n.ChildrenOfKind(KindArrayDim)))
}

func (n *Node) String() string {
	var sb strings.Builder
	n.writeIndent(&sb, 0, false)
	return sb.String()
}

func (n *Node) StringWithPositions() string {
	var sb strings.Builder
	n.writeIndent(&sb, 0, true)
	return sb.String()
}

func (n *Node) writeIndent(sb *strings.Builder, indent int, showPositions bool) {
	sb.WriteString(strings.Repeat("  ", indent))
	sb.WriteString(n.Kind.String())
	if showPositions {
		sb.WriteString(" [" + n.Span.Start.String() + "-" + n.Span.End.String() + "]")
	}
	if n.Token != nil {
		sb.WriteString(" " + n.Token.Literal)
	}
	sb.WriteString("\n")

	for _, child := range n.Children {
		child.writeIndent(sb, indent+1, showPositions)
	}
}
