package parser

import (
	"strings"
	"testing"

	"github.com/dhamidi/ibpc/diag"
)

func parseSource(t *testing.T, src string, opts ...Option) (*Node, []diag.Diagnostic) {
	t.Helper()
	tokens, lexDiags := Tokenize([]byte(src))
	if len(lexDiags) != 0 {
		t.Fatalf("lexical diagnostics for %q: %v", src, lexDiags)
	}
	return Parse(tokens, opts...)
}

func mustParse(t *testing.T, src string, opts ...Option) *Node {
	t.Helper()
	program, diags := parseSource(t, src, opts...)
	if len(diags) != 0 {
		t.Fatalf("Parse(%q) diagnostics: %v", src, diags)
	}
	if program == nil || program.Kind != KindProgram {
		t.Fatalf("Parse(%q) = %v, want a Program", src, program)
	}
	return program
}

// childKinds lists the kinds of n's children, space separated.
func childKinds(n *Node) string {
	var parts []string
	for _, c := range n.Children {
		parts = append(parts, c.Kind.String())
	}
	return strings.Join(parts, " ")
}

func TestParseShapes(t *testing.T) {
	tests := []struct {
		name  string
		input string
		// path of child indexes from the Program to the inspected node
		path []int
		kind NodeKind
		want string
	}{
		{"var decl", "int x = 5;", []int{0}, KindVarDecl, "Modifiers Type Declarator"},
		{"multiple declarators", "int a, b = 2;", []int{0}, KindVarDecl, "Modifiers Type Declarator Declarator"},
		{"assignment", "x = 1;", []int{0, 0}, KindAssignExpr, "Identifier Operator Literal"},
		{"compound assignment", "x += 1;", []int{0, 0}, KindAssignExpr, "Identifier Operator Literal"},
		{"top-level method", "static int twice(int n) { return n * 2; }", []int{0}, KindMethodDecl, "Modifiers Type Identifier Parameters Block"},
		{"class", "public class Main { int count; void run() {} }", []int{0}, KindClassDecl, "Modifiers Identifier VarDecl MethodDecl"},
		{"constructor", "class P { int x; P(int x) { this.x = x; } }", []int{0, 3}, KindMethodDecl, "Modifiers Type Identifier Parameters Block"},
		{"counting for", "for (int i = 0; i < 10; i++) { sum += i; }", []int{0}, KindForStmt, "ForInit ForCond ForUpdate Block"},
		{"empty for", "for (;;) {}", []int{0}, KindForStmt, "ForInit ForCond ForUpdate Block"},
		{"for with expression init", "for (i = 0, j = 9; i < j; i++, j--) {}", []int{0, 2}, KindForUpdate, "PostfixExpr PostfixExpr"},
		{"enhanced for", "for (int n : nums) { total += n; }", []int{0}, KindEnhancedForStmt, "Type Identifier Identifier Block"},
		{"while", "while (x > 0) x--;", []int{0}, KindWhileStmt, "BinaryExpr ExprStmt"},
		{"do while", "do { i++; } while (i < 3);", []int{0}, KindDoStmt, "Block BinaryExpr"},
		{"if else if", "if (a) x = 1; else if (b) x = 2; else x = 3;", []int{0}, KindIfStmt, "Identifier ExprStmt IfStmt"},
		{"return", "int f() { return; }", []int{0, 4, 0}, KindReturnStmt, ""},
		{"ternary", "m = a > b ? a : b;", []int{0, 0, 2}, KindTernaryExpr, "BinaryExpr Identifier Identifier"},
		{"primitive cast", "y = (int) x;", []int{0, 0, 2}, KindCastExpr, "Type Identifier"},
		{"parenthesized name", "y = (a) + b;", []int{0, 0, 2, 0}, KindParenExpr, "Identifier"},
		{"method call chain", `System.out.println("hi");`, []int{0, 0}, KindCallExpr, "FieldAccess Arguments"},
		{"bare call", "greet(name, 2);", []int{0, 0, 1}, KindArguments, "Identifier Literal"},
		{"array access", "v = a[i + 1];", []int{0, 0, 2}, KindArrayAccess, "Identifier BinaryExpr"},
		{"new array", "int[] a = new int[5];", []int{0, 2, 1}, KindNewArrayExpr, "Type Literal"},
		{"new array with initializer", "int[] a = new int[]{1, 2};", []int{0, 2, 1}, KindNewArrayExpr, "Type ArrayInit"},
		{"array initializer", "int[] a = {1, 2, 3};", []int{0, 2, 1}, KindArrayInit, "Literal Literal Literal"},
		{"two dimensional array", "int[][] g = new int[3][4];", []int{0, 2, 1}, KindNewArrayExpr, "Type Literal Literal"},
		{"new object", "Scanner sc = new Scanner(System.in);", []int{0, 2, 1}, KindNewExpr, "Type Arguments"},
		{"generic type", "ArrayList<Integer> list = new ArrayList<>();", []int{0, 2, 1}, KindNewExpr, "Type Arguments"},
		{"unary not", "b = !done;", []int{0, 0, 2}, KindUnaryExpr, "Operator Identifier"},
		{"imports skipped", "import java.util.Scanner;\nint x = 1;", []int{0}, KindVarDecl, "Modifiers Type Declarator"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			node := mustParse(t, tt.input)
			for _, i := range tt.path {
				next := node.Child(i)
				if next == nil {
					t.Fatalf("no child %d in:\n%s", i, node)
				}
				node = next
			}
			if node.Kind != tt.kind {
				t.Fatalf("node kind = %s, want %s\n%s", node.Kind, tt.kind, node)
			}
			if got := childKinds(node); got != tt.want {
				t.Errorf("children = %q, want %q\n%s", got, tt.want, node)
			}
		})
	}
}

func TestParseSingleStatement(t *testing.T) {
	program := mustParse(t, "int x = 5;")
	if len(program.Children) != 1 {
		t.Fatalf("got %d top-level nodes, want 1", len(program.Children))
	}
	decl := program.Children[0]
	if decl.Kind != KindVarDecl || decl.Span.Start.Line != 1 {
		t.Errorf("got %s at %s, want a VarDecl on line 1", decl.Kind, decl.Span.Start)
	}
	declarator := decl.FirstChildOfKind(KindDeclarator)
	if declarator.Child(0).TokenLiteral() != "x" || declarator.Child(1).TokenLiteral() != "5" {
		t.Errorf("declarator =\n%s", declarator)
	}
}

func TestParsePrecedence(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		// rendered with explicit grouping of every BinaryExpr
		{"r = a + b * c;", "(a + (b * c))"},
		{"r = a - b - c;", "((a - b) - c)"},
		{"r = a * (b + c);", "(a * (b + c))"},
		{"r = a < b && c != d || e;", "(((a < b) && (c != d)) || e)"},
		{"r = a == b == c;", "((a == b) == c)"},
		{"r = x % 2 == 0;", "((x % 2) == 0)"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			program := mustParse(t, tt.input)
			value := program.Child(0).Child(0).Child(2)
			if got := grouped(value); got != tt.want {
				t.Errorf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func grouped(n *Node) string {
	switch n.Kind {
	case KindBinaryExpr:
		return "(" + grouped(n.Child(0)) + " " + n.Child(1).TokenLiteral() + " " + grouped(n.Child(2)) + ")"
	case KindParenExpr:
		return grouped(n.Child(0))
	}
	return n.TokenLiteral()
}

func TestParseSwitchLabels(t *testing.T) {
	t.Run("colon", func(t *testing.T) {
		program := mustParse(t, "switch (d) { case 1: x = 1; break; case 2: case 3: x = 2; break; default: x = 0; }")
		sw := program.Child(0)
		if got := childKinds(sw); got != "Identifier SwitchCase SwitchCase SwitchCase" {
			t.Fatalf("switch children = %q", got)
		}
		if got := childKinds(sw.Child(2)); got != "SwitchLabel SwitchLabel ExprStmt BreakStmt" {
			t.Errorf("grouped case children = %q", got)
		}
		defaultLabel := sw.Child(3).Child(0)
		if len(defaultLabel.Children) != 0 || defaultLabel.TokenLiteral() != ":" {
			t.Errorf("default label = %s", defaultLabel)
		}
	})

	t.Run("arrow", func(t *testing.T) {
		program := mustParse(t, "switch (d) { case 1, 7 -> x = 1; default -> x = 0; }")
		sw := program.Child(0)
		if len(sw.ChildrenOfKind(KindSwitchCase)) != 2 {
			t.Fatalf("switch =\n%s", sw)
		}
		label := sw.Child(1).Child(0)
		if label.TokenLiteral() != "->" || len(label.Children) != 2 {
			t.Errorf("arrow label = %s", label)
		}
	})
}

func TestParseArrayTypes(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"int[] a;", "int[]"},
		{"int a[];", "int[]"},
		{"String[][] grid;", "String[][]"},
		{"double[] d = new double[3];", "double[]"},
	}
	for _, tt := range tests {
		program := mustParse(t, tt.input)
		if got := program.Child(0).FirstChildOfKind(KindType).TypeName(); got != tt.want {
			t.Errorf("%s: type = %q, want %q", tt.input, got, tt.want)
		}
	}

	program := mustParse(t, "int[] a = new int[5];")
	newArray := program.Child(0).Child(2).Child(1)
	if got := newArray.Child(0).TypeName(); got != "int[]" {
		t.Errorf("new array type = %q, want int[]", got)
	}
}

func TestParseComments(t *testing.T) {
	src := "// header\nint x = 1;\nwhile (x < 3) {\n  /* body */\n  x++;\n}"

	withComments := mustParse(t, src, WithComments())
	if got := childKinds(withComments); got != "Comment VarDecl WhileStmt" {
		t.Errorf("with comments = %q", got)
	}
	body := withComments.Child(2).Child(1)
	if got := childKinds(body); got != "Comment ExprStmt" {
		t.Errorf("loop body = %q", got)
	}

	without := mustParse(t, src)
	if got := childKinds(without); got != "VarDecl WhileStmt" {
		t.Errorf("without comments = %q", got)
	}
}

func TestParseTrailingComment(t *testing.T) {
	program := mustParse(t, "int x = 1;\n// done", WithComments())
	if got := childKinds(program); got != "VarDecl Comment" {
		t.Errorf("children = %q", got)
	}
}

func TestParseEmpty(t *testing.T) {
	for _, src := range []string{"", "   \n", "// only a comment", ";;"} {
		program, diags := parseSource(t, src)
		if len(diags) != 0 {
			t.Errorf("Parse(%q) diagnostics: %v", src, diags)
		}
		if program == nil || len(program.Children) != 0 {
			t.Errorf("Parse(%q) = %v, want an empty Program", src, program)
		}
	}
	if program, _ := Parse(nil); program != nil {
		t.Errorf("Parse(nil) = %v, want nil", program)
	}
}

func TestParseRecovery(t *testing.T) {
	tests := []struct {
		name   string
		input  string
		line   int
		column int
		want   string
	}{
		{"top level", "int a = ;\nint b = 2;", 1, 9, "VarDecl"},
		{"before a statement keyword", "x = = 1\nwhile (x) {}", 1, 5, "WhileStmt"},
		{"unsupported statement", "throw x;\nint y = 1;", 1, 1, "VarDecl"},
		{"missing closing brace", "void f() { x = 1;", 1, 18, "MethodDecl"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			program, diags := parseSource(t, tt.input)
			if len(diags) != 1 {
				t.Fatalf("got %d diagnostics, want 1: %v", len(diags), diags)
			}
			d := diags[0]
			if d.Kind != diag.Syntax || d.Severity != diag.Error {
				t.Errorf("diagnostic = %v, want a syntax error", d)
			}
			if d.Line != tt.line || d.Column != tt.column {
				t.Errorf("diagnostic at %d:%d, want %d:%d (%s)", d.Line, d.Column, tt.line, tt.column, d.Message)
			}
			if got := childKinds(program); got != tt.want {
				t.Errorf("recovered children = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestParseRecoveryInsideBlock(t *testing.T) {
	program, diags := parseSource(t, "void f() {\n  int a = ;\n  int b = 2;\n}\nint c = 3;")
	if len(diags) != 1 || diags[0].Line != 2 {
		t.Fatalf("diagnostics = %v, want one on line 2", diags)
	}
	if got := childKinds(program); got != "MethodDecl VarDecl" {
		t.Errorf("top level = %q", got)
	}
	body := program.Child(0).Child(4)
	if got := childKinds(body); got != "VarDecl" {
		t.Errorf("method body = %q, want the declaration after the error", got)
	}
}

func TestParseRecoveryDropsFailedRegion(t *testing.T) {
	inputs := []string{
		"int a = ;\nint b = 2;",
		"x = = 1\nwhile (x) {}",
		"void f() {\n  int a = ;\n  int b = 2;\n}",
		"switch (d) { case 1: x = ; break; }",
	}

	var walk func(t *testing.T, n *Node)
	walk = func(t *testing.T, n *Node) {
		if n.Kind.String() == "Unknown" {
			t.Errorf("unnamed node kind %d at %s", n.Kind, n.Span.Start)
		}
		for _, c := range n.Children {
			if c == nil {
				t.Errorf("nil child under %s", n.Kind)
				continue
			}
			walk(t, c)
		}
	}

	for _, input := range inputs {
		t.Run(input, func(t *testing.T) {
			program, diags := parseSource(t, input)
			if len(diags) == 0 {
				t.Fatal("expected a syntax error")
			}
			walk(t, program)
		})
	}
}

func TestParseErrorMessages(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"int x = 5", "expected ';', found end of input"},
		{"x = ;", `expected expression, found ";"`},
		{"if x > 0) {}", `expected '(', found "x"`},
		{"1 = x;", "invalid assignment target"},
		{"while (true) { break outer; }", "labeled break is not supported"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			_, diags := parseSource(t, tt.input)
			if len(diags) == 0 {
				t.Fatal("expected a diagnostic")
			}
			if diags[0].Message != tt.want {
				t.Errorf("message = %q, want %q", diags[0].Message, tt.want)
			}
		})
	}
}

func TestParserReset(t *testing.T) {
	bad, _ := Tokenize([]byte("int a = ;"))
	good, _ := Tokenize([]byte("int b = 2;"))

	p := New(bad)
	p.Parse()
	if len(p.Diagnostics()) != 1 {
		t.Fatalf("first parse diagnostics = %v", p.Diagnostics())
	}

	p.Reset(good)
	program := p.Parse()
	if len(p.Diagnostics()) != 0 {
		t.Errorf("diagnostics survived Reset: %v", p.Diagnostics())
	}
	if got := childKinds(program); got != "VarDecl" {
		t.Errorf("children after Reset = %q", got)
	}
}

func TestParseWithoutEOFToken(t *testing.T) {
	tokens, _ := Tokenize([]byte("x = 1;"))
	program, diags := Parse(tokens[:len(tokens)-1])
	if len(diags) != 0 || childKinds(program) != "ExprStmt" {
		t.Errorf("program = %v, diagnostics = %v", program, diags)
	}
}
