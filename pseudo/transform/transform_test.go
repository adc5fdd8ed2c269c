package transform

import (
	"strings"
	"testing"

	"github.com/dhamidi/ibpc/diag"
	"github.com/dhamidi/ibpc/java/parser"
	"github.com/dhamidi/ibpc/pseudo"
	"github.com/dhamidi/ibpc/pseudo/rules"
)

func parse(t *testing.T, src string) *parser.Node {
	t.Helper()
	tokens, lexDiags := parser.Tokenize([]byte(src))
	if diag.HasErrors(lexDiags) {
		t.Fatalf("lexer errors: %v", lexDiags)
	}
	program, parseDiags := parser.Parse(tokens, parser.WithComments())
	if diag.HasErrors(parseDiags) {
		t.Fatalf("parse errors: %v", parseDiags)
	}
	return program
}

func convert(t *testing.T, src string, opts ...Option) (string, []diag.Diagnostic) {
	t.Helper()
	nodes, diags := Transform(parse(t, src), opts...)
	return pseudo.Generate(nodes, pseudo.WithIndent(2)), diags
}

func lines(l ...string) string {
	return strings.Join(l, "\n")
}

func TestTransform(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"int declaration", "int x = 5;", "X = 5"},
		{"boolean declaration", "boolean flag = true;", "FLAG = TRUE"},
		{"declaration without initializer", "int total;", ""},
		{"multiple declarators", "int a = 1, b;", "A = 1"},
		{"digit boundary naming", "int test123Variable = 1; test123Variable++;",
			lines("TEST123_VARIABLE = 1", "TEST123_VARIABLE = TEST123_VARIABLE + 1")},
		{"counting loop",
			"int sum = 0; for (int i = 0; i < 10; i++) { sum += i; }",
			lines("SUM = 0", "loop I from 0 to 9", "  SUM = SUM + I", "end loop")},
		{"inclusive counting loop",
			"for (int i = 1; i <= n; i++) { x = i; }",
			lines("loop I from 1 to N", "  X = I", "end loop")},
		{"counting loop over array length",
			"for (int i = 0; i < arr.length; i++) { sum = sum + arr[i]; }",
			lines("loop I from 0 to SIZE(ARR) - 1", "  SUM = SUM + ARR[I]", "end loop")},
		{"counting down",
			"for (int i = 10; i > 0; i--) { System.out.println(i); }",
			lines("loop I from 10 down to 1", "  output I", "end loop")},
		{"for loop with other step",
			"for (int i = 0; i < 10; i += 2) { x = i; }",
			lines("I = 0", "loop while I < 10", "  X = I", "  I = I + 2", "end loop")},
		{"endless for loop",
			"for (;;) { break; }",
			lines("loop while TRUE", "  break", "end loop")},
		{"while loop",
			"while (x != 0) { x--; }",
			lines("loop while X ≠ 0", "  X = X - 1", "end loop")},
		{"do while loop",
			"do { x++; } while (x < 5);",
			lines("loop", "  X = X + 1", "end loop while X < 5")},
		{"for each loop",
			"for (int v : values) { total += v; }",
			lines("loop for each V in VALUES", "  TOTAL = TOTAL + V", "end loop")},
		{"if else",
			"if (a == b && !done) { x = 1; } else { x = 2; }",
			lines("if A = B AND NOT DONE then", "  X = 1", "else", "  X = 2", "end if")},
		{"else if nests",
			"if (x > 0) { y = 1; } else if (x < 0) { y = -1; } else { y = 0; }",
			lines(
				"if X > 0 then",
				"  Y = 1",
				"else",
				"  if X < 0 then",
				"    Y = -1",
				"  else",
				"    Y = 0",
				"  end if",
				"end if",
			)},
		{"compound assignment with binary value", "x *= a + b;", "X = X * (A + B)"},
		{"compound assignment", "x -= 1;", "X = X - 1"},
		{"modulo", "r = n % 2;", "R = N mod 2"},
		{"integer and real division",
			"int a = 7; int b = 2; int c = a / b; double d = a / 2.0;",
			lines("A = 7", "B = 2", "C = A div B", "D = A / 2.0")},
		{"output splits string concatenation",
			`String name = "Bob"; System.out.println("Hello " + name + "!");`,
			lines(`NAME = "Bob"`, `output "Hello ", NAME, "!"`)},
		{"output keeps numeric addition",
			"int a = 1; int b = 2; System.out.println(a + b);",
			lines("A = 1", "B = 2", "output A + B")},
		{"empty println", "System.out.println();", `output ""`},
		{"scanner input",
			lines(
				"import java.util.Scanner;",
				"Scanner sc = new Scanner(System.in);",
				"int age = sc.nextInt();",
				"String name = sc.nextLine();",
				"sc.nextLine();",
				"sc.close();",
			),
			lines("input AGE", "input NAME")},
		{"parsed input",
			"Scanner in = new Scanner(System.in); int n = Integer.parseInt(in.nextLine());",
			"input N"},
		{"string methods",
			`String s = "abc"; if (s.equals("x")) { n = s.length(); }`,
			lines(`S = "abc"`, `if S = "x" then`, "  N = LENGTH(S)", "end if")},
		{"negated equals",
			`String s = "abc"; ok = !s.equals(t);`,
			lines(`S = "abc"`, "OK = NOT (S = T)")},
		{"string built-ins",
			`String s = "abc"; u = s.toUpperCase(); c = s.charAt(1); p = s.substring(0, 2);`,
			lines(`S = "abc"`, "U = UPPER(S)", "C = S[1]", "P = SUBSTRING(S, 0, 2)")},
		{"arrays",
			"int[] nums = new int[5]; int[] primes = {2, 3, 5}; nums[0] = primes[1];",
			lines("NUMS = new Array(5)", "PRIMES = [2, 3, 5]", "NUMS[0] = PRIMES[1]")},
		{"array creation with initializer",
			"int[] a = new int[]{1, 2};",
			"A = [1, 2]"},
		{"math functions", "double r = Math.sqrt(x) + Math.PI;", "R = SQRT(X) + PI"},
		{"conditional assignment",
			"max = a > b ? a : b;",
			lines("if A > B then", "  MAX = A", "else", "  MAX = B", "end if")},
		{"comments",
			"// hello\nint x = 1;\n/* a\n   b */",
			lines("// hello", "X = 1", "/* a", "b */")},
		{"methods",
			lines(
				"public class Calc {",
				"    static int square(int n) {",
				"        return n * n;",
				"    }",
				"    static void greet(String name) {",
				`        System.out.println("Hi " + name);`,
				"        return;",
				"    }",
				"    public static void main(String[] args) {",
				"        int result = square(4);",
				`        greet("Ann");`,
				"    }",
				"}",
			),
			lines(
				"FUNCTION SQUARE(N)",
				"  return N * N",
				"end FUNCTION",
				"PROCEDURE GREET(NAME)",
				`  output "Hi ", NAME`,
				"  return",
				"end PROCEDURE",
				"RESULT = SQUARE(4)",
				`GREET("Ann")`,
			)},
		{"this field access",
			"class Counter { int count; void setCount(int v) { this.count = v; } }",
			lines("PROCEDURE SET_COUNT(V)", "  COUNT = V", "end PROCEDURE")},
		{"switch",
			lines(
				"switch (day) {",
				"    case 1:",
				`        name = "Mon";`,
				"        break;",
				"    case 2: case 3:",
				`        name = "Mid";`,
				"        break;",
				"    default:",
				`        name = "Other";`,
				"}",
			),
			lines(
				"if DAY = 1 then",
				`  NAME = "Mon"`,
				"else",
				"  if DAY = 2 OR DAY = 3 then",
				`    NAME = "Mid"`,
				"  else",
				`    NAME = "Other"`,
				"  end if",
				"end if",
			)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, diags := convert(t, tt.input)
			if diag.HasErrors(diags) {
				t.Fatalf("unexpected errors: %v", diags)
			}
			if got != tt.want {
				t.Errorf("got:\n%s\nwant:\n%s", got, tt.want)
			}
		})
	}
}

func TestLowercaseBooleans(t *testing.T) {
	got, _ := convert(t, "boolean flag = true;", WithRules(rules.New(rules.Config{})))
	if got != "FLAG = true" {
		t.Errorf("got %q, want %q", got, "FLAG = true")
	}
}

func TestNotEqualOption(t *testing.T) {
	got, _ := convert(t, "b = a != 1;", WithRules(rules.New(rules.Config{NotEqual: "<>", UppercaseBooleans: true})))
	if got != "B = A <> 1" {
		t.Errorf("got %q", got)
	}
}

func TestFlatElseIf(t *testing.T) {
	table := rules.New(rules.Config{UppercaseBooleans: true, FlatElseIf: true})
	got, _ := convert(t, "if (x > 0) { y = 1; } else if (x < 0) { y = -1; } else { y = 0; }", WithRules(table))
	want := lines(
		"if X > 0 then",
		"  Y = 1",
		"else if X < 0 then",
		"  Y = -1",
		"else",
		"  Y = 0",
		"end if",
	)
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestNestedLoopsCloseOnce(t *testing.T) {
	src := lines(
		"for (int i = 0; i < 3; i++) {",
		"  for (int j = 0; j < 3; j++) {",
		"    for (int k = 0; k < 3; k++) {",
		"      sum += i * j * k;",
		"    }",
		"  }",
		"}",
	)
	got, _ := convert(t, src)
	if n := strings.Count(got, "end loop"); n != 3 {
		t.Errorf("got %d end loop lines, want 3:\n%s", n, got)
	}
	if !strings.Contains(got, "      SUM = SUM + (I * J * K)") {
		t.Errorf("innermost statement not at depth 3:\n%s", got)
	}
}

func TestNestedIfsCloseOnce(t *testing.T) {
	for depth := 1; depth <= 5; depth++ {
		src := strings.Repeat("if (x > 0) { ", depth) + "y = 1;" + strings.Repeat(" }", depth)
		got, _ := convert(t, src)
		if n := strings.Count(got, "end if"); n != depth {
			t.Errorf("depth %d: got %d end if lines:\n%s", depth, n, got)
		}
	}
}

func TestVoidMethodIsProcedure(t *testing.T) {
	got, _ := convert(t, "void reset() { x = 0; }")
	if strings.Contains(got, "FUNCTION") || strings.Contains(got, "return") {
		t.Errorf("void method rendered as function:\n%s", got)
	}
	if !strings.HasPrefix(got, "PROCEDURE RESET()") || !strings.HasSuffix(got, "end PROCEDURE") {
		t.Errorf("got:\n%s", got)
	}
}

func TestNonVoidMethodIsFunction(t *testing.T) {
	got, _ := convert(t, "boolean isEven(int n) { return n % 2 == 0; }")
	want := lines("FUNCTION IS_EVEN(N)", "  return N mod 2 = 0", "end FUNCTION")
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestErrorIsolation(t *testing.T) {
	got, diags := convert(t, "int a = b & c; int d = 4;")
	if got != "D = 4" {
		t.Errorf("got %q, want the sibling declaration only", got)
	}
	errs, _ := diag.Split(diags)
	if len(errs) != 1 {
		t.Fatalf("got %d errors, want 1: %v", len(errs), diags)
	}
	e := errs[0]
	if e.Kind != diag.Conversion || e.Line != 1 || e.Column != 11 {
		t.Errorf("unexpected diagnostic %v", e)
	}
}

func TestErrorInsideBlockKeepsSiblings(t *testing.T) {
	got, diags := convert(t, "while (x > 0) { y = x << 1; x--; }")
	want := lines("loop while X > 0", "  X = X - 1", "end loop")
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
	if !diag.HasErrors(diags) {
		t.Error("expected a conversion error for <<")
	}
}

func TestExpressionWarnings(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"ternary inside output", "System.out.println(a > b ? a : b);", "output A > B ? A : B"},
		{"postfix increment inside expression", "y = x++;", "Y = X"},
		{"prefix increment inside expression", "y = ++x;", "Y = X + 1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, diags := convert(t, tt.input)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			_, warnings := diag.Split(diags)
			if len(warnings) != 1 {
				t.Errorf("got %d warnings, want 1: %v", len(warnings), diags)
			}
		})
	}
}

func TestTransformNil(t *testing.T) {
	nodes, diags := Transform(nil)
	if nodes != nil || diags != nil {
		t.Errorf("Transform(nil) = %v, %v", nodes, diags)
	}
}

func TestTransformerReuse(t *testing.T) {
	tr := New()
	first, _ := tr.Transform(parse(t, "int a = 7; int b = 2; c = a / b;"))
	second, _ := tr.Transform(parse(t, "c = a / b;"))

	if got := pseudo.Generate(first); !strings.Contains(got, "C = A div B") {
		t.Errorf("first run:\n%s", got)
	}
	if got := pseudo.Generate(second); got != "C = A / B" {
		t.Errorf("declarations leaked into second run: %q", got)
	}
}

func TestIndentStepsByOne(t *testing.T) {
	nodes, _ := Transform(parse(t, "while (a) { if (b) { for (int i = 0; i < 2; i++) { x = i; } } }"))
	var walk func(nodes []pseudo.Node, parent int)
	walk = func(nodes []pseudo.Node, parent int) {
		for _, n := range nodes {
			if n.IndentLevel < 0 {
				t.Errorf("negative indent on %q", n.Content)
			}
			if parent >= 0 && n.IndentLevel != parent+1 {
				t.Errorf("%q at level %d under parent level %d", n.Content, n.IndentLevel, parent)
			}
			if n.Kind == pseudo.KindBlock {
				walk(n.Children, n.IndentLevel)
			}
		}
	}
	walk(nodes, -1)
}

func TestStatementKinds(t *testing.T) {
	tests := []struct {
		input string
		want  pseudo.NodeKind
	}{
		{"x = 1;", pseudo.KindStatement},
		{"x++;", pseudo.KindStatement},
		{"System.out.println(x);", pseudo.KindStatement},
		{"printTotal(x);", pseudo.KindExpression},
		{"list.add(x);", pseudo.KindExpression},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			nodes, diags := Transform(parse(t, tt.input))
			if diag.HasErrors(diags) {
				t.Fatalf("diagnostics: %v", diags)
			}
			if len(nodes) != 1 {
				t.Fatalf("got %d nodes, want 1: %+v", len(nodes), nodes)
			}
			if nodes[0].Kind != tt.want {
				t.Errorf("kind = %s, want %s (%q)", nodes[0].Kind, tt.want, nodes[0].Content)
			}
		})
	}
}

func TestThisFieldShadowing(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		line     string
		warnings int
	}{
		{"parameter hides field", "class Q { int v; Q(int v) { this.v = v; } }", "V = V", 1},
		{"distinct names", "class Q { int v; void set(int n) { this.v = n; } }", "V = N", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, diags := convert(t, tt.input)
			if !strings.Contains(got, tt.line) {
				t.Errorf("output missing %q:\n%s", tt.line, got)
			}
			_, warnings := diag.Split(diags)
			if len(warnings) != tt.warnings {
				t.Errorf("got %d warnings, want %d: %v", len(warnings), tt.warnings, diags)
			}
		})
	}
}

func TestForLoopContinueWarning(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		warnings int
	}{
		{"continue skips update", "for (i = 0; i < n; i += 2) { if (x) continue; y = i; }", 1},
		{"no continue", "for (i = 0; i < n; i += 2) { y = i; }", 0},
		{"continue in nested loop", "for (i = 0; i < n; i += 2) { while (x) { continue; } }", 0},
		{"counting loop", "for (int i = 0; i < n; i++) { if (x) continue; }", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, diags := convert(t, tt.input)
			_, warnings := diag.Split(diags)
			if len(warnings) != tt.warnings {
				t.Errorf("got %d warnings, want %d: %v", len(warnings), tt.warnings, diags)
			}
		})
	}
}
