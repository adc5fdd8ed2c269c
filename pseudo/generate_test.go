package pseudo

import (
	"bytes"
	"strings"
	"testing"
)

func TestGenerateEmpty(t *testing.T) {
	if got := Generate(nil); got != "" {
		t.Errorf("Generate(nil) = %q, want empty", got)
	}
	if got := Generate([]Node{}); got != "" {
		t.Errorf("Generate([]) = %q, want empty", got)
	}
}

func sampleTree() []Node {
	return []Node{
		Comment(0, "// totals"),
		Statement(0, "SUM = 0"),
		Block(0, "loop I from 0 to 9",
			Statement(1, "SUM = SUM + I"),
			Block(1, "if SUM > 10 then",
				Comment(2, "// big"),
				Statement(2, "output SUM"),
			),
			Statement(1, "end if"),
		),
		Statement(0, "end loop"),
	}
}

func TestGenerateIndentation(t *testing.T) {
	got := Generate(sampleTree(), WithIndent(2))
	want := strings.Join([]string{
		"// totals",
		"SUM = 0",
		"loop I from 0 to 9",
		"  SUM = SUM + I",
		"  if SUM > 10 then",
		"    // big",
		"    output SUM",
		"  end if",
		"end loop",
	}, "\n")
	if got != want {
		t.Errorf("Generate() =\n%s\nwant\n%s", got, want)
	}
}

func TestGenerateIndentChar(t *testing.T) {
	got := Generate([]Node{Block(0, "loop while X", Statement(1, "X = X - 1"))}, WithIndent(1), WithIndentChar('\t'))
	want := "loop while X\n\tX = X - 1"
	if got != want {
		t.Errorf("Generate() = %q, want %q", got, want)
	}
}

func TestGenerateWithoutComments(t *testing.T) {
	got := Generate(sampleTree(), WithComments(false))
	if strings.Contains(got, "//") {
		t.Errorf("comments rendered although disabled:\n%s", got)
	}
}

func TestGenerateNoTrailingNewline(t *testing.T) {
	got := Generate(sampleTree())
	if strings.HasSuffix(got, "\n") {
		t.Errorf("Generate() ends with a newline: %q", got)
	}
}

func TestGenerateBlockWithoutHeader(t *testing.T) {
	got := Generate([]Node{Block(0, "", Statement(0, "A = 1"), Statement(0, "B = 2"))})
	if got != "A = 1\nB = 2" {
		t.Errorf("Generate() = %q", got)
	}
}

func TestLineCountMatchesGenerate(t *testing.T) {
	for _, preserve := range []bool{true, false} {
		text := Generate(sampleTree(), WithComments(preserve))
		lines := len(strings.Split(text, "\n"))
		if n := LineCount(sampleTree(), preserve); n != lines {
			t.Errorf("LineCount(preserve=%v) = %d, Generate produced %d lines", preserve, n, lines)
		}
	}
}

func TestGeneratorIsReusable(t *testing.T) {
	g := NewGenerator(WithIndent(3))
	first := g.Generate(sampleTree())
	g.Generate([]Node{Statement(0, "X = 1")})
	if second := g.Generate(sampleTree()); second != first {
		t.Errorf("second Generate differs:\n%s\nvs\n%s", second, first)
	}
}

func TestEncode(t *testing.T) {
	var buf bytes.Buffer
	if err := NewGenerator().Encode(&buf, []Node{Statement(0, "X = 1")}); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if buf.String() != "X = 1\n" {
		t.Errorf("Encode wrote %q", buf.String())
	}

	buf.Reset()
	if err := NewGenerator().Encode(&buf, nil); err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if buf.Len() != 0 {
		t.Errorf("Encode(nil) wrote %q", buf.String())
	}
}
