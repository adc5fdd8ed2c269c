package pseudo

import (
	"io"
	"strings"
)

type Option func(*Generator)

// WithIndent sets how many indent characters one nesting level uses.
func WithIndent(size int) Option {
	return func(g *Generator) {
		if size >= 0 {
			g.indentSize = size
		}
	}
}

func WithIndentChar(ch rune) Option {
	return func(g *Generator) {
		g.indentChar = ch
	}
}

// WithComments controls whether Comment nodes are rendered.
func WithComments(preserve bool) Option {
	return func(g *Generator) {
		g.preserveComments = preserve
	}
}

// Generator renders pseudocode nodes depth-first. It holds only its
// settings, so one Generator can be shared between conversions.
type Generator struct {
	indentSize       int
	indentChar       rune
	preserveComments bool
}

func NewGenerator(opts ...Option) *Generator {
	g := &Generator{
		indentSize:       4,
		indentChar:       ' ',
		preserveComments: true,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Generate renders nodes with the given options.
func Generate(nodes []Node, opts ...Option) string {
	return NewGenerator(opts...).Generate(nodes)
}

// Generate joins the rendered lines with newlines. No trailing newline is
// added and an empty node list renders as the empty string.
func (g *Generator) Generate(nodes []Node) string {
	var lines []string
	g.render(nodes, &lines)
	return strings.Join(lines, "\n")
}

// Encode writes the rendered text followed by a newline when there is any
// output.
func (g *Generator) Encode(w io.Writer, nodes []Node) error {
	text := g.Generate(nodes)
	if text == "" {
		return nil
	}
	_, err := io.WriteString(w, text+"\n")
	return err
}

func (g *Generator) render(nodes []Node, lines *[]string) {
	for _, n := range nodes {
		switch n.Kind {
		case KindComment:
			if !g.preserveComments {
				continue
			}
			*lines = append(*lines, g.indent(n.IndentLevel)+n.Content)
		case KindBlock:
			if n.Content != "" {
				*lines = append(*lines, g.indent(n.IndentLevel)+n.Content)
			}
			g.render(n.Children, lines)
		default:
			*lines = append(*lines, g.indent(n.IndentLevel)+n.Content)
			g.render(n.Children, lines)
		}
	}
}

func (g *Generator) indent(level int) string {
	if level <= 0 || g.indentSize == 0 {
		return ""
	}
	return strings.Repeat(string(g.indentChar), level*g.indentSize)
}

// LineCount returns how many lines Generate produces for nodes.
func LineCount(nodes []Node, preserveComments bool) int {
	count := 0
	for _, n := range nodes {
		switch n.Kind {
		case KindComment:
			if preserveComments {
				count++
			}
		case KindBlock:
			if n.Content != "" {
				count++
			}
			count += LineCount(n.Children, preserveComments)
		default:
			count++
			count += LineCount(n.Children, preserveComments)
		}
	}
	return count
}
