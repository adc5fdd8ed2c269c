// Package transform rewrites a Java syntax tree into pseudocode nodes.
//
// Every statement is transformed in isolation: a construct that cannot be
// expressed records a Conversion diagnostic and produces no output, and its
// siblings are transformed as usual.
package transform

import (
	"errors"
	"fmt"

	"github.com/dhamidi/ibpc/diag"
	"github.com/dhamidi/ibpc/java/parser"
	"github.com/dhamidi/ibpc/pseudo"
	"github.com/dhamidi/ibpc/pseudo/rules"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("ibpc.transform")

type Option func(*Transformer)

func WithRules(table rules.Table) Option {
	return func(t *Transformer) {
		t.rules = table
	}
}

type Transformer struct {
	rules rules.Table
	ctx   *Context
	diags []diag.Diagnostic
}

func New(opts ...Option) *Transformer {
	t := &Transformer{rules: rules.Default()}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Transform converts program with a fresh Transformer.
func Transform(program *parser.Node, opts ...Option) ([]pseudo.Node, []diag.Diagnostic) {
	return New(opts...).Transform(program)
}

// Transform converts program. All state from a previous run is discarded
// first, so a Transformer can be reused.
func (t *Transformer) Transform(program *parser.Node) ([]pseudo.Node, []diag.Diagnostic) {
	t.ctx = NewContext(t.rules)
	t.diags = nil
	if program == nil {
		return nil, nil
	}

	members := []*parser.Node{program}
	if program.Kind == parser.KindProgram {
		members = program.Children
		t.declareMembers(members)
	}
	log.Debugf("transforming %d top-level nodes", len(members))

	nodes := t.statements(members)
	return nodes, t.diags
}

// ruleError is returned by rules for constructs without a pseudocode form.
type ruleError struct {
	node *parser.Node
	msg  string
}

func (e *ruleError) Error() string {
	return e.msg
}

func errorf(n *parser.Node, format string, args ...any) error {
	return &ruleError{node: n, msg: fmt.Sprintf(format, args...)}
}

func (t *Transformer) report(n *parser.Node, err error) {
	var re *ruleError
	if errors.As(err, &re) && re.node != nil {
		n = re.node
	}
	pos := n.Span.Start
	log.Debugf("%s: %s", pos, err)
	t.diags = append(t.diags, diag.New(diag.Conversion, diag.Error, pos.Line, pos.Column, "%s", err.Error()))
}

func (t *Transformer) warn(n *parser.Node, format string, args ...any) {
	pos := n.Span.Start
	t.diags = append(t.diags, diag.New(diag.Conversion, diag.Warning, pos.Line, pos.Column, format, args...))
}

// statements transforms each node at the current indent. A failing node
// leaves the context as it found it.
func (t *Transformer) statements(list []*parser.Node) []pseudo.Node {
	var out []pseudo.Node
	for _, n := range list {
		saved := t.ctx.save()
		nodes, err := t.statement(n)
		if err != nil {
			t.ctx.restore(saved)
			t.report(n, err)
			continue
		}
		out = append(out, nodes...)
	}
	return out
}

// body transforms a loop or branch body one level deeper, in its own block
// scope.
func (t *Transformer) body(n *parser.Node) []pseudo.Node {
	if n == nil {
		return nil
	}
	list := []*parser.Node{n}
	if n.Kind == parser.KindBlock {
		list = n.Children
	}
	return t.nested(list)
}

func (t *Transformer) nested(list []*parser.Node) []pseudo.Node {
	t.ctx.Push(BlockScope)
	t.ctx.indent++
	defer func() {
		t.ctx.indent--
		t.ctx.Pop()
	}()
	return t.statements(list)
}

// declareMembers registers the methods and fields of a class or program
// so references ahead of the declaration resolve.
func (t *Transformer) declareMembers(members []*parser.Node) {
	for _, m := range members {
		switch m.Kind {
		case parser.KindMethodDecl:
			t.ctx.DeclareMethod(m.Child(2).TokenLiteral(), m.Child(1).TypeName())
		case parser.KindVarDecl:
			typ := m.Child(1).TypeName()
			for _, d := range m.ChildrenOfKind(parser.KindDeclarator) {
				t.ctx.Declare(d.Child(0).TokenLiteral(), typ)
			}
		}
	}
}
