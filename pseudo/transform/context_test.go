package transform

import (
	"testing"

	"github.com/dhamidi/ibpc/pseudo/rules"
)

func TestContextScopes(t *testing.T) {
	ctx := NewContext(rules.Default())
	ctx.Declare("count", "int")

	ctx.Push(MethodScope)
	ctx.Declare("count", "double")
	if got := ctx.Lookup("count").Type; got != "double" {
		t.Errorf("inner lookup type = %q, want double", got)
	}
	ctx.Push(BlockScope)
	if got := ctx.Lookup("count").Type; got != "double" {
		t.Errorf("lookup through block scope = %q, want double", got)
	}
	ctx.Pop()
	ctx.Pop()

	if got := ctx.Lookup("count").Type; got != "int" {
		t.Errorf("outer lookup type = %q, want int", got)
	}
	if ctx.Scope().Kind != GlobalScope {
		t.Errorf("scope kind = %s, want global", ctx.Scope().Kind)
	}

	ctx.Pop()
	if ctx.Scope() == nil || ctx.Scope().Kind != GlobalScope {
		t.Error("popping the global scope must be a no-op")
	}
}

func TestContextLookupFallback(t *testing.T) {
	ctx := NewContext(rules.Default())
	info := ctx.Lookup("firstName")
	if info.Name != "FIRST_NAME" || info.Type != "" {
		t.Errorf("Lookup(firstName) = %+v", info)
	}
	if ctx.IsDeclared("firstName") {
		t.Error("fallback lookup must not declare the name")
	}
}

func TestContextMethods(t *testing.T) {
	ctx := NewContext(rules.Default())
	ctx.Push(ClassScope)
	ctx.DeclareMethod("computeTotal", "double")
	ctx.Push(MethodScope)

	m := ctx.LookupMethod("computeTotal")
	if m.Name != "COMPUTE_TOTAL" || m.ReturnType != "double" {
		t.Errorf("LookupMethod = %+v", m)
	}
	if got := ctx.LookupMethod("helper").Name; got != "HELPER" {
		t.Errorf("fallback method name = %q", got)
	}
}

func TestContextSaveRestore(t *testing.T) {
	ctx := NewContext(rules.Default())
	saved := ctx.save()
	ctx.Push(BlockScope)
	ctx.indent += 3
	ctx.restore(saved)
	if ctx.Indent() != 0 || ctx.Scope().Kind != GlobalScope {
		t.Errorf("restore left indent %d, scope %s", ctx.Indent(), ctx.Scope().Kind)
	}
}

func TestContextField(t *testing.T) {
	ctx := NewContext(rules.Default())
	ctx.Push(ClassScope)
	ctx.Declare("total", "int")
	ctx.Declare("count", "double")
	ctx.Push(MethodScope)
	ctx.Declare("count", "int")
	ctx.Push(BlockScope)

	tests := []struct {
		name     string
		wantType string
		shadowed bool
	}{
		{"total", "int", false},
		{"count", "double", true},
		{"missing", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			info, shadowed := ctx.Field(tt.name)
			if info.Type != tt.wantType || shadowed != tt.shadowed {
				t.Errorf("Field(%s) = %+v, %v; want type %q, shadowed %v", tt.name, info, shadowed, tt.wantType, tt.shadowed)
			}
		})
	}
}
