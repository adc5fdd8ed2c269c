package transform

import "github.com/dhamidi/ibpc/pseudo/rules"

type ScopeKind int

const (
	GlobalScope ScopeKind = iota
	ClassScope
	MethodScope
	BlockScope
)

var scopeKindNames = map[ScopeKind]string{
	GlobalScope: "global",
	ClassScope:  "class",
	MethodScope: "method",
	BlockScope:  "block",
}

func (k ScopeKind) String() string {
	if name, ok := scopeKindNames[k]; ok {
		return name
	}
	return "unknown"
}

// VariableInfo records the converted name of a declared variable together
// with its Java type, which drives div and string handling.
type VariableInfo struct {
	Original string
	Name     string
	Type     string
}

type MethodInfo struct {
	Original   string
	Name       string
	ReturnType string
}

type Scope struct {
	Kind      ScopeKind
	Parent    *Scope
	variables map[string]*VariableInfo
	methods   map[string]*MethodInfo
}

func newScope(kind ScopeKind, parent *Scope) *Scope {
	return &Scope{
		Kind:      kind,
		Parent:    parent,
		variables: make(map[string]*VariableInfo),
		methods:   make(map[string]*MethodInfo),
	}
}

// Context is the mutable state of one transformation run: the scope chain
// and the current indent level.
type Context struct {
	rules  rules.Table
	scope  *Scope
	indent int
}

func NewContext(table rules.Table) *Context {
	return &Context{
		rules: table,
		scope: newScope(GlobalScope, nil),
	}
}

func (c *Context) Scope() *Scope {
	return c.scope
}

func (c *Context) Indent() int {
	return c.indent
}

func (c *Context) Push(kind ScopeKind) {
	c.scope = newScope(kind, c.scope)
}

// Pop leaves the innermost scope. The global scope is never popped.
func (c *Context) Pop() {
	if c.scope.Parent != nil {
		c.scope = c.scope.Parent
	}
}

// Declare records a variable in the innermost scope, shadowing any outer
// declaration of the same name.
func (c *Context) Declare(name, typ string) *VariableInfo {
	info := &VariableInfo{Original: name, Name: c.rules.Name(name), Type: typ}
	c.scope.variables[name] = info
	return info
}

// Lookup walks the scope chain outward. An unknown name gets a freshly
// converted name and an empty type.
func (c *Context) Lookup(name string) *VariableInfo {
	for s := c.scope; s != nil; s = s.Parent {
		if info, ok := s.variables[name]; ok {
			return info
		}
	}
	return &VariableInfo{Original: name, Name: c.rules.Name(name)}
}

func (c *Context) IsDeclared(name string) bool {
	for s := c.scope; s != nil; s = s.Parent {
		if _, ok := s.variables[name]; ok {
			return true
		}
	}
	return false
}

// Field resolves name as a member of the innermost class, as in this.name.
// shadowed reports whether a local variable or parameter of the same name
// sits between the current scope and that class.
func (c *Context) Field(name string) (info *VariableInfo, shadowed bool) {
	for s := c.scope; s != nil; s = s.Parent {
		v, ok := s.variables[name]
		if s.Kind == ClassScope {
			if ok {
				return v, shadowed
			}
			break
		}
		if ok {
			shadowed = true
		}
	}
	return &VariableInfo{Original: name, Name: c.rules.Name(name)}, shadowed
}

func (c *Context) DeclareMethod(name, returnType string) *MethodInfo {
	info := &MethodInfo{Original: name, Name: c.rules.Name(name), ReturnType: returnType}
	c.scope.methods[name] = info
	return info
}

func (c *Context) LookupMethod(name string) *MethodInfo {
	for s := c.scope; s != nil; s = s.Parent {
		if info, ok := s.methods[name]; ok {
			return info
		}
	}
	return &MethodInfo{Original: name, Name: c.rules.Name(name)}
}

type snapshot struct {
	scope  *Scope
	indent int
}

func (c *Context) save() snapshot {
	return snapshot{scope: c.scope, indent: c.indent}
}

func (c *Context) restore(s snapshot) {
	c.scope = s.scope
	c.indent = s.indent
}
