package rules

import (
	"fmt"
	"strings"
)

// Builtin describes how a Java library call is written in pseudocode.
type Builtin struct {
	// MinArgs and MaxArgs bound the accepted argument count.
	MinArgs, MaxArgs int
	// Operator is set when the rendering is an operator expression that
	// needs parentheses when nested inside another operator.
	Operator bool
	render   func(receiver string, args []string) string
}

// Render writes the call. ok is false when the argument count does not
// match, in which case the caller falls back to a plain method call.
func (b Builtin) Render(receiver string, args []string) (text string, ok bool) {
	if len(args) < b.MinArgs || len(args) > b.MaxArgs {
		return "", false
	}
	return b.render(receiver, args), true
}

func function(name string) func(string, []string) string {
	return func(receiver string, args []string) string {
		return fmt.Sprintf("%s(%s)", name, strings.Join(append([]string{receiver}, args...), ", "))
	}
}

var stringMethods = map[string]Builtin{
	"equals": {MinArgs: 1, MaxArgs: 1, Operator: true, render: func(r string, a []string) string {
		return r + " = " + a[0]
	}},
	"equalsIgnoreCase": {MinArgs: 1, MaxArgs: 1, Operator: true, render: func(r string, a []string) string {
		return "UPPER(" + r + ") = UPPER(" + a[0] + ")"
	}},
	"length":      {render: function("LENGTH")},
	"substring":   {MinArgs: 1, MaxArgs: 2, render: function("SUBSTRING")},
	"charAt":      {MinArgs: 1, MaxArgs: 1, render: func(r string, a []string) string { return r + "[" + a[0] + "]" }},
	"toUpperCase": {render: function("UPPER")},
	"toLowerCase": {render: function("LOWER")},
	"indexOf":     {MinArgs: 1, MaxArgs: 1, render: function("POSITION")},
	"contains":    {MinArgs: 1, MaxArgs: 1, render: function("CONTAINS")},
	"trim":        {render: function("TRIM")},
}

// StringMethod returns the pseudocode built-in for a String method.
func (t Table) StringMethod(method string) (Builtin, bool) {
	b, ok := stringMethods[method]
	return b, ok
}

var staticFunctions = map[string]string{
	"Math.sqrt":          "SQRT",
	"Math.abs":           "ABS",
	"Math.pow":           "POWER",
	"Math.max":           "MAX",
	"Math.min":           "MIN",
	"Math.round":         "ROUND",
	"Math.floor":         "FLOOR",
	"Math.ceil":          "CEILING",
	"Math.random":        "RANDOM",
	"Integer.parseInt":   "INT",
	"Double.parseDouble": "REAL",
	"String.valueOf":     "STRING",
}

// StaticFunction maps a static library call such as Math.sqrt to a
// pseudocode function name.
func (t Table) StaticFunction(class, method string) (string, bool) {
	name, ok := staticFunctions[class+"."+method]
	return name, ok
}

var staticConstants = map[string]string{
	"Math.PI":           "PI",
	"Math.E":            "E",
	"Integer.MAX_VALUE": "MAX_INT",
	"Integer.MIN_VALUE": "MIN_INT",
}

func (t Table) StaticConstant(class, field string) (string, bool) {
	name, ok := staticConstants[class+"."+field]
	return name, ok
}
