// Package rules maps Java lexical conventions to IB pseudocode conventions.
// Everything here is a pure function of its input and the Config.
package rules

import (
	"strings"
)

type Config struct {
	// NotEqual is the rendering of "!=", "≠" or "<>".
	NotEqual string
	// UppercaseBooleans renders true/false as TRUE/FALSE.
	UppercaseBooleans bool
	// FlatElseIf renders else-if chains as "else if ... then" inside a
	// single if block instead of nesting a new if in the else branch.
	FlatElseIf bool
}

func DefaultConfig() Config {
	return Config{
		NotEqual:          "≠",
		UppercaseBooleans: true,
	}
}

type Table struct {
	config Config
}

func New(config Config) Table {
	if config.NotEqual == "" {
		config.NotEqual = DefaultConfig().NotEqual
	}
	return Table{config: config}
}

func Default() Table {
	return New(DefaultConfig())
}

func (t Table) Config() Config {
	return t.config
}

func (t Table) Name(id string) string {
	return Name(id)
}

// BinaryOperator maps a Java binary operator. integerDivision selects div
// for "/" when both operands are known to be integers. Bitwise and shift
// operators have no pseudocode form and report false.
func (t Table) BinaryOperator(op string, integerDivision bool) (string, bool) {
	switch op {
	case "==":
		return "=", true
	case "!=":
		return t.config.NotEqual, true
	case "&&":
		return "AND", true
	case "||":
		return "OR", true
	case "%":
		return "mod", true
	case "/":
		if integerDivision {
			return "div", true
		}
		return "/", true
	case "+", "-", "*", "<", "<=", ">", ">=":
		return op, true
	}
	return "", false
}

// UnaryOperator maps a prefix operator. The result is written directly in
// front of the operand, so NOT carries its own trailing space.
func (t Table) UnaryOperator(op string) (string, bool) {
	switch op {
	case "!":
		return "NOT ", true
	case "-", "+":
		return op, true
	}
	return "", false
}

// CompoundOperator returns the binary operator a compound assignment
// expands to, e.g. "+=" → "+".
func (t Table) CompoundOperator(op string) (string, bool) {
	switch op {
	case "+=", "-=", "*=", "/=", "%=":
		return strings.TrimSuffix(op, "="), true
	}
	return "", false
}

func (t Table) Boolean(value bool) string {
	s := "false"
	if value {
		s = "true"
	}
	if t.config.UppercaseBooleans {
		return strings.ToUpper(s)
	}
	return s
}

func (t Table) Null() string {
	return "null"
}

// Number strips digit separators and type suffixes from a numeric literal.
func (t Table) Number(text string) string {
	text = strings.ReplaceAll(text, "_", "")
	lower := strings.ToLower(text)
	if strings.HasPrefix(lower, "0x") {
		return strings.TrimRight(text, "lL")
	}
	if strings.HasPrefix(lower, "0b") {
		return strings.TrimRight(text, "lL")
	}
	return strings.TrimRight(text, "lLfFdD")
}

// IsOutputCall reports whether receiver.method writes to standard output.
func (t Table) IsOutputCall(receiver, method string) bool {
	if receiver != "System.out" {
		return false
	}
	switch method {
	case "print", "println", "printf":
		return true
	}
	return false
}

// IsInputMethod reports whether a method reads a value from a Scanner. The
// receiver does not matter; any next* method qualifies.
func (t Table) IsInputMethod(method string) bool {
	return strings.HasPrefix(method, "next")
}

// IsIntegerType reports whether values of the Java type take part in
// integer division.
func (t Table) IsIntegerType(typ string) bool {
	switch typ {
	case "int", "long", "short", "byte", "char", "Integer", "Long", "Short", "Byte":
		return true
	}
	return false
}

func (t Table) IsRealType(typ string) bool {
	switch typ {
	case "double", "float", "Double", "Float":
		return true
	}
	return false
}

// NumericResult is the type of an arithmetic operation on two operands, or
// "" when it cannot be known.
func (t Table) NumericResult(left, right string) string {
	switch {
	case left == "String" || right == "String":
		return "String"
	case t.IsRealType(left) || t.IsRealType(right):
		if (t.IsRealType(left) || t.IsIntegerType(left)) && (t.IsRealType(right) || t.IsIntegerType(right)) {
			return "double"
		}
	case t.IsIntegerType(left) && t.IsIntegerType(right):
		if left == "long" || right == "long" {
			return "long"
		}
		return "int"
	}
	return ""
}
