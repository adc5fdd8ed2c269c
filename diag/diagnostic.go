// Package diag defines the diagnostics reported by every conversion stage.
package diag

import (
	"fmt"
	"sort"
)

type Kind int

const (
	Lexical Kind = iota
	Syntax
	Semantic
	Conversion
)

var kindNames = map[Kind]string{
	Lexical:    "lexical",
	Syntax:     "syntax",
	Semantic:   "semantic",
	Conversion: "conversion",
}

func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return "unknown"
}

func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

type Severity int

const (
	Error Severity = iota
	Warning
	Info
)

var severityNames = map[Severity]string{
	Error:   "error",
	Warning: "warning",
	Info:    "info",
}

func (s Severity) String() string {
	if name, ok := severityNames[s]; ok {
		return name
	}
	return "unknown"
}

func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// Diagnostic is a location-qualified message produced by one of the stages.
type Diagnostic struct {
	Kind     Kind     `json:"kind"`
	Severity Severity `json:"severity"`
	Message  string   `json:"message"`
	Line     int      `json:"line"`
	Column   int      `json:"column"`
}

func New(kind Kind, severity Severity, line, column int, format string, args ...any) Diagnostic {
	return Diagnostic{
		Kind:     kind,
		Severity: severity,
		Message:  fmt.Sprintf(format, args...),
		Line:     line,
		Column:   column,
	}
}

func (d Diagnostic) Error() string {
	return fmt.Sprintf("%d:%d: %s %s: %s", d.Line, d.Column, d.Kind, d.Severity, d.Message)
}

func (d Diagnostic) IsError() bool {
	return d.Severity == Error
}

// HasErrors reports whether any diagnostic has Error severity.
func HasErrors(diags []Diagnostic) bool {
	for _, d := range diags {
		if d.IsError() {
			return true
		}
	}
	return false
}

// Split separates errors from everything else. Info diagnostics are
// returned together with warnings.
func Split(diags []Diagnostic) (errs, warnings []Diagnostic) {
	for _, d := range diags {
		if d.IsError() {
			errs = append(errs, d)
		} else {
			warnings = append(warnings, d)
		}
	}
	return errs, warnings
}

// Sort orders diagnostics by source position, keeping the stage order for
// diagnostics reported at the same position.
func Sort(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		if diags[i].Line != diags[j].Line {
			return diags[i].Line < diags[j].Line
		}
		return diags[i].Column < diags[j].Column
	})
}
