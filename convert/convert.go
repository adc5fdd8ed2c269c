// Package convert runs the whole pipeline: lexer, parser, transformer and
// generator. Each call builds its own stages, so Convert is safe to call
// from several goroutines at once.
package convert

import (
	"strings"

	"github.com/dhamidi/ibpc/diag"
	"github.com/dhamidi/ibpc/java/parser"
	"github.com/dhamidi/ibpc/pseudo"
	"github.com/dhamidi/ibpc/pseudo/rules"
	"github.com/dhamidi/ibpc/pseudo/transform"
	"github.com/tliron/commonlog"
)

var log = commonlog.GetLogger("ibpc.convert")

type Options struct {
	PreserveComments bool
	IndentSize       int
	// IndentChar defaults to a space when zero.
	IndentChar rune
	Rules      rules.Config
}

func DefaultOptions() Options {
	return Options{
		PreserveComments: true,
		IndentSize:       4,
		IndentChar:       ' ',
		Rules:            rules.DefaultConfig(),
	}
}

type Metadata struct {
	OriginalLines  int `json:"originalLines"`
	ConvertedLines int `json:"convertedLines"`
}

type Result struct {
	Pseudocode string            `json:"pseudocode"`
	Success    bool              `json:"success"`
	Errors     []diag.Diagnostic `json:"errors"`
	Warnings   []diag.Diagnostic `json:"warnings"`
	Metadata   Metadata          `json:"metadata"`
}

// Diagnostics returns errors and warnings together, ordered by position.
func (r Result) Diagnostics() []diag.Diagnostic {
	all := make([]diag.Diagnostic, 0, len(r.Errors)+len(r.Warnings))
	all = append(all, r.Errors...)
	all = append(all, r.Warnings...)
	diag.Sort(all)
	return all
}

// FailedPlaceholder is the output of a conversion that produced nothing.
const FailedPlaceholder = "// conversion failed: no pseudocode was produced"

// Convert translates Java source into pseudocode. Problems in the input are
// reported as diagnostics, never as a Go error. Success is false when any
// error was reported or nothing was produced.
func Convert(source string, opts Options) Result {
	var all []diag.Diagnostic

	tokens, lexDiags := parser.Tokenize([]byte(source))
	all = append(all, lexDiags...)

	var parseOpts []parser.Option
	if opts.PreserveComments {
		parseOpts = append(parseOpts, parser.WithComments())
	}
	program, parseDiags := parser.Parse(tokens, parseOpts...)
	all = append(all, parseDiags...)

	nodes, transformDiags := transform.Transform(program, transform.WithRules(rules.New(opts.Rules)))
	all = append(all, transformDiags...)

	indentChar := opts.IndentChar
	if indentChar == 0 {
		indentChar = ' '
	}
	text := pseudo.Generate(nodes,
		pseudo.WithIndent(opts.IndentSize),
		pseudo.WithIndentChar(indentChar),
		pseudo.WithComments(opts.PreserveComments),
	)

	errs, warnings := diag.Split(all)
	diag.Sort(errs)
	diag.Sort(warnings)

	result := Result{
		Pseudocode: text,
		Success:    len(errs) == 0 && text != "",
		Errors:     errs,
		Warnings:   warnings,
		Metadata: Metadata{
			OriginalLines:  countLines(source),
			ConvertedLines: pseudo.LineCount(nodes, opts.PreserveComments),
		},
	}
	if !result.Success && result.Pseudocode == "" {
		result.Pseudocode = FailedPlaceholder
	}

	log.Debugf("converted %d lines into %d lines: %d errors, %d warnings",
		result.Metadata.OriginalLines, result.Metadata.ConvertedLines, len(errs), len(warnings))
	return result
}

// countLines counts source lines; a trailing newline does not start a new
// line.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	n := strings.Count(s, "\n")
	if !strings.HasSuffix(s, "\n") {
		n++
	}
	return n
}
