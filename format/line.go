package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/dhamidi/ibpc/convert"
	"github.com/dhamidi/ibpc/java/parser"
)

// LineEncoder writes one tab-separated record per diagnostic followed by a
// summary record, for use with grep and awk.
type LineEncoder struct {
	w io.Writer
}

func NewLineEncoder(w io.Writer) *LineEncoder {
	return &LineEncoder{w: w}
}

func (e *LineEncoder) Encode(result convert.Result) error {
	text, err := e.MarshalText(result)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *LineEncoder) MarshalText(result convert.Result) ([]byte, error) {
	var sb strings.Builder
	for _, d := range result.Diagnostics() {
		fmt.Fprintf(&sb, "%s\t%d:%d\t%s\t%s\n", d.Severity, d.Line, d.Column, d.Kind, d.Message)
	}
	fmt.Fprintf(&sb, "result\t%t\t%d\t%d\n", result.Success, result.Metadata.OriginalLines, result.Metadata.ConvertedLines)
	return []byte(sb.String()), nil
}

// TokenEncoder writes one token per line: position, kind and literal.
type TokenEncoder struct {
	w io.Writer
}

func NewTokenEncoder(w io.Writer) *TokenEncoder {
	return &TokenEncoder{w: w}
}

func (e *TokenEncoder) Encode(tokens []parser.Token) error {
	text, err := e.MarshalText(tokens)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TokenEncoder) MarshalText(tokens []parser.Token) ([]byte, error) {
	var sb strings.Builder
	for _, tok := range tokens {
		fmt.Fprintf(&sb, "%s\t%s\t%q\n", tok.Span.Start, tok.Kind, tok.Literal)
	}
	return []byte(sb.String()), nil
}
