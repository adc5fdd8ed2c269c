package format

import (
	"encoding/json"
	"io"

	"github.com/dhamidi/ibpc/convert"
	"github.com/dhamidi/ibpc/diag"
	"github.com/dhamidi/ibpc/java/parser"
)

type JSONEncoder struct {
	w io.Writer
}

func NewJSONEncoder(w io.Writer) *JSONEncoder {
	return &JSONEncoder{w: w}
}

func (e *JSONEncoder) Encode(result convert.Result) error {
	text, err := e.MarshalText(result)
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *JSONEncoder) MarshalText(result convert.Result) ([]byte, error) {
	if result.Errors == nil {
		result.Errors = []diag.Diagnostic{}
	}
	if result.Warnings == nil {
		result.Warnings = []diag.Diagnostic{}
	}
	return json.MarshalIndent(result, "", "  ")
}

type ASTJSONEncoder struct {
	w io.Writer
}

func NewASTJSONEncoder(w io.Writer) *ASTJSONEncoder {
	return &ASTJSONEncoder{w: w}
}

func (e *ASTJSONEncoder) Encode(node *parser.Node) error {
	text, err := e.MarshalText(node)
	if err != nil {
		return err
	}
	_, err = e.w.Write(append(text, '\n'))
	return err
}

func (e *ASTJSONEncoder) MarshalText(node *parser.Node) ([]byte, error) {
	return json.MarshalIndent(node, "", "  ")
}
