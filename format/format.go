// Package format writes conversion results, syntax trees and token streams
// for the command line.
package format

import (
	"fmt"
	"io"

	"github.com/dhamidi/ibpc/convert"
)

type Encoder interface {
	Encode(result convert.Result) error
}

// NewEncoder returns the result encoder for a --format value.
func NewEncoder(name string, w io.Writer) (Encoder, error) {
	switch name {
	case "text", "":
		return NewTextEncoder(w), nil
	case "json":
		return NewJSONEncoder(w), nil
	case "line":
		return NewLineEncoder(w), nil
	}
	return nil, fmt.Errorf("unknown format: %s (expected text, json, or line)", name)
}
