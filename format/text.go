package format

import (
	"io"

	"github.com/dhamidi/ibpc/convert"
)

// TextEncoder writes only the pseudocode, terminated by a newline.
type TextEncoder struct {
	w io.Writer
}

func NewTextEncoder(w io.Writer) *TextEncoder {
	return &TextEncoder{w: w}
}

func (e *TextEncoder) Encode(result convert.Result) error {
	text, err := e.MarshalText(result)
	if err != nil {
		return err
	}
	_, err = e.w.Write(text)
	return err
}

func (e *TextEncoder) MarshalText(result convert.Result) ([]byte, error) {
	if result.Pseudocode == "" {
		return nil, nil
	}
	return []byte(result.Pseudocode + "\n"), nil
}
