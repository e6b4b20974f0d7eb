package lsj

import (
	"io"

	"github.com/signadot/ls-format/go-ls/format"
	"github.com/signadot/ls-format/go-ls/resource"
)

// Codec reads and writes LSJ.
type Codec struct {
	Version format.Version
	// Pretty indents with two spaces, one member per line.
	Pretty bool
}

type EncodeOption func(*Codec)

func WithVersion(v format.Version) EncodeOption {
	return func(c *Codec) { c.Version = v }
}

func WithPretty(v bool) EncodeOption {
	return func(c *Codec) { c.Pretty = v }
}

// NewCodec returns a codec writing in pretty mode unless opts say
// otherwise.
func NewCodec(opts ...EncodeOption) *Codec {
	c := &Codec{Pretty: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codec) Format() format.Format { return format.LSJFormat }

func (c *Codec) Decode(r io.Reader) (*resource.Resource, error) {
	return Decode(r)
}

func (c *Codec) Encode(w io.Writer, res *resource.Resource) error {
	return encode(w, res, c)
}

func Encode(w io.Writer, res *resource.Resource, opts ...EncodeOption) error {
	return NewCodec(opts...).Encode(w, res)
}
