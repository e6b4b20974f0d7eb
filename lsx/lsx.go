package lsx

import (
	"io"

	"github.com/signadot/ls-format/go-ls/format"
	"github.com/signadot/ls-format/go-ls/resource"
)

// Codec reads and writes LSX.
type Codec struct {
	Version format.Version
	// Pretty indents elements with tabs, one per line.
	Pretty bool
	// Colors, when set, wraps names and values in terminal color codes.
	// The output is then for display only.
	Colors *Colors
}

type EncodeOption func(*Codec)

func WithVersion(v format.Version) EncodeOption {
	return func(c *Codec) { c.Version = v }
}

func WithPretty(v bool) EncodeOption {
	return func(c *Codec) { c.Pretty = v }
}

func WithColors(cs *Colors) EncodeOption {
	return func(c *Codec) { c.Colors = cs }
}

// NewCodec returns a codec writing the default version in pretty mode
// unless opts say otherwise.
func NewCodec(opts ...EncodeOption) *Codec {
	c := &Codec{Pretty: true}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codec) Format() format.Format { return format.LSXFormat }

func (c *Codec) Decode(r io.Reader) (*resource.Resource, error) {
	return Decode(r)
}

func (c *Codec) Encode(w io.Writer, res *resource.Resource) error {
	return encode(w, res, c)
}

func Encode(w io.Writer, res *resource.Resource, opts ...EncodeOption) error {
	return NewCodec(opts...).Encode(w, res)
}
