package lsb

import (
	"io"

	"github.com/signadot/ls-format/go-ls/format"
	"github.com/signadot/ls-format/go-ls/resource"
)

// Signature is the first word of every LSB file.
const Signature uint32 = 0x40000000

// Codec reads and writes LSB.
type Codec struct {
	Version format.Version
}

type EncodeOption func(*Codec)

func WithVersion(v format.Version) EncodeOption {
	return func(c *Codec) { c.Version = v }
}

func NewCodec(opts ...EncodeOption) *Codec {
	c := &Codec{}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codec) Format() format.Format { return format.LSBFormat }

func (c *Codec) Decode(r io.Reader) (*resource.Resource, error) {
	return Decode(r)
}

func (c *Codec) Encode(w io.Writer, res *resource.Resource) error {
	if _, err := format.LSBFormat.Resolve(c.Version); err != nil {
		return err
	}
	return encode(w, res)
}

// Encode writes res to w as LSB.
func Encode(w io.Writer, res *resource.Resource, opts ...EncodeOption) error {
	return NewCodec(opts...).Encode(w, res)
}
