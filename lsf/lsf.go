package lsf

import (
	"io"

	"github.com/signadot/ls-format/go-ls/format"
	"github.com/signadot/ls-format/go-ls/resource"
)

// Magic is "LSOF" read as a little endian word.
const Magic uint32 = 0x464F534C

const (
	secStrings = iota
	secNodes
	secAttributes
	secValues
	numSections
)

var sectionNames = [numSections]string{"strings", "nodes", "attributes", "values"}

// Codec reads and writes LSF. The zero Codec writes the default version
// without compression.
type Codec struct {
	Version format.Version
	Method  Method
	Level   Level
}

type EncodeOption func(*Codec)

func WithVersion(v format.Version) EncodeOption {
	return func(c *Codec) { c.Version = v }
}

func WithCompression(m Method, l Level) EncodeOption {
	return func(c *Codec) {
		c.Method = m
		c.Level = l
	}
}

// NewCodec returns a codec compressing with LZ4 at the default level unless
// opts say otherwise.
func NewCodec(opts ...EncodeOption) *Codec {
	c := &Codec{Method: MethodLZ4, Level: LevelDefault}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Codec) Format() format.Format { return format.LSFFormat }

func (c *Codec) Decode(r io.Reader) (*resource.Resource, error) {
	return Decode(r)
}

func (c *Codec) Encode(w io.Writer, res *resource.Resource) error {
	return encode(w, res, c)
}

func Encode(w io.Writer, res *resource.Resource, opts ...EncodeOption) error {
	return NewCodec(opts...).Encode(w, res)
}
