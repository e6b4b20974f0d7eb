// Package ls reads and writes game resource files in any of the supported
// formats and converts between them.
//
// Every format decodes to and encodes from the same document model,
// [resource.Resource]. A [Codec] is obtained for a [format.Format] with
// [NewCodec]; [Load] and [Save] pick the format from a file extension.
package ls

import (
	"fmt"
	"io"

	"github.com/signadot/ls-format/go-ls/format"
	"github.com/signadot/ls-format/go-ls/lsb"
	"github.com/signadot/ls-format/go-ls/lsf"
	"github.com/signadot/ls-format/go-ls/lsj"
	"github.com/signadot/ls-format/go-ls/lsx"
	"github.com/signadot/ls-format/go-ls/resource"
)

// Codec reads and writes one format.
type Codec interface {
	Format() format.Format
	Decode(r io.Reader) (*resource.Resource, error)
	Encode(w io.Writer, res *resource.Resource) error
}

var (
	_ Codec = (*lsb.Codec)(nil)
	_ Codec = (*lsf.Codec)(nil)
	_ Codec = (*lsx.Codec)(nil)
	_ Codec = (*lsj.Codec)(nil)
)

// Options configure encoding. Options that do not apply to a format are
// ignored by it.
type Options struct {
	Version format.Version
	// Compact disables indentation in the text formats.
	Compact bool
	Colors  *lsx.Colors

	compress bool
	method   lsf.Method
	level    lsf.Level
}

type Option func(*Options)

func WithVersion(v format.Version) Option {
	return func(o *Options) { o.Version = v }
}

func WithCompact(v bool) Option {
	return func(o *Options) { o.Compact = v }
}

// WithCompression selects the LSF section compression.
func WithCompression(m lsf.Method, l lsf.Level) Option {
	return func(o *Options) {
		o.compress = true
		o.method = m
		o.level = l
	}
}

// WithColors colors LSX output for terminals.
func WithColors(cs *lsx.Colors) Option {
	return func(o *Options) { o.Colors = cs }
}

// NewCodec returns a codec for f. The requested version is checked here so
// that an unsupported one fails before any file is touched.
func NewCodec(f format.Format, opts ...Option) (Codec, error) {
	o := &Options{}
	for _, opt := range opts {
		opt(o)
	}
	if _, err := f.Resolve(o.Version); err != nil {
		return nil, err
	}
	switch f {
	case format.LSBFormat:
		return lsb.NewCodec(lsb.WithVersion(o.Version)), nil
	case format.LSFFormat:
		lopts := []lsf.EncodeOption{lsf.WithVersion(o.Version)}
		if o.compress {
			lopts = append(lopts, lsf.WithCompression(o.method, o.level))
		}
		return lsf.NewCodec(lopts...), nil
	case format.LSXFormat:
		return lsx.NewCodec(lsx.WithVersion(o.Version), lsx.WithPretty(!o.Compact), lsx.WithColors(o.Colors)), nil
	case format.LSJFormat:
		return lsj.NewCodec(lsj.WithVersion(o.Version), lsj.WithPretty(!o.Compact)), nil
	}
	return nil, fmt.Errorf("%w: %d", format.ErrBadFormat, int(f))
}

// Decode reads a resource of format f from r.
func Decode(r io.Reader, f format.Format) (*resource.Resource, error) {
	c, err := NewCodec(f)
	if err != nil {
		return nil, err
	}
	return c.Decode(r)
}

// Encode writes res to w in format f.
func Encode(w io.Writer, res *resource.Resource, f format.Format, opts ...Option) error {
	c, err := NewCodec(f, opts...)
	if err != nil {
		return err
	}
	return c.Encode(w, res)
}
