package convert

import (
	"log/slog"

	"github.com/signadot/ls-format/go-ls"
	"github.com/signadot/ls-format/go-ls/format"
)

// ProgressFunc is told about each step of a conversion. index never
// decreases within one run.
type ProgressFunc func(msg string, index, total int)

type Config struct {
	Version         format.Version
	Progress        ProgressFunc
	Log             *slog.Logger
	Workers         int
	ContinueOnError bool
	EncodeOptions   []ls.Option
}

type Option func(*Config)

// WithVersion selects the version written for the output format.
func WithVersion(v format.Version) Option {
	return func(c *Config) { c.Version = v }
}

func WithProgress(f ProgressFunc) Option {
	return func(c *Config) { c.Progress = f }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Config) { c.Log = l }
}

// WithWorkers converts up to n files at once. n <= 1 converts one file at
// a time in enumeration order.
func WithWorkers(n int) Option {
	return func(c *Config) { c.Workers = n }
}

// WithContinueOnError records failing files in the report instead of
// stopping at the first one.
func WithContinueOnError(v bool) Option {
	return func(c *Config) { c.ContinueOnError = v }
}

func WithEncodeOptions(opts ...ls.Option) Option {
	return func(c *Config) { c.EncodeOptions = append(c.EncodeOptions, opts...) }
}

func newConfig(opts []Option) *Config {
	c := &Config{Workers: 1}
	for _, opt := range opts {
		opt(c)
	}
	if c.Log == nil {
		c.Log = slog.Default()
	}
	if c.Progress == nil {
		c.Progress = func(string, int, int) {}
	}
	if c.Workers < 1 {
		c.Workers = 1
	}
	return c
}

// encodeOptions places the version after caller options so it wins.
func (c *Config) encodeOptions() []ls.Option {
	res := append([]ls.Option(nil), c.EncodeOptions...)
	if c.Version != format.DefaultVersion {
		res = append(res, ls.WithVersion(c.Version))
	}
	return res
}
