package format

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
)

type Format int

const (
	LSXFormat Format = iota
	LSBFormat
	LSFFormat
	LSJFormat
)

var (
	ErrBadFormat  = errors.New("bad format")
	ErrBadVersion = errors.New("bad version")
	ErrBadOption  = errors.New("bad option")
)

// IsArgumentError reports whether err was caused by an invalid format,
// version or codec option rather than by the content of a file.
func IsArgumentError(err error) bool {
	return errors.Is(err, ErrBadFormat) || errors.Is(err, ErrBadVersion) || errors.Is(err, ErrBadOption)
}

func ParseFormat(v string) (Format, error) {
	f, ok := map[string]Format{
		"lsx": LSXFormat,
		"x":   LSXFormat,
		"lsb": LSBFormat,
		"b":   LSBFormat,
		"lsf": LSFFormat,
		"f":   LSFFormat,
		"lsj": LSJFormat,
		"j":   LSJFormat,
	}[strings.ToLower(v)]
	if ok {
		return f, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrBadFormat, v)
}

// ExtensionToFormat maps the extension of path to a format. The comparison
// is case insensitive.
func ExtensionToFormat(path string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(path))
	for _, f := range AllFormats() {
		if f.Suffix() == ext {
			return f, nil
		}
	}
	return 0, fmt.Errorf("%w: unrecognized file extension %q", ErrBadFormat, ext)
}

func (f Format) String() string {
	d, err := f.MarshalText()
	if err != nil {
		return err.Error()
	}
	return string(d)
}

func (f Format) MarshalText() ([]byte, error) {
	switch f {
	case LSXFormat:
		return []byte("lsx"), nil
	case LSBFormat:
		return []byte("lsb"), nil
	case LSFFormat:
		return []byte("lsf"), nil
	case LSJFormat:
		return []byte("lsj"), nil
	default:
		return nil, fmt.Errorf("<err: %d is not a format>", f)
	}
}

func (f *Format) UnmarshalText(d []byte) error {
	pf, err := ParseFormat(string(d))
	if err != nil {
		return err
	}
	*f = pf
	return nil
}

func (f Format) IsBinary() bool { return f == LSBFormat || f == LSFFormat }
func (f Format) IsText() bool   { return f == LSXFormat || f == LSJFormat }

// Valid reports whether f is one of the known formats.
func (f Format) Valid() bool {
	return f >= LSXFormat && f <= LSJFormat
}

// Suffix returns the file extension for this format (including the dot).
func (f Format) Suffix() string {
	switch f {
	case LSXFormat:
		return ".lsx"
	case LSBFormat:
		return ".lsb"
	case LSFFormat:
		return ".lsf"
	case LSJFormat:
		return ".lsj"
	default:
		return ""
	}
}

// ReplaceSuffix returns path with its extension replaced by the suffix of f.
func (f Format) ReplaceSuffix(path string) string {
	return strings.TrimSuffix(path, filepath.Ext(path)) + f.Suffix()
}

// AllFormats returns all supported formats.
func AllFormats() []Format {
	return []Format{LSXFormat, LSBFormat, LSFFormat, LSJFormat}
}
