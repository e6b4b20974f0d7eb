package lsf

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/zlib"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/signadot/ls-format/go-ls/format"
)

// Method is the compression applied to each section, stored in the low
// nibble of the header flags.
type Method uint8

const (
	MethodNone Method = 0
	MethodZlib Method = 1
	MethodLZ4  Method = 2
	MethodZstd Method = 3
)

// Level is stored in the high nibble of the header flags.
type Level uint8

const (
	LevelFast    Level = 0x10
	LevelDefault Level = 0x20
	LevelMax     Level = 0x40
)

func (m Method) String() string {
	switch m {
	case MethodNone:
		return "none"
	case MethodZlib:
		return "zlib"
	case MethodLZ4:
		return "lz4"
	case MethodZstd:
		return "zstd"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(m))
	}
}

func ParseMethod(name string) (Method, error) {
	switch strings.ToLower(name) {
	case "none":
		return MethodNone, nil
	case "zlib":
		return MethodZlib, nil
	case "lz4":
		return MethodLZ4, nil
	case "zstd":
		return MethodZstd, nil
	default:
		return 0, fmt.Errorf("%w: unknown compression method %q", format.ErrBadOption, name)
	}
}

func (l Level) String() string {
	switch l {
	case LevelFast:
		return "fast"
	case LevelDefault:
		return "default"
	case LevelMax:
		return "max"
	default:
		return fmt.Sprintf("unknown(%#x)", uint8(l))
	}
}

func ParseLevel(name string) (Level, error) {
	switch strings.ToLower(name) {
	case "fast":
		return LevelFast, nil
	case "default", "":
		return LevelDefault, nil
	case "max":
		return LevelMax, nil
	default:
		return 0, fmt.Errorf("%w: unknown compression level %q", format.ErrBadOption, name)
	}
}

// checkMethod reports whether m may be written with version v.
func checkMethod(m Method, l Level, v format.Version) error {
	switch m {
	case MethodNone, MethodZlib, MethodLZ4:
	case MethodZstd:
		if v < format.LSFVerChunkedCompress {
			return fmt.Errorf("%w: zstd requires LSF version %d or later", format.ErrBadVersion, format.LSFVerChunkedCompress)
		}
	default:
		return fmt.Errorf("%w: unknown compression method %d", format.ErrBadOption, uint8(m))
	}
	switch l {
	case LevelFast, LevelDefault, LevelMax:
		return nil
	}
	return fmt.Errorf("%w: unknown compression level %#x", format.ErrBadOption, uint8(l))
}

var zstdEncoders = map[Level]*zstd.Encoder{}

// zstdMinMemory bounds decoder memory for small sections, whose frames may
// still declare a window of up to this size.
const zstdMinMemory = 1 << 20

func init() {
	speeds := map[Level]zstd.EncoderLevel{
		LevelFast:    zstd.SpeedFastest,
		LevelDefault: zstd.SpeedDefault,
		LevelMax:     zstd.SpeedBestCompression,
	}
	for l, speed := range speeds {
		enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(speed))
		if err != nil {
			panic("lsf: zstd encoder initialization failed: " + err.Error())
		}
		zstdEncoders[l] = enc
	}
}

// errIncompressible is returned when compression does not shrink a
// section; the section is then stored raw.
var errIncompressible = errors.New("section is incompressible")

func compressSection(data []byte, m Method, l Level, v format.Version) ([]byte, error) {
	if len(data) == 0 || m == MethodNone {
		return nil, errIncompressible
	}
	var (
		out []byte
		err error
	)
	switch m {
	case MethodZlib:
		out, err = compressZlib(data, l)
	case MethodLZ4:
		if v < format.LSFVerChunkedCompress {
			out, err = compressLZ4Block(data, l)
		} else {
			out, err = compressLZ4Frame(data, l)
		}
	case MethodZstd:
		out = zstdEncoders[l].EncodeAll(data, nil)
	default:
		return nil, fmt.Errorf("%w: unknown compression method %d", format.ErrBadOption, uint8(m))
	}
	if err != nil {
		return nil, err
	}
	if len(out) >= len(data) {
		return nil, errIncompressible
	}
	return out, nil
}

func compressZlib(data []byte, l Level) ([]byte, error) {
	lvl := zlib.DefaultCompression
	switch l {
	case LevelFast:
		lvl = zlib.BestSpeed
	case LevelMax:
		lvl = zlib.BestCompression
	}
	buf := bytes.NewBuffer(nil)
	zw, err := zlib.NewWriterLevel(buf, lvl)
	if err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("zlib compress: %w", err)
	}
	return buf.Bytes(), nil
}

func compressLZ4Block(data []byte, l Level) ([]byte, error) {
	dst := make([]byte, lz4.CompressBlockBound(len(data)))
	var (
		n   int
		err error
	)
	if l == LevelMax {
		n, err = lz4.CompressBlockHC(data, dst, lz4.Level9, nil, nil)
	} else {
		n, err = lz4.CompressBlock(data, dst, nil)
	}
	if err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if n == 0 {
		return nil, errIncompressible
	}
	return dst[:n], nil
}

func compressLZ4Frame(data []byte, l Level) ([]byte, error) {
	lvl := lz4.Level5
	switch l {
	case LevelFast:
		lvl = lz4.Fast
	case LevelMax:
		lvl = lz4.Level9
	}
	buf := bytes.NewBuffer(nil)
	zw := lz4.NewWriter(buf)
	if err := zw.Apply(lz4.CompressionLevelOption(lvl)); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if _, err := zw.Write(data); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	if err := zw.Close(); err != nil {
		return nil, fmt.Errorf("lz4 compress: %w", err)
	}
	return buf.Bytes(), nil
}

// decompressSection inflates a section to exactly size bytes. Failures are
// format errors: the stored bytes are not what the header claims.
func decompressSection(data []byte, m Method, v format.Version, size int) ([]byte, error) {
	switch m {
	case MethodZlib:
		zr, err := zlib.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("zlib decompress: %w", err)
		}
		defer zr.Close()
		return readExactly(zr, size)
	case MethodLZ4:
		if v < format.LSFVerChunkedCompress {
			dst := make([]byte, size)
			n, err := lz4.UncompressBlock(data, dst)
			if err != nil {
				return nil, fmt.Errorf("lz4 decompress: %w", err)
			}
			if n != size {
				return nil, fmt.Errorf("lz4 decompress: got %d bytes, expected %d", n, size)
			}
			return dst, nil
		}
		return readExactly(lz4.NewReader(bytes.NewReader(data)), size)
	case MethodZstd:
		zr, err := zstd.NewReader(bytes.NewReader(data),
			zstd.WithDecoderConcurrency(1),
			zstd.WithDecoderLowmem(true),
			zstd.WithDecoderMaxMemory(max(uint64(size)+1, zstdMinMemory)))
		if err != nil {
			return nil, fmt.Errorf("zstd decompress: %w", err)
		}
		defer zr.Close()
		return readExactly(zr, size)
	default:
		return nil, fmt.Errorf("unsupported compression method %d", uint8(m))
	}
}

func readExactly(r io.Reader, size int) ([]byte, error) {
	out, err := io.ReadAll(io.LimitReader(r, int64(size)+1))
	if err != nil {
		return nil, fmt.Errorf("decompress: %w", err)
	}
	if len(out) != size {
		return nil, fmt.Errorf("decompress: got %d bytes, expected %d", len(out), size)
	}
	return out, nil
}

// ParseCompression parses "method" or "method:level", e.g. "zstd:max".
func ParseCompression(s string) (Method, Level, error) {
	ms, ls, _ := strings.Cut(s, ":")
	m, err := ParseMethod(ms)
	if err != nil {
		return 0, 0, err
	}
	l, err := ParseLevel(ls)
	if err != nil {
		return 0, 0, err
	}
	return m, l, nil
}
