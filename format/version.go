package format

import (
	"fmt"
	"slices"
	"strconv"
)

// Version selects an on-disk variant of a format. The zero Version selects
// the default of the format it is applied to.
type Version uint32

const DefaultVersion Version = 0

const (
	// LSB has a single layout.
	LSBVersion1 Version = 1

	// LSF section layouts. Version 1 compresses whole sections with zlib or
	// LZ4 blocks; version 2 switches LZ4 to framed (chunked) streams and
	// admits zstd; version 3 adds next-sibling links to node entries.
	LSFVerInitial         Version = 1
	LSFVerChunkedCompress Version = 2
	LSFVerExtendedNodes   Version = 3

	// LSX type encodings: numeric type ids (2) or type names (3).
	LSXVersion2 Version = 2
	LSXVersion3 Version = 3

	LSJVersion1 Version = 1
)

// Versions returns the versions supported by f, oldest first.
func (f Format) Versions() []Version {
	switch f {
	case LSBFormat:
		return []Version{LSBVersion1}
	case LSFFormat:
		return []Version{LSFVerInitial, LSFVerChunkedCompress, LSFVerExtendedNodes}
	case LSXFormat:
		return []Version{LSXVersion2, LSXVersion3}
	case LSJFormat:
		return []Version{LSJVersion1}
	}
	return nil
}

// DefaultVersion is the version written when none is requested: the one
// readable by the oldest supported game release.
func (f Format) DefaultVersion() Version {
	switch f {
	case LSBFormat:
		return LSBVersion1
	case LSFFormat:
		return LSFVerChunkedCompress
	case LSXFormat:
		return LSXVersion2
	case LSJFormat:
		return LSJVersion1
	}
	return DefaultVersion
}

// Resolve maps v to a concrete version of f, substituting the default for
// DefaultVersion.
func (f Format) Resolve(v Version) (Version, error) {
	if !f.Valid() {
		return 0, fmt.Errorf("%w: %d", ErrBadFormat, int(f))
	}
	if v == DefaultVersion {
		return f.DefaultVersion(), nil
	}
	if !slices.Contains(f.Versions(), v) {
		return 0, fmt.Errorf("%w: %s does not support version %d", ErrBadVersion, f, v)
	}
	return v, nil
}

func ParseVersion(v string) (Version, error) {
	n, err := strconv.ParseUint(v, 10, 32)
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadVersion, v)
	}
	return Version(n), nil
}
