// Package format names the on-disk encodings of a resource and the versions
// each of them supports.
//
// # Formats
//
//   - LSXFormat (.lsx): XML markup
//   - LSBFormat (.lsb): compact binary
//   - LSFFormat (.lsf): sectioned, compressed binary
//   - LSJFormat (.lsj): JSON
//
// Selecting a format from a file name:
//
//	f, err := format.ExtensionToFormat("Globals/meta.LSX") // LSXFormat
//
// Unknown extensions, format names and versions fail with errors wrapping
// ErrBadFormat or ErrBadVersion; IsArgumentError recognizes both.
//
// # Related Packages
//
//   - github.com/signadot/ls-format/go-ls - codec selection and file loading
//   - github.com/signadot/ls-format/go-ls/resource - the document model
package format
