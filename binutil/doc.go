// Package binutil holds the little endian primitives shared by the binary
// codecs: a bounds checked Reader, an appending Writer with backpatching,
// the fixed width attribute table, and the length prefixed string framings.
package binutil
