// Package lsf reads and writes the sectioned, compressed binary resource
// format.
//
// A file is a header followed by four sections, each compressed
// independently:
//
//	u32 magic "LSOF"   u32 version
//	u64 timestamp      u32 major, minor, revision, build
//	4 x { u32 uncompressedSize; u32 sizeOnDisk }   strings, nodes, attributes, values
//	u8 flags (method | level)   u8, u16, u32 reserved
//	section payloads
//
// A sizeOnDisk of zero marks a section stored uncompressed. Names live in a
// hash table of buckets and are referenced as bucket<<16 | index. Nodes are
// listed in pre-order with the index of their parent, so parents always
// precede their children. Attributes reference their node by index and
// carry their type and payload length; payloads are concatenated in the
// values section.
//
// Version 1 compresses with zlib or LZ4 blocks. Version 2, the default,
// uses LZ4 frames and admits zstd. Version 3 adds next sibling links to node
// entries.
package lsf
