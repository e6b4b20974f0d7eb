// Package lsb reads and writes the compact binary resource format.
//
// An LSB file is a fixed header, a table interning every node and attribute
// name as a 32 bit id, and a table of regions giving the absolute offset of
// each region's root node. Nodes are stored depth first: name id, attribute
// count, child count, the attributes, then the children.
//
//	u32 signature (0x40000000)   u32 totalSize   u32 bigEndian (0)   u32 unknown
//	u64 timestamp   u32 major, minor, revision, build
//	u32 stringCount   { i32 length; bytes; u32 id }*
//	u32 regionCount   { u32 nameId; u32 offset }*
//	node: u32 nameId; u32 attrCount; u32 childCount;
//	      { u32 nameId; u32 typeId; payload }*  node*
//
// Decoding is strict about the header and string table and tolerant of the
// stray NUL bytes some writers leave at the end of string values, see
// [binutil.ReadString].
package lsb
