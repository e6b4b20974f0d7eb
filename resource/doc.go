// Package resource provides the in-memory representation shared by all
// resource codecs.
//
// # Overview
//
// A Resource is a set of named regions plus metadata describing the engine
// version that wrote it. Each Region holds the root of a tree of Nodes. A
// Node has a name (siblings may share names), a set of uniquely named typed
// attributes and an ordered list of children.
//
// The representation carries no information specific to any on-disk format:
// the compact binary string table, the section layout of the compressed
// format and the whitespace of the textual formats are all discarded when
// decoding. A Resource decoded from any format can be encoded to any other.
//
// # Attributes
//
// A NodeAttribute pairs a DataType with a Go value whose dynamic type is
// fixed by the DataType (see NodeAttribute). Validate checks this; encoders
// refuse attributes that fail it.
//
//	n := resource.NewNode("Character")
//	n.SetAttribute("Level", resource.FromInt32(3))
//	n.SetAttribute("Position", resource.FromFloats(resource.DTVec3, 1, 0, -2))
//	n.SetAttribute("DisplayName", resource.FromTranslatedString("Fane", "h0a1b2c3d"))
//
// Setting an attribute that already exists replaces its value in place.
//
// # Trees
//
// AppendChild sets the Parent of the child. Parent is a back reference used
// for upward navigation (Path, Root) only. Codecs build trees top down, so a
// node never becomes its own ancestor.
//
//	res := resource.NewResource()
//	root := resource.NewNode("root")
//	root.AppendChild(n)
//	res.AddRegion("Characters", root)
//
// # Comparison
//
// Equal compares resources structurally, ignoring region and attribute
// order. Digest hashes the same canonical view with BLAKE3.
//
// # Errors
//
// Malformed input is reported with *FormatError, which matches ErrFormat
// under errors.Is.
package resource
