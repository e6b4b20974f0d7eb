// Package restest provides resources and comparison helpers for codec
// tests.
package restest

import (
	"maps"
	"math"
	"slices"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"

	"github.com/signadot/ls-format/go-ls/resource"
)

type nodeView struct {
	Name       string
	Attributes map[string]resource.NodeAttribute
	Children   []*resource.Node
}

type regionView struct {
	Name string
	Root *resource.Node
}

type resourceView struct {
	Metadata resource.Metadata
	Regions  map[string]regionView
}

// Options are the go-cmp options comparing resources structurally: regions
// and attributes by name, children in order, parents ignored.
func Options() cmp.Options {
	return cmp.Options{
		cmp.Transformer("resource", func(r *resource.Resource) resourceView {
			v := resourceView{Metadata: r.Metadata, Regions: map[string]regionView{}}
			for rgn := range r.Regions() {
				v.Regions[rgn.Name] = regionView{Name: rgn.Name, Root: rgn.Root}
			}
			return v
		}),
		cmp.Transformer("node", func(n *resource.Node) nodeView {
			v := nodeView{Name: n.Name, Attributes: map[string]resource.NodeAttribute{}, Children: n.Children}
			for name, a := range n.Attributes() {
				v.Attributes[name] = a
			}
			return v
		}),
		cmp.Comparer(func(a, b float32) bool {
			return math.Float32bits(a) == math.Float32bits(b)
		}),
		cmpopts.EquateEmpty(),
	}
}

// Diff returns a human readable report of the differences between want and
// got, or "" if they are structurally equal.
func Diff(want, got *resource.Resource) string {
	return cmp.Diff(want, got, Options())
}

// Sample returns a resource with two regions exercising every attribute
// type, repeated child names and nested children.
func Sample() *resource.Resource {
	res := resource.NewResource()
	res.Metadata = resource.Metadata{
		Timestamp:    131038713893820000,
		MajorVersion: 3,
		MinorVersion: 1,
		Revision:     2,
		BuildNumber:  5,
	}

	root := resource.NewNode("root")
	all := root.AppendChild(resource.NewNode("AllTypes"))
	types := AllTypes()
	for _, name := range slices.Sorted(maps.Keys(types)) {
		all.SetAttribute(name, types[name])
	}
	for i := range 3 {
		item := root.AppendChild(resource.NewNode("Item"))
		item.SetAttribute("Index", resource.FromInt32(int32(i)))
		item.SetAttribute("Name", resource.FromString(resource.DTFixedString, "item"))
		if i == 1 {
			sub := item.AppendChild(resource.NewNode("Sub"))
			sub.SetAttribute("Deep", resource.FromBool(true))
			sub.AppendChild(resource.NewNode("Empty"))
		}
	}
	res.AddRegion("Config", root)

	chars := resource.NewNode("Characters")
	c := chars.AppendChild(resource.NewNode("Character"))
	c.SetAttribute("DisplayName", resource.FromTranslatedString("Fane", "h5eb7a6f0g2c1fg4ad0ga2b5g2f0d3b7e9a1c"))
	c.SetAttribute("Level", resource.FromInt32(12))
	res.AddRegion("Characters", chars)
	return res
}

// AllTypes returns one attribute of every data type, keyed by type name.
func AllTypes() map[string]resource.NodeAttribute {
	return map[string]resource.NodeAttribute{
		"None":             {Type: resource.DTNone},
		"uint8":            resource.FromByte(250),
		"int16":            resource.FromInt16(-12345),
		"uint16":           resource.FromUInt16(54321),
		"int32":            resource.FromInt32(-2000000000),
		"uint32":           resource.FromUInt32(4000000000),
		"float":            resource.FromFloat32(1.5),
		"double":           resource.FromFloat64(-0.125),
		"ivec2":            resource.FromInts(resource.DTIVec2, 1, -2),
		"ivec3":            resource.FromInts(resource.DTIVec3, 1, -2, 3),
		"ivec4":            resource.FromInts(resource.DTIVec4, 1, -2, 3, -4),
		"fvec2":            resource.FromFloats(resource.DTVec2, 0.5, -0.25),
		"fvec3":            resource.FromFloats(resource.DTVec3, 0.5, -0.25, 8),
		"fvec4":            resource.FromFloats(resource.DTVec4, 0.5, -0.25, 8, 16),
		"mat2x2":           resource.FromFloats(resource.DTMat2, 1, 0, 0, 1),
		"mat3x3":           resource.FromFloats(resource.DTMat3, 1, 0, 0, 0, 1, 0, 0, 0, 1),
		"mat3x4":           resource.FromFloats(resource.DTMat3x4, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12),
		"mat4x3":           resource.FromFloats(resource.DTMat4x3, 12, 11, 10, 9, 8, 7, 6, 5, 4, 3, 2, 1),
		"mat4x4":           resource.FromFloats(resource.DTMat4, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1, 0, 0, 0, 0, 1),
		"bool":             resource.FromBool(true),
		"string":           resource.FromString(resource.DTString, "hello <world> & \"friends\""),
		"path":             resource.FromString(resource.DTPath, "Public/Shared/Assets/x.dds"),
		"FixedString":      resource.FromString(resource.DTFixedString, "a1b2c3"),
		"LSString":         resource.FromString(resource.DTLSString, "line one\nline two"),
		"uint64":           resource.FromUInt64(18446744073709551615),
		"ScratchBuffer":    resource.FromBuffer([]byte{0, 1, 2, 0xfe, 0xff}),
		"old_int64":        resource.FromInt64(-9223372036854775808),
		"int8":             resource.FromInt8(-128),
		"TranslatedString": resource.FromTranslatedString("Hello", "h1234"),
		"WString":          resource.FromString(resource.DTWString, "wide ☃ 𝄞"),
		"LSWString":        resource.FromString(resource.DTLSWString, "ünïcödé"),
	}
}

// Extremes returns a resource holding boundary values of each kind: range
// limits, negative zero, empty strings and buffers.
func Extremes() *resource.Resource {
	res := resource.NewResource()
	res.Metadata = resource.Metadata{
		Timestamp:    math.MaxInt64,
		MajorVersion: math.MaxUint32,
	}
	root := resource.NewNode("root")
	limits := root.AppendChild(resource.NewNode("Limits"))
	limits.SetAttribute("MaxByte", resource.FromByte(math.MaxUint8))
	limits.SetAttribute("MinInt8", resource.FromInt8(math.MinInt8))
	limits.SetAttribute("MinInt16", resource.FromInt16(math.MinInt16))
	limits.SetAttribute("MaxUInt16", resource.FromUInt16(math.MaxUint16))
	limits.SetAttribute("MinInt32", resource.FromInt32(math.MinInt32))
	limits.SetAttribute("MaxInt32", resource.FromInt32(math.MaxInt32))
	limits.SetAttribute("MaxUInt32", resource.FromUInt32(math.MaxUint32))
	limits.SetAttribute("MinInt64", resource.FromInt64(math.MinInt64))
	limits.SetAttribute("MaxInt64", resource.FromInt64(math.MaxInt64))
	limits.SetAttribute("MaxUInt64", resource.FromUInt64(math.MaxUint64))
	limits.SetAttribute("MaxFloat", resource.FromFloat32(math.MaxFloat32))
	limits.SetAttribute("MinFloat", resource.FromFloat32(-math.MaxFloat32))
	limits.SetAttribute("NegZeroFloat", resource.FromFloat32(float32(math.Copysign(0, -1))))
	limits.SetAttribute("NegZeroDouble", resource.FromFloat64(math.Copysign(0, -1)))
	limits.SetAttribute("IVec", resource.FromInts(resource.DTIVec4, math.MinInt32, math.MaxInt32, 0, -1))
	limits.SetAttribute("Vec", resource.FromFloats(resource.DTVec3, math.MaxFloat32, float32(math.Copysign(0, -1)), -1e-7))

	empty := root.AppendChild(resource.NewNode("Empty"))
	for _, t := range []resource.DataType{
		resource.DTString, resource.DTPath, resource.DTFixedString,
		resource.DTLSString, resource.DTWString, resource.DTLSWString,
	} {
		empty.SetAttribute(t.String(), resource.FromString(t, ""))
	}
	empty.SetAttribute("Buffer", resource.FromBuffer([]byte{}))
	empty.SetAttribute("NoHandle", resource.FromTranslatedString("Text", ""))
	empty.SetAttribute("NoText", resource.FromTranslatedString("", "h0"))

	text := root.AppendChild(resource.NewNode("Text"))
	text.SetAttribute("Wide", resource.FromString(resource.DTWString, "日本語 Ελληνικά 🎲"))
	text.SetAttribute("LSWide", resource.FromString(resource.DTLSWString, "ẞ ø €"))
	text.SetAttribute("Markup", resource.FromString(resource.DTLSString, `<b a="1">&amp;</b> 'q'`))
	text.SetAttribute("Name", resource.FromString(resource.DTFixedString, "Änderung"))
	res.AddRegion("Extremes", root)
	return res
}
