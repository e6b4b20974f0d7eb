package lsf

import (
	"errors"
	"fmt"
	"io"

	"github.com/signadot/ls-format/go-ls/binutil"
	"github.com/signadot/ls-format/go-ls/debug"
	"github.com/signadot/ls-format/go-ls/format"
	"github.com/signadot/ls-format/go-ls/resource"
)

type flatNode struct {
	y      *resource.Node
	parent int32
	next   int32
}

type encoder struct {
	names *stringTable
	nodes []flatNode
}

func encode(w io.Writer, res *resource.Resource, c *Codec) error {
	ver, err := format.LSFFormat.Resolve(c.Version)
	if err != nil {
		return err
	}
	level := c.Level
	if level == 0 {
		level = LevelDefault
	}
	if err := checkMethod(c.Method, level, ver); err != nil {
		return err
	}

	e := &encoder{names: newStringTable()}
	nodesW := binutil.NewWriter()
	nodesW.U32(uint32(res.RegionCount()))
	for rgn := range res.Regions() {
		ref, err := e.names.ref(rgn.Name)
		if err != nil {
			return err
		}
		nodesW.U32(ref)
		nodesW.U32(uint32(len(e.nodes)))
		e.flatten(rgn.Root, -1)
	}
	nodesW.U32(uint32(len(e.nodes)))

	attrsW, valuesW := binutil.NewWriter(), binutil.NewWriter()
	nAttrs := 0
	attrsW.U32(0)
	for i, fn := range e.nodes {
		ref, err := e.names.ref(fn.y.Name)
		if err != nil {
			return err
		}
		first := int32(-1)
		if fn.y.AttributeCount() > 0 {
			first = int32(nAttrs)
		}
		nodesW.U32(ref)
		nodesW.I32(fn.parent)
		if ver >= format.LSFVerExtendedNodes {
			nodesW.I32(fn.next)
		}
		nodesW.I32(first)
		for name, a := range fn.y.Attributes() {
			if err := e.attribute(attrsW, valuesW, int32(i), name, a); err != nil {
				return fmt.Errorf("%s: attribute %q: %w", fn.y.Path(), name, err)
			}
			nAttrs++
		}
	}
	attrsW.PatchU32(0, uint32(nAttrs))

	stringsW := binutil.NewWriter()
	e.names.write(stringsW)

	raw := [numSections][]byte{
		secStrings:    stringsW.Bytes(),
		secNodes:      nodesW.Bytes(),
		secAttributes: attrsW.Bytes(),
		secValues:     valuesW.Bytes(),
	}
	var (
		secs   [numSections]section
		stored [numSections][]byte
	)
	for i, b := range raw {
		if uint64(len(b)) > maxSection {
			return resource.FormatErrorf("%s section of %d bytes is too large", sectionNames[i], len(b))
		}
		secs[i].size = uint32(len(b))
		stored[i] = b
		z, err := compressSection(b, c.Method, level, ver)
		switch {
		case errors.Is(err, errIncompressible):
		case err != nil:
			return fmt.Errorf("%s section: %w", sectionNames[i], err)
		default:
			secs[i].onDisk = uint32(len(z))
			stored[i] = z
		}
	}
	if debug.LSF() {
		debug.Logf("lsf: writing version %d method %s sections %v\n", ver, c.Method, secs)
	}

	out := binutil.NewWriter()
	out.U32(Magic)
	out.U32(uint32(ver))
	md := res.Metadata
	out.U64(md.Timestamp)
	out.U32(md.MajorVersion)
	out.U32(md.MinorVersion)
	out.U32(md.Revision)
	out.U32(md.BuildNumber)
	for _, sec := range secs {
		out.U32(sec.size)
		out.U32(sec.onDisk)
	}
	flags := uint8(c.Method)
	if c.Method != MethodNone {
		flags |= uint8(level)
	}
	out.U8(flags)
	out.U8(0)
	out.U16(0)
	out.U32(0)
	for _, b := range stored {
		out.Write(b)
	}
	if _, err := w.Write(out.Bytes()); err != nil {
		return fmt.Errorf("writing lsf: %w", err)
	}
	return nil
}

// flatten appends y and its descendants in pre-order, linking siblings.
func (e *encoder) flatten(y *resource.Node, parent int32) {
	idx := int32(len(e.nodes))
	e.nodes = append(e.nodes, flatNode{y: y, parent: parent, next: -1})
	prev := int32(-1)
	for _, child := range y.Children {
		ci := int32(len(e.nodes))
		if prev >= 0 {
			e.nodes[prev].next = ci
		}
		prev = ci
		e.flatten(child, idx)
	}
}

func (e *encoder) attribute(attrsW, valuesW *binutil.Writer, node int32, name string, a resource.NodeAttribute) error {
	if err := a.Validate(); err != nil {
		return err
	}
	ref, err := e.names.ref(name)
	if err != nil {
		return err
	}
	start := valuesW.Len()
	if err := writeValue(valuesW, a); err != nil {
		return err
	}
	length := valuesW.Len() - start
	if length > maxValueLength {
		return resource.FormatErrorf("value of %d bytes exceeds %d", length, maxValueLength)
	}
	attrsW.U32(ref)
	attrsW.U32(uint32(length)<<typeBits | uint32(a.Type))
	attrsW.I32(node)
	return nil
}

func writeValue(w *binutil.Writer, a resource.NodeAttribute) error {
	switch {
	case a.Type.IsString():
		w.Write([]byte(a.Value.(string)))
		w.U8(0)
	case a.Type == resource.DTTranslatedString:
		ts := a.Value.(resource.TranslatedString)
		if err := binutil.WriteString(w, ts.Value); err != nil {
			return err
		}
		return binutil.WriteString(w, ts.Handle)
	case a.Type == resource.DTScratchBuffer:
		w.Write(a.Value.([]byte))
	default:
		return binutil.WriteAttribute(w, a)
	}
	return nil
}
