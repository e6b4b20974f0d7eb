package lsb

import (
	"fmt"
	"io"
	"math"

	"github.com/signadot/ls-format/go-ls/binutil"
	"github.com/signadot/ls-format/go-ls/resource"
)

type encoder struct {
	w     *binutil.Writer
	ids   map[string]uint32
	names []string
}

func encode(w io.Writer, res *resource.Resource) error {
	e := &encoder{w: binutil.NewWriter(), ids: map[string]uint32{}}
	if err := e.intern(res); err != nil {
		return err
	}
	e.w.U32(Signature)
	e.w.U32(0) // total size
	e.w.U32(0) // little endian
	e.w.U32(0)
	md := res.Metadata
	e.w.U64(md.Timestamp)
	e.w.U32(md.MajorVersion)
	e.w.U32(md.MinorVersion)
	e.w.U32(md.Revision)
	e.w.U32(md.BuildNumber)

	e.w.U32(uint32(len(e.names)))
	for id, s := range e.names {
		if err := binutil.WriteString(e.w, s); err != nil {
			return err
		}
		e.w.U32(uint32(id))
	}

	e.w.U32(uint32(res.RegionCount()))
	offsets := make([]int, 0, res.RegionCount())
	for rgn := range res.Regions() {
		e.w.U32(e.ids[rgn.Name])
		offsets = append(offsets, e.w.Len())
		e.w.U32(0)
	}
	i := 0
	for rgn := range res.Regions() {
		e.w.PatchU32(offsets[i], uint32(e.w.Len()))
		i++
		if err := e.node(rgn.Root); err != nil {
			return fmt.Errorf("region %q: %w", rgn.Name, err)
		}
	}
	if uint64(e.w.Len()) > math.MaxUint32 {
		return resource.FormatErrorf("encoded size %d exceeds 4GiB", e.w.Len())
	}
	e.w.PatchU32(4, uint32(e.w.Len()))
	if _, err := w.Write(e.w.Bytes()); err != nil {
		return fmt.Errorf("writing lsb: %w", err)
	}
	return nil
}

// intern assigns ids in first seen order and validates every attribute so
// that nothing is written for an unencodable resource.
func (e *encoder) intern(res *resource.Resource) error {
	add := func(s string) {
		if _, ok := e.ids[s]; ok {
			return
		}
		e.ids[s] = uint32(len(e.names))
		e.names = append(e.names, s)
	}
	for rgn := range res.Regions() {
		add(rgn.Name)
		err := rgn.Root.Walk(func(y *resource.Node, _ int) (bool, error) {
			add(y.Name)
			for name, a := range y.Attributes() {
				if err := a.Validate(); err != nil {
					return false, fmt.Errorf("%s: attribute %q: %w", y.Path(), name, err)
				}
				add(name)
			}
			return true, nil
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func (e *encoder) node(y *resource.Node) error {
	e.w.U32(e.ids[y.Name])
	e.w.U32(uint32(y.AttributeCount()))
	e.w.U32(uint32(len(y.Children)))
	for name, a := range y.Attributes() {
		e.w.U32(e.ids[name])
		e.w.U32(uint32(a.Type))
		if err := writeValue(e.w, a); err != nil {
			return fmt.Errorf("attribute %q: %w", name, err)
		}
	}
	for _, child := range y.Children {
		if err := e.node(child); err != nil {
			return err
		}
	}
	return nil
}

func writeValue(w *binutil.Writer, a resource.NodeAttribute) error {
	switch {
	case a.Type.IsWide():
		return binutil.WriteWideString(w, a.Value.(string))
	case a.Type.IsString():
		return binutil.WriteString(w, a.Value.(string))
	case a.Type == resource.DTTranslatedString:
		ts := a.Value.(resource.TranslatedString)
		if err := binutil.WriteString(w, ts.Value); err != nil {
			return err
		}
		return binutil.WriteString(w, ts.Handle)
	case a.Type == resource.DTScratchBuffer:
		return binutil.WriteBuffer(w, a.Value.([]byte))
	default:
		return binutil.WriteAttribute(w, a)
	}
}
