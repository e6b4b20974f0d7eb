package lsb

import (
	"fmt"
	"io"

	"github.com/signadot/ls-format/go-ls/binutil"
	"github.com/signadot/ls-format/go-ls/debug"
	"github.com/signadot/ls-format/go-ls/resource"
)

type decoder struct {
	r       *binutil.Reader
	strings map[uint32]string
}

// Decode reads an LSB resource from r. The whole stream is read before
// parsing so that the declared size can be checked first.
func Decode(r io.Reader) (*resource.Resource, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading lsb: %w", err)
	}
	return DecodeBytes(data)
}

func DecodeBytes(data []byte) (*resource.Resource, error) {
	d := &decoder{
		r:       binutil.NewReader(data),
		strings: map[uint32]string{},
	}
	res := resource.NewResource()
	if err := d.header(&res.Metadata); err != nil {
		return nil, err
	}
	if err := d.staticStrings(); err != nil {
		return nil, err
	}
	if err := d.regions(res); err != nil {
		return nil, err
	}
	return res, nil
}

func (d *decoder) header(md *resource.Metadata) error {
	sig, err := d.r.U32()
	if err != nil {
		return err
	}
	if sig != Signature {
		return resource.FormatErrorAt(0, "illegal signature in header; expected %#x, got %#x", Signature, sig)
	}
	size, err := d.r.U32()
	if err != nil {
		return err
	}
	if int64(size) != d.r.Len() {
		return resource.FormatErrorAt(4, "invalid LSB file size; expected %d, got %d", size, d.r.Len())
	}
	bigEndian, err := d.r.U32()
	if err != nil {
		return err
	}
	if bigEndian != 0 {
		return resource.FormatErrorAt(8, "big-endian LSB files are not supported")
	}
	if _, err := d.r.U32(); err != nil {
		return err
	}
	if md.Timestamp, err = d.r.U64(); err != nil {
		return err
	}
	for _, p := range []*uint32{&md.MajorVersion, &md.MinorVersion, &md.Revision, &md.BuildNumber} {
		if *p, err = d.r.U32(); err != nil {
			return err
		}
	}
	return nil
}

func (d *decoder) staticStrings() error {
	n, err := d.r.U32()
	if err != nil {
		return err
	}
	for range n {
		s, err := binutil.ReadString(d.r, false)
		if err != nil {
			return err
		}
		at := d.r.Pos()
		id, err := d.r.U32()
		if err != nil {
			return err
		}
		if _, dup := d.strings[id]; dup {
			return resource.FormatErrorAt(at, "string ID %d duplicated in static string map", id)
		}
		d.strings[id] = s
	}
	return nil
}

func (d *decoder) lookup(id uint32, at int64) (string, error) {
	s, ok := d.strings[id]
	if !ok {
		return "", resource.FormatErrorAt(at, "name not found: string ID %d", id)
	}
	return s, nil
}

func (d *decoder) regions(res *resource.Resource) error {
	n, err := d.r.U32()
	if err != nil {
		return err
	}
	for range n {
		at := d.r.Pos()
		nameID, err := d.r.U32()
		if err != nil {
			return err
		}
		offset, err := d.r.U32()
		if err != nil {
			return err
		}
		name, err := d.lookup(nameID, at)
		if err != nil {
			return err
		}
		back := d.r.Pos()
		if err := d.r.Seek(int64(offset)); err != nil {
			return err
		}
		root, err := d.node(0)
		if err != nil {
			return fmt.Errorf("region %q: %w", name, err)
		}
		res.AddRegion(name, root)
		if err := d.r.Seek(back); err != nil {
			return err
		}
	}
	return nil
}

// maxDepth bounds recursion on hostile input.
const maxDepth = 1 << 12

func (d *decoder) node(depth int) (*resource.Node, error) {
	at := d.r.Pos()
	if depth > maxDepth {
		return nil, resource.FormatErrorAt(at, "nodes nested deeper than %d", maxDepth)
	}
	var hdr [3]uint32
	for i := range hdr {
		v, err := d.r.U32()
		if err != nil {
			return nil, err
		}
		hdr[i] = v
	}
	name, err := d.lookup(hdr[0], at)
	if err != nil {
		return nil, err
	}
	y := resource.NewNode(name)
	for range hdr[1] {
		if err := d.attribute(y); err != nil {
			return nil, err
		}
	}
	for range hdr[2] {
		child, err := d.node(depth + 1)
		if err != nil {
			return nil, err
		}
		y.AppendChild(child)
	}
	if debug.LSB() {
		debug.Logf("lsb: node %s at %d: %d attributes, %d children\n", any(y), at, hdr[1], hdr[2])
	}
	return y, nil
}

func (d *decoder) attribute(y *resource.Node) error {
	at := d.r.Pos()
	nameID, err := d.r.U32()
	if err != nil {
		return err
	}
	typeID, err := d.r.U32()
	if err != nil {
		return err
	}
	if typeID > uint32(resource.DTMax) {
		return resource.FormatErrorAt(at+4, "unsupported attribute data type: %d", typeID)
	}
	name, err := d.lookup(nameID, at)
	if err != nil {
		return err
	}
	a, err := readValue(d.r, resource.DataType(typeID))
	if err != nil {
		return fmt.Errorf("attribute %q: %w", name, err)
	}
	y.SetAttribute(name, a)
	return nil
}

func readValue(r *binutil.Reader, t resource.DataType) (resource.NodeAttribute, error) {
	a := resource.NodeAttribute{Type: t}
	var err error
	switch {
	case t.IsWide():
		a.Value, err = binutil.ReadWideString(r)
	case t.IsString():
		a.Value, err = binutil.ReadString(r, true)
	case t == resource.DTTranslatedString:
		var ts resource.TranslatedString
		if ts.Value, err = binutil.ReadString(r, true); err != nil {
			return a, err
		}
		ts.Handle, err = binutil.ReadString(r, true)
		a.Value = ts
	case t == resource.DTScratchBuffer:
		a.Value, err = binutil.ReadBuffer(r)
	default:
		return binutil.ReadAttribute(r, t)
	}
	return a, err
}
