package lsf

import (
	"bytes"
	"fmt"
	"io"

	"github.com/signadot/ls-format/go-ls/binutil"
	"github.com/signadot/ls-format/go-ls/debug"
	"github.com/signadot/ls-format/go-ls/format"
	"github.com/signadot/ls-format/go-ls/resource"
)

// maxSection bounds the memory a header can make a decode allocate.
const maxSection = 1 << 30

type section struct {
	size   uint32
	onDisk uint32
}

type header struct {
	version  format.Version
	metadata resource.Metadata
	sections [numSections]section
	method   Method
	level    Level
}

type nodeEntry struct {
	name      string
	parent    int32
	next      int32
	firstAttr int32
}

type regionEntry struct {
	name string
	root uint32
}

func Decode(r io.Reader) (*resource.Resource, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading lsf: %w", err)
	}
	return DecodeBytes(data)
}

func DecodeBytes(data []byte) (*resource.Resource, error) {
	r := binutil.NewReader(data)
	hdr, err := readHeader(r)
	if err != nil {
		return nil, err
	}
	var secs [numSections][]byte
	for i, sec := range hdr.sections {
		at := r.Pos()
		b, err := readSection(r, hdr, sec)
		if err != nil {
			return nil, fmt.Errorf("%s section: %w", sectionNames[i], asFormatError(err, at))
		}
		secs[i] = b
	}
	if r.Remaining() != 0 {
		return nil, resource.FormatErrorAt(r.Pos(), "%d bytes of trailing data", r.Remaining())
	}
	if debug.LSF() {
		debug.Logf("lsf: version %d method %s sections %v\n", hdr.version, hdr.method, hdr.sections)
	}
	ns, err := readNames(binutil.NewReader(secs[secStrings]))
	if err != nil {
		return nil, fmt.Errorf("strings section: %w", err)
	}
	res := resource.NewResource()
	res.Metadata = hdr.metadata
	nodes, firstAttrs, err := readNodes(binutil.NewReader(secs[secNodes]), hdr.version, ns, res)
	if err != nil {
		return nil, fmt.Errorf("nodes section: %w", err)
	}
	if err := readAttributes(secs[secAttributes], secs[secValues], ns, nodes, firstAttrs); err != nil {
		return nil, err
	}
	return res, nil
}

func asFormatError(err error, at int64) error {
	if _, ok := err.(*resource.FormatError); ok {
		return err
	}
	return resource.FormatErrorAt(at, "%v", err)
}

func readHeader(r *binutil.Reader) (*header, error) {
	magic, err := r.U32()
	if err != nil {
		return nil, err
	}
	if magic != Magic {
		return nil, resource.FormatErrorAt(0, "illegal signature in header; expected %#x, got %#x", Magic, magic)
	}
	v, err := r.U32()
	if err != nil {
		return nil, err
	}
	hdr := &header{version: format.Version(v)}
	if _, err := format.LSFFormat.Resolve(hdr.version); err != nil || hdr.version == format.DefaultVersion {
		return nil, resource.FormatErrorAt(4, "unsupported LSF version %d", v)
	}
	md := &hdr.metadata
	if md.Timestamp, err = r.U64(); err != nil {
		return nil, err
	}
	for _, p := range []*uint32{&md.MajorVersion, &md.MinorVersion, &md.Revision, &md.BuildNumber} {
		if *p, err = r.U32(); err != nil {
			return nil, err
		}
	}
	for i := range hdr.sections {
		sec := &hdr.sections[i]
		if sec.size, err = r.U32(); err != nil {
			return nil, err
		}
		if sec.onDisk, err = r.U32(); err != nil {
			return nil, err
		}
		if sec.size > maxSection {
			return nil, resource.FormatErrorAt(r.Pos()-8, "%s section of %d bytes is too large", sectionNames[i], sec.size)
		}
	}
	at := r.Pos()
	flags, err := r.U8()
	if err != nil {
		return nil, err
	}
	if _, err := r.Bytes(7); err != nil {
		return nil, err
	}
	hdr.method = Method(flags & 0x0f)
	hdr.level = Level(flags & 0xf0)
	switch hdr.method {
	case MethodNone, MethodZlib, MethodLZ4:
	case MethodZstd:
		if hdr.version < format.LSFVerChunkedCompress {
			return nil, resource.FormatErrorAt(at, "zstd compression in LSF version %d", hdr.version)
		}
	default:
		return nil, resource.FormatErrorAt(at, "unknown compression method %d", uint8(hdr.method))
	}
	return hdr, nil
}

func readSection(r *binutil.Reader, hdr *header, sec section) ([]byte, error) {
	if sec.onDisk == 0 {
		return r.Bytes(int(sec.size))
	}
	if hdr.method == MethodNone {
		return nil, fmt.Errorf("compressed size %d in an uncompressed file", sec.onDisk)
	}
	raw, err := r.Bytes(int(sec.onDisk))
	if err != nil {
		return nil, err
	}
	return decompressSection(raw, hdr.method, hdr.version, int(sec.size))
}

// readNodes builds the trees of res from the nodes section. It returns the
// nodes by index along with the first attribute index of each.
func readNodes(r *binutil.Reader, v format.Version, ns names, res *resource.Resource) ([]*resource.Node, []int32, error) {
	nRegions, err := r.U32()
	if err != nil {
		return nil, nil, err
	}
	if int64(nRegions) > int64(r.Remaining()/8) {
		return nil, nil, resource.FormatErrorAt(0, "invalid region count %d", nRegions)
	}
	regions := make([]regionEntry, nRegions)
	for i := range regions {
		at := r.Pos()
		ref, err := r.U32()
		if err != nil {
			return nil, nil, err
		}
		if regions[i].name, err = ns.lookup(ref, at); err != nil {
			return nil, nil, err
		}
		if regions[i].root, err = r.U32(); err != nil {
			return nil, nil, err
		}
	}

	entrySize := 12
	if v >= format.LSFVerExtendedNodes {
		entrySize = 16
	}
	nNodes, err := r.U32()
	if err != nil {
		return nil, nil, err
	}
	if int64(nNodes) > int64(r.Remaining()/entrySize) {
		return nil, nil, resource.FormatErrorAt(r.Pos()-4, "invalid node count %d", nNodes)
	}
	entries := make([]nodeEntry, nNodes)
	nodes := make([]*resource.Node, nNodes)
	lastChild := make([]int32, nNodes)
	wantNext := make([]int32, nNodes)
	for i := range entries {
		lastChild[i], wantNext[i] = -1, -1
	}
	for i := range entries {
		at := r.Pos()
		e, err := readNodeEntry(r, v, ns)
		if err != nil {
			return nil, nil, err
		}
		if e.parent < -1 || e.parent >= int32(i) {
			return nil, nil, resource.FormatErrorAt(at, "node %d: parent %d is not an earlier node", i, e.parent)
		}
		entries[i] = e
		y := resource.NewNode(e.name)
		if e.parent >= 0 {
			nodes[e.parent].AppendChild(y)
			if prev := lastChild[e.parent]; prev >= 0 {
				wantNext[prev] = int32(i)
			}
			lastChild[e.parent] = int32(i)
		}
		nodes[i] = y
	}
	if r.Remaining() != 0 {
		return nil, nil, resource.FormatErrorAt(r.Pos(), "%d unused bytes", r.Remaining())
	}
	if v >= format.LSFVerExtendedNodes {
		for i, e := range entries {
			if e.next != wantNext[i] {
				return nil, nil, resource.FormatErrorf("node %d: next sibling %d, expected %d", i, e.next, wantNext[i])
			}
		}
	}

	claimed := make([]bool, nNodes)
	for _, rgn := range regions {
		if rgn.root >= nNodes {
			return nil, nil, resource.FormatErrorf("region %q: root node %d out of range", rgn.name, rgn.root)
		}
		if entries[rgn.root].parent != -1 {
			return nil, nil, resource.FormatErrorf("region %q: root node %d has a parent", rgn.name, rgn.root)
		}
		if claimed[rgn.root] {
			return nil, nil, resource.FormatErrorf("region %q: node %d is the root of another region", rgn.name, rgn.root)
		}
		claimed[rgn.root] = true
		res.AddRegion(rgn.name, nodes[rgn.root])
	}
	for i, e := range entries {
		if e.parent == -1 && !claimed[i] {
			return nil, nil, resource.FormatErrorf("node %d has no parent and no region", i)
		}
	}
	firstAttrs := make([]int32, nNodes)
	for i, e := range entries {
		firstAttrs[i] = e.firstAttr
	}
	return nodes, firstAttrs, nil
}

func readNodeEntry(r *binutil.Reader, v format.Version, ns names) (nodeEntry, error) {
	e := nodeEntry{next: -1}
	at := r.Pos()
	ref, err := r.U32()
	if err != nil {
		return e, err
	}
	if e.name, err = ns.lookup(ref, at); err != nil {
		return e, err
	}
	if e.parent, err = r.I32(); err != nil {
		return e, err
	}
	if v >= format.LSFVerExtendedNodes {
		if e.next, err = r.I32(); err != nil {
			return e, err
		}
	}
	e.firstAttr, err = r.I32()
	return e, err
}

const (
	typeBits = 6
	typeMask = 1<<typeBits - 1
	// maxValueLength is the largest payload the 26 length bits can hold.
	maxValueLength = 1<<(32-typeBits) - 1
)

func readAttributes(attrSec, valueSec []byte, ns names, nodes []*resource.Node, firstAttrs []int32) error {
	r := binutil.NewReader(attrSec)
	vr := binutil.NewReader(valueSec)
	n, err := r.U32()
	if err != nil {
		return fmt.Errorf("attributes section: %w", err)
	}
	if int64(n) > int64(r.Remaining()/12) {
		return fmt.Errorf("attributes section: %w", resource.FormatErrorAt(0, "invalid attribute count %d", n))
	}
	seen := make([]int32, len(nodes))
	for i := range seen {
		seen[i] = -1
	}
	for i := range int32(n) {
		at := r.Pos()
		ref, err := r.U32()
		if err != nil {
			return fmt.Errorf("attributes section: %w", err)
		}
		tl, err := r.U32()
		if err != nil {
			return fmt.Errorf("attributes section: %w", err)
		}
		nodeIdx, err := r.I32()
		if err != nil {
			return fmt.Errorf("attributes section: %w", err)
		}
		name, err := ns.lookup(ref, at)
		if err != nil {
			return fmt.Errorf("attributes section: %w", err)
		}
		t := resource.DataType(tl & typeMask)
		if !t.Valid() {
			return fmt.Errorf("attributes section: %w", resource.FormatErrorAt(at+4, "unsupported attribute data type: %d", uint32(t)))
		}
		if nodeIdx < 0 || int(nodeIdx) >= len(nodes) {
			return fmt.Errorf("attributes section: %w", resource.FormatErrorAt(at+8, "attribute %q: node %d out of range", name, nodeIdx))
		}
		if seen[nodeIdx] == -1 {
			seen[nodeIdx] = i
		}
		vat := vr.Pos()
		payload, err := vr.Bytes(int(tl >> typeBits))
		if err != nil {
			return fmt.Errorf("values section: %w", err)
		}
		a, err := decodeValue(t, payload, vat)
		if err != nil {
			return fmt.Errorf("values section: attribute %q: %w", name, err)
		}
		nodes[nodeIdx].SetAttribute(name, a)
	}
	if r.Remaining() != 0 {
		return fmt.Errorf("attributes section: %w", resource.FormatErrorAt(r.Pos(), "%d unused bytes", r.Remaining()))
	}
	if vr.Remaining() != 0 {
		return fmt.Errorf("values section: %w", resource.FormatErrorAt(vr.Pos(), "%d unused bytes", vr.Remaining()))
	}
	for i, first := range firstAttrs {
		if first != seen[i] {
			return fmt.Errorf("nodes section: %w", resource.FormatErrorf("node %d: first attribute %d, expected %d", i, first, seen[i]))
		}
	}
	return nil
}

func decodeValue(t resource.DataType, payload []byte, at int64) (resource.NodeAttribute, error) {
	a := resource.NodeAttribute{Type: t}
	switch {
	case t.IsString():
		if len(payload) == 0 || payload[len(payload)-1] != 0 {
			return a, resource.FormatErrorAt(at, "unterminated string")
		}
		a.Value = string(bytes.TrimRight(payload, "\x00"))
	case t == resource.DTTranslatedString:
		r := binutil.NewReader(payload)
		var ts resource.TranslatedString
		var err error
		if ts.Value, err = binutil.ReadString(r, true); err != nil {
			return a, err
		}
		if ts.Handle, err = binutil.ReadString(r, true); err != nil {
			return a, err
		}
		if r.Remaining() != 0 {
			return a, resource.FormatErrorAt(at, "%d bytes after translated string", r.Remaining())
		}
		a.Value = ts
	case t == resource.DTScratchBuffer:
		buf := bytes.Clone(payload)
		if buf == nil {
			buf = []byte{}
		}
		a.Value = buf
	default:
		if len(payload) != t.Width() {
			return a, resource.FormatErrorAt(at, "%s value of %d bytes, expected %d", t, len(payload), t.Width())
		}
		return binutil.ReadAttribute(binutil.NewReader(payload), t)
	}
	return a, nil
}
