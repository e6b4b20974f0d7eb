package resource

import (
	"encoding/binary"
	"maps"
	"slices"

	"github.com/zeebo/blake3"
)

// Digest returns a BLAKE3 hash of the content of r. Resources that are Equal
// have the same digest regardless of region and attribute order, so digests
// can be compared across formats.
func (r *Resource) Digest() [32]byte {
	d := &digester{h: blake3.New()}
	m := r.Metadata
	d.u64(m.Timestamp)
	d.u64(uint64(m.MajorVersion))
	d.u64(uint64(m.MinorVersion))
	d.u64(uint64(m.Revision))
	d.u64(uint64(m.BuildNumber))

	byName := map[string]*Region{}
	for rgn := range r.Regions() {
		byName[rgn.Name] = rgn
	}
	names := slices.Sorted(maps.Keys(byName))
	d.u64(uint64(len(names)))
	for _, name := range names {
		d.str(name)
		d.node(byName[name].Root)
	}
	var res [32]byte
	copy(res[:], d.h.Sum(nil))
	return res
}

type digester struct {
	h   *blake3.Hasher
	buf []byte
}

func (d *digester) u64(v uint64) {
	d.buf = binary.AppendUvarint(d.buf[:0], v)
	d.h.Write(d.buf)
}

func (d *digester) str(s string) {
	d.u64(uint64(len(s)))
	d.h.Write([]byte(s))
}

func (d *digester) node(n *Node) {
	d.str(n.Name)
	attrs := map[string]NodeAttribute{}
	for name, a := range n.Attributes() {
		attrs[name] = a
	}
	names := slices.Sorted(maps.Keys(attrs))
	d.u64(uint64(len(names)))
	for _, name := range names {
		a := attrs[name]
		d.str(name)
		d.u64(uint64(a.Type))
		// the textual rendering is exact for every kind
		txt, err := FormatValue(a)
		if err != nil {
			txt = a.String()
		}
		d.str(txt)
		if ts, ok := a.Value.(TranslatedString); ok {
			d.str(ts.Handle)
		}
	}
	d.u64(uint64(len(n.Children)))
	for _, c := range n.Children {
		d.node(c)
	}
}
