package lsf

import (
	"hash/fnv"
	"math"

	"github.com/signadot/ls-format/go-ls/binutil"
	"github.com/signadot/ls-format/go-ls/resource"
)

const stringBuckets = 512

// stringTable interns names for one encode.
type stringTable struct {
	buckets [stringBuckets][]string
	refs    map[string]uint32
}

func newStringTable() *stringTable {
	return &stringTable{refs: map[string]uint32{}}
}

func (t *stringTable) ref(s string) (uint32, error) {
	if ref, ok := t.refs[s]; ok {
		return ref, nil
	}
	if len(s) > math.MaxUint16 {
		return 0, resource.FormatErrorf("name of %d bytes is too long", len(s))
	}
	h := fnv.New32a()
	h.Write([]byte(s))
	b := h.Sum32() % stringBuckets
	idx := len(t.buckets[b])
	if idx >= math.MaxUint16 {
		return 0, resource.FormatErrorf("too many names in bucket %d", b)
	}
	t.buckets[b] = append(t.buckets[b], s)
	ref := b<<16 | uint32(idx)
	t.refs[s] = ref
	return ref, nil
}

func (t *stringTable) write(w *binutil.Writer) {
	w.U32(stringBuckets)
	for _, b := range t.buckets {
		w.U16(uint16(len(b)))
		for _, s := range b {
			w.U16(uint16(len(s)))
			w.Write([]byte(s))
		}
	}
}

// names is a decoded string table.
type names [][]string

func readNames(r *binutil.Reader) (names, error) {
	n, err := r.U32()
	if err != nil {
		return nil, err
	}
	if n > 1<<16 || int(n)*2 > r.Remaining() {
		return nil, resource.FormatErrorAt(0, "invalid bucket count %d", n)
	}
	res := make(names, n)
	for i := range res {
		count, err := r.U16()
		if err != nil {
			return nil, err
		}
		bucket := make([]string, 0, min(int(count), r.Remaining()/2))
		for range count {
			l, err := r.U16()
			if err != nil {
				return nil, err
			}
			b, err := r.Bytes(int(l))
			if err != nil {
				return nil, err
			}
			bucket = append(bucket, string(b))
		}
		res[i] = bucket
	}
	if r.Remaining() != 0 {
		return nil, resource.FormatErrorAt(r.Pos(), "%d unused bytes", r.Remaining())
	}
	return res, nil
}

func (ns names) lookup(ref uint32, at int64) (string, error) {
	b, i := ref>>16, ref&0xffff
	if int(b) >= len(ns) || int(i) >= len(ns[b]) {
		return "", resource.FormatErrorAt(at, "name not found: reference %#x", ref)
	}
	return ns[b][i], nil
}
