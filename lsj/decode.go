package lsj

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/oj"
	"github.com/tidwall/jsonc"

	"github.com/signadot/ls-format/go-ls/debug"
	"github.com/signadot/ls-format/go-ls/resource"
)

type valueKind int

const (
	nullValue valueKind = iota
	boolValue
	intValue
	floatValue
	numberValue
	stringValue
	objectValue
	arrayValue
)

func (k valueKind) String() string {
	return [...]string{"null", "bool", "integer", "number", "number", "string", "object", "array"}[k]
}

// value is a parsed JSON value that keeps object members in document
// order.
type value struct {
	kind valueKind
	b    bool
	i    int64
	f    float64
	s    string // strings and numbers too large for int64 or float64
	keys []string
	vals []*value
}

func (v *value) get(key string) *value {
	for i, k := range v.keys {
		if k == key {
			return v.vals[i]
		}
	}
	return nil
}

// builder assembles values from tokenizer callbacks.
type builder struct {
	stack []*value
	key   []string
	root  *value
}

func (b *builder) add(v *value) {
	if len(b.stack) == 0 {
		b.root = v
		return
	}
	top := b.stack[len(b.stack)-1]
	if top.kind == objectValue {
		top.keys = append(top.keys, b.key[len(b.key)-1])
	}
	top.vals = append(top.vals, v)
}

func (b *builder) push(v *value) {
	b.add(v)
	b.stack = append(b.stack, v)
	b.key = append(b.key, "")
}

func (b *builder) pop() {
	b.stack = b.stack[:len(b.stack)-1]
	b.key = b.key[:len(b.key)-1]
}

func (b *builder) Null()             { b.add(&value{kind: nullValue}) }
func (b *builder) Bool(v bool)       { b.add(&value{kind: boolValue, b: v}) }
func (b *builder) Int(v int64)       { b.add(&value{kind: intValue, i: v}) }
func (b *builder) Float(v float64)   { b.add(&value{kind: floatValue, f: v}) }
func (b *builder) Number(num string) { b.add(&value{kind: numberValue, s: num}) }
func (b *builder) String(v string)   { b.add(&value{kind: stringValue, s: v}) }
func (b *builder) Key(k string)      { b.key[len(b.key)-1] = k }
func (b *builder) ObjectStart()      { b.push(&value{kind: objectValue}) }
func (b *builder) ObjectEnd()        { b.pop() }
func (b *builder) ArrayStart()       { b.push(&value{kind: arrayValue}) }
func (b *builder) ArrayEnd()         { b.pop() }

func parse(data []byte) (*value, error) {
	b := &builder{}
	if err := oj.Tokenize(jsonc.ToJSON(data), b); err != nil {
		return nil, resource.FormatErrorf("%v", err)
	}
	if b.root == nil {
		return nil, resource.FormatErrorf("empty document")
	}
	return b.root, nil
}

// Decode reads an LSJ document from r.
func Decode(r io.Reader) (*resource.Resource, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading lsj: %w", err)
	}
	return DecodeBytes(data)
}

func DecodeBytes(data []byte) (*resource.Resource, error) {
	doc, err := parse(data)
	if err != nil {
		return nil, err
	}
	if doc.kind != objectValue {
		return nil, resource.FormatErrorf("document is a %s, expected an object", doc.kind)
	}
	save := doc.get("save")
	if save == nil || save.kind != objectValue {
		return nil, resource.FormatErrorf(`missing "save" object`)
	}
	res := resource.NewResource()
	if hdr := save.get("header"); hdr != nil {
		if err := header(hdr, &res.Metadata); err != nil {
			return nil, err
		}
	}
	regions := save.get("regions")
	if regions == nil {
		return res, nil
	}
	if regions.kind != objectValue {
		return nil, resource.FormatErrorf(`"regions" is a %s, expected an object`, regions.kind)
	}
	for i, name := range regions.keys {
		rv := regions.vals[i]
		if rv.kind != objectValue || len(rv.keys) != 1 {
			return nil, resource.FormatErrorf("region %q must be an object with a single root node", name)
		}
		root, err := node(rv.keys[0], rv.vals[0], 0)
		if err != nil {
			return nil, fmt.Errorf("region %q: %w", name, err)
		}
		if debug.LSJ() {
			debug.Logf("lsj: region %q root %q\n", name, root.Name)
		}
		res.AddRegion(name, root)
	}
	return res, nil
}

func header(hdr *value, md *resource.Metadata) error {
	if hdr.kind != objectValue {
		return resource.FormatErrorf(`"header" is a %s, expected an object`, hdr.kind)
	}
	if v := hdr.get("version"); v != nil {
		if v.kind != stringValue {
			return resource.FormatErrorf("header version is a %s, expected a string", v.kind)
		}
		parts := strings.Split(v.s, ".")
		ps := []*uint32{&md.MajorVersion, &md.MinorVersion, &md.Revision, &md.BuildNumber}
		if len(parts) > len(ps) {
			return resource.FormatErrorf("bad header version %q", v.s)
		}
		for i, p := range parts {
			n, err := strconv.ParseUint(p, 10, 32)
			if err != nil {
				return resource.FormatErrorf("bad header version %q", v.s)
			}
			*ps[i] = uint32(n)
		}
	}
	if t := hdr.get("time"); t != nil {
		switch {
		case t.kind == intValue && t.i >= 0:
			md.Timestamp = uint64(t.i)
		case t.kind == numberValue || t.kind == stringValue:
			n, err := strconv.ParseUint(t.s, 10, 64)
			if err != nil {
				return resource.FormatErrorf("bad header time %q", t.s)
			}
			md.Timestamp = n
		default:
			return resource.FormatErrorf("bad header time")
		}
	}
	return nil
}

// maxDepth bounds recursion on hostile input.
const maxDepth = 1 << 12

func node(name string, v *value, depth int) (*resource.Node, error) {
	if depth > maxDepth {
		return nil, resource.FormatErrorf("nodes nested deeper than %d", maxDepth)
	}
	if v.kind != objectValue {
		return nil, resource.FormatErrorf("node %q is a %s, expected an object", name, v.kind)
	}
	y := resource.NewNode(name)
	for i, key := range v.keys {
		member := v.vals[i]
		switch member.kind {
		case objectValue:
			a, err := attribute(member)
			if err != nil {
				return nil, fmt.Errorf("node %q: attribute %q: %w", name, key, err)
			}
			y.SetAttribute(key, a)
		case arrayValue:
			for _, cv := range member.vals {
				child, err := node(key, cv, depth+1)
				if err != nil {
					return nil, fmt.Errorf("node %q: %w", name, err)
				}
				y.AppendChild(child)
			}
		default:
			return nil, resource.FormatErrorf("node %q: member %q is a %s, expected an attribute object or a child array", name, key, member.kind)
		}
	}
	return y, nil
}

func attribute(v *value) (resource.NodeAttribute, error) {
	tv := v.get("type")
	if tv == nil {
		return resource.NodeAttribute{}, resource.FormatErrorf("missing type")
	}
	var ts string
	switch tv.kind {
	case stringValue:
		ts = tv.s
	case intValue:
		ts = strconv.FormatInt(tv.i, 10)
	default:
		return resource.NodeAttribute{}, resource.FormatErrorf("type is a %s", tv.kind)
	}
	t, err := resource.ParseDataType(ts)
	if err != nil {
		return resource.NodeAttribute{}, err
	}
	handle := ""
	if hv := v.get("handle"); hv != nil {
		if hv.kind != stringValue {
			return resource.NodeAttribute{}, resource.FormatErrorf("handle is a %s", hv.kind)
		}
		handle = hv.s
	}
	val := v.get("value")
	if val == nil {
		val = &value{kind: nullValue}
	}
	return convert(t, val, handle)
}

func convert(t resource.DataType, v *value, handle string) (resource.NodeAttribute, error) {
	a := resource.NodeAttribute{Type: t}
	switch v.kind {
	case nullValue:
		if t == resource.DTNone {
			return a, nil
		}
	case boolValue:
		if t == resource.DTBool {
			a.Value = v.b
			return a, nil
		}
	case floatValue:
		switch t {
		case resource.DTDouble:
			a.Value = v.f
			return a, nil
		}
		return resource.ParseAttribute(t, strconv.FormatFloat(v.f, 'g', -1, 64), handle)
	case intValue:
		return resource.ParseAttribute(t, strconv.FormatInt(v.i, 10), handle)
	case numberValue, stringValue:
		return resource.ParseAttribute(t, v.s, handle)
	case arrayValue:
		parts := make([]string, len(v.vals))
		for i, e := range v.vals {
			switch e.kind {
			case intValue:
				parts[i] = strconv.FormatInt(e.i, 10)
			case floatValue:
				parts[i] = strconv.FormatFloat(e.f, 'g', -1, 64)
			case numberValue:
				parts[i] = e.s
			default:
				return a, resource.FormatErrorf("%s element is a %s", t, e.kind)
			}
		}
		return resource.ParseAttribute(t, strings.Join(parts, " "), handle)
	}
	return a, resource.FormatErrorf("%s value cannot be a %s", t, v.kind)
}
