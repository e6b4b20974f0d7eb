package lsj

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/ohler55/ojg/oj"

	"github.com/signadot/ls-format/go-ls/format"
	"github.com/signadot/ls-format/go-ls/resource"
)

type encState struct {
	w      *bufio.Writer
	pretty bool
}

func encode(w io.Writer, res *resource.Resource, c *Codec) error {
	if _, err := format.LSJFormat.Resolve(c.Version); err != nil {
		return err
	}
	if err := validate(res); err != nil {
		return err
	}
	es := &encState{w: bufio.NewWriter(w), pretty: c.Pretty}
	md := res.Metadata
	es.open('{')
	es.key(1, "save")
	es.open('{')
	es.key(2, "header")
	es.open('{')
	es.key(3, "version")
	es.str(fmt.Sprintf("%d.%d.%d.%d", md.MajorVersion, md.MinorVersion, md.Revision, md.BuildNumber))
	es.comma()
	es.key(3, "time")
	if md.Timestamp > math.MaxInt64 {
		es.str(strconv.FormatUint(md.Timestamp, 10))
	} else {
		es.w.WriteString(strconv.FormatUint(md.Timestamp, 10))
	}
	es.close(2, '}')
	es.comma()
	es.key(2, "regions")
	es.open('{')
	first := true
	for rgn := range res.Regions() {
		if !first {
			es.comma()
		}
		first = false
		es.key(3, rgn.Name)
		es.open('{')
		es.key(4, rgn.Root.Name)
		if err := es.node(rgn.Root, 4); err != nil {
			return fmt.Errorf("region %q: %w", rgn.Name, err)
		}
		es.close(3, '}')
	}
	if first {
		es.w.WriteByte('}')
	} else {
		es.close(2, '}')
	}
	es.close(1, '}')
	es.close(0, '}')
	if es.pretty {
		es.w.WriteByte('\n')
	}
	if err := es.w.Flush(); err != nil {
		return fmt.Errorf("writing lsj: %w", err)
	}
	return nil
}

func validate(res *resource.Resource) error {
	return res.Walk(func(_ *resource.Region, y *resource.Node, _ int) (bool, error) {
		for name, a := range y.Attributes() {
			if err := a.Validate(); err != nil {
				return false, fmt.Errorf("%s: attribute %q: %w", y.Path(), name, err)
			}
		}
		return true, nil
	})
}

type group struct {
	name  string
	nodes []*resource.Node
}

// groups partitions children by name in order of first appearance.
func groups(children []*resource.Node) []*group {
	var res []*group
	byName := map[string]*group{}
	for _, c := range children {
		g := byName[c.Name]
		if g == nil {
			g = &group{name: c.Name}
			byName[c.Name] = g
			res = append(res, g)
		}
		g.nodes = append(g.nodes, c)
	}
	return res
}

func (es *encState) node(y *resource.Node, depth int) error {
	if y.AttributeCount() == 0 && len(y.Children) == 0 {
		es.w.WriteString("{}")
		return nil
	}
	es.open('{')
	first := true
	next := func(key string) {
		if !first {
			es.comma()
		}
		first = false
		es.key(depth+1, key)
	}
	for name, a := range y.Attributes() {
		next(name)
		if err := es.attribute(a, depth+1); err != nil {
			return fmt.Errorf("attribute %q: %w", name, err)
		}
	}
	for _, g := range groups(y.Children) {
		next(g.name)
		es.open('[')
		for i, c := range g.nodes {
			if i > 0 {
				es.comma()
			}
			es.indent(depth + 2)
			if err := es.node(c, depth+2); err != nil {
				return err
			}
		}
		es.close(depth+1, ']')
	}
	es.close(depth, '}')
	return nil
}

func (es *encState) attribute(a resource.NodeAttribute, depth int) error {
	es.open('{')
	es.key(depth+1, "type")
	es.str(a.Type.String())
	es.comma()
	es.key(depth+1, "value")
	if err := es.value(a); err != nil {
		return err
	}
	if ts, ok := a.Value.(resource.TranslatedString); ok {
		es.comma()
		es.key(depth+1, "handle")
		es.str(ts.Handle)
	}
	es.close(depth, '}')
	return nil
}

func (es *encState) value(a resource.NodeAttribute) error {
	switch v := a.Value.(type) {
	case nil:
		es.w.WriteString("null")
	case bool:
		es.w.WriteString(strconv.FormatBool(v))
	case float32:
		es.float(float64(v), 32)
	case float64:
		es.float(v, 64)
	case uint64:
		// beyond int64, JSON readers commonly lose precision
		if v > math.MaxInt64 {
			es.str(strconv.FormatUint(v, 10))
		} else {
			es.w.WriteString(strconv.FormatUint(v, 10))
		}
	case uint8, int8, int16, uint16, int32, uint32, int64:
		es.w.WriteString(fmt.Sprint(v))
	case string:
		es.str(v)
	case resource.TranslatedString:
		es.str(v.Value)
	default:
		s, err := resource.FormatValue(a)
		if err != nil {
			return err
		}
		es.str(s)
	}
	return nil
}

// float writes finite values as numbers and the rest as the strings
// "NaN", "+Inf" and "-Inf". Negative zero is written as the string "-0":
// as a number it reads back as the integer 0.
func (es *encState) float(f float64, bits int) {
	s := strconv.FormatFloat(f, 'g', -1, bits)
	if math.IsNaN(f) || math.IsInf(f, 0) || (f == 0 && math.Signbit(f)) {
		es.str(s)
		return
	}
	es.w.WriteString(s)
}

func (es *encState) str(s string) {
	es.w.WriteString(oj.JSON(s))
}

func (es *encState) key(depth int, k string) {
	es.indent(depth)
	es.str(k)
	es.w.WriteByte(':')
	if es.pretty {
		es.w.WriteByte(' ')
	}
}

func (es *encState) open(c byte) {
	es.w.WriteByte(c)
}

func (es *encState) close(depth int, c byte) {
	es.indent(depth)
	es.w.WriteByte(c)
}

func (es *encState) comma() {
	es.w.WriteByte(',')
}

func (es *encState) indent(depth int) {
	if es.pretty {
		es.w.WriteByte('\n')
		es.w.WriteString(strings.Repeat("  ", depth))
	}
}
