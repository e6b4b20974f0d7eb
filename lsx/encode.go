package lsx

import (
	"bufio"
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/signadot/ls-format/go-ls/format"
	"github.com/signadot/ls-format/go-ls/resource"
)

const xmlDecl = `<?xml version="1.0" encoding="utf-8"?>`

type encState struct {
	w       *bufio.Writer
	version format.Version
	pretty  bool
	colors  *Colors
}

func encode(w io.Writer, res *resource.Resource, c *Codec) error {
	v, err := format.LSXFormat.Resolve(c.Version)
	if err != nil {
		return err
	}
	if err := validate(res); err != nil {
		return err
	}
	es := &encState{w: bufio.NewWriter(w), version: v, pretty: c.Pretty, colors: c.Colors}
	if es.colors == nil {
		es.colors = &Colors{Default: colorDefault}
	}
	es.w.WriteString(xmlDecl)
	es.newline()
	es.open(0, "save", false)
	md := res.Metadata
	es.open(1, "header", true,
		"version", strconv.FormatUint(uint64(v), 10),
		"time", strconv.FormatUint(md.Timestamp, 10))
	es.open(1, "version", true,
		"major", strconv.FormatUint(uint64(md.MajorVersion), 10),
		"minor", strconv.FormatUint(uint64(md.MinorVersion), 10),
		"revision", strconv.FormatUint(uint64(md.Revision), 10),
		"build", strconv.FormatUint(uint64(md.BuildNumber), 10))
	for rgn := range res.Regions() {
		es.open(1, "region", false, "id", rgn.Name)
		if err := es.node(rgn.Root, 2); err != nil {
			return fmt.Errorf("region %q: %w", rgn.Name, err)
		}
		es.close(1, "region")
	}
	es.close(0, "save")
	if err := es.w.Flush(); err != nil {
		return fmt.Errorf("writing lsx: %w", err)
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

func (es *encState) node(y *resource.Node, depth int) error {
	empty := y.AttributeCount() == 0 && len(y.Children) == 0
	es.open(depth, "node", empty, "id", y.Name)
	if empty {
		return nil
	}
	for name, a := range y.Attributes() {
		if err := es.attribute(depth+1, name, a); err != nil {
			return err
		}
	}
	if len(y.Children) != 0 {
		es.open(depth+1, "children", false)
		for _, child := range y.Children {
			if err := es.node(child, depth+2); err != nil {
				return err
			}
		}
		es.close(depth+1, "children")
	}
	es.close(depth, "node")
	return nil
}

func (es *encState) attribute(depth int, name string, a resource.NodeAttribute) error {
	value, err := resource.FormatValue(a)
	if err != nil {
		return fmt.Errorf("attribute %q: %w", name, err)
	}
	typ := strconv.FormatUint(uint64(a.Type), 10)
	if es.version >= format.LSXVersion3 {
		typ = a.Type.String()
	}
	es.indent(depth)
	es.punct("<")
	es.w.WriteString(es.colors.Color(resource.DTNone, ElementColor, "attribute"))
	es.attr(resource.DTNone, IDColor, "id", name)
	es.attr(a.Type, ValueColor, "value", value)
	es.attr(a.Type, TypeColor, "type", typ)
	if ts, ok := a.Value.(resource.TranslatedString); ok {
		es.attr(a.Type, ValueColor, "handle", ts.Handle)
	}
	es.punct(" />")
	es.newline()
	return nil
}

// open writes a start tag with the given key value pairs. self closes it.
func (es *encState) open(depth int, elt string, self bool, kvs ...string) {
	es.indent(depth)
	es.punct("<")
	es.w.WriteString(es.colors.Color(resource.DTNone, ElementColor, elt))
	for i := 0; i+1 < len(kvs); i += 2 {
		c := ValueColor
		if kvs[i] == "id" {
			c = IDColor
		}
		es.attr(resource.DTNone, c, kvs[i], kvs[i+1])
	}
	if self {
		es.punct(" />")
	} else {
		es.punct(">")
	}
	es.newline()
}

func (es *encState) close(depth int, elt string) {
	es.indent(depth)
	es.punct("</")
	es.w.WriteString(es.colors.Color(resource.DTNone, ElementColor, elt))
	es.punct(">")
	es.newline()
}

func (es *encState) attr(t resource.DataType, c ColorAttr, key, value string) {
	es.w.WriteByte(' ')
	es.w.WriteString(es.colors.Color(resource.DTNone, KeyColor, key))
	es.punct(`="`)
	es.w.WriteString(es.colors.Color(t, c, escape(value)))
	es.punct(`"`)
}

func (es *encState) punct(s string) {
	es.w.WriteString(es.colors.Color(resource.DTNone, PunctColor, s))
}

func (es *encState) indent(depth int) {
	if es.pretty {
		es.w.WriteString(strings.Repeat("\t", depth))
	}
}

func (es *encState) newline() {
	if es.pretty {
		es.w.WriteByte('\n')
	}
}

func escape(s string) string {
	buf := &strings.Builder{}
	xml.EscapeText(buf, []byte(s))
	return buf.String()
}
