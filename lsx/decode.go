package lsx

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/signadot/ls-format/go-ls/debug"
	"github.com/signadot/ls-format/go-ls/resource"
)

type decoder struct {
	x *xml.Decoder
}

// Decode reads an LSX document from r.
func Decode(r io.Reader) (*resource.Resource, error) {
	d := &decoder{x: xml.NewDecoder(r)}
	return d.document()
}

func (d *decoder) errorf(format string, args ...any) error {
	return resource.FormatErrorAt(d.x.InputOffset(), format, args...)
}

// next returns the next element boundary, skipping text, comments and
// processing instructions. io.EOF is returned only at the end of input.
func (d *decoder) next() (xml.Token, error) {
	for {
		tok, err := d.x.Token()
		if err != nil {
			var se *xml.SyntaxError
			if errors.As(err, &se) {
				return nil, d.errorf("line %d: %s", se.Line, se.Msg)
			}
			if err == io.EOF {
				return nil, err
			}
			return nil, fmt.Errorf("reading lsx: %w", err)
		}
		switch t := tok.(type) {
		case xml.StartElement, xml.EndElement:
			return t, nil
		}
	}
}

// nextIn is next within an open element, where end of input is an error.
func (d *decoder) nextIn(elt string) (xml.Token, error) {
	tok, err := d.next()
	if err == io.EOF {
		return nil, d.errorf("unexpected end of document in <%s>", elt)
	}
	return tok, err
}

func (d *decoder) skip() error {
	if err := d.x.Skip(); err != nil {
		var se *xml.SyntaxError
		if errors.As(err, &se) || err == io.EOF {
			return d.errorf("%v", err)
		}
		return fmt.Errorf("reading lsx: %w", err)
	}
	return nil
}

// cause strips the format error prefix from err so it can be re-reported
// with a position.
func cause(err error) string {
	var fe *resource.FormatError
	if errors.As(err, &fe) {
		return fe.Msg
	}
	return err.Error()
}

func attr(se xml.StartElement, name string) (string, bool) {
	for _, a := range se.Attr {
		if a.Name.Local == name {
			return a.Value, true
		}
	}
	return "", false
}

func (d *decoder) document() (*resource.Resource, error) {
	tok, err := d.next()
	if err == io.EOF {
		return nil, d.errorf("empty document")
	}
	if err != nil {
		return nil, err
	}
	se, ok := tok.(xml.StartElement)
	if !ok || se.Name.Local != "save" {
		return nil, d.errorf("expected <save>, got %v", tok)
	}
	res := resource.NewResource()
	for {
		tok, err := d.nextIn("save")
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			break
		}
		switch se.Name.Local {
		case "header":
			if err := d.header(se, &res.Metadata); err != nil {
				return nil, err
			}
		case "version":
			if err := d.version(se, &res.Metadata); err != nil {
				return nil, err
			}
		case "region":
			if err := d.region(se, res); err != nil {
				return nil, err
			}
		default:
			if err := d.skip(); err != nil {
				return nil, err
			}
		}
	}
	if tok, err := d.next(); err != io.EOF {
		if err != nil {
			return nil, err
		}
		return nil, d.errorf("unexpected %v after </save>", tok)
	}
	return res, nil
}

func (d *decoder) header(se xml.StartElement, md *resource.Metadata) error {
	if s, ok := attr(se, "time"); ok && s != "" {
		t, err := strconv.ParseUint(s, 10, 64)
		if err != nil {
			return d.errorf("bad header time %q", s)
		}
		md.Timestamp = t
	}
	return d.skip()
}

func (d *decoder) version(se xml.StartElement, md *resource.Metadata) error {
	fields := []struct {
		name string
		p    *uint32
	}{
		{"major", &md.MajorVersion},
		{"minor", &md.MinorVersion},
		{"revision", &md.Revision},
		{"build", &md.BuildNumber},
	}
	for _, f := range fields {
		s, ok := attr(se, f.name)
		if !ok {
			continue
		}
		v, err := strconv.ParseUint(s, 10, 32)
		if err != nil {
			return d.errorf("bad version %s %q", f.name, s)
		}
		*f.p = uint32(v)
	}
	return d.skip()
}

func (d *decoder) region(se xml.StartElement, res *resource.Resource) error {
	id, ok := attr(se, "id")
	if !ok {
		return d.errorf("region without id")
	}
	var root *resource.Node
	for {
		tok, err := d.nextIn("region")
		if err != nil {
			return err
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			break
		}
		if se.Name.Local != "node" {
			if err := d.skip(); err != nil {
				return err
			}
			continue
		}
		if root != nil {
			return d.errorf("region %q has more than one root node", id)
		}
		if root, err = d.node(se, 0); err != nil {
			return fmt.Errorf("region %q: %w", id, err)
		}
	}
	if root == nil {
		return d.errorf("region %q has no root node", id)
	}
	if debug.LSX() {
		debug.Logf("lsx: region %q root %q\n", id, root.Name)
	}
	res.AddRegion(id, root)
	return nil
}

// maxDepth bounds recursion on hostile input.
const maxDepth = 1 << 12

func (d *decoder) node(se xml.StartElement, depth int) (*resource.Node, error) {
	if depth > maxDepth {
		return nil, d.errorf("nodes nested deeper than %d", maxDepth)
	}
	id, ok := attr(se, "id")
	if !ok {
		return nil, d.errorf("node without id")
	}
	y := resource.NewNode(id)
	for {
		tok, err := d.nextIn("node")
		if err != nil {
			return nil, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			return y, nil
		}
		switch se.Name.Local {
		case "attribute":
			if err := d.attribute(se, y); err != nil {
				return nil, err
			}
		case "children":
			if err := d.children(y, depth); err != nil {
				return nil, err
			}
		default:
			if err := d.skip(); err != nil {
				return nil, err
			}
		}
	}
}

func (d *decoder) children(y *resource.Node, depth int) error {
	for {
		tok, err := d.nextIn("children")
		if err != nil {
			return err
		}
		se, ok := tok.(xml.StartElement)
		if !ok {
			return nil
		}
		if se.Name.Local != "node" {
			if err := d.skip(); err != nil {
				return err
			}
			continue
		}
		child, err := d.node(se, depth+1)
		if err != nil {
			return err
		}
		y.AppendChild(child)
	}
}

func (d *decoder) attribute(se xml.StartElement, y *resource.Node) error {
	id, ok := attr(se, "id")
	if !ok {
		return d.errorf("attribute of node %q without id", y.Name)
	}
	ts, ok := attr(se, "type")
	if !ok {
		return d.errorf("attribute %q without type", id)
	}
	t, err := resource.ParseDataType(ts)
	if err != nil {
		return d.errorf("attribute %q: %s", id, cause(err))
	}
	value, _ := attr(se, "value")
	handle, _ := attr(se, "handle")
	a, err := resource.ParseAttribute(t, value, handle)
	if err != nil {
		return d.errorf("attribute %q: %s", id, cause(err))
	}
	y.SetAttribute(id, a)
	return d.skip()
}
