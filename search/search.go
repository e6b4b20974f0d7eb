// Package search selects nodes of a resource with boolean expressions in
// the expr language (github.com/expr-lang/expr).
//
// An expression is evaluated once per node with these variables:
//
//	name      node name
//	region    name of the region holding the node
//	path      slash separated names from the region root
//	depth     0 for region roots
//	parent    name of the parent node, "" for roots
//	children  number of children
//	attrs     attribute values by name
//	types     attribute type names by name
//
// and these functions:
//
//	hasAttr(attr)    whether the node has the attribute
//	hasChild(name)   whether the node has a child with that name
//
// For example
//
//	name == "Character" && hasAttr("Level") && attrs.Level >= 10
//
// Integer attributes are ints (uint64 values above the int range stay
// uint64), floats are float64, vectors are lists of numbers and
// TranslatedString is its text. Reading a missing attribute yields nil, so
// guard comparisons with hasAttr.
package search

import (
	"fmt"
	"math"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"

	"github.com/signadot/ls-format/go-ls/debug"
	"github.com/signadot/ls-format/go-ls/resource"
)

// Match is a node selected by a query.
type Match struct {
	Region string
	Node   *resource.Node
}

type Config struct {
	Region string
	Limit  int
}

type Opt func(*Config)

// InRegion restricts the search to the named region.
func InRegion(name string) Opt {
	return func(c *Config) { c.Region = name }
}

// Limit stops after n matches. n <= 0 means no limit.
func Limit(n int) Opt {
	return func(c *Config) { c.Limit = n }
}

type Query struct {
	src string
	prg *vm.Program
}

// Compile parses src, which must evaluate to a bool.
func Compile(src string) (*Query, error) {
	prg, err := expr.Compile(src, expr.Env(env(nil, nil, 0)), expr.AsBool())
	if err != nil {
		return nil, fmt.Errorf("invalid query %q: %w", src, err)
	}
	return &Query{src: src, prg: prg}, nil
}

func (q *Query) String() string { return q.src }

// Matches evaluates q on y, a node of region rgn at the given depth.
func (q *Query) Matches(rgn *resource.Region, y *resource.Node, depth int) (bool, error) {
	out, err := expr.Run(q.prg, env(rgn, y, depth))
	if err != nil {
		return false, fmt.Errorf("query %q at %s: %w", q.src, y.Path(), err)
	}
	ok, _ := out.(bool)
	if debug.Search() {
		debug.Logf("search %q on %s: %t\n", q.src, any(y), ok)
	}
	return ok, nil
}

// Find returns the nodes of res matching q in region order, each region
// in depth first pre-order.
func (q *Query) Find(res *resource.Resource, opts ...Opt) ([]Match, error) {
	cfg := &Config{}
	for _, opt := range opts {
		opt(cfg)
	}
	var matches []Match
	done := false
	for rgn := range res.Regions() {
		if done {
			break
		}
		if cfg.Region != "" && rgn.Name != cfg.Region {
			continue
		}
		err := rgn.Root.Walk(func(y *resource.Node, depth int) (bool, error) {
			if done {
				return false, nil
			}
			ok, err := q.Matches(rgn, y, depth)
			if err != nil {
				return false, err
			}
			if ok {
				matches = append(matches, Match{Region: rgn.Name, Node: y})
				done = cfg.Limit > 0 && len(matches) >= cfg.Limit
			}
			return !done, nil
		})
		if err != nil {
			return nil, err
		}
	}
	return matches, nil
}

// Find compiles src and runs it on res.
func Find(res *resource.Resource, src string, opts ...Opt) ([]Match, error) {
	q, err := Compile(src)
	if err != nil {
		return nil, err
	}
	return q.Find(res, opts...)
}

func env(rgn *resource.Region, y *resource.Node, depth int) map[string]any {
	attrs := map[string]any{}
	types := map[string]string{}
	e := map[string]any{
		"name":     "",
		"region":   "",
		"path":     "",
		"depth":    depth,
		"parent":   "",
		"children": 0,
		"attrs":    attrs,
		"types":    types,
		"hasAttr": func(name string) bool {
			_, ok := types[name]
			return ok
		},
		"hasChild": func(name string) bool {
			if y == nil {
				return false
			}
			for _, c := range y.Children {
				if c.Name == name {
					return true
				}
			}
			return false
		},
	}
	if y == nil {
		return e
	}
	e["name"] = y.Name
	e["path"] = y.Path()
	e["children"] = len(y.Children)
	if rgn != nil {
		e["region"] = rgn.Name
	}
	if y.Parent != nil {
		e["parent"] = y.Parent.Name
	}
	for name, a := range y.Attributes() {
		attrs[name] = value(a)
		types[name] = a.Type.String()
	}
	return e
}

func value(a resource.NodeAttribute) any {
	switch v := a.Value.(type) {
	case uint8:
		return int(v)
	case int8:
		return int(v)
	case int16:
		return int(v)
	case uint16:
		return int(v)
	case int32:
		return int(v)
	case uint32:
		return int(v)
	case int64:
		return int(v)
	case uint64:
		if v > math.MaxInt {
			return v
		}
		return int(v)
	case float32:
		return float64(v)
	case resource.TranslatedString:
		return v.Value
	case []int32:
		res := make([]any, len(v))
		for i, x := range v {
			res[i] = int(x)
		}
		return res
	case []float32:
		res := make([]any, len(v))
		for i, x := range v {
			res[i] = float64(x)
		}
		return res
	case []byte:
		s, _ := resource.FormatValue(a)
		return s
	default:
		return v
	}
}
