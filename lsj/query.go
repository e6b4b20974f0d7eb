package lsj

import (
	"bytes"
	"fmt"

	jsonpatch "github.com/evanphx/json-patch"
	"github.com/ohler55/ojg/jp"
	"github.com/ohler55/ojg/oj"

	"github.com/signadot/ls-format/go-ls/resource"
)

// ToJSON returns the compact LSJ encoding of res.
func ToJSON(res *resource.Resource) ([]byte, error) {
	buf := bytes.NewBuffer(nil)
	if err := Encode(buf, res, WithPretty(false)); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Query evaluates a JSONPath expression against the LSJ form of res, for
// example
//
//	$.save.regions.Config.root.Item[*].Index.value
func Query(res *resource.Resource, path string) ([]any, error) {
	x, err := jp.ParseString(path)
	if err != nil {
		return nil, fmt.Errorf("invalid jsonpath %q: %w", path, err)
	}
	data, err := ToJSON(res)
	if err != nil {
		return nil, err
	}
	doc, err := oj.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("parsing lsj: %w", err)
	}
	return x.Get(doc), nil
}

// Patch applies an RFC 6902 JSON patch to the LSJ form of res and decodes
// the result. Object members are not kept in order by the patcher, so
// children of different names may be regrouped in name order.
func Patch(res *resource.Resource, patch []byte) (*resource.Resource, error) {
	ops, err := jsonpatch.DecodePatch(patch)
	if err != nil {
		return nil, fmt.Errorf("decoding patch: %w", err)
	}
	data, err := ToJSON(res)
	if err != nil {
		return nil, err
	}
	out, err := ops.Apply(data)
	if err != nil {
		return nil, fmt.Errorf("applying patch: %w", err)
	}
	return DecodeBytes(out)
}
