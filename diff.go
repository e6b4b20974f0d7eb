package ls

import (
	"bytes"
	"strings"

	diffpatch "github.com/sergi/go-diff/diffmatchpatch"

	"github.com/signadot/ls-format/go-ls/format"
	"github.com/signadot/ls-format/go-ls/lsx"
	"github.com/signadot/ls-format/go-ls/resource"
)

// TextDiff compares the pretty LSX renderings of from and to line by line.
// Removed lines are prefixed "- ", added ones "+ " and unchanged ones are
// omitted. The result is "" when the renderings are identical.
func TextDiff(from, to *resource.Resource) (string, error) {
	a, err := render(from)
	if err != nil {
		return "", err
	}
	b, err := render(to)
	if err != nil {
		return "", err
	}
	if a == b {
		return "", nil
	}
	dmp := diffpatch.New()
	ca, cb, lines := dmp.DiffLinesToChars(a, b)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(ca, cb, false), lines)
	buf := &strings.Builder{}
	for _, d := range diffs {
		prefix := ""
		switch d.Type {
		case diffpatch.DiffDelete:
			prefix = "- "
		case diffpatch.DiffInsert:
			prefix = "+ "
		default:
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			buf.WriteString(prefix)
			buf.WriteString(line)
			if !strings.HasSuffix(line, "\n") {
				buf.WriteByte('\n')
			}
		}
	}
	return buf.String(), nil
}

func render(res *resource.Resource) (string, error) {
	buf := bytes.NewBuffer(nil)
	if err := lsx.Encode(buf, res, lsx.WithVersion(format.LSXVersion3)); err != nil {
		return "", err
	}
	return buf.String(), nil
}
