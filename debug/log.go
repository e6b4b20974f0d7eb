package debug

import (
	"fmt"
	"os"

	"github.com/signadot/ls-format/go-ls/resource"
)

// Logf writes to stderr, rendering nodes by path and attributes by their
// textual value.
func Logf(msg string, args ...any) {
	for i := range args {
		switch x := args[i].(type) {
		case *resource.Node:
			if x == nil {
				args[i] = "<nil node>"
				continue
			}
			args[i] = x.Path()
		case *resource.Region:
			args[i] = fmt.Sprintf("region %q (root %q)", x.Name, x.Root.Name)
		case resource.NodeAttribute:
			args[i] = x.String()
		default:
		}
	}
	fmt.Fprintf(os.Stderr, msg, args...)
}
