package ls

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/signadot/ls-format/go-ls/debug"
	"github.com/signadot/ls-format/go-ls/format"
	"github.com/signadot/ls-format/go-ls/resource"
)

// Load reads the resource at path, choosing the format from its extension.
func Load(path string) (*resource.Resource, error) {
	f, err := format.ExtensionToFormat(path)
	if err != nil {
		return nil, err
	}
	return LoadFormat(path, f)
}

func LoadFormat(path string, f format.Format) (*resource.Resource, error) {
	c, err := NewCodec(f)
	if err != nil {
		return nil, err
	}
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer file.Close()
	res, err := c.Decode(bufio.NewReader(file))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return res, nil
}

// Save writes res to path in the format named by its extension.
func Save(res *resource.Resource, path string, opts ...Option) error {
	f, err := format.ExtensionToFormat(path)
	if err != nil {
		return err
	}
	return SaveFormat(res, path, f, opts...)
}

// SaveFormat writes res to path in format f. Missing directories are
// created. The file is written under a temporary name in the same
// directory and renamed into place, so path is never left half written.
func SaveFormat(res *resource.Resource, path string, f format.Format, opts ...Option) (err error) {
	c, err := NewCodec(f, opts...)
	if err != nil {
		return err
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return err
	}
	defer func() {
		if err != nil {
			os.Remove(tmp.Name())
		}
	}()
	w := bufio.NewWriter(tmp)
	if err = c.Encode(w, res); err != nil {
		tmp.Close()
		return fmt.Errorf("%s: %w", path, err)
	}
	err = errors.Join(w.Flush(), tmp.Close())
	if err != nil {
		return err
	}
	if err = os.Chmod(tmp.Name(), 0o644); err != nil {
		return err
	}
	if debug.Convert() {
		debug.Logf("save %s as %s\n", path, f)
	}
	return os.Rename(tmp.Name(), path)
}
