// Package filex holds small filesystem helpers used by the CLI: resolving the
// download directory, saving downloads atomically and reading upload files.
package filex

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// MaxUploadSize bounds files attached to an upload draft.
const MaxUploadSize = 50 << 20

// EnsureDir creates dir (and parents) if needed and returns its absolute
// path. An empty dir means the current working directory.
func EnsureDir(dir string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("getwd: %w", err)
		}
		return cwd, nil
	}

	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", abs, err)
	}
	return abs, nil
}

// SaveAs streams r into dir/name. Data goes to a temporary file first and is
// renamed into place only when fully written, so a failed transfer never
// leaves a truncated file behind.
func SaveAs(dir, name string, r io.Reader) (string, error) {
	dir, err := EnsureDir(dir)
	if err != nil {
		return "", err
	}

	tmp, err := os.CreateTemp(dir, "."+name+".*.part")
	if err != nil {
		return "", fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := io.Copy(tmp, r); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Chmod(0o644); err != nil {
		_ = tmp.Close()
		return "", fmt.Errorf("chmod %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return "", fmt.Errorf("close %s: %w", name, err)
	}

	dst := filepath.Join(dir, name)
	if err := os.Rename(tmp.Name(), dst); err != nil {
		return "", fmt.Errorf("rename %s: %w", name, err)
	}
	return dst, nil
}

// ReadUpload loads a file to be attached to an upload and returns its base
// name and content.
func ReadUpload(path string) (string, []byte, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return "", nil, err
	}
	if fi.IsDir() {
		return "", nil, fmt.Errorf("%s is a directory", path)
	}
	if fi.Size() > MaxUploadSize {
		return "", nil, fmt.Errorf("%s is larger than %d bytes", path, MaxUploadSize)
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return "", nil, err
	}
	return filepath.Base(path), b, nil
}
