// Package filex contains local filesystem helpers used by the client.
package filex

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
)

// ErrTooLarge is returned by ReadLimited when a file exceeds the limit.
var ErrTooLarge = errors.New("file too large")

// EnsureParentDir creates the directory that will hold path, if needed,
// and returns the absolute form of path.
func EnsureParentDir(path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("abs %s: %w", path, err)
	}

	dir := filepath.Dir(abs)
	if err := os.MkdirAll(dir, 0o770); err != nil {
		return "", fmt.Errorf("mkdir %s: %w", dir, err)
	}

	return abs, nil
}

// ReadLimited reads the whole file at path, refusing files larger than
// maxSize bytes. A maxSize of zero or less disables the check.
// It also returns the base name of the file.
func ReadLimited(path string, maxSize int64) ([]byte, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	fi, err := f.Stat()
	if err != nil {
		return nil, "", err
	}
	if fi.IsDir() {
		return nil, "", fmt.Errorf("%s is a directory", path)
	}
	if maxSize > 0 && fi.Size() > maxSize {
		return nil, "", fmt.Errorf("%w: %d bytes, limit %d", ErrTooLarge, fi.Size(), maxSize)
	}

	var r io.Reader = f
	if maxSize > 0 {
		// the file may grow between Stat and Read
		r = io.LimitReader(f, maxSize+1)
	}

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, "", err
	}
	if maxSize > 0 && int64(len(data)) > maxSize {
		return nil, "", fmt.Errorf("%w: limit %d", ErrTooLarge, maxSize)
	}

	return data, filepath.Base(path), nil
}
