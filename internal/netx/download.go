// Package netx holds the client's plain HTTP transfers.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/studyshare/internal/filex"
)

// Download fetches url and writes the body to dest, creating missing parent
// directories. The body goes to a temporary file next to dest first, so a
// failed transfer leaves nothing behind. A nil client means
// http.DefaultClient.
func Download(ctx context.Context, client *http.Client, url, dest string) (string, int64, error) {
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", 0, err
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", 0, fmt.Errorf("download failed: %s", resp.Status)
	}

	abs, err := filex.EnsureParentDir(dest)
	if err != nil {
		return "", 0, err
	}

	tmp, err := os.CreateTemp(filepath.Dir(abs), "."+filepath.Base(abs)+".*")
	if err != nil {
		return "", 0, err
	}
	defer os.Remove(tmp.Name())

	n, err := io.Copy(tmp, resp.Body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return "", 0, fmt.Errorf("writing %s: %w", abs, err)
	}

	if err := os.Rename(tmp.Name(), abs); err != nil {
		return "", 0, err
	}
	return abs, n, nil
}
