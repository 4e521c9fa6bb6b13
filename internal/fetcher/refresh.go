package fetcher

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// ETagSuffix names the sidecar file that stores the last seen ETag.
const ETagSuffix = ".etag"

// RefreshResult describes the outcome of a Refresh call.
type RefreshResult struct {
	Path    string
	Changed bool
	Bytes   int64
	ETag    string
}

// Refresh downloads url to path unless the server reports the ETag stored
// beside path as current. The file is written through a temp file so a failed
// download never truncates the previous copy.
func Refresh(ctx context.Context, f Fetcher, url, path string) (RefreshResult, error) {
	res := RefreshResult{Path: path}
	log := zap.L().With(zap.String("url", url), zap.String("path", path))

	etag := ""
	if _, err := os.Stat(path); err == nil {
		etag = readETag(path)
	}

	body, newTag, changed, err := f.DownloadIfChanged(ctx, url, etag)
	if err != nil {
		return res, eris.Wrapf(err, "fetcher: refresh %s", filepath.Base(path))
	}
	res.ETag = newTag
	if !changed {
		log.Info("raw file unchanged", zap.String("etag", etag))
		return res, nil
	}
	defer body.Close() //nolint:errcheck

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return res, eris.Wrap(err, "fetcher: create dir")
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.part")
	if err != nil {
		return res, eris.Wrap(err, "fetcher: create temp file")
	}
	defer os.Remove(tmp.Name()) //nolint:errcheck

	n, err := io.Copy(tmp, body)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return res, eris.Wrap(err, "fetcher: write file")
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return res, eris.Wrap(err, "fetcher: rename file")
	}

	res.Changed = true
	res.Bytes = n
	if err := writeETag(path, newTag); err != nil {
		return res, err
	}
	log.Info("raw file downloaded", zap.Int64("bytes", n), zap.String("etag", newTag))
	return res, nil
}

func readETag(path string) string {
	b, err := os.ReadFile(path + ETagSuffix)
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(b))
}

func writeETag(path, etag string) error {
	side := path + ETagSuffix
	if etag == "" {
		if err := os.Remove(side); err != nil && !errors.Is(err, os.ErrNotExist) {
			return eris.Wrap(err, "fetcher: remove etag")
		}
		return nil
	}
	return eris.Wrap(os.WriteFile(side, []byte(etag+"\n"), 0o644), "fetcher: write etag")
}
