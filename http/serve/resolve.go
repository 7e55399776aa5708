package serve

import (
	"os"
	"path/filepath"

	"github.com/indigo-web/minihttpd/config"
	"github.com/indigo-web/minihttpd/http/status"
	"github.com/pkg/errors"
)

// Resolve opens the regular file the resource path points to, relative to the root. Every
// failure is reported as (wrapped) status.ErrNotFound. On success the caller owns the file.
func Resolve(cfg config.Serve, resourcePath string) (*os.File, os.FileInfo, error) {
	if len(resourcePath) == 0 {
		return nil, nil, status.ErrNotFound
	}

	if cfg.Confine && !filepath.IsLocal(resourcePath) {
		return nil, nil, errors.Wrapf(status.ErrNotFound, "%s escapes the root", resourcePath)
	}

	name := filepath.Join(cfg.Root, resourcePath)

	// stat before opening: opening e.g. a FIFO would block
	info, err := os.Stat(name)
	if err != nil {
		return nil, nil, errors.Wrap(status.ErrNotFound, err.Error())
	}

	if !info.Mode().IsRegular() {
		return nil, nil, errors.Wrapf(status.ErrNotFound, "%s is not a regular file", name)
	}

	file, err := os.Open(name)
	if err != nil {
		return nil, nil, errors.Wrap(status.ErrNotFound, err.Error())
	}

	// the file might have been changed in between, so the size is taken once more from
	// the descriptor we are actually going to read
	info, err = file.Stat()
	if err != nil {
		_ = file.Close()
		return nil, nil, errors.Wrap(status.ErrNotFound, err.Error())
	}

	return file, info, nil
}
