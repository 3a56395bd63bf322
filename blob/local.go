package blob

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/habiliai/tutorwise/errors"
)

type Local struct {
	dir string
}

var _ Storage = (*Local)(nil)

func NewLocal(dir string) (*Local, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrapf(err, "failed to create upload directory %s", dir)
	}
	return &Local{dir: dir}, nil
}

func (l *Local) Save(_ context.Context, name string, r io.Reader) (string, error) {
	if name != filepath.Base(name) {
		return "", errors.Wrapf(errors.ErrInvalidParams, "invalid file name %q", name)
	}

	path := filepath.Join(l.dir, name)
	f, err := os.Create(path)
	if err != nil {
		return "", errors.Wrapf(err, "failed to create %s", path)
	}

	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		_ = os.Remove(path)
		return "", errors.Wrapf(err, "failed to write %s", path)
	}
	if err := f.Close(); err != nil {
		return "", errors.Wrapf(err, "failed to close %s", path)
	}

	return path, nil
}

func (l *Local) Open(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.Wrapf(errors.ErrNotFound, "file %s", path)
		}
		return nil, errors.Wrapf(err, "failed to open %s", path)
	}
	return f, nil
}

func (l *Local) Delete(_ context.Context, path string) error {
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		return errors.Wrapf(err, "failed to delete %s", path)
	}
	return nil
}
