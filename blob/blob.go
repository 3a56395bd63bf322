package blob

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/habiliai/tutorwise/errors"
)

// Storage keeps uploaded files. Paths returned by Save are what gets
// recorded on the content row and later passed to Open.
type Storage interface {
	Save(ctx context.Context, name string, r io.Reader) (string, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
	Delete(ctx context.Context, path string) error
}

// Mux saves to primary and opens gs:// paths from gcs and anything else from
// local, so rows written before a bucket was configured stay readable.
type Mux struct {
	primary Storage
	local   *Local
	gcs     *GCS
}

var _ Storage = (*Mux)(nil)

func NewMux(local *Local, gcs *GCS) *Mux {
	m := &Mux{local: local, gcs: gcs, primary: local}
	if gcs != nil {
		m.primary = gcs
	}
	return m
}

func (m *Mux) route(path string) (Storage, error) {
	if strings.HasPrefix(path, gcsScheme) {
		if m.gcs == nil {
			return nil, errors.Wrapf(errors.ErrInvalidConfig, "no bucket configured for %s", path)
		}
		return m.gcs, nil
	}
	return m.local, nil
}

func (m *Mux) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	return m.primary.Save(ctx, name, r)
}

func (m *Mux) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	s, err := m.route(path)
	if err != nil {
		return nil, err
	}
	return s.Open(ctx, path)
}

func (m *Mux) Delete(ctx context.Context, path string) error {
	s, err := m.route(path)
	if err != nil {
		return err
	}
	return s.Delete(ctx, path)
}

// Materialize copies the blob at path into a temporary local file that keeps
// the original extension. The returned cleanup removes it.
func Materialize(ctx context.Context, s Storage, path string) (string, func(), error) {
	rc, err := s.Open(ctx, path)
	if err != nil {
		return "", nil, err
	}
	defer rc.Close()

	tmp, err := os.CreateTemp("", "tutorwise-*"+filepath.Ext(path))
	if err != nil {
		return "", nil, errors.Wrapf(err, "failed to create temp file")
	}
	cleanup := func() {
		_ = os.Remove(tmp.Name())
	}

	if _, err := io.Copy(tmp, rc); err != nil {
		tmp.Close()
		cleanup()
		return "", nil, errors.Wrapf(err, "failed to copy %s", path)
	}
	if err := tmp.Close(); err != nil {
		cleanup()
		return "", nil, errors.Wrapf(err, "failed to close temp file")
	}

	return tmp.Name(), cleanup, nil
}
