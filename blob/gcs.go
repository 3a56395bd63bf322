package blob

import (
	"context"
	"io"
	"strings"

	"cloud.google.com/go/storage"
	"github.com/habiliai/tutorwise/errors"
)

const gcsScheme = "gs://"

// GCS stores uploads in a Cloud Storage bucket as gs://<bucket>/<name>.
type GCS struct {
	bucket string
	client *storage.Client
}

var _ Storage = (*GCS)(nil)

func NewGCS(ctx context.Context, bucket string) (*GCS, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to create storage client")
	}

	return &GCS{
		bucket: bucket,
		client: client,
	}, nil
}

func ParseGCSPath(path string) (bucket, object string, err error) {
	rest, ok := strings.CutPrefix(path, gcsScheme)
	if !ok {
		return "", "", errors.Wrapf(errors.ErrInvalidParams, "not a gs:// path: %s", path)
	}
	bucket, object, ok = strings.Cut(rest, "/")
	if !ok || bucket == "" || object == "" {
		return "", "", errors.Wrapf(errors.ErrInvalidParams, "malformed gs:// path: %s", path)
	}
	return bucket, object, nil
}

func (g *GCS) Save(ctx context.Context, name string, r io.Reader) (string, error) {
	writer := g.client.Bucket(g.bucket).Object(name).NewWriter(ctx)
	if _, err := io.Copy(writer, r); err != nil {
		writer.Close()
		return "", errors.Wrapf(err, "failed to upload %s", name)
	}
	if err := writer.Close(); err != nil {
		return "", errors.Wrapf(err, "failed to finalize upload of %s", name)
	}

	return gcsScheme + g.bucket + "/" + name, nil
}

func (g *GCS) Open(ctx context.Context, path string) (io.ReadCloser, error) {
	bucket, object, err := ParseGCSPath(path)
	if err != nil {
		return nil, err
	}

	reader, err := g.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, errors.Wrapf(errors.ErrNotFound, "object %s", path)
		}
		return nil, errors.Wrapf(err, "failed to read %s", path)
	}

	return reader, nil
}

func (g *GCS) Delete(ctx context.Context, path string) error {
	bucket, object, err := ParseGCSPath(path)
	if err != nil {
		return err
	}

	if err := g.client.Bucket(bucket).Object(object).Delete(ctx); err != nil && !errors.Is(err, storage.ErrObjectNotExist) {
		return errors.Wrapf(err, "failed to delete %s", path)
	}
	return nil
}

func (g *GCS) Close() error {
	return g.client.Close()
}
