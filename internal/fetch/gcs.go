package fetch

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/googleapis/google-cloud-go-testing/storage/stiface"
)

// GCSProvider downloads gs://bucket/object objects.
type GCSProvider struct {
	Client stiface.Client
}

var _ Provider = (*GCSProvider)(nil)

// Download streams the object into dst.
func (p *GCSProvider) Download(ctx context.Context, uri string, dst *os.File) error {
	bucket, object, err := splitBucketURI(uri, GCS)
	if err != nil {
		return err
	}
	rc, err := p.Client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return fmt.Errorf("unable to open gcs object %s/%s: %w", bucket, object, err)
	}
	defer rc.Close()

	if _, err := io.Copy(dst, rc); err != nil {
		return fmt.Errorf("unable to copy gcs object: %w", err)
	}
	return nil
}
