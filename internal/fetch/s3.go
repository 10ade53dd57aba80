package fetch

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
)

// S3Provider downloads s3://bucket/key objects.
type S3Provider struct {
	Downloader s3manageriface.DownloaderAPI
}

var _ Provider = (*S3Provider)(nil)

// Download fetches the object in parallel parts straight into dst.
func (p *S3Provider) Download(ctx context.Context, uri string, dst *os.File) error {
	bucket, key, err := splitBucketURI(uri, S3)
	if err != nil {
		return err
	}
	_, err = p.Downloader.DownloadWithContext(ctx, dst, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("unable to download s3 object %s/%s: %w", bucket, key, err)
	}
	return nil
}
