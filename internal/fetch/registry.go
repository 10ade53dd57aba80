package fetch

import (
	"context"
	"net/http"

	gstorage "cloud.google.com/go/storage"
	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/googleapis/google-cloud-go-testing/storage/stiface"
	"google.golang.org/api/option"
)

// ProviderOptions configures the cloud providers built by GetProvider.
type ProviderOptions struct {
	S3Region         string
	S3Endpoint       string
	S3ForcePathStyle bool
	S3Anonymous      bool
	GCSAnonymous     bool
}

// GetProvider returns the provider registered for protocol, building and
// caching a default one when none is registered yet.
func GetProvider(ctx context.Context, providers map[Protocol]Provider, protocol Protocol, opts ProviderOptions) (Provider, error) {
	if provider, ok := providers[protocol]; ok {
		return provider, nil
	}

	switch protocol {
	case GCS:
		var clientOpts []option.ClientOption
		if opts.GCSAnonymous {
			clientOpts = append(clientOpts, option.WithoutAuthentication())
		}
		client, err := gstorage.NewClient(ctx, clientOpts...)
		if err != nil {
			return nil, err
		}
		providers[GCS] = &GCSProvider{Client: stiface.AdaptClient(client)}
	case S3:
		awsConfig := aws.Config{
			Region:           aws.String(opts.S3Region),
			S3ForcePathStyle: aws.Bool(opts.S3ForcePathStyle),
		}
		if opts.S3Endpoint != "" {
			awsConfig.Endpoint = aws.String(opts.S3Endpoint)
		}
		if opts.S3Anonymous {
			awsConfig.Credentials = credentials.AnonymousCredentials
		}
		sess, err := session.NewSession(&awsConfig)
		if err != nil {
			return nil, err
		}
		providers[S3] = &S3Provider{
			Downloader: s3manager.NewDownloaderWithClient(s3.New(sess)),
		}
	case HTTPS, HTTP:
		providers[protocol] = &HTTPProvider{Client: &http.Client{}}
	case File:
		providers[File] = FileProvider{}
	default:
		return nil, ErrUnsupportedProtocol
	}

	return providers[protocol], nil
}
