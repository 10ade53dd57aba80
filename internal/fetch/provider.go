// Package fetch makes sure the CIFAR-10 archive is present and extracted in
// a local data directory, downloading it from http(s), s3, gs or file URIs.
package fetch

import (
	"context"
	"fmt"
	"os"
	"strings"
)

// Provider downloads the object named by uri into dst.
type Provider interface {
	Download(ctx context.Context, uri string, dst *os.File) error
}

// Protocol is a URI scheme prefix.
type Protocol string

// Supported protocols.
const (
	S3    Protocol = "s3://"
	GCS   Protocol = "gs://"
	HTTPS Protocol = "https://"
	HTTP  Protocol = "http://"
	File  Protocol = "file://"
)

// SupportedProtocols lists every protocol with a built-in provider.
var SupportedProtocols = []Protocol{S3, GCS, HTTPS, HTTP, File}

// ProtocolOf returns the protocol prefix of uri.
func ProtocolOf(uri string) (Protocol, error) {
	for _, p := range SupportedProtocols {
		if strings.HasPrefix(uri, string(p)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedProtocol, uri)
}

// splitBucketURI turns "s3://bucket/a/b" into ("bucket", "a/b").
func splitBucketURI(uri string, p Protocol) (bucket, key string, err error) {
	rest := strings.TrimPrefix(uri, string(p))
	bucket, key, ok := strings.Cut(rest, "/")
	if !ok || bucket == "" || key == "" {
		return "", "", fmt.Errorf("invalid %s uri %q: want %sbucket/object", strings.TrimSuffix(string(p), "://"), uri, p)
	}
	return bucket, key, nil
}
