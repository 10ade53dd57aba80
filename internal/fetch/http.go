package fetch

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
)

// HTTPProvider downloads over http and https.
type HTTPProvider struct {
	Client *http.Client
}

var _ Provider = (*HTTPProvider)(nil)

// Download streams the response body of a GET on uri into dst.
func (p *HTTPProvider) Download(ctx context.Context, uri string, dst *os.File) error {
	client := p.Client
	if client == nil {
		client = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, uri, nil)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to make a request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: %s returned %d", ErrBadStatus, uri, resp.StatusCode)
	}
	if _, err := io.Copy(dst, resp.Body); err != nil {
		return fmt.Errorf("unable to copy response body: %w", err)
	}
	return nil
}
