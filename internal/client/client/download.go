package client

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"

	"github.com/dmitrijs2005/pairchat/internal/common"
	"github.com/dmitrijs2005/pairchat/internal/netx"
)

const maxRedirects = 10

// MaxDownloadSize caps attachment downloads.
const MaxDownloadSize = 16 << 20

// Download fetches the attachment at ref into w and returns its
// Content-Type. ref is an absolute URL or a path on the server. The access
// token is sent only to the server itself and is dropped on redirect, so
// presigned storage URLs see an anonymous request.
func (c *HTTPClient) Download(ctx context.Context, ref string, w io.Writer) (string, error) {
	target, err := c.baseURL.Parse(ref)
	if err != nil {
		return "", fmt.Errorf("invalid attachment reference: %w", err)
	}
	own := target.Scheme == c.baseURL.Scheme && target.Host == c.baseURL.Host

	ct, err := c.downloadOnce(ctx, target, own, w)
	if !own || !isTokenExpired(err) {
		return ct, err
	}
	if _, refresh := c.tokens(); refresh == "" {
		return "", err
	}
	if rerr := c.refresh(ctx); rerr != nil {
		return "", rerr
	}
	return c.downloadOnce(ctx, target, own, w)
}

func (c *HTTPClient) downloadOnce(ctx context.Context, target *url.URL, own bool, w io.Writer) (string, error) {
	header := http.Header{}
	if own {
		access, _ := c.tokens()
		header.Set("Authorization", common.AuthorizationScheme+access)
	}

	hc := *c.http
	hc.CheckRedirect = func(req *http.Request, via []*http.Request) error {
		if len(via) >= maxRedirects {
			return errors.New("too many redirects")
		}
		req.Header.Del("Authorization")
		return nil
	}

	ct, err := netx.Download(ctx, &hc, target.String(), header, w, MaxDownloadSize)
	if err != nil {
		var se *netx.StatusError
		if errors.As(err, &se) {
			return "", apiError(se.StatusCode, se.Body)
		}
		var ue *url.Error
		if errors.As(err, &ue) {
			return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
		}
		return "", err
	}
	return ct, nil
}
