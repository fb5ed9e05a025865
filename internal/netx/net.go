// Package netx holds small HTTP transfer helpers shared by the CLI.
package netx

import (
	"context"
	"fmt"
	"io"
	"net/http"
)

// StatusError is returned by Download for any answer other than 200 OK.
// Body holds at most the first 64 KiB of the response.
type StatusError struct {
	StatusCode int
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("download failed: %d %s; body: %s", e.StatusCode, http.StatusText(e.StatusCode), string(e.Body))
}

// Download GETs url with the given headers and copies the body to w, up to
// maxBytes. It returns the response Content-Type.
func Download(ctx context.Context, client *http.Client, url string, header http.Header, w io.Writer, maxBytes int64) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}

	resp, err := client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		return "", &StatusError{StatusCode: resp.StatusCode, Body: b}
	}

	n, err := io.Copy(w, io.LimitReader(resp.Body, maxBytes+1))
	if err != nil {
		return "", err
	}
	if n > maxBytes {
		return "", fmt.Errorf("download exceeds %d bytes", maxBytes)
	}
	return resp.Header.Get("Content-Type"), nil
}
