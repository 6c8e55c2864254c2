package submission

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// SDRClient transmits artifact content to the swap data repository and
// returns its acknowledgment payload verbatim. The payload is opaque to
// this system; it is stored, never interpreted.
type SDRClient interface {
	Submit(ctx context.Context, filename string, content io.Reader) (json.RawMessage, error)
}

type httpSDR struct {
	base   string
	client *http.Client
}

// NewHTTPSDR creates an SDR client that posts artifact content to the
// given endpoint. Submissions can be slow; size the timeout accordingly.
func NewHTTPSDR(base string, timeout time.Duration) SDRClient {
	return &httpSDR{
		base:   base,
		client: &http.Client{Timeout: timeout},
	}
}

func (s *httpSDR) Submit(ctx context.Context, filename string, content io.Reader) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.base, content)
	if err != nil {
		return nil, fmt.Errorf("build sdr request: %w", err)
	}
	req.Header.Set("Content-Type", "text/plain")
	req.Header.Set("X-Report-Filename", filename)

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("post to sdr: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("read sdr response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("sdr rejected %s: status %d: %s", filename, resp.StatusCode, body)
	}

	if !json.Valid(body) {
		return nil, fmt.Errorf("sdr acknowledgment for %s is not valid JSON", filename)
	}

	return json.RawMessage(body), nil
}
