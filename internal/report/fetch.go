package report

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// fetchBackoffs is the wait before each attempt of FetchStockPage.
var fetchBackoffs = []time.Duration{0, 500 * time.Millisecond, 1 * time.Second, 2 * time.Second}

// IsRemote reports whether src names an http(s) page rather than a file.
func IsRemote(src string) bool {
	return strings.HasPrefix(src, "http://") || strings.HasPrefix(src, "https://")
}

// FetchStockPage downloads a stock page and reads its table. Network errors,
// 5xx and 429 responses are retried a few times.
func FetchStockPage(ctx context.Context, client *http.Client, rawURL, selector string) (Sheet, error) {
	body, err := fetch(ctx, client, rawURL)
	if err != nil {
		return Sheet{}, fmt.Errorf("fetch %s: %w", rawURL, err)
	}
	return ReadStockHTML(bytes.NewReader(body), selector)
}

func fetch(ctx context.Context, client *http.Client, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "text/html,application/xhtml+xml;q=0.9,*/*;q=0.8")

	var resp *http.Response
	for i, d := range fetchBackoffs {
		if d > 0 {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		last := i == len(fetchBackoffs)-1
		resp, err = client.Do(req)
		if err != nil {
			if !last && ctx.Err() == nil {
				continue
			}
			return nil, err
		}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			_ = resp.Body.Close()
			if !last {
				continue
			}
			return nil, fmt.Errorf("server error: %s", resp.Status)
		}
		break
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("bad status %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return io.ReadAll(resp.Body)
}
