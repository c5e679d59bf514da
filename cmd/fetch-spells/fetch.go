package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"time"

	"github.com/tidwall/gjson"
)

// DefaultURL is the first page of SRD spells on Open5e.
const DefaultURL = "https://api.open5e.com/v2/spells/?document__slug=wotc-srd&limit=100&format=json"

// maxPages stops a server whose next links loop forever.
const maxPages = 500

var defaultBackoffs = []time.Duration{0, 500 * time.Millisecond, 1 * time.Second, 2 * time.Second}

func httpClient(timeout time.Duration) *http.Client {
	transport := &http.Transport{
		Proxy:               http.ProxyFromEnvironment,
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 4,
		IdleConnTimeout:     90 * time.Second,
		DialContext: (&net.Dialer{
			Timeout:   10 * time.Second,
			KeepAlive: 60 * time.Second,
		}).DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
	}
	return &http.Client{
		Timeout:   timeout,
		Transport: transport,
	}
}

type fetcher struct {
	client   *http.Client
	backoffs []time.Duration
	logf     func(format string, args ...any)
}

// get fetches one page, retrying network errors, 5xx and 429.
func (f *fetcher) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "spellbook-fetch/1")

	var resp *http.Response
	for i, d := range f.backoffs {
		if d > 0 {
			select {
			case <-time.After(d):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}
		last := i == len(f.backoffs)-1
		resp, err = f.client.Do(req)
		if err != nil {
			if !last && ctx.Err() == nil {
				f.logf("retry %s: %v", rawURL, err)
				continue
			}
			return nil, err
		}
		if resp.StatusCode >= 500 || resp.StatusCode == http.StatusTooManyRequests {
			_ = resp.Body.Close()
			if !last {
				f.logf("retry %s: %s", rawURL, resp.Status)
				continue
			}
			return nil, fmt.Errorf("Open5e API error: %s", resp.Status)
		}
		break
	}
	if resp == nil {
		return nil, errors.New("no attempts configured")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("Open5e API error: %s: %s", resp.Status, string(b))
	}
	return io.ReadAll(resp.Body)
}

// fetchAll follows next links from start and returns the raw JSON text of
// every entry in every page's results, in order.
func (f *fetcher) fetchAll(ctx context.Context, start string) ([]string, error) {
	var out []string
	seen := map[string]bool{}
	for next, page := start, 1; next != ""; page++ {
		if seen[next] || page > maxPages {
			return nil, fmt.Errorf("pagination loop at %s", next)
		}
		seen[next] = true

		body, err := f.get(ctx, next)
		if err != nil {
			return nil, fmt.Errorf("page %d: %w", page, err)
		}
		if !gjson.ValidBytes(body) {
			return nil, fmt.Errorf("page %d: invalid JSON", page)
		}
		doc := gjson.ParseBytes(body)
		results := doc.Get("results")
		if results.Exists() && !results.IsArray() {
			return nil, fmt.Errorf("page %d: results is not an array", page)
		}
		results.ForEach(func(_, v gjson.Result) bool {
			out = append(out, v.Raw)
			return true
		})
		f.logf("page %d: %d spells (total %d)", page, len(results.Array()), len(out))

		link := doc.Get("next")
		if link.Type != gjson.String || link.String() == "" {
			break
		}
		next, err = resolve(next, link.String())
		if err != nil {
			return nil, fmt.Errorf("page %d: bad next link: %w", page, err)
		}
	}
	return out, nil
}

func resolve(base, ref string) (string, error) {
	bu, err := url.Parse(base)
	if err != nil {
		return "", err
	}
	ru, err := url.Parse(ref)
	if err != nil {
		return "", err
	}
	return bu.ResolveReference(ru).String(), nil
}
