package offline

import (
	"bytes"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
)

// CacheHeader is set on responses served from the cache.
const CacheHeader = "X-Offline-Cache"

// Transport is a network-first http.RoundTripper. GET requests on Origin go
// to the network; successful responses are stored, and when the network
// fails the stored copy is returned instead. Non-success responses are passed
// through untouched.
type Transport struct {
	Base  http.RoundTripper
	Store *Store
	// Origin limits caching to one scheme and host. Nil caches every GET.
	Origin *url.URL
}

func (t *Transport) base() http.RoundTripper {
	if t.Base != nil {
		return t.Base
	}
	return http.DefaultTransport
}

func (t *Transport) cacheable(req *http.Request) bool {
	if req.Method != http.MethodGet || t.Store == nil {
		return false
	}
	if t.Origin == nil {
		return true
	}
	return strings.EqualFold(req.URL.Scheme, t.Origin.Scheme) && strings.EqualFold(req.URL.Host, t.Origin.Host)
}

// RoundTrip implements http.RoundTripper.
func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if !t.cacheable(req) {
		return t.base().RoundTrip(req)
	}
	key := req.URL.String()

	resp, err := t.base().RoundTrip(req)
	if err != nil {
		return t.fallback(req, key, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, nil
	}

	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return t.fallback(req, key, err)
	}
	if perr := t.Store.Put(req.Context(), key, resp.StatusCode, resp.Header, body); perr != nil {
		log.Printf("offline cache: %v", perr)
	}
	resp.Body = io.NopCloser(bytes.NewReader(body))
	resp.ContentLength = int64(len(body))
	return resp, nil
}

func (t *Transport) fallback(req *http.Request, key string, netErr error) (*http.Response, error) {
	e, ok, err := t.Store.Get(req.Context(), key)
	if err != nil {
		log.Printf("offline cache: %v", err)
	}
	if !ok {
		return nil, netErr
	}
	log.Printf("offline cache: network failed (%v), serving %s from %s", netErr, key, e.StoredAt.Format("2006-01-02 15:04"))
	return e.response(req), nil
}

func (e Entry) response(req *http.Request) *http.Response {
	h := e.Header.Clone()
	if h == nil {
		h = http.Header{}
	}
	h.Set(CacheHeader, "hit")
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", e.Status, http.StatusText(e.Status)),
		StatusCode:    e.Status,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        h,
		Body:          io.NopCloser(bytes.NewReader(e.Body)),
		ContentLength: int64(len(e.Body)),
		Request:       req,
	}
}

// Client wraps the store in an *http.Client limited to origin (nil for any).
func (s *Store) Client(origin *url.URL, base http.RoundTripper) *http.Client {
	return &http.Client{Transport: &Transport{Base: base, Store: s, Origin: origin}}
}
