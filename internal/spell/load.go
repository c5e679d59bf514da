package spell

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
)

// DefaultPath is where the fetch tool writes the dataset.
const DefaultPath = "public/spells.json"

// LoadError is the failure to obtain or decode the spell dataset.
type LoadError struct {
	Source string
	Status int // HTTP status of a non-success response, 0 otherwise
	Err    error
}

func (e *LoadError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("Failed to load spells: %d", e.Status)
	}
	return fmt.Sprintf("Failed to load spells: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// Loader produces the record list once per session.
type Loader interface {
	Load(ctx context.Context) ([]Record, error)
}

// Source loads the dataset from a file path or an http(s) URL.
type Source struct {
	Location string
	// Client is used for URL locations; nil means http.DefaultClient.
	Client *http.Client
}

// Load reads and decodes the dataset. Every failure is a *LoadError.
func (s Source) Load(ctx context.Context) ([]Record, error) {
	data, err := s.read(ctx)
	if err != nil {
		return nil, err
	}
	records, err := Parse(data)
	if err != nil {
		return nil, &LoadError{Source: s.Location, Err: err}
	}
	return records, nil
}

func (s Source) read(ctx context.Context) ([]byte, error) {
	if !IsURL(s.Location) {
		b, err := os.ReadFile(s.Location)
		if err != nil {
			return nil, &LoadError{Source: s.Location, Err: err}
		}
		return b, nil
	}

	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.Location, nil)
	if err != nil {
		return nil, &LoadError{Source: s.Location, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	resp, err := client.Do(req)
	if err != nil {
		return nil, &LoadError{Source: s.Location, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &LoadError{Source: s.Location, Status: resp.StatusCode, Err: fmt.Errorf("bad status: %s", resp.Status)}
	}
	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &LoadError{Source: s.Location, Err: err}
	}
	return b, nil
}

// IsURL reports whether loc is an http(s) URL rather than a file path.
func IsURL(loc string) bool {
	l := strings.ToLower(loc)
	return strings.HasPrefix(l, "http://") || strings.HasPrefix(l, "https://")
}

// Static serves a fixed record list; used by tests and embedding callers.
type Static []Record

func (s Static) Load(context.Context) ([]Record, error) { return s, nil }

// Encode writes records back out as a flat JSON array of their original text.
func Encode(w io.Writer, records []Record) error {
	if _, err := io.WriteString(w, "["); err != nil {
		return err
	}
	for i, r := range records {
		if i > 0 {
			if _, err := io.WriteString(w, ","); err != nil {
				return err
			}
		}
		raw := r.Raw
		if raw == "" {
			b, err := json.Marshal(r)
			if err != nil {
				return err
			}
			raw = string(b)
		}
		if _, err := io.WriteString(w, raw); err != nil {
			return err
		}
	}
	_, err := io.WriteString(w, "]")
	return err
}
