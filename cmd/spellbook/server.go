package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/poku-e/spellbook/internal/app"
	"github.com/poku-e/spellbook/internal/spell"
	"github.com/poku-e/spellbook/internal/view"
)

type server struct {
	store        *app.Store
	renderer     view.Renderer
	shortlist    []string
	cacheVersion string
}

type fragmentResp struct {
	Fragment string `json:"fragment"`
}

type healthResp struct {
	Status  string `json:"status"`
	Spells  int    `json:"spells"`
	Loading bool   `json:"loading,omitempty"`
	Error   string `json:"error,omitempty"`
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))
	r.Use(withCommonHeaders)

	r.Get("/", s.handleIndex)
	r.Get("/sw.js", s.handleServiceWorker)
	r.Get("/healthz", s.handleHealth)

	// View state
	r.Get("/view", s.handleView)
	r.Get("/fragment", s.handleFragment)

	// Data
	r.Get("/spells.json", s.handleDataset)
	r.Route("/api/spells", func(r chi.Router) {
		r.Get("/", s.handleSearch)
		r.Get("/{slug}", s.handleSpell)
	})
	return r
}

func serve(s *server, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       2 * time.Minute,
	}
	log.Printf("listening on %s", addr)
	return srv.ListenAndServe()
}

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	writeTemplate(w, "text/html; charset=utf-8", func(buf *bytes.Buffer) error {
		return indexTmpl.Execute(buf, nil)
	})
}

func (s *server) handleServiceWorker(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "no-cache")
	writeTemplate(w, "application/javascript; charset=utf-8", func(buf *bytes.Buffer) error {
		return swTmpl.Execute(buf, struct{ Version string }{s.cacheVersion})
	})
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	st := s.store.Snapshot()
	resp := healthResp{Status: "ok", Spells: len(st.Records), Loading: st.Loading}
	if st.Err != nil {
		resp.Status = "failed"
		resp.Error = st.Err.Error()
	}
	writeJSON(w, resp)
}

// handleView renders the navigation from one fragment to another. The client
// sends the fragment it currently shows (empty on first load) so a filter
// change on the list view can be answered with a patch.
func (s *server) handleView(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c := app.NewController(s.store, s.renderer, s.shortlist)
	c.Resume(q.Get("from"))
	u, err := c.Navigate(q.Get("to"))
	if err != nil {
		log.Printf("render %q: %v", q.Get("to"), err)
		http.Error(w, "render error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Cache-Control", "no-store")
	writeJSON(w, u)
}

func (s *server) handleFragment(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c := app.NewController(s.store, s.renderer, s.shortlist)
	writeJSON(w, fragmentResp{Fragment: c.FilterChanged(q.Get("q"), q.Get("level"), q.Get("school"), q.Get("class"))})
}

// records returns the loaded dataset or writes 503 when it is not available.
func (s *server) records(w http.ResponseWriter) ([]spell.Record, bool) {
	st := s.store.Snapshot()
	switch {
	case st.Loading:
		w.Header().Set("Retry-After", "1")
		http.Error(w, "spells loading", http.StatusServiceUnavailable)
		return nil, false
	case st.Err != nil:
		http.Error(w, st.Err.Error(), http.StatusServiceUnavailable)
		return nil, false
	}
	return st.Records, true
}

func (s *server) handleDataset(w http.ResponseWriter, r *http.Request) {
	recs, ok := s.records(w)
	if !ok {
		return
	}
	writeRecords(w, recs)
}

func (s *server) handleSearch(w http.ResponseWriter, r *http.Request) {
	recs, ok := s.records(w)
	if !ok {
		return
	}
	q := r.URL.Query()
	writeRecords(w, spell.ApplyFilters(recs, q.Get("q"), q.Get("level"), q.Get("school"), q.Get("class")))
}

func (s *server) handleSpell(w http.ResponseWriter, r *http.Request) {
	recs, ok := s.records(w)
	if !ok {
		return
	}
	slug := chi.URLParam(r, "slug")
	rec, found := spell.Find(recs, slug)
	if !found {
		http.Error(w, fmt.Sprintf("spell %q not found", slug), http.StatusNotFound)
		return
	}
	if rec.Raw != "" {
		writeRaw(w, []byte(rec.Raw))
		return
	}
	writeJSON(w, rec)
}

func writeRecords(w http.ResponseWriter, recs []spell.Record) {
	var buf bytes.Buffer
	if err := spell.Encode(&buf, recs); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
		return
	}
	writeRaw(w, buf.Bytes())
}

func writeRaw(w http.ResponseWriter, b []byte) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	if _, err := w.Write(b); err != nil {
		fmt.Fprintf(os.Stderr, "error writing response: %v\n", err)
	}
}

func writeTemplate(w http.ResponseWriter, contentType string, exec func(*bytes.Buffer) error) {
	var buf bytes.Buffer
	if err := exec(&buf); err != nil {
		http.Error(w, "template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", contentType)
	if _, err := w.Write(buf.Bytes()); err != nil {
		fmt.Fprintf(os.Stderr, "error writing response: %v\n", err)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	if err := enc.Encode(v); err != nil {
		http.Error(w, "encode error", http.StatusInternalServerError)
	}
}

func withCommonHeaders(h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		if r.Method == http.MethodOptions {
			w.Header().Set("Access-Control-Allow-Methods", "GET,OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			w.WriteHeader(http.StatusNoContent)
			return
		}
		h.ServeHTTP(w, r)
	})
}
