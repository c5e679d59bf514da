// Command spellbook serves the spell browser.
//
// The dataset loads in the background at startup; until it resolves every
// view renders the loading frame. Views are rendered on the server and
// applied by the page shell as full frames or list patches.
package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"time"

	"github.com/poku-e/spellbook/internal/app"
	"github.com/poku-e/spellbook/internal/offline"
	"github.com/poku-e/spellbook/internal/spell"
	"github.com/poku-e/spellbook/internal/view"
)

const loadTimeout = 2 * time.Minute

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func absPath(p string) string {
	if p == "" || filepath.IsAbs(p) {
		return p
	}
	if abs, err := filepath.Abs(p); err == nil {
		return abs
	}
	return p
}

func main() {
	var addr string
	var dataPath string
	var shortlistPath string
	var cachePath string
	var cacheVersion string

	flag.StringVar(&addr, "addr", ":8080", "Listen address")
	flag.StringVar(&dataPath, "data", envOr("SPELLBOOK_DATA", spell.DefaultPath), "Spell dataset: JSON file path or http(s) URL")
	flag.StringVar(&shortlistPath, "shortlist", envOr("SPELLBOOK_SHORTLIST", spell.DefaultShortlistPath), "YAML list of spell slugs for My Spells")
	flag.StringVar(&cachePath, "cache", "", "SQLite offline cache for URL datasets (empty disables)")
	flag.StringVar(&cacheVersion, "cache-version", "spellbook-v1", "Offline cache version; older versions are purged")
	flag.Parse()

	if !spell.IsURL(dataPath) {
		dataPath = absPath(dataPath)
	}
	shortlistPath = absPath(shortlistPath)
	cachePath = absPath(cachePath)

	shortlist, err := spell.LoadShortlist(shortlistPath)
	if err != nil {
		log.Fatalf("load shortlist: %v", err)
	}

	src := spell.Source{Location: dataPath}
	if cachePath != "" && spell.IsURL(dataPath) {
		cache, err := offline.Open(cachePath, cacheVersion)
		if err != nil {
			log.Fatalf("open offline cache: %v", err)
		}
		defer cache.Close()
		if _, err := cache.Activate(context.Background()); err != nil {
			log.Fatalf("activate offline cache: %v", err)
		}
		origin, err := url.Parse(dataPath)
		if err != nil {
			log.Fatalf("parse data url: %v", err)
		}
		src.Client = cache.Client(origin, nil)
		log.Printf("offline cache: %s | version: %s", cachePath, cacheVersion)
	}

	store := app.NewStore()
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), loadTimeout)
		defer cancel()
		_ = store.Load(ctx, src)
	}()

	log.Printf("data: %s | shortlist: %d spells (%s)", dataPath, len(shortlist), shortlistPath)

	s := &server{
		store:        store,
		renderer:     view.New(),
		shortlist:    shortlist,
		cacheVersion: cacheVersion,
	}
	if err := serve(s, addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal(err)
	}
}
