// Command fetch-spells downloads the SRD spell list from Open5e and writes
// the dataset the spellbook server reads.
//
// Usage examples:
//
//	fetch-spells
//	fetch-spells -out public/spells.json -csv spells.csv -xlsx spells.xlsx
//	fetch-spells -cache .cache/offline.db
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/poku-e/spellbook/internal/offline"
	"github.com/poku-e/spellbook/internal/spell"
)

func main() {
	var (
		startURL     string
		outPath      string
		csvPath      string
		xlsxPath     string
		cachePath    string
		cacheVersion string
		timeout      time.Duration
	)
	flag.StringVar(&startURL, "url", DefaultURL, "First Open5e page to fetch")
	flag.StringVar(&outPath, "out", spell.DefaultPath, "Dataset JSON output path")
	flag.StringVar(&csvPath, "csv", "", "Also write a .csv table of the spells")
	flag.StringVar(&xlsxPath, "xlsx", "", "Also write an .xlsx table of the spells")
	flag.StringVar(&cachePath, "cache", "", "SQLite offline cache; pages are served from it when the network fails")
	flag.StringVar(&cacheVersion, "cache-version", "spellbook-v1", "Offline cache version")
	flag.DurationVar(&timeout, "timeout", 2*time.Minute, "Overall timeout")
	flag.Parse()

	if csvPath != "" && !strings.HasSuffix(strings.ToLower(csvPath), ".csv") {
		fatal(errors.New("-csv must end with .csv"))
	}
	if xlsxPath != "" && !strings.HasSuffix(strings.ToLower(xlsxPath), ".xlsx") {
		fatal(errors.New("-xlsx must end with .xlsx"))
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	f := &fetcher{
		client:   httpClient(30 * time.Second),
		backoffs: defaultBackoffs,
		logf:     log.Printf,
	}
	if cachePath != "" {
		cache, err := offline.Open(cachePath, cacheVersion)
		if err != nil {
			fatal(err)
		}
		defer cache.Close()
		if _, err := cache.Activate(ctx); err != nil {
			fatal(err)
		}
		origin, err := url.Parse(startURL)
		if err != nil {
			fatal(err)
		}
		f.client = cache.Client(origin, f.client.Transport)
		f.client.Timeout = 30 * time.Second
	}

	log.Printf("fetching SRD spells from %s", startURL)
	raws, err := f.fetchAll(ctx, startURL)
	if err != nil {
		fatal(err)
	}
	if len(raws) == 0 {
		fatal(errors.New("fetched 0 spells; check the url"))
	}
	if err := writeDataset(outPath, raws); err != nil {
		fatal(err)
	}
	fmt.Printf("OK: %d spells -> %s\n", len(raws), outPath)

	if csvPath == "" && xlsxPath == "" {
		return
	}
	recs, err := spell.Parse([]byte("[" + strings.Join(raws, ",") + "]"))
	if err != nil {
		fatal(err)
	}
	if csvPath != "" {
		if err := writeCSV(csvPath, recs); err != nil {
			fatal(err)
		}
		fmt.Printf("OK: %d rows -> %s\n", len(recs), csvPath)
	}
	if xlsxPath != "" {
		if err := writeXLSX(xlsxPath, recs); err != nil {
			fatal(err)
		}
		fmt.Printf("OK: %d rows -> %s\n", len(recs), xlsxPath)
	}
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "ERROR: %v\n", err)
	os.Exit(1)
}
