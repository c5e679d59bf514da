package main

import (
	"context"
	"encoding/csv"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/poku-e/spellbook/internal/spell"
)

func testFetcher(t *testing.T) *fetcher {
	t.Helper()
	return &fetcher{
		client:   http.DefaultClient,
		backoffs: []time.Duration{0, 0, 0},
		logf:     t.Logf,
	}
}

func TestFetchAllFollowsNext(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.URL.Query().Get("page") {
		case "":
			fmt.Fprintf(w, `{"count":3,"next":%q,"results":[{"key":"srd_acid-splash","name":"Acid Splash"},{"key":"srd_fireball","name":"Fireball"}]}`, srv.URL+"/spells/?page=2")
		case "2":
			w.Write([]byte(`{"count":3,"next":"/spells/?page=3","results":[{"key":"srd_shield","name":"Shield"}]}`))
		case "3":
			w.Write([]byte(`{"count":3,"next":null,"results":[]}`))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	raws, err := testFetcher(t).fetchAll(context.Background(), srv.URL+"/spells/")
	if err != nil {
		t.Fatalf("fetchAll: %v", err)
	}
	recs, err := spell.Parse([]byte("[" + strings.Join(raws, ",") + "]"))
	if err != nil {
		t.Fatal(err)
	}
	var got []string
	for _, r := range recs {
		got = append(got, r.Name)
	}
	if strings.Join(got, ",") != "Acid Splash,Fireball,Shield" {
		t.Fatalf("names=%v", got)
	}
}

func TestFetchRetriesTransientFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch atomic.AddInt32(&calls, 1) {
		case 1:
			w.WriteHeader(http.StatusServiceUnavailable)
		case 2:
			w.WriteHeader(http.StatusTooManyRequests)
		default:
			w.Write([]byte(`{"next":null,"results":[{"name":"Light"}]}`))
		}
	}))
	defer srv.Close()

	raws, err := testFetcher(t).fetchAll(context.Background(), srv.URL)
	if err != nil {
		t.Fatalf("fetchAll: %v", err)
	}
	if n := atomic.LoadInt32(&calls); len(raws) != 1 || n != 3 {
		t.Fatalf("raws=%d calls=%d", len(raws), n)
	}
}

func TestFetchFailsOnClientError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusGone)
	}))
	defer srv.Close()

	_, err := testFetcher(t).fetchAll(context.Background(), srv.URL)
	if err == nil || !strings.Contains(err.Error(), "410") {
		t.Fatalf("err=%v", err)
	}
}

func TestFetchDetectsPaginationLoop(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, `{"next":%q,"results":[]}`, srv.URL+"/")
	}))
	defer srv.Close()

	if _, err := testFetcher(t).fetchAll(context.Background(), srv.URL+"/"); err == nil {
		t.Fatal("expected loop error")
	}
}

func TestWriteDatasetIsReadable(t *testing.T) {
	path := filepath.Join(t.TempDir(), "public", "spells.json")
	raws := []string{`{"key":"srd_fireball","name":"Fireball","level":3}`, `{"name":"Shield","level":1}`}
	if err := writeDataset(path, raws); err != nil {
		t.Fatalf("writeDataset: %v", err)
	}
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Fatalf("temp file left behind: %v", err)
	}
	recs, err := spell.Source{Location: path}.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(recs) != 2 || recs[0].LevelLabel() != "3rd" {
		t.Fatalf("recs=%+v", recs)
	}
}

func exportRecords() []spell.Record {
	return []spell.Record{
		{Key: "srd_fireball", Name: "Fireball", Level: 3, HasLevel: true, School: "Evocation", Classes: []string{"Sorcerer", "Wizard"}, Verbal: true, Somatic: true, Material: true, MaterialSpecified: "bat guano"},
		{Key: "srd_shield", Name: "Shield", Level: 1, HasLevel: true, School: "Abjuration", Ritual: false},
	}
}

func TestWriteCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spells.csv")
	if err := writeCSV(path, exportRecords()); err != nil {
		t.Fatalf("writeCSV: %v", err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[0][0] != "name" {
		t.Fatalf("rows=%v", rows)
	}
	if rows[1][1] != "fireball" || rows[1][4] != "Sorcerer, Wizard" || rows[1][7] != "V, S, M (bat guano)" {
		t.Fatalf("fireball row=%v", rows[1])
	}
}

func TestWriteXLSX(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spells.xlsx")
	if err := writeXLSX(path, exportRecords()); err != nil {
		t.Fatalf("writeXLSX: %v", err)
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()
	rows, err := f.GetRows("Spells")
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[2][0] != "Shield" || rows[2][2] != "1st" {
		t.Fatalf("rows=%v", rows)
	}
}
