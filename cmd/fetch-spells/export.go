package main

import (
	"encoding/csv"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/poku-e/spellbook/internal/spell"
)

var columns = []string{
	"name", "slug", "level", "school", "classes",
	"casting_time", "range", "components", "duration",
	"concentration", "ritual", "document",
}

// writeDataset writes raw entries as one flat JSON array. The file is
// replaced atomically so a running server never reads half a dataset.
func writeDataset(path string, raws []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data := "[" + strings.Join(raws, ",") + "]"
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, []byte(data), 0o644); err != nil {
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return nil
}

func row(r spell.Record) []string {
	return []string{
		r.Name,
		spell.Slug(r),
		r.LevelLabel(),
		r.School,
		strings.Join(r.Classes, ", "),
		r.CastingTime,
		r.Range,
		r.Components(),
		r.Duration,
		strconv.FormatBool(r.Concentration),
		strconv.FormatBool(r.Ritual),
		r.Document,
	}
}

func writeCSV(path string, recs []spell.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	w := csv.NewWriter(f)
	if err := w.Write(columns); err != nil {
		return err
	}
	for _, r := range recs {
		if err := w.Write(row(r)); err != nil {
			return err
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return err
	}
	return f.Close()
}

func writeXLSX(path string, recs []spell.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	const sheet = "Spells"
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		return err
	}
	sw, err := f.NewStreamWriter(sheet)
	if err != nil {
		return err
	}
	if err := sw.SetRow("A1", cells(columns)); err != nil {
		return err
	}
	for i, r := range recs {
		addr, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := sw.SetRow(addr, cells(row(r))); err != nil {
			return err
		}
	}
	if err := sw.Flush(); err != nil {
		return err
	}
	return f.SaveAs(path)
}

func cells(vals []string) []any {
	out := make([]any, len(vals))
	for i, v := range vals {
		out[i] = v
	}
	return out
}
