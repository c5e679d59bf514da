package main

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/poku-e/spellbook/internal/spell"
)

func testTools() *tools {
	return &tools{
		records: []spell.Record{
			{Key: "srd_fireball", Name: "Fireball", Level: 3, HasLevel: true, School: "Evocation", Classes: []string{"Sorcerer", "Wizard"}, Range: "150 feet", Verbal: true, Somatic: true, Material: true, MaterialSpecified: "bat guano", Duration: "Instantaneous", Desc: "A bright streak."},
			{Key: "srd_shield", Name: "Shield", Level: 1, HasLevel: true, School: "Abjuration", Classes: []string{"Wizard"}},
			{Key: "srd_magic-missile", Name: "Magic Missile", Level: 1, HasLevel: true, School: "Evocation", Classes: []string{"Wizard"}},
		},
		shortlist: []string{"magic-missile", "fireball"},
	}
}

func call(args map[string]any) mcp.CallToolRequest {
	var req mcp.CallToolRequest
	req.Params.Arguments = args
	return req
}

func text(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	if len(res.Content) != 1 {
		t.Fatalf("content=%v", res.Content)
	}
	tc, ok := res.Content[0].(mcp.TextContent)
	if !ok {
		t.Fatalf("content type %T", res.Content[0])
	}
	return tc.Text
}

func decodeSummaries(t *testing.T, s string) []summary {
	t.Helper()
	var out []summary
	if err := json.Unmarshal([]byte(s), &out); err != nil {
		t.Fatalf("decode %q: %v", s, err)
	}
	return out
}

func TestSearchSpells(t *testing.T) {
	tl := testTools()
	res, err := tl.handleSearch(context.Background(), call(map[string]any{"school": "Evocation", "level": "1st"}))
	if err != nil {
		t.Fatal(err)
	}
	got := decodeSummaries(t, text(t, res))
	if len(got) != 1 || got[0].Slug != "srd-magic-missile" || got[0].Level != "1st" {
		t.Fatalf("got=%+v", got)
	}

	res, _ = tl.handleSearch(context.Background(), call(map[string]any{"q": "zzz"}))
	if text(t, res) != "No spells match." {
		t.Fatalf("empty search text=%q", text(t, res))
	}

	res, _ = tl.handleSearch(context.Background(), call(map[string]any{"limit": 2}))
	if got := decodeSummaries(t, text(t, res)); len(got) != 2 || got[0].Name != "Fireball" {
		t.Fatalf("limited=%+v", got)
	}
}

func TestGetSpell(t *testing.T) {
	tl := testTools()
	res, err := tl.handleGet(context.Background(), call(map[string]any{"slug": "fireball"}))
	if err != nil {
		t.Fatal(err)
	}
	md := text(t, res)
	for _, want := range []string{"# Fireball", "*3rd · Evocation* · Sorcerer, Wizard", "V, S, M (bat guano)", "A bright streak."} {
		if !strings.Contains(md, want) {
			t.Fatalf("missing %q in:\n%s", want, md)
		}
	}

	res, _ = tl.handleGet(context.Background(), call(map[string]any{"slug": "fireboll"}))
	if !res.IsError || !strings.Contains(text(t, res), "Did you mean: fireball") {
		t.Fatalf("not-found result=%+v", res)
	}

	res, _ = tl.handleGet(context.Background(), call(nil))
	if !res.IsError {
		t.Fatal("missing slug should be an error")
	}
}

func TestMySpellsFollowsDatasetOrder(t *testing.T) {
	res, err := testTools().handleShortlist(context.Background(), call(nil))
	if err != nil {
		t.Fatal(err)
	}
	got := decodeSummaries(t, text(t, res))
	if len(got) != 2 || got[0].Name != "Fireball" || got[1].Name != "Magic Missile" {
		t.Fatalf("got=%+v", got)
	}

	empty := &tools{records: testTools().records}
	res, _ = empty.handleShortlist(context.Background(), call(nil))
	if !strings.Contains(text(t, res), "shortlist is empty") {
		t.Fatalf("text=%q", text(t, res))
	}
}
