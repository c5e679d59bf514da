package spell

import (
	"reflect"
	"testing"
)

func sampleRecords() []Record {
	return []Record{
		{Name: "Fireball", Level: 3, HasLevel: true, School: "Evocation", Classes: []string{"Sorcerer", "Wizard"}, Desc: "A bright streak flashes from your pointing finger."},
		{Name: "Shield", Level: 1, HasLevel: true, School: "Abjuration", Classes: []string{"Sorcerer", "Wizard"}, Desc: "An invisible barrier of magical force appears."},
		{Name: "Fire Bolt", Level: 0, HasLevel: true, School: "Evocation", Classes: []string{"Sorcerer", "Wizard"}, Desc: "You hurl a mote of fire."},
		{Name: "Cure Wounds", Level: 1, HasLevel: true, School: "Evocation", Classes: []string{"Bard", "Cleric", "Druid"}, Desc: "A creature you touch regains hit points."},
		{Name: "Mystery", Desc: "Nobody knows."},
	}
}

func names(recs []Record) []string {
	out := make([]string, 0, len(recs))
	for _, r := range recs {
		out = append(out, r.Name)
	}
	return out
}

func TestApplyFiltersExampleFire(t *testing.T) {
	recs := []Record{
		{Name: "Fireball", Level: 3, HasLevel: true, School: "Evocation"},
		{Name: "Shield", Level: 1, HasLevel: true, School: "Abjuration"},
	}
	got := ApplyFilters(recs, "fire", Any, Any, Any)
	if !reflect.DeepEqual(names(got), []string{"Fireball"}) {
		t.Fatalf("ApplyFilters(fire)=%v want=[Fireball]", names(got))
	}
}

func TestApplyFiltersIdentityAtDefaults(t *testing.T) {
	recs := sampleRecords()
	got := ApplyFilters(recs, "", Any, Any, Any)
	if !reflect.DeepEqual(got, recs) {
		t.Fatalf("defaults should return the input unchanged:\n got=%v\nwant=%v", names(got), names(recs))
	}
	got = ApplyFilters(recs, "", "", "", "")
	if !reflect.DeepEqual(got, recs) {
		t.Fatalf("empty values should behave like any, got %v", names(got))
	}
}

func TestApplyFiltersPreservesOrder(t *testing.T) {
	recs := sampleRecords()
	reversed := make([]Record, len(recs))
	for i, r := range recs {
		reversed[len(recs)-1-i] = r
	}
	for _, in := range [][]Record{recs, reversed} {
		got := ApplyFilters(in, "", Any, "Evocation", Any)
		pos := map[string]int{}
		for i, r := range in {
			pos[r.Name] = i
		}
		for i := 1; i < len(got); i++ {
			if pos[got[i-1].Name] > pos[got[i].Name] {
				t.Fatalf("output order %v does not follow input order %v", names(got), names(in))
			}
		}
	}
}

func TestApplyFiltersPredicates(t *testing.T) {
	recs := sampleRecords()
	tests := []struct {
		name string
		f    Filter
		want []string
	}{
		{name: "search name case-insensitive", f: Filter{Search: "FIRE"}, want: []string{"Fireball", "Fire Bolt"}},
		{name: "search description", f: Filter{Search: "hit points"}, want: []string{"Cure Wounds"}},
		{name: "cantrip", f: Filter{Level: "Cantrip"}, want: []string{"Fire Bolt"}},
		{name: "level label", f: Filter{Level: "1st"}, want: []string{"Shield", "Cure Wounds"}},
		{name: "school", f: Filter{School: "Abjuration"}, want: []string{"Shield"}},
		{name: "class", f: Filter{Class: "Cleric"}, want: []string{"Cure Wounds"}},
		{name: "anded", f: Filter{Search: "fire", Level: "3rd", School: "Evocation", Class: "Wizard"}, want: []string{"Fireball"}},
		{name: "no match", f: Filter{School: "Necromancy"}, want: []string{}},
		{name: "school is exact", f: Filter{School: "evocation"}, want: []string{}},
	}
	for _, tc := range tests {
		got := names(Apply(recs, tc.f))
		if !reflect.DeepEqual(got, tc.want) {
			t.Fatalf("%s: got=%v want=%v", tc.name, got, tc.want)
		}
	}
}

func TestApplyDoesNotModifyInput(t *testing.T) {
	recs := sampleRecords()
	before := names(recs)
	_ = ApplyFilters(recs, "shield", Any, Any, Any)
	if !reflect.DeepEqual(names(recs), before) {
		t.Fatalf("input was modified: %v", names(recs))
	}
}

func TestUniqueClassesSorted(t *testing.T) {
	got := UniqueClasses(sampleRecords())
	want := []string{"Bard", "Cleric", "Druid", "Sorcerer", "Wizard"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("UniqueClasses=%v want=%v", got, want)
	}
}

func TestFilterNormalize(t *testing.T) {
	f := Filter{Search: "x"}.Normalize()
	if f.Level != Any || f.School != Any || f.Class != Any || f.Search != "x" {
		t.Fatalf("unexpected normalized filter %+v", f)
	}
	if !(Filter{}).IsZero() {
		t.Fatalf("empty filter should be zero")
	}
	if (Filter{Level: "1st"}).IsZero() {
		t.Fatalf("level filter should not be zero")
	}
}

func TestLevelLabel(t *testing.T) {
	tests := []struct {
		rec  Record
		want string
	}{
		{rec: Record{Level: 0, HasLevel: true}, want: "Cantrip"},
		{rec: Record{Level: 9, HasLevel: true}, want: "9th"},
		{rec: Record{Level: 12, HasLevel: true}, want: "12"},
		{rec: Record{}, want: ""},
	}
	for _, tc := range tests {
		if got := tc.rec.LevelLabel(); got != tc.want {
			t.Fatalf("LevelLabel(%d,%v)=%q want=%q", tc.rec.Level, tc.rec.HasLevel, got, tc.want)
		}
	}
}

func TestComponents(t *testing.T) {
	r := Record{Verbal: true, Somatic: true, Material: true, MaterialSpecified: "a tiny ball of bat guano"}
	if got, want := r.Components(), "V, S, M (a tiny ball of bat guano)"; got != want {
		t.Fatalf("Components=%q want=%q", got, want)
	}
	if got := (Record{}).Components(); got != "" {
		t.Fatalf("expected no components, got %q", got)
	}
}
