package spell

import (
	"sort"
	"strings"
)

// Any is the filter value that disables a level, school or class constraint.
const Any = "any"

// Filter is the search/level/school/class state of the list view.
type Filter struct {
	Search string
	Level  string
	School string
	Class  string
}

// Normalize maps empty level, school and class values to Any.
func (f Filter) Normalize() Filter {
	if f.Level == "" {
		f.Level = Any
	}
	if f.School == "" {
		f.School = Any
	}
	if f.Class == "" {
		f.Class = Any
	}
	return f
}

// IsZero reports whether the filter places no constraint at all.
func (f Filter) IsZero() bool {
	return f.Normalize() == Filter{Level: Any, School: Any, Class: Any}
}

func active(v string) bool { return v != "" && v != Any }

// Match reports whether a record passes every active predicate.
func (f Filter) Match(r Record) bool {
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(r.Name), q) && !strings.Contains(strings.ToLower(r.Desc), q) {
			return false
		}
	}
	if active(f.Level) {
		if !r.HasLevel || r.Level < 0 || r.Level >= len(Levels) || Levels[r.Level] != f.Level {
			return false
		}
	}
	if active(f.School) && r.School != f.School {
		return false
	}
	if active(f.Class) && !containsString(r.Classes, f.Class) {
		return false
	}
	return true
}

// Apply returns the records matching f in their original order. The input
// slice is never modified.
func Apply(records []Record, f Filter) []Record {
	out := make([]Record, 0, len(records))
	for _, r := range records {
		if f.Match(r) {
			out = append(out, r)
		}
	}
	return out
}

// ApplyFilters is Apply with the four filter values passed separately.
func ApplyFilters(records []Record, search, level, school, class string) []Record {
	return Apply(records, Filter{Search: search, Level: level, School: school, Class: class})
}

// UniqueClasses returns every class name used by the records, sorted.
func UniqueClasses(records []Record) []string {
	set := map[string]struct{}{}
	for _, r := range records {
		for _, c := range r.Classes {
			set[c] = struct{}{}
		}
	}
	out := make([]string, 0, len(set))
	for c := range set {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
