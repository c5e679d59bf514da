// Package route maps URL fragments to application views and back.
//
// Fragment grammar: #<path>[?<query>]. Recognized paths are my-spells,
// spells (query keys q, level, school, class), spell/<slug>, rules and
// sources. Anything else resolves to the shortlist.
package route

import (
	"net/url"
	"strings"

	"github.com/poku-e/spellbook/internal/spell"
)

// View names a kind of screen. The values double as fragment paths.
type View string

const (
	ViewShortlist View = "my-spells"
	ViewList      View = "spells"
	ViewDetail    View = "spell"
	ViewRules     View = "rules"
	ViewSources   View = "sources"
)

// Route is one of Shortlist, List, Detail, Rules or Sources.
type Route interface {
	View() View
	// Fragment is the canonical "#..." form of the route.
	Fragment() string
	isRoute()
}

// Shortlist is the default view listing the user's chosen spells.
type Shortlist struct{}

// List is the full list narrowed by a filter.
type List struct {
	Filter spell.Filter
}

// Detail shows the spell identified by Slug.
type Detail struct {
	Slug string
}

// Rules links to spellcasting rules.
type Rules struct{}

// Sources shows data sources and licensing.
type Sources struct{}

func (Shortlist) View() View { return ViewShortlist }
func (List) View() View      { return ViewList }
func (Detail) View() View    { return ViewDetail }
func (Rules) View() View     { return ViewRules }
func (Sources) View() View   { return ViewSources }

func (Shortlist) Fragment() string { return "#" + string(ViewShortlist) }
func (l List) Fragment() string {
	return Fragment(l.Filter.Search, l.Filter.Level, l.Filter.School, l.Filter.Class)
}
func (d Detail) Fragment() string { return "#spell/" + url.PathEscape(d.Slug) }
func (Rules) Fragment() string    { return "#" + string(ViewRules) }
func (Sources) Fragment() string  { return "#" + string(ViewSources) }

func (Shortlist) isRoute() {}
func (List) isRoute()      {}
func (Detail) isRoute()    {}
func (Rules) isRoute()     {}
func (Sources) isRoute()   {}

// Default is the route used for empty and unrecognized fragments.
var Default Route = Shortlist{}

// Parse derives a route from a URL fragment. The leading '#' is optional.
func Parse(fragment string) Route {
	raw := strings.TrimPrefix(fragment, "#")
	path, query, _ := strings.Cut(raw, "?")

	switch {
	case path == string(ViewShortlist), path == "":
		return Shortlist{}
	case path == string(ViewRules):
		return Rules{}
	case path == string(ViewSources):
		return Sources{}
	case strings.HasPrefix(path, "spell/"):
		slug := strings.TrimPrefix(path, "spell/")
		if dec, err := url.PathUnescape(slug); err == nil {
			slug = dec
		}
		return Detail{Slug: slug}
	case path == string(ViewList):
		// ParseQuery keeps every well-formed pair even when it reports an error.
		params, _ := url.ParseQuery(query)
		return List{Filter: spell.Filter{
			Search: params.Get("q"),
			Level:  params.Get("level"),
			School: params.Get("school"),
			Class:  params.Get("class"),
		}.Normalize()}
	}
	return Default
}

// Fragment serializes a list filter. Keys at their default ("" for search,
// "any" or "" otherwise) are omitted, so each filter state has exactly one
// fragment.
func Fragment(search, level, school, class string) string {
	var b strings.Builder
	b.WriteString("#")
	b.WriteString(string(ViewList))
	sep := byte('?')
	add := func(key, val string) {
		b.WriteByte(sep)
		sep = '&'
		b.WriteString(key)
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(val))
	}
	if search != "" {
		add("q", search)
	}
	if level != "" && level != spell.Any {
		add("level", level)
	}
	if school != "" && school != spell.Any {
		add("school", school)
	}
	if class != "" && class != spell.Any {
		add("class", class)
	}
	return b.String()
}

// SameView reports whether two routes render the same kind of screen.
func SameView(a, b Route) bool {
	if a == nil || b == nil {
		return false
	}
	return a.View() == b.View()
}
