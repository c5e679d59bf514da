// Package view renders application state to markup.
//
// A Renderer produces a complete frame for the app region. An Incremental
// renderer can also produce a Patch for the list view: the list items, the
// summary line and the values the filter controls should show, so that a
// filter change does not replace the controls the user is typing into.
package view

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"strings"

	"github.com/poku-e/spellbook/internal/route"
	"github.com/poku-e/spellbook/internal/spell"
)

//go:embed templates/*.html
var tmplFS embed.FS

var funcs = template.FuncMap{
	"dash": func(s string) string {
		if strings.TrimSpace(s) == "" {
			return "—"
		}
		return s
	},
}

var baseTmpl = template.Must(template.New("view").Funcs(funcs).ParseFS(tmplFS, "templates/*.html"))

// DefaultHint is appended to the load failure message.
const DefaultHint = template.HTML("Run <code>fetch-spells</code> to populate spell data.")

const suggestionCount = 3

// Model is everything a render needs. Records are never modified.
type Model struct {
	Route     route.Route
	Records   []spell.Record
	Shortlist []string
	Loading   bool
	Err       error
}

// Ready reports whether the dataset is loaded without error.
func (m Model) Ready() bool { return !m.Loading && m.Err == nil }

// Frame is a full render of the app region.
type Frame struct {
	View    route.View    `json:"view,omitempty"`
	Loading bool          `json:"loading,omitempty"`
	Failed  bool          `json:"failed,omitempty"`
	HTML    template.HTML `json:"html"`
}

// Patch is an incremental update of the list view.
type Patch struct {
	List     template.HTML `json:"list"`
	Summary  string        `json:"summary"`
	Controls Controls      `json:"controls"`
}

// Controls are the values the filter inputs must display.
type Controls struct {
	Search string `json:"search"`
	Level  string `json:"level"`
	School string `json:"school"`
	Class  string `json:"class"`
}

// Renderer produces full frames.
type Renderer interface {
	Full(m Model) (Frame, error)
}

// Incremental renderers can also patch the list view in place.
type Incremental interface {
	Renderer
	Partial(m Model) (Patch, error)
}

// HTML renders with the embedded html/template set.
type HTML struct {
	tmpl *template.Template
	// Hint follows the load error message.
	Hint template.HTML
}

var _ Incremental = (*HTML)(nil)

// New returns the default renderer.
func New() *HTML {
	return &HTML{tmpl: baseTmpl, Hint: DefaultHint}
}

type navLink struct {
	Name   string
	Href   string
	Active bool
}

type layoutData struct {
	Nav  []navLink
	Body template.HTML
}

type item struct {
	Slug string
	Name string
	Meta string
}

type listData struct {
	Title       string
	ShowFilters bool
	Filter      spell.Filter
	Levels      []string
	Schools     []string
	Classes     []string
	Summary     string
	Items       []item
	Empty       template.HTML
}

type detailData struct {
	Found         bool
	Name          string
	Meta          string
	CastingTime   string
	Range         string
	Components    string
	Duration      string
	Concentration bool
	Ritual        bool
	Desc          []string
	Higher        []string
	Suggestions   []item
}

type errorData struct {
	Message string
	Hint    template.HTML
}

// Full renders the whole app region for m.
func (h *HTML) Full(m Model) (Frame, error) {
	if m.Loading {
		body, err := h.exec("loading", nil)
		return Frame{Loading: true, HTML: body}, err
	}
	if m.Err != nil {
		body, err := h.exec("error", errorData{Message: m.Err.Error(), Hint: h.Hint})
		return Frame{Failed: true, HTML: body}, err
	}

	r := m.Route
	if r == nil {
		r = route.Default
	}
	var (
		body template.HTML
		err  error
	)
	switch rt := r.(type) {
	case route.Shortlist:
		body, err = h.exec("list", shortlistData(m))
	case route.List:
		body, err = h.exec("list", fullListData(m.Records, rt.Filter))
	case route.Detail:
		body, err = h.exec("detail", buildDetail(m.Records, rt.Slug))
	case route.Rules:
		body, err = h.exec("rules", nil)
	case route.Sources:
		body, err = h.exec("sources", nil)
	default:
		return Frame{}, fmt.Errorf("unknown route %T", r)
	}
	if err != nil {
		return Frame{}, err
	}

	page, err := h.exec("layout", layoutData{Nav: nav(r.View()), Body: body})
	if err != nil {
		return Frame{}, err
	}
	return Frame{View: r.View(), HTML: page}, nil
}

// Partial renders the list items, summary and control values of a list route.
func (h *HTML) Partial(m Model) (Patch, error) {
	lr, ok := m.Route.(route.List)
	if !ok {
		return Patch{}, fmt.Errorf("partial render needs a list route, got %T", m.Route)
	}
	if !m.Ready() {
		return Patch{}, fmt.Errorf("partial render before data is ready")
	}
	data := fullListData(m.Records, lr.Filter)
	list, err := h.exec("items", data)
	if err != nil {
		return Patch{}, err
	}
	f := lr.Filter.Normalize()
	return Patch{
		List:     list,
		Summary:  data.Summary,
		Controls: Controls{Search: f.Search, Level: f.Level, School: f.School, Class: f.Class},
	}, nil
}

func (h *HTML) exec(name string, data any) (template.HTML, error) {
	var buf bytes.Buffer
	if err := h.tmpl.ExecuteTemplate(&buf, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return template.HTML(buf.String()), nil
}

func nav(v route.View) []navLink {
	active := "My Spells"
	switch v {
	case route.ViewList:
		active = "Spells"
	case route.ViewRules:
		active = "Rules"
	case route.ViewSources:
		active = "Sources"
	}
	links := []navLink{
		{Name: "My Spells", Href: "#my-spells"},
		{Name: "Spells", Href: "#spells"},
		{Name: "Rules", Href: "#rules"},
		{Name: "Sources", Href: "#sources"},
	}
	for i := range links {
		links[i].Active = links[i].Name == active
	}
	return links
}

func items(recs []spell.Record) []item {
	out := make([]item, 0, len(recs))
	for _, r := range recs {
		out = append(out, item{Slug: spell.Slug(r), Name: r.Name, Meta: meta(r)})
	}
	return out
}

func meta(r spell.Record) string {
	school := r.School
	if school == "" {
		school = "—"
	}
	level := r.LevelLabel()
	if level == "" {
		level = "—"
	}
	return level + " · " + school
}

// Summary is the line above the list: empty when every record is shown.
func Summary(shown, total int) string {
	if shown == total {
		return ""
	}
	return fmt.Sprintf("Showing %d of %d spells.", shown, total)
}

func fullListData(records []spell.Record, f spell.Filter) listData {
	f = f.Normalize()
	filtered := spell.Apply(records, f)
	return listData{
		ShowFilters: true,
		Filter:      f,
		Levels:      spell.Levels,
		Schools:     spell.Schools,
		Classes:     spell.UniqueClasses(records),
		Summary:     Summary(len(filtered), len(records)),
		Items:       items(filtered),
		Empty:       "No spells match your filters.",
	}
}

func shortlistData(m Model) listData {
	mine := spell.Shortlist(m.Records, m.Shortlist)
	d := listData{
		Title: "My Spells",
		Items: items(mine),
		Empty: "Edit <code>my-spells.yaml</code> and add spell slugs (e.g. fireball, magic-missile) to see them here.",
	}
	if n := len(mine); n > 0 {
		plural := "s"
		if n == 1 {
			plural = ""
		}
		d.Summary = fmt.Sprintf("%d spell%s in your list.", n, plural)
	}
	return d
}

func buildDetail(records []spell.Record, slug string) detailData {
	r, ok := spell.Find(records, slug)
	if !ok {
		return detailData{Suggestions: items(spell.Suggest(records, slug, suggestionCount))}
	}
	headline := strings.TrimSpace(r.LevelLabel() + " " + r.School)
	if len(r.Classes) > 0 {
		headline += " · " + strings.Join(r.Classes, ", ")
	}
	return detailData{
		Found:         true,
		Name:          r.Name,
		Meta:          headline,
		CastingTime:   r.CastingTime,
		Range:         r.Range,
		Components:    r.Components(),
		Duration:      r.Duration,
		Concentration: r.Concentration,
		Ritual:        r.Ritual,
		Desc:          lines(r.Desc),
		Higher:        lines(r.HigherLevel),
	}
}

func lines(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, "\n")
}
