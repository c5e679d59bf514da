package spell

import (
	"errors"
	"strconv"
	"strings"

	"github.com/tidwall/gjson"
)

// ---------- Data model ----------

// Levels maps a numeric spell level to its display label.
var Levels = []string{"Cantrip", "1st", "2nd", "3rd", "4th", "5th", "6th", "7th", "8th", "9th"}

// Schools lists the schools offered by the school filter.
var Schools = []string{"Abjuration", "Conjuration", "Divination", "Enchantment", "Evocation", "Illusion", "Necromancy", "Transmutation"}

// Record is one spell as loaded from the dataset. Fields that were absent or
// of an unexpected type are left at their zero value.
type Record struct {
	Key               string   `json:"key,omitempty"`
	ExplicitSlug      string   `json:"slug,omitempty"`
	Name              string   `json:"name"`
	Level             int      `json:"level"`
	HasLevel          bool     `json:"-"`
	School            string   `json:"school,omitempty"`
	Classes           []string `json:"classes,omitempty"`
	CastingTime       string   `json:"casting_time,omitempty"`
	Range             string   `json:"range,omitempty"`
	Duration          string   `json:"duration,omitempty"`
	Concentration     bool     `json:"concentration"`
	Ritual            bool     `json:"ritual"`
	Verbal            bool     `json:"verbal"`
	Somatic           bool     `json:"somatic"`
	Material          bool     `json:"material"`
	MaterialSpecified string   `json:"material_specified,omitempty"`
	Desc              string   `json:"desc,omitempty"`
	HigherLevel       string   `json:"higher_level,omitempty"`
	Document          string   `json:"document,omitempty"`

	// Raw is the record's original JSON text.
	Raw string `json:"-"`
}

// LevelLabel returns "Cantrip", "1st" ... "9th" for in-range levels, the bare
// number for anything else and "" when the record carries no level.
func (r Record) LevelLabel() string {
	if !r.HasLevel {
		return ""
	}
	if r.Level >= 0 && r.Level < len(Levels) {
		return Levels[r.Level]
	}
	return strconv.Itoa(r.Level)
}

// Components renders the V, S, M component list, e.g. "V, S, M (a pinch of sulfur)".
func (r Record) Components() string {
	var parts []string
	if r.Verbal {
		parts = append(parts, "V")
	}
	if r.Somatic {
		parts = append(parts, "S")
	}
	if r.Material {
		m := "M"
		if r.MaterialSpecified != "" {
			m += " (" + r.MaterialSpecified + ")"
		}
		parts = append(parts, m)
	}
	return strings.Join(parts, ", ")
}

// ---------- JSON decode ----------

// Parse decodes a dataset document. The document is either a bare array of
// records or an object carrying a "results" or "spells" array; an object with
// neither yields no records. Array entries that are not objects are skipped.
func Parse(data []byte) ([]Record, error) {
	if !gjson.ValidBytes(data) {
		return nil, errors.New("invalid JSON document")
	}
	root := gjson.ParseBytes(data)

	var list gjson.Result
	switch {
	case root.IsArray():
		list = root
	case root.IsObject():
		list = root.Get("results")
		if !list.IsArray() {
			list = root.Get("spells")
		}
	default:
		return nil, errors.New("dataset must be an array or an object")
	}

	records := []Record{}
	if !list.IsArray() {
		return records, nil
	}
	list.ForEach(func(_, v gjson.Result) bool {
		if v.IsObject() {
			records = append(records, decodeRecord(v))
		}
		return true
	})
	return records, nil
}

func decodeRecord(v gjson.Result) Record {
	r := Record{
		Key:               str(v.Get("key")),
		ExplicitSlug:      str(v.Get("slug")),
		Name:              str(v.Get("name")),
		School:            named(v.Get("school")),
		CastingTime:       str(v.Get("casting_time")),
		Range:             firstNonEmpty(str(v.Get("range_text")), str(v.Get("range"))),
		Duration:          str(v.Get("duration")),
		Concentration:     v.Get("concentration").Bool(),
		Ritual:            v.Get("ritual").Bool(),
		Verbal:            v.Get("verbal").Bool(),
		Somatic:           v.Get("somatic").Bool(),
		Material:          v.Get("material").Bool(),
		MaterialSpecified: str(v.Get("material_specified")),
		Desc:              str(v.Get("desc")),
		HigherLevel:       str(v.Get("higher_level")),
		Document:          firstNonEmpty(keyed(v.Get("document")), str(v.Get("document__slug"))),
		Raw:               v.Raw,
	}
	if lv := v.Get("level"); lv.Type == gjson.Number || (lv.Type == gjson.String && isDigits(lv.Str)) {
		r.Level = int(lv.Int())
		r.HasLevel = true
	}
	if classes := v.Get("classes"); classes.IsArray() {
		classes.ForEach(func(_, c gjson.Result) bool {
			if name := className(c); name != "" {
				r.Classes = append(r.Classes, name)
			}
			return true
		})
	}
	return r
}

// str returns the text of a string or number value and "" for everything else.
func str(v gjson.Result) string {
	switch v.Type {
	case gjson.String:
		return v.Str
	case gjson.Number:
		return v.Raw
	}
	return ""
}

// named resolves values that are either a plain string or an object with a name.
func named(v gjson.Result) string {
	if v.IsObject() {
		return str(v.Get("name"))
	}
	return str(v)
}

// className accepts a class given as a string or as an object with a string
// name. Numbers, nulls and other shapes are dropped.
func className(v gjson.Result) string {
	if v.IsObject() {
		v = v.Get("name")
	}
	if v.Type != gjson.String {
		return ""
	}
	return strings.TrimSpace(v.Str)
}

func keyed(v gjson.Result) string {
	if v.IsObject() {
		return firstNonEmpty(str(v.Get("key")), str(v.Get("name")))
	}
	return str(v)
}

func firstNonEmpty(vals ...string) string {
	for _, s := range vals {
		if s != "" {
			return s
		}
	}
	return ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}
