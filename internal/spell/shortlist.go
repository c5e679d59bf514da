package spell

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultShortlistPath is the user-editable shortlist file.
const DefaultShortlistPath = "my-spells.yaml"

type shortlistDoc struct {
	Spells []string `yaml:"spells"`
}

// LoadShortlist reads the shortlist file. A missing file is an empty shortlist.
func LoadShortlist(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("read shortlist: %w", err)
	}
	return ParseShortlist(b)
}

// ParseShortlist accepts either a bare YAML list of slugs or a mapping with a
// "spells" list. Entries are lowercased and trimmed; blank entries are dropped.
func ParseShortlist(data []byte) ([]string, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse shortlist: %w", err)
	}
	if len(doc.Content) == 0 {
		return nil, nil
	}
	node := doc.Content[0]

	var raw []string
	switch node.Kind {
	case yaml.SequenceNode:
		if err := node.Decode(&raw); err != nil {
			return nil, fmt.Errorf("parse shortlist: %w", err)
		}
	case yaml.MappingNode:
		var d shortlistDoc
		if err := node.Decode(&d); err != nil {
			return nil, fmt.Errorf("parse shortlist: %w", err)
		}
		raw = d.Spells
	default:
		return nil, fmt.Errorf("parse shortlist: expected a list of slugs at line %d", node.Line)
	}

	out := make([]string, 0, len(raw))
	for _, s := range raw {
		s = strings.ToLower(strings.TrimSpace(s))
		if s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}

// Shortlist returns the records named by slugs, in dataset order. A spell that
// appears under several document prefixes is listed once (first occurrence).
func Shortlist(records []Record, slugs []string) []Record {
	want := make(map[string]struct{}, len(slugs))
	for _, s := range slugs {
		if t := normalizeTarget(s); t != "" {
			want[t] = struct{}{}
		}
	}
	if len(want) == 0 {
		return nil
	}

	seen := map[string]struct{}{}
	var out []Record
	for _, r := range records {
		bare := BareSlug(r)
		_, full := want[Slug(r)]
		_, short := want[bare]
		if !full && !short {
			continue
		}
		if _, dup := seen[bare]; dup {
			continue
		}
		seen[bare] = struct{}{}
		out = append(out, r)
	}
	return out
}
