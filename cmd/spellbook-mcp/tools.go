package main

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/poku-e/spellbook/internal/spell"
)

const (
	classesURI   = "spellbook://classes"
	defaultLimit = 25
)

// tools serves a dataset loaded once at startup.
type tools struct {
	records   []spell.Record
	shortlist []string
}

type summary struct {
	Slug    string   `json:"slug"`
	Name    string   `json:"name"`
	Level   string   `json:"level,omitempty"`
	School  string   `json:"school,omitempty"`
	Classes []string `json:"classes,omitempty"`
}

func summarize(recs []spell.Record) []summary {
	out := make([]summary, 0, len(recs))
	for _, r := range recs {
		out = append(out, summary{
			Slug:    spell.Slug(r),
			Name:    r.Name,
			Level:   r.LevelLabel(),
			School:  r.School,
			Classes: r.Classes,
		})
	}
	return out
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("Error encoding result: %v", err)), nil
	}
	return mcp.NewToolResultText(string(b)), nil
}

func (t *tools) handleSearch(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	q := req.GetString("q", "")
	level := req.GetString("level", spell.Any)
	school := req.GetString("school", spell.Any)
	class := req.GetString("class", spell.Any)
	limit := req.GetInt("limit", defaultLimit)
	if limit <= 0 {
		limit = defaultLimit
	}

	found := spell.ApplyFilters(t.records, q, level, school, class)
	if len(found) == 0 {
		return mcp.NewToolResultText("No spells match."), nil
	}
	if len(found) > limit {
		found = found[:limit]
	}
	return jsonResult(summarize(found))
}

func (t *tools) handleGet(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	slug := strings.TrimSpace(req.GetString("slug", ""))
	if slug == "" {
		return mcp.NewToolResultError("slug is required"), nil
	}
	r, ok := spell.Find(t.records, slug)
	if !ok {
		msg := fmt.Sprintf("Spell not found: %s", slug)
		if sugs := spell.Suggest(t.records, slug, 3); len(sugs) > 0 {
			var names []string
			for _, s := range sugs {
				names = append(names, spell.Slug(s))
			}
			msg += ". Did you mean: " + strings.Join(names, ", ")
		}
		return mcp.NewToolResultError(msg), nil
	}
	return mcp.NewToolResultText(describe(r)), nil
}

func (t *tools) handleShortlist(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	list := spell.Shortlist(t.records, t.shortlist)
	if len(list) == 0 {
		return mcp.NewToolResultText("The shortlist is empty. Add slugs to my-spells.yaml."), nil
	}
	return jsonResult(summarize(list))
}

func (t *tools) handleClassesResource(ctx context.Context, req mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	b, err := json.Marshal(spell.UniqueClasses(t.records))
	if err != nil {
		return nil, fmt.Errorf("encode classes: %w", err)
	}
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(b),
		},
	}, nil
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "—"
	}
	return s
}

// describe renders a spell as markdown.
func describe(r spell.Record) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.Name)
	fmt.Fprintf(&b, "*%s · %s*", orDash(r.LevelLabel()), orDash(r.School))
	if len(r.Classes) > 0 {
		fmt.Fprintf(&b, " · %s", strings.Join(r.Classes, ", "))
	}
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "- **Casting time:** %s\n", orDash(r.CastingTime))
	fmt.Fprintf(&b, "- **Range:** %s\n", orDash(r.Range))
	fmt.Fprintf(&b, "- **Components:** %s\n", orDash(r.Components()))
	dur := orDash(r.Duration)
	if r.Concentration {
		dur = "Concentration, " + dur
	}
	fmt.Fprintf(&b, "- **Duration:** %s\n", dur)
	if r.Ritual {
		b.WriteString("- **Ritual:** Yes\n")
	}
	if d := strings.TrimSpace(r.Desc); d != "" {
		b.WriteString("\n" + d + "\n")
	}
	if h := strings.TrimSpace(r.HigherLevel); h != "" {
		b.WriteString("\n**At higher levels.** " + h + "\n")
	}
	return b.String()
}
