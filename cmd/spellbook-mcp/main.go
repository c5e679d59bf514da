// Command spellbook-mcp exposes the spell dataset to MCP clients over stdio.
package main

import (
	"context"
	"log"
	"os"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/poku-e/spellbook/internal/spell"
)

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func newServer(t *tools) *server.MCPServer {
	s := server.NewMCPServer(
		"Spellbook",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithResourceCapabilities(true, false),
	)

	s.AddTool(
		mcp.NewTool("search_spells",
			mcp.WithDescription("Search SRD spells by name and filter by level, school and class. Returns matching spells in dataset order."),
			mcp.WithString("q",
				mcp.Description("Case-insensitive text to find in the spell name or description"),
			),
			mcp.WithString("level",
				mcp.Description("Cantrip, 1st ... 9th, or 'any'"),
				mcp.DefaultString(spell.Any),
			),
			mcp.WithString("school",
				mcp.Description("School of magic (e.g. 'Evocation'), or 'any'"),
				mcp.DefaultString(spell.Any),
			),
			mcp.WithString("class",
				mcp.Description("Class that can cast the spell (e.g. 'Wizard'), or 'any'"),
				mcp.DefaultString(spell.Any),
			),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of results (default: 25)"),
			),
		),
		t.handleSearch,
	)

	s.AddTool(
		mcp.NewTool("get_spell",
			mcp.WithDescription("Read one spell by slug (e.g. 'magic-missile'). Document prefixes such as 'srd_' are ignored."),
			mcp.WithString("slug",
				mcp.Required(),
				mcp.Description("Spell slug"),
			),
		),
		t.handleGet,
	)

	s.AddTool(
		mcp.NewTool("my_spells",
			mcp.WithDescription("List the spells on the configured shortlist."),
		),
		t.handleShortlist,
	)

	s.AddResource(
		mcp.NewResource(
			classesURI,
			"Spell classes",
			mcp.WithResourceDescription("Every class that appears in the dataset, sorted"),
			mcp.WithMIMEType("application/json"),
		),
		t.handleClassesResource,
	)
	return s
}

func main() {
	dataPath := envOr("SPELLBOOK_DATA", spell.DefaultPath)
	shortlistPath := envOr("SPELLBOOK_SHORTLIST", spell.DefaultShortlistPath)

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	recs, err := spell.Source{Location: dataPath}.Load(ctx)
	cancel()
	if err != nil {
		log.Fatalf("%v (data: %s)", err, dataPath)
	}
	shortlist, err := spell.LoadShortlist(shortlistPath)
	if err != nil {
		log.Fatalf("load shortlist: %v", err)
	}
	log.Printf("spells: %d | shortlist: %d | data: %s", len(recs), len(shortlist), dataPath)

	s := newServer(&tools{records: recs, shortlist: shortlist})
	if err := server.ServeStdio(s); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
