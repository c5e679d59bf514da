// Package app ties the dataset, router and renderer together.
//
// The URL fragment is the only source of view state: filter inputs are turned
// into a fragment by FilterChanged, and the resulting navigation is rendered by
// Navigate.
package app

import (
	"strings"

	"github.com/poku-e/spellbook/internal/route"
	"github.com/poku-e/spellbook/internal/view"
)

// Mode says how an Update must be applied.
type Mode string

const (
	// ModeFull replaces the whole app region and rebinds event handlers.
	ModeFull Mode = "full"
	// ModePartial swaps the list and summary and reconciles control values.
	ModePartial Mode = "partial"
)

// Update is the result of one navigation.
type Update struct {
	Mode     Mode        `json:"mode"`
	Fragment string      `json:"fragment"`
	Frame    *view.Frame `json:"frame,omitempty"`
	Patch    *view.Patch `json:"patch,omitempty"`
}

// Controller tracks the route shown to one client.
type Controller struct {
	store     *Store
	renderer  view.Renderer
	shortlist []string
	current   route.Route
}

// NewController returns a controller that has not rendered anything yet.
func NewController(store *Store, r view.Renderer, shortlist []string) *Controller {
	return &Controller{store: store, renderer: r, shortlist: shortlist}
}

// Current is the last route rendered with data, nil before that.
func (c *Controller) Current() route.Route { return c.current }

// Resume restores the route a client already shows. An empty fragment means
// nothing has been rendered.
func (c *Controller) Resume(fragment string) {
	if strings.TrimSpace(fragment) == "" {
		c.current = nil
		return
	}
	c.current = route.Parse(fragment)
}

// Navigate renders the route for fragment. A partial update is produced only
// when data is ready and both the previous and the new route are list routes;
// everything else is a full render.
func (c *Controller) Navigate(fragment string) (Update, error) {
	next := route.Parse(fragment)
	st := c.store.Snapshot()
	m := view.Model{
		Route:     next,
		Records:   st.Records,
		Shortlist: c.shortlist,
		Loading:   st.Loading,
		Err:       st.Err,
	}

	if inc, ok := c.renderer.(view.Incremental); ok && m.Ready() && isList(c.current) && isList(next) {
		p, err := inc.Partial(m)
		if err != nil {
			return Update{}, err
		}
		c.current = next
		return Update{Mode: ModePartial, Fragment: next.Fragment(), Patch: &p}, nil
	}

	f, err := c.renderer.Full(m)
	if err != nil {
		return Update{}, err
	}
	if m.Ready() {
		c.current = next
	} else {
		c.current = nil
	}
	return Update{Mode: ModeFull, Fragment: next.Fragment(), Frame: &f}, nil
}

func isList(r route.Route) bool {
	_, ok := r.(route.List)
	return ok
}

// FilterChanged converts the live control values into the fragment to
// navigate to. It does not render; the navigation that follows does.
func (c *Controller) FilterChanged(search, level, school, class string) string {
	return route.Fragment(strings.TrimSpace(search), level, school, class)
}
