package spell

import (
	"sort"

	"github.com/agnivade/levenshtein"
)

// suggestLimit scales the accepted edit distance with the length of the slug.
func suggestLimit(n int) int {
	switch {
	case n <= 4:
		return 1
	case n <= 8:
		return 2
	default:
		return 3 + n/12
	}
}

// Suggest returns up to n records whose bare slug is close to the unknown
// slug, nearest first. Ties keep dataset order.
func Suggest(records []Record, slug string, n int) []Record {
	target := normalizeTarget(slug)
	if target == "" || n <= 0 {
		return nil
	}
	limit := suggestLimit(len(target))

	type cand struct {
		rec  Record
		dist int
	}
	var cands []cand
	seen := map[string]struct{}{}
	for _, r := range records {
		bare := BareSlug(r)
		if _, dup := seen[bare]; dup {
			continue
		}
		seen[bare] = struct{}{}
		d := levenshtein.ComputeDistance(target, bare)
		if d > limit {
			continue
		}
		cands = append(cands, cand{rec: r, dist: d})
	}
	sort.SliceStable(cands, func(i, j int) bool { return cands[i].dist < cands[j].dist })

	if len(cands) > n {
		cands = cands[:n]
	}
	out := make([]Record, 0, len(cands))
	for _, c := range cands {
		out = append(out, c.rec)
	}
	return out
}
