package spell

import (
	"fmt"
	"hash/fnv"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/unicode/norm"
)

// docPrefixRe matches a leading document id segment such as "srd_" or "srd-2024_".
var docPrefixRe = regexp.MustCompile(`^[\w-]+_`)

const fallbackSlug = "spell"

// Slugify converts text to a URL-safe slug.
//
// Accents are folded away, letters are lowercased, every run of characters
// outside [a-z0-9] becomes a single hyphen and leading/trailing hyphens are
// trimmed:
//
//	Slugify("Magic Missile")            // "magic-missile"
//	Slugify("Tasha's Hideous Laughter") // "tasha-s-hideous-laughter"
//	Slugify("Mordenkainén")             // "mordenkainen"
func Slugify(s string) string {
	s = norm.NFD.String(s)
	var b strings.Builder
	b.Grow(len(s))
	pendingHyphen := false
	for _, r := range s {
		if unicode.Is(unicode.Mn, r) {
			continue
		}
		r = unicode.ToLower(r)
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if pendingHyphen && b.Len() > 0 {
				b.WriteByte('-')
			}
			pendingHyphen = false
			b.WriteRune(r)
			continue
		}
		pendingHyphen = true
	}
	return b.String()
}

// StripDocPrefix removes a leading "<document>_" segment, so "srd_magic-missile"
// and "srd-2024_magic-missile" both become "magic-missile".
func StripDocPrefix(s string) string {
	return docPrefixRe.ReplaceAllString(s, "")
}

// slugSource picks the text a record's slug is derived from: the explicit slug,
// then the key when it is already hyphenated, then the name.
func slugSource(r Record) string {
	if r.ExplicitSlug != "" {
		return r.ExplicitSlug
	}
	if strings.Contains(r.Key, "-") {
		return r.Key
	}
	return r.Name
}

// Slug returns the record's URL slug. It is never empty and only contains
// [a-z0-9-] with no leading or trailing hyphen.
func Slug(r Record) string {
	if s := Slugify(slugSource(r)); s != "" {
		return s
	}
	if s := Slugify(r.Key); s != "" {
		return s
	}
	return fallback(r)
}

// fallback names records with no usable text as "spell-<hash>", so two such
// records still get distinct detail links.
func fallback(r Record) string {
	h := fnv.New32a()
	for _, part := range []string{r.Key, r.ExplicitSlug, r.Name, r.Raw} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%s-%08x", fallbackSlug, h.Sum32())
}

// BareSlug is the record's slug with any document prefix removed. Two records
// for the same spell from different documents share a bare slug.
func BareSlug(r Record) string {
	if s := Slugify(StripDocPrefix(strings.ToLower(slugSource(r)))); s != "" {
		return s
	}
	return Slug(r)
}

// normalizeTarget prepares a user supplied slug (URL segment or shortlist
// entry) for comparison.
func normalizeTarget(target string) string {
	return Slugify(StripDocPrefix(strings.ToLower(strings.TrimSpace(target))))
}

// MatchSlug reports whether target names the record, ignoring case,
// surrounding whitespace and document prefixes on either side.
func MatchSlug(r Record, target string) bool {
	t := normalizeTarget(target)
	if t == "" {
		return false
	}
	return t == Slug(r) || t == BareSlug(r)
}

// Find returns the record for a slug. A record whose full slug equals the
// target wins; otherwise the first record whose bare slug matches is used.
func Find(records []Record, slug string) (Record, bool) {
	exact := Slugify(strings.ToLower(strings.TrimSpace(slug)))
	if exact == "" {
		return Record{}, false
	}
	for _, r := range records {
		if Slug(r) == exact {
			return r, true
		}
	}
	for _, r := range records {
		if MatchSlug(r, slug) {
			return r, true
		}
	}
	return Record{}, false
}
