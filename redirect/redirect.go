/*
Package redirect resolves legacy, retired and misspelled paths to
their canonical destinations.

Resolution is a fixed-order, short-circuiting match: the retired
("gone") set first, then the locale-qualified exact table, then the
global exact table, then a fuzzy edit-distance match against a small
curated target list. The tables are immutable after construction, so
a single Resolver serves concurrent requests without locking.
*/
package redirect

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/adrg/strutil/metrics"

	"github.com/edgegate/edgegate/locale"
)

// Tables is the redirect configuration, as loaded at startup. Exact
// and locale-qualified sources use prefix-stripped, canonicalized
// paths as keys; fuzzy targets are bare slugs in declaration order.
type Tables struct {
	Gone        []string
	Exact       map[string]string
	LocaleExact map[string]string
	Sections    []string
	Fuzzy       []string
}

// Match is a resolved redirect decision: a 301 with a location, or a
// 410 with none for permanently removed paths. Reason names the table
// that produced the match.
type Match struct {
	Status   int
	Location string
	Reason   string
}

type target struct {
	slug string
	norm string
}

// Resolver answers redirect lookups against the loaded tables.
type Resolver struct {
	table       *locale.Table
	gone        map[string]bool
	exact       map[string]string
	localeExact map[string]string
	sections    map[string]bool
	targets     []target
	lev         *metrics.Levenshtein
}

// New builds a Resolver. Destinations and fuzzy targets are validated
// here so that request-time resolution cannot fail.
func New(t *locale.Table, tab Tables) (*Resolver, error) {
	r := &Resolver{
		table:       t,
		gone:        make(map[string]bool),
		exact:       make(map[string]string),
		localeExact: make(map[string]string),
		sections:    make(map[string]bool),
		lev:         metrics.NewLevenshtein(),
	}

	// unit costs for insert, delete and substitute
	r.lev.CaseSensitive = false
	r.lev.InsertCost = 1
	r.lev.DeleteCost = 1
	r.lev.ReplaceCost = 1

	for _, p := range tab.Gone {
		if !strings.HasPrefix(p, "/") {
			return nil, fmt.Errorf("redirect: gone path %q must start with a slash", p)
		}

		r.gone[strings.ToLower(p)] = true
	}

	for src, dst := range tab.Exact {
		if err := checkPair(src, dst); err != nil {
			return nil, err
		}

		r.exact[strings.ToLower(src)] = strings.ToLower(dst)
	}

	for src, dst := range tab.LocaleExact {
		if err := checkPair(src, dst); err != nil {
			return nil, err
		}

		r.localeExact[strings.ToLower(src)] = strings.ToLower(dst)
	}

	for _, s := range tab.Sections {
		r.sections[strings.ToLower(s)] = true
	}

	for _, s := range tab.Fuzzy {
		n := normalizeSegment(s)
		if n == "" {
			return nil, fmt.Errorf("redirect: fuzzy target %q normalizes to nothing", s)
		}

		// a target outside the section set would match itself at
		// distance zero and redirect the path onto itself
		if !r.sections[strings.ToLower(s)] {
			return nil, fmt.Errorf("redirect: fuzzy target %q is not a recognized section", s)
		}

		r.targets = append(r.targets, target{slug: strings.ToLower(s), norm: n})
	}

	return r, nil
}

func checkPair(src, dst string) error {
	if !strings.HasPrefix(src, "/") || !strings.HasPrefix(dst, "/") {
		return fmt.Errorf("redirect: rule %q -> %q: paths must start with a slash", src, dst)
	}

	if strings.EqualFold(src, dst) {
		return fmt.Errorf("redirect: rule %q redirects to itself", src)
	}

	return nil
}

// Resolve checks path, already canonicalized and stripped of its
// locale prefix, against the tables. The locale is the one the
// request arrived under (or the negotiated preference for bare
// paths); every produced location is re-prefixed with it. A nil
// return means no redirect applies and the path is served or 404s
// downstream as-is.
func (r *Resolver) Resolve(path string, loc locale.Locale) *Match {
	if r.gone[path] {
		return &Match{Status: http.StatusGone, Reason: "gone"}
	}

	if dst, ok := r.localeExact[r.table.Apply(loc, path)]; ok {
		return &Match{Status: http.StatusMovedPermanently, Location: r.table.Apply(loc, dst), Reason: "locale-exact"}
	}

	if dst, ok := r.exact[path]; ok {
		return &Match{Status: http.StatusMovedPermanently, Location: r.table.Apply(loc, dst), Reason: "exact"}
	}

	seg, rest := firstSegment(path)
	if seg == "" {
		return nil
	}

	// recognized sections never fuzzy-match; the path is either
	// valid as-is or 404s downstream
	if r.sections[r.table.Canonical(loc, seg)] {
		return nil
	}

	if t := r.closest(seg); t != "" {
		dst := r.table.LocalizePath(loc, "/"+t) + rest
		return &Match{Status: http.StatusMovedPermanently, Location: dst, Reason: "fuzzy"}
	}

	return nil
}

// closest returns the fuzzy target nearest to seg within the
// length-scaled threshold, or "" if none qualifies. Ties keep the
// first target in declaration order, so identical requests always
// resolve identically.
func (r *Resolver) closest(seg string) string {
	n := normalizeSegment(seg)
	if n == "" {
		return ""
	}

	best := ""
	bestDist := -1
	for _, t := range r.targets {
		d := r.lev.Distance(n, t.norm)
		if d > threshold(len(t.norm)) {
			continue
		}

		if bestDist < 0 || d < bestDist {
			best, bestDist = t.slug, d
		}
	}

	return best
}

// threshold scales the accepted edit distance with the target length.
// The buckets are tuned against real traffic; do not adjust them.
func threshold(n int) int {
	switch {
	case n <= 4:
		return 1
	case n <= 8:
		return 2
	default:
		return 3
	}
}

// normalizeSegment lower-cases and keeps only ASCII letters and
// digits, so "sign-up", "signup" and "Sign_Up" compare equal.
func normalizeSegment(s string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(s) {
		if c >= 'a' && c <= 'z' || c >= '0' && c <= '9' {
			b.WriteRune(c)
		}
	}

	return b.String()
}

func firstSegment(path string) (string, string) {
	p := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i], "/" + p[i+1:]
	}

	return p, ""
}
