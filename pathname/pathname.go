/*
Package pathname normalizes request paths into their canonical form.

Canonicalization is a pure string transformation: repeated separators
collapse to one, the trailing separator is dropped, comparison is
case-insensitive, and stacked locale prefixes left behind by legacy
links ("/fr/fr/pricing") collapse to the rightmost prefix. Callers
that see a changed path must answer with a permanent redirect to the
canonical form so that clients and crawlers converge on a single URL
per resource.
*/
package pathname

import (
	"strings"

	"github.com/edgegate/edgegate/locale"
)

// Canonical returns the canonical form of a raw request path. The
// result always starts with a slash, contains no empty or repeated
// separators, has no trailing slash except for the root, is lower
// case, and carries at most one locale prefix.
//
// Canonical is idempotent: applying it to its own output returns the
// output unchanged.
func Canonical(path string, t *locale.Table) string {
	path = strings.ToLower(path)
	if path == "" {
		return "/"
	}

	segs := make([]string, 0, 8)
	for _, s := range strings.Split(path, "/") {
		if s != "" {
			segs = append(segs, s)
		}
	}

	segs = collapseLocales(segs, t)
	if len(segs) == 0 {
		return "/"
	}

	return "/" + strings.Join(segs, "/")
}

// collapseLocales drops all but the last of a run of leading locale
// prefix segments. "/fr/de/pricing" keeps "de": the rightmost prefix
// is the most recent choice and wins.
func collapseLocales(segs []string, t *locale.Table) []string {
	for len(segs) > 1 {
		_, _, first := t.SplitPrefix("/" + segs[0])
		_, _, second := t.SplitPrefix("/" + segs[1])
		if !first || !second {
			break
		}

		segs = segs[1:]
	}

	return segs
}

// HasPlaceholder reports whether any path segment equals one of the
// reserved template placeholder tokens. Such paths are the result of
// an unrendered link template ("/[locale]/pricing") and must never be
// served or redirected; they are rewritten to the not-found route.
func HasPlaceholder(path string, tokens []string) bool {
	for _, s := range strings.Split(strings.ToLower(path), "/") {
		for _, tok := range tokens {
			if s == tok {
				return true
			}
		}
	}

	return false
}
