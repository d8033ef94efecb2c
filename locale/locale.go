/*
Package locale defines the closed set of supported locales for the
routed site, the mapping between locales and their URL path prefixes,
and the bidirectional dictionary of localized path segments.

The tables are built once at startup and are read-only afterwards, so
they can be shared by any number of concurrent requests without
synchronization.
*/
package locale

import (
	"fmt"
	"strings"
)

// Locale identifies one supported language variant, e.g. "en" or "fr".
type Locale string

// Def declares one supported locale and its path prefix. The prefix is
// given without slashes ("fr" for /fr/...); the default locale uses the
// empty prefix.
type Def struct {
	Code   Locale
	Prefix string
}

// SlugEntry maps a canonical (English) path segment to its localized
// equivalent per locale. Locales without an entry fall back to the
// canonical segment.
type SlugEntry struct {
	Canonical string
	Localized map[Locale]string
}

// Table holds the immutable locale and slug configuration.
type Table struct {
	def       Locale
	ordered   []Locale
	prefixes  map[Locale]string
	byPrefix  map[string]Locale
	localized map[Locale]map[string]string
	canonical map[Locale]map[string]string
}

// NewTable validates the locale definitions and the slug dictionary and
// builds the lookup maps. All configuration problems are reported here,
// at load time; a Table that was constructed successfully cannot fail
// at request time.
func NewTable(defs []Def, def Locale, slugs []SlugEntry) (*Table, error) {
	if len(defs) == 0 {
		return nil, fmt.Errorf("locale: no locales defined")
	}

	t := &Table{
		def:       def,
		prefixes:  make(map[Locale]string),
		byPrefix:  make(map[string]Locale),
		localized: make(map[Locale]map[string]string),
		canonical: make(map[Locale]map[string]string),
	}

	for _, d := range defs {
		if d.Code == "" {
			return nil, fmt.Errorf("locale: empty locale code")
		}

		if _, ok := t.prefixes[d.Code]; ok {
			return nil, fmt.Errorf("locale: duplicate locale %q", d.Code)
		}

		p := strings.Trim(strings.ToLower(d.Prefix), "/")
		if p != "" {
			if prev, ok := t.byPrefix[p]; ok {
				return nil, fmt.Errorf("locale: prefix %q used by both %q and %q", p, prev, d.Code)
			}

			t.byPrefix[p] = d.Code
		}

		t.prefixes[d.Code] = p
		t.ordered = append(t.ordered, d.Code)
		t.localized[d.Code] = make(map[string]string)
		t.canonical[d.Code] = make(map[string]string)
	}

	dp, ok := t.prefixes[def]
	if !ok {
		return nil, fmt.Errorf("locale: default locale %q is not defined", def)
	}

	if dp != "" {
		return nil, fmt.Errorf("locale: default locale %q must use the empty prefix", def)
	}

	seen := make(map[string]bool)
	for _, s := range slugs {
		c := strings.ToLower(s.Canonical)
		if c == "" {
			return nil, fmt.Errorf("locale: slug entry with empty canonical segment")
		}

		if seen[c] {
			return nil, fmt.Errorf("locale: duplicate canonical slug %q", c)
		}

		seen[c] = true
		for code, l := range s.Localized {
			if _, ok := t.prefixes[code]; !ok {
				return nil, fmt.Errorf("locale: slug %q references unknown locale %q", c, code)
			}

			l = strings.ToLower(l)
			if l == "" {
				return nil, fmt.Errorf("locale: slug %q has an empty localization for %q", c, code)
			}

			t.localized[code][c] = l
			t.canonical[code][l] = c
		}
	}

	return t, nil
}

// Default returns the configured default locale.
func (t *Table) Default() Locale { return t.def }

// Supported returns the supported locales in declaration order.
func (t *Table) Supported() []Locale { return t.ordered }

// Contains reports whether code is a supported locale.
func (t *Table) Contains(code Locale) bool {
	_, ok := t.prefixes[code]
	return ok
}

// Prefix returns the path prefix of loc with a leading slash, or the
// empty string for the default (unprefixed) locale.
func (t *Table) Prefix(loc Locale) string {
	p := t.prefixes[loc]
	if p == "" {
		return ""
	}

	return "/" + p
}

// SplitPrefix matches the leading segment of path against the locale
// prefixes. It returns the matched locale and the remainder of the
// path (always starting with a slash), or ok=false when the leading
// segment is not a locale prefix. Paths of the default locale carry no
// prefix and therefore report ok=false.
func (t *Table) SplitPrefix(path string) (Locale, string, bool) {
	seg, rest := firstSegment(path)
	loc, ok := t.byPrefix[seg]
	if !ok {
		return "", path, false
	}

	if rest == "" {
		rest = "/"
	}

	return loc, rest, true
}

// Apply prefixes path with the locale's prefix. The root path maps to
// the bare prefix ("/fr", not "/fr/").
func (t *Table) Apply(loc Locale, path string) string {
	p := t.Prefix(loc)
	if p == "" {
		return path
	}

	if path == "/" {
		return p
	}

	return p + path
}

// Localize returns the localized form of a canonical segment under
// loc, falling back to the canonical segment itself.
func (t *Table) Localize(loc Locale, segment string) string {
	if l, ok := t.localized[loc][segment]; ok {
		return l
	}

	return segment
}

// Canonical returns the canonical form of a localized segment under
// loc, falling back to the segment itself.
func (t *Table) Canonical(loc Locale, segment string) string {
	if c, ok := t.canonical[loc][segment]; ok {
		return c
	}

	return segment
}

// LocalizePath rewrites every known canonical segment of path into its
// localized form under loc and applies the locale prefix.
func (t *Table) LocalizePath(loc Locale, path string) string {
	if path == "/" {
		return t.Apply(loc, path)
	}

	segs := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, s := range segs {
		segs[i] = t.Localize(loc, s)
	}

	return t.Apply(loc, "/"+strings.Join(segs, "/"))
}

// CanonicalPath is the inverse of LocalizePath for an already
// prefix-stripped path: every localized segment known under loc is
// rewritten back to its canonical form.
func (t *Table) CanonicalPath(loc Locale, path string) string {
	if path == "/" {
		return path
	}

	segs := strings.Split(strings.TrimPrefix(path, "/"), "/")
	for i, s := range segs {
		segs[i] = t.Canonical(loc, s)
	}

	return "/" + strings.Join(segs, "/")
}

func firstSegment(path string) (string, string) {
	p := strings.TrimPrefix(path, "/")
	if i := strings.IndexByte(p, '/'); i >= 0 {
		return p[:i], "/" + p[i+1:]
	}

	return p, ""
}
