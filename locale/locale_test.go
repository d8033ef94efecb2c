package locale

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func testTable(t *testing.T) *Table {
	t.Helper()

	table, err := NewTable([]Def{
		{Code: "en"},
		{Code: "fr", Prefix: "fr"},
		{Code: "de", Prefix: "de"},
	}, "en", []SlugEntry{{
		Canonical: "models",
		Localized: map[Locale]string{"fr": "modeles", "de": "modelle"},
	}, {
		Canonical: "pricing",
		Localized: map[Locale]string{"fr": "tarifs", "de": "preise"},
	}, {
		Canonical: "examples",
		Localized: map[Locale]string{"fr": "exemples"},
	}})
	require.NoError(t, err)
	return table
}

func TestNewTableRejectsInvalidConfiguration(t *testing.T) {
	for _, test := range []struct {
		title string
		defs  []Def
		def   Locale
		slugs []SlugEntry
	}{{
		title: "no locales",
	}, {
		title: "duplicate locale",
		defs:  []Def{{Code: "en"}, {Code: "en"}},
		def:   "en",
	}, {
		title: "duplicate prefix",
		defs:  []Def{{Code: "en"}, {Code: "fr", Prefix: "x"}, {Code: "de", Prefix: "x"}},
		def:   "en",
	}, {
		title: "unknown default",
		defs:  []Def{{Code: "en"}},
		def:   "fr",
	}, {
		title: "default with prefix",
		defs:  []Def{{Code: "en", Prefix: "en"}, {Code: "fr", Prefix: "fr"}},
		def:   "en",
	}, {
		title: "duplicate canonical slug",
		defs:  []Def{{Code: "en"}, {Code: "fr", Prefix: "fr"}},
		def:   "en",
		slugs: []SlugEntry{
			{Canonical: "models", Localized: map[Locale]string{"fr": "modeles"}},
			{Canonical: "models", Localized: map[Locale]string{"fr": "modeles"}},
		},
	}, {
		title: "slug for unknown locale",
		defs:  []Def{{Code: "en"}},
		def:   "en",
		slugs: []SlugEntry{{Canonical: "models", Localized: map[Locale]string{"fr": "modeles"}}},
	}, {
		title: "empty localization",
		defs:  []Def{{Code: "en"}, {Code: "fr", Prefix: "fr"}},
		def:   "en",
		slugs: []SlugEntry{{Canonical: "models", Localized: map[Locale]string{"fr": ""}}},
	}} {
		t.Run(test.title, func(t *testing.T) {
			_, err := NewTable(test.defs, test.def, test.slugs)
			require.Error(t, err)
		})
	}
}

func TestSplitPrefix(t *testing.T) {
	table := testTable(t)
	for _, test := range []struct {
		path string
		loc  Locale
		rest string
		ok   bool
	}{
		{"/fr/pricing", "fr", "/pricing", true},
		{"/de", "de", "/", true},
		{"/pricing", "", "/pricing", false},
		{"/", "", "/", false},
		{"/france/pricing", "", "/france/pricing", false},
	} {
		t.Run(test.path, func(t *testing.T) {
			loc, rest, ok := table.SplitPrefix(test.path)
			if ok != test.ok || loc != test.loc || rest != test.rest {
				t.Errorf("got %q %q %v, expected %q %q %v", loc, rest, ok, test.loc, test.rest, test.ok)
			}
		})
	}
}

func TestApply(t *testing.T) {
	table := testTable(t)
	for _, test := range []struct {
		loc      Locale
		path     string
		expected string
	}{
		{"en", "/pricing", "/pricing"},
		{"fr", "/pricing", "/fr/pricing"},
		{"fr", "/", "/fr"},
		{"en", "/", "/"},
	} {
		if got := table.Apply(test.loc, test.path); got != test.expected {
			t.Errorf("Apply(%q, %q): got %q, expected %q", test.loc, test.path, got, test.expected)
		}
	}
}

// every localized form must map back to the canonical segment it was
// derived from, for every supported locale
func TestSlugRoundTrip(t *testing.T) {
	table := testTable(t)
	for _, loc := range table.Supported() {
		for _, canonical := range []string{"models", "pricing", "examples"} {
			localized := table.Localize(loc, canonical)
			if got := table.Canonical(loc, localized); got != canonical {
				t.Errorf("%s: %q -> %q -> %q", loc, canonical, localized, got)
			}
		}
	}
}

func TestLocalizePath(t *testing.T) {
	table := testTable(t)
	for _, test := range []struct {
		loc      Locale
		path     string
		expected string
	}{
		{"fr", "/models", "/fr/modeles"},
		{"fr", "/models/detail", "/fr/modeles/detail"},
		{"de", "/examples", "/de/examples"}, // no de localization, canonical kept
		{"en", "/models", "/models"},
		{"fr", "/", "/fr"},
	} {
		if got := table.LocalizePath(test.loc, test.path); got != test.expected {
			t.Errorf("LocalizePath(%q, %q): got %q, expected %q", test.loc, test.path, got, test.expected)
		}
	}
}

func TestCanonicalPath(t *testing.T) {
	table := testTable(t)
	for _, test := range []struct {
		loc      Locale
		path     string
		expected string
	}{
		{"fr", "/modeles", "/models"},
		{"fr", "/tarifs/pro", "/pricing/pro"},
		{"fr", "/unknown", "/unknown"},
		{"en", "/models", "/models"},
		{"fr", "/", "/"},
	} {
		if got := table.CanonicalPath(test.loc, test.path); got != test.expected {
			t.Errorf("CanonicalPath(%q, %q): got %q, expected %q", test.loc, test.path, got, test.expected)
		}
	}
}
