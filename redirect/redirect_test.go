package redirect

import (
	"net/http"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/edgegate/edgegate/locale"
)

func testResolver(t *testing.T) *Resolver {
	t.Helper()

	table, err := locale.NewTable([]locale.Def{
		{Code: "en"},
		{Code: "fr", Prefix: "fr"},
	}, "en", []locale.SlugEntry{{
		Canonical: "models",
		Localized: map[locale.Locale]string{"fr": "modeles"},
	}, {
		Canonical: "pricing",
		Localized: map[locale.Locale]string{"fr": "tarifs"},
	}})
	require.NoError(t, err)

	r, err := New(table, Tables{
		Gone:        []string{"/a"},
		Exact:       map[string]string{"/old-pricing": "/pricing"},
		LocaleExact: map[string]string{"/fr/anciens-tarifs": "/tarifs"},
		Sections:    []string{"models", "pricing", "examples", "about", "blog", "blot"},
		Fuzzy:       []string{"models", "pricing", "examples", "blog", "blot"},
	})
	require.NoError(t, err)
	return r
}

func TestResolve(t *testing.T) {
	r := testResolver(t)
	for _, test := range []struct {
		title    string
		path     string
		loc      locale.Locale
		expected *Match
	}{{
		title:    "gone beats everything",
		path:     "/a",
		loc:      "en",
		expected: &Match{Status: http.StatusGone, Reason: "gone"},
	}, {
		title:    "locale exact",
		path:     "/anciens-tarifs",
		loc:      "fr",
		expected: &Match{Status: http.StatusMovedPermanently, Location: "/fr/tarifs", Reason: "locale-exact"},
	}, {
		title:    "exact",
		path:     "/old-pricing",
		loc:      "en",
		expected: &Match{Status: http.StatusMovedPermanently, Location: "/pricing", Reason: "exact"},
	}, {
		title:    "exact re-prefixed with the current locale",
		path:     "/old-pricing",
		loc:      "fr",
		expected: &Match{Status: http.StatusMovedPermanently, Location: "/fr/pricing", Reason: "exact"},
	}, {
		title: "unknown segment too far from every target",
		path:  "/pricings-something/deep",
		loc:   "en",
	}, {
		title: "recognized section passes",
		path:  "/models/gpt",
		loc:   "en",
	}, {
		title: "localized section recognized under its locale",
		path:  "/modeles/gpt",
		loc:   "fr",
	}, {
		title:    "typo",
		path:     "/modles",
		loc:      "en",
		expected: &Match{Status: http.StatusMovedPermanently, Location: "/models", Reason: "fuzzy"},
	}, {
		title:    "typo with localized destination",
		path:     "/modles",
		loc:      "fr",
		expected: &Match{Status: http.StatusMovedPermanently, Location: "/fr/modeles", Reason: "fuzzy"},
	}, {
		title:    "typo keeps the path remainder",
		path:     "/examplse/gallery",
		loc:      "en",
		expected: &Match{Status: http.StatusMovedPermanently, Location: "/examples/gallery", Reason: "fuzzy"},
	}, {
		title:    "punctuation is ignored when comparing",
		path:     "/mo-dels",
		loc:      "en",
		expected: &Match{Status: http.StatusMovedPermanently, Location: "/models", Reason: "fuzzy"},
	}, {
		title: "too far from every target",
		path:  "/contact",
		loc:   "en",
	}, {
		title: "root",
		path:  "/",
		loc:   "en",
	}} {
		t.Run(test.title, func(t *testing.T) {
			got := r.Resolve(test.path, test.loc)
			if d := cmp.Diff(test.expected, got); d != "" {
				t.Error(d)
			}
		})
	}
}

func TestFuzzyThresholds(t *testing.T) {
	r := testResolver(t)

	// a segment equal to a target always matches with distance zero
	for _, target := range []string{"models", "pricing", "examples"} {
		if got := r.closest(target); got != target {
			t.Errorf("exact segment %q resolved to %q", target, got)
		}
	}

	for _, test := range []struct {
		title    string
		segment  string
		expected string
	}{{
		title:    "short target allows one edit",
		segment:  "blogg",
		expected: "blog",
	}, {
		title:   "short target refuses two edits",
		segment: "bloggs",
	}, {
		title:    "medium target allows two edits",
		segment:  "pricin",
		expected: "pricing",
	}, {
		title:    "medium target allows exactly two",
		segment:  "prici",
		expected: "pricing",
	}, {
		title:   "medium target refuses three edits",
		segment: "pric",
	}, {
		title:    "long target allows three edits",
		segment:  "exales",
		expected: "examples",
	}} {
		t.Run(test.title, func(t *testing.T) {
			if got := r.closest(test.segment); got != test.expected {
				t.Errorf("got %q, expected %q", got, test.expected)
			}
		})
	}
}

// equidistant targets resolve to the first one in declaration order,
// so retries of the same request always decide the same way
func TestFuzzyTieBreak(t *testing.T) {
	r := testResolver(t)

	// "blox" is one edit from both "blog" and "blot"
	if got := r.closest("blox"); got != "blog" {
		t.Errorf("got %q, expected %q", got, "blog")
	}
}

func TestNewRejectsInvalidTables(t *testing.T) {
	table, err := locale.NewTable([]locale.Def{{Code: "en"}}, "en", nil)
	require.NoError(t, err)

	for _, test := range []struct {
		title  string
		tables Tables
	}{{
		title:  "gone without slash",
		tables: Tables{Gone: []string{"a"}},
	}, {
		title:  "exact destination without slash",
		tables: Tables{Exact: map[string]string{"/a": "b"}},
	}, {
		title:  "self redirect",
		tables: Tables{Exact: map[string]string{"/a": "/a"}},
	}, {
		title:  "fuzzy target without substance",
		tables: Tables{Sections: []string{"--"}, Fuzzy: []string{"--"}},
	}, {
		title:  "fuzzy target outside the section set",
		tables: Tables{Sections: []string{"models"}, Fuzzy: []string{"blog"}},
	}} {
		t.Run(test.title, func(t *testing.T) {
			_, err := New(table, test.tables)
			require.Error(t, err)
		})
	}
}
