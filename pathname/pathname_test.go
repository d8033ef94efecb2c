package pathname

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/edgegate/edgegate/locale"
)

func testTable(t *testing.T) *locale.Table {
	t.Helper()

	table, err := locale.NewTable([]locale.Def{
		{Code: "en"},
		{Code: "fr", Prefix: "fr"},
		{Code: "de", Prefix: "de"},
	}, "en", nil)
	require.NoError(t, err)
	return table
}

func TestCanonical(t *testing.T) {
	table := testTable(t)
	for _, test := range []struct {
		title    string
		path     string
		expected string
	}{{
		title:    "empty",
		expected: "/",
	}, {
		title:    "root",
		path:     "/",
		expected: "/",
	}, {
		title:    "clean path unchanged",
		path:     "/pricing",
		expected: "/pricing",
	}, {
		title:    "repeated separators",
		path:     "//pricing///pro",
		expected: "/pricing/pro",
	}, {
		title:    "trailing separator",
		path:     "/pricing/",
		expected: "/pricing",
	}, {
		title:    "upper case",
		path:     "/Pricing/PRO",
		expected: "/pricing/pro",
	}, {
		title:    "stacked same locale",
		path:     "/fr/fr/pricing",
		expected: "/fr/pricing",
	}, {
		title:    "stacked different locales keeps rightmost",
		path:     "/fr/de/pricing",
		expected: "/de/pricing",
	}, {
		title:    "triple stack",
		path:     "/fr/fr/fr/pricing",
		expected: "/fr/pricing",
	}, {
		title:    "locale prefix alone",
		path:     "/fr",
		expected: "/fr",
	}, {
		title:    "locale deeper in the path untouched",
		path:     "/pricing/fr",
		expected: "/pricing/fr",
	}} {
		t.Run(test.title, func(t *testing.T) {
			got := Canonical(test.path, table)
			if got != test.expected {
				t.Errorf("got %q, expected %q", got, test.expected)
			}

			if again := Canonical(got, table); again != got {
				t.Errorf("not idempotent: %q -> %q", got, again)
			}
		})
	}
}

func TestHasPlaceholder(t *testing.T) {
	tokens := []string{"[locale]", "[slug]", "undefined", "null"}
	for _, test := range []struct {
		path     string
		expected bool
	}{
		{"/[locale]/pricing", true},
		{"/pricing/[slug]", true},
		{"/undefined", true},
		{"/models/null", true},
		{"/Undefined", true},
		{"/pricing", false},
		{"/nullable", false},
		{"/", false},
	} {
		if got := HasPlaceholder(test.path, tokens); got != test.expected {
			t.Errorf("HasPlaceholder(%q): got %v, expected %v", test.path, got, test.expected)
		}
	}
}
