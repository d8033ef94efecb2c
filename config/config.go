/*
Package config loads the routing configuration from YAML.

All tables the engine routes against (locales, slugs, redirect rules,
query allowlists, route prefixes) come from one configuration
document loaded at process start. Malformed configuration fails here,
at load time; the engine itself never validates at request time.
*/
package config

import (
	"fmt"
	"os"
	"time"

	yaml "gopkg.in/yaml.v2"
)

// LocaleConfig declares one supported locale.
type LocaleConfig struct {
	Code   string `yaml:"code"`
	Prefix string `yaml:"prefix"`
}

// SlugConfig maps a canonical segment to its per-locale forms.
type SlugConfig struct {
	Canonical string            `yaml:"canonical"`
	Localized map[string]string `yaml:"localized"`
}

// RedirectConfig holds the redirect tables.
type RedirectConfig struct {
	Gone         []string          `yaml:"gone"`
	Exact        map[string]string `yaml:"exact"`
	LocaleExact  map[string]string `yaml:"locale-exact"`
	FuzzyTargets []string          `yaml:"fuzzy-targets"`
}

// QueryRuleConfig allows parameters under one path prefix.
type QueryRuleConfig struct {
	Prefix string   `yaml:"prefix"`
	Params []string `yaml:"params"`
}

// QueryConfig holds the query filtering configuration.
type QueryConfig struct {
	Rules    []QueryRuleConfig `yaml:"rules"`
	Tracking []string          `yaml:"tracking"`
}

// RouteConfig holds the classifier prefix sets.
type RouteConfig struct {
	NonLocalized []string `yaml:"non-localized"`
	Protected    []string `yaml:"protected"`
	Admin        string   `yaml:"admin"`
	AppNoindex   []string `yaml:"app-noindex"`
}

// CookieConfig names the cookies the engine reads and writes.
type CookieConfig struct {
	Locale       string `yaml:"locale"`
	LegacyLocale string `yaml:"legacy-locale"`
	Logout       string `yaml:"logout"`
	LocaleMaxAge int    `yaml:"locale-max-age"`
}

// SessionConfig configures the session gate.
type SessionConfig struct {
	LoginPath    string   `yaml:"login-path"`
	NextParam    string   `yaml:"next-param"`
	ProbeTimeout Duration `yaml:"probe-timeout"`
}

// Config is the complete routing configuration document.
type Config struct {
	DefaultLocale string         `yaml:"default-locale"`
	Locales       []LocaleConfig `yaml:"locales"`
	Slugs         []SlugConfig   `yaml:"slugs"`
	Redirects     RedirectConfig `yaml:"redirects"`
	Sections      []string       `yaml:"sections"`
	Query         QueryConfig    `yaml:"query"`
	Routes        RouteConfig    `yaml:"routes"`
	Placeholders  []string       `yaml:"placeholders"`
	NotFoundPath  string         `yaml:"not-found-path"`
	LangParam     string         `yaml:"lang-param"`
	Cookies       CookieConfig   `yaml:"cookies"`
	Session       SessionConfig  `yaml:"session"`
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	c, err := Parse(b)
	if err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}

	return c, nil
}

// Parse unmarshals a configuration document, applies defaults and
// checks the document shape. Cross-table consistency (unknown locales
// in slug entries, colliding prefixes and so on) is checked by the
// table constructors when the engine is built.
func Parse(b []byte) (*Config, error) {
	c := &Config{}
	if err := yaml.UnmarshalStrict(b, c); err != nil {
		return nil, err
	}

	c.applyDefaults()
	if err := c.check(); err != nil {
		return nil, err
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.NotFoundPath == "" {
		c.NotFoundPath = "/404"
	}

	if c.LangParam == "" {
		c.LangParam = "lang"
	}

	if c.Cookies.LocaleMaxAge <= 0 {
		c.Cookies.LocaleMaxAge = 365 * 24 * 60 * 60
	}

	if c.Session.LoginPath == "" {
		c.Session.LoginPath = "/login"
	}

	if c.Session.NextParam == "" {
		c.Session.NextParam = "next"
	}

	if c.Session.ProbeTimeout <= 0 {
		c.Session.ProbeTimeout = Duration(time.Second)
	}
}

func (c *Config) check() error {
	if len(c.Locales) == 0 {
		return fmt.Errorf("no locales defined")
	}

	if c.DefaultLocale == "" {
		return fmt.Errorf("no default locale defined")
	}

	found := false
	for _, l := range c.Locales {
		if l.Code == c.DefaultLocale {
			found = true
		}
	}

	if !found {
		return fmt.Errorf("default locale %q is not among the defined locales", c.DefaultLocale)
	}

	if c.Cookies.Locale == "" {
		return fmt.Errorf("no sticky locale cookie name defined")
	}

	return nil
}
