package config

import (
	"os"
	"strings"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
)

// localeVars and numericVars are consulted in POSIX precedence order.
var (
	localeVars  = []string{"LC_ALL", "LC_MONETARY", "LANG"}
	numericVars = []string{"LC_ALL", "LC_NUMERIC", "LANG"}
)

// Locale resolves the language numbers are written and read in:
// IEXPENSE_LOCALE, then the config, then the user's locale. English when
// nothing parses.
func Locale(cfg Config) language.Tag {
	candidates := append([]string{os.Getenv("IEXPENSE_LOCALE"), cfg.General.Locale}, envValues(numericVars)...)
	for _, s := range candidates {
		if tag, ok := parseTag(s); ok {
			return tag
		}
	}
	return language.English
}

func envValues(names []string) []string {
	out := make([]string, len(names))
	for i, n := range names {
		out[i] = os.Getenv(n)
	}
	return out
}

// Currency resolves the display currency: IEXPENSE_CURRENCY, then the config,
// then the region of the user's locale. USD when nothing matches.
func Currency(cfg Config) currency.Unit {
	for _, code := range []string{os.Getenv("IEXPENSE_CURRENCY"), cfg.General.Currency} {
		if code == "" {
			continue
		}
		if u, err := currency.ParseISO(strings.ToUpper(strings.TrimSpace(code))); err == nil {
			return u
		}
	}

	for _, v := range localeVars {
		if tag, ok := parseLocale(os.Getenv(v)); ok {
			if u, conf := currency.FromTag(tag); conf != language.No {
				return u
			}
		}
	}

	return currency.USD
}

// parseTag turns a POSIX locale such as "de_DE.UTF-8@euro" into a
// language tag. "C" and "POSIX" are rejected.
func parseTag(s string) (language.Tag, bool) {
	if i := strings.IndexAny(s, ".@"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimSpace(s)
	if s == "" || s == "C" || s == "POSIX" {
		return language.Und, false
	}
	tag, err := language.Parse(strings.ReplaceAll(s, "_", "-"))
	if err != nil {
		return language.Und, false
	}
	return tag, true
}

// parseLocale is parseTag restricted to locales that name a region, the
// only part a currency can be derived from.
func parseLocale(s string) (language.Tag, bool) {
	tag, ok := parseTag(s)
	if !ok {
		return language.Und, false
	}
	if _, conf := tag.Region(); conf != language.Exact {
		return language.Und, false
	}
	return tag, true
}
