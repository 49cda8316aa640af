// Package cli provides formatting and rendering utilities for terminal output.
package cli

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"unicode"

	"golang.org/x/text/currency"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// numberLocale carries the printer and separators amounts are formatted
// and parsed with.
type numberLocale struct {
	printer *message.Printer
	decimal rune
	group   rune
}

var active = newNumberLocale(language.English)

// SetLocale switches amount formatting and parsing to tag's conventions.
func SetLocale(tag language.Tag) {
	active = newNumberLocale(tag)
}

// newNumberLocale reads the separators back from the printer's own
// rendering of a sample number. Anything other than '.' or ',' as the
// decimal mark falls back to English.
func newNumberLocale(tag language.Tag) numberLocale {
	p := message.NewPrinter(tag)
	r := []rune(p.Sprintf("%.1f", 1234.5))
	if len(r) < 3 {
		return englishLocale()
	}

	l := numberLocale{printer: p, decimal: r[len(r)-2]}
	if l.decimal != '.' && l.decimal != ',' {
		return englishLocale()
	}
	if g := r[1]; g != '2' && g != l.decimal {
		l.group = g
	} else if l.decimal == '.' {
		l.group = ','
	} else {
		l.group = '.'
	}
	return l
}

func englishLocale() numberLocale {
	return numberLocale{
		printer: message.NewPrinter(language.English),
		decimal: '.',
		group:   ',',
	}
}

// FormatAmount formats a monetary amount with the currency's symbol and
// rounding in the active locale, e.g. 1234.5 USD -> "$ 1,234.50".
func FormatAmount(amount float64, cur currency.Unit) string {
	return active.printer.Sprint(currency.Symbol(cur.Amount(amount)))
}

// AmountHint returns a sample amount written the way ParseAmount expects.
func AmountHint() string {
	return active.printer.Sprintf("%.2f", 12.5)
}

// FormatNumber formats an integer with the active locale's grouping.
// e.g., 1234567 -> "1,234,567" in English
func FormatNumber(n int64) string {
	return active.printer.Sprintf("%d", n)
}

// FormatPercent formats a 0-100 value as a percentage string.
func FormatPercent(p float64) string {
	return fmt.Sprintf("%.1f%%", p)
}

// Level buckets an amount for colouring.
type Level int

const (
	LevelLow  Level = iota // below the low threshold
	LevelMid               // between the thresholds, inclusive
	LevelHigh              // above the high threshold
)

// AmountLevel classifies amount against the low/high thresholds.
func AmountLevel(amount, low, high float64) Level {
	switch {
	case amount < low:
		return LevelLow
	case amount <= high:
		return LevelMid
	default:
		return LevelHigh
	}
}

// ErrInvalidAmount is returned by ParseAmount for input that is not a finite
// number in the active locale.
var ErrInvalidAmount = errors.New("amount must be a number")

// ParseAmount parses user input in the active locale. Blank input is zero.
// Group separators must sit between groups of exactly three digits, so
// "12,50" is rejected in English rather than read as 1250.
func ParseAmount(s string) (float64, error) {
	return active.parse(s)
}

func (l numberLocale) parse(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	sign := ""
	if s[0] == '-' || s[0] == '+' {
		sign, s = s[:1], s[1:]
	}

	intPart, frac, hasFrac := strings.Cut(s, string(l.decimal))
	if hasFrac && (frac == "" || !allDigits(frac)) {
		return 0, ErrInvalidAmount
	}

	digits := "0"
	if intPart != "" || !hasFrac {
		var ok bool
		if digits, ok = l.ungroup(intPart); !ok {
			return 0, ErrInvalidAmount
		}
	}

	num := sign + digits
	if hasFrac {
		num += "." + frac
	}
	v, err := strconv.ParseFloat(num, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, ErrInvalidAmount
	}
	return v, nil
}

// ungroup strips group separators from an integer part. Every group after
// the first must have exactly three digits; a leading, trailing or doubled
// separator leaves an empty group and fails.
func (l numberLocale) ungroup(s string) (string, bool) {
	var groups []string
	var cur strings.Builder
	for _, r := range s {
		if l.isGroup(r) {
			groups = append(groups, cur.String())
			cur.Reset()
			continue
		}
		cur.WriteRune(r)
	}
	groups = append(groups, cur.String())

	for i, g := range groups {
		if !allDigits(g) {
			return "", false
		}
		if i > 0 && len(g) != 3 {
			return "", false
		}
		if i == 0 && len(groups) > 1 && len(g) > 3 {
			return "", false
		}
	}
	return strings.Join(groups, ""), true
}

// isGroup matches the group separator. Any space matches a space-like
// separator (fr uses U+202F).
func (l numberLocale) isGroup(r rune) bool {
	return r == l.group || (unicode.IsSpace(l.group) && unicode.IsSpace(r))
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Truncate shortens s to maxLen runes, ending with an ellipsis.
func Truncate(s string, maxLen int) string {
	if maxLen <= 0 {
		return ""
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen-1]) + "…"
}
