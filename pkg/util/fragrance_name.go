package util

import (
	"fmt"
	"regexp"
	"strings"
)

// Source catalogs often embed the brand and release year directly in the
// fragrance name ("Pour Homme Versace 2020" under brand "Versace"). These
// helpers strip that redundancy for display. The cleanup can occasionally
// drop a year that was part of a limited-edition name rather than a release
// year; that trade-off is accepted for a large, messy catalog.

var (
	yearToken  = regexp.MustCompile(`\b(19|20)\d{2}\b`)
	multiSpace = regexp.MustCompile(`\s+`)
)

// CleanFragranceName removes a redundant brand name and stray year tokens
// from a raw catalog name. Pattern attempts are ordered, first match wins;
// when nothing matches the name passes through unchanged.
//
// The function is pure and idempotent: cleaning an already-clean name
// returns it as is.
func CleanFragranceName(name, brand string) string {
	if name == "" || brand == "" {
		return name
	}

	original := name
	escaped := regexp.QuoteMeta(brand)
	cleaned := name

	patterns := []struct {
		re      *regexp.Regexp
		replace string
		guard   int // minimum product length for the match to apply
	}{
		// "Atelier <Brand> - <Product> <Brand> <Year>" -> "<Product> <Year>"
		{
			re:      regexp.MustCompile(fmt.Sprintf(`(?i)^Atelier %s - (.+?) %s ((?:19|20)\d{2})$`, escaped, escaped)),
			replace: "$1 $2",
		},
		// "<Product> <Brand> <Year>" -> "<Product> <Year>"
		{
			re:      regexp.MustCompile(fmt.Sprintf(`(?i)^(.+?) %s ((?:19|20)\d{2})$`, escaped)),
			replace: "$1 $2",
		},
		// "<Product> <Brand>" -> "<Product>", only for products longer than
		// 3 characters so short names are not gutted
		{
			re:      regexp.MustCompile(fmt.Sprintf(`(?i)^(.+?) %s$`, escaped)),
			replace: "$1",
			guard:   4,
		},
		// "<Brand> - <Product>" -> "<Product>"
		{
			re:      regexp.MustCompile(fmt.Sprintf(`(?i)^%s - (.+)$`, escaped)),
			replace: "$1",
		},
	}

	for _, p := range patterns {
		m := p.re.FindStringSubmatch(cleaned)
		if m == nil {
			continue
		}
		if p.guard > 0 && len(strings.TrimSpace(m[1])) < p.guard {
			continue
		}
		cleaned = p.re.ReplaceAllString(cleaned, p.replace)
		break
	}

	// Post-processing runs even when no pattern matched: years are stripped
	// from display names regardless of where they came from.
	cleaned = yearToken.ReplaceAllString(cleaned, "")
	cleaned = multiSpace.ReplaceAllString(cleaned, " ")
	cleaned = strings.TrimSpace(cleaned)

	// Safety floor: never hand back a name that cleanup destroyed.
	if len(cleaned) < 2 {
		return original
	}

	return cleaned
}
