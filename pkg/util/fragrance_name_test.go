package util

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCleanFragranceName(t *testing.T) {
	tests := []struct {
		name     string
		rawName  string
		brand    string
		expected string
	}{
		{
			name:     "Trailing brand and year",
			rawName:  "Pour Homme Versace 2020",
			brand:    "Versace",
			expected: "Pour Homme",
		},
		{
			name:     "Leading brand with dash",
			rawName:  "Versace - Eros",
			brand:    "Versace",
			expected: "Eros",
		},
		{
			name:     "Atelier compound pattern",
			rawName:  "Atelier Versace - Gingembre Versace 2021",
			brand:    "Versace",
			expected: "Gingembre",
		},
		{
			name:     "Trailing brand without year",
			rawName:  "Luna Rossa Prada",
			brand:    "Prada",
			expected: "Luna Rossa",
		},
		{
			name:     "No redundancy passes through",
			rawName:  "Eau Sauvage",
			brand:    "Dior",
			expected: "Eau Sauvage",
		},
		{
			name:     "Short product guard prevents over-stripping",
			rawName:  "Y Yves Saint Laurent",
			brand:    "Yves Saint Laurent",
			expected: "Y Yves Saint Laurent",
		},
		{
			name:     "Stray year stripped even without brand match",
			rawName:  "Aventus 2019",
			brand:    "Creed",
			expected: "Aventus",
		},
		{
			name:     "Case insensitive brand match",
			rawName:  "Eros VERSACE 2013",
			brand:    "Versace",
			expected: "Eros",
		},
		{
			name:     "Whitespace collapsed",
			rawName:  "Acqua  di  Gio",
			brand:    "Armani",
			expected: "Acqua di Gio",
		},
		{
			name:     "Empty name returns empty",
			rawName:  "",
			brand:    "Versace",
			expected: "",
		},
		{
			name:     "Empty brand returns input unchanged",
			rawName:  "X",
			brand:    "",
			expected: "X",
		},
		{
			name:     "Regex metacharacters in brand do not crash",
			rawName:  "Le Male Jean Paul Gaultier & Co. 2011",
			brand:    "Jean Paul Gaultier & Co.",
			expected: "Le Male",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, CleanFragranceName(tt.rawName, tt.brand))
		})
	}
}

func TestCleanFragranceName_Idempotent(t *testing.T) {
	inputs := []struct {
		rawName string
		brand   string
	}{
		{"Pour Homme Versace 2020", "Versace"},
		{"Versace - Eros", "Versace"},
		{"Eau Sauvage", "Dior"},
		{"Atelier Versace - Gingembre Versace 2021", "Versace"},
		{"Aventus 2019", "Creed"},
		{"Luna Rossa Prada", "Prada"},
		{"", "Versace"},
	}

	for _, in := range inputs {
		once := CleanFragranceName(in.rawName, in.brand)
		twice := CleanFragranceName(once, in.brand)
		assert.Equal(t, once, twice, "clean(clean(%q)) must equal clean(%q)", in.rawName, in.rawName)
	}
}

func TestCleanFragranceName_SafetyFloor(t *testing.T) {
	// When cleanup would collapse the name to under 2 characters the
	// original is returned instead.
	assert.Equal(t, "2020", CleanFragranceName("2020", "Chanel"))
}
