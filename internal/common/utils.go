package common

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// FirstNonEmpty returns the first value that is not blank.
func FirstNonEmpty(values ...string) string {
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			return v
		}
	}
	return ""
}

// JoinNonEmpty joins the non-blank parts with sep.
func JoinNonEmpty(sep string, parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, sep)
}

// FoldName lowercases s and strips diacritics, so "Zürich" and "zurich"
// compare equal.
func FoldName(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, strings.TrimSpace(s))
	if err != nil {
		out = strings.TrimSpace(s)
	}
	return strings.ToLower(out)
}

// SameName reports whether two place names are equal after folding.
func SameName(a, b string) bool {
	return FoldName(a) == FoldName(b)
}

// HasNamePart reports whether one of the comma-separated parts of label
// equals name after folding both.
func HasNamePart(label, name string) bool {
	name = FoldName(name)
	if name == "" {
		return false
	}
	for _, part := range strings.Split(label, ",") {
		if FoldName(part) == name {
			return true
		}
	}
	return false
}
