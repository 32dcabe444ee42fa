package rank

import "strings"

// Keyword is a user keyword phrase together with the surface forms it
// should match in paper text.
type Keyword struct {
	Canonical string
	Variants  []string
}

// ExpandKeywords derives matchable variants for each keyword phrase:
// the phrase itself, its hyphenation toggle ("Type Ia" <-> "Type-Ia"),
// and a plural of the last word for each of those. Empty and
// comment-like entries are skipped. The result preserves input order
// and each variant list is duplicate-free.
func ExpandKeywords(phrases []string) []Keyword {
	var keywords []Keyword
	for _, phrase := range phrases {
		phrase = strings.TrimSpace(phrase)
		if phrase == "" || strings.HasPrefix(phrase, "#") {
			continue
		}

		var variants []string
		add := func(v string) {
			if v == "" {
				return
			}
			for _, seen := range variants {
				if strings.EqualFold(seen, v) {
					return
				}
			}
			variants = append(variants, v)
		}

		add(phrase)
		add(pluralize(phrase))
		toggled := toggleHyphen(phrase)
		add(toggled)
		add(pluralize(toggled))

		keywords = append(keywords, Keyword{Canonical: phrase, Variants: variants})
	}
	return keywords
}

// pluralize returns the phrase with its last word pluralized, or ""
// when no plural form applies. Words already ending in "s" and words
// ending in a non-letter are left alone.
func pluralize(phrase string) string {
	if phrase == "" {
		return ""
	}

	last := phrase[len(phrase)-1]
	switch {
	case last == 's' || last == 'S':
		return ""
	case last == 'y' || last == 'Y':
		if len(phrase) >= 2 && isConsonant(phrase[len(phrase)-2]) {
			return phrase[:len(phrase)-1] + "ies"
		}
		return phrase + "s"
	case isLetter(last):
		return phrase + "s"
	default:
		return ""
	}
}

// toggleHyphen swaps spaces for hyphens in multi-word phrases and
// hyphens for spaces in hyphenated ones. Phrases containing both are
// left alone rather than guessing which separator to flip.
func toggleHyphen(phrase string) string {
	hasSpace := strings.Contains(phrase, " ")
	hasHyphen := strings.Contains(phrase, "-")
	switch {
	case hasSpace && !hasHyphen:
		return strings.ReplaceAll(phrase, " ", "-")
	case hasHyphen && !hasSpace:
		return strings.ReplaceAll(phrase, "-", " ")
	default:
		return ""
	}
}

func isLetter(c byte) bool {
	return (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isConsonant(c byte) bool {
	if !isLetter(c) {
		return false
	}
	switch c | 0x20 {
	case 'a', 'e', 'i', 'o', 'u':
		return false
	}
	return true
}
