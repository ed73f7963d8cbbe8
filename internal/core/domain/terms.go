package domain

import "strings"

// ParseTerms splits comma-delimited input into trimmed, non-empty terms.
func ParseTerms(input string) []string {
	return NormaliseTerms(strings.Split(input, ","))
}

// NormaliseTerms trims every term and drops empty ones. Order and
// duplicates are kept.
func NormaliseTerms(terms []string) []string {
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		term = strings.TrimSpace(term)
		if term != "" {
			out = append(out, term)
		}
	}
	return out
}

// DedupeTerms removes case-insensitive duplicates, keeping the first
// spelling of each term in its original position.
func DedupeTerms(terms []string) []string {
	seen := make(map[string]struct{}, len(terms))
	out := make([]string, 0, len(terms))
	for _, term := range terms {
		key := strings.ToLower(term)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, term)
	}
	return out
}

// PrepareTerms normalises then de-duplicates terms.
func PrepareTerms(terms []string) []string {
	return DedupeTerms(NormaliseTerms(terms))
}
