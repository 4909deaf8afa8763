package router

import "strings"

// KeywordMatcher flags questions containing any configured trigger term.
// Matching is case-insensitive substring containment, which handles the
// proper nouns, dates and procedural vocabulary the triggers consist of.
type KeywordMatcher struct {
	terms []string
}

func NewKeywordMatcher(terms []string) *KeywordMatcher {
	cleaned := make([]string, 0, len(terms))
	for _, t := range terms {
		t = strings.ToLower(strings.TrimSpace(t))
		if t != "" {
			cleaned = append(cleaned, t)
		}
	}
	return &KeywordMatcher{terms: cleaned}
}

func (m *KeywordMatcher) Matches(question string) bool {
	q := strings.ToLower(question)
	for _, term := range m.terms {
		if strings.Contains(q, term) {
			return true
		}
	}
	return false
}
