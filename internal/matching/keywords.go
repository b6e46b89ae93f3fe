package matching

import (
	"sort"
	"strings"
	"unicode/utf8"

	"lostfound/internal/domain/report"
)

// KeywordSet is a set of lower-cased tokens.
type KeywordSet map[string]struct{}

func (s KeywordSet) Has(token string) bool {
	_, ok := s[token]
	return ok
}

// Slice returns the tokens in sorted order.
func (s KeywordSet) Slice() []string {
	out := make([]string, 0, len(s))
	for k := range s {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Extractor turns an item's name and description into keywords. Tokens are
// whitespace-separated runs; punctuation stays attached and nothing is
// stemmed or dropped as a stopword.
type Extractor struct {
	// MinTokenLength drops tokens with fewer runes. Values below 1 act as 1.
	MinTokenLength int
}

func NewExtractor(minTokenLength int) Extractor {
	if minTokenLength < 1 {
		minTokenLength = 1
	}
	return Extractor{MinTokenLength: minTokenLength}
}

func (e Extractor) Extract(name, description string) KeywordSet {
	text := strings.ToLower(name + " " + description)
	set := make(KeywordSet)
	for _, tok := range strings.Fields(text) {
		if utf8.RuneCountInString(tok) < e.MinTokenLength {
			continue
		}
		set[tok] = struct{}{}
	}
	return set
}

// FromItem extracts keywords from any item shape.
func (e Extractor) FromItem(item report.ItemRef) KeywordSet {
	n := item.Normalize()
	return e.Extract(n.Name, n.Description)
}

// itemMatches reports whether any keyword occurs, case-insensitively, in the
// item's name or description.
func itemMatches(item report.ItemRef, kw KeywordSet) bool {
	n := item.Normalize()
	name := strings.ToLower(n.Name)
	desc := strings.ToLower(n.Description)
	for tok := range kw {
		if strings.Contains(name, tok) || strings.Contains(desc, tok) {
			return true
		}
	}
	return false
}
