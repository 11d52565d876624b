package company

import (
	"sort"
	"strings"
)

// Match is a fuzzy match candidate for a parsed party name.
type Match struct {
	CompanyID   string  `json:"company_id"`
	CompanyName string  `json:"company_name"`
	Score       float64 `json:"score"`
}

// normalizeName lowercases, strips punctuation and collapses runs of
// whitespace so "ACME Pte. Ltd." and "acme pte ltd" compare equal.
func normalizeName(name string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
		default:
			b.WriteRune(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// MatchName scores a parsed shipper or consignee name against the
// company catalog and returns the top three candidates with score
// above 0.3. Exact normalized match scores 1.0, containment either
// way 0.8, and overlap of whole significant words scales from 0.5.
func MatchName(name string, candidates []Company) []Match {
	target := normalizeName(name)
	if target == "" {
		return nil
	}
	targetWords := significantWords(target)

	var matches []Match
	for _, c := range candidates {
		cand := normalizeName(c.Name)
		if cand == "" {
			continue
		}

		var score float64
		switch {
		case cand == target:
			score = 1.0
		case strings.Contains(cand, target) || strings.Contains(target, cand):
			score = 0.8
		default:
			candWords := make(map[string]struct{})
			for _, w := range strings.Fields(cand) {
				candWords[w] = struct{}{}
			}
			matched := 0
			for _, w := range targetWords {
				if _, ok := candWords[w]; ok {
					matched++
				}
			}
			if matched >= 2 {
				score = 0.5 + (float64(matched)/float64(len(targetWords)))*0.3
			}
		}

		if score > 0.3 {
			matches = append(matches, Match{CompanyID: c.ID, CompanyName: c.Name, Score: score})
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > 3 {
		matches = matches[:3]
	}
	return matches
}

// significantWords keeps words longer than two characters so noise
// like "co" or "of" does not inflate overlap scores.
func significantWords(normalized string) []string {
	var words []string
	for _, w := range strings.Fields(normalized) {
		if len(w) > 2 {
			words = append(words, w)
		}
	}
	return words
}
