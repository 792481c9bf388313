package usecase

import "strings"

// Match score bands. Anything below a two-token overlap is rejected outright
// to avoid picking an unrelated but superficially similar product.
const (
	matchScoreExact  = 100
	matchScoreFull   = 95
	matchScoreStrong = 85
	matchScoreHalf   = 70
	matchScoreReject = 0

	minMatchedTokens = 2
)

// TitleMatchScore scores how well a candidate title corresponds to the
// canonical product name, on the fixed 0/70/85/95/100 bands. A canonical
// token matches when it contains, or is contained by, any candidate token.
func TitleMatchScore(canonicalName, candidateTitle string) int {
	canonical := strings.TrimSpace(strings.ToLower(canonicalName))
	candidate := strings.TrimSpace(strings.ToLower(candidateTitle))

	if canonical == "" || candidate == "" {
		return matchScoreReject
	}
	if canonical == candidate {
		return matchScoreExact
	}

	canonicalTokens := matchTokens(canonical)
	candidateTokens := matchTokens(candidate)
	if len(canonicalTokens) == 0 || len(candidateTokens) == 0 {
		return matchScoreReject
	}

	matched := 0
	for _, ct := range canonicalTokens {
		if tokenInSet(ct, candidateTokens) {
			matched++
		}
	}

	if matched < minMatchedTokens {
		return matchScoreReject
	}

	ratio := float64(matched) / float64(len(canonicalTokens))
	switch {
	case ratio >= 1.0:
		return matchScoreFull
	case ratio >= 0.75:
		return matchScoreStrong
	case ratio >= 0.5:
		return matchScoreHalf
	default:
		return matchScoreReject
	}
}

// matchTokens splits on whitespace and discards tokens too short to carry
// identity (≤ 2 characters).
func matchTokens(s string) []string {
	words := strings.Fields(s)
	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if len(w) <= 2 {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// tokenInSet reports substring containment in either direction against any
// token of the set ("Nirvana" matches "nirvana-ion").
func tokenInSet(token string, set []string) bool {
	for _, other := range set {
		if strings.Contains(other, token) || strings.Contains(token, other) {
			return true
		}
	}
	return false
}
