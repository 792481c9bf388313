package usecase

import (
	"log"
	"regexp"
	"strings"
)

// Compiled regex patterns for title sanitizing
var (
	// Matches variant separators where the useful product name ends:
	// "::", "|", or an en-dash/hyphen followed by lowercase descriptive text
	// (e.g. "boAt Nirvana Ion - with 120hrs playback")
	variantSeparatorPattern = regexp.MustCompile(`::|\||\s[-–—]\s*[a-z]`)

	// Matches a price fragment token, optionally prefixed with a currency
	// marker (e.g. "₹1,499", "Rs.999", "1799.00")
	priceFragmentPattern = regexp.MustCompile(`(?i)^(?:₹|rs\.?|inr)?[\d,]+(?:\.\d+)?$`)

	// Multiple spaces cleanup
	multiSpacePattern = regexp.MustCompile(`\s+`)
)

// maxNameTokens caps the canonical name at brand + model length
const maxNameTokens = 5

// titleNoiseWords to strip from visually-identified titles (platform names,
// content-type jargon, price markers, filler words)
var titleNoiseWords = map[string]bool{
	// Platform / listing sites that leak into visual-match titles
	"amazon":    true,
	"flipkart":  true,
	"myntra":    true,
	"snapdeal":  true,
	"youtube":   true,
	"instagram": true,
	"facebook":  true,
	"pinterest": true,
	"croma":     true,
	"online":    true,
	"shopping":  true,
	"store":     true,
	"shop":      true,

	// Content-type jargon from video/review titles
	"review":    true,
	"reviews":   true,
	"unboxing":  true,
	"unbox":     true,
	"hands-on":  true,
	"giveaway":  true,
	"shorts":    true,
	"vlog":      true,
	"tutorial":  true,
	"comparison": true,
	"vs":        true,

	// Price markers
	"₹":      true,
	"rs":     true,
	"rs.":    true,
	"inr":    true,
	"price":  true,
	"prices": true,
	"rupees": true,
	"mrp":    true,
	"deal":   true,
	"offer":  true,
	"sale":   true,
	"discount": true,

	// Filler words
	"the":    true,
	"a":      true,
	"an":     true,
	"in":     true,
	"on":     true,
	"at":     true,
	"of":     true,
	"for":    true,
	"with":   true,
	"under":  true,
	"buy":    true,
	"best":   true,
	"new":    true,
	"latest": true,
	"top":    true,
	"cheap":  true,
	"india":  true,
}

// NameSanitizer normalizes raw visually-identified titles into short
// canonical product names (brand + model). Pure and deterministic: identical
// input always yields identical output.
type NameSanitizer struct {
	enableDebugLogging bool
}

// NewNameSanitizer creates a new name sanitizer
func NewNameSanitizer(enableDebugLogging bool) *NameSanitizer {
	return &NameSanitizer{
		enableDebugLogging: enableDebugLogging,
	}
}

// Sanitize reduces a raw, noisy title to a canonical product name of at most
// maxNameTokens meaningful tokens. Falls back to the pre-strip truncated text
// when fewer than 2 tokens survive, and to the original raw title when even
// that is empty.
func (s *NameSanitizer) Sanitize(rawTitle string) string {
	if rawTitle == "" {
		return ""
	}

	// Step 1: truncate at the first variant separator
	truncated := truncateAtSeparator(rawTitle)

	// Steps 2-4: strip noise tokens, skip pure numbers and price fragments,
	// keep the first maxNameTokens survivors
	words := strings.Fields(truncated)
	var kept []string
	for _, word := range words {
		clean := strings.ToLower(strings.Trim(word, ",.!?;:'\"()[]"))
		if clean == "" || titleNoiseWords[clean] {
			continue
		}
		if priceFragmentPattern.MatchString(clean) {
			continue
		}
		kept = append(kept, strings.Trim(word, ",.!?;:'\"()[]"))
		if len(kept) == maxNameTokens {
			break
		}
	}

	result := strings.Join(kept, " ")

	// Step 5: fallbacks when stripping was too aggressive
	if len(kept) < 2 {
		result = strings.TrimSpace(multiSpacePattern.ReplaceAllString(truncated, " "))
		if result == "" {
			result = rawTitle
		}
	}

	if s.enableDebugLogging {
		log.Printf("[SANITIZE] Input: %q → Output: %q", rawTitle, result)
	}

	return result
}

// truncateAtSeparator cuts the title at the first variant separator
func truncateAtSeparator(title string) string {
	if loc := variantSeparatorPattern.FindStringIndex(title); loc != nil {
		return strings.TrimSpace(title[:loc[0]])
	}
	return strings.TrimSpace(title)
}
