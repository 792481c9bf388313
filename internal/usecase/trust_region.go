package usecase

import (
	"regexp"
	"strings"

	"github.com/pricelens/backend/internal/domain"
)

// currencyPattern pairs a currency code with the markers that identify it.
// Detection is ordered: the target market's currency first, then the common
// foreign currencies; first match wins.
type currencyPattern struct {
	code    string
	pattern *regexp.Regexp
}

var currencyPatterns = []currencyPattern{
	{"INR", regexp.MustCompile(`(?i)₹|\brs\.?\s*\d|\binr\b|\brupees?\b`)},
	{"USD", regexp.MustCompile(`(?i)\$|\busd\b|\bdollars?\b`)},
	{"EUR", regexp.MustCompile(`(?i)€|\beur\b|\beuros?\b`)},
	{"GBP", regexp.MustCompile(`(?i)£|\bgbp\b|\bpounds?\b`)},
	{"JPY", regexp.MustCompile(`(?i)¥|\bjpy\b|\byen\b`)},
}

// detectCurrency returns the currency code whose markers appear first in the
// ordered pattern list, or "" when no marker is present.
func detectCurrency(text string) string {
	for _, cp := range currencyPatterns {
		if cp.pattern.MatchString(text) {
			return cp.code
		}
	}
	return ""
}

// foreignDomainSuffixes mark hosts that are definitely outside the target
// market even when they pass no other test.
var foreignDomainSuffixes = []string{
	".com.au", ".co.uk", ".com.cn", ".de", ".fr", ".jp", ".sg", ".ae",
}

// TrustConfig holds the seller trust tables, injected from configuration so
// the classifier stays testable with substituted tables.
type TrustConfig struct {
	TrustedDomains   []string
	BlockedDomains   []string
	RegionalSuffixes []string
	Currency         string
}

// TrustRegionClassifier decides whether a record's seller is approved and
// whether the record is geographically/currency-consistent with the target
// market. Membership in the blocked list is a hard veto, not a penalty.
type TrustRegionClassifier struct {
	trustedDomains   []string
	blockedDomains   []string
	regionalSuffixes []string
	currency         string
}

// NewTrustRegionClassifier creates a classifier from the given trust tables
func NewTrustRegionClassifier(cfg TrustConfig) *TrustRegionClassifier {
	currency := cfg.Currency
	if currency == "" {
		currency = "INR"
	}
	return &TrustRegionClassifier{
		trustedDomains:   cfg.TrustedDomains,
		blockedDomains:   cfg.BlockedDomains,
		regionalSuffixes: cfg.RegionalSuffixes,
		currency:         currency,
	}
}

// Vetoed reports whether the record's link or source matches a blocked
// domain. Vetoed records are excluded from candidacy entirely, regardless of
// any other score.
func (c *TrustRegionClassifier) Vetoed(record domain.RawSearchResult) bool {
	haystack := strings.ToLower(record.Link() + " " + record.SourceName())
	for _, blocked := range c.blockedDomains {
		if strings.Contains(haystack, blocked) {
			return true
		}
	}
	return false
}

// Classify returns the trust and region flags for a record. priceText is the
// raw text the price was extracted from; its currency markers count toward
// region consistency. Ambiguous records default to regionOk=false so they
// stay out of the region-preferred pool.
func (c *TrustRegionClassifier) Classify(record domain.RawSearchResult, priceText string) (trusted, regionOK bool) {
	link := strings.ToLower(record.Link())
	haystack := link + " " + strings.ToLower(record.SourceName())

	for _, approved := range c.trustedDomains {
		if strings.Contains(haystack, approved) {
			trusted = true
			break
		}
	}

	regionOK = c.regionConsistent(link, priceText)
	return trusted, regionOK
}

func (c *TrustRegionClassifier) regionConsistent(link, priceText string) bool {
	host := hostOf(link)

	for _, suffix := range c.regionalSuffixes {
		if strings.HasSuffix(host, suffix) {
			return true
		}
	}
	for _, suffix := range foreignDomainSuffixes {
		if strings.HasSuffix(host, suffix) {
			return false
		}
	}

	switch detectCurrency(priceText) {
	case c.currency:
		return true
	case "":
		return false
	default:
		// Foreign-currency noise
		return false
	}
}

// hostOf extracts the host portion of a URL without caring whether the
// scheme is present.
func hostOf(link string) string {
	link = strings.TrimPrefix(link, "https://")
	link = strings.TrimPrefix(link, "http://")
	if idx := strings.IndexByte(link, '/'); idx >= 0 {
		link = link[:idx]
	}
	return link
}
