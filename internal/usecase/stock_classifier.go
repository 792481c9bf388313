package usecase

import (
	"regexp"

	"github.com/pricelens/backend/internal/domain"
)

// Availability vocabulary. Explicit out-of-stock phrasing always wins over
// in-stock phrasing when both somehow appear.
var (
	inStockPattern    = regexp.MustCompile(`(?i)\bin[ _-]?stock\b|\bavailable\b|\bships\b|\bin\s+supply\b`)
	outOfStockPattern = regexp.MustCompile(`(?i)\bout[ _-]?of[ _-]?stock\b|\bsold[ _-]?out\b|\bdiscontinued\b|\bunavailable\b|\bcurrently\s+not\s+available\b`)
)

// availabilityFieldNames are the explicit stock-signal fields checked first
var availabilityFieldNames = []string{"availability", "stock_status", "stock", "in_stock"}

// StockClassifier infers in-stock status from explicit fields or textual
// cues. When no signal exists the default is conservative (out of stock)
// unless the optimistic policy variant is enabled.
type StockClassifier struct {
	optimistic bool
}

// NewStockClassifier creates a stock classifier. optimistic selects the
// lenient no-signal/no-price default.
func NewStockClassifier(optimistic bool) *StockClassifier {
	return &StockClassifier{optimistic: optimistic}
}

// Status reads the explicit and textual stock signals off a record without
// applying any default policy.
func (c *StockClassifier) Status(record domain.RawSearchResult) domain.StockStatus {
	// Explicit boolean field
	for _, name := range availabilityFieldNames {
		if v, ok := record[name].(bool); ok {
			if v {
				return domain.StockIn
			}
			return domain.StockOut
		}
	}

	// Explicit string field, normalized through the availability vocabulary
	if s, ok := record.StringField(availabilityFieldNames...); ok {
		if outOfStockPattern.MatchString(s) {
			return domain.StockOut
		}
		if inStockPattern.MatchString(s) {
			return domain.StockIn
		}
	}

	// No explicit field: look for out-of-stock phrasing in title/snippet
	title := record.Title()
	snippet, _ := record.StringField("snippet", "description")
	if outOfStockPattern.MatchString(title) || outOfStockPattern.MatchString(snippet) {
		return domain.StockOut
	}

	return domain.StockUnknown
}

// InStock collapses the tri-valued status to the boolean the result needs.
// An unknown status with a valid price is treated as in stock (shopping
// feeds generally omit prices for unavailable items); unknown without a
// price falls to the policy default.
func (c *StockClassifier) InStock(record domain.RawSearchResult, price domain.PriceExtraction) bool {
	switch c.Status(record) {
	case domain.StockIn:
		return true
	case domain.StockOut:
		return false
	}

	if price.HasPrice() {
		return true
	}
	return c.optimistic
}
