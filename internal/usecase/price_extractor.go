package usecase

import (
	"fmt"
	"log"
	"math"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/pricelens/backend/internal/domain"
)

// Extraction confidence tiers, ordered by how directly the price was found
const (
	confidenceDirectNumeric = 95 // direct numeric field
	confidenceParsedString  = 85 // string field run through the price parser
	confidenceNestedArray   = 80 // element of a known nested collection
	confidenceBlindScan     = 70 // unrestricted recursive scan
	depthPenalty            = 5  // per recursion level during the blind scan
	maxScanDepth            = 6
	maxScanStringLen        = 60 // long strings are snippets, not prices
)

// priceFieldNames is the prioritized list of field names checked for a
// direct price, centralised here rather than scattered as literals.
var priceFieldNames = []string{
	"extracted_price", "price", "amount", "extracted_value", "value",
	"current_price", "sale_price",
}

// nestedPriceFields are collection-valued fields whose elements may carry prices
var nestedPriceFields = []string{"detected_values", "prices", "offers", "variants"}

// nonPriceFields are known non-price fields skipped during the blind scan
var nonPriceFields = map[string]bool{
	"title": true, "name": true, "link": true, "product_link": true,
	"url": true, "thumbnail": true, "image": true, "images": true,
	"rating": true, "reviews": true, "snippet": true, "description": true,
	"source": true, "seller": true, "store": true, "source_icon": true,
	"position": true, "delivery": true, "product_id": true, "serpapi_product_api": true,
}

// String-price parsing patterns. A range is recognized before a single price.
var (
	currencyMarker = `(?:₹|rs\.?|inr)?`
	priceNumber    = `([\d,]+(?:\.\d+)?)`

	priceRangePattern  = regexp.MustCompile(`(?i)` + currencyMarker + `\s*` + priceNumber + `\s*(?:[-–—~]|to)\s*` + currencyMarker + `\s*` + priceNumber)
	priceSinglePattern = regexp.MustCompile(`(?i)` + currencyMarker + `\s*` + priceNumber)

	unavailablePattern = regexp.MustCompile(`(?i)out\s*of\s*stock|unavailable|sold\s*out|discontinued`)
)

// PriceExtractor mines a single raw search result for a price. It tolerates
// missing fields, mixed types, and nested or self-referential structures.
type PriceExtractor struct {
	enableDebugLogging bool
}

// NewPriceExtractor creates a new price extractor
func NewPriceExtractor(enableDebugLogging bool) *PriceExtractor {
	return &PriceExtractor{
		enableDebugLogging: enableDebugLogging,
	}
}

// Extract searches one record for a price. Tiers are tried in order and the
// first success wins; the confidence tier reflects how the price was found.
// A zero-valued extraction (Min == 0) means no price was found.
func (e *PriceExtractor) Extract(record domain.RawSearchResult) domain.PriceExtraction {
	// Tier 1: direct numeric field
	if n, ok := record.NumberField(priceFieldNames...); ok && n > 0 {
		v := int(math.Round(n))
		return domain.PriceExtraction{
			Min:            v,
			Max:            v,
			OriginalText:   strconv.FormatFloat(n, 'f', -1, 64),
			ConfidenceTier: confidenceDirectNumeric,
		}
	}

	// Tier 2: string field run through the price parser
	for _, name := range priceFieldNames {
		if s, ok := record.StringField(name); ok {
			if min, max, ok := parsePriceString(s); ok {
				return domain.PriceExtraction{
					Min:            min,
					Max:            max,
					OriginalText:   s,
					ConfidenceTier: confidenceParsedString,
				}
			}
		}
	}

	// Tier 3: known nested collections
	for _, name := range nestedPriceFields {
		items, ok := record[name].([]interface{})
		if !ok {
			continue
		}
		if p, ok := extractFromCollection(items); ok {
			p.ConfidenceTier = confidenceNestedArray
			return p
		}
	}

	// Tier 4: blind recursive scan of everything else
	visited := make(map[uintptr]bool)
	if p, ok := e.scan(map[string]interface{}(record), 0, visited); ok {
		return p
	}

	if e.enableDebugLogging {
		log.Printf("[PRICE] No price found in record %q", record.Title())
	}

	return domain.PriceExtraction{}
}

// extractFromCollection pulls the first parseable price out of a mixed
// collection of objects and strings. Elements are searched recursively so a
// price nested inside an element still counts as a collection hit.
func extractFromCollection(items []interface{}) (domain.PriceExtraction, bool) {
	visited := make(map[uintptr]bool)
	for _, item := range items {
		if p, ok := searchCollectionItem(item, 0, visited); ok {
			return p, true
		}
	}
	return domain.PriceExtraction{}, false
}

// searchCollectionItem searches one collection element, descending into
// nested maps and slices. Bounded by the same depth cap and visited set as
// the blind scan so cyclic elements terminate.
func searchCollectionItem(item interface{}, depth int, visited map[uintptr]bool) (domain.PriceExtraction, bool) {
	if depth > maxScanDepth {
		return domain.PriceExtraction{}, false
	}

	switch v := item.(type) {
	case string:
		if min, max, ok := parsePriceString(v); ok {
			return domain.PriceExtraction{Min: min, Max: max, OriginalText: v}, true
		}
	case float64:
		if v > 0 {
			n := int(math.Round(v))
			return domain.PriceExtraction{Min: n, Max: n, OriginalText: strconv.FormatFloat(v, 'f', -1, 64)}, true
		}
	case map[string]interface{}:
		ptr := reflect.ValueOf(v).Pointer()
		if visited[ptr] {
			return domain.PriceExtraction{}, false
		}
		visited[ptr] = true

		rec := domain.RawSearchResult(v)
		if n, ok := rec.NumberField(priceFieldNames...); ok && n > 0 {
			r := int(math.Round(n))
			return domain.PriceExtraction{Min: r, Max: r, OriginalText: strconv.FormatFloat(n, 'f', -1, 64)}, true
		}
		for _, name := range priceFieldNames {
			if s, ok := rec.StringField(name); ok {
				if min, max, ok := parsePriceString(s); ok {
					return domain.PriceExtraction{Min: min, Max: max, OriginalText: s}, true
				}
			}
		}

		keys := make([]string, 0, len(v))
		for key := range v {
			if !nonPriceFields[key] {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)

		for _, key := range keys {
			switch v[key].(type) {
			case map[string]interface{}, []interface{}:
				if p, ok := searchCollectionItem(v[key], depth+1, visited); ok {
					return p, true
				}
			}
		}
	case []interface{}:
		ptr := reflect.ValueOf(v).Pointer()
		if visited[ptr] {
			return domain.PriceExtraction{}, false
		}
		visited[ptr] = true

		for _, element := range v {
			if p, ok := searchCollectionItem(element, depth+1, visited); ok {
				return p, true
			}
		}
	}

	return domain.PriceExtraction{}, false
}

// scan walks arbitrary nested structure looking for anything price-shaped.
// Recursion is bounded by a visited-identity set and a max depth so cyclic
// or degenerate inputs always terminate. Confidence drops with depth.
func (e *PriceExtractor) scan(node interface{}, depth int, visited map[uintptr]bool) (domain.PriceExtraction, bool) {
	if depth > maxScanDepth {
		return domain.PriceExtraction{}, false
	}

	switch v := node.(type) {
	case map[string]interface{}:
		ptr := reflect.ValueOf(v).Pointer()
		if visited[ptr] {
			return domain.PriceExtraction{}, false
		}
		visited[ptr] = true

		// Map iteration order is randomized; sorted keys keep the scan
		// deterministic when several fields look price-shaped.
		keys := make([]string, 0, len(v))
		for key := range v {
			if !nonPriceFields[key] {
				keys = append(keys, key)
			}
		}
		sort.Strings(keys)

		for _, key := range keys {
			if p, ok := e.scanValue(key, v[key], depth, visited); ok {
				return p, true
			}
		}
	case []interface{}:
		ptr := reflect.ValueOf(v).Pointer()
		if visited[ptr] {
			return domain.PriceExtraction{}, false
		}
		visited[ptr] = true

		for _, item := range v {
			if p, ok := e.scan(item, depth+1, visited); ok {
				return p, true
			}
		}
	}

	return domain.PriceExtraction{}, false
}

// scanValue inspects one field value during the blind scan
func (e *PriceExtractor) scanValue(key string, val interface{}, depth int, visited map[uintptr]bool) (domain.PriceExtraction, bool) {
	confidence := confidenceBlindScan - depth*depthPenalty
	if confidence < 0 {
		confidence = 0
	}

	switch v := val.(type) {
	case string:
		// Only short strings can plausibly be prices; anything longer is a
		// snippet and parsing it risks false positives.
		if len(v) > maxScanStringLen {
			return domain.PriceExtraction{}, false
		}
		if !strings.ContainsAny(v, "0123456789") {
			return domain.PriceExtraction{}, false
		}
		if min, max, ok := parsePriceString(v); ok {
			if e.enableDebugLogging {
				log.Printf("[PRICE] Blind scan hit at depth %d: field %q = %q", depth, key, v)
			}
			return domain.PriceExtraction{Min: min, Max: max, OriginalText: v, ConfidenceTier: confidence}, true
		}
	case map[string]interface{}, []interface{}:
		if p, ok := e.scan(v, depth+1, visited); ok {
			return p, true
		}
	}

	return domain.PriceExtraction{}, false
}

// parsePriceString parses a human-readable price string. Ranges are
// recognized before single prices; thousands separators and currency markers
// are stripped; explicit unavailability phrasing is rejected outright.
// Values are rounded to the nearest integer currency unit.
func parsePriceString(s string) (int, int, bool) {
	if s == "" || unavailablePattern.MatchString(s) {
		return 0, 0, false
	}

	if m := priceRangePattern.FindStringSubmatch(s); m != nil {
		low, err1 := parsePriceNumber(m[1])
		high, err2 := parsePriceNumber(m[2])
		if err1 == nil && err2 == nil && low > 0 && high > 0 {
			if low > high {
				low, high = high, low
			}
			return low, high, true
		}
	}

	if m := priceSinglePattern.FindStringSubmatch(s); m != nil {
		v, err := parsePriceNumber(m[1])
		if err == nil && v > 0 {
			return v, v, true
		}
	}

	return 0, 0, false
}

// parsePriceNumber converts "1,499.50" to the nearest integer unit
func parsePriceNumber(s string) (int, error) {
	s = strings.ReplaceAll(s, ",", "")
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("unparseable price number %q: %w", s, err)
	}
	return int(math.Round(f)), nil
}
