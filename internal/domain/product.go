package domain

import "strings"

// RawSearchResult is one record from the shopping-search collaborator.
// Fields are not guaranteed to exist or to have a stable type: "price" may be
// a number, a string ("₹1,499 – ₹1,999"), or missing entirely, and nested
// collections may mix objects and strings. Always go through the accessor
// methods instead of indexing the map directly.
type RawSearchResult map[string]interface{}

// StringField returns the first of the named fields that holds a non-empty string.
func (r RawSearchResult) StringField(names ...string) (string, bool) {
	for _, name := range names {
		if v, ok := r[name]; ok {
			if s, ok := v.(string); ok && s != "" {
				return s, true
			}
		}
	}
	return "", false
}

// NumberField returns the first of the named fields that holds a number.
// JSON decoding yields float64; plain ints are accepted too.
func (r RawSearchResult) NumberField(names ...string) (float64, bool) {
	for _, name := range names {
		v, ok := r[name]
		if !ok {
			continue
		}
		switch n := v.(type) {
		case float64:
			return n, true
		case int:
			return float64(n), true
		}
	}
	return 0, false
}

// Link returns the best-effort purchasable URL for the record.
func (r RawSearchResult) Link() string {
	s, _ := r.StringField("link", "product_link", "url")
	return s
}

// Title returns the record's display title.
func (r RawSearchResult) Title() string {
	s, _ := r.StringField("title", "name")
	return s
}

// SourceName returns the seller/source label, falling back to the link host.
func (r RawSearchResult) SourceName() string {
	if s, ok := r.StringField("source", "seller", "store"); ok {
		return s
	}
	link := r.Link()
	link = strings.TrimPrefix(link, "https://")
	link = strings.TrimPrefix(link, "http://")
	if idx := strings.IndexByte(link, '/'); idx > 0 {
		link = link[:idx]
	}
	return link
}

// Identity is the deduplication key for a record: the link when present,
// otherwise the title.
func (r RawSearchResult) Identity() string {
	if link := r.Link(); link != "" {
		return link
	}
	return r.Title()
}

// PriceExtraction is the outcome of mining one record for a price.
// Min == Max denotes a single price; Min == 0 denotes "no price found".
type PriceExtraction struct {
	Min            int    `json:"min"`
	Max            int    `json:"max"`
	OriginalText   string `json:"originalText,omitempty"`
	ConfidenceTier int    `json:"confidenceTier"`
}

// HasPrice reports whether the extraction found a usable price.
func (p PriceExtraction) HasPrice() bool {
	return p.Min > 0
}

// StockStatus is the tri-valued stock signal read off a record before the
// leniency policy collapses it to a boolean.
type StockStatus int

const (
	StockUnknown StockStatus = iota
	StockIn
	StockOut
)

// ScoredCandidate is one record annotated with every classifier output plus
// the composite ranking score. Ephemeral; recomputed per scan.
type ScoredCandidate struct {
	Record     RawSearchResult
	Score      float64
	Price      PriceExtraction
	Stock      StockStatus
	InStock    bool
	Trusted    bool
	RegionOK   bool
	MatchScore int
}

// SourceRef is one entry of the alternates list in the final result.
type SourceRef struct {
	URI       string `json:"uri"`
	Title     string `json:"title"`
	PriceText string `json:"priceText,omitempty"`
}

// ProductResult is the normalized output of a scan.
type ProductResult struct {
	Name           string      `json:"name"`
	PriceMin       int         `json:"priceMin"`
	PriceMax       int         `json:"priceMax"`
	Currency       string      `json:"currency"`
	Confidence     int         `json:"confidence"`
	ShopURL        string      `json:"shopUrl"`
	SourceName     string      `json:"sourceName"`
	InStock        bool        `json:"inStock"`
	PriceAvailable bool        `json:"priceAvailable"`
	Sources        []SourceRef `json:"sources"`
}

// ScanRequest is the caller's input: either a public image URL or raw image
// bytes to be uploaded first.
type ScanRequest struct {
	ImageURL  string
	ImageData []byte
	FileName  string
}
