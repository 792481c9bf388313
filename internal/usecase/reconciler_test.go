package usecase

import (
	"errors"
	"reflect"
	"testing"

	"github.com/pricelens/backend/internal/domain"
)

func newTestReconciler() *Reconciler {
	return NewReconciler(
		NewPriceExtractor(false),
		NewTrustRegionClassifier(testTrustConfig()),
		NewStockClassifier(false),
		ReconcilerConfig{Currency: "INR"},
	)
}

func TestReconcile_TrustVetoBeatsPrice(t *testing.T) {
	r := newTestReconciler()

	// The blacklisted listing is nominally cheaper but must never win
	results := []domain.RawSearchResult{
		{
			"link":  "https://www.amazon.in/dp/B0C",
			"price": "₹1,499",
			"title": "Boat Nirvana Ion TWS",
		},
		{
			"link":  "https://www.aliexpress.com/item/1005",
			"price": "₹999",
			"title": "Boat Nirvana Ion",
		},
	}

	result, err := r.Reconcile("Boat Nirvana Ion", results)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.PriceMin != 1499 {
		t.Errorf("PriceMin = %d, want 1499 (whitelisted listing)", result.PriceMin)
	}
	if result.ShopURL != "https://www.amazon.in/dp/B0C" {
		t.Errorf("ShopURL = %q, want the whitelisted listing", result.ShopURL)
	}
	for _, src := range result.Sources {
		if src.URI == "https://www.aliexpress.com/item/1005" {
			t.Error("vetoed listing leaked into alternates")
		}
	}
}

func TestReconcile_AllVetoed(t *testing.T) {
	r := newTestReconciler()

	results := []domain.RawSearchResult{
		{"link": "https://www.aliexpress.com/item/1", "price": "₹999", "title": "Boat Nirvana Ion"},
		{"link": "https://www.wish.com/product/2", "price": "₹899", "title": "Boat Nirvana Ion"},
	}

	_, err := r.Reconcile("Boat Nirvana Ion", results)
	if !errors.Is(err, domain.ErrNoQualifyingCandidate) {
		t.Errorf("error = %v, want ErrNoQualifyingCandidate", err)
	}
}

func TestReconcile_EmptyResults(t *testing.T) {
	r := newTestReconciler()

	_, err := r.Reconcile("Boat Nirvana Ion", nil)
	if !errors.Is(err, domain.ErrNoQualifyingCandidate) {
		t.Errorf("error = %v, want ErrNoQualifyingCandidate", err)
	}
}

func TestReconcile_NoExtractablePrice(t *testing.T) {
	r := newTestReconciler()

	results := []domain.RawSearchResult{
		{"link": "https://www.amazon.in/dp/B0C", "title": "Boat Nirvana Ion TWS"},
		{"link": "https://www.flipkart.com/p/itm", "title": "Boat Nirvana Ion"},
	}

	result, err := r.Reconcile("Boat Nirvana Ion", results)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.PriceAvailable {
		t.Error("PriceAvailable = true, want false")
	}
	if result.PriceMin != 0 || result.PriceMax != 0 {
		t.Errorf("price = {%d, %d}, want {0, 0}", result.PriceMin, result.PriceMax)
	}
	if result.Confidence != 60 {
		t.Errorf("Confidence = %d, want 60 without a price", result.Confidence)
	}
}

func TestReconcile_PriceRaisesConfidence(t *testing.T) {
	r := newTestReconciler()

	results := []domain.RawSearchResult{
		{"link": "https://www.amazon.in/dp/B0C", "price": "₹1,499", "title": "Boat Nirvana Ion TWS"},
	}

	result, err := r.Reconcile("Boat Nirvana Ion", results)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Confidence != 90 {
		t.Errorf("Confidence = %d, want 90 with a price", result.Confidence)
	}
	if !result.PriceAvailable {
		t.Error("PriceAvailable = false, want true")
	}
	if !result.InStock {
		t.Error("InStock = false, want true (priced, no out-of-stock signal)")
	}
	if result.Currency != "INR" {
		t.Errorf("Currency = %q, want INR", result.Currency)
	}
}

func TestReconcile_RegionPreferredOverForeign(t *testing.T) {
	r := newTestReconciler()

	// The foreign listing is cheaper and from a trusted-sounding host, but
	// the region-matched priced candidate must win the fallback chain.
	results := []domain.RawSearchResult{
		{"link": "https://www.walmart.com/ip/1", "price": "$9.99", "title": "Boat Nirvana Ion TWS"},
		{"link": "https://www.flipkart.com/p/itm", "price": "₹1,699", "title": "Boat Nirvana Ion"},
	}

	result, err := r.Reconcile("Boat Nirvana Ion", results)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ShopURL != "https://www.flipkart.com/p/itm" {
		t.Errorf("ShopURL = %q, want the region-matched listing", result.ShopURL)
	}
}

func TestReconcile_ForeignPricedFallback(t *testing.T) {
	r := newTestReconciler()

	// No region-matched priced candidate: the any-priced partition wins
	// over the unpriced remainder.
	results := []domain.RawSearchResult{
		{"link": "https://www.amazon.in/dp/B0C", "title": "Boat Nirvana Ion TWS"},
		{"link": "https://www.walmart.com/ip/1", "price": "$9.99", "title": "Boat Nirvana Ion"},
	}

	result, err := r.Reconcile("Boat Nirvana Ion", results)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.PriceAvailable {
		t.Error("PriceAvailable = false, want true from the any-priced fallback")
	}
	if result.ShopURL != "https://www.walmart.com/ip/1" {
		t.Errorf("ShopURL = %q, want the priced foreign listing", result.ShopURL)
	}
}

func TestReconcile_Alternates(t *testing.T) {
	r := newTestReconciler()

	results := []domain.RawSearchResult{
		{"link": "https://www.amazon.in/dp/1", "price": "₹1,499", "title": "Boat Nirvana Ion TWS"},
		{"link": "https://www.flipkart.com/p/2", "price": "₹1,549", "title": "Boat Nirvana Ion"},
		{"link": "https://www.croma.com/p/3", "price": "₹1,599", "title": "Boat Nirvana Ion earbuds"},
		// Duplicate of the flipkart listing under another record
		{"link": "https://www.flipkart.com/p/2", "price": "₹1,549", "title": "Boat Nirvana Ion"},
	}

	result, err := r.Reconcile("Boat Nirvana Ion", results)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	seen := map[string]bool{result.ShopURL: true}
	for _, src := range result.Sources {
		if seen[src.URI] {
			t.Errorf("duplicate source %q in alternates", src.URI)
		}
		seen[src.URI] = true
	}
	if len(result.Sources) != 2 {
		t.Errorf("len(Sources) = %d, want 2 (winner excluded, duplicate collapsed)", len(result.Sources))
	}
}

func TestReconcile_Deterministic(t *testing.T) {
	r := newTestReconciler()

	results := []domain.RawSearchResult{
		{"link": "https://www.amazon.in/dp/1", "price": "₹1,499", "title": "Boat Nirvana Ion TWS"},
		{"link": "https://www.flipkart.com/p/2", "price": "₹1,499", "title": "Boat Nirvana Ion TWS"},
		{"link": "https://www.croma.com/p/3", "title": "Boat Nirvana Ion case"},
	}

	first, err := r.Reconcile("Boat Nirvana Ion", results)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for i := 0; i < 10; i++ {
		got, err := r.Reconcile("Boat Nirvana Ion", results)
		if err != nil {
			t.Fatalf("unexpected error on run %d: %v", i, err)
		}
		if !reflect.DeepEqual(first, got) {
			t.Fatalf("Reconcile() not deterministic:\nfirst: %+v\n got: %+v", first, got)
		}
	}

	// Equal scores keep original result order: the amazon listing came first
	if first.ShopURL != "https://www.amazon.in/dp/1" {
		t.Errorf("ShopURL = %q, want the earlier of two tied listings", first.ShopURL)
	}
}

func TestCompositeScore_PolicyOrdering(t *testing.T) {
	priced := domain.PriceExtraction{Min: 1499, Max: 1499, ConfidenceTier: 85}

	regionNoPrice := domain.ScoredCandidate{RegionOK: true, MatchScore: 95}
	foreignPriced := domain.ScoredCandidate{RegionOK: false, Price: priced, InStock: true, MatchScore: 95, Trusted: true}
	regionPriced := domain.ScoredCandidate{RegionOK: true, Price: priced, InStock: true, MatchScore: 70}

	if compositeScore(regionPriced) <= compositeScore(foreignPriced) {
		t.Error("region-matched priced candidate must outscore a foreign priced one despite weaker title match")
	}
	if compositeScore(regionPriced) <= compositeScore(regionNoPrice) {
		t.Error("priced candidate must outscore an unpriced one in the same region")
	}
}
