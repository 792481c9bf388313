package usecase

import (
	"testing"

	"github.com/pricelens/backend/internal/domain"
)

func testTrustConfig() TrustConfig {
	return TrustConfig{
		TrustedDomains:   []string{"amazon.in", "flipkart.com", "croma.com"},
		BlockedDomains:   []string{"aliexpress.com", "wish.com", "ebay.com"},
		RegionalSuffixes: []string{".in", ".co.in"},
		Currency:         "INR",
	}
}

func TestVetoed(t *testing.T) {
	c := NewTrustRegionClassifier(testTrustConfig())

	tests := []struct {
		name   string
		record domain.RawSearchResult
		want   bool
	}{
		{
			name:   "blocked domain in link",
			record: domain.RawSearchResult{"link": "https://www.aliexpress.com/item/1005"},
			want:   true,
		},
		{
			name:   "blocked domain in source",
			record: domain.RawSearchResult{"source": "ebay.com", "title": "Boat Nirvana Ion"},
			want:   true,
		},
		{
			name:   "approved seller not vetoed",
			record: domain.RawSearchResult{"link": "https://www.amazon.in/dp/B0C"},
			want:   false,
		},
		{
			name:   "unknown seller not vetoed",
			record: domain.RawSearchResult{"link": "https://www.unknownshop.net/p/1"},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Vetoed(tt.record); got != tt.want {
				t.Errorf("Vetoed() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	c := NewTrustRegionClassifier(testTrustConfig())

	tests := []struct {
		name        string
		record      domain.RawSearchResult
		priceText   string
		wantTrusted bool
		wantRegion  bool
	}{
		{
			name:        "approved regional seller",
			record:      domain.RawSearchResult{"link": "https://www.amazon.in/dp/B0C"},
			priceText:   "₹1,499",
			wantTrusted: true,
			wantRegion:  true,
		},
		{
			name:        "unknown host with target currency",
			record:      domain.RawSearchResult{"link": "https://boat-lifestyle.com/products/nirvana"},
			priceText:   "₹1,499",
			wantTrusted: false,
			wantRegion:  true,
		},
		{
			name:        "foreign currency forces region mismatch",
			record:      domain.RawSearchResult{"link": "https://www.walmart.com/ip/headphones"},
			priceText:   "$39.99",
			wantTrusted: false,
			wantRegion:  false,
		},
		{
			name:        "foreign domain suffix forces region mismatch",
			record:      domain.RawSearchResult{"link": "https://www.amazon.co.uk/dp/B0C"},
			priceText:   "",
			wantTrusted: false,
			wantRegion:  false,
		},
		{
			name:        "ambiguous record defaults to region mismatch",
			record:      domain.RawSearchResult{"link": "https://www.unknownshop.net/p/1"},
			priceText:   "",
			wantTrusted: false,
			wantRegion:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			trusted, regionOK := c.Classify(tt.record, tt.priceText)
			if trusted != tt.wantTrusted {
				t.Errorf("trusted = %v, want %v", trusted, tt.wantTrusted)
			}
			if regionOK != tt.wantRegion {
				t.Errorf("regionOK = %v, want %v", regionOK, tt.wantRegion)
			}
		})
	}
}

func TestDetectCurrency(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"₹1,499", "INR"},
		{"Rs. 1,799", "INR"},
		{"1499 INR", "INR"},
		{"$39.99", "USD"},
		{"€25", "EUR"},
		{"£19.99", "GBP"},
		{"¥2000", "JPY"},
		{"1,499", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			if got := detectCurrency(tt.input); got != tt.want {
				t.Errorf("detectCurrency(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}
