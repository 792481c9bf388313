package usecase

import (
	"log"
	"sort"

	"github.com/pricelens/backend/internal/domain"
)

// Composite score weights. The ordering encodes the priority policy: region
// correctness and price availability dominate, title match is secondary,
// seller trust and stock status break ties.
const (
	regionMatchBonus   = 80.0
	regionMissPenalty  = -100.0
	priceFoundBonus    = 100.0
	priceMissPenalty   = -50.0
	titleMatchWeight   = 30.0
	trustedSellerBonus = 20.0
	inStockBonus       = 10.0
	outOfStockPenalty  = -5.0

	highConfidenceBonus = 20.0 // extraction confidence >= 90
	midConfidenceBonus  = 10.0 // extraction confidence >= 80
)

// Result confidence is a constant function of whether a price was found
const (
	confidenceWithPrice    = 90
	confidenceWithoutPrice = 60
)

// ReconcilerConfig holds the tunables of the reconciliation engine
type ReconcilerConfig struct {
	Currency           string
	MaxAlternates      int
	ExtraAlternates    int
	EnableDebugLogging bool
}

// Reconciler is the candidate reconciliation engine: it reduces a canonical
// product name plus heterogeneous search-result records to one best
// purchasable candidate and a ranked, deduplicated shortlist. Pure and
// deterministic; safe for concurrent use.
type Reconciler struct {
	extractor *PriceExtractor
	trust     *TrustRegionClassifier
	stock     *StockClassifier

	currency           string
	maxAlternates      int
	extraAlternates    int
	enableDebugLogging bool
}

// NewReconciler creates a reconciliation engine from its classifiers
func NewReconciler(
	extractor *PriceExtractor,
	trust *TrustRegionClassifier,
	stock *StockClassifier,
	cfg ReconcilerConfig,
) *Reconciler {
	maxAlternates := cfg.MaxAlternates
	if maxAlternates <= 0 {
		maxAlternates = 5
	}
	extraAlternates := cfg.ExtraAlternates
	if extraAlternates <= 0 {
		extraAlternates = 3
	}
	currency := cfg.Currency
	if currency == "" {
		currency = "INR"
	}

	return &Reconciler{
		extractor:          extractor,
		trust:              trust,
		stock:              stock,
		currency:           currency,
		maxAlternates:      maxAlternates,
		extraAlternates:    extraAlternates,
		enableDebugLogging: cfg.EnableDebugLogging,
	}
}

// Reconcile scores and ranks every record surviving the trust veto, then
// applies the selection fallback chain to assemble the final result.
// Returns ErrNoQualifyingCandidate when nothing survives.
func (r *Reconciler) Reconcile(canonicalName string, results []domain.RawSearchResult) (*domain.ProductResult, error) {
	candidates := r.scoreCandidates(canonicalName, results)
	if len(candidates) == 0 {
		return nil, domain.ErrNoQualifyingCandidate
	}

	// Stable sort keeps original result order on ties, which keeps the
	// whole engine deterministic.
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].Score > candidates[j].Score
	})

	regionPriced, anyPriced, remainder := partition(candidates)

	var best domain.ScoredCandidate
	switch {
	case len(regionPriced) > 0:
		best = regionPriced[0]
	case len(anyPriced) > 0:
		best = anyPriced[0]
	case len(remainder) > 0:
		best = remainder[0]
	default:
		return nil, domain.ErrNoQualifyingCandidate
	}

	if r.enableDebugLogging {
		log.Printf("[RECONCILE] Best: %q score=%.1f price=%d-%d region=%v trusted=%v",
			best.Record.Title(), best.Score, best.Price.Min, best.Price.Max, best.RegionOK, best.Trusted)
	}

	return r.assemble(canonicalName, best, regionPriced, anyPriced), nil
}

// scoreCandidates runs every classifier over each record and computes the
// composite score. Vetoed records never enter the pool.
func (r *Reconciler) scoreCandidates(canonicalName string, results []domain.RawSearchResult) []domain.ScoredCandidate {
	candidates := make([]domain.ScoredCandidate, 0, len(results))

	for _, record := range results {
		if record == nil {
			continue
		}
		if r.trust.Vetoed(record) {
			if r.enableDebugLogging {
				log.Printf("[RECONCILE] Vetoed: %q (%s)", record.Title(), record.Link())
			}
			continue
		}

		price := r.extractor.Extract(record)
		trusted, regionOK := r.trust.Classify(record, price.OriginalText)
		inStock := r.stock.InStock(record, price)
		matchScore := TitleMatchScore(canonicalName, record.Title())

		candidate := domain.ScoredCandidate{
			Record:     record,
			Price:      price,
			Stock:      r.stock.Status(record),
			InStock:    inStock,
			Trusted:    trusted,
			RegionOK:   regionOK,
			MatchScore: matchScore,
		}
		candidate.Score = compositeScore(candidate)

		if r.enableDebugLogging {
			log.Printf("[RECONCILE] %q | score=%.1f price=%d-%d tier=%d region=%v trusted=%v stock=%v match=%d",
				record.Title(), candidate.Score, price.Min, price.Max, price.ConfidenceTier,
				regionOK, trusted, inStock, matchScore)
		}

		candidates = append(candidates, candidate)
	}

	return candidates
}

// compositeScore combines the classifier outputs into one ordinal value
func compositeScore(c domain.ScoredCandidate) float64 {
	var score float64

	if c.RegionOK {
		score += regionMatchBonus
	} else {
		score += regionMissPenalty
	}

	if c.Price.HasPrice() {
		score += priceFoundBonus + confidenceBonus(c.Price.ConfidenceTier)
	} else {
		score += priceMissPenalty
	}

	score += float64(c.MatchScore) / 100.0 * titleMatchWeight

	if c.Trusted {
		score += trustedSellerBonus
	}

	if c.Price.HasPrice() {
		if c.InStock {
			score += inStockBonus
		} else {
			score += outOfStockPenalty
		}
	}

	return score
}

func confidenceBonus(tier int) float64 {
	switch {
	case tier >= 90:
		return highConfidenceBonus
	case tier >= 80:
		return midConfidenceBonus
	default:
		return 0
	}
}

// partition splits the ranked candidates into the three selection pools,
// preserving rank order within each.
func partition(candidates []domain.ScoredCandidate) (regionPriced, anyPriced, remainder []domain.ScoredCandidate) {
	for _, c := range candidates {
		switch {
		case c.RegionOK && c.Price.HasPrice():
			regionPriced = append(regionPriced, c)
		case c.Price.HasPrice():
			anyPriced = append(anyPriced, c)
		default:
			remainder = append(remainder, c)
		}
	}
	return regionPriced, anyPriced, remainder
}

// assemble builds the final ProductResult around the winning candidate
func (r *Reconciler) assemble(
	canonicalName string,
	best domain.ScoredCandidate,
	regionPriced, anyPriced []domain.ScoredCandidate,
) *domain.ProductResult {
	confidence := confidenceWithoutPrice
	if best.Price.HasPrice() {
		confidence = confidenceWithPrice
	}

	return &domain.ProductResult{
		Name:           canonicalName,
		PriceMin:       best.Price.Min,
		PriceMax:       best.Price.Max,
		Currency:       r.currency,
		Confidence:     confidence,
		ShopURL:        best.Record.Link(),
		SourceName:     best.Record.SourceName(),
		InStock:        best.InStock,
		PriceAvailable: best.Price.HasPrice(),
		Sources:        r.alternates(best, regionPriced, anyPriced),
	}
}

// alternates builds the deduplicated shortlist: region-matched priced
// candidates first up to the primary cap, then any-priced candidates up to
// the secondary cap. The winner itself is not repeated.
func (r *Reconciler) alternates(best domain.ScoredCandidate, regionPriced, anyPriced []domain.ScoredCandidate) []domain.SourceRef {
	seen := map[string]bool{best.Record.Identity(): true}
	sources := make([]domain.SourceRef, 0, r.maxAlternates+r.extraAlternates)

	for _, c := range regionPriced {
		if len(sources) >= r.maxAlternates {
			break
		}
		if id := c.Record.Identity(); id != "" && !seen[id] {
			seen[id] = true
			sources = append(sources, sourceRef(c))
		}
	}

	extra := 0
	for _, c := range anyPriced {
		if extra >= r.extraAlternates {
			break
		}
		if id := c.Record.Identity(); id != "" && !seen[id] {
			seen[id] = true
			sources = append(sources, sourceRef(c))
			extra++
		}
	}

	return sources
}

func sourceRef(c domain.ScoredCandidate) domain.SourceRef {
	return domain.SourceRef{
		URI:       c.Record.Link(),
		Title:     c.Record.Title(),
		PriceText: c.Price.OriginalText,
	}
}
