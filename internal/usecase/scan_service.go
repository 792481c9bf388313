package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/pricelens/backend/internal/domain"
)

// Package-level compiled regex patterns for cache-key normalization
var (
	nonAlphanumericRegex = regexp.MustCompile(`[^a-z0-9\s]`)
	multipleSpacesRegex  = regexp.MustCompile(`\s+`)
)

// ScanServiceConfig holds configuration for the scan service
type ScanServiceConfig struct {
	CacheTTL           time.Duration
	EnableDebugLogging bool
}

// ScanService runs the whole scan pipeline: upload (if needed), visual
// identification, name sanitizing, shopping search, and reconciliation.
// Stateless across scans; each call owns its inputs and outputs.
type ScanService struct {
	cache     domain.CacheRepository
	client    domain.ShoppingClient
	uploader  domain.ImageUploader
	cleaner   domain.NameCleaner // optional, may be nil
	sanitizer *NameSanitizer
	engine    *Reconciler

	cacheTTL           time.Duration
	enableDebugLogging bool
}

// NewScanService creates a scan service with its dependencies. cleaner may
// be nil when LLM name cleanup is disabled.
func NewScanService(
	cache domain.CacheRepository,
	client domain.ShoppingClient,
	uploader domain.ImageUploader,
	cleaner domain.NameCleaner,
	sanitizer *NameSanitizer,
	engine *Reconciler,
	config ScanServiceConfig,
) *ScanService {
	cacheTTL := config.CacheTTL
	if cacheTTL == 0 {
		cacheTTL = 24 * time.Hour
	}

	return &ScanService{
		cache:              cache,
		client:             client,
		uploader:           uploader,
		cleaner:            cleaner,
		sanitizer:          sanitizer,
		engine:             engine,
		cacheTTL:           cacheTTL,
		enableDebugLogging: config.EnableDebugLogging,
	}
}

// Scan turns a product photo into a price-annotated result.
// Flow: upload (if binary) -> identify -> sanitize -> check cache ->
// search -> reconcile -> cache -> return.
func (s *ScanService) Scan(ctx context.Context, request *domain.ScanRequest) (*domain.ProductResult, error) {
	if request == nil || (request.ImageURL == "" && len(request.ImageData) == 0) {
		return nil, domain.ErrInvalidRequest
	}

	imageURL := request.ImageURL
	if imageURL == "" {
		uploaded, err := s.uploader.Upload(ctx, request.ImageData, request.FileName)
		if err != nil {
			if errors.Is(err, domain.ErrMissingCredentials) {
				return nil, err
			}
			return nil, fmt.Errorf("%w: %v", domain.ErrUploadFailure, err)
		}
		imageURL = uploaded
	}

	titles, err := s.client.Identify(ctx, imageURL)
	if err != nil {
		if errors.Is(err, domain.ErrMissingCredentials) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrIdentificationFailure, err)
	}
	if len(titles) == 0 || strings.TrimSpace(titles[0]) == "" {
		return nil, domain.ErrIdentificationFailure
	}
	rawTitle := titles[0]

	// Optional LLM cleanup; failure falls back silently to the raw title.
	// Either way the deterministic sanitizer has the final word.
	if s.cleaner != nil {
		if cleaned, err := s.cleaner.Clean(ctx, rawTitle); err == nil && strings.TrimSpace(cleaned) != "" {
			rawTitle = cleaned
		} else if err != nil && s.enableDebugLogging {
			log.Printf("[SCAN] LLM cleanup failed, using raw title: %v", err)
		}
	}

	canonicalName := s.sanitizer.Sanitize(rawTitle)
	if canonicalName == "" {
		return nil, domain.ErrIdentificationFailure
	}

	if s.enableDebugLogging {
		log.Printf("[SCAN] Identified %q -> canonical %q", rawTitle, canonicalName)
	}

	cacheKey := s.generateCacheKey(canonicalName)
	if cached, err := s.getFromCache(ctx, cacheKey); err == nil && cached != nil {
		if s.enableDebugLogging {
			log.Printf("[SCAN] Cache hit for %q", canonicalName)
		}
		return cached, nil
	}

	results, err := s.client.Search(ctx, canonicalName)
	if err != nil {
		if errors.Is(err, domain.ErrMissingCredentials) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrSearchFailure, err)
	}

	result, err := s.engine.Reconcile(canonicalName, results)
	if err != nil {
		return nil, err
	}

	if err := s.setInCache(ctx, cacheKey, result); err != nil && s.enableDebugLogging {
		log.Printf("[SCAN] Cache store failed: %v", err)
	}

	return result, nil
}

// generateCacheKey creates a normalized cache key from the canonical name.
// Format: "scan:{normalized_name}"
func (s *ScanService) generateCacheKey(canonicalName string) string {
	normalized := strings.ToLower(canonicalName)
	normalized = nonAlphanumericRegex.ReplaceAllString(normalized, "")
	normalized = multipleSpacesRegex.ReplaceAllString(normalized, " ")
	return fmt.Sprintf("scan:%s", strings.TrimSpace(normalized))
}

// getFromCache retrieves a cached result. Cache backends store the JSON
// shape, so a round-trip through json restores the typed struct.
func (s *ScanService) getFromCache(ctx context.Context, key string) (*domain.ProductResult, error) {
	value, err := s.cache.Get(ctx, key)
	if err != nil {
		return nil, err
	}

	if result, ok := value.(*domain.ProductResult); ok {
		return result, nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return nil, domain.ErrCacheMiss
	}
	var result domain.ProductResult
	if err := json.Unmarshal(data, &result); err != nil || result.Name == "" {
		return nil, domain.ErrCacheMiss
	}
	return &result, nil
}

// setInCache stores a result in cache
func (s *ScanService) setInCache(ctx context.Context, key string, result *domain.ProductResult) error {
	return s.cache.Set(ctx, key, result, s.cacheTTL)
}
