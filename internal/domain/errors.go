package domain

import "errors"

var (
	// ErrMissingCredentials is returned when a required collaborator API key is absent
	ErrMissingCredentials = errors.New("required API credentials are missing")

	// ErrIdentificationFailure is returned when visual identification finds no usable match
	ErrIdentificationFailure = errors.New("could not identify a product in the image")

	// ErrSearchFailure is returned when the shopping-search collaborator fails
	ErrSearchFailure = errors.New("shopping search request failed")

	// ErrNoQualifyingCandidate is returned when search succeeded but no record
	// survived the trust veto and price requirements
	ErrNoQualifyingCandidate = errors.New("no qualifying candidate among search results")

	// ErrUploadFailure is returned when the image host rejects the upload
	ErrUploadFailure = errors.New("image upload failed")

	// ErrInvalidRequest is returned when request parameters are invalid
	ErrInvalidRequest = errors.New("invalid request parameters")

	// ErrCacheMiss is returned when data is not found in cache
	ErrCacheMiss = errors.New("cache miss")
)
