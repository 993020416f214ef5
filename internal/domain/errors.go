package domain

import "errors"

var (
	// ErrProviderUnavailable means an ephemeris backend is down or misconfigured.
	// The ephemeris client recovers from it by falling back to the stub provider.
	ErrProviderUnavailable = errors.New("ephemeris provider unavailable")

	// ErrProviderNotImplemented means the configured provider is a placeholder.
	// It is surfaced to the caller rather than replaced with synthetic data.
	ErrProviderNotImplemented = errors.New("ephemeris provider not implemented")

	// ErrBodyDataMissing means a reading refers to a body outside the catalogue
	ErrBodyDataMissing = errors.New("body data missing")

	// ErrValidation wraps malformed input detected before any computation
	ErrValidation = errors.New("validation failed")

	// ErrChartNotFound is returned by repositories for unknown chart IDs
	ErrChartNotFound = errors.New("chart not found")

	// ErrLocationNotFound is returned by repositories for unknown location IDs
	ErrLocationNotFound = errors.New("location not found")

	// ErrBodyNotFound is returned by repositories for unknown body slugs
	ErrBodyNotFound = errors.New("celestial body not found")

	// ErrJobNotFound is returned for unknown compute job IDs
	ErrJobNotFound = errors.New("compute job not found")

	// ErrQueueClosed is returned when enqueuing after shutdown has begun
	ErrQueueClosed = errors.New("compute queue closed")
)
