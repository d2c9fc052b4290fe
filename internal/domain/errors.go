// Package domain holds the sentinel errors shared across use cases and
// transports.
package domain

import "errors"

var (
	// ErrEmptyMessage signals a chat request with a blank message.
	ErrEmptyMessage = errors.New("empty message")
	// ErrCatalogUnavailable signals that the product catalog could not be loaded.
	ErrCatalogUnavailable = errors.New("catalog unavailable")
	// ErrSessionNotFound signals a missing session record.
	ErrSessionNotFound = errors.New("session not found")
	// ErrGenerationFailed signals a language-generation failure.
	ErrGenerationFailed = errors.New("generation failed")
	// ErrNotFound signals a missing resource.
	ErrNotFound = errors.New("not found")
	// ErrInvalidLead signals a lead submission failing validation.
	ErrInvalidLead = errors.New("invalid lead")
)
