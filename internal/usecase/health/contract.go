package health

import "context"

// CatalogChecker checks that the product catalog is loadable.
type CatalogChecker interface {
	Check(ctx context.Context) error
}

// GenerationChecker checks language-generation provider availability.
type GenerationChecker interface {
	HealthCheck(ctx context.Context) error
}
