package leads

import (
	"context"

	"github.com/faroled/faro/internal/domain/lead"
)

// Repository stores captured leads.
type Repository interface {
	Save(ctx context.Context, l lead.Lead) error
}

// Forwarder sends a lead to the CRM.
type Forwarder interface {
	Forward(ctx context.Context, l lead.Lead) error
}
