// Package leads captures sales contacts from the chat widget and forwards
// them to the CRM.
package leads

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/faroled/faro/internal/domain/lead"
)

// Submission is the raw lead form input.
type Submission struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Profession string `json:"profession"`
	City       string `json:"city"`
	SessionID  string `json:"session_id"`
}

// Service validates, stores and forwards leads.
type Service struct {
	repo      Repository
	forwarder Forwarder
	logger    *zap.Logger
	// forwardTimeout bounds the async CRM call, which outlives the request.
	forwardTimeout time.Duration
}

// New creates the lead service. forwarder can be nil when no CRM is
// configured.
func New(repo Repository, forwarder Forwarder, forwardTimeout time.Duration, logger *zap.Logger) *Service {
	return &Service{repo: repo, forwarder: forwarder, forwardTimeout: forwardTimeout, logger: logger}
}

// Capture validates a submission, stores it and forwards it to the CRM in
// the background. CRM failures are logged, never returned: the visitor's
// form must not fail because a downstream system is down.
func (s *Service) Capture(ctx context.Context, in Submission) (lead.Lead, error) {
	l, err := lead.New(uuid.NewString(), in.Name, in.Email, in.Phone, in.Profession, in.City, in.SessionID)
	if err != nil {
		return lead.Lead{}, err
	}

	if err := s.repo.Save(ctx, l); err != nil {
		return lead.Lead{}, fmt.Errorf("save lead: %w", err)
	}

	if s.forwarder != nil {
		go func() {
			fctx, cancel := context.WithTimeout(context.Background(), s.forwardTimeout)
			defer cancel()
			if err := s.forwarder.Forward(fctx, l); err != nil {
				s.logger.Warn("CRM forward failed", zap.String("lead_id", l.ID()), zap.Error(err))
			}
		}()
	}

	return l, nil
}
