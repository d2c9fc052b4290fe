// Package crm forwards captured leads to the CRM webhook.
package crm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/faroled/faro/internal/domain/lead"
)

// Webhook posts leads as JSON to a CRM endpoint. A zero-value URL disables
// forwarding.
type Webhook struct {
	url    string
	client *http.Client
	logger *zap.Logger
}

// NewWebhook creates a CRM webhook client.
func NewWebhook(url string, timeout time.Duration, logger *zap.Logger) *Webhook {
	return &Webhook{
		url:    url,
		client: &http.Client{Timeout: timeout},
		logger: logger,
	}
}

type payload struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Email      string `json:"email"`
	Phone      string `json:"phone"`
	Profession string `json:"profession,omitempty"`
	City       string `json:"city,omitempty"`
	SessionID  string `json:"session_id,omitempty"`
}

// Forward sends a lead to the CRM. Callers treat failure as log-only: the
// lead is already stored locally.
func (w *Webhook) Forward(ctx context.Context, l lead.Lead) error {
	if w.url == "" {
		return nil
	}

	body, err := json.Marshal(payload{
		ID:         l.ID(),
		Name:       l.Name(),
		Email:      l.Email(),
		Phone:      l.Phone(),
		Profession: l.Profession(),
		City:       l.City(),
		SessionID:  l.SessionID(),
	})
	if err != nil {
		return fmt.Errorf("encode lead %s: %w", l.ID(), err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build CRM request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := w.client.Do(req)
	if err != nil {
		return fmt.Errorf("post lead %s: %w", l.ID(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("post lead %s: CRM responded %d", l.ID(), resp.StatusCode)
	}
	w.logger.Debug("lead forwarded to CRM", zap.String("lead_id", l.ID()))
	return nil
}
