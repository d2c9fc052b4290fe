// Package lead models a sales contact captured by the chat widget.
package lead

import (
	"fmt"
	"strings"

	"github.com/faroled/faro/internal/domain"
)

// Lead is a validated sales contact (immutable value object).
type Lead struct {
	id         string
	name       string
	email      string
	phone      string
	profession string
	city       string
	sessionID  string
}

// New validates and creates a Lead. Name, email and phone are required;
// profession, city and session id are optional context.
func New(id, name, email, phone, profession, city, sessionID string) (Lead, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	phone = strings.TrimSpace(phone)
	if name == "" {
		return Lead{}, fmt.Errorf("%w: name is required", domain.ErrInvalidLead)
	}
	if email == "" || !strings.Contains(email, "@") {
		return Lead{}, fmt.Errorf("%w: valid email is required", domain.ErrInvalidLead)
	}
	if phone == "" {
		return Lead{}, fmt.Errorf("%w: phone is required", domain.ErrInvalidLead)
	}
	return Lead{
		id:         id,
		name:       name,
		email:      email,
		phone:      phone,
		profession: strings.TrimSpace(profession),
		city:       strings.TrimSpace(city),
		sessionID:  strings.TrimSpace(sessionID),
	}, nil
}

// ID returns the lead identifier.
func (l Lead) ID() string { return l.id }

// Name returns the contact name.
func (l Lead) Name() string { return l.name }

// Email returns the contact email.
func (l Lead) Email() string { return l.email }

// Phone returns the contact phone.
func (l Lead) Phone() string { return l.phone }

// Profession returns the contact profession.
func (l Lead) Profession() string { return l.profession }

// City returns the contact city.
func (l Lead) City() string { return l.city }

// SessionID returns the chat session that produced the lead.
func (l Lead) SessionID() string { return l.sessionID }
