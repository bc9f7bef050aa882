// Package chef contains the minimal chef identity model the engine needs.
// Account management lives in the surrounding system; the engine only
// resolves ownership.
package chef

import (
	"time"

	"github.com/google/uuid"
)

// Chef is the owner of prep plans and commitment sources
type Chef struct {
	id        uuid.UUID
	name      string
	email     string
	createdAt time.Time
}

// NewChef creates a chef record
func NewChef(name, email string) (*Chef, error) {
	if name == "" {
		return nil, ErrMissingName
	}
	return &Chef{
		id:        uuid.New(),
		name:      name,
		email:     email,
		createdAt: time.Now(),
	}, nil
}

// Rehydrate reconstructs a chef from persisted state
func Rehydrate(id uuid.UUID, name, email string, createdAt time.Time) *Chef {
	return &Chef{id: id, name: name, email: email, createdAt: createdAt}
}

// ID returns the chef's unique identifier
func (c *Chef) ID() uuid.UUID { return c.id }

// Name returns the chef's display name
func (c *Chef) Name() string { return c.name }

// Email returns the chef's email address
func (c *Chef) Email() string { return c.email }

// CreatedAt returns when the chef record was created
func (c *Chef) CreatedAt() time.Time { return c.createdAt }
