// Package accounts declares the storage contract for user accounts and its
// PostgreSQL implementation.
package accounts

import (
	"context"

	"github.com/dmitrijs2005/usuarios/internal/server/models"
)

// Repository defines the account operations used by the lifecycle engine.
// Lookups that match nothing return common.ErrorNotFound; writes that would
// duplicate an email return common.ErrorConflict.
type Repository interface {
	// Create inserts a new account. ID, Email and the hashed Password must be set.
	Create(ctx context.Context, account *models.Account) error

	GetByID(ctx context.Context, id string) (*models.Account, error)
	GetByEmail(ctx context.Context, email string) (*models.Account, error)

	// GetByToken returns the account holding the pending token. An empty token
	// never matches.
	GetByToken(ctx context.Context, token string) (*models.Account, error)

	// SetToken stores a new pending token on the account with the given email,
	// replacing any previous one, and returns the updated account.
	SetToken(ctx context.Context, email string, token string) (*models.Account, error)

	// Confirm marks the account holding token as confirmed and clears the token
	// in a single statement, so a token can be consumed only once.
	Confirm(ctx context.Context, token string) (string, error)

	// ResetPassword stores passwordHash on the account holding token and clears
	// the token in a single statement.
	ResetPassword(ctx context.Context, token string, passwordHash string) (string, error)

	// Update applies the non-nil fields of changes to the account.
	Update(ctx context.Context, id string, changes models.AccountChanges) error

	// List returns every account ordered by creation time.
	List(ctx context.Context) ([]*models.Account, error)
}
