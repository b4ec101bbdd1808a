// Package services holds the server's business logic: registration and
// authentication, profiles, theme subscriptions, the article feed and
// comments. Services take the caller's models.Principal explicitly and
// return the error kinds defined in internal/common.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mdd/internal/common"
	"github.com/dmitrijs2005/mdd/internal/server/models"
	"github.com/dmitrijs2005/mdd/internal/server/repositories/users"
)

// PasswordHasher produces and checks salted one-way password hashes.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, encoded string) (bool, error)
}

// TokenIssuer signs an access token for a principal.
type TokenIssuer interface {
	Issue(p models.Principal) (string, error)
}

// lookupIdentifier resolves a login identifier, trying the email first and
// then the username. It returns common.ErrorNotFound when neither matches.
func lookupIdentifier(ctx context.Context, repo users.Repository, identifier string) (*models.User, error) {
	u, err := repo.GetByEmail(ctx, identifier)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("lookup by email: %w", err)
	}

	u, err = repo.GetByUserName(ctx, identifier)
	if err == nil {
		return u, nil
	}
	if !errors.Is(err, common.ErrorNotFound) {
		return nil, fmt.Errorf("lookup by username: %w", err)
	}
	return nil, common.ErrorNotFound
}

// resolvePrincipal returns the account behind p. A subject that no longer
// matches any account is reported as common.ErrorUnauthorized.
func resolvePrincipal(ctx context.Context, repo users.Repository, p models.Principal) (*models.User, error) {
	u, err := lookupIdentifier(ctx, repo, p.Subject)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, common.ErrorUnauthorized
		}
		return nil, err
	}
	return u, nil
}
