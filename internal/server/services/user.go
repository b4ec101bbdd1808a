package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/mdd/internal/common"
	"github.com/dmitrijs2005/mdd/internal/dbx"
	"github.com/dmitrijs2005/mdd/internal/logging"
	"github.com/dmitrijs2005/mdd/internal/server/auth"
	"github.com/dmitrijs2005/mdd/internal/server/models"
	"github.com/dmitrijs2005/mdd/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/mdd/internal/server/repositories/users"
)

// dummyPassword is hashed once and verified against when a login names an
// unknown account, so both failure paths cost one hash verification.
const dummyPassword = "dummy-Password!"

type RegisterInput struct {
	UserName string
	Email    string
	Password string
}

type ProfileInput struct {
	UserName string
	Email    string
}

// ProfileUpdate carries the updated account and, when the identifier the
// caller logged in with changed, a token for the new identifier.
type ProfileUpdate struct {
	User  *models.User
	Token string
}

// UserService covers registration, credential checks, token issuance and
// the caller's own profile.
type UserService struct {
	store       dbx.Store
	repomanager repomanager.RepositoryManager
	hasher      PasswordHasher
	tokens      TokenIssuer
	logger      logging.Logger

	dummyOnce sync.Once
	dummyHash string
}

func NewUserService(store dbx.Store, m repomanager.RepositoryManager, hasher PasswordHasher, tokens TokenIssuer, logger logging.Logger) *UserService {
	return &UserService{
		store:       store,
		repomanager: m,
		hasher:      hasher,
		tokens:      tokens,
		logger:      logger.With("module", "user_service"),
	}
}

// Register validates in, checks that the username and email are free,
// hashes the password and stores the account with no subscriptions.
// Field problems are reported together as *common.ValidationError; taken
// identifiers as *common.ConflictError, including when a concurrent
// registration wins the race past the pre-check.
func (s *UserService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	v := &common.ValidationError{}
	check(v, append(accountRules(in.UserName, in.Email), passwordRules(in.Password))...)
	if err := v.Err(); err != nil {
		return nil, err
	}

	if err := auth.ValidatePassword(in.Password); err != nil {
		v.Add("password", err.Error())
		return nil, v
	}

	repo := s.repomanager.Users(s.store.Conn())
	if err := ensureFree(ctx, repo, 0, in.UserName, in.Email); err != nil {
		return nil, err
	}

	hash, err := s.hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u, err := repo.Create(ctx, &models.User{UserName: in.UserName, Email: in.Email, PasswordHash: hash})
	if err != nil {
		var ce *common.ConflictError
		if errors.As(err, &ce) {
			return nil, ce
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "account registered", "user_id", u.ID)

	u.PasswordHash = ""
	u.SubscribedThemeIDs = []int64{}
	return u, nil
}

// Authenticate checks identifier (email or username) and password and
// returns a principal whose subject is the identifier that matched.
// Failures are common.ErrUnknownIdentifier or common.ErrInvalidCredential,
// both of which match common.ErrAuthenticationFailed.
func (s *UserService) Authenticate(ctx context.Context, identifier, password string) (models.Principal, error) {
	u, err := lookupIdentifier(ctx, s.repomanager.Users(s.store.Conn()), identifier)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.burnVerify(password)
			return models.Principal{}, common.ErrUnknownIdentifier
		}
		return models.Principal{}, err
	}

	ok, err := s.hasher.Verify(password, u.PasswordHash)
	if err != nil {
		return models.Principal{}, fmt.Errorf("verify password: %w", err)
	}
	if !ok {
		return models.Principal{}, common.ErrInvalidCredential
	}

	return models.Principal{Subject: identifier}, nil
}

// Login authenticates and issues an access token. The precise failure
// reason is logged here; callers should only expose
// common.ErrAuthenticationFailed.
func (s *UserService) Login(ctx context.Context, identifier, password string) (string, error) {
	p, err := s.Authenticate(ctx, identifier, password)
	if err != nil {
		if errors.Is(err, common.ErrAuthenticationFailed) {
			s.logger.Warn(ctx, "login failed", "reason", err.Error())
		}
		return "", err
	}

	token, err := s.tokens.Issue(p)
	if err != nil {
		return "", fmt.Errorf("issue token: %w", err)
	}
	return token, nil
}

// Profile returns the caller's account with its subscriptions.
func (s *UserService) Profile(ctx context.Context, p models.Principal) (*models.User, error) {
	conn := s.store.Conn()
	u, err := resolvePrincipal(ctx, s.repomanager.Users(conn), p)
	if err != nil {
		return nil, err
	}
	return s.withSubscriptions(ctx, conn, u)
}

// UpdateProfile changes the caller's username and email.
func (s *UserService) UpdateProfile(ctx context.Context, p models.Principal, in ProfileInput) (*ProfileUpdate, error) {
	v := &common.ValidationError{}
	check(v, accountRules(in.UserName, in.Email)...)
	if err := v.Err(); err != nil {
		return nil, err
	}

	var (
		updated *models.User
		next    models.Principal
	)
	err := s.store.RunInTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.repomanager.Users(tx)

		current, err := resolvePrincipal(ctx, repo, p)
		if err != nil {
			return err
		}
		if err := ensureFree(ctx, repo, current.ID, in.UserName, in.Email); err != nil {
			return err
		}

		updated, err = repo.UpdateProfile(ctx, current.ID, in.UserName, in.Email)
		if err != nil {
			var ce *common.ConflictError
			if errors.As(err, &ce) {
				return ce
			}
			return fmt.Errorf("error updating user: %w", err)
		}

		updated, err = s.withSubscriptions(ctx, tx, updated)
		if err != nil {
			return err
		}

		next = nextPrincipal(p, current, updated)
		return nil
	})
	if err != nil {
		return nil, err
	}

	result := &ProfileUpdate{User: updated}
	if next.Subject != "" {
		result.Token, err = s.tokens.Issue(next)
		if err != nil {
			return nil, fmt.Errorf("issue token: %w", err)
		}
	}
	return result, nil
}

// nextPrincipal returns the principal for the caller after a profile
// change, or the zero Principal when the login identifier is unchanged.
func nextPrincipal(p models.Principal, before, after *models.User) models.Principal {
	switch p.Subject {
	case before.Email:
		if after.Email != before.Email {
			return models.Principal{Subject: after.Email}
		}
	case before.UserName:
		if after.UserName != before.UserName {
			return models.Principal{Subject: after.UserName}
		}
	}
	return models.Principal{}
}

// ensureFree is the advisory uniqueness pre-check; selfID is the account
// being edited, or 0. The unique constraints in storage remain
// authoritative.
func ensureFree(ctx context.Context, repo users.Repository, selfID int64, userName, email string) error {
	if u, err := repo.GetByUserName(ctx, userName); err == nil {
		if u.ID != selfID {
			return &common.ConflictError{Field: "username"}
		}
	} else if !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("check username: %w", err)
	}

	if u, err := repo.GetByEmail(ctx, email); err == nil {
		if u.ID != selfID {
			return &common.ConflictError{Field: "email"}
		}
	} else if !errors.Is(err, common.ErrorNotFound) {
		return fmt.Errorf("check email: %w", err)
	}
	return nil
}

func (s *UserService) withSubscriptions(ctx context.Context, db dbx.DBTX, u *models.User) (*models.User, error) {
	ids, err := s.repomanager.Subscriptions(db).ThemeIDs(ctx, u.ID)
	if err != nil {
		return nil, fmt.Errorf("load subscriptions: %w", err)
	}
	u.SubscribedThemeIDs = ids
	u.PasswordHash = ""
	return u, nil
}

func (s *UserService) burnVerify(password string) {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = s.hasher.Hash(dummyPassword)
	})
	if s.dummyHash != "" {
		_, _ = s.hasher.Verify(password, s.dummyHash)
	}
}
