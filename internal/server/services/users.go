package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/mangasync/internal/common"
	"github.com/dmitrijs2005/mangasync/internal/cryptox"
	"github.com/dmitrijs2005/mangasync/internal/logging"
	"github.com/dmitrijs2005/mangasync/internal/server/auth"
	"github.com/dmitrijs2005/mangasync/internal/server/models"
	"github.com/dmitrijs2005/mangasync/internal/server/repositories/repomanager"
)

const (
	minPasswordLen = 2
	maxPasswordLen = 24
	minEmailLen    = 5
	maxEmailLen    = 120
)

type UserService struct {
	db               *sql.DB
	repomanager      repomanager.RepositoryManager
	tokens           *auth.TokenService
	allowNewRegister bool
	log              logging.Logger
}

func NewUserService(db *sql.DB, m repomanager.RepositoryManager, tokens *auth.TokenService, allowNewRegister bool, l logging.Logger) *UserService {
	return &UserService{
		db:               db,
		repomanager:      m,
		tokens:           tokens,
		allowNewRegister: allowNewRegister,
		log:              l.With("module", "users"),
	}
}

func validateCredentials(email, password string) error {
	if n := utf8.RuneCountInString(password); n < minPasswordLen || n > maxPasswordLen {
		return fmt.Errorf("%w: Password should be from %d to %d characters long",
			common.ErrorValidation, minPasswordLen, maxPasswordLen)
	}
	if n := utf8.RuneCountInString(email); n < minEmailLen || n > maxEmailLen || !strings.Contains(email, "@") {
		return fmt.Errorf("%w: Invalid email address", common.ErrorValidation)
	}
	return nil
}

// Authenticate logs the user in, registering unknown emails when new
// registrations are allowed, and returns a bearer token. A password stored
// in the legacy format is rewritten in the current one on success.
func (s *UserService) Authenticate(ctx context.Context, email, password string) (string, error) {
	if err := validateCredentials(email, password); err != nil {
		return "", err
	}

	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if errors.Is(err, common.ErrorNotFound) {
		if !s.allowNewRegister {
			return "", common.ErrRegistrationDisabled
		}
		user, err = repo.Create(ctx, &models.User{Email: email, PasswordHash: cryptox.HashPassword(password)})
		if err == nil {
			s.log.Info(ctx, "user registered", "user_id", user.ID)
			return s.issue(user.ID)
		}
		if !errors.Is(err, common.ErrorAlreadyExists) {
			return "", fmt.Errorf("error creating user: %w", err)
		}
		// Registered by a concurrent request; log in against that account.
		user, err = repo.GetByEmail(ctx, email)
	}
	if err != nil {
		return "", fmt.Errorf("error loading user: %w", err)
	}

	switch cryptox.VerifyPassword(password, user.PasswordHash) {
	case cryptox.PasswordMismatch:
		return "", common.ErrWrongPassword
	case cryptox.PasswordMatchLegacy:
		if err := repo.UpdatePassword(ctx, user.ID, cryptox.HashPassword(password)); err != nil {
			return "", fmt.Errorf("error migrating password: %w", err)
		}
		s.log.Info(ctx, "legacy password hash migrated", "user_id", user.ID)
	}

	return s.issue(user.ID)
}

func (s *UserService) issue(userID int64) (string, error) {
	token, err := s.tokens.Issue(userID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", common.ErrorInternal, err)
	}
	return token, nil
}

// UserByToken validates token and loads its user. A valid token whose user
// no longer exists is reported as common.ErrorInternal.
func (s *UserService) UserByToken(ctx context.Context, token string) (*models.User, error) {
	userID, err := s.tokens.Validate(token)
	if err != nil {
		return nil, err
	}

	user, err := s.repomanager.Users(s.db).GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			s.log.Error(ctx, "token refers to a missing user", "user_id", userID)
			return nil, common.ErrorInternal
		}
		return nil, fmt.Errorf("error loading user: %w", err)
	}
	return user, nil
}
