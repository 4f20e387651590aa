// Package accounts orchestrates signup, login, and token refresh.
package accounts

import (
	"context"
	"net/mail"
	"strings"

	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/app/domain/user"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/app/storage"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/errors"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/logging"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/password"
	"github.com/Maddhhuri-kothamasu/Stock-Trade/internal/token"
)

// Unknown email and wrong password must be indistinguishable to callers.
const invalidCredentialsMsg = "invalid email or password"

const minPasswordLength = 6

// TokenPair is what credential endpoints hand back to the client.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// Service implements account lifecycle and token issuance.
type Service struct {
	store  storage.UserStore
	codec  *token.Codec
	hasher *password.Hasher
	log    *logging.Logger
}

// New constructs the account service.
func New(store storage.UserStore, codec *token.Codec, hasher *password.Hasher, log *logging.Logger) *Service {
	if log == nil {
		log = logging.NewDefault("accounts")
	}
	return &Service{store: store, codec: codec, hasher: hasher, log: log}
}

// Signup creates an account and issues its first token pair. Validation
// happens before any store write; a duplicate email fails atomically with
// Conflict and leaves nothing behind.
func (s *Service) Signup(ctx context.Context, email, plaintext string) (user.User, TokenPair, error) {
	email = strings.TrimSpace(email)
	if err := validateCredentials(email, plaintext); err != nil {
		return user.User{}, TokenPair{}, err
	}

	if _, err := s.store.GetUserByEmail(ctx, email); err == nil {
		return user.User{}, TokenPair{}, errors.Conflict("account already exists")
	} else if !errors.IsCode(err, errors.CodeNotFound) {
		return user.User{}, TokenPair{}, err
	}

	hash, err := s.hasher.Hash(plaintext)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}

	created, err := s.store.CreateUser(ctx, user.User{Email: email, PasswordHash: hash})
	if err != nil {
		return user.User{}, TokenPair{}, err
	}

	pair, err := s.issuePair(created)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}

	s.log.WithContext(ctx).WithField("user_id", created.ID).Info("account created")
	return created, pair, nil
}

// Login verifies credentials and issues a fresh token pair. The failure
// message never distinguishes an unknown email from a wrong password.
func (s *Service) Login(ctx context.Context, email, plaintext string) (user.User, TokenPair, error) {
	email = strings.TrimSpace(email)
	if err := validateCredentials(email, plaintext); err != nil {
		return user.User{}, TokenPair{}, err
	}

	u, err := s.store.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.IsCode(err, errors.CodeNotFound) {
			return user.User{}, TokenPair{}, errors.Unauthorized(invalidCredentialsMsg)
		}
		return user.User{}, TokenPair{}, err
	}

	if !s.hasher.Compare(plaintext, u.PasswordHash) {
		return user.User{}, TokenPair{}, errors.Unauthorized(invalidCredentialsMsg)
	}

	pair, err := s.issuePair(u)
	if err != nil {
		return user.User{}, TokenPair{}, err
	}

	s.log.WithContext(ctx).WithField("user_id", u.ID).Info("login succeeded")
	return u, pair, nil
}

// Refresh mints a new access token from a refresh token. The refresh token
// itself is not rotated; it stays valid until natural expiry.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (string, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return "", errors.Unauthorized("refresh token required")
	}

	claims, err := s.codec.VerifyRefresh(refreshToken)
	if err != nil {
		return "", err
	}

	// The account may have disappeared since the token was issued.
	u, err := s.store.GetUser(ctx, claims.UserID)
	if err != nil {
		if errors.IsCode(err, errors.CodeNotFound) {
			return "", errors.Unauthorized("user not found")
		}
		return "", err
	}

	access, err := s.codec.IssueAccessToken(u.ID, u.Email)
	if err != nil {
		return "", err
	}

	s.log.WithContext(ctx).WithField("user_id", u.ID).Debug("access token refreshed")
	return access, nil
}

func (s *Service) issuePair(u user.User) (TokenPair, error) {
	access, err := s.codec.IssueAccessToken(u.ID, u.Email)
	if err != nil {
		return TokenPair{}, err
	}
	refresh, err := s.codec.IssueRefreshToken(u.ID)
	if err != nil {
		return TokenPair{}, err
	}
	return TokenPair{AccessToken: access, RefreshToken: refresh}, nil
}

func validateCredentials(email, plaintext string) error {
	if email == "" {
		return errors.Validation("email is required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return errors.Validation("email is invalid")
	}
	if len(plaintext) < minPasswordLength {
		return errors.Validation("password must be at least 6 characters")
	}
	return nil
}
