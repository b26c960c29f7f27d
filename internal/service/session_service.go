package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stayview/bookinsightsapi/internal/auth"
	"github.com/stayview/bookinsightsapi/internal/models"
	"github.com/stayview/bookinsightsapi/internal/repository"
	"golang.org/x/crypto/bcrypt"
)

var (
	// ErrUserNotFound is returned when no user row matches the login name
	ErrUserNotFound = repository.ErrUserNotFound
	// ErrInvalidPassword is returned when the supplied password does not
	// match the stored credential
	ErrInvalidPassword = errors.New("incorrect password")
	// ErrTokenRevoked is returned for tokens that verify cryptographically
	// but are no longer in the issued set
	ErrTokenRevoked = errors.New("token not in issued set")
)

// UserFinder looks up a user by exact name
type UserFinder interface {
	GetUserByName(name string) (*models.UserModel, error)
}

// SessionService authenticates users and issues, validates and revokes
// bearer tokens. A token is valid only while unexpired, correctly signed
// and present in the token store.
type SessionService struct {
	users    UserFinder
	tokens   TokenStore
	secret   string
	tokenTTL time.Duration
}

// NewSessionService creates a new session service
func NewSessionService(users UserFinder, tokens TokenStore, secret string, tokenTTL time.Duration) *SessionService {
	return &SessionService{
		users:    users,
		tokens:   tokens,
		secret:   secret,
		tokenTTL: tokenTTL,
	}
}

// Login verifies the claimed credentials and issues a new bearer token.
// Returns ErrUserNotFound or ErrInvalidPassword on bad credentials; any
// other error is a storage failure the handler reports as a 500.
func (s *SessionService) Login(ctx context.Context, username, password string) (*models.UserModel, string, error) {
	user, err := s.users.GetUserByName(username)
	if err != nil {
		return nil, "", err
	}

	if err := checkPassword(user.Password, password); err != nil {
		return nil, "", err
	}

	token, tokenID, err := auth.NewAccessToken(s.secret, s.tokenTTL, user.Name, user.ID)
	if err != nil {
		return nil, "", fmt.Errorf("failed to sign token: %v", err)
	}
	if err := s.tokens.Add(ctx, tokenID, time.Now().UTC().Add(s.tokenTTL)); err != nil {
		return nil, "", fmt.Errorf("failed to record issued token: %v", err)
	}

	return user, token, nil
}

// ValidateToken checks signature, expiry and issued-set membership and
// returns the embedded claims
func (s *SessionService) ValidateToken(ctx context.Context, token string) (*auth.Claims, error) {
	claims, err := auth.ParseToken(s.secret, token)
	if err != nil {
		return nil, err
	}

	issued, err := s.tokens.Contains(ctx, claims.ID)
	if err != nil {
		return nil, err
	}
	if !issued {
		return nil, ErrTokenRevoked
	}

	return claims, nil
}

// Logout removes a single token from the issued set. The token must still
// verify; revoking an already-invalid token is not an error.
func (s *SessionService) Logout(ctx context.Context, token string) error {
	claims, err := auth.ParseToken(s.secret, token)
	if err != nil {
		return nil
	}
	return s.tokens.Remove(ctx, claims.ID)
}

// checkPassword compares a stored credential against the supplied password.
// Stored bcrypt hashes are compared with bcrypt; anything else falls back to
// constant-time byte equality, which keeps legacy plaintext rows working.
func checkPassword(stored, supplied string) error {
	if isBcryptHash(stored) {
		if err := bcrypt.CompareHashAndPassword([]byte(stored), []byte(supplied)); err != nil {
			return ErrInvalidPassword
		}
		return nil
	}
	if subtle.ConstantTimeCompare([]byte(stored), []byte(supplied)) != 1 {
		return ErrInvalidPassword
	}
	return nil
}

func isBcryptHash(value string) bool {
	return strings.HasPrefix(value, "$2a$") ||
		strings.HasPrefix(value, "$2b$") ||
		strings.HasPrefix(value, "$2y$")
}
