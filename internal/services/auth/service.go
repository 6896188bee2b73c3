// Package auth issues, verifies, and revokes access credentials backed by
// the document database and the cache.
package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/crypto/bcrypt"

	"github.com/vahan-ai/chat-gateway/internal/core/cache"
	"github.com/vahan-ai/chat-gateway/internal/core/docdb"
	"github.com/vahan-ai/chat-gateway/internal/domain/errors"
	"github.com/vahan-ai/chat-gateway/internal/domain/models"
)

// tokenKeyPrefix namespaces live credentials in the cache. Exactly one live
// credential exists per subject at any time.
const tokenKeyPrefix = "token:"

// Credentials is the result of a successful login.
type Credentials struct {
	AccessToken string
	TokenType   string
	SubjectID   string
}

// Service authenticates users and manages their live credentials.
type Service struct {
	users    docdb.UsersCollection
	cache    cache.Cache
	secret   []byte
	tokenTTL time.Duration
	logger   zerolog.Logger
}

// NewService creates an auth service. The signing secret is mandatory; a
// server without one must not start.
func NewService(users docdb.UsersCollection, c cache.Cache, secret string, tokenTTL time.Duration, logger zerolog.Logger) (*Service, error) {
	if secret == "" {
		return nil, errors.NewConfigError("JWT signing secret is not configured")
	}
	if tokenTTL <= 0 {
		tokenTTL = 24 * time.Hour
	}
	return &Service{
		users:    users,
		cache:    c,
		secret:   []byte(secret),
		tokenTTL: tokenTTL,
		logger:   logger.With().Str("service", "auth").Logger(),
	}, nil
}

// Signup registers a new user with a bcrypt-hashed password.
func (s *Service) Signup(ctx context.Context, email, password string) (*models.User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.NewInternalError("failed to hash password", err)
	}

	user := models.NewUser(email, string(hash))
	if err := s.users.Insert(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user registered")
	return user, nil
}

// Login verifies the password, signs a fresh credential, and stores it as the
// subject's single live credential. Any previously issued credential stops
// verifying the moment the new one is stored.
func (s *Service) Login(ctx context.Context, email, password string) (*Credentials, error) {
	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, errors.NewInternalError("failed to look up user", err)
	}
	if user == nil {
		return nil, errors.ErrUnauthorized
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, errors.ErrUnauthorized
	}

	// The jti makes every issued credential distinct even within the same
	// second, so a re-login always invalidates the previous credential.
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": user.ID,
		"iat":     now.Unix(),
		"exp":     now.Add(s.tokenTTL).Unix(),
		"jti":     uuid.NewString(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, errors.NewInternalError("failed to sign token", err)
	}

	if err := s.cache.Set(ctx, tokenKeyPrefix+user.ID, []byte(token), s.tokenTTL); err != nil {
		return nil, errors.NewInternalError("failed to store credential", err)
	}

	s.logger.Info().Str("user_id", user.ID).Msg("user logged in")
	return &Credentials{
		AccessToken: token,
		TokenType:   "bearer",
		SubjectID:   user.ID,
	}, nil
}

// Authorize verifies a presented credential and returns the subject it was
// issued to. A credential verifies only if its signature checks out, it is
// within its validity window, and it byte-matches the subject's stored live
// credential. All failures collapse to ErrUnauthorized; callers learn nothing
// about why a credential was rejected.
func (s *Service) Authorize(ctx context.Context, token string) (string, error) {
	if token == "" {
		return "", errors.ErrUnauthorized
	}

	parser := jwt.NewParser(
		jwt.WithValidMethods([]string{"HS256"}),
		jwt.WithoutClaimsValidation(),
	)
	claims := jwt.MapClaims{}
	if _, err := parser.ParseWithClaims(token, claims, func(t *jwt.Token) (interface{}, error) {
		return s.secret, nil
	}); err != nil {
		return "", errors.ErrUnauthorized
	}

	subject, _ := claims["user_id"].(string)
	now := time.Now()

	exp, ok := numericClaim(claims, "exp")
	if !ok {
		return "", errors.ErrUnauthorized
	}
	if now.Unix() >= exp {
		// The signature is valid, so the subject claim is trustworthy even
		// though the credential itself is dead. Reap the stored copy so it
		// does not linger until its cache TTL fires.
		if subject != "" {
			if _, err := s.cache.Delete(ctx, tokenKeyPrefix+subject); err != nil {
				s.logger.Warn().Err(err).Str("user_id", subject).Msg("failed to reap expired credential")
			}
		}
		return "", errors.ErrUnauthorized
	}

	iat, ok := numericClaim(claims, "iat")
	if !ok || iat > now.Unix() {
		return "", errors.ErrUnauthorized
	}
	if subject == "" {
		return "", errors.ErrUnauthorized
	}

	stored, err := s.cache.Get(ctx, tokenKeyPrefix+subject)
	if err != nil {
		s.logger.Error().Err(err).Msg("credential lookup failed")
		return "", errors.ErrUnauthorized
	}
	if stored == nil || string(stored) != token {
		return "", errors.ErrUnauthorized
	}

	return subject, nil
}

// Logout revokes the subject's live credential. Revoking a subject with no
// live credential is not an error.
func (s *Service) Logout(ctx context.Context, subjectID string) error {
	if _, err := s.cache.Delete(ctx, tokenKeyPrefix+subjectID); err != nil {
		return errors.NewInternalError(fmt.Sprintf("failed to revoke credential for %s", subjectID), err)
	}
	s.logger.Info().Str("user_id", subjectID).Msg("user logged out")
	return nil
}

// numericClaim reads a numeric claim, tolerating the float64 and json.Number
// representations JSON decoding produces.
func numericClaim(claims jwt.MapClaims, key string) (int64, bool) {
	switch v := claims[key].(type) {
	case float64:
		return int64(v), true
	case int64:
		return v, true
	case json.Number:
		n, err := v.Int64()
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}
