// ============================================================================
// internal/auth/service.go
// Authentication: login, logout, token validation, password change
// ============================================================================

package auth

import (
	"context"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"closercollege/internal/shared"
	"closercollege/internal/storage"
)

// Service authenticates platform accounts and issues JWTs backed by a
// server-side session record, so tokens can be revoked before expiry.
type Service struct {
	users    storage.UserStore
	sessions storage.SessionStore
	config   *shared.Config
	log      *zap.SugaredLogger
}

// CustomClaims for JWT
type CustomClaims struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
	jwt.RegisteredClaims
}

// NewService creates an auth Service.
func NewService(users storage.UserStore, sessions storage.SessionStore, config *shared.Config, log *zap.SugaredLogger) *Service {
	return &Service{users: users, sessions: sessions, config: config, log: log}
}

// Login authenticates by email and password and returns a signed token.
func (s *Service) Login(ctx context.Context, email, password string) (string, *shared.User, error) {
	if email == "" || password == "" {
		return "", nil, shared.NewInvalidState("email and password are required")
	}

	user, err := s.users.FindUserByEmail(ctx, email)
	if shared.IsNotFound(err) {
		return "", nil, shared.ErrUnauthorized
	}
	if err != nil {
		return "", nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return "", nil, shared.ErrUnauthorized
	}
	if !user.IsActive {
		return "", nil, shared.NewInvalidState("account is inactive")
	}

	tokenString, expiresAt, err := s.generateToken(user.ID, user.Role)
	if err != nil {
		return "", nil, fmt.Errorf("generate token: %w", err)
	}

	session := &shared.Session{
		ID:        shared.GenerateID("sess"),
		UserID:    user.ID,
		Token:     tokenString,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	if err := s.sessions.InsertSession(ctx, session); err != nil {
		return "", nil, err
	}

	s.log.Infow("user logged in", "user_id", user.ID, "role", user.Role)
	return tokenString, user, nil
}

// Logout revokes the token's session. Logging out an already-revoked or
// unknown token succeeds; logout is idempotent from the client's view.
func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return shared.NewInvalidState("token is required")
	}
	_, err := s.sessions.DeleteSessionsByToken(ctx, token)
	return err
}

// Validate verifies the token signature, checks the session has not been
// revoked, and returns the account.
func (s *Service) Validate(ctx context.Context, tokenString string) (*shared.User, error) {
	if tokenString == "" {
		return nil, shared.ErrUnauthorized
	}

	token, claims, err := s.parseToken(tokenString)
	if err != nil || !token.Valid {
		return nil, shared.ErrUnauthorized
	}

	// Revocation check against the session store.
	count, err := s.sessions.CountSessionsByToken(ctx, tokenString)
	if err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, shared.ErrUnauthorized
	}

	user, err := s.users.GetUser(ctx, claims.UserID)
	if shared.IsNotFound(err) {
		return nil, shared.ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if !user.IsActive {
		return nil, shared.ErrUnauthorized
	}
	return user, nil
}

// ChangePassword verifies the old password, stores a new hash and revokes
// every existing session for the account.
func (s *Service) ChangePassword(ctx context.Context, userID, oldPassword, newPassword string) error {
	if userID == "" || oldPassword == "" || newPassword == "" {
		return shared.NewInvalidState("all fields are required")
	}

	user, err := s.users.GetUser(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(oldPassword)); err != nil {
		return shared.ErrUnauthorized
	}

	newHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), s.config.Security.BCryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	user.PasswordHash = string(newHash)
	user.UpdatedAt = time.Now()
	if err := s.users.UpsertUser(ctx, user); err != nil {
		return err
	}

	// Force logout everywhere.
	if err := s.sessions.DeleteSessionsByUser(ctx, userID); err != nil {
		s.log.Warnw("session invalidation after password change failed",
			"user_id", userID, "error", err)
	}
	return nil
}

// ============================================================================
// Internal Helpers
// ============================================================================

// generateToken creates a signed JWT.
func (s *Service) generateToken(userID, role string) (string, time.Time, error) {
	expirationTime := time.Now().Add(time.Duration(s.config.Security.JWTExpirationHours) * time.Hour)

	claims := CustomClaims{
		UserID: userID,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			// Unique ID (jti) keeps tokens distinct even when issued in the
			// same second.
			ID:        shared.GenerateID("jti"),
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "closer-college-platform",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(s.config.Security.JWTSecret))

	return tokenString, expirationTime, err
}

// parseToken validates the JWT signature and extracts claims.
func (s *Service) parseToken(tokenString string) (*jwt.Token, *CustomClaims, error) {
	claims := &CustomClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.config.Security.JWTSecret), nil
	})

	return token, claims, err
}
