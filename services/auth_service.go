package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"

	"hostel-server/models"
	"hostel-server/repository"
	"hostel-server/sessions"
	"hostel-server/types"
)

const tokenIssuer = "hostel-server"

// AuthService logs workers in and out and validates session tokens
type AuthService struct {
	workers  repository.WorkerRepository
	sessions sessions.Store
	secret   []byte
	ttl      time.Duration
	now      func() time.Time
}

// NewAuthService creates a new auth service
func NewAuthService(workers repository.WorkerRepository, store sessions.Store, secret string, ttl time.Duration) *AuthService {
	return &AuthService{
		workers:  workers,
		sessions: store,
		secret:   []byte(secret),
		ttl:      ttl,
		now:      time.Now,
	}
}

// LoginResult is returned by a successful login
type LoginResult struct {
	Token   string            `json:"token"`
	Session *sessions.Session `json:"session"`
	Worker  *models.Worker    `json:"worker"`
}

// HashPassword hashes a password using bcrypt
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	return string(bytes), err
}

// checkPassword compares the submitted password with the stored hash.
// Seeded workers still on their derived password match it case-insensitively.
func checkPassword(w *models.Worker, submitted string) bool {
	if w.MustChangePassword {
		submitted = strings.ToLower(submitted)
	}
	return bcrypt.CompareHashAndPassword([]byte(w.PasswordHash), []byte(submitted)) == nil
}

// Login verifies the credentials and opens a session.
func (s *AuthService) Login(ctx context.Context, rut, password string) (*LoginResult, error) {
	rut = strings.ToUpper(strings.TrimSpace(rut))
	worker, err := s.workers.FindByRUT(ctx, rut)
	if errors.Is(err, repository.ErrNotFound) {
		log.Info().Str("rut", rut).Msg("🔐 Login attempt for unknown worker")
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !checkPassword(worker, password) {
		log.Info().Uint("worker_id", worker.ID).Msg("🔐 Login attempt with wrong password")
		return nil, ErrInvalidCredentials
	}

	now := s.now()
	sess := &sessions.Session{
		ID:         uuid.NewString(),
		WorkerID:   worker.ID,
		WorkerName: worker.DisplayName(),
		CreatedAt:  now,
		ExpiresAt:  now.Add(s.ttl),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	token, err := s.signToken(sess)
	if err != nil {
		return nil, err
	}

	log.Info().Uint("worker_id", worker.ID).Str("session_id", sess.ID).Msg("✅ Worker logged in")
	return &LoginResult{Token: token, Session: sess, Worker: worker}, nil
}

func (s *AuthService) signToken(sess *sessions.Session) (string, error) {
	claims := &types.Claims{
		WorkerID: sess.WorkerID,
		Name:     sess.WorkerName,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        sess.ID,
			Issuer:    tokenIssuer,
			Subject:   fmt.Sprint(sess.WorkerID),
			IssuedAt:  jwt.NewNumericDate(sess.CreatedAt),
			NotBefore: jwt.NewNumericDate(sess.CreatedAt),
			ExpiresAt: jwt.NewNumericDate(sess.ExpiresAt),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Authenticate validates a token and returns the live session behind it.
func (s *AuthService) Authenticate(ctx context.Context, tokenString string) (*sessions.Session, error) {
	token, err := jwt.ParseWithClaims(tokenString, &types.Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithTimeFunc(s.now))
	if err != nil {
		return nil, ErrSessionInvalid
	}
	claims, ok := token.Claims.(*types.Claims)
	if !ok || !token.Valid || claims.ID == "" {
		return nil, ErrSessionInvalid
	}

	sess, err := s.sessions.Get(ctx, claims.ID)
	if errors.Is(err, sessions.ErrNotFound) {
		return nil, ErrSessionInvalid
	}
	if err != nil {
		return nil, err
	}
	if sess.WorkerID != claims.WorkerID {
		return nil, ErrSessionInvalid
	}
	return sess, nil
}

// Logout ends the session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.sessions.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	log.Info().Str("session_id", sessionID).Msg("👋 Worker logged out")
	return nil
}

// ChangePassword replaces the worker's password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, workerID uint, current, next string) error {
	worker, err := s.workers.FindByID(ctx, workerID)
	if err != nil {
		return err
	}
	if !checkPassword(worker, current) {
		return FieldErrors{"current_password": "The current password is incorrect."}
	}
	hash, err := HashPassword(next)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	worker.PasswordHash = hash
	worker.MustChangePassword = false
	if err := s.workers.Save(ctx, worker); err != nil {
		return err
	}
	log.Info().Uint("worker_id", worker.ID).Msg("🔑 Password changed")
	return nil
}

// Worker returns the worker behind a session.
func (s *AuthService) Worker(ctx context.Context, workerID uint) (*models.Worker, error) {
	return s.workers.FindByID(ctx, workerID)
}
