package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/argon2"

	"github.com/quickcollab/quickcollab/internal/domain"
)

// Sentinel errors for the auth package.
var (
	ErrInvalidCredentials = errors.New("auth: invalid credentials")
	ErrUserAlreadyExists  = errors.New("auth: user already exists")
)

// argon2id parameters following OWASP recommendations.
const (
	argonTime    = 1
	argonMemory  = 64 * 1024 // 64 MiB
	argonThreads = 4
	argonKeyLen  = 32
	argonSaltLen = 16
)

// Service provides registration and credential validation. Token issuance is
// the only capability the rest of the system consumes; everything else treats
// the principal as opaque.
type Service struct {
	userRepo  domain.UserRepository
	jwtSecret string
	tokenTTL  time.Duration
}

func NewService(userRepo domain.UserRepository, jwtSecret string, tokenTTL time.Duration) *Service {
	return &Service{
		userRepo:  userRepo,
		jwtSecret: jwtSecret,
		tokenTTL:  tokenTTL,
	}
}

// Register creates a new user with email/password. The password is hashed
// with argon2id before storage.
func (s *Service) Register(ctx context.Context, email, password, name string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" {
		return nil, domain.Invalidf("email", "must not be empty")
	}
	if password == "" {
		return nil, domain.Invalidf("password", "must not be empty")
	}

	existing, err := s.userRepo.GetByEmail(ctx, email)
	if err == nil && existing != nil {
		return nil, fmt.Errorf("auth.Register: %w", ErrUserAlreadyExists)
	}

	hash, err := hashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("auth.Register: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           uuid.New(),
		Email:        email,
		Name:         name,
		PasswordHash: hash,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("auth.Register: %w", err)
	}

	return user, nil
}

// Login validates email/password and returns the user with a signed access
// token.
func (s *Service) Login(ctx context.Context, email, password string) (*domain.User, string, error) {
	email = strings.TrimSpace(strings.ToLower(email))

	user, err := s.userRepo.GetByEmail(ctx, email)
	if err != nil {
		return nil, "", fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	if !verifyPassword(password, user.PasswordHash) {
		return nil, "", fmt.Errorf("auth.Login: %w", ErrInvalidCredentials)
	}

	token, err := IssueToken(s.jwtSecret, user.ID, s.tokenTTL)
	if err != nil {
		return nil, "", fmt.Errorf("auth.Login: %w", err)
	}

	return user, token, nil
}

// Token issues a fresh access token for an already-verified user.
func (s *Service) Token(userID uuid.UUID) (string, error) {
	token, err := IssueToken(s.jwtSecret, userID, s.tokenTTL)
	if err != nil {
		return "", fmt.Errorf("auth.Token: %w", err)
	}
	return token, nil
}

// hashPassword generates an argon2id hash with a random salt.
// Format: hex(salt) + "$" + hex(hash)
func hashPassword(password string) (string, error) {
	salt := make([]byte, argonSaltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("generating salt: %w", err)
	}

	hash := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	return hex.EncodeToString(salt) + "$" + hex.EncodeToString(hash), nil
}

// verifyPassword checks a password against an argon2id hash.
func verifyPassword(password, encoded string) bool {
	saltHex, hashHex, ok := strings.Cut(encoded, "$")
	if !ok || saltHex == "" || hashHex == "" {
		return false
	}

	salt, err := hex.DecodeString(saltHex)
	if err != nil {
		return false
	}

	expectedHash, err := hex.DecodeString(hashHex)
	if err != nil {
		return false
	}

	computed := argon2.IDKey([]byte(password), salt, argonTime, argonMemory, argonThreads, argonKeyLen)

	// Constant-time comparison to prevent timing attacks.
	if len(computed) != len(expectedHash) {
		return false
	}

	var diff byte
	for i := range computed {
		diff |= computed[i] ^ expectedHash[i]
	}

	return diff == 0
}
