package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/rantbox/internal/dto"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/models"
	"github.com/ahmetcoskunkizilkaya/rantbox/internal/store"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakCredentials    = errors.New("email required and password must be at least 8 characters")
	ErrEmailReserved      = errors.New("email cannot be registered here")
)

// AuthService is the built-in identity provider. It issues the same HS256
// tokens the account and post routes verify.
type AuthService struct {
	credentials store.CredentialStore
	secret      []byte
	expiry      time.Duration
	reserved    func(email string) bool
	now         func() time.Time
}

func NewAuthService(credentials store.CredentialStore, secret string, expiry time.Duration) *AuthService {
	return &AuthService{
		credentials: credentials,
		secret:      []byte(secret),
		expiry:      expiry,
		now:         time.Now,
	}
}

// WithReservedEmails blocks registration of addresses for which reserved
// returns true. Email ownership is never verified here, so addresses that
// carry privileges (ADMIN_EMAILS) must come from a trusted provider.
func (s *AuthService) WithReservedEmails(reserved func(email string) bool) *AuthService {
	s.reserved = reserved
	return s
}

func (s *AuthService) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := normalizeEmail(req.Email)
	if len(email) == 0 || len(req.Password) < 8 {
		return nil, ErrWeakCredentials
	}
	if s.reserved != nil && s.reserved(email) {
		return nil, ErrEmailReserved
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	displayName := strings.TrimSpace(req.DisplayName)
	if displayName == "" {
		displayName = strings.Split(email, "@")[0]
	}

	cred := &models.Credential{
		Email:        email,
		UID:          uuid.New().String(),
		PasswordHash: string(hash),
		DisplayName:  displayName,
		CreatedAt:    s.now(),
	}
	if err := s.credentials.CreateCredential(ctx, cred); err != nil {
		if errors.Is(err, store.ErrAlreadyExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create credential: %w", err)
	}

	return s.authResponse(cred)
}

func (s *AuthService) Login(ctx context.Context, req *dto.LoginRequest) (*dto.AuthResponse, error) {
	cred, err := s.credentials.GetCredential(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(cred.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.authResponse(cred)
}

// IssueToken signs an access token for id.
func (s *AuthService) IssueToken(id Identity) (string, error) {
	now := s.now()
	claims := jwt.MapClaims{
		"sub":   id.UID,
		"email": id.Email,
		"name":  id.DisplayName,
		"iat":   now.Unix(),
		"exp":   now.Add(s.expiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secret)
}

func (s *AuthService) authResponse(cred *models.Credential) (*dto.AuthResponse, error) {
	id := Identity{UID: cred.UID, Email: cred.Email, DisplayName: cred.DisplayName}
	accessToken, err := s.IssueToken(id)
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return &dto.AuthResponse{
		AccessToken: accessToken,
		User: dto.UserResponse{
			UID:         id.UID,
			Email:       id.Email,
			DisplayName: id.DisplayName,
		},
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
