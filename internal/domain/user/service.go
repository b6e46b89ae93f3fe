package user

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"
)

type TokenIssuer interface {
	GenerateToken(userID string, isAdmin bool) (string, error)
}

type Service struct {
	repo   *Repository
	tokens TokenIssuer
}

func NewService(repo *Repository, tokens TokenIssuer) *Service {
	return &Service{repo: repo, tokens: tokens}
}

func (s *Service) Register(ctx context.Context, req RegisterRequest) (*AuthResponse, error) {
	u, err := s.create(ctx, req.Name, req.Email, req.Password, req.Phone, false)
	if err != nil {
		return nil, err
	}
	return s.issue(u)
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	u, err := s.repo.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(req.Password)) != nil {
		return nil, ErrInvalidCredentials
	}
	return s.issue(u)
}

// EnsureAdmin creates an admin account, or promotes an existing account with
// the same email. The password is only set on creation.
func (s *Service) EnsureAdmin(ctx context.Context, name, email, password string) (*User, error) {
	existing, err := s.repo.GetByEmail(ctx, email)
	switch {
	case err == nil:
		if !existing.IsAdmin {
			existing.IsAdmin = true
			if err := s.repo.Update(ctx, existing); err != nil {
				return nil, err
			}
		}
		return existing, nil
	case errors.Is(err, ErrNotFound):
		return s.create(ctx, name, email, password, "", true)
	default:
		return nil, err
	}
}

func (s *Service) Me(ctx context.Context, userID string) (*User, error) {
	return s.repo.GetByID(ctx, userID)
}

func (s *Service) create(ctx context.Context, name, email, password, phone string, admin bool) (*User, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	u := &User{
		Name:         strings.TrimSpace(name),
		Email:        email,
		PasswordHash: string(hash),
		Phone:        strings.TrimSpace(phone),
		IsAdmin:      admin,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

func (s *Service) issue(u *User) (*AuthResponse, error) {
	token, err := s.tokens.GenerateToken(u.ID, u.IsAdmin)
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &AuthResponse{Token: token, User: u}, nil
}
