package usecase

import (
	"context"
	"errors"
	"strings"

	domainErrors "github.com/paperdesk/papermart/internal/domain/errors"
	"github.com/paperdesk/papermart/internal/domain/model"
	"github.com/paperdesk/papermart/internal/domain/repository"
	pkgAuth "github.com/paperdesk/papermart/internal/pkg/auth"
)

// AuthUseCase handles customer lifecycle and token management.
type AuthUseCase struct {
	customers repository.CustomerRepository
	hasher    pkgAuth.PasswordHasher
	tokens    pkgAuth.Strategy
}

// NewAuthUseCase constructs AuthUseCase.
func NewAuthUseCase(customers repository.CustomerRepository, hasher pkgAuth.PasswordHasher, strategy pkgAuth.Strategy) *AuthUseCase {
	return &AuthUseCase{customers: customers, hasher: hasher, tokens: strategy}
}

// Register creates a new customer with login/password and returns auth token.
func (u *AuthUseCase) Register(ctx context.Context, login, password string) (*model.Customer, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	hash, err := u.hasher.Hash(password)
	if err != nil {
		return nil, "", err
	}

	customer, err := u.customers.Create(ctx, login, hash)
	if err != nil {
		if errors.Is(err, domainErrors.ErrAlreadyExists) {
			return nil, "", domainErrors.ErrAlreadyExists
		}
		return nil, "", err
	}

	token, err := u.tokens.IssueToken(customer.ID)
	if err != nil {
		return nil, "", err
	}

	return customer, token, nil
}

// Authenticate validates credentials and returns auth token.
func (u *AuthUseCase) Authenticate(ctx context.Context, login, password string) (*model.Customer, string, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	customer, err := u.customers.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return nil, "", domainErrors.ErrInvalidCredentials
		}
		return nil, "", err
	}

	if err := u.hasher.Compare(customer.PasswordHash, password); err != nil {
		return nil, "", domainErrors.ErrInvalidCredentials
	}

	token, err := u.tokens.IssueToken(customer.ID)
	if err != nil {
		return nil, "", err
	}

	return customer, token, nil
}

// ParseToken extracts customer ID from provided token.
func (u *AuthUseCase) ParseToken(token string) (int64, error) {
	if token == "" {
		return 0, pkgAuth.ErrInvalidToken
	}
	return u.tokens.ParseToken(token)
}

// GetByID fetches customer by identifier.
func (u *AuthUseCase) GetByID(ctx context.Context, id int64) (*model.Customer, error) {
	return u.customers.GetByID(ctx, id)
}
