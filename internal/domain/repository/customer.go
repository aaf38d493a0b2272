package repository

import (
	"context"

	"github.com/paperdesk/papermart/internal/domain/model"
)

// CustomerRepository describes persistence operations for customer accounts.
type CustomerRepository interface {
	Create(ctx context.Context, login, passwordHash string) (*model.Customer, error)
	GetByLogin(ctx context.Context, login string) (*model.Customer, error)
	GetByID(ctx context.Context, id int64) (*model.Customer, error)
}
