package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jkorir/sellpoint-api/internal/domain/entity"
	"github.com/jkorir/sellpoint-api/pkg/pagination"
)

// CustomerRepository defines the interface for the customer directory.
type CustomerRepository interface {
	Create(ctx context.Context, customer *entity.Customer) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error)
	Update(ctx context.Context, customer *entity.Customer) error
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error)
	// AtomicAddCredit increases the customer's outstanding balance by
	// amountCents only if the result stays within the credit limit. Returns
	// false when the guard refuses, without error.
	AtomicAddCredit(ctx context.Context, id uuid.UUID, amountCents int64) (bool, error)
	// ReduceCredit lowers the outstanding balance (payment applied), never
	// below zero.
	ReduceCredit(ctx context.Context, id uuid.UUID, amountCents int64) error
}
