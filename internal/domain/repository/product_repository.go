package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/jkorir/sellpoint-api/internal/domain/entity"
	"github.com/jkorir/sellpoint-api/pkg/pagination"
)

// ProductRepository defines the interface for the product catalog. The
// checkout core reads stock through it; the only writes are the atomic stock
// movements driven by sale submission and payment reversal.
type ProductRepository interface {
	Create(ctx context.Context, product *entity.Product) error
	GetByID(ctx context.Context, id uuid.UUID) (*entity.Product, error)
	// GetByIDs retrieves multiple products in a single query (prevents N+1)
	GetByIDs(ctx context.Context, ids []uuid.UUID) ([]entity.Product, error)
	GetByCode(ctx context.Context, code string) (*entity.Product, error)
	List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Product, int64, error)
	// AtomicDecrementBatch decrements stock for multiple products in one
	// transaction, refusing any decrement that would go negative. Returns
	// the IDs that had insufficient stock; if any fail, nothing is applied.
	AtomicDecrementBatch(ctx context.Context, decrements map[uuid.UUID]int) (failedIDs []uuid.UUID, err error)
	// AtomicIncrementBatch restores stock for multiple products (voids/returns).
	AtomicIncrementBatch(ctx context.Context, increments map[uuid.UUID]int) error
}
