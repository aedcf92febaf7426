package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jkorir/sellpoint-api/internal/domain/entity"
	domainRepo "github.com/jkorir/sellpoint-api/internal/domain/repository"
	"github.com/jkorir/sellpoint-api/pkg/pagination"
	"gorm.io/gorm"
)

type customerRepository struct {
	db *gorm.DB
}

// NewCustomerRepository creates a new customer repository
func NewCustomerRepository(db *gorm.DB) domainRepo.CustomerRepository {
	return &customerRepository{db: db}
}

func (r *customerRepository) Create(ctx context.Context, customer *entity.Customer) error {
	return r.db.WithContext(ctx).Create(customer).Error
}

func (r *customerRepository) GetByID(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	var customer entity.Customer
	err := r.db.WithContext(ctx).First(&customer, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	return &customer, err
}

func (r *customerRepository) Update(ctx context.Context, customer *entity.Customer) error {
	return r.db.WithContext(ctx).Save(customer).Error
}

func (r *customerRepository) List(ctx context.Context, params *pagination.PaginationParams, search string) ([]entity.Customer, int64, error) {
	var customers []entity.Customer
	var total int64

	query := r.db.WithContext(ctx).Model(&entity.Customer{})
	if search != "" {
		query = query.Where("name ILIKE ? OR phone ILIKE ?",
			"%"+search+"%", "%"+search+"%")
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := query.
		Order("name ASC").
		Offset(params.Offset()).
		Limit(params.PerPage).
		Find(&customers).Error
	return customers, total, err
}

// AtomicAddCredit raises the outstanding balance only if the result stays
// within the credit limit. The guard lives in the WHERE clause so two
// concurrent credit sales can never jointly push a customer over the limit.
func (r *customerRepository) AtomicAddCredit(ctx context.Context, id uuid.UUID, amountCents int64) (bool, error) {
	result := r.db.WithContext(ctx).Model(&entity.Customer{}).
		Where("id = ? AND current_credit + ? <= credit_limit", id, amountCents).
		Update("current_credit", gorm.Expr("current_credit + ?", amountCents))

	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

// ReduceCredit lowers the outstanding balance, clamped at zero.
func (r *customerRepository) ReduceCredit(ctx context.Context, id uuid.UUID, amountCents int64) error {
	return r.db.WithContext(ctx).Model(&entity.Customer{}).
		Where("id = ?", id).
		Update("current_credit", gorm.Expr("GREATEST(current_credit - ?, 0)", amountCents)).Error
}
