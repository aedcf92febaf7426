package service

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/jkorir/sellpoint-api/internal/domain/entity"
	"github.com/jkorir/sellpoint-api/internal/domain/repository"
	"github.com/jkorir/sellpoint-api/pkg/apperror"
	"github.com/jkorir/sellpoint-api/pkg/pagination"
)

// CustomerService handles the customer directory
type CustomerService struct {
	customerRepo repository.CustomerRepository
}

// NewCustomerService creates a new customer service
func NewCustomerService(customerRepo repository.CustomerRepository) *CustomerService {
	return &CustomerService{customerRepo: customerRepo}
}

// CreateCustomerInput represents the create customer input
type CreateCustomerInput struct {
	Name        string
	Phone       *string
	Address     *string
	CreditLimit float64
}

// CreateCustomer registers a new customer. This also serves the mid-checkout
// registration flow: the handler creates the customer here and then attaches
// the new ID to the session selection.
func (s *CustomerService) CreateCustomer(ctx context.Context, input *CreateCustomerInput) (*entity.Customer, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, apperror.NewFieldValidationError([]apperror.FieldError{
			{Field: "name", Message: "Name is required"},
		})
	}
	if input.CreditLimit < 0 {
		return nil, apperror.NewFieldValidationError([]apperror.FieldError{
			{Field: "credit_limit", Message: "Credit limit cannot be negative"},
		})
	}

	customer := &entity.Customer{
		Name:        name,
		Phone:       input.Phone,
		Address:     input.Address,
		CreditLimit: int64(input.CreditLimit * 100),
	}
	if err := s.customerRepo.Create(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// GetCustomer retrieves a customer by ID
func (s *CustomerService) GetCustomer(ctx context.Context, id uuid.UUID) (*entity.Customer, error) {
	customer, err := s.customerRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if customer == nil {
		return nil, apperror.NewNotFoundError("Customer")
	}
	return customer, nil
}

// UpdateCustomerInput represents the update customer input. Nil fields are
// left unchanged.
type UpdateCustomerInput struct {
	Name        *string
	Phone       *string
	Address     *string
	CreditLimit *float64
}

// UpdateCustomer updates directory fields. The outstanding balance is never
// set directly; it only moves through sales and payments.
func (s *CustomerService) UpdateCustomer(ctx context.Context, id uuid.UUID, input *UpdateCustomerInput) (*entity.Customer, error) {
	customer, err := s.GetCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return nil, apperror.NewFieldValidationError([]apperror.FieldError{
				{Field: "name", Message: "Name cannot be empty"},
			})
		}
		customer.Name = name
	}
	if input.Phone != nil {
		customer.Phone = input.Phone
	}
	if input.Address != nil {
		customer.Address = input.Address
	}
	if input.CreditLimit != nil {
		if *input.CreditLimit < 0 {
			return nil, apperror.NewFieldValidationError([]apperror.FieldError{
				{Field: "credit_limit", Message: "Credit limit cannot be negative"},
			})
		}
		customer.CreditLimit = int64(*input.CreditLimit * 100)
	}

	if err := s.customerRepo.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customer, nil
}

// ListCustomers retrieves customers with pagination and optional name or
// phone search.
func (s *CustomerService) ListCustomers(ctx context.Context, params *pagination.PaginationParams, search string) (*pagination.PaginatedResult[entity.Customer], error) {
	params.Validate()

	customers, total, err := s.customerRepo.List(ctx, params, search)
	if err != nil {
		return nil, err
	}
	return pagination.NewPaginatedResult(customers, pagination.NewPagination(params.Page, params.PerPage, total)), nil
}
