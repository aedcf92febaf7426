package service

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"github.com/jkorir/sellpoint-api/internal/cache"
	"github.com/jkorir/sellpoint-api/internal/domain/entity"
	"github.com/jkorir/sellpoint-api/internal/domain/enum"
	"github.com/jkorir/sellpoint-api/internal/domain/repository"
	"github.com/jkorir/sellpoint-api/pkg/apperror"
	"github.com/jkorir/sellpoint-api/pkg/pagination"
)

const saleListCacheTTL = 30 * time.Second

// SaleService handles sale history: listing, lookups and credit payments.
// Sales are only ever created through the submission gateway.
type SaleService struct {
	saleRepo     repository.SaleRepository
	customerRepo repository.CustomerRepository
	productRepo  repository.ProductRepository
	listCache    cache.SaleListCache
}

// NewSaleService creates a new sale service
func NewSaleService(
	saleRepo repository.SaleRepository,
	customerRepo repository.CustomerRepository,
	productRepo repository.ProductRepository,
	listCache cache.SaleListCache,
) *SaleService {
	if listCache == nil {
		listCache = cache.NoopSaleListCache{}
	}
	return &SaleService{
		saleRepo:     saleRepo,
		customerRepo: customerRepo,
		productRepo:  productRepo,
		listCache:    listCache,
	}
}

// GetSale retrieves a sale with its items and customer
func (s *SaleService) GetSale(ctx context.Context, id uuid.UUID) (*entity.Sale, error) {
	sale, err := s.saleRepo.GetWithItems(ctx, id)
	if err != nil {
		return nil, err
	}
	if sale == nil {
		return nil, apperror.NewNotFoundError("Sale")
	}
	return sale, nil
}

// ListSales retrieves sale history with filtering. Pages are served from the
// list cache when present; the cache is invalidated by the submission
// gateway's post-commit hook, so a fresh sale shows up on the next poll.
func (s *SaleService) ListSales(ctx context.Context, params *repository.SaleFilterParams) (*pagination.PaginatedResult[entity.Sale], error) {
	if params.Pagination == nil {
		params.Pagination = pagination.DefaultPagination()
	}
	params.Pagination.Validate()

	key := saleListCacheKey(params)
	if payload, ok, err := s.listCache.Get(ctx, key); err == nil && ok {
		var result pagination.PaginatedResult[entity.Sale]
		if err := json.Unmarshal(payload, &result); err == nil {
			return &result, nil
		}
	} else if err != nil {
		log.Printf("sale list cache get failed: %v", err)
	}

	sales, total, err := s.saleRepo.List(ctx, params)
	if err != nil {
		return nil, err
	}
	result := pagination.NewPaginatedResult(sales, pagination.NewPagination(params.Pagination.Page, params.Pagination.PerPage, total))

	if payload, err := json.Marshal(result); err == nil {
		if err := s.listCache.Set(ctx, key, payload, saleListCacheTTL); err != nil {
			log.Printf("sale list cache set failed: %v", err)
		}
	}
	return result, nil
}

func saleListCacheKey(params *repository.SaleFilterParams) string {
	status := ""
	if params.Status != nil {
		status = params.Status.String()
	}
	customer := ""
	if params.CustomerID != nil {
		customer = params.CustomerID.String()
	}
	start, end := "", ""
	if params.StartDate != nil {
		start = params.StartDate.Format("2006-01-02")
	}
	if params.EndDate != nil {
		end = params.EndDate.Format("2006-01-02")
	}
	return fmt.Sprintf("p%d:n%d:q%s:s%s:c%s:cr%t:%s:%s",
		params.Pagination.Page, params.Pagination.PerPage,
		params.Search, status, customer, params.CreditOnly, start, end)
}

// PayDueInput represents a payment against an outstanding credit sale
type PayDueInput struct {
	Amount float64
}

// PayDue applies a payment to an outstanding credit sale. The payment lowers
// the sale's due amount and releases the same amount of the customer's
// credit; a fully paid sale flips to the paid status.
func (s *SaleService) PayDue(ctx context.Context, saleID uuid.UUID, input *PayDueInput) (*entity.Sale, error) {
	if input.Amount <= 0 {
		return nil, apperror.NewValidationError("Payment amount must be greater than zero")
	}
	amountCents := int64(input.Amount * 100)

	sale, err := s.GetSale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if !sale.IsCredit {
		return nil, apperror.NewValidationError("Only credit sales carry a due balance")
	}
	if sale.Status == enum.SaleStatusVoid {
		return nil, apperror.NewValidationError("The sale has been voided")
	}
	if sale.Due <= 0 {
		return nil, apperror.NewValidationError("The sale has no outstanding balance")
	}
	if amountCents > sale.Due {
		return nil, apperror.NewValidationError("Payment exceeds the outstanding balance")
	}

	sale.Paid += amountCents
	sale.Due -= amountCents
	if sale.Due == 0 {
		sale.Status = enum.SaleStatusPaid
	}
	if err := s.saleRepo.Update(ctx, sale); err != nil {
		return nil, err
	}

	if sale.CustomerID != nil {
		if err := s.customerRepo.ReduceCredit(ctx, *sale.CustomerID, amountCents); err != nil {
			log.Printf("failed to release customer credit for sale %s: %v", sale.ID, err)
		}
	}

	if err := s.listCache.Invalidate(ctx); err != nil {
		log.Printf("sale list cache invalidate failed: %v", err)
	}
	return sale, nil
}

// VoidSale cancels a sale: stock returns to the catalog and any outstanding
// credit is released. Paid cash is not refunded automatically.
func (s *SaleService) VoidSale(ctx context.Context, saleID uuid.UUID) (*entity.Sale, error) {
	sale, err := s.GetSale(ctx, saleID)
	if err != nil {
		return nil, err
	}
	if sale.Status == enum.SaleStatusVoid {
		return nil, apperror.NewConflictError("The sale is already voided")
	}

	increments := make(map[uuid.UUID]int, len(sale.Items))
	for _, item := range sale.Items {
		increments[item.ProductID] += item.Quantity
	}
	if err := s.productRepo.AtomicIncrementBatch(ctx, increments); err != nil {
		return nil, err
	}

	if sale.IsCredit && sale.CustomerID != nil && sale.Due > 0 {
		if err := s.customerRepo.ReduceCredit(ctx, *sale.CustomerID, sale.Due); err != nil {
			log.Printf("failed to release customer credit for voided sale %s: %v", sale.ID, err)
		}
	}

	sale.Status = enum.SaleStatusVoid
	sale.Due = 0
	if err := s.saleRepo.Update(ctx, sale); err != nil {
		return nil, err
	}

	if err := s.listCache.Invalidate(ctx); err != nil {
		log.Printf("sale list cache invalidate failed: %v", err)
	}
	return sale, nil
}
