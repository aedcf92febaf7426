package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jkorir/sellpoint-api/internal/domain/entity"
	"github.com/jkorir/sellpoint-api/internal/domain/enum"
	"github.com/jkorir/sellpoint-api/internal/domain/repository"
	"github.com/jkorir/sellpoint-api/pkg/pagination"
)

type fakeListCache struct {
	mu          sync.Mutex
	entries     map[string][]byte
	invalidates int
}

func newFakeListCache() *fakeListCache {
	return &fakeListCache{entries: make(map[string][]byte)}
}

func (c *fakeListCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	payload, ok := c.entries[key]
	return payload, ok, nil
}

func (c *fakeListCache) Set(_ context.Context, key string, payload []byte, _ time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = payload
	return nil
}

func (c *fakeListCache) Invalidate(_ context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string][]byte)
	c.invalidates++
	return nil
}

func seedCreditSale(t *testing.T, sales *fakeSaleRepo, customerID uuid.UUID, totalCents int64) *entity.Sale {
	t.Helper()
	sale := &entity.Sale{
		UserID:        uuid.New(),
		CustomerID:    &customerID,
		InvoiceNo:     "INV-test",
		SaleDate:      time.Now(),
		Status:        enum.SaleStatusOutstanding,
		PaymentMethod: enum.PaymentCredit,
		IsCredit:      true,
		Total:         totalCents,
		Due:           totalCents,
	}
	items := []entity.SaleItem{{ProductID: uuid.New(), Name: "Soda", Quantity: 1, UnitPrice: totalCents, LineTotal: totalCents}}
	if err := sales.CreateWithItems(context.Background(), sale, items); err != nil {
		t.Fatal(err)
	}
	return sale
}

func TestPayDuePartialAndFull(t *testing.T) {
	customer := &entity.Customer{ID: uuid.New(), Name: "Jane", CreditLimit: 10000, CurrentCredit: 2000}
	customers := newFakeCustomerRepo(customer)
	sales := newFakeSaleRepo()
	sale := seedCreditSale(t, sales, customer.ID, 2000)
	svc := NewSaleService(sales, customers, newFakeProductRepo(), newFakeListCache())
	ctx := context.Background()

	updated, err := svc.PayDue(ctx, sale.ID, &PayDueInput{Amount: 5.00})
	if err != nil {
		t.Fatalf("PayDue failed: %v", err)
	}
	if updated.Paid != 500 || updated.Due != 1500 {
		t.Errorf("paid/due = %d/%d, want 500/1500", updated.Paid, updated.Due)
	}
	if updated.Status != enum.SaleStatusOutstanding {
		t.Errorf("status = %v, want Outstanding while a balance remains", updated.Status)
	}
	if got := customers.credit(customer.ID); got != 1500 {
		t.Errorf("customer credit = %d, want 1500", got)
	}

	updated, err = svc.PayDue(ctx, sale.ID, &PayDueInput{Amount: 15.00})
	if err != nil {
		t.Fatalf("PayDue failed: %v", err)
	}
	if updated.Due != 0 || updated.Status != enum.SaleStatusPaid {
		t.Errorf("due/status = %d/%v, want 0/Paid", updated.Due, updated.Status)
	}
	if got := customers.credit(customer.ID); got != 0 {
		t.Errorf("customer credit = %d, want 0", got)
	}
}

func TestPayDueRejectsOverpayment(t *testing.T) {
	customer := &entity.Customer{ID: uuid.New(), Name: "Jane", CreditLimit: 10000, CurrentCredit: 2000}
	sales := newFakeSaleRepo()
	sale := seedCreditSale(t, sales, customer.ID, 2000)
	svc := NewSaleService(sales, newFakeCustomerRepo(customer), newFakeProductRepo(), newFakeListCache())

	if _, err := svc.PayDue(context.Background(), sale.ID, &PayDueInput{Amount: 25.00}); err == nil {
		t.Error("paying more than the outstanding balance must be rejected")
	}
	if _, err := svc.PayDue(context.Background(), sale.ID, &PayDueInput{Amount: 0}); err == nil {
		t.Error("a zero payment must be rejected")
	}
}

func TestVoidSaleRestoresStockAndCredit(t *testing.T) {
	soda := &entity.Product{ID: uuid.New(), Name: "Soda", Code: "S", UnitPrice: 2000, Quantity: 3}
	customer := &entity.Customer{ID: uuid.New(), Name: "Jane", CreditLimit: 10000, CurrentCredit: 2000}
	products := newFakeProductRepo(soda)
	customers := newFakeCustomerRepo(customer)
	sales := newFakeSaleRepo()

	sale := &entity.Sale{
		UserID:        uuid.New(),
		CustomerID:    &customer.ID,
		InvoiceNo:     "INV-void",
		SaleDate:      time.Now(),
		Status:        enum.SaleStatusOutstanding,
		PaymentMethod: enum.PaymentCredit,
		IsCredit:      true,
		Total:         2000,
		Due:           2000,
	}
	items := []entity.SaleItem{{ProductID: soda.ID, Name: "Soda", Quantity: 2, UnitPrice: 1000, LineTotal: 2000}}
	if err := sales.CreateWithItems(context.Background(), sale, items); err != nil {
		t.Fatal(err)
	}

	svc := NewSaleService(sales, customers, products, newFakeListCache())
	voided, err := svc.VoidSale(context.Background(), sale.ID)
	if err != nil {
		t.Fatalf("VoidSale failed: %v", err)
	}

	if voided.Status != enum.SaleStatusVoid || voided.Due != 0 {
		t.Errorf("status/due = %v/%d, want Void/0", voided.Status, voided.Due)
	}
	if got := products.stock(soda.ID); got != 5 {
		t.Errorf("stock = %d, want 5 after restock", got)
	}
	if got := customers.credit(customer.ID); got != 0 {
		t.Errorf("credit = %d, want 0 after release", got)
	}

	if _, err := svc.VoidSale(context.Background(), sale.ID); err == nil {
		t.Error("voiding twice must be rejected")
	}
}

func TestListSalesUsesCache(t *testing.T) {
	sales := newFakeSaleRepo()
	seedCreditSale(t, sales, uuid.New(), 1000)
	listCache := newFakeListCache()
	svc := NewSaleService(sales, newFakeCustomerRepo(), newFakeProductRepo(), listCache)
	ctx := context.Background()

	params := &repository.SaleFilterParams{Pagination: &pagination.PaginationParams{Page: 1, PerPage: 10}}
	first, err := svc.ListSales(ctx, params)
	if err != nil {
		t.Fatalf("ListSales failed: %v", err)
	}
	if len(first.Items) != 1 {
		t.Fatalf("items = %d, want 1", len(first.Items))
	}
	if len(listCache.entries) != 1 {
		t.Errorf("cache entries = %d, want the page to be cached", len(listCache.entries))
	}

	// A second identical query is served from the cache even after the
	// backing store changes.
	seedCreditSale(t, sales, uuid.New(), 500)
	second, err := svc.ListSales(ctx, params)
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Items) != 1 {
		t.Errorf("cached items = %d, want 1", len(second.Items))
	}

	// Invalidation makes the new sale visible.
	if err := listCache.Invalidate(ctx); err != nil {
		t.Fatal(err)
	}
	third, err := svc.ListSales(ctx, params)
	if err != nil {
		t.Fatal(err)
	}
	if len(third.Items) != 2 {
		t.Errorf("items after invalidation = %d, want 2", len(third.Items))
	}
}
