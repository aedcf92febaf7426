package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jkorir/sellpoint-api/internal/domain/entity"
	"github.com/jkorir/sellpoint-api/internal/domain/enum"
	"github.com/jkorir/sellpoint-api/internal/domain/repository"
	"github.com/jkorir/sellpoint-api/pkg/apperror"
)

// CommitHook is invoked after a sale has been durably persisted. Hooks keep
// dependent read views (cached sale lists) fresh without coupling the gateway
// to any particular view implementation.
type CommitHook func(ctx context.Context, sale *entity.Sale)

// SubmitInput carries everything the gateway needs to build the persistence
// payload for one confirmed submission.
type SubmitInput struct {
	UserID        uuid.UUID
	Draft         entity.SaleDraft
	PaymentMethod enum.PaymentMethod
	CustomerID    *uuid.UUID
	WalkInName    *string
	CreditDueDate *time.Time
}

// SaleGateway persists confirmed sale drafts. It is the stock and credit
// authority: stock is decremented atomically inside submission, and the
// customer's balance is raised under the credit-limit guard, so two tills
// racing over the last unit (or the last shilling of credit) cannot both win.
type SaleGateway struct {
	saleRepo     repository.SaleRepository
	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository

	mu       sync.Mutex
	inflight map[uuid.UUID]bool // session id -> submission outstanding
	hooks    []CommitHook
}

// NewSaleGateway creates a new sale submission gateway
func NewSaleGateway(
	saleRepo repository.SaleRepository,
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
) *SaleGateway {
	return &SaleGateway{
		saleRepo:     saleRepo,
		productRepo:  productRepo,
		customerRepo: customerRepo,
		inflight:     make(map[uuid.UUID]bool),
	}
}

// RegisterCommitHook adds a post-commit observer. Hooks run synchronously in
// registration order after the sale is persisted; a hook must not fail the
// submission.
func (g *SaleGateway) RegisterCommitHook(hook CommitHook) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.hooks = append(g.hooks, hook)
}

// ErrSubmissionInFlight rejects a re-entrant submit for a session that
// already has one outstanding. Callers retry after the first settles.
var ErrSubmissionInFlight = apperror.NewConflictError("A submission for this sale is already in progress")

// Submit persists the draft as a Sale, exactly one request per confirmed
// submission. Re-entrant calls for the same session are rejected, not queued.
// On any failure the caller's cart and selections are left for retry; stock
// and credit movements made here are rolled back.
func (g *SaleGateway) Submit(ctx context.Context, sessionID uuid.UUID, input *SubmitInput) (*entity.Sale, error) {
	g.mu.Lock()
	if g.inflight[sessionID] {
		g.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	g.inflight[sessionID] = true
	g.mu.Unlock()

	defer func() {
		g.mu.Lock()
		delete(g.inflight, sessionID)
		g.mu.Unlock()
	}()

	if len(input.Draft.Lines) == 0 {
		return nil, apperror.NewValidationError("Cart is empty")
	}

	items := make([]entity.SaleItem, 0, len(input.Draft.Lines))
	stockDecrements := make(map[uuid.UUID]int, len(input.Draft.Lines))
	totalItems := 0
	for _, line := range input.Draft.Lines {
		items = append(items, entity.SaleItem{
			ProductID: line.ProductID,
			Name:      line.Name,
			Quantity:  line.Quantity,
			UnitPrice: line.UnitPrice,
			LineTotal: line.LineTotal(),
		})
		stockDecrements[line.ProductID] = line.Quantity
		totalItems += line.Quantity
	}

	// The catalog is authoritative for stock: the client-side clamp is only
	// advisory, so re-validate here and fail the whole submission if any
	// product was oversold in the meantime.
	failedIDs, err := g.productRepo.AtomicDecrementBatch(ctx, stockDecrements)
	if err != nil {
		return nil, classifySubmissionError(err)
	}
	if len(failedIDs) > 0 {
		names := make([]string, 0, len(failedIDs))
		for _, id := range failedIDs {
			name := id.String()
			for _, line := range input.Draft.Lines {
				if line.ProductID == id {
					name = line.Name
					break
				}
			}
			names = append(names, name)
		}
		return nil, apperror.NewConflictError(fmt.Sprintf("Insufficient stock for: %s", strings.Join(names, ", ")))
	}

	isCredit := input.PaymentMethod == enum.PaymentCredit
	if isCredit {
		if input.CustomerID == nil {
			_ = g.productRepo.AtomicIncrementBatch(ctx, stockDecrements)
			return nil, apperror.NewValidationError("A credit sale requires a registered customer")
		}
		ok, err := g.customerRepo.AtomicAddCredit(ctx, *input.CustomerID, input.Draft.Total)
		if err != nil {
			_ = g.productRepo.AtomicIncrementBatch(ctx, stockDecrements)
			return nil, classifySubmissionError(err)
		}
		if !ok {
			_ = g.productRepo.AtomicIncrementBatch(ctx, stockDecrements)
			return nil, apperror.NewConflictError("Credit limit exceeded: the customer's balance changed since the sale was checked")
		}
	}

	sale := &entity.Sale{
		UserID:        input.UserID,
		CustomerID:    input.CustomerID,
		InvoiceNo:     fmt.Sprintf("INV-%s", uuid.New().String()[:8]),
		SaleDate:      time.Now(),
		PaymentMethod: input.PaymentMethod,
		IsCredit:      isCredit,
		CreditDueDate: input.CreditDueDate,
		WalkInName:    input.WalkInName,
		TotalItems:    totalItems,
		SubTotal:      input.Draft.SubTotal,
		Tax:           input.Draft.Tax,
		Total:         input.Draft.Total,
	}
	if isCredit {
		sale.Status = enum.SaleStatusOutstanding
		sale.Due = input.Draft.Total
	} else {
		sale.Status = enum.SaleStatusPaid
		sale.Paid = input.Draft.Total
	}

	if err := g.saleRepo.CreateWithItems(ctx, sale, items); err != nil {
		// Undo the stock and credit movements made above
		_ = g.productRepo.AtomicIncrementBatch(ctx, stockDecrements)
		if isCredit {
			_ = g.customerRepo.ReduceCredit(ctx, *input.CustomerID, input.Draft.Total)
		}
		return nil, classifySubmissionError(err)
	}

	g.mu.Lock()
	hooks := make([]CommitHook, len(g.hooks))
	copy(hooks, g.hooks)
	g.mu.Unlock()
	for _, hook := range hooks {
		hook(ctx, sale)
	}

	full, err := g.saleRepo.GetWithItems(ctx, sale.ID)
	if err != nil || full == nil {
		// The sale is committed; a failed read-back should not look like a
		// failed submission.
		log.Printf("sale gateway: read-back of sale %s failed: %v", sale.ID, err)
		return sale, nil
	}
	return full, nil
}

// classifySubmissionError sorts a submission failure into the validation /
// conflict / network / server taxonomy so the user knows whether to fix
// input or simply retry. Timeouts are treated identically to network
// failures.
func classifySubmissionError(err error) error {
	if apperror.IsAppError(err) {
		return err
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apperror.NewNetworkError("The sale could not be submitted: the request timed out")
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		return apperror.NewNetworkError("The sale could not be submitted: " + netErr.Error())
	}
	return apperror.NewServerError("The sale could not be saved: " + err.Error())
}
