package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jkorir/sellpoint-api/internal/domain/entity"
	"github.com/jkorir/sellpoint-api/internal/domain/enum"
	"github.com/jkorir/sellpoint-api/internal/domain/repository"
	"github.com/jkorir/sellpoint-api/pkg/apperror"
)

// Selection holds the payment choices made during the checkout step. The
// zero value is the default after every completed sale: cash assumed, no
// customer attached.
type Selection struct {
	PaymentMethod enum.PaymentMethod `json:"payment_method"`
	CustomerID    *uuid.UUID         `json:"customer_id,omitempty"`
	WalkInName    *string            `json:"walk_in_name,omitempty"`
	CreditDueDate *time.Time         `json:"credit_due_date,omitempty"`
}

// CompletedSale is the immutable snapshot kept after a successful submission
// so the receipt can be rendered after the cart has been destroyed.
type CompletedSale struct {
	Sale         *entity.Sale
	Draft        entity.SaleDraft
	Selection    Selection
	CustomerName string
}

// CheckoutSession owns one in-progress sale: the cart, the selection and the
// tagged state. Each till session is exclusive; the mutex serializes
// mutations so no caller ever observes a half-applied update.
type CheckoutSession struct {
	ID     uuid.UUID
	UserID uuid.UUID

	mu        sync.Mutex
	state     enum.CheckoutState
	cart      *entity.Cart
	selection Selection
	// epoch tags in-flight submissions. Reset bumps it, so a gateway result
	// arriving after a reset no longer matches and is discarded instead of
	// being applied to the fresh session.
	epoch     uint64
	lastError *apperror.AppError
	lastSold  *CompletedSale
	touchedAt time.Time
}

func (s *CheckoutSession) touch() {
	s.touchedAt = time.Now()
}

// SessionView is the read model handed to the presentation layer. Monetary
// amounts are decimals; the cents source of truth stays internal.
type SessionView struct {
	ID            uuid.UUID            `json:"id"`
	State         enum.CheckoutState   `json:"state"`
	Lines         []SessionLineView    `json:"lines"`
	TotalItems    int                  `json:"total_items"`
	SubTotal      float64              `json:"sub_total"`
	Tax           float64              `json:"tax"`
	Total         float64              `json:"total"`
	Selection     Selection            `json:"selection"`
	LastError     *apperror.AppError   `json:"last_error,omitempty"`
	LastSale      *entity.Sale         `json:"last_sale,omitempty"`
	StockWarning  *entity.StockWarning `json:"stock_warning,omitempty"`
}

// SessionLineView is one cart line with decimal money for display.
type SessionLineView struct {
	ProductID uuid.UUID `json:"product_id"`
	Name      string    `json:"name"`
	UnitPrice float64   `json:"unit_price"`
	Quantity  int       `json:"quantity"`
	LineTotal float64   `json:"line_total"`
}

// CheckoutService orchestrates checkout sessions through the state machine
// Cart -> Checkout -> ConfirmPending -> Submitting -> Completed | Failed.
type CheckoutService struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]*CheckoutSession

	productRepo  repository.ProductRepository
	customerRepo repository.CustomerRepository
	gateway      *SaleGateway
	taxRateBps   int64
	sessionTTL   time.Duration
}

// NewCheckoutService creates a new checkout orchestrator. taxRateBps is the
// injected tax rate in basis points; sessionTTL bounds idle session life.
func NewCheckoutService(
	productRepo repository.ProductRepository,
	customerRepo repository.CustomerRepository,
	gateway *SaleGateway,
	taxRateBps int64,
	sessionTTL time.Duration,
) *CheckoutService {
	if sessionTTL <= 0 {
		sessionTTL = 2 * time.Hour
	}
	return &CheckoutService{
		sessions:     make(map[uuid.UUID]*CheckoutSession),
		productRepo:  productRepo,
		customerRepo: customerRepo,
		gateway:      gateway,
		taxRateBps:   taxRateBps,
		sessionTTL:   sessionTTL,
	}
}

// OpenSession creates a fresh session in the Cart state for a cashier.
func (s *CheckoutService) OpenSession(userID uuid.UUID) *SessionView {
	session := &CheckoutSession{
		ID:        uuid.New(),
		UserID:    userID,
		state:     enum.StateCart,
		cart:      entity.NewCart(),
		selection: Selection{PaymentMethod: enum.PaymentCash},
		touchedAt: time.Now(),
	}

	s.mu.Lock()
	s.sessions[session.ID] = session
	s.mu.Unlock()

	session.mu.Lock()
	defer session.mu.Unlock()
	return s.view(session)
}

func (s *CheckoutService) session(id uuid.UUID) (*CheckoutSession, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	session, ok := s.sessions[id]
	if !ok {
		return nil, apperror.NewNotFoundError("Checkout session")
	}
	return session, nil
}

// GetSession returns the current session snapshot.
func (s *CheckoutService) GetSession(id uuid.UUID) (*SessionView, error) {
	session, err := s.session(id)
	if err != nil {
		return nil, err
	}
	session.mu.Lock()
	defer session.mu.Unlock()
	return s.view(session), nil
}

// view builds the read model. Caller holds the session lock.
func (s *CheckoutService) view(session *CheckoutSession) *SessionView {
	draft := session.cart.Draft(s.taxRateBps)
	lines := make([]SessionLineView, 0, len(draft.Lines))
	for _, l := range draft.Lines {
		lines = append(lines, SessionLineView{
			ProductID: l.ProductID,
			Name:      l.Name,
			UnitPrice: float64(l.UnitPrice) / 100,
			Quantity:  l.Quantity,
			LineTotal: float64(l.LineTotal()) / 100,
		})
	}
	v := &SessionView{
		ID:         session.ID,
		State:      session.state,
		Lines:      lines,
		TotalItems: session.cart.TotalItems(),
		SubTotal:   float64(draft.SubTotal) / 100,
		Tax:        float64(draft.Tax) / 100,
		Total:      float64(draft.Total) / 100,
		Selection:  session.selection,
		LastError:  session.lastError,
	}
	if session.lastSold != nil {
		v.LastSale = session.lastSold.Sale
	}
	return v
}

// cartEditable reports whether line items may still change. Editing is
// allowed while the sale is being built; once the confirmation summary is up
// the cart is frozen until the user steps back.
func cartEditable(state enum.CheckoutState) bool {
	return state == enum.StateCart || state == enum.StateCheckout
}

// AddItem adds one unit of a product to the session's cart, consulting live
// stock for the clamp.
func (s *CheckoutService) AddItem(ctx context.Context, sessionID, productID uuid.UUID) (*SessionView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	session.touch()

	if !cartEditable(session.state) {
		return nil, apperror.NewValidationError("The cart cannot be edited at this step")
	}
	if err := session.cart.AddItem(product); err != nil {
		return nil, apperror.NewValidationError(product.Name + " is out of stock")
	}
	return s.view(session), nil
}

// UpdateQuantity sets a line's quantity, clamping against live stock. The
// returned view carries at most one stock warning, debounced per distinct
// out-of-range attempt.
func (s *CheckoutService) UpdateQuantity(ctx context.Context, sessionID, productID uuid.UUID, quantity int) (*SessionView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	product, err := s.productRepo.GetByID(ctx, productID)
	if err != nil {
		return nil, err
	}
	if product == nil {
		return nil, apperror.NewNotFoundError("Product")
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	session.touch()

	if !cartEditable(session.state) {
		return nil, apperror.NewValidationError("The cart cannot be edited at this step")
	}
	warning := session.cart.UpdateQuantity(product, quantity)
	view := s.view(session)
	view.StockWarning = warning
	return view, nil
}

// RemoveItem deletes a line unconditionally.
func (s *CheckoutService) RemoveItem(sessionID, productID uuid.UUID) (*SessionView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	session.touch()

	if !cartEditable(session.state) {
		return nil, apperror.NewValidationError("The cart cannot be edited at this step")
	}
	session.cart.RemoveItem(productID)
	return s.view(session), nil
}

// ClearCart empties the cart.
func (s *CheckoutService) ClearCart(sessionID uuid.UUID) (*SessionView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	session.touch()

	if !cartEditable(session.state) {
		return nil, apperror.NewValidationError("The cart cannot be edited at this step")
	}
	session.cart.Clear()
	return s.view(session), nil
}

// SelectionInput updates the payment choices. Nil fields are left unchanged.
type SelectionInput struct {
	PaymentMethod *enum.PaymentMethod
	CustomerID    *uuid.UUID
	ClearCustomer bool
	WalkInName    *string
	CreditDueDate *time.Time
}

// UpdateSelection applies payment-method, customer, walk-in and due-date
// choices. A provided customer id must reference an existing customer.
func (s *CheckoutService) UpdateSelection(ctx context.Context, sessionID uuid.UUID, input *SelectionInput) (*SessionView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	var customer *entity.Customer
	if input.CustomerID != nil {
		customer, err = s.customerRepo.GetByID(ctx, *input.CustomerID)
		if err != nil {
			return nil, err
		}
		if customer == nil {
			return nil, apperror.NewNotFoundError("Customer")
		}
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	session.touch()

	if !cartEditable(session.state) {
		return nil, apperror.NewValidationError("Payment selections cannot change at this step")
	}

	if input.PaymentMethod != nil {
		session.selection.PaymentMethod = *input.PaymentMethod
	}
	if input.ClearCustomer {
		session.selection.CustomerID = nil
	}
	if customer != nil {
		session.selection.CustomerID = &customer.ID
		session.selection.WalkInName = nil
	}
	if input.WalkInName != nil {
		session.selection.WalkInName = input.WalkInName
	}
	if input.CreditDueDate != nil {
		session.selection.CreditDueDate = input.CreditDueDate
	}
	return s.view(session), nil
}

// AttachCustomer sets a freshly created customer as the active selection.
// This is the tail of the nested customer-creation sub-flow: the cart and the
// payment-method choice are left exactly as they were.
func (s *CheckoutService) AttachCustomer(ctx context.Context, sessionID, customerID uuid.UUID) (*SessionView, error) {
	return s.UpdateSelection(ctx, sessionID, &SelectionInput{CustomerID: &customerID})
}

// Proceed moves Cart -> Checkout. Only a non-empty cart may proceed.
func (s *CheckoutService) Proceed(sessionID uuid.UUID) (*SessionView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	session.touch()

	if session.state != enum.StateCart {
		return nil, apperror.NewValidationError("Checkout can only start from the cart step")
	}
	if session.cart.IsEmpty() {
		return nil, apperror.NewValidationError("Cart is empty")
	}
	session.state = enum.StateCheckout
	return s.view(session), nil
}

// Review runs the checkout gate and moves Checkout -> ConfirmPending. The
// checks run in order and each failure produces its own message; a failure
// keeps the session in the Checkout state.
func (s *CheckoutService) Review(ctx context.Context, sessionID uuid.UUID) (*SessionView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	if session.state != enum.StateCheckout {
		session.mu.Unlock()
		return nil, apperror.NewValidationError("The sale is not at the checkout step")
	}
	if session.cart.IsEmpty() {
		session.mu.Unlock()
		return nil, apperror.NewValidationError("Cart is empty")
	}
	selection := session.selection
	total := session.cart.Draft(s.taxRateBps).Total
	cartVersion := session.cart.Version()
	session.mu.Unlock()

	if selection.PaymentMethod == enum.PaymentUnset {
		return nil, apperror.NewValidationError("Select a payment method before continuing")
	}

	if selection.PaymentMethod == enum.PaymentCredit {
		var customer *entity.Customer
		if selection.CustomerID != nil {
			customer, err = s.customerRepo.GetByID(ctx, *selection.CustomerID)
			if err != nil {
				return nil, err
			}
		}
		decision := entity.EvaluateCredit(customer, total, selection.CreditDueDate)
		if !decision.OK {
			return nil, creditRefusalError(decision.Reason)
		}
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	session.touch()
	// The gate ran without the lock; only commit the transition if nothing
	// moved the session meanwhile.
	if session.state != enum.StateCheckout {
		return nil, apperror.NewValidationError("The sale is not at the checkout step")
	}
	if session.cart.Version() != cartVersion {
		return nil, apperror.NewValidationError("The cart changed while the sale was being checked; review it again")
	}
	session.state = enum.StateConfirmPending
	session.lastError = nil
	return s.view(session), nil
}

// creditRefusalError maps each refusal reason to its own user-facing
// message. The reasons are deliberately never conflated.
func creditRefusalError(reason entity.CreditRefusal) *apperror.AppError {
	switch reason {
	case entity.CreditRefusalNoCustomer:
		return apperror.NewValidationError("A credit sale requires a registered customer")
	case entity.CreditRefusalMissingDueDate:
		return apperror.NewValidationError("A credit sale requires a payment due date")
	case entity.CreditRefusalLimitExceeded:
		return apperror.NewValidationError("Credit limit exceeded: this sale would put the customer over their limit")
	}
	return apperror.NewValidationError("The credit sale cannot proceed")
}

// Back returns from the confirmation summary (or a failed submission) to the
// checkout step without losing any entered data.
func (s *CheckoutService) Back(sessionID uuid.UUID) (*SessionView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	session.touch()

	if session.state != enum.StateConfirmPending && session.state != enum.StateFailed {
		return nil, apperror.NewValidationError("There is no confirmation to go back from")
	}
	session.state = enum.StateCheckout
	session.lastError = nil
	return s.view(session), nil
}

// Confirm executes ConfirmPending -> Submitting -> Completed | Failed. The
// Submitting state is the single-flight guard: a second confirm while one is
// in flight is rejected. On success the cart is destroyed, the sold lines are
// frozen into the receipt snapshot and the selection returns to its
// defaults; on failure everything is kept so the user can simply retry.
func (s *CheckoutService) Confirm(ctx context.Context, sessionID uuid.UUID) (*SessionView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	if session.state == enum.StateSubmitting {
		session.mu.Unlock()
		return nil, ErrSubmissionInFlight
	}
	if session.state != enum.StateConfirmPending && session.state != enum.StateFailed {
		session.mu.Unlock()
		return nil, apperror.NewValidationError("The sale has not been reviewed yet")
	}

	draft := session.cart.Draft(s.taxRateBps)
	selection := session.selection
	input := &SubmitInput{
		UserID:        session.UserID,
		Draft:         draft,
		PaymentMethod: selection.PaymentMethod,
		CustomerID:    selection.CustomerID,
		WalkInName:    selection.WalkInName,
		CreditDueDate: selection.CreditDueDate,
	}
	session.state = enum.StateSubmitting
	session.lastError = nil
	epoch := session.epoch
	session.mu.Unlock()

	// The gateway call is the only suspending operation; the lock is not
	// held across it so the session stays readable while submitting.
	sale, submitErr := s.gateway.Submit(ctx, sessionID, input)

	session.mu.Lock()
	defer session.mu.Unlock()
	session.touch()

	if session.epoch != epoch {
		// The session was reset while the submission was in flight. The
		// result belongs to the old sale; applying it now would corrupt the
		// fresh one, so it is discarded. A created sale is still persisted
		// and visible in the sale list.
		return nil, apperror.NewConflictError("The checkout session was reset while submitting")
	}

	if submitErr != nil {
		session.state = enum.StateFailed
		session.lastError = apperror.GetAppError(submitErr)
		return s.view(session), submitErr
	}

	customerName := ""
	if sale.Customer != nil {
		customerName = sale.Customer.Name
	} else if selection.WalkInName != nil {
		customerName = *selection.WalkInName
	}
	session.lastSold = &CompletedSale{
		Sale:         sale,
		Draft:        draft,
		Selection:    selection,
		CustomerName: customerName,
	}
	session.cart.Clear()
	session.selection = Selection{PaymentMethod: enum.PaymentCash}
	session.state = enum.StateCompleted
	return s.view(session), nil
}

// Reset starts a new, unrelated sale: fresh cart, default selection, Cart
// state. No partial carryover survives, and any in-flight submission result
// for the old sale is orphaned by the epoch bump.
func (s *CheckoutService) Reset(sessionID uuid.UUID) (*SessionView, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	session.touch()

	session.epoch++
	session.cart = entity.NewCart()
	session.selection = Selection{PaymentMethod: enum.PaymentCash}
	session.state = enum.StateCart
	session.lastError = nil
	session.lastSold = nil
	return s.view(session), nil
}

// LastSale returns the immutable snapshot of the most recently completed
// sale, for receipt rendering.
func (s *CheckoutService) LastSale(sessionID uuid.UUID) (*CompletedSale, error) {
	session, err := s.session(sessionID)
	if err != nil {
		return nil, err
	}

	session.mu.Lock()
	defer session.mu.Unlock()
	if session.lastSold == nil {
		return nil, apperror.NewNotFoundError("Completed sale")
	}
	return session.lastSold, nil
}

// CloseSession removes the session entirely.
func (s *CheckoutService) CloseSession(sessionID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
}

// StartJanitor sweeps idle sessions until ctx is cancelled.
func (s *CheckoutService) StartJanitor(ctx context.Context) {
	interval := s.sessionTTL / 4
	if interval < time.Minute {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.sweep()
			}
		}
	}()
}

func (s *CheckoutService) sweep() {
	cutoff := time.Now().Add(-s.sessionTTL)
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, session := range s.sessions {
		session.mu.Lock()
		idle := session.touchedAt.Before(cutoff) && session.state != enum.StateSubmitting
		session.mu.Unlock()
		if idle {
			delete(s.sessions, id)
		}
	}
}
