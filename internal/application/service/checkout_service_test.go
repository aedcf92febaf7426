package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jkorir/sellpoint-api/internal/domain/entity"
	"github.com/jkorir/sellpoint-api/internal/domain/enum"
	"github.com/jkorir/sellpoint-api/pkg/apperror"
)

type checkoutFixture struct {
	svc       *CheckoutService
	products  *fakeProductRepo
	customers *fakeCustomerRepo
	sales     *fakeSaleRepo
	sessionID uuid.UUID
}

func newCheckoutFixture(t *testing.T, taxRateBps int64, products []*entity.Product, customers []*entity.Customer) *checkoutFixture {
	t.Helper()
	productRepo := newFakeProductRepo(products...)
	customerRepo := newFakeCustomerRepo(customers...)
	saleRepo := newFakeSaleRepo()
	gw := NewSaleGateway(saleRepo, productRepo, customerRepo)
	svc := NewCheckoutService(productRepo, customerRepo, gw, taxRateBps, time.Hour)
	view := svc.OpenSession(uuid.New())
	return &checkoutFixture{
		svc:       svc,
		products:  productRepo,
		customers: customerRepo,
		sales:     saleRepo,
		sessionID: view.ID,
	}
}

func (f *checkoutFixture) mustAdd(t *testing.T, productID uuid.UUID) *SessionView {
	t.Helper()
	view, err := f.svc.AddItem(context.Background(), f.sessionID, productID)
	if err != nil {
		t.Fatalf("AddItem failed: %v", err)
	}
	return view
}

func TestCheckoutHappyPathCash(t *testing.T) {
	soda := &entity.Product{ID: uuid.New(), Name: "Soda", Code: "S", UnitPrice: 1000, Quantity: 10}
	f := newCheckoutFixture(t, 0, []*entity.Product{soda}, nil)
	ctx := context.Background()

	f.mustAdd(t, soda.ID)
	f.mustAdd(t, soda.ID)

	view, err := f.svc.Proceed(f.sessionID)
	if err != nil {
		t.Fatalf("Proceed failed: %v", err)
	}
	if view.State != enum.StateCheckout {
		t.Fatalf("state = %v, want checkout", view.State)
	}

	view, err = f.svc.Review(ctx, f.sessionID)
	if err != nil {
		t.Fatalf("Review failed: %v", err)
	}
	if view.State != enum.StateConfirmPending {
		t.Fatalf("state = %v, want confirm_pending", view.State)
	}

	view, err = f.svc.Confirm(ctx, f.sessionID)
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if view.State != enum.StateCompleted {
		t.Errorf("state = %v, want completed", view.State)
	}
	if len(view.Lines) != 0 {
		t.Error("cart should be destroyed after a completed sale")
	}
	if view.Selection.PaymentMethod != enum.PaymentCash || view.Selection.CustomerID != nil {
		t.Error("selection should reset to defaults after a completed sale")
	}
	if view.LastSale == nil {
		t.Fatal("completed session should expose the persisted sale")
	}
	if view.LastSale.Total != 2000 {
		t.Errorf("sale total = %d, want 2000", view.LastSale.Total)
	}
	if f.sales.count() != 1 {
		t.Errorf("persisted sales = %d, want 1", f.sales.count())
	}
	if got := f.products.stock(soda.ID); got != 8 {
		t.Errorf("stock = %d, want 8", got)
	}
}

func TestCheckoutProceedRequiresItems(t *testing.T) {
	f := newCheckoutFixture(t, 0, nil, nil)

	_, err := f.svc.Proceed(f.sessionID)
	if err == nil {
		t.Fatal("expected an error for an empty cart")
	}
	if !strings.Contains(err.Error(), "Cart is empty") {
		t.Errorf("error = %q, want the empty-cart message", err.Error())
	}

	view, _ := f.svc.GetSession(f.sessionID)
	if view.State != enum.StateCart {
		t.Errorf("state = %v, want cart after refused proceed", view.State)
	}
}

func TestCheckoutReviewRequiresPaymentMethod(t *testing.T) {
	soda := &entity.Product{ID: uuid.New(), Name: "Soda", Code: "S", UnitPrice: 1000, Quantity: 10}
	f := newCheckoutFixture(t, 0, []*entity.Product{soda}, nil)
	ctx := context.Background()

	f.mustAdd(t, soda.ID)
	if _, err := f.svc.Proceed(f.sessionID); err != nil {
		t.Fatal(err)
	}

	unset := enum.PaymentUnset
	if _, err := f.svc.UpdateSelection(ctx, f.sessionID, &SelectionInput{PaymentMethod: &unset}); err != nil {
		t.Fatal(err)
	}

	_, err := f.svc.Review(ctx, f.sessionID)
	if err == nil {
		t.Fatal("expected an error without a payment method")
	}
	if !strings.Contains(err.Error(), "payment method") {
		t.Errorf("error = %q, want the payment-method message", err.Error())
	}

	view, _ := f.svc.GetSession(f.sessionID)
	if view.State != enum.StateCheckout {
		t.Errorf("state = %v, want checkout after failed gate", view.State)
	}
}

func TestCheckoutReviewRejectsMidReviewCartEdit(t *testing.T) {
	soda := &entity.Product{ID: uuid.New(), Name: "Soda", Code: "S", UnitPrice: 1000, Quantity: 10}
	customer := &entity.Customer{ID: uuid.New(), Name: "Jane", CreditLimit: 10000}
	f := newCheckoutFixture(t, 0, []*entity.Product{soda}, []*entity.Customer{customer})
	ctx := context.Background()

	f.mustAdd(t, soda.ID)
	if _, err := f.svc.Proceed(f.sessionID); err != nil {
		t.Fatal(err)
	}

	credit := enum.PaymentCredit
	due := time.Now().AddDate(0, 1, 0)
	if _, err := f.svc.UpdateSelection(ctx, f.sessionID, &SelectionInput{
		PaymentMethod: &credit,
		CustomerID:    &customer.ID,
		CreditDueDate: &due,
	}); err != nil {
		t.Fatal(err)
	}

	// Empty the cart while the gate's customer lookup is in flight; edits
	// are still legal in the checkout state, but the gate must not freeze
	// a cart it never evaluated.
	f.customers.beforeGet = func() {
		f.customers.beforeGet = nil
		if _, err := f.svc.ClearCart(f.sessionID); err != nil {
			t.Errorf("ClearCart failed: %v", err)
		}
	}

	_, err := f.svc.Review(ctx, f.sessionID)
	if err == nil {
		t.Fatal("expected the review to be rejected after a mid-review cart edit")
	}
	if !strings.Contains(err.Error(), "cart changed") {
		t.Errorf("error = %q, want the cart-changed message", err.Error())
	}

	view, _ := f.svc.GetSession(f.sessionID)
	if view.State != enum.StateCheckout {
		t.Errorf("state = %v, want checkout after a rejected review", view.State)
	}
	if len(view.Lines) != 0 {
		t.Error("the mid-review clear should have taken effect")
	}
}

func TestCheckoutCreditGateMessagesAreDistinct(t *testing.T) {
	soda := &entity.Product{ID: uuid.New(), Name: "Soda", Code: "S", UnitPrice: 1000, Quantity: 10}
	customer := &entity.Customer{ID: uuid.New(), Name: "Jane", CreditLimit: 500}
	f := newCheckoutFixture(t, 0, []*entity.Product{soda}, []*entity.Customer{customer})
	ctx := context.Background()

	f.mustAdd(t, soda.ID)
	if _, err := f.svc.Proceed(f.sessionID); err != nil {
		t.Fatal(err)
	}

	credit := enum.PaymentCredit
	if _, err := f.svc.UpdateSelection(ctx, f.sessionID, &SelectionInput{PaymentMethod: &credit}); err != nil {
		t.Fatal(err)
	}

	// No customer attached
	_, err := f.svc.Review(ctx, f.sessionID)
	if err == nil || !strings.Contains(err.Error(), "registered customer") {
		t.Errorf("no-customer error = %v, want the registered-customer message", err)
	}

	// Customer attached but no due date
	if _, err := f.svc.AttachCustomer(ctx, f.sessionID, customer.ID); err != nil {
		t.Fatal(err)
	}
	_, err = f.svc.Review(ctx, f.sessionID)
	if err == nil || !strings.Contains(err.Error(), "due date") {
		t.Errorf("no-due-date error = %v, want the due-date message", err)
	}

	// Due date set but the total exceeds the limit
	due := time.Now().AddDate(0, 0, 14)
	if _, err := f.svc.UpdateSelection(ctx, f.sessionID, &SelectionInput{CreditDueDate: &due}); err != nil {
		t.Fatal(err)
	}
	_, err = f.svc.Review(ctx, f.sessionID)
	if err == nil || !strings.Contains(err.Error(), "Credit limit") {
		t.Errorf("limit error = %v, want the credit-limit message", err)
	}

	// Each failure leaves the session on the checkout step
	view, _ := f.svc.GetSession(f.sessionID)
	if view.State != enum.StateCheckout {
		t.Errorf("state = %v, want checkout", view.State)
	}
}

func TestCheckoutCreditAtExactLimitSucceeds(t *testing.T) {
	soda := &entity.Product{ID: uuid.New(), Name: "Soda", Code: "S", UnitPrice: 1000, Quantity: 10}
	customer := &entity.Customer{ID: uuid.New(), Name: "Jane", CreditLimit: 1000}
	f := newCheckoutFixture(t, 0, []*entity.Product{soda}, []*entity.Customer{customer})
	ctx := context.Background()

	f.mustAdd(t, soda.ID)
	if _, err := f.svc.Proceed(f.sessionID); err != nil {
		t.Fatal(err)
	}

	credit := enum.PaymentCredit
	due := time.Now().AddDate(0, 0, 14)
	if _, err := f.svc.UpdateSelection(ctx, f.sessionID, &SelectionInput{
		PaymentMethod: &credit,
		CustomerID:    &customer.ID,
		CreditDueDate: &due,
	}); err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.Review(ctx, f.sessionID); err != nil {
		t.Fatalf("Review failed at exact limit: %v", err)
	}
	view, err := f.svc.Confirm(ctx, f.sessionID)
	if err != nil {
		t.Fatalf("Confirm failed: %v", err)
	}
	if view.State != enum.StateCompleted {
		t.Errorf("state = %v, want completed", view.State)
	}
	if got := f.customers.credit(customer.ID); got != 1000 {
		t.Errorf("credit = %d, want 1000", got)
	}
}

func TestCheckoutCartFrozenAtConfirmation(t *testing.T) {
	soda := &entity.Product{ID: uuid.New(), Name: "Soda", Code: "S", UnitPrice: 1000, Quantity: 10}
	f := newCheckoutFixture(t, 0, []*entity.Product{soda}, nil)
	ctx := context.Background()

	f.mustAdd(t, soda.ID)
	if _, err := f.svc.Proceed(f.sessionID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Review(ctx, f.sessionID); err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.AddItem(ctx, f.sessionID, soda.ID); err == nil {
		t.Error("cart edits must be rejected at the confirmation step")
	}

	// Back unfreezes
	if _, err := f.svc.Back(f.sessionID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.AddItem(ctx, f.sessionID, soda.ID); err != nil {
		t.Errorf("cart edits should work again after Back: %v", err)
	}
}

func TestCheckoutFailureKeepsCartAndRetrySucceeds(t *testing.T) {
	soda := &entity.Product{ID: uuid.New(), Name: "Soda", Code: "S", UnitPrice: 1000, Quantity: 10}
	f := newCheckoutFixture(t, 0, []*entity.Product{soda}, nil)
	ctx := context.Background()

	f.mustAdd(t, soda.ID)
	if _, err := f.svc.Proceed(f.sessionID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Review(ctx, f.sessionID); err != nil {
		t.Fatal(err)
	}

	f.sales.createErr = errors.New("backend down")
	_, err := f.svc.Confirm(ctx, f.sessionID)
	if err == nil {
		t.Fatal("expected the submission to fail")
	}
	if apperror.KindOf(err) != apperror.KindServer {
		t.Errorf("kind = %v, want server", apperror.KindOf(err))
	}

	view, _ := f.svc.GetSession(f.sessionID)
	if view.State != enum.StateFailed {
		t.Fatalf("state = %v, want failed", view.State)
	}
	if len(view.Lines) != 1 {
		t.Error("cart must survive a failed submission")
	}
	if view.LastError == nil {
		t.Error("failed session should carry the classified error")
	}

	// Retry directly from the failed state
	f.sales.createErr = nil
	view, err = f.svc.Confirm(ctx, f.sessionID)
	if err != nil {
		t.Fatalf("retry Confirm failed: %v", err)
	}
	if view.State != enum.StateCompleted {
		t.Errorf("state = %v, want completed after retry", view.State)
	}
	if f.sales.count() != 1 {
		t.Errorf("persisted sales = %d, want exactly 1", f.sales.count())
	}
}

func TestCheckoutConfirmRejectedWhileSubmitting(t *testing.T) {
	soda := &entity.Product{ID: uuid.New(), Name: "Soda", Code: "S", UnitPrice: 1000, Quantity: 10}
	f := newCheckoutFixture(t, 0, []*entity.Product{soda}, nil)
	ctx := context.Background()

	f.mustAdd(t, soda.ID)
	if _, err := f.svc.Proceed(f.sessionID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Review(ctx, f.sessionID); err != nil {
		t.Fatal(err)
	}

	entered := make(chan struct{})
	release := make(chan struct{})
	f.sales.beforeCreate = func() {
		close(entered)
		<-release
	}

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := f.svc.Confirm(ctx, f.sessionID); err != nil {
			t.Errorf("first Confirm failed: %v", err)
		}
	}()

	<-entered
	if _, err := f.svc.Confirm(ctx, f.sessionID); err == nil {
		t.Error("second Confirm while submitting must be rejected")
	} else if apperror.KindOf(err) != apperror.KindConflict {
		t.Errorf("kind = %v, want conflict", apperror.KindOf(err))
	}
	close(release)
	wg.Wait()
}

func TestCheckoutResetDuringSubmitDiscardsResult(t *testing.T) {
	soda := &entity.Product{ID: uuid.New(), Name: "Soda", Code: "S", UnitPrice: 1000, Quantity: 10}
	f := newCheckoutFixture(t, 0, []*entity.Product{soda}, nil)
	ctx := context.Background()

	f.mustAdd(t, soda.ID)
	if _, err := f.svc.Proceed(f.sessionID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Review(ctx, f.sessionID); err != nil {
		t.Fatal(err)
	}

	entered := make(chan struct{})
	release := make(chan struct{})
	f.sales.beforeCreate = func() {
		close(entered)
		<-release
	}

	confirmDone := make(chan error, 1)
	go func() {
		_, err := f.svc.Confirm(ctx, f.sessionID)
		confirmDone <- err
	}()

	<-entered
	if _, err := f.svc.Reset(f.sessionID); err != nil {
		t.Fatalf("Reset failed: %v", err)
	}
	close(release)

	err := <-confirmDone
	if err == nil {
		t.Fatal("a confirm whose session was reset must not report success")
	}
	if apperror.KindOf(err) != apperror.KindConflict {
		t.Errorf("kind = %v, want conflict", apperror.KindOf(err))
	}

	// The fresh session is untouched by the orphaned result...
	view, _ := f.svc.GetSession(f.sessionID)
	if view.State != enum.StateCart {
		t.Errorf("state = %v, want cart", view.State)
	}
	if len(view.Lines) != 0 {
		t.Error("fresh session must have an empty cart")
	}
	if view.LastSale != nil {
		t.Error("fresh session must not carry the orphaned sale")
	}
	// ...but the sale itself was committed and stays visible in history.
	if f.sales.count() != 1 {
		t.Errorf("persisted sales = %d, want 1", f.sales.count())
	}
}

func TestCheckoutResetStartsClean(t *testing.T) {
	soda := &entity.Product{ID: uuid.New(), Name: "Soda", Code: "S", UnitPrice: 1000, Quantity: 10}
	customer := &entity.Customer{ID: uuid.New(), Name: "Jane", CreditLimit: 10000}
	f := newCheckoutFixture(t, 0, []*entity.Product{soda}, []*entity.Customer{customer})
	ctx := context.Background()

	f.mustAdd(t, soda.ID)
	credit := enum.PaymentCredit
	if _, err := f.svc.UpdateSelection(ctx, f.sessionID, &SelectionInput{
		PaymentMethod: &credit,
		CustomerID:    &customer.ID,
	}); err != nil {
		t.Fatal(err)
	}

	view, err := f.svc.Reset(f.sessionID)
	if err != nil {
		t.Fatal(err)
	}
	if view.State != enum.StateCart {
		t.Errorf("state = %v, want cart", view.State)
	}
	if len(view.Lines) != 0 {
		t.Error("reset must empty the cart")
	}
	if view.Selection.PaymentMethod != enum.PaymentCash || view.Selection.CustomerID != nil {
		t.Error("reset must restore the default selection")
	}
}

func TestCheckoutAttachCustomerPreservesCartAndMethod(t *testing.T) {
	soda := &entity.Product{ID: uuid.New(), Name: "Soda", Code: "S", UnitPrice: 1000, Quantity: 10}
	customer := &entity.Customer{ID: uuid.New(), Name: "Jane", CreditLimit: 10000}
	f := newCheckoutFixture(t, 0, []*entity.Product{soda}, []*entity.Customer{customer})
	ctx := context.Background()

	f.mustAdd(t, soda.ID)
	if _, err := f.svc.Proceed(f.sessionID); err != nil {
		t.Fatal(err)
	}
	credit := enum.PaymentCredit
	if _, err := f.svc.UpdateSelection(ctx, f.sessionID, &SelectionInput{PaymentMethod: &credit}); err != nil {
		t.Fatal(err)
	}

	view, err := f.svc.AttachCustomer(ctx, f.sessionID, customer.ID)
	if err != nil {
		t.Fatalf("AttachCustomer failed: %v", err)
	}
	if view.Selection.CustomerID == nil || *view.Selection.CustomerID != customer.ID {
		t.Error("customer should be attached")
	}
	if view.Selection.PaymentMethod != enum.PaymentCredit {
		t.Error("payment method must survive customer attachment")
	}
	if len(view.Lines) != 1 {
		t.Error("cart must survive customer attachment")
	}
}

func TestCheckoutStockWarningSurfacedOnce(t *testing.T) {
	milk := &entity.Product{ID: uuid.New(), Name: "Milk", Code: "M", UnitPrice: 150, Quantity: 5}
	f := newCheckoutFixture(t, 0, []*entity.Product{milk}, nil)
	ctx := context.Background()

	f.mustAdd(t, milk.ID)

	view, err := f.svc.UpdateQuantity(ctx, f.sessionID, milk.ID, 9)
	if err != nil {
		t.Fatal(err)
	}
	if view.StockWarning == nil {
		t.Fatal("expected a stock warning")
	}
	if view.Lines[0].Quantity != 5 {
		t.Errorf("quantity = %d, want clamped to 5", view.Lines[0].Quantity)
	}

	view, err = f.svc.UpdateQuantity(ctx, f.sessionID, milk.ID, 9)
	if err != nil {
		t.Fatal(err)
	}
	if view.StockWarning != nil {
		t.Error("identical repeated out-of-range input must not re-warn")
	}
}

func TestCheckoutUnknownSession(t *testing.T) {
	f := newCheckoutFixture(t, 0, nil, nil)

	_, err := f.svc.GetSession(uuid.New())
	if err == nil {
		t.Fatal("expected an error for an unknown session")
	}
	appErr := apperror.GetAppError(err)
	if appErr.Code != 404 {
		t.Errorf("code = %d, want 404", appErr.Code)
	}
}

func TestCheckoutTaxAppliedToDraft(t *testing.T) {
	soda := &entity.Product{ID: uuid.New(), Name: "Soda", Code: "S", UnitPrice: 1000, Quantity: 10}
	f := newCheckoutFixture(t, 1600, []*entity.Product{soda}, nil)
	ctx := context.Background()

	f.mustAdd(t, soda.ID)
	view, _ := f.svc.GetSession(f.sessionID)
	if view.SubTotal != 10.00 || view.Tax != 1.60 || view.Total != 11.60 {
		t.Errorf("totals = %v/%v/%v, want 10.00/1.60/11.60", view.SubTotal, view.Tax, view.Total)
	}

	if _, err := f.svc.Proceed(f.sessionID); err != nil {
		t.Fatal(err)
	}
	if _, err := f.svc.Review(ctx, f.sessionID); err != nil {
		t.Fatal(err)
	}
	confirmed, err := f.svc.Confirm(ctx, f.sessionID)
	if err != nil {
		t.Fatal(err)
	}
	if confirmed.LastSale.SubTotal != 1000 || confirmed.LastSale.Tax != 160 || confirmed.LastSale.Total != 1160 {
		t.Errorf("sale cents = %d/%d/%d, want 1000/160/1160",
			confirmed.LastSale.SubTotal, confirmed.LastSale.Tax, confirmed.LastSale.Total)
	}
}
