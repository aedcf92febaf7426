package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jkorir/sellpoint-api/internal/application/service"
	"github.com/jkorir/sellpoint-api/internal/domain/entity"
	"github.com/jkorir/sellpoint-api/internal/domain/enum"
	"github.com/jkorir/sellpoint-api/internal/presentation/http/dto/request"
	"github.com/jkorir/sellpoint-api/internal/presentation/http/dto/response"
)

// CheckoutHandler exposes the checkout session workflow over HTTP. All state
// lives in the checkout service; the handler only translates requests.
type CheckoutHandler struct {
	checkoutService *service.CheckoutService
	receiptService  *service.ReceiptService
}

// NewCheckoutHandler creates a new checkout handler
func NewCheckoutHandler(checkoutService *service.CheckoutService, receiptService *service.ReceiptService) *CheckoutHandler {
	return &CheckoutHandler{
		checkoutService: checkoutService,
		receiptService:  receiptService,
	}
}

// Open starts a new checkout session for the authenticated cashier
func (h *CheckoutHandler) Open(c *gin.Context) {
	userID := GetUserID(c)
	if userID == nil {
		response.Unauthorized(c, "User not authenticated")
		return
	}
	view := h.checkoutService.OpenSession(*userID)
	response.Created(c, "Checkout session opened", view)
}

// Get returns the current session snapshot
func (h *CheckoutHandler) Get(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	view, err := h.checkoutService.GetSession(sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Session retrieved", view)
}

// AddItem adds one unit of a product to the cart
func (h *CheckoutHandler) AddItem(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req request.AddItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid item payload")
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	view, err := h.checkoutService.AddItem(c.Request.Context(), sessionID, productID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item added", view)
}

// UpdateQuantity sets a cart line's quantity
func (h *CheckoutHandler) UpdateQuantity(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req request.UpdateQuantityRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid quantity payload")
		return
	}
	productID, err := uuid.Parse(req.ProductID)
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	view, err := h.checkoutService.UpdateQuantity(c.Request.Context(), sessionID, productID, req.Quantity)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Quantity updated", view)
}

// RemoveItem deletes a cart line
func (h *CheckoutHandler) RemoveItem(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	productID, err := uuid.Parse(c.Param("productId"))
	if err != nil {
		response.BadRequest(c, "Invalid product ID")
		return
	}

	view, err := h.checkoutService.RemoveItem(sessionID, productID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Item removed", view)
}

// ClearCart empties the cart
func (h *CheckoutHandler) ClearCart(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	view, err := h.checkoutService.ClearCart(sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Cart cleared", view)
}

// UpdateSelection applies payment choices
func (h *CheckoutHandler) UpdateSelection(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req request.SelectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid selection payload")
		return
	}

	input := &service.SelectionInput{
		ClearCustomer: req.ClearCustomer,
		WalkInName:    req.WalkInName,
	}
	if req.PaymentMethod != nil {
		method, err := enum.ParsePaymentMethod(*req.PaymentMethod)
		if err != nil {
			response.BadRequest(c, "Unknown payment method")
			return
		}
		input.PaymentMethod = &method
	}
	if req.CustomerID != nil {
		customerID, err := uuid.Parse(*req.CustomerID)
		if err != nil {
			response.BadRequest(c, "Invalid customer ID")
			return
		}
		input.CustomerID = &customerID
	}
	if req.CreditDueDate != nil {
		due, err := time.Parse("2006-01-02", *req.CreditDueDate)
		if err != nil {
			response.BadRequest(c, "Invalid due date; use YYYY-MM-DD")
			return
		}
		input.CreditDueDate = &due
	}

	view, err := h.checkoutService.UpdateSelection(c.Request.Context(), sessionID, input)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Selection updated", view)
}

// AttachCustomer links a customer to the in-progress sale without touching
// the cart or the payment method
func (h *CheckoutHandler) AttachCustomer(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req request.AttachCustomerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "Invalid customer payload")
		return
	}
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		response.BadRequest(c, "Invalid customer ID")
		return
	}

	view, err := h.checkoutService.AttachCustomer(c.Request.Context(), sessionID, customerID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Customer attached", view)
}

// Proceed moves the session from the cart step to checkout
func (h *CheckoutHandler) Proceed(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	view, err := h.checkoutService.Proceed(sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Proceeded to checkout", view)
}

// Review validates the selection and shows the confirmation summary
func (h *CheckoutHandler) Review(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	view, err := h.checkoutService.Review(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Ready to confirm", view)
}

// Back returns to the checkout step from confirmation or failure
func (h *CheckoutHandler) Back(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	view, err := h.checkoutService.Back(sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Returned to checkout", view)
}

// Confirm submits the sale
func (h *CheckoutHandler) Confirm(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	view, err := h.checkoutService.Confirm(c.Request.Context(), sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Sale completed", view)
}

// Reset starts a new sale on the same session
func (h *CheckoutHandler) Reset(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	view, err := h.checkoutService.Reset(sessionID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "New sale started", view)
}

// Close discards the session entirely, e.g. when a terminal signs off
func (h *CheckoutHandler) Close(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	h.checkoutService.CloseSession(sessionID)
	response.OK(c, "Session closed", nil)
}

// Receipt composes the receipt for the last completed sale on the session
func (h *CheckoutHandler) Receipt(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req request.ReceiptRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid receipt parameters")
		return
	}

	doc, err := h.receiptService.Compose(sessionID, entity.ReceiptLayout(req.Layout))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Receipt composed", doc)
}

// PrintReceipt sends the session's last receipt to the configured printer
func (h *CheckoutHandler) PrintReceipt(c *gin.Context) {
	sessionID, ok := h.sessionID(c)
	if !ok {
		return
	}
	var req request.ReceiptRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		response.BadRequest(c, "Invalid receipt parameters")
		return
	}

	if err := h.receiptService.Print(sessionID, entity.ReceiptLayout(req.Layout)); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, "Receipt sent to printer", nil)
}

func (h *CheckoutHandler) sessionID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "Invalid session ID")
		return uuid.Nil, false
	}
	return id, true
}
