package request

// AddItemRequest adds one unit of a product to the session cart
type AddItemRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
}

// UpdateQuantityRequest sets the quantity for a cart line. Zero or negative
// removes the line.
type UpdateQuantityRequest struct {
	ProductID string `json:"product_id" binding:"required,uuid"`
	Quantity  int    `json:"quantity"`
}

// SelectionRequest updates the payment choices for a session. Omitted fields
// are left unchanged; clear_customer switches back to a walk-in sale.
type SelectionRequest struct {
	PaymentMethod *string `json:"payment_method" binding:"omitempty,oneof=cash credit"`
	CustomerID    *string `json:"customer_id" binding:"omitempty,uuid"`
	ClearCustomer bool    `json:"clear_customer"`
	WalkInName    *string `json:"walk_in_name"`
	// CreditDueDate uses the YYYY-MM-DD layout.
	CreditDueDate *string `json:"credit_due_date"`
}

// AttachCustomerRequest links a customer (typically just registered) to the
// session without touching the cart or payment method.
type AttachCustomerRequest struct {
	CustomerID string `json:"customer_id" binding:"required,uuid"`
}

// ReceiptRequest selects the receipt layout; empty means the configured
// default.
type ReceiptRequest struct {
	Layout string `form:"layout" json:"layout" binding:"omitempty,oneof=thermal-strip full-page"`
}
