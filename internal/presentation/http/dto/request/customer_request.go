package request

// CreateCustomerRequest represents the create customer payload
type CreateCustomerRequest struct {
	Name        string  `json:"name" binding:"required"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	CreditLimit float64 `json:"credit_limit" binding:"gte=0"`
}

// UpdateCustomerRequest represents the update customer payload. Omitted
// fields are left unchanged.
type UpdateCustomerRequest struct {
	Name        *string  `json:"name"`
	Phone       *string  `json:"phone"`
	Address     *string  `json:"address"`
	CreditLimit *float64 `json:"credit_limit" binding:"omitempty,gte=0"`
}
