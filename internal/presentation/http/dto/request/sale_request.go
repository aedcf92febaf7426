package request

// PayDueRequest applies a payment against an outstanding credit sale
type PayDueRequest struct {
	Amount float64 `json:"amount" binding:"required,gt=0"`
}

// ListSalesRequest holds sale history query parameters
type ListSalesRequest struct {
	Page       int    `form:"page"`
	PerPage    int    `form:"per_page"`
	Search     string `form:"search"`
	Status     string `form:"status" binding:"omitempty,oneof=paid outstanding void"`
	CustomerID string `form:"customer_id" binding:"omitempty,uuid"`
	CreditOnly bool   `form:"credit_only"`
	// StartDate and EndDate use the YYYY-MM-DD layout.
	StartDate string `form:"start_date"`
	EndDate   string `form:"end_date"`
}
