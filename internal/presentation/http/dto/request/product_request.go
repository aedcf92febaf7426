package request

// CreateProductRequest represents the create product payload
type CreateProductRequest struct {
	Name          string  `json:"name" binding:"required"`
	Code          string  `json:"code"`
	UnitPrice     float64 `json:"unit_price" binding:"gte=0"`
	Quantity      int     `json:"quantity" binding:"gte=0"`
	QuantityAlert int     `json:"quantity_alert" binding:"gte=0"`
}
