package entity

// ReceiptLayout selects one of the physical receipt formats. The layouts
// differ only in visual density; every monetary figure is copied from the
// finalized sale, never recomputed per layout.
type ReceiptLayout string

const (
	// LayoutThermalStrip targets 58mm thermal paper (32 characters wide).
	LayoutThermalStrip ReceiptLayout = "thermal-strip"
	// LayoutFullPage targets A4/letter-style output (48 characters wide).
	LayoutFullPage ReceiptLayout = "full-page"
)

// Valid reports whether the layout is one of the supported formats.
func (l ReceiptLayout) Valid() bool {
	return l == LayoutThermalStrip || l == LayoutFullPage
}

// ReceiptHeader holds the business letterhead printed at the top of a
// receipt. It comes from configuration, never from ambient global state.
type ReceiptHeader struct {
	StoreName string `json:"store_name"`
	Address   string `json:"address,omitempty"`
	Phone     string `json:"phone,omitempty"`
	TaxPIN    string `json:"tax_pin,omitempty"`
}

// ReceiptItem is a single line item on a receipt.
type ReceiptItem struct {
	Name      string  `json:"name"`
	Quantity  int     `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	Total     float64 `json:"total"`
}

// ReceiptDocument is an ephemeral projection of a completed sale plus the
// business letterhead. It is not a database entity; it is composed at
// render time and handed to an external renderer or thermal printer.
type ReceiptDocument struct {
	Layout        ReceiptLayout `json:"layout"`
	Header        ReceiptHeader `json:"header"`
	InvoiceNo     string        `json:"invoice_no"`
	Date          string        `json:"date"`
	Cashier       string        `json:"cashier,omitempty"`
	Customer      string        `json:"customer,omitempty"`
	PaymentMethod string        `json:"payment_method"`
	CreditDueDate string        `json:"credit_due_date,omitempty"`
	Items         []ReceiptItem `json:"items"`
	SubTotal      float64       `json:"sub_total"`
	Tax           float64       `json:"tax"`
	Total         float64       `json:"total"`
	Paid          float64       `json:"paid"`
	Due           float64       `json:"due"`
	Currency      string        `json:"currency,omitempty"`
}
