package entity

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
	"github.com/jkorir/sellpoint-api/internal/domain/enum"
	"gorm.io/gorm"
)

// Sale is a finalized, persisted sale record. It is created exactly once per
// confirmed checkout submission and is immutable afterwards except for the
// payment bookkeeping fields (Paid/Due/Status).
type Sale struct {
	ID            uuid.UUID          `gorm:"type:uuid;primary_key" json:"id"`
	UserID        uuid.UUID          `gorm:"type:uuid;not null;index" json:"user_id"`
	CustomerID    *uuid.UUID         `gorm:"type:uuid;index" json:"customer_id,omitempty"`
	InvoiceNo     string             `gorm:"size:100;unique;not null" json:"invoice_no"`
	SaleDate      time.Time          `gorm:"not null" json:"sale_date"`
	Status        enum.SaleStatus    `gorm:"default:0" json:"status"`
	PaymentMethod enum.PaymentMethod `gorm:"default:1" json:"payment_method"`
	IsCredit      bool               `gorm:"default:false" json:"is_credit"`
	CreditDueDate *time.Time         `gorm:"type:date" json:"credit_due_date,omitempty"`
	WalkInName    *string            `gorm:"size:255" json:"walk_in_name,omitempty"`
	TotalItems    int                `gorm:"default:0" json:"total_items"`
	SubTotal      int64              `gorm:"default:0" json:"-"` // Stored in cents
	Tax           int64              `gorm:"default:0" json:"-"` // Stored in cents
	Total         int64              `gorm:"default:0" json:"-"` // Stored in cents
	Paid          int64              `gorm:"default:0" json:"-"` // Stored in cents
	Due           int64              `gorm:"default:0" json:"-"` // Stored in cents
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
	DeletedAt     gorm.DeletedAt     `gorm:"index" json:"-"`

	// Relationships
	User     User       `gorm:"foreignKey:UserID" json:"-"`
	Customer *Customer  `gorm:"foreignKey:CustomerID" json:"customer,omitempty"`
	Items    []SaleItem `gorm:"foreignKey:SaleID" json:"items,omitempty"`
}

// MarshalJSON converts cents amounts to decimals for API responses
func (s Sale) MarshalJSON() ([]byte, error) {
	type Alias Sale
	return json.Marshal(&struct {
		Alias
		SubTotal float64 `json:"sub_total"`
		Tax      float64 `json:"tax"`
		Total    float64 `json:"total"`
		Paid     float64 `json:"paid"`
		Due      float64 `json:"due"`
	}{
		Alias:    Alias(s),
		SubTotal: float64(s.SubTotal) / 100,
		Tax:      float64(s.Tax) / 100,
		Total:    float64(s.Total) / 100,
		Paid:     float64(s.Paid) / 100,
		Due:      float64(s.Due) / 100,
	})
}

// UnmarshalJSON restores the cents amounts from the decimal wire form, so a
// sale survives a round trip through the list cache.
func (s *Sale) UnmarshalJSON(data []byte) error {
	type Alias Sale
	aux := &struct {
		*Alias
		SubTotal float64 `json:"sub_total"`
		Tax      float64 `json:"tax"`
		Total    float64 `json:"total"`
		Paid     float64 `json:"paid"`
		Due      float64 `json:"due"`
	}{Alias: (*Alias)(s)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	s.SubTotal = int64(math.Round(aux.SubTotal * 100))
	s.Tax = int64(math.Round(aux.Tax * 100))
	s.Total = int64(math.Round(aux.Total * 100))
	s.Paid = int64(math.Round(aux.Paid * 100))
	s.Due = int64(math.Round(aux.Due * 100))
	return nil
}

// BeforeCreate generates a UUID before creating a new sale
func (s *Sale) BeforeCreate(tx *gorm.DB) error {
	if s.ID == uuid.Nil {
		s.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Sale model
func (Sale) TableName() string {
	return "sales"
}

// SaleItem is one line of a persisted sale
type SaleItem struct {
	ID        uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	SaleID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"sale_id"`
	ProductID uuid.UUID      `gorm:"type:uuid;not null;index" json:"product_id"`
	Name      string         `gorm:"size:255;not null" json:"name"`
	Quantity  int            `gorm:"not null" json:"quantity"`
	UnitPrice int64          `gorm:"not null" json:"-"` // Stored in cents
	LineTotal int64          `gorm:"not null" json:"-"` // Stored in cents
	CreatedAt time.Time      `json:"created_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Sale    Sale    `gorm:"foreignKey:SaleID" json:"-"`
	Product Product `gorm:"foreignKey:ProductID" json:"-"`
}

// MarshalJSON converts cents amounts to decimals for API responses
func (i SaleItem) MarshalJSON() ([]byte, error) {
	type Alias SaleItem
	return json.Marshal(&struct {
		Alias
		UnitPrice float64 `json:"unit_price"`
		LineTotal float64 `json:"line_total"`
	}{
		Alias:     Alias(i),
		UnitPrice: float64(i.UnitPrice) / 100,
		LineTotal: float64(i.LineTotal) / 100,
	})
}

// UnmarshalJSON restores the cents amounts from the decimal wire form
func (i *SaleItem) UnmarshalJSON(data []byte) error {
	type Alias SaleItem
	aux := &struct {
		*Alias
		UnitPrice float64 `json:"unit_price"`
		LineTotal float64 `json:"line_total"`
	}{Alias: (*Alias)(i)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	i.UnitPrice = int64(math.Round(aux.UnitPrice * 100))
	i.LineTotal = int64(math.Round(aux.LineTotal * 100))
	return nil
}

// BeforeCreate generates a UUID before creating a new sale item
func (i *SaleItem) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the SaleItem model
func (SaleItem) TableName() string {
	return "sale_items"
}
