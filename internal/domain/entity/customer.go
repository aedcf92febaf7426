package entity

import (
	"encoding/json"
	"math"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Customer is a registered buyer who may purchase on credit. CurrentCredit is
// the outstanding balance owed; CreditLimit is the ceiling the balance may
// never exceed. Both are maintained by the sale submission and payment paths.
type Customer struct {
	ID            uuid.UUID      `gorm:"type:uuid;primary_key" json:"id"`
	Name          string         `gorm:"size:255;not null" json:"name"`
	Phone         *string        `gorm:"size:50" json:"phone,omitempty"`
	Address       *string        `gorm:"type:text" json:"address,omitempty"`
	CreditLimit   int64          `gorm:"default:0" json:"-"` // Stored in cents
	CurrentCredit int64          `gorm:"default:0" json:"-"` // Stored in cents
	CreatedAt     time.Time      `json:"created_at"`
	UpdatedAt     time.Time      `json:"updated_at"`
	DeletedAt     gorm.DeletedAt `gorm:"index" json:"-"`

	// Relationships
	Sales []Sale `gorm:"foreignKey:CustomerID" json:"-"`
}

// MarshalJSON converts credit amounts from cents to decimal for API responses
func (c Customer) MarshalJSON() ([]byte, error) {
	type Alias Customer
	return json.Marshal(&struct {
		Alias
		CreditLimit     float64 `json:"credit_limit"`
		CurrentCredit   float64 `json:"current_credit"`
		AvailableCredit float64 `json:"available_credit"`
	}{
		Alias:           Alias(c),
		CreditLimit:     float64(c.CreditLimit) / 100,
		CurrentCredit:   float64(c.CurrentCredit) / 100,
		AvailableCredit: float64(c.AvailableCredit()) / 100,
	})
}

// UnmarshalJSON restores the cents amounts from the decimal wire form
func (c *Customer) UnmarshalJSON(data []byte) error {
	type Alias Customer
	aux := &struct {
		*Alias
		CreditLimit   float64 `json:"credit_limit"`
		CurrentCredit float64 `json:"current_credit"`
	}{Alias: (*Alias)(c)}
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	c.CreditLimit = int64(math.Round(aux.CreditLimit * 100))
	c.CurrentCredit = int64(math.Round(aux.CurrentCredit * 100))
	return nil
}

// BeforeCreate generates a UUID before creating a new customer
func (c *Customer) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}

// TableName returns the table name for the Customer model
func (Customer) TableName() string {
	return "customers"
}

// AvailableCredit returns the headroom left under the credit limit, in cents.
// Never negative even if the balance has somehow overshot the limit.
func (c *Customer) AvailableCredit() int64 {
	avail := c.CreditLimit - c.CurrentCredit
	if avail < 0 {
		return 0
	}
	return avail
}
