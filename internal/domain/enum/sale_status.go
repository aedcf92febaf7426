package enum

import (
	"database/sql/driver"
	"encoding/json"
	"strings"
)

// SaleStatus represents the settlement status of a persisted sale
type SaleStatus int

const (
	SaleStatusPaid        SaleStatus = 0
	SaleStatusOutstanding SaleStatus = 1
	SaleStatusVoid        SaleStatus = 2
)

func (s SaleStatus) String() string {
	return [...]string{"Paid", "Outstanding", "Void"}[s]
}

func (s SaleStatus) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.String())
}

func (s *SaleStatus) UnmarshalJSON(data []byte) error {
	var str string
	if err := json.Unmarshal(data, &str); err != nil {
		var i int
		if err := json.Unmarshal(data, &i); err != nil {
			return err
		}
		*s = SaleStatus(i)
		return nil
	}
	switch str {
	case "Paid":
		*s = SaleStatusPaid
	case "Outstanding":
		*s = SaleStatusOutstanding
	case "Void":
		*s = SaleStatusVoid
	}
	return nil
}

// ParseSaleStatus converts a query-string value into a SaleStatus.
func ParseSaleStatus(s string) (SaleStatus, bool) {
	switch strings.ToLower(s) {
	case "paid":
		return SaleStatusPaid, true
	case "outstanding":
		return SaleStatusOutstanding, true
	case "void":
		return SaleStatusVoid, true
	}
	return SaleStatusPaid, false
}

func (s SaleStatus) Value() (driver.Value, error) {
	return int64(s), nil
}

func (s *SaleStatus) Scan(value interface{}) error {
	if value == nil {
		*s = SaleStatusPaid
		return nil
	}
	switch v := value.(type) {
	case int64:
		*s = SaleStatus(v)
	case int:
		*s = SaleStatus(v)
	}
	return nil
}
