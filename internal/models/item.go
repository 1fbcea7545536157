package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
)

// ItemData is a single claimed item. Items are immutable once part of a claim.
type ItemData struct {
	ItemName string  `json:"item_name"`
	Category string  `json:"category"`
	Price    float64 `json:"price"`
	Quantity int     `json:"quantity"`
	URL      *string `json:"url,omitempty"`
}

// TotalValue is price times quantity.
func (i ItemData) TotalValue() float64 {
	return i.Price * float64(i.Quantity)
}

// ItemList stores claim items as a jsonb column.
type ItemList []ItemData

// Value implements the driver.Valuer interface
func (l ItemList) Value() (driver.Value, error) {
	return json.Marshal(l)
}

// Scan implements the sql.Scanner interface
func (l *ItemList) Scan(value interface{}) error {
	bytes, ok := value.([]byte)
	if !ok {
		return errors.New("itemlist: expected []byte from database")
	}
	return json.Unmarshal(bytes, l)
}
