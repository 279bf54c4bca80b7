package models

import "fmt"

// Product represents a single catalog record. Records are written once during
// seeding and never updated.
type Product struct {
	ID       int64   `json:"id" gorm:"primaryKey;autoIncrement:false" validate:"gte=0"`
	Code     string  `json:"code" gorm:"type:varchar(16);not null;index:idx_product_code" validate:"required,min=6,max=16"`
	Title    string  `json:"title" gorm:"type:varchar(255);not null;index:idx_product_title" validate:"required,max=255"`
	Barcode  string  `json:"barcode" gorm:"type:char(12);not null;index:idx_product_barcode" validate:"required,len=12,number"`
	Supplier string  `json:"supplier" gorm:"type:varchar(100);not null" validate:"required,max=100"`
	Stock    float64 `json:"stock" validate:"gte=0"`
	IsActive bool    `json:"is_active"`
}

// TableName pins the table name regardless of the naming strategy in use.
func (Product) TableName() string {
	return "products"
}

// SearchField selects which columns a substring search looks at.
type SearchField string

const (
	SearchFieldAny     SearchField = "any"
	SearchFieldCode    SearchField = "code"
	SearchFieldTitle   SearchField = "title"
	SearchFieldBarcode SearchField = "barcode"
)

// ParseSearchField converts user input into a SearchField. An empty string
// selects all three fields.
func ParseSearchField(s string) (SearchField, error) {
	switch SearchField(s) {
	case "", SearchFieldAny:
		return SearchFieldAny, nil
	case SearchFieldCode, SearchFieldTitle, SearchFieldBarcode:
		return SearchField(s), nil
	}
	return "", fmt.Errorf("unknown search field %q", s)
}
