package models

import "github.com/shopspring/decimal"

// CategoryStats represents the summed amount for one transaction category
type CategoryStats struct {
	Category    Category        `json:"category"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}
