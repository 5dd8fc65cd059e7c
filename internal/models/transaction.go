package models

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Category classifies a transaction's financial role.
type Category string

const (
	CategoryInvestment Category = "investment"
	CategoryExpense    Category = "expense"
	CategorySaving     Category = "saving"
)

// categoryLabels maps canonical categories to the labels shown to users.
// The mapping is applied only at the presentation boundary (client SDK,
// statement export); the API always returns canonical values.
var categoryLabels = map[Category]string{
	CategoryInvestment: "Income",
	CategoryExpense:    "Expense",
	CategorySaving:     "Budget",
}

// ParseCategory validates a raw category value.
func ParseCategory(s string) (Category, error) {
	c := Category(s)
	if _, ok := categoryLabels[c]; !ok {
		return "", fmt.Errorf("category must be 'investment', 'expense' or 'saving'")
	}
	return c, nil
}

// Label returns the display label for the category.
func (c Category) Label() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return string(c)
}

// PaymentType is how a transaction was paid.
type PaymentType string

const (
	PaymentCard PaymentType = "card"
	PaymentCash PaymentType = "cash"
)

// ParsePaymentType validates a raw payment type value.
func ParsePaymentType(s string) (PaymentType, error) {
	switch p := PaymentType(s); p {
	case PaymentCard, PaymentCash:
		return p, nil
	default:
		return "", fmt.Errorf("paymentType must be 'card' or 'cash'")
	}
}

// Transaction represents a financial transaction owned by a user
type Transaction struct {
	ID          primitive.ObjectID `json:"id"`
	UserID      primitive.ObjectID `json:"user_id"`
	Description string             `json:"description"`
	Amount      decimal.Decimal    `json:"amount"`
	Category    Category           `json:"category"`
	PaymentType PaymentType        `json:"payment_type"`
	Location    string             `json:"location,omitempty"`
	Date        time.Time          `json:"date"`
}
