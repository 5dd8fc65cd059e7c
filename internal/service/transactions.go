package service

import (
	"context"
	"fmt"
	"math"
	"time"

	"finance-tracker/internal/apperrors"
	"finance-tracker/internal/models"
	"finance-tracker/internal/pubsub"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CreateTransactionInput holds the fields of a new transaction.
type CreateTransactionInput struct {
	Description string
	PaymentType string
	Category    string
	Amount      float64
	Location    string
	Date        string
}

// UpdateTransactionInput holds a partial update; nil fields keep their
// current value.
type UpdateTransactionInput struct {
	TransactionID primitive.ObjectID
	Description   *string
	PaymentType   *string
	Category      *string
	Amount        *float64
	Location      *string
	Date          *string
}

// CreateTransaction validates and stores a new transaction for the owner,
// then publishes a created event. The event is best-effort: the write is
// durable even if no subscriber sees it.
func (s *Service) CreateTransaction(ctx context.Context, ownerID primitive.ObjectID, input CreateTransactionInput) (*models.Transaction, error) {
	category, err := models.ParseCategory(input.Category)
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	paymentType, err := models.ParsePaymentType(input.PaymentType)
	if err != nil {
		return nil, apperrors.Validation(err.Error())
	}
	amount, err := parseAmount(input.Amount)
	if err != nil {
		return nil, err
	}
	date, err := parseDate(input.Date)
	if err != nil {
		return nil, err
	}

	tx := &models.Transaction{
		UserID:      ownerID,
		Description: input.Description,
		Amount:      amount,
		Category:    category,
		PaymentType: paymentType,
		Location:    input.Location,
		Date:        date,
	}

	if err := s.stores.Transactions.Create(ctx, tx); err != nil {
		return nil, err
	}

	s.bus.Publish(pubsub.TopicTransactionCreated, tx)
	s.log.Infof("Transaction created for user %s: %s %s", ownerID.Hex(), tx.Category, tx.Amount)
	return tx, nil
}

// UpdateTransaction applies a partial update to a transaction the caller owns.
func (s *Service) UpdateTransaction(ctx context.Context, ownerID primitive.ObjectID, input UpdateTransactionInput) (*models.Transaction, error) {
	tx, err := s.stores.Transactions.FindByID(ctx, input.TransactionID)
	if err != nil {
		return nil, err
	}
	if tx.UserID != ownerID {
		return nil, apperrors.ErrNotOwner
	}

	if input.Description != nil {
		tx.Description = *input.Description
	}
	if input.Category != nil {
		category, err := models.ParseCategory(*input.Category)
		if err != nil {
			return nil, apperrors.Validation(err.Error())
		}
		tx.Category = category
	}
	if input.PaymentType != nil {
		paymentType, err := models.ParsePaymentType(*input.PaymentType)
		if err != nil {
			return nil, apperrors.Validation(err.Error())
		}
		tx.PaymentType = paymentType
	}
	if input.Amount != nil {
		amount, err := parseAmount(*input.Amount)
		if err != nil {
			return nil, err
		}
		tx.Amount = amount
	}
	if input.Location != nil {
		tx.Location = *input.Location
	}
	if input.Date != nil {
		date, err := parseDate(*input.Date)
		if err != nil {
			return nil, err
		}
		tx.Date = date
	}

	if err := s.stores.Transactions.Update(ctx, tx); err != nil {
		return nil, err
	}
	return tx, nil
}

// DeleteTransaction removes a transaction the caller owns and publishes a
// deleted event. The failed ownership check leaves the transaction untouched.
func (s *Service) DeleteTransaction(ctx context.Context, ownerID, transactionID primitive.ObjectID) (*models.Transaction, error) {
	tx, err := s.stores.Transactions.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.UserID != ownerID {
		return nil, apperrors.ErrNotOwner
	}

	if err := s.stores.Transactions.Delete(ctx, transactionID); err != nil {
		return nil, err
	}

	s.bus.Publish(pubsub.TopicTransactionDeleted, tx)
	s.log.Infof("Transaction deleted for user %s: %s", ownerID.Hex(), transactionID.Hex())
	return tx, nil
}

// GetTransaction returns a transaction the caller owns.
func (s *Service) GetTransaction(ctx context.Context, ownerID, transactionID primitive.ObjectID) (*models.Transaction, error) {
	tx, err := s.stores.Transactions.FindByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if tx.UserID != ownerID {
		return nil, apperrors.ErrNotOwner
	}
	return tx, nil
}

// ListTransactions returns the caller's transactions in insertion order.
func (s *Service) ListTransactions(ctx context.Context, ownerID primitive.ObjectID) ([]models.Transaction, error) {
	return s.stores.Transactions.ListByUser(ctx, ownerID)
}

// CategoryStatistics groups the caller's transactions by category and sums
// the amounts. Categories without transactions are omitted, and the result
// keeps first-seen category order. Recomputed on every call; nothing is
// denormalized.
func (s *Service) CategoryStatistics(ctx context.Context, ownerID primitive.ObjectID) ([]models.CategoryStats, error) {
	transactions, err := s.stores.Transactions.ListByUser(ctx, ownerID)
	if err != nil {
		return nil, err
	}

	totals := make(map[models.Category]decimal.Decimal)
	var order []models.Category
	for _, tx := range transactions {
		if _, seen := totals[tx.Category]; !seen {
			order = append(order, tx.Category)
		}
		totals[tx.Category] = totals[tx.Category].Add(tx.Amount)
	}

	stats := make([]models.CategoryStats, 0, len(order))
	for _, category := range order {
		stats = append(stats, models.CategoryStats{
			Category:    category,
			TotalAmount: totals[category],
		})
	}
	return stats, nil
}

func parseAmount(v float64) (decimal.Decimal, error) {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return decimal.Decimal{}, apperrors.Validation("amount must be a number")
	}
	if v < 0 {
		return decimal.Decimal{}, apperrors.Validation("amount must not be negative")
	}
	return decimal.NewFromFloat(v), nil
}

// parseDate accepts a bare date or an RFC3339 timestamp. An empty value
// means now.
func parseDate(s string) (time.Time, error) {
	if s == "" {
		return time.Now(), nil
	}
	for _, layout := range []string{"2006-01-02", time.RFC3339} {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, apperrors.Validation(fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
}
