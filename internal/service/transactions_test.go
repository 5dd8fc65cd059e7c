package service

import (
	"context"
	"testing"
	"time"

	"finance-tracker/internal/apperrors"
	"finance-tracker/internal/models"
	"finance-tracker/internal/pubsub"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

func createTx(t *testing.T, svc *Service, owner primitive.ObjectID, category string, amount float64) *models.Transaction {
	t.Helper()
	tx, err := svc.CreateTransaction(context.Background(), owner, CreateTransactionInput{
		Description: "test",
		PaymentType: "cash",
		Category:    category,
		Amount:      amount,
		Date:        "2024-03-15",
	})
	require.NoError(t, err)
	return tx
}

func TestCreateTransaction(t *testing.T) {
	svc, _, _ := newTestService(t)
	owner := primitive.NewObjectID()

	tx, err := svc.CreateTransaction(context.Background(), owner, CreateTransactionInput{
		Description: "Groceries",
		PaymentType: "card",
		Category:    "expense",
		Amount:      42.5,
		Location:    "Berlin",
		Date:        "2024-03-15",
	})
	require.NoError(t, err)
	assert.False(t, tx.ID.IsZero())
	assert.Equal(t, owner, tx.UserID)
	assert.Equal(t, models.CategoryExpense, tx.Category)
	assert.True(t, tx.Amount.Equal(decimal.NewFromFloat(42.5)))
	assert.Equal(t, time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC), tx.Date)
}

func TestCreateTransactionValidation(t *testing.T) {
	svc, _, _ := newTestService(t)
	owner := primitive.NewObjectID()
	ctx := context.Background()

	cases := []struct {
		name  string
		input CreateTransactionInput
	}{
		{"unknown category", CreateTransactionInput{Description: "x", PaymentType: "cash", Category: "rent", Amount: 10}},
		{"unknown payment type", CreateTransactionInput{Description: "x", PaymentType: "crypto", Category: "expense", Amount: 10}},
		{"negative amount", CreateTransactionInput{Description: "x", PaymentType: "cash", Category: "expense", Amount: -10}},
		{"bad date", CreateTransactionInput{Description: "x", PaymentType: "cash", Category: "expense", Amount: 10, Date: "15/03/2024"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateTransaction(ctx, owner, tc.input)
			assert.True(t, apperrors.IsValidation(err), "expected validation error, got %v", err)
		})
	}
}

func TestUpdateTransactionThenReadBack(t *testing.T) {
	svc, _, _ := newTestService(t)
	owner := primitive.NewObjectID()
	tx := createTx(t, svc, owner, "expense", 10)

	amount := 99.99
	updated, err := svc.UpdateTransaction(context.Background(), owner, UpdateTransactionInput{
		TransactionID: tx.ID,
		Amount:        &amount,
	})
	require.NoError(t, err)
	assert.True(t, updated.Amount.Equal(decimal.NewFromFloat(99.99)))

	got, err := svc.GetTransaction(context.Background(), owner, tx.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(decimal.NewFromFloat(99.99)))
	assert.Equal(t, tx.Description, got.Description, "untouched fields keep their value")
}

func TestDeleteTransactionOwnership(t *testing.T) {
	svc, _, _ := newTestService(t)
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	tx := createTx(t, svc, owner, "expense", 10)

	_, err := svc.DeleteTransaction(context.Background(), stranger, tx.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotOwner)

	// The failed delete must leave the transaction in place.
	got, err := svc.GetTransaction(context.Background(), owner, tx.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(tx.Amount))

	_, err = svc.DeleteTransaction(context.Background(), owner, tx.ID)
	require.NoError(t, err)
	_, err = svc.GetTransaction(context.Background(), owner, tx.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotFound)
}

func TestUpdateTransactionOwnership(t *testing.T) {
	svc, _, _ := newTestService(t)
	owner := primitive.NewObjectID()
	stranger := primitive.NewObjectID()
	tx := createTx(t, svc, owner, "expense", 10)

	desc := "hijacked"
	_, err := svc.UpdateTransaction(context.Background(), stranger, UpdateTransactionInput{
		TransactionID: tx.ID,
		Description:   &desc,
	})
	assert.ErrorIs(t, err, apperrors.ErrNotOwner)

	got, err := svc.GetTransaction(context.Background(), owner, tx.ID)
	require.NoError(t, err)
	assert.Equal(t, "test", got.Description)
}

func TestListTransactionsScopedToOwner(t *testing.T) {
	svc, _, _ := newTestService(t)
	alice := primitive.NewObjectID()
	bob := primitive.NewObjectID()
	createTx(t, svc, alice, "expense", 10)
	createTx(t, svc, bob, "saving", 20)
	createTx(t, svc, alice, "investment", 30)

	list, err := svc.ListTransactions(context.Background(), alice)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, models.CategoryExpense, list[0].Category)
	assert.Equal(t, models.CategoryInvestment, list[1].Category)
}

func TestCategoryStatistics(t *testing.T) {
	svc, _, _ := newTestService(t)
	owner := primitive.NewObjectID()
	createTx(t, svc, owner, "investment", 100)
	createTx(t, svc, owner, "investment", 50)
	createTx(t, svc, owner, "expense", 30)

	stats, err := svc.CategoryStatistics(context.Background(), owner)
	require.NoError(t, err)
	require.Len(t, stats, 2, "categories without transactions are omitted")

	assert.Equal(t, models.CategoryInvestment, stats[0].Category)
	assert.True(t, stats[0].TotalAmount.Equal(decimal.NewFromInt(150)))
	assert.Equal(t, models.CategoryExpense, stats[1].Category)
	assert.True(t, stats[1].TotalAmount.Equal(decimal.NewFromInt(30)))
}

func TestCategoryStatisticsEmpty(t *testing.T) {
	svc, _, _ := newTestService(t)

	stats, err := svc.CategoryStatistics(context.Background(), primitive.NewObjectID())
	require.NoError(t, err)
	assert.Empty(t, stats)
}

func TestCreatePublishesEventToEarlierSubscribersOnly(t *testing.T) {
	svc, _, bus := newTestService(t)
	owner := primitive.NewObjectID()

	before := bus.Subscribe(pubsub.TopicTransactionCreated, 4)
	defer before.Unsubscribe()

	tx := createTx(t, svc, owner, "expense", 10)

	after := bus.Subscribe(pubsub.TopicTransactionCreated, 4)
	defer after.Unsubscribe()

	select {
	case event := <-before.C:
		got, ok := event.(*models.Transaction)
		require.True(t, ok)
		assert.Equal(t, tx.ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("subscriber connected before the mutation did not receive the event")
	}

	select {
	case <-before.C:
		t.Fatal("received more than one event for a single mutation")
	case <-after.C:
		t.Fatal("subscriber connected after the mutation must not see it")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestDeletePublishesDeletedEvent(t *testing.T) {
	svc, _, bus := newTestService(t)
	owner := primitive.NewObjectID()
	tx := createTx(t, svc, owner, "saving", 10)

	sub := bus.Subscribe(pubsub.TopicTransactionDeleted, 4)
	defer sub.Unsubscribe()

	_, err := svc.DeleteTransaction(context.Background(), owner, tx.ID)
	require.NoError(t, err)

	select {
	case event := <-sub.C:
		got, ok := event.(*models.Transaction)
		require.True(t, ok)
		assert.Equal(t, tx.ID, got.ID)
	case <-time.After(time.Second):
		t.Fatal("no deleted event published")
	}
}
