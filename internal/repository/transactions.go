package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"finance-tracker/internal/apperrors"
	"finance-tracker/internal/models"

	"github.com/shopspring/decimal"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// transactionDoc is the stored form of a transaction. Amounts live in the
// collection as Decimal128 and are converted at this boundary.
type transactionDoc struct {
	ID          primitive.ObjectID   `bson:"_id,omitempty"`
	UserID      primitive.ObjectID   `bson:"userId"`
	Description string               `bson:"description"`
	Amount      primitive.Decimal128 `bson:"amount"`
	Category    string               `bson:"category"`
	PaymentType string               `bson:"paymentType"`
	Location    string               `bson:"location,omitempty"`
	Date        time.Time            `bson:"date"`
}

func toDoc(tx *models.Transaction) (*transactionDoc, error) {
	amount, err := primitive.ParseDecimal128(tx.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("failed to encode amount: %w", err)
	}
	return &transactionDoc{
		ID:          tx.ID,
		UserID:      tx.UserID,
		Description: tx.Description,
		Amount:      amount,
		Category:    string(tx.Category),
		PaymentType: string(tx.PaymentType),
		Location:    tx.Location,
		Date:        tx.Date,
	}, nil
}

func fromDoc(doc *transactionDoc) (*models.Transaction, error) {
	amount, err := decimal.NewFromString(doc.Amount.String())
	if err != nil {
		return nil, fmt.Errorf("failed to decode amount: %w", err)
	}
	return &models.Transaction{
		ID:          doc.ID,
		UserID:      doc.UserID,
		Description: doc.Description,
		Amount:      amount,
		Category:    models.Category(doc.Category),
		PaymentType: models.PaymentType(doc.PaymentType),
		Location:    doc.Location,
		Date:        doc.Date,
	}, nil
}

type mongoTransactions struct {
	coll *mongo.Collection
}

func (r *mongoTransactions) ensureIndexes(ctx context.Context) error {
	_, err := r.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "userId", Value: 1}},
	})
	return err
}

// Create inserts a new transaction document.
func (r *mongoTransactions) Create(ctx context.Context, tx *models.Transaction) error {
	if tx.ID.IsZero() {
		tx.ID = primitive.NewObjectID()
	}
	doc, err := toDoc(tx)
	if err != nil {
		return err
	}
	if _, err := r.coll.InsertOne(ctx, doc); err != nil {
		return fmt.Errorf("failed to create transaction: %w", err)
	}
	return nil
}

func (r *mongoTransactions) FindByID(ctx context.Context, id primitive.ObjectID) (*models.Transaction, error) {
	doc := &transactionDoc{}
	err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find transaction: %w", err)
	}
	return fromDoc(doc)
}

// ListByUser returns the user's transactions in insertion order.
func (r *mongoTransactions) ListByUser(ctx context.Context, userID primitive.ObjectID) ([]models.Transaction, error) {
	opts := options.Find().SetSort(bson.D{{Key: "_id", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"userId": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer cursor.Close(ctx)

	var transactions []models.Transaction
	for cursor.Next(ctx) {
		doc := &transactionDoc{}
		if err := cursor.Decode(doc); err != nil {
			return nil, fmt.Errorf("failed to decode transaction: %w", err)
		}
		tx, err := fromDoc(doc)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, *tx)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	return transactions, nil
}

// Update replaces the mutable fields of an existing transaction.
func (r *mongoTransactions) Update(ctx context.Context, tx *models.Transaction) error {
	doc, err := toDoc(tx)
	if err != nil {
		return err
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"_id": tx.ID}, bson.M{"$set": bson.M{
		"description": doc.Description,
		"amount":      doc.Amount,
		"category":    doc.Category,
		"paymentType": doc.PaymentType,
		"location":    doc.Location,
		"date":        doc.Date,
	}})
	if err != nil {
		return fmt.Errorf("failed to update transaction: %w", err)
	}
	if result.MatchedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}

func (r *mongoTransactions) Delete(ctx context.Context, id primitive.ObjectID) error {
	result, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete transaction: %w", err)
	}
	if result.DeletedCount == 0 {
		return apperrors.ErrNotFound
	}
	return nil
}
