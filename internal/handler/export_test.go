package handler

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"finance-tracker/internal/auth"
	"finance-tracker/internal/config"
	"finance-tracker/internal/models"
	"finance-tracker/internal/pubsub"
	"finance-tracker/internal/repository"
	"finance-tracker/internal/service"

	"github.com/beevik/etree"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportStatementRequiresAuth(t *testing.T) {
	h := newTestHandler(t, &fakeAdvisor{})

	rec := httptest.NewRecorder()
	h.ExportStatement(rec, httptest.NewRequest(http.MethodGet, "/api/export", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestExportStatement(t *testing.T) {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	stores := repository.NewMemoryStores()
	svc := service.NewService(stores, pubsub.NewBus(), nil, logger, &config.Config{})
	h := NewHandler(svc, &fakeAdvisor{}, logger)

	user := &models.User{Username: "alice", Name: "Alice"}
	require.NoError(t, stores.Users.Create(context.Background(), user))

	_, err := svc.CreateTransaction(context.Background(), user.ID, service.CreateTransactionInput{
		Description: "Salary",
		PaymentType: "card",
		Category:    "investment",
		Amount:      100,
		Date:        "2024-03-01",
	})
	require.NoError(t, err)
	_, err = svc.CreateTransaction(context.Background(), user.ID, service.CreateTransactionInput{
		Description: "Groceries",
		PaymentType: "cash",
		Category:    "expense",
		Amount:      30,
		Location:    "Berlin",
		Date:        "2024-03-02",
	})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/api/export", nil)
	req = req.WithContext(auth.WithUser(req.Context(), user))
	rec := httptest.NewRecorder()
	h.ExportStatement(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/xml", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "statement.xml")

	doc := etree.NewDocument()
	require.NoError(t, doc.ReadFromBytes(rec.Body.Bytes()))

	statement := doc.SelectElement("statement")
	require.NotNil(t, statement)
	assert.Equal(t, "alice", statement.SelectAttrValue("username", ""))

	totals := statement.SelectElement("totals").SelectElements("category")
	require.Len(t, totals, 2)
	assert.Equal(t, "investment", totals[0].SelectAttrValue("name", ""))
	assert.Equal(t, "Income", totals[0].SelectAttrValue("label", ""))
	assert.Equal(t, "100", totals[0].Text())
	assert.Equal(t, "expense", totals[1].SelectAttrValue("name", ""))
	assert.Equal(t, "Expense", totals[1].SelectAttrValue("label", ""))
	assert.Equal(t, "30", totals[1].Text())

	transactions := statement.SelectElement("transactions").SelectElements("transaction")
	require.Len(t, transactions, 2)
	assert.Equal(t, "Salary", transactions[0].SelectElement("description").Text())
	assert.Nil(t, transactions[0].SelectElement("location"))
	assert.Equal(t, "Berlin", transactions[1].SelectElement("location").Text())
}
