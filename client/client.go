// Package client is a Go SDK for the finance tracker API. It issues GraphQL
// queries and mutations over HTTP, carries the session cookie between calls,
// and exposes live transaction events over the graphql-ws subprotocol.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"strings"
)

// CategoryLabels maps canonical category values to the labels shown to
// users. Applied here, at the presentation boundary.
var CategoryLabels = map[string]string{
	"investment": "Income",
	"expense":    "Expense",
	"saving":     "Budget",
}

// User mirrors the API's User type.
type User struct {
	ID             string `json:"id"`
	Username       string `json:"username"`
	Name           string `json:"name"`
	ProfilePicture string `json:"profilePicture"`
}

// Transaction mirrors the API's Transaction type.
type Transaction struct {
	ID          string  `json:"id"`
	UserID      string  `json:"userId"`
	Description string  `json:"description"`
	PaymentType string  `json:"paymentType"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Location    *string `json:"location"`
	Date        string  `json:"date"`
}

// CategoryLabel returns the display label for the transaction's category.
func (t Transaction) CategoryLabel() string {
	if label, ok := CategoryLabels[t.Category]; ok {
		return label
	}
	return t.Category
}

// CategoryStatistics mirrors the API's CategoryStatistics type.
type CategoryStatistics struct {
	Category    string  `json:"category"`
	TotalAmount float64 `json:"totalAmount"`
}

// GraphQLErrors is the error collection of a failed operation.
type GraphQLErrors []struct {
	Message string `json:"message"`
}

func (e GraphQLErrors) Error() string {
	messages := make([]string, 0, len(e))
	for _, ge := range e {
		messages = append(messages, ge.Message)
	}
	return "graphql: " + strings.Join(messages, "; ")
}

// Client talks to a finance tracker server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New creates a client for the server at baseURL, e.g. "http://localhost:4000".
func New(baseURL string) (*Client, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create cookie jar: %w", err)
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Jar: jar},
	}, nil
}

type graphqlRequest struct {
	Query     string                 `json:"query"`
	Variables map[string]interface{} `json:"variables,omitempty"`
}

type graphqlResponse struct {
	Data   json.RawMessage `json:"data"`
	Errors GraphQLErrors   `json:"errors"`
}

// Do executes a raw GraphQL operation and decodes the data payload into out.
func (c *Client) Do(ctx context.Context, query string, variables map[string]interface{}, out interface{}) error {
	payload, err := json.Marshal(graphqlRequest{Query: query, Variables: variables})
	if err != nil {
		return fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/graphql", bytes.NewBuffer(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var gr graphqlResponse
	if err := json.NewDecoder(resp.Body).Decode(&gr); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	if len(gr.Errors) > 0 {
		return gr.Errors
	}
	if out != nil {
		if err := json.Unmarshal(gr.Data, out); err != nil {
			return fmt.Errorf("failed to decode data: %w", err)
		}
	}
	return nil
}

// SignUpInput holds registration fields.
type SignUpInput struct {
	Username string `json:"username"`
	Name     string `json:"name"`
	Password string `json:"password"`
	Gender   string `json:"gender"`
	Email    string `json:"email,omitempty"`
}

// SignUp registers a user; the session cookie lands in the client's jar.
func (c *Client) SignUp(ctx context.Context, input SignUpInput) (*User, error) {
	var data struct {
		SignUp User `json:"signUp"`
	}
	err := c.Do(ctx, `mutation SignUp($input: SignUpInput!) {
		signUp(input: $input) { id username name profilePicture }
	}`, map[string]interface{}{"input": input}, &data)
	if err != nil {
		return nil, err
	}
	return &data.SignUp, nil
}

// Login authenticates and stores the session cookie.
func (c *Client) Login(ctx context.Context, username, password string) (*User, error) {
	var data struct {
		Login User `json:"login"`
	}
	err := c.Do(ctx, `mutation Login($input: LoginInput!) {
		login(input: $input) { id username name profilePicture }
	}`, map[string]interface{}{"input": map[string]string{
		"username": username,
		"password": password,
	}}, &data)
	if err != nil {
		return nil, err
	}
	return &data.Login, nil
}

// Logout destroys the current session.
func (c *Client) Logout(ctx context.Context) error {
	return c.Do(ctx, `mutation Logout { logout { message } }`, nil, nil)
}

// AuthUser returns the session user, or nil when not logged in.
func (c *Client) AuthUser(ctx context.Context) (*User, error) {
	var data struct {
		AuthUser *User `json:"authUser"`
	}
	err := c.Do(ctx, `query GetAuthenticatedUser {
		authUser { id username name profilePicture }
	}`, nil, &data)
	if err != nil {
		return nil, err
	}
	return data.AuthUser, nil
}

const transactionFields = `id userId description paymentType category amount location date`

// Transactions returns the session user's transaction history.
func (c *Client) Transactions(ctx context.Context) ([]Transaction, error) {
	var data struct {
		Transactions []Transaction `json:"transactions"`
	}
	query := fmt.Sprintf(`query GetTransactions { transactions { %s } }`, transactionFields)
	if err := c.Do(ctx, query, nil, &data); err != nil {
		return nil, err
	}
	return data.Transactions, nil
}

// Transaction returns one transaction by id.
func (c *Client) Transaction(ctx context.Context, id string) (*Transaction, error) {
	var data struct {
		Transaction Transaction `json:"transaction"`
	}
	query := fmt.Sprintf(`query GetTransaction($id: ID!) { transaction(transactionId: $id) { %s } }`, transactionFields)
	if err := c.Do(ctx, query, map[string]interface{}{"id": id}, &data); err != nil {
		return nil, err
	}
	return &data.Transaction, nil
}

// CreateTransactionInput holds the fields of a new transaction.
type CreateTransactionInput struct {
	Description string  `json:"description"`
	PaymentType string  `json:"paymentType"`
	Category    string  `json:"category"`
	Amount      float64 `json:"amount"`
	Location    string  `json:"location,omitempty"`
	Date        string  `json:"date,omitempty"`
}

// CreateTransaction records a new transaction.
func (c *Client) CreateTransaction(ctx context.Context, input CreateTransactionInput) (*Transaction, error) {
	var data struct {
		CreateTransaction Transaction `json:"createTransaction"`
	}
	query := fmt.Sprintf(`mutation CreateTransaction($input: CreateTransactionInput!) {
		createTransaction(input: $input) { %s }
	}`, transactionFields)
	if err := c.Do(ctx, query, map[string]interface{}{"input": input}, &data); err != nil {
		return nil, err
	}
	return &data.CreateTransaction, nil
}

// UpdateTransactionInput holds a partial update keyed by transaction id.
type UpdateTransactionInput struct {
	TransactionID string   `json:"transactionId"`
	Description   *string  `json:"description,omitempty"`
	PaymentType   *string  `json:"paymentType,omitempty"`
	Category      *string  `json:"category,omitempty"`
	Amount        *float64 `json:"amount,omitempty"`
	Location      *string  `json:"location,omitempty"`
	Date          *string  `json:"date,omitempty"`
}

// UpdateTransaction applies a partial update.
func (c *Client) UpdateTransaction(ctx context.Context, input UpdateTransactionInput) (*Transaction, error) {
	var data struct {
		UpdateTransaction Transaction `json:"updateTransaction"`
	}
	query := fmt.Sprintf(`mutation UpdateTransaction($input: UpdateTransactionInput!) {
		updateTransaction(input: $input) { %s }
	}`, transactionFields)
	if err := c.Do(ctx, query, map[string]interface{}{"input": input}, &data); err != nil {
		return nil, err
	}
	return &data.UpdateTransaction, nil
}

// DeleteTransaction removes a transaction and returns its last state.
func (c *Client) DeleteTransaction(ctx context.Context, id string) (*Transaction, error) {
	var data struct {
		DeleteTransaction Transaction `json:"deleteTransaction"`
	}
	query := fmt.Sprintf(`mutation DeleteTransaction($id: ID!) {
		deleteTransaction(transactionId: $id) { %s }
	}`, transactionFields)
	if err := c.Do(ctx, query, map[string]interface{}{"id": id}, &data); err != nil {
		return nil, err
	}
	return &data.DeleteTransaction, nil
}

// CategoryStatistics returns per-category totals.
func (c *Client) CategoryStatistics(ctx context.Context) ([]CategoryStatistics, error) {
	var data struct {
		CategoryStatistics []CategoryStatistics `json:"categoryStatistics"`
	}
	err := c.Do(ctx, `query GetTransactionStatistics {
		categoryStatistics { category totalAmount }
	}`, nil, &data)
	if err != nil {
		return nil, err
	}
	return data.CategoryStatistics, nil
}

// GenerateAdvice calls the advice side-channel with the three aggregates.
func (c *Client) GenerateAdvice(ctx context.Context, investment, expense, saving float64) (string, error) {
	payload, err := json.Marshal(map[string]float64{
		"investment": investment,
		"expense":    expense,
		"saving":     saving,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/api/generate", bytes.NewBuffer(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	var body struct {
		AIResponse string `json:"aiResponse"`
		Error      string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return "", fmt.Errorf("failed to decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("advice request failed: %s", body.Error)
	}
	return body.AIResponse, nil
}
