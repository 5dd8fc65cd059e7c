package client

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"
)

// graphql-ws message types (subscriptions transport).
const (
	msgConnectionInit      = "connection_init"
	msgConnectionAck       = "connection_ack"
	msgConnectionKeepAlive = "ka"
	msgStart               = "start"
	msgStop                = "stop"
	msgData                = "data"
	msgError               = "error"
	msgComplete            = "complete"
	msgConnectionTerminate = "connection_terminate"
)

type wsMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

// SubscribeTransactionCreated streams transactions the session user creates.
// The channel closes when the context is canceled, the server completes the
// subscription, or the connection drops. Events published while no
// subscription was active are never delivered.
func (c *Client) SubscribeTransactionCreated(ctx context.Context) (<-chan Transaction, error) {
	query := fmt.Sprintf(`subscription OnTransactionCreated { transactionCreated { %s } }`, transactionFields)
	return c.subscribe(ctx, "transactionCreated", query)
}

// SubscribeTransactionDeleted streams transactions the session user deletes.
func (c *Client) SubscribeTransactionDeleted(ctx context.Context) (<-chan Transaction, error) {
	query := fmt.Sprintf(`subscription OnTransactionDeleted { transactionDeleted { %s } }`, transactionFields)
	return c.subscribe(ctx, "transactionDeleted", query)
}

func (c *Client) subscribe(ctx context.Context, field, query string) (<-chan Transaction, error) {
	wsURL := strings.Replace(c.baseURL, "http", "ws", 1) + "/graphql"
	dialer := websocket.Dialer{
		Jar:          c.http.Jar,
		Subprotocols: []string{"graphql-ws"},
	}

	conn, _, err := dialer.DialContext(ctx, wsURL, http.Header{})
	if err != nil {
		return nil, fmt.Errorf("failed to dial subscription endpoint: %w", err)
	}

	if err := conn.WriteJSON(wsMessage{Type: msgConnectionInit}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to init connection: %w", err)
	}
	if err := awaitAck(conn); err != nil {
		conn.Close()
		return nil, err
	}

	startPayload, err := json.Marshal(graphqlRequest{Query: query})
	if err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to encode subscription: %w", err)
	}
	if err := conn.WriteJSON(wsMessage{ID: "1", Type: msgStart, Payload: startPayload}); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to start subscription: %w", err)
	}

	out := make(chan Transaction)
	go func() {
		defer close(out)
		defer conn.Close()
		for {
			var msg wsMessage
			if err := conn.ReadJSON(&msg); err != nil {
				return
			}
			switch msg.Type {
			case msgData:
				var payload struct {
					Data   map[string]Transaction `json:"data"`
					Errors GraphQLErrors          `json:"errors"`
				}
				if err := json.Unmarshal(msg.Payload, &payload); err != nil {
					continue
				}
				tx, ok := payload.Data[field]
				if !ok {
					continue
				}
				select {
				case out <- tx:
				case <-ctx.Done():
					return
				}
			case msgComplete, msgError:
				return
			}
		}
	}()

	// Tear the connection down when the caller is done.
	go func() {
		<-ctx.Done()
		conn.WriteJSON(wsMessage{ID: "1", Type: msgStop})
		conn.WriteJSON(wsMessage{Type: msgConnectionTerminate})
		conn.Close()
	}()

	return out, nil
}

func awaitAck(conn *websocket.Conn) error {
	for {
		var msg wsMessage
		if err := conn.ReadJSON(&msg); err != nil {
			return fmt.Errorf("failed to read ack: %w", err)
		}
		switch msg.Type {
		case msgConnectionAck:
			return nil
		case msgConnectionKeepAlive:
			continue
		case msgError:
			return fmt.Errorf("connection rejected: %s", string(msg.Payload))
		}
	}
}
