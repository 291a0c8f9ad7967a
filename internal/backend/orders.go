package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/Abdelhameed97/bookshare-sub001/internal/domain"
)

const idempotencyKeyHeader = "Idempotency-Key"

// CreateOrder submits an order draft. The backend answers with either a
// bare order object or a one-element list under "data"; both shapes are
// normalized here. CreateOrder is never retried internally.
func (c *Client) CreateOrder(ctx context.Context, draft domain.OrderDraft) (domain.Order, error) {
	var headers map[string]string
	if draft.IdempotencyKey != "" {
		headers = map[string]string{idempotencyKeyHeader: draft.IdempotencyKey}
	}

	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := c.do(ctx, http.MethodPost, "/orders", headers, draft, &envelope); err != nil {
		return domain.Order{}, err
	}
	return decodeOrderPayload(envelope.Data)
}

// decodeOrderPayload accepts an order object or a list of orders and
// yields the first well-formed record.
func decodeOrderPayload(raw json.RawMessage) (domain.Order, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return domain.Order{}, fmt.Errorf("%w: empty order payload", ErrMalformedResponse)
	}

	switch trimmed[0] {
	case '{':
		var order domain.Order
		if err := json.Unmarshal(trimmed, &order); err != nil {
			return domain.Order{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		return order, nil
	case '[':
		var orders []domain.Order
		if err := json.Unmarshal(trimmed, &orders); err != nil {
			return domain.Order{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
		}
		if len(orders) == 0 {
			return domain.Order{}, fmt.Errorf("%w: empty order list", ErrMalformedResponse)
		}
		return orders[0], nil
	default:
		return domain.Order{}, fmt.Errorf("%w: unexpected order payload shape", ErrMalformedResponse)
	}
}

func (c *Client) GetOrder(ctx context.Context, orderID string) (domain.Order, error) {
	var order domain.Order
	if err := c.do(ctx, http.MethodGet, "/orders/"+orderID, nil, nil, &order); err != nil {
		return domain.Order{}, err
	}
	return order, nil
}

// CancelOrder requests cancellation; the backend only honors it while the
// order is still pending.
func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	return c.do(ctx, http.MethodPut, "/orders/"+orderID+"/cancel", nil, nil, nil)
}
