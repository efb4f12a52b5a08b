// Package orderapi fetches orders from the web application's REST API.
package orderapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/models"
	"github.com/abdulrafium/GreenVerse-Frontend-sub000/internal/patterns"
)

// ErrOrderNotFound is returned when the API has no order with the given id
var ErrOrderNotFound = errors.New("order not found")

// Client reads orders through a circuit breaker
type Client struct {
	http    *resty.Client
	circuit *patterns.CircuitBreakerWrapper
	baseURL string
}

// NewClient creates an order API client for baseURL
func NewClient(baseURL, service string) *Client {
	return &Client{
		http: resty.New().
			SetTimeout(patterns.DefaultTimeout).
			SetRetryCount(0). // the breaker decides, not resty
			SetHeader("Accept", "application/json"),
		circuit: patterns.NewCircuitBreaker("OrderAPI", service),
		baseURL: baseURL,
	}
}

// Circuit exposes the breaker for status reporting
func (c *Client) Circuit() *patterns.CircuitBreakerWrapper {
	return c.circuit
}

// GetOrder loads a single order
func (c *Client) GetOrder(ctx context.Context, id string) (*models.Order, error) {
	return patterns.Call(c.circuit, func() (*models.Order, error) {
		resp, err := c.http.R().
			SetContext(ctx).
			SetPathParam("id", id).
			Get(c.baseURL + "/orders/{id}")
		if err != nil {
			return nil, fmt.Errorf("HTTP error: %w", err)
		}

		if resp.StatusCode() == http.StatusNotFound {
			return nil, patterns.NotCounted(fmt.Errorf("%w: %s", ErrOrderNotFound, id))
		}
		if resp.StatusCode() != http.StatusOK {
			return nil, fmt.Errorf("order API returned status %d: %s", resp.StatusCode(), resp.String())
		}

		var order models.Order
		if err := json.Unmarshal(resp.Body(), &order); err != nil {
			return nil, fmt.Errorf("failed to parse order %s: %w", id, err)
		}
		return &order, nil
	})
}

// GetOrders loads orders one by one, preserving the order of ids. The first
// failure aborts the lookup.
func (c *Client) GetOrders(ctx context.Context, ids []string) ([]*models.Order, error) {
	orders := make([]*models.Order, 0, len(ids))
	for _, id := range ids {
		order, err := c.GetOrder(ctx, id)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	return orders, nil
}
