package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/dmitrijs2005/checkpay/internal/netx"
)

type LoginResponse struct {
	AccessToken string    `json:"access_token"`
	UserID      string    `json:"user_id"`
	Username    string    `json:"username"`
	ExpiresAt   time.Time `json:"expires_at"`
}

type CreatePaymentRequest struct {
	BusinessName     string `json:"businessName"`
	QuantitySold     int64  `json:"quantitySold"`
	CheckImageBase64 string `json:"checkImageBase64"`
}

type Payment struct {
	ID            string    `json:"id"`
	UserID        string    `json:"userId"`
	OwnerUsername string    `json:"ownerUsername"`
	BusinessName  string    `json:"businessName"`
	QuantitySold  int64     `json:"quantitySold"`
	Timestamp     time.Time `json:"timestamp"`
}

type Health struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type HTTPClient struct {
	baseURL string
	http    *http.Client
}

func NewHTTPClient(baseURL string, hc *http.Client) *HTTPClient {
	if hc == nil {
		hc = &http.Client{Timeout: 30 * time.Second}
	}
	return &HTTPClient{baseURL: strings.TrimRight(baseURL, "/"), http: hc}
}

func (c *HTTPClient) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	var out LoginResponse
	in := map[string]string{"username": username, "password": password}
	if err := c.do(ctx, http.MethodPost, "/api/login", "", in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) CreatePayment(ctx context.Context, token string, in CreatePaymentRequest) (*Payment, error) {
	var out Payment
	if err := c.do(ctx, http.MethodPost, "/api/payments", token, in, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListPayments fetches the caller's payments, newest first. limit <= 0 lets
// the server pick its default.
func (c *HTTPClient) ListPayments(ctx context.Context, token string, limit int) ([]Payment, error) {
	path := "/api/payments"
	if limit > 0 {
		path += "?" + url.Values{"limit": {strconv.Itoa(limit)}}.Encode()
	}
	var out []Payment
	if err := c.do(ctx, http.MethodGet, path, token, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *HTTPClient) Health(ctx context.Context) (*Health, error) {
	var out Health
	if err := c.do(ctx, http.MethodGet, "/api/health", "", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *HTTPClient) do(ctx context.Context, method, path, token string, in, out any) error {
	err := netx.DoJSON(ctx, c.http, method, c.baseURL+path, token, in, out)
	if err == nil {
		return nil
	}

	var se *netx.StatusError
	if !errors.As(err, &se) {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	switch {
	case se.StatusCode == http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", ErrUnauthorized, se.Message)
	case se.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%w: %s", ErrBadRequest, se.Message)
	case se.StatusCode >= 500:
		return fmt.Errorf("%w: %v", ErrUnavailable, se)
	default:
		return se
	}
}
