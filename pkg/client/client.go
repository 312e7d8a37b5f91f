// Package client is a typed HTTP client for the marketplace API. It backs
// the client-side stores: it implements authstate.Authenticator and
// catalog.Fetcher.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"click-collect/internal/apperr"
	"click-collect/internal/dto/request"
	"click-collect/internal/dto/response"
	"click-collect/internal/session"
	"click-collect/internal/store/catalog"
	"click-collect/pkg/retry"

	"go.uber.org/zap"
)

const pageSize = 100

type Client struct {
	baseURL string
	http    *http.Client
	retry   retry.RetryConfig
	log     *zap.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

// WithRetry sets how idempotent GETs are retried on transport failures.
func WithRetry(attempts int, backoff retry.Backoff) Option {
	return func(c *Client) {
		c.retry.MaxAttempts = attempts
		c.retry.Backoff = backoff
	}
}

func New(baseURL string, log *zap.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 10 * time.Second},
		retry: retry.RetryConfig{
			MaxAttempts: 3,
			Backoff:     retry.ExponentialBackoff(100 * time.Millisecond),
			ShouldRetry: func(err error) bool { return errors.Is(err, apperr.ErrTransport) },
		},
		log: log.With(zap.String("component", "api_client")),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// envelope mirrors utils.Response with the payload left raw.
type envelope struct {
	Status  bool            `json:"status"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) SignIn(ctx context.Context, req *request.LoginRequest) (*session.Identity, *session.Session, error) {
	var resp response.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/login", "", req, &resp); err != nil {
		return nil, nil, err
	}
	identity, sess := fromAuth(&resp)
	return identity, sess, nil
}

func (c *Client) SignUp(ctx context.Context, req *request.SignUpRequest) (*session.Identity, *session.Session, error) {
	var resp response.AuthResponse
	if err := c.do(ctx, http.MethodPost, "/api/auth/signup", "", req, &resp); err != nil {
		return nil, nil, err
	}
	identity, sess := fromAuth(&resp)
	return identity, sess, nil
}

func (c *Client) SignOut(ctx context.Context, token string) error {
	return c.do(ctx, http.MethodPost, "/api/auth/logout", token, nil, nil)
}

func (c *Client) CurrentUser(ctx context.Context, token string) (*session.Identity, *session.Session, error) {
	resp, err := retry.DoWithResult(ctx, c.retry, func() (response.UserResponse, error) {
		var resp response.UserResponse
		err := c.do(ctx, http.MethodGet, "/api/auth/user", token, nil, &resp)
		return resp, err
	})
	if err != nil {
		return nil, nil, err
	}

	return &session.Identity{ID: resp.UserID, Email: resp.Email},
		&session.Session{UserID: resp.UserID, AccessToken: token, ExpiresAt: resp.ExpiresAt},
		nil
}

// Profile returns the caller's profile, including its role.
func (c *Client) Profile(ctx context.Context, token string) (*response.ProfileResponse, error) {
	return retry.DoWithResult(ctx, c.retry, func() (*response.ProfileResponse, error) {
		var resp response.ProfileResponse
		if err := c.do(ctx, http.MethodGet, "/api/profile", token, nil, &resp); err != nil {
			return nil, err
		}
		return &resp, nil
	})
}

// FetchProducts pages through the whole active catalog.
func (c *Client) FetchProducts(ctx context.Context) ([]catalog.Product, error) {
	var products []catalog.Product
	for page := 1; ; page++ {
		query := url.Values{
			"page":     {strconv.Itoa(page)},
			"per_page": {strconv.Itoa(pageSize)},
		}

		resp, err := retry.DoWithResult(ctx, c.retry, func() (response.PaginatedResponse[response.ProductResponse], error) {
			var resp response.PaginatedResponse[response.ProductResponse]
			err := c.do(ctx, http.MethodGet, "/api/products?"+query.Encode(), "", nil, &resp)
			return resp, err
		})
		if err != nil {
			return nil, err
		}

		for _, p := range resp.Data {
			products = append(products, toProduct(p))
		}
		if page >= resp.Pagination.TotalPages || len(resp.Data) == 0 {
			return products, nil
		}
	}
}

// do sends one request and decodes the envelope's data into out. Network
// failures and 5xx answers are transport failures; 4xx answers map onto the
// apperr taxonomy.
func (c *Client) do(ctx context.Context, method, path, token string, body, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return apperr.Transport(method+" "+path, err)
	}
	defer resp.Body.Close()

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		if resp.StatusCode >= http.StatusInternalServerError {
			return apperr.Transport(method+" "+path, fmt.Errorf("status %d", resp.StatusCode))
		}
		return fmt.Errorf("decode %s %s: %w", method, path, err)
	}

	if resp.StatusCode >= http.StatusInternalServerError {
		return apperr.Transport(method+" "+path, fmt.Errorf("status %d: %s", resp.StatusCode, env.Message))
	}
	if err := statusError(resp.StatusCode, env.Message); err != nil {
		c.log.Debug("API request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.Int("status", resp.StatusCode),
			zap.Error(err))
		return err
	}

	if out == nil || len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode %s %s data: %w", method, path, err)
	}
	return nil
}

func statusError(code int, message string) error {
	switch {
	case code < 400:
		return nil
	case code == http.StatusBadRequest:
		return apperr.Validation("%s", message)
	case code == http.StatusUnauthorized:
		return fmt.Errorf("%s: %w", message, apperr.ErrUnauthenticated)
	case code == http.StatusForbidden:
		return fmt.Errorf("%s: %w", message, apperr.ErrForbidden)
	case code == http.StatusNotFound:
		return fmt.Errorf("%s: %w", message, apperr.ErrNotFound)
	case code == http.StatusConflict:
		return fmt.Errorf("%s: %w", message, apperr.ErrEmailTaken)
	default:
		return fmt.Errorf("unexpected status %d: %s", code, message)
	}
}

func fromAuth(resp *response.AuthResponse) (*session.Identity, *session.Session) {
	return &session.Identity{
			ID:       resp.UserID,
			Email:    resp.Email,
			FullName: resp.FullName,
		}, &session.Session{
			UserID:      resp.UserID,
			AccessToken: resp.Token,
			ExpiresAt:   resp.ExpiresAt,
		}
}

func toProduct(p response.ProductResponse) catalog.Product {
	product := catalog.Product{
		ID:       p.ID,
		StoreID:   p.StoreID,
		StoreName: p.StoreName,
		Name:      p.Name,
		Category:  p.Category,
		Gender:    p.Gender,
		Price:     p.Price,
		Colors:    p.Colors,
		Sizes:     p.Sizes,
	}
	if p.Description != nil {
		product.Description = *p.Description
	}
	if p.ImageURL != nil {
		product.ImageURL = *p.ImageURL
	}
	return product
}
