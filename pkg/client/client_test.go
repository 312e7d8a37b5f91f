package client_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"click-collect/internal/apperr"
	"click-collect/internal/dto/request"
	"click-collect/internal/dto/response"
	"click-collect/pkg/client"
	"click-collect/pkg/retry"
	"click-collect/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newClient(t *testing.T, h http.Handler) *client.Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return client.New(srv.URL, zap.NewNop(), client.WithRetry(3, retry.LinearBackoff(time.Millisecond)))
}

func TestSignIn(t *testing.T) {
	expires := time.Now().Add(time.Hour).UTC().Truncate(time.Second)

	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/login", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req request.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		if req.Password != "secret-pass" {
			utils.ResponseUnauthorized(w, "invalid credentials")
			return
		}
		utils.ResponseSuccess(w, "Login successful", response.AuthResponse{
			UserID: "u-1", Email: req.Email, Token: "tok", ExpiresAt: expires,
		})
	}))

	identity, sess, err := c.SignIn(context.Background(), &request.LoginRequest{Email: "a@example.com", Password: "secret-pass"})
	require.NoError(t, err)
	assert.Equal(t, "u-1", identity.ID)
	assert.Equal(t, "tok", sess.AccessToken)
	assert.True(t, expires.Equal(sess.ExpiresAt))

	_, _, err = c.SignIn(context.Background(), &request.LoginRequest{Email: "a@example.com", Password: "wrong"})
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		code int
		want error
	}{
		{http.StatusBadRequest, apperr.ErrValidation},
		{http.StatusUnauthorized, apperr.ErrUnauthenticated},
		{http.StatusForbidden, apperr.ErrForbidden},
		{http.StatusNotFound, apperr.ErrNotFound},
		{http.StatusConflict, apperr.ErrEmailTaken},
		{http.StatusBadGateway, apperr.ErrTransport},
	}

	for _, tt := range tests {
		t.Run(strconv.Itoa(tt.code), func(t *testing.T) {
			c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				utils.ResponseJSON(w, tt.code, false, "nope", nil, nil)
			}))

			_, _, err := c.SignUp(context.Background(), &request.SignUpRequest{Email: "a@example.com", Password: "long-enough"})
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCurrentUserRetriesTransportFailures(t *testing.T) {
	var calls atomic.Int32

	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		if calls.Add(1) < 3 {
			utils.ResponseInternalError(w, "Internal server error")
			return
		}
		utils.ResponseSuccess(w, "ok", response.UserResponse{UserID: "u-1", Email: "a@example.com", ExpiresAt: time.Now().Add(time.Hour)})
	}))

	identity, sess, err := c.CurrentUser(context.Background(), "tok")

	require.NoError(t, err)
	assert.Equal(t, "u-1", identity.ID)
	assert.Equal(t, "tok", sess.AccessToken)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCurrentUserDoesNotRetryRejection(t *testing.T) {
	var calls atomic.Int32

	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		utils.ResponseUnauthorized(w, "Invalid or expired session")
	}))

	_, _, err := c.CurrentUser(context.Background(), "tok")

	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
	assert.Equal(t, int32(1), calls.Load())
}

func TestFetchProductsPages(t *testing.T) {
	const total = 130

	c := newClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		page, _ := strconv.Atoi(r.URL.Query().Get("page"))
		perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

		var data []response.ProductResponse
		for i := (page - 1) * perPage; i < min(page*perPage, total); i++ {
			desc := "item " + strconv.Itoa(i)
			data = append(data, response.ProductResponse{ID: strconv.Itoa(i), StoreID: "s1", StoreName: "North Street", Name: "p", Description: &desc, Price: float64(i)})
		}
		utils.ResponseSuccess(w, "success", response.NewPaginatedResponse(data, page, perPage, total))
	}))

	products, err := c.FetchProducts(context.Background())

	require.NoError(t, err)
	require.Len(t, products, total)
	assert.Equal(t, "0", products[0].ID)
	assert.Equal(t, "item 129", products[total-1].Description)
	assert.Equal(t, "North Street", products[total-1].StoreName)
}

func TestUnreachable(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	srv.Close()

	c := client.New(srv.URL, zap.NewNop(), client.WithRetry(2, retry.LinearBackoff(time.Millisecond)))

	_, err := c.FetchProducts(context.Background())
	assert.ErrorIs(t, err, apperr.ErrTransport)
}
