package storefront

import (
	"context"
	"errors"
	"testing"

	"click-collect/internal/apperr"
	"click-collect/internal/dto/request"
	"click-collect/internal/session"
	"click-collect/internal/store/catalog"
	"click-collect/internal/store/persist"
	"click-collect/pkg/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockAPI struct {
	mock.Mock
}

func (m *MockAPI) SignIn(ctx context.Context, req *request.LoginRequest) (*session.Identity, *session.Session, error) {
	args := m.Called(ctx, req)
	return nil, nil, args.Error(0)
}

func (m *MockAPI) SignUp(ctx context.Context, req *request.SignUpRequest) (*session.Identity, *session.Session, error) {
	args := m.Called(ctx, req)
	return nil, nil, args.Error(0)
}

func (m *MockAPI) SignOut(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockAPI) CurrentUser(ctx context.Context, token string) (*session.Identity, *session.Session, error) {
	args := m.Called(ctx, token)
	return nil, nil, args.Error(0)
}

func (m *MockAPI) FetchProducts(ctx context.Context) ([]catalog.Product, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]catalog.Product), args.Error(1)
}

var (
	shirt = catalog.Product{
		ID: "p1", StoreID: "s1", StoreName: "Store One", Name: "Shirt",
		Price: 20, Colors: []string{"red", "blue"}, Sizes: []string{"M", "L"},
	}
	mug = catalog.Product{ID: "p2", StoreID: "s2", StoreName: "Store Two", Name: "Mug", Price: 8}
)

func newApp(t *testing.T, api *MockAPI) *App {
	t.Helper()
	app, err := New(context.Background(), api, persist.NewMemory(), "cart-storage", zap.NewNop())
	require.NoError(t, err)
	return app
}

func TestAddToCart(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	api.On("FetchProducts", mock.Anything).Return([]catalog.Product{shirt, mug}, nil)
	app := newApp(t, api)
	require.NoError(t, app.SyncCatalog(ctx))

	t.Run("Success", func(t *testing.T) {
		line, err := app.AddToCart(ctx, "p1", "red", "M", 2)
		require.NoError(t, err)
		assert.Equal(t, "s1", line.StoreID)
		assert.Equal(t, "Store One", line.StoreName)
		assert.Equal(t, 2, line.Quantity)
	})

	t.Run("No Options Listed", func(t *testing.T) {
		_, err := app.AddToCart(ctx, "p2", "", "", 1)
		assert.NoError(t, err)
	})

	t.Run("Unknown Product", func(t *testing.T) {
		_, err := app.AddToCart(ctx, "nope", "", "", 1)
		assert.ErrorIs(t, err, apperr.ErrNotFound)
	})

	t.Run("Missing Size", func(t *testing.T) {
		_, err := app.AddToCart(ctx, "p1", "red", "", 1)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("Color Not Offered", func(t *testing.T) {
		_, err := app.AddToCart(ctx, "p1", "green", "M", 1)
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	assert.Equal(t, 3, app.Cart.TotalItems())
}

func TestSyncCatalogClearsUnavailableStores(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	api.On("FetchProducts", mock.Anything).Return([]catalog.Product{shirt, mug}, nil).Once()
	api.On("FetchProducts", mock.Anything).Return([]catalog.Product{shirt}, nil).Once()
	app := newApp(t, api)

	require.NoError(t, app.SyncCatalog(ctx))
	_, err := app.AddToCart(ctx, "p1", "blue", "L", 1)
	require.NoError(t, err)
	_, err = app.AddToCart(ctx, "p2", "", "", 3)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"s1", "s2"}, app.Cart.StoreIDs())

	require.NoError(t, app.SyncCatalog(ctx))
	assert.Equal(t, []string{"s1"}, app.Cart.StoreIDs())
	assert.Equal(t, 1, app.Cart.TotalItems())
	api.AssertExpectations(t)
}

func TestSyncCatalogFetchFailureKeepsCart(t *testing.T) {
	ctx := context.Background()
	api := new(MockAPI)
	api.On("FetchProducts", mock.Anything).Return([]catalog.Product{mug}, nil).Once()
	api.On("FetchProducts", mock.Anything).Return(nil, apperr.Transport("fetch products", errors.New("boom"))).Once()
	app := newApp(t, api)

	require.NoError(t, app.SyncCatalog(ctx))
	_, err := app.AddToCart(ctx, "p2", "", "", 1)
	require.NoError(t, err)

	err = app.SyncCatalog(ctx)
	assert.ErrorIs(t, err, apperr.ErrTransport)
	assert.Equal(t, []string{"s2"}, app.Cart.StoreIDs())
}

func TestCartSurvivesRestart(t *testing.T) {
	ctx := context.Background()
	storage := persist.NewMemory()
	api := new(MockAPI)
	api.On("FetchProducts", mock.Anything).Return([]catalog.Product{mug}, nil)

	first, err := New(ctx, api, storage, "cart-storage", zap.NewNop())
	require.NoError(t, err)
	require.NoError(t, first.SyncCatalog(ctx))
	_, err = first.AddToCart(ctx, "p2", "", "", 4)
	require.NoError(t, err)

	second, err := New(ctx, api, storage, "cart-storage", zap.NewNop())
	require.NoError(t, err)
	assert.Equal(t, 4, second.Cart.TotalItems())
	assert.InDelta(t, 32.0, second.Cart.TotalAmount(), 0.001)
}

func TestOpenStorage(t *testing.T) {
	ctx := context.Background()

	t.Run("Memory", func(t *testing.T) {
		storage, closeFn, err := OpenStorage(ctx, &utils.Config{Cart: utils.CartConfig{Storage: "memory"}}, zap.NewNop())
		require.NoError(t, err)
		defer closeFn()
		assert.IsType(t, &persist.Memory{}, storage)
	})

	t.Run("Unknown Backend", func(t *testing.T) {
		_, _, err := OpenStorage(ctx, &utils.Config{Cart: utils.CartConfig{Storage: "s3"}}, zap.NewNop())
		assert.Error(t, err)
	})
}
