package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"click-collect/internal/apperr"
	"click-collect/internal/data/entity"
	"click-collect/internal/data/repository"
	"click-collect/internal/dto/request"
	"click-collect/internal/usecase"
	"click-collect/pkg/utils"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateWithProfile(ctx context.Context, user *entity.User, profile *entity.Profile) error {
	return m.Called(ctx, user, profile).Error(0)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	user, _ := args.Get(0).(*entity.User)
	return user, args.Error(1)
}

type MockSessionRepository struct {
	mock.Mock
}

func (m *MockSessionRepository) Create(ctx context.Context, session *entity.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *MockSessionRepository) FindActive(ctx context.Context, token uuid.UUID) (*entity.ActiveSession, error) {
	args := m.Called(ctx, token)
	active, _ := args.Get(0).(*entity.ActiveSession)
	return active, args.Error(1)
}

func (m *MockSessionRepository) Revoke(ctx context.Context, token uuid.UUID) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockSessionRepository) RevokeAllForUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockSessionRepository) Purge(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}

type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Profile, error) {
	args := m.Called(ctx, id)
	profile, _ := args.Get(0).(*entity.Profile)
	return profile, args.Error(1)
}

func (m *MockProfileRepository) FindRole(ctx context.Context, id string) (entity.Role, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(entity.Role), args.Error(1)
}

func (m *MockProfileRepository) PromoteToMerchant(ctx context.Context, userID uuid.UUID, store *entity.Store) error {
	return m.Called(ctx, userID, store).Error(0)
}

func (m *MockProfileRepository) FindStoreByOwner(ctx context.Context, ownerID uuid.UUID) (*entity.Store, error) {
	args := m.Called(ctx, ownerID)
	store, _ := args.Get(0).(*entity.Store)
	return store, args.Error(1)
}

type MockProductRepository struct {
	mock.Mock
}

func (m *MockProductRepository) Create(ctx context.Context, product *entity.Product) error {
	return m.Called(ctx, product).Error(0)
}

func (m *MockProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.Product, error) {
	args := m.Called(ctx, id)
	product, _ := args.Get(0).(*entity.Product)
	return product, args.Error(1)
}

func (m *MockProductRepository) FindAll(ctx context.Context, filter entity.ProductFilter, limit, offset int) ([]*entity.Product, error) {
	args := m.Called(ctx, filter, limit, offset)
	products, _ := args.Get(0).([]*entity.Product)
	return products, args.Error(1)
}

func (m *MockProductRepository) CountAll(ctx context.Context, filter entity.ProductFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockProductRepository) Delete(ctx context.Context, id, storeID uuid.UUID) error {
	return m.Called(ctx, id, storeID).Error(0)
}

type mocks struct {
	users    *MockUserRepository
	sessions *MockSessionRepository
	profiles *MockProfileRepository
	products *MockProductRepository
}

func newService(t *testing.T) (*usecase.Service, mocks) {
	t.Helper()
	m := mocks{
		users:    new(MockUserRepository),
		sessions: new(MockSessionRepository),
		profiles: new(MockProfileRepository),
		products: new(MockProductRepository),
	}
	repo := &repository.Repository{
		User:    m.users,
		Session: m.sessions,
		Profile: m.profiles,
		Product: m.products,
	}
	config := &utils.Config{Auth: utils.AuthConfig{SessionTTLHours: 2}}
	return usecase.NewService(repo, config, zap.NewNop()), m
}

func TestSignUp(t *testing.T) {
	ctx := context.Background()

	t.Run("Success", func(t *testing.T) {
		svc, m := newService(t)
		m.users.On("FindByEmail", mock.Anything, "new@example.com").Return(nil, nil)
		m.users.On("CreateWithProfile", mock.Anything,
			mock.MatchedBy(func(u *entity.User) bool {
				return u.Email == "new@example.com" && u.PasswordHash != nil && *u.PasswordHash != "long-password"
			}),
			mock.MatchedBy(func(p *entity.Profile) bool { return p.Role == entity.RoleCustomer }),
		).Return(nil)
		m.sessions.On("Create", mock.Anything, mock.AnythingOfType("*entity.Session")).Return(nil)

		resp, err := svc.Auth.SignUp(ctx, &request.SignUpRequest{Email: " New@Example.com ", Password: "long-password"})
		require.NoError(t, err)
		assert.Equal(t, "new@example.com", resp.Email)
		assert.Equal(t, entity.RoleCustomer, resp.Role)
		assert.NotEmpty(t, resp.Token)
		assert.WithinDuration(t, time.Now().Add(2*time.Hour), resp.ExpiresAt, time.Minute)
		m.users.AssertExpectations(t)
	})

	t.Run("Email Taken", func(t *testing.T) {
		svc, m := newService(t)
		m.users.On("FindByEmail", mock.Anything, "old@example.com").Return(&entity.User{Email: "old@example.com"}, nil)

		_, err := svc.Auth.SignUp(ctx, &request.SignUpRequest{Email: "old@example.com", Password: "long-password"})
		assert.ErrorIs(t, err, apperr.ErrEmailTaken)
		m.users.AssertNotCalled(t, "CreateWithProfile", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("Short Password", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.Auth.SignUp(ctx, &request.SignUpRequest{Email: "a@example.com", Password: "short"})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})

	t.Run("Store Down", func(t *testing.T) {
		svc, m := newService(t)
		m.users.On("FindByEmail", mock.Anything, "a@example.com").Return(nil, errors.New("connection refused"))

		_, err := svc.Auth.SignUp(ctx, &request.SignUpRequest{Email: "a@example.com", Password: "long-password"})
		assert.ErrorIs(t, err, apperr.ErrTransport)
	})
}

func TestSignIn(t *testing.T) {
	ctx := context.Background()
	hash, err := utils.HashPassword("correct-horse")
	require.NoError(t, err)
	userID := uuid.New()

	user := func(active bool, hash *string) *entity.User {
		return &entity.User{Base: entity.Base{ID: userID}, Email: "a@example.com", PasswordHash: hash, IsActive: active}
	}

	t.Run("Success", func(t *testing.T) {
		svc, m := newService(t)
		m.users.On("FindByEmail", mock.Anything, "a@example.com").Return(user(true, &hash), nil)
		m.profiles.On("FindByID", mock.Anything, userID).Return(&entity.Profile{Role: entity.RoleMerchant}, nil)
		m.sessions.On("Create", mock.Anything, mock.AnythingOfType("*entity.Session")).Return(nil)

		resp, err := svc.Auth.SignIn(ctx, &request.LoginRequest{Email: "a@example.com", Password: "correct-horse"})
		require.NoError(t, err)
		assert.Equal(t, userID.String(), resp.UserID)
		assert.Equal(t, entity.RoleMerchant, resp.Role)
	})

	t.Run("Missing Profile Defaults To Customer", func(t *testing.T) {
		svc, m := newService(t)
		m.users.On("FindByEmail", mock.Anything, "a@example.com").Return(user(true, &hash), nil)
		m.profiles.On("FindByID", mock.Anything, userID).Return(nil, nil)
		m.sessions.On("Create", mock.Anything, mock.AnythingOfType("*entity.Session")).Return(nil)

		resp, err := svc.Auth.SignIn(ctx, &request.LoginRequest{Email: "a@example.com", Password: "correct-horse"})
		require.NoError(t, err)
		assert.Equal(t, entity.RoleCustomer, resp.Role)
	})

	tests := []struct {
		name string
		user *entity.User
		pass string
		err  error
	}{
		{"Unknown Email", nil, "correct-horse", apperr.ErrInvalidCredentials},
		{"Wrong Password", user(true, &hash), "wrong-horse", apperr.ErrInvalidCredentials},
		{"OAuth Only Account", user(true, nil), "correct-horse", apperr.ErrInvalidCredentials},
		{"Deactivated", user(false, &hash), "correct-horse", apperr.ErrForbidden},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t)
			m.users.On("FindByEmail", mock.Anything, "a@example.com").Return(tt.user, nil)

			_, err := svc.Auth.SignIn(ctx, &request.LoginRequest{Email: "a@example.com", Password: tt.pass})
			assert.ErrorIs(t, err, tt.err)
			m.sessions.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestSignOut(t *testing.T) {
	ctx := context.Background()
	token := uuid.New()

	t.Run("Malformed Token", func(t *testing.T) {
		svc, _ := newService(t)
		assert.ErrorIs(t, svc.Auth.SignOut(ctx, "not-a-token"), apperr.ErrUnauthenticated)
	})

	t.Run("Already Revoked", func(t *testing.T) {
		svc, m := newService(t)
		m.sessions.On("Revoke", mock.Anything, token).Return(apperr.ErrNotFound)
		assert.ErrorIs(t, svc.Auth.SignOut(ctx, token.String()), apperr.ErrUnauthenticated)
	})

	t.Run("Store Down", func(t *testing.T) {
		svc, m := newService(t)
		m.sessions.On("Revoke", mock.Anything, token).Return(errors.New("timeout"))
		assert.ErrorIs(t, svc.Auth.SignOut(ctx, token.String()), apperr.ErrTransport)
	})

	t.Run("Everywhere", func(t *testing.T) {
		svc, m := newService(t)
		userID := uuid.New()
		m.sessions.On("RevokeAllForUser", mock.Anything, userID).Return(int64(3), nil)
		assert.NoError(t, svc.Auth.SignOutAll(ctx, userID.String()))
		m.sessions.AssertExpectations(t)
	})
}

func TestGetUser(t *testing.T) {
	ctx := context.Background()
	token := uuid.New()
	userID := uuid.New()
	name := "Ada"

	svc, m := newService(t)
	m.sessions.On("FindActive", mock.Anything, token).Return(&entity.ActiveSession{
		Session:  entity.Session{UserID: userID, Token: token, ExpiresAt: time.Now().Add(time.Hour)},
		Email:    "ada@example.com",
		FullName: &name,
	}, nil)
	unknown := uuid.New()
	m.sessions.On("FindActive", mock.Anything, unknown).Return(nil, nil)

	identity, sess, err := svc.Auth.GetUser(ctx, token.String())
	require.NoError(t, err)
	assert.Equal(t, userID.String(), identity.ID)
	assert.Equal(t, "Ada", *identity.FullName)
	assert.Equal(t, token.String(), sess.AccessToken)

	_, _, err = svc.Auth.GetUser(ctx, unknown.String())
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)

	_, _, err = svc.Auth.GetUser(ctx, "")
	assert.ErrorIs(t, err, apperr.ErrUnauthenticated)
}

func TestCleanExpiredSessions(t *testing.T) {
	svc, m := newService(t)
	m.sessions.On("Purge", mock.Anything, mock.MatchedBy(func(cutoff time.Time) bool {
		return cutoff.Before(time.Now().Add(-6 * 24 * time.Hour))
	})).Return(int64(4), nil)

	n, err := svc.Auth.CleanExpiredSessions(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(4), n)
}

func TestOAuthDisabled(t *testing.T) {
	svc, _ := newService(t)
	assert.False(t, svc.Auth.OAuthEnabled())

	_, err := svc.Auth.OAuthURL("state")
	assert.ErrorIs(t, err, apperr.ErrNotFound)
}

func TestBecomeMerchant(t *testing.T) {
	ctx := context.Background()
	userID := uuid.New()
	req := &request.MerchantOnboardingRequest{StoreName: "North Street"}

	t.Run("Customer Is Promoted", func(t *testing.T) {
		svc, m := newService(t)
		m.profiles.On("FindByID", mock.Anything, userID).
			Return(&entity.Profile{Role: entity.RoleCustomer}, nil).Once()
		m.profiles.On("PromoteToMerchant", mock.Anything, userID, mock.MatchedBy(func(s *entity.Store) bool {
			return s.OwnerID == userID && s.Name == "North Street" && s.Status == entity.StoreStatusActive
		})).Return(nil)
		m.profiles.On("FindByID", mock.Anything, userID).
			Return(&entity.Profile{Role: entity.RoleMerchant}, nil).Once()
		m.profiles.On("FindStoreByOwner", mock.Anything, userID).
			Return(&entity.Store{Name: "North Street", Status: entity.StoreStatusActive}, nil)

		resp, err := svc.Profile.BecomeMerchant(ctx, userID.String(), req)
		require.NoError(t, err)
		assert.Equal(t, entity.RoleMerchant, resp.Role)
		require.NotNil(t, resp.Store)
		assert.Equal(t, "North Street", resp.Store.Name)
		m.profiles.AssertExpectations(t)
	})

	t.Run("Merchant Is Unchanged", func(t *testing.T) {
		svc, m := newService(t)
		m.profiles.On("FindByID", mock.Anything, userID).Return(&entity.Profile{Role: entity.RoleMerchant}, nil)
		m.profiles.On("FindStoreByOwner", mock.Anything, userID).Return(&entity.Store{Name: "Old"}, nil)

		resp, err := svc.Profile.BecomeMerchant(ctx, userID.String(), req)
		require.NoError(t, err)
		assert.Equal(t, "Old", resp.Store.Name)
		m.profiles.AssertNotCalled(t, "PromoteToMerchant", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("No Profile", func(t *testing.T) {
		svc, m := newService(t)
		m.profiles.On("FindByID", mock.Anything, userID).Return(nil, nil)

		_, err := svc.Profile.BecomeMerchant(ctx, userID.String(), req)
		assert.ErrorIs(t, err, apperr.ErrProfileMissing)
	})

	t.Run("Blank Store Name", func(t *testing.T) {
		svc, _ := newService(t)
		_, err := svc.Profile.BecomeMerchant(ctx, userID.String(), &request.MerchantOnboardingRequest{})
		assert.ErrorIs(t, err, apperr.ErrValidation)
	})
}

func TestCreateProduct(t *testing.T) {
	ctx := context.Background()
	ownerID := uuid.New()
	storeID := uuid.New()
	req := &request.ProductRequest{Name: "Linen Shirt", Category: "tops", Gender: "unisex", Price: 45, Stock: 3}

	t.Run("Success", func(t *testing.T) {
		svc, m := newService(t)
		m.profiles.On("FindStoreByOwner", mock.Anything, ownerID).
			Return(&entity.Store{BaseNoDelete: entity.BaseNoDelete{ID: storeID}, Name: "North Street", Status: entity.StoreStatusActive}, nil)
		m.products.On("Create", mock.Anything, mock.MatchedBy(func(p *entity.Product) bool {
			return p.StoreID == storeID && p.IsActive && p.Gender == entity.GenderUnisex
		})).Return(nil)

		resp, err := svc.Product.CreateProduct(ctx, ownerID.String(), req)
		require.NoError(t, err)
		assert.Equal(t, storeID.String(), resp.StoreID)
		assert.Equal(t, "North Street", resp.StoreName)
		assert.Equal(t, "Linen Shirt", resp.Name)
	})

	stores := []struct {
		name  string
		store *entity.Store
	}{
		{"No Store", nil},
		{"Pending Store", &entity.Store{Status: entity.StoreStatusPending}},
	}
	for _, tt := range stores {
		t.Run(tt.name, func(t *testing.T) {
			svc, m := newService(t)
			m.profiles.On("FindStoreByOwner", mock.Anything, ownerID).Return(tt.store, nil)

			_, err := svc.Product.CreateProduct(ctx, ownerID.String(), req)
			assert.ErrorIs(t, err, apperr.ErrForbidden)
			m.products.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestGetProduct(t *testing.T) {
	ctx := context.Background()
	svc, m := newService(t)

	active := uuid.New()
	hidden := uuid.New()
	m.products.On("FindByID", mock.Anything, active).Return(&entity.Product{Base: entity.Base{ID: active}, StoreName: "North Street", Name: "Mug", IsActive: true}, nil)
	m.products.On("FindByID", mock.Anything, hidden).Return(&entity.Product{Base: entity.Base{ID: hidden}, IsActive: false}, nil)

	resp, err := svc.Product.GetProduct(ctx, active.String())
	require.NoError(t, err)
	assert.Equal(t, "Mug", resp.Name)
	assert.Equal(t, "North Street", resp.StoreName)

	_, err = svc.Product.GetProduct(ctx, hidden.String())
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	_, err = svc.Product.GetProduct(ctx, "nope")
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestListProducts(t *testing.T) {
	ctx := context.Background()
	lo, hi := 100.0, 50.0

	svc, m := newService(t)
	_, err := svc.Product.ListProducts(ctx, &request.ProductListRequest{
		PaginatedRequest: request.PaginatedRequest{Page: 1, PerPage: 10},
		MinPrice:         &lo,
		MaxPrice:         &hi,
	})
	assert.ErrorIs(t, err, apperr.ErrValidation)
	m.products.AssertNotCalled(t, "FindAll", mock.Anything, mock.Anything, mock.Anything, mock.Anything)

	category := "tops"
	m.products.On("FindAll", mock.Anything, mock.MatchedBy(func(f entity.ProductFilter) bool {
		return f.Category != nil && *f.Category == "tops"
	}), 10, 10).Return([]*entity.Product{{Name: "Tee", IsActive: true}}, nil)
	m.products.On("CountAll", mock.Anything, mock.Anything).Return(int64(11), nil)

	resp, err := svc.Product.ListProducts(ctx, &request.ProductListRequest{
		PaginatedRequest: request.PaginatedRequest{Page: 2, PerPage: 10},
		Category:         &category,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Data, 1)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
}
