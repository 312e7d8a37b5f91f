package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"click-collect/internal/apperr"
	"click-collect/internal/data/entity"
	"click-collect/internal/data/repository"
	"click-collect/internal/dto/request"
	"click-collect/internal/dto/response"
	"click-collect/internal/session"
	"click-collect/pkg/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/oauth2"
)

// AuthService is the identity provider: it issues, resolves and revokes
// sessions for email/password and OAuth sign-ins.
type AuthService interface {
	SignUp(ctx context.Context, req *request.SignUpRequest) (*response.AuthResponse, error)
	SignIn(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error)
	SignOut(ctx context.Context, token string) error
	// SignOutAll revokes every session of the user, on every device.
	SignOutAll(ctx context.Context, userID string) error
	GetUser(ctx context.Context, token string) (*session.Identity, *session.Session, error)

	OAuthEnabled() bool
	OAuthURL(state string) (string, error)
	ExchangeCode(ctx context.Context, req *request.OAuthCallbackRequest) (*response.AuthResponse, error)

	CleanExpiredSessions(ctx context.Context) (int64, error)
}

// sessions older than this past expiry are deleted by the janitor
const sessionRetention = 7 * 24 * time.Hour

type authService struct {
	repo   *repository.Repository
	config *utils.Config
	oauth  *oauth2.Config
	log    *zap.Logger
	now    func() time.Time
}

func NewAuthService(
	repo *repository.Repository,
	config *utils.Config,
	log *zap.Logger,
) AuthService {
	s := &authService{
		repo:   repo,
		config: config,
		log:    log.With(zap.String("service", "auth")),
		now:    time.Now,
	}

	if config.OAuth.Enabled() {
		s.oauth = &oauth2.Config{
			ClientID:     config.OAuth.ClientID,
			ClientSecret: config.OAuth.ClientSecret,
			RedirectURL:  config.OAuth.RedirectURL,
			Scopes:       config.OAuth.Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  config.OAuth.AuthURL,
				TokenURL: config.OAuth.TokenURL,
			},
		}
	}

	return s
}

func (s *authService) SignUp(ctx context.Context, req *request.SignUpRequest) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Sign up validation failed", zap.Any("errors", errs))
		return nil, apperr.Validation("%s", utils.FormatValidationErrors(errs))
	}

	email := normalizeEmail(req.Email)

	existing, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Transport("check email", err)
	}
	if existing != nil {
		return nil, apperr.ErrEmailTaken
	}

	hashedPassword, err := utils.HashPassword(req.Password)
	if err != nil {
		s.log.Error("Failed to hash password", zap.Error(err))
		return nil, fmt.Errorf("failed to process password: %w", err)
	}

	user, profile := s.newIdentity(email, entity.ProviderEmail, &hashedPassword, req.FullName)
	profile.Phone = req.Phone

	if err := s.repo.User.CreateWithProfile(ctx, user, profile); err != nil {
		s.log.Error("Failed to create account", zap.Error(err), zap.String("email", email))
		return nil, apperr.Transport("create account", err)
	}

	sess, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, apperr.Transport("create session", err)
	}

	s.log.Info("User signed up",
		zap.String("user_id", user.ID.String()),
		zap.String("email", user.Email))

	return response.AuthToResponse(user, profile, sess), nil
}

func (s *authService) SignIn(ctx context.Context, req *request.LoginRequest) (*response.AuthResponse, error) {
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		s.log.Warn("Sign in validation failed", zap.Any("errors", errs))
		return nil, apperr.Validation("%s", utils.FormatValidationErrors(errs))
	}

	user, err := s.repo.User.FindByEmail(ctx, normalizeEmail(req.Email))
	if err != nil {
		return nil, apperr.Transport("find user", err)
	}

	// same answer for unknown email, wrong password and OAuth-only accounts
	if user == nil || user.PasswordHash == nil || !utils.CheckPasswordHash(req.Password, *user.PasswordHash) {
		s.log.Warn("Invalid credentials", zap.String("email", req.Email))
		return nil, apperr.ErrInvalidCredentials
	}

	if !user.IsActive {
		s.log.Warn("Inactive user tried to sign in", zap.String("user_id", user.ID.String()))
		return nil, fmt.Errorf("account is deactivated: %w", apperr.ErrForbidden)
	}

	profile, err := s.repo.Profile.FindByID(ctx, user.ID)
	if err != nil {
		return nil, apperr.Transport("find profile", err)
	}

	sess, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, apperr.Transport("create session", err)
	}

	s.log.Info("User signed in", zap.String("user_id", user.ID.String()))

	return response.AuthToResponse(user, profile, sess), nil
}

func (s *authService) SignOut(ctx context.Context, token string) error {
	tok, err := uuid.Parse(token)
	if err != nil {
		return apperr.ErrUnauthenticated
	}

	if err := s.repo.Session.Revoke(ctx, tok); err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return apperr.ErrUnauthenticated
		}
		return apperr.Transport("revoke session", err)
	}

	s.log.Info("User signed out")
	return nil
}

func (s *authService) SignOutAll(ctx context.Context, userID string) error {
	id, err := uuid.Parse(userID)
	if err != nil {
		return apperr.ErrUnauthenticated
	}

	n, err := s.repo.Session.RevokeAllForUser(ctx, id)
	if err != nil {
		return apperr.Transport("revoke sessions", err)
	}

	s.log.Info("User signed out everywhere", zap.String("user_id", userID), zap.Int64("sessions", n))
	return nil
}

func (s *authService) GetUser(ctx context.Context, token string) (*session.Identity, *session.Session, error) {
	tok, err := uuid.Parse(token)
	if err != nil {
		return nil, nil, apperr.ErrUnauthenticated
	}

	active, err := s.repo.Session.FindActive(ctx, tok)
	if err != nil {
		return nil, nil, apperr.Transport("find session", err)
	}
	if active == nil {
		return nil, nil, apperr.ErrUnauthenticated
	}

	userID := active.Session.UserID.String()
	identity := &session.Identity{
		ID:       userID,
		Email:    active.Email,
		FullName: active.FullName,
	}
	return identity, &session.Session{
		UserID:      userID,
		AccessToken: active.Session.Token.String(),
		ExpiresAt:   active.Session.ExpiresAt,
	}, nil
}

func (s *authService) OAuthEnabled() bool {
	return s.oauth != nil
}

func (s *authService) OAuthURL(state string) (string, error) {
	if s.oauth == nil {
		return "", fmt.Errorf("oauth provider not configured: %w", apperr.ErrNotFound)
	}
	return s.oauth.AuthCodeURL(state, oauth2.AccessTypeOnline), nil
}

type oauthUserInfo struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// ExchangeCode trades an authorization code for provider tokens, reads the
// provider's user info and signs the matching local identity in, creating it
// on first sign-in.
func (s *authService) ExchangeCode(ctx context.Context, req *request.OAuthCallbackRequest) (*response.AuthResponse, error) {
	if s.oauth == nil {
		return nil, fmt.Errorf("oauth provider not configured: %w", apperr.ErrNotFound)
	}
	if errs := utils.ValidateStruct(req); len(errs) > 0 {
		return nil, apperr.Validation("%s", utils.FormatValidationErrors(errs))
	}

	token, err := s.oauth.Exchange(ctx, req.Code)
	if err != nil {
		s.log.Warn("Code exchange failed", zap.Error(err))
		return nil, fmt.Errorf("exchange code: %w", apperr.ErrUnauthenticated)
	}

	info, err := s.fetchUserInfo(ctx, token)
	if err != nil {
		return nil, apperr.Transport("fetch user info", err)
	}
	email := normalizeEmail(info.Email)
	if email == "" {
		return nil, apperr.Validation("provider returned no email")
	}

	user, err := s.repo.User.FindByEmail(ctx, email)
	if err != nil {
		return nil, apperr.Transport("find user", err)
	}

	var profile *entity.Profile
	if user == nil {
		var fullName *string
		if info.Name != "" {
			fullName = &info.Name
		}
		user, profile = s.newIdentity(email, entity.AuthProvider(s.config.OAuth.Provider), nil, fullName)
		if err := s.repo.User.CreateWithProfile(ctx, user, profile); err != nil {
			return nil, apperr.Transport("create account", err)
		}
		s.log.Info("User provisioned from oauth",
			zap.String("user_id", user.ID.String()),
			zap.String("provider", s.config.OAuth.Provider))
	} else {
		if !user.IsActive {
			return nil, fmt.Errorf("account is deactivated: %w", apperr.ErrForbidden)
		}
		if profile, err = s.repo.Profile.FindByID(ctx, user.ID); err != nil {
			return nil, apperr.Transport("find profile", err)
		}
	}

	sess, err := s.createSession(ctx, user.ID)
	if err != nil {
		return nil, apperr.Transport("create session", err)
	}

	return response.AuthToResponse(user, profile, sess), nil
}

func (s *authService) CleanExpiredSessions(ctx context.Context) (int64, error) {
	n, err := s.repo.Session.Purge(ctx, s.now().Add(-sessionRetention))
	if err != nil {
		return 0, err
	}
	if n > 0 {
		s.log.Info("Expired sessions cleaned", zap.Int64("count", n))
	}
	return n, nil
}

// ==================== HELPER METHODS ====================

func (s *authService) newIdentity(email string, provider entity.AuthProvider, passwordHash, fullName *string) (*entity.User, *entity.Profile) {
	now := s.now()
	id := uuid.New()

	user := &entity.User{
		Base: entity.Base{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Email:        email,
		PasswordHash: passwordHash,
		Provider:     provider,
		IsActive:     true,
	}
	profile := &entity.Profile{
		BaseNoDelete: entity.BaseNoDelete{
			ID:        id,
			CreatedAt: now,
			UpdatedAt: now,
		},
		Email:    email,
		FullName: fullName,
		Role:     entity.DefaultRole,
	}
	return user, profile
}

func (s *authService) createSession(ctx context.Context, userID uuid.UUID) (*entity.Session, error) {
	ttl := time.Duration(s.config.Auth.SessionTTLHours) * time.Hour
	if ttl <= 0 {
		ttl = 24 * time.Hour
	}

	now := s.now()
	sess := &entity.Session{
		BaseSimple: entity.BaseSimple{
			ID:        uuid.New(),
			CreatedAt: now,
		},
		UserID:    userID,
		Token:     utils.GenerateSessionToken(),
		ExpiresAt: now.Add(ttl),
	}

	if err := s.repo.Session.Create(ctx, sess); err != nil {
		s.log.Error("Failed to create session", zap.Error(err), zap.String("user_id", userID.String()))
		return nil, err
	}

	return sess, nil
}

func (s *authService) fetchUserInfo(ctx context.Context, token *oauth2.Token) (*oauthUserInfo, error) {
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, s.config.OAuth.UserInfoURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.oauth.Client(ctx, token).Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("userinfo status %d", resp.StatusCode)
	}

	var info oauthUserInfo
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return nil, fmt.Errorf("decode userinfo: %w", err)
	}
	return &info, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
