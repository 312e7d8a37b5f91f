package adaptor

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strings"
	"time"

	"click-collect/internal/access"
	"click-collect/internal/dto/request"
	"click-collect/internal/dto/response"
	"click-collect/internal/usecase"
	"click-collect/pkg/utils"

	"go.uber.org/zap"
)

const (
	oauthStateCookie    = "oauth_state"
	oauthRedirectCookie = "oauth_redirect"
	oauthCookieTTL      = 10 * time.Minute
)

type AuthHandler struct {
	service usecase.AuthService
	config  utils.AuthConfig
	log     *zap.Logger
}

func NewAuthHandler(service usecase.AuthService, config utils.AuthConfig, log *zap.Logger) *AuthHandler {
	return &AuthHandler{
		service: service,
		config:  config,
		log:     log.With(zap.String("handler", "auth")),
	}
}

// SignUp handles POST /api/auth/signup
func (h *AuthHandler) SignUp(w http.ResponseWriter, r *http.Request) {
	var req request.SignUpRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	resp, err := h.service.SignUp(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "sign up")
		return
	}

	h.setSessionCookie(w, resp)
	utils.ResponseCreated(w, "Sign up successful", resp)
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req request.LoginRequest

	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.ResponseBadRequest(w, "Invalid request body", nil)
		return
	}

	if validationErrors := utils.ValidateStruct(req); len(validationErrors) > 0 {
		utils.ResponseBadRequest(w, "Validation failed", validationErrors)
		return
	}

	resp, err := h.service.SignIn(r.Context(), &req)
	if err != nil {
		handleServiceError(w, h.log, err, "login")
		return
	}

	h.setSessionCookie(w, resp)
	utils.ResponseSuccess(w, "Login successful", resp)
}

// Logout handles POST /api/auth/logout; ?scope=all revokes every session of
// the user.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	token, _ := utils.GetTokenFromContext(r.Context())

	var err error
	if r.URL.Query().Get("scope") == "all" {
		userID, _ := utils.GetUserIDFromContext(r.Context())
		err = h.service.SignOutAll(r.Context(), userID)
	} else {
		err = h.service.SignOut(r.Context(), token)
	}
	if err != nil {
		handleServiceError(w, h.log, err, "logout")
		return
	}

	h.clearCookie(w, h.config.CookieName, "/")
	utils.ResponseSuccess(w, "Logout successful", nil)
}

// User handles GET /api/auth/user
func (h *AuthHandler) User(w http.ResponseWriter, r *http.Request) {
	token, _ := utils.GetTokenFromContext(r.Context())

	identity, sess, err := h.service.GetUser(r.Context(), token)
	if err != nil {
		handleServiceError(w, h.log, err, "get user")
		return
	}

	utils.ResponseSuccess(w, "User retrieved successfully", response.UserResponse{
		UserID:    identity.ID,
		Email:     identity.Email,
		ExpiresAt: sess.ExpiresAt,
	})
}

// OAuthStart handles GET /auth/oauth: it redirects to the provider with a
// fresh state, remembering where to send the user afterwards.
func (h *AuthHandler) OAuthStart(w http.ResponseWriter, r *http.Request) {
	if !h.service.OAuthEnabled() {
		utils.ResponseNotFound(w, "OAuth sign-in is not configured")
		return
	}

	state, err := utils.GenerateState()
	if err != nil {
		h.log.Error("Failed to generate oauth state", zap.Error(err))
		utils.ResponseInternalError(w, "Internal server error")
		return
	}

	target, err := h.service.OAuthURL(state)
	if err != nil {
		handleServiceError(w, h.log, err, "oauth start")
		return
	}

	h.setShortCookie(w, oauthStateCookie, state)
	if redirect := r.URL.Query().Get(access.RedirectParam); localPath(redirect) {
		h.setShortCookie(w, oauthRedirectCookie, redirect)
	}

	http.Redirect(w, r, target, http.StatusFound)
}

// OAuthCallback handles GET /auth/callback. Failures send the user back to
// the login page with an error code instead of a JSON body.
func (h *AuthHandler) OAuthCallback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if providerErr := query.Get("error"); providerErr != "" {
		h.log.Warn("Provider rejected sign-in", zap.String("error", providerErr))
		h.loginWithError(w, r, "provider_denied")
		return
	}

	req := request.OAuthCallbackRequest{
		Code:  query.Get("code"),
		State: query.Get("state"),
	}

	cookie, err := r.Cookie(oauthStateCookie)
	if err != nil || cookie.Value == "" || cookie.Value != req.State {
		h.log.Warn("OAuth state mismatch")
		h.loginWithError(w, r, "invalid_state")
		return
	}
	h.clearCookie(w, oauthStateCookie, "/auth")

	resp, err := h.service.ExchangeCode(r.Context(), &req)
	if err != nil {
		h.log.Warn("OAuth code exchange failed", zap.Error(err))
		h.loginWithError(w, r, "exchange_failed")
		return
	}

	h.setSessionCookie(w, resp)

	target := "/"
	if c, err := r.Cookie(oauthRedirectCookie); err == nil && localPath(c.Value) {
		target = c.Value
		h.clearCookie(w, oauthRedirectCookie, "/auth")
	}
	http.Redirect(w, r, target, http.StatusFound)
}

func (h *AuthHandler) loginWithError(w http.ResponseWriter, r *http.Request, code string) {
	http.Redirect(w, r, "/login?"+url.Values{"error": {code}}.Encode(), http.StatusFound)
}

func (h *AuthHandler) setSessionCookie(w http.ResponseWriter, resp *response.AuthResponse) {
	http.SetCookie(w, &http.Cookie{
		Name:     h.config.CookieName,
		Value:    resp.Token,
		Path:     "/",
		Expires:  resp.ExpiresAt,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) setShortCookie(w http.ResponseWriter, name, value string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/auth",
		MaxAge:   int(oauthCookieTTL.Seconds()),
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (h *AuthHandler) clearCookie(w http.ResponseWriter, name, path string) {
	http.SetCookie(w, &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     path,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   h.config.CookieSecure,
	})
}

// localPath rejects absolute and protocol-relative URLs so the post-login
// redirect cannot leave the site.
func localPath(p string) bool {
	return strings.HasPrefix(p, "/") && !strings.HasPrefix(p, "//") && !strings.Contains(p, `\`)
}
