package response

import (
	"time"

	"click-collect/internal/data/entity"
)

type AuthResponse struct {
	UserID    string      `json:"user_id"`
	Email     string      `json:"email"`
	FullName  *string     `json:"full_name,omitempty"`
	Role      entity.Role `json:"role"`
	Token     string      `json:"token"`
	ExpiresAt time.Time   `json:"expires_at"`
}

// UserResponse is what GET /api/auth/user returns: the identity behind the
// presented token and that token's expiry.
type UserResponse struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	ExpiresAt time.Time `json:"expires_at"`
}

type ProfileResponse struct {
	ID        string      `json:"id"`
	Email     string      `json:"email"`
	FullName  *string     `json:"full_name,omitempty"`
	Phone     *string     `json:"phone,omitempty"`
	Role      entity.Role `json:"role"`
	Store     *StoreBrief `json:"store,omitempty"`
	CreatedAt time.Time   `json:"created_at"`
}

type StoreBrief struct {
	ID     string             `json:"id"`
	Name   string             `json:"name"`
	Status entity.StoreStatus `json:"status"`
}

func AuthToResponse(user *entity.User, profile *entity.Profile, session *entity.Session) *AuthResponse {
	resp := &AuthResponse{
		UserID: user.ID.String(),
		Email:  user.Email,
		Role:   entity.DefaultRole,
	}

	if profile != nil {
		resp.FullName = profile.FullName
		resp.Role = entity.ParseRole(string(profile.Role))
	}

	if session != nil {
		resp.Token = session.Token.String()
		resp.ExpiresAt = session.ExpiresAt
	}

	return resp
}

func ProfileToResponse(profile *entity.Profile, store *entity.Store) *ProfileResponse {
	resp := &ProfileResponse{
		ID:        profile.ID.String(),
		Email:     profile.Email,
		FullName:  profile.FullName,
		Phone:     profile.Phone,
		Role:      profile.Role,
		CreatedAt: profile.CreatedAt,
	}
	if store != nil {
		resp.Store = &StoreBrief{
			ID:     store.ID.String(),
			Name:   store.Name,
			Status: store.Status,
		}
	}
	return resp
}
