package entity

type AuthProvider string

const (
	ProviderEmail AuthProvider = "email"
)

// User holds credentials only. Authorization data lives on Profile.
type User struct {
	Base
	Email        string       `db:"email"`
	PasswordHash *string      `db:"password"`
	Provider     AuthProvider `db:"provider"`
	IsActive     bool         `db:"is_active"`
}
