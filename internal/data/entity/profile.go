package entity

import "github.com/google/uuid"

// Profile shares its ID with the User it belongs to.
type Profile struct {
	BaseNoDelete
	Email    string  `db:"email"`
	FullName *string `db:"full_name"`
	Phone    *string `db:"phone"`
	Role     Role    `db:"role"`
}

type StoreStatus string

const (
	StoreStatusPending StoreStatus = "pending"
	StoreStatusActive  StoreStatus = "active"
)

// Store is a merchant's shop. Products and cart lines reference it.
type Store struct {
	BaseNoDelete
	OwnerID uuid.UUID   `db:"owner_id"`
	Name    string      `db:"name"`
	Address *string     `db:"address"`
	Status  StoreStatus `db:"status"`
}
