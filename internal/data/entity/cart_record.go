package entity

import "time"

// CartRecord is the persisted cart payload, stored under a single name.
type CartRecord struct {
	Name      string    `db:"name"`
	Payload   []byte    `db:"payload"`
	UpdatedAt time.Time `db:"updated_at"`
}
