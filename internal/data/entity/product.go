package entity

import "github.com/google/uuid"

type Gender string

const (
	GenderWomen  Gender = "women"
	GenderMen    Gender = "men"
	GenderUnisex Gender = "unisex"
	GenderKids   Gender = "kids"
)

type Product struct {
	Base
	StoreID     uuid.UUID `db:"store_id"`
	StoreName   string    `db:"store_name"` // read from the owning store
	Name        string    `db:"name"`
	Description *string   `db:"description"`
	Category    string    `db:"category"`
	Gender      Gender    `db:"gender"`
	Price       float64   `db:"price"`
	ImageURL    *string   `db:"image_url"`
	Colors      []string  `db:"colors"`
	Sizes       []string  `db:"sizes"`
	Stock       int       `db:"stock"`
	IsActive    bool      `db:"is_active"`
}

// ProductFilter narrows a product listing. Nil fields impose no constraint.
type ProductFilter struct {
	StoreID  *uuid.UUID
	Category *string
	Gender   *Gender
	Search   *string
	MinPrice *float64
	MaxPrice *float64
}
