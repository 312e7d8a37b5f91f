package response

import (
	"time"

	"click-collect/internal/data/entity"
)

type ProductResponse struct {
	ID          string    `json:"id"`
	StoreID     string    `json:"store_id"`
	StoreName   string    `json:"store_name"`
	Name        string    `json:"name"`
	Description *string   `json:"description,omitempty"`
	Category    string    `json:"category"`
	Gender      string    `json:"gender"`
	Price       float64   `json:"price"`
	ImageURL    *string   `json:"image_url,omitempty"`
	Colors      []string  `json:"colors"`
	Sizes       []string  `json:"sizes"`
	Stock       int       `json:"stock"`
	CreatedAt   time.Time `json:"created_at"`
}

func ProductToResponse(p *entity.Product) ProductResponse {
	colors, sizes := p.Colors, p.Sizes
	if colors == nil {
		colors = []string{}
	}
	if sizes == nil {
		sizes = []string{}
	}
	return ProductResponse{
		ID:          p.ID.String(),
		StoreID:     p.StoreID.String(),
		StoreName:   p.StoreName,
		Name:        p.Name,
		Description: p.Description,
		Category:    p.Category,
		Gender:      string(p.Gender),
		Price:       p.Price,
		ImageURL:    p.ImageURL,
		Colors:      colors,
		Sizes:       sizes,
		Stock:       p.Stock,
		CreatedAt:   p.CreatedAt,
	}
}
