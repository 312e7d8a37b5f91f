package request

type ProductListRequest struct {
	PaginatedRequest
	StoreID  *string  `validate:"omitempty,uuid"`
	Category *string  `validate:"omitempty,max=50"`
	Gender   *string  `validate:"omitempty,oneof=women men unisex kids"`
	Search   *string  `validate:"omitempty,max=100"`
	MinPrice *float64 `validate:"omitempty,gte=0"`
	MaxPrice *float64 `validate:"omitempty,gte=0"`
}

type ProductRequest struct {
	Name        string   `json:"name" validate:"required,min=1,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,max=2000"`
	Category    string   `json:"category" validate:"required,max=50"`
	Gender      string   `json:"gender" validate:"required,oneof=women men unisex kids"`
	Price       float64  `json:"price" validate:"gte=0"`
	ImageURL    *string  `json:"image_url,omitempty" validate:"omitempty,url"`
	Colors      []string `json:"colors,omitempty" validate:"dive,min=1,max=30"`
	Sizes       []string `json:"sizes,omitempty" validate:"dive,min=1,max=10"`
	Stock       int      `json:"stock" validate:"gte=0"`
}
