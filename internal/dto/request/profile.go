package request

type MerchantOnboardingRequest struct {
	StoreName string  `json:"store_name" validate:"required,min=2,max=100"`
	Address   *string `json:"address,omitempty" validate:"omitempty,max=255"`
}
