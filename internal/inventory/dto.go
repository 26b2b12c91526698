package inventory

// CreateItemInput carries validated fields for catalog creation.
type CreateItemInput struct {
	NameGujarati string  `json:"name_gujarati" validate:"required,max=128"`
	NameEnglish  string  `json:"name_english" validate:"required,max=128"`
	DefaultRate  float64 `json:"default_rate" validate:"gte=0"`
	Category     string  `json:"category"`
	TotalStock   int     `json:"total_stock" validate:"gte=0"`
}

// UpdateItemInput carries partial catalog updates. Nil fields keep their
// current value; available stock is never set directly.
type UpdateItemInput struct {
	NameGujarati *string  `json:"name_gujarati" validate:"omitempty,max=128"`
	NameEnglish  *string  `json:"name_english" validate:"omitempty,max=128"`
	DefaultRate  *float64 `json:"default_rate" validate:"omitempty,gte=0"`
	Category     *string  `json:"category"`
	Active       *bool    `json:"active"`
	TotalStock   *int     `json:"total_stock" validate:"omitempty,gte=0"`
}

// ReorderInput carries the full catalog in the new display order.
type ReorderInput struct {
	ItemIDs []int64 `json:"item_ids" validate:"required,min=1"`
}
