package customers

// CustomerInput carries validated fields for create and update.
type CustomerInput struct {
	Name             string   `json:"name" validate:"required,max=128"`
	Mobile           string   `json:"mobile" validate:"required,min=7,max=15"`
	PalNumbers       []string `json:"pal_numbers"`
	AlternateContact string   `json:"alternate_contact" validate:"max=32"`
	Address          string   `json:"address" validate:"max=512"`
	Notes            string   `json:"notes" validate:"max=1024"`
	Active           *bool    `json:"active"`
}
