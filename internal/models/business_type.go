package models

type BusinessType struct {
	Key   string `json:"key" validate:"required"`
	Label string `json:"label" validate:"required"`
	Icon  string `json:"icon"`
	Color string `json:"color"`
}
