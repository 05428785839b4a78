package models

import (
	"time"

	"github.com/google/uuid"
)

type Address struct {
	Street  string `json:"street" db:"street"`
	City    string `json:"city" db:"city"`
	Zip     string `json:"zip" db:"zip"`
	Country string `json:"country" db:"country"`
}

// Location is an address sub-record owned by exactly one company. Every
// company has at least one location and exactly one with IsMain set.
type Location struct {
	ID        uuid.UUID `json:"id" db:"id"`
	CompanyID uuid.UUID `json:"company_id" db:"company_id"`
	Name      string    `json:"name" db:"name"`
	Address   Address   `json:"address"`
	IsMain    bool      `json:"is_main" db:"is_main"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

type LocationDraft struct {
	Name    string  `json:"name"`
	Address Address `json:"address"`
	IsMain  bool    `json:"is_main"`
}
