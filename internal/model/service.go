package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Service is an optional add-on (catering, decoration, ...) priced
// separately from the venue.
type Service struct {
	ID          uint64          `db:"id" json:"id"`                   // services.id
	Description string          `db:"description" json:"description"` // services.description
	Price       decimal.Decimal `db:"price" json:"price"`             // services.price
	Active      bool            `db:"active" json:"-"`                // services.active
	CreatedAt   time.Time       `db:"created_at" json:"createdAt"`    // services.created_at
	UpdatedAt   *time.Time      `db:"updated_at" json:"updatedAt"`    // services.updated_at (nullable)
}

type ServicePatch struct {
	Description *string          `json:"description" validate:"omitempty,min=1,max=255"`
	Price       *decimal.Decimal `json:"price"`
}
