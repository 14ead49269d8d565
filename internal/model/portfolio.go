package model

import "time"

// Portfolio is the top-level grouping for the chart of accounts, journal,
// transactions and security lots. Every derived monetary amount for a
// portfolio is expressed in its base currency.
type Portfolio struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Description  string    `json:"description"`
	BaseCurrency string    `json:"baseCurrency"`
	IsArchived   bool      `json:"isArchived"`
	CreatedAt    time.Time `json:"createdAt,omitempty"`
}
