// Package model defines domain types for iexpense records.
package model

import "github.com/google/uuid"

// Shipped category labels. The set is extensible through config.
const (
	CategoryPersonal = "Personal"
	CategoryBusiness = "Business"
)

// DefaultCategories returns the categories offered when none are configured.
func DefaultCategories() []string {
	return []string{CategoryPersonal, CategoryBusiness}
}

// Expense is one expense entry. The JSON shape is the persisted format.
type Expense struct {
	ID     uuid.UUID `json:"id"`
	Name   string    `json:"name"`
	Type   string    `json:"type"`
	Amount float64   `json:"amount"`
}

// NewExpense builds a record with a freshly generated ID.
func NewExpense(name, category string, amount float64) Expense {
	return Expense{
		ID:     uuid.New(),
		Name:   name,
		Type:   category,
		Amount: amount,
	}
}
