// Package types defines core domain types shared across all layers.
// This package contains NO business logic - only type definitions and the
// key derivations that identify services and baskets.
package types

import (
	"fmt"
	"time"
)

// YearMonthLayout formats a timestamp as its calendar month, e.g. 2017-08.
const YearMonthLayout = "2006-01"

// Transaction is one purchase of a service by a user. It is read-only input.
type Transaction struct {
	UserID     int       `json:"user_id"`
	ServiceID  int       `json:"service_id"`
	CategoryID int       `json:"category_id"`
	CreateDate time.Time `json:"create_date"`
}

// ServiceCategory identifies a distinct purchasable service.
// Format: {ServiceId}_{CategoryId}
// The same ServiceId under two categories is two different services.
type ServiceCategory string

// String returns the string representation
func (s ServiceCategory) String() string {
	return string(s)
}

// BasketID identifies one user's purchases within one calendar month.
// Format: {YYYY-MM}_{UserId}
type BasketID string

// String returns the string representation
func (b BasketID) String() string {
	return string(b)
}

// ServiceCategory derives the service key of the transaction.
func (t Transaction) ServiceCategory() ServiceCategory {
	return ServiceCategory(fmt.Sprintf("%d_%d", t.ServiceID, t.CategoryID))
}

// YearMonth returns the calendar month of CreateDate in its own location.
func (t Transaction) YearMonth() string {
	return t.CreateDate.Format(YearMonthLayout)
}

// Basket derives the basket key of the transaction.
func (t Transaction) Basket() BasketID {
	return BasketID(fmt.Sprintf("%s_%d", t.YearMonth(), t.UserID))
}
