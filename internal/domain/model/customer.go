package model

import "time"

// Customer is an account that owns baskets and orders.
type Customer struct {
	ID           int64
	Login        string
	PasswordHash string
	CreatedAt    time.Time
}
