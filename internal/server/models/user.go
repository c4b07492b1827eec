package models

import "time"

// User is a registered account. Password holds the bcrypt hash.
type User struct {
	ID        string
	Name      string
	Email     string
	Password  string
	Photo     string
	Role      string
	Verified  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}
