package contacts

import "time"

// Contact is an address-book entry owned by exactly one user.
type Contact struct {
	ID        int64     `json:"id" db:"id"`
	UserID    int64     `json:"-" db:"user_id"`
	FirstName string    `json:"firstname" db:"first_name"`
	LastName  string    `json:"lastname" db:"last_name"`
	Email     string    `json:"email" db:"email"`
	Phone     string    `json:"phone" db:"phone"`
	Birthday  time.Time `json:"-" db:"birthday"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// MonthDay identifies a calendar day independent of year, used for the
// birthday window query.
type MonthDay struct {
	Month time.Month
	Day   int
}
