package database

import "time"

// UsageStat is the per-user accounting row: how many requests a user has had
// admitted and when the last one started. No message content is stored.
type UsageStat struct {
	UserID        string    `db:"user_id"`
	RequestCount  int64     `db:"request_count"`
	LastRequestAt time.Time `db:"last_request_at"`
	CreatedAt     time.Time `db:"created_at"`
	UpdatedAt     time.Time `db:"updated_at"`
}
