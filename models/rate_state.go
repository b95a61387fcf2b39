package models

import (
	"time"
)

// RateState is the single global interest rate row. The rate stamps any
// account whose balance goes from zero to non-zero and is monotonically
// non-increasing over the system's lifetime.
type RateState struct {
	Rate      int64     `db:"rate"`
	UpdatedBy string    `db:"updated_by"`
	UpdatedAt time.Time `db:"updated_at"`
}
