package wallet

import "time"

// Wallet is a stored-value account, one row per (owner, currency). Balances are
// non-negative integers in the smallest currency unit.
type Wallet struct {
	ID        string
	OwnerID   string
	Currency  string
	Available int64
	Held      int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
