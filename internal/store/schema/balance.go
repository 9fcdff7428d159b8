package schema

import (
	"time"
)

// Balance represents the balances table - the durable snapshot of the
// in-memory ledger's (account, token_id) -> quantity map
type Balance struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Account is the owning account address
	Account string `gorm:"column:account;not null;type:text;uniqueIndex:idx_balances_account_token,priority:1"`
	// TokenID identifies the token class
	TokenID uint64 `gorm:"column:token_id;not null;uniqueIndex:idx_balances_account_token,priority:2"`
	// Quantity is the balance (stored as string to support up to 78 digits)
	Quantity string `gorm:"column:quantity;not null;type:numeric(78,0)"`
	// CreatedAt is the timestamp when this balance was created
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this balance was last updated
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the Balance model
func (Balance) TableName() string {
	return "balances"
}
