package schema

import (
	"time"

	"gorm.io/datatypes"
)

// LedgerEvent represents the ledger_events table - an append-only journal of
// every notification the ledger emitted
type LedgerEvent struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// EventID is the UUID assigned at emission
	EventID string `gorm:"column:event_id;not null;type:uuid;uniqueIndex:idx_ledger_events_event_id"`
	// EventType is transfer, mint, burn or approval
	EventType string `gorm:"column:event_type;not null;type:text;index:idx_ledger_events_type"`
	// Batch marks events emitted by batch operations
	Batch bool `gorm:"column:batch;not null"`
	// Operator is the caller the host supplied for the emitting call
	Operator string `gorm:"column:operator;not null;type:text;index:idx_ledger_events_operator"`
	// FromAddress is the debited account (empty for mint and approval)
	FromAddress string `gorm:"column:from_address;type:text"`
	// ToAddress is the credited account (empty for burn)
	ToAddress string `gorm:"column:to_address;type:text"`
	// TokenIDs holds the token id array as JSON
	TokenIDs datatypes.JSON `gorm:"column:token_ids;type:jsonb"`
	// Values holds the decimal value strings as JSON, pairwise with TokenIDs
	Values datatypes.JSON `gorm:"column:values;type:jsonb"`
	// Approved is set for approval events only
	Approved *bool `gorm:"column:approved"`
	// EmittedAt is the time the ledger emitted the event
	EmittedAt time.Time `gorm:"column:emitted_at;not null;type:timestamptz"`
	// CreatedAt is the timestamp when the row was journaled
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the LedgerEvent model
func (LedgerEvent) TableName() string {
	return "ledger_events"
}
