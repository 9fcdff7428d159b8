package schema

import (
	"time"
)

// OperatorApproval represents the operator_approvals table - the durable
// snapshot of (owner, operator) -> approved
type OperatorApproval struct {
	// ID is the internal database primary key
	ID int64 `gorm:"column:id;primaryKey;autoIncrement"`
	// Owner is the account granting the approval
	Owner string `gorm:"column:owner;not null;type:text;uniqueIndex:idx_approvals_owner_operator,priority:1"`
	// Operator is the account allowed to act on the owner's behalf
	Operator string `gorm:"column:operator;not null;type:text;uniqueIndex:idx_approvals_owner_operator,priority:2"`
	// Approved is the current approval flag
	Approved bool `gorm:"column:approved;not null"`
	// CreatedAt is the timestamp when this approval was first recorded
	CreatedAt time.Time `gorm:"column:created_at;not null;default:now();type:timestamptz"`
	// UpdatedAt is the timestamp when this approval was last toggled
	UpdatedAt time.Time `gorm:"column:updated_at;not null;default:now();type:timestamptz"`
}

// TableName specifies the table name for the OperatorApproval model
func (OperatorApproval) TableName() string {
	return "operator_approvals"
}
