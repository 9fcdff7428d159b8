package store

import (
	"context"

	"github.com/feral-file/ff-token-ledger/internal/store/schema"
)

// Store defines the interface for database operations
type Store interface {
	// RecordMutation persists the outcome of one successful ledger call in a
	// single transaction: the post-call balance rows, the approval row (nil
	// unless the call was an approval) and the journaled event.
	RecordMutation(ctx context.Context, balances []schema.Balance, approval *schema.OperatorApproval, event *schema.LedgerEvent) error
	// LoadBalances returns every balance row for ledger rehydration at boot
	LoadBalances(ctx context.Context) ([]schema.Balance, error)
	// LoadApprovals returns every approval row for ledger rehydration at boot
	LoadApprovals(ctx context.Context) ([]schema.OperatorApproval, error)
	// Migrate creates or updates the ledger tables
	Migrate(ctx context.Context) error
}
