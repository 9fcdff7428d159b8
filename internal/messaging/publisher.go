package messaging

import (
	"context"

	"github.com/feral-file/ff-token-ledger/internal/domain"
)

// Publisher defines the interface for broadcasting ledger events to the
// message broker.
type Publisher interface {
	// PublishEvent publishes a ledger event envelope
	PublishEvent(ctx context.Context, event *domain.LedgerEvent) error
	// Close closes the connection
	Close()
}
