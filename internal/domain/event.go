package domain

import (
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/google/uuid"
	"github.com/holiman/uint256"

	"github.com/feral-file/ff-token-ledger/internal/ledger"
)

// EventType classifies a ledger event envelope
type EventType string

const (
	EventTypeTransfer EventType = "transfer"
	EventTypeMint     EventType = "mint"
	EventTypeBurn     EventType = "burn"
	EventTypeApproval EventType = "approval"
)

// LedgerEvent is the normalized ledger notification published to NATS and
// journaled to the database. Transfer-shaped events always carry parallel
// token_ids/values arrays; single-item operations produce arrays of length
// one. Mints omit from, burns omit to.
type LedgerEvent struct {
	ID        string    `json:"id"` // UUID assigned at emission
	EventType EventType `json:"event_type"`
	Batch     bool      `json:"batch"`               // true when emitted by a batch operation
	Operator  string    `json:"operator"`            // caller supplied by the host
	From      string    `json:"from,omitempty"`      // empty for mint and approval
	To        string    `json:"to,omitempty"`        // empty for burn; operator's counterparty for approval
	TokenIDs  []uint64  `json:"token_ids,omitempty"` // empty for approval
	Values    []string  `json:"values,omitempty"`    // decimal strings, pairwise with token_ids
	Approved  *bool     `json:"approved,omitempty"`  // approval events only
	EmittedAt time.Time `json:"emitted_at"`
}

// FromLedgerEvent converts a core ledger event record into the wire envelope.
func FromLedgerEvent(ev ledger.Event, emittedAt time.Time) *LedgerEvent {
	env := &LedgerEvent{
		ID:        uuid.NewString(),
		EmittedAt: emittedAt,
	}

	switch e := ev.(type) {
	case *ledger.TransferSingle:
		env.Operator = e.Operator.Hex()
		env.TokenIDs = []uint64{uint64(e.ID)}
		env.Values = []string{e.Value.Dec()}
		env.EventType, env.From, env.To = classifyTransfer(e.From, e.To)
	case *ledger.TransferBatch:
		env.Batch = true
		env.Operator = e.Operator.Hex()
		env.TokenIDs = make([]uint64, len(e.IDs))
		env.Values = make([]string, len(e.Values))
		for i := range e.IDs {
			env.TokenIDs[i] = uint64(e.IDs[i])
			env.Values[i] = e.Values[i].Dec()
		}
		env.EventType, env.From, env.To = classifyTransfer(e.From, e.To)
	case *ledger.ApprovalForAll:
		env.EventType = EventTypeApproval
		env.Operator = e.Account.Hex()
		env.To = e.Operator.Hex()
		approved := e.Approved
		env.Approved = &approved
	}

	return env
}

// classifyTransfer maps the zero-account convention onto mint/burn/transfer.
func classifyTransfer(from, to common.Address) (EventType, string, string) {
	switch {
	case from == ledger.ZeroAccount:
		return EventTypeMint, "", to.Hex()
	case to == ledger.ZeroAccount:
		return EventTypeBurn, from.Hex(), ""
	default:
		return EventTypeTransfer, from.Hex(), to.Hex()
	}
}

// Valid reports whether the envelope is internally consistent. It mirrors the
// core invariants so a consumer can reject malformed messages cheaply.
func (e *LedgerEvent) Valid() bool {
	if e.ID == "" || e.Operator == "" || e.EmittedAt.IsZero() {
		return false
	}

	switch e.EventType {
	case EventTypeTransfer:
		if e.From == "" || e.To == "" {
			return false
		}
	case EventTypeMint:
		if e.From != "" || e.To == "" {
			return false
		}
	case EventTypeBurn:
		if e.From == "" || e.To != "" {
			return false
		}
	case EventTypeApproval:
		return e.To != "" && e.Approved != nil && len(e.TokenIDs) == 0 && len(e.Values) == 0
	default:
		return false
	}

	if len(e.TokenIDs) == 0 || len(e.TokenIDs) != len(e.Values) {
		return false
	}
	if !e.Batch && len(e.TokenIDs) != 1 {
		return false
	}
	for _, v := range e.Values {
		if _, err := uint256.FromDecimal(v); err != nil {
			return false
		}
	}

	return true
}
