package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// EventType identifies the shape of a ledger event record
type EventType string

const (
	EventTypeTransferSingle EventType = "transfer_single"
	EventTypeTransferBatch  EventType = "transfer_batch"
	EventTypeApprovalForAll EventType = "approval_for_all"
)

// Event is an emitted ledger notification. The ledger never delivers events
// itself; each mutating operation returns the record it emitted and the host
// decides how to broadcast it.
type Event interface {
	Type() EventType
}

// TransferSingle records a single-token balance movement. Mints carry the
// zero account as From, burns carry it as To.
type TransferSingle struct {
	Operator common.Address
	From     common.Address
	To       common.Address
	ID       TokenID
	Value    *uint256.Int
}

func (*TransferSingle) Type() EventType { return EventTypeTransferSingle }

// TransferBatch records a batch balance movement as one event covering every
// (id, value) pair of the call.
type TransferBatch struct {
	Operator common.Address
	From     common.Address
	To       common.Address
	IDs      []TokenID
	Values   []*uint256.Int
}

func (*TransferBatch) Type() EventType { return EventTypeTransferBatch }

// ApprovalForAll records an operator approval grant or revocation.
type ApprovalForAll struct {
	Account  common.Address
	Operator common.Address
	Approved bool
}

func (*ApprovalForAll) Type() EventType { return EventTypeApprovalForAll }
