package executor

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/feral-file/ff-token-ledger/internal/domain"
	"github.com/feral-file/ff-token-ledger/internal/ledger"
	"github.com/feral-file/ff-token-ledger/internal/logger"
	"github.com/feral-file/ff-token-ledger/internal/messaging"
	"github.com/feral-file/ff-token-ledger/internal/store"
	"github.com/feral-file/ff-token-ledger/internal/store/schema"
)

// Executor hosts the ledger state machine: it serializes calls, injects the
// caller identity, persists successful mutations and broadcasts emitted
// events. Failed calls never leave partial writes visible — mutations run on
// a clone that is only promoted once both the ledger call and the durable
// write succeed.
type Executor interface {
	// BalanceOf returns the balance of account for token id
	BalanceOf(ctx context.Context, account common.Address, id ledger.TokenID) *uint256.Int
	// BalanceOfBatch returns pairwise balances for accounts[i], ids[i]
	BalanceOfBatch(ctx context.Context, accounts []common.Address, ids []ledger.TokenID) ([]*uint256.Int, error)
	// IsApprovedForAll reports whether operator may act for account
	IsApprovedForAll(ctx context.Context, account, operator common.Address) bool
	// SetApprovalForAll grants or revokes operator approval for the caller
	SetApprovalForAll(ctx context.Context, caller, operator common.Address, approved bool) error
	// SafeTransferFrom moves value of token id from from to to
	SafeTransferFrom(ctx context.Context, caller, from, to common.Address, id ledger.TokenID, value *uint256.Int) error
	// SafeBatchTransferFrom moves multiple token types in one call
	SafeBatchTransferFrom(ctx context.Context, caller, from, to common.Address, ids []ledger.TokenID, values []*uint256.Int) error
	// Mint creates supply for to
	Mint(ctx context.Context, caller, to common.Address, id ledger.TokenID, value *uint256.Int) error
	// MintBatch creates supply for to across multiple token types
	MintBatch(ctx context.Context, caller, to common.Address, ids []ledger.TokenID, values []*uint256.Int) error
	// Burn destroys supply held by from
	Burn(ctx context.Context, caller, from common.Address, id ledger.TokenID, value *uint256.Int) error
	// BurnBatch destroys supply held by from across multiple token types
	BurnBatch(ctx context.Context, caller, from common.Address, ids []ledger.TokenID, values []*uint256.Int) error
}

type executor struct {
	mu        sync.Mutex
	led       *ledger.Ledger
	store     store.Store
	publisher messaging.Publisher
}

// NewExecutor creates an executor hosting the given ledger.
func NewExecutor(led *ledger.Ledger, st store.Store, pub messaging.Publisher) Executor {
	return &executor{
		led:       led,
		store:     st,
		publisher: pub,
	}
}

// Rehydrate builds a ledger from the durable balance and approval snapshots.
func Rehydrate(ctx context.Context, st store.Store, opts ...ledger.Option) (*ledger.Ledger, error) {
	led := ledger.New(opts...)

	balances, err := st.LoadBalances(ctx)
	if err != nil {
		return nil, err
	}
	for _, row := range balances {
		quantity, err := uint256.FromDecimal(row.Quantity)
		if err != nil {
			return nil, fmt.Errorf("invalid stored quantity for account %s token %d: %w", row.Account, row.TokenID, err)
		}
		if err := led.RestoreBalance(common.HexToAddress(row.Account), ledger.TokenID(row.TokenID), quantity); err != nil {
			return nil, fmt.Errorf("failed to restore balance for account %s token %d: %w", row.Account, row.TokenID, err)
		}
	}

	approvals, err := st.LoadApprovals(ctx)
	if err != nil {
		return nil, err
	}
	for _, row := range approvals {
		if err := led.RestoreApproval(common.HexToAddress(row.Owner), common.HexToAddress(row.Operator), row.Approved); err != nil {
			return nil, fmt.Errorf("failed to restore approval %s -> %s: %w", row.Owner, row.Operator, err)
		}
	}

	return led, nil
}

func (e *executor) BalanceOf(_ context.Context, account common.Address, id ledger.TokenID) *uint256.Int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.led.BalanceOf(account, id)
}

func (e *executor) BalanceOfBatch(_ context.Context, accounts []common.Address, ids []ledger.TokenID) ([]*uint256.Int, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.led.BalanceOfBatch(accounts, ids)
}

func (e *executor) IsApprovedForAll(_ context.Context, account, operator common.Address) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.led.IsApprovedForAll(account, operator)
}

func (e *executor) SetApprovalForAll(ctx context.Context, caller, operator common.Address, approved bool) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	work := e.led.Clone()
	ev, err := work.SetApprovalForAll(caller, operator, approved)
	if err != nil {
		return err
	}

	env := domain.FromLedgerEvent(ev, time.Now().UTC())
	approvalRow := &schema.OperatorApproval{
		Owner:    caller.Hex(),
		Operator: operator.Hex(),
		Approved: approved,
	}

	return e.commit(ctx, work, nil, approvalRow, env)
}

func (e *executor) SafeTransferFrom(ctx context.Context, caller, from, to common.Address, id ledger.TokenID, value *uint256.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	work := e.led.Clone()
	ev, err := work.SafeTransferFrom(caller, from, to, id, value)
	if err != nil {
		return err
	}

	env := domain.FromLedgerEvent(ev, time.Now().UTC())
	rows := balanceRows(work, []common.Address{from, to}, []ledger.TokenID{id})

	return e.commit(ctx, work, rows, nil, env)
}

func (e *executor) SafeBatchTransferFrom(ctx context.Context, caller, from, to common.Address, ids []ledger.TokenID, values []*uint256.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	work := e.led.Clone()
	ev, err := work.SafeBatchTransferFrom(caller, from, to, ids, values)
	if err != nil {
		return err
	}

	env := domain.FromLedgerEvent(ev, time.Now().UTC())
	rows := balanceRows(work, []common.Address{from, to}, ids)

	return e.commit(ctx, work, rows, nil, env)
}

func (e *executor) Mint(ctx context.Context, caller, to common.Address, id ledger.TokenID, value *uint256.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	work := e.led.Clone()
	ev, err := work.Mint(caller, to, id, value)
	if err != nil {
		return err
	}

	env := domain.FromLedgerEvent(ev, time.Now().UTC())
	rows := balanceRows(work, []common.Address{to}, []ledger.TokenID{id})

	return e.commit(ctx, work, rows, nil, env)
}

func (e *executor) MintBatch(ctx context.Context, caller, to common.Address, ids []ledger.TokenID, values []*uint256.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	work := e.led.Clone()
	ev, err := work.MintBatch(caller, to, ids, values)
	if err != nil {
		return err
	}

	env := domain.FromLedgerEvent(ev, time.Now().UTC())
	rows := balanceRows(work, []common.Address{to}, ids)

	return e.commit(ctx, work, rows, nil, env)
}

func (e *executor) Burn(ctx context.Context, caller, from common.Address, id ledger.TokenID, value *uint256.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	work := e.led.Clone()
	ev, err := work.Burn(caller, from, id, value)
	if err != nil {
		return err
	}

	env := domain.FromLedgerEvent(ev, time.Now().UTC())
	rows := balanceRows(work, []common.Address{from}, []ledger.TokenID{id})

	return e.commit(ctx, work, rows, nil, env)
}

func (e *executor) BurnBatch(ctx context.Context, caller, from common.Address, ids []ledger.TokenID, values []*uint256.Int) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	work := e.led.Clone()
	ev, err := work.BurnBatch(caller, from, ids, values)
	if err != nil {
		return err
	}

	env := domain.FromLedgerEvent(ev, time.Now().UTC())
	rows := balanceRows(work, []common.Address{from}, ids)

	return e.commit(ctx, work, rows, nil, env)
}

// commit persists the call outcome, promotes the working ledger and
// broadcasts the event. A publish failure does not fail the call: the event
// is already journaled, so consumers can recover it.
func (e *executor) commit(ctx context.Context, work *ledger.Ledger, balances []schema.Balance, approval *schema.OperatorApproval, env *domain.LedgerEvent) error {
	eventRow, err := eventRow(env)
	if err != nil {
		return err
	}

	if err := e.store.RecordMutation(ctx, balances, approval, eventRow); err != nil {
		return fmt.Errorf("failed to persist mutation: %w", err)
	}

	e.led = work

	if err := e.publisher.PublishEvent(ctx, env); err != nil {
		logger.Warn("Failed to publish ledger event",
			zap.Error(err),
			zap.String("event_id", env.ID),
			zap.String("event_type", string(env.EventType)),
		)
	}

	return nil
}

// balanceRows snapshots the post-call balances of every (account, id) pair a
// call may have touched, deduplicated on the natural key.
func balanceRows(led *ledger.Ledger, accounts []common.Address, ids []ledger.TokenID) []schema.Balance {
	type key struct {
		account common.Address
		id      ledger.TokenID
	}

	seen := make(map[key]struct{})
	rows := make([]schema.Balance, 0, len(accounts)*len(ids))
	for _, account := range accounts {
		for _, id := range ids {
			k := key{account: account, id: id}
			if _, ok := seen[k]; ok {
				continue
			}
			seen[k] = struct{}{}
			rows = append(rows, schema.Balance{
				Account:  account.Hex(),
				TokenID:  uint64(id),
				Quantity: led.BalanceOf(account, id).Dec(),
			})
		}
	}
	return rows
}

// eventRow converts the wire envelope into its journal row.
func eventRow(env *domain.LedgerEvent) (*schema.LedgerEvent, error) {
	tokenIDs, err := json.Marshal(env.TokenIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal token ids: %w", err)
	}
	values, err := json.Marshal(env.Values)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal values: %w", err)
	}

	return &schema.LedgerEvent{
		EventID:     env.ID,
		EventType:   string(env.EventType),
		Batch:       env.Batch,
		Operator:    env.Operator,
		FromAddress: env.From,
		ToAddress:   env.To,
		TokenIDs:    datatypes.JSON(tokenIDs),
		Values:      datatypes.JSON(values),
		Approved:    env.Approved,
		EmittedAt:   env.EmittedAt,
	}, nil
}
