package ledger

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
)

// TokenID identifies a token class. There is no registry of valid ids; any id
// may receive a balance implicitly.
type TokenID uint64

// ZeroAccount is the null sentinel. It never holds a balance: it only appears
// as the implicit counterparty on mint and burn events.
var ZeroAccount = common.Address{}

type balanceKey struct {
	account common.Address
	token   TokenID
}

type approvalKey struct {
	owner    common.Address
	operator common.Address
}

// Ledger tracks fungible balances for many token ids per account, plus
// operator approvals. Both maps are sparse: a missing balance entry reads as
// zero and a missing approval entry reads as false. Entries are never removed,
// only updated.
//
// The ledger itself is not safe for concurrent use; the host is expected to
// run one operation to completion before starting the next.
type Ledger struct {
	balances  map[balanceKey]*uint256.Int
	approvals map[approvalKey]bool

	enforceAuth bool
}

// Option configures a Ledger at construction time.
type Option func(*Ledger)

// WithoutAuthorization disables the owner-or-approved-operator guard on
// transfers, letting any caller move any account's tokens. This matches the
// original reference contract, which shipped with the guard disabled.
func WithoutAuthorization() Option {
	return func(l *Ledger) { l.enforceAuth = false }
}

// New creates an empty ledger. Transfer authorization is enforced unless
// WithoutAuthorization is given.
func New(opts ...Option) *Ledger {
	l := &Ledger{
		balances:    make(map[balanceKey]*uint256.Int),
		approvals:   make(map[approvalKey]bool),
		enforceAuth: true,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Clone returns a deep copy of the ledger. Hosts use it as the transaction
// boundary for batch operations: run the call on the clone, promote it on
// success, discard it on error.
func (l *Ledger) Clone() *Ledger {
	c := &Ledger{
		balances:    make(map[balanceKey]*uint256.Int, len(l.balances)),
		approvals:   make(map[approvalKey]bool, len(l.approvals)),
		enforceAuth: l.enforceAuth,
	}
	for k, v := range l.balances {
		c.balances[k] = v.Clone()
	}
	for k, v := range l.approvals {
		c.approvals[k] = v
	}
	return c
}

// BalanceOf returns the balance of account for token id, or zero if no entry
// exists. The returned value is a copy; mutating it does not touch the ledger.
func (l *Ledger) BalanceOf(account common.Address, id TokenID) *uint256.Int {
	return l.balanceOrZero(account, id)
}

// BalanceOfBatch returns the pairwise balances of accounts[i] for ids[i].
// Each index is looked up independently.
func (l *Ledger) BalanceOfBatch(accounts []common.Address, ids []TokenID) ([]*uint256.Int, error) {
	if len(accounts) != len(ids) {
		return nil, ErrInvalidArrayLength
	}

	balances := make([]*uint256.Int, 0, len(accounts))
	for i := range accounts {
		balances = append(balances, l.balanceOrZero(accounts[i], ids[i]))
	}

	return balances, nil
}

// IsApprovedForAll reports whether operator may act on account's behalf.
func (l *Ledger) IsApprovedForAll(account, operator common.Address) bool {
	return l.approvedForAll(account, operator)
}

// SetApprovalForAll grants or revokes operator's permission to move the
// caller's tokens. Self-approval is rejected at the grant site.
func (l *Ledger) SetApprovalForAll(caller, operator common.Address, approved bool) (*ApprovalForAll, error) {
	if operator == caller {
		return nil, ErrApprovalForSelf
	}

	l.approvals[approvalKey{owner: caller, operator: operator}] = approved

	return &ApprovalForAll{
		Account:  caller,
		Operator: operator,
		Approved: approved,
	}, nil
}

// SafeTransferFrom moves value tokens of token id from from to to.
func (l *Ledger) SafeTransferFrom(caller, from, to common.Address, id TokenID, value *uint256.Int) (*TransferSingle, error) {
	if to == ZeroAccount {
		return nil, ErrInvalidZeroAccount
	}

	if err := l.authorize(caller, from); err != nil {
		return nil, err
	}

	if err := l.transferToken(from, to, id, value); err != nil {
		return nil, err
	}

	return &TransferSingle{
		Operator: caller,
		From:     from,
		To:       to,
		ID:       id,
		Value:    value.Clone(),
	}, nil
}

// SafeBatchTransferFrom moves multiple token types from from to to, applying
// the single-transfer rule per (ids[i], values[i]) pair in input order. It
// stops at the first failing index and returns its error; mutations applied
// for earlier indices are not rolled back here — the host discards the whole
// call's state changes on error.
func (l *Ledger) SafeBatchTransferFrom(caller, from, to common.Address, ids []TokenID, values []*uint256.Int) (*TransferBatch, error) {
	if len(ids) != len(values) {
		return nil, ErrInvalidArrayLength
	}

	if to == ZeroAccount {
		return nil, ErrInvalidZeroAccount
	}

	if err := l.authorize(caller, from); err != nil {
		return nil, err
	}

	for i := range ids {
		if err := l.transferToken(from, to, ids[i], values[i]); err != nil {
			return nil, err
		}
	}

	return &TransferBatch{
		Operator: caller,
		From:     from,
		To:       to,
		IDs:      append([]TokenID(nil), ids...),
		Values:   cloneValues(values),
	}, nil
}

// Mint creates value tokens of token id and assigns them to to. There is no
// source debit; this is supply creation.
func (l *Ledger) Mint(caller, to common.Address, id TokenID, value *uint256.Int) (*TransferSingle, error) {
	if to == ZeroAccount {
		return nil, ErrInvalidZeroAccount
	}

	if err := l.addToken(to, id, value); err != nil {
		return nil, err
	}

	return &TransferSingle{
		Operator: caller,
		From:     ZeroAccount,
		To:       to,
		ID:       id,
		Value:    value.Clone(),
	}, nil
}

// MintBatch credits to with each (ids[i], values[i]) pair in input order.
func (l *Ledger) MintBatch(caller, to common.Address, ids []TokenID, values []*uint256.Int) (*TransferBatch, error) {
	if to == ZeroAccount {
		return nil, ErrInvalidZeroAccount
	}

	if len(ids) != len(values) {
		return nil, ErrInvalidArrayLength
	}

	for i := range ids {
		if err := l.addToken(to, ids[i], values[i]); err != nil {
			return nil, err
		}
	}

	return &TransferBatch{
		Operator: caller,
		From:     ZeroAccount,
		To:       to,
		IDs:      append([]TokenID(nil), ids...),
		Values:   cloneValues(values),
	}, nil
}

// Burn destroys value tokens of token id held by from. There is no
// destination credit; this is supply destruction.
func (l *Ledger) Burn(caller, from common.Address, id TokenID, value *uint256.Int) (*TransferSingle, error) {
	if from == ZeroAccount {
		return nil, ErrInvalidZeroAccount
	}

	if err := l.removeToken(from, id, value); err != nil {
		return nil, err
	}

	return &TransferSingle{
		Operator: caller,
		From:     from,
		To:       ZeroAccount,
		ID:       id,
		Value:    value.Clone(),
	}, nil
}

// BurnBatch debits from for each (ids[i], values[i]) pair in input order,
// stopping at the first pair with insufficient balance.
func (l *Ledger) BurnBatch(caller, from common.Address, ids []TokenID, values []*uint256.Int) (*TransferBatch, error) {
	if from == ZeroAccount {
		return nil, ErrInvalidZeroAccount
	}

	if len(ids) != len(values) {
		return nil, ErrInvalidArrayLength
	}

	for i := range ids {
		if err := l.removeToken(from, ids[i], values[i]); err != nil {
			return nil, err
		}
	}

	return &TransferBatch{
		Operator: caller,
		From:     from,
		To:       ZeroAccount,
		IDs:      append([]TokenID(nil), ids...),
		Values:   cloneValues(values),
	}, nil
}

// RestoreBalance seeds a balance entry without emitting an event. It exists
// for host rehydration from durable storage at boot and must not be used as a
// mutation path afterwards.
func (l *Ledger) RestoreBalance(account common.Address, id TokenID, value *uint256.Int) error {
	if account == ZeroAccount {
		return ErrInvalidZeroAccount
	}
	l.balances[balanceKey{account: account, token: id}] = value.Clone()
	return nil
}

// RestoreApproval seeds an approval entry without emitting an event; the
// rehydration counterpart of SetApprovalForAll.
func (l *Ledger) RestoreApproval(owner, operator common.Address, approved bool) error {
	if operator == owner {
		return ErrApprovalForSelf
	}
	l.approvals[approvalKey{owner: owner, operator: operator}] = approved
	return nil
}

// authorize checks the owner-or-approved-operator rule for moving tokens out
// of from. A no-op when the ledger was built WithoutAuthorization.
func (l *Ledger) authorize(caller, from common.Address) error {
	if !l.enforceAuth {
		return nil
	}
	if caller == from || l.approvedForAll(from, caller) {
		return nil
	}
	return ErrNotOwnerOrNotApproved
}

// transferToken debits from and credits to for a single token id. The debit
// is written before the credit is read so that a self-transfer conserves the
// balance instead of double counting it.
func (l *Ledger) transferToken(from, to common.Address, id TokenID, value *uint256.Int) error {
	fromKey := balanceKey{account: from, token: id}
	fromBalance := l.balanceOrZero(from, id)
	if fromBalance.Lt(value) {
		return ErrInsufficientBalance
	}

	l.balances[fromKey] = new(uint256.Int).Sub(fromBalance, value)

	toBalance := l.balanceOrZero(to, id)
	sum, overflow := new(uint256.Int).AddOverflow(toBalance, value)
	if overflow {
		l.balances[fromKey] = fromBalance
		return ErrCannotInsert
	}
	l.balances[balanceKey{account: to, token: id}] = sum

	return nil
}

func (l *Ledger) addToken(to common.Address, id TokenID, value *uint256.Int) error {
	toBalance := l.balanceOrZero(to, id)
	sum, overflow := new(uint256.Int).AddOverflow(toBalance, value)
	if overflow {
		return ErrCannotInsert
	}
	l.balances[balanceKey{account: to, token: id}] = sum
	return nil
}

func (l *Ledger) removeToken(from common.Address, id TokenID, value *uint256.Int) error {
	fromBalance := l.balanceOrZero(from, id)
	if fromBalance.Lt(value) {
		return ErrInsufficientBalance
	}
	l.balances[balanceKey{account: from, token: id}] = fromBalance.Sub(fromBalance, value)
	return nil
}

// balanceOrZero returns a copy of the stored balance, or a fresh zero. Reads
// never materialize map entries.
func (l *Ledger) balanceOrZero(account common.Address, id TokenID) *uint256.Int {
	if balance, ok := l.balances[balanceKey{account: account, token: id}]; ok {
		return balance.Clone()
	}
	return new(uint256.Int)
}

func (l *Ledger) approvedForAll(account, operator common.Address) bool {
	return l.approvals[approvalKey{owner: account, operator: operator}]
}

func cloneValues(values []*uint256.Int) []*uint256.Int {
	cloned := make([]*uint256.Int, len(values))
	for i, v := range values {
		cloned[i] = v.Clone()
	}
	return cloned
}
