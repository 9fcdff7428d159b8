package rest

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"

	"github.com/feral-file/ff-token-ledger/internal/ledger"
)

// BalanceResponse is the response for single balance lookups
type BalanceResponse struct {
	Account string `json:"account"`
	TokenID uint64 `json:"token_id"`
	Balance string `json:"balance"` // decimal string
}

// BalanceBatchRequest asks for pairwise balances of accounts[i], token_ids[i]
type BalanceBatchRequest struct {
	Accounts []string `json:"accounts" binding:"required"`
	TokenIDs []uint64 `json:"token_ids" binding:"required"`
}

// BalanceBatchResponse returns pairwise balances for a batch lookup
type BalanceBatchResponse struct {
	Balances []BalanceResponse `json:"balances"`
}

// ApprovalResponse is the response for approval lookups and updates
type ApprovalResponse struct {
	Owner    string `json:"owner"`
	Operator string `json:"operator"`
	Approved bool   `json:"approved"`
}

// ApprovalRequest grants or revokes operator approval for the caller
type ApprovalRequest struct {
	Operator string `json:"operator" binding:"required"`
	Approved *bool  `json:"approved" binding:"required"`
}

// TransferRequest moves value of one token type between accounts
type TransferRequest struct {
	From    string `json:"from" binding:"required"`
	To      string `json:"to" binding:"required"`
	TokenID uint64 `json:"token_id"`
	Value   string `json:"value" binding:"required"` // decimal string
}

// BatchTransferRequest moves multiple token types between one account pair
type BatchTransferRequest struct {
	From     string   `json:"from" binding:"required"`
	To       string   `json:"to" binding:"required"`
	TokenIDs []uint64 `json:"token_ids" binding:"required"`
	Values   []string `json:"values" binding:"required"` // decimal strings, pairwise with token_ids
}

// MintRequest creates supply for an account
type MintRequest struct {
	To      string `json:"to" binding:"required"`
	TokenID uint64 `json:"token_id"`
	Value   string `json:"value" binding:"required"`
}

// BatchMintRequest creates supply across multiple token types
type BatchMintRequest struct {
	To       string   `json:"to" binding:"required"`
	TokenIDs []uint64 `json:"token_ids" binding:"required"`
	Values   []string `json:"values" binding:"required"`
}

// BurnRequest destroys supply held by an account
type BurnRequest struct {
	From    string `json:"from" binding:"required"`
	TokenID uint64 `json:"token_id"`
	Value   string `json:"value" binding:"required"`
}

// BatchBurnRequest destroys supply across multiple token types
type BatchBurnRequest struct {
	From     string   `json:"from" binding:"required"`
	TokenIDs []uint64 `json:"token_ids" binding:"required"`
	Values   []string `json:"values" binding:"required"`
}

// AcceptedResponse acknowledges an applied mutation
type AcceptedResponse struct {
	Status string `json:"status"`
}

// parseAddress validates and normalizes a hex account address. The zero
// account is accepted here; the ledger rejects it where it matters.
func parseAddress(field, value string) (common.Address, error) {
	if !common.IsHexAddress(value) {
		return common.Address{}, fmt.Errorf("%s is not a valid account address: %q", field, value)
	}
	return common.HexToAddress(value), nil
}

// parseValue parses a decimal token amount
func parseValue(field, value string) (*uint256.Int, error) {
	parsed, err := uint256.FromDecimal(value)
	if err != nil {
		return nil, fmt.Errorf("%s is not a valid decimal amount: %q", field, value)
	}
	return parsed, nil
}

// parseValues parses a pairwise decimal amount array
func parseValues(field string, values []string) ([]*uint256.Int, error) {
	parsed := make([]*uint256.Int, len(values))
	for i, v := range values {
		p, err := parseValue(fmt.Sprintf("%s[%d]", field, i), v)
		if err != nil {
			return nil, err
		}
		parsed[i] = p
	}
	return parsed, nil
}

// tokenIDs converts the wire representation into ledger token ids
func tokenIDs(ids []uint64) []ledger.TokenID {
	out := make([]ledger.TokenID, len(ids))
	for i, id := range ids {
		out[i] = ledger.TokenID(id)
	}
	return out
}
