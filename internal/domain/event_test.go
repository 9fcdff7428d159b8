package domain_test

import (
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-token-ledger/internal/domain"
	"github.com/feral-file/ff-token-ledger/internal/ledger"
)

var (
	operator = common.HexToAddress("0x1111111111111111111111111111111111111111")
	holder   = common.HexToAddress("0x2222222222222222222222222222222222222222")
	receiver = common.HexToAddress("0x3333333333333333333333333333333333333333")

	emittedAt = time.Date(2026, 2, 3, 10, 0, 0, 0, time.UTC)
)

func TestFromLedgerEvent_TransferSingle(t *testing.T) {
	env := domain.FromLedgerEvent(&ledger.TransferSingle{
		Operator: operator,
		From:     holder,
		To:       receiver,
		ID:       7,
		Value:    uint256.NewInt(100),
	}, emittedAt)

	require.NotNil(t, env)
	assert.NotEmpty(t, env.ID)
	assert.Equal(t, domain.EventTypeTransfer, env.EventType)
	assert.False(t, env.Batch)
	assert.Equal(t, operator.Hex(), env.Operator)
	assert.Equal(t, holder.Hex(), env.From)
	assert.Equal(t, receiver.Hex(), env.To)
	assert.Equal(t, []uint64{7}, env.TokenIDs)
	assert.Equal(t, []string{"100"}, env.Values)
	assert.True(t, env.Valid())
}

func TestFromLedgerEvent_MintSingle(t *testing.T) {
	env := domain.FromLedgerEvent(&ledger.TransferSingle{
		Operator: operator,
		From:     ledger.ZeroAccount,
		To:       receiver,
		ID:       1,
		Value:    uint256.NewInt(5),
	}, emittedAt)

	assert.Equal(t, domain.EventTypeMint, env.EventType)
	assert.Empty(t, env.From)
	assert.Equal(t, receiver.Hex(), env.To)
	assert.True(t, env.Valid())
}

func TestFromLedgerEvent_BurnBatch(t *testing.T) {
	env := domain.FromLedgerEvent(&ledger.TransferBatch{
		Operator: operator,
		From:     holder,
		To:       ledger.ZeroAccount,
		IDs:      []ledger.TokenID{1, 2},
		Values:   []*uint256.Int{uint256.NewInt(10), uint256.NewInt(20)},
	}, emittedAt)

	assert.Equal(t, domain.EventTypeBurn, env.EventType)
	assert.True(t, env.Batch)
	assert.Equal(t, holder.Hex(), env.From)
	assert.Empty(t, env.To)
	assert.Equal(t, []uint64{1, 2}, env.TokenIDs)
	assert.Equal(t, []string{"10", "20"}, env.Values)
	assert.True(t, env.Valid())
}

func TestFromLedgerEvent_Approval(t *testing.T) {
	env := domain.FromLedgerEvent(&ledger.ApprovalForAll{
		Account:  holder,
		Operator: operator,
		Approved: true,
	}, emittedAt)

	assert.Equal(t, domain.EventTypeApproval, env.EventType)
	assert.Equal(t, holder.Hex(), env.Operator)
	assert.Equal(t, operator.Hex(), env.To)
	require.NotNil(t, env.Approved)
	assert.True(t, *env.Approved)
	assert.True(t, env.Valid())
}

func TestLedgerEvent_Valid_RejectsMalformed(t *testing.T) {
	base := func() *domain.LedgerEvent {
		return domain.FromLedgerEvent(&ledger.TransferSingle{
			Operator: operator,
			From:     holder,
			To:       receiver,
			ID:       1,
			Value:    uint256.NewInt(1),
		}, emittedAt)
	}

	ev := base()
	ev.EventType = domain.EventType("bogus")
	assert.False(t, ev.Valid())

	ev = base()
	ev.From = ""
	assert.False(t, ev.Valid())

	ev = base()
	ev.Values = []string{"not-a-number"}
	assert.False(t, ev.Valid())

	ev = base()
	ev.TokenIDs = append(ev.TokenIDs, 2) // pairwise arrays now differ in length
	assert.False(t, ev.Valid())

	ev = base()
	ev.TokenIDs = []uint64{1, 2}
	ev.Values = []string{"1", "2"}
	assert.False(t, ev.Valid()) // multi-entry arrays without the batch flag

	ev = base()
	ev.EmittedAt = time.Time{}
	assert.False(t, ev.Valid())
}
