package rest_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"
	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/feral-file/ff-token-ledger/internal/api/middleware"
	"github.com/feral-file/ff-token-ledger/internal/api/rest"
	"github.com/feral-file/ff-token-ledger/internal/ledger"
)

var (
	alice = common.HexToAddress("0x1111111111111111111111111111111111111111")
	bob   = common.HexToAddress("0x2222222222222222222222222222222222222222")
	carol = common.HexToAddress("0x3333333333333333333333333333333333333333")
)

// fakeExecutor runs ledger calls without persistence or publishing. Batch
// mutations are checked on a clone first so a failed call never leaves
// partial state, the same discipline the real executor follows.
type fakeExecutor struct {
	led *ledger.Ledger
}

func (f *fakeExecutor) BalanceOf(_ context.Context, account common.Address, id ledger.TokenID) *uint256.Int {
	return f.led.BalanceOf(account, id)
}

func (f *fakeExecutor) BalanceOfBatch(_ context.Context, accounts []common.Address, ids []ledger.TokenID) ([]*uint256.Int, error) {
	return f.led.BalanceOfBatch(accounts, ids)
}

func (f *fakeExecutor) IsApprovedForAll(_ context.Context, account, operator common.Address) bool {
	return f.led.IsApprovedForAll(account, operator)
}

func (f *fakeExecutor) SetApprovalForAll(_ context.Context, caller, operator common.Address, approved bool) error {
	_, err := f.led.SetApprovalForAll(caller, operator, approved)
	return err
}

func (f *fakeExecutor) SafeTransferFrom(_ context.Context, caller, from, to common.Address, id ledger.TokenID, value *uint256.Int) error {
	_, err := f.led.SafeTransferFrom(caller, from, to, id, value)
	return err
}

func (f *fakeExecutor) SafeBatchTransferFrom(_ context.Context, caller, from, to common.Address, ids []ledger.TokenID, values []*uint256.Int) error {
	if _, err := f.led.Clone().SafeBatchTransferFrom(caller, from, to, ids, values); err != nil {
		return err
	}
	_, err := f.led.SafeBatchTransferFrom(caller, from, to, ids, values)
	return err
}

func (f *fakeExecutor) Mint(_ context.Context, caller, to common.Address, id ledger.TokenID, value *uint256.Int) error {
	_, err := f.led.Mint(caller, to, id, value)
	return err
}

func (f *fakeExecutor) MintBatch(_ context.Context, caller, to common.Address, ids []ledger.TokenID, values []*uint256.Int) error {
	if _, err := f.led.Clone().MintBatch(caller, to, ids, values); err != nil {
		return err
	}
	_, err := f.led.MintBatch(caller, to, ids, values)
	return err
}

func (f *fakeExecutor) Burn(_ context.Context, caller, from common.Address, id ledger.TokenID, value *uint256.Int) error {
	_, err := f.led.Burn(caller, from, id, value)
	return err
}

func (f *fakeExecutor) BurnBatch(_ context.Context, caller, from common.Address, ids []ledger.TokenID, values []*uint256.Int) error {
	if _, err := f.led.Clone().BurnBatch(caller, from, ids, values); err != nil {
		return err
	}
	_, err := f.led.BurnBatch(caller, from, ids, values)
	return err
}

// setupRouter wires the handler behind a stub auth layer acting as caller
func setupRouter(led *ledger.Ledger, caller common.Address) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()

	router.Use(func(c *gin.Context) {
		c.Set(middleware.AUTH_TYPE_KEY, "jwt")
		c.Set(middleware.AUTH_SUBJECT_KEY, caller.Hex())
		c.Next()
	})

	handler := rest.NewHandler(&fakeExecutor{led: led})

	router.GET("/health", handler.HealthCheck)
	v1 := router.Group("/api/v1")
	{
		v1.GET("/balances/:account/:id", handler.GetBalance)
		v1.POST("/balances/batch", handler.GetBalanceBatch)
		v1.GET("/approvals/:account/:operator", handler.GetApproval)
		v1.PUT("/approvals", handler.SetApproval)
		v1.POST("/transfers", handler.Transfer)
		v1.POST("/transfers/batch", handler.TransferBatch)
		v1.POST("/mint", handler.Mint)
		v1.POST("/mint/batch", handler.MintBatch)
		v1.POST("/burn", handler.Burn)
		v1.POST("/burn/batch", handler.BurnBatch)
	}

	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func seededLedger(t *testing.T) *ledger.Ledger {
	t.Helper()

	led := ledger.New()
	_, err := led.Mint(alice, alice, 1, uint256.NewInt(100))
	require.NoError(t, err)
	return led
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()

	var body struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body.Error.Code
}

func TestHealthCheck(t *testing.T) {
	router := setupRouter(ledger.New(), alice)

	w := doJSON(t, router, http.MethodGet, "/health", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestGetBalance(t *testing.T) {
	router := setupRouter(seededLedger(t), alice)

	w := doJSON(t, router, http.MethodGet, "/api/v1/balances/"+alice.Hex()+"/1", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp rest.BalanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, alice.Hex(), resp.Account)
	assert.Equal(t, uint64(1), resp.TokenID)
	assert.Equal(t, "100", resp.Balance)
}

func TestGetBalance_UnknownAccountIsZero(t *testing.T) {
	router := setupRouter(ledger.New(), alice)

	w := doJSON(t, router, http.MethodGet, "/api/v1/balances/"+bob.Hex()+"/9", nil)

	assert.Equal(t, http.StatusOK, w.Code)

	var resp rest.BalanceResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "0", resp.Balance)
}

func TestGetBalance_InvalidAddress(t *testing.T) {
	router := setupRouter(ledger.New(), alice)

	w := doJSON(t, router, http.MethodGet, "/api/v1/balances/not-an-address/1", nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_failed", errorCode(t, w))
}

func TestGetBalanceBatch(t *testing.T) {
	router := setupRouter(seededLedger(t), alice)

	w := doJSON(t, router, http.MethodPost, "/api/v1/balances/batch", rest.BalanceBatchRequest{
		Accounts: []string{alice.Hex(), bob.Hex()},
		TokenIDs: []uint64{1, 1},
	})

	assert.Equal(t, http.StatusOK, w.Code)

	var resp rest.BalanceBatchResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Balances, 2)
	assert.Equal(t, "100", resp.Balances[0].Balance)
	assert.Equal(t, "0", resp.Balances[1].Balance)
}

func TestGetBalanceBatch_LengthMismatch(t *testing.T) {
	router := setupRouter(ledger.New(), alice)

	w := doJSON(t, router, http.MethodPost, "/api/v1/balances/batch", rest.BalanceBatchRequest{
		Accounts: []string{alice.Hex(), bob.Hex()},
		TokenIDs: []uint64{1},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_array_length", errorCode(t, w))
}

func TestSetApprovalAndGetApproval(t *testing.T) {
	router := setupRouter(ledger.New(), alice)

	approved := true
	w := doJSON(t, router, http.MethodPut, "/api/v1/approvals", rest.ApprovalRequest{
		Operator: bob.Hex(),
		Approved: &approved,
	})
	assert.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/v1/approvals/"+alice.Hex()+"/"+bob.Hex(), nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp rest.ApprovalResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Approved)
}

func TestSetApproval_SelfIsRejected(t *testing.T) {
	router := setupRouter(ledger.New(), alice)

	approved := true
	w := doJSON(t, router, http.MethodPut, "/api/v1/approvals", rest.ApprovalRequest{
		Operator: alice.Hex(),
		Approved: &approved,
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "approval_for_self", errorCode(t, w))
}

func TestTransfer(t *testing.T) {
	led := seededLedger(t)
	router := setupRouter(led, alice)

	w := doJSON(t, router, http.MethodPost, "/api/v1/transfers", rest.TransferRequest{
		From:    alice.Hex(),
		To:      bob.Hex(),
		TokenID: 1,
		Value:   "40",
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint256.NewInt(60), led.BalanceOf(alice, 1))
	assert.Equal(t, uint256.NewInt(40), led.BalanceOf(bob, 1))
}

func TestTransfer_InsufficientBalance(t *testing.T) {
	router := setupRouter(seededLedger(t), alice)

	w := doJSON(t, router, http.MethodPost, "/api/v1/transfers", rest.TransferRequest{
		From:    alice.Hex(),
		To:      bob.Hex(),
		TokenID: 1,
		Value:   "500",
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "insufficient_balance", errorCode(t, w))
}

func TestTransfer_UnauthorizedCaller(t *testing.T) {
	// carol is neither the owner nor an approved operator
	router := setupRouter(seededLedger(t), carol)

	w := doJSON(t, router, http.MethodPost, "/api/v1/transfers", rest.TransferRequest{
		From:    alice.Hex(),
		To:      bob.Hex(),
		TokenID: 1,
		Value:   "10",
	})

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Equal(t, "not_owner_or_not_approved", errorCode(t, w))
}

func TestTransferBatch_LengthMismatch(t *testing.T) {
	router := setupRouter(seededLedger(t), alice)

	w := doJSON(t, router, http.MethodPost, "/api/v1/transfers/batch", rest.BatchTransferRequest{
		From:     alice.Hex(),
		To:       bob.Hex(),
		TokenIDs: []uint64{1, 2},
		Values:   []string{"10"},
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_array_length", errorCode(t, w))
}

func TestMintAndBurn(t *testing.T) {
	led := ledger.New()
	router := setupRouter(led, alice)

	w := doJSON(t, router, http.MethodPost, "/api/v1/mint", rest.MintRequest{
		To:      bob.Hex(),
		TokenID: 5,
		Value:   "30",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint256.NewInt(30), led.BalanceOf(bob, 5))

	// burning needs the owner as caller
	burnRouter := setupRouter(led, bob)
	w = doJSON(t, burnRouter, http.MethodPost, "/api/v1/burn", rest.BurnRequest{
		From:    bob.Hex(),
		TokenID: 5,
		Value:   "10",
	})
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint256.NewInt(20), led.BalanceOf(bob, 5))
}

func TestMint_ZeroAccountRejected(t *testing.T) {
	router := setupRouter(ledger.New(), alice)

	w := doJSON(t, router, http.MethodPost, "/api/v1/mint", rest.MintRequest{
		To:      common.Address{}.Hex(),
		TokenID: 1,
		Value:   "10",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "invalid_zero_account", errorCode(t, w))
}

func TestMintBatch(t *testing.T) {
	led := ledger.New()
	router := setupRouter(led, alice)

	w := doJSON(t, router, http.MethodPost, "/api/v1/mint/batch", rest.BatchMintRequest{
		To:       bob.Hex(),
		TokenIDs: []uint64{1, 2, 3},
		Values:   []string{"10", "20", "30"},
	})

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, uint256.NewInt(10), led.BalanceOf(bob, 1))
	assert.Equal(t, uint256.NewInt(20), led.BalanceOf(bob, 2))
	assert.Equal(t, uint256.NewInt(30), led.BalanceOf(bob, 3))
}

func TestBurnBatch_InsufficientBalance(t *testing.T) {
	led := seededLedger(t)
	router := setupRouter(led, alice)

	w := doJSON(t, router, http.MethodPost, "/api/v1/burn/batch", rest.BatchBurnRequest{
		From:     alice.Hex(),
		TokenIDs: []uint64{1, 2},
		Values:   []string{"10", "1"},
	})

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "insufficient_balance", errorCode(t, w))
	// the live ledger is untouched after a failed batch
	assert.Equal(t, uint256.NewInt(100), led.BalanceOf(alice, 1))
}

func TestTransfer_InvalidValue(t *testing.T) {
	router := setupRouter(seededLedger(t), alice)

	w := doJSON(t, router, http.MethodPost, "/api/v1/transfers", rest.TransferRequest{
		From:    alice.Hex(),
		To:      bob.Hex(),
		TokenID: 1,
		Value:   "ten",
	})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "validation_failed", errorCode(t, w))
}
