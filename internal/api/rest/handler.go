package rest

import (
	"net/http"
	"strconv"

	"github.com/ethereum/go-ethereum/common"
	"github.com/gin-gonic/gin"

	"github.com/feral-file/ff-token-ledger/internal/api/middleware"
	"github.com/feral-file/ff-token-ledger/internal/executor"
	"github.com/feral-file/ff-token-ledger/internal/ledger"
)

// Handler defines the interface for REST API handlers
// This interface allows for easy mocking and testing
type Handler interface {
	// GetBalance retrieves the balance of one account for one token type
	// GET /api/v1/balances/:account/:id
	GetBalance(c *gin.Context)

	// GetBalanceBatch retrieves pairwise balances for accounts[i], token_ids[i]
	// POST /api/v1/balances/batch
	GetBalanceBatch(c *gin.Context)

	// GetApproval reports whether an operator is approved for an account
	// GET /api/v1/approvals/:account/:operator
	GetApproval(c *gin.Context)

	// SetApproval grants or revokes operator approval for the caller (requires authentication)
	// PUT /api/v1/approvals
	SetApproval(c *gin.Context)

	// Transfer moves value of one token type between accounts (requires authentication)
	// POST /api/v1/transfers
	Transfer(c *gin.Context)

	// TransferBatch moves multiple token types between one account pair (requires authentication)
	// POST /api/v1/transfers/batch
	TransferBatch(c *gin.Context)

	// Mint creates supply for an account (requires authentication)
	// POST /api/v1/mint
	Mint(c *gin.Context)

	// MintBatch creates supply across multiple token types (requires authentication)
	// POST /api/v1/mint/batch
	MintBatch(c *gin.Context)

	// Burn destroys supply held by an account (requires authentication)
	// POST /api/v1/burn
	Burn(c *gin.Context)

	// BurnBatch destroys supply across multiple token types (requires authentication)
	// POST /api/v1/burn/batch
	BurnBatch(c *gin.Context)

	// HealthCheck returns the health status of the API
	// GET /health
	HealthCheck(c *gin.Context)
}

// handler implements the Handler interface
type handler struct {
	executor executor.Executor
}

// NewHandler creates a new REST API handler over the ledger executor
func NewHandler(exec executor.Executor) Handler {
	return &handler{
		executor: exec,
	}
}

// GetBalance retrieves the balance of one account for one token type
func (h *handler) GetBalance(c *gin.Context) {
	account, err := parseAddress("account", c.Param("account"))
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		respondValidationError(c, "id must be an unsigned integer")
		return
	}

	balance := h.executor.BalanceOf(c.Request.Context(), account, ledger.TokenID(id))

	c.JSON(http.StatusOK, BalanceResponse{
		Account: account.Hex(),
		TokenID: id,
		Balance: balance.Dec(),
	})
}

// GetBalanceBatch retrieves pairwise balances
func (h *handler) GetBalanceBatch(c *gin.Context) {
	var req BalanceBatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	accounts := make([]common.Address, 0, len(req.Accounts))
	for i, raw := range req.Accounts {
		account, err := parseAddress("accounts["+strconv.Itoa(i)+"]", raw)
		if err != nil {
			respondValidationError(c, err.Error())
			return
		}
		accounts = append(accounts, account)
	}

	balances, err := h.executor.BalanceOfBatch(c.Request.Context(), accounts, tokenIDs(req.TokenIDs))
	if err != nil {
		respondLedgerError(c, err)
		return
	}

	response := BalanceBatchResponse{
		Balances: make([]BalanceResponse, len(balances)),
	}
	for i, balance := range balances {
		response.Balances[i] = BalanceResponse{
			Account: accounts[i].Hex(),
			TokenID: req.TokenIDs[i],
			Balance: balance.Dec(),
		}
	}

	c.JSON(http.StatusOK, response)
}

// GetApproval reports whether an operator is approved for an account
func (h *handler) GetApproval(c *gin.Context) {
	account, err := parseAddress("account", c.Param("account"))
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	operator, err := parseAddress("operator", c.Param("operator"))
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	approved := h.executor.IsApprovedForAll(c.Request.Context(), account, operator)

	c.JSON(http.StatusOK, ApprovalResponse{
		Owner:    account.Hex(),
		Operator: operator.Hex(),
		Approved: approved,
	})
}

// SetApproval grants or revokes operator approval for the caller
func (h *handler) SetApproval(c *gin.Context) {
	caller, err := middleware.CallerAddress(c)
	if err != nil {
		respondBadRequest(c, "Cannot resolve caller account", err.Error())
		return
	}

	var req ApprovalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	operator, err := parseAddress("operator", req.Operator)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if err := h.executor.SetApprovalForAll(c.Request.Context(), caller, operator, *req.Approved); err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, ApprovalResponse{
		Owner:    caller.Hex(),
		Operator: operator.Hex(),
		Approved: *req.Approved,
	})
}

// Transfer moves value of one token type between accounts
func (h *handler) Transfer(c *gin.Context) {
	caller, err := middleware.CallerAddress(c)
	if err != nil {
		respondBadRequest(c, "Cannot resolve caller account", err.Error())
		return
	}

	var req TransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	from, err := parseAddress("from", req.From)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}
	to, err := parseAddress("to", req.To)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}
	value, err := parseValue("value", req.Value)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if err := h.executor.SafeTransferFrom(c.Request.Context(), caller, from, to, ledger.TokenID(req.TokenID), value); err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, AcceptedResponse{Status: "ok"})
}

// TransferBatch moves multiple token types between one account pair
func (h *handler) TransferBatch(c *gin.Context) {
	caller, err := middleware.CallerAddress(c)
	if err != nil {
		respondBadRequest(c, "Cannot resolve caller account", err.Error())
		return
	}

	var req BatchTransferRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	from, err := parseAddress("from", req.From)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}
	to, err := parseAddress("to", req.To)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}
	values, err := parseValues("values", req.Values)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if err := h.executor.SafeBatchTransferFrom(c.Request.Context(), caller, from, to, tokenIDs(req.TokenIDs), values); err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, AcceptedResponse{Status: "ok"})
}

// Mint creates supply for an account
func (h *handler) Mint(c *gin.Context) {
	caller, err := middleware.CallerAddress(c)
	if err != nil {
		respondBadRequest(c, "Cannot resolve caller account", err.Error())
		return
	}

	var req MintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	to, err := parseAddress("to", req.To)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}
	value, err := parseValue("value", req.Value)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if err := h.executor.Mint(c.Request.Context(), caller, to, ledger.TokenID(req.TokenID), value); err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, AcceptedResponse{Status: "ok"})
}

// MintBatch creates supply across multiple token types
func (h *handler) MintBatch(c *gin.Context) {
	caller, err := middleware.CallerAddress(c)
	if err != nil {
		respondBadRequest(c, "Cannot resolve caller account", err.Error())
		return
	}

	var req BatchMintRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	to, err := parseAddress("to", req.To)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}
	values, err := parseValues("values", req.Values)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if err := h.executor.MintBatch(c.Request.Context(), caller, to, tokenIDs(req.TokenIDs), values); err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, AcceptedResponse{Status: "ok"})
}

// Burn destroys supply held by an account
func (h *handler) Burn(c *gin.Context) {
	caller, err := middleware.CallerAddress(c)
	if err != nil {
		respondBadRequest(c, "Cannot resolve caller account", err.Error())
		return
	}

	var req BurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	from, err := parseAddress("from", req.From)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}
	value, err := parseValue("value", req.Value)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if err := h.executor.Burn(c.Request.Context(), caller, from, ledger.TokenID(req.TokenID), value); err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, AcceptedResponse{Status: "ok"})
}

// BurnBatch destroys supply across multiple token types
func (h *handler) BurnBatch(c *gin.Context) {
	caller, err := middleware.CallerAddress(c)
	if err != nil {
		respondBadRequest(c, "Cannot resolve caller account", err.Error())
		return
	}

	var req BatchBurnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidationError(c, err.Error())
		return
	}

	from, err := parseAddress("from", req.From)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}
	values, err := parseValues("values", req.Values)
	if err != nil {
		respondValidationError(c, err.Error())
		return
	}

	if err := h.executor.BurnBatch(c.Request.Context(), caller, from, tokenIDs(req.TokenIDs), values); err != nil {
		respondLedgerError(c, err)
		return
	}

	c.JSON(http.StatusOK, AcceptedResponse{Status: "ok"})
}

// HealthCheck returns the health status of the API
func (h *handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}
