package rest

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/feral-file/ff-token-ledger/internal/ledger"
	"github.com/feral-file/ff-token-ledger/internal/logger"
)

// ErrorCode represents a standardized error code
type ErrorCode string

const (
	// Client errors (4xx)
	errCodeBadRequest            ErrorCode = "bad_request"
	errCodeValidationFailed      ErrorCode = "validation_failed"
	errCodeInsufficientBalance   ErrorCode = "insufficient_balance"
	errCodeNotOwnerOrNotApproved ErrorCode = "not_owner_or_not_approved"
	errCodeApprovalForSelf       ErrorCode = "approval_for_self"
	errCodeInvalidArrayLength    ErrorCode = "invalid_array_length"
	errCodeInvalidZeroAccount    ErrorCode = "invalid_zero_account"
	errCodeCannotInsert          ErrorCode = "cannot_insert"
	errCodeCannotFetchValue      ErrorCode = "cannot_fetch_value"

	// Server errors (5xx)
	errCodeInternalError ErrorCode = "internal_error"
)

// errorResponse represents a standardized error response
type errorResponse struct {
	Error errorDetail `json:"error"`
}

// errorDetail contains error information
type errorDetail struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
	Details string    `json:"details,omitempty"`
}

// respondWithError sends a standardized error response
func respondWithError(c *gin.Context, statusCode int, code ErrorCode, message string, details ...string) {
	response := errorResponse{
		Error: errorDetail{
			Code:    code,
			Message: message,
		},
	}

	if len(details) > 0 {
		response.Error.Details = details[0]
	}

	c.JSON(statusCode, response)
}

// respondBadRequest sends a 400 Bad Request response
func respondBadRequest(c *gin.Context, message string, details ...string) {
	respondWithError(c, http.StatusBadRequest, errCodeBadRequest, message, details...)
}

// respondValidationError sends a 400 Bad Request with validation error
func respondValidationError(c *gin.Context, details string) {
	respondWithError(c, http.StatusBadRequest, errCodeValidationFailed, "Validation failed", details)
}

// respondInternalError sends a 500 Internal Server Error response and logs the error
func respondInternalError(c *gin.Context, err error, message string, fields ...zap.Field) {
	logger.Error(err, fields...)
	respondWithError(c, http.StatusInternalServerError, errCodeInternalError, message)
}

// respondLedgerError maps a failed ledger call onto an HTTP status and error
// code. Unrecognized errors are treated as internal.
func respondLedgerError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, ledger.ErrInsufficientBalance):
		respondWithError(c, http.StatusUnprocessableEntity, errCodeInsufficientBalance, "Insufficient balance")
	case errors.Is(err, ledger.ErrNotOwnerOrNotApproved):
		respondWithError(c, http.StatusForbidden, errCodeNotOwnerOrNotApproved, "Caller is not the owner or an approved operator")
	case errors.Is(err, ledger.ErrApprovalForSelf):
		respondWithError(c, http.StatusBadRequest, errCodeApprovalForSelf, "Cannot set approval for self")
	case errors.Is(err, ledger.ErrInvalidArrayLength):
		respondWithError(c, http.StatusBadRequest, errCodeInvalidArrayLength, "Array lengths do not match")
	case errors.Is(err, ledger.ErrInvalidZeroAccount):
		respondWithError(c, http.StatusBadRequest, errCodeInvalidZeroAccount, "Zero account is not a valid party")
	case errors.Is(err, ledger.ErrCannotInsert):
		respondWithError(c, http.StatusUnprocessableEntity, errCodeCannotInsert, "Balance update could not be applied")
	case errors.Is(err, ledger.ErrCannotFetchValue):
		respondWithError(c, http.StatusUnprocessableEntity, errCodeCannotFetchValue, "Balance could not be read")
	default:
		respondInternalError(c, err, "Ledger call failed")
	}
}
