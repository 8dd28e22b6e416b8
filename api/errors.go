package api

import (
	"errors"
	"net/http"

	"launchpad-token-factory/core/model"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
)

var errorStatus = map[model.ErrorCode]int{
	model.ErrNameTooLong:                http.StatusBadRequest,
	model.ErrSymbolTooLong:              http.StatusBadRequest,
	model.ErrTaxTooHigh:                 http.StatusBadRequest,
	model.ErrInvalidWhitelistAddress:    http.StatusBadRequest,
	model.ErrSupplyExceedsMax:           http.StatusBadRequest,
	model.ErrInvalidAmount:              http.StatusBadRequest,
	model.ErrInvalidAddress:             http.StatusBadRequest,
	model.ErrNoExistingCode:             http.StatusBadRequest,
	model.ErrReferralPercentTooHigh:     http.StatusBadRequest,
	model.ErrCodeAlreadyExists:          http.StatusConflict,
	model.ErrInsufficientPayment:        http.StatusPaymentRequired,
	model.ErrInsufficientFunds:          http.StatusPaymentRequired,
	model.ErrAmountTooSmall:             http.StatusUnprocessableEntity,
	model.ErrOwnableUnauthorizedAccount: http.StatusForbidden,
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func statusOf(err error) (int, string) {
	var code model.ErrorCode
	if errors.As(err, &code) {
		if status, ok := errorStatus[code]; ok {
			return status, code.Name()
		}
	}
	return http.StatusInternalServerError, "Internal"
}

func abortWithError(c *gin.Context, err error) {
	status, name := statusOf(err)
	if status == http.StatusInternalServerError {
		logrus.WithField("request_id", c.GetString(requestIDKey)).Errorf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, errorResponse{Error: name, Message: err.Error()})
}

// rejectRequest answers with the condition name when err carries one.
func rejectRequest(c *gin.Context, err error) {
	var code model.ErrorCode
	if errors.As(err, &code) {
		abortWithError(c, err)
		return
	}
	badRequest(c, err.Error())
}

func badRequest(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{Error: "BadRequest", Message: message})
}
