package handlers

import (
	"errors"
	"net/http"

	businessRepo "kymaclub/database/repository/business"
	userRepo "kymaclub/database/repository/user"
	"kymaclub/services/credits"
	"kymaclub/services/ledger"
	"kymaclub/services/policy"
	"kymaclub/utils"

	"github.com/gin-gonic/gin"
)

// respondServiceError translates service-layer errors into HTTP responses.
// Validation errors keep their code and field so admin forms can surface them
// inline; everything unexpected collapses to a 500.
func respondServiceError(c *gin.Context, err error) {
	var amountErr *credits.AmountError
	if errors.As(err, &amountErr) {
		utils.JSONFieldError(c, http.StatusBadRequest, amountErr.Code, amountErr.Field, amountErr.Message)
		return
	}

	var fieldErr *policy.FieldError
	if errors.As(err, &fieldErr) {
		utils.JSONFieldError(c, http.StatusBadRequest, fieldErr.Code, fieldErr.Field, fieldErr.Message)
		return
	}

	switch {
	case errors.Is(err, userRepo.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "User not found", err.Error())
	case errors.Is(err, businessRepo.ErrNotFound):
		utils.JSONError(c, http.StatusNotFound, "Business not found", err.Error())
	case errors.Is(err, ledger.ErrInvalidFeeRate):
		utils.JSONError(c, http.StatusBadRequest, "Invalid fee rate", err.Error())
	case errors.Is(err, ledger.ErrCorruptEntries):
		utils.JSONError(c, http.StatusConflict, "Ledger entries are corrupt", err.Error())
	default:
		utils.JSONError(c, http.StatusInternalServerError, "Internal server error", err.Error())
	}
}
