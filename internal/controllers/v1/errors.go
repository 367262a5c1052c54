package v1

import (
	"errors"
	"net/http"

	"github.com/mdm-tracker/backend/internal/models"
)

type httpError struct {
	Error string `json:"error" example:"the specified resource ID is not a valid UUID"`
}

// status returns the appropriate HTTP status for an error.
//
// Locking and uniqueness violations are routine, expected conditions, so
// they map to 409 and stay clearly distinguishable from bad requests and
// server errors.
func status(err error) int {
	if errors.Is(err, models.ErrGeneral) || errors.Is(err, models.ErrCascadeFailed) {
		return http.StatusInternalServerError
	}

	if errors.Is(err, models.ErrResourceNotFound) {
		return http.StatusNotFound
	}

	if errors.Is(err, models.ErrMonthLocked) ||
		errors.Is(err, models.ErrMonthCompleted) ||
		errors.Is(err, models.ErrMonthConfigExists) ||
		errors.Is(err, models.ErrEntryDateNotUnique) ||
		errors.Is(err, models.ErrNextMonthExists) ||
		errors.Is(err, models.ErrSchoolNameNotUnique) ||
		errors.Is(err, models.ErrCannotComplete) ||
		errors.Is(err, models.ErrPriorMonthIncomplete) {
		return http.StatusConflict
	}

	return http.StatusBadRequest
}
