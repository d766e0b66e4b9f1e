package handlers

import (
	"errors"
	"net/http"

	"adminlite/internal/repositories"
	"adminlite/internal/responses"
	"adminlite/internal/services"

	"github.com/gin-gonic/gin"
)

// statusFor maps service errors onto HTTP status codes. Store and fetch
// failures are reported as bad gateway since the admin API only relays them.
func statusFor(err error) int {
	switch {
	case errors.Is(err, services.ErrTableNotFound),
		errors.Is(err, services.ErrColumnNotFound),
		errors.Is(err, services.ErrWorkspaceNotFound),
		errors.Is(err, services.ErrRowNotFound),
		errors.Is(err, services.ErrNoEditor),
		errors.Is(err, repositories.ErrRecordNotFound):
		return http.StatusNotFound
	case errors.Is(err, services.ErrInvalidPanel),
		errors.Is(err, services.ErrNotForeignKey),
		errors.Is(err, services.ErrNoTableSelected),
		errors.Is(err, repositories.ErrInvalidIdentifier):
		return http.StatusBadRequest
	case errors.Is(err, services.ErrReadOnlyColumn),
		errors.Is(err, services.ErrMissingPrimaryKey),
		errors.Is(err, services.ErrNoPrimaryKey):
		return http.StatusUnprocessableEntity
	case errors.Is(err, services.ErrPanelChanged),
		errors.Is(err, services.ErrSaveInProgress):
		return http.StatusConflict
	case errors.Is(err, services.ErrListTablesFailed),
		errors.Is(err, services.ErrDescribeTableFailed),
		errors.Is(err, services.ErrSchemaUnavailable),
		errors.Is(err, services.ErrRowFetchFailed),
		errors.Is(err, services.ErrSaveFailed):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error, message string) {
	_ = c.Error(err)
	responses.Fail(c, statusFor(err), err, message)
}
