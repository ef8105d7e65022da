package handler

import (
	"net/http"

	"github.com/appdotbuilder/purchase-approval-platform/pkg/apperrors"
	"github.com/appdotbuilder/purchase-approval-platform/pkg/response"

	"github.com/gin-gonic/gin"
)

// writeError maps the typed error taxonomy onto HTTP status codes and emits
// the standard error envelope.
func writeError(c *gin.Context, err error) {
	status := http.StatusInternalServerError
	switch {
	case apperrors.IsValidation(err):
		status = http.StatusBadRequest
	case apperrors.IsNotFound(err):
		status = http.StatusNotFound
	case apperrors.IsConflict(err), apperrors.IsUniqueViolation(err):
		status = http.StatusConflict
	}
	c.JSON(status, response.Error(status, err.Error()))
}
