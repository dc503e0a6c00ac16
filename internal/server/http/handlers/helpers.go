package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/luisbfsousa/mect-sub001/internal/domain/errors"
	"github.com/luisbfsousa/mect-sub001/internal/identity"
	"github.com/luisbfsousa/mect-sub001/internal/server/http/dto"
	"github.com/luisbfsousa/mect-sub001/internal/server/http/middleware"
)

// CurrentIdentity extracts the authenticated caller from context.
func CurrentIdentity(c *gin.Context) identity.Identity {
	id, _ := middleware.CurrentIdentity(c)
	return id
}

// pathID parses a positive numeric path parameter, answering 400 otherwise.
func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: "invalid id", Field: name})
		return 0, false
	}
	return id, true
}

func badRequest(c *gin.Context, reason string) {
	c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: reason})
}

// writeError maps domain errors onto status codes. Infrastructure detail never leaves the process.
func writeError(c *gin.Context, err error) {
	var (
		validation *domainErrors.ValidationError
		field      string
	)
	if errors.As(err, &validation) {
		field = validation.Field
	}

	switch {
	case errors.Is(err, domainErrors.ErrValidation),
		errors.Is(err, domainErrors.ErrInvalidState),
		errors.Is(err, domainErrors.ErrInsufficientStock):
		c.JSON(http.StatusBadRequest, dto.ErrorResponse{Error: err.Error(), Field: field})
	case errors.Is(err, domainErrors.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.ErrorResponse{Error: err.Error()})
	case errors.Is(err, domainErrors.ErrForbidden):
		c.JSON(http.StatusForbidden, dto.ErrorResponse{Error: "forbidden"})
	default:
		_ = c.Error(err)
		c.JSON(http.StatusInternalServerError, dto.ErrorResponse{Error: "internal error"})
	}
}
