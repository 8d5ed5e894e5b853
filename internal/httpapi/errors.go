package httpapi

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"smartdoc/internal/domain"
)

// statusFor maps a service error to an HTTP status code.
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrExtraction),
		errors.Is(err, domain.ErrEmptyContent),
		errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	abort(c, statusFor(err), err.Error())
}

func abort(c *gin.Context, status int, detail string) {
	c.AbortWithStatusJSON(status, gin.H{"detail": detail})
}
