package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rajeev-ju/flight-booking-system/internal/domain"
)

func httpStatus(code domain.ErrorCode) int {
	switch code {
	case domain.CodeNotFound:
		return http.StatusNotFound
	case domain.CodeConflict:
		return http.StatusConflict
	case domain.CodeValidation:
		return http.StatusBadRequest
	case domain.CodeUpstream:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// respondError maps classified errors to a stable code and message; anything
// unclassified becomes a generic 500 without leaking internals.
func respondError(c *gin.Context, err error) {
	code := domain.CodeOf(err)
	c.JSON(httpStatus(code), gin.H{"code": string(code), "error": domain.MessageOf(err)})
}
