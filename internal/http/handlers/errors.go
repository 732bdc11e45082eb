package handlers

import (
	"net/http"

	"bookingflow/internal/domain"
	"bookingflow/internal/http/middleware"
	"bookingflow/internal/utils"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads for new handlers.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	reqID := middleware.GetRequestID(c)
	if reqID != "" {
		c.JSON(status, gin.H{
			"error":      resp.Error,
			"code":       resp.Code,
			"details":    resp.Details,
			"request_id": reqID,
			"message":    message,
		})
		return
	}
	c.JSON(status, resp)
}

// RespondDomainError maps domain errors to HTTP responses. details travels
// with the error body (the flow state and its notices, for flow routes).
func RespondDomainError(c *gin.Context, err error, details any) {
	switch {
	case domain.IsValidation(err):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), details)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), details)
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), details)
	case domain.IsUnavailable(err):
		respondError(c, http.StatusServiceUnavailable, "unavailable", domain.UserMessage(err, "layanan sedang tidak tersedia"), details)
	case domain.IsInternal(err):
		utils.Logger().WithError(err).WithField("request_id", middleware.GetRequestID(c)).Error("kesalahan internal")
		respondError(c, http.StatusInternalServerError, "internal_error", err.Error(), details)
	default:
		utils.Logger().WithError(err).WithField("request_id", middleware.GetRequestID(c)).Error("kesalahan tidak terduga")
		respondError(c, http.StatusInternalServerError, "internal_error", "terjadi kesalahan", details)
	}
}
