package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"freightdesk/api/internal/autherr"
)

// respondError resolves a service error to its HTTP shape. Taxonomy
// errors carry their own status and machine code; anything else is a 500
// with no internal detail.
func respondError(c *gin.Context, err error) {
	var authErr *autherr.Error
	if errors.As(err, &authErr) {
		body := gin.H{"error": string(authErr.Code)}
		if authErr.Code == autherr.CodeValidation {
			body["message"] = authErr.Message
		}
		if authErr.Reason != "" {
			body["reason"] = authErr.Reason
		}
		if authErr.BoundDevice != "" {
			body["boundDevice"] = authErr.BoundDevice
		}
		c.JSON(authErr.HTTPStatus(), body)
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal_error"})
}
