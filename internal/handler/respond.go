package handler

import (
	"errors"
	"log"
	"net/http"

	"citamed/internal/domain"

	"github.com/gin-gonic/gin"
)

// respondError writes a typed business error with a stable code, or a 500
// for anything unexpected.
func respondError(c *gin.Context, err error) {
	var de *domain.Error
	if errors.As(err, &de) {
		c.JSON(statusFor(de.Kind), gin.H{"error": de.Code, "message": de.Message})
		return
	}
	log.Printf("[http] %s %s: %v", c.Request.Method, c.FullPath(), err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "INTERNAL", "message": "internal server error"})
}

func statusFor(k domain.Kind) int {
	switch k {
	case domain.KindValidation:
		return http.StatusBadRequest
	case domain.KindConflict:
		return http.StatusConflict
	case domain.KindState:
		return http.StatusBadRequest
	case domain.KindAuthorization:
		return http.StatusForbidden
	case domain.KindNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}
