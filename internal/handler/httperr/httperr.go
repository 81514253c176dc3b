package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Status int    `json:"-"`
	Error  string `json:"error"`
	Detail any    `json:"detail,omitempty"`
}

// preserves original error for logging and future monitoring
func AbortWithError(c *gin.Context, status int, err error, msg string) {
	if err == nil {
		panic("AbortWithError: err cannot be nil")
	}

	resp := Response{Status: status, Error: msg}

	_ = c.Error(gin.Error{
		Err:  err,
		Type: gin.ErrorTypePublic,
		Meta: resp,
	})
	c.AbortWithStatusJSON(status, resp)
}

// Internal reports an unexpected failure without exposing its cause.
func Internal(c *gin.Context, err error) {
	AbortWithError(c, http.StatusInternalServerError, err, "Internal server error")
}
