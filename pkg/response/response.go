package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Envelope is the JSON body of every API response.
type Envelope struct {
	Success   bool   `json:"success"`
	Message   string `json:"message,omitempty"`
	User      any    `json:"user,omitempty"`
	Data      any    `json:"data,omitempty"`
	Error     any    `json:"error,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// JSON writes env with the request id attached.
func JSON(c *gin.Context, status int, env Envelope) {
	if status == 0 {
		status = http.StatusOK
	}
	env.RequestID = c.GetString("request_id")
	c.JSON(status, env)
}

// Success writes {success:true, message}.
func Success(c *gin.Context, status int, message string) {
	JSON(c, status, Envelope{Success: true, Message: message})
}

// User writes {success:true, message, user}.
func User(c *gin.Context, status int, message string, user any) {
	JSON(c, status, Envelope{Success: true, Message: message, User: user})
}

// Data writes {success:true, message, data}.
func Data(c *gin.Context, status int, message string, data any) {
	JSON(c, status, Envelope{Success: true, Message: message, Data: data})
}

// Error writes {success:false, message, error} and aborts the chain.
func Error(c *gin.Context, status int, message string, details any) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	c.Abort()
	JSON(c, status, Envelope{Success: false, Message: message, Error: details})
}
