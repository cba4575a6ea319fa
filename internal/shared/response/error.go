// Package response holds the error envelope and the mapping from
// module sentinel errors to HTTP statuses.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the JSON envelope for every error reply.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

// Error writes an error reply with the given status.
func Error(c *gin.Context, status int, message string) {
	c.JSON(status, ErrorResponse{Error: message})
}

// ErrorWithCode writes an error reply carrying a machine-readable code.
func ErrorWithCode(c *gin.Context, status int, code, message string) {
	c.JSON(status, ErrorResponse{Error: message, Code: code})
}

// ErrorWithDetails writes an error reply with a details payload.
func ErrorWithDetails(c *gin.Context, status int, message string, details any) {
	c.JSON(status, ErrorResponse{Error: message, Details: details})
}

// BadRequest writes a 400 reply.
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// Unauthorized writes a 401 reply.
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, orDefault(message, "unauthorized"))
}

// Forbidden writes a 403 reply.
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, orDefault(message, "forbidden"))
}

// NotFound writes a 404 reply.
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, orDefault(message, "not found"))
}

// Conflict writes a 409 reply.
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusConflict, message)
}

// UnprocessableEntity writes a 422 reply.
func UnprocessableEntity(c *gin.Context, message string) {
	Error(c, http.StatusUnprocessableEntity, message)
}

// InternalError writes a 500 reply. Internal detail never reaches the
// client; pass an empty message unless the text is safe to expose.
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, orDefault(message, "internal error"))
}

func orDefault(message, fallback string) string {
	if message == "" {
		return fallback
	}
	return message
}

// ErrorMapping pairs a sentinel error with its HTTP representation.
type ErrorMapping struct {
	Err     error
	Status  int
	Code    string
	Message string
}

// HandleError writes the reply for the first mapping matching err via
// errors.Is. Returns false when no mapping matches.
func HandleError(c *gin.Context, err error, mappings []ErrorMapping) bool {
	for _, m := range mappings {
		if !errors.Is(err, m.Err) {
			continue
		}
		msg := m.Message
		if msg == "" {
			msg = err.Error()
		}
		if m.Code != "" {
			ErrorWithCode(c, m.Status, m.Code, msg)
		} else {
			Error(c, m.Status, msg)
		}
		return true
	}
	return false
}

// HandleErrorWithDefault is HandleError falling back to a 500 reply.
func HandleErrorWithDefault(c *gin.Context, err error, mappings []ErrorMapping) {
	if !HandleError(c, err, mappings) {
		InternalError(c, "")
	}
}
