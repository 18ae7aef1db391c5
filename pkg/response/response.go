// Package response implements the uniform JSON envelope used by every
// endpoint. Successful responses carry {"status":"success","data":...};
// client faults carry {"status":"fail","message":...} and server faults
// {"status":"error","message":...}.
package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Response statuses.
const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// SuccessBody is the envelope for successful responses.
type SuccessBody struct {
	Status string      `json:"status"`
	Data   interface{} `json:"data"`
}

// FailureBody is the envelope for fail (client fault) and
// error (server fault) responses.
type FailureBody struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// Success sends a 200 success envelope.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, SuccessBody{
		Status: StatusSuccess,
		Data:   data,
	})
}

// Fail sends a fail envelope with the given 4xx status code.
func Fail(c *gin.Context, statusCode int, message string) {
	c.JSON(statusCode, FailureBody{
		Status:  StatusFail,
		Message: message,
	})
}

// BadRequest sends a 400 fail envelope.
func BadRequest(c *gin.Context, message string) {
	Fail(c, http.StatusBadRequest, message)
}

// Unauthorized sends a 401 fail envelope and aborts the request.
func Unauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, FailureBody{
		Status:  StatusFail,
		Message: message,
	})
}

// Forbidden sends a 403 fail envelope.
func Forbidden(c *gin.Context, message string) {
	Fail(c, http.StatusForbidden, message)
}

// NotFound sends a 404 fail envelope.
func NotFound(c *gin.Context, message string) {
	Fail(c, http.StatusNotFound, message)
}

// InternalError sends a 500 error envelope. The message should stay
// generic; internal detail belongs in the log, not the response.
func InternalError(c *gin.Context, message string) {
	c.JSON(http.StatusInternalServerError, FailureBody{
		Status:  StatusError,
		Message: message,
	})
}
