package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Stable error codes carried in the envelope
const (
	CodeOK                 = 0
	CodeValidation         = -1
	CodeInternal           = -1
	CodeUnauthenticated    = -1001
	CodeForbidden          = -1002
	CodeNotFound           = -1003
	CodeConflict           = -1004
	CodeInvalidCredentials = -1005
	CodeScoringFailed      = -1006
	CodeUpstream           = -1007
	CodeTooManyRequests    = -1008
)

// Response is the standard API response structure
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// Success sends a successful response
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    CodeOK,
		Message: "success",
		Data:    data,
	})
}

// Created sends a 201 created response
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    CodeOK,
		Message: "created",
		Data:    data,
	})
}

// Error sends an error response
func Error(c *gin.Context, statusCode int, code int, message string) {
	c.JSON(statusCode, Response{
		Code:    code,
		Message: message,
	})
}

// AbortWithError sends an error response and stops the handler chain
func AbortWithError(c *gin.Context, statusCode int, code int, message string) {
	Error(c, statusCode, code, message)
	c.Abort()
}

// BadRequest sends a 400 error response
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, CodeValidation, message)
}

// Conflict reports a uniqueness violation. The HTTP status stays 400 for
// compatibility with existing clients; the code distinguishes it.
func Conflict(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, CodeConflict, message)
}

// InvalidCredentials sends a 400 login failure
func InvalidCredentials(c *gin.Context) {
	Error(c, http.StatusBadRequest, CodeInvalidCredentials, "invalid credentials")
}

// Unauthorized sends a 401 error response
func Unauthorized(c *gin.Context, message string) {
	Error(c, http.StatusUnauthorized, CodeUnauthenticated, message)
}

// Forbidden sends a 403 error response
func Forbidden(c *gin.Context, message string) {
	Error(c, http.StatusForbidden, CodeForbidden, message)
}

// NotFound sends a 404 error response
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, CodeNotFound, message)
}

// TooManyRequests sends a 429 error response
func TooManyRequests(c *gin.Context) {
	Error(c, http.StatusTooManyRequests, CodeTooManyRequests, "too many requests")
}

// ScoringFailed sends a 500 analysis failure
func ScoringFailed(c *gin.Context) {
	Error(c, http.StatusInternalServerError, CodeScoringFailed, "analysis failed")
}

// BadGateway sends a 502 upstream failure
func BadGateway(c *gin.Context, message string) {
	Error(c, http.StatusBadGateway, CodeUpstream, message)
}

// InternalError sends a 500 error response
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, CodeInternal, message)
}
