package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/DavidNA-VN/Resident-Management-System-sub002/internal/error/code"
)

// Response is the unified JSON envelope of every endpoint.
type Response struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data,omitempty"`
	Error   *code.Error `json:"error,omitempty"`
}

// Success renders a 200 with data.
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Success: true,
		Data:    data,
	})
}

// Created renders a 201 with data.
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Success: true,
		Data:    data,
	})
}

// Fail renders the error envelope for any error, mapping unknown errors to
// INTERNAL_ERROR. HTTP status comes from the error code.
func Fail(c *gin.Context, err error) {
	apiErr := code.From(err)
	c.JSON(code.GetStatus(apiErr.Code), Response{
		Success: false,
		Error:   apiErr,
	})
}

// FailCode renders the error envelope for a bare error code.
func FailCode(c *gin.Context, errCode string) {
	Fail(c, code.New(errCode))
}

// FailMessage renders the error envelope with a custom message.
func FailMessage(c *gin.Context, errCode, message string) {
	Fail(c, code.NewWithMessage(errCode, message))
}

// AbortFail renders the error envelope and aborts the middleware chain.
func AbortFail(c *gin.Context, err error) {
	apiErr := code.From(err)
	c.AbortWithStatusJSON(code.GetStatus(apiErr.Code), Response{
		Success: false,
		Error:   apiErr,
	})
}
