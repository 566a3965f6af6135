// Package handlers implements the HTTP endpoints of the report API.
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/ipfolio/patmaint/pkg/errors"
)

// ErrorResponse is the standard error body.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// respondError maps an application error onto an HTTP status and writes
// the standard error body.  Internal details are never exposed.
func respondError(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusForCode(code)

	msg := "internal server error"
	if status < 500 {
		msg = err.Error()
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		Code:    string(code),
		Message: msg,
	})
}
