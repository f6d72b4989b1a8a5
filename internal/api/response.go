// Package api exposes the journal over a JSON HTTP API.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "trade-journal/internal/errors"
)

// Response codes carried in the envelope.
const (
	CodeOK         = 0
	CodeBadRequest = -1
	CodeNotFound   = -1003
	CodeInternal   = -1500
)

// Response is the envelope every endpoint returns.
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{Code: CodeOK, Message: "success", Data: data})
}

func created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{Code: CodeOK, Message: "created", Data: data})
}

func badRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, Response{Code: CodeBadRequest, Message: message})
}

// fail maps err onto a status and envelope code.
func fail(c *gin.Context, err error) {
	_ = c.Error(err)
	switch {
	case apperrors.Is(err, apperrors.ErrInputValidation):
		badRequest(c, err.Error())
	case apperrors.IsNotFound(err):
		c.JSON(http.StatusNotFound, Response{Code: CodeNotFound, Message: err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, Response{Code: CodeInternal, Message: err.Error()})
	}
}
