package httpx

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type Response struct {
	Code   int    `json:"code"`
	Msg    string `json:"msg"`
	Detail any    `json:"detail,omitempty"`
}

// WithRepJSON responds with the default success envelope and detail payload.
func WithRepJSON(c *gin.Context, detail any) {
	c.JSON(http.StatusOK, Response{
		Code:   Success.Code,
		Msg:    Success.Msg,
		Detail: detail,
	})
}

// WithRepDetail responds with an explicit code/msg and detail payload.
func WithRepDetail(c *gin.Context, code int, msg string, detail any) {
	c.JSON(http.StatusOK, Response{
		Code:   code,
		Msg:    msg,
		Detail: detail,
	})
}

// WithRepMsg responds with a code and message only.
func WithRepMsg(c *gin.Context, code int, msg string) {
	c.JSON(http.StatusOK, Response{
		Code: code,
		Msg:  msg,
	})
}
