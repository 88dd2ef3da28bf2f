package router

import (
	"strconv"

	"github.com/confhub/confhub/internal/confhub/model"
	"github.com/confhub/confhub/pkg/httpx"
	"github.com/gin-gonic/gin"
)

func (rt *Router) createAPIKey(c *gin.Context) {
	var req model.CreateAPIKeyReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.WithRepErrMsg(c, httpx.BadRequest.Code, httpx.BadRequest.Msg, c.Request.URL.Path)
		return
	}

	created, err := rt.apiKey.Create(c.Param("id"), req)
	if err != nil {
		failWith(c, err)
		return
	}
	// The only response carrying the full token.
	c.Set("detail", created)
}

func (rt *Router) listAPIKeys(c *gin.Context) {
	keys, err := rt.apiKey.List(c.Param("id"))
	if err != nil {
		failWith(c, err)
		return
	}
	c.Set("detail", keys)
}

func (rt *Router) deleteAPIKey(c *gin.Context) {
	if err := rt.apiKey.Delete(c.Param("keyId")); err != nil {
		failWith(c, err)
		return
	}
	c.Set("detail", gin.H{"message": "API key deleted successfully"})
}

func (rt *Router) toggleAPIKey(c *gin.Context) {
	active, err := strconv.ParseBool(c.Query("is_active"))
	if err != nil {
		httpx.WithRepErrMsg(c, httpx.BadRequest.Code, "is_active must be true or false", c.Request.URL.Path)
		return
	}

	if err := rt.apiKey.Toggle(c.Param("keyId"), active); err != nil {
		failWith(c, err)
		return
	}
	c.Set("detail", gin.H{"message": "API key updated successfully"})
}
