package router

import (
	"fmt"

	"github.com/confhub/confhub/pkg/httpx"
	"github.com/gin-gonic/gin"
)

// publicConfig serves a solution's configuration to API-key holders.
// The key itself is the credential, no session auth applies here.
func (rt *Router) publicConfig(c *gin.Context) {
	token := c.Query("api_key")
	if token == "" {
		httpx.WithRepErrMsg(c, httpx.Unauthorized.Code, "api_key is required", c.Request.URL.Path)
		return
	}

	art, err := rt.apiKey.ExportByToken(token, c.DefaultQuery("format", "json"))
	if err != nil {
		failWith(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", art.Filename))
	c.Data(200, art.ContentType+"; charset=utf-8", art.Content)
}
