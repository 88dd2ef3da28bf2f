package router

import (
	"github.com/confhub/confhub/internal/confhub/model"
	"github.com/confhub/confhub/pkg/httpx"
	"github.com/gin-gonic/gin"
)

func (rt *Router) createTag(c *gin.Context) {
	var req model.CreateTagReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.WithRepErrMsg(c, httpx.BadRequest.Code, httpx.BadRequest.Msg, c.Request.URL.Path)
		return
	}

	tag, err := rt.tag.Create(req)
	if err != nil {
		failWith(c, err)
		return
	}
	c.Set("detail", tag)
}

func (rt *Router) listTags(c *gin.Context) {
	tags, err := rt.tag.List()
	if err != nil {
		failWith(c, err)
		return
	}
	c.Set("detail", tags)
}

func (rt *Router) deleteTag(c *gin.Context) {
	if err := rt.tag.Delete(c.Param("id")); err != nil {
		failWith(c, err)
		return
	}
	c.Set("detail", gin.H{"message": "Tag deleted successfully"})
}
