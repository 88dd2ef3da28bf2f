package router

import (
	"github.com/confhub/confhub/internal/confhub/model"
	"github.com/confhub/confhub/pkg/httpx"
	"github.com/gin-gonic/gin"
)

func (rt *Router) createParameter(c *gin.Context) {
	var req model.CreateParameterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.WithRepErrMsg(c, httpx.BadRequest.Code, httpx.BadRequest.Msg, c.Request.URL.Path)
		return
	}

	param, err := rt.parameter.Create(req)
	if err != nil {
		failWith(c, err)
		return
	}
	c.Set("detail", param)
}

func (rt *Router) listParameters(c *gin.Context) {
	params, err := rt.parameter.List()
	if err != nil {
		failWith(c, err)
		return
	}
	c.Set("detail", params)
}

func (rt *Router) getParameter(c *gin.Context) {
	param, err := rt.parameter.Get(c.Param("id"))
	if err != nil {
		failWith(c, err)
		return
	}
	c.Set("detail", param)
}

func (rt *Router) updateParameter(c *gin.Context) {
	var req model.UpdateParameterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.WithRepErrMsg(c, httpx.BadRequest.Code, httpx.BadRequest.Msg, c.Request.URL.Path)
		return
	}

	param, err := rt.parameter.Update(c.Param("id"), req)
	if err != nil {
		failWith(c, err)
		return
	}
	c.Set("detail", param)
}

func (rt *Router) deleteParameter(c *gin.Context) {
	if err := rt.parameter.Delete(c.Param("id")); err != nil {
		failWith(c, err)
		return
	}
	c.Set("detail", gin.H{"message": "Parameter deleted successfully"})
}

func (rt *Router) searchParameters(c *gin.Context) {
	var filter model.ParameterFilter
	if err := c.ShouldBindJSON(&filter); err != nil {
		httpx.WithRepErrMsg(c, httpx.BadRequest.Code, httpx.BadRequest.Msg, c.Request.URL.Path)
		return
	}

	params, err := rt.parameter.Search(filter)
	if err != nil {
		failWith(c, err)
		return
	}
	c.Set("detail", params)
}

func (rt *Router) bulkParameters(c *gin.Context) {
	var req model.BulkParameterReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.WithRepErrMsg(c, httpx.BadRequest.Code, httpx.BadRequest.Msg, c.Request.URL.Path)
		return
	}

	result, err := rt.parameter.Bulk(req)
	if err != nil {
		failWith(c, err)
		return
	}
	c.Set("detail", result)
}

func (rt *Router) unassignedParameters(c *gin.Context) {
	params, err := rt.parameter.Unassigned()
	if err != nil {
		failWith(c, err)
		return
	}
	c.Set("detail", params)
}
