package router

import (
	"fmt"

	"github.com/confhub/confhub/internal/confhub/model"
	"github.com/confhub/confhub/pkg/httpx"
	"github.com/gin-gonic/gin"
)

func (rt *Router) createSolution(c *gin.Context) {
	var req model.CreateSolutionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.WithRepErrMsg(c, httpx.BadRequest.Code, httpx.BadRequest.Msg, c.Request.URL.Path)
		return
	}

	sol, err := rt.solution.Create(req)
	if err != nil {
		failWith(c, err)
		return
	}
	c.Set("detail", sol)
}

func (rt *Router) listSolutions(c *gin.Context) {
	solutions, err := rt.solution.List()
	if err != nil {
		failWith(c, err)
		return
	}
	c.Set("detail", solutions)
}

func (rt *Router) getSolution(c *gin.Context) {
	sol, err := rt.solution.Get(c.Param("id"))
	if err != nil {
		failWith(c, err)
		return
	}
	c.Set("detail", sol)
}

func (rt *Router) updateSolution(c *gin.Context) {
	var req model.UpdateSolutionReq
	if err := c.ShouldBindJSON(&req); err != nil {
		httpx.WithRepErrMsg(c, httpx.BadRequest.Code, httpx.BadRequest.Msg, c.Request.URL.Path)
		return
	}

	sol, err := rt.solution.Update(c.Param("id"), req)
	if err != nil {
		failWith(c, err)
		return
	}
	c.Set("detail", sol)
}

func (rt *Router) deleteSolution(c *gin.Context) {
	if err := rt.solution.Delete(c.Param("id")); err != nil {
		failWith(c, err)
		return
	}
	c.Set("detail", gin.H{"message": "Solution deleted successfully"})
}

func (rt *Router) getSolutionWithParameters(c *gin.Context) {
	detail, err := rt.solution.GetWithParameters(c.Param("id"))
	if err != nil {
		failWith(c, err)
		return
	}
	c.Set("detail", detail)
}

func (rt *Router) addSolutionParameter(c *gin.Context) {
	if err := rt.solution.AddParameter(c.Param("id"), c.Param("parameterId")); err != nil {
		failWith(c, err)
		return
	}
	c.Set("detail", gin.H{"message": "Parameter added to solution"})
}

func (rt *Router) removeSolutionParameter(c *gin.Context) {
	if err := rt.solution.RemoveParameter(c.Param("id"), c.Param("parameterId")); err != nil {
		failWith(c, err)
		return
	}
	c.Set("detail", gin.H{"message": "Parameter removed from solution"})
}

// exportSolution streams the operator export as a file download.
func (rt *Router) exportSolution(c *gin.Context) {
	art, err := rt.solution.Export(c.Param("id"), c.DefaultQuery("format", "json"))
	if err != nil {
		failWith(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%s", art.Filename))
	c.Data(200, art.ContentType+"; charset=utf-8", art.Content)
}
