package router

import (
	"context"
	"fmt"
	nethttp "net/http"
	"time"

	"github.com/confhub/confhub/internal/confhub/errs"
	"github.com/confhub/confhub/internal/confhub/logic"
	"github.com/confhub/confhub/pkg/ctx"
	"github.com/confhub/confhub/pkg/http"
	"github.com/confhub/confhub/pkg/httpx"
	"github.com/confhub/confhub/pkg/httpx/interceptor"
	"github.com/confhub/confhub/pkg/version"
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type healthChecker interface {
	ValidateConnection(ctx context.Context) error
}

type Router struct {
	Http *http.Http
	Ctx  *ctx.Context

	store     healthChecker
	solution  *logic.SolutionLogic
	parameter *logic.ParameterLogic
	tag       *logic.TagLogic
	apiKey    *logic.APIKeyLogic
}

func NewRouter(httpConf *http.Http, c *ctx.Context, store healthChecker,
	solution *logic.SolutionLogic, parameter *logic.ParameterLogic,
	tag *logic.TagLogic, apiKey *logic.APIKeyLogic) *Router {
	return &Router{
		Http:      httpConf,
		Ctx:       c,
		store:     store,
		solution:  solution,
		parameter: parameter,
		tag:       tag,
		apiKey:    apiKey,
	}
}

func (rt *Router) Router() *gin.Engine {

	gin.SetMode(rt.Http.Mode)

	r := gin.New()

	gin.DebugPrintRouteFunc = func(httpMethod, absolutePath, handlerName string, nuHandlers int) {
		fmt.Printf("[ConfHub] %-6s %-25s --> %s (%d handlers) \n", httpMethod, absolutePath, handlerName, nuHandlers)
	}

	// panic recover
	r.Use(interceptor.ExceptionInterceptor)

	// unified response interceptor
	r.Use(interceptor.UnifiedResponseInterceptor())

	if rt.Http.AccessLog {
		r.Use(gin.LoggerWithFormatter(httpx.AccessLogFormat))
	}

	if rt.Http.PProf {
		pprof.Register(r, "/debug/pprof")
	}

	if rt.Http.ExposeMetrics {
		r.GET("/metrics", gin.WrapH(promhttp.Handler()))
	}

	r.GET("/health", rt.health)

	r.GET("/version", func(c *gin.Context) {
		c.JSON(nethttp.StatusOK, version.GetVersion())
	})

	api := r.Group(rt.Http.ContextPath)
	{
		// public retrieval, authenticated by the solution API key itself
		api.GET("/public/solutions/config", rt.publicConfig)

		rt.routerGroup(api)
	}

	return r
}

func (rt *Router) routerGroup(r *gin.RouterGroup) {

	auth := interceptor.AuthorizationInterceptor(rt.Http.Auth.SecretKey)

	solution := r.Group("/solutions", auth)
	{
		solution.POST("", rt.createSolution)
		solution.GET("", rt.listSolutions)
		solution.GET("/:id", rt.getSolution)
		solution.PUT("/:id", rt.updateSolution)
		solution.DELETE("/:id", rt.deleteSolution)
		solution.GET("/:id/parameters", rt.getSolutionWithParameters)
		solution.POST("/:id/parameters/:parameterId", rt.addSolutionParameter)
		solution.DELETE("/:id/parameters/:parameterId", rt.removeSolutionParameter)
		solution.GET("/:id/export", rt.exportSolution)

		solution.POST("/:id/api-keys", rt.createAPIKey)
		solution.GET("/:id/api-keys", rt.listAPIKeys)
		solution.DELETE("/:id/api-keys/:keyId", rt.deleteAPIKey)
		solution.PATCH("/:id/api-keys/:keyId/toggle", rt.toggleAPIKey)
	}

	parameter := r.Group("/parameters", auth)
	{
		parameter.POST("", rt.createParameter)
		parameter.GET("", rt.listParameters)
		parameter.GET("/unassigned", rt.unassignedParameters)
		parameter.GET("/:id", rt.getParameter)
		parameter.PUT("/:id", rt.updateParameter)
		parameter.DELETE("/:id", rt.deleteParameter)
		parameter.POST("/search", rt.searchParameters)
		parameter.POST("/bulk", rt.bulkParameters)
	}

	tag := r.Group("/tags", auth)
	{
		tag.POST("", rt.createTag)
		tag.GET("", rt.listTags)
		tag.DELETE("/:id", rt.deleteTag)
	}
}

func (rt *Router) health(c *gin.Context) {
	status := "healthy"
	db := "connected"
	if err := rt.store.ValidateConnection(c.Request.Context()); err != nil {
		status = "unhealthy"
		db = "disconnected"
	}
	c.JSON(nethttp.StatusOK, gin.H{
		"status":    status,
		"database":  db,
		"timestamp": time.Now().Format(time.RFC3339),
	})
}

// failWith maps a typed error to the response envelope. Store failures
// stay generic so connection details never reach the client.
func failWith(c *gin.Context, err error) {
	switch errs.KindOf(err) {
	case errs.KindNotFound:
		httpx.WithRepErrMsg(c, httpx.NotFound.Code, err.Error(), c.Request.URL.Path)
	case errs.KindConflict:
		httpx.WithRepErrMsg(c, httpx.Conflict.Code, err.Error(), c.Request.URL.Path)
	case errs.KindInvalid:
		httpx.WithRepErrMsg(c, httpx.BadRequest.Code, err.Error(), c.Request.URL.Path)
	case errs.KindUnauthorized:
		httpx.WithRepErrMsg(c, httpx.Unauthorized.Code, err.Error(), c.Request.URL.Path)
	case errs.KindUnavailable:
		httpx.WithRepErrMsg(c, httpx.ServiceUnavailable.Code, httpx.ServiceUnavailable.Msg, c.Request.URL.Path)
	default:
		httpx.WithRepErrMsg(c, httpx.Failed.Code, httpx.Failed.Msg, c.Request.URL.Path)
	}
	c.Abort()
}
