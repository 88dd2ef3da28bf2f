package interceptor

import (
	"runtime/debug"

	"github.com/confhub/confhub/pkg/httpx"
	"github.com/confhub/confhub/pkg/log"
	"github.com/gin-gonic/gin"
)

// ExceptionInterceptor recovers panics and maps them to the generic error response.
func ExceptionInterceptor(c *gin.Context) {
	defer func() {
		if err := recover(); err != nil {
			httpx.WithRepErr(c, httpx.InternalError.Code, httpx.InternalError.Msg, errorToString(err), c.Request.URL.Path)
			c.Abort()
		}
	}()
	c.Next()
}

func errorToString(err interface{}) string {
	switch v := err.(type) {
	case httpx.ResponseErr:
		return v.Msg
	case error:
		debug.PrintStack()
		log.Errorf("panic: %v", v.Error())
		return "internal server error"
	default:
		debug.PrintStack()
		return "internal server error"
	}
}
