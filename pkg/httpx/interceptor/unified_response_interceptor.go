package interceptor

import (
	"net/http"

	"github.com/confhub/confhub/pkg/httpx"
	"github.com/gin-gonic/gin"
)

// UnifiedResponseInterceptor wraps handler output in the common response envelope.
// Handlers publish their payload with c.Set("detail", value).
func UnifiedResponseInterceptor() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) > 0 && c.Writer.Status() != http.StatusOK {
			httpx.WithRepErrMsg(c, httpx.Failed.Code, httpx.Failed.Msg, c.Request.URL.Path)
			return
		}

		if c.Writer.Status() == 0 {
			c.Writer.WriteHeader(httpx.Success.Code)
		}

		if c.Writer.Status() >= http.StatusOK && c.Writer.Status() < http.StatusMultipleChoices {
			detail, exists := c.Get("detail")
			if exists && detail != nil {
				httpx.WithRepDetail(c, httpx.Success.Code, httpx.Success.Msg, detail)
				return
			}
		}
	}
}
