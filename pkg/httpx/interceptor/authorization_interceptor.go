package interceptor

import (
	"errors"
	"strings"

	"github.com/confhub/confhub/pkg/httpx"
	"github.com/confhub/confhub/pkg/httpx/auth/jwt"
	"github.com/gin-gonic/gin"
	goJwt "github.com/golang-jwt/jwt/v5"
)

// AuthorizationInterceptor guards operator routes with a bearer JWT.
func AuthorizationInterceptor(secretKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		aToken := c.Request.Header.Get("Authorization")
		if aToken == "" {
			httpx.WithRepErrMsg(c, httpx.AuthorizationEmpty.Code, httpx.AuthorizationEmpty.Msg, c.Request.URL.Path)
			c.Abort()
			return
		}

		parts := strings.SplitN(aToken, " ", 2)
		if !(len(parts) == 2 && parts[0] == "Bearer") {
			httpx.WithRepErrMsg(c, httpx.AuthorizationIncorrect.Code, httpx.AuthorizationIncorrect.Msg, c.Request.URL.Path)
			c.Abort()
			return
		}

		claims, err := jwt.ParseToken(parts[1], secretKey)
		if err != nil {
			if errors.Is(err, goJwt.ErrTokenExpired) {
				httpx.WithRepErrMsg(c, httpx.TokenInvalid.Code, "Token has expired", c.Request.URL.Path)
				c.Abort()
				return
			}
			httpx.WithRepErrMsg(c, httpx.TokenInvalid.Code, httpx.TokenInvalid.Msg, c.Request.URL.Path)
			c.Abort()
			return
		}

		c.Set("claims", claims)
		c.Next()
	}
}
