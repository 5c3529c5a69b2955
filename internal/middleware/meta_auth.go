package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/suteetoe/tenantgate/pkg/jwtutil"
	"github.com/suteetoe/tenantgate/pkg/logger"
	"go.uber.org/zap"
)

// MetaSessionCookie is set by the meta-admin login
const MetaSessionCookie = "isLogged"

const metaUserKey = "meta_user"

// MetaUserFromContext returns the meta-admin named by a bearer token.
// Cookie sessions carry no username.
func MetaUserFromContext(c echo.Context) (string, bool) {
	user, ok := c.Get(metaUserKey).(string)
	return user, ok && user != ""
}

// MetaAuth admits requests carrying the meta session cookie or a valid
// meta-admin bearer token
func MetaAuth(jwtUtil *jwtutil.JWTUtil) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if cookie, err := c.Cookie(MetaSessionCookie); err == nil && cookie.Value == "true" {
				return next(c)
			}

			authHeader := c.Request().Header.Get(echo.HeaderAuthorization)
			if token, ok := strings.CutPrefix(authHeader, "Bearer "); ok && jwtUtil != nil {
				claims, err := jwtUtil.ValidateMetaToken(token)
				if err == nil {
					c.Set(metaUserKey, claims.Username)
					return next(c)
				}
				logger.FromContext(c).Warn("Invalid meta-admin token", zap.Error(err))
			}

			return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "message": "authorization required"})
		}
	}
}
