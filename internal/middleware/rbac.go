package middleware

import (
	"github.com/gin-gonic/gin"

	appErrors "github.com/Darlington720/library-module/pkg/errors"
	"github.com/Darlington720/library-module/pkg/response"
)

// RequireModule allows the request when the session's role enables the module
// routed at route. Roles that list no modules are unrestricted.
func RequireModule(route string) gin.HandlerFunc {
	return RequirePageModule(route, func(c *gin.Context, err error) {
		response.Error(c, err)
	})
}

// RequirePageModule is RequireModule for server-rendered routes; denied writes
// the refusal instead of the JSON envelope.
func RequirePageModule(route string, denied func(*gin.Context, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		session, ok := CurrentSession(c)
		if !ok {
			denied(c, appErrors.ErrUnauthorized)
			c.Abort()
			return
		}
		modules := session.Profile.Role.Modules
		if len(modules) == 0 || session.Profile.HasModule(route) {
			c.Next()
			return
		}
		denied(c, appErrors.Clone(appErrors.ErrForbidden, "module not enabled for your role"))
		c.Abort()
	}
}
