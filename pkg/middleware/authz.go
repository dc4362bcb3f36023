package middleware

import (
	"clubevantagens-backend/pkg/config"
	"clubevantagens-backend/pkg/errutil"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// ActorRole is resolved by the auth layer in front of this service.
const ActorRoleHeader = "X-Actor-Role"

var AuthzModule = fx.Module("authz", fx.Provide(ProvideEnforcer))

func ProvideEnforcer(cfg *config.Config) (*casbin.Enforcer, error) {
	if cfg.AccessControl.Model == "" {
		return nil, nil
	}
	return casbin.NewEnforcer(cfg.AccessControl.Model, cfg.AccessControl.Policy)
}

// Authorize enforces role-based access on the request path and method. A nil
// enforcer (no access-control config) leaves routes open, which only makes
// sense behind a trusted gateway.
func Authorize(enforcer *casbin.Enforcer) gin.HandlerFunc {
	return func(c *gin.Context) {
		if enforcer == nil {
			c.Next()
			return
		}

		role := c.GetHeader(ActorRoleHeader)
		if role == "" {
			role = "anonymous"
		}

		ok, err := enforcer.Enforce(role, c.FullPath(), c.Request.Method)
		if err != nil {
			zap.L().Error("authz enforce failed", zap.Error(err))
			c.AbortWithStatusJSON(errutil.StatusInternal.HTTPStatus(), errutil.BaseError{
				Code: errutil.StatusInternal, Message: "authorization check failed",
			}.JSON())
			return
		}

		if !ok {
			c.AbortWithStatusJSON(errutil.StatusForbidden.HTTPStatus(), errutil.BaseError{
				Code: errutil.StatusForbidden, Message: "actor role not allowed",
			}.JSON())
			return
		}

		c.Next()
	}
}
