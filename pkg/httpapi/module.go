package httpapi

import (
	"clubevantagens-backend/pkg/config"
	"clubevantagens-backend/pkg/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// RouteRegistrar is implemented by every service handler; collected through
// the fx "routes" group and mounted on the shared engine.
type RouteRegistrar interface {
	Register(r *gin.RouterGroup)
}

var Module = fx.Module("httpapi",
	fx.Provide(ProvideEngine),
	fx.Invoke(mountRoutes),
)

func ProvideEngine(cfg *config.Config) *gin.Engine {
	if cfg.AppEnv == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.Trace(cfg.AppName), middleware.Error())

	return engine
}

type mountParams struct {
	fx.In
	Engine     *gin.Engine
	Registrars []RouteRegistrar `group:"routes"`
}

func mountRoutes(p mountParams) {
	v1 := p.Engine.Group("/v1")
	for _, registrar := range p.Registrars {
		registrar.Register(v1)
	}
}

// AsRoute wraps a handler constructor so its result lands in the routes group.
func AsRoute(f any) any {
	return fx.Annotate(f,
		fx.As(new(RouteRegistrar)),
		fx.ResultTags(`group:"routes"`),
	)
}
