package expiration

import (
	"net/http"
	"time"

	"clubevantagens-backend/pkg/errutil"
	"clubevantagens-backend/pkg/middleware"

	"github.com/casbin/casbin/v2"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

type Handler struct {
	svc      *Service
	enforcer *casbin.Enforcer
}

type HandlerParams struct {
	fx.In
	Service  *Service
	Enforcer *casbin.Enforcer
}

func NewHandler(p HandlerParams) *Handler {
	return &Handler{svc: p.Service, enforcer: p.Enforcer}
}

func (h *Handler) Register(r *gin.RouterGroup) {
	r.POST("/notifications/expiration-run", middleware.Authorize(h.enforcer), h.run)
}

// run triggers the scan synchronously, optionally narrowed to specific
// offsets or channels. Operators use it to replay a missed schedule or verify
// templates without waiting for the daily run.
func (h *Handler) run(c *gin.Context) {
	var opts RunOptions
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&opts); err != nil {
			_ = c.Error(errutil.BadRequest("invalid run options", err))
			return
		}
	}

	summary, err := h.svc.Run(c.Request.Context(), time.Now(), opts)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, summary)
}
