package plan

import (
	"net/http"

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
	plans := r.Group("/plans")
	plans.GET("", h.list)
	plans.GET("/:id", h.get)
	plans.POST("", middleware.Authorize(h.enforcer), h.create)
}

func (h *Handler) create(c *gin.Context) {
	var params CreateParams
	if err := c.ShouldBindJSON(&params); err != nil {
		_ = c.Error(errutil.ValidationFailed("invalid plan payload", err))
		return
	}

	p, err := h.svc.Create(c.Request.Context(), params)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, p)
}

func (h *Handler) get(c *gin.Context) {
	p, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, p)
}

func (h *Handler) list(c *gin.Context) {
	plans, err := h.svc.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans})
}
