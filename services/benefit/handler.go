package benefit

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
	benefits := r.Group("/benefits")
	benefits.GET("", h.list)
	benefits.GET("/:id", h.get)
	benefits.POST("", middleware.Authorize(h.enforcer), h.create)
}

func (h *Handler) create(c *gin.Context) {
	var params CreateParams
	if err := c.ShouldBindJSON(&params); err != nil {
		_ = c.Error(errutil.ValidationFailed("invalid benefit payload", err))
		return
	}

	b, err := h.svc.Create(c.Request.Context(), params)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, b)
}

func (h *Handler) get(c *gin.Context) {
	b, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, b)
}

func (h *Handler) list(c *gin.Context) {
	benefits, err := h.svc.List(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"benefits": benefits})
}
