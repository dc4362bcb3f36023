package redemption

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
	r.POST("/redemptions", h.redeem)
	r.GET("/subscribers/:id/transactions", h.history)
	r.POST("/subscribers/:id/adjustments", middleware.Authorize(h.enforcer), h.adjust)
}

func (h *Handler) redeem(c *gin.Context) {
	var params RedeemParams
	if err := c.ShouldBindJSON(&params); err != nil {
		_ = c.Error(errutil.ValidationFailed("invalid redemption payload", err))
		return
	}

	result, err := h.svc.Redeem(c.Request.Context(), params)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) adjust(c *gin.Context) {
	var params AdjustParams
	if err := c.ShouldBindJSON(&params); err != nil {
		_ = c.Error(errutil.ValidationFailed("invalid adjustment payload", err))
		return
	}

	adjustment, err := h.svc.AdjustBalance(c.Request.Context(), c.Param("id"), params)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, adjustment)
}

func (h *Handler) history(c *gin.Context) {
	transactions, err := h.svc.History(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"transactions": transactions})
}
