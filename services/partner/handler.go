package partner

import (
	"net/http"

	"clubevantagens-backend/pkg/errutil"

	"github.com/gin-gonic/gin"
)

type Handler struct {
	svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) Register(r *gin.RouterGroup) {
	partners := r.Group("/partners")
	partners.POST("", h.create)
	partners.GET("/:id", h.get)
	partners.GET("/:id/benefits", h.benefits)
}

func (h *Handler) create(c *gin.Context) {
	var params CreateParams
	if err := c.ShouldBindJSON(&params); err != nil {
		_ = c.Error(errutil.ValidationFailed("invalid partner payload", err))
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

func (h *Handler) benefits(c *gin.Context) {
	benefits, err := h.svc.OfferedBenefits(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": benefits})
}
