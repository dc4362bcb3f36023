package notification

import (
	"net/http"

	"clubevantagens-backend/pkg/errutil"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

type Handler struct {
	push *PushSender
	node *snowflake.Node
}

type HandlerParams struct {
	fx.In
	Push *PushSender
	Node *snowflake.Node
}

func NewHandler(p HandlerParams) *Handler {
	return &Handler{push: p.Push, node: p.Node}
}

func (h *Handler) Register(r *gin.RouterGroup) {
	r.POST("/subscribers/:id/push-devices", h.registerDevice)
}

type registerDeviceRequest struct {
	Endpoint string `json:"endpoint" binding:"required"`
	P256dh   string `json:"p256dh" binding:"required"`
	Auth     string `json:"auth" binding:"required"`
}

func (h *Handler) registerDevice(c *gin.Context) {
	var req registerDeviceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.ValidationFailed("invalid push subscription payload", err))
		return
	}

	device := &PushDevice{
		ID:           h.node.Generate().String(),
		SubscriberID: c.Param("id"),
		Endpoint:     req.Endpoint,
		P256dh:       req.P256dh,
		Auth:         req.Auth,
	}

	if err := h.push.RegisterDevice(c.Request.Context(), device); err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, device)
}
