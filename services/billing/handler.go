package billing

import (
	"encoding/json"
	"net/http"

	"clubevantagens-backend/pkg/errutil"
	"clubevantagens-backend/pkg/task"
	"clubevantagens-backend/pkg/taskname"

	"github.com/gin-gonic/gin"
	"github.com/hibiken/asynq"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Handler struct {
	svc      *Service
	enqueuer task.Enqueuer
}

type HandlerParams struct {
	fx.In
	Service  *Service
	Enqueuer task.Enqueuer
}

func NewHandler(p HandlerParams) *Handler {
	return &Handler{svc: p.Service, enqueuer: p.Enqueuer}
}

func (h *Handler) Register(r *gin.RouterGroup) {
	r.POST("/checkout", h.checkout)
	r.POST("/billing/webhook", h.webhook)
}

func (h *Handler) checkout(c *gin.Context) {
	var params CheckoutParams
	if err := c.ShouldBindJSON(&params); err != nil {
		_ = c.Error(errutil.ValidationFailed("invalid checkout payload", err))
		return
	}

	result, err := h.svc.Checkout(c.Request.Context(), params)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, result)
}

// webhook always acknowledges with 200 once the payload parses. A processing
// failure is queued for replay instead of bounced back; gateways that see
// repeated 5xx responses disable the webhook endpoint entirely.
func (h *Handler) webhook(c *gin.Context) {
	var event WebhookEvent
	if err := c.ShouldBindJSON(&event); err != nil {
		_ = c.Error(errutil.BadRequest("invalid webhook payload", err))
		return
	}

	if err := h.svc.HandleWebhook(c.Request.Context(), event); err != nil {
		zap.L().Error("[Billing] webhook processing failed, scheduling replay",
			zap.String("event", event.Event),
			zap.Error(err))

		payload, _ := json.Marshal(event)
		if _, err := h.enqueuer.Enqueue(
			asynq.NewTask(taskname.BillingWebhookReplay, payload),
			asynq.Queue("critical"),
			asynq.MaxRetry(10),
		); err != nil {
			_ = c.Error(err)
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"received": true})
}
