package subscriber

import (
	"net/http"

	"clubevantagens-backend/pkg/errutil"
	"clubevantagens-backend/pkg/middleware"
	"clubevantagens-backend/services/benefit"
	"clubevantagens-backend/services/partner"

	"github.com/gin-gonic/gin"
)

const partnerIDHeader = "X-Partner-ID"

type Handler struct {
	svc      *Service
	partners *partner.Service
}

func NewHandler(svc *Service, partners *partner.Service) *Handler {
	return &Handler{svc: svc, partners: partners}
}

func (h *Handler) Register(r *gin.RouterGroup) {
	r.POST("/scan", h.scan)

	subscribers := r.Group("/subscribers")
	subscribers.POST("", h.create)
	subscribers.GET("/:id", h.get)
}

type scanRequest struct {
	Code string `json:"code" binding:"required"`
}

type benefitView struct {
	ID    string        `json:"id"`
	Name  string        `json:"name"`
	Type  benefit.Type  `json:"type"`
	Value benefit.Value `json:"value"`
}

type scanResponse struct {
	Subscriber *summary      `json:"subscriber"`
	Benefits   []benefitView `json:"benefits"`
}

type summary struct {
	ID                 string             `json:"id"`
	Name               string             `json:"name"`
	SubscriptionStatus SubscriptionStatus `json:"subscriptionStatus"`
	Points             int64              `json:"points"`
	Cashback           float64            `json:"cashback"`
}

func (h *Handler) scan(c *gin.Context) {
	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		_ = c.Error(errutil.ValidationFailed("scan code is required", err))
		return
	}

	ctx := c.Request.Context()

	sub, err := h.svc.LookupByScan(ctx, req.Code)
	if err != nil {
		_ = c.Error(err)
		return
	}

	admin := c.GetHeader(middleware.ActorRoleHeader) == "admin"

	var offered []benefit.Benefit
	if !admin {
		offered, err = h.partners.OfferedBenefits(ctx, c.GetHeader(partnerIDHeader))
		if err != nil {
			_ = c.Error(err)
			return
		}
	}

	eligible, err := h.svc.EligibleBenefits(ctx, sub, offered, admin)
	if err != nil {
		_ = c.Error(err)
		return
	}

	views := make([]benefitView, 0, len(eligible))
	for _, b := range eligible {
		views = append(views, benefitView{
			ID:    b.ID,
			Name:  b.Name,
			Type:  b.Type,
			Value: b.ParseValue(),
		})
	}

	c.JSON(http.StatusOK, scanResponse{
		Subscriber: &summary{
			ID:                 sub.ID,
			Name:               sub.Name,
			SubscriptionStatus: sub.SubscriptionStatus,
			Points:             sub.Points,
			Cashback:           sub.Cashback,
		},
		Benefits: views,
	})
}

func (h *Handler) create(c *gin.Context) {
	var params CreateParams
	if err := c.ShouldBindJSON(&params); err != nil {
		_ = c.Error(errutil.ValidationFailed("invalid subscriber payload", err))
		return
	}

	sub, err := h.svc.Create(c.Request.Context(), params)
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusCreated, sub)
}

func (h *Handler) get(c *gin.Context) {
	sub, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		_ = c.Error(err)
		return
	}

	c.JSON(http.StatusOK, sub)
}
