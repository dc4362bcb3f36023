package subscriber

import (
	"context"
	"encoding/json"
	"strings"

	"clubevantagens-backend/pkg/errutil"
	"clubevantagens-backend/pkg/repository"
	"clubevantagens-backend/services/benefit"

	"github.com/bwmarrin/snowflake"
	"github.com/google/uuid"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node

	subscribers repository.Repository[Subscriber]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:   p.DB,
		node: p.Node,

		subscribers: repository.ProvideStore[Subscriber](p.DB),
	}
}

type CreateParams struct {
	UserID string `json:"userId"`
	Name   string `json:"name" binding:"required"`
	CPF    string `json:"cpf" binding:"required"`
	Phone  string `json:"phone"`
	Email  string `json:"email"`
	PlanID string `json:"planId"`
}

// Create registers a subscriber in PENDING state. Activation only ever comes
// from a confirmed payment (billing webhook).
func (s *Service) Create(ctx context.Context, params CreateParams) (*Subscriber, error) {
	cpf := digitsOnly(params.CPF)
	if cpf == "" {
		return nil, errutil.ValidationFailed("cpf is required", nil)
	}

	if exist, _ := s.subscribers.FindOne(ctx, &Subscriber{CPF: cpf}); exist != nil {
		return nil, errutil.Conflict("subscriber with this CPF already exists", nil)
	}

	sub := &Subscriber{
		ID:                 s.node.Generate().String(),
		UserID:             params.UserID,
		Name:               params.Name,
		CPF:                cpf,
		Phone:              params.Phone,
		Email:              params.Email,
		QRCode:             uuid.NewString(),
		SubscriptionStatus: StatusPending,
	}

	if params.PlanID != "" {
		sub.PlanID = &params.PlanID
	}

	if err := s.subscribers.Create(ctx, sub); err != nil {
		zap.L().Error("failed to create subscriber", zap.Error(err))
		return nil, err
	}

	return sub, nil
}

func (s *Service) Get(ctx context.Context, subscriberID string) (*Subscriber, error) {
	sub, err := s.subscribers.FindOne(ctx, &Subscriber{ID: subscriberID})
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, errutil.NotFound("subscriber not found", nil)
	}
	return sub, nil
}

type scanEnvelope struct {
	ID          string `json:"id"`
	AssinanteID string `json:"assinanteId"`
	CPF         string `json:"cpf"`
}

// LookupByScan resolves a raw scan payload to exactly one subscriber. The
// payload may be an internal ID, a QR code, a CPF with or without punctuation,
// a linked user ID, or a JSON envelope carrying any of those. No partial or
// fuzzy matching.
func (s *Service) LookupByScan(ctx context.Context, raw string) (*Subscriber, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errutil.NotFound("subscriber not found", nil)
	}

	candidates := []string{raw}
	if strings.HasPrefix(raw, "{") {
		var env scanEnvelope
		if err := json.Unmarshal([]byte(raw), &env); err == nil {
			for _, c := range []string{env.ID, env.AssinanteID, env.CPF} {
				if c != "" {
					candidates = append(candidates, c)
				}
			}
		}
	}

	for _, candidate := range candidates {
		sub, err := s.matchOne(ctx, candidate)
		if err != nil {
			return nil, err
		}
		if sub != nil {
			return sub, nil
		}
	}

	return nil, errutil.NotFound("subscriber not found", nil)
}

// matchOne tries, in order: internal ID, QR code, digits-only CPF, user ID.
func (s *Service) matchOne(ctx context.Context, candidate string) (*Subscriber, error) {
	if sub, err := s.subscribers.FindOne(ctx, &Subscriber{ID: candidate}); err != nil || sub != nil {
		return sub, err
	}

	if sub, err := s.subscribers.FindOne(ctx, &Subscriber{QRCode: candidate}); err != nil || sub != nil {
		return sub, err
	}

	if digits := digitsOnly(candidate); digits != "" {
		if sub, err := s.subscribers.FindOne(ctx, &Subscriber{CPF: digits}); err != nil || sub != nil {
			return sub, err
		}
	}

	return s.subscribers.FindOne(ctx, &Subscriber{UserID: candidate})
}

// EligibleBenefits resolves what the subscriber may use at the given partner.
// Admin actors bypass the partner-side filter and see the full plan grant.
func (s *Service) EligibleBenefits(ctx context.Context, sub *Subscriber, partnerOffered []benefit.Benefit, admin bool) ([]benefit.Benefit, error) {
	planBenefits, err := s.planBenefits(ctx, sub)
	if err != nil {
		return nil, err
	}

	if admin {
		return benefit.ResolveAll(planBenefits), nil
	}

	return benefit.Resolve(planBenefits, partnerOffered), nil
}

func (s *Service) planBenefits(ctx context.Context, sub *Subscriber) ([]benefit.Benefit, error) {
	if sub.PlanID == nil {
		return nil, nil
	}

	var benefits []benefit.Benefit
	err := s.db.WithContext(ctx).
		Joins("JOIN plan_benefits ON plan_benefits.benefit_id = benefits.id").
		Where("plan_benefits.plan_id = ?", *sub.PlanID).
		Find(&benefits).Error
	if err != nil {
		return nil, err
	}

	return benefits, nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
