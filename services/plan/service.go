package plan

import (
	"context"

	"clubevantagens-backend/pkg/errutil"
	"clubevantagens-backend/pkg/repository"
	"clubevantagens-backend/services/benefit"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node

	plans repository.Repository[Plan]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:    p.DB,
		node:  p.Node,
		plans: repository.ProvideStore[Plan](p.DB),
	}
}

type CreateParams struct {
	Name         string   `json:"name" binding:"required"`
	Description  string   `json:"description"`
	Price        float64  `json:"price" binding:"required"`
	DurationDays int      `json:"durationDays" binding:"required"`
	BenefitIDs   []string `json:"benefitIds"`
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Plan, error) {
	p := &Plan{
		ID:           s.node.Generate().String(),
		Name:         params.Name,
		Description:  params.Description,
		Price:        params.Price,
		DurationDays: params.DurationDays,
		Active:       true,
	}

	if len(params.BenefitIDs) > 0 {
		var benefits []benefit.Benefit
		if err := s.db.WithContext(ctx).Find(&benefits, "id IN ?", params.BenefitIDs).Error; err != nil {
			return nil, err
		}
		if len(benefits) != len(params.BenefitIDs) {
			return nil, errutil.ValidationFailed("one or more benefits do not exist", nil)
		}
		p.Benefits = benefits
	}

	if err := s.db.WithContext(ctx).Create(p).Error; err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) Get(ctx context.Context, planID string) (*Plan, error) {
	var p Plan
	err := s.db.WithContext(ctx).Preload("Benefits").Where("id = ?", planID).First(&p).Error
	if err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errutil.NotFound("plan not found", err)
		}
		return nil, err
	}
	return &p, nil
}

// List returns plans open for sale.
func (s *Service) List(ctx context.Context) ([]*Plan, error) {
	return s.plans.Find(ctx, &Plan{Active: true})
}
