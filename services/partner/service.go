package partner

import (
	"context"

	"clubevantagens-backend/pkg/errutil"
	"clubevantagens-backend/pkg/repository"
	"clubevantagens-backend/services/benefit"

	"github.com/bwmarrin/snowflake"
	"github.com/gosimple/slug"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Service struct {
	db   *gorm.DB
	node *snowflake.Node

	partners repository.Repository[Partner]
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

		partners: repository.ProvideStore[Partner](p.DB),
	}
}

type CreateParams struct {
	CompanyName string `json:"companyName" binding:"required"`
	TradeName   string `json:"tradeName" binding:"required"`
	CNPJ        string `json:"cnpj" binding:"required"`
	Category    string `json:"category"`
	City        string `json:"city"`
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Partner, error) {
	if exist, _ := s.partners.FindOne(ctx, &Partner{CNPJ: params.CNPJ}); exist != nil {
		return nil, errutil.Conflict("partner with this CNPJ already exists", nil)
	}

	p := &Partner{
		ID:          s.node.Generate().String(),
		CompanyName: params.CompanyName,
		TradeName:   params.TradeName,
		Slug:        slug.Make(params.TradeName),
		CNPJ:        params.CNPJ,
		Category:    params.Category,
		City:        params.City,
		Active:      true,
	}

	if err := s.partners.Create(ctx, p); err != nil {
		zap.L().Error("failed to create partner", zap.Error(err))
		return nil, err
	}

	return p, nil
}

func (s *Service) Get(ctx context.Context, partnerID string) (*Partner, error) {
	var p Partner
	if err := s.db.WithContext(ctx).
		Preload("BenefitAccess").
		Where("id = ?", partnerID).
		First(&p).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, errutil.NotFound("partner not found", err)
		}
		return nil, err
	}
	return &p, nil
}

// OfferedBenefits returns the benefits the partner may redeem. An empty
// partner ID yields nil, which the resolver treats as "no partner context".
func (s *Service) OfferedBenefits(ctx context.Context, partnerID string) ([]benefit.Benefit, error) {
	if partnerID == "" {
		return nil, nil
	}

	p, err := s.Get(ctx, partnerID)
	if err != nil {
		return nil, err
	}

	return p.BenefitAccess, nil
}
