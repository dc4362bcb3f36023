package benefit

import (
	"context"
	"encoding/json"

	"clubevantagens-backend/pkg/errutil"
	"clubevantagens-backend/pkg/repository"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var validTypes = map[Type]bool{
	TypeDesconto:        true,
	TypeCashback:        true,
	TypePontos:          true,
	TypeAcessoExclusivo: true,
}

type Service struct {
	node *snowflake.Node

	benefits repository.Repository[Benefit]
}

type ServiceParams struct {
	fx.In
	DB   *gorm.DB
	Node *snowflake.Node
}

func NewService(p ServiceParams) *Service {
	return &Service{
		node:     p.Node,
		benefits: repository.ProvideStore[Benefit](p.DB),
	}
}

type CreateParams struct {
	Name        string         `json:"name" binding:"required"`
	Description string         `json:"description"`
	Type        Type           `json:"type" binding:"required"`
	Value       map[string]any `json:"value"`
}

func (s *Service) Create(ctx context.Context, params CreateParams) (*Benefit, error) {
	if !validTypes[params.Type] {
		return nil, errutil.ValidationFailed("unknown benefit type", nil)
	}

	raw, err := json.Marshal(params.Value)
	if err != nil {
		return nil, errutil.ValidationFailed("benefit value is not serializable", err)
	}

	b := &Benefit{
		ID:          s.node.Generate().String(),
		Name:        params.Name,
		Description: params.Description,
		Type:        params.Type,
		RawValue:    datatypes.JSON(raw),
		Active:      true,
	}

	if err := s.benefits.Create(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Service) Get(ctx context.Context, benefitID string) (*Benefit, error) {
	b, err := s.benefits.FindOne(ctx, &Benefit{ID: benefitID})
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, errutil.NotFound("benefit not found", nil)
	}
	return b, nil
}

func (s *Service) List(ctx context.Context) ([]*Benefit, error) {
	return s.benefits.Find(ctx, &Benefit{Active: true})
}
