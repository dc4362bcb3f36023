package partner

import (
	"context"
	"testing"

	"clubevantagens-backend/pkg/repository"
	"clubevantagens-backend/services/benefit"
	"clubevantagens-backend/services/testutil"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db := testutil.NewTestDB(t, &benefit.Benefit{}, &Partner{})

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := &Service{
		db:       db,
		node:     node,
		partners: repository.ProvideStore[Partner](db),
	}
	return svc, db
}

func TestCreateSlugsTradeName(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	p, err := svc.Create(ctx, CreateParams{
		CompanyName: "Padaria do João LTDA",
		TradeName:   "Padaria do João",
		CNPJ:        "11.222.333/0001-44",
	})
	require.NoError(t, err)
	require.Equal(t, "padaria-do-joao", p.Slug)
	require.True(t, p.Active)

	_, err = svc.Create(ctx, CreateParams{
		CompanyName: "Outra",
		TradeName:   "Outra",
		CNPJ:        "11.222.333/0001-44",
	})
	require.Error(t, err)
}

func TestOfferedBenefits(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	require.NoError(t, db.Create(&Partner{
		ID:        "partner-1",
		TradeName: "Padaria",
		CNPJ:      "123",
		Active:    true,
		BenefitAccess: []benefit.Benefit{
			{ID: "ben-a", Name: "Desconto", Active: true},
		},
	}).Error)

	offered, err := svc.OfferedBenefits(ctx, "partner-1")
	require.NoError(t, err)
	require.Len(t, offered, 1)
	require.Equal(t, "ben-a", offered[0].ID)

	// no partner context yields nil, not an error
	offered, err = svc.OfferedBenefits(ctx, "")
	require.NoError(t, err)
	require.Nil(t, offered)

	_, err = svc.OfferedBenefits(ctx, "missing")
	require.Error(t, err)
}
