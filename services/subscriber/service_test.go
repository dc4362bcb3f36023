package subscriber

import (
	"context"
	"testing"

	"clubevantagens-backend/pkg/repository"
	"clubevantagens-backend/services/benefit"
	"clubevantagens-backend/services/plan"
	"clubevantagens-backend/services/testutil"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db := testutil.NewTestDB(t, &benefit.Benefit{}, &plan.Plan{}, &Subscriber{})

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := &Service{
		db:          db,
		node:        node,
		subscribers: repository.ProvideStore[Subscriber](db),
	}
	return svc, db
}

func TestCreateNormalizesCPF(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	sub, err := svc.Create(ctx, CreateParams{Name: "Maria", CPF: "111.222.333-44"})
	require.NoError(t, err)
	require.Equal(t, "11122233344", sub.CPF)
	require.NotEmpty(t, sub.QRCode)
	require.Equal(t, StatusPending, sub.SubscriptionStatus)

	// same CPF with different punctuation is a duplicate
	_, err = svc.Create(ctx, CreateParams{Name: "Maria", CPF: "11122233344"})
	require.Error(t, err)
}

func seedLookupSubscriber(t *testing.T, db *gorm.DB) *Subscriber {
	t.Helper()
	sub := &Subscriber{
		ID:                 "sub-1",
		UserID:             "user-9",
		Name:               "Maria",
		CPF:                "11122233344",
		QRCode:             "qr-abc",
		SubscriptionStatus: StatusActive,
	}
	require.NoError(t, db.Create(sub).Error)
	return sub
}

func TestLookupByScan(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	seedLookupSubscriber(t, db)

	cases := map[string]string{
		"internal id":    "sub-1",
		"qr code":        "qr-abc",
		"plain cpf":      "11122233344",
		"punctuated cpf": "111.222.333-44",
		"user id":        "user-9",
		"json id":        `{"id":"sub-1"}`,
		"json assinante": `{"assinanteId":"sub-1"}`,
		"json cpf":       `{"cpf":"111.222.333-44"}`,
		"padded":         "  qr-abc  ",
	}

	for name, code := range cases {
		sub, err := svc.LookupByScan(ctx, code)
		require.NoError(t, err, name)
		require.Equal(t, "sub-1", sub.ID, name)
	}
}

func TestLookupByScanNotFound(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()
	seedLookupSubscriber(t, db)

	for _, code := range []string{"", "   ", "nope", `{"id":"nope"}`, `{not json`} {
		_, err := svc.LookupByScan(ctx, code)
		require.Error(t, err, "code=%q", code)
	}
}

func TestEligibleBenefits(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	granted := []benefit.Benefit{
		{ID: "ben-a", Name: "Desconto", Type: benefit.TypeDesconto, Active: true},
		{ID: "ben-b", Name: "Cashback", Type: benefit.TypeCashback, Active: true},
	}
	require.NoError(t, db.Create(&plan.Plan{
		ID:       "plan-1",
		Name:     "Clube Ouro",
		Active:   true,
		Benefits: granted,
	}).Error)

	planID := "plan-1"
	sub := &Subscriber{
		ID:                 "sub-1",
		CPF:                "11122233344",
		QRCode:             "qr-1",
		SubscriptionStatus: StatusActive,
		PlanID:             &planID,
	}
	require.NoError(t, db.Create(sub).Error)

	// partner only redeems ben-a
	offered := []benefit.Benefit{{ID: "ben-a"}}
	eligible, err := svc.EligibleBenefits(ctx, sub, offered, false)
	require.NoError(t, err)
	require.Len(t, eligible, 1)
	require.Equal(t, "ben-a", eligible[0].ID)

	// admin sees the full plan grant
	eligible, err = svc.EligibleBenefits(ctx, sub, nil, true)
	require.NoError(t, err)
	require.Len(t, eligible, 2)

	// no partner context, no admin: nothing is redeemable
	eligible, err = svc.EligibleBenefits(ctx, sub, nil, false)
	require.NoError(t, err)
	require.Empty(t, eligible)
}

func TestEligibleBenefitsWithoutPlan(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	sub := seedLookupSubscriber(t, db)

	eligible, err := svc.EligibleBenefits(ctx, sub, nil, true)
	require.NoError(t, err)
	require.Empty(t, eligible)
}
