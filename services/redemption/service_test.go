package redemption

import (
	"context"
	"fmt"
	"testing"

	"clubevantagens-backend/pkg/repository"
	"clubevantagens-backend/services/benefit"
	"clubevantagens-backend/services/partner"
	"clubevantagens-backend/services/plan"
	"clubevantagens-backend/services/subscriber"
	"clubevantagens-backend/services/testutil"

	"github.com/bwmarrin/snowflake"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fakeCodes struct{ n int }

func (f *fakeCodes) NextTransactionCode(ctx context.Context) (string, error) {
	f.n++
	return fmt.Sprintf("TXN-TEST-%03d", f.n), nil
}

func (f *fakeCodes) NextAdjustmentCode(ctx context.Context) (string, error) {
	f.n++
	return fmt.Sprintf("ADJ-TEST-%03d", f.n), nil
}

func newTestService(t *testing.T) (*Service, *gorm.DB) {
	t.Helper()

	db := testutil.NewTestDB(t,
		&plan.Plan{},
		&benefit.Benefit{},
		&partner.Partner{},
		&subscriber.Subscriber{},
		&Transaction{},
		&CashbackBalance{},
	)

	node, err := snowflake.NewNode(1)
	require.NoError(t, err)

	svc := &Service{
		db:    db,
		node:  node,
		codes: &fakeCodes{},

		subscribers:  repository.ProvideStore[subscriber.Subscriber](db),
		partners:     repository.ProvideStore[partner.Partner](db),
		benefits:     repository.ProvideStore[benefit.Benefit](db),
		transactions: repository.ProvideStore[Transaction](db),
		balances:     repository.ProvideStore[CashbackBalance](db),
	}
	return svc, db
}

func seedSubscriber(t *testing.T, db *gorm.DB, status subscriber.SubscriptionStatus) *subscriber.Subscriber {
	t.Helper()
	sub := &subscriber.Subscriber{
		ID:                 "sub-1",
		Name:               "Maria Silva",
		CPF:                "11122233344",
		QRCode:             "qr-sub-1",
		SubscriptionStatus: status,
	}
	require.NoError(t, db.Create(sub).Error)
	return sub
}

func seedPartner(t *testing.T, db *gorm.DB) {
	t.Helper()
	require.NoError(t, db.Create(&partner.Partner{
		ID:        "partner-1",
		TradeName: "Padaria do João",
		CNPJ:      "11222333000144",
		Active:    true,
	}).Error)
}

func seedBenefit(t *testing.T, db *gorm.DB, id string, typ benefit.Type, raw string) *benefit.Benefit {
	t.Helper()
	ben := &benefit.Benefit{
		ID:       id,
		Name:     "Benefit " + id,
		Type:     typ,
		RawValue: datatypes.JSON([]byte(raw)),
		Active:   true,
	}
	require.NoError(t, db.Create(ben).Error)
	return ben
}

func TestRedeemCashback(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	seedSubscriber(t, db, subscriber.StatusActive)
	seedPartner(t, db)
	seedBenefit(t, db, "ben-cb", benefit.TypeCashback, `{"percentage":10}`)

	result, err := svc.Redeem(ctx, RedeemParams{
		SubscriberID: "sub-1",
		PartnerID:    "partner-1",
		BenefitID:    "ben-cb",
		Amount:       200,
	})
	require.NoError(t, err)
	require.True(t, result.Success)
	require.Equal(t, 20.0, result.Receipt.CashbackEarned)
	require.Equal(t, int64(1), result.Receipt.PointsEarned)
	require.Equal(t, "Padaria do João", result.Receipt.PartnerName)
	require.NotEmpty(t, result.TransactionCode)
	require.Contains(t, result.Message, "cashback")

	var sub subscriber.Subscriber
	require.NoError(t, db.First(&sub, "id = ?", "sub-1").Error)
	require.Equal(t, int64(1), sub.Points)
	require.Equal(t, 20.0, sub.Cashback)

	var bal CashbackBalance
	require.NoError(t, db.First(&bal, "subscriber_id = ? AND partner_id = ?", "sub-1", "partner-1").Error)
	require.Equal(t, 20.0, bal.TotalEarned)
	require.Equal(t, 0.0, bal.TotalUsed)
	require.Equal(t, bal.TotalEarned-bal.TotalUsed, bal.Balance)

	var txn Transaction
	require.NoError(t, db.First(&txn, "code = ?", result.TransactionCode).Error)
	require.Equal(t, TypePurchase, txn.Type)
	require.Equal(t, StatusCompleted, txn.Status)
	require.Equal(t, 20.0, txn.CashbackGenerated)
	require.Equal(t, int64(0), txn.PointsUsed)
	require.Equal(t, 0.0, txn.CashbackUsed)
}

func TestRedeemCashbackAccumulates(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	seedSubscriber(t, db, subscriber.StatusActive)
	seedPartner(t, db)
	seedBenefit(t, db, "ben-cb", benefit.TypeCashback, `{"percentage":5}`)

	for i := 0; i < 2; i++ {
		_, err := svc.Redeem(ctx, RedeemParams{
			SubscriberID: "sub-1",
			PartnerID:    "partner-1",
			BenefitID:    "ben-cb",
			Amount:       100,
		})
		require.NoError(t, err)
	}

	var sub subscriber.Subscriber
	require.NoError(t, db.First(&sub, "id = ?", "sub-1").Error)
	require.Equal(t, int64(2), sub.Points)
	require.Equal(t, 10.0, sub.Cashback)

	var bal CashbackBalance
	require.NoError(t, db.First(&bal, "subscriber_id = ? AND partner_id = ?", "sub-1", "partner-1").Error)
	require.Equal(t, 10.0, bal.TotalEarned)
	require.Equal(t, 10.0, bal.Balance)
	require.Equal(t, bal.TotalEarned-bal.TotalUsed, bal.Balance)

	var count int64
	require.NoError(t, db.Model(&CashbackBalance{}).Count(&count).Error)
	require.Equal(t, int64(1), count)
}

func TestRedeemDiscountIsInformational(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	seedSubscriber(t, db, subscriber.StatusActive)
	seedPartner(t, db)
	seedBenefit(t, db, "ben-disc", benefit.TypeDesconto, `{"percentage":15}`)

	result, err := svc.Redeem(ctx, RedeemParams{
		SubscriberID: "sub-1",
		PartnerID:    "partner-1",
		BenefitID:    "ben-disc",
		Amount:       100,
	})
	require.NoError(t, err)
	require.Equal(t, 15.0, result.Receipt.DiscountApplied)
	require.Equal(t, 0.0, result.Receipt.CashbackEarned)

	var sub subscriber.Subscriber
	require.NoError(t, db.First(&sub, "id = ?", "sub-1").Error)
	require.Equal(t, int64(1), sub.Points)
	require.Equal(t, 0.0, sub.Cashback)

	// discount is recorded on the transaction, not debited anywhere
	var txn Transaction
	require.NoError(t, db.First(&txn, "code = ?", result.TransactionCode).Error)
	require.Equal(t, 15.0, txn.DiscountApplied)

	var count int64
	require.NoError(t, db.Model(&CashbackBalance{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestRedeemStringEncodedValue(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	seedSubscriber(t, db, subscriber.StatusActive)
	seedPartner(t, db)
	seedBenefit(t, db, "ben-cb", benefit.TypeCashback, `"{\"percentage\":10}"`)

	result, err := svc.Redeem(ctx, RedeemParams{
		SubscriberID: "sub-1",
		PartnerID:    "partner-1",
		BenefitID:    "ben-cb",
		Amount:       50,
	})
	require.NoError(t, err)
	require.Equal(t, 5.0, result.Receipt.CashbackEarned)
}

func TestRedeemInactiveSubscriber(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	seedSubscriber(t, db, subscriber.StatusPending)
	seedPartner(t, db)
	seedBenefit(t, db, "ben-cb", benefit.TypeCashback, `{"percentage":10}`)

	_, err := svc.Redeem(ctx, RedeemParams{
		SubscriberID: "sub-1",
		PartnerID:    "partner-1",
		BenefitID:    "ben-cb",
		Amount:       100,
	})
	require.Error(t, err)

	var sub subscriber.Subscriber
	require.NoError(t, db.First(&sub, "id = ?", "sub-1").Error)
	require.Equal(t, int64(0), sub.Points)
	require.Equal(t, 0.0, sub.Cashback)

	var count int64
	require.NoError(t, db.Model(&Transaction{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestRedeemUnknownSubscriberAndBenefit(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	_, err := svc.Redeem(ctx, RedeemParams{SubscriberID: "nope", BenefitID: "ben"})
	require.Error(t, err)

	seedSubscriber(t, db, subscriber.StatusActive)
	_, err = svc.Redeem(ctx, RedeemParams{SubscriberID: "sub-1", BenefitID: "nope"})
	require.Error(t, err)
}

func TestRedeemWithoutPartnerSkipsTransaction(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	seedSubscriber(t, db, subscriber.StatusActive)
	seedBenefit(t, db, "ben-pts", benefit.TypePontos, `{"monthlyPoints":100}`)

	result, err := svc.Redeem(ctx, RedeemParams{
		SubscriberID: "sub-1",
		BenefitID:    "ben-pts",
	})
	require.NoError(t, err)
	require.Empty(t, result.TransactionCode)
	require.Equal(t, int64(1), result.Receipt.PointsEarned)
	require.Equal(t, "Admin", result.Receipt.PartnerName)

	var sub subscriber.Subscriber
	require.NoError(t, db.First(&sub, "id = ?", "sub-1").Error)
	require.Equal(t, int64(1), sub.Points)

	var count int64
	require.NoError(t, db.Model(&Transaction{}).Count(&count).Error)
	require.Equal(t, int64(0), count)
}

func TestAdjustBalance(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	seedSubscriber(t, db, subscriber.StatusActive)

	adj, err := svc.AdjustBalance(ctx, "sub-1", AdjustParams{
		PartnerID:     "partner-1",
		PointsDelta:   10,
		CashbackDelta: 25,
		Reason:        "imported from legacy system",
	})
	require.NoError(t, err)
	require.Equal(t, TypeAdjustment, adj.Type)
	require.NotEmpty(t, adj.Code)
	require.Equal(t, 25.0, adj.CashbackGenerated)
	require.Equal(t, "imported from legacy system", adj.Description)

	var sub subscriber.Subscriber
	require.NoError(t, db.First(&sub, "id = ?", "sub-1").Error)
	require.Equal(t, int64(10), sub.Points)
	require.Equal(t, 25.0, sub.Cashback)

	var bal CashbackBalance
	require.NoError(t, db.First(&bal, "subscriber_id = ? AND partner_id = ?", "sub-1", "partner-1").Error)
	require.Equal(t, 25.0, bal.Balance)
	require.Equal(t, bal.TotalEarned-bal.TotalUsed, bal.Balance)
}

func TestAdjustBalanceDebit(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	seedSubscriber(t, db, subscriber.StatusActive)

	_, err := svc.AdjustBalance(ctx, "sub-1", AdjustParams{
		PartnerID:     "partner-1",
		CashbackDelta: 30,
		Reason:        "credit",
	})
	require.NoError(t, err)

	adj, err := svc.AdjustBalance(ctx, "sub-1", AdjustParams{
		PartnerID:     "partner-1",
		CashbackDelta: -10,
		Reason:        "used at counter",
	})
	require.NoError(t, err)
	require.Equal(t, 10.0, adj.CashbackUsed)

	var bal CashbackBalance
	require.NoError(t, db.First(&bal, "subscriber_id = ? AND partner_id = ?", "sub-1", "partner-1").Error)
	require.Equal(t, 30.0, bal.TotalEarned)
	require.Equal(t, 10.0, bal.TotalUsed)
	require.Equal(t, 20.0, bal.Balance)
}

func TestAdjustBalanceRejectsNegative(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	seedSubscriber(t, db, subscriber.StatusActive)

	_, err := svc.AdjustBalance(ctx, "sub-1", AdjustParams{
		PointsDelta: -5,
		Reason:      "oops",
	})
	require.Error(t, err)

	_, err = svc.AdjustBalance(ctx, "sub-1", AdjustParams{
		PartnerID:     "partner-1",
		CashbackDelta: -1,
		Reason:        "no balance yet",
	})
	require.Error(t, err)

	var sub subscriber.Subscriber
	require.NoError(t, db.First(&sub, "id = ?", "sub-1").Error)
	require.Equal(t, int64(0), sub.Points)
	require.Equal(t, 0.0, sub.Cashback)
}

func TestAdjustBalanceRequiresChange(t *testing.T) {
	svc, _ := newTestService(t)

	_, err := svc.AdjustBalance(context.Background(), "sub-1", AdjustParams{Reason: "noop"})
	require.Error(t, err)
}

func TestHistory(t *testing.T) {
	svc, db := newTestService(t)
	ctx := context.Background()

	seedSubscriber(t, db, subscriber.StatusActive)
	seedPartner(t, db)
	seedBenefit(t, db, "ben-cb", benefit.TypeCashback, `{"percentage":10}`)

	for i := 0; i < 2; i++ {
		_, err := svc.Redeem(ctx, RedeemParams{
			SubscriberID: "sub-1",
			PartnerID:    "partner-1",
			BenefitID:    "ben-cb",
			Amount:       100,
		})
		require.NoError(t, err)
	}

	history, err := svc.History(ctx, "sub-1")
	require.NoError(t, err)
	require.Len(t, history, 2)
}
