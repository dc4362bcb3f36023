package redemption

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"clubevantagens-backend/pkg/db/option"
	"clubevantagens-backend/pkg/errutil"
	"clubevantagens-backend/pkg/repository"
	"clubevantagens-backend/pkg/sequence"
	"clubevantagens-backend/services/benefit"
	"clubevantagens-backend/services/partner"
	"clubevantagens-backend/services/subscriber"

	"github.com/bwmarrin/snowflake"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Every redemption grants one loyalty point regardless of benefit type.
const pointsPerRedemption = 1

type Service struct {
	db    *gorm.DB
	node  *snowflake.Node
	codes sequence.Generator

	subscribers  repository.Repository[subscriber.Subscriber]
	partners     repository.Repository[partner.Partner]
	benefits     repository.Repository[benefit.Benefit]
	transactions repository.Repository[Transaction]
	balances     repository.Repository[CashbackBalance]
}

type ServiceParams struct {
	fx.In
	DB    *gorm.DB
	Node  *snowflake.Node
	Codes sequence.Generator
}

func NewService(p ServiceParams) *Service {
	return &Service{
		db:    p.DB,
		node:  p.Node,
		codes: p.Codes,

		subscribers:  repository.ProvideStore[subscriber.Subscriber](p.DB),
		partners:     repository.ProvideStore[partner.Partner](p.DB),
		benefits:     repository.ProvideStore[benefit.Benefit](p.DB),
		transactions: repository.ProvideStore[Transaction](p.DB),
		balances:     repository.ProvideStore[CashbackBalance](p.DB),
	}
}

type RedeemParams struct {
	SubscriberID string  `json:"subscriberId" binding:"required"`
	PartnerID    string  `json:"partnerId"`
	BenefitID    string  `json:"benefitId" binding:"required"`
	Amount       float64 `json:"amount"`
}

type Receipt struct {
	SubscriberName  string  `json:"subscriberName"`
	BenefitName     string  `json:"benefitName"`
	PartnerName     string  `json:"partnerName"`
	Amount          float64 `json:"amount"`
	DiscountApplied float64 `json:"discountApplied"`
	CashbackEarned  float64 `json:"cashbackEarned"`
	PointsEarned    int64   `json:"pointsEarned"`
}

type RedeemResult struct {
	Success         bool    `json:"success"`
	Message         string  `json:"message"`
	TransactionCode string  `json:"transactionCode,omitempty"`
	Receipt         Receipt `json:"receipt"`
}

// Redeem applies a benefit at the point of sale. Discounts are informational,
// nothing is debited on our side. Cashback accrues on the subscriber and on the
// per-partner balance. Preconditions fail before anything is written.
func (s *Service) Redeem(ctx context.Context, params RedeemParams) (*RedeemResult, error) {
	sub, err := s.subscribers.FindOne(ctx, &subscriber.Subscriber{ID: params.SubscriberID})
	if err != nil {
		return nil, err
	}
	if sub == nil {
		return nil, errutil.NotFound("subscriber not found", nil)
	}
	if sub.SubscriptionStatus != subscriber.StatusActive {
		return nil, errutil.UnprocessableEntity("subscriber has no active subscription", nil)
	}

	ben, err := s.benefits.FindOne(ctx, &benefit.Benefit{ID: params.BenefitID})
	if err != nil {
		return nil, err
	}
	if ben == nil {
		return nil, errutil.NotFound("benefit not found", nil)
	}

	if params.Amount < 0 {
		return nil, errutil.ValidationFailed("amount must not be negative", nil)
	}

	partnerName := "Admin"
	if params.PartnerID != "" {
		p, err := s.partners.FindOne(ctx, &partner.Partner{ID: params.PartnerID})
		if err != nil {
			return nil, err
		}
		if p == nil {
			return nil, errutil.NotFound("partner not found", nil)
		}
		partnerName = p.TradeName
	}

	value := ben.ParseValue()

	receipt := Receipt{
		SubscriberName: sub.Name,
		BenefitName:    ben.Name,
		PartnerName:    partnerName,
		Amount:         params.Amount,
		PointsEarned:   pointsPerRedemption,
	}

	if params.Amount > 0 {
		switch ben.Type {
		case benefit.TypeDesconto:
			receipt.DiscountApplied = params.Amount * value.Percentage / 100
		case benefit.TypeCashback:
			receipt.CashbackEarned = params.Amount * value.Percentage / 100
		}
	}

	var code string
	recordTransaction := params.PartnerID != "" && params.Amount > 0
	if recordTransaction {
		if code, err = s.codes.NextTransactionCode(ctx); err != nil {
			zap.L().Error("failed to allocate transaction code", zap.Error(err))
			return nil, err
		}
	}

	message := summaryMessage(receipt)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]any{
			"points": gorm.Expr("points + ?", pointsPerRedemption),
		}
		if receipt.CashbackEarned > 0 {
			updates["cashback"] = gorm.Expr("cashback + ?", receipt.CashbackEarned)
		}
		if err := s.subscribers.WithTrx(tx).Update(ctx, sub.ID, updates); err != nil {
			return err
		}

		if receipt.CashbackEarned > 0 && params.PartnerID != "" {
			if err := s.accrueBalance(ctx, tx, sub.ID, params.PartnerID, receipt.CashbackEarned); err != nil {
				return err
			}
		}

		if recordTransaction {
			metadata, _ := json.Marshal(map[string]any{
				"benefitId":   ben.ID,
				"benefitName": ben.Name,
				"benefitType": ben.Type,
				"percentage":  value.Percentage,
			})
			return s.transactions.WithTrx(tx).Create(ctx, &Transaction{
				ID:                s.node.Generate().String(),
				Code:              code,
				Type:              TypePurchase,
				Status:            StatusCompleted,
				SubscriberID:      sub.ID,
				PartnerID:         params.PartnerID,
				BenefitID:         ben.ID,
				Amount:            params.Amount,
				PointsUsed:        0,
				CashbackGenerated: receipt.CashbackEarned,
				CashbackUsed:      0,
				DiscountApplied:   receipt.DiscountApplied,
				Description:       message,
				Metadata:          datatypes.JSON(metadata),
			})
		}
		return nil
	})
	if err != nil {
		zap.L().Error("redemption failed",
			zap.String("subscriber_id", sub.ID),
			zap.String("benefit_id", ben.ID),
			zap.Error(err))
		return nil, err
	}

	return &RedeemResult{
		Success:         true,
		Message:         message,
		TransactionCode: code,
		Receipt:         receipt,
	}, nil
}

// summaryMessage enumerates what the redemption granted.
func summaryMessage(r Receipt) string {
	parts := []string{fmt.Sprintf("%d ponto(s)", r.PointsEarned)}
	if r.DiscountApplied > 0 {
		parts = append(parts, fmt.Sprintf("desconto de R$ %.2f", r.DiscountApplied))
	}
	if r.CashbackEarned > 0 {
		parts = append(parts, fmt.Sprintf("cashback de R$ %.2f", r.CashbackEarned))
	}
	return fmt.Sprintf("%s resgatou %s em %s: %s",
		r.SubscriberName, r.BenefitName, r.PartnerName, strings.Join(parts, ", "))
}

// accrueBalance upserts the per-partner accumulator under a row lock so
// concurrent redemptions serialize on the same balance.
func (s *Service) accrueBalance(ctx context.Context, tx *gorm.DB, subscriberID, partnerID string, earned float64) error {
	balances := s.balances.WithTrx(tx)

	bal, err := balances.FindOne(ctx,
		&CashbackBalance{SubscriberID: subscriberID, PartnerID: partnerID},
		option.WithLockingUpdate())
	if err != nil {
		return err
	}

	if bal == nil {
		return balances.Create(ctx, &CashbackBalance{
			ID:           s.node.Generate().String(),
			SubscriberID: subscriberID,
			PartnerID:    partnerID,
			Balance:      earned,
			TotalEarned:  earned,
			TotalUsed:    0,
		})
	}

	bal.TotalEarned += earned
	bal.Balance = bal.TotalEarned - bal.TotalUsed
	bal.UpdatedAt = time.Now()
	return balances.BatchUpdate(ctx, []*CashbackBalance{bal})
}

type AdjustParams struct {
	PartnerID     string  `json:"partnerId"`
	PointsDelta   int64   `json:"pointsDelta"`
	CashbackDelta float64 `json:"cashbackDelta"`
	Reason        string  `json:"reason" binding:"required"`
}

// AdjustBalance is the admin override. It writes an ADJUSTMENT transaction so
// the ledger stays reconstructible, and refuses to drive any counter negative.
func (s *Service) AdjustBalance(ctx context.Context, subscriberID string, params AdjustParams) (*Transaction, error) {
	if params.PointsDelta == 0 && params.CashbackDelta == 0 {
		return nil, errutil.ValidationFailed("adjustment must change points or cashback", nil)
	}

	code, err := s.codes.NextAdjustmentCode(ctx)
	if err != nil {
		return nil, err
	}

	var adjustment *Transaction
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		subscribers := s.subscribers.WithTrx(tx)

		sub, err := subscribers.FindOne(ctx,
			&subscriber.Subscriber{ID: subscriberID},
			option.WithLockingUpdate())
		if err != nil {
			return err
		}
		if sub == nil {
			return errutil.NotFound("subscriber not found", nil)
		}

		if sub.Points+params.PointsDelta < 0 {
			return errutil.UnprocessableEntity("adjustment would make points negative", nil)
		}
		if sub.Cashback+params.CashbackDelta < 0 {
			return errutil.UnprocessableEntity("adjustment would make cashback negative", nil)
		}

		if err := subscribers.Update(ctx, sub.ID, map[string]any{
			"points":   gorm.Expr("points + ?", params.PointsDelta),
			"cashback": gorm.Expr("cashback + ?", params.CashbackDelta),
		}); err != nil {
			return err
		}

		if params.CashbackDelta != 0 && params.PartnerID != "" {
			if err := s.adjustPartnerBalance(ctx, tx, sub.ID, params.PartnerID, params.CashbackDelta); err != nil {
				return err
			}
		}

		metadata, _ := json.Marshal(map[string]any{
			"pointsDelta":   params.PointsDelta,
			"cashbackDelta": params.CashbackDelta,
		})

		adjustment = &Transaction{
			ID:           s.node.Generate().String(),
			Code:         code,
			Type:         TypeAdjustment,
			Status:       StatusCompleted,
			SubscriberID: sub.ID,
			PartnerID:    params.PartnerID,
			Description:  params.Reason,
			Metadata:     datatypes.JSON(metadata),
		}
		if params.CashbackDelta >= 0 {
			adjustment.CashbackGenerated = params.CashbackDelta
		} else {
			adjustment.CashbackUsed = -params.CashbackDelta
		}
		if params.PointsDelta < 0 {
			adjustment.PointsUsed = -params.PointsDelta
		}

		return s.transactions.WithTrx(tx).Create(ctx, adjustment)
	})
	if err != nil {
		return nil, err
	}

	return adjustment, nil
}

func (s *Service) adjustPartnerBalance(ctx context.Context, tx *gorm.DB, subscriberID, partnerID string, delta float64) error {
	balances := s.balances.WithTrx(tx)

	bal, err := balances.FindOne(ctx,
		&CashbackBalance{SubscriberID: subscriberID, PartnerID: partnerID},
		option.WithLockingUpdate())
	if err != nil {
		return err
	}

	if bal == nil {
		if delta < 0 {
			return errutil.UnprocessableEntity("no cashback balance to debit for this partner", nil)
		}
		return balances.Create(ctx, &CashbackBalance{
			ID:           s.node.Generate().String(),
			SubscriberID: subscriberID,
			PartnerID:    partnerID,
			Balance:      delta,
			TotalEarned:  delta,
		})
	}

	if delta >= 0 {
		bal.TotalEarned += delta
	} else {
		if bal.Balance+delta < 0 {
			return errutil.UnprocessableEntity("adjustment would make partner balance negative", nil)
		}
		bal.TotalUsed += -delta
	}
	bal.Balance = bal.TotalEarned - bal.TotalUsed
	bal.UpdatedAt = time.Now()
	return balances.BatchUpdate(ctx, []*CashbackBalance{bal})
}

// History lists a subscriber's transactions, newest first.
func (s *Service) History(ctx context.Context, subscriberID string) ([]*Transaction, error) {
	return s.transactions.Find(ctx,
		&Transaction{SubscriberID: subscriberID},
		option.WithSortBy(option.QuerySortBy{SortBy: "created_at", OrderBy: "desc"}))
}
