package store

import (
	"context"
	"errors"
	"time"

	"paylink-core/internal/event"
	"paylink-core/internal/model"
	"paylink-core/pkg/errno"

	"gorm.io/gorm"
)

// SQLLinkStore 基于 GORM/PostgreSQL 的 LinkStore 实现
type SQLLinkStore struct {
	db *gorm.DB
}

func NewSQLLinkStore(db *gorm.DB) *SQLLinkStore {
	return &SQLLinkStore{db: db}
}

func (s *SQLLinkStore) CreateLink(ctx context.Context, link *model.PaymentLink) error {
	if err := s.db.WithContext(ctx).Create(link).Error; err != nil {
		return errno.ErrDatabase.WithMessage(err.Error())
	}
	return nil
}

func (s *SQLLinkStore) GetLink(ctx context.Context, id string) (*model.PaymentLink, error) {
	var link model.PaymentLink
	if err := s.db.WithContext(ctx).First(&link, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errno.ErrLinkNotFound
		}
		return nil, errno.ErrDatabase.WithMessage(err.Error())
	}
	return &link, nil
}

func (s *SQLLinkStore) ListLinks(ctx context.Context, limit, offset int) ([]model.PaymentLink, error) {
	var links []model.PaymentLink
	err := s.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).Offset(offset).
		Find(&links).Error
	if err != nil {
		return nil, errno.ErrDatabase.WithMessage(err.Error())
	}
	return links, nil
}

// RecordDeposit 记录入金
// 以 deposit_ref IS NULL 为条件的单次条件写保证凭证和金额只能落一次,
// 重复投递同一凭证时直接幂等返回。
func (s *SQLLinkStore) RecordDeposit(ctx context.Context, id, depositRef string, grossAmount int64) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. 条件写: 只有尚未记录入金的链接会被更新
		res := tx.Model(&model.PaymentLink{}).
			Where("id = ? AND deposit_ref IS NULL", id).
			Updates(map[string]interface{}{
				"deposit_ref":  depositRef,
				"gross_amount": grossAmount,
				"status":       model.LinkStatusDeposited,
				"updated_at":   time.Now(),
			})
		if res.Error != nil {
			return errno.ErrDatabase.WithMessage(res.Error.Error())
		}

		// 2. 没有命中: 要么链接不存在, 要么已记录过入金
		if res.RowsAffected == 0 {
			var link model.PaymentLink
			if err := tx.First(&link, "id = ?", id).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return errno.ErrLinkNotFound
				}
				return errno.ErrDatabase.WithMessage(err.Error())
			}
			if link.DepositRef != nil && *link.DepositRef == depositRef {
				return nil // 同一凭证重试, 幂等
			}
			return errno.ErrDepositConflict
		}

		// 3. 追加 deposit 流水 + Outbox 事件 (与链接更新同事务)
		entry := &model.LedgerEntry{
			ID:          newLedgerID(),
			LinkID:      id,
			Kind:        model.LedgerKindDeposit,
			Status:      model.LedgerStatusConfirmed,
			Amount:      grossAmount,
			ExternalRef: depositRef,
			CreatedAt:   time.Now(),
		}
		if err := tx.Create(entry).Error; err != nil {
			return errno.ErrDatabase.WithMessage(err.Error())
		}

		var link model.PaymentLink
		if err := tx.First(&link, "id = ?", id).Error; err != nil {
			return errno.ErrDatabase.WithMessage(err.Error())
		}
		return model.CreateOutboxMessage(tx, event.TopicLinkDeposited, event.LinkDepositedEvent{
			LinkID:     id,
			DepositRef: depositRef,
			Amount:     grossAmount,
			Asset:      link.AssetType,
		})
	})
}

// ConditionalClaim 并发领取仲裁点
// 条件更新而非读-改-写: N 个并发请求中恰好一个能影响到这一行。
func (s *SQLLinkStore) ConditionalClaim(ctx context.Context, id, recipient string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&model.PaymentLink{}).
		Where("id = ? AND claimed = ? AND status = ?", id, false, model.LinkStatusDeposited).
		Updates(map[string]interface{}{
			"claimed":    true,
			"claimed_by": recipient,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, errno.ErrDatabase.WithMessage(res.Error.Error())
	}
	return res.RowsAffected == 1, nil
}

// FinalizeWithdrawal 网关成功后的第二次更新
// claimed 锁已排除并发写者, 这里不再需要条件守卫,
// 但 withdraw_ref、账本条目和 Outbox 事件必须同事务落库。
func (s *SQLLinkStore) FinalizeWithdrawal(ctx context.Context, id, withdrawRef string, entry *model.LedgerEntry) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&model.PaymentLink{}).
			Where("id = ?", id).
			Updates(map[string]interface{}{
				"withdraw_ref": withdrawRef,
				"status":       model.LinkStatusClaimed,
				"updated_at":   time.Now(),
			})
		if res.Error != nil {
			return errno.ErrDatabase.WithMessage(res.Error.Error())
		}
		if res.RowsAffected == 0 {
			return errno.ErrLinkNotFound
		}

		if err := tx.Create(entry).Error; err != nil {
			return errno.ErrDatabase.WithMessage(err.Error())
		}

		var link model.PaymentLink
		if err := tx.First(&link, "id = ?", id).Error; err != nil {
			return errno.ErrDatabase.WithMessage(err.Error())
		}
		claimedBy := ""
		if link.ClaimedBy != nil {
			claimedBy = *link.ClaimedBy
		}
		return model.CreateOutboxMessage(tx, event.TopicLinkClaimed, event.LinkClaimedEvent{
			LinkID:      id,
			Recipient:   claimedBy,
			WithdrawRef: withdrawRef,
			GrossAmount: link.GrossAmount,
			NetAmount:   entry.Amount,
			Asset:       link.AssetType,
		})
	})
}

// RollbackClaim 补偿回滚
// withdraw_ref IS NULL 是防御性二次检查: 一旦提现凭证已写入, 绝不能把
// claimed 翻回去 (那等于允许双花)。
func (s *SQLLinkStore) RollbackClaim(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&model.PaymentLink{}).
		Where("id = ? AND claimed = ? AND withdraw_ref IS NULL", id, true).
		Updates(map[string]interface{}{
			"claimed":    false,
			"claimed_by": nil,
			"status":     model.LinkStatusDeposited,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, errno.ErrDatabase.WithMessage(res.Error.Error())
	}
	return res.RowsAffected == 1, nil
}

func (s *SQLLinkStore) MarkReconciliation(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Model(&model.PaymentLink{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":     model.LinkStatusClaimFailed,
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return errno.ErrDatabase.WithMessage(res.Error.Error())
	}
	return nil
}

func (s *SQLLinkStore) AppendLedgerEntry(ctx context.Context, entry *model.LedgerEntry) error {
	if err := s.db.WithContext(ctx).Create(entry).Error; err != nil {
		return errno.ErrDatabase.WithMessage(err.Error())
	}
	return nil
}

func (s *SQLLinkStore) ListLedgerEntries(ctx context.Context, linkID string) ([]model.LedgerEntry, error) {
	var entries []model.LedgerEntry
	err := s.db.WithContext(ctx).
		Where("link_id = ?", linkID).
		Order("created_at ASC").
		Find(&entries).Error
	if err != nil {
		return nil, errno.ErrDatabase.WithMessage(err.Error())
	}
	return entries, nil
}

func (s *SQLLinkStore) ListReconciliation(ctx context.Context) ([]model.PaymentLink, error) {
	var links []model.PaymentLink
	err := s.db.WithContext(ctx).
		Where("status = ?", model.LinkStatusClaimFailed).
		Order("updated_at ASC").
		Find(&links).Error
	if err != nil {
		return nil, errno.ErrDatabase.WithMessage(err.Error())
	}
	return links, nil
}
