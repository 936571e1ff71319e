package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	"paylink-core/internal/model"
	"paylink-core/internal/store"
	"paylink-core/pkg/cache"
	"paylink-core/pkg/errno"
	"paylink-core/pkg/logger"
	"paylink-core/pkg/monitor"
	"paylink-core/pkg/safe_random"
)

// 链接状态读缓存: TTL 很短, 只为挡住分享链接被刷新的读放大,
// 所有写路径都会主动失效。
const linkCacheTTL = 3 * time.Second

func linkCacheKey(id string) string {
	return "paylink:link:" + id
}

// LinkService 支付链接的创建 / 入金 / 查询
type LinkService struct {
	store store.LinkStore
	fees  *FeeCalculator
	cache cache.Cache
}

func NewLinkService(linkStore store.LinkStore, fees *FeeCalculator, c cache.Cache) *LinkService {
	return &LinkService{store: linkStore, fees: fees, cache: c}
}

// CreateLink 创建链接元数据, 状态 created
// ID 用 16 字节安全随机数的 Hex 编码, 链接本身就是领取凭证, 必须不可猜测。
// grossAmount 此时只是期望金额, 入金确认时以链上实际金额为准。
func (s *LinkService) CreateLink(ctx context.Context, grossAmount int64, assetType string) (*model.PaymentLink, error) {
	id, err := safe_random.GenerateRandomHexString(16)
	if err != nil {
		return nil, errno.InternalServerError.WithMessage(err.Error())
	}

	if assetType == "" {
		assetType = "SOL"
	}

	link := &model.PaymentLink{
		ID:          id,
		GrossAmount: grossAmount,
		AssetType:   assetType,
		Status:      model.LinkStatusCreated,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
	if err := s.store.CreateLink(ctx, link); err != nil {
		return nil, err
	}

	monitor.Business.LinkCreatedTotal.Inc()
	logger.Info("创建支付链接",
		zap.String("link_id", link.ID),
		zap.Int64("gross_amount", grossAmount),
		zap.String("asset", assetType))
	return link, nil
}

// RecordDeposit 记录外部已确认的屏蔽池入金
// 幂等语义由存储层保证: 同一凭证重试为 no-op, 不同凭证返回冲突。
func (s *LinkService) RecordDeposit(ctx context.Context, linkID, depositRef string, grossAmount int64) error {
	if err := s.store.RecordDeposit(ctx, linkID, depositRef, grossAmount); err != nil {
		return err
	}
	s.invalidate(ctx, linkID)

	link, err := s.store.GetLink(ctx, linkID)
	if err == nil {
		monitor.Business.DepositAmountTotal.WithLabelValues(link.AssetType).Add(float64(grossAmount))
	}
	logger.Info("入金已记录",
		zap.String("link_id", linkID),
		zap.String("deposit_ref", depositRef),
		zap.Int64("amount", grossAmount))
	return nil
}

// GetLink 查询链接状态 (读穿缓存)
func (s *LinkService) GetLink(ctx context.Context, linkID string) (*model.PaymentLink, error) {
	if s.cache != nil {
		var cached model.PaymentLink
		if err := s.cache.Get(ctx, linkCacheKey(linkID), &cached); err == nil {
			return &cached, nil
		}
	}

	link, err := s.store.GetLink(ctx, linkID)
	if err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, linkCacheKey(linkID), link, linkCacheTTL); err != nil {
			logger.Debug("缓存写入失败", zap.String("link_id", linkID), zap.Error(err))
		}
	}
	return link, nil
}

// PreviewFee 领取前的费用预估 (展示用, 实际扣费以网关为准)
func (s *LinkService) PreviewFee(ctx context.Context, linkID string) (fee int64, netAmount int64, err error) {
	link, err := s.GetLink(ctx, linkID)
	if err != nil {
		return 0, 0, err
	}
	return s.fees.ComputeFee(link.GrossAmount)
}

// ListLinks 按创建时间倒序分页
func (s *LinkService) ListLinks(ctx context.Context, limit, offset int) ([]model.PaymentLink, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	if offset < 0 {
		offset = 0
	}
	return s.store.ListLinks(ctx, limit, offset)
}

// ListLedgerEntries 查询链接的资金流水
func (s *LinkService) ListLedgerEntries(ctx context.Context, linkID string) ([]model.LedgerEntry, error) {
	return s.store.ListLedgerEntries(ctx, linkID)
}

// ListReconciliation 返回等待人工对账的链接
func (s *LinkService) ListReconciliation(ctx context.Context) ([]model.PaymentLink, error) {
	return s.store.ListReconciliation(ctx)
}

func (s *LinkService) invalidate(ctx context.Context, linkID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, linkCacheKey(linkID)); err != nil {
		logger.Debug("缓存失效失败", zap.String("link_id", linkID), zap.Error(err))
	}
}
