package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"paylink-core/internal/model"
	"paylink-core/internal/service/gateway"
	"paylink-core/internal/store"
	"paylink-core/pkg/address"
	"paylink-core/pkg/cache"
	"paylink-core/pkg/errno"
	"paylink-core/pkg/logger"
	"paylink-core/pkg/monitor"
)

// ClaimResult 领取成功的返回值
type ClaimResult struct {
	WithdrawRef string `json:"withdraw_ref"`
	NetAmount   int64  `json:"net_amount"`
	Fee         int64  `json:"fee"`
	IsPartial   bool   `json:"is_partial"`
}

// ClaimService 领取编排器
// 自身无状态, 全部协调状态在 LinkStore 里, 多实例部署下依然满足
// "恰好一次领取"。进程内互斥锁在这里不起作用, 仲裁只能靠存储层条件写。
type ClaimService struct {
	store store.LinkStore
	gw    gateway.Gateway
	fees  *FeeCalculator
	cache cache.Cache
}

func NewClaimService(linkStore store.LinkStore, gw gateway.Gateway, fees *FeeCalculator, c cache.Cache) *ClaimService {
	return &ClaimService{
		store: linkStore,
		gw:    gw,
		fees:  fees,
		cache: c,
	}
}

// ClaimLink 把链接绑定到接收方并触发屏蔽池提现
//
// 协议 (顺序不可变):
//  1. 原子领取锁 (存储层条件写), 失败立即返回已领取冲突
//  2. 调用提现网关 (唯一的长耗时操作, 不持有任何存储层锁)
//  3. 网关成功: withdraw_ref + confirmed 流水同事务落库
//  4. 网关失败: 记 failed 流水, 补偿回滚; 回滚失败则冻结转人工对账
//  5. 部分兑付按成功处理, is_partial 透传给调用方
func (s *ClaimService) ClaimLink(ctx context.Context, linkID, recipient string) (*ClaimResult, error) {
	// ---- 前置校验 (不产生任何状态变更) ----
	if !address.IsValidSolanaAddress(recipient) {
		return nil, errno.ErrInvalidRecipient
	}

	link, err := s.store.GetLink(ctx, linkID)
	if err != nil {
		return nil, err
	}
	if link.Claimed {
		// 快速失败; 权威仲裁仍然是下面的条件写
		return nil, errno.ErrAlreadyClaimed
	}
	if link.DepositRef == nil || link.Status != model.LinkStatusDeposited {
		return nil, errno.ErrLinkNotDeposited
	}

	// 费用前置校验: 金额盖不住手续费时绝不能发起外部调用
	if _, _, err := s.fees.ComputeFee(link.GrossAmount); err != nil {
		return nil, err
	}

	// ---- 1. 原子领取锁 ----
	// UPDATE ... WHERE claimed = false; 并发领取中恰好一个调用者胜出
	won, err := s.store.ConditionalClaim(ctx, linkID, recipient)
	if err != nil {
		return nil, err
	}
	if !won {
		monitor.Business.ClaimConflictTotal.Inc()
		return nil, errno.ErrAlreadyClaimed
	}
	s.invalidate(ctx, linkID)

	// ---- 2. 提现网关调用 ----
	// 调用方断开连接不应中断在途提现 (否则可能付了钱却没有落账),
	// 因此网关上下文不继承调用方的 cancel, 只保留超时。
	// 超时视为失败走回滚; 网关实际成功而本地超时的竞态是已知的幂等缺口,
	// 由人工对账兜底 (见 ReconcileService)。
	gwCtx := context.WithoutCancel(ctx)

	start := time.Now()
	result, gwErr := s.gw.Withdraw(gwCtx, &gateway.WithdrawRequest{
		Amount:    link.GrossAmount,
		Recipient: recipient,
		Asset:     link.AssetType,
	})
	elapsed := time.Since(start).Seconds()
	if gwErr != nil {
		monitor.Business.GatewayWithdrawDuration.WithLabelValues("failure").Observe(elapsed)
		return nil, s.rollback(gwCtx, link, recipient, gwErr)
	}
	monitor.Business.GatewayWithdrawDuration.WithLabelValues("success").Observe(elapsed)

	// ---- 3. 落账 ----
	entry := &model.LedgerEntry{
		ID:                  uuid.New().String(),
		LinkID:              linkID,
		Kind:                model.LedgerKindWithdraw,
		Status:              model.LedgerStatusConfirmed,
		Amount:              result.NetAmount,
		CounterpartyAddress: recipient,
		ExternalRef:         result.TxRef,
		CreatedAt:           time.Now(),
	}
	if err := s.store.FinalizeWithdrawal(gwCtx, linkID, result.TxRef, entry); err != nil {
		// 资金已经转移但本地落账失败: 不能回滚 (回滚等于允许双花),
		// 冻结链接转人工对账, 绝不吞掉这个失败。
		logger.Error("落账失败, 链接转入人工对账",
			zap.String("link_id", linkID),
			zap.String("tx_ref", result.TxRef),
			zap.Error(err))
		s.freeze(gwCtx, linkID)
		return nil, errno.ErrReconcileRequired
	}
	s.invalidate(gwCtx, linkID)

	monitor.Business.ClaimSuccessTotal.WithLabelValues(link.AssetType).Inc()
	if result.IsPartial {
		// 池内余额不足导致的部分兑付是业务结果, 不是错误
		monitor.Business.ClaimPartialTotal.WithLabelValues(link.AssetType).Inc()
		logger.Warn("部分兑付",
			zap.String("link_id", linkID),
			zap.Int64("requested", link.GrossAmount),
			zap.Int64("delivered", result.NetAmount))
	}

	return &ClaimResult{
		WithdrawRef: result.TxRef,
		NetAmount:   result.NetAmount,
		Fee:         result.Fee,
		IsPartial:   result.IsPartial,
	}, nil
}

// rollback 网关失败后的补偿路径
// 先记 failed 流水 (审计用, 追加失败不阻断回滚), 再条件回滚领取锁。
// 回滚成功 -> 返回可重试的网关错误, 链接恢复可领取;
// 回滚失败 -> 冻结链接, 返回终态错误, 等待人工对账。
func (s *ClaimService) rollback(ctx context.Context, link *model.PaymentLink, recipient string, cause error) error {
	logger.Warn("提现网关调用失败, 尝试补偿回滚",
		zap.String("link_id", link.ID),
		zap.Error(cause))

	failedEntry := &model.LedgerEntry{
		ID:                  uuid.New().String(),
		LinkID:              link.ID,
		Kind:                model.LedgerKindWithdraw,
		Status:              model.LedgerStatusFailed,
		Amount:              link.GrossAmount,
		CounterpartyAddress: recipient,
		CreatedAt:           time.Now(),
	}
	if err := s.store.AppendLedgerEntry(ctx, failedEntry); err != nil {
		logger.Error("failed 流水写入失败", zap.String("link_id", link.ID), zap.Error(err))
	}

	ok, err := s.store.RollbackClaim(ctx, link.ID)
	if err != nil || !ok {
		// 存储不可用, 或 withdraw_ref 已非空 (防御检查命中):
		// 链接保持锁定, 冻结转人工对账, 绝不静默丢弃
		logger.Error("补偿回滚失败, 链接转入人工对账",
			zap.String("link_id", link.ID),
			zap.Bool("condition_met", ok),
			zap.Error(err))
		s.freeze(ctx, link.ID)
		return errno.ErrReconcileRequired
	}

	s.invalidate(ctx, link.ID)
	monitor.Business.ClaimRollbackTotal.Inc()
	return errno.ErrGateway.WithMessage("Withdrawal gateway failure, claim rolled back, please retry: " + cause.Error())
}

// freeze 尽力把链接标记为 claim_failed; 标记本身失败时只能记日志,
// 对账任务会把长时间 claimed 且无 withdraw_ref 的链接一并捞出来。
func (s *ClaimService) freeze(ctx context.Context, linkID string) {
	if err := s.store.MarkReconciliation(ctx, linkID); err != nil {
		logger.Error("冻结链接失败", zap.String("link_id", linkID), zap.Error(err))
	}
	s.invalidate(ctx, linkID)
}

func (s *ClaimService) invalidate(ctx context.Context, linkID string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, linkCacheKey(linkID)); err != nil {
		logger.Debug("缓存失效失败", zap.String("link_id", linkID), zap.Error(err))
	}
}
