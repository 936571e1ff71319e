package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"paylink-core/internal/store"
	"paylink-core/pkg/logger"
	"paylink-core/pkg/monitor"
	"paylink-core/pkg/utils/lock"
)

// ReconcileService 对账巡检
// 周期性捞出冻结在 claim_failed 的链接, 打日志并导出指标, 供运维介入。
// 注意: 这里不会向网关查询历史提现尝试 —— 网关超时但实际成功的竞态
// 目前没有自动化解法 (网关协议缺少幂等键), 只能靠人工核对凭证。
type ReconcileService struct {
	cron  *cron.Cron
	store store.LinkStore
	redis *redis.Client
}

func NewReconcileService(linkStore store.LinkStore, rdb *redis.Client) *ReconcileService {
	return &ReconcileService{
		cron:  cron.New(),
		store: linkStore,
		redis: rdb,
	}
}

func (s *ReconcileService) Start() {
	_, _ = s.cron.AddFunc("@every 5m", s.SweepReconciliation)

	s.cron.Start()
	logger.Info("Reconcile Service started")
}

func (s *ReconcileService) Stop() {
	s.cron.Stop()
	logger.Info("Reconcile Service stopped")
}

// SweepReconciliation 巡检一次
func (s *ReconcileService) SweepReconciliation() {
	ctx := context.Background()
	lockKey := "cron:lock:reconcile_sweep"

	// 1. 分布式锁, 防止多实例同时巡检
	locker := lock.NewRedisLock(s.redis)
	locked, err := locker.Acquire(ctx, lockKey, 1*time.Minute)
	if err != nil || !locked {
		logger.Debug("SweepReconciliation: 获取锁失败或已有实例在运行")
		return
	}
	defer locker.Release(ctx, lockKey)

	// 2. 捞出所有冻结链接
	links, err := s.store.ListReconciliation(ctx)
	if err != nil {
		logger.Error("对账巡检查询失败", zap.Error(err))
		return
	}

	monitor.Business.ReconciliationPending.Set(float64(len(links)))
	if len(links) == 0 {
		return
	}

	for _, link := range links {
		withdrawRef := ""
		if link.WithdrawRef != nil {
			withdrawRef = *link.WithdrawRef
		}
		logger.Warn("链接等待人工对账",
			zap.String("link_id", link.ID),
			zap.Int64("gross_amount", link.GrossAmount),
			zap.String("withdraw_ref", withdrawRef),
			zap.Time("frozen_at", link.UpdatedAt))
	}
	logger.Warn("对账巡检完成", zap.Int("pending", len(links)))
}
