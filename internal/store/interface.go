package store

import (
	"context"

	"paylink-core/internal/model"
)

// LinkStore 支付链接仓储接口
// 所有协调状态都存在仓储里, 编排器本身无状态, 因此多实例部署下依然正确。
// 实现要求: 单个方法内的多字段更新必须是事务性的 (全部成功或全部失败),
// ConditionalClaim / RollbackClaim 必须是存储层的条件写 (而不是读-改-写)。
type LinkStore interface {
	// CreateLink 创建链接, 初始状态 created
	CreateLink(ctx context.Context, link *model.PaymentLink) error

	// GetLink 按 ID 读取链接
	GetLink(ctx context.Context, id string) (*model.PaymentLink, error)

	// ListLinks 按创建时间倒序分页
	ListLinks(ctx context.Context, limit, offset int) ([]model.PaymentLink, error)

	// RecordDeposit 记录入金凭证并确认金额, 链接转入 deposited 状态。
	// 幂等: 相同凭证重复调用是 no-op; 不同凭证返回 ErrDepositConflict。
	RecordDeposit(ctx context.Context, id, depositRef string, grossAmount int64) error

	// ConditionalClaim 原子领取锁:
	// UPDATE payment_links SET claimed=true, claimed_by=?
	// WHERE id=? AND claimed=false AND status='deposited'
	// 返回 true 当且仅当本次调用赢得了锁 (恰好影响一行)。
	ConditionalClaim(ctx context.Context, id, recipient string) (bool, error)

	// FinalizeWithdrawal 网关成功后落账: 写入 withdraw_ref、状态 claimed,
	// 同一事务内追加 confirmed 账本条目和 Outbox 事件。
	FinalizeWithdrawal(ctx context.Context, id, withdrawRef string, entry *model.LedgerEntry) error

	// RollbackClaim 补偿回滚: 重置 claimed/claimed_by,
	// 以 withdraw_ref IS NULL 为条件做二次防御。
	// 返回 false (无 error) 表示条件不满足, 必须转人工对账。
	RollbackClaim(ctx context.Context, id string) (bool, error)

	// MarkReconciliation 将链接冻结为 claim_failed 终态
	MarkReconciliation(ctx context.Context, id string) error

	// AppendLedgerEntry 追加一条账本流水 (append-only)
	AppendLedgerEntry(ctx context.Context, entry *model.LedgerEntry) error

	// ListLedgerEntries 返回链接的全部流水, 按时间正序
	ListLedgerEntries(ctx context.Context, linkID string) ([]model.LedgerEntry, error)

	// ListReconciliation 返回所有待人工对账的链接
	ListReconciliation(ctx context.Context) ([]model.PaymentLink, error)
}
