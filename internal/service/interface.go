package service

import (
	"context"

	"paylink-core/internal/model"
)

// ClaimOrchestrator 领取编排接口 (Handler 依赖它而不是具体实现)
type ClaimOrchestrator interface {
	// ClaimLink 把链接绑定到接收方并触发提现, 恰好成功一次
	ClaimLink(ctx context.Context, linkID, recipient string) (*ClaimResult, error)
}

// LinkManager 链接生命周期接口
type LinkManager interface {
	CreateLink(ctx context.Context, grossAmount int64, assetType string) (*model.PaymentLink, error)
	RecordDeposit(ctx context.Context, linkID, depositRef string, grossAmount int64) error
	GetLink(ctx context.Context, linkID string) (*model.PaymentLink, error)
	PreviewFee(ctx context.Context, linkID string) (fee int64, netAmount int64, err error)
	ListLinks(ctx context.Context, limit, offset int) ([]model.PaymentLink, error)
	ListLedgerEntries(ctx context.Context, linkID string) ([]model.LedgerEntry, error)
	ListReconciliation(ctx context.Context) ([]model.PaymentLink, error)
}
