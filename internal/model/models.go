package model

import (
	"time"

	"gorm.io/gorm"
)

// 链接生命周期: created -> deposited -> claimed | claim_failed
// claim_failed 为终态, 表示回滚失败或资金去向不明, 需要人工对账。
const (
	LinkStatusCreated     = "created"
	LinkStatusDeposited   = "deposited"
	LinkStatusClaimed     = "claimed"
	LinkStatusClaimFailed = "claim_failed"
)

// 账本条目类型与状态
const (
	LedgerKindDeposit  = "deposit"
	LedgerKindWithdraw = "withdraw"

	LedgerStatusPending   = "pending"
	LedgerStatusConfirmed = "confirmed"
	LedgerStatusFailed    = "failed"
)

// PaymentLink 支付链接表
// 核心设计: Claimed 标志只能通过条件更新 (WHERE claimed = false) 置位,
// 这是并发领取仲裁的唯一依据, 金额一律使用最小单位 (lamports) 整数。
type PaymentLink struct {
	ID          string         `gorm:"type:varchar(64);primaryKey" json:"id"`
	GrossAmount int64          `gorm:"not null;default:0" json:"gross_amount"` // lamports, 入金确认后不可变
	AssetType   string         `gorm:"type:varchar(10);not null;default:'SOL'" json:"asset_type"`
	Status      string         `gorm:"type:varchar(20);not null;default:'created';index" json:"status"`
	DepositRef  *string        `gorm:"type:varchar(128);uniqueIndex" json:"deposit_ref,omitempty"` // 屏蔽池入金凭证, 记录后不可变
	Claimed     bool           `gorm:"not null;default:false" json:"claimed"`
	ClaimedBy   *string        `gorm:"type:varchar(64)" json:"claimed_by,omitempty"`
	WithdrawRef *string        `gorm:"type:varchar(128)" json:"withdraw_ref,omitempty"` // 提现网关返回的交易凭证
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

// LedgerEntry 资金流水表 (append-only)
// 失败的提现尝试也会记录, 用于审计和重试排查, 从不删除。
type LedgerEntry struct {
	ID                  string    `gorm:"type:varchar(64);primaryKey" json:"id"`
	LinkID              string    `gorm:"type:varchar(64);not null;index" json:"link_id"`
	Kind                string    `gorm:"type:varchar(16);not null" json:"kind"`   // deposit, withdraw
	Status              string    `gorm:"type:varchar(16);not null" json:"status"` // pending, confirmed, failed
	Amount              int64     `gorm:"not null" json:"amount"`                  // lamports
	CounterpartyAddress string    `gorm:"type:varchar(64)" json:"counterparty_address"`
	ExternalRef         string    `gorm:"type:varchar(128)" json:"external_ref"`
	CreatedAt           time.Time `json:"created_at"`
}

// OutboxMessage 本地消息表 (Transactional Outbox)
type OutboxMessage struct {
	ID        uint64         `gorm:"primaryKey;autoIncrement" json:"id"`
	Topic     string         `gorm:"type:varchar(255);not null" json:"topic"`
	Payload   []byte         `gorm:"type:text;not null" json:"payload"`
	Status    string         `gorm:"type:varchar(50);not null;default:'PENDING';index" json:"status"` // PENDING, SENT, FAILED
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`
}

// TableName 指定表名
func (PaymentLink) TableName() string {
	return "payment_links"
}

func (LedgerEntry) TableName() string {
	return "ledger_entries"
}

func (OutboxMessage) TableName() string {
	return "outbox_messages"
}
