package event

// MQ 主题
const (
	// TopicDepositConfirmed 外部入金确认流 (链上观察者) 发布, 本服务消费
	TopicDepositConfirmed = "paylink_deposit_confirmed"

	// TopicLinkDeposited / TopicLinkClaimed 由 Outbox Relay 对外发布
	TopicLinkDeposited = "paylink_events_deposited"
	TopicLinkClaimed   = "paylink_events_claimed"
)

// DepositConfirmedEvent 链上观察者确认屏蔽池入金后发布的事件
// Topic: paylink_deposit_confirmed
type DepositConfirmedEvent struct {
	LinkID     string `json:"link_id"`
	DepositRef string `json:"deposit_ref"`
	Amount     int64  `json:"amount"` // lamports
	Asset      string `json:"asset"`
}

// LinkDepositedEvent 入金已记录事件 (Outbox)
// Topic: paylink_events_deposited
type LinkDepositedEvent struct {
	LinkID     string `json:"link_id"`
	DepositRef string `json:"deposit_ref"`
	Amount     int64  `json:"amount"`
	Asset      string `json:"asset"`
}

// LinkClaimedEvent 链接领取完成事件 (Outbox)
// Topic: paylink_events_claimed
// 部分兑付时 NetAmount 会低于 GrossAmount 减去手续费, 差额由消费方自行判断
type LinkClaimedEvent struct {
	LinkID      string `json:"link_id"`
	Recipient   string `json:"recipient"`
	WithdrawRef string `json:"withdraw_ref"`
	GrossAmount int64  `json:"gross_amount"`
	NetAmount   int64  `json:"net_amount"`
	Asset       string `json:"asset"`
}
