package gateway

import "context"

// WithdrawRequest 提现请求
// Amount 为最小单位 (lamports) 的毛额, 手续费由网关侧扣除。
type WithdrawRequest struct {
	Amount    int64  // lamports
	Recipient string // 接收方地址
	Asset     string // 资产符号 (SOL)
}

// WithdrawResult 网关返回的提现结果
// 网关对实际转移的金额有最终话语权, 本地费率计算只用于预估展示。
type WithdrawResult struct {
	TxRef     string // 提现交易凭证
	NetAmount int64  // 实际到账净额
	Fee       int64  // 实际收取的手续费
	IsPartial bool   // 池内余额不足时部分兑付 (业务结果, 不是错误)
}

// Gateway 提现网关接口 (外部协作方)
// 证明生成、Merkle 成员证明、UTXO 加密全部在网关侧完成, 这里只是调用方。
// 调用可能耗时数十秒; 超时视为失败, 由编排器走回滚路径。
type Gateway interface {
	Withdraw(ctx context.Context, req *WithdrawRequest) (*WithdrawResult, error)
}
