package service

import (
	"github.com/shopspring/decimal"

	"paylink-core/pkg/errno"
)

// FeeCalculator 提现手续费计算 (纯函数, 无状态)
// fee = baseFee + ceil(gross * rate)
// 仅用于领取前的预估展示和 AmountTooLow 前置校验;
// 实际扣费以提现网关返回为准。
type FeeCalculator struct {
	baseFee int64           // lamports
	rate    decimal.Decimal // 协议费率, 例如 0.0035
}

func NewFeeCalculator(baseFee int64, rate decimal.Decimal) *FeeCalculator {
	return &FeeCalculator{baseFee: baseFee, rate: rate}
}

// ComputeFee 计算手续费和净额
// 金额一律是最小单位整数, 费率乘法用 decimal 避免浮点误差。
// netAmount <= 0 时返回 ErrAmountTooLow (净额按零返回), 调用方必须在
// 发起任何外部调用之前检查。
func (f *FeeCalculator) ComputeFee(grossAmount int64) (fee int64, netAmount int64, err error) {
	variable := decimal.NewFromInt(grossAmount).Mul(f.rate).Ceil().IntPart()
	fee = f.baseFee + variable
	netAmount = grossAmount - fee
	if netAmount <= 0 {
		return fee, 0, errno.ErrAmountTooLow
	}
	return fee, netAmount, nil
}
