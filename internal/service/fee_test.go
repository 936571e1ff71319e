package service

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"paylink-core/pkg/errno"
)

func TestComputeFee(t *testing.T) {
	calc := NewFeeCalculator(6_000_000, decimal.RequireFromString("0.0035"))

	tests := []struct {
		name      string
		gross     int64
		wantFee   int64
		wantNet   int64
		wantErr   error
	}{
		{"One SOL", 1_000_000_000, 9_500_000, 990_500_000, nil},
		{"Small but sufficient", 10_000_000, 6_035_000, 3_965_000, nil},
		// 比例费向上取整: 1 lamport * 0.0035 -> ceil -> 1
		{"Ceil on fraction", 1, 6_000_001, 0, errno.ErrAmountTooLow},
		{"Exactly the fee", 6_021_074, 6_021_074, 0, errno.ErrAmountTooLow},
		{"Zero amount", 0, 6_000_000, 0, errno.ErrAmountTooLow},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fee, net, err := calc.ComputeFee(tt.gross)
			assert.Equal(t, tt.wantFee, fee)
			assert.Equal(t, tt.wantNet, net, "净额不足时按零返回")
			if tt.wantErr != nil {
				assert.True(t, errors.Is(err, tt.wantErr))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
