package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// RelayerClient 通过 HTTP 调用外部中继服务 (非托管提现 SDK 的 sidecar)
// 中继方用自己的密钥代替接收方提交提现交易, 但不托管接收方资金。
type RelayerClient struct {
	baseURL string
	client  *http.Client
}

// relayerWithdrawRequest / relayerWithdrawResponse 对应中继服务的 JSON 协议
type relayerWithdrawRequest struct {
	Amount    int64  `json:"amount"`
	Recipient string `json:"recipient"`
	Asset     string `json:"asset"`
}

type relayerWithdrawResponse struct {
	TxRef     string `json:"tx_ref"`
	NetAmount int64  `json:"net_amount"`
	Fee       int64  `json:"fee"`
	IsPartial bool   `json:"is_partial"`
}

type relayerErrorResponse struct {
	Code    string `json:"code"` // insufficient_pool_balance, invalid_recipient, ...
	Message string `json:"message"`
}

func NewRelayerClient(baseURL string, timeout time.Duration) *RelayerClient {
	return &RelayerClient{
		baseURL: baseURL,
		client: &http.Client{
			// 提现包含证明生成和上链确认, 实际耗时数十秒
			Timeout: timeout,
		},
	}
}

// Withdraw 发起屏蔽池提现
// 任何错误 (池余额不足 / 地址无效 / 网络超时) 对编排器都是非致命的,
// 统一按网关失败处理并触发回滚。
func (c *RelayerClient) Withdraw(ctx context.Context, req *WithdrawRequest) (*WithdrawResult, error) {
	body, err := json.Marshal(relayerWithdrawRequest{
		Amount:    req.Amount,
		Recipient: req.Recipient,
		Asset:     req.Asset,
	})
	if err != nil {
		return nil, err
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/v1/withdraw", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("relayer request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("relayer response read failed: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var relayerErr relayerErrorResponse
		if err := json.Unmarshal(raw, &relayerErr); err == nil && relayerErr.Code != "" {
			return nil, fmt.Errorf("relayer error %s: %s", relayerErr.Code, relayerErr.Message)
		}
		return nil, fmt.Errorf("relayer returned status %d", resp.StatusCode)
	}

	var result relayerWithdrawResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("relayer response decode failed: %w", err)
	}
	if result.TxRef == "" {
		return nil, fmt.Errorf("relayer returned empty tx_ref")
	}

	return &WithdrawResult{
		TxRef:     result.TxRef,
		NetAmount: result.NetAmount,
		Fee:       result.Fee,
		IsPartial: result.IsPartial,
	}, nil
}
