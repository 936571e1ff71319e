package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paylink-core/internal/model"
	"paylink-core/internal/service"
	"paylink-core/pkg/errno"
)

// fakeLinkManager / fakeClaimer 可编程桩, 只验证 HTTP 层的映射
type fakeLinkManager struct {
	link    *model.PaymentLink
	entries []model.LedgerEntry
	err     error
}

func (f *fakeLinkManager) CreateLink(ctx context.Context, grossAmount int64, assetType string) (*model.PaymentLink, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.link, nil
}

func (f *fakeLinkManager) RecordDeposit(ctx context.Context, linkID, depositRef string, grossAmount int64) error {
	return f.err
}

func (f *fakeLinkManager) GetLink(ctx context.Context, linkID string) (*model.PaymentLink, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.link, nil
}

func (f *fakeLinkManager) PreviewFee(ctx context.Context, linkID string) (int64, int64, error) {
	return 9_500_000, 990_500_000, nil
}

func (f *fakeLinkManager) ListLinks(ctx context.Context, limit, offset int) ([]model.PaymentLink, error) {
	if f.link == nil {
		return nil, f.err
	}
	return []model.PaymentLink{*f.link}, f.err
}

func (f *fakeLinkManager) ListLedgerEntries(ctx context.Context, linkID string) ([]model.LedgerEntry, error) {
	return f.entries, f.err
}

func (f *fakeLinkManager) ListReconciliation(ctx context.Context) ([]model.PaymentLink, error) {
	return nil, f.err
}

type fakeClaimer struct {
	result *service.ClaimResult
	err    error
}

func (f *fakeClaimer) ClaimLink(ctx context.Context, linkID, recipient string) (*service.ClaimResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.result, nil
}

func newTestRouter(links *fakeLinkManager, claims *fakeClaimer) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewLinkHandler(links, claims)
	r := gin.New()
	v1 := r.Group("/api/v1")
	{
		v1.POST("/links", h.CreateLink)
		v1.GET("/links/:id", h.GetLink)
		v1.POST("/links/:id/deposit", h.RecordDeposit)
		v1.POST("/links/:id/claim", h.ClaimLink)
	}
	return r
}

func doJSON(t *testing.T, r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestCreateLinkHandler(t *testing.T) {
	links := &fakeLinkManager{link: &model.PaymentLink{ID: "abc123", Status: model.LinkStatusCreated}}
	r := newTestRouter(links, &fakeClaimer{})

	w := doJSON(t, r, http.MethodPost, "/api/v1/links", gin.H{"gross_amount": 1_000_000_000})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Code int `json:"code"`
		Data struct {
			LinkID string `json:"link_id"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, errno.OK.Code, resp.Code)
	assert.Equal(t, "abc123", resp.Data.LinkID)
}

func TestCreateLinkHandlerBadBody(t *testing.T) {
	r := newTestRouter(&fakeLinkManager{}, &fakeClaimer{})

	// 金额缺失
	w := doJSON(t, r, http.MethodPost, "/api/v1/links", gin.H{})
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 不支持的资产
	w = doJSON(t, r, http.MethodPost, "/api/v1/links", gin.H{"gross_amount": 100, "asset_type": "DOGE"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

// errno 到 HTTP 状态码的映射是对外契约
func TestClaimLinkHandlerStatusMapping(t *testing.T) {
	cases := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{"already claimed", errno.ErrAlreadyClaimed, http.StatusConflict, errno.ErrAlreadyClaimed.Code},
		{"gateway failure rolled back", errno.ErrGateway.WithMessage("pool busy"), http.StatusBadGateway, errno.ErrGateway.Code},
		{"reconcile required", errno.ErrReconcileRequired, http.StatusInternalServerError, errno.ErrReconcileRequired.Code},
		{"invalid recipient", errno.ErrInvalidRecipient, http.StatusBadRequest, errno.ErrInvalidRecipient.Code},
		{"not deposited", errno.ErrLinkNotDeposited, http.StatusBadRequest, errno.ErrLinkNotDeposited.Code},
		{"not found", errno.ErrLinkNotFound, http.StatusNotFound, errno.ErrLinkNotFound.Code},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			r := newTestRouter(&fakeLinkManager{}, &fakeClaimer{err: tc.err})
			w := doJSON(t, r, http.MethodPost, "/api/v1/links/abc/claim",
				gin.H{"recipient_address": "11111111111111111111111111111111"})
			assert.Equal(t, tc.wantStatus, w.Code)

			var resp struct {
				Code int `json:"code"`
			}
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
			assert.Equal(t, tc.wantCode, resp.Code)
		})
	}
}

func TestClaimLinkHandlerSuccess(t *testing.T) {
	claims := &fakeClaimer{result: &service.ClaimResult{
		WithdrawRef: "tx-1",
		NetAmount:   990_500_000,
		Fee:         9_500_000,
	}}
	r := newTestRouter(&fakeLinkManager{}, claims)

	w := doJSON(t, r, http.MethodPost, "/api/v1/links/abc/claim",
		gin.H{"recipient_address": "11111111111111111111111111111111"})
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data service.ClaimResult `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "tx-1", resp.Data.WithdrawRef)
	assert.Equal(t, int64(990_500_000), resp.Data.NetAmount)
}

func TestRecordDepositHandlerConflict(t *testing.T) {
	r := newTestRouter(&fakeLinkManager{err: errno.ErrDepositConflict}, &fakeClaimer{})
	w := doJSON(t, r, http.MethodPost, "/api/v1/links/abc/deposit",
		gin.H{"deposit_ref": "shield-tx-2", "gross_amount": 100})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestGetLinkHandlerWithFeePreview(t *testing.T) {
	links := &fakeLinkManager{link: &model.PaymentLink{
		ID:          "abc123",
		GrossAmount: 1_000_000_000,
		Status:      model.LinkStatusDeposited,
	}}
	r := newTestRouter(links, &fakeClaimer{})

	w := doJSON(t, r, http.MethodGet, "/api/v1/links/abc123", nil)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			EstimatedFee int64 `json:"estimated_fee"`
			EstimatedNet int64 `json:"estimated_net_amount"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, int64(9_500_000), resp.Data.EstimatedFee)
	assert.Equal(t, int64(990_500_000), resp.Data.EstimatedNet)
}
