package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"paylink-core/internal/model"
	"paylink-core/pkg/cache"
	"paylink-core/pkg/errno"
)

func TestCreateLink(t *testing.T) {
	ms := newMemStore()
	svc := NewLinkService(ms, testFees(), nil)

	link, err := svc.CreateLink(context.Background(), 1_000_000_000, "")
	require.NoError(t, err)

	// 链接即领取凭证: 16 字节随机数 -> 32 位 hex
	assert.Len(t, link.ID, 32)
	assert.Equal(t, "SOL", link.AssetType)
	assert.Equal(t, model.LinkStatusCreated, link.Status)
	assert.False(t, link.Claimed)
	assert.Nil(t, link.DepositRef)

	// 两次创建 ID 不重复
	other, err := svc.CreateLink(context.Background(), 1_000_000_000, "SOL")
	require.NoError(t, err)
	assert.NotEqual(t, link.ID, other.ID)
}

func TestRecordDepositIdempotent(t *testing.T) {
	ms := newMemStore()
	svc := NewLinkService(ms, testFees(), nil)
	ctx := context.Background()

	link, err := svc.CreateLink(ctx, 1_000_000_000, "SOL")
	require.NoError(t, err)

	require.NoError(t, svc.RecordDeposit(ctx, link.ID, "shield-tx-1", 1_000_000_000))

	got := ms.mustLink(link.ID)
	assert.Equal(t, model.LinkStatusDeposited, got.Status)
	require.NotNil(t, got.DepositRef)
	assert.Equal(t, "shield-tx-1", *got.DepositRef)

	// 同一凭证重试: no-op
	require.NoError(t, svc.RecordDeposit(ctx, link.ID, "shield-tx-1", 1_000_000_000))

	// 不同凭证: 冲突, 已有入金不被覆盖
	err = svc.RecordDeposit(ctx, link.ID, "shield-tx-2", 2_000_000_000)
	assert.ErrorIs(t, err, errno.ErrDepositConflict)
	got = ms.mustLink(link.ID)
	assert.Equal(t, "shield-tx-1", *got.DepositRef)
	assert.Equal(t, int64(1_000_000_000), got.GrossAmount)
}

func TestRecordDepositUnknownLink(t *testing.T) {
	svc := NewLinkService(newMemStore(), testFees(), nil)
	err := svc.RecordDeposit(context.Background(), "missing", "shield-tx-1", 1_000_000_000)
	assert.ErrorIs(t, err, errno.ErrLinkNotFound)
}

func TestGetLinkReadThroughCache(t *testing.T) {
	ms := newMemStore()
	mc := cache.NewMemoryCache(time.Minute, time.Minute)
	svc := NewLinkService(ms, testFees(), mc)
	ctx := context.Background()

	ms.seedDeposited("link-cache", 1_000_000_000)

	first, err := svc.GetLink(ctx, "link-cache")
	require.NoError(t, err)
	assert.Equal(t, model.LinkStatusDeposited, first.Status)

	// 缓存命中: 直接改底层存储不会反映到 TTL 内的读
	require.NoError(t, ms.MarkReconciliation(ctx, "link-cache"))
	cached, err := svc.GetLink(ctx, "link-cache")
	require.NoError(t, err)
	assert.Equal(t, model.LinkStatusDeposited, cached.Status)

	// 写路径主动失效后读到新状态
	require.NoError(t, mc.Delete(ctx, linkCacheKey("link-cache")))
	fresh, err := svc.GetLink(ctx, "link-cache")
	require.NoError(t, err)
	assert.Equal(t, model.LinkStatusClaimFailed, fresh.Status)
}

func TestRecordDepositInvalidatesCache(t *testing.T) {
	ms := newMemStore()
	mc := cache.NewMemoryCache(time.Minute, time.Minute)
	svc := NewLinkService(ms, testFees(), mc)
	ctx := context.Background()

	link, err := svc.CreateLink(ctx, 1_000_000_000, "SOL")
	require.NoError(t, err)

	before, err := svc.GetLink(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LinkStatusCreated, before.Status)

	require.NoError(t, svc.RecordDeposit(ctx, link.ID, "shield-tx-1", 1_000_000_000))

	after, err := svc.GetLink(ctx, link.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LinkStatusDeposited, after.Status)
}

func TestPreviewFee(t *testing.T) {
	ms := newMemStore()
	svc := NewLinkService(ms, testFees(), nil)
	ctx := context.Background()

	ms.seedDeposited("link-1", 1_000_000_000)
	fee, net, err := svc.PreviewFee(ctx, "link-1")
	require.NoError(t, err)
	assert.Equal(t, int64(9_500_000), fee)
	assert.Equal(t, int64(990_500_000), net)

	ms.seedDeposited("link-dust", 1_000)
	_, _, err = svc.PreviewFee(ctx, "link-dust")
	assert.ErrorIs(t, err, errno.ErrAmountTooLow)
}

func TestListLinksPaging(t *testing.T) {
	ms := newMemStore()
	svc := NewLinkService(ms, testFees(), nil)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := svc.CreateLink(ctx, 1_000_000_000, "SOL")
		require.NoError(t, err)
	}

	page, err := svc.ListLinks(ctx, 3, 0)
	require.NoError(t, err)
	assert.Len(t, page, 3)

	// 非法 limit 回落到默认值
	all, err := svc.ListLinks(ctx, -1, 0)
	require.NoError(t, err)
	assert.Len(t, all, 5)
}
