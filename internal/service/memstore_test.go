package service

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"paylink-core/internal/model"
	"paylink-core/pkg/errno"
)

// memStore 内存版 LinkStore, 只给测试用。
// 所有条件写都在同一把互斥锁下完成, 语义上等价于 SQL 的条件 UPDATE。
// fail* 开关用来注入存储层故障, 验证编排器的补偿 / 冻结路径。
type memStore struct {
	mu      sync.Mutex
	links   map[string]*model.PaymentLink
	entries map[string][]model.LedgerEntry

	failRollback bool
	failFinalize bool
	failAppend   bool
}

func newMemStore() *memStore {
	return &memStore{
		links:   make(map[string]*model.PaymentLink),
		entries: make(map[string][]model.LedgerEntry),
	}
}

func (m *memStore) CreateLink(ctx context.Context, link *model.PaymentLink) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *link
	m.links[link.ID] = &cp
	return nil
}

func (m *memStore) GetLink(ctx context.Context, id string) (*model.PaymentLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[id]
	if !ok {
		return nil, errno.ErrLinkNotFound
	}
	cp := *link
	return &cp, nil
}

func (m *memStore) ListLinks(ctx context.Context, limit, offset int) ([]model.PaymentLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]model.PaymentLink, 0, len(m.links))
	for _, link := range m.links {
		out = append(out, *link)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if offset >= len(out) {
		return nil, nil
	}
	out = out[offset:]
	if limit < len(out) {
		out = out[:limit]
	}
	return out, nil
}

func (m *memStore) RecordDeposit(ctx context.Context, id, depositRef string, grossAmount int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[id]
	if !ok {
		return errno.ErrLinkNotFound
	}
	if link.DepositRef != nil {
		if *link.DepositRef == depositRef {
			return nil // 同凭证重试, 幂等 no-op
		}
		return errno.ErrDepositConflict
	}
	link.DepositRef = &depositRef
	link.GrossAmount = grossAmount
	link.Status = model.LinkStatusDeposited
	link.UpdatedAt = time.Now()
	m.entries[id] = append(m.entries[id], model.LedgerEntry{
		ID:          depositRef + "-deposit",
		LinkID:      id,
		Kind:        model.LedgerKindDeposit,
		Status:      model.LedgerStatusConfirmed,
		Amount:      grossAmount,
		ExternalRef: depositRef,
		CreatedAt:   time.Now(),
	})
	return nil
}

func (m *memStore) ConditionalClaim(ctx context.Context, id, recipient string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[id]
	if !ok {
		return false, errno.ErrLinkNotFound
	}
	if link.Claimed || link.Status != model.LinkStatusDeposited {
		return false, nil
	}
	link.Claimed = true
	link.ClaimedBy = &recipient
	link.UpdatedAt = time.Now()
	return true, nil
}

func (m *memStore) FinalizeWithdrawal(ctx context.Context, id, withdrawRef string, entry *model.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFinalize {
		return errors.New("storage unavailable")
	}
	link, ok := m.links[id]
	if !ok {
		return errno.ErrLinkNotFound
	}
	link.WithdrawRef = &withdrawRef
	link.Status = model.LinkStatusClaimed
	link.UpdatedAt = time.Now()
	m.entries[id] = append(m.entries[id], *entry)
	return nil
}

func (m *memStore) RollbackClaim(ctx context.Context, id string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failRollback {
		return false, errors.New("storage unavailable")
	}
	link, ok := m.links[id]
	if !ok {
		return false, errno.ErrLinkNotFound
	}
	if !link.Claimed || link.WithdrawRef != nil {
		return false, nil
	}
	link.Claimed = false
	link.ClaimedBy = nil
	link.UpdatedAt = time.Now()
	return true, nil
}

func (m *memStore) MarkReconciliation(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	link, ok := m.links[id]
	if !ok {
		return errno.ErrLinkNotFound
	}
	link.Status = model.LinkStatusClaimFailed
	link.UpdatedAt = time.Now()
	return nil
}

func (m *memStore) AppendLedgerEntry(ctx context.Context, entry *model.LedgerEntry) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failAppend {
		return errors.New("storage unavailable")
	}
	m.entries[entry.LinkID] = append(m.entries[entry.LinkID], *entry)
	return nil
}

func (m *memStore) ListLedgerEntries(ctx context.Context, linkID string) ([]model.LedgerEntry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.LedgerEntry(nil), m.entries[linkID]...), nil
}

func (m *memStore) ListReconciliation(ctx context.Context) ([]model.PaymentLink, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.PaymentLink
	for _, link := range m.links {
		if link.Status == model.LinkStatusClaimFailed {
			out = append(out, *link)
		}
	}
	return out, nil
}

// mustLink 直接读内部状态 (绕过接口), 断言用
func (m *memStore) mustLink(id string) model.PaymentLink {
	m.mu.Lock()
	defer m.mu.Unlock()
	return *m.links[id]
}

// seedDeposited 直接塞入一条已入金链接
func (m *memStore) seedDeposited(id string, grossAmount int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ref := "dep-" + id
	m.links[id] = &model.PaymentLink{
		ID:          id,
		GrossAmount: grossAmount,
		AssetType:   "SOL",
		Status:      model.LinkStatusDeposited,
		DepositRef:  &ref,
		CreatedAt:   time.Now(),
		UpdatedAt:   time.Now(),
	}
}
