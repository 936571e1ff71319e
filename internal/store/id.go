package store

import "github.com/google/uuid"

// newLedgerID 生成账本条目主键
func newLedgerID() string {
	return uuid.New().String()
}
