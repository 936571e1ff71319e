package service

import (
	"os"
	"testing"

	"paylink-core/pkg/monitor"
)

func TestMain(m *testing.M) {
	// promauto 重复注册会 panic, 整个包只初始化一次
	monitor.InitBusinessMetrics()
	os.Exit(m.Run())
}
