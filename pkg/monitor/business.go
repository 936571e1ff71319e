package monitor

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// BusinessMetrics 定义业务监控指标
type BusinessMetrics struct {
	LinkCreatedTotal        prometheus.Counter
	DepositAmountTotal      *prometheus.CounterVec
	ClaimSuccessTotal       *prometheus.CounterVec
	ClaimPartialTotal       *prometheus.CounterVec
	ClaimConflictTotal      prometheus.Counter
	ClaimRollbackTotal      prometheus.Counter
	GatewayWithdrawDuration *prometheus.HistogramVec
	ReconciliationPending   prometheus.Gauge
}

// Global Metrics Instance
var Business *BusinessMetrics

// InitBusinessMetrics 初始化业务指标
func InitBusinessMetrics() {
	Business = &BusinessMetrics{
		LinkCreatedTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "paylink_link_created_total",
			Help: "The total number of created payment links",
		}),
		DepositAmountTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "paylink_deposit_amount_total",
			Help: "The total amount of recorded shielded deposits (smallest unit)",
		}, []string{"asset"}),
		ClaimSuccessTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "paylink_claim_success_total",
			Help: "Total number of successfully claimed links",
		}, []string{"asset"}),
		ClaimPartialTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "paylink_claim_partial_total",
			Help: "Total number of partially fulfilled claims",
		}, []string{"asset"}),
		ClaimConflictTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "paylink_claim_conflict_total",
			Help: "Total number of claims rejected because the link was already claimed",
		}),
		ClaimRollbackTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "paylink_claim_rollback_total",
			Help: "Total number of compensating rollbacks after gateway failures",
		}),
		GatewayWithdrawDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "paylink_gateway_withdraw_duration_seconds",
			Help:    "Duration of withdrawal gateway calls",
			Buckets: []float64{0.5, 1, 2, 5, 10, 30, 60, 90}, // 提现通常耗时数十秒
		}, []string{"outcome"}),
		ReconciliationPending: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "paylink_reconciliation_pending",
			Help: "Number of links frozen waiting for manual reconciliation",
		}),
	}
}
