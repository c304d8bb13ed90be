package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Vaultpool metrics collector

var (
	// Singleton collector
	collector     *Collector
	collectorOnce sync.Once
)

// Collector holds all vaultpool metrics
type Collector struct {
	// Deposit metrics
	DepositsTotal *prometheus.CounterVec
	DepositVolume *prometheus.CounterVec

	// Withdrawal metrics
	WithdrawalsTotal *prometheus.CounterVec
	WithdrawalVolume *prometheus.CounterVec

	// Emergency metrics
	EmergencyTriggersTotal *prometheus.CounterVec
	ClaimsTotal            *prometheus.CounterVec
	ClaimVolume            *prometheus.CounterVec

	// Fee metrics
	FeesCollected *prometheus.CounterVec

	// Pool ledger gauges
	PoolTotalShares      *prometheus.GaugeVec
	PoolClaimPot         *prometheus.GaugeVec
	PoolsInEmergency     prometheus.Gauge
	OperationLatency     *prometheus.HistogramVec
	OperationErrorsTotal *prometheus.CounterVec

	// API metrics
	APIRequestsTotal  *prometheus.CounterVec
	APIRequestLatency *prometheus.HistogramVec

	// WebSocket metrics
	WSConnectionsActive prometheus.Gauge
	WSMessagesTotal     *prometheus.CounterVec
}

// GetCollector returns the singleton metrics collector
func GetCollector() *Collector {
	collectorOnce.Do(func() {
		collector = newCollector()
	})
	return collector
}

// newCollector creates a new metrics collector
func newCollector() *Collector {
	c := &Collector{}

	c.DepositsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vaultpool",
			Subsystem: "deposits",
			Name:      "total",
			Help:      "Total number of deposits processed",
		},
		[]string{"pool_id"},
	)

	c.DepositVolume = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vaultpool",
			Subsystem: "deposits",
			Name:      "volume",
			Help:      "Total deposited asset volume",
		},
		[]string{"pool_id"},
	)

	c.WithdrawalsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vaultpool",
			Subsystem: "withdrawals",
			Name:      "total",
			Help:      "Total number of withdrawals processed",
		},
		[]string{"pool_id"},
	)

	c.WithdrawalVolume = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vaultpool",
			Subsystem: "withdrawals",
			Name:      "volume",
			Help:      "Total withdrawn asset volume (net of fee)",
		},
		[]string{"pool_id"},
	)

	c.EmergencyTriggersTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vaultpool",
			Subsystem: "emergency",
			Name:      "triggers_total",
			Help:      "Total number of emergency triggers",
		},
		[]string{"pool_id"},
	)

	c.ClaimsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vaultpool",
			Subsystem: "emergency",
			Name:      "claims_total",
			Help:      "Total number of emergency claims paid",
		},
		[]string{"pool_id"},
	)

	c.ClaimVolume = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vaultpool",
			Subsystem: "emergency",
			Name:      "claim_volume",
			Help:      "Total claimed asset volume (net of fee)",
		},
		[]string{"pool_id"},
	)

	c.FeesCollected = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vaultpool",
			Subsystem: "fees",
			Name:      "collected",
			Help:      "Total performance fees collected",
		},
		[]string{"pool_id", "kind"},
	)

	c.PoolTotalShares = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "vaultpool",
			Subsystem: "pools",
			Name:      "total_shares",
			Help:      "Outstanding wrapper shares per pool",
		},
		[]string{"pool_id"},
	)

	c.PoolClaimPot = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "vaultpool",
			Subsystem: "pools",
			Name:      "claim_pot",
			Help:      "Frozen withdrawn assets per emergency pool",
		},
		[]string{"pool_id"},
	)

	c.PoolsInEmergency = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vaultpool",
			Subsystem: "pools",
			Name:      "in_emergency",
			Help:      "Number of pools currently in emergency mode",
		},
	)

	c.OperationLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vaultpool",
			Subsystem: "ops",
			Name:      "latency_ms",
			Help:      "Ledger operation latency in milliseconds",
			Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100},
		},
		[]string{"op"},
	)

	c.OperationErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vaultpool",
			Subsystem: "ops",
			Name:      "errors_total",
			Help:      "Total failed ledger operations",
		},
		[]string{"op"},
	)

	c.APIRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vaultpool",
			Subsystem: "api",
			Name:      "requests_total",
			Help:      "Total API requests",
		},
		[]string{"method", "path", "status"},
	)

	c.APIRequestLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vaultpool",
			Subsystem: "api",
			Name:      "latency_ms",
			Help:      "API request latency in milliseconds",
			Buckets:   []float64{1, 5, 10, 25, 50, 100, 250, 500},
		},
		[]string{"method", "path"},
	)

	c.WSConnectionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vaultpool",
			Subsystem: "websocket",
			Name:      "connections_active",
			Help:      "Active websocket connections",
		},
	)

	c.WSMessagesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vaultpool",
			Subsystem: "websocket",
			Name:      "messages_total",
			Help:      "Total websocket messages sent",
		},
		[]string{"event"},
	)

	c.registerAll()

	return c
}

// registerAll registers all metrics with Prometheus
func (c *Collector) registerAll() {
	prometheus.MustRegister(c.DepositsTotal)
	prometheus.MustRegister(c.DepositVolume)
	prometheus.MustRegister(c.WithdrawalsTotal)
	prometheus.MustRegister(c.WithdrawalVolume)
	prometheus.MustRegister(c.EmergencyTriggersTotal)
	prometheus.MustRegister(c.ClaimsTotal)
	prometheus.MustRegister(c.ClaimVolume)
	prometheus.MustRegister(c.FeesCollected)
	prometheus.MustRegister(c.PoolTotalShares)
	prometheus.MustRegister(c.PoolClaimPot)
	prometheus.MustRegister(c.PoolsInEmergency)
	prometheus.MustRegister(c.OperationLatency)
	prometheus.MustRegister(c.OperationErrorsTotal)
	prometheus.MustRegister(c.APIRequestsTotal)
	prometheus.MustRegister(c.APIRequestLatency)
	prometheus.MustRegister(c.WSConnectionsActive)
	prometheus.MustRegister(c.WSMessagesTotal)
}

// ============ Recording Helpers ============

// RecordDeposit records a processed deposit
func (c *Collector) RecordDeposit(poolID string, amount float64) {
	c.DepositsTotal.WithLabelValues(poolID).Inc()
	c.DepositVolume.WithLabelValues(poolID).Add(amount)
}

// RecordWithdrawal records a processed withdrawal
func (c *Collector) RecordWithdrawal(poolID string, netAmount, fee float64) {
	c.WithdrawalsTotal.WithLabelValues(poolID).Inc()
	c.WithdrawalVolume.WithLabelValues(poolID).Add(netAmount)
	if fee > 0 {
		c.FeesCollected.WithLabelValues(poolID, "withdrawal").Add(fee)
	}
}

// RecordEmergencyTrigger records an emergency trigger
func (c *Collector) RecordEmergencyTrigger(poolID string, claimPot float64) {
	c.EmergencyTriggersTotal.WithLabelValues(poolID).Inc()
	c.PoolClaimPot.WithLabelValues(poolID).Set(claimPot)
	c.PoolsInEmergency.Inc()
}

// RecordClaim records a paid emergency claim
func (c *Collector) RecordClaim(poolID string, netAmount, fee float64) {
	c.ClaimsTotal.WithLabelValues(poolID).Inc()
	c.ClaimVolume.WithLabelValues(poolID).Add(netAmount)
	if fee > 0 {
		c.FeesCollected.WithLabelValues(poolID, "claim").Add(fee)
	}
}

// RecordPoolShares updates the outstanding shares gauge for a pool
func (c *Collector) RecordPoolShares(poolID string, totalShares float64) {
	c.PoolTotalShares.WithLabelValues(poolID).Set(totalShares)
}

// RecordOperation records the latency or failure of a ledger operation
func (c *Collector) RecordOperation(op string, latencyMs float64, err error) {
	if err != nil {
		c.OperationErrorsTotal.WithLabelValues(op).Inc()
		return
	}
	c.OperationLatency.WithLabelValues(op).Observe(latencyMs)
}

// RecordAPIRequest records an API request
func (c *Collector) RecordAPIRequest(method, path, status string, latencyMs float64) {
	c.APIRequestsTotal.WithLabelValues(method, path, status).Inc()
	c.APIRequestLatency.WithLabelValues(method, path).Observe(latencyMs)
}

// RecordWSConnection adjusts the active websocket connection gauge
func (c *Collector) RecordWSConnection(delta int) {
	c.WSConnectionsActive.Add(float64(delta))
}

// RecordWSMessage records a broadcast websocket message
func (c *Collector) RecordWSMessage(event string) {
	c.WSMessagesTotal.WithLabelValues(event).Inc()
}

// ============ HTTP Handler ============

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}

// Timer is a helper for measuring latency
type Timer struct {
	start time.Time
}

// NewTimer creates a new timer
func NewTimer() *Timer {
	return &Timer{start: time.Now()}
}

// ElapsedMs returns the elapsed time in milliseconds
func (t *Timer) ElapsedMs() float64 {
	return float64(time.Since(t.start).Microseconds()) / 1000.0
}
