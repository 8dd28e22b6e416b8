package monitoring

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	TokensCreatedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "factory_tokens_created_total",
			Help: "Total number of tokens created",
		},
	)

	CreateFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factory_create_failures_total",
			Help: "Rejected or rolled back token creations by condition",
		},
		[]string{"reason"},
	)

	ReferralCreditsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "factory_referral_credits_total",
			Help: "Creations attributed to a referrer",
		},
	)

	FeesWei = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factory_fees_wei_total",
			Help: "Fee value routed per destination, in wei",
		},
		[]string{"destination"},
	)

	WithdrawalsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "factory_referral_withdrawals_total",
			Help: "Referral withdrawals by result",
		},
		[]string{"result"},
	)

	DepositsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "factory_chain_deposits_total",
			Help: "Native deposits picked up from the chain",
		},
	)

	HttpRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	ResponseTimeHistogram = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_response_time_seconds",
			Help:    "Histogram of response times",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)
)
