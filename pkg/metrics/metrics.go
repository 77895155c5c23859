package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Sync run outcomes
const (
	OutcomeSynced            = "synced"
	OutcomeSourceUnavailable = "source_unavailable"
	OutcomeNoTransfers       = "no_transfers"
	OutcomeFailed            = "failed"
)

// Per-transfer results
const (
	TransferInserted    = "inserted"
	TransferDuplicate   = "duplicate"
	TransferWholeDollar = "whole_dollar"
	TransferMalformed   = "malformed"
	TransferFailed      = "insert_failed"
)

var (
	SyncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coffeechange",
		Name:      "sync_runs_total",
		Help:      "Sync invocations by outcome.",
	}, []string{"outcome"})

	SyncTransfers = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "coffeechange",
		Name:      "sync_transfers_total",
		Help:      "Transfers evaluated by the sync engine by result.",
	}, []string{"result"})

	DepositsFinalized = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "coffeechange",
		Name:      "deposits_finalized_total",
		Help:      "Successful mark-deposited calls.",
	})

	RoundupsDeposited = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "coffeechange",
		Name:      "roundups_deposited_total",
		Help:      "Round-up rows flipped to deposited.",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "coffeechange",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	TransferSourceDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "coffeechange",
		Name:      "transfer_source_duration_seconds",
		Help:      "Latency of transfer source fetches.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"outcome"})
)
