package service

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	roundsStarted = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shell_rounds_started_total",
			Help: "Shell rounds started, including resets",
		},
	)
	roundsResolved = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "shell_rounds_resolved_total",
			Help: "Shell rounds resolved by a guess",
		},
		[]string{"outcome"},
	)
	shufflesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shell_shuffles_total",
			Help: "Single shuffle steps applied",
		},
	)
	randomSourceErrors = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "shell_random_source_errors_total",
			Help: "Shuffle sequences stopped because the random source failed",
		},
	)
)

func init() {
	prometheus.MustRegister(roundsStarted)
	prometheus.MustRegister(roundsResolved)
	prometheus.MustRegister(shufflesTotal)
	prometheus.MustRegister(randomSourceErrors)
}
