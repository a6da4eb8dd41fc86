// Package metrics holds the process wide prometheus collectors.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "overbot_upstream_requests_total",
		Help: "Requests made to the stats API, by endpoint and outcome",
	}, []string{"endpoint", "outcome"})

	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "overbot_upstream_request_duration_seconds",
		Help:    "Latency of stats API requests",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	CommandsHandled = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "overbot_commands_total",
		Help: "Slash commands handled, by command and outcome",
	}, []string{"command", "outcome"})

	NewsPosted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "overbot_news_posted_total",
		Help: "News articles posted to the news channel",
	})

	TaskRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "overbot_task_runs_total",
		Help: "Background task iterations, by task and outcome",
	}, []string{"task", "outcome"})

	Guilds = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "overbot_guilds",
		Help: "Guilds the bot is currently in",
	})
)
