package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var syncRuns = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "bouncer_sync_runs_total",
	Help: "Number of bot sync cycles by result",
}, []string{"result"})

var botsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "bouncer_bots_ingested_total",
	Help: "Number of newly discovered bots by registry",
}, []string{"registry"})
