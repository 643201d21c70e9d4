package service

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var enforcementOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "bouncer_enforcement_outcomes_total",
	Help: "Number of ban/unban calls by action and outcome",
}, []string{"action", "outcome"})

var channelEvictions = promauto.NewCounter(prometheus.CounterOpts{
	Name: "bouncer_channel_evictions_total",
	Help: "Number of channels dropped after losing moderator rights",
})

var sweepsAborted = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "bouncer_sweeps_aborted_total",
	Help: "Number of sweeps that hit a permission loss",
}, []string{"direction"})
