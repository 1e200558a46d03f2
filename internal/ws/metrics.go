package ws

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	connectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "relay_connections_active",
		Help: "Number of open websocket connections",
	})

	eventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "relay_events_total",
		Help: "Total inbound session events by event name",
	}, []string{"event"})

	broadcastsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_broadcasts_total",
		Help: "Total event deliveries fanned out to room members",
	})

	errorRepliesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "relay_error_replies_total",
		Help: "Total private error replies for rejected events",
	})
)
