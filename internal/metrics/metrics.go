// Package metrics exposes fan-out pipeline counters on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	AlertsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vigia",
		Subsystem: "fanout",
		Name:      "alerts_processed_total",
		Help:      "Fan-out attempts by outcome.",
	}, []string{"outcome"})

	DuplicateTriggers = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vigia",
		Subsystem: "fanout",
		Name:      "duplicate_triggers_total",
		Help:      "Triggers skipped because the alert was already claimed.",
	})

	RecipientsSelected = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vigia",
		Subsystem: "fanout",
		Name:      "recipients_selected_total",
		Help:      "Recipients selected for dispatch.",
	})

	PushesSent = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vigia",
		Subsystem: "push",
		Name:      "sends_total",
		Help:      "Individual push sends by transport and result.",
	}, []string{"transport", "result"})

	DevicesRegistered = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vigia",
		Subsystem: "registry",
		Name:      "registrations_total",
		Help:      "Device registration upserts.",
	})
)
