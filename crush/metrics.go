/*
 * Copyright (c) 2018-2026, NVIDIA CORPORATION. All rights reserved.
 */
package crush

import "github.com/prometheus/client_golang/prometheus"

// Metrics is an optional set of prometheus counters tracking selector
// behavior: accepted picks, rejected picks (duplicate/offloaded/wrong
// type), and retry-budget exhaustion. Grounded on the teacher's
// pervasive prometheus/client_golang wiring for op counters; generalized
// here to a tiny, nil-safe counter set so the core algorithm (Selector)
// has no required dependency on a metrics backend — a *Metrics is only
// consulted if non-nil, exactly like a nil *log.Logger receiver.
type Metrics struct {
	Accepted  prometheus.Counter
	Rejected  prometheus.Counter
	Exhausted prometheus.Counter
}

// NewMetrics registers and returns a Metrics bound to reg. Pass a fresh
// *prometheus.Registry per embedding daemon, or prometheus.DefaultRegisterer
// wrapped in one, per the usual client_golang convention.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		Accepted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crush", Subsystem: "selector", Name: "accepted_total",
			Help: "Number of accepted device picks.",
		}),
		Rejected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crush", Subsystem: "selector", Name: "rejected_total",
			Help: "Number of rejected picks (duplicate, wrong type, or offloaded).",
		}),
		Exhausted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "crush", Subsystem: "selector", Name: "exhausted_total",
			Help: "Number of slots that exhausted the retry budget and produced a gap or short list.",
		}),
	}
	reg.MustRegister(m.Accepted, m.Rejected, m.Exhausted)
	return m
}

func (m *Metrics) accept() {
	if m == nil {
		return
	}
	m.Accepted.Inc()
}

func (m *Metrics) reject() {
	if m == nil {
		return
	}
	m.Rejected.Inc()
}

func (m *Metrics) exhausted() {
	if m == nil {
		return
	}
	m.Exhausted.Inc()
}
