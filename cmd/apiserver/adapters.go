package main

import (
	"time"

	"github.com/turtacn/KeyIP-Insight/internal/application/search"
	"github.com/turtacn/KeyIP-Insight/internal/infrastructure/monitoring/prometheus"
	model "github.com/turtacn/KeyIP-Insight/pkg/types/insight"
)

// searchRecorder feeds resolved searches into the Prometheus metrics.
type searchRecorder struct {
	metrics *prometheus.InsightMetrics
}

func (r searchRecorder) RecordSearch(kind model.QueryKind, outcome search.OutcomeKind, reason search.Reason, elapsed time.Duration) {
	r.metrics.RecordSearch(kind.String(), string(outcome), string(reason), elapsed)
}

//Personal.AI order the ending
