// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	PipelineRunsStarted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_runs_started_total",
			Help: "Total number of pipeline runs started",
		},
	)

	PipelineRunsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_runs_completed_total",
			Help: "Total number of pipeline runs completed, by outcome",
		},
		[]string{"outcome"},
	)

	StageEvaluationsCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_stage_evaluations_total",
			Help: "Total number of stage evaluations, by stage and decision",
		},
		[]string{"stage", "decision"},
	)

	StageEvaluationsFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pipeline_stage_failures_total",
			Help: "Total number of stage evaluator failures, by stage",
		},
		[]string{"stage"},
	)

	StageEvaluationDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "pipeline_stage_duration_seconds",
			Help: "Duration of stage evaluation in seconds",
		},
		[]string{"stage"},
	)

	JudgeFallbacks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "pipeline_judge_fallbacks_total",
			Help: "Times the external similarity stage fell back to the deterministic algorithm",
		},
	)
)
