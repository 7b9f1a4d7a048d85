// Package metrics defines the metric names and tags the service emits.
package metrics

import (
	"time"

	obserrors "github.com/target/hiring-api/internal/observability/errors"
	"github.com/target/hiring-api/internal/observability/statsd"
)

// Lifecycle actions.
const (
	ActionApply    = "apply"
	ActionDecide   = "decide"
	ActionWithdraw = "withdraw"
	ActionOffer    = "offer"
)

// Result tag values.
const (
	ResultSuccess = "success"
	ResultError   = "error"
)

const (
	transitionMetric = "application.transition"
	durationMetric   = "application.duration"
)

// Transition describes one lifecycle operation.
type Transition struct {
	Action   string
	Status   string // resulting status, when the operation sets one
	Duration time.Duration
	Err      error
}

// EmitApplicationTransition counts the operation and records its duration.
// A nil sink is a no-op.
func EmitApplicationTransition(sink statsd.Sink, in Transition) {
	if sink == nil {
		return
	}

	tags := map[string]string{
		"action": in.Action,
		"result": ResultSuccess,
	}
	if in.Err != nil {
		tags["result"] = ResultError
		tags["error_class"] = obserrors.Classify(in.Err)
	} else if in.Status != "" {
		tags["status"] = in.Status
	}

	sink.Count(transitionMetric, 1, tags)
	if in.Duration > 0 {
		sink.Timing(durationMetric, in.Duration, map[string]string{
			"action": in.Action,
			"result": tags["result"],
		})
	}
}
