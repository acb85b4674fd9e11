package usecase

import "time"

// EngineMetrics receives engine-level measurements.
type EngineMetrics interface {
	IncWeekCalculation(outcome string)
	IncFormationSubmission(outcome string)
	ObserveDerivation(view string, elapsed time.Duration)
	AddLiveWatches(delta int)
}

const (
	OutcomeCalculated = "calculated"
	OutcomeNoop       = "noop"
	OutcomeRejected   = "rejected"
	OutcomeAccepted   = "accepted"
	OutcomeError      = "error"
)

type nopMetrics struct{}

func (nopMetrics) IncWeekCalculation(string) {}
func (nopMetrics) IncFormationSubmission(string) {}
func (nopMetrics) ObserveDerivation(string, time.Duration) {}
func (nopMetrics) AddLiveWatches(int) {}

func metricsOrNop(m EngineMetrics) EngineMetrics {
	if m == nil {
		return nopMetrics{}
	}
	return m
}
