package repository

// Metrics records enrichment activity.
type Metrics interface {
	RecordAlerts(source string, n int)
	RecordSlopes(outcome string, n int)
	RecordError(kind string)
	RecordEnrichedRatio(source string, ratio float64)
	RecordLatency(op string, seconds float64)
}
