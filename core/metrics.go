package core

// Metrics records application level events.
type Metrics interface {
	ObservePrediction(mode string, fallback bool)
	ObserveGradeWrite()
	ObserveImport(rows, failed int)
}

type nopMetrics struct{}

// NopMetrics discards everything; used by tests and tools.
var NopMetrics Metrics = nopMetrics{}

func (nopMetrics) ObservePrediction(string, bool) {}
func (nopMetrics) ObserveGradeWrite()             {}
func (nopMetrics) ObserveImport(int, int)         {}
