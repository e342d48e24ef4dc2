package metrics

import "time"

// IngestEvent describes one completed meter-data ingestion pass.
type IngestEvent struct {
	RunID   string
	Account string
	Rows    int
	BadRows int
	From    time.Time
	To      time.Time
	Time    time.Time
}

// EnvelopeFitEvent describes one completed envelope fit.
type EnvelopeFitEvent struct {
	RunID    string
	Rows     int
	Bins     int
	Degree   int
	Duration time.Duration
	Time     time.Time
}

// LossSummaryEvent carries the headline loss-distribution statistics of an
// analysis run.
type LossSummaryEvent struct {
	RunID      string
	Count      int
	Mean       float64
	Median     float64
	FracAtZero float64
	FracAtOne  float64
	Time       time.Time
}

// WeeklyReportEvent describes one generated weekly performance report.
type WeeklyReportEvent struct {
	RunID                string
	Week                 int
	Years                int
	ReferenceCapacityKWh float64
	MedianCapacityFactor float64
	Time                 time.Time
}

// AnalysisSink records ingestion events for observability purposes.
type AnalysisSink interface {
	RecordIngest(ev IngestEvent) error
}

// EnvelopeFitRecorder is implemented by sinks interested in fit events.
type EnvelopeFitRecorder interface {
	RecordEnvelopeFit(ev EnvelopeFitEvent) error
}

// LossSummaryRecorder is implemented by sinks interested in loss statistics.
type LossSummaryRecorder interface {
	RecordLossSummary(ev LossSummaryEvent) error
}

// WeeklyReportRecorder is implemented by sinks interested in report events.
type WeeklyReportRecorder interface {
	RecordWeeklyReport(ev WeeklyReportEvent) error
}

// NopSink implements AnalysisSink with no-op methods.
type NopSink struct{}

func (NopSink) RecordIngest(IngestEvent) error { return nil }
