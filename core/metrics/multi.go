package metrics

// MultiSink fans events out to multiple sinks.
type MultiSink struct {
	Sinks []AnalysisSink
}

// NewMultiSink creates a MultiSink with the provided sinks.
func NewMultiSink(sinks ...AnalysisSink) *MultiSink {
	return &MultiSink{Sinks: sinks}
}

// RecordIngest forwards the event to all sinks, returning the first error.
func (m *MultiSink) RecordIngest(ev IngestEvent) error {
	for _, s := range m.Sinks {
		if err := s.RecordIngest(ev); err != nil {
			return err
		}
	}
	return nil
}

// RecordEnvelopeFit forwards fit events to the sinks that support them.
func (m *MultiSink) RecordEnvelopeFit(ev EnvelopeFitEvent) error {
	for _, s := range m.Sinks {
		if r, ok := s.(EnvelopeFitRecorder); ok {
			if err := r.RecordEnvelopeFit(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordLossSummary forwards loss statistics to the sinks that support them.
func (m *MultiSink) RecordLossSummary(ev LossSummaryEvent) error {
	for _, s := range m.Sinks {
		if r, ok := s.(LossSummaryRecorder); ok {
			if err := r.RecordLossSummary(ev); err != nil {
				return err
			}
		}
	}
	return nil
}

// RecordWeeklyReport forwards report events to the sinks that support them.
func (m *MultiSink) RecordWeeklyReport(ev WeeklyReportEvent) error {
	for _, s := range m.Sinks {
		if r, ok := s.(WeeklyReportRecorder); ok {
			if err := r.RecordWeeklyReport(ev); err != nil {
				return err
			}
		}
	}
	return nil
}
