package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	coremetrics "github.com/sunledger/sunledger/core/metrics"
)

// PromSink records analysis events in Prometheus metrics.
type PromSink struct {
	ingestRows  *prometheus.CounterVec
	ingestBad   *prometheus.CounterVec
	fitDuration prometheus.Histogram
	fitBins     prometheus.Gauge
	lossMean    prometheus.Gauge
	lossMedian  prometheus.Gauge
	lossAtZero  prometheus.Gauge
	lossAtOne   prometheus.Gauge
	reportCF    *prometheus.GaugeVec
}

// NewPromSink registers analysis metrics on the provided Prometheus
// registerer. If reg is nil, the default registerer is used. If the
// collectors are already registered, the existing ones are reused.
func NewPromSink(reg prometheus.Registerer) (*PromSink, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	s := &PromSink{
		ingestRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_rows_total",
			Help: "Total number of meter rows ingested",
		}, []string{"account"}),
		ingestBad: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ingest_bad_rows_total",
			Help: "Total number of malformed meter rows dropped during ingestion",
		}, []string{"account"}),
		fitDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "envelope_fit_duration_seconds",
			Help:    "Wall time of the potential-generation envelope fit",
			Buckets: prometheus.DefBuckets,
		}),
		fitBins: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "envelope_fit_bins",
			Help: "Number of populated solar-position bins in the last fit",
		}),
		lossMean: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loss_ratio_mean",
			Help: "Mean loss ratio of the last analysis run",
		}),
		lossMedian: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loss_ratio_median",
			Help: "Median loss ratio of the last analysis run",
		}),
		lossAtZero: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loss_at_capacity_fraction",
			Help: "Fraction of hours at full capacity (loss ratio exactly zero)",
		}),
		lossAtOne: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "loss_zero_output_fraction",
			Help: "Fraction of hours with zero output (loss ratio exactly one)",
		}),
		reportCF: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "weekly_report_median_capacity_factor",
			Help: "Cross-year median capacity factor of the last weekly report",
		}, []string{"iso_week"}),
	}

	collectors := []prometheus.Collector{
		s.ingestRows, s.ingestBad, s.fitDuration, s.fitBins,
		s.lossMean, s.lossMedian, s.lossAtZero, s.lossAtOne, s.reportCF,
	}
	for i, c := range collectors {
		if err := reg.Register(c); err != nil {
			are, ok := err.(prometheus.AlreadyRegisteredError)
			if !ok {
				return nil, err
			}
			switch i {
			case 0:
				s.ingestRows = are.ExistingCollector.(*prometheus.CounterVec)
			case 1:
				s.ingestBad = are.ExistingCollector.(*prometheus.CounterVec)
			case 2:
				s.fitDuration = are.ExistingCollector.(prometheus.Histogram)
			case 3:
				s.fitBins = are.ExistingCollector.(prometheus.Gauge)
			case 4:
				s.lossMean = are.ExistingCollector.(prometheus.Gauge)
			case 5:
				s.lossMedian = are.ExistingCollector.(prometheus.Gauge)
			case 6:
				s.lossAtZero = are.ExistingCollector.(prometheus.Gauge)
			case 7:
				s.lossAtOne = are.ExistingCollector.(prometheus.Gauge)
			case 8:
				s.reportCF = are.ExistingCollector.(*prometheus.GaugeVec)
			}
		}
	}
	return s, nil
}

// RecordIngest increments the ingestion counters.
func (s *PromSink) RecordIngest(ev coremetrics.IngestEvent) error {
	s.ingestRows.WithLabelValues(ev.Account).Add(float64(ev.Rows))
	s.ingestBad.WithLabelValues(ev.Account).Add(float64(ev.BadRows))
	return nil
}

// RecordEnvelopeFit records the fit duration and bin count.
func (s *PromSink) RecordEnvelopeFit(ev coremetrics.EnvelopeFitEvent) error {
	s.fitDuration.Observe(ev.Duration.Seconds())
	s.fitBins.Set(float64(ev.Bins))
	return nil
}

// RecordLossSummary publishes the headline loss statistics.
func (s *PromSink) RecordLossSummary(ev coremetrics.LossSummaryEvent) error {
	s.lossMean.Set(ev.Mean)
	s.lossMedian.Set(ev.Median)
	s.lossAtZero.Set(ev.FracAtZero)
	s.lossAtOne.Set(ev.FracAtOne)
	return nil
}

// RecordWeeklyReport publishes the report's median capacity factor.
func (s *PromSink) RecordWeeklyReport(ev coremetrics.WeeklyReportEvent) error {
	s.reportCF.WithLabelValues(strconv.Itoa(ev.Week)).Set(ev.MedianCapacityFactor)
	return nil
}
