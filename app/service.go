// Package app wires the storage, modeling, and publishing layers into the
// analysis pipeline behind the CLI.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/sunledger/sunledger/config"
	"github.com/sunledger/sunledger/core/aggregate"
	"github.com/sunledger/sunledger/core/envelope"
	"github.com/sunledger/sunledger/core/loss"
	coremetrics "github.com/sunledger/sunledger/core/metrics"
	"github.com/sunledger/sunledger/core/model"
	"github.com/sunledger/sunledger/core/solarpos"
	"github.com/sunledger/sunledger/infra/gmp"
	"github.com/sunledger/sunledger/infra/logger"
	"github.com/sunledger/sunledger/infra/metrics"
	"github.com/sunledger/sunledger/infra/mqtt"
	"github.com/sunledger/sunledger/infra/store"
)

// Service orchestrates the fetch and analysis pipelines.
type Service struct {
	cfg    *config.Config
	store  *store.SQLiteStore
	sink   coremetrics.AnalysisSink
	pub    *mqtt.Publisher
	holder *envelope.Holder
	log    logger.Logger
	runID  string
}

// AnalysisResult carries everything one analysis run produces.
type AnalysisResult struct {
	RunID  string
	Loss   loss.Result
	Beta   *loss.BetaFit
	Annual []aggregate.AnnualSummary
	Weekly []aggregate.WeeklySummary
	Trend  *aggregate.Trend
}

// New creates a Service from the configuration.
func New(cfg *config.Config) (*Service, error) {
	logg := logger.New("service")

	st, err := store.New(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	sink, err := coremetrics.NewSink(cfg.Metrics.Sinks)
	if err != nil {
		_ = st.Close()
		return nil, fmt.Errorf("metrics sink: %w", err)
	}

	var pub *mqtt.Publisher
	if cfg.MQTT.Enabled {
		pub, err = mqtt.NewPublisher(cfg.MQTT.Publisher)
		if err != nil {
			_ = st.Close()
			return nil, fmt.Errorf("mqtt publisher: %w", err)
		}
	}

	return &Service{
		cfg:    cfg,
		store:  st,
		sink:   sink,
		pub:    pub,
		holder: &envelope.Holder{},
		log:    logg,
		runID:  uuid.NewString(),
	}, nil
}

// RunID identifies this service instance's analysis runs.
func (s *Service) RunID() string { return s.runID }

// Fetch retrieves meter data from the utility API and upserts it into the
// local archive. Overlapping windows are safe; the store is keyed by hour.
func (s *Service) Fetch(ctx context.Context, from, to time.Time) error {
	client, err := gmp.New(s.cfg.GMP)
	if err != nil {
		return err
	}
	obs, err := client.Fetch(ctx, from, to)
	if err != nil {
		return err
	}
	clean, bad, err := model.ValidateTable(obs, s.cfg.Site.MaxBadFraction)
	if err != nil {
		return err
	}
	if err := s.store.Upsert(ctx, clean); err != nil {
		return err
	}
	s.log.Infof("stored %d readings (%d dropped)", len(clean), bad)
	return s.sink.RecordIngest(coremetrics.IngestEvent{
		RunID:   s.runID,
		Account: s.cfg.GMP.Account,
		Rows:    len(clean),
		BadRows: bad,
		From:    from.UTC(),
		To:      to.UTC(),
		Time:    time.Now(),
	})
}

// Analyze runs the full pipeline over the stored table: annotate, fit the
// envelope, derive loss ratios, and aggregate.
func (s *Service) Analyze(ctx context.Context) (*AnalysisResult, error) {
	obs, ys, err := s.evaluate(ctx)
	if err != nil {
		return nil, err
	}

	policy := s.cfg.Envelope.MissingPolicy
	lossRes, err := loss.Compute(obs, ys, policy, s.cfg.Loss)
	if err != nil {
		return nil, fmt.Errorf("loss ratios: %w", err)
	}
	s.recordLoss(lossRes.Summary)

	res := &AnalysisResult{RunID: s.runID, Loss: lossRes}

	beta, err := loss.FitBeta(lossRes.Q, s.cfg.Loss.MinInterior)
	if err != nil {
		// The distribution fit is a refinement; too few interior values or
		// infeasible moments leave the summary statistics standing.
		var ide *model.InsufficientDataError
		var fce *model.FitConvergenceError
		if !errors.As(err, &ide) && !errors.As(err, &fce) {
			return nil, err
		}
		s.log.Warnf("beta fit skipped: %v", err)
	} else {
		res.Beta = &beta
	}

	res.Annual, err = aggregate.Annual(obs, ys, policy, s.cfg.Aggregate)
	if err != nil {
		return nil, fmt.Errorf("annual summary: %w", err)
	}
	res.Weekly, err = aggregate.Weekly(obs, ys, policy, s.cfg.Aggregate)
	if err != nil {
		return nil, fmt.Errorf("weekly summary: %w", err)
	}

	trend, err := aggregate.DegradationTrend(res.Annual, s.cfg.Aggregate)
	if err != nil {
		var ide *model.InsufficientDataError
		if !errors.As(err, &ide) {
			return nil, err
		}
		s.log.Warnf("degradation trend skipped: %v", err)
	} else {
		res.Trend = trend
		if s.pub != nil {
			if perr := s.pub.PublishDegradation(s.runID, trend); perr != nil {
				s.log.Errorf("publish degradation: %v", perr)
			}
		}
	}

	if s.pub != nil {
		if perr := s.pub.PublishLossSummary(s.runID, lossRes.Summary); perr != nil {
			s.log.Errorf("publish loss summary: %v", perr)
		}
	}
	return res, nil
}

// WeeklyReport builds the fixed-denominator cross-year report for an ISO
// week from the stored table.
func (s *Service) WeeklyReport(ctx context.Context, week int) (*aggregate.WeeklyReport, error) {
	obs, ys, err := s.evaluate(ctx)
	if err != nil {
		return nil, err
	}
	weekly, err := aggregate.Weekly(obs, ys, s.cfg.Envelope.MissingPolicy, s.cfg.Aggregate)
	if err != nil {
		return nil, err
	}
	rep, err := aggregate.Report(weekly, week)
	if err != nil {
		return nil, err
	}
	if r, ok := s.sink.(coremetrics.WeeklyReportRecorder); ok {
		_ = r.RecordWeeklyReport(coremetrics.WeeklyReportEvent{
			RunID:                s.runID,
			Week:                 rep.Week,
			Years:                len(rep.Years),
			ReferenceCapacityKWh: rep.ReferenceCapacityKWh,
			MedianCapacityFactor: rep.MedianCapacityFactor,
			Time:                 time.Now(),
		})
	}
	if s.pub != nil {
		if err := s.pub.PublishWeeklyReport(s.runID, rep); err != nil {
			s.log.Errorf("publish weekly report: %v", err)
		}
	}
	return rep, nil
}

// StartMetricsServer exposes the Prometheus endpoint when configured. It
// blocks until the context is canceled.
func (s *Service) StartMetricsServer(ctx context.Context) error {
	if s.cfg.Metrics.PrometheusAddr == "" {
		return nil
	}
	return metrics.StartPromServer(ctx, s.cfg.Metrics.PrometheusAddr)
}

// evaluate loads the stored table, annotates solar geometry, fits the
// envelope, and evaluates per-hour potential.
func (s *Service) evaluate(ctx context.Context) ([]model.Observation, []float64, error) {
	first, last, count, err := s.store.Span(ctx)
	if err != nil {
		return nil, nil, err
	}
	s.log.Infof("analyzing %d readings, %s .. %s", count,
		first.Format(time.RFC3339), last.Format(time.RFC3339))

	obs, err := s.store.Load(ctx, first, last)
	if err != nil {
		return nil, nil, err
	}
	obs, bad, err := model.ValidateTable(obs, s.cfg.Site.MaxBadFraction)
	if err != nil {
		return nil, nil, err
	}
	if bad > 0 {
		s.log.Warnf("dropped %d malformed stored rows", bad)
	}
	if err := solarpos.Annotate(obs, s.cfg.Site.LatitudeDeg, s.cfg.Site.LongitudeDeg); err != nil {
		return nil, nil, err
	}

	start := time.Now()
	m, err := envelope.Fit(obs, s.cfg.Envelope)
	if err != nil {
		return nil, nil, fmt.Errorf("envelope fit: %w", err)
	}
	s.holder.Swap(m)
	if r, ok := s.sink.(coremetrics.EnvelopeFitRecorder); ok {
		_ = r.RecordEnvelopeFit(coremetrics.EnvelopeFitEvent{
			RunID:    s.runID,
			Rows:     m.Rows(),
			Bins:     m.Bins(),
			Degree:   m.Degree(),
			Duration: time.Since(start),
			Time:     time.Now(),
		})
	}

	ys, err := envelope.Evaluate(m, obs, s.cfg.Envelope.MissingPolicy)
	if err != nil {
		return nil, nil, err
	}
	return obs, ys, nil
}

func (s *Service) recordLoss(sum loss.Summary) {
	if r, ok := s.sink.(coremetrics.LossSummaryRecorder); ok {
		_ = r.RecordLossSummary(coremetrics.LossSummaryEvent{
			RunID:      s.runID,
			Count:      sum.Count,
			Mean:       sum.Mean,
			Median:     sum.Median,
			FracAtZero: sum.FracAtZero,
			FracAtOne:  sum.FracAtOne,
			Time:       time.Now(),
		})
	}
}

// Envelope returns the last fitted model, or nil before the first analysis.
func (s *Service) Envelope() *envelope.Model { return s.holder.Current() }

// Close releases resources held by the service.
func (s *Service) Close() error {
	if s.pub != nil {
		s.pub.Close()
	}
	return s.store.Close()
}
