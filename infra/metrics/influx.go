package metrics

import (
	"context"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	influxdb2 "github.com/influxdata/influxdb-client-go/v2"
	"github.com/influxdata/influxdb-client-go/v2/api"
	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/sunledger/sunledger/infra/logger"

	coremetrics "github.com/sunledger/sunledger/core/metrics"
)

// InfluxSink writes analysis events to an InfluxDB instance using the
// official client.
type InfluxSink struct {
	client   influxdb2.Client
	writeAPI api.WriteAPIBlocking
	log      logger.Logger
}

// NewInfluxSink creates a new sink configured for the given InfluxDB endpoint.
func NewInfluxSink(url, token, org, bucket string) *InfluxSink {
	base := strings.TrimSuffix(url, "/api/v2/write")
	client := influxdb2.NewClientWithOptions(base, token,
		influxdb2.DefaultOptions().SetHTTPClient(&http.Client{Timeout: 5 * time.Second}))
	return &InfluxSink{
		client:   client,
		writeAPI: client.WriteAPIBlocking(org, bucket),
		log:      logger.New("influx-sink"),
	}
}

// NewInfluxSinkWithFallback tries to ping the InfluxDB instance and returns a
// NopSink if the health check fails.
func NewInfluxSinkWithFallback(url, token, org, bucket string) coremetrics.AnalysisSink {
	sink := NewInfluxSink(url, token, org, bucket)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	health, err := sink.client.Health(ctx)
	if err != nil || health.Status != "pass" {
		if err != nil {
			sink.log.Errorf("influx health check error: %v", err)
		} else {
			sink.log.Errorf("influx health status: %s", health.Status)
		}
		sink.client.Close()
		return coremetrics.NopSink{}
	}
	return sink
}

// RecordIngest writes the ingestion event as a line protocol point.
func (s *InfluxSink) RecordIngest(ev coremetrics.IngestEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("ingest").
		AddTag("run_id", ev.RunID).
		AddTag("account", ev.Account).
		AddField("rows", ev.Rows).
		AddField("bad_rows", ev.BadRows).
		AddField("from", ev.From.UnixNano()).
		AddField("to", ev.To.UnixNano()).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordEnvelopeFit writes the fit event.
func (s *InfluxSink) RecordEnvelopeFit(ev coremetrics.EnvelopeFitEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("envelope_fit").
		AddTag("run_id", ev.RunID).
		AddField("rows", ev.Rows).
		AddField("bins", ev.Bins).
		AddField("degree", ev.Degree).
		AddField("duration_ms", ev.Duration.Milliseconds()).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordLossSummary writes the headline loss statistics.
func (s *InfluxSink) RecordLossSummary(ev coremetrics.LossSummaryEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("loss_summary").
		AddTag("run_id", ev.RunID).
		AddField("count", ev.Count).
		AddField("mean", round3(ev.Mean)).
		AddField("median", round3(ev.Median)).
		AddField("frac_at_zero", round3(ev.FracAtZero)).
		AddField("frac_at_one", round3(ev.FracAtOne)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

// RecordWeeklyReport writes the report event.
func (s *InfluxSink) RecordWeeklyReport(ev coremetrics.WeeklyReportEvent) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	p := write.NewPointWithMeasurement("weekly_report").
		AddTag("run_id", ev.RunID).
		AddTag("iso_week", strconv.Itoa(ev.Week)).
		AddField("years", ev.Years).
		AddField("reference_capacity_kwh", round3(ev.ReferenceCapacityKWh)).
		AddField("median_capacity_factor", round3(ev.MedianCapacityFactor)).
		SetTime(ev.Time)
	return s.writeAPI.WritePoint(ctx, p)
}

func round3(f float64) float64 {
	return math.Round(f*1000) / 1000
}
