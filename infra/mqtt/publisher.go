// Package mqtt publishes analysis results as retained JSON messages for
// home-automation consumers.
package mqtt

import (
	"encoding/json"
	"fmt"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/sunledger/sunledger/core/aggregate"
	"github.com/sunledger/sunledger/core/loss"
	"github.com/sunledger/sunledger/infra/logger"
)

type pahoClient interface {
	IsConnected() bool
	Connect() paho.Token
	Disconnect(quiesce uint)
	Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token
}

var newMQTTClient = func(opts *paho.ClientOptions) pahoClient {
	return paho.NewClient(opts)
}

// Publisher sends loss summaries and weekly reports to an MQTT broker.
type Publisher struct {
	cli     pahoClient
	cfg     Config
	log     logger.Logger
	backoff time.Duration
}

// NewPublisher connects to the MQTT broker.
func NewPublisher(cfg Config) (*Publisher, error) {
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	log := logger.New("mqtt-publisher")

	opts := paho.NewClientOptions().AddBroker(cfg.Broker).SetClientID(cfg.ClientID)
	opts.AutoReconnect = true
	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
	}
	if cfg.Password != "" {
		opts.SetPassword(cfg.Password)
	}
	if cfg.UseTLS {
		tlsCfg, err := cfg.LoadTLSConfig()
		if err != nil {
			return nil, err
		}
		opts.SetTLSConfig(tlsCfg)
	}
	opts.OnConnect = func(paho.Client) {
		log.Infof("MQTT connected")
	}
	opts.OnConnectionLost = func(_ paho.Client, err error) {
		log.Errorf("connection lost: %v", err)
	}
	opts.OnReconnecting = func(_ paho.Client, _ *paho.ClientOptions) {
		log.Warnf("reconnecting to MQTT broker")
	}

	c := newMQTTClient(opts)
	if token := c.Connect(); token.Wait() && token.Error() != nil {
		return nil, token.Error()
	}
	return &Publisher{
		cli:     c,
		cfg:     cfg,
		log:     log,
		backoff: time.Duration(cfg.BackoffMS) * time.Millisecond,
	}, nil
}

// PublishLossSummary publishes the loss-distribution statistics of a run.
func (p *Publisher) PublishLossSummary(runID string, s loss.Summary) error {
	msg := struct {
		MessageID  string  `json:"message_id"`
		RunID      string  `json:"run_id"`
		Count      int     `json:"count"`
		Mean       float64 `json:"mean"`
		Median     float64 `json:"median"`
		Std        float64 `json:"std"`
		P25        float64 `json:"p25"`
		P75        float64 `json:"p75"`
		FracAtZero float64 `json:"frac_at_zero"`
		FracAtOne  float64 `json:"frac_at_one"`
		Timestamp  int64   `json:"timestamp"`
	}{
		MessageID:  uuid.NewString(),
		RunID:      runID,
		Count:      s.Count,
		Mean:       s.Mean,
		Median:     s.Median,
		Std:        s.Std,
		P25:        s.P25,
		P75:        s.P75,
		FracAtZero: s.FracAtZero,
		FracAtOne:  s.FracAtOne,
		Timestamp:  time.Now().UnixMilli(),
	}
	return p.publish(p.cfg.TopicPrefix+"/loss/summary", msg)
}

// PublishWeeklyReport publishes a weekly performance report on a per-week
// topic.
func (p *Publisher) PublishWeeklyReport(runID string, rep *aggregate.WeeklyReport) error {
	type yearEntry struct {
		Year           int     `json:"year"`
		GenerationKWh  float64 `json:"generation_kwh"`
		CapacityFactor float64 `json:"capacity_factor"`
	}
	msg := struct {
		MessageID            string      `json:"message_id"`
		RunID                string      `json:"run_id"`
		Week                 int         `json:"week"`
		ReferenceCapacityKWh float64     `json:"reference_capacity_kwh"`
		MedianCapacityFactor float64     `json:"median_capacity_factor"`
		Years                []yearEntry `json:"years"`
		Timestamp            int64       `json:"timestamp"`
	}{
		MessageID:            uuid.NewString(),
		RunID:                runID,
		Week:                 rep.Week,
		ReferenceCapacityKWh: rep.ReferenceCapacityKWh,
		MedianCapacityFactor: rep.MedianCapacityFactor,
		Timestamp:            time.Now().UnixMilli(),
	}
	for _, y := range rep.Years {
		msg.Years = append(msg.Years, yearEntry{
			Year:           y.Year,
			GenerationKWh:  y.GenerationKWh,
			CapacityFactor: y.CapacityFactor,
		})
	}
	return p.publish(fmt.Sprintf("%s/report/week/%d", p.cfg.TopicPrefix, rep.Week), msg)
}

// PublishDegradation publishes the degradation trend estimate.
func (p *Publisher) PublishDegradation(runID string, tr *aggregate.Trend) error {
	msg := struct {
		MessageID      string  `json:"message_id"`
		RunID          string  `json:"run_id"`
		Years          int     `json:"years"`
		PercentPerYear float64 `json:"percent_per_year"`
		Timestamp      int64   `json:"timestamp"`
	}{
		MessageID:      uuid.NewString(),
		RunID:          runID,
		Years:          tr.Years,
		PercentPerYear: tr.PercentPerYear,
		Timestamp:      time.Now().UnixMilli(),
	}
	return p.publish(p.cfg.TopicPrefix+"/degradation", msg)
}

func (p *Publisher) publish(topic string, v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return err
	}
	var publishErr error
	for attempt := 0; attempt <= p.cfg.MaxRetries; attempt++ {
		token := p.cli.Publish(topic, p.cfg.QoS, p.cfg.Retain, payload)
		token.Wait()
		publishErr = token.Error()
		if publishErr == nil {
			p.log.Infof("published %s", topic)
			return nil
		}
		p.log.Errorf("publish attempt %d failed: %v", attempt+1, publishErr)
		time.Sleep(p.backoff * time.Duration(1<<attempt))
	}
	return publishErr
}

// Close gracefully closes the MQTT connection.
func (p *Publisher) Close() {
	if p.cli.IsConnected() {
		p.cli.Disconnect(250)
	}
}
