package mqtt

import (
	"encoding/json"
	"errors"
	"testing"
	"time"

	paho "github.com/eclipse/paho.mqtt.golang"

	"github.com/sunledger/sunledger/core/aggregate"
	"github.com/sunledger/sunledger/core/loss"
)

type fakeToken struct{ err error }

func (t *fakeToken) Wait() bool                     { return true }
func (t *fakeToken) WaitTimeout(time.Duration) bool { return true }
func (t *fakeToken) Done() <-chan struct{} {
	ch := make(chan struct{})
	close(ch)
	return ch
}
func (t *fakeToken) Error() error { return t.err }

type published struct {
	topic    string
	retained bool
	qos      byte
	payload  []byte
}

type fakeClient struct {
	messages    []published
	failTimes   int
	connectErr  error
	connected   bool
	disconnects int
}

func (f *fakeClient) IsConnected() bool { return f.connected }
func (f *fakeClient) Connect() paho.Token {
	f.connected = f.connectErr == nil
	return &fakeToken{err: f.connectErr}
}
func (f *fakeClient) Disconnect(uint) { f.disconnects++ }
func (f *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) paho.Token {
	if f.failTimes > 0 {
		f.failTimes--
		return &fakeToken{err: errors.New("broker unavailable")}
	}
	f.messages = append(f.messages, published{
		topic: topic, retained: retained, qos: qos, payload: payload.([]byte),
	})
	return &fakeToken{}
}

func newTestPublisher(t *testing.T, fc *fakeClient) *Publisher {
	t.Helper()
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return fc }
	t.Cleanup(func() { newMQTTClient = orig })

	p, err := NewPublisher(Config{Broker: "tcp://127.0.0.1:1883", BackoffMS: 1})
	if err != nil {
		t.Fatalf("new publisher: %v", err)
	}
	return p
}

func TestPublisher_WeeklyReportRetained(t *testing.T) {
	fc := &fakeClient{}
	p := newTestPublisher(t, fc)

	rep := &aggregate.WeeklyReport{
		Week:                 10,
		ReferenceCapacityKWh: 3200,
		MedianCapacityFactor: 0.46875,
		Years: []aggregate.YearCapacity{
			{Year: 2020, GenerationKWh: 1500, CapacityFactor: 0.46875},
			{Year: 2021, GenerationKWh: 1800, CapacityFactor: 0.5625},
		},
	}
	if err := p.PublishWeeklyReport("run-1", rep); err != nil {
		t.Fatalf("publish: %v", err)
	}

	if len(fc.messages) != 1 {
		t.Fatalf("expected 1 message, got %d", len(fc.messages))
	}
	msg := fc.messages[0]
	if msg.topic != "sunledger/report/week/10" {
		t.Errorf("topic: got %s", msg.topic)
	}
	if !msg.retained {
		t.Errorf("report messages must be retained")
	}

	var decoded struct {
		RunID                string  `json:"run_id"`
		Week                 int     `json:"week"`
		MedianCapacityFactor float64 `json:"median_capacity_factor"`
		Years                []struct {
			Year int `json:"year"`
		} `json:"years"`
	}
	if err := json.Unmarshal(msg.payload, &decoded); err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if decoded.RunID != "run-1" || decoded.Week != 10 || len(decoded.Years) != 2 {
		t.Errorf("unexpected payload: %+v", decoded)
	}
}

func TestPublisher_RetriesThenSucceeds(t *testing.T) {
	fc := &fakeClient{failTimes: 2}
	p := newTestPublisher(t, fc)

	if err := p.PublishLossSummary("run-2", loss.Summary{Count: 10, Mean: 0.3}); err != nil {
		t.Fatalf("publish should succeed after retries: %v", err)
	}
	if len(fc.messages) != 1 {
		t.Fatalf("expected 1 delivered message, got %d", len(fc.messages))
	}
	if fc.messages[0].topic != "sunledger/loss/summary" {
		t.Errorf("topic: got %s", fc.messages[0].topic)
	}
}

func TestPublisher_GivesUpAfterMaxRetries(t *testing.T) {
	fc := &fakeClient{failTimes: 100}
	p := newTestPublisher(t, fc)

	if err := p.PublishDegradation("run-3", &aggregate.Trend{Years: 4, PercentPerYear: -1.2}); err == nil {
		t.Fatal("expected publish error")
	}
}

func TestPublisher_ConnectError(t *testing.T) {
	fc := &fakeClient{connectErr: errors.New("refused")}
	orig := newMQTTClient
	newMQTTClient = func(*paho.ClientOptions) pahoClient { return fc }
	t.Cleanup(func() { newMQTTClient = orig })

	if _, err := NewPublisher(Config{Broker: "tcp://127.0.0.1:1883"}); err == nil {
		t.Fatal("expected connect error")
	}
}

func TestPublisher_Close(t *testing.T) {
	fc := &fakeClient{}
	p := newTestPublisher(t, fc)
	p.Close()
	if fc.disconnects != 1 {
		t.Errorf("expected disconnect, got %d", fc.disconnects)
	}
}

func TestConfig_Validate(t *testing.T) {
	if err := (Config{}).Validate(); err == nil {
		t.Error("missing broker should fail")
	}
	if err := (Config{Broker: "tcp://b", QoS: 3}).Validate(); err == nil {
		t.Error("qos 3 should fail")
	}
}
