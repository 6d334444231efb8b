package publisher

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/wilsondesouza/AlertSystem/internal/models"
)

func floatPtr(v float64) *float64 { return &v }

func testRuleAndEntry() (models.AlertRule, models.AlertHistoryEntry) {
	rule := models.AlertRule{
		ID:              3,
		SensorType:      "rack",
		Metric:          "temperature",
		Condition:       models.ConditionBetween,
		ThresholdValue:  25,
		ThresholdMax:    floatPtr(30),
		RecipientEmail:  "ops@example.com",
		CooldownMinutes: 15,
	}
	entry := models.AlertHistoryEntry{
		ID:          11,
		RuleID:      3,
		SensorValue: 27.5,
		Message:     "Alert Triggered!",
		SentAt:      "2024-05-10 12:00:00",
		EmailStatus: models.EmailStatusSent,
	}
	return rule, entry
}

func TestNewAlertEvent(t *testing.T) {
	rule, entry := testRuleAndEntry()

	event := NewAlertEvent(rule, entry)

	assert.Equal(t, int64(11), event.HistoryID)
	assert.Equal(t, int64(3), event.RuleID)
	assert.Equal(t, "rack", event.SensorType)
	assert.Equal(t, models.ConditionBetween, event.Condition)
	assert.Equal(t, 30.0, *event.ThresholdMax)
	assert.Equal(t, 27.5, event.SensorValue)
	assert.Equal(t, models.EmailStatusSent, event.EmailStatus)
	assert.Equal(t, "2024-05-10 12:00:00", event.SentAt)
}

func TestRedisStreamSink_PublishEvent(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	sink := NewRedisStreamSink(client, "alertsystem:alerts")
	rule, entry := testRuleAndEntry()

	require.NoError(t, sink.PublishEvent(context.Background(), NewAlertEvent(rule, entry)))

	msgs, err := client.XRange(context.Background(), "alertsystem:alerts", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Values, "timestamp")

	var got AlertEvent
	require.NoError(t, json.Unmarshal([]byte(msgs[0].Values["data"].(string)), &got))
	assert.Equal(t, int64(11), got.HistoryID)
	assert.Equal(t, "temperature", got.Metric)
}

func TestRedisStreamSink_Error(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()
	mr.Close()

	sink := NewRedisStreamSink(client, "alertsystem:alerts")
	rule, entry := testRuleAndEntry()

	err := sink.PublishEvent(context.Background(), NewAlertEvent(rule, entry))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to add to stream alertsystem:alerts")
}

type fakeToken struct {
	done chan struct{}
	err  error
}

func newFakeToken(err error, completed bool) *fakeToken {
	tok := &fakeToken{done: make(chan struct{}), err: err}
	if completed {
		close(tok.done)
	}
	return tok
}

func (f *fakeToken) Wait() bool {
	<-f.done
	return true
}

func (f *fakeToken) WaitTimeout(d time.Duration) bool { return true }
func (f *fakeToken) Done() <-chan struct{} { return f.done }
func (f *fakeToken) Error() error { return f.err }

type fakeMQTTClient struct {
	mqtt.Client
	token     *fakeToken
	topic     string
	qos       byte
	payload   []byte
	published int
}

func (f *fakeMQTTClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	f.published++
	f.topic = topic
	f.qos = qos
	f.payload = payload.([]byte)
	return f.token
}

func TestMQTTSink_PublishEvent(t *testing.T) {
	client := &fakeMQTTClient{token: newFakeToken(nil, true)}
	sink := newMQTTSink(client, "alertsystem/alerts", 1)
	rule, entry := testRuleAndEntry()

	require.NoError(t, sink.PublishEvent(context.Background(), NewAlertEvent(rule, entry)))

	assert.Equal(t, "alertsystem/alerts", client.topic)
	assert.Equal(t, byte(1), client.qos)

	var got AlertEvent
	require.NoError(t, json.Unmarshal(client.payload, &got))
	assert.Equal(t, int64(3), got.RuleID)
}

func TestMQTTSink_BrokerError(t *testing.T) {
	client := &fakeMQTTClient{token: newFakeToken(errors.New("not connected"), true)}
	sink := newMQTTSink(client, "alertsystem/alerts", 0)
	rule, entry := testRuleAndEntry()

	err := sink.PublishEvent(context.Background(), NewAlertEvent(rule, entry))

	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
}

func TestMQTTSink_ContextDone(t *testing.T) {
	client := &fakeMQTTClient{token: newFakeToken(nil, false)}
	sink := newMQTTSink(client, "alertsystem/alerts", 1)
	rule, entry := testRuleAndEntry()

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	err := sink.PublishEvent(ctx, NewAlertEvent(rule, entry))

	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

type recordingSink struct {
	name   string
	err    error
	events []AlertEvent
}

func (r *recordingSink) Name() string { return r.name }

func (r *recordingSink) PublishEvent(ctx context.Context, event AlertEvent) error {
	r.events = append(r.events, event)
	return r.err
}

func TestMulti_Publish(t *testing.T) {
	failing := &recordingSink{name: "mqtt", err: errors.New("broker unavailable")}
	ok := &recordingSink{name: "redis_stream"}
	multi := NewMulti(zap.NewNop(), failing, ok)
	rule, entry := testRuleAndEntry()

	err := multi.Publish(context.Background(), rule, entry)

	require.Error(t, err)
	assert.Contains(t, err.Error(), "mqtt: broker unavailable")
	assert.Equal(t, 2, multi.Len())
	assert.Len(t, failing.events, 1)
	require.Len(t, ok.events, 1, "a failing sink does not stop the others")
	assert.Equal(t, int64(11), ok.events[0].HistoryID)
}

func TestMulti_NoSinks(t *testing.T) {
	rule, entry := testRuleAndEntry()

	assert.NoError(t, NewMulti(zap.NewNop()).Publish(context.Background(), rule, entry))
}
