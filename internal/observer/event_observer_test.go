package observer

import (
	"bytes"
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"go-skin-detector/pkg/models"
)

type recordingObserver struct {
	name string
	seen *[]string
}

func (o *recordingObserver) OnEvent(ctx context.Context, event models.LifecycleEvent) {
	*o.seen = append(*o.seen, o.name+":"+string(event.EventType))
}

func (o *recordingObserver) GetObserverName() string { return o.name }

type panickingObserver struct{}

func (panickingObserver) OnEvent(ctx context.Context, event models.LifecycleEvent) {
	panic("boom")
}

func (panickingObserver) GetObserverName() string { return "panicking" }

func event(sessionID string, eventType models.EventType) models.LifecycleEvent {
	return models.LifecycleEvent{
		EventType: eventType,
		Timestamp: time.Now(),
		SessionID: sessionID,
		Snapshot:  models.SessionSnapshot{SessionID: sessionID, Phase: models.PhaseIdle},
	}
}

func verdictEvent(v bool, took time.Duration) models.LifecycleEvent {
	e := event("s1", models.AnalysisCompleted)
	e.ProcessingTime = took
	e.Snapshot.Phase = models.PhaseResultReady
	e.Snapshot.Verdict = &v
	return e
}

func TestEventPublisher_DeliversInOrder(t *testing.T) {
	var seen []string
	p := NewEventPublisher()
	p.Subscribe(&recordingObserver{name: "a", seen: &seen})
	p.Subscribe(panickingObserver{})
	p.Subscribe(&recordingObserver{name: "b", seen: &seen})

	ctx := context.Background()
	p.NotifyObservers(ctx, event("s1", models.AnalysisStarted))
	p.NotifyObservers(ctx, event("s1", models.CountdownTicked))

	assert.Equal(t, []string{
		"a:analysis_started", "b:analysis_started",
		"a:countdown_ticked", "b:countdown_ticked",
	}, seen)
}

func TestEventPublisher_Unsubscribe(t *testing.T) {
	var seen []string
	p := NewEventPublisher()
	a := &recordingObserver{name: "a", seen: &seen}
	p.Subscribe(a)
	p.Subscribe(&recordingObserver{name: "b", seen: &seen})
	p.Unsubscribe(a)

	p.NotifyObservers(context.Background(), event("s1", models.SessionReset))
	assert.Equal(t, []string{"b:session_reset"}, seen)
}

func TestMetricsObserver_Counts(t *testing.T) {
	o := NewMetricsObserver()
	ctx := context.Background()

	o.OnEvent(ctx, event("s1", models.ImageSelected))
	o.OnEvent(ctx, event("s1", models.AnalysisStarted))
	o.OnEvent(ctx, verdictEvent(true, 3*time.Second))
	o.OnEvent(ctx, event("s1", models.AnalysisStarted))
	o.OnEvent(ctx, verdictEvent(false, 4*time.Second))
	o.OnEvent(ctx, event("s1", models.SessionReset))
	o.OnEvent(ctx, event("s1", models.StaleContinuationDropped))

	m := o.GetMetrics()
	assert.Equal(t, int64(1), m["images_selected"])
	assert.Equal(t, int64(2), m["analyses_started"])
	assert.Equal(t, int64(2), m["analyses_completed"])
	assert.Equal(t, int64(1), m["verdicts_true"])
	assert.Equal(t, int64(1), m["verdicts_false"])
	assert.Equal(t, int64(1), m["resets"])
	assert.Equal(t, int64(1), m["stale_dropped"])
	assert.Equal(t, "3.5s", m["avg_processing_time"])
}

func TestChannelObserver_FiltersSession(t *testing.T) {
	o := NewChannelObserver("s1", 4)
	ctx := context.Background()

	o.OnEvent(ctx, event("s2", models.AnalysisStarted))
	o.OnEvent(ctx, event("s1", models.StaleContinuationDropped))
	o.OnEvent(ctx, event("s1", models.AnalysisStarted))

	require.Len(t, o.Events(), 1)
	got := <-o.Events()
	assert.Equal(t, models.AnalysisStarted, got.EventType)
}

func TestChannelObserver_KeepsNewestWhenFull(t *testing.T) {
	o := NewChannelObserver("s1", 2)
	ctx := context.Background()

	o.OnEvent(ctx, event("s1", models.ImageSelected))
	o.OnEvent(ctx, event("s1", models.AnalysisStarted))
	o.OnEvent(ctx, event("s1", models.CountdownTicked))

	assert.Equal(t, models.AnalysisStarted, (<-o.Events()).EventType)
	assert.Equal(t, models.CountdownTicked, (<-o.Events()).EventType)
}

func TestChannelObserver_CloseStopsDelivery(t *testing.T) {
	o := NewChannelObserver("s1", 2)
	o.Close()
	o.Close()

	assert.NotPanics(t, func() {
		o.OnEvent(context.Background(), event("s1", models.SessionReset))
	})
	_, ok := <-o.Events()
	assert.False(t, ok)
}

func TestChannelObserver_UniqueNames(t *testing.T) {
	a := NewChannelObserver("s1", 1)
	b := NewChannelObserver("s1", 1)
	assert.NotEqual(t, a.GetObserverName(), b.GetObserverName())
}

func TestLoggingObserver_WritesFields(t *testing.T) {
	var buf bytes.Buffer
	l := logrus.New()
	l.SetOutput(&buf)
	l.SetFormatter(&logrus.JSONFormatter{})

	o := NewLoggingObserver(l)
	o.OnEvent(context.Background(), verdictEvent(true, 3500*time.Millisecond))

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "Analysis completed", entry["msg"])
	assert.Equal(t, "s1", entry["session_id"])
	assert.Equal(t, true, entry["verdict"])
}
