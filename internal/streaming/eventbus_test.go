package streaming

import (
	"context"
	"errors"
	"testing"

	"appscore-lab/internal/domain/models"
	"appscore-lab/pkg/logger"
)

type fakeBroker struct {
	connected bool
	err       error
	published []*Event
}

func (f *fakeBroker) IsConnected() bool { return f.connected }

func (f *fakeBroker) Publish(_ context.Context, event *Event) error {
	f.published = append(f.published, event)
	return f.err
}

func TestEventSubjects(t *testing.T) {
	report := &models.Report{ContentHash: "h1", ScoreMode: models.ScoreModeRich, SecurityScore: 70}
	if got := NewReportBuiltEvent(report).Subject(); got != "reports.built.rich" {
		t.Errorf("built subject = %q, want reports.built.rich", got)
	}

	cmp := &models.ComparisonResult{
		ReportA:    models.ReportRef{ContentHash: "a"},
		ReportB:    models.ReportRef{ContentHash: "b"},
		ScoreDelta: -5,
		Trend:      models.TrendRegressed,
	}
	ev := NewReportComparedEvent(cmp)
	if got := ev.Subject(); got != "reports.compared.regressed" {
		t.Errorf("compared subject = %q, want reports.compared.regressed", got)
	}
	if ev.ContentHash != "b" || ev.BaseContentHash != "a" {
		t.Errorf("compared event hashes = %q/%q, want b/a", ev.ContentHash, ev.BaseContentHash)
	}

	if got := (&Event{Type: EventTypeReportBuilt}).Subject(); got != "reports.built.unknown" {
		t.Errorf("empty mode subject = %q", got)
	}
}

func TestEventBusDeliversLocallyAndToBroker(t *testing.T) {
	broker := &fakeBroker{connected: true, err: errors.New("nats down")}
	bus := NewEventBus(broker, logger.NewNop())

	ch, unsubscribe := bus.Subscribe(4)
	defer unsubscribe()

	report := &models.Report{ContentHash: "h1", ScoreMode: models.ScoreModeSummary}
	if err := bus.PublishReportBuilt(context.Background(), report); err != nil {
		t.Fatalf("PublishReportBuilt: %v", err)
	}

	if len(broker.published) != 1 {
		t.Errorf("broker received %d events, want 1", len(broker.published))
	}

	select {
	case ev := <-ch:
		if ev.Type != EventTypeReportBuilt || ev.ContentHash != "h1" {
			t.Errorf("unexpected event %+v", ev)
		}
		if ev.ID == "" {
			t.Error("event has no ID")
		}
	default:
		t.Fatal("subscriber did not receive the event")
	}
}

func TestEventBusSkipsDisconnectedBroker(t *testing.T) {
	broker := &fakeBroker{connected: false}
	bus := NewEventBus(broker, logger.NewNop())

	if err := bus.PublishReportCompared(context.Background(), &models.ComparisonResult{Trend: models.TrendUnchanged}); err != nil {
		t.Fatal(err)
	}
	if len(broker.published) != 0 {
		t.Errorf("published to a disconnected broker")
	}
}

func TestEventBusUnsubscribe(t *testing.T) {
	bus := NewEventBus(nil, logger.NewNop())
	ch, unsubscribe := bus.Subscribe(1)
	if bus.SubscriberCount() != 1 {
		t.Fatalf("SubscriberCount = %d, want 1", bus.SubscriberCount())
	}

	unsubscribe()
	unsubscribe()

	if bus.SubscriberCount() != 0 {
		t.Errorf("SubscriberCount = %d after unsubscribe", bus.SubscriberCount())
	}
	if _, open := <-ch; open {
		t.Error("channel still open after unsubscribe")
	}

	// full or absent subscribers never block publishing
	full, stop := bus.Subscribe(0)
	defer stop()
	_ = full
	if err := bus.PublishReportBuilt(context.Background(), &models.Report{}); err != nil {
		t.Fatal(err)
	}
}
