package workers_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"reqflow/contexts/talent-acquisition/requisition-service/adapters/memory"
	"reqflow/contexts/talent-acquisition/requisition-service/application/workers"
	"reqflow/contexts/talent-acquisition/requisition-service/domain/entities"
	"reqflow/contexts/talent-acquisition/requisition-service/ports"
)

type fixedClock struct{ now time.Time }

func (c fixedClock) Now() time.Time { return c.now }

type seqIDs struct{ n int }

func (g *seqIDs) NewID(context.Context) (string, error) {
	g.n++
	return fmt.Sprintf("id-%04d", g.n), nil
}

// recordingPublisher captures published envelopes in order.
type recordingPublisher struct {
	topics []string
	failOn string
}

func (p *recordingPublisher) Publish(_ context.Context, topic string, _ ports.EventEnvelope) error {
	if p.failOn != "" && topic == p.failOn {
		return fmt.Errorf("broker unavailable for %s", topic)
	}
	p.topics = append(p.topics, topic)
	return nil
}

func seedPendingTransaction(t *testing.T, store *memory.Store, approvalID string, due time.Time) {
	t.Helper()
	created := due.Add(-24 * time.Hour)
	err := store.CreateTransactions(context.Background(), []entities.ApprovalTransaction{{
		ApprovalID:    approvalID,
		TenantID:      "tenant-1",
		RequisitionID: "req-1",
		Level:         1,
		ApproverID:    "user-hrbp",
		ApproverName:  "Dana",
		ApproverRole:  entities.RoleHRBusinessPartner,
		Status:        entities.ApprovalStatusPending,
		SLAHours:      24,
		DueAt:         &due,
		SLAStatus:     entities.SLAOnTrack,
		EscalateTo:    "user-vp",
		CreatedAt:     created,
		UpdatedAt:     created,
	}})
	if err != nil {
		t.Fatalf("seed transaction failed: %v", err)
	}
}

func TestSLAMonitorEscalatesOverdueOnce(t *testing.T) {
	store := memory.NewStore(nil, nil)
	due := time.Date(2026, 8, 11, 9, 0, 0, 0, time.UTC)
	seedPendingTransaction(t, store, "apr-overdue", due)
	seedPendingTransaction(t, store, "apr-on-track", due.Add(12*time.Hour))

	monitor := workers.SLAMonitor{
		Transactions: store,
		Outbox:       store,
		Clock:        fixedClock{now: due.Add(time.Hour)},
		IDGen:        &seqIDs{},
		BatchSize:    10,
	}
	if err := monitor.RunOnce(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	types := store.PendingOutboxTypes()
	if len(types) != 1 || types[0] != "approval.escalated" {
		t.Fatalf("expected one escalation event, got %v", types)
	}

	txs, err := store.ListByRequisition(context.Background(), "req-1")
	if err != nil {
		t.Fatalf("list transactions failed: %v", err)
	}
	for _, tx := range txs {
		switch tx.ApprovalID {
		case "apr-overdue":
			if !tx.Escalated || tx.EscalatedAt == nil || tx.SLAStatus != entities.SLAOverdue {
				t.Fatalf("expected escalated transaction, got %+v", tx)
			}
			// Escalation notifies, it does not decide. The slot stays open.
			if !tx.IsPending() {
				t.Fatalf("escalated transaction must stay pending, got %s", tx.Status)
			}
		case "apr-on-track":
			if tx.Escalated {
				t.Fatalf("on-track transaction was escalated: %+v", tx)
			}
		}
	}

	// A second sweep must be a no-op thanks to the escalated flag.
	if err := monitor.RunOnce(context.Background()); err != nil {
		t.Fatalf("second sweep failed: %v", err)
	}
	if types := store.PendingOutboxTypes(); len(types) != 1 {
		t.Fatalf("second sweep raised duplicate escalations: %v", types)
	}
}

func TestSLAMonitorHonorsBatchLimit(t *testing.T) {
	store := memory.NewStore(nil, nil)
	due := time.Date(2026, 8, 11, 9, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		seedPendingTransaction(t, store, fmt.Sprintf("apr-%d", i), due)
	}

	monitor := workers.SLAMonitor{
		Transactions: store,
		Outbox:       store,
		Clock:        fixedClock{now: due.Add(time.Hour)},
		IDGen:        &seqIDs{},
		BatchSize:    2,
	}
	if err := monitor.RunOnce(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}
	if types := store.PendingOutboxTypes(); len(types) != 2 {
		t.Fatalf("expected batch of 2 escalations, got %d", len(types))
	}
}

func TestOutboxRelayPublishesAndMarks(t *testing.T) {
	store := memory.NewStore(nil, nil)
	now := time.Date(2026, 8, 11, 9, 0, 0, 0, time.UTC)
	for i, eventType := range []string{"requisition.submitted", "approval.pending"} {
		err := store.AppendOutbox(context.Background(), ports.EventEnvelope{
			EventID:       fmt.Sprintf("evt-%d", i),
			EventType:     eventType,
			SourceService: "requisition-service",
			OccurredAt:    now,
			TenantID:      "tenant-1",
			EntityType:    "requisition",
			EntityID:      "req-1",
			SchemaVersion: 1,
		})
		if err != nil {
			t.Fatalf("append outbox failed: %v", err)
		}
	}

	publisher := &recordingPublisher{}
	relay := workers.OutboxRelay{
		Outbox:    store,
		Publisher: publisher,
		Clock:     fixedClock{now: now.Add(time.Second)},
		BatchSize: 10,
	}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay failed: %v", err)
	}
	if len(publisher.topics) != 2 || publisher.topics[0] != "requisition.submitted" || publisher.topics[1] != "approval.pending" {
		t.Fatalf("unexpected publish order: %v", publisher.topics)
	}
	if types := store.PendingOutboxTypes(); len(types) != 0 {
		t.Fatalf("expected outbox drained, got %v", types)
	}

	// Nothing left; a second cycle publishes nothing.
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("idle relay cycle failed: %v", err)
	}
	if len(publisher.topics) != 2 {
		t.Fatalf("idle cycle republished rows: %v", publisher.topics)
	}
}

func TestOutboxRelayStopsOnPublishFailure(t *testing.T) {
	store := memory.NewStore(nil, nil)
	now := time.Date(2026, 8, 11, 9, 0, 0, 0, time.UTC)
	for i, eventType := range []string{"requisition.submitted", "requisition.approved"} {
		err := store.AppendOutbox(context.Background(), ports.EventEnvelope{
			EventID:       fmt.Sprintf("evt-%d", i),
			EventType:     eventType,
			SourceService: "requisition-service",
			OccurredAt:    now,
			EntityType:    "requisition",
			EntityID:      "req-1",
			SchemaVersion: 1,
		})
		if err != nil {
			t.Fatalf("append outbox failed: %v", err)
		}
	}

	publisher := &recordingPublisher{failOn: "requisition.submitted"}
	relay := workers.OutboxRelay{
		Outbox:    store,
		Publisher: publisher,
		Clock:     fixedClock{now: now},
		BatchSize: 10,
	}
	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatal("expected relay to surface publish failure")
	}
	// Both rows must survive for the next cycle.
	if types := store.PendingOutboxTypes(); len(types) != 2 {
		t.Fatalf("failed publish lost outbox rows: %v", types)
	}
}
