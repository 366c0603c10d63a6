package unit

import (
	"context"
	"errors"
	"testing"
	"time"

	bountyworkers "quinty/contexts/escrow-core/bounty-engine/application/workers"
	bountyports "quinty/contexts/escrow-core/bounty-engine/ports"
)

type capturingPublisher struct {
	topics []string
	events []bountyports.EventEnvelope
	fail   error
}

func (p *capturingPublisher) Publish(_ context.Context, topic string, event bountyports.EventEnvelope) error {
	if p.fail != nil {
		return p.fail
	}
	p.topics = append(p.topics, topic)
	p.events = append(p.events, event)
	return nil
}

func TestExpiryWatchmanSweepsOnlyExpiredBounties(t *testing.T) {
	rig := newEscrowRig()
	rig.setNow(testBase)

	expired := rig.createBounty(t, "creator-1", 1000, testBase.Add(1*time.Hour))
	open := rig.createBounty(t, "creator-1", 1000, testBase.Add(48*time.Hour))

	rig.setNow(testBase.Add(2 * time.Hour))
	watchman := bountyworkers.ExpiryWatchman{Service: rig.bounty.Service}
	if err := watchman.RunOnce(context.Background()); err != nil {
		t.Fatalf("sweep failed: %v", err)
	}

	slashed, err := rig.bounty.Handler.GetBountyHandler(context.Background(), expired)
	if err != nil {
		t.Fatalf("get bounty failed: %v", err)
	}
	if slashed.Data.Status != "slashed" {
		t.Fatalf("expected expired bounty slashed, got %s", slashed.Data.Status)
	}

	untouched, err := rig.bounty.Handler.GetBountyHandler(context.Background(), open)
	if err != nil {
		t.Fatalf("get bounty failed: %v", err)
	}
	if untouched.Data.Status != "open" {
		t.Fatalf("expected open bounty untouched, got %s", untouched.Data.Status)
	}

	// Re-running the sweep is a no-op.
	if err := watchman.RunOnce(context.Background()); err != nil {
		t.Fatalf("repeat sweep failed: %v", err)
	}
	disputes, err := rig.dispute.Handler.ListDisputesHandler(context.Background())
	if err != nil {
		t.Fatalf("list disputes failed: %v", err)
	}
	if len(disputes.Data) != 1 {
		t.Fatalf("expected one dispute, got %d", len(disputes.Data))
	}
}

func TestBountyOutboxRelayPublishesPending(t *testing.T) {
	rig := newEscrowRig()
	rig.setNow(testBase)
	rig.createBounty(t, "creator-1", 1000, testBase.Add(24*time.Hour))

	if got := rig.bounty.Store.PendingOutboxCount(); got != 1 {
		t.Fatalf("expected one pending outbox row, got %d", got)
	}

	publisher := &capturingPublisher{}
	relay := bountyworkers.OutboxRelay{
		Outbox:    rig.bounty.Store,
		Publisher: publisher,
		Clock:     rig.bounty.Store,
	}
	if err := relay.RunOnce(context.Background()); err != nil {
		t.Fatalf("relay failed: %v", err)
	}
	if got := rig.bounty.Store.PendingOutboxCount(); got != 0 {
		t.Fatalf("expected drained outbox, got %d pending", got)
	}
	if len(publisher.topics) != 1 || publisher.topics[0] != "bounty.created" {
		t.Fatalf("unexpected published topics: %v", publisher.topics)
	}
	if publisher.events[0].SourceService != "bounty-engine" {
		t.Fatalf("unexpected envelope source: %+v", publisher.events[0])
	}
}

func TestBountyOutboxRelayKeepsRowsOnPublishFailure(t *testing.T) {
	rig := newEscrowRig()
	rig.setNow(testBase)
	rig.createBounty(t, "creator-1", 1000, testBase.Add(24*time.Hour))

	publisher := &capturingPublisher{fail: errors.New("broker down")}
	relay := bountyworkers.OutboxRelay{
		Outbox:    rig.bounty.Store,
		Publisher: publisher,
		Clock:     rig.bounty.Store,
	}
	if err := relay.RunOnce(context.Background()); err == nil {
		t.Fatalf("expected relay failure")
	}
	if got := rig.bounty.Store.PendingOutboxCount(); got != 1 {
		t.Fatalf("expected row retained for retry, got %d pending", got)
	}
}
