package messaging

import (
	"context"
	"testing"
	"time"

	"assetledger/contexts/tokenization/asset-ledger/ports"
)

func TestPublishReachesSubscriber(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus, err := NewKafka(nil, nil)
	if err != nil {
		t.Fatalf("new kafka: %v", err)
	}

	received := make(chan ports.EventEnvelope, 1)
	err = bus.Subscribe(ctx, "asset.events", "test-cg", func(_ context.Context, event ports.EventEnvelope) error {
		received <- event
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	envelope, err := ports.NewAssetEnvelope("evt-1", ports.EventTypeAssetCreated, 42, time.Now().UTC(), map[string]any{
		"asset_id": 42,
	})
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}
	if err := bus.Publish(ctx, "asset.events", envelope); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case event := <-received:
		if event.EventID != "evt-1" {
			t.Fatalf("expected evt-1, got %s", event.EventID)
		}
		if event.PartitionKey != "42" {
			t.Fatalf("expected partition key 42, got %s", event.PartitionKey)
		}
	case <-time.After(2 * time.Second):
		t.Fatalf("timed out waiting for event delivery")
	}
}

func TestPublishSkipsOtherTopics(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	bus, err := NewKafka(nil, nil)
	if err != nil {
		t.Fatalf("new kafka: %v", err)
	}

	received := make(chan ports.EventEnvelope, 1)
	err = bus.Subscribe(ctx, "other.topic", "test-cg", func(_ context.Context, event ports.EventEnvelope) error {
		received <- event
		return nil
	})
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}

	envelope, err := ports.NewAssetEnvelope("evt-2", ports.EventTypeAssetFrozen, 7, time.Now().UTC(), map[string]any{})
	if err != nil {
		t.Fatalf("build envelope: %v", err)
	}
	if err := bus.Publish(ctx, "asset.events", envelope); err != nil {
		t.Fatalf("publish: %v", err)
	}

	select {
	case <-received:
		t.Fatalf("subscriber on another topic must not receive the event")
	case <-time.After(100 * time.Millisecond):
	}
}
