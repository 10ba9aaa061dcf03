package memorybus

import (
	"testing"

	"github.com/satriacloudx/BotDracinV2/internal/ports"
)

func TestPublish_FanOut(t *testing.T) {
	b := New()
	ch1, cancel1 := b.Subscribe()
	defer cancel1()
	ch2, cancel2 := b.Subscribe()
	defer cancel2()

	b.Publish("drama.upserted", []byte(`{"id":"dr1"}`))

	for _, ch := range []<-chan ports.Event{ch1, ch2} {
		evt := <-ch
		if evt.Topic != "drama.upserted" {
			t.Fatalf("topic: want drama.upserted, got %q", evt.Topic)
		}
		if string(evt.Payload) != `{"id":"dr1"}` {
			t.Fatalf("payload: %s", evt.Payload)
		}
	}
}

func TestPublish_SlowSubscriberDrops(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe()
	defer cancel()

	// Le tampon se remplit; les publications suivantes droppent au lieu de
	// bloquer l'éditeur.
	for i := 0; i < subscriberBuffer+10; i++ {
		b.Publish("tick", nil)
	}
	if len(ch) != subscriberBuffer {
		t.Fatalf("buffered events: want %d, got %d", subscriberBuffer, len(ch))
	}
}

func TestCancel_Idempotent(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe()

	cancel()
	cancel()

	if _, ok := <-ch; ok {
		t.Fatalf("channel must be closed after cancel")
	}
	// Publication après désabonnement: no-op pour ce canal.
	b.Publish("tick", nil)
}

func TestClose_TerminatesSubscribers(t *testing.T) {
	b := New()
	ch, cancel := b.Subscribe()
	defer cancel()

	b.Close()
	if _, ok := <-ch; ok {
		t.Fatalf("channel must be closed after Close")
	}

	// Publish après Close: no-op, sans panic.
	b.Publish("tick", nil)

	// Subscribe après Close: canal déjà fermé.
	ch2, cancel2 := b.Subscribe()
	defer cancel2()
	if _, ok := <-ch2; ok {
		t.Fatalf("post-close subscription must yield a closed channel")
	}
}
