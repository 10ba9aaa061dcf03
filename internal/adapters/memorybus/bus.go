package memorybus

import (
	"sync"

	"github.com/satriacloudx/BotDracinV2/internal/ports"
)

// Taille du tampon par abonné; au-delà, Publish droppe pour cet abonné.
const subscriberBuffer = 64

// Bus diffuse les événements du process (drama.upserted, episode.appended,
// token.created, token.redeemed, subscription.extended) vers les abonnés du
// flux SSE. Fan-out sans rejeu ni persistance: un abonné saturé perd des
// événements plutôt que d'exercer une backpressure sur la boucle bot.
type Bus struct {
	mu     sync.Mutex
	subs   map[chan ports.Event]struct{}
	closed bool
}

func New() *Bus {
	return &Bus{subs: make(map[chan ports.Event]struct{})}
}

func (b *Bus) Publish(topic string, payload []byte) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	evt := ports.Event{Topic: topic, Payload: payload}
	for ch := range b.subs {
		select {
		case ch <- evt:
		default:
			// abonné saturé: drop
		}
	}
}

// Subscribe renvoie le canal d'événements et la fonction de désabonnement
// (idempotente). Après Close, le canal renvoyé est déjà fermé.
func (b *Bus) Subscribe() (<-chan ports.Event, func()) {
	ch := make(chan ports.Event, subscriberBuffer)

	b.mu.Lock()
	if b.closed {
		close(ch)
		b.mu.Unlock()
		return ch, func() {}
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	cancel := func() {
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
	}
	return ch, cancel
}

// Close débranche tous les abonnés; les Publish suivants sont des no-ops.
// Appelé à l'arrêt du process pour terminer les flux SSE en cours.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for ch := range b.subs {
		close(ch)
	}
	b.subs = make(map[chan ports.Event]struct{})
}
