package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/satriacloudx/BotDracinV2/internal/domain"
	"github.com/satriacloudx/BotDracinV2/internal/ports"
)

type SubscriptionStore struct {
	mu   sync.RWMutex
	subs map[int64]domain.Subscription
}

func NewSubscriptionStore() *SubscriptionStore {
	return &SubscriptionStore{subs: make(map[int64]domain.Subscription)}
}

func (s *SubscriptionStore) Get(ctx context.Context, userID int64) (domain.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sub, ok := s.subs[userID]
	if !ok {
		return domain.Subscription{}, ports.ErrNotFound
	}
	return sub, nil
}

func (s *SubscriptionStore) Put(ctx context.Context, sub domain.Subscription) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs[sub.UserID] = sub
	return nil
}

func (s *SubscriptionStore) List(ctx context.Context) ([]domain.Subscription, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		out = append(out, sub)
	}
	return out, nil
}

func (s *SubscriptionStore) CountActive(ctx context.Context, now time.Time) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	n := 0
	for _, sub := range s.subs {
		if sub.ActiveAt(now) {
			n++
		}
	}
	return n, nil
}
