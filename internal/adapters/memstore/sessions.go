package memstore

import (
	"context"
	"sync"

	"github.com/satriacloudx/BotDracinV2/internal/domain"
	"github.com/satriacloudx/BotDracinV2/internal/ports"
)

type SessionStore struct {
	mu         sync.RWMutex
	deliveries map[int64]domain.DeliverySession
	ingests    map[int64]domain.IngestSession
	intents    map[int64]domain.Intent
	menus      map[int64]int
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		deliveries: make(map[int64]domain.DeliverySession),
		ingests:    make(map[int64]domain.IngestSession),
		intents:    make(map[int64]domain.Intent),
		menus:      make(map[int64]int),
	}
}

func (s *SessionStore) DeliveryFor(ctx context.Context, userID int64) (domain.DeliverySession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.deliveries[userID]
	if !ok {
		return domain.DeliverySession{}, ports.ErrNotFound
	}
	return d, nil
}

func (s *SessionStore) PutDelivery(ctx context.Context, sess domain.DeliverySession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.deliveries[sess.UserID] = sess
	return nil
}

func (s *SessionStore) IngestFor(ctx context.Context, adminID int64) (domain.IngestSession, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	in, ok := s.ingests[adminID]
	if !ok {
		return domain.IngestSession{}, ports.ErrNotFound
	}
	return in, nil
}

func (s *SessionStore) PutIngest(ctx context.Context, sess domain.IngestSession) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ingests[sess.AdminID] = sess
	return nil
}

func (s *SessionStore) ClearIngest(ctx context.Context, adminID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ingests, adminID)
	return nil
}

func (s *SessionStore) TakeIntent(ctx context.Context, userID int64) (domain.Intent, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	it, ok := s.intents[userID]
	if !ok || it == "" {
		return domain.IntentIdle, nil
	}
	delete(s.intents, userID)
	return it, nil
}

func (s *SessionStore) SetIntent(ctx context.Context, userID int64, it domain.Intent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if it == domain.IntentIdle {
		delete(s.intents, userID)
		return nil
	}
	s.intents[userID] = it
	return nil
}

func (s *SessionStore) MenuFor(ctx context.Context, userID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.menus[userID], nil
}

func (s *SessionStore) SetMenu(ctx context.Context, userID int64, messageID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.menus[userID] = messageID
	return nil
}
