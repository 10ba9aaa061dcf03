package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/satriacloudx/BotDracinV2/internal/domain"
	"github.com/satriacloudx/BotDracinV2/internal/ports"
)

type TokenStore struct {
	mu     sync.RWMutex
	byCode map[string]domain.Token
	order  []string
}

func NewTokenStore() *TokenStore {
	return &TokenStore{byCode: make(map[string]domain.Token)}
}

func (s *TokenStore) Create(ctx context.Context, tok domain.Token) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.byCode[tok.Code]; exists {
		return ports.ErrConflict
	}
	s.byCode[tok.Code] = tok
	s.order = append(s.order, tok.Code)
	return nil
}

func (s *TokenStore) GetByCode(ctx context.Context, code string) (domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	tok, ok := s.byCode[code]
	if !ok {
		return domain.Token{}, ports.ErrNotFound
	}
	return tok, nil
}

func (s *TokenStore) MarkUsed(ctx context.Context, code string, userID int64, at time.Time) (domain.Token, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tok, ok := s.byCode[code]
	if !ok {
		return domain.Token{}, ports.ErrNotFound
	}
	if tok.Used {
		return domain.Token{}, ports.ErrTokenUsed
	}
	tok.Used = true
	tok.UsedBy = userID
	tok.UsedAt = at
	s.byCode[code] = tok
	return tok, nil
}

// List renvoie les tokens du plus récent au plus ancien.
func (s *TokenStore) List(ctx context.Context) ([]domain.Token, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Token, 0, len(s.order))
	for i := len(s.order) - 1; i >= 0; i-- {
		out = append(out, s.byCode[s.order[i]])
	}
	return out, nil
}
