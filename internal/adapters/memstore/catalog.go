package memstore

import (
	"context"
	"sync"
	"time"

	"github.com/satriacloudx/BotDracinV2/internal/domain"
	"github.com/satriacloudx/BotDracinV2/internal/ports"
)

type CatalogStore struct {
	mu     sync.RWMutex
	dramas map[string]domain.Drama
}

func NewCatalogStore() *CatalogStore {
	return &CatalogStore{dramas: make(map[string]domain.Drama)}
}

func (s *CatalogStore) UpsertMeta(ctx context.Context, id, title, thumbnailRef string) (domain.Drama, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	d, ok := s.dramas[id]
	if !ok {
		d = domain.Drama{
			ID:        id,
			Episodes:  make(map[domain.EpisodeNumber]domain.EpisodeRecord),
			CreatedAt: now,
		}
	}
	d.Title = title
	d.ThumbnailRef = thumbnailRef
	d.UpdatedAt = now
	s.dramas[id] = d
	return cloneDrama(d), nil
}

func (s *CatalogStore) AppendEpisode(ctx context.Context, dramaID, videoRef string) (domain.EpisodeNumber, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	d, ok := s.dramas[dramaID]
	if !ok {
		return 0, ports.ErrNotFound
	}
	n := d.MaxEpisode() + 1
	d.Episodes[n] = domain.EpisodeRecord{VideoRef: videoRef, AddedAt: time.Now().UTC()}
	d.UpdatedAt = time.Now().UTC()
	s.dramas[dramaID] = d
	return n, nil
}

func (s *CatalogStore) Get(ctx context.Context, id string) (domain.Drama, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d, ok := s.dramas[id]
	if !ok {
		return domain.Drama{}, ports.ErrNotFound
	}
	return cloneDrama(d), nil
}

func (s *CatalogStore) List(ctx context.Context) ([]domain.Drama, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Drama, 0, len(s.dramas))
	for _, d := range s.dramas {
		out = append(out, cloneDrama(d))
	}
	return out, nil
}

func (s *CatalogStore) Count(ctx context.Context) (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	episodes := 0
	for _, d := range s.dramas {
		episodes += len(d.Episodes)
	}
	return len(s.dramas), episodes, nil
}

// cloneDrama copie la map d'épisodes pour que les lecteurs ne voient jamais
// une map partagée avec le writer.
func cloneDrama(d domain.Drama) domain.Drama {
	eps := make(map[domain.EpisodeNumber]domain.EpisodeRecord, len(d.Episodes))
	for n, ep := range d.Episodes {
		eps[n] = ep
	}
	d.Episodes = eps
	return d
}
