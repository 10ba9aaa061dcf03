package app

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/satriacloudx/BotDracinV2/internal/domain"
	"github.com/satriacloudx/BotDracinV2/internal/ports"
)

// CatalogService possède les enregistrements drama/épisode.
type CatalogService struct {
	repo ports.CatalogRepository
	bus  ports.EventBus

	coll   *collate.Collator
	folder cases.Caser
}

func NewCatalogService(repo ports.CatalogRepository, bus ports.EventBus) *CatalogService {
	return &CatalogService{
		repo:   repo,
		bus:    bus,
		coll:   collate.New(language.Und, collate.IgnoreCase),
		folder: cases.Fold(),
	}
}

// UpsertDramaMeta crée le drama si absent, sinon met à jour titre et
// vignette en préservant tous les épisodes existants.
func (s *CatalogService) UpsertDramaMeta(ctx context.Context, id, title, thumbnailRef string) (domain.Drama, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Drama{}, fmt.Errorf("%w: empty drama id", ports.ErrInvalidCaption)
	}
	// "page"/"page_..." rendraient les tokens ep_<id>_<n> ambigus avec la
	// famille ep_page_...; réservés, refusés à l'ingestion.
	if id == "page" || strings.HasPrefix(id, "page_") {
		return domain.Drama{}, fmt.Errorf("%w: drama id %q is reserved", ports.ErrInvalidCaption, id)
	}
	title = strings.TrimSpace(title)
	if title == "" {
		title = "Unknown"
	}

	d, err := s.repo.UpsertMeta(ctx, id, title, thumbnailRef)
	if err != nil {
		return domain.Drama{}, err
	}
	s.publish("drama.upserted", map[string]any{"id": d.ID, "title": d.Title})
	return d, nil
}

func (s *CatalogService) AppendEpisode(ctx context.Context, dramaID, videoRef string) (domain.EpisodeNumber, error) {
	n, err := s.repo.AppendEpisode(ctx, dramaID, videoRef)
	if err != nil {
		return 0, err
	}
	s.publish("episode.appended", map[string]any{"dramaId": dramaID, "episode": n})
	return n, nil
}

func (s *CatalogService) Get(ctx context.Context, id string) (domain.Drama, error) {
	return s.repo.Get(ctx, id)
}

// ListDramas renvoie le catalogue trié par titre (collation insensible à la
// casse).
func (s *CatalogService) ListDramas(ctx context.Context, ascending bool) ([]domain.Drama, error) {
	dramas, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(dramas, func(i, j int) bool {
		cmp := s.coll.CompareString(dramas[i].Title, dramas[j].Title)
		if cmp == 0 {
			// titres égaux: départage stable sur l'id
			cmp = strings.Compare(dramas[i].ID, dramas[j].ID)
		}
		if ascending {
			return cmp < 0
		}
		return cmp > 0
	})
	return dramas, nil
}

// Episodes renvoie les numéros en ordre numérique croissant.
func (s *CatalogService) Episodes(ctx context.Context, dramaID string) ([]domain.EpisodeNumber, error) {
	d, err := s.repo.Get(ctx, dramaID)
	if err != nil {
		return nil, err
	}
	nums := make([]domain.EpisodeNumber, 0, len(d.Episodes))
	for n := range d.Episodes {
		nums = append(nums, n)
	}
	sort.Slice(nums, func(i, j int) bool { return nums[i] < nums[j] })
	return nums, nil
}

// Search: sous-chaîne insensible à la casse sur les titres, résultats triés.
func (s *CatalogService) Search(ctx context.Context, query string) ([]domain.Drama, error) {
	query = s.folder.String(strings.TrimSpace(query))
	if query == "" {
		return nil, nil
	}
	dramas, err := s.ListDramas(ctx, true)
	if err != nil {
		return nil, err
	}
	out := make([]domain.Drama, 0)
	for _, d := range dramas {
		if strings.Contains(s.folder.String(d.Title), query) {
			out = append(out, d)
		}
	}
	return out, nil
}

func (s *CatalogService) Stats(ctx context.Context) (dramas, episodes int, err error) {
	return s.repo.Count(ctx)
}

func (s *CatalogService) publish(topic string, v any) {
	if s.bus == nil {
		return
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	s.bus.Publish(topic, b)
}
