package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/satriacloudx/BotDracinV2/internal/domain"
	"github.com/satriacloudx/BotDracinV2/internal/ports"
)

// IngestService: protocole d'ingestion en deux temps, réservé aux admins.
// Une vignette légendée "#<id> <titre>" lie l'admin à un drama actif; les
// vidéos suivantes s'y appendent jusqu'au prochain rebind ou reset.
// Limitation assumée: un admin ne peut pas entrelacer deux dramas — changer
// de cible passe par une nouvelle vignette.
type IngestService struct {
	logger   zerolog.Logger
	catalog  *CatalogService
	sessions ports.SessionRepository
}

func NewIngestService(logger zerolog.Logger, catalog *CatalogService, sessions ports.SessionRepository) *IngestService {
	return &IngestService{logger: logger, catalog: catalog, sessions: sessions}
}

// ParseCaption extrait (id, titre) d'une légende "#<id> <titre>".
// L'id est le token qui suit immédiatement le marqueur, coupé au premier
// blanc; le titre est le reste, "Unknown" si vide.
func ParseCaption(caption string) (id, title string, err error) {
	caption = strings.TrimSpace(caption)
	if !strings.HasPrefix(caption, "#") {
		return "", "", fmt.Errorf("%w: caption must start with #", ports.ErrInvalidCaption)
	}
	rest := caption[1:]
	if i := strings.IndexFunc(rest, isSpace); i >= 0 {
		id, title = rest[:i], strings.TrimSpace(rest[i:])
	} else {
		id = rest
	}
	if id == "" {
		return "", "", fmt.Errorf("%w: missing drama id after #", ports.ErrInvalidCaption)
	}
	if title == "" {
		title = "Unknown"
	}
	return id, title, nil
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

// HandleThumbnail transitionne toujours vers ActiveDrama(id, titre), quel que
// soit l'état précédent, et upsert la méta catalogue.
func (s *IngestService) HandleThumbnail(ctx context.Context, adminID int64, caption, thumbnailRef string) (domain.IngestSession, error) {
	id, title, err := ParseCaption(caption)
	if err != nil {
		return domain.IngestSession{}, err
	}

	if _, err := s.catalog.UpsertDramaMeta(ctx, id, title, thumbnailRef); err != nil {
		return domain.IngestSession{}, err
	}

	sess := domain.IngestSession{AdminID: adminID, DramaID: id, Title: title}
	if err := s.sessions.PutIngest(ctx, sess); err != nil {
		return domain.IngestSession{}, err
	}
	s.logger.Info().Int64("admin_id", adminID).Str("drama_id", id).Str("title", title).Msg("ingest bound")
	return sess, nil
}

// HandleVideo appende l'épisode au drama actif de l'admin.
// Sans drama actif: ErrNoActiveDrama, aucune mutation catalogue.
func (s *IngestService) HandleVideo(ctx context.Context, adminID int64, videoRef string) (domain.IngestSession, domain.EpisodeNumber, error) {
	sess, err := s.sessions.IngestFor(ctx, adminID)
	if err != nil {
		if err == ports.ErrNotFound {
			return domain.IngestSession{}, 0, ports.ErrNoActiveDrama
		}
		return domain.IngestSession{}, 0, err
	}

	n, err := s.catalog.AppendEpisode(ctx, sess.DramaID, videoRef)
	if err != nil {
		return domain.IngestSession{}, 0, err
	}
	s.logger.Info().Int64("admin_id", adminID).Str("drama_id", sess.DramaID).Int("episode", int(n)).Msg("episode ingested")
	return sess, n, nil
}

// Reset efface la liaison active de l'admin sans toucher au catalogue.
func (s *IngestService) Reset(ctx context.Context, adminID int64) error {
	return s.sessions.ClearIngest(ctx, adminID)
}

func (s *IngestService) Active(ctx context.Context, adminID int64) (domain.IngestSession, error) {
	return s.sessions.IngestFor(ctx, adminID)
}
