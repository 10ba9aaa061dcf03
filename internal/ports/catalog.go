package ports

import (
	"context"

	"github.com/satriacloudx/BotDracinV2/internal/domain"
)

type CatalogRepository interface {
	// UpsertMeta crée le drama s'il est absent (avec un set d'épisodes vide),
	// sinon met à jour titre et vignette en préservant les épisodes.
	UpsertMeta(ctx context.Context, id, title, thumbnailRef string) (domain.Drama, error)

	// AppendEpisode assigne max(existants)+1 de façon atomique.
	// Renvoie ErrNotFound si aucune méta n'existe pour dramaID.
	AppendEpisode(ctx context.Context, dramaID, videoRef string) (domain.EpisodeNumber, error)

	Get(ctx context.Context, id string) (domain.Drama, error)
	List(ctx context.Context) ([]domain.Drama, error)
	Count(ctx context.Context) (dramas, episodes int, err error)
}
