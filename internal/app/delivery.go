package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/satriacloudx/BotDracinV2/internal/domain"
	"github.com/satriacloudx/BotDracinV2/internal/ports"
)

// DeliveryService applique la discipline "un seul item live par user":
// chaque nouvelle livraison rétracte (best-effort) la paire précédente et la
// remplace en bloc dans la session.
type DeliveryService struct {
	logger   zerolog.Logger
	catalog  *CatalogService
	access   *AccessService
	sessions ports.SessionRepository
	chat     ports.Chat
}

func NewDeliveryService(logger zerolog.Logger, catalog *CatalogService, access *AccessService, sessions ports.SessionRepository, chat ports.Chat) *DeliveryService {
	return &DeliveryService{logger: logger, catalog: catalog, access: access, sessions: sessions, chat: chat}
}

// Deliver envoie l'épisode demandé.
//   - ErrNotFound si l'épisode n'existe pas au catalogue.
//   - ErrLocked si l'épisode est gaté et le requester non abonné; rien n'est
//     envoyé, la session reste intacte.
//   - Erreur transport sur l'envoi du contenu: remontée telle quelle, le
//     routeur la présente comme échec de livraison explicite.
func (s *DeliveryService) Deliver(ctx context.Context, dramaID string, ep domain.EpisodeNumber, requesterID int64) error {
	drama, err := s.catalog.Get(ctx, dramaID)
	if err != nil {
		return err
	}
	rec, ok := drama.Episodes[ep]
	if !ok {
		return fmt.Errorf("episode %d: %w", ep, ports.ErrNotFound)
	}

	entitled := s.access.IsEntitled(ctx, requesterID)
	if s.access.IsLocked(ep) && !entitled {
		return ports.ErrLocked
	}

	// Rétraction best-effort de la paire précédente. Un échec (message déjà
	// parti, etc.) est loggé et avalé, jamais bloquant.
	if prev, err := s.sessions.DeliveryFor(ctx, requesterID); err == nil {
		s.retract(ctx, requesterID, prev)
	}

	total := drama.MaxEpisode()
	caption := fmt.Sprintf("🎬 %s — Episode %d/%d", drama.Title, ep, total)
	videoMsgID, err := s.chat.SendProtectedVideo(ctx, requesterID, rec.VideoRef, caption)
	if err != nil {
		return fmt.Errorf("send episode: %w", err)
	}

	// La navigation part dans un message séparé du contenu protégé, pour
	// rester éditable indépendamment des sémantiques de protection.
	navMsgID, err := s.chat.SendView(ctx, requesterID, s.navView(drama, ep, entitled))
	if err != nil {
		s.logger.Warn().Err(err).Int64("user_id", requesterID).Msg("nav send failed")
		navMsgID = 0
	}

	return s.sessions.PutDelivery(ctx, domain.DeliverySession{
		UserID:     requesterID,
		DramaID:    dramaID,
		Episode:    ep,
		VideoMsgID: videoMsgID,
		NavMsgID:   navMsgID,
	})
}

func (s *DeliveryService) retract(ctx context.Context, userID int64, prev domain.DeliverySession) {
	for _, msgID := range []int{prev.VideoMsgID, prev.NavMsgID} {
		if msgID == 0 {
			continue
		}
		if err := s.chat.Delete(ctx, userID, msgID); err != nil {
			s.logger.Debug().Err(err).Int64("user_id", userID).Int("message_id", msgID).Msg("retract failed")
		}
	}
}

func (s *DeliveryService) navView(drama domain.Drama, ep domain.EpisodeNumber, entitled bool) domain.View {
	total := drama.MaxEpisode()

	var controls []domain.Button
	if ep > 1 {
		controls = append(controls, domain.Button{Label: "⬅️ Prev", Action: ActionEpisode(drama.ID, ep-1)})
	}
	controls = append(controls, domain.Button{
		Label:  fmt.Sprintf("Ep %d/%d", ep, total),
		Action: VerbNoop,
	})
	if next := ep + 1; next <= total {
		label := "Next ➡️"
		// Le contrôle "next" se rend verrouillé quand l'épisode suivant est
		// gaté et le requester non abonné.
		if s.access.IsLocked(next) && !entitled {
			label = "Next 🔒"
		}
		controls = append(controls, domain.Button{Label: label, Action: ActionEpisode(drama.ID, next)})
	}

	page := int(ep-1) / episodePageSize
	return domain.View{
		Text: fmt.Sprintf("🎬 %s", drama.Title),
		Rows: [][]domain.Button{
			controls,
			domain.Row(
				domain.Button{Label: "📂 Episodes", Action: ActionEpisodePage(drama.ID, page)},
				domain.Button{Label: "🏠 Menu", Action: VerbBack},
			),
		},
	}
}
