package app

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"github.com/satriacloudx/BotDracinV2/internal/domain"
	"github.com/satriacloudx/BotDracinV2/internal/ports"
)

const (
	// Tailles de pages: liste de dramas et grille d'épisodes.
	dramaPageSize   = 8
	episodePageSize = 20

	episodeGridColumns = 5
	maxTokensListed    = 30
)

type MediaKind string

const (
	MediaPhoto MediaKind = "photo"
	MediaVideo MediaKind = "video"
)

type MediaEvent struct {
	UserID  int64
	Kind    MediaKind
	Caption string
	// MediaRef: identifiant du média côté transport (file_id).
	MediaRef string
}

// Router dispatche les événements entrants (actions interactives, uploads,
// texte libre) vers les services, et rend l'écran suivant.
type Router struct {
	logger   zerolog.Logger
	access   *AccessService
	catalog  *CatalogService
	ingest   *IngestService
	delivery *DeliveryService
	sessions ports.SessionRepository
	chat     ports.Chat

	// admins: allow-list figée au démarrage. Vide = fail-closed, aucun verbe
	// admin ne passe. Re-vérifiée à chaque dispatch, jamais depuis un claim
	// porté par le client.
	admins map[int64]bool
}

func NewRouter(logger zerolog.Logger, access *AccessService, catalog *CatalogService, ingest *IngestService, delivery *DeliveryService, sessions ports.SessionRepository, chat ports.Chat, admins map[int64]bool) *Router {
	if admins == nil {
		admins = map[int64]bool{}
	}
	return &Router{
		logger:   logger,
		access:   access,
		catalog:  catalog,
		ingest:   ingest,
		delivery: delivery,
		sessions: sessions,
		chat:     chat,
		admins:   admins,
	}
}

func (r *Router) isAdmin(userID int64) bool {
	return r.admins[userID]
}

// HandleStart répond à la commande de démarrage par un menu principal frais.
func (r *Router) HandleStart(ctx context.Context, userID int64) {
	_ = r.sessions.SetIntent(ctx, userID, domain.IntentIdle)
	r.render(ctx, userID, 0, r.mainMenuView(ctx, userID))
}

// HandleAction dispatche un action token pressé. messageID est le message
// porteur du contrôle: on tente l'édition in-place d'abord.
// Les tokens inconnus sont acquittés sans mutation ni re-render.
func (r *Router) HandleAction(ctx context.Context, userID int64, messageID int, data string) {
	act, ok := ParseAction(data)
	if !ok {
		r.logger.Debug().Int64("user_id", userID).Str("data", data).Msg("unknown action")
		return
	}

	switch act.Verb {
	case VerbNoop:
		return

	case VerbBack:
		r.render(ctx, userID, messageID, r.mainMenuView(ctx, userID))

	case VerbSearch:
		_ = r.sessions.SetIntent(ctx, userID, domain.IntentAwaitSearch)
		r.render(ctx, userID, messageID, promptView("🔍 Send a drama title to search."))

	case VerbRedeem:
		_ = r.sessions.SetIntent(ctx, userID, domain.IntentAwaitToken)
		r.render(ctx, userID, messageID, promptView("🎟 Send your token code."))

	case VerbSubscribe:
		r.render(ctx, userID, messageID, subscribeView())

	case VerbCheckSub:
		r.render(ctx, userID, messageID, r.subscriptionView(ctx, userID))

	case VerbDismissWarn:
		if err := r.access.DismissExpiryWarning(ctx, userID); err != nil && !errors.Is(err, ports.ErrNotFound) {
			r.logger.Warn().Err(err).Int64("user_id", userID).Msg("dismiss warning failed")
		}
		r.render(ctx, userID, messageID, r.subscriptionView(ctx, userID))

	case VerbList:
		r.render(ctx, userID, messageID, r.dramaListView(ctx, act.Page))

	case VerbDrama:
		r.render(ctx, userID, messageID, r.episodeGridView(ctx, userID, act.DramaID, 0))

	case VerbEpisodePage:
		r.render(ctx, userID, messageID, r.episodeGridView(ctx, userID, act.DramaID, act.Page))

	case VerbEpisode:
		r.handleDeliver(ctx, userID, messageID, act)

	case VerbAdminPanel, VerbGenToken, VerbCreateToken, VerbListTokens,
		VerbListSubs, VerbStats, VerbUpload, VerbResetDrama:
		r.handleAdminAction(ctx, userID, messageID, act)

	default:
		r.logger.Debug().Str("verb", act.Verb).Msg("unhandled verb")
	}
}

func (r *Router) handleDeliver(ctx context.Context, userID int64, messageID int, act Action) {
	err := r.delivery.Deliver(ctx, act.DramaID, act.Episode, userID)
	switch {
	case err == nil:
		// Contenu + navigation partis en messages frais; le menu reste.
	case errors.Is(err, ports.ErrLocked):
		r.render(ctx, userID, messageID, r.lockedContentView(act.DramaID, act.Episode))
	case errors.Is(err, ports.ErrNotFound):
		r.render(ctx, userID, messageID, guidanceView("😕 That episode isn't available.", backButton()))
	default:
		r.logger.Error().Err(err).Int64("user_id", userID).Str("drama_id", act.DramaID).Msg("delivery failed")
		r.render(ctx, userID, messageID, guidanceView("⚠️ Delivery failed. Please try again.", backButton()))
	}
}

func (r *Router) handleAdminAction(ctx context.Context, userID int64, messageID int, act Action) {
	if !r.isAdmin(userID) {
		// Refus laconique: ne révèle pas la surface admin.
		r.render(ctx, userID, messageID, guidanceView("⛔ Access denied.", backButton()))
		return
	}

	switch act.Verb {
	case VerbAdminPanel:
		r.render(ctx, userID, messageID, adminPanelView())

	case VerbGenToken:
		r.render(ctx, userID, messageID, genTokenView())

	case VerbCreateToken:
		code, err := r.access.GenerateToken(ctx, act.Plan, userID)
		if err != nil {
			r.logger.Error().Err(err).Msg("token generation failed")
			r.render(ctx, userID, messageID, guidanceView("⚠️ Could not create token.", adminBackButton()))
			return
		}
		r.render(ctx, userID, messageID, tokenCreatedView(code, act.Plan))

	case VerbListTokens:
		toks, err := r.access.ListTokens(ctx)
		if err != nil {
			r.logger.Error().Err(err).Msg("list tokens failed")
			return
		}
		r.render(ctx, userID, messageID, tokenListView(toks))

	case VerbListSubs:
		subs, err := r.access.ListSubscriptions(ctx)
		if err != nil {
			r.logger.Error().Err(err).Msg("list subscriptions failed")
			return
		}
		r.render(ctx, userID, messageID, r.subscriberListView(subs))

	case VerbStats:
		r.render(ctx, userID, messageID, r.statsView(ctx))

	case VerbUpload:
		r.render(ctx, userID, messageID, r.uploadHelpView(ctx, userID))

	case VerbResetDrama:
		if err := r.ingest.Reset(ctx, userID); err != nil {
			r.logger.Warn().Err(err).Int64("admin_id", userID).Msg("ingest reset failed")
		}
		r.render(ctx, userID, messageID, guidanceView("♻️ Active drama cleared. Send a new thumbnail to start uploading.", adminBackButton()))
	}
}

// HandleText consomme l'intent en attente (une seule fois, succès ou échec),
// puis répond. Sans intent: renvoie vers le menu.
func (r *Router) HandleText(ctx context.Context, userID int64, text string) {
	intent, err := r.sessions.TakeIntent(ctx, userID)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("take intent failed")
		return
	}

	switch intent {
	case domain.IntentAwaitSearch:
		r.handleSearch(ctx, userID, text)
	case domain.IntentAwaitToken:
		r.handleRedeem(ctx, userID, text)
	default:
		r.render(ctx, userID, 0, r.mainMenuView(ctx, userID))
	}
}

func (r *Router) handleSearch(ctx context.Context, userID int64, query string) {
	results, err := r.catalog.Search(ctx, query)
	if err != nil {
		r.logger.Error().Err(err).Msg("search failed")
		r.render(ctx, userID, 0, guidanceView("⚠️ Search failed. Please try again.", backButton()))
		return
	}
	r.render(ctx, userID, 0, searchResultsView(query, results))
}

func (r *Router) handleRedeem(ctx context.Context, userID int64, code string) {
	plan, err := r.access.RedeemToken(ctx, trimToken(code), userID)
	switch {
	case errors.Is(err, ports.ErrNotFound):
		r.render(ctx, userID, 0, guidanceView("❌ Token not found. Check the code and try Redeem again.", backButton()))
	case errors.Is(err, ports.ErrTokenUsed):
		r.render(ctx, userID, 0, guidanceView("❌ That token has already been used.", backButton()))
	case err != nil:
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("redeem failed")
		r.render(ctx, userID, 0, guidanceView("⚠️ Could not redeem the token. Please try again.", backButton()))
	default:
		r.render(ctx, userID, 0, r.redeemedView(ctx, userID, plan))
	}
}

// HandleMedia traite un upload (vignette ou vidéo). Admin uniquement.
func (r *Router) HandleMedia(ctx context.Context, ev MediaEvent) {
	if !r.isAdmin(ev.UserID) {
		r.render(ctx, ev.UserID, 0, guidanceView("⛔ Access denied.", backButton()))
		return
	}

	switch ev.Kind {
	case MediaPhoto:
		sess, err := r.ingest.HandleThumbnail(ctx, ev.UserID, ev.Caption, ev.MediaRef)
		if err != nil {
			if errors.Is(err, ports.ErrInvalidCaption) {
				r.render(ctx, ev.UserID, 0, guidanceView("✏️ Caption the thumbnail with: #<drama_id> <title>", adminBackButton()))
				return
			}
			r.logger.Error().Err(err).Int64("admin_id", ev.UserID).Msg("thumbnail ingest failed")
			r.render(ctx, ev.UserID, 0, guidanceView("⚠️ Could not register the drama. Please try again.", adminBackButton()))
			return
		}
		r.render(ctx, ev.UserID, 0, ingestBoundView(sess))

	case MediaVideo:
		sess, n, err := r.ingest.HandleVideo(ctx, ev.UserID, ev.MediaRef)
		if err != nil {
			if errors.Is(err, ports.ErrNoActiveDrama) {
				r.render(ctx, ev.UserID, 0, guidanceView("📌 No active drama. Send a thumbnail with caption #<drama_id> <title> first.", adminBackButton()))
				return
			}
			r.logger.Error().Err(err).Int64("admin_id", ev.UserID).Msg("video ingest failed")
			r.render(ctx, ev.UserID, 0, guidanceView("⚠️ Could not append the episode. Please try again.", adminBackButton()))
			return
		}
		r.render(ctx, ev.UserID, 0, episodeAddedView(sess, n))
	}
}

// render tente l'édition in-place du message porteur; en cas d'échec,
// fallback: envoi d'un message frais puis suppression best-effort du périmé.
func (r *Router) render(ctx context.Context, userID int64, messageID int, v domain.View) {
	if messageID > 0 {
		if err := r.chat.EditView(ctx, userID, messageID, v); err == nil {
			_ = r.sessions.SetMenu(ctx, userID, messageID)
			return
		} else {
			r.logger.Debug().Err(err).Int64("user_id", userID).Int("message_id", messageID).Msg("edit failed, sending fresh")
		}
	}

	newID, err := r.chat.SendView(ctx, userID, v)
	if err != nil {
		r.logger.Error().Err(err).Int64("user_id", userID).Msg("send view failed")
		return
	}
	if messageID > 0 {
		// échec secondaire avalé
		_ = r.chat.Delete(ctx, userID, messageID)
	}
	_ = r.sessions.SetMenu(ctx, userID, newID)
}
