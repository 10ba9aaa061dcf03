package telegram

import (
	"context"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/satriacloudx/BotDracinV2/internal/app"
)

// Bot lie le routeur au Bot API Telegram. Liaison volontairement mécanique:
// updates entrants -> événements du routeur, vues -> inline keyboards.
type Bot struct {
	api    *tgbotapi.BotAPI
	logger zerolog.Logger
	router *app.Router
}

func New(token string, logger zerolog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}
	return &Bot{api: api, logger: logger}, nil
}

// SetRouter casse le cycle bot <-> routeur: le bot est construit d'abord
// (le routeur a besoin du ports.Chat), le routeur est branché ensuite.
func (b *Bot) SetRouter(r *app.Router) {
	b.router = r
}

func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// Run consomme les updates séquentiellement: un seul worker logique, chaque
// événement traité de bout en bout avant le suivant.
func (b *Bot) Run(ctx context.Context) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = 30
	updates := b.api.GetUpdatesChan(cfg)

	b.logger.Info().Str("username", b.Username()).Msg("bot polling")

	for {
		select {
		case <-ctx.Done():
			b.api.StopReceivingUpdates()
			return nil
		case upd, ok := <-updates:
			if !ok {
				return nil
			}
			b.handle(ctx, upd)
		}
	}
}

func (b *Bot) handle(ctx context.Context, upd tgbotapi.Update) {
	switch {
	case upd.CallbackQuery != nil:
		cq := upd.CallbackQuery
		// Toujours acquitter, y compris pour les verbes inconnus/no-op.
		if _, err := b.api.Request(tgbotapi.NewCallback(cq.ID, "")); err != nil {
			b.logger.Debug().Err(err).Msg("callback ack failed")
		}
		if cq.Message == nil {
			return
		}
		b.router.HandleAction(ctx, cq.From.ID, cq.Message.MessageID, cq.Data)

	case upd.Message != nil:
		m := upd.Message
		if m.From == nil {
			return
		}
		userID := m.From.ID

		switch {
		case m.IsCommand():
			if m.Command() == "start" {
				b.router.HandleStart(ctx, userID)
			}
		case len(m.Photo) > 0:
			// Telegram envoie plusieurs tailles; la dernière est la plus grande.
			largest := m.Photo[len(m.Photo)-1]
			b.router.HandleMedia(ctx, app.MediaEvent{
				UserID:   userID,
				Kind:     app.MediaPhoto,
				Caption:  m.Caption,
				MediaRef: largest.FileID,
			})
		case m.Video != nil:
			b.router.HandleMedia(ctx, app.MediaEvent{
				UserID:   userID,
				Kind:     app.MediaVideo,
				Caption:  m.Caption,
				MediaRef: m.Video.FileID,
			})
		case m.Text != "":
			b.router.HandleText(ctx, userID, m.Text)
		}
	}
}
