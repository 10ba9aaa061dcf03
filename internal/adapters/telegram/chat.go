package telegram

import (
	"context"
	"encoding/json"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/satriacloudx/BotDracinV2/internal/domain"
)

// Implémentation de ports.Chat. Le contexte est accepté pour la signature du
// port; le client Bot API applique ses propres timeouts.

func (b *Bot) SendView(ctx context.Context, chatID int64, v domain.View) (int, error) {
	msg := tgbotapi.NewMessage(chatID, v.Text)
	if kb, ok := keyboard(v); ok {
		msg.ReplyMarkup = kb
	}
	sent, err := b.api.Send(msg)
	if err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

func (b *Bot) EditView(ctx context.Context, chatID int64, messageID int, v domain.View) error {
	var err error
	if kb, ok := keyboard(v); ok {
		_, err = b.api.Send(tgbotapi.NewEditMessageTextAndMarkup(chatID, messageID, v.Text, kb))
	} else {
		_, err = b.api.Send(tgbotapi.NewEditMessageText(chatID, messageID, v.Text))
	}
	return err
}

func (b *Bot) Delete(ctx context.Context, chatID int64, messageID int) error {
	_, err := b.api.Request(tgbotapi.NewDeleteMessage(chatID, messageID))
	return err
}

func (b *Bot) SendProtectedVideo(ctx context.Context, chatID int64, videoRef, caption string) (int, error) {
	resp, err := b.api.MakeRequest("sendVideo", protectedVideoParams(chatID, videoRef, caption))
	if err != nil {
		return 0, err
	}
	var sent tgbotapi.Message
	if err := json.Unmarshal(resp.Result, &sent); err != nil {
		return 0, err
	}
	return sent.MessageID, nil
}

// protectedVideoParams construit l'appel sendVideo brut. Le client s'arrête au
// Bot API 5.5 et sa config typée ne connaît pas protect_content (5.6); on pose
// donc le flag dans les params nous-mêmes plutôt que de le perdre.
func protectedVideoParams(chatID int64, videoRef, caption string) tgbotapi.Params {
	params := make(tgbotapi.Params)
	params.AddNonZero64("chat_id", chatID)
	params["video"] = videoRef
	params.AddNonEmpty("caption", caption)
	params.AddBool("protect_content", true)
	return params
}

func keyboard(v domain.View) (tgbotapi.InlineKeyboardMarkup, bool) {
	rows := make([][]tgbotapi.InlineKeyboardButton, 0, len(v.Rows))
	for _, row := range v.Rows {
		if len(row) == 0 {
			continue
		}
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, btn := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(btn.Label, btn.Action))
		}
		rows = append(rows, buttons)
	}
	if len(rows) == 0 {
		return tgbotapi.InlineKeyboardMarkup{}, false
	}
	return tgbotapi.NewInlineKeyboardMarkup(rows...), true
}
