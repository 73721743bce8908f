package telegram

import (
	"context"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/oklog/ulid/v2"

	"crypto-actus-bot/internal/domain/model"
	"crypto-actus-bot/internal/infra/logging"
)

var _ model.ReplyChannel = (*chatReply)(nil)

// chatReply sends replies into the chat the command came from.
type chatReply struct {
	bot    *tgbotapi.BotAPI
	chatID int64
}

func (c *chatReply) Send(ctx context.Context, msg model.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	out := tgbotapi.NewMessage(c.chatID, msg.Text)
	out.ParseMode = string(msg.ParseMode)
	out.DisableWebPagePreview = msg.DisableLinkPreview
	if _, err := c.bot.Send(out); err != nil {
		return logging.RedactError(err, c.bot.Token)
	}
	return nil
}

// commandFromUpdate extracts a bot command addressed to this bot. Commands for another bot
// in a group chat (/actus@other_bot) are skipped.
func (r *RealTelegramBotAdapter) commandFromUpdate(update tgbotapi.Update) (model.Command, bool) {
	msg := update.Message
	if msg == nil || msg.Chat == nil || !msg.IsCommand() {
		return model.Command{}, false
	}
	if target := commandTarget(msg); target != "" && !strings.EqualFold(target, r.Username()) {
		return model.Command{}, false
	}

	cmd := model.Command{
		ID:    ulid.Make().String(),
		Name:  strings.ToLower(msg.Command()),
		Args:  strings.TrimSpace(msg.CommandArguments()),
		Reply: &chatReply{bot: r.bot, chatID: msg.Chat.ID},
	}
	if msg.From != nil {
		cmd.UserID = msg.From.ID
		cmd.Username = msg.From.UserName
	}
	return cmd, true
}

// commandTarget returns the bot name after '@' in "/cmd@bot", or "".
func commandTarget(msg *tgbotapi.Message) string {
	full := msg.CommandWithAt()
	if i := strings.Index(full, "@"); i >= 0 {
		return full[i+1:]
	}
	return ""
}
