package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"crypto-actus-bot/internal/config"
	"crypto-actus-bot/internal/domain"
	"crypto-actus-bot/internal/domain/model"
	"crypto-actus-bot/internal/infra/logging"
	"crypto-actus-bot/internal/infra/worker"
)

const pollTimeoutSeconds = 60

// CommandDispatcher is what the transport hands parsed commands to.
type CommandDispatcher interface {
	Dispatch(ctx context.Context, cmd model.Command) error
}

// MenuCommand is one entry of the client-side command menu.
type MenuCommand struct {
	Command     string
	Description string
}

// RealTelegramBotAdapter uses tgbotapi to receive updates and delegates commands to the dispatcher.
type RealTelegramBotAdapter struct {
	bot        *tgbotapi.BotAPI
	cfg        *config.BotConfig
	dispatcher CommandDispatcher
	log        *zerolog.Logger

	mu            sync.Mutex
	cancelPolling context.CancelFunc
}

func NewRealTelegramBotAdapter(cfg *config.BotConfig, dispatcher CommandDispatcher, logger *zerolog.Logger) (*RealTelegramBotAdapter, error) {
	if cfg == nil {
		return nil, errors.New("bot config is nil")
	}
	if dispatcher == nil {
		return nil, errors.New("command dispatcher is nil")
	}
	if strings.TrimSpace(cfg.Token) == "" {
		return nil, domain.ErrMissingToken
	}
	if logger == nil {
		logger = logging.Nop()
	}

	endpoint := cfg.APIEndpoint
	if endpoint == "" {
		endpoint = tgbotapi.APIEndpoint
	}
	// getMe runs here, so a bad token fails at startup.
	bot, err := tgbotapi.NewBotAPIWithClient(cfg.Token, endpoint, &http.Client{})
	if err != nil {
		return nil, fmt.Errorf("telegram auth: %w", logging.RedactError(err, cfg.Token))
	}
	bot.Debug = cfg.Debug

	return &RealTelegramBotAdapter{
		bot:        bot,
		cfg:        cfg,
		dispatcher: dispatcher,
		log:        logger,
	}, nil
}

// Username is the bot's @handle as reported by getMe.
func (r *RealTelegramBotAdapter) Username() string {
	return r.bot.Self.UserName
}

// StartPolling removes any webhook, then long-polls getUpdates and fans updates out to
// cfg.Workers goroutines. It blocks until ctx is cancelled or StopPolling is called.
// Updates already received are handled before it returns.
func (r *RealTelegramBotAdapter) StartPolling(ctx context.Context) error {
	if _, err := r.bot.Request(tgbotapi.DeleteWebhookConfig{}); err != nil {
		return fmt.Errorf("delete webhook: %w", r.redact(err))
	}

	ctx, cancel := context.WithCancel(ctx)
	r.mu.Lock()
	r.cancelPolling = cancel
	r.mu.Unlock()
	defer cancel()

	// Handlers outlive the polling loop so queued updates still get their replies.
	taskCtx := context.WithoutCancel(ctx)
	pool := worker.NewPool(r.cfg.Workers, r.log)
	pool.Start(taskCtx)
	defer pool.Stop()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = pollTimeoutSeconds
	updates := r.bot.GetUpdatesChan(u)
	defer r.bot.StopReceivingUpdates()

	r.log.Info().Int("workers", pool.Size()).Str("bot", r.Username()).Msg("polling started")
	for {
		select {
		case <-ctx.Done():
			n := r.flushBuffered(taskCtx, pool, updates)
			r.log.Info().Int("flushed", n).Msg("polling stopped")
			return ctx.Err()
		case up, ok := <-updates:
			if !ok {
				return nil
			}
			r.submit(taskCtx, pool, up)
		}
	}
}

func (r *RealTelegramBotAdapter) submit(ctx context.Context, pool *worker.Pool, up tgbotapi.Update) {
	if err := pool.Submit(ctx, func(ctx context.Context) error {
		return r.HandleUpdate(ctx, up)
	}); err != nil {
		r.log.Error().Err(err).Int("update_id", up.UpdateID).Msg("update not queued")
	}
}

// flushBuffered queues updates tgbotapi already fetched but the loop has not read yet.
func (r *RealTelegramBotAdapter) flushBuffered(ctx context.Context, pool *worker.Pool, updates tgbotapi.UpdatesChannel) int {
	n := 0
	for {
		select {
		case up, ok := <-updates:
			if !ok {
				return n
			}
			r.submit(ctx, pool, up)
			n++
		default:
			return n
		}
	}
}

func (r *RealTelegramBotAdapter) StopPolling() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancelPolling != nil {
		r.cancelPolling()
	}
}

// HandleUpdate turns one update into a command and dispatches it synchronously.
// Updates that carry no bot command are ignored.
func (r *RealTelegramBotAdapter) HandleUpdate(ctx context.Context, update tgbotapi.Update) error {
	cmd, ok := r.commandFromUpdate(update)
	if !ok {
		return nil
	}
	return r.dispatcher.Dispatch(ctx, cmd)
}

// EnsureWebhook points Telegram at <baseURL>/<token>, calling setWebhook only when the
// registered URL differs.
func (r *RealTelegramBotAdapter) EnsureWebhook(ctx context.Context, baseURL string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if baseURL == "" {
		return errors.New("webhook url is empty")
	}
	target := baseURL + "/" + r.cfg.Token

	info, err := r.bot.GetWebhookInfo()
	if err != nil {
		return fmt.Errorf("get webhook info: %w", r.redact(err))
	}
	if info.URL == target {
		r.log.Info().Str("url", baseURL+"/"+logging.Redact(r.cfg.Token, false)).Msg("webhook already registered")
		return nil
	}

	wh, err := tgbotapi.NewWebhook(target)
	if err != nil {
		return fmt.Errorf("build webhook: %w", r.redact(err))
	}
	if _, err := r.bot.Request(wh); err != nil {
		return fmt.Errorf("set webhook: %w", r.redact(err))
	}
	r.log.Info().Str("url", baseURL+"/"+logging.Redact(r.cfg.Token, false)).Msg("webhook registered")
	return nil
}

// SetupWebhook registers the webhook at startup. Registration is best effort: an empty URL
// is skipped and a failure is logged, so the HTTP server keeps serving either way. It
// reports whether the webhook is in place.
func (r *RealTelegramBotAdapter) SetupWebhook(ctx context.Context, baseURL string) bool {
	if strings.TrimSpace(baseURL) == "" {
		r.log.Warn().Msg("webhook url not set, skipping self-registration")
		return false
	}
	if err := r.EnsureWebhook(ctx, baseURL); err != nil {
		r.log.Error().Err(err).Msg("webhook registration failed, serving without it")
		return false
	}
	return true
}

// SetMenuCommands publishes the command menu shown by Telegram clients.
func (r *RealTelegramBotAdapter) SetMenuCommands(ctx context.Context, commands []MenuCommand) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	botCommands := make([]tgbotapi.BotCommand, 0, len(commands))
	for _, c := range commands {
		botCommands = append(botCommands, tgbotapi.BotCommand{Command: c.Command, Description: c.Description})
	}
	if _, err := r.bot.Request(tgbotapi.NewSetMyCommands(botCommands...)); err != nil {
		return fmt.Errorf("set my commands: %w", r.redact(err))
	}
	return nil
}

// Transport errors quote the request URL, which embeds the token.
func (r *RealTelegramBotAdapter) redact(err error) error {
	return logging.RedactError(err, r.cfg.Token)
}
