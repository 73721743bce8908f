package application

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"crypto-actus-bot/internal/domain/markup"
	"crypto-actus-bot/internal/domain/model"
	"crypto-actus-bot/internal/infra/logging"
	"crypto-actus-bot/internal/infra/metrics"
	"crypto-actus-bot/internal/usecase"
)

var errNoReplyChannel = errors.New("command has no reply channel")

type commandHandler func(ctx context.Context, cmd model.Command) error

// commandRoute pairs a handler with the translation key sent when it fails outright.
type commandRoute struct {
	handle     commandHandler
	failureKey string
}

// Dispatcher routes platform-agnostic commands to their responders.
// Replies go back through cmd.Reply, so the transport only forwards updates.
type Dispatcher struct {
	news    usecase.NewsUseCase
	tr      usecase.Translator
	version string
	log     *zerolog.Logger
	routes  map[string]commandRoute
}

func NewDispatcher(news usecase.NewsUseCase, tr usecase.Translator, version string, logger *zerolog.Logger) (*Dispatcher, error) {
	if news == nil {
		return nil, errors.New("news usecase is nil")
	}
	if tr == nil {
		return nil, errors.New("translator is nil")
	}
	if logger == nil {
		logger = logging.Nop()
	}
	d := &Dispatcher{news: news, tr: tr, version: version, log: logger}
	d.routes = d.commandRoutes()
	return d, nil
}

// commandRoutes defines all available bot commands and their handlers.
func (d *Dispatcher) commandRoutes() map[string]commandRoute {
	return map[string]commandRoute{
		"start": {handle: d.handleStart, failureKey: "error_unexpected"},
		"help":  {handle: d.handleHelp, failureKey: "error_unexpected"},
		"actus": {handle: d.handleNews, failureKey: "error_news_failed"},
		"news":  {handle: d.handleNews, failureKey: "error_news_failed"},
	}
}

// Commands lists the routed command names.
func (d *Dispatcher) Commands() []string {
	names := make([]string, 0, len(d.routes))
	for name := range d.routes {
		names = append(names, name)
	}
	return names
}

// Dispatch runs the handler registered for cmd.Name. Unknown commands are ignored.
// The returned error means the user received no reply at all.
func (d *Dispatcher) Dispatch(ctx context.Context, cmd model.Command) (err error) {
	route, ok := d.routes[cmd.Name]
	if cmd.ID != "" {
		ctx = logging.WithCommandID(ctx, cmd.ID)
	}
	if cmd.UserID != 0 {
		ctx = logging.WithTgID(ctx, cmd.UserID)
	}
	log := logging.With(ctx, d.log)

	if !ok {
		log.Debug().Str("command", cmd.Name).Msg("ignoring unknown command")
		return nil
	}
	if cmd.Reply == nil {
		return errNoReplyChannel
	}
	metrics.IncTelegramCommand("/" + cmd.Name)

	defer func() {
		if rec := recover(); rec != nil {
			log.Error().Interface("panic", rec).Str("command", cmd.Name).Msg("command handler panicked")
			err = d.sendFailure(ctx, cmd, route.failureKey)
		}
	}()

	log.Info().Str("command", cmd.Name).Str("username", cmd.Username).Msg("command received")
	return route.handle(ctx, cmd)
}

func (d *Dispatcher) handleStart(ctx context.Context, cmd model.Command) error {
	text := markup.EscapeMarkdownV2(d.tr.T("welcome_message")) + "\n\n" +
		markup.Italic(markup.EscapeMarkdownV2(d.tr.T("welcome_version", d.version)))
	return d.send(ctx, cmd, model.Message{Text: text, ParseMode: model.ParseModeMarkdownV2})
}

func (d *Dispatcher) handleHelp(ctx context.Context, cmd model.Command) error {
	return d.send(ctx, cmd, model.Message{Text: d.tr.T("help_message")})
}

func (d *Dispatcher) handleNews(ctx context.Context, cmd model.Command) error {
	log := logging.With(ctx, d.log)

	acked := true
	if err := d.send(ctx, cmd, model.Message{Text: d.tr.T("news_searching")}); err != nil {
		acked = false
		log.Warn().Err(err).Msg("news acknowledgement not delivered")
	}

	text := d.news.FetchNews(ctx)
	err := d.send(ctx, cmd, model.Message{
		Text:               text,
		ParseMode:          model.ParseModeMarkdownV2,
		DisableLinkPreview: true,
	})
	if err == nil {
		return nil
	}
	log.Error().Err(err).Msg("news reply not delivered")

	if ferr := d.sendFailure(ctx, cmd, "error_news_failed"); ferr != nil && !acked {
		return ferr
	}
	return nil
}

// sendFailure delivers the failure text for key as plain text.
func (d *Dispatcher) sendFailure(ctx context.Context, cmd model.Command, key string) error {
	if err := d.send(ctx, cmd, model.Message{Text: d.tr.T(key)}); err != nil {
		logging.With(ctx, d.log).Error().Err(err).Msg("failure notice not delivered")
		return err
	}
	return nil
}

func (d *Dispatcher) send(ctx context.Context, cmd model.Command, msg model.Message) error {
	if err := cmd.Reply.Send(ctx, msg); err != nil {
		metrics.IncSendFailure()
		return fmt.Errorf("send reply for /%s: %w", cmd.Name, err)
	}
	return nil
}
