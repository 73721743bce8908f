// File: internal/usecase/news_uc.go
package usecase

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"crypto-actus-bot/internal/domain"
	"crypto-actus-bot/internal/domain/markup"
	"crypto-actus-bot/internal/domain/model"
	"crypto-actus-bot/internal/domain/ports/adapter"
	"crypto-actus-bot/internal/infra/logging"
	"crypto-actus-bot/internal/infra/metrics"
)

// Compile-time check
var _ NewsUseCase = (*newsUC)(nil)

const (
	DefaultNewsLimit = 5
	entrySeparator   = "✨————————————————————✨"
)

// NewsUseCase turns the upstream feed into a ready-to-send MarkdownV2 message.
// FetchNews never fails: every failure path resolves to a localized, escaped text.
type NewsUseCase interface {
	FetchNews(ctx context.Context) string
}

// Translator is the subset of the i18n translator the use cases need.
type Translator interface {
	T(key string, args ...interface{}) string
}

type newsUC struct {
	provider adapter.NewsProvider
	tr       Translator
	limit    int
	log      *zerolog.Logger
}

func NewNewsUseCase(provider adapter.NewsProvider, tr Translator, limit int, logger *zerolog.Logger) *newsUC {
	if limit <= 0 {
		limit = DefaultNewsLimit
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &newsUC{provider: provider, tr: tr, limit: limit, log: logger}
}

func (n *newsUC) FetchNews(ctx context.Context) string {
	log := logging.With(ctx, n.log)
	defer logging.TraceDuration(log, "NewsUC.FetchNews")()

	start := time.Now()
	feed, err := n.provider.FetchLatest(ctx)
	elapsed := time.Since(start)

	if err != nil {
		switch {
		case errors.Is(err, domain.ErrUpstreamTimeout):
			metrics.ObserveNewsFetch(metrics.ResultTimeout, elapsed)
			log.Error().Err(err).Dur("elapsed", elapsed).Msg("news upstream timed out")
			return n.plain("error_timeout")
		case errors.Is(err, domain.ErrUpstreamUnavailable):
			metrics.ObserveNewsFetch(metrics.ResultUnavailable, elapsed)
			log.Error().Err(err).Msg("news upstream unavailable")
			return n.plain("error_connection")
		default:
			metrics.ObserveNewsFetch(metrics.ResultError, elapsed)
			log.Error().Err(err).Msg("news fetch failed")
			return n.plain("error_unexpected")
		}
	}

	if feed == nil || feed.Status != model.FeedOK {
		metrics.ObserveNewsFetch(metrics.ResultUnexpectedFormat, elapsed)
		status := model.FeedUnexpectedFormat
		if feed != nil {
			status = feed.Status
		}
		log.Error().Str("status", status.String()).Msg("news payload rejected")
		return n.plain("error_unexpected_format")
	}

	selected := feed.Top(n.limit)
	entries := make([]string, 0, len(selected))
	for i, raw := range selected {
		article, err := raw.Decode()
		if err != nil {
			metrics.IncArticleSkipped()
			log.Warn().Err(err).Int("index", i).Msg("skipping news article")
			continue
		}
		entries = append(entries, n.formatArticle(article))
	}

	if len(entries) == 0 {
		metrics.ObserveNewsFetch(metrics.ResultEmpty, elapsed)
		log.Info().Int("received", len(feed.Articles)).Msg("no usable news articles")
		return n.plain("news_empty")
	}

	metrics.ObserveNewsFetch(metrics.ResultOK, elapsed)
	log.Info().Int("articles", len(entries)).Int("received", len(feed.Articles)).Msg("news formatted")
	return n.render(entries)
}

func (n *newsUC) render(entries []string) string {
	var b strings.Builder
	b.WriteString(markup.Bold(markup.EscapeMarkdownV2(n.tr.T("news_header"))))
	b.WriteString("\n\n")
	b.WriteString(strings.Join(entries, "\n\n"+entrySeparator+"\n\n"))
	return b.String()
}

func (n *newsUC) formatArticle(a model.NewsArticle) string {
	title := a.Title
	if title == "" {
		title = n.tr.T("news_default_title")
	}
	source := a.Source
	if source == "" {
		source = n.tr.T("news_default_source")
	}

	var b strings.Builder
	b.WriteString(PickEmoji(title))
	b.WriteString(" ")
	b.WriteString(markup.Bold(markup.EscapeMarkdownV2(title)))
	b.WriteString("\n📌 ")
	b.WriteString(markup.EscapeMarkdownV2(n.tr.T("news_source", source)))
	b.WriteString("\n🔗 ")
	if a.HasLink() {
		b.WriteString(markup.Link(markup.EscapeMarkdownV2(n.tr.T("news_read_article")), a.URL))
	} else {
		b.WriteString(markup.EscapeMarkdownV2(n.tr.T("news_link_unavailable")))
	}
	return b.String()
}

// plain renders a static localized message so it is safe to send as MarkdownV2.
func (n *newsUC) plain(key string) string {
	return markup.EscapeMarkdownV2(n.tr.T(key))
}
