package news

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"github.com/rs/zerolog"

	"crypto-actus-bot/internal/config"
	"crypto-actus-bot/internal/domain"
	"crypto-actus-bot/internal/domain/model"
	"crypto-actus-bot/internal/domain/ports/adapter"
	"crypto-actus-bot/internal/infra/httpclient"
	"crypto-actus-bot/internal/infra/logging"
)

// Compile-time check
var _ adapter.NewsProvider = (*CryptoCompareProvider)(nil)

// CryptoCompareProvider reads the CryptoCompare v2 news endpoint.
type CryptoCompareProvider struct {
	client   httpclient.Client
	endpoint string
	lang     string
	apiKey   string
	log      *zerolog.Logger
}

func NewCryptoCompareProvider(client httpclient.Client, cfg config.NewsConfig, logger *zerolog.Logger) (*CryptoCompareProvider, error) {
	if client == nil {
		return nil, errors.New("http client is nil")
	}
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, domain.ErrMissingNewsAPIKey
	}
	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = config.DefaultNewsEndpoint
	}
	if _, err := url.Parse(endpoint); err != nil {
		return nil, fmt.Errorf("parse news endpoint: %w", err)
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &CryptoCompareProvider{
		client:   client,
		endpoint: endpoint,
		lang:     cfg.Lang,
		apiKey:   cfg.APIKey,
		log:      logger,
	}, nil
}

type envelope struct {
	Type *int            `json:"Type"`
	Data json.RawMessage `json:"Data"`
}

// FetchLatest performs exactly one GET; nothing is retried.
func (p *CryptoCompareProvider) FetchLatest(ctx context.Context) (*model.NewsFeed, error) {
	query := url.Values{}
	if p.lang != "" {
		query.Set("lang", p.lang)
	}
	query.Set("api_key", p.apiKey)

	resp, err := p.client.Get(ctx, p.endpoint, query, nil)
	if err != nil {
		if isTimeout(err) {
			return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamTimeout, logging.RedactError(err, p.apiKey))
		}
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstreamUnavailable, logging.RedactError(err, p.apiKey))
	}
	if !resp.IsSuccess() {
		return nil, fmt.Errorf("%w: cryptocompare returned status %d body: %s",
			domain.ErrUpstreamUnavailable, resp.StatusCode(), responseSnippet(resp.Body()))
	}

	return p.parse(resp.Body()), nil
}

// parse validates the envelope. Malformed payloads are an expected outcome, not an error.
func (p *CryptoCompareProvider) parse(body []byte) *model.NewsFeed {
	var env envelope
	if err := json.Unmarshal(body, &env); err != nil {
		p.unexpected(body, fmt.Errorf("%w: body is not a json object: %v", domain.ErrUnexpectedFormat, err))
		return &model.NewsFeed{Status: model.FeedUnexpectedFormat}
	}
	if env.Type == nil || *env.Type != model.UpstreamSuccessType {
		p.unexpected(body, fmt.Errorf("%w: missing or non-success Type", domain.ErrUnexpectedFormat))
		return &model.NewsFeed{Status: model.FeedUnexpectedFormat}
	}
	if len(env.Data) == 0 || string(env.Data) == "null" {
		p.unexpected(body, fmt.Errorf("%w: missing Data", domain.ErrUnexpectedFormat))
		return &model.NewsFeed{Status: model.FeedUnexpectedFormat}
	}
	var entries []json.RawMessage
	if err := json.Unmarshal(env.Data, &entries); err != nil {
		p.unexpected(body, fmt.Errorf("%w: Data is not an array", domain.ErrUnexpectedFormat))
		return &model.NewsFeed{Status: model.FeedUnexpectedFormat}
	}

	feed := &model.NewsFeed{Status: model.FeedOK, Articles: make([]model.RawArticle, 0, len(entries))}
	for _, e := range entries {
		feed.Articles = append(feed.Articles, model.RawArticle(e))
	}
	return feed
}

func (p *CryptoCompareProvider) unexpected(body []byte, reason error) {
	p.log.Warn().
		Err(reason).
		Str("payload", responseSnippet(body)).
		Msg("unexpected news payload")
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var ne net.Error
	return errors.As(err, &ne) && ne.Timeout()
}

func responseSnippet(body []byte) string {
	const maxLen = 512
	s := strings.TrimSpace(string(body))
	if len(s) > maxLen {
		return s[:maxLen] + "..."
	}
	if s == "" {
		return "<empty>"
	}
	return s
}
