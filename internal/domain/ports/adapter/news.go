package adapter

import (
	"context"

	"crypto-actus-bot/internal/domain/model"
)

// NewsProvider fetches the latest articles from the upstream news API.
// Transport failures are returned as domain.ErrUpstreamTimeout or domain.ErrUpstreamUnavailable;
// a reachable upstream with a malformed payload yields a feed with FeedUnexpectedFormat.
type NewsProvider interface {
	FetchLatest(ctx context.Context) (*model.NewsFeed, error)
}
