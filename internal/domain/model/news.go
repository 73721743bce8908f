package model

import (
	"encoding/json"
	"fmt"
	"strings"

	"crypto-actus-bot/internal/domain"
)

// DefaultArticleURL stands in for a missing article link.
const DefaultArticleURL = "#"

// UpstreamSuccessType is the envelope marker CryptoCompare uses for a successful response.
const UpstreamSuccessType = 100

// NewsArticle is one article as returned by the upstream API. A missing title or source is
// left empty so the presentation layer can substitute a localized label.
type NewsArticle struct {
	Title  string
	URL    string
	Source string
}

// HasLink reports whether the article carries a real link rather than the placeholder.
func (a NewsArticle) HasLink() bool {
	return a.URL != "" && a.URL != DefaultArticleURL
}

// RawArticle is a single undecoded entry of the upstream Data array.
type RawArticle json.RawMessage

type wireArticle struct {
	Title  *string `json:"title"`
	URL    *string `json:"url"`
	Source *string `json:"source"`
}

// Decode turns the raw entry into a NewsArticle. Absent, null or blank fields come back empty,
// except URL which becomes DefaultArticleURL. An entry that is not an object or has mistyped
// fields is ErrInvalidArticle.
func (r RawArticle) Decode() (NewsArticle, error) {
	trimmed := strings.TrimSpace(string(r))
	if !strings.HasPrefix(trimmed, "{") {
		return NewsArticle{}, fmt.Errorf("%w: entry is not an object", domain.ErrInvalidArticle)
	}
	var w wireArticle
	if err := json.Unmarshal(r, &w); err != nil {
		return NewsArticle{}, fmt.Errorf("%w: %v", domain.ErrInvalidArticle, err)
	}
	return NewsArticle{
		Title:  orDefault(w.Title, ""),
		URL:    orDefault(w.URL, DefaultArticleURL),
		Source: orDefault(w.Source, ""),
	}, nil
}

func orDefault(v *string, def string) string {
	if v == nil || strings.TrimSpace(*v) == "" {
		return def
	}
	return strings.TrimSpace(*v)
}

type FeedStatus int

const (
	FeedOK FeedStatus = iota
	FeedUnexpectedFormat
)

func (s FeedStatus) String() string {
	switch s {
	case FeedOK:
		return "ok"
	case FeedUnexpectedFormat:
		return "unexpected_format"
	default:
		return "unknown"
	}
}

// NewsFeed is the validated upstream response. Articles keep the upstream order.
type NewsFeed struct {
	Status   FeedStatus
	Articles []RawArticle
}

// Top returns at most n entries from the head of the feed.
func (f *NewsFeed) Top(n int) []RawArticle {
	if f == nil || n <= 0 {
		return nil
	}
	if len(f.Articles) < n {
		n = len(f.Articles)
	}
	return f.Articles[:n]
}
