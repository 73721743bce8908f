//go:build !integration

package model

import (
	"errors"
	"testing"

	"crypto-actus-bot/internal/domain"
)

func TestRawArticleDecode(t *testing.T) {
	t.Run("should decode all fields", func(t *testing.T) {
		a, err := RawArticle(`{"title":"BTC up","url":"https://x.test/a","source":"coindesk","body":"..."}`).Decode()
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if a.Title != "BTC up" || a.URL != "https://x.test/a" || a.Source != "coindesk" {
			t.Errorf("unexpected article: %+v", a)
		}
		if !a.HasLink() {
			t.Error("expected article to have a link")
		}
	})

	t.Run("should blank missing, null and blank fields", func(t *testing.T) {
		a, err := RawArticle(`{"url":null,"source":"  "}`).Decode()
		if err != nil {
			t.Fatalf("expected no error, but got: %v", err)
		}
		if a.Title != "" {
			t.Errorf("expected empty title, got %q", a.Title)
		}
		if a.URL != DefaultArticleURL {
			t.Errorf("expected default url, got %q", a.URL)
		}
		if a.Source != "" {
			t.Errorf("expected empty source, got %q", a.Source)
		}
		if a.HasLink() {
			t.Error("placeholder url must not count as a link")
		}
	})

	t.Run("should reject non-object entries", func(t *testing.T) {
		for _, raw := range []string{`"just a string"`, `42`, `null`, `[1,2]`} {
			if _, err := RawArticle(raw).Decode(); !errors.Is(err, domain.ErrInvalidArticle) {
				t.Errorf("entry %s: expected ErrInvalidArticle, got %v", raw, err)
			}
		}
	})

	t.Run("should reject mistyped fields", func(t *testing.T) {
		if _, err := RawArticle(`{"title":12}`).Decode(); !errors.Is(err, domain.ErrInvalidArticle) {
			t.Errorf("expected ErrInvalidArticle, got %v", err)
		}
	})
}

func TestNewsFeedTop(t *testing.T) {
	feed := &NewsFeed{Status: FeedOK}
	for _, s := range []string{`{"title":"1"}`, `{"title":"2"}`, `{"title":"3"}`} {
		feed.Articles = append(feed.Articles, RawArticle(s))
	}

	if got := feed.Top(2); len(got) != 2 || string(got[1]) != `{"title":"2"}` {
		t.Errorf("Top(2) returned %v", got)
	}
	if got := feed.Top(5); len(got) != 3 {
		t.Errorf("Top(5) should return all 3 entries, got %d", len(got))
	}
	if got := feed.Top(0); got != nil {
		t.Errorf("Top(0) should be nil, got %v", got)
	}
	var nilFeed *NewsFeed
	if got := nilFeed.Top(5); got != nil {
		t.Errorf("nil feed Top should be nil, got %v", got)
	}
}

func TestFeedStatusString(t *testing.T) {
	if FeedOK.String() != "ok" || FeedUnexpectedFormat.String() != "unexpected_format" {
		t.Errorf("unexpected status strings: %s, %s", FeedOK, FeedUnexpectedFormat)
	}
}
