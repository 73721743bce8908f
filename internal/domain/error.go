package domain

import "errors"

var (
	// Upstream news errors
	ErrUpstreamTimeout     = errors.New("news upstream timed out")
	ErrUpstreamUnavailable = errors.New("news upstream unavailable")
	ErrUnexpectedFormat    = errors.New("unexpected news payload format")
	ErrInvalidArticle      = errors.New("invalid news article")

	// Startup configuration errors
	ErrMissingToken      = errors.New("bot token is required")
	ErrMissingNewsAPIKey = errors.New("news api key is required")
)
