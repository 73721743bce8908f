package model

import "context"

// ParseMode names the markup the chat renderer applies to a message.
type ParseMode string

const (
	ParseModePlain      ParseMode = ""
	ParseModeMarkdownV2 ParseMode = "MarkdownV2"
)

// Message is one outbound chat message. It is built per request and never cached.
type Message struct {
	Text               string
	ParseMode          ParseMode
	DisableLinkPreview bool
}

// ReplyChannel is the transport handle a command replies through.
type ReplyChannel interface {
	Send(ctx context.Context, msg Message) error
}

// Command is a platform-agnostic user instruction such as /start or /actus.
type Command struct {
	ID       string
	Name     string
	Args     string
	UserID   int64
	Username string
	Reply    ReplyChannel
}
