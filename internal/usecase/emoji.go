package usecase

import "strings"

const defaultEmoji = "📰"

type emojiRule struct {
	keywords []string
	emoji    string
}

// Order matters: the first group with a keyword contained in the title wins.
var emojiRules = []emojiRule{
	{keywords: []string{"bitcoin", "btc"}, emoji: "₿"},
	{keywords: []string{"ethereum", "eth"}, emoji: "Ξ"},
	{keywords: []string{"prix", "price", "cours"}, emoji: "📊"},
	{keywords: []string{"régulation", "regulation", "loi", "law"}, emoji: "⚖️"},
	{keywords: []string{"hack", "piratage", "vol"}, emoji: "🔒"},
	{keywords: []string{"adoption", "partenariat", "partnership"}, emoji: "🤝"},
}

// PickEmoji maps a title to a symbol by substring match on the lowercased title.
func PickEmoji(title string) string {
	lower := strings.ToLower(title)
	for _, rule := range emojiRules {
		for _, kw := range rule.keywords {
			if strings.Contains(lower, kw) {
				return rule.emoji
			}
		}
	}
	return defaultEmoji
}
