// Package markup holds the Telegram MarkdownV2 escaping helpers.
package markup

import "strings"

// strings.Replacer substitutes in a single pass, which gives the same result as doubling
// backslashes before escaping the other characters.
var markdownV2Replacer = strings.NewReplacer(
	`\`, `\\`,
	`_`, `\_`,
	`*`, `\*`,
	`[`, `\[`,
	`]`, `\]`,
	`(`, `\(`,
	`)`, `\)`,
	`~`, `\~`,
	"`", "\\`",
	`>`, `\>`,
	`#`, `\#`,
	`+`, `\+`,
	`-`, `\-`,
	`=`, `\=`,
	`|`, `\|`,
	`{`, `\{`,
	`}`, `\}`,
	`.`, `\.`,
	`!`, `\!`,
)

var linkURLReplacer = strings.NewReplacer(
	`\`, `\\`,
	`)`, `\)`,
)

// EscapeMarkdownV2 escapes text so Telegram renders it literally in MarkdownV2 mode.
// Escaping already-escaped text escapes it again.
func EscapeMarkdownV2(text string) string {
	return markdownV2Replacer.Replace(text)
}

// EscapeLinkURL escapes the target part of an inline link: [label](target).
func EscapeLinkURL(url string) string {
	return linkURLReplacer.Replace(url)
}

// Bold wraps already-escaped text in MarkdownV2 bold markers.
func Bold(escaped string) string { return "*" + escaped + "*" }

// Italic wraps already-escaped text in MarkdownV2 italic markers.
func Italic(escaped string) string { return "_" + escaped + "_" }

// Link renders an inline link from an escaped label and a raw URL.
func Link(escapedLabel, url string) string {
	return "[" + escapedLabel + "](" + EscapeLinkURL(url) + ")"
}
