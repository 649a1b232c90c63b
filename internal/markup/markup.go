// Package markup prepares text for Telegram MarkdownV2 rendering.
package markup

import "regexp"

var (
	specials  = regexp.MustCompile("[_\\[\\]~`>#+\\-=|{}.!]")
	citations = regexp.MustCompile(`【\d+:\d+†source】`)
)

// Escape prefixes every MarkdownV2 control character with a single backslash.
// Text free of control characters passes through unchanged, so escaping
// already-clean text twice is a no-op.
func Escape(s string) string {
	return specials.ReplaceAllString(s, `\$0`)
}

// Clean escapes s and then removes assistant citation markers of the form
// 【12:3†source】 that the file-search tool leaves in replies.
func Clean(s string) string {
	return citations.ReplaceAllString(Escape(s), "")
}
