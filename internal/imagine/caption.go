package imagine

import (
	"regexp"
	"strings"
)

var (
	boldSegment = regexp.MustCompile(`\*\*(.*?)\*\*`)
	angleSpans  = regexp.MustCompile(`<.*?>`)
	urlSpans    = regexp.MustCompile(`https?://\S*\s?`)
)

// ExtractCaption recovers the human-readable prompt from a generation's
// content descriptor. The backend wraps the prompt in ** markers and mixes
// in angle-bracketed tags and source URLs, none of which belong in a chat
// caption.
func ExtractCaption(content string) string {
	result := content
	if match := boldSegment.FindStringSubmatch(content); match != nil {
		result = match[1]
	}
	result = angleSpans.ReplaceAllString(result, "")
	result = urlSpans.ReplaceAllString(result, "")
	return strings.TrimSpace(result)
}
