package llm

import (
	"net/url"
	"strings"
)

const (
	// bodySeparator splits the reply body from its trailing link section.
	bodySeparator = "^^SEP^^"
	// linkSeparator splits the link section into individual entries.
	linkSeparator = "^^URL^^"
)

// ParseReply splits a raw model reply into body text and link buttons.
// A reply without the separator is all body.
func ParseReply(raw string) ParsedReply {
	body, linkSection, found := strings.Cut(raw, bodySeparator)
	if !found {
		return ParsedReply{Body: strings.TrimSpace(raw)}
	}

	parsed := ParsedReply{Body: strings.TrimSpace(body)}
	for _, entry := range strings.Split(linkSection, linkSeparator) {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		link, label := splitLastPipe(entry)
		if label == "" {
			label = domainFromURL(link)
		}
		parsed.Links = append(parsed.Links, URLButton{URL: link, Label: label})
	}
	return parsed
}

// splitLastPipe splits on the last pipe so labels survive URLs that
// themselves contain pipes.
func splitLastPipe(input string) (string, string) {
	idx := strings.LastIndex(input, "|")
	if idx == -1 {
		return input, ""
	}
	return input[:idx], input[idx+1:]
}

// domainFromURL derives a button label from a URL's host, dropping a
// leading "www.". Unparseable URLs fall back to the raw string.
func domainFromURL(raw string) string {
	parsed, err := url.Parse(raw)
	if err != nil || parsed.Hostname() == "" {
		return raw
	}
	return strings.TrimPrefix(parsed.Hostname(), "www.")
}
