package ai

import (
	"regexp"
	"strings"
	"unicode"
)

// tagStripper removes a reasoning span and any unpaired open or close tag.
type tagStripper struct {
	span     *regexp.Regexp
	openTag  string
	closeTag string
}

func newTagStripper(tag string) tagStripper {
	openTag := "<" + tag + ">"
	closeTag := "</" + tag + ">"
	return tagStripper{
		span:     regexp.MustCompile(`(?s)` + regexp.QuoteMeta(openTag) + `.*?` + regexp.QuoteMeta(closeTag)),
		openTag:  openTag,
		closeTag: closeTag,
	}
}

// strip removes complete spans first, then unpaired tags, and repeats until
// nothing changes so removal never leaves a tag behind.
// Leading whitespace is trimmed only when something was removed.
func (s tagStripper) strip(raw string) string {
	out := raw
	for {
		next := s.span.ReplaceAllString(out, "")
		if next == out {
			next = strings.ReplaceAll(next, s.openTag, "")
			next = strings.ReplaceAll(next, s.closeTag, "")
			if next == out {
				break
			}
		}
		out = next
	}
	if out == raw {
		return raw
	}
	return strings.TrimLeftFunc(out, unicode.IsSpace)
}

var (
	thinkStripper    = newTagStripper("think")
	thinkingStripper = newTagStripper("thinking")
)
