package codeexec

import (
	"regexp"
	"strings"
)

var fenceRe = regexp.MustCompile("(?s)```[a-zA-Z0-9_+-]*[ \\t]*\\r?\\n(.*?)```")

// ExtractCode returns the content of the fenced code blocks in text, joined by
// blank lines. Text without fences is returned trimmed.
func ExtractCode(text string) string {
	matches := fenceRe.FindAllStringSubmatch(text, -1)
	if len(matches) == 0 {
		return strings.TrimSpace(text)
	}

	blocks := make([]string, 0, len(matches))
	for _, m := range matches {
		blocks = append(blocks, strings.TrimRight(m[1], "\r\n"))
	}
	return strings.Join(blocks, "\n\n")
}
