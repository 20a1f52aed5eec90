// Package assistant is the boundary to a companion chat model. It turns the
// machine state into prompt text and pulls BASIC source back out of replies.
package assistant

import (
	"regexp"
	"strings"
)

var fencedBASIC = regexp.MustCompile("(?i)```basic\\b\\s*([\\s\\S]*?)\\s*```")

// ExtractBASIC returns the contents of every ```BASIC fenced block in text,
// in order, joined by newlines and terminated by one. It returns "" when
// there is no such block.
func ExtractBASIC(text string) string {
	var sections []string
	for _, m := range fencedBASIC.FindAllStringSubmatch(text, -1) {
		sections = append(sections, strings.TrimSpace(m[1]))
	}
	if len(sections) == 0 {
		return ""
	}
	return strings.Join(sections, "\n") + "\n"
}
